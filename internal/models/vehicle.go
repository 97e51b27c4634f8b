package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle categories. Unknown categories are tolerated by the scoring
// engine and fall back to the default reference kilometers.
const (
	CategoryMotorcycle  = "Motorcycle"
	CategorySUV         = "SUV"
	CategoryPickupTruck = "PickupTruck"
	CategoryVan         = "Van"
	CategorySedan       = "Sedan"
	CategoryHatchback   = "Hatchback"
	CategoryPickup      = "Pickup"
	CategoryUtility     = "Utility"
)

// Operating-area types, ordered roughly by harshness.
const (
	AreaUrban       = "Urban"
	AreaRural       = "Rural"
	AreaMixed       = "Mixed"
	AreaMountainous = "Mountainous"
	AreaOffRoad     = "OffRoad"
)

// Vehicle represents one fleet vehicle. Prefix and plate are unique across
// the fleet. Usage counters (odometer, current-month hours, trailing
// 6-month maintenance count) are pre-aggregated snapshots maintained by the
// write path; the analytics engine only reads them.
type Vehicle struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Prefix         string             `bson:"prefix" json:"prefix"`
	Plate          string             `bson:"plate" json:"plate"`
	Category       string             `bson:"category" json:"category"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	Municipality   string             `bson:"municipality" json:"municipality"`
	Neighborhood   string             `bson:"neighborhood" json:"neighborhood"`
	AreaType       string             `bson:"area_type" json:"area_type"`
	Active         bool               `bson:"active" json:"active"`
	OdometerKM     int                `bson:"odometer_km" json:"odometer_km"`
	MonthHours     int                `bson:"month_hours" json:"month_hours"`
	Maintenance6M  int                `bson:"maintenance_6m" json:"maintenance_6m"`
	EstimatedValue float64            `bson:"estimated_value" json:"estimated_value"`
	Latitude       *float64           `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude      *float64           `bson:"longitude,omitempty" json:"longitude,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

// HasCoordinates reports whether both coordinates are set. A vehicle with
// only one of latitude/longitude is treated as having no position at all.
func (v Vehicle) HasCoordinates() bool {
	return v.Latitude != nil && v.Longitude != nil
}
