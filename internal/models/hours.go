package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// HoursUsage records the operating hours of a vehicle for one calendar
// month. YearMonth uses the "2006-01" form. The current-month snapshot
// consumed by the dashboards lives on Vehicle.
type HoursUsage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID primitive.ObjectID `bson:"vehicle_id" json:"vehicle_id"`
	YearMonth string             `bson:"year_month" json:"year_month"`
	Hours     int                `bson:"hours" json:"hours"`
}
