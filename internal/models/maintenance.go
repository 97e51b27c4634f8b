package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Maintenance is one historical maintenance event for a vehicle. The
// trailing 6-month count consumed by the scoring engine is pre-aggregated
// on Vehicle; these records are served as history only.
type Maintenance struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID   primitive.ObjectID `bson:"vehicle_id" json:"vehicle_id"`
	Date        time.Time          `bson:"date" json:"date"`
	Type        string             `bson:"type" json:"type"`
	Cost        float64            `bson:"cost" json:"cost"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
