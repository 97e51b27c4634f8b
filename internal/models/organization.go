package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// OrgType is a level in the strict three-level command hierarchy.
type OrgType string

const (
	OrgCommand   OrgType = "Command"
	OrgUnit      OrgType = "Unit"
	OrgBattalion OrgType = "Battalion"
)

// Organization is a node in the command tree. Commands are roots, units hang
// off commands and battalions off units. Vehicles attach at battalion level.
type Organization struct {
	ID       primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name     string              `bson:"name" json:"name"`
	Type     OrgType             `bson:"type" json:"type"`
	ParentID *primitive.ObjectID `bson:"parent_id,omitempty" json:"parent_id,omitempty"`
}
