package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fleetcmd/fleet-command/internal/models"
)

// testFleet builds a two-command hierarchy with one battalion each and a
// vehicle attached to every battalion.
type testFleet struct {
	orgs     *OrgIndex
	vehicles []models.Vehicle
}

func newTestFleet() testFleet {
	cmd1 := models.Organization{ID: primitive.NewObjectID(), Name: "Regional Command 1", Type: models.OrgCommand}
	cmd2 := models.Organization{ID: primitive.NewObjectID(), Name: "Regional Command 2", Type: models.OrgCommand}
	cmd1ID, cmd2ID := cmd1.ID, cmd2.ID
	unit1 := models.Organization{ID: primitive.NewObjectID(), Name: "Operational Unit 1-1", Type: models.OrgUnit, ParentID: &cmd1ID}
	unit2 := models.Organization{ID: primitive.NewObjectID(), Name: "Operational Unit 2-1", Type: models.OrgUnit, ParentID: &cmd2ID}
	unit1ID, unit2ID := unit1.ID, unit2.ID
	bat1 := models.Organization{ID: primitive.NewObjectID(), Name: "1st Battalion", Type: models.OrgBattalion, ParentID: &unit1ID}
	bat2 := models.Organization{ID: primitive.NewObjectID(), Name: "2nd Battalion", Type: models.OrgBattalion, ParentID: &unit2ID}

	idx := NewOrgIndex([]models.Organization{cmd1, cmd2, unit1, unit2, bat1, bat2})
	vehicles := []models.Vehicle{
		{
			ID:             primitive.NewObjectID(),
			Prefix:         "FC-0001",
			Plate:          "QAZ1A23",
			Category:       models.CategorySUV,
			OrganizationID: bat1.ID,
			Municipality:   "Campo Grande",
			Neighborhood:   "Centro",
			Active:         true,
		},
		{
			ID:             primitive.NewObjectID(),
			Prefix:         "FC-0002",
			Plate:          "QAZ4B56",
			Category:       models.CategorySedan,
			OrganizationID: bat2.ID,
			Municipality:   "Dourados",
			Neighborhood:   "Vila Progresso",
			Active:         false,
		},
	}
	return testFleet{orgs: idx, vehicles: vehicles}
}

func TestFilterVehicles_EmptyFilterMatchesAll(t *testing.T) {
	f := newTestFleet()
	out := FilterVehicles(f.vehicles, f.orgs, VehicleFilter{})
	assert.Equal(t, f.vehicles, out)
}

func TestFilterVehicles_CommandExpandsHierarchy(t *testing.T) {
	f := newTestFleet()
	out := FilterVehicles(f.vehicles, f.orgs, VehicleFilter{Command: "command 1"})
	assert.Len(t, out, 1)
	assert.Equal(t, "FC-0001", out[0].Prefix)
}

func TestFilterVehicles_UnitExpandsToBattalions(t *testing.T) {
	f := newTestFleet()
	out := FilterVehicles(f.vehicles, f.orgs, VehicleFilter{Unit: "unit 2-1"})
	assert.Len(t, out, 1)
	assert.Equal(t, "FC-0002", out[0].Prefix)
}

func TestFilterVehicles_BattalionDirectMatch(t *testing.T) {
	f := newTestFleet()
	out := FilterVehicles(f.vehicles, f.orgs, VehicleFilter{Battalion: "1st"})
	assert.Len(t, out, 1)
	assert.Equal(t, "FC-0001", out[0].Prefix)
}

func TestFilterVehicles_ConflictingOrgLevelsIntersect(t *testing.T) {
	f := newTestFleet()
	out := FilterVehicles(f.vehicles, f.orgs, VehicleFilter{Command: "command 1", Battalion: "2nd"})
	assert.Empty(t, out)
}

func TestFilterVehicles_UnmatchedOrgNameImposesNoRestriction(t *testing.T) {
	f := newTestFleet()
	out := FilterVehicles(f.vehicles, f.orgs, VehicleFilter{Command: "no such command"})
	assert.Len(t, out, 2)
}

func TestFilterVehicles_VehicleMatchesPrefixOrPlate(t *testing.T) {
	f := newTestFleet()

	byPrefix := FilterVehicles(f.vehicles, f.orgs, VehicleFilter{Vehicle: "fc-0002"})
	assert.Len(t, byPrefix, 1)
	assert.Equal(t, "FC-0002", byPrefix[0].Prefix)

	byPlate := FilterVehicles(f.vehicles, f.orgs, VehicleFilter{Vehicle: "1a2"})
	assert.Len(t, byPlate, 1)
	assert.Equal(t, "FC-0001", byPlate[0].Prefix)
}

func TestFilterVehicles_LocationFields(t *testing.T) {
	f := newTestFleet()

	out := FilterVehicles(f.vehicles, f.orgs, VehicleFilter{Municipality: "dourados"})
	assert.Len(t, out, 1)
	assert.Equal(t, "FC-0002", out[0].Prefix)

	out = FilterVehicles(f.vehicles, f.orgs, VehicleFilter{Neighborhood: "centro"})
	assert.Len(t, out, 1)
	assert.Equal(t, "FC-0001", out[0].Prefix)
}

func TestFilterVehicles_ActiveFlag(t *testing.T) {
	f := newTestFleet()
	active := true
	inactive := false

	out := FilterVehicles(f.vehicles, f.orgs, VehicleFilter{Active: &active})
	assert.Len(t, out, 1)
	assert.True(t, out[0].Active)

	out = FilterVehicles(f.vehicles, f.orgs, VehicleFilter{Active: &inactive})
	assert.Len(t, out, 1)
	assert.False(t, out[0].Active)
}

func TestFilterVehicles_PreservesInputOrder(t *testing.T) {
	f := newTestFleet()
	out := FilterVehicles(f.vehicles, f.orgs, VehicleFilter{Vehicle: "FC-"})
	assert.Equal(t, []string{"FC-0001", "FC-0002"}, []string{out[0].Prefix, out[1].Prefix})
}
