package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fleetcmd/fleet-command/internal/analytics"
	"github.com/fleetcmd/fleet-command/internal/config"
	"github.com/fleetcmd/fleet-command/internal/models"
)

var errStoreDown = errors.New("store down")

// fakeVehicles is an in-memory VehicleCollection.
type fakeVehicles struct {
	vehicles []models.Vehicle
	fail     bool
}

func (f *fakeVehicles) InsertVehicle(_ context.Context, v models.Vehicle) error {
	if f.fail {
		return errStoreDown
	}
	f.vehicles = append(f.vehicles, v)
	return nil
}

func (f *fakeVehicles) FindVehicles(context.Context) ([]models.Vehicle, error) {
	if f.fail {
		return nil, errStoreDown
	}
	return f.vehicles, nil
}

func (f *fakeVehicles) FindVehicleByID(_ context.Context, id string) (*models.Vehicle, error) {
	if f.fail {
		return nil, errStoreDown
	}
	for _, v := range f.vehicles {
		if v.ID.Hex() == id {
			return &v, nil
		}
	}
	return nil, errors.New("vehicle not found")
}

func (f *fakeVehicles) UpdateVehiclePosition(_ context.Context, id string, lat, lon float64) error {
	if f.fail {
		return errStoreDown
	}
	for i, v := range f.vehicles {
		if v.ID.Hex() == id {
			f.vehicles[i].Latitude = &lat
			f.vehicles[i].Longitude = &lon
			return nil
		}
	}
	return errors.New("vehicle not found")
}

func (f *fakeVehicles) DeleteAllVehicles(context.Context) error {
	f.vehicles = nil
	return nil
}

// fakeOrgs is an in-memory OrganizationCollection.
type fakeOrgs struct {
	orgs []models.Organization
	fail bool
}

func (f *fakeOrgs) InsertOrganization(_ context.Context, org models.Organization) (*models.Organization, error) {
	if org.ID.IsZero() {
		org.ID = primitive.NewObjectID()
	}
	f.orgs = append(f.orgs, org)
	return &org, nil
}

func (f *fakeOrgs) FindOrganizations(_ context.Context, orgType models.OrgType) ([]models.Organization, error) {
	if f.fail {
		return nil, errStoreDown
	}
	if orgType == "" {
		return f.orgs, nil
	}
	var out []models.Organization
	for _, org := range f.orgs {
		if org.Type == orgType {
			out = append(out, org)
		}
	}
	return out, nil
}

func (f *fakeOrgs) FindChildren(_ context.Context, parentID string) ([]models.Organization, error) {
	if f.fail {
		return nil, errStoreDown
	}
	if _, err := primitive.ObjectIDFromHex(parentID); err != nil {
		return nil, err
	}
	var out []models.Organization
	for _, org := range f.orgs {
		if org.ParentID != nil && org.ParentID.Hex() == parentID {
			out = append(out, org)
		}
	}
	return out, nil
}

func (f *fakeOrgs) DeleteAllOrganizations(context.Context) error {
	f.orgs = nil
	return nil
}

// fakeMaint is an in-memory MaintenanceCollection.
type fakeMaint struct {
	records []models.Maintenance
}

func (f *fakeMaint) InsertMaintenance(_ context.Context, m models.Maintenance) error {
	f.records = append(f.records, m)
	return nil
}

func (f *fakeMaint) FindMaintenanceByVehicle(_ context.Context, vehicleID string) ([]models.Maintenance, error) {
	var out []models.Maintenance
	for _, m := range f.records {
		if m.VehicleID.Hex() == vehicleID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMaint) DeleteAllMaintenance(context.Context) error {
	f.records = nil
	return nil
}

// fakeHours is an in-memory HoursCollection.
type fakeHours struct {
	records []models.HoursUsage
}

func (f *fakeHours) InsertHoursUsage(_ context.Context, h models.HoursUsage) error {
	f.records = append(f.records, h)
	return nil
}

func (f *fakeHours) FindHoursByVehicle(_ context.Context, vehicleID string) ([]models.HoursUsage, error) {
	var out []models.HoursUsage
	for _, h := range f.records {
		if h.VehicleID.Hex() == vehicleID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeHours) DeleteAllHours(context.Context) error {
	f.records = nil
	return nil
}

// fakeGeo is an in-memory GeoCollection.
type fakeGeo struct {
	features []models.StoredFeature
	fail     bool
}

func (f *fakeGeo) InsertFeature(_ context.Context, sf models.StoredFeature) error {
	if f.fail {
		return errStoreDown
	}
	f.features = append(f.features, sf)
	return nil
}

func (f *fakeGeo) FindFeatures(_ context.Context, municipality string) ([]models.StoredFeature, error) {
	if f.fail {
		return nil, errStoreDown
	}
	if municipality == "" {
		return f.features, nil
	}
	var out []models.StoredFeature
	for _, sf := range f.features {
		if sf.Municipality == municipality {
			out = append(out, sf)
		}
	}
	return out, nil
}

func (f *fakeGeo) DeleteAllFeatures(context.Context) error {
	f.features = nil
	return nil
}

// fakeUsers is an in-memory UserCollection.
type fakeUsers struct {
	users []models.User
}

func (f *fakeUsers) InsertUser(_ context.Context, user models.User) error {
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUsers) FindUserByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range f.users {
		if u.ID.Hex() == id {
			return &u, nil
		}
	}
	return nil, errors.New("user not found")
}

func (f *fakeUsers) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, errors.New("user not found")
}

func (f *fakeUsers) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, errors.New("user not found")
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id string) error {
	return nil
}

// fixture wires a small fleet into fakes shared by the handler tests: one
// command over one unit over one battalion, two vehicles in the battalion.
type fixture struct {
	vehicles *fakeVehicles
	orgs     *fakeOrgs
	maint    *fakeMaint
	hours    *fakeHours
	scorer   *analytics.Scorer

	battalion models.Organization
	suv       models.Vehicle
	sedan     models.Vehicle
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	scorer, err := analytics.NewScorer(config.DefaultScoring())
	require.NoError(t, err)

	cmd := models.Organization{ID: primitive.NewObjectID(), Name: "Regional Command 1", Type: models.OrgCommand}
	cmdID := cmd.ID
	unit := models.Organization{ID: primitive.NewObjectID(), Name: "Operational Unit 1-1", Type: models.OrgUnit, ParentID: &cmdID}
	unitID := unit.ID
	battalion := models.Organization{ID: primitive.NewObjectID(), Name: "1st Battalion", Type: models.OrgBattalion, ParentID: &unitID}

	lat, lon := -20.4697, -54.6201
	suv := models.Vehicle{
		ID:             primitive.NewObjectID(),
		Prefix:         "FC-0001",
		Plate:          "QAZ1A23",
		Category:       models.CategorySUV,
		OrganizationID: battalion.ID,
		Municipality:   "Campo Grande",
		Neighborhood:   "Centro",
		AreaType:       models.AreaRural,
		Active:         true,
		OdometerKM:     270_000,
		MonthHours:     140,
		Maintenance6M:  3,
		EstimatedValue: 180_000,
		Latitude:       &lat,
		Longitude:      &lon,
	}
	sedan := models.Vehicle{
		ID:             primitive.NewObjectID(),
		Prefix:         "FC-0002",
		Plate:          "QAZ4B56",
		Category:       models.CategorySedan,
		OrganizationID: battalion.ID,
		Municipality:   "Dourados",
		Neighborhood:   "Vila Progresso",
		AreaType:       models.AreaUrban,
		Active:         false,
		OdometerKM:     40_000,
		MonthHours:     60,
		EstimatedValue: 90_000,
	}

	return &fixture{
		vehicles:  &fakeVehicles{vehicles: []models.Vehicle{suv, sedan}},
		orgs:      &fakeOrgs{orgs: []models.Organization{cmd, unit, battalion}},
		maint:     &fakeMaint{},
		hours:     &fakeHours{},
		scorer:    scorer,
		battalion: battalion,
		suv:       suv,
		sedan:     sedan,
	}
}
