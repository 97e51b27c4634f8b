package db

import (
	"context"

	"github.com/fleetcmd/fleet-command/internal/models"
)

// VehicleCollection defines the interface for vehicle data operations.
// Listing returns the full snapshot; hierarchy-aware filtering happens in
// the analytics engine, not in the store.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) error
	FindVehicles(ctx context.Context) ([]models.Vehicle, error)
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	UpdateVehiclePosition(ctx context.Context, id string, lat, lon float64) error
	DeleteAllVehicles(ctx context.Context) error
}

// OrganizationCollection defines the interface for organization data operations.
type OrganizationCollection interface {
	InsertOrganization(ctx context.Context, org models.Organization) (*models.Organization, error)
	FindOrganizations(ctx context.Context, orgType models.OrgType) ([]models.Organization, error)
	FindChildren(ctx context.Context, parentID string) ([]models.Organization, error)
	DeleteAllOrganizations(ctx context.Context) error
}

// MaintenanceCollection defines the interface for maintenance history operations.
type MaintenanceCollection interface {
	InsertMaintenance(ctx context.Context, m models.Maintenance) error
	FindMaintenanceByVehicle(ctx context.Context, vehicleID string) ([]models.Maintenance, error)
	DeleteAllMaintenance(ctx context.Context) error
}

// HoursCollection defines the interface for monthly hours-usage operations.
type HoursCollection interface {
	InsertHoursUsage(ctx context.Context, h models.HoursUsage) error
	FindHoursByVehicle(ctx context.Context, vehicleID string) ([]models.HoursUsage, error)
	DeleteAllHours(ctx context.Context) error
}

// GeoCollection defines the interface for stored geographic features
// (battalion polygons or base points, one collection each). An empty
// municipality returns everything.
type GeoCollection interface {
	InsertFeature(ctx context.Context, f models.StoredFeature) error
	FindFeatures(ctx context.Context, municipality string) ([]models.StoredFeature, error)
	DeleteAllFeatures(ctx context.Context) error
}
