package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fleetcmd/fleet-command/internal/models"
)

// ConnectMongo connects to MongoDB using the MONGO_URI environment variable.
func ConnectMongo() (*mongo.Client, error) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// MongoVehicleCollection implements VehicleCollection for MongoDB.
type MongoVehicleCollection struct {
	Collection *mongo.Collection
}

// InsertVehicle inserts a vehicle record into the collection.
func (c *MongoVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	vehicle.CreatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, vehicle)
	return err
}

// FindVehicles returns the full vehicle snapshot.
func (c *MongoVehicleCollection) FindVehicles(ctx context.Context) ([]models.Vehicle, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := c.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// FindVehicleByID finds a vehicle by its ID.
func (c *MongoVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle ID: %w", err)
	}
	var vehicle models.Vehicle
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&vehicle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("vehicle not found")
		}
		return nil, err
	}
	return &vehicle, nil
}

// UpdateVehiclePosition overwrites the position snapshot of a vehicle.
func (c *MongoVehicleCollection) UpdateVehiclePosition(ctx context.Context, id string, lat, lon float64) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid vehicle ID: %w", err)
	}
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{
		"$set": bson.M{"latitude": lat, "longitude": lon},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("vehicle not found")
	}
	return nil
}

// DeleteAllVehicles removes every vehicle record.
func (c *MongoVehicleCollection) DeleteAllVehicles(ctx context.Context) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.DeleteMany(ctx, bson.M{})
	return err
}

// MongoOrganizationCollection implements OrganizationCollection for MongoDB.
type MongoOrganizationCollection struct {
	Collection *mongo.Collection
}

// InsertOrganization inserts an organization and returns it with the
// generated ID, so callers can wire up parent references.
func (c *MongoOrganizationCollection) InsertOrganization(ctx context.Context, org models.Organization) (*models.Organization, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	if org.ID.IsZero() {
		org.ID = primitive.NewObjectID()
	}
	if _, err := c.Collection.InsertOne(ctx, org); err != nil {
		return nil, err
	}
	return &org, nil
}

// FindOrganizations lists organizations, optionally restricted to one
// hierarchy level.
func (c *MongoOrganizationCollection) FindOrganizations(ctx context.Context, orgType models.OrgType) ([]models.Organization, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	filter := bson.M{}
	if orgType != "" {
		filter["type"] = orgType
	}
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var orgs []models.Organization
	if err := cursor.All(ctx, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// FindChildren lists the direct children of an organization.
func (c *MongoOrganizationCollection) FindChildren(ctx context.Context, parentID string) ([]models.Organization, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(parentID)
	if err != nil {
		return nil, fmt.Errorf("invalid organization ID: %w", err)
	}
	cursor, err := c.Collection.Find(ctx, bson.M{"parent_id": objectID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var orgs []models.Organization
	if err := cursor.All(ctx, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// DeleteAllOrganizations removes every organization record.
func (c *MongoOrganizationCollection) DeleteAllOrganizations(ctx context.Context) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.DeleteMany(ctx, bson.M{})
	return err
}

// MongoMaintenanceCollection implements MaintenanceCollection for MongoDB.
type MongoMaintenanceCollection struct {
	Collection *mongo.Collection
}

// InsertMaintenance inserts a maintenance record into the collection.
func (c *MongoMaintenanceCollection) InsertMaintenance(ctx context.Context, m models.Maintenance) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	m.CreatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, m)
	return err
}

// FindMaintenanceByVehicle lists the maintenance history of one vehicle,
// most recent first.
func (c *MongoMaintenanceCollection) FindMaintenanceByVehicle(ctx context.Context, vehicleID string) ([]models.Maintenance, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle ID: %w", err)
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := c.Collection.Find(ctx, bson.M{"vehicle_id": objectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var records []models.Maintenance
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteAllMaintenance removes every maintenance record.
func (c *MongoMaintenanceCollection) DeleteAllMaintenance(ctx context.Context) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.DeleteMany(ctx, bson.M{})
	return err
}

// MongoHoursCollection implements HoursCollection for MongoDB.
type MongoHoursCollection struct {
	Collection *mongo.Collection
}

// InsertHoursUsage inserts a monthly hours record into the collection.
func (c *MongoHoursCollection) InsertHoursUsage(ctx context.Context, h models.HoursUsage) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.InsertOne(ctx, h)
	return err
}

// FindHoursByVehicle lists the hours history of one vehicle, newest month
// first.
func (c *MongoHoursCollection) FindHoursByVehicle(ctx context.Context, vehicleID string) ([]models.HoursUsage, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle ID: %w", err)
	}
	opts := options.Find().SetSort(bson.D{{Key: "year_month", Value: -1}})
	cursor, err := c.Collection.Find(ctx, bson.M{"vehicle_id": objectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var records []models.HoursUsage
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteAllHours removes every hours record.
func (c *MongoHoursCollection) DeleteAllHours(ctx context.Context) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.DeleteMany(ctx, bson.M{})
	return err
}

// MongoGeoCollection implements GeoCollection for MongoDB.
type MongoGeoCollection struct {
	Collection *mongo.Collection
}

// InsertFeature inserts a stored geographic feature.
func (c *MongoGeoCollection) InsertFeature(ctx context.Context, f models.StoredFeature) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.InsertOne(ctx, f)
	return err
}

// FindFeatures lists stored features, optionally for one municipality
// (exact match pushed down to the store).
func (c *MongoGeoCollection) FindFeatures(ctx context.Context, municipality string) ([]models.StoredFeature, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	filter := bson.M{}
	if municipality != "" {
		filter["municipality"] = municipality
	}
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var features []models.StoredFeature
	if err := cursor.All(ctx, &features); err != nil {
		return nil, err
	}
	return features, nil
}

// DeleteAllFeatures removes every stored feature.
func (c *MongoGeoCollection) DeleteAllFeatures(ctx context.Context) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.DeleteMany(ctx, bson.M{})
	return err
}
