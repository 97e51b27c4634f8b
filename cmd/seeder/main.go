package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fleetcmd/fleet-command/internal/auth"
	"github.com/fleetcmd/fleet-command/internal/db"
	"github.com/fleetcmd/fleet-command/internal/models"
)

// municipality with its base coordinates and neighborhoods, used to spread
// the seeded fleet over a plausible map.
type place struct {
	name          string
	lat, lon      float64
	neighborhoods []string
}

var places = []place{
	{"Campo Grande", -20.4697, -54.6201, []string{"Centro", "Aero Rancho", "Moreninhas", "Coronel Antonino"}},
	{"Dourados", -22.2231, -54.8120, []string{"Centro", "Jardim Agua Boa", "Vila Progresso"}},
	{"Corumba", -19.0078, -57.6547, []string{"Centro", "Popular Nova", "Aeroporto"}},
	{"Tres Lagoas", -20.7849, -51.7007, []string{"Centro", "Vila Piloto", "Santa Rita"}},
	{"Ponta Pora", -22.5296, -55.7203, []string{"Centro", "Vila Alegre"}},
	{"Aquidauana", -20.4666, -55.7868, []string{"Centro", "Alto"}},
}

var categories = []struct {
	name     string
	minKM    int
	maxKM    int
	minValue float64
	maxValue float64
}{
	{models.CategoryMotorcycle, 5_000, 130_000, 18_000, 35_000},
	{models.CategorySedan, 20_000, 240_000, 60_000, 120_000},
	{models.CategoryHatchback, 15_000, 230_000, 50_000, 95_000},
	{models.CategorySUV, 30_000, 320_000, 120_000, 280_000},
	{models.CategoryPickup, 40_000, 330_000, 150_000, 320_000},
	{models.CategoryVan, 50_000, 360_000, 130_000, 260_000},
	{models.CategoryUtility, 25_000, 270_000, 80_000, 180_000},
}

var areaTypes = []string{models.AreaUrban, models.AreaRural, models.AreaMixed, models.AreaMountainous, models.AreaOffRoad}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using process environment")
	}

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	database := client.Database(envOr("MONGO_DB", "fleetcmd"))

	vehicles := &db.MongoVehicleCollection{Collection: database.Collection("vehicles")}
	orgs := &db.MongoOrganizationCollection{Collection: database.Collection("organizations")}
	maint := &db.MongoMaintenanceCollection{Collection: database.Collection("maintenance")}
	hours := &db.MongoHoursCollection{Collection: database.Collection("hours_usage")}
	battalions := &db.MongoGeoCollection{Collection: database.Collection("geo_battalions")}
	bases := &db.MongoGeoCollection{Collection: database.Collection("geo_bases")}
	users := &db.MongoUserCollection{Collection: database.Collection("users")}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	for name, fn := range map[string]func(context.Context) error{
		"vehicles":      vehicles.DeleteAllVehicles,
		"organizations": orgs.DeleteAllOrganizations,
		"maintenance":   maint.DeleteAllMaintenance,
		"hours_usage":   hours.DeleteAllHours,
	} {
		if err := fn(ctx); err != nil {
			log.WithError(err).WithField("collection", name).Fatal("Failed to clear collection")
		}
	}
	if err := battalions.DeleteAllFeatures(ctx); err != nil {
		log.WithError(err).Fatal("Failed to clear battalion features")
	}
	if err := bases.DeleteAllFeatures(ctx); err != nil {
		log.WithError(err).Fatal("Failed to clear base features")
	}

	// Deterministic data set so repeated runs produce the same fleet.
	rng := rand.New(rand.NewSource(42))

	battalionOrgs := seedOrganizations(ctx, orgs)
	total := seedVehicles(ctx, rng, vehicles, maint, hours, battalionOrgs)
	seedGeo(ctx, battalions, bases, battalionOrgs)
	seedAdmin(ctx, users)

	log.WithFields(log.Fields{
		"organizations": 3 + 6 + len(battalionOrgs),
		"vehicles":      total,
	}).Info("Seed completed")
}

// seedOrganizations builds the three-level hierarchy: 3 commands, 2 units
// each, 9 battalions spread over the units. Returns the battalions, which
// vehicles attach to.
func seedOrganizations(ctx context.Context, orgs db.OrganizationCollection) []models.Organization {
	commands := make([]models.Organization, 0, 3)
	for i := 1; i <= 3; i++ {
		org, err := orgs.InsertOrganization(ctx, models.Organization{
			Name: fmt.Sprintf("Regional Command %d", i),
			Type: models.OrgCommand,
		})
		if err != nil {
			log.WithError(err).Fatal("Failed to insert command")
		}
		commands = append(commands, *org)
	}

	units := make([]models.Organization, 0, 6)
	for i, cmd := range commands {
		for j := 1; j <= 2; j++ {
			parentID := cmd.ID
			org, err := orgs.InsertOrganization(ctx, models.Organization{
				Name:     fmt.Sprintf("Operational Unit %d-%d", i+1, j),
				Type:     models.OrgUnit,
				ParentID: &parentID,
			})
			if err != nil {
				log.WithError(err).Fatal("Failed to insert unit")
			}
			units = append(units, *org)
		}
	}

	battalions := make([]models.Organization, 0, 9)
	for i := 1; i <= 9; i++ {
		parentID := units[(i-1)%len(units)].ID
		org, err := orgs.InsertOrganization(ctx, models.Organization{
			Name:     fmt.Sprintf("%dth Battalion", i),
			Type:     models.OrgBattalion,
			ParentID: &parentID,
		})
		if err != nil {
			log.WithError(err).Fatal("Failed to insert battalion")
		}
		battalions = append(battalions, *org)
	}
	return battalions
}

func seedVehicles(ctx context.Context, rng *rand.Rand, vehicles db.VehicleCollection, maint db.MaintenanceCollection, hours db.HoursCollection, battalions []models.Organization) int {
	maintenanceTypes := []string{"Preventive", "Corrective", "Tires", "Brakes", "Electrical"}
	total := 0
	for b, battalion := range battalions {
		pl := places[b%len(places)]
		perBattalion := 12 + rng.Intn(5)
		for i := 0; i < perBattalion; i++ {
			total++
			cat := categories[rng.Intn(len(categories))]
			maint6m := rng.Intn(8)
			v := models.Vehicle{
				ID:             primitive.NewObjectID(),
				Prefix:         fmt.Sprintf("FC-%04d", total),
				Plate:          fmt.Sprintf("QAZ%d%c%d%d", rng.Intn(10), 'A'+rune(rng.Intn(26)), rng.Intn(10), rng.Intn(10)),
				Category:       cat.name,
				OrganizationID: battalion.ID,
				Municipality:   pl.name,
				Neighborhood:   pl.neighborhoods[rng.Intn(len(pl.neighborhoods))],
				AreaType:       areaTypes[rng.Intn(len(areaTypes))],
				Active:         rng.Float64() < 0.85,
				OdometerKM:     cat.minKM + rng.Intn(cat.maxKM-cat.minKM),
				MonthHours:     rng.Intn(260),
				Maintenance6M:  maint6m,
				EstimatedValue: cat.minValue + rng.Float64()*(cat.maxValue-cat.minValue),
				CreatedAt:      time.Now(),
			}
			// Roughly one in ten vehicles has no position fix yet.
			if rng.Float64() < 0.9 {
				lat := pl.lat + (rng.Float64()-0.5)*0.12
				lon := pl.lon + (rng.Float64()-0.5)*0.12
				v.Latitude = &lat
				v.Longitude = &lon
			}
			if err := vehicles.InsertVehicle(ctx, v); err != nil {
				log.WithError(err).WithField("prefix", v.Prefix).Fatal("Failed to insert vehicle")
			}
			seedHistory(ctx, rng, maint, hours, v, maint6m, maintenanceTypes)
		}
	}
	return total
}

// seedHistory writes a maintenance record per counted event and six months
// of hours usage, consistent with the vehicle's snapshot counters.
func seedHistory(ctx context.Context, rng *rand.Rand, maint db.MaintenanceCollection, hours db.HoursCollection, v models.Vehicle, maint6m int, types []string) {
	now := time.Now()
	for e := 0; e < maint6m; e++ {
		m := models.Maintenance{
			VehicleID:   v.ID,
			Date:        now.AddDate(0, 0, -rng.Intn(180)),
			Type:        types[rng.Intn(len(types))],
			Cost:        300 + rng.Float64()*4_500,
			Description: "Scheduled workshop service",
		}
		if err := maint.InsertMaintenance(ctx, m); err != nil {
			log.WithError(err).WithField("prefix", v.Prefix).Fatal("Failed to insert maintenance record")
		}
	}
	for m := 0; m < 6; m++ {
		monthHours := v.MonthHours
		if m > 0 {
			monthHours = rng.Intn(260)
		}
		h := models.HoursUsage{
			VehicleID: v.ID,
			YearMonth: now.AddDate(0, -m, 0).Format("2006-01"),
			Hours:     monthHours,
		}
		if err := hours.InsertHoursUsage(ctx, h); err != nil {
			log.WithError(err).WithField("prefix", v.Prefix).Fatal("Failed to insert hours usage")
		}
	}
}

// seedGeo stores one coverage polygon and one base point per battalion,
// centered on its municipality.
func seedGeo(ctx context.Context, battalions, bases db.GeoCollection, orgs []models.Organization) {
	for i, org := range orgs {
		pl := places[i%len(places)]
		d := 0.15
		polygon := models.StoredFeature{
			Municipality: pl.name,
			Battalion:    org.Name,
			GeoJSON: map[string]interface{}{
				"type": "Feature",
				"geometry": map[string]interface{}{
					"type": "Polygon",
					"coordinates": [][][]float64{{
						{pl.lon - d, pl.lat - d},
						{pl.lon + d, pl.lat - d},
						{pl.lon + d, pl.lat + d},
						{pl.lon - d, pl.lat + d},
						{pl.lon - d, pl.lat - d},
					}},
				},
				"properties": map[string]interface{}{
					"name": fmt.Sprintf("%s coverage area", org.Name),
				},
			},
		}
		if err := battalions.InsertFeature(ctx, polygon); err != nil {
			log.WithError(err).WithField("battalion", org.Name).Fatal("Failed to insert battalion polygon")
		}

		base := models.StoredFeature{
			Municipality: pl.name,
			Battalion:    org.Name,
			GeoJSON: map[string]interface{}{
				"type": "Feature",
				"geometry": map[string]interface{}{
					"type":        "Point",
					"coordinates": []float64{pl.lon, pl.lat},
				},
				"properties": map[string]interface{}{
					"name": fmt.Sprintf("%s headquarters", org.Name),
				},
			},
		}
		if err := bases.InsertFeature(ctx, base); err != nil {
			log.WithError(err).WithField("battalion", org.Name).Fatal("Failed to insert base point")
		}
	}
}

// seedAdmin creates the default admin account unless one already exists.
func seedAdmin(ctx context.Context, users db.UserCollection) {
	if _, err := users.FindUserByUsername(ctx, "admin"); err == nil {
		log.Info("Admin user already exists, skipping")
		return
	}
	authService := auth.NewService()
	password := envOr("ADMIN_PASSWORD", "fleetcmd-admin")
	hash, err := authService.HashPassword(password)
	if err != nil {
		log.WithError(err).Fatal("Failed to hash admin password")
	}
	admin := models.User{
		Username:     "admin",
		Email:        "admin@fleetcmd.local",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := users.InsertUser(ctx, admin); err != nil {
		log.WithError(err).Fatal("Failed to insert admin user")
	}
	log.Info("Created default admin user")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
