package main

import (
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/fleetcmd/fleet-command/internal/analytics"
	"github.com/fleetcmd/fleet-command/internal/auth"
	"github.com/fleetcmd/fleet-command/internal/config"
	"github.com/fleetcmd/fleet-command/internal/db"
	"github.com/fleetcmd/fleet-command/internal/handlers"
	"github.com/fleetcmd/fleet-command/internal/ingest"
	"github.com/fleetcmd/fleet-command/internal/metrics"
	"github.com/fleetcmd/fleet-command/internal/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using process environment")
	}
	if level, err := log.ParseLevel(getenv("LOG_LEVEL", "info")); err == nil {
		log.SetLevel(level)
	}

	scoring, err := config.Load(os.Getenv("SCORING_CONFIG"))
	if err != nil {
		log.WithError(err).Fatal("Failed to load scoring configuration")
	}

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	log.Info("Connected to MongoDB")

	database := client.Database(getenv("MONGO_DB", "fleetcmd"))
	vehicles := &db.MongoVehicleCollection{Collection: database.Collection("vehicles")}
	orgs := &db.MongoOrganizationCollection{Collection: database.Collection("organizations")}
	maint := &db.MongoMaintenanceCollection{Collection: database.Collection("maintenance")}
	hours := &db.MongoHoursCollection{Collection: database.Collection("hours_usage")}
	battalions := &db.MongoGeoCollection{Collection: database.Collection("geo_battalions")}
	bases := &db.MongoGeoCollection{Collection: database.Collection("geo_bases")}
	users := &db.MongoUserCollection{Collection: database.Collection("users")}

	scorer, err := analytics.NewScorer(scoring)
	if err != nil {
		log.WithError(err).Fatal("Invalid scoring configuration")
	}
	reporter := analytics.NewReporter(scorer)
	recommender := analytics.NewRecommender(scorer)
	assembler := analytics.NewAssembler(scorer)

	authService := auth.NewService()
	authMw := middleware.NewAuthMiddleware(authService)
	rateLimit := middleware.NewRateLimitMiddleware()

	vehicleHandler := handlers.NewVehicleHandler(vehicles, orgs, maint, hours, scorer)
	dashboardHandler := handlers.NewDashboardHandler(vehicles, orgs, reporter, recommender)
	geoHandler := handlers.NewGeoHandler(vehicles, orgs, battalions, bases, assembler)
	orgHandler := handlers.NewOrganizationHandler(orgs)
	lookupHandler := handlers.NewLookupHandler(vehicles)
	paramsHandler := handlers.NewParamsHandler(scoring)
	authHandler := handlers.NewAuthHandler(authService, users)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handlers.Health)
	mux.Handle("/metrics", metrics.Handler())

	mux.HandleFunc("/api/vehicles", vehicleHandler.List)
	mux.HandleFunc("/api/vehicles/", vehicleHandler.Detail)

	mux.HandleFunc("/api/dashboard/kpis", dashboardHandler.KPIs)
	mux.HandleFunc("/api/dashboard/categories", dashboardHandler.Categories)
	mux.HandleFunc("/api/dashboard/values", dashboardHandler.Values)
	mux.HandleFunc("/api/dashboard/top_odometer", dashboardHandler.TopOdometer)
	mux.HandleFunc("/api/dashboard/top_hours", dashboardHandler.TopHours)
	mux.HandleFunc("/api/dashboard/top_maintenance", dashboardHandler.TopMaintenance)
	mux.HandleFunc("/api/recommendations", dashboardHandler.Recommendations)

	mux.HandleFunc("/api/geo/battalions", geoHandler.Battalions)
	mux.HandleFunc("/api/geo/bases", geoHandler.Bases)
	mux.HandleFunc("/api/geo/vehicles", geoHandler.Vehicles)
	mux.Handle("/api/geo/upload", authMw.Authenticate(authMw.RequireWriter(http.HandlerFunc(geoHandler.Upload))))

	mux.HandleFunc("/api/organizations", orgHandler.List)
	mux.HandleFunc("/api/organizations/", orgHandler.Children)

	mux.HandleFunc("/api/municipalities", lookupHandler.Municipalities)
	mux.HandleFunc("/api/neighborhoods", lookupHandler.Neighborhoods)
	mux.HandleFunc("/api/categories", lookupHandler.Categories)
	mux.HandleFunc("/api/params", paramsHandler.Params)

	credLimit := rateLimit.RateLimit(10, time.Minute)
	mux.Handle("/api/auth/login", credLimit(http.HandlerFunc(authHandler.Login)))
	mux.Handle("/api/auth/register", credLimit(http.HandlerFunc(authHandler.Register)))
	mux.Handle("/api/auth/me", authMw.Authenticate(http.HandlerFunc(authHandler.Profile)))

	if broker := os.Getenv("MQTT_BROKER"); broker != "" {
		sub := ingest.NewSubscriber(broker, getenv("MQTT_CLIENT_ID", "fleetcmd-server"), getenv("MQTT_TOPIC", "fleet/positions"), vehicles)
		if err := sub.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start position subscriber")
		}
		defer sub.Stop()
	}

	handler := metrics.Instrument(middleware.RequestID(mux))
	addr := ":" + getenv("PORT", "8080")
	log.WithField("addr", addr).Info("HTTP server listening")
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.WithError(err).Fatal("HTTP server stopped")
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
