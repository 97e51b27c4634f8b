package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fleetcmd/fleet-command/internal/models"
)

// Scoring holds the reference tables behind the wear score. The values are
// loaded once at process start and treated as immutable afterwards, so the
// engine can run concurrently without locking. Tests inject alternate
// tables instead of touching package state.
type Scoring struct {
	// ReferenceKM maps a vehicle category to its expected end-of-life
	// odometer reading.
	ReferenceKM map[string]int `yaml:"reference_km"`
	// DefaultReferenceKM applies to categories missing from ReferenceKM.
	// Falling back silently is policy: scoring never fails on unknown input.
	DefaultReferenceKM int `yaml:"default_reference_km"`
	// MaintenanceCap is the maximum 6-month maintenance count considered
	// when normalizing maintenance pressure.
	MaintenanceCap int `yaml:"maintenance_cap"`
	// AreaFactors multiplies wear by operating-area harshness. Unknown
	// areas use 1.0.
	AreaFactors map[string]float64 `yaml:"area_factors"`
	// KMWeight and MaintenanceWeight blend the two normalized components
	// and must sum to 1.
	KMWeight          float64 `yaml:"km_weight"`
	MaintenanceWeight float64 `yaml:"maintenance_weight"`
}

// DefaultScoring returns the stock reference tables.
func DefaultScoring() Scoring {
	return Scoring{
		ReferenceKM: map[string]int{
			models.CategoryMotorcycle:  120_000,
			models.CategorySUV:         300_000,
			models.CategoryPickupTruck: 300_000,
			models.CategoryVan:         350_000,
			models.CategorySedan:       220_000,
			models.CategoryHatchback:   220_000,
			models.CategoryPickup:      300_000,
			models.CategoryUtility:     250_000,
		},
		DefaultReferenceKM: 250_000,
		MaintenanceCap:     6,
		AreaFactors: map[string]float64{
			models.AreaUrban:       1.00,
			models.AreaRural:       1.05,
			models.AreaMixed:       1.03,
			models.AreaMountainous: 1.10,
			models.AreaOffRoad:     1.10,
		},
		KMWeight:          0.6,
		MaintenanceWeight: 0.4,
	}
}

// Load reads a YAML override file on top of the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Scoring, error) {
	cfg := DefaultScoring()
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Scoring{}, fmt.Errorf("read scoring config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Scoring{}, fmt.Errorf("parse scoring config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Scoring{}, err
	}
	return cfg, nil
}

// Validate enforces the invariants the scoring formula relies on.
func (s Scoring) Validate() error {
	if math.Abs(s.KMWeight+s.MaintenanceWeight-1.0) > 1e-9 {
		return fmt.Errorf("scoring weights must sum to 1.0, got %.4f", s.KMWeight+s.MaintenanceWeight)
	}
	if s.KMWeight < 0 || s.MaintenanceWeight < 0 {
		return fmt.Errorf("scoring weights must be non-negative")
	}
	if s.DefaultReferenceKM <= 0 {
		return fmt.Errorf("default reference km must be positive, got %d", s.DefaultReferenceKM)
	}
	if s.MaintenanceCap <= 0 {
		return fmt.Errorf("maintenance cap must be positive, got %d", s.MaintenanceCap)
	}
	for cat, km := range s.ReferenceKM {
		if km <= 0 {
			return fmt.Errorf("reference km for %q must be positive, got %d", cat, km)
		}
	}
	for area, f := range s.AreaFactors {
		if f <= 0 {
			return fmt.Errorf("area factor for %q must be positive, got %f", area, f)
		}
	}
	return nil
}

// ReferenceFor returns the reference kilometers for a category, falling
// back to the default for unknown categories.
func (s Scoring) ReferenceFor(category string) int {
	if km, ok := s.ReferenceKM[category]; ok {
		return km
	}
	return s.DefaultReferenceKM
}

// AreaFactorFor returns the wear multiplier for an operating-area type,
// 1.0 for unknown areas.
func (s Scoring) AreaFactorFor(area string) float64 {
	if f, ok := s.AreaFactors[area]; ok {
		return f
	}
	return 1.0
}
