// Package analytics implements the fleet analytics engine: wear scoring,
// organization-hierarchy filtering, dashboard aggregation, disposal
// recommendations and geographic feature assembly. Every entry point is a
// pure function of its inputs plus the injected scoring tables, so
// independent requests can run concurrently without coordination.
package analytics

import (
	"math"

	"github.com/fleetcmd/fleet-command/internal/config"
	"github.com/fleetcmd/fleet-command/internal/models"
)

// Band is the qualitative wear bucket derived from the score.
type Band string

const (
	BandCritical  Band = "Critical"
	BandAttention Band = "Attention"
	BandAdequate  Band = "Adequate"
)

// Band thresholds: scores below 60 are critical, below 80 need attention.
const (
	attentionThreshold = 60
	adequateThreshold  = 80
)

// Scorer computes the 0-100 wear score of a vehicle. 100 means least worn.
type Scorer struct {
	cfg config.Scoring
}

// NewScorer builds a scorer over validated reference tables.
func NewScorer(cfg config.Scoring) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// Config exposes the reference tables for introspection endpoints.
func (s *Scorer) Config() config.Scoring {
	return s.cfg
}

// Score maps a vehicle to its wear score and band. Odometer reading and
// maintenance frequency are normalized against the category reference and
// the maintenance cap, blended by the configured weights and amplified by
// the operating-area factor. Unknown categories and areas use defaults;
// scoring never fails.
//
// The final value rounds half away from zero before clamping to [0, 100].
func (s *Scorer) Score(v models.Vehicle) (int, Band) {
	ref := s.cfg.ReferenceFor(v.Category)
	kmNorm := math.Min(float64(v.OdometerKM)/float64(ref), 1.0)
	mntNorm := math.Min(float64(v.Maintenance6M)/float64(s.cfg.MaintenanceCap), 1.0)

	wear := (s.cfg.KMWeight*kmNorm + s.cfg.MaintenanceWeight*mntNorm) * s.cfg.AreaFactorFor(v.AreaType)

	raw := 100 * (1 - wear)
	if raw < 0 {
		raw = 0
	}
	if raw > 100 {
		raw = 100
	}
	score := int(math.Round(raw))
	return score, BandFor(score)
}

// BandFor buckets a score: <60 Critical, <80 Attention, otherwise Adequate.
func BandFor(score int) Band {
	switch {
	case score < attentionThreshold:
		return BandCritical
	case score < adequateThreshold:
		return BandAttention
	default:
		return BandAdequate
	}
}
