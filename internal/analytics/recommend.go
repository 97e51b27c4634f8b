package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/fleetcmd/fleet-command/internal/models"
)

// Savings-estimate policy assumptions. Each maintenance event is costed at
// a flat rate, the 6-month count is doubled to project a year, and the
// estimate is capped at a share of the vehicle's market value. Tunable
// constants, not measurements.
const (
	maintenanceEventCost = 2000.0
	savingsValueCap      = 0.3
)

// Disposal triggers.
const (
	disposalScoreThreshold     = 50
	disposalMaintenanceMin     = 5
	disposalOdometerRefPercent = 0.9
)

// Recommendation flags one vehicle for disposal with the reasons that
// fired and the estimated annual savings.
type Recommendation struct {
	VehicleID        string  `json:"vehicle_id"`
	Prefix           string  `json:"prefix"`
	Plate            string  `json:"plate"`
	Category         string  `json:"category"`
	Organization     string  `json:"organization"`
	Reason           string  `json:"reason"`
	Impact           string  `json:"impact"`
	EstimatedSavings float64 `json:"estimated_savings"`
	WearScore        int     `json:"wear_score"`
}

// Recommender produces disposal recommendations.
type Recommender struct {
	scorer *Scorer
}

// NewRecommender builds a recommender on top of a scorer.
func NewRecommender(scorer *Scorer) *Recommender {
	return &Recommender{scorer: scorer}
}

// Disposals returns the vehicles with at least one disposal trigger fired,
// ordered ascending by wear score so the worst vehicles come first. Fired
// reasons are concatenated in trigger order: low score, excessive
// maintenance, high mileage.
func (r *Recommender) Disposals(vehicles []models.Vehicle, orgs *OrgIndex) []Recommendation {
	out := make([]Recommendation, 0)
	for _, v := range vehicles {
		score, _ := r.scorer.Score(v)
		var reasons []string

		if score < disposalScoreThreshold {
			reasons = append(reasons, fmt.Sprintf("critical wear score (%d)", score))
		}
		if v.Maintenance6M >= disposalMaintenanceMin {
			reasons = append(reasons, fmt.Sprintf("excessive maintenance (%d events in 6 months)", v.Maintenance6M))
		}
		ref := r.scorer.Config().ReferenceFor(v.Category)
		if float64(v.OdometerKM) >= disposalOdometerRefPercent*float64(ref) {
			pct := float64(v.OdometerKM) / float64(ref) * 100
			reasons = append(reasons, fmt.Sprintf("high mileage (%.1f%% of reference life)", pct))
		}
		if len(reasons) == 0 {
			continue
		}

		savings := math.Min(float64(v.Maintenance6M)*2*maintenanceEventCost, v.EstimatedValue*savingsValueCap)
		out = append(out, Recommendation{
			VehicleID:        v.ID.Hex(),
			Prefix:           v.Prefix,
			Plate:            v.Plate,
			Category:         v.Category,
			Organization:     orgs.Name(v.OrganizationID.Hex()),
			Reason:           strings.Join(reasons, "; "),
			Impact:           fmt.Sprintf("estimated savings: %.2f/year", savings),
			EstimatedSavings: round2(savings),
			WearScore:        score,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].WearScore < out[j].WearScore
	})
	return out
}
