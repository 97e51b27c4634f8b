package analytics

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/fleetcmd/fleet-command/internal/models"
)

// Top-N ranking limits accepted from callers.
const (
	MinRankLimit = 1
	MaxRankLimit = 50
)

// ErrLimitOutOfRange rejects ranking limits outside [MinRankLimit, MaxRankLimit].
var ErrLimitOutOfRange = errors.New("ranking limit must be between 1 and 50")

// KPIs are the fleet-wide dashboard headline numbers.
type KPIs struct {
	FleetTotal      int     `json:"fleet_total"`
	PctActive       float64 `json:"pct_active"`
	AvgWearScore    float64 `json:"avg_wear_score"`
	MonthHoursTotal int     `json:"month_hours_total"`
}

// CategoryBreakdown aggregates wear and usage per vehicle category.
type CategoryBreakdown struct {
	Category         string  `json:"category"`
	AvgScore         float64 `json:"avg_score"`
	Total            int     `json:"total"`
	Active           int     `json:"active"`
	Critical         int     `json:"critical"`
	Attention        int     `json:"attention"`
	Adequate         int     `json:"adequate"`
	AvgOdometerKM    float64 `json:"avg_odometer_km"`
	AvgMonthHours    float64 `json:"avg_month_hours"`
	AvgMaintenance6M float64 `json:"avg_maintenance_6m"`
}

// CategoryValue aggregates estimated market value per category.
type CategoryValue struct {
	Category   string  `json:"category"`
	AvgValue   float64 `json:"avg_value"`
	TotalValue float64 `json:"total_value"`
}

// RankedVehicle is one row of a top-N ranking.
type RankedVehicle struct {
	VehicleID    string `json:"vehicle_id"`
	Prefix       string `json:"prefix"`
	Plate        string `json:"plate"`
	Category     string `json:"category"`
	Organization string `json:"organization"`
	Value        int    `json:"value"`
}

// Reporter derives dashboard aggregates from a vehicle snapshot. All
// averages are computed on raw values and rounded only when the result is
// assembled, so rounding error never compounds across aggregates.
type Reporter struct {
	scorer *Scorer
}

// NewReporter builds a reporter on top of a scorer.
func NewReporter(scorer *Scorer) *Reporter {
	return &Reporter{scorer: scorer}
}

// KPIs computes the fleet headline numbers. Empty snapshots yield zeros,
// never a division fault.
func (r *Reporter) KPIs(vehicles []models.Vehicle) KPIs {
	k := KPIs{FleetTotal: len(vehicles)}
	if len(vehicles) == 0 {
		return k
	}

	active := 0
	scores := make([]float64, len(vehicles))
	for i, v := range vehicles {
		if v.Active {
			active++
		}
		score, _ := r.scorer.Score(v)
		scores[i] = float64(score)
		k.MonthHoursTotal += v.MonthHours
	}
	k.PctActive = round1(float64(active) / float64(len(vehicles)) * 100)
	k.AvgWearScore = round1(stat.Mean(scores, nil))
	return k
}

// ByCategory aggregates per distinct category, ordered by mean wear score
// descending. The sort is stable, so tied categories keep first-encounter
// order.
func (r *Reporter) ByCategory(vehicles []models.Vehicle) []CategoryBreakdown {
	type acc struct {
		breakdown CategoryBreakdown
		scores    []float64
		odometer  []float64
		hours     []float64
		maint     []float64
	}
	var order []string
	groups := make(map[string]*acc)

	for _, v := range vehicles {
		g, ok := groups[v.Category]
		if !ok {
			g = &acc{breakdown: CategoryBreakdown{Category: v.Category}}
			groups[v.Category] = g
			order = append(order, v.Category)
		}
		score, band := r.scorer.Score(v)
		g.breakdown.Total++
		if v.Active {
			g.breakdown.Active++
		}
		switch band {
		case BandCritical:
			g.breakdown.Critical++
		case BandAttention:
			g.breakdown.Attention++
		default:
			g.breakdown.Adequate++
		}
		g.scores = append(g.scores, float64(score))
		g.odometer = append(g.odometer, float64(v.OdometerKM))
		g.hours = append(g.hours, float64(v.MonthHours))
		g.maint = append(g.maint, float64(v.Maintenance6M))
	}

	out := make([]CategoryBreakdown, 0, len(order))
	means := make(map[string]float64, len(order))
	for _, cat := range order {
		g := groups[cat]
		mean := stat.Mean(g.scores, nil)
		means[cat] = mean
		g.breakdown.AvgScore = round1(mean)
		g.breakdown.AvgOdometerKM = math.Round(stat.Mean(g.odometer, nil))
		g.breakdown.AvgMonthHours = round1(stat.Mean(g.hours, nil))
		g.breakdown.AvgMaintenance6M = round1(stat.Mean(g.maint, nil))
		out = append(out, g.breakdown)
	}
	// Sort on the raw mean, not the rounded display value.
	sort.SliceStable(out, func(i, j int) bool {
		return means[out[i].Category] > means[out[j].Category]
	})
	return out
}

// ValueByCategory rolls up estimated market value per category, in
// first-encounter category order.
func (r *Reporter) ValueByCategory(vehicles []models.Vehicle) []CategoryValue {
	var order []string
	totals := make(map[string]float64)
	counts := make(map[string]int)
	for _, v := range vehicles {
		if _, ok := counts[v.Category]; !ok {
			order = append(order, v.Category)
		}
		totals[v.Category] += v.EstimatedValue
		counts[v.Category]++
	}
	out := make([]CategoryValue, 0, len(order))
	for _, cat := range order {
		out = append(out, CategoryValue{
			Category:   cat,
			AvgValue:   round2(totals[cat] / float64(counts[cat])),
			TotalValue: round2(totals[cat]),
		})
	}
	return out
}

// TopByOdometer ranks vehicles by cumulative odometer reading.
func (r *Reporter) TopByOdometer(vehicles []models.Vehicle, orgs *OrgIndex, limit int) ([]RankedVehicle, error) {
	return topBy(vehicles, orgs, limit, func(v models.Vehicle) int { return v.OdometerKM })
}

// TopByMonthHours ranks vehicles by current-month operating hours.
func (r *Reporter) TopByMonthHours(vehicles []models.Vehicle, orgs *OrgIndex, limit int) ([]RankedVehicle, error) {
	return topBy(vehicles, orgs, limit, func(v models.Vehicle) int { return v.MonthHours })
}

// TopByMaintenance ranks vehicles by trailing 6-month maintenance count.
func (r *Reporter) TopByMaintenance(vehicles []models.Vehicle, orgs *OrgIndex, limit int) ([]RankedVehicle, error) {
	return topBy(vehicles, orgs, limit, func(v models.Vehicle) int { return v.Maintenance6M })
}

// topBy sorts descending on the ranked field and truncates. The sort is
// stable: ties keep snapshot order.
func topBy(vehicles []models.Vehicle, orgs *OrgIndex, limit int, key func(models.Vehicle) int) ([]RankedVehicle, error) {
	if limit < MinRankLimit || limit > MaxRankLimit {
		return nil, ErrLimitOutOfRange
	}
	ranked := make([]models.Vehicle, len(vehicles))
	copy(ranked, vehicles)
	sort.SliceStable(ranked, func(i, j int) bool {
		return key(ranked[i]) > key(ranked[j])
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]RankedVehicle, len(ranked))
	for i, v := range ranked {
		out[i] = RankedVehicle{
			VehicleID:    v.ID.Hex(),
			Prefix:       v.Prefix,
			Plate:        v.Plate,
			Category:     v.Category,
			Organization: orgs.Name(v.OrganizationID.Hex()),
			Value:        key(v),
		}
	}
	return out, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
