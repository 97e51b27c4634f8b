package analytics

import (
	"strings"

	"github.com/fleetcmd/fleet-command/internal/models"
)

// VehicleFilter narrows a vehicle snapshot. Every field is optional: the
// zero value matches everything. Name fields match case-insensitive
// substrings; Command and Unit expand through the hierarchy so a command
// filter catches vehicles attached to any battalion below it. A name that
// matches no organization imposes no restriction.
type VehicleFilter struct {
	// Command, Unit and Battalion match organization names at their level.
	Command   string
	Unit      string
	Battalion string
	// Vehicle matches the prefix or plate.
	Vehicle string
	// Municipality and Neighborhood match the vehicle's location fields.
	Municipality string
	Neighborhood string
	// Active filters on the active flag when set.
	Active *bool
}

// FilterVehicles applies the filter against a vehicle snapshot, resolving
// organization names through the supplied index. Input order is preserved.
func FilterVehicles(vehicles []models.Vehicle, orgs *OrgIndex, f VehicleFilter) []models.Vehicle {
	allowed := allowedOrgs(orgs, f)

	out := make([]models.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if allowed != nil && !allowed[v.OrganizationID.Hex()] {
			continue
		}
		if f.Vehicle != "" && !containsFold(v.Prefix, f.Vehicle) && !containsFold(v.Plate, f.Vehicle) {
			continue
		}
		if f.Municipality != "" && !containsFold(v.Municipality, f.Municipality) {
			continue
		}
		if f.Neighborhood != "" && !containsFold(v.Neighborhood, f.Neighborhood) {
			continue
		}
		if f.Active != nil && v.Active != *f.Active {
			continue
		}
		out = append(out, v)
	}
	return out
}

// allowedOrgs intersects the organization restrictions of the filter. A nil
// result means no organization restriction applies.
func allowedOrgs(orgs *OrgIndex, f VehicleFilter) map[string]bool {
	var allowed map[string]bool

	restrict := func(ids map[string]bool) {
		if allowed == nil {
			allowed = ids
			return
		}
		for id := range allowed {
			if !ids[id] {
				delete(allowed, id)
			}
		}
	}

	if f.Command != "" {
		if seeds := orgs.MatchIDs(models.OrgCommand, f.Command); len(seeds) > 0 {
			restrict(orgs.Descendants(seeds))
		}
	}
	if f.Unit != "" {
		if seeds := orgs.MatchIDs(models.OrgUnit, f.Unit); len(seeds) > 0 {
			restrict(orgs.Descendants(seeds))
		}
	}
	if f.Battalion != "" {
		// Battalions are leaves; no expansion needed.
		if ids := orgs.MatchIDs(models.OrgBattalion, f.Battalion); len(ids) > 0 {
			set := make(map[string]bool, len(ids))
			for _, id := range ids {
				set[id] = true
			}
			restrict(set)
		}
	}
	return allowed
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
