package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fleetcmd/fleet-command/internal/analytics"
)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// filterFromQuery maps the shared vehicle-filter query parameters onto the
// engine's filter struct. An absent "active" leaves the flag unset.
func filterFromQuery(q url.Values) analytics.VehicleFilter {
	f := analytics.VehicleFilter{
		Command:      q.Get("command"),
		Unit:         q.Get("unit"),
		Battalion:    q.Get("battalion"),
		Vehicle:      q.Get("vehicle"),
		Municipality: q.Get("municipality"),
		Neighborhood: q.Get("neighborhood"),
	}
	if raw := q.Get("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			f.Active = &active
		}
	}
	return f
}

// parseLimit reads the ranking limit, defaulting to 10. Range validation
// belongs to the engine.
func parseLimit(q url.Values) (int, error) {
	raw := q.Get("limit")
	if raw == "" {
		return 10, nil
	}
	return strconv.Atoi(raw)
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
