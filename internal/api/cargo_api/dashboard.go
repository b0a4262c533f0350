package cargo_api

import (
	"net/http"
	"strconv"

	"github.com/BearBump/CargoFlow/internal/apperr"
	"github.com/BearBump/CargoFlow/internal/broker/messages"
)

func (a *API) dashboardMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := a.Logistics.DashboardMetrics(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *API) recentActivities(w http.ResponseWriter, r *http.Request) {
	items, err := a.Logistics.RecentActivities(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

// recentEvents reads the activity feed the worker maintains.
func (a *API) recentEvents(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			a.writeError(w, r, apperr.Validation("Validation failed", map[string]string{"limit": "Must be a positive integer"}))
			return
		}
		limit = n
	}
	if a.Feed == nil {
		writeJSON(w, http.StatusOK, []messages.EntityEvent{})
		return
	}
	evs, err := a.Feed.Latest(r.Context(), limit)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(evs))
}
