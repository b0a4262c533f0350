package cargo_api

import (
	"net/http"

	"github.com/BearBump/CargoFlow/internal/apperr"
	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/go-chi/chi/v5"
)

type routeSearch struct {
	Origin      string `json:"origin" validate:"required"`
	Destination string `json:"destination" validate:"required"`
}

func (a *API) listRoutes(w http.ResponseWriter, r *http.Request) {
	a.serveRoutes(w, r, models.RouteFilter{})
}

func (a *API) listRoutesByStatus(w http.ResponseWriter, r *http.Request) {
	a.serveRoutes(w, r, models.RouteFilter{Status: chi.URLParam(r, "status")})
}

func (a *API) listRoutesByMode(w http.ResponseWriter, r *http.Request) {
	a.serveRoutes(w, r, models.RouteFilter{TransportationMode: chi.URLParam(r, "mode")})
}

func (a *API) searchRoutes(w http.ResponseWriter, r *http.Request) {
	q := routeSearch{
		Origin:      r.URL.Query().Get("origin"),
		Destination: r.URL.Query().Get("destination"),
	}
	if err := a.check(q); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.serveRoutes(w, r, models.RouteFilter{OriginPort: q.Origin, DestinationPort: q.Destination})
}

func (a *API) serveRoutes(w http.ResponseWriter, r *http.Request, f models.RouteFilter) {
	items, err := a.Logistics.ListRoutes(r.Context(), f)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeList(w, items)
}

func (a *API) getRoute(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	rt, err := a.Logistics.GetRoute(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (a *API) createRoute(w http.ResponseWriter, r *http.Request) {
	var in models.Route
	if err := a.decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	rt, err := a.Logistics.CreateRoute(r.Context(), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rt)
}

func (a *API) updateRoute(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var in models.Route
	if err := a.decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	rt, err := a.Logistics.UpdateRoute(r.Context(), id, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (a *API) updateRouteStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	status := r.URL.Query().Get("status")
	if status == "" {
		a.writeError(w, r, apperr.Validation("Validation failed", map[string]string{"status": "Query parameter is required"}))
		return
	}
	rt, err := a.Logistics.UpdateRouteStatus(r.Context(), id, status)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (a *API) deleteRoute(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	res, err := a.Logistics.DeleteRoute(r.Context(), id)
	a.writeDelete(w, r, res, err)
}
