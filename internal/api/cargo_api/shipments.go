package cargo_api

import (
	"net/http"

	"github.com/BearBump/CargoFlow/internal/apperr"
	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/go-chi/chi/v5"
)

func (a *API) listShipments(w http.ResponseWriter, r *http.Request) {
	a.serveShipments(w, r, models.ShipmentFilter{})
}

func (a *API) listShipmentsByStatus(w http.ResponseWriter, r *http.Request) {
	a.serveShipments(w, r, models.ShipmentFilter{Status: chi.URLParam(r, "status")})
}

func (a *API) serveShipments(w http.ResponseWriter, r *http.Request, f models.ShipmentFilter) {
	items, err := a.Logistics.ListShipments(r.Context(), f)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeList(w, items)
}

func (a *API) getShipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	sh, err := a.Logistics.GetShipment(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

func (a *API) createShipment(w http.ResponseWriter, r *http.Request) {
	var in models.Shipment
	if err := a.decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	sh, err := a.Logistics.CreateShipment(r.Context(), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sh)
}

func (a *API) updateShipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var in models.Shipment
	if err := a.decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	sh, err := a.Logistics.UpdateShipment(r.Context(), id, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

func (a *API) updateShipmentStatus(w http.ResponseWriter, r *http.Request) {
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
	sh, err := a.Logistics.UpdateShipmentStatus(r.Context(), id, status)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

func (a *API) deleteShipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	res, err := a.Logistics.DeleteShipment(r.Context(), id)
	a.writeDelete(w, r, res, err)
}
