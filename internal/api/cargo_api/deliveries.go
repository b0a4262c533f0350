package cargo_api

import (
	"net/http"

	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/go-chi/chi/v5"
)

func (a *API) listDeliveries(w http.ResponseWriter, r *http.Request) {
	a.serveDeliveries(w, r, models.DeliveryFilter{})
}

func (a *API) listDeliveriesByStatus(w http.ResponseWriter, r *http.Request) {
	a.serveDeliveries(w, r, models.DeliveryFilter{Status: chi.URLParam(r, "status")})
}

func (a *API) listDeliveriesByShipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "shipmentId")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.serveDeliveries(w, r, models.DeliveryFilter{ShipmentID: &id})
}

func (a *API) serveDeliveries(w http.ResponseWriter, r *http.Request, f models.DeliveryFilter) {
	items, err := a.Logistics.ListDeliveries(r.Context(), f)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeList(w, items)
}

func (a *API) getDelivery(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	d, err := a.Logistics.GetDelivery(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *API) createDelivery(w http.ResponseWriter, r *http.Request) {
	var in models.Delivery
	if err := a.decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	d, err := a.Logistics.CreateDelivery(r.Context(), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (a *API) updateDelivery(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var in models.Delivery
	if err := a.decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	d, err := a.Logistics.UpdateDelivery(r.Context(), id, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *API) deleteDelivery(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	res, err := a.Logistics.DeleteDelivery(r.Context(), id)
	a.writeDelete(w, r, res, err)
}
