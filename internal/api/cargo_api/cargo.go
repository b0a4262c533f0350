package cargo_api

import (
	"net/http"

	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/go-chi/chi/v5"
)

func (a *API) listCargo(w http.ResponseWriter, r *http.Request) {
	a.serveCargo(w, r, models.CargoFilter{})
}

func (a *API) listCargoByType(w http.ResponseWriter, r *http.Request) {
	a.serveCargo(w, r, models.CargoFilter{Type: chi.URLParam(r, "type")})
}

func (a *API) listCargoByShipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "shipmentId")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.serveCargo(w, r, models.CargoFilter{ShipmentID: &id})
}

func (a *API) serveCargo(w http.ResponseWriter, r *http.Request, f models.CargoFilter) {
	items, err := a.Logistics.ListCargo(r.Context(), f)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeList(w, items)
}

func (a *API) getCargo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.Logistics.GetCargo(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) createCargo(w http.ResponseWriter, r *http.Request) {
	var in models.Cargo
	if err := a.decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.Logistics.CreateCargo(r.Context(), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (a *API) updateCargo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var in models.Cargo
	if err := a.decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.Logistics.UpdateCargo(r.Context(), id, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) deleteCargo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	res, err := a.Logistics.DeleteCargo(r.Context(), id)
	a.writeDelete(w, r, res, err)
}

// writeDelete serves a failed DeleteResult as 404 with the result as body.
func (a *API) writeDelete(w http.ResponseWriter, r *http.Request, res models.DeleteResult, err error) {
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if !res.Success {
		writeJSON(w, http.StatusNotFound, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
