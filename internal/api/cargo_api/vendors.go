package cargo_api

import (
	"net/http"

	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/go-chi/chi/v5"
)

func (a *API) listVendors(w http.ResponseWriter, r *http.Request) {
	a.serveVendors(w, r, models.VendorFilter{})
}

func (a *API) listVendorsByServiceType(w http.ResponseWriter, r *http.Request) {
	a.serveVendors(w, r, models.VendorFilter{ServiceType: chi.URLParam(r, "serviceType")})
}

func (a *API) listActiveVendors(w http.ResponseWriter, r *http.Request) {
	active := true
	a.serveVendors(w, r, models.VendorFilter{IsActive: &active})
}

func (a *API) serveVendors(w http.ResponseWriter, r *http.Request, f models.VendorFilter) {
	items, err := a.Logistics.ListVendors(r.Context(), f)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeList(w, items)
}

func (a *API) getVendor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	v, err := a.Logistics.GetVendor(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *API) createVendor(w http.ResponseWriter, r *http.Request) {
	var in models.Vendor
	if err := a.decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	v, err := a.Logistics.CreateVendor(r.Context(), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (a *API) updateVendor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var in models.Vendor
	if err := a.decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	v, err := a.Logistics.UpdateVendor(r.Context(), id, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *API) updateVendorStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	active, err := queryBool(r, "isActive")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	v, err := a.Logistics.SetVendorActive(r.Context(), id, active)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *API) deleteVendor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	res, err := a.Logistics.DeleteVendor(r.Context(), id)
	a.writeDelete(w, r, res, err)
}
