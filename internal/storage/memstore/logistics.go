package memstore

import (
	"context"

	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/BearBump/CargoFlow/internal/storage"
)

func copyCargo(c models.Cargo) *models.Cargo {
	c.Volume = clone(c.Volume)
	c.ShipmentID = clone(c.ShipmentID)
	return &c
}

func copyShipment(sh models.Shipment) *models.Shipment {
	sh.EstimatedDelivery = clone(sh.EstimatedDelivery)
	sh.RouteID = clone(sh.RouteID)
	sh.VendorID = clone(sh.VendorID)
	return &sh
}

func copyDelivery(d models.Delivery) *models.Delivery {
	d.ShipmentID = clone(d.ShipmentID)
	d.ActualDeliveryDate = clone(d.ActualDeliveryDate)
	return &d
}

// Cargo

func (s *MemoryStore) CreateCargo(ctx context.Context, c *models.Cargo) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ShipmentID != nil {
		if _, ok := s.shipments.rows[*c.ShipmentID]; !ok {
			return storage.ErrReferenced
		}
	}
	c.ID = s.cargo.insert(models.Cargo{})
	s.cargo.rows[c.ID] = *copyCargo(*c)
	return nil
}

func (s *MemoryStore) UpdateCargo(ctx context.Context, c *models.Cargo) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cargo.rows[c.ID]; !ok {
		return storage.ErrNotFound
	}
	if c.ShipmentID != nil {
		if _, ok := s.shipments.rows[*c.ShipmentID]; !ok {
			return storage.ErrReferenced
		}
	}
	s.cargo.rows[c.ID] = *copyCargo(*c)
	return nil
}

func (s *MemoryStore) DeleteCargo(ctx context.Context, id int64) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cargo.rows[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.cargo.rows, id)
	return nil
}

func (s *MemoryStore) GetCargo(ctx context.Context, id int64) (*models.Cargo, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cargo.rows[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyCargo(c), nil
}

func (s *MemoryStore) ListCargo(ctx context.Context, f models.CargoFilter) ([]*models.Cargo, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Cargo{}
	for _, id := range s.cargo.ids() {
		c := s.cargo.rows[id]
		if f.Type != "" && c.Type != f.Type {
			continue
		}
		if f.ShipmentID != nil && !sameID(c.ShipmentID, f.ShipmentID) {
			continue
		}
		out = append(out, copyCargo(c))
	}
	return out, nil
}

// Shipments

func (s *MemoryStore) checkShipmentRefs(sh *models.Shipment) error {
	if sh.RouteID != nil {
		if _, ok := s.routes.rows[*sh.RouteID]; !ok {
			return storage.ErrReferenced
		}
	}
	if sh.VendorID != nil {
		if _, ok := s.vendors.rows[*sh.VendorID]; !ok {
			return storage.ErrReferenced
		}
	}
	return nil
}

func (s *MemoryStore) CreateShipment(ctx context.Context, sh *models.Shipment) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkShipmentRefs(sh); err != nil {
		return err
	}
	sh.ID = s.shipments.insert(models.Shipment{})
	s.shipments.rows[sh.ID] = *copyShipment(*sh)
	return nil
}

func (s *MemoryStore) UpdateShipment(ctx context.Context, sh *models.Shipment) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shipments.rows[sh.ID]; !ok {
		return storage.ErrNotFound
	}
	if err := s.checkShipmentRefs(sh); err != nil {
		return err
	}
	s.shipments.rows[sh.ID] = *copyShipment(*sh)
	return nil
}

func (s *MemoryStore) DeleteShipment(ctx context.Context, id int64) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shipments.rows[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.shipments.rows, id)
	for cid, c := range s.cargo.rows {
		if c.ShipmentID != nil && *c.ShipmentID == id {
			c.ShipmentID = nil
			s.cargo.rows[cid] = c
		}
	}
	for did, d := range s.deliveries.rows {
		if d.ShipmentID != nil && *d.ShipmentID == id {
			d.ShipmentID = nil
			s.deliveries.rows[did] = d
		}
	}
	return nil
}

func (s *MemoryStore) GetShipment(ctx context.Context, id int64) (*models.Shipment, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shipments.rows[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyShipment(sh), nil
}

func (s *MemoryStore) ListShipments(ctx context.Context, f models.ShipmentFilter) ([]*models.Shipment, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Shipment{}
	for _, id := range s.shipments.ids() {
		sh := s.shipments.rows[id]
		if f.Status != "" && string(sh.Status) != f.Status {
			continue
		}
		out = append(out, copyShipment(sh))
	}
	return out, nil
}

func (s *MemoryStore) CountShipmentsUsingRoute(ctx context.Context, routeID int64) (int64, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, sh := range s.shipments.rows {
		if sh.RouteID != nil && *sh.RouteID == routeID {
			n++
		}
	}
	return n, nil
}

// Routes

func (s *MemoryStore) CreateRoute(ctx context.Context, r *models.Route) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.routes.insert(models.Route{})
	s.routes.rows[r.ID] = *r
	return nil
}

func (s *MemoryStore) UpdateRoute(ctx context.Context, r *models.Route) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.routes.rows[r.ID]; !ok {
		return storage.ErrNotFound
	}
	s.routes.rows[r.ID] = *r
	return nil
}

func (s *MemoryStore) DeleteRoute(ctx context.Context, id int64) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.routes.rows[id]; !ok {
		return storage.ErrNotFound
	}
	for _, sh := range s.shipments.rows {
		if sh.RouteID != nil && *sh.RouteID == id {
			return storage.ErrReferenced
		}
	}
	delete(s.routes.rows, id)
	return nil
}

func (s *MemoryStore) GetRoute(ctx context.Context, id int64) (*models.Route, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.routes.rows[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &r, nil
}

func (s *MemoryStore) ListRoutes(ctx context.Context, f models.RouteFilter) ([]*models.Route, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Route{}
	for _, id := range s.routes.ids() {
		r := s.routes.rows[id]
		if (f.Status != "" && r.Status != f.Status) ||
			(f.TransportationMode != "" && r.TransportationMode != f.TransportationMode) ||
			(f.OriginPort != "" && r.OriginPort != f.OriginPort) ||
			(f.DestinationPort != "" && r.DestinationPort != f.DestinationPort) {
			continue
		}
		out = append(out, &r)
	}
	return out, nil
}

// Vendors

func (s *MemoryStore) CreateVendor(ctx context.Context, v *models.Vendor) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = s.vendors.insert(models.Vendor{})
	s.vendors.rows[v.ID] = *v
	return nil
}

func (s *MemoryStore) UpdateVendor(ctx context.Context, v *models.Vendor) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vendors.rows[v.ID]; !ok {
		return storage.ErrNotFound
	}
	s.vendors.rows[v.ID] = *v
	return nil
}

func (s *MemoryStore) DeleteVendor(ctx context.Context, id int64) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vendors.rows[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.vendors.rows, id)
	for sid, sh := range s.shipments.rows {
		if sh.VendorID != nil && *sh.VendorID == id {
			sh.VendorID = nil
			s.shipments.rows[sid] = sh
		}
	}
	return nil
}

func (s *MemoryStore) GetVendor(ctx context.Context, id int64) (*models.Vendor, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vendors.rows[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &v, nil
}

func (s *MemoryStore) ListVendors(ctx context.Context, f models.VendorFilter) ([]*models.Vendor, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Vendor{}
	for _, id := range s.vendors.ids() {
		v := s.vendors.rows[id]
		if f.ServiceType != "" && v.ServiceType != f.ServiceType {
			continue
		}
		if f.IsActive != nil && v.IsActive != *f.IsActive {
			continue
		}
		out = append(out, &v)
	}
	return out, nil
}

// Deliveries

func (s *MemoryStore) checkDelivery(d *models.Delivery) error {
	if d.ShipmentID == nil {
		return nil
	}
	if _, ok := s.shipments.rows[*d.ShipmentID]; !ok {
		return storage.ErrReferenced
	}
	for id, other := range s.deliveries.rows {
		if id != d.ID && sameID(other.ShipmentID, d.ShipmentID) {
			return storage.ErrDuplicate
		}
	}
	return nil
}

func (s *MemoryStore) CreateDelivery(ctx context.Context, d *models.Delivery) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = 0
	if err := s.checkDelivery(d); err != nil {
		return err
	}
	d.ID = s.deliveries.insert(models.Delivery{})
	s.deliveries.rows[d.ID] = *copyDelivery(*d)
	return nil
}

func (s *MemoryStore) UpdateDelivery(ctx context.Context, d *models.Delivery) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deliveries.rows[d.ID]; !ok {
		return storage.ErrNotFound
	}
	if err := s.checkDelivery(d); err != nil {
		return err
	}
	s.deliveries.rows[d.ID] = *copyDelivery(*d)
	return nil
}

func (s *MemoryStore) DeleteDelivery(ctx context.Context, id int64) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deliveries.rows[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.deliveries.rows, id)
	return nil
}

func (s *MemoryStore) GetDelivery(ctx context.Context, id int64) (*models.Delivery, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.deliveries.rows[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyDelivery(d), nil
}

func (s *MemoryStore) ListDeliveries(ctx context.Context, f models.DeliveryFilter) ([]*models.Delivery, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Delivery{}
	for _, id := range s.deliveries.ids() {
		d := s.deliveries.rows[id]
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if f.ShipmentID != nil && !sameID(d.ShipmentID, f.ShipmentID) {
			continue
		}
		out = append(out, copyDelivery(d))
	}
	return out, nil
}
