package pgcargo

import (
	"context"
	"log/slog"
	"time"

	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/pkg/errors"
)

const shipmentColumns = `id, origin, destination, status, estimated_delivery, shipment_code, route_id, vendor_id`

func scanShipment(row rowScanner) (*models.Shipment, error) {
	var sh models.Shipment
	var status string
	var eta *time.Time
	if err := row.Scan(
		&sh.ID, &sh.Origin, &sh.Destination, &status,
		&eta, &sh.ShipmentCode, &sh.RouteID, &sh.VendorID,
	); err != nil {
		return nil, err
	}
	st, ok := models.ParseShipmentStatus(status)
	if !ok {
		slog.Warn("legacy shipment status", "shipment_id", sh.ID, "status", status)
	}
	sh.Status = st
	if eta != nil {
		d := models.DateOf(*eta)
		sh.EstimatedDelivery = &d
	}
	return &sh, nil
}

func etaArg(d *models.Date) any {
	if d == nil {
		return nil
	}
	return d.Time
}

func (s *Storage) CreateShipment(ctx context.Context, sh *models.Shipment) error {
	err := s.db.QueryRow(ctx, `
INSERT INTO shipments (origin, destination, status, estimated_delivery, shipment_code, route_id, vendor_id)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id
`, sh.Origin, sh.Destination, string(sh.Status), etaArg(sh.EstimatedDelivery), sh.ShipmentCode, sh.RouteID, sh.VendorID).Scan(&sh.ID)
	return mapErr(err, "insert shipment")
}

func (s *Storage) UpdateShipment(ctx context.Context, sh *models.Shipment) error {
	tag, err := s.db.Exec(ctx, `
UPDATE shipments
SET
  origin = $2,
  destination = $3,
  status = $4,
  estimated_delivery = $5,
  shipment_code = $6,
  route_id = $7,
  vendor_id = $8
WHERE id = $1
`, sh.ID, sh.Origin, sh.Destination, string(sh.Status), etaArg(sh.EstimatedDelivery), sh.ShipmentCode, sh.RouteID, sh.VendorID)
	return affected(tag, err, "update shipment")
}

func (s *Storage) DeleteShipment(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM shipments WHERE id = $1`, id)
	return affected(tag, err, "delete shipment")
}

func (s *Storage) GetShipment(ctx context.Context, id int64) (*models.Shipment, error) {
	sh, err := scanShipment(s.db.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err, "select shipment")
	}
	return sh, nil
}

func (s *Storage) ListShipments(ctx context.Context, f models.ShipmentFilter) ([]*models.Shipment, error) {
	var w where
	if f.Status != "" {
		w.eq("status", f.Status)
	}

	rows, err := s.db.Query(ctx, `SELECT `+shipmentColumns+` FROM shipments `+w.String()+` ORDER BY id`, w.args...)
	if err != nil {
		return nil, errors.Wrap(err, "select shipments")
	}
	defer rows.Close()

	out := []*models.Shipment{}
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan shipment")
		}
		out = append(out, sh)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) CountShipmentsUsingRoute(ctx context.Context, routeID int64) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM shipments WHERE route_id = $1`, routeID).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, "count shipments by route")
	}
	return n, nil
}
