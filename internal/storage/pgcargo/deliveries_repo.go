package pgcargo

import (
	"context"

	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/pkg/errors"
)

const deliveryColumns = `id, shipment_id, actual_delivery_date, recipient, status`

func scanDelivery(row rowScanner) (*models.Delivery, error) {
	var d models.Delivery
	if err := row.Scan(&d.ID, &d.ShipmentID, &d.ActualDeliveryDate, &d.Recipient, &d.Status); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Storage) CreateDelivery(ctx context.Context, d *models.Delivery) error {
	err := s.db.QueryRow(ctx, `
INSERT INTO deliveries (shipment_id, actual_delivery_date, recipient, status)
VALUES ($1,$2,$3,$4)
RETURNING id
`, d.ShipmentID, d.ActualDeliveryDate, d.Recipient, d.Status).Scan(&d.ID)
	return mapErr(err, "insert delivery")
}

func (s *Storage) UpdateDelivery(ctx context.Context, d *models.Delivery) error {
	tag, err := s.db.Exec(ctx, `
UPDATE deliveries
SET shipment_id = $2, actual_delivery_date = $3, recipient = $4, status = $5
WHERE id = $1
`, d.ID, d.ShipmentID, d.ActualDeliveryDate, d.Recipient, d.Status)
	return affected(tag, err, "update delivery")
}

func (s *Storage) DeleteDelivery(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM deliveries WHERE id = $1`, id)
	return affected(tag, err, "delete delivery")
}

func (s *Storage) GetDelivery(ctx context.Context, id int64) (*models.Delivery, error) {
	d, err := scanDelivery(s.db.QueryRow(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err, "select delivery")
	}
	return d, nil
}

func (s *Storage) ListDeliveries(ctx context.Context, f models.DeliveryFilter) ([]*models.Delivery, error) {
	var w where
	if f.Status != "" {
		w.eq("status", f.Status)
	}
	if f.ShipmentID != nil {
		w.eq("shipment_id", *f.ShipmentID)
	}

	rows, err := s.db.Query(ctx, `SELECT `+deliveryColumns+` FROM deliveries `+w.String()+` ORDER BY id`, w.args...)
	if err != nil {
		return nil, errors.Wrap(err, "select deliveries")
	}
	defer rows.Close()

	out := []*models.Delivery{}
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan delivery")
		}
		out = append(out, d)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
