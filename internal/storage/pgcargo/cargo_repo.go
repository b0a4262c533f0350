package pgcargo

import (
	"context"

	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/pkg/errors"
)

const cargoColumns = `id, type, weight, weight_unit, value, volume, description, shipment_id`

func scanCargo(row rowScanner) (*models.Cargo, error) {
	var c models.Cargo
	if err := row.Scan(
		&c.ID, &c.Type, &c.Weight, &c.WeightUnit,
		&c.Value, &c.Volume, &c.Description, &c.ShipmentID,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Storage) CreateCargo(ctx context.Context, c *models.Cargo) error {
	err := s.db.QueryRow(ctx, `
INSERT INTO cargo (type, weight, weight_unit, value, volume, description, shipment_id)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id
`, c.Type, c.Weight, c.WeightUnit, c.Value, c.Volume, c.Description, c.ShipmentID).Scan(&c.ID)
	return mapErr(err, "insert cargo")
}

func (s *Storage) UpdateCargo(ctx context.Context, c *models.Cargo) error {
	tag, err := s.db.Exec(ctx, `
UPDATE cargo
SET
  type = $2,
  weight = $3,
  weight_unit = $4,
  value = $5,
  volume = $6,
  description = $7,
  shipment_id = $8
WHERE id = $1
`, c.ID, c.Type, c.Weight, c.WeightUnit, c.Value, c.Volume, c.Description, c.ShipmentID)
	return affected(tag, err, "update cargo")
}

func (s *Storage) DeleteCargo(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM cargo WHERE id = $1`, id)
	return affected(tag, err, "delete cargo")
}

func (s *Storage) GetCargo(ctx context.Context, id int64) (*models.Cargo, error) {
	c, err := scanCargo(s.db.QueryRow(ctx, `SELECT `+cargoColumns+` FROM cargo WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err, "select cargo")
	}
	return c, nil
}

func (s *Storage) ListCargo(ctx context.Context, f models.CargoFilter) ([]*models.Cargo, error) {
	var w where
	if f.Type != "" {
		w.eq("type", f.Type)
	}
	if f.ShipmentID != nil {
		w.eq("shipment_id", *f.ShipmentID)
	}

	rows, err := s.db.Query(ctx, `SELECT `+cargoColumns+` FROM cargo `+w.String()+` ORDER BY id`, w.args...)
	if err != nil {
		return nil, errors.Wrap(err, "select cargo")
	}
	defer rows.Close()

	out := []*models.Cargo{}
	for rows.Next() {
		c, err := scanCargo(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan cargo")
		}
		out = append(out, c)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
