package pgcargo

import (
	"context"

	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/pkg/errors"
)

const routeColumns = `id, origin_port, destination_port, duration, distance, cost, transportation_mode, status`

func scanRoute(row rowScanner) (*models.Route, error) {
	var r models.Route
	if err := row.Scan(
		&r.ID, &r.OriginPort, &r.DestinationPort, &r.Duration,
		&r.Distance, &r.Cost, &r.TransportationMode, &r.Status,
	); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Storage) CreateRoute(ctx context.Context, r *models.Route) error {
	err := s.db.QueryRow(ctx, `
INSERT INTO routes (origin_port, destination_port, duration, distance, cost, transportation_mode, status)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id
`, r.OriginPort, r.DestinationPort, r.Duration, r.Distance, r.Cost, r.TransportationMode, r.Status).Scan(&r.ID)
	return mapErr(err, "insert route")
}

func (s *Storage) UpdateRoute(ctx context.Context, r *models.Route) error {
	tag, err := s.db.Exec(ctx, `
UPDATE routes
SET
  origin_port = $2,
  destination_port = $3,
  duration = $4,
  distance = $5,
  cost = $6,
  transportation_mode = $7,
  status = $8
WHERE id = $1
`, r.ID, r.OriginPort, r.DestinationPort, r.Duration, r.Distance, r.Cost, r.TransportationMode, r.Status)
	return affected(tag, err, "update route")
}

func (s *Storage) DeleteRoute(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM routes WHERE id = $1`, id)
	return affected(tag, err, "delete route")
}

func (s *Storage) GetRoute(ctx context.Context, id int64) (*models.Route, error) {
	r, err := scanRoute(s.db.QueryRow(ctx, `SELECT `+routeColumns+` FROM routes WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err, "select route")
	}
	return r, nil
}

func (s *Storage) ListRoutes(ctx context.Context, f models.RouteFilter) ([]*models.Route, error) {
	var w where
	if f.Status != "" {
		w.eq("status", f.Status)
	}
	if f.TransportationMode != "" {
		w.eq("transportation_mode", f.TransportationMode)
	}
	if f.OriginPort != "" {
		w.eq("origin_port", f.OriginPort)
	}
	if f.DestinationPort != "" {
		w.eq("destination_port", f.DestinationPort)
	}

	rows, err := s.db.Query(ctx, `SELECT `+routeColumns+` FROM routes `+w.String()+` ORDER BY id`, w.args...)
	if err != nil {
		return nil, errors.Wrap(err, "select routes")
	}
	defer rows.Close()

	out := []*models.Route{}
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan route")
		}
		out = append(out, r)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
