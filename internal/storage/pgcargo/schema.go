package pgcargo

import (
	"context"

	"github.com/pkg/errors"
)

func (s *Storage) initSchema(ctx context.Context) error {
	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS routes (
  id BIGSERIAL PRIMARY KEY,
  origin_port TEXT NOT NULL,
  destination_port TEXT NOT NULL,
  duration INT NOT NULL DEFAULT 0,
  distance DOUBLE PRECISION NOT NULL DEFAULT 0,
  cost DOUBLE PRECISION NOT NULL DEFAULT 0,
  transportation_mode TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT ''
)`,
		`CREATE INDEX IF NOT EXISTS idx_routes_status ON routes(status)`,
		`CREATE INDEX IF NOT EXISTS idx_routes_ports ON routes(origin_port, destination_port)`,
		`
CREATE TABLE IF NOT EXISTS vendors (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  contact_info TEXT NOT NULL DEFAULT '',
  service_type TEXT NOT NULL DEFAULT '',
  is_active BOOLEAN NOT NULL DEFAULT false
)`,
		`CREATE INDEX IF NOT EXISTS idx_vendors_service_type ON vendors(service_type)`,
		// Routes in use are guarded by the service; RESTRICT is the backstop.
		`
CREATE TABLE IF NOT EXISTS shipments (
  id BIGSERIAL PRIMARY KEY,
  origin TEXT NOT NULL,
  destination TEXT NOT NULL,
  status TEXT NOT NULL,
  estimated_delivery DATE NULL,
  shipment_code TEXT NOT NULL DEFAULT '',
  route_id BIGINT NULL REFERENCES routes(id) ON DELETE RESTRICT,
  vendor_id BIGINT NULL REFERENCES vendors(id) ON DELETE SET NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_shipments_status ON shipments(status)`,
		`CREATE INDEX IF NOT EXISTS idx_shipments_route_id ON shipments(route_id)`,
		// Deleting a shipment never deletes its cargo or delivery; they are unlinked.
		`
CREATE TABLE IF NOT EXISTS cargo (
  id BIGSERIAL PRIMARY KEY,
  type TEXT NOT NULL,
  weight DOUBLE PRECISION NOT NULL,
  weight_unit TEXT NOT NULL DEFAULT '',
  value DOUBLE PRECISION NOT NULL,
  volume DOUBLE PRECISION NULL,
  description TEXT NOT NULL DEFAULT '',
  shipment_id BIGINT NULL REFERENCES shipments(id) ON DELETE SET NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_cargo_shipment_id ON cargo(shipment_id)`,
		`CREATE INDEX IF NOT EXISTS idx_cargo_type ON cargo(type)`,
		`
CREATE TABLE IF NOT EXISTS deliveries (
  id BIGSERIAL PRIMARY KEY,
  shipment_id BIGINT NULL REFERENCES shipments(id) ON DELETE SET NULL,
  actual_delivery_date TIMESTAMPTZ NULL,
  recipient TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT ''
)`,
		// One delivery per shipment. NULLs (orphans) do not collide.
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_deliveries_shipment_id ON deliveries(shipment_id)`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_status ON deliveries(status)`,
		`
CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  email TEXT NOT NULL,
  password_hash TEXT NULL,
  name TEXT NOT NULL DEFAULT '',
  picture TEXT NOT NULL DEFAULT '',
  provider TEXT NOT NULL,
  role TEXT NOT NULL,
  is_active BOOLEAN NOT NULL DEFAULT false,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)`,
	}

	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}
