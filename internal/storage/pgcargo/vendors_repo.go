package pgcargo

import (
	"context"

	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/pkg/errors"
)

const vendorColumns = `id, name, contact_info, service_type, is_active`

func scanVendor(row rowScanner) (*models.Vendor, error) {
	var v models.Vendor
	if err := row.Scan(&v.ID, &v.Name, &v.ContactInfo, &v.ServiceType, &v.IsActive); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Storage) CreateVendor(ctx context.Context, v *models.Vendor) error {
	err := s.db.QueryRow(ctx, `
INSERT INTO vendors (name, contact_info, service_type, is_active)
VALUES ($1,$2,$3,$4)
RETURNING id
`, v.Name, v.ContactInfo, v.ServiceType, v.IsActive).Scan(&v.ID)
	return mapErr(err, "insert vendor")
}

func (s *Storage) UpdateVendor(ctx context.Context, v *models.Vendor) error {
	tag, err := s.db.Exec(ctx, `
UPDATE vendors
SET name = $2, contact_info = $3, service_type = $4, is_active = $5
WHERE id = $1
`, v.ID, v.Name, v.ContactInfo, v.ServiceType, v.IsActive)
	return affected(tag, err, "update vendor")
}

func (s *Storage) DeleteVendor(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM vendors WHERE id = $1`, id)
	return affected(tag, err, "delete vendor")
}

func (s *Storage) GetVendor(ctx context.Context, id int64) (*models.Vendor, error) {
	v, err := scanVendor(s.db.QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err, "select vendor")
	}
	return v, nil
}

func (s *Storage) ListVendors(ctx context.Context, f models.VendorFilter) ([]*models.Vendor, error) {
	var w where
	if f.ServiceType != "" {
		w.eq("service_type", f.ServiceType)
	}
	if f.IsActive != nil {
		w.eq("is_active", *f.IsActive)
	}

	rows, err := s.db.Query(ctx, `SELECT `+vendorColumns+` FROM vendors `+w.String()+` ORDER BY id`, w.args...)
	if err != nil {
		return nil, errors.Wrap(err, "select vendors")
	}
	defer rows.Close()

	out := []*models.Vendor{}
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan vendor")
		}
		out = append(out, v)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
