package logistics

import (
	"context"

	"github.com/BearBump/CargoFlow/internal/apperr"
	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/BearBump/CargoFlow/internal/storage"
	"github.com/pkg/errors"
)

// Reference resolution: a nil id resolves to nil, a dangling id to ReferenceNotFound.

func (s *Service) resolveShipment(ctx context.Context, id *int64) (*models.Shipment, error) {
	if id == nil {
		return nil, nil
	}
	sh, err := s.repo.GetShipment(ctx, *id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.ReferenceNotFound("Shipment", *id)
	}
	if err != nil {
		return nil, apperr.Unexpected(errors.Wrap(err, "resolve shipment"))
	}
	return sh, nil
}

func (s *Service) resolveRoute(ctx context.Context, id *int64) (*models.Route, error) {
	if id == nil {
		return nil, nil
	}
	r, err := s.repo.GetRoute(ctx, *id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.ReferenceNotFound("Route", *id)
	}
	if err != nil {
		return nil, apperr.Unexpected(errors.Wrap(err, "resolve route"))
	}
	return r, nil
}

func (s *Service) resolveVendor(ctx context.Context, id *int64) (*models.Vendor, error) {
	if id == nil {
		return nil, nil
	}
	v, err := s.repo.GetVendor(ctx, *id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.ReferenceNotFound("Vendor", *id)
	}
	if err != nil {
		return nil, apperr.Unexpected(errors.Wrap(err, "resolve vendor"))
	}
	return v, nil
}

// lookupShipment is the best-effort variant used only for notification context.
func (s *Service) lookupShipment(ctx context.Context, id *int64) *models.Shipment {
	if id == nil {
		return nil
	}
	sh, err := s.repo.GetShipment(ctx, *id)
	if err != nil {
		return nil
	}
	return sh
}
