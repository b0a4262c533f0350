package logistics

import (
	"context"
	"fmt"
	"strings"

	"github.com/BearBump/CargoFlow/internal/apperr"
	"github.com/BearBump/CargoFlow/internal/broker/messages"
	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/BearBump/CargoFlow/internal/storage"
	"github.com/pkg/errors"
)

func validateVendor(v *models.Vendor) error {
	v.Name = strings.TrimSpace(v.Name)
	fe := fieldErrors{}
	if v.Name == "" {
		fe.add("name", "Name is required")
	}
	return fe.err()
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

func (s *Service) CreateVendor(ctx context.Context, in models.Vendor) (*models.Vendor, error) {
	if err := validateVendor(&in); err != nil {
		return nil, err
	}
	in.ID = 0
	if err := s.repo.CreateVendor(ctx, &in); err != nil {
		return nil, writeErr(err, "Vendor", in.ID)
	}

	ev := event(messages.EntityVendor, messages.ActionCreated, in.ID,
		fmt.Sprintf("Vendor created: ID=%d, Name=%s, ServiceType=%s", in.ID, in.Name, in.ServiceType))
	ev.Status = activeLabel(in.IsActive)
	s.afterCommit(ctx, ev, nil)

	out := in
	return &out, nil
}

func (s *Service) UpdateVendor(ctx context.Context, id int64, in models.Vendor) (*models.Vendor, error) {
	prev, err := s.repo.GetVendor(ctx, id)
	if err != nil {
		return nil, getErr(err, "Vendor", id)
	}
	if err := validateVendor(&in); err != nil {
		return nil, err
	}
	in.ID = id
	if err := s.repo.UpdateVendor(ctx, &in); err != nil {
		return nil, writeErr(err, "Vendor", id)
	}

	ev := event(messages.EntityVendor, messages.ActionUpdated, id,
		fmt.Sprintf("Vendor updated: ID=%d, Name=%s, Active=%t", id, in.Name, in.IsActive))
	ev.Status = activeLabel(in.IsActive)
	ev.PreviousStatus = activeLabel(prev.IsActive)
	s.afterCommit(ctx, ev, nil)

	out := in
	return &out, nil
}

func (s *Service) SetVendorActive(ctx context.Context, id int64, active bool) (*models.Vendor, error) {
	cur, err := s.repo.GetVendor(ctx, id)
	if err != nil {
		return nil, getErr(err, "Vendor", id)
	}
	next := *cur
	next.IsActive = active
	return s.UpdateVendor(ctx, id, next)
}

// DeleteVendor clears the vendor assignment of its shipments.
func (s *Service) DeleteVendor(ctx context.Context, id int64) (models.DeleteResult, error) {
	if _, err := s.repo.GetVendor(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFoundResult("Vendor", id), nil
		}
		return models.DeleteResult{}, apperr.Unexpected(errors.Wrap(err, "get vendor"))
	}
	if err := s.repo.DeleteVendor(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFoundResult("Vendor", id), nil
		}
		return models.DeleteResult{}, apperr.Unexpected(errors.Wrap(err, "delete vendor"))
	}

	s.afterCommit(ctx, event(messages.EntityVendor, messages.ActionDeleted, id, fmt.Sprintf("Vendor deleted: ID=%d", id)), nil)
	return deletedResult("Vendor", id), nil
}

func (s *Service) GetVendor(ctx context.Context, id int64) (*models.Vendor, error) {
	v, err := s.repo.GetVendor(ctx, id)
	if err != nil {
		return nil, getErr(err, "Vendor", id)
	}
	return v, nil
}

func (s *Service) ListVendors(ctx context.Context, f models.VendorFilter) ([]*models.Vendor, error) {
	out, err := s.repo.ListVendors(ctx, f)
	if err != nil {
		return nil, apperr.Unexpected(errors.Wrap(err, "list vendors"))
	}
	return out, nil
}
