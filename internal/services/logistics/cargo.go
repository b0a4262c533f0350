package logistics

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/BearBump/CargoFlow/internal/apperr"
	"github.com/BearBump/CargoFlow/internal/broker/messages"
	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/BearBump/CargoFlow/internal/notifications"
	"github.com/BearBump/CargoFlow/internal/storage"
	"github.com/pkg/errors"
)

func validateCargo(c *models.Cargo) error {
	c.Type = strings.TrimSpace(c.Type)
	fe := fieldErrors{}
	if c.Type == "" {
		fe.add("type", "Type is required")
	}
	if c.Weight < 0 {
		fe.add("weight", "Weight must be zero or positive")
	}
	if c.Value < 0 {
		fe.add("value", "Value must be zero or positive")
	}
	if c.Volume != nil && *c.Volume < 0 {
		fe.add("volume", "Volume must be zero or positive")
	}
	return fe.err()
}

func (s *Service) CreateCargo(ctx context.Context, in models.Cargo) (*models.Cargo, error) {
	if err := validateCargo(&in); err != nil {
		return nil, err
	}
	sh, err := s.resolveShipment(ctx, in.ShipmentID)
	if err != nil {
		return nil, err
	}

	in.ID = 0
	if err := s.repo.CreateCargo(ctx, &in); err != nil {
		return nil, writeErr(err, "Cargo", in.ID)
	}

	summary := fmt.Sprintf("Cargo created: ID=%d, Type=%s, Weight=%skg, Value=$%s",
		in.ID, in.Type, num(in.Weight), num(in.Value))
	msg := notifications.RenderCargo(models.ChangeCreated, &in, sh)
	s.afterCommit(ctx, event(messages.EntityCargo, messages.ActionCreated, in.ID, summary), &msg)

	out := in
	return &out, nil
}

// UpdateCargo replaces every field; a nil ShipmentID unlinks the cargo.
func (s *Service) UpdateCargo(ctx context.Context, id int64, in models.Cargo) (*models.Cargo, error) {
	if _, err := s.repo.GetCargo(ctx, id); err != nil {
		return nil, getErr(err, "Cargo", id)
	}
	if err := validateCargo(&in); err != nil {
		return nil, err
	}
	sh, err := s.resolveShipment(ctx, in.ShipmentID)
	if err != nil {
		return nil, err
	}

	in.ID = id
	if err := s.repo.UpdateCargo(ctx, &in); err != nil {
		return nil, writeErr(err, "Cargo", id)
	}

	summary := fmt.Sprintf("Cargo updated: ID=%d, Type=%s", id, in.Type)
	msg := notifications.RenderCargo(models.ChangeUpdated, &in, sh)
	s.afterCommit(ctx, event(messages.EntityCargo, messages.ActionUpdated, id, summary), &msg)

	out := in
	return &out, nil
}

func (s *Service) DeleteCargo(ctx context.Context, id int64) (models.DeleteResult, error) {
	c, err := s.repo.GetCargo(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return notFoundResult("Cargo", id), nil
	}
	if err != nil {
		return models.DeleteResult{}, apperr.Unexpected(errors.Wrap(err, "get cargo"))
	}
	sh := s.lookupShipment(ctx, c.ShipmentID)

	if err := s.repo.DeleteCargo(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFoundResult("Cargo", id), nil
		}
		return models.DeleteResult{}, apperr.Unexpected(errors.Wrap(err, "delete cargo"))
	}

	msg := notifications.RenderCargo(models.ChangeDeleted, c, sh)
	s.afterCommit(ctx, event(messages.EntityCargo, messages.ActionDeleted, id, fmt.Sprintf("Cargo deleted: ID=%d", id)), &msg)
	return deletedResult("Cargo", id), nil
}

func (s *Service) GetCargo(ctx context.Context, id int64) (*models.Cargo, error) {
	c, err := s.repo.GetCargo(ctx, id)
	if err != nil {
		return nil, getErr(err, "Cargo", id)
	}
	return c, nil
}

// ListCargo filters by type and/or shipment; the zero filter lists everything.
func (s *Service) ListCargo(ctx context.Context, f models.CargoFilter) ([]*models.Cargo, error) {
	out, err := s.repo.ListCargo(ctx, f)
	if err != nil {
		return nil, apperr.Unexpected(errors.Wrap(err, "list cargo"))
	}
	return out, nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
