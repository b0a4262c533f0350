package logistics

import (
	"context"
	"fmt"
	"strings"

	"github.com/BearBump/CargoFlow/internal/apperr"
	"github.com/BearBump/CargoFlow/internal/broker/messages"
	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/BearBump/CargoFlow/internal/notifications"
	"github.com/BearBump/CargoFlow/internal/storage"
	"github.com/pkg/errors"
)

func validateDelivery(d *models.Delivery) error {
	d.Recipient = strings.TrimSpace(d.Recipient)
	d.Status = strings.TrimSpace(d.Status)
	fe := fieldErrors{}
	if d.ShipmentID == nil {
		fe.add("shipmentId", "Shipment ID is required")
	}
	if d.Recipient == "" {
		fe.add("recipient", "Recipient is required")
	}
	return fe.err()
}

func deliveryExists(shipmentID int64) error {
	return apperr.Conflict(fmt.Sprintf("Delivery already exists for shipment ID: %d", shipmentID))
}

// ensureSingleDelivery is the fast path; the unique index on
// deliveries.shipment_id settles concurrent writers.
func (s *Service) ensureSingleDelivery(ctx context.Context, shipmentID, selfID int64) error {
	existing, err := s.repo.ListDeliveries(ctx, models.DeliveryFilter{ShipmentID: &shipmentID})
	if err != nil {
		return apperr.Unexpected(errors.Wrap(err, "check delivery uniqueness"))
	}
	for _, d := range existing {
		if d.ID != selfID {
			return deliveryExists(shipmentID)
		}
	}
	return nil
}

func deliveryWriteErr(err error, d *models.Delivery, id int64) error {
	if errors.Is(err, storage.ErrDuplicate) && d.ShipmentID != nil {
		return deliveryExists(*d.ShipmentID)
	}
	return writeErr(err, "Delivery", id)
}

func (s *Service) CreateDelivery(ctx context.Context, in models.Delivery) (*models.Delivery, error) {
	if err := validateDelivery(&in); err != nil {
		return nil, err
	}
	sh, err := s.resolveShipment(ctx, in.ShipmentID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSingleDelivery(ctx, *in.ShipmentID, 0); err != nil {
		return nil, err
	}

	in.ID = 0
	if err := s.repo.CreateDelivery(ctx, &in); err != nil {
		return nil, deliveryWriteErr(err, &in, in.ID)
	}

	ev := event(messages.EntityDelivery, messages.ActionCreated, in.ID,
		fmt.Sprintf("Delivery created: ID=%d, Shipment=%d, Recipient=%s, Status=%s", in.ID, *in.ShipmentID, in.Recipient, in.Status))
	ev.Status = in.Status
	msg := notifications.RenderDelivery(models.ChangeCreated, &in, sh, "")
	s.afterCommit(ctx, ev, &msg)

	out := in
	return &out, nil
}

func (s *Service) UpdateDelivery(ctx context.Context, id int64, in models.Delivery) (*models.Delivery, error) {
	prev, err := s.repo.GetDelivery(ctx, id)
	if err != nil {
		return nil, getErr(err, "Delivery", id)
	}
	if err := validateDelivery(&in); err != nil {
		return nil, err
	}
	sh, err := s.resolveShipment(ctx, in.ShipmentID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSingleDelivery(ctx, *in.ShipmentID, id); err != nil {
		return nil, err
	}

	in.ID = id
	if err := s.repo.UpdateDelivery(ctx, &in); err != nil {
		return nil, deliveryWriteErr(err, &in, id)
	}

	ev := event(messages.EntityDelivery, messages.ActionUpdated, id,
		fmt.Sprintf("Delivery updated: ID=%d, Status=%s", id, in.Status))
	ev.Status = in.Status
	ev.PreviousStatus = prev.Status
	msg := notifications.RenderDelivery(models.ChangeUpdated, &in, sh, prev.Status)
	s.afterCommit(ctx, ev, &msg)

	out := in
	return &out, nil
}

func (s *Service) DeleteDelivery(ctx context.Context, id int64) (models.DeleteResult, error) {
	d, err := s.repo.GetDelivery(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return notFoundResult("Delivery", id), nil
	}
	if err != nil {
		return models.DeleteResult{}, apperr.Unexpected(errors.Wrap(err, "get delivery"))
	}
	sh := s.lookupShipment(ctx, d.ShipmentID)

	if err := s.repo.DeleteDelivery(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFoundResult("Delivery", id), nil
		}
		return models.DeleteResult{}, apperr.Unexpected(errors.Wrap(err, "delete delivery"))
	}

	ev := event(messages.EntityDelivery, messages.ActionDeleted, id, fmt.Sprintf("Delivery deleted: ID=%d", id))
	ev.Status = d.Status
	msg := notifications.RenderDelivery(models.ChangeDeleted, d, sh, "")
	s.afterCommit(ctx, ev, &msg)
	return deletedResult("Delivery", id), nil
}

func (s *Service) GetDelivery(ctx context.Context, id int64) (*models.Delivery, error) {
	d, err := s.repo.GetDelivery(ctx, id)
	if err != nil {
		return nil, getErr(err, "Delivery", id)
	}
	return d, nil
}

func (s *Service) ListDeliveries(ctx context.Context, f models.DeliveryFilter) ([]*models.Delivery, error) {
	out, err := s.repo.ListDeliveries(ctx, f)
	if err != nil {
		return nil, apperr.Unexpected(errors.Wrap(err, "list deliveries"))
	}
	return out, nil
}
