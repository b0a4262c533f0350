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

func allowedStatuses() string {
	names := make([]string, 0, 4)
	for _, st := range models.ShipmentStatuses() {
		names = append(names, st.String())
	}
	return strings.Join(names, ", ")
}

// validateShipment also canonicalizes the status; blank means Created.
func validateShipment(sh *models.Shipment) error {
	sh.Origin = strings.TrimSpace(sh.Origin)
	sh.Destination = strings.TrimSpace(sh.Destination)
	fe := fieldErrors{}
	if sh.Origin == "" {
		fe.add("origin", "Origin is required")
	}
	if sh.Destination == "" {
		fe.add("destination", "Destination is required")
	}
	if strings.TrimSpace(string(sh.Status)) == "" {
		sh.Status = models.ShipmentStatusCreated
	} else if st, ok := models.ParseShipmentStatus(string(sh.Status)); ok {
		sh.Status = st
	} else {
		fe.add("status", "Status must be one of: "+allowedStatuses())
	}
	return fe.err()
}

type shipmentRefs struct {
	route  *models.Route
	vendor *models.Vendor
}

func (s *Service) resolveShipmentRefs(ctx context.Context, sh *models.Shipment) (shipmentRefs, error) {
	route, err := s.resolveRoute(ctx, sh.RouteID)
	if err != nil {
		return shipmentRefs{}, err
	}
	vendor, err := s.resolveVendor(ctx, sh.VendorID)
	if err != nil {
		return shipmentRefs{}, err
	}
	return shipmentRefs{route: route, vendor: vendor}, nil
}

func (s *Service) CreateShipment(ctx context.Context, in models.Shipment) (*models.Shipment, error) {
	if err := validateShipment(&in); err != nil {
		return nil, err
	}
	refs, err := s.resolveShipmentRefs(ctx, &in)
	if err != nil {
		return nil, err
	}

	in.ID = 0
	if err := s.repo.CreateShipment(ctx, &in); err != nil {
		return nil, writeErr(err, "Shipment", in.ID)
	}

	ev := event(messages.EntityShipment, messages.ActionCreated, in.ID,
		fmt.Sprintf("Shipment created: ID=%d, Origin=%s, Destination=%s, Status=%s", in.ID, in.Origin, in.Destination, in.Status))
	ev.Status = in.Status.String()
	msg := notifications.RenderShipment(models.ChangeCreated, &in, refs.route, refs.vendor, "")
	s.afterCommit(ctx, ev, &msg)

	out := in
	return &out, nil
}

// UpdateShipment replaces every field; nil route/vendor ids clear the assignment.
func (s *Service) UpdateShipment(ctx context.Context, id int64, in models.Shipment) (*models.Shipment, error) {
	prev, err := s.repo.GetShipment(ctx, id)
	if err != nil {
		return nil, getErr(err, "Shipment", id)
	}
	if err := validateShipment(&in); err != nil {
		return nil, err
	}
	refs, err := s.resolveShipmentRefs(ctx, &in)
	if err != nil {
		return nil, err
	}

	in.ID = id
	if err := s.repo.UpdateShipment(ctx, &in); err != nil {
		return nil, writeErr(err, "Shipment", id)
	}

	summary := fmt.Sprintf("Shipment updated: ID=%d, Status=%s", id, in.Status)
	if prev.Status != in.Status {
		summary += fmt.Sprintf(" (was %s)", prev.Status)
	}
	ev := event(messages.EntityShipment, messages.ActionUpdated, id, summary)
	ev.Status = in.Status.String()
	ev.PreviousStatus = prev.Status.String()
	msg := notifications.RenderShipment(models.ChangeUpdated, &in, refs.route, refs.vendor, prev.Status)
	s.afterCommit(ctx, ev, &msg)

	out := in
	return &out, nil
}

// UpdateShipmentStatus changes only the status, with full update semantics.
func (s *Service) UpdateShipmentStatus(ctx context.Context, id int64, status string) (*models.Shipment, error) {
	cur, err := s.repo.GetShipment(ctx, id)
	if err != nil {
		return nil, getErr(err, "Shipment", id)
	}
	if strings.TrimSpace(status) == "" {
		return nil, apperr.Validation("Validation failed", map[string]string{"status": "Status is required"})
	}
	next := *cur
	next.Status = models.ShipmentStatus(status)
	return s.UpdateShipment(ctx, id, next)
}

// DeleteShipment unlinks cargo and deliveries; it never deletes them.
func (s *Service) DeleteShipment(ctx context.Context, id int64) (models.DeleteResult, error) {
	sh, err := s.repo.GetShipment(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return notFoundResult("Shipment", id), nil
	}
	if err != nil {
		return models.DeleteResult{}, apperr.Unexpected(errors.Wrap(err, "get shipment"))
	}
	// assignments are only for the notification, a dangling one is shown by id
	route, _ := s.resolveRoute(ctx, sh.RouteID)
	vendor, _ := s.resolveVendor(ctx, sh.VendorID)

	if err := s.repo.DeleteShipment(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFoundResult("Shipment", id), nil
		}
		return models.DeleteResult{}, apperr.Unexpected(errors.Wrap(err, "delete shipment"))
	}

	ev := event(messages.EntityShipment, messages.ActionDeleted, id, fmt.Sprintf("Shipment deleted: ID=%d", id))
	ev.Status = sh.Status.String()
	msg := notifications.RenderShipment(models.ChangeDeleted, sh, route, vendor, "")
	s.afterCommit(ctx, ev, &msg)
	return deletedResult("Shipment", id), nil
}

func (s *Service) GetShipment(ctx context.Context, id int64) (*models.Shipment, error) {
	sh, err := s.repo.GetShipment(ctx, id)
	if err != nil {
		return nil, getErr(err, "Shipment", id)
	}
	return sh, nil
}

// ListShipments accepts any spelling of a known status ("in-transit").
// Unknown values are matched verbatim so legacy rows stay reachable.
func (s *Service) ListShipments(ctx context.Context, f models.ShipmentFilter) ([]*models.Shipment, error) {
	if f.Status != "" {
		st, _ := models.ParseShipmentStatus(f.Status)
		f.Status = st.String()
	}
	out, err := s.repo.ListShipments(ctx, f)
	if err != nil {
		return nil, apperr.Unexpected(errors.Wrap(err, "list shipments"))
	}
	return out, nil
}
