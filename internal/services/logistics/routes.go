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

func validateRoute(r *models.Route) error {
	r.OriginPort = strings.TrimSpace(r.OriginPort)
	r.DestinationPort = strings.TrimSpace(r.DestinationPort)
	fe := fieldErrors{}
	if r.OriginPort == "" {
		fe.add("originPort", "Origin port is required")
	}
	if r.DestinationPort == "" {
		fe.add("destinationPort", "Destination port is required")
	}
	if r.Duration < 0 {
		fe.add("duration", "Duration must be zero or positive")
	}
	if r.Distance < 0 {
		fe.add("distance", "Distance must be zero or positive")
	}
	if r.Cost < 0 {
		fe.add("cost", "Cost must be zero or positive")
	}
	return fe.err()
}

func (s *Service) CreateRoute(ctx context.Context, in models.Route) (*models.Route, error) {
	if err := validateRoute(&in); err != nil {
		return nil, err
	}
	in.ID = 0
	if err := s.repo.CreateRoute(ctx, &in); err != nil {
		return nil, writeErr(err, "Route", in.ID)
	}

	ev := event(messages.EntityRoute, messages.ActionCreated, in.ID,
		fmt.Sprintf("Route created: ID=%d, %s -> %s, Mode=%s", in.ID, in.OriginPort, in.DestinationPort, in.TransportationMode))
	ev.Status = in.Status
	s.afterCommit(ctx, ev, nil)

	out := in
	return &out, nil
}

func (s *Service) UpdateRoute(ctx context.Context, id int64, in models.Route) (*models.Route, error) {
	prev, err := s.repo.GetRoute(ctx, id)
	if err != nil {
		return nil, getErr(err, "Route", id)
	}
	if err := validateRoute(&in); err != nil {
		return nil, err
	}
	in.ID = id
	if err := s.repo.UpdateRoute(ctx, &in); err != nil {
		return nil, writeErr(err, "Route", id)
	}

	ev := event(messages.EntityRoute, messages.ActionUpdated, id,
		fmt.Sprintf("Route updated: ID=%d, %s -> %s, Status=%s", id, in.OriginPort, in.DestinationPort, in.Status))
	ev.Status = in.Status
	ev.PreviousStatus = prev.Status
	s.afterCommit(ctx, ev, nil)

	out := in
	return &out, nil
}

func (s *Service) UpdateRouteStatus(ctx context.Context, id int64, status string) (*models.Route, error) {
	cur, err := s.repo.GetRoute(ctx, id)
	if err != nil {
		return nil, getErr(err, "Route", id)
	}
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, apperr.Validation("Validation failed", map[string]string{"status": "Status is required"})
	}
	next := *cur
	next.Status = status
	return s.UpdateRoute(ctx, id, next)
}

// DeleteRoute refuses routes still assigned to shipments.
func (s *Service) DeleteRoute(ctx context.Context, id int64) (models.DeleteResult, error) {
	if _, err := s.repo.GetRoute(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFoundResult("Route", id), nil
		}
		return models.DeleteResult{}, apperr.Unexpected(errors.Wrap(err, "get route"))
	}

	n, err := s.repo.CountShipmentsUsingRoute(ctx, id)
	if err != nil {
		return models.DeleteResult{}, apperr.Unexpected(errors.Wrap(err, "count route usage"))
	}
	if n > 0 {
		return models.DeleteResult{}, routeInUse(id, n)
	}

	if err := s.repo.DeleteRoute(ctx, id); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return notFoundResult("Route", id), nil
		case errors.Is(err, storage.ErrReferenced):
			// a shipment was assigned between the count and the delete
			return models.DeleteResult{}, routeInUse(id, 1)
		}
		return models.DeleteResult{}, apperr.Unexpected(errors.Wrap(err, "delete route"))
	}

	s.afterCommit(ctx, event(messages.EntityRoute, messages.ActionDeleted, id, fmt.Sprintf("Route deleted: ID=%d", id)), nil)
	return deletedResult("Route", id), nil
}

func routeInUse(id, n int64) error {
	return apperr.Conflict(fmt.Sprintf("Route %d is assigned to %d shipment(s) and cannot be deleted", id, n))
}

func (s *Service) GetRoute(ctx context.Context, id int64) (*models.Route, error) {
	r, err := s.repo.GetRoute(ctx, id)
	if err != nil {
		return nil, getErr(err, "Route", id)
	}
	return r, nil
}

func (s *Service) ListRoutes(ctx context.Context, f models.RouteFilter) ([]*models.Route, error) {
	out, err := s.repo.ListRoutes(ctx, f)
	if err != nil {
		return nil, apperr.Unexpected(errors.Wrap(err, "list routes"))
	}
	return out, nil
}
