// Package logistics coordinates the entity lifecycle: validate, resolve
// references, persist, then publish an event and send a notification in the
// background. Side-effect failures never reach the caller.
package logistics

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BearBump/CargoFlow/internal/apperr"
	"github.com/BearBump/CargoFlow/internal/broker/messages"
	"github.com/BearBump/CargoFlow/internal/cache"
	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/BearBump/CargoFlow/internal/notifications"
	"github.com/BearBump/CargoFlow/internal/storage"
	"github.com/pkg/errors"
)

type Repository interface {
	CreateCargo(ctx context.Context, c *models.Cargo) error
	UpdateCargo(ctx context.Context, c *models.Cargo) error
	DeleteCargo(ctx context.Context, id int64) error
	GetCargo(ctx context.Context, id int64) (*models.Cargo, error)
	ListCargo(ctx context.Context, f models.CargoFilter) ([]*models.Cargo, error)

	CreateShipment(ctx context.Context, sh *models.Shipment) error
	UpdateShipment(ctx context.Context, sh *models.Shipment) error
	DeleteShipment(ctx context.Context, id int64) error
	GetShipment(ctx context.Context, id int64) (*models.Shipment, error)
	ListShipments(ctx context.Context, f models.ShipmentFilter) ([]*models.Shipment, error)
	CountShipmentsUsingRoute(ctx context.Context, routeID int64) (int64, error)

	CreateRoute(ctx context.Context, r *models.Route) error
	UpdateRoute(ctx context.Context, r *models.Route) error
	DeleteRoute(ctx context.Context, id int64) error
	GetRoute(ctx context.Context, id int64) (*models.Route, error)
	ListRoutes(ctx context.Context, f models.RouteFilter) ([]*models.Route, error)

	CreateVendor(ctx context.Context, v *models.Vendor) error
	UpdateVendor(ctx context.Context, v *models.Vendor) error
	DeleteVendor(ctx context.Context, id int64) error
	GetVendor(ctx context.Context, id int64) (*models.Vendor, error)
	ListVendors(ctx context.Context, f models.VendorFilter) ([]*models.Vendor, error)

	CreateDelivery(ctx context.Context, d *models.Delivery) error
	UpdateDelivery(ctx context.Context, d *models.Delivery) error
	DeleteDelivery(ctx context.Context, id int64) error
	GetDelivery(ctx context.Context, id int64) (*models.Delivery, error)
	ListDeliveries(ctx context.Context, f models.DeliveryFilter) ([]*models.Delivery, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, ev messages.EntityEvent) error
}

type Notifier interface {
	Notify(ctx context.Context, msg notifications.Message) bool
}

type Options struct {
	// Dashboard metrics cache; nil disables caching.
	Cache      cache.BytesCache
	MetricsTTL time.Duration
	// Deadline of each background publish/notify task.
	SideEffectTimeout time.Duration
}

type Service struct {
	repo      Repository
	publisher EventPublisher
	notifier  Notifier

	cache      cache.BytesCache
	metricsTTL time.Duration
	timeout    time.Duration

	wg sync.WaitGroup
}

func New(repo Repository, pub EventPublisher, notifier Notifier, opts Options) *Service {
	if opts.SideEffectTimeout <= 0 {
		opts.SideEffectTimeout = 10 * time.Second
	}
	return &Service{
		repo:       repo,
		publisher:  pub,
		notifier:   notifier,
		cache:      opts.Cache,
		metricsTTL: opts.MetricsTTL,
		timeout:    opts.SideEffectTimeout,
	}
}

// Wait blocks until every background side effect started so far has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// afterCommit runs the event publish and the notification detached from the
// request context. msg may be nil for entities without notifications.
func (s *Service) afterCommit(ctx context.Context, ev messages.EntityEvent, msg *notifications.Message) {
	base := context.WithoutCancel(ctx)

	if s.publisher != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			ctx, cancel := context.WithTimeout(base, s.timeout)
			defer cancel()
			if err := s.publisher.Publish(ctx, ev); err != nil {
				slog.Error("publish entity event", "entity", ev.Entity, "action", ev.Action, "id", ev.EntityID, "err", err)
			}
		}()
	}

	if s.notifier != nil && msg != nil {
		m := *msg
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			ctx, cancel := context.WithTimeout(base, s.timeout)
			defer cancel()
			if !s.notifier.Notify(ctx, m) {
				slog.Debug("notification not sent", "subject", m.Subject)
			}
		}()
	}
}

func event(entity, action string, id int64, summary string) messages.EntityEvent {
	return messages.EntityEvent{Entity: entity, Action: action, EntityID: id, Summary: summary}
}

// getErr maps a store read failure for entity/id to a domain error.
func getErr(err error, entity string, id int64) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(entity, id)
	}
	return apperr.Unexpected(errors.Wrapf(err, "get %s", entity))
}

// writeErr maps a store write failure. A reference that disappeared between
// the check and the write surfaces as ErrReferenced.
func writeErr(err error, entity string, id int64) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return apperr.NotFound(entity, id)
	case errors.Is(err, storage.ErrReferenced):
		return apperr.New(apperr.KindReferenceNotFound, fmt.Sprintf("%s references a record that no longer exists", entity))
	}
	return apperr.Unexpected(errors.Wrapf(err, "save %s", entity))
}

func notFoundResult(entity string, id int64) models.DeleteResult {
	return models.DeleteResult{Success: false, Message: fmt.Sprintf("%s not found with ID: %d", entity, id)}
}

func deletedResult(entity string, id int64) models.DeleteResult {
	return models.DeleteResult{Success: true, Message: entity + " deleted successfully", ID: id}
}

type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperr.Validation("Validation failed", f)
}
