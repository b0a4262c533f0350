package logistics

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/BearBump/CargoFlow/internal/apperr"
	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/pkg/errors"
)

const (
	dashboardMetricsKey = "dashboard:metrics"
	recentActivityLimit = 10
)

type DashboardMetrics struct {
	TotalShipments   int64            `json:"totalShipments"`
	ActiveCargo      int64            `json:"activeCargo"`
	AvailableRoutes  int64            `json:"availableRoutes"`
	PartnerVendors   int64            `json:"partnerVendors"`
	ShipmentStatuses map[string]int64 `json:"shipmentStatuses"`
	RouteStatuses    map[string]int64 `json:"routeStatuses"`
}

type Activity struct {
	ID         string `json:"id"`
	ShipmentID string `json:"shipmentId"`
	Action     string `json:"action"`
	Timestamp  string `json:"timestamp"`
	Type       string `json:"type"`
	Status     string `json:"status"`
}

// DashboardMetrics is served from the cache when fresh. Cache errors only
// cost a recomputation.
func (s *Service) DashboardMetrics(ctx context.Context) (*DashboardMetrics, error) {
	useCache := s.cache != nil && s.metricsTTL > 0
	if useCache {
		b, ok, err := s.cache.Get(ctx, dashboardMetricsKey)
		if err == nil && ok {
			var m DashboardMetrics
			if json.Unmarshal(b, &m) == nil {
				return &m, nil
			}
		}
	}

	m, err := s.computeMetrics(ctx)
	if err != nil {
		return nil, err
	}

	if useCache {
		b, _ := json.Marshal(m)
		if err := s.cache.Set(ctx, dashboardMetricsKey, b, s.metricsTTL); err != nil {
			slog.Warn("cache dashboard metrics", "err", err)
		}
	}
	return m, nil
}

func (s *Service) computeMetrics(ctx context.Context) (*DashboardMetrics, error) {
	shipments, err := s.repo.ListShipments(ctx, models.ShipmentFilter{})
	if err != nil {
		return nil, apperr.Unexpected(errors.Wrap(err, "list shipments"))
	}
	cargo, err := s.repo.ListCargo(ctx, models.CargoFilter{})
	if err != nil {
		return nil, apperr.Unexpected(errors.Wrap(err, "list cargo"))
	}
	routes, err := s.repo.ListRoutes(ctx, models.RouteFilter{})
	if err != nil {
		return nil, apperr.Unexpected(errors.Wrap(err, "list routes"))
	}
	vendors, err := s.repo.ListVendors(ctx, models.VendorFilter{})
	if err != nil {
		return nil, apperr.Unexpected(errors.Wrap(err, "list vendors"))
	}

	m := &DashboardMetrics{
		TotalShipments:   int64(len(shipments)),
		ActiveCargo:      int64(len(cargo)),
		AvailableRoutes:  int64(len(routes)),
		PartnerVendors:   int64(len(vendors)),
		ShipmentStatuses: map[string]int64{},
		RouteStatuses:    map[string]int64{},
	}
	for _, sh := range shipments {
		m.ShipmentStatuses[sh.Status.String()]++
	}
	for _, r := range routes {
		m.RouteStatuses[r.Status]++
	}
	return m, nil
}

// RecentActivities describes the newest shipments, highest id first.
func (s *Service) RecentActivities(ctx context.Context) ([]Activity, error) {
	shipments, err := s.repo.ListShipments(ctx, models.ShipmentFilter{})
	if err != nil {
		return nil, apperr.Unexpected(errors.Wrap(err, "list shipments"))
	}
	sort.Slice(shipments, func(i, j int) bool { return shipments[i].ID > shipments[j].ID })
	if len(shipments) > recentActivityLimit {
		shipments = shipments[:recentActivityLimit]
	}

	out := make([]Activity, 0, len(shipments))
	for _, sh := range shipments {
		action, kind := describeStatus(sh.Status)
		out = append(out, Activity{
			ID:         strconv.FormatInt(sh.ID, 10),
			ShipmentID: models.ShipmentDisplayID(sh.ID),
			Action:     action,
			Timestamp:  "recently",
			Type:       kind,
			Status:     strings.ReplaceAll(strings.ToLower(sh.Status.String()), " ", "-"),
		})
	}
	return out, nil
}

func describeStatus(st models.ShipmentStatus) (action, kind string) {
	canonical, _ := models.ParseShipmentStatus(st.String())
	switch canonical {
	case models.ShipmentStatusCreated:
		return "has been created", "created"
	case models.ShipmentStatusInTransit:
		return "is in transit", "in-transit"
	case models.ShipmentStatusDelivered:
		return "has been delivered", "delivered"
	case models.ShipmentStatusPickedUp:
		return "has been picked up", "picked-up"
	}
	return "status updated", "status-update"
}
