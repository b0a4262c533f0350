package logistics

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	cachemocks "github.com/BearBump/CargoFlow/internal/cache/mocks"
	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/BearBump/CargoFlow/internal/storage/memstore"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type DashboardSuite struct {
	suite.Suite

	store *memstore.MemoryStore
	cache *cachemocks.MockBytesCache
	svc   *Service
}

func (s *DashboardSuite) SetupTest() {
	s.store = memstore.New()
	s.cache = &cachemocks.MockBytesCache{}
	s.svc = New(s.store, nil, nil, Options{Cache: s.cache, MetricsTTL: 30 * time.Second})
}

func (s *DashboardSuite) seed() {
	ctx := context.Background()
	_, err := s.svc.CreateRoute(ctx, models.Route{OriginPort: "A", DestinationPort: "B", Status: "Active"})
	s.Require().NoError(err)
	_, err = s.svc.CreateVendor(ctx, models.Vendor{Name: "V"})
	s.Require().NoError(err)
	for _, st := range []string{"Created", "Created", "Delivered"} {
		_, err = s.svc.CreateShipment(ctx, models.Shipment{Origin: "A", Destination: "B", Status: models.ShipmentStatus(st)})
		s.Require().NoError(err)
	}
	_, err = s.svc.CreateCargo(ctx, models.Cargo{Type: "Food"})
	s.Require().NoError(err)
}

func (s *DashboardSuite) TestMetrics_CacheHit_NoCompute() {
	cached := DashboardMetrics{TotalShipments: 42, ShipmentStatuses: map[string]int64{"Created": 42}, RouteStatuses: map[string]int64{}}
	b, _ := json.Marshal(cached)
	s.cache.On("Get", mock.Anything, "dashboard:metrics").Return(b, true, nil).Once()

	got, err := s.svc.DashboardMetrics(context.Background())
	s.Require().NoError(err)
	s.Require().Equal(&cached, got)
	s.cache.AssertNotCalled(s.T(), "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.cache.AssertExpectations(s.T())
}

func (s *DashboardSuite) TestMetrics_CacheMiss_ComputesAndStores() {
	s.seed()
	s.cache.On("Get", mock.Anything, "dashboard:metrics").Return(nil, false, nil).Once()

	var stored []byte
	s.cache.On("Set", mock.Anything, "dashboard:metrics", mock.Anything, 30*time.Second).
		Run(func(args mock.Arguments) { stored = args.Get(2).([]byte) }).
		Return(nil).Once()

	got, err := s.svc.DashboardMetrics(context.Background())
	s.Require().NoError(err)
	s.Require().Equal(int64(3), got.TotalShipments)
	s.Require().Equal(int64(1), got.ActiveCargo)
	s.Require().Equal(int64(1), got.AvailableRoutes)
	s.Require().Equal(int64(1), got.PartnerVendors)
	s.Require().Equal(map[string]int64{"Created": 2, "Delivered": 1}, got.ShipmentStatuses)
	s.Require().Equal(map[string]int64{"Active": 1}, got.RouteStatuses)

	var decoded DashboardMetrics
	s.Require().NoError(json.Unmarshal(stored, &decoded))
	s.Require().Equal(*got, decoded)
	s.cache.AssertExpectations(s.T())
}

func (s *DashboardSuite) TestMetrics_CacheErrorsAreIgnored() {
	s.seed()
	s.cache.On("Get", mock.Anything, "dashboard:metrics").Return(nil, false, errors.New("redis down")).Once()
	s.cache.On("Set", mock.Anything, "dashboard:metrics", mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

	got, err := s.svc.DashboardMetrics(context.Background())
	s.Require().NoError(err)
	s.Require().Equal(int64(3), got.TotalShipments)
}

func (s *DashboardSuite) TestMetrics_CorruptCacheEntryRecomputed() {
	s.cache.On("Get", mock.Anything, "dashboard:metrics").Return([]byte("{"), true, nil).Once()
	s.cache.On("Set", mock.Anything, "dashboard:metrics", mock.Anything, mock.Anything).Return(nil).Once()

	got, err := s.svc.DashboardMetrics(context.Background())
	s.Require().NoError(err)
	s.Require().Zero(got.TotalShipments)
	s.Require().NotNil(got.ShipmentStatuses)
}

func TestDashboardSuite(t *testing.T) {
	suite.Run(t, new(DashboardSuite))
}
