package cargo_api

import (
	"context"
	"net/http"
	"time"

	"github.com/BearBump/CargoFlow/internal/auth"
	"github.com/BearBump/CargoFlow/internal/broker/messages"
	"github.com/BearBump/CargoFlow/internal/metrics"
	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/BearBump/CargoFlow/internal/services/accounts"
	"github.com/BearBump/CargoFlow/internal/services/logistics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, override []string, subject, body string, isHTML bool) bool
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

type EventFeed interface {
	Latest(ctx context.Context, limit int) ([]messages.EntityEvent, error)
}

type Sessions interface {
	Login(w http.ResponseWriter, r *http.Request, u *models.User) error
	Logout(w http.ResponseWriter, r *http.Request) error
}

// Deps wires the API. Feed, Limiter, Metrics and SwaggerPath are optional.
type Deps struct {
	Logistics  *logistics.Service
	Accounts   *accounts.Service
	Dispatcher Dispatcher
	Sessions   Sessions
	Identity   auth.Resolver
	Feed       EventFeed
	Limiter    RateLimiter
	Metrics    *metrics.Metrics

	// Requests per minute per client IP; zero disables the limit.
	LoginLimit  int
	NotifyLimit int

	SwaggerPath string
}

type API struct {
	Deps
	validate *validator.Validate
	now      func() time.Time
}

func New(d Deps) *API {
	return &API{Deps: d, validate: newValidator(), now: time.Now}
}

func (a *API) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, auth.CapturePeer, middleware.RealIP, middleware.Recoverer)
	r.Use(a.Metrics.Middleware)
	if a.Identity != nil {
		r.Use(auth.Middleware(a.Identity))
	}

	r.Get("/api/health", a.health)
	r.Method(http.MethodGet, "/metrics", a.Metrics.Handler())
	if a.SwaggerPath != "" {
		r.Get("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, a.SwaggerPath)
		})
		r.Get("/docs/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger.json"),
		))
	}

	r.Route("/api/cargo", func(r chi.Router) {
		r.Get("/", a.listCargo)
		r.Post("/", a.createCargo)
		r.Get("/type/{type}", a.listCargoByType)
		r.Get("/shipment/{shipmentId}", a.listCargoByShipment)
		r.Get("/{id}", a.getCargo)
		r.Put("/{id}", a.updateCargo)
		r.Delete("/{id}", a.deleteCargo)
	})

	r.Route("/api/shipments", func(r chi.Router) {
		r.Get("/", a.listShipments)
		r.Post("/", a.createShipment)
		r.Get("/status/{status}", a.listShipmentsByStatus)
		r.Get("/{id}", a.getShipment)
		r.Put("/{id}", a.updateShipment)
		r.Put("/{id}/status", a.updateShipmentStatus)
		r.Delete("/{id}", a.deleteShipment)
	})

	r.Route("/api/routes", func(r chi.Router) {
		r.Get("/", a.listRoutes)
		r.Post("/", a.createRoute)
		r.Get("/status/{status}", a.listRoutesByStatus)
		r.Get("/search", a.searchRoutes)
		r.Get("/transport-mode/{mode}", a.listRoutesByMode)
		r.Get("/{id}", a.getRoute)
		r.Put("/{id}", a.updateRoute)
		r.Put("/{id}/status", a.updateRouteStatus)
		r.Delete("/{id}", a.deleteRoute)
	})

	r.Route("/api/vendors", func(r chi.Router) {
		r.Get("/", a.listVendors)
		r.Post("/", a.createVendor)
		r.Get("/service-type/{serviceType}", a.listVendorsByServiceType)
		r.Get("/active", a.listActiveVendors)
		r.Get("/{id}", a.getVendor)
		r.Put("/{id}", a.updateVendor)
		r.Put("/{id}/status", a.updateVendorStatus)
		r.Delete("/{id}", a.deleteVendor)
	})

	r.Route("/api/deliveries", func(r chi.Router) {
		r.Get("/", a.listDeliveries)
		r.Post("/", a.createDelivery)
		r.Get("/shipment/{shipmentId}", a.listDeliveriesByShipment)
		r.Get("/status/{status}", a.listDeliveriesByStatus)
		r.Get("/{id}", a.getDelivery)
		r.Put("/{id}", a.updateDelivery)
		r.Delete("/{id}", a.deleteDelivery)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Get("/pending-users", a.pendingUsers)
		r.Get("/all-users", a.allUsers)
		r.Post("/approve-user/{id}", a.approveUser)
		r.Delete("/reject-user/{id}", a.rejectUser)
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", a.signup)
		r.With(a.rateLimit("login", a.LoginLimit)).Post("/login", a.login)
		r.Post("/logout", a.logout)
		r.Get("/user", a.currentUser)
	})

	r.With(a.rateLimit("notify", a.NotifyLimit)).Post("/api/notifications/email", a.sendNotification)

	r.Route("/api/dashboard", func(r chi.Router) {
		r.Get("/metrics", a.dashboardMetrics)
		r.Get("/recent-activities", a.recentActivities)
		r.Get("/events", a.recentEvents)
	})

	return r
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "UP"})
}
