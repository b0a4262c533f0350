package cargo_api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/BearBump/CargoFlow/internal/apperr"
	"github.com/BearBump/CargoFlow/internal/auth"
	"github.com/BearBump/CargoFlow/internal/broker/messages"
	"github.com/BearBump/CargoFlow/internal/cache/rediscache"
	"github.com/BearBump/CargoFlow/internal/events"
	"github.com/BearBump/CargoFlow/internal/integrations/mailer/fake"
	"github.com/BearBump/CargoFlow/internal/metrics"
	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/BearBump/CargoFlow/internal/notifications"
	"github.com/BearBump/CargoFlow/internal/services/accounts"
	"github.com/BearBump/CargoFlow/internal/services/activity"
	"github.com/BearBump/CargoFlow/internal/services/logistics"
	"github.com/BearBump/CargoFlow/internal/storage/memstore"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type nopProducer struct{}

func (nopProducer) Publish(ctx context.Context, topic string, key, value []byte) error { return nil }

type testEnv struct {
	handler http.Handler
	mail    *fake.Sender
	users   *accounts.Service
	feed    *rediscache.RedisCache
	mr      *miniredis.Miniredis
}

func newTestEnv(t *testing.T, tweak ...func(*Deps)) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	store := memstore.New()
	mail := fake.New()
	disp := notifications.NewDispatcher(mail, notifications.Config{DefaultRecipients: []string{"ops@cargoflow.test"}}, nil)
	logi := logistics.New(store, events.NewPublisher(nopProducer{}, nil, nil), disp, logistics.Options{SideEffectTimeout: time.Second})
	t.Cleanup(logi.Wait)
	users := accounts.New(store, accounts.Options{BcryptCost: bcrypt.MinCost})
	sessions := auth.NewSessionResolver([]byte("0123456789abcdef0123456789abcdef"), "", false)

	feed := rediscache.New(mr.Addr())
	limiter := rediscache.NewRateLimiter(mr.Addr())
	t.Cleanup(func() {
		_ = feed.Close()
		_ = limiter.Close()
	})

	deps := Deps{
		Logistics:  logi,
		Accounts:   users,
		Dispatcher: disp,
		Sessions:   sessions,
		Identity:   auth.Chain{sessions},
		Feed:       activity.NewReader(feed, ""),
		Limiter:    limiter,
		Metrics:    metrics.New("cargo-api-test"),
	}
	for _, f := range tweak {
		f(&deps)
	}
	return &testEnv{handler: New(deps).Routes(), mail: mail, users: users, feed: feed, mr: mr}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestCargo_CRUD(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/api/cargo", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/cargo", map[string]any{"weight": -1, "value": 10})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	eb := decodeBody[errorBody](t, rec)
	require.Equal(t, apperr.KindValidationFailed, eb.Kind)
	require.Equal(t, "Type is required", eb.ValidationErrors["type"])
	require.Contains(t, eb.ValidationErrors, "weight")
	require.Equal(t, "/api/cargo", eb.Path)
	require.Equal(t, "Bad Request", eb.Error)

	rec = e.do(t, http.MethodPost, "/api/cargo", map[string]any{"type": "Electronics", "weight": 12.5, "weightUnit": "kg", "value": 300})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[models.Cargo](t, rec)
	require.Equal(t, int64(1), created.ID)

	rec = e.do(t, http.MethodGet, "/api/cargo/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/cargo/type/Electronics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeBody[[]models.Cargo](t, rec), 1)

	rec = e.do(t, http.MethodPut, "/api/cargo/1", map[string]any{"type": "Textiles", "weight": 3, "value": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Textiles", decodeBody[models.Cargo](t, rec).Type)

	rec = e.do(t, http.MethodDelete, "/api/cargo/99", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	res := decodeBody[models.DeleteResult](t, rec)
	require.False(t, res.Success)
	require.Equal(t, "Cargo not found with ID: 99", res.Message)

	rec = e.do(t, http.MethodDelete, "/api/cargo/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res = decodeBody[models.DeleteResult](t, rec)
	require.True(t, res.Success)
	require.Equal(t, "Cargo deleted successfully", res.Message)

	rec = e.do(t, http.MethodGet, "/api/cargo/1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	eb = decodeBody[errorBody](t, rec)
	require.Equal(t, apperr.KindNotFound, eb.Kind)
	require.Equal(t, "Cargo not found with ID: 1", eb.Message)
}

func TestBadInput(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/cargo", "{not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decodeBody[errorBody](t, rec).ValidationErrors, "body")

	rec = e.do(t, http.MethodPost, "/api/cargo", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Request body is empty", decodeBody[errorBody](t, rec).ValidationErrors["body"])

	rec = e.do(t, http.MethodGet, "/api/cargo/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decodeBody[errorBody](t, rec).ValidationErrors, "id")
}

func TestShipments_ReferencesAndStatus(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/shipments", map[string]any{"origin": "Mumbai", "destination": "Dubai", "assignedRouteId": 42})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, apperr.KindReferenceNotFound, decodeBody[errorBody](t, rec).Kind)

	rec = e.do(t, http.MethodPost, "/api/shipments", map[string]any{"origin": "Mumbai", "destination": "Dubai", "status": "Lost"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decodeBody[errorBody](t, rec).ValidationErrors, "status")

	rec = e.do(t, http.MethodPost, "/api/shipments", map[string]any{"origin": "Mumbai", "destination": "Dubai", "estimatedDelivery": "2026-11-02"})
	require.Equal(t, http.StatusCreated, rec.Code)
	sh := decodeBody[models.Shipment](t, rec)
	require.Equal(t, models.ShipmentStatusCreated, sh.Status)
	require.Equal(t, "2026-11-02", sh.EstimatedDelivery.String())

	rec = e.do(t, http.MethodPut, "/api/shipments/1/status?status=in_transit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, models.ShipmentStatusInTransit, decodeBody[models.Shipment](t, rec).Status)

	rec = e.do(t, http.MethodPut, "/api/shipments/1/status", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/shipments/status/in-transit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeBody[[]models.Shipment](t, rec), 1)

	rec = e.do(t, http.MethodGet, "/api/shipments/status/Delivered", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, http.MethodDelete, "/api/shipments/7", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Shipment not found with ID: 7", decodeBody[models.DeleteResult](t, rec).Message)
}

func TestRoutes_SearchAndInUse(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/api/routes/search?origin=Mumbai", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Destination is required", decodeBody[errorBody](t, rec).ValidationErrors["destination"])

	rec = e.do(t, http.MethodPost, "/api/routes", map[string]any{
		"originPort": "Mumbai", "destinationPort": "Dubai", "duration": 4, "distance": 1930, "cost": 1200,
		"transportationMode": "Sea", "status": "Active",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/routes/search?origin=Mumbai&destination=Dubai", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeBody[[]models.Route](t, rec), 1)

	rec = e.do(t, http.MethodGet, "/api/routes/transport-mode/Air", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, http.MethodPut, "/api/routes/1/status?status=Suspended", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Suspended", decodeBody[models.Route](t, rec).Status)

	rec = e.do(t, http.MethodPost, "/api/shipments", map[string]any{"origin": "Mumbai", "destination": "Dubai", "assignedRouteId": 1})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodDelete, "/api/routes/1", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, apperr.KindConflict, decodeBody[errorBody](t, rec).Kind)
}

func TestVendors_Status(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/vendors", map[string]any{"name": "Maersk", "serviceType": "Ocean", "isActive": true})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/vendors/active", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPut, "/api/vendors/1/status?isActive=maybe", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decodeBody[errorBody](t, rec).ValidationErrors, "isActive")

	rec = e.do(t, http.MethodPut, "/api/vendors/1/status?isActive=false", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, decodeBody[models.Vendor](t, rec).IsActive)

	rec = e.do(t, http.MethodGet, "/api/vendors/active", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/vendors/service-type/Ocean", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDeliveries_OnePerShipment(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/shipments", map[string]any{"origin": "Mumbai", "destination": "Dubai"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/deliveries", map[string]any{"shipmentId": 1, "recipient": "Ahmed", "status": "Pending"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/deliveries", map[string]any{"shipmentId": 1, "recipient": "Omar"})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "Delivery already exists for shipment ID: 1", decodeBody[errorBody](t, rec).Message)

	rec = e.do(t, http.MethodGet, "/api/deliveries/shipment/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeBody[[]models.Delivery](t, rec), 1)

	rec = e.do(t, http.MethodGet, "/api/deliveries/status/Delivered", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuth_SignupApproveLogin(t *testing.T) {
	e := newTestEnv(t)
	created, err := e.users.EnsureAdmin(context.Background(), "admin@cargoflow.test", "admin-secret", "")
	require.NoError(t, err)
	require.True(t, created)

	srv := httptest.NewServer(e.handler)
	defer srv.Close()

	post := func(c *http.Client, path string, body any) *http.Response {
		t.Helper()
		b, _ := json.Marshal(body)
		resp, err := c.Post(srv.URL+path, "application/json", bytes.NewReader(b))
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}
	newClient := func() *http.Client {
		jar, err := cookiejar.New(nil)
		require.NoError(t, err)
		return &http.Client{Jar: jar}
	}

	operator := newClient()
	resp := post(operator, "/api/auth/signup", map[string]string{"email": "ops@cargoflow.test", "password": "pw-123456", "name": "Ops"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = post(operator, "/api/auth/signup", map[string]string{"email": "ops@cargoflow.test", "password": "other"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = post(operator, "/api/auth/login", map[string]string{"email": "ops@cargoflow.test", "password": "pw-123456"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = operator.Get(srv.URL + "/api/admin/pending-users")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	admin := newClient()
	resp = post(admin, "/api/auth/login", map[string]string{"email": "admin@cargoflow.test", "password": "admin-secret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = admin.Get(srv.URL + "/api/admin/pending-users")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pending []models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pending))
	require.Len(t, pending, 1)
	require.Equal(t, models.RolePending, pending[0].Role)

	resp = post(admin, "/api/admin/approve-user/"+itoa(pending[0].ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = post(admin, "/api/admin/approve-user/"+itoa(pending[0].ID), nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = post(operator, "/api/auth/login", map[string]string{"email": "ops@cargoflow.test", "password": "pw-123456"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = operator.Get(srv.URL + "/api/auth/user")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me userBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	require.Equal(t, "ops@cargoflow.test", me.User.Email)
	require.Equal(t, models.RoleOperator, me.User.Role)

	resp = post(operator, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = operator.Get(srv.URL + "/api/auth/user")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdmin_AnonymousForbidden(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/api/admin/all-users", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Admin access required", decodeBody[errorBody](t, rec).Message)

	rec = e.do(t, http.MethodDelete, "/api/admin/reject-user/1", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdmin_DefaultChainIgnoresPrincipalHeader(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.users.EnsureAdmin(context.Background(), "admin@cargoflow.test", "admin-secret", "")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/all-users", nil)
	req.Header.Set("X-Auth-Request-Email", "admin@cargoflow.test")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdmin_ForgedPrincipalHeaderForbidden(t *testing.T) {
	e := newTestEnv(t, func(d *Deps) {
		proxies, err := auth.ParseProxies([]string{"10.0.0.0/8"})
		require.NoError(t, err)
		principal, err := auth.NewPrincipalResolver(d.Accounts, auth.DefaultPrincipalHeaders(), auth.ProxyTrust{TrustedProxies: proxies})
		require.NoError(t, err)
		d.Identity = auth.Chain{d.Identity, principal}
	})
	_, err := e.users.EnsureAdmin(context.Background(), "admin@cargoflow.test", "admin-secret", "")
	require.NoError(t, err)

	send := func(remote, path string, headers map[string]string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = remote
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		rec := httptest.NewRecorder()
		e.handler.ServeHTTP(rec, req)
		return rec
	}

	// direct client, spoofing the proxy address too
	rec := send("203.0.113.9:5000", "/api/admin/all-users", map[string]string{
		"X-Auth-Request-Email": "admin@cargoflow.test",
		"X-Forwarded-For":      "10.0.0.5",
		"X-Real-IP":            "10.0.0.5",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	// trusted proxy, but the email belongs to the password admin
	rec = send("10.0.0.5:5000", "/api/admin/all-users", map[string]string{"X-Auth-Request-Email": "admin@cargoflow.test"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	// trusted proxy with a Google principal: resolved as an operator, not an admin
	rec = send("10.0.0.5:5000", "/api/auth/user", map[string]string{"X-Auth-Request-Email": "g@cargoflow.test"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "g@cargoflow.test", decodeBody[userBody](t, rec).User.Email)
	rec = send("10.0.0.5:5000", "/api/admin/all-users", map[string]string{"X-Auth-Request-Email": "g@cargoflow.test"})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogin_RateLimited(t *testing.T) {
	e := newTestEnv(t, func(d *Deps) { d.LoginLimit = 2 })
	creds := map[string]string{"email": "nobody@cargoflow.test", "password": "x"}

	require.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodPost, "/api/auth/login", creds).Code)
	require.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodPost, "/api/auth/login", creds).Code)
	rec := e.do(t, http.MethodPost, "/api/auth/login", creds)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "60", rec.Header().Get("Retry-After"))

	// limiter down: requests pass
	e.mr.Close()
	require.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodPost, "/api/auth/login", creds).Code)
}

func TestNotifications_Email(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/notifications/email", map[string]any{
		"recipients": []string{"A@Example.com", "a@example.com"}, "subject": "Port closure", "message": "Dubai closed",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	body := decodeBody[notificationBody](t, rec)
	require.True(t, body.Success)
	require.Equal(t, "Notification email dispatched.", body.Message)
	sent := e.mail.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, []string{"a@example.com"}, sent[0].To)

	rec = e.do(t, http.MethodPost, "/api/notifications/email", map[string]any{
		"recipients": []string{"not-an-email"}, "subject": "x", "message": "y",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid email address", decodeBody[errorBody](t, rec).ValidationErrors["recipients[0]"])

	rec = e.do(t, http.MethodPost, "/api/notifications/email", map[string]any{"subject": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Message is required", decodeBody[errorBody](t, rec).ValidationErrors["message"])
}

func TestNotifications_RecipientsNormalizedBeforeValidation(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/notifications/email", map[string]any{
		"recipients": []string{" Ops@X.com ", "ops@x.com", ""}, "subject": "Delay", "message": "Vessel late",
	})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	sent := e.mail.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, []string{"ops@x.com"}, sent[0].To)
}

func TestNotifications_NoRecipients(t *testing.T) {
	e := newTestEnv(t, func(d *Deps) {
		d.Dispatcher = notifications.NewDispatcher(fake.New(), notifications.Config{}, nil)
	})

	rec := e.do(t, http.MethodPost, "/api/notifications/email", map[string]any{"subject": "x", "message": "y"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[notificationBody](t, rec)
	require.False(t, body.Success)
	require.Equal(t, "Notification skipped - no recipients configured.", body.Message)
}

func TestDashboard(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	rec := e.do(t, http.MethodPost, "/api/shipments", map[string]any{"origin": "Mumbai", "destination": "Dubai", "status": "In Transit"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/dashboard/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	m := decodeBody[logistics.DashboardMetrics](t, rec)
	require.Equal(t, int64(1), m.TotalShipments)

	rec = e.do(t, http.MethodGet, "/api/dashboard/recent-activities", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	acts := decodeBody[[]logistics.Activity](t, rec)
	require.Len(t, acts, 1)
	require.Equal(t, "in-transit", acts[0].Type)

	for i := int64(1); i <= 3; i++ {
		b, _ := json.Marshal(messages.EntityEvent{EventID: itoa(i), Entity: messages.EntityCargo, Action: messages.ActionCreated, EntityID: i})
		require.NoError(t, e.feed.PushCapped(ctx, activity.DefaultFeedKey, b, 10))
	}
	rec = e.do(t, http.MethodGet, "/api/dashboard/events?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	evs := decodeBody[[]messages.EntityEvent](t, rec)
	require.Len(t, evs, 2)
	require.Equal(t, int64(3), evs[0].EntityID)

	rec = e.do(t, http.MethodGet, "/api/dashboard/events?limit=abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOpsEndpoints(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"UP"}`, rec.Body.String())

	rec = e.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "cargoflow_http_requests_total"))
}

func TestWriteError_HidesUnexpected(t *testing.T) {
	a := New(Deps{})
	a.now = func() time.Time { return time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC) }

	req := httptest.NewRequest(http.MethodGet, "/api/cargo", nil)
	rec := httptest.NewRecorder()
	a.writeError(rec, req, errors.New("pg: connection refused"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	eb := decodeBody[errorBody](t, rec)
	require.Equal(t, "An unexpected error occurred", eb.Message)
	require.Equal(t, apperr.KindUnexpected, eb.Kind)
	require.Equal(t, "Internal Server Error", eb.Error)
	require.NotContains(t, rec.Body.String(), "connection refused")
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
