package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type oauthUsersMock struct {
	mock.Mock
}

func (m *oauthUsersMock) ResolveOAuthUser(ctx context.Context, email, name, picture string) (*models.User, error) {
	args := m.Called(ctx, email, name, picture)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

type staticResolver struct {
	id Identity
	ok bool
}

func (s staticResolver) ResolveIdentity(*http.Request) (Identity, bool) { return s.id, s.ok }

func TestSessionResolver_LoginLogout(t *testing.T) {
	sr := NewSessionResolver([]byte("0123456789abcdef0123456789abcdef"), "", false)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	_, ok := sr.ResolveIdentity(req)
	require.False(t, ok)

	rec := httptest.NewRecorder()
	require.NoError(t, sr.Login(rec, req, &models.User{ID: 7, Email: "ops@x.com"}))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, DefaultSessionName, cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)

	next := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
	next.AddCookie(cookies[0])
	id, ok := sr.ResolveIdentity(next)
	require.True(t, ok)
	require.Equal(t, Identity{UserID: 7, Email: "ops@x.com", Source: SourceSession}, id)

	out := httptest.NewRecorder()
	require.NoError(t, sr.Logout(out, next))
	cleared := out.Result().Cookies()
	require.Len(t, cleared, 1)
	require.True(t, cleared[0].MaxAge < 0)
}

func TestSessionResolver_ForeignCookieRejected(t *testing.T) {
	a := NewSessionResolver([]byte("0123456789abcdef0123456789abcdef"), "", false)
	b := NewSessionResolver([]byte("fedcba9876543210fedcba9876543210"), "", false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, a.Login(rec, req, &models.User{ID: 1, Email: "a@x.com"}))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(rec.Result().Cookies()[0])
	_, ok := b.ResolveIdentity(next)
	require.False(t, ok)
}

// httptest requests come from 192.0.2.1:1234.
func testProxyTrust(t *testing.T, cidrs ...string) ProxyTrust {
	t.Helper()
	proxies, err := ParseProxies(cidrs)
	require.NoError(t, err)
	return ProxyTrust{TrustedProxies: proxies}
}

func TestPrincipalResolver(t *testing.T) {
	users := &oauthUsersMock{}
	users.On("ResolveOAuthUser", mock.Anything, "g@x.com", "Gina", "https://pic").
		Return(&models.User{ID: 3, Email: "g@x.com", Provider: models.ProviderGoogle}, nil).Once()
	users.On("ResolveOAuthUser", mock.Anything, "broken@x.com", "", "").
		Return(nil, errors.New("db down")).Once()

	pr, err := NewPrincipalResolver(users, PrincipalHeaders{}, testProxyTrust(t, "192.0.2.0/24"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := pr.ResolveIdentity(req)
	require.False(t, ok)

	req.Header.Set("X-Auth-Request-Email", " g@x.com ")
	req.Header.Set("X-Auth-Request-User", "Gina")
	req.Header.Set("X-Auth-Request-Picture", "https://pic")
	id, ok := pr.ResolveIdentity(req)
	require.True(t, ok)
	require.Equal(t, Identity{UserID: 3, Email: "g@x.com", Source: SourcePrincipal}, id)

	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.Header.Set("X-Auth-Request-Email", "broken@x.com")
	_, ok = pr.ResolveIdentity(bad)
	require.False(t, ok)

	users.AssertExpectations(t)
}

func TestNewPrincipalResolver_RequiresTrust(t *testing.T) {
	_, err := NewPrincipalResolver(&oauthUsersMock{}, PrincipalHeaders{}, ProxyTrust{})
	require.Error(t, err)

	_, err = ParseProxies([]string{"10.0.0.0/33"})
	require.Error(t, err)

	proxies, err := ParseProxies([]string{" 10.1.2.3 ", "", "10.0.0.0/8"})
	require.NoError(t, err)
	require.Len(t, proxies, 2)
	require.Equal(t, 32, proxies[0].Bits())
}

func TestPrincipalResolver_UntrustedPeer(t *testing.T) {
	users := &oauthUsersMock{}
	pr, err := NewPrincipalResolver(users, PrincipalHeaders{}, testProxyTrust(t, "10.0.0.0/8"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Auth-Request-Email", "admin@x.com")
	_, ok := pr.ResolveIdentity(req)
	require.False(t, ok)

	// spoofed forwarding headers must not help once the peer is captured
	var resolved bool
	h := CapturePeer(middleware.RealIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, resolved = pr.ResolveIdentity(r)
	})))
	spoofed := httptest.NewRequest(http.MethodGet, "/", nil)
	spoofed.Header.Set("X-Auth-Request-Email", "admin@x.com")
	spoofed.Header.Set("X-Forwarded-For", "10.0.0.5")
	spoofed.Header.Set("X-Real-IP", "10.0.0.5")
	h.ServeHTTP(httptest.NewRecorder(), spoofed)
	require.False(t, resolved)

	users.AssertNotCalled(t, "ResolveOAuthUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPrincipalResolver_SharedSecret(t *testing.T) {
	users := &oauthUsersMock{}
	users.On("ResolveOAuthUser", mock.Anything, "g@x.com", "", "").
		Return(&models.User{ID: 3, Email: "g@x.com", Provider: models.ProviderGoogle}, nil).Once()

	pr, err := NewPrincipalResolver(users, PrincipalHeaders{}, ProxyTrust{Secret: "s3cret"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Auth-Request-Email", "g@x.com")
	_, ok := pr.ResolveIdentity(req)
	require.False(t, ok)

	req.Header.Set(DefaultProxySecretHeader, "wrong")
	_, ok = pr.ResolveIdentity(req)
	require.False(t, ok)

	req.Header.Set(DefaultProxySecretHeader, "s3cret")
	id, ok := pr.ResolveIdentity(req)
	require.True(t, ok)
	require.Equal(t, int64(3), id.UserID)

	users.AssertExpectations(t)
}

func TestPrincipalResolver_PasswordAccountIgnored(t *testing.T) {
	users := &oauthUsersMock{}
	users.On("ResolveOAuthUser", mock.Anything, "admin@x.com", "", "").
		Return(&models.User{ID: 1, Email: "admin@x.com", Provider: models.ProviderLocal}, nil).Once()

	pr, err := NewPrincipalResolver(users, PrincipalHeaders{}, testProxyTrust(t, "192.0.2.1"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Auth-Request-Email", "admin@x.com")
	_, ok := pr.ResolveIdentity(req)
	require.False(t, ok)

	users.AssertExpectations(t)
}

func TestChain_FirstMatchWins(t *testing.T) {
	first := staticResolver{id: Identity{UserID: 1, Source: SourceSession}, ok: true}
	second := staticResolver{id: Identity{UserID: 2, Source: SourcePrincipal}, ok: true}
	none := staticResolver{}

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	id, ok := Chain{none, first, second}.ResolveIdentity(req)
	require.True(t, ok)
	require.Equal(t, int64(1), id.UserID)

	id, ok = Chain{nil, none, second}.ResolveIdentity(req)
	require.True(t, ok)
	require.Equal(t, int64(2), id.UserID)

	_, ok = Chain{none}.ResolveIdentity(req)
	require.False(t, ok)
}

func TestMiddleware_AttachesIdentity(t *testing.T) {
	var got Identity
	var seen bool
	h := Middleware(staticResolver{id: Identity{UserID: 9}, ok: true})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, seen = FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, seen)
	require.Equal(t, int64(9), got.UserID)

	h = Middleware(staticResolver{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, seen = FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.False(t, seen)
}
