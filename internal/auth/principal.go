package auth

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/pkg/errors"
)

type OAuthUsers interface {
	ResolveOAuthUser(ctx context.Context, email, name, picture string) (*models.User, error)
}

// Headers set by the authenticating proxy (oauth2-proxy names by default).
type PrincipalHeaders struct {
	Email   string
	Name    string
	Picture string
}

func DefaultPrincipalHeaders() PrincipalHeaders {
	return PrincipalHeaders{
		Email:   "X-Auth-Request-Email",
		Name:    "X-Auth-Request-User",
		Picture: "X-Auth-Request-Picture",
	}
}

// ProxyTrust decides which requests may carry principal headers. At least one
// of TrustedProxies or Secret must be set; when both are, both must match.
type ProxyTrust struct {
	// Peer addresses (the TCP connection, not X-Forwarded-For) of the proxy.
	TrustedProxies []netip.Prefix
	// Header the proxy sets to Secret on every forwarded request.
	SecretHeader string
	Secret       string
}

const DefaultProxySecretHeader = "X-Auth-Proxy-Secret"

// ParseProxies parses CIDRs ("10.0.0.0/8") or single addresses ("10.0.0.7").
func ParseProxies(raw []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !strings.Contains(s, "/") {
			addr, err := netip.ParseAddr(s)
			if err != nil {
				return nil, errors.Wrapf(err, "trusted proxy %q", s)
			}
			out = append(out, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
			continue
		}
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return nil, errors.Wrapf(err, "trusted proxy %q", s)
		}
		out = append(out, p.Masked())
	}
	return out, nil
}

// PrincipalResolver accepts the upstream proxy headers only from a trusted
// proxy and provisions the account on first sight.
type PrincipalResolver struct {
	users   OAuthUsers
	headers PrincipalHeaders
	trust   ProxyTrust
}

func NewPrincipalResolver(users OAuthUsers, h PrincipalHeaders, trust ProxyTrust) (*PrincipalResolver, error) {
	if len(trust.TrustedProxies) == 0 && trust.Secret == "" {
		return nil, errors.New("principal headers need trusted proxies or a proxy secret")
	}
	if trust.Secret != "" && trust.SecretHeader == "" {
		trust.SecretHeader = DefaultProxySecretHeader
	}
	def := DefaultPrincipalHeaders()
	if h.Email == "" {
		h.Email = def.Email
	}
	if h.Name == "" {
		h.Name = def.Name
	}
	if h.Picture == "" {
		h.Picture = def.Picture
	}
	return &PrincipalResolver{users: users, headers: h, trust: trust}, nil
}

func (p *PrincipalResolver) ResolveIdentity(r *http.Request) (Identity, bool) {
	email := strings.TrimSpace(r.Header.Get(p.headers.Email))
	if email == "" {
		return Identity{}, false
	}
	if !p.fromTrustedProxy(r) {
		slog.Warn("principal header from untrusted source", "email", email, "peer", peerAddr(r))
		return Identity{}, false
	}
	u, err := p.users.ResolveOAuthUser(r.Context(), email, r.Header.Get(p.headers.Name), r.Header.Get(p.headers.Picture))
	if err != nil {
		slog.Warn("resolve oauth principal", "email", email, "err", err)
		return Identity{}, false
	}
	if u.Provider != models.ProviderGoogle {
		return Identity{}, false
	}
	return Identity{UserID: u.ID, Email: u.Email, Source: SourcePrincipal}, true
}

func (p *PrincipalResolver) fromTrustedProxy(r *http.Request) bool {
	if p.trust.Secret != "" {
		got := r.Header.Get(p.trust.SecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(p.trust.Secret)) != 1 {
			return false
		}
	}
	if len(p.trust.TrustedProxies) == 0 {
		return true
	}
	host, _, err := net.SplitHostPort(peerAddr(r))
	if err != nil {
		host = peerAddr(r)
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, pfx := range p.trust.TrustedProxies {
		if pfx.Contains(addr) {
			return true
		}
	}
	return false
}

type peerKey struct{}

// CapturePeer remembers the connection's RemoteAddr before RealIP-style
// middleware replaces it with client-supplied forwarding headers.
func CapturePeer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), peerKey{}, r.RemoteAddr)))
	})
}

func peerAddr(r *http.Request) string {
	if a, ok := r.Context().Value(peerKey{}).(string); ok {
		return a
	}
	return r.RemoteAddr
}
