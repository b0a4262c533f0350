// Package auth resolves the caller of an HTTP request. Backends are tried in
// order and the first one that recognises the request wins.
package auth

import (
	"context"
	"net/http"
)

const (
	SourceSession   = "session"
	SourcePrincipal = "principal"
)

type Identity struct {
	UserID int64
	Email  string
	Source string
}

type Resolver interface {
	ResolveIdentity(r *http.Request) (Identity, bool)
}

// Chain is a Resolver that asks each backend in turn.
type Chain []Resolver

func (c Chain) ResolveIdentity(r *http.Request) (Identity, bool) {
	for _, res := range c {
		if res == nil {
			continue
		}
		if id, ok := res.ResolveIdentity(r); ok {
			return id, true
		}
	}
	return Identity{}, false
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// Middleware attaches the resolved identity to the request context. It never
// rejects a request; handlers decide what an anonymous caller may do.
func Middleware(res Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := res.ResolveIdentity(r); ok {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}
