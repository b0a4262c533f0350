package auth

import (
	"net/http"

	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
)

const (
	DefaultSessionName = "cargoflow-session"

	keyUserID    = "userId"
	keyUserEmail = "userEmail"
)

// SessionResolver keeps the logged-in user in a signed cookie.
type SessionResolver struct {
	store sessions.Store
	name  string
}

func NewSessionResolver(secret []byte, name string, secure bool) *SessionResolver {
	if name == "" {
		name = DefaultSessionName
	}
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionResolver{store: store, name: name}
}

func (s *SessionResolver) ResolveIdentity(r *http.Request) (Identity, bool) {
	sess, err := s.store.Get(r, s.name)
	if err != nil {
		return Identity{}, false
	}
	id, ok := sess.Values[keyUserID].(int64)
	if !ok || id == 0 {
		return Identity{}, false
	}
	email, _ := sess.Values[keyUserEmail].(string)
	return Identity{UserID: id, Email: email, Source: SourceSession}, true
}

func (s *SessionResolver) Login(w http.ResponseWriter, r *http.Request, u *models.User) error {
	sess, _ := s.store.Get(r, s.name)
	sess.Values[keyUserID] = u.ID
	sess.Values[keyUserEmail] = u.Email
	if err := sess.Save(r, w); err != nil {
		return errors.Wrap(err, "save session")
	}
	return nil
}

func (s *SessionResolver) Logout(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.store.Get(r, s.name)
	delete(sess.Values, keyUserID)
	delete(sess.Values, keyUserEmail)
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		return errors.Wrap(err, "clear session")
	}
	return nil
}
