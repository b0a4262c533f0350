// Package accounts owns user registration, login checks and the admin
// approval workflow: PENDING users become active OPERATORs or are deleted.
package accounts

import (
	"context"
	"log/slog"
	"strings"

	"github.com/BearBump/CargoFlow/internal/apperr"
	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/BearBump/CargoFlow/internal/storage"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type Repository interface {
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id int64) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, f models.UserFilter) ([]*models.User, error)
}

type Options struct {
	// bcrypt cost; zero means bcrypt.DefaultCost.
	BcryptCost int
}

type Service struct {
	repo Repository
	cost int
}

func New(repo Repository, opts Options) *Service {
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, cost: cost}
}

func (s *Service) hash(password string) (*string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, apperr.Unexpected(errors.Wrap(err, "hash password"))
	}
	h := string(b)
	return &h, nil
}

// Register creates a PENDING, inactive LOCAL account. Emails are compared
// exactly after trimming.
func (s *Service) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	fields := map[string]string{}
	if email == "" {
		fields["email"] = "Email is required"
	} else if !strings.Contains(email, "@") {
		fields["email"] = "Email must be a valid address"
	}
	if password == "" {
		fields["password"] = "Password is required"
	}
	if len(fields) > 0 {
		return nil, apperr.Validation("Validation failed", fields)
	}

	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, duplicateEmail()
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Unexpected(errors.Wrap(err, "get user by email"))
	}

	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Provider:     models.ProviderLocal,
		Role:         models.RolePending,
		IsActive:     false,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, duplicateEmail()
		}
		return nil, apperr.Unexpected(errors.Wrap(err, "create user"))
	}
	slog.Info("user registered, awaiting approval", "user_id", u.ID, "email", u.Email)
	return u, nil
}

func duplicateEmail() error {
	return apperr.New(apperr.KindDuplicateEmail, "Email already exists")
}

// Authenticate reports a match only for active LOCAL users with the right
// password. Every other outcome is the same (nil, false, nil).
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, bool, error) {
	u, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperr.Unexpected(errors.Wrap(err, "get user by email"))
	}
	if u.Provider != models.ProviderLocal || !u.IsActive || u.PasswordHash == nil {
		return nil, false, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)) != nil {
		return nil, false, nil
	}
	return u, true, nil
}

// ResolveOAuthUser upserts an account for an upstream-authenticated principal.
// Existing GOOGLE accounts only get their picture refreshed. Password (LOCAL)
// accounts are never resolved from a principal and yield Forbidden.
func (s *Service) ResolveOAuthUser(ctx context.Context, email, name, picture string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperr.Validation("Validation failed", map[string]string{"email": "Email is required"})
	}

	u, err := s.repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if u.Provider != models.ProviderGoogle {
			slog.Warn("oauth principal matches a password account", "user_id", u.ID, "provider", u.Provider)
			return nil, apperr.Forbidden("Email is registered for password sign-in")
		}
		if picture != "" && picture != u.Picture {
			u.Picture = picture
			if err := s.repo.UpdateUser(ctx, u); err != nil {
				return nil, apperr.Unexpected(errors.Wrap(err, "update user picture"))
			}
		}
		return u, nil
	case !errors.Is(err, storage.ErrNotFound):
		return nil, apperr.Unexpected(errors.Wrap(err, "get user by email"))
	}

	if strings.TrimSpace(name) == "" {
		name = email
	}
	u = &models.User{
		Email:    email,
		Name:     name,
		Picture:  picture,
		Provider: models.ProviderGoogle,
		Role:     models.RoleOperator,
		IsActive: true,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			// a concurrent first login created it
			existing, gerr := s.repo.GetUserByEmail(ctx, email)
			if gerr == nil && existing.Provider == models.ProviderGoogle {
				return existing, nil
			}
		}
		return nil, apperr.Unexpected(errors.Wrap(err, "create oauth user"))
	}
	slog.Info("oauth user provisioned", "user_id", u.ID, "email", u.Email)
	return u, nil
}

func (s *Service) pending(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("User", id)
	}
	if err != nil {
		return nil, apperr.Unexpected(errors.Wrap(err, "get user"))
	}
	if u.Role != models.RolePending {
		return nil, apperr.Conflict("User is not pending approval")
	}
	return u, nil
}

func (s *Service) Approve(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Role = models.RoleOperator
	u.IsActive = true
	if err := s.repo.UpdateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("User", id)
		}
		return nil, apperr.Unexpected(errors.Wrap(err, "approve user"))
	}
	slog.Info("user approved", "user_id", id)
	return u, nil
}

func (s *Service) Reject(ctx context.Context, id int64) error {
	if _, err := s.pending(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound("User", id)
		}
		return apperr.Unexpected(errors.Wrap(err, "reject user"))
	}
	slog.Info("user rejected", "user_id", id)
	return nil
}

func (s *Service) ListPending(ctx context.Context) ([]*models.User, error) {
	out, err := s.repo.ListUsers(ctx, models.UserFilter{Role: models.RolePending})
	if err != nil {
		return nil, apperr.Unexpected(errors.Wrap(err, "list pending users"))
	}
	return out, nil
}

func (s *Service) ListAll(ctx context.Context) ([]*models.User, error) {
	out, err := s.repo.ListUsers(ctx, models.UserFilter{})
	if err != nil {
		return nil, apperr.Unexpected(errors.Wrap(err, "list users"))
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("User", id)
	}
	if err != nil {
		return nil, apperr.Unexpected(errors.Wrap(err, "get user"))
	}
	return u, nil
}

// RequireAdmin is the admin gate: the user must exist, be ADMIN and be active.
func (s *Service) RequireAdmin(ctx context.Context, userID int64) (*models.User, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Unexpected(errors.Wrap(err, "get user"))
	}
	if !u.IsAdmin() {
		return nil, apperr.Forbidden("")
	}
	return u, nil
}

// EnsureAdmin seeds an active ADMIN account when email is configured and
// unused. It reports whether an account was created.
func (s *Service) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, nil
	}
	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		if !existing.IsAdmin() {
			slog.Warn("bootstrap admin email belongs to a non-admin account", "email", email, "role", existing.Role)
		}
		return false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return false, apperr.Unexpected(errors.Wrap(err, "get user by email"))
	}
	if password == "" {
		return false, apperr.Validation("Validation failed", map[string]string{"password": "Admin password is required"})
	}

	hash, err := s.hash(password)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}
	u := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Provider:     models.ProviderLocal,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return false, nil
		}
		return false, apperr.Unexpected(errors.Wrap(err, "create admin"))
	}
	slog.Info("bootstrap admin created", "user_id", u.ID, "email", email)
	return true, nil
}
