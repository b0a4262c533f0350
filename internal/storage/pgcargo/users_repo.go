package pgcargo

import (
	"context"
	"log/slog"

	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/pkg/errors"
)

const userColumns = `id, email, password_hash, name, picture, provider, role, is_active, created_at`

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var provider, role string
	if err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Picture,
		&provider, &role, &u.IsActive, &u.CreatedAt,
	); err != nil {
		return nil, err
	}
	var ok bool
	if u.Provider, ok = models.ParseProvider(provider); !ok {
		slog.Warn("unknown user provider", "user_id", u.ID, "provider", provider)
	}
	if u.Role, ok = models.ParseRole(role); !ok {
		slog.Warn("unknown user role", "user_id", u.ID, "role", role)
	}
	return &u, nil
}

func (s *Storage) CreateUser(ctx context.Context, u *models.User) error {
	err := s.db.QueryRow(ctx, `
INSERT INTO users (email, password_hash, name, picture, provider, role, is_active, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7, now())
RETURNING id, created_at
`, u.Email, u.PasswordHash, u.Name, u.Picture, string(u.Provider), string(u.Role), u.IsActive).Scan(&u.ID, &u.CreatedAt)
	return mapErr(err, "insert user")
}

func (s *Storage) UpdateUser(ctx context.Context, u *models.User) error {
	tag, err := s.db.Exec(ctx, `
UPDATE users
SET
  email = $2,
  password_hash = $3,
  name = $4,
  picture = $5,
  provider = $6,
  role = $7,
  is_active = $8
WHERE id = $1
`, u.ID, u.Email, u.PasswordHash, u.Name, u.Picture, string(u.Provider), string(u.Role), u.IsActive)
	return affected(tag, err, "update user")
}

func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return affected(tag, err, "delete user")
}

func (s *Storage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err, "select user")
	}
	return u, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, mapErr(err, "select user by email")
	}
	return u, nil
}

func (s *Storage) ListUsers(ctx context.Context, f models.UserFilter) ([]*models.User, error) {
	var w where
	if f.Role != "" {
		w.eq("role", string(f.Role))
	}

	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users `+w.String()+` ORDER BY id`, w.args...)
	if err != nil {
		return nil, errors.Wrap(err, "select users")
	}
	defer rows.Close()

	out := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan user")
		}
		out = append(out, u)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
