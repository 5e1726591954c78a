package store

import (
	"context"
	"database/sql"

	users "github.com/AdamBeresnev/matchday/internal/user"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type UserStore struct {
	db *sqlx.DB
}

const (
	userColumns    = "id, email, username, role, created_at, provider, provider_id, password_hash, avatar_url"
	getUserQuery   = "SELECT " + userColumns + " FROM users WHERE id = ?"
	getLocalQuery  = "SELECT " + userColumns + " FROM users WHERE username = ? AND password_hash IS NOT NULL"
	getByProvQuery = `
		SELECT ` + userColumns + ` FROM users
		WHERE provider = ?
		AND provider_id = ?
	`
	createUserQuery = `
		INSERT INTO users (id, email, username, role, provider, provider_id, password_hash, avatar_url) VALUES
		(:id, :email, :username, :role, :provider, :provider_id, :password_hash, :avatar_url)
	`
	updateProfileQuery = `
		UPDATE users SET
		username = :username,
		avatar_url = :avatar_url,
		role = :role
		WHERE id = :id
	`
	updatePasswordQuery = "UPDATE users SET password_hash = ?, role = ? WHERE id = ?"
)

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetUserByProvider(ctx context.Context, provider string, providerID string) (*users.User, error) {
	return s.get(ctx, getByProvQuery, provider, providerID)
}

func (s *UserStore) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	return s.get(ctx, getUserQuery, id)
}

// GetLocalUser finds a user that signs in with a password.
func (s *UserStore) GetLocalUser(ctx context.Context, username string) (*users.User, error) {
	return s.get(ctx, getLocalQuery, username)
}

func (s *UserStore) CreateUser(ctx context.Context, user *users.User) error {
	_, err := s.db.NamedExecContext(ctx, createUserQuery, user)
	return errors.Wrap(err, "failed to create user")
}

func (s *UserStore) UpdateProfile(ctx context.Context, user *users.User) error {
	_, err := s.db.NamedExecContext(ctx, updateProfileQuery, user)
	return errors.Wrap(err, "failed to update user profile")
}

func (s *UserStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, role users.Role) error {
	_, err := s.db.ExecContext(ctx, updatePasswordQuery, passwordHash, role, id)
	return errors.Wrap(err, "failed to update user password")
}

func (s *UserStore) get(ctx context.Context, query string, args ...any) (*users.User, error) {
	var user users.User
	err := s.db.GetContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}
	return &user, nil
}
