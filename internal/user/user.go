package users

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

type ContextKey string

const UserKey ContextKey = "user"

type User struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	Username     string    `db:"username"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	Provider     *string   `db:"provider"`
	ProviderID   *string   `db:"provider_id"`
	PasswordHash *string   `db:"password_hash"`
	AvatarURL    *string   `db:"avatar_url"`
}

func (u *User) Actor() Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

// Actor is the identity a mutating service call is made on behalf of. The zero value is an
// anonymous caller.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsAuthenticated() bool {
	return a.UserID != uuid.Nil
}

// UserFromContext returns the user loaded by the auth middleware, or nil.
func UserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(UserKey).(*User)
	return user
}

// ActorFromContext returns the caller's actor, anonymous when nobody is signed in.
func ActorFromContext(ctx context.Context) Actor {
	if user := UserFromContext(ctx); user != nil {
		return user.Actor()
	}
	return Actor{}
}

func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}
