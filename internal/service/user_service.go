package service

import (
	"context"
	"slices"
	"strings"

	"github.com/AdamBeresnev/matchday/internal/apperr"
	"github.com/AdamBeresnev/matchday/internal/logging"
	"github.com/AdamBeresnev/matchday/internal/store"
	users "github.com/AdamBeresnev/matchday/internal/user"
	"github.com/AdamBeresnev/matchday/internal/utils"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var guestID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type UserService struct {
	store       *store.UserStore
	adminEmails []string
}

// NewUserService creates the service. OAuth users whose email is in adminEmails become admins.
func NewUserService(store *store.UserStore, adminEmails []string) *UserService {
	lowered := make([]string, len(adminEmails))
	for i, email := range adminEmails {
		lowered[i] = strings.ToLower(email)
	}
	return &UserService{store: store, adminEmails: lowered}
}

func (s *UserService) roleForEmail(email string) users.Role {
	if email != "" && slices.Contains(s.adminEmails, strings.ToLower(email)) {
		return users.RoleAdmin
	}
	return users.RoleUser
}

func (s *UserService) FindOrCreateUserByProvider(ctx context.Context, gothUser goth.User) (*users.User, error) {
	user, err := s.store.GetUserByProvider(ctx, gothUser.Provider, gothUser.UserID)
	if err == nil {
		role := user.Role
		if s.roleForEmail(gothUser.Email) == users.RoleAdmin {
			role = users.RoleAdmin
		}
		if utils.Deref(user.AvatarURL, "") != gothUser.AvatarURL || user.Username != displayName(gothUser) || role != user.Role {
			user.AvatarURL = utils.NonBlank(gothUser.AvatarURL)
			user.Username = displayName(gothUser)
			user.Role = role
			if err := s.store.UpdateProfile(ctx, user); err != nil {
				return nil, apperr.Internal(err, "failed to update user")
			}
		}
		return user, nil
	}
	if !isNotFound(err) {
		return nil, apperr.Internal(err, "failed to find user")
	}

	newUser := &users.User{
		ID:         uuid.New(),
		Email:      gothUser.Email,
		Username:   displayName(gothUser),
		Role:       s.roleForEmail(gothUser.Email),
		Provider:   utils.Ptr(gothUser.Provider),
		ProviderID: utils.Ptr(gothUser.UserID),
		AvatarURL:  utils.NonBlank(gothUser.AvatarURL),
	}
	if err := s.store.CreateUser(ctx, newUser); err != nil {
		return nil, apperr.Internal(err, "failed to create user")
	}
	logging.Default().InfoContext(ctx, "user created", "user_id", newUser.ID, "provider", gothUser.Provider, "role", newUser.Role)
	return newUser, nil
}

// EnsureGuestUser returns the shared read-only guest account, creating it on first use.
func (s *UserService) EnsureGuestUser(ctx context.Context) (*users.User, error) {
	user, err := s.store.GetUser(ctx, guestID)
	if err == nil {
		return user, nil
	}
	if !isNotFound(err) {
		return nil, apperr.Internal(err, "failed to find guest user")
	}

	guest := &users.User{
		ID:       guestID,
		Email:    "guest@matchday.local",
		Username: "Guest User",
		Role:     users.RoleGuest,
	}
	if err := s.store.CreateUser(ctx, guest); err != nil {
		return nil, apperr.Internal(err, "failed to create guest user")
	}
	return guest, nil
}

// Register creates a local account with the user role.
func (s *UserService) Register(ctx context.Context, username, password, confirmPassword string) (*users.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" || confirmPassword == "" {
		return nil, apperr.Validation("All fields are required")
	}
	if password != confirmPassword {
		return nil, apperr.Validation("Passwords do not match")
	}
	if len(password) < minPasswordLength {
		return nil, apperr.Validation("Password must be at least %d characters long", minPasswordLength)
	}

	if _, err := s.store.GetLocalUser(ctx, username); err == nil {
		return nil, apperr.Validation("Username already exists")
	} else if !isNotFound(err) {
		return nil, apperr.Internal(err, "failed to find user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err, "failed to hash password")
	}

	user := &users.User{
		ID:           uuid.New(),
		Username:     username,
		Role:         users.RoleUser,
		PasswordHash: utils.Ptr(string(hash)),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, apperr.Internal(err, "failed to create user")
	}
	return user, nil
}

// Authenticate checks a local username and password.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*users.User, error) {
	user, err := s.store.GetLocalUser(ctx, strings.TrimSpace(username))
	if isNotFound(err) {
		return nil, apperr.Validation("Invalid username or password")
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to find user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(utils.Deref(user.PasswordHash, "")), []byte(password)); err != nil {
		return nil, apperr.Validation("Invalid username or password")
	}
	return user, nil
}

// SeedAdmin makes sure a local admin account with the given credentials exists.
func (s *UserService) SeedAdmin(ctx context.Context, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal(err, "failed to hash password")
	}

	existing, err := s.store.GetLocalUser(ctx, username)
	switch {
	case err == nil:
		return s.store.UpdatePassword(ctx, existing.ID, string(hash), users.RoleAdmin)
	case !isNotFound(err):
		return apperr.Internal(err, "failed to find admin")
	}

	admin := &users.User{
		ID:           uuid.New(),
		Username:     username,
		Role:         users.RoleAdmin,
		PasswordHash: utils.Ptr(string(hash)),
	}
	if err := s.store.CreateUser(ctx, admin); err != nil {
		return apperr.Internal(err, "failed to create admin")
	}
	logging.Default().InfoContext(ctx, "admin account seeded", "username", username)
	return nil
}

func displayName(u goth.User) string {
	for _, name := range []string{u.NickName, u.Name, u.Email} {
		if name != "" {
			return name
		}
	}
	return "Player"
}
