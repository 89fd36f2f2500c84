package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already in use")
	ErrDuplicateUsername = errors.New("username already in use")
)

// User represents a registered user
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsStaff      bool      `json:"is_staff"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(username, email, firstName, lastName string, createdAt, updatedAt time.Time) *User {
	return &User{
		Username:  username,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// Roles returns the token roles granted to the user.
func (u *User) Roles() []string {
	if u.IsStaff {
		return []string{RoleStaff}
	}
	return []string{}
}

// DisplayName returns the first name when set, otherwise the username.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the identity it was issued for.
type TokenVerifier interface {
	Verify(token string) (Viewer, error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	// Delete removes the user together with the profile, organized events, RSVPs,
	// reviews and invitations that reference it.
	Delete(ctx context.Context, id string) error
}

// SignUpInput carries the fields accepted when registering a new account.
type SignUpInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthService registers users and exchanges credentials for bearer tokens.
type AuthService interface {
	SignUp(ctx context.Context, in SignUpInput) (*User, error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
}

// UserService exposes account and profile operations for the calling user.
type UserService interface {
	GetMe(ctx context.Context, viewer Viewer) (*User, error)
	DeleteMe(ctx context.Context, viewer Viewer) error
	GetProfile(ctx context.Context, viewer Viewer) (*Profile, error)
	// UpsertProfile creates or replaces the caller's profile. created is true on first write.
	UpsertProfile(ctx context.Context, viewer Viewer, in ProfileInput) (profile *Profile, created bool, err error)
}
