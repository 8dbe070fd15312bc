package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User domain errors.
var (
	ErrUserNotFound       = &Error{Code: ENOTFOUND, Message: "User not found"}
	ErrEmailTaken         = &Error{Code: ECONFLICT, Message: "Email already registered"}
	ErrInvalidCredentials = &Error{Code: EUNAUTHORIZED, Message: "Invalid email or password"}
	ErrInvalidToken       = &Error{Code: EUNAUTHORIZED, Message: "Invalid or expired token"}
)

// Role determines what a user may do. Artists manage their own products;
// admins manage everything.
type Role string

const (
	RoleUser   Role = "user"
	RoleArtist Role = "artist"
	RoleAdmin  Role = "admin"
)

// User is an account on the marketplace. PasswordHash is never serialized.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity is the verified caller identity threaded explicitly through every
// operation that needs one. It is established by the auth middleware and
// never re-derived inside the core.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdmin reports whether the identity carries the admin role.
func (id Identity) IsAdmin() bool { return id.Role == RoleAdmin }

// CreateUserParams contains the fields accepted at registration.
type CreateUserParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      Role
}

// TokenPair is an access token plus the refresh token that renews it.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserStore is the persistence contract for users and refresh tokens.
type UserStore interface {
	Create(ctx context.Context, params CreateUserParams, passwordHash string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, page, limit int) ([]User, int64, error)

	// SaveRefreshToken stores a refresh token for the user.
	SaveRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error

	// HasRefreshToken reports whether the token is currently stored for the user.
	HasRefreshToken(ctx context.Context, userID uuid.UUID, token string) (bool, error)

	// DeleteRefreshToken revokes a single refresh token.
	DeleteRefreshToken(ctx context.Context, userID uuid.UUID, token string) error
}

// UserService provides account and authentication business logic.
type UserService interface {
	Register(ctx context.Context, params CreateUserParams) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	ListUsers(ctx context.Context, page, limit int) ([]User, int64, error)
}
