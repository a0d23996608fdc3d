package auth

import (
	"context"
	"errors"

	"github.com/mmynk/tandem/internal/models"
)

var (
	ErrInvalidLink = errors.New("sign-in link is invalid, expired or already used")
)

// Authenticator defines the interface for sign-in implementations.
// Service code only needs to start a sign-in and finish it; how the
// second factor travels (email link, OAuth callback, passkey) is up to the
// implementation.
type Authenticator interface {
	// RequestLink starts a sign-in for email. It succeeds for any
	// well-formed address, whether or not an account exists yet.
	RequestLink(ctx context.Context, email string) error

	// Verify completes a sign-in and returns the user, creating the
	// account on first use.
	Verify(ctx context.Context, token string) (*models.User, error)
}

// UserStorage defines the user persistence the authenticator needs.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
