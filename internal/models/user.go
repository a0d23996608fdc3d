package models

import (
	"net/mail"
	"strings"
	"time"
)

// User represents someone who has signed in at least once.
// Accounts are created on the first successful magic-link sign-in.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique, lower-cased).
	Email string

	// DisplayName defaults to the local part of the email.
	DisplayName string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// NewUser validates the email and builds a user. ID is left for the store.
func NewUser(email, displayName string) (*User, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = email[:strings.IndexByte(email, '@')]
	}
	return &User{
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   time.Now().Unix(),
	}, nil
}

// NormalizeEmail trims and lower-cases an address, rejecting anything that
// is not a bare addr-spec.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", invalid("email", "must not be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("email", "malformed address")
	}
	return email, nil
}

// Label is what other members see: display name, or email as a fallback.
func (u *User) Label() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}
