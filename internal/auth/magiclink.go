package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/tandem/internal/models"
	"github.com/mmynk/tandem/internal/storage"
)

// DefaultLinkTTL is how long a magic link stays usable.
const DefaultLinkTTL = 15 * time.Minute

const secretBytes = 32

// pendingLink is what the cache keeps for an issued link. Only the bcrypt
// hash of the secret is stored.
type pendingLink struct {
	email string
	hash  []byte
}

// MagicLinkAuthenticator signs users in with single-use emailed links.
// Tokens have the form "<linkID>.<secret>".
type MagicLinkAuthenticator struct {
	users   UserStorage
	sender  Sender
	baseURL string
	cost    int

	mu    sync.Mutex
	links *cache.Cache
}

// MagicLinkOption configures a MagicLinkAuthenticator.
type MagicLinkOption func(*MagicLinkAuthenticator)

// WithLinkTTL overrides DefaultLinkTTL.
func WithLinkTTL(ttl time.Duration) MagicLinkOption {
	return func(a *MagicLinkAuthenticator) {
		a.links = cache.New(ttl, 2*ttl)
	}
}

// WithBcryptCost sets the cost used to hash link secrets.
func WithBcryptCost(cost int) MagicLinkOption {
	return func(a *MagicLinkAuthenticator) {
		a.cost = cost
	}
}

// NewMagicLinkAuthenticator creates an authenticator whose links point at
// baseURL + "/auth/verify".
func NewMagicLinkAuthenticator(users UserStorage, sender Sender, baseURL string, opts ...MagicLinkOption) *MagicLinkAuthenticator {
	a := &MagicLinkAuthenticator{
		users:   users,
		sender:  sender,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		cost:    bcrypt.DefaultCost,
		links:   cache.New(DefaultLinkTTL, 2*DefaultLinkTTL),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var _ Authenticator = (*MagicLinkAuthenticator)(nil)

// RequestLink issues a link for email and hands it to the sender.
func (a *MagicLinkAuthenticator) RequestLink(ctx context.Context, email string) error {
	email, err := models.NormalizeEmail(email)
	if err != nil {
		return err
	}

	secret := make([]byte, secretBytes)
	if _, err := rand.Read(secret); err != nil {
		return fmt.Errorf("failed to generate link secret: %w", err)
	}
	encoded := base64.RawURLEncoding.EncodeToString(secret)

	hash, err := bcrypt.GenerateFromPassword([]byte(encoded), a.cost)
	if err != nil {
		return fmt.Errorf("failed to hash link secret: %w", err)
	}

	linkID := uuid.New().String()
	a.links.SetDefault(linkID, pendingLink{email: email, hash: hash})

	token := linkID + "." + encoded
	link := a.baseURL + "/auth/verify?token=" + url.QueryEscape(token)
	if err := a.sender.Send(ctx, email, link); err != nil {
		a.links.Delete(linkID)
		return fmt.Errorf("failed to send magic link: %w", err)
	}
	return nil
}

// Verify consumes token. A token can be used once; expired, unknown and
// tampered tokens all return ErrInvalidLink.
func (a *MagicLinkAuthenticator) Verify(ctx context.Context, token string) (*models.User, error) {
	linkID, secret, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok || linkID == "" || secret == "" {
		return nil, ErrInvalidLink
	}

	pending, err := a.consume(linkID, secret)
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetUserByEmail(ctx, pending.email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user, err = models.NewUser(pending.email, "")
	if err != nil {
		return nil, err
	}
	err = a.users.CreateUser(ctx, user)
	if errors.Is(err, storage.ErrConflict) {
		// Signed in twice at once; the other request created the account.
		return a.users.GetUserByEmail(ctx, pending.email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	slog.InfoContext(ctx, "User created on first sign-in", "user_id", user.ID)
	return user, nil
}

func (a *MagicLinkAuthenticator) consume(linkID, secret string) (pendingLink, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	v, found := a.links.Get(linkID)
	if !found {
		return pendingLink{}, ErrInvalidLink
	}
	pending := v.(pendingLink)
	if err := bcrypt.CompareHashAndPassword(pending.hash, []byte(secret)); err != nil {
		return pendingLink{}, ErrInvalidLink
	}
	a.links.Delete(linkID)
	return pending, nil
}
