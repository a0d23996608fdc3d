package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/tandem/internal/models"
	"github.com/mmynk/tandem/internal/storage"
)

type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
	nextID  int
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: make(map[string]*models.User)}
}

func (m *memUsers) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[user.Email]; ok {
		return storage.ErrConflict
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	m.byEmail[user.Email] = user
	return nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, storage.ErrNotFound
}

func (m *memUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

// outbox records the last link sent per address.
type outbox struct {
	mu    sync.Mutex
	links map[string]string
}

func (o *outbox) Send(_ context.Context, email, link string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.links == nil {
		o.links = make(map[string]string)
	}
	o.links[email] = link
	return nil
}

func (o *outbox) token(t *testing.T, email string) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	link, ok := o.links[email]
	require.True(t, ok, "no link sent to %s", email)
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func newTestAuthenticator(opts ...MagicLinkOption) (*MagicLinkAuthenticator, *memUsers, *outbox) {
	users := newMemUsers()
	box := &outbox{}
	opts = append([]MagicLinkOption{WithBcryptCost(bcrypt.MinCost)}, opts...)
	return NewMagicLinkAuthenticator(users, box, "http://localhost:8080/", opts...), users, box
}

func TestMagicLink_FirstSignInCreatesUser(t *testing.T) {
	a, users, box := newTestAuthenticator()
	ctx := context.Background()

	require.NoError(t, a.RequestLink(ctx, "  Alice@Example.com "))

	box.mu.Lock()
	link := box.links["alice@example.com"]
	box.mu.Unlock()
	assert.True(t, strings.HasPrefix(link, "http://localhost:8080/auth/verify?token="), link)

	user, err := a.Verify(ctx, box.token(t, "alice@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "alice", user.DisplayName)

	stored, err := users.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
}

func TestMagicLink_ExistingUserIsReused(t *testing.T) {
	a, users, box := newTestAuthenticator()
	ctx := context.Background()

	existing, _ := models.NewUser("bob@example.com", "Bobby")
	require.NoError(t, users.CreateUser(ctx, existing))

	require.NoError(t, a.RequestLink(ctx, "bob@example.com"))
	user, err := a.Verify(ctx, box.token(t, "bob@example.com"))
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)
	assert.Equal(t, "Bobby", user.DisplayName)
}

func TestMagicLink_SingleUse(t *testing.T) {
	a, _, box := newTestAuthenticator()
	ctx := context.Background()

	require.NoError(t, a.RequestLink(ctx, "carol@example.com"))
	token := box.token(t, "carol@example.com")

	_, err := a.Verify(ctx, token)
	require.NoError(t, err)

	_, err = a.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidLink)
}

func TestMagicLink_RejectsBadTokens(t *testing.T) {
	a, _, box := newTestAuthenticator()
	ctx := context.Background()

	require.NoError(t, a.RequestLink(ctx, "dave@example.com"))
	token := box.token(t, "dave@example.com")
	linkID, _, _ := strings.Cut(token, ".")

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separator", "abcdef"},
		{"unknown link", "00000000-0000-0000-0000-000000000000.secret"},
		{"wrong secret", linkID + ".not-the-secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Verify(ctx, tt.token)
			assert.ErrorIs(t, err, ErrInvalidLink)
		})
	}

	// A failed guess does not burn the real link.
	_, err := a.Verify(ctx, token)
	assert.NoError(t, err)
}

func TestMagicLink_Expires(t *testing.T) {
	a, _, box := newTestAuthenticator(WithLinkTTL(50 * time.Millisecond))
	ctx := context.Background()

	require.NoError(t, a.RequestLink(ctx, "erin@example.com"))
	token := box.token(t, "erin@example.com")

	time.Sleep(120 * time.Millisecond)

	_, err := a.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidLink)
}

func TestMagicLink_InvalidEmail(t *testing.T) {
	a, _, _ := newTestAuthenticator()

	for _, email := range []string{"", "not-an-email", "Alice <alice@example.com>"} {
		err := a.RequestLink(context.Background(), email)
		assert.ErrorIs(t, err, models.ErrValidation, "email %q", email)
	}
}

func TestMagicLink_SendFailureDropsLink(t *testing.T) {
	users := newMemUsers()
	a := NewMagicLinkAuthenticator(users, SenderFunc(func(context.Context, string, string) error {
		return fmt.Errorf("smtp down")
	}), "http://x", WithBcryptCost(bcrypt.MinCost))

	err := a.RequestLink(context.Background(), "frank@example.com")
	require.Error(t, err)
	assert.Equal(t, 0, a.links.ItemCount())
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := &models.User{ID: "user-1", Email: "alice@example.com"}

	token, expiresAt, err := m.Generate(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWTManager("other", time.Hour).Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired, _, err := NewJWTManager("test-secret", -time.Minute).Generate(user)
		require.NoError(t, err)
		_, err = m.Validate(expired)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Validate("not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{"Bearer abc", "abc", nil},
		{"bearer abc", "abc", nil},
		{"", "", ErrMissingToken},
		{"Basic abc", "", ErrInvalidToken},
		{"Bearer", "", ErrInvalidToken},
		{"Bearer ", "", ErrInvalidToken},
	}
	for _, tt := range tests {
		got, err := BearerToken(tt.header)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr, "header %q", tt.header)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
