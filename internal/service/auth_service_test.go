package service

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/tandem/internal/auth"
	"github.com/mmynk/tandem/internal/middleware"
	"github.com/mmynk/tandem/internal/storage/sqlite"
	"github.com/mmynk/tandem/pkg/api"
	"github.com/mmynk/tandem/pkg/api/apiconnect"
)

type lastLink struct {
	mu   sync.Mutex
	link string
}

func (l *lastLink) Send(_ context.Context, _ string, link string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.link = link
	return nil
}

func (l *lastLink) token(t *testing.T) string {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := url.Parse(l.link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

// setupAuthTestServer wires Auth and Group services behind the same auth
// interceptors the server uses so session tokens travel end to end.
func setupAuthTestServer(t *testing.T) (apiconnect.AuthServiceClient, apiconnect.GroupServiceClient, *lastLink) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	outbox := &lastLink{}
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewMagicLinkAuthenticator(store, outbox, "http://localhost:8080", auth.WithBcryptCost(bcrypt.MinCost))

	authPath, authHandler := apiconnect.NewAuthServiceHandler(
		NewAuthService(authenticator, jwtManager, store, slog.Default()),
		connect.WithInterceptors(middleware.OptionalAuth(jwtManager)),
	)
	groupPath, groupHandler := apiconnect.NewGroupServiceHandler(
		NewGroupService(store),
		connect.WithInterceptors(middleware.RequireAuth(jwtManager, apiconnect.GroupServiceResolveInviteProcedure)),
	)

	mux := http.NewServeMux()
	mux.Handle(authPath, authHandler)
	mux.Handle(groupPath, groupHandler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return apiconnect.NewAuthServiceClient(server.Client(), server.URL),
		apiconnect.NewGroupServiceClient(server.Client(), server.URL),
		outbox
}

func withToken[T any](token string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func TestAuth_MagicLinkSignIn(t *testing.T) {
	client, groups, outbox := setupAuthTestServer(t)
	ctx := context.Background()

	current, err := client.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
	require.NoError(t, err, "anonymous callers get no user, not an error")
	assert.Nil(t, current.Msg.User)

	_, err = client.RequestMagicLink(ctx, connect.NewRequest(&api.RequestMagicLinkRequest{Email: "Alice@Example.com"}))
	require.NoError(t, err)

	verified, err := client.VerifyMagicLink(ctx, connect.NewRequest(&api.VerifyMagicLinkRequest{Token: outbox.token(t)}))
	require.NoError(t, err)
	require.NotNil(t, verified.Msg.User)
	assert.Equal(t, "alice@example.com", verified.Msg.User.Email)
	assert.NotEmpty(t, verified.Msg.Token)
	assert.Greater(t, verified.Msg.ExpiresAt, time.Now().Unix())

	session := verified.Msg.Token
	current, err = client.GetCurrentUser(ctx, withToken(session, &api.GetCurrentUserRequest{}))
	require.NoError(t, err)
	require.NotNil(t, current.Msg.User)
	assert.Equal(t, verified.Msg.User.ID, current.Msg.User.ID)

	created, err := groups.CreateGroup(ctx, withToken(session, &api.CreateGroupRequest{Name: "Us"}))
	require.NoError(t, err)
	assert.Equal(t, verified.Msg.User.ID, created.Msg.Group.CreatedBy)

	_, err = client.Logout(ctx, withToken(session, &api.LogoutRequest{}))
	require.NoError(t, err)
}

func TestAuth_SecondSignInReusesAccount(t *testing.T) {
	client, _, outbox := setupAuthTestServer(t)
	ctx := context.Background()

	signIn := func() *api.User {
		_, err := client.RequestMagicLink(ctx, connect.NewRequest(&api.RequestMagicLinkRequest{Email: "bob@example.com"}))
		require.NoError(t, err)
		resp, err := client.VerifyMagicLink(ctx, connect.NewRequest(&api.VerifyMagicLinkRequest{Token: outbox.token(t)}))
		require.NoError(t, err)
		return resp.Msg.User
	}

	first := signIn()
	second := signIn()
	assert.Equal(t, first.ID, second.ID)
}

func TestAuth_Rejections(t *testing.T) {
	client, _, outbox := setupAuthTestServer(t)
	ctx := context.Background()

	_, err := client.RequestMagicLink(ctx, connect.NewRequest(&api.RequestMagicLinkRequest{Email: "nope"}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = client.VerifyMagicLink(ctx, connect.NewRequest(&api.VerifyMagicLinkRequest{Token: "forged.token"}))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	_, err = client.RequestMagicLink(ctx, connect.NewRequest(&api.RequestMagicLinkRequest{Email: "carol@example.com"}))
	require.NoError(t, err)
	token := outbox.token(t)
	_, err = client.VerifyMagicLink(ctx, connect.NewRequest(&api.VerifyMagicLinkRequest{Token: token}))
	require.NoError(t, err)
	_, err = client.VerifyMagicLink(ctx, connect.NewRequest(&api.VerifyMagicLinkRequest{Token: token}))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err), "links are single use")

	current, err := client.GetCurrentUser(ctx, withToken("garbage", &api.GetCurrentUserRequest{}))
	require.NoError(t, err)
	assert.Nil(t, current.Msg.User)
}

func TestAuth_GroupServiceRequiresSession(t *testing.T) {
	client, groups, outbox := setupAuthTestServer(t)
	ctx := context.Background()

	_, err := groups.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	_, err = groups.CreateGroup(ctx, withToken("garbage", &api.CreateGroupRequest{Name: "Us"}))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	_, err = client.RequestMagicLink(ctx, connect.NewRequest(&api.RequestMagicLinkRequest{Email: "dave@example.com"}))
	require.NoError(t, err)
	verified, err := client.VerifyMagicLink(ctx, connect.NewRequest(&api.VerifyMagicLinkRequest{Token: outbox.token(t)}))
	require.NoError(t, err)
	created, err := groups.CreateGroup(ctx, withToken(verified.Msg.Token, &api.CreateGroupRequest{Name: "Us"}))
	require.NoError(t, err)

	resolved, err := groups.ResolveInvite(ctx, connect.NewRequest(&api.ResolveInviteRequest{Code: created.Msg.Group.InviteCode}))
	require.NoError(t, err, "invite links resolve before sign-in")
	assert.Equal(t, "unauthenticated", resolved.Msg.State)

	resolved, err = groups.ResolveInvite(ctx, withToken(verified.Msg.Token, &api.ResolveInviteRequest{Code: created.Msg.Group.InviteCode}))
	require.NoError(t, err)
	assert.Equal(t, "member", resolved.Msg.State)
}
