package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/tandem/internal/auth"
	"github.com/mmynk/tandem/internal/middleware"
	"github.com/mmynk/tandem/internal/models"
	"github.com/mmynk/tandem/internal/storage"
	"github.com/mmynk/tandem/pkg/api"
	"github.com/mmynk/tandem/pkg/api/apiconnect"
)

var _ apiconnect.AuthServiceHandler = (*AuthService)(nil)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	users         auth.UserStorage
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, users auth.UserStorage, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		users:         users,
		logger:        logger,
	}
}

// RequestMagicLink emails a sign-in link. The response is the same whether
// or not an account exists for the address.
func (s *AuthService) RequestMagicLink(ctx context.Context, req *connect.Request[api.RequestMagicLinkRequest]) (*connect.Response[api.RequestMagicLinkResponse], error) {
	s.logger.Info("RequestMagicLink request")

	if err := s.authenticator.RequestLink(ctx, req.Msg.Email); err != nil {
		if errors.Is(err, models.ErrValidation) {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		s.logger.Error("Failed to issue magic link", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&api.RequestMagicLinkResponse{}), nil
}

// VerifyMagicLink exchanges a link token for a session token.
func (s *AuthService) VerifyMagicLink(ctx context.Context, req *connect.Request[api.VerifyMagicLinkRequest]) (*connect.Response[api.VerifyMagicLinkResponse], error) {
	user, err := s.authenticator.Verify(ctx, req.Msg.Token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidLink) {
			s.logger.Warn("Magic link rejected")
			return nil, connect.NewError(connect.CodeUnauthenticated, err)
		}
		s.logger.Error("Magic link verification failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	token, expiresAt, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("User signed in", "user_id", user.ID)
	return connect.NewResponse(&api.VerifyMagicLinkResponse{
		User:      toAPIUser(user),
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	}), nil
}

// GetCurrentUser returns the signed-in user, or no user when the request
// carries no valid session. It never fails for anonymous callers.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return connect.NewResponse(&api.GetCurrentUserResponse{}), nil
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		// Valid token for an account that no longer exists.
		return connect.NewResponse(&api.GetCurrentUserResponse{}), nil
	}
	if err != nil {
		s.logger.Error("Failed to load current user", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&api.GetCurrentUserResponse{User: toAPIUser(user)}), nil
}

// Logout ends the session. Tokens are stateless, so the client discarding
// its token is what signs it out; this only records the event.
func (s *AuthService) Logout(ctx context.Context, req *connect.Request[api.LogoutRequest]) (*connect.Response[api.LogoutResponse], error) {
	if userID := middleware.GetUserID(ctx); userID != "" {
		s.logger.Info("User logged out", "user_id", userID, "email", middleware.GetEmail(ctx))
	}
	return connect.NewResponse(&api.LogoutResponse{}), nil
}
