package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/tandem/internal/ledger"
	"github.com/mmynk/tandem/internal/middleware"
	"github.com/mmynk/tandem/internal/models"
	"github.com/mmynk/tandem/internal/storage"
)

var (
	errNotSignedIn = errors.New("sign in required")
	errNotMember   = errors.New("not a member of this group")
	errNotAdmin    = errors.New("only group admins can remove other members")
)

// toConnectError maps domain errors onto Connect codes. It is applied once,
// at the handler boundary.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	var code connect.Code
	switch {
	case errors.Is(err, models.ErrValidation):
		code = connect.CodeInvalidArgument
	case errors.Is(err, storage.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, storage.ErrConflict):
		code = connect.CodeAlreadyExists
	case errors.Is(err, storage.ErrIntegrityViolation),
		errors.Is(err, storage.ErrLastMember),
		errors.Is(err, ledger.ErrEmptySplit):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	default:
		code = connect.CodeInternal
	}
	return connect.NewError(code, err)
}

// callerID returns the signed-in user or an Unauthenticated error.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errNotSignedIn)
	}
	return userID, nil
}

// requireMember loads the caller's membership of groupID. A missing group is
// NotFound; a group the caller does not belong to is PermissionDenied.
func requireMember(ctx context.Context, store storage.Store, groupID string) (*models.Member, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if groupID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("group_id is required"))
	}

	member, err := store.GetMember(ctx, groupID, userID)
	if err == nil {
		return member, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, toConnectError(err)
	}
	if _, err := store.GetGroup(ctx, groupID); err != nil {
		return nil, toConnectError(err)
	}
	slog.WarnContext(ctx, "Access denied", "group_id", groupID, "user_id", userID)
	return nil, connect.NewError(connect.CodePermissionDenied, errNotMember)
}
