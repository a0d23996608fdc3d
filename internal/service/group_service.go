package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/tandem/internal/invite"
	"github.com/mmynk/tandem/internal/ledger"
	"github.com/mmynk/tandem/internal/middleware"
	"github.com/mmynk/tandem/internal/models"
	"github.com/mmynk/tandem/internal/storage"
	"github.com/mmynk/tandem/pkg/api"
	"github.com/mmynk/tandem/pkg/api/apiconnect"
)

const defaultRecentLimit = 10

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService.
type GroupService struct {
	store      storage.Store
	ledgerOpts []ledger.Option
}

// NewGroupService creates a new GroupService with the given storage backend.
// ledgerOpts are passed to every balance computation.
func NewGroupService(store storage.Store, ledgerOpts ...ledger.Option) *GroupService {
	return &GroupService{store: store, ledgerOpts: ledgerOpts}
}

// CreateGroup creates a group with the caller as its admin.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received", "name", req.Msg.Name, "user_id", userID)

	group, err := models.NewGroup(req.Msg.Name, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.CreateGroup(ctx, group, userID); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	members, err := s.store.ListMembers(ctx, group.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group, members)}), nil
}

// GetGroup returns a group with its members.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	if _, err := requireMember(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, err
	}

	var (
		group   *models.Group
		members []*models.Member
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		group, err = s.store.GetGroup(gctx, req.Msg.GroupID)
		return err
	})
	g.Go(func() (err error) {
		members, err = s.store.ListMembers(gctx, req.Msg.GroupID)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group, members)}), nil
}

// ListGroups returns the caller's groups, newest first.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		slog.Error("ListGroups failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Group, 0, len(groups))
	for _, group := range groups {
		out = append(out, toAPIGroup(group, nil))
	}
	slog.Info("ListGroups successful", "user_id", userID, "count", len(out))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// ResolveInvite tells the caller where they stand with the group behind an
// invite code. Anonymous callers get JoinStateUnauthenticated and no
// preview; the client sends them to sign in and back.
func (s *GroupService) ResolveInvite(ctx context.Context, req *connect.Request[api.ResolveInviteRequest]) (*connect.Response[api.ResolveInviteResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return connect.NewResponse(&api.ResolveInviteResponse{
			State: string(models.JoinStateUnauthenticated),
		}), nil
	}

	group, err := s.findByCode(ctx, req.Msg.Code)
	if err != nil {
		return nil, err
	}
	members, err := s.store.ListMembers(ctx, group.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	state := models.JoinStateNotMember
	if slices.ContainsFunc(members, func(m *models.Member) bool { return m.UserID == userID }) {
		state = models.JoinStateMember
	}
	return connect.NewResponse(&api.ResolveInviteResponse{
		State: string(state),
		Group: &api.GroupPreview{ID: group.ID, Name: group.Name, MemberCount: len(members)},
	}), nil
}

// JoinGroup adds the caller to the group behind an invite code. Joining a
// group one already belongs to succeeds without changes.
func (s *GroupService) JoinGroup(ctx context.Context, req *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	group, err := s.findByCode(ctx, req.Msg.Code)
	if err != nil {
		return nil, err
	}

	alreadyMember := false
	_, err = s.store.GetMember(ctx, group.ID, userID)
	switch {
	case err == nil:
		alreadyMember = true
	case errors.Is(err, storage.ErrNotFound):
		_, err = s.store.AddMember(ctx, group.ID, userID, models.RoleMember)
		if errors.Is(err, storage.ErrConflict) {
			alreadyMember = true
		} else if err != nil {
			slog.Error("JoinGroup failed", "group_id", group.ID, "user_id", userID, "error", err)
			return nil, toConnectError(err)
		}
	default:
		return nil, toConnectError(err)
	}

	members, err := s.store.ListMembers(ctx, group.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	if alreadyMember {
		slog.Info("JoinGroup no-op, already a member", "group_id", group.ID, "user_id", userID)
	} else {
		slog.Info("Member joined", "group_id", group.ID, "user_id", userID)
	}
	return connect.NewResponse(&api.JoinGroupResponse{
		Group:         toAPIGroup(group, members),
		AlreadyMember: alreadyMember,
	}), nil
}

func (s *GroupService) findByCode(ctx context.Context, raw string) (*models.Group, error) {
	code := invite.Normalize(raw)
	if !invite.Valid(code) {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("invite code %q: %w", raw, storage.ErrNotFound))
	}
	group, err := s.store.FindGroupByInviteCode(ctx, code)
	if err != nil {
		return nil, toConnectError(err)
	}
	return group, nil
}

// RemoveMember removes a member from a group. Members may remove
// themselves; removing anyone else takes an admin.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	caller, err := requireMember(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	if req.Msg.UserID != caller.UserID && !caller.IsAdmin() {
		return nil, connect.NewError(connect.CodePermissionDenied, errNotAdmin)
	}

	if err := s.store.RemoveMember(ctx, req.Msg.GroupID, req.Msg.UserID); err != nil {
		slog.Error("RemoveMember failed", "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Member removed", "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID, "by", caller.UserID)
	return connect.NewResponse(&api.RemoveMemberResponse{}), nil
}

// loadLedger fetches members and expenses concurrently.
func (s *GroupService) loadLedger(ctx context.Context, groupID string) ([]*models.Member, []*models.Expense, error) {
	var (
		members  []*models.Member
		expenses []*models.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		members, err = s.store.ListMembers(gctx, groupID)
		return err
	})
	g.Go(func() (err error) {
		expenses, err = s.store.ListExpensesByGroup(gctx, groupID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return members, expenses, nil
}

// GetGroupBalances computes every member's net balance and the transfers
// that settle them. Ids that appear in expenses but are no longer members
// are reported too, labelled with their id.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	if _, err := requireMember(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, err
	}
	slog.Info("GetGroupBalances request received", "group_id", req.Msg.GroupID, "shared_only", req.Msg.SharedOnly)

	members, expenses, err := s.loadLedger(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetGroupBalances failed to load", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	entries := toEntries(expenses)
	if req.Msg.SharedOnly {
		entries = ledger.FilterShared(entries)
	}

	balances, err := ledger.ComputeGroupSummary(memberIDs(members), entries, s.ledgerOpts...)
	if err != nil {
		slog.Error("GetGroupBalances failed to compute", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	labels := make(map[string]string, len(members))
	out := make([]*api.Balance, 0, len(balances))
	for _, m := range members {
		labels[m.UserID] = m.Label
		out = append(out, &api.Balance{UserID: m.UserID, Label: m.Label, Amount: formatAmount(balances[m.UserID])})
	}
	var ghosts []string
	for id := range balances {
		if _, ok := labels[id]; !ok {
			ghosts = append(ghosts, id)
		}
	}
	slices.Sort(ghosts)
	for _, id := range ghosts {
		out = append(out, &api.Balance{UserID: id, Label: id, Amount: formatAmount(balances[id])})
	}

	transfers := ledger.ComputeSettlement(balances)
	settlements := make([]*api.Transfer, 0, len(transfers))
	for _, t := range transfers {
		settlements = append(settlements, &api.Transfer{From: t.From, To: t.To, Amount: formatAmount(t.Amount)})
	}

	slog.Info("GetGroupBalances successful",
		"group_id", req.Msg.GroupID,
		"expenses", len(entries),
		"transfers", len(settlements),
	)
	return connect.NewResponse(&api.GetGroupBalancesResponse{
		Balances:    out,
		Settlements: settlements,
	}), nil
}

// GetGroupAnalytics returns spending summaries for a group.
func (s *GroupService) GetGroupAnalytics(ctx context.Context, req *connect.Request[api.GetGroupAnalyticsRequest]) (*connect.Response[api.GetGroupAnalyticsResponse], error) {
	if _, err := requireMember(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, err
	}

	loc := time.UTC
	if req.Msg.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(req.Msg.Timezone)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("timezone: %w", err))
		}
	}
	recentLimit := req.Msg.RecentLimit
	if recentLimit <= 0 {
		recentLimit = defaultRecentLimit
	}

	_, expenses, err := s.loadLedger(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetGroupAnalytics failed to load", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	if req.Msg.SharedOnly {
		expenses = sharedOnly(expenses)
	}
	entries := toEntries(expenses)

	byID := make(map[string]*models.Expense, len(expenses))
	for _, e := range expenses {
		byID[e.ID] = e
	}
	recent := make([]*api.Expense, 0, recentLimit)
	for _, e := range ledger.Recent(entries, recentLimit) {
		recent = append(recent, toAPIExpense(byID[e.ID]))
	}

	return connect.NewResponse(&api.GetGroupAnalyticsResponse{
		Summary: toAPISummary(ledger.Summarize(entries)),
		Monthly: toAPIMonths(ledger.MonthlyTrend(entries, loc)),
		Weekly:  toAPIWeeks(ledger.WeeklyTotals(entries, loc, req.Msg.Weeks)),
		Recent:  recent,
	}), nil
}

// sharedOnly keeps the expenses ledger.FilterShared keeps, in order.
func sharedOnly(expenses []*models.Expense) []*models.Expense {
	keep := make(map[string]bool)
	for _, e := range ledger.FilterShared(toEntries(expenses)) {
		keep[e.ID] = true
	}
	out := make([]*models.Expense, 0, len(keep))
	for _, e := range expenses {
		if keep[e.ID] {
			out = append(out, e)
		}
	}
	return out
}
