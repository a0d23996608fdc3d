package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tandem/internal/models"
	"github.com/mmynk/tandem/internal/storage"
	"github.com/mmynk/tandem/pkg/api"
	"github.com/mmynk/tandem/pkg/api/apiconnect"
)

var _ apiconnect.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// CreateExpense records an expense paid by a member of the group. The payer
// defaults to the caller and the split to the payer alone. A shared expense
// whose split is only the payer is split across every member instead.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	caller, err := requireMember(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateExpense request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount,
		"split_count", len(req.Msg.SplitWith),
	)

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Msg.Amount))
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid amount %q: %w", req.Msg.Amount, models.ErrValidation))
	}
	paidBy := req.Msg.PaidBy
	if paidBy == "" {
		paidBy = caller.UserID
	}

	expense, err := models.NewExpense(models.ExpenseParams{
		GroupID:     req.Msg.GroupID,
		Amount:      amount,
		Description: req.Msg.Description,
		Category:    req.Msg.Category,
		PaidBy:      paidBy,
		SplitWith:   req.Msg.SplitWith,
		Shared:      req.Msg.Shared,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	if expense.Shared && len(expense.SplitWith) == 1 && expense.SplitWith[0] == expense.PaidBy {
		members, err := s.store.ListMembers(ctx, expense.GroupID)
		if err != nil {
			return nil, toConnectError(err)
		}
		expense.SplitWith = memberIDs(members)
		slices.Sort(expense.SplitWith)
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense created", "expense_id", expense.ID, "group_id", expense.GroupID)
	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// ListExpenses returns a group's expenses, newest first. With shared_only
// set, personal single-member expenses are left out.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	if _, err := requireMember(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListExpenses failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	if req.Msg.SharedOnly {
		expenses = sharedOnly(expenses)
	}

	out := make([]*api.Expense, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toAPIExpense(e))
	}
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// DeleteExpense removes an expense. Any member of its group may delete it.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	if _, err := callerID(ctx); err != nil {
		return nil, err
	}
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if _, err := requireMember(ctx, s.store, expense.GroupID); err != nil {
		return nil, err
	}

	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense deleted", "expense_id", expense.ID, "group_id", expense.GroupID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// ListCategories returns the expense categories in display order.
func (s *ExpenseService) ListCategories(ctx context.Context, req *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error) {
	categories := models.Categories()
	out := make([]*api.CategoryOption, 0, len(categories))
	for _, c := range categories {
		out = append(out, &api.CategoryOption{Key: string(c), Label: c.Label()})
	}
	return connect.NewResponse(&api.ListCategoriesResponse{Categories: out}), nil
}
