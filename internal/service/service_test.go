package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tandem/internal/ledger"
	"github.com/mmynk/tandem/internal/middleware"
	"github.com/mmynk/tandem/internal/models"
	"github.com/mmynk/tandem/internal/storage/sqlite"
	"github.com/mmynk/tandem/pkg/api"
	"github.com/mmynk/tandem/pkg/api/apiconnect"
)

const testUserHeader = "X-Test-User"

// testAuthInterceptor trusts the X-Test-User header as the caller's user ID.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if userID := req.Header().Get(testUserHeader); userID != "" {
				ctx = middleware.WithUser(ctx, userID, "")
			}
			return next(ctx, req)
		}
	}
}

type testEnv struct {
	store    *sqlite.SQLiteStore
	groups   apiconnect.GroupServiceClient
	expenses apiconnect.ExpenseServiceClient
}

// setupTestServer starts Group and Expense services over a temp-file
// SQLite database.
func setupTestServer(t *testing.T, ledgerOpts ...ledger.Option) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err, "failed to create store")
	t.Cleanup(func() { store.Close() })

	interceptors := connect.WithInterceptors(testAuthInterceptor())
	groupPath, groupHandler := apiconnect.NewGroupServiceHandler(NewGroupService(store, ledgerOpts...), interceptors)
	expensePath, expenseHandler := apiconnect.NewExpenseServiceHandler(NewExpenseService(store), interceptors)

	mux := http.NewServeMux()
	mux.Handle(groupPath, groupHandler)
	mux.Handle(expensePath, expenseHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{
		store:    store,
		groups:   apiconnect.NewGroupServiceClient(server.Client(), server.URL),
		expenses: apiconnect.NewExpenseServiceClient(server.Client(), server.URL),
	}
}

// user creates an account and returns its ID.
func (e *testEnv) user(t *testing.T, email string) string {
	t.Helper()
	u, err := models.NewUser(email, "")
	require.NoError(t, err)
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u.ID
}

// group creates a group owned by owner and joins everyone else through the
// invite code.
func (e *testEnv) group(t *testing.T, name, owner string, others ...string) *api.Group {
	t.Helper()
	ctx := context.Background()

	created, err := e.groups.CreateGroup(ctx, as(owner, &api.CreateGroupRequest{Name: name}))
	require.NoError(t, err)

	for _, id := range others {
		_, err := e.groups.JoinGroup(ctx, as(id, &api.JoinGroupRequest{Code: created.Msg.Group.InviteCode}))
		require.NoError(t, err)
	}
	return created.Msg.Group
}

func (e *testEnv) expense(t *testing.T, caller string, req *api.CreateExpenseRequest) *api.Expense {
	t.Helper()
	resp, err := e.expenses.CreateExpense(context.Background(), as(caller, req))
	require.NoError(t, err)
	return resp.Msg.Expense
}

// balances returns user ID -> formatted balance.
func (e *testEnv) balances(t *testing.T, caller, groupID string) (map[string]string, []*api.Transfer) {
	t.Helper()
	resp, err := e.groups.GetGroupBalances(context.Background(), as(caller, &api.GetGroupBalancesRequest{GroupID: groupID}))
	require.NoError(t, err)

	out := make(map[string]string, len(resp.Msg.Balances))
	for _, b := range resp.Msg.Balances {
		out[b.UserID] = b.Amount
	}
	return out, resp.Msg.Settlements
}

// as wraps msg in a request made by userID. An empty userID is anonymous.
func as[T any](userID string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if userID != "" {
		req.Header().Set(testUserHeader, userID)
	}
	return req
}
