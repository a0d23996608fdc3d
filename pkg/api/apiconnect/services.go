package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/tandem/pkg/api"
)

// AuthServiceName is the fully-qualified name of the AuthService.
const AuthServiceName = "tandem.v1.AuthService"

const (
	AuthServiceRequestMagicLinkProcedure = "/tandem.v1.AuthService/RequestMagicLink"
	AuthServiceVerifyMagicLinkProcedure  = "/tandem.v1.AuthService/VerifyMagicLink"
	AuthServiceGetCurrentUserProcedure   = "/tandem.v1.AuthService/GetCurrentUser"
	AuthServiceLogoutProcedure           = "/tandem.v1.AuthService/Logout"
)

// AuthServiceHandler signs users in with magic links and reports the current session.
type AuthServiceHandler interface {
	RequestMagicLink(context.Context, *connect.Request[api.RequestMagicLinkRequest]) (*connect.Response[api.RequestMagicLinkResponse], error)
	VerifyMagicLink(context.Context, *connect.Request[api.VerifyMagicLinkRequest]) (*connect.Response[api.VerifyMagicLinkResponse], error)
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
	Logout(context.Context, *connect.Request[api.LogoutRequest]) (*connect.Response[api.LogoutResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler for svc. It returns the
// path to mount it on.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(AuthServiceRequestMagicLinkProcedure, connect.NewUnaryHandler(AuthServiceRequestMagicLinkProcedure, svc.RequestMagicLink, opts...))
	mux.Handle(AuthServiceVerifyMagicLinkProcedure, connect.NewUnaryHandler(AuthServiceVerifyMagicLinkProcedure, svc.VerifyMagicLink, opts...))
	mux.Handle(AuthServiceGetCurrentUserProcedure, connect.NewUnaryHandler(AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts...))
	mux.Handle(AuthServiceLogoutProcedure, connect.NewUnaryHandler(AuthServiceLogoutProcedure, svc.Logout, opts...))
	return "/tandem.v1.AuthService/", mux
}

// AuthServiceClient is a client for the tandem.v1.AuthService service.
type AuthServiceClient interface {
	RequestMagicLink(context.Context, *connect.Request[api.RequestMagicLinkRequest]) (*connect.Response[api.RequestMagicLinkResponse], error)
	VerifyMagicLink(context.Context, *connect.Request[api.VerifyMagicLinkRequest]) (*connect.Response[api.VerifyMagicLinkResponse], error)
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
	Logout(context.Context, *connect.Request[api.LogoutRequest]) (*connect.Response[api.LogoutResponse], error)
}

// NewAuthServiceClient constructs a client for the tandem.v1.AuthService service.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &authServiceClient{
		requestMagicLink: connect.NewClient[api.RequestMagicLinkRequest, api.RequestMagicLinkResponse](httpClient, baseURL+AuthServiceRequestMagicLinkProcedure, opts...),
		verifyMagicLink:  connect.NewClient[api.VerifyMagicLinkRequest, api.VerifyMagicLinkResponse](httpClient, baseURL+AuthServiceVerifyMagicLinkProcedure, opts...),
		getCurrentUser:   connect.NewClient[api.GetCurrentUserRequest, api.GetCurrentUserResponse](httpClient, baseURL+AuthServiceGetCurrentUserProcedure, opts...),
		logout:           connect.NewClient[api.LogoutRequest, api.LogoutResponse](httpClient, baseURL+AuthServiceLogoutProcedure, opts...),
	}
}

type authServiceClient struct {
	requestMagicLink *connect.Client[api.RequestMagicLinkRequest, api.RequestMagicLinkResponse]
	verifyMagicLink  *connect.Client[api.VerifyMagicLinkRequest, api.VerifyMagicLinkResponse]
	getCurrentUser   *connect.Client[api.GetCurrentUserRequest, api.GetCurrentUserResponse]
	logout           *connect.Client[api.LogoutRequest, api.LogoutResponse]
}

func (c *authServiceClient) RequestMagicLink(ctx context.Context, req *connect.Request[api.RequestMagicLinkRequest]) (*connect.Response[api.RequestMagicLinkResponse], error) {
	return c.requestMagicLink.CallUnary(ctx, req)
}

func (c *authServiceClient) VerifyMagicLink(ctx context.Context, req *connect.Request[api.VerifyMagicLinkRequest]) (*connect.Response[api.VerifyMagicLinkResponse], error) {
	return c.verifyMagicLink.CallUnary(ctx, req)
}

func (c *authServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}

func (c *authServiceClient) Logout(ctx context.Context, req *connect.Request[api.LogoutRequest]) (*connect.Response[api.LogoutResponse], error) {
	return c.logout.CallUnary(ctx, req)
}

// GroupServiceName is the fully-qualified name of the GroupService.
const GroupServiceName = "tandem.v1.GroupService"

const (
	GroupServiceCreateGroupProcedure       = "/tandem.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure          = "/tandem.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure        = "/tandem.v1.GroupService/ListGroups"
	GroupServiceResolveInviteProcedure     = "/tandem.v1.GroupService/ResolveInvite"
	GroupServiceJoinGroupProcedure         = "/tandem.v1.GroupService/JoinGroup"
	GroupServiceRemoveMemberProcedure      = "/tandem.v1.GroupService/RemoveMember"
	GroupServiceGetGroupBalancesProcedure  = "/tandem.v1.GroupService/GetGroupBalances"
	GroupServiceGetGroupAnalyticsProcedure = "/tandem.v1.GroupService/GetGroupAnalytics"
)

// GroupServiceHandler manages groups, invite-based joining, balances and analytics.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	ResolveInvite(context.Context, *connect.Request[api.ResolveInviteRequest]) (*connect.Response[api.ResolveInviteResponse], error)
	JoinGroup(context.Context, *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
	GetGroupAnalytics(context.Context, *connect.Request[api.GetGroupAnalyticsRequest]) (*connect.Response[api.GetGroupAnalyticsResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler for svc. It returns the
// path to mount it on.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(GroupServiceCreateGroupProcedure, connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...))
	mux.Handle(GroupServiceGetGroupProcedure, connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...))
	mux.Handle(GroupServiceListGroupsProcedure, connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...))
	mux.Handle(GroupServiceResolveInviteProcedure, connect.NewUnaryHandler(GroupServiceResolveInviteProcedure, svc.ResolveInvite, opts...))
	mux.Handle(GroupServiceJoinGroupProcedure, connect.NewUnaryHandler(GroupServiceJoinGroupProcedure, svc.JoinGroup, opts...))
	mux.Handle(GroupServiceRemoveMemberProcedure, connect.NewUnaryHandler(GroupServiceRemoveMemberProcedure, svc.RemoveMember, opts...))
	mux.Handle(GroupServiceGetGroupBalancesProcedure, connect.NewUnaryHandler(GroupServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts...))
	mux.Handle(GroupServiceGetGroupAnalyticsProcedure, connect.NewUnaryHandler(GroupServiceGetGroupAnalyticsProcedure, svc.GetGroupAnalytics, opts...))
	return "/tandem.v1.GroupService/", mux
}

// GroupServiceClient is a client for the tandem.v1.GroupService service.
type GroupServiceClient interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	ResolveInvite(context.Context, *connect.Request[api.ResolveInviteRequest]) (*connect.Response[api.ResolveInviteResponse], error)
	JoinGroup(context.Context, *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
	GetGroupAnalytics(context.Context, *connect.Request[api.GetGroupAnalyticsRequest]) (*connect.Response[api.GetGroupAnalyticsResponse], error)
}

// NewGroupServiceClient constructs a client for the tandem.v1.GroupService service.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &groupServiceClient{
		createGroup:       connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		getGroup:          connect.NewClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		listGroups:        connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
		resolveInvite:     connect.NewClient[api.ResolveInviteRequest, api.ResolveInviteResponse](httpClient, baseURL+GroupServiceResolveInviteProcedure, opts...),
		joinGroup:         connect.NewClient[api.JoinGroupRequest, api.JoinGroupResponse](httpClient, baseURL+GroupServiceJoinGroupProcedure, opts...),
		removeMember:      connect.NewClient[api.RemoveMemberRequest, api.RemoveMemberResponse](httpClient, baseURL+GroupServiceRemoveMemberProcedure, opts...),
		getGroupBalances:  connect.NewClient[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse](httpClient, baseURL+GroupServiceGetGroupBalancesProcedure, opts...),
		getGroupAnalytics: connect.NewClient[api.GetGroupAnalyticsRequest, api.GetGroupAnalyticsResponse](httpClient, baseURL+GroupServiceGetGroupAnalyticsProcedure, opts...),
	}
}

type groupServiceClient struct {
	createGroup       *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	getGroup          *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	listGroups        *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	resolveInvite     *connect.Client[api.ResolveInviteRequest, api.ResolveInviteResponse]
	joinGroup         *connect.Client[api.JoinGroupRequest, api.JoinGroupResponse]
	removeMember      *connect.Client[api.RemoveMemberRequest, api.RemoveMemberResponse]
	getGroupBalances  *connect.Client[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse]
	getGroupAnalytics *connect.Client[api.GetGroupAnalyticsRequest, api.GetGroupAnalyticsResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *groupServiceClient) ResolveInvite(ctx context.Context, req *connect.Request[api.ResolveInviteRequest]) (*connect.Response[api.ResolveInviteResponse], error) {
	return c.resolveInvite.CallUnary(ctx, req)
}

func (c *groupServiceClient) JoinGroup(ctx context.Context, req *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error) {
	return c.joinGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	return c.removeMember.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroupAnalytics(ctx context.Context, req *connect.Request[api.GetGroupAnalyticsRequest]) (*connect.Response[api.GetGroupAnalyticsResponse], error) {
	return c.getGroupAnalytics.CallUnary(ctx, req)
}

// ExpenseServiceName is the fully-qualified name of the ExpenseService.
const ExpenseServiceName = "tandem.v1.ExpenseService"

const (
	ExpenseServiceCreateExpenseProcedure  = "/tandem.v1.ExpenseService/CreateExpense"
	ExpenseServiceListExpensesProcedure   = "/tandem.v1.ExpenseService/ListExpenses"
	ExpenseServiceDeleteExpenseProcedure  = "/tandem.v1.ExpenseService/DeleteExpense"
	ExpenseServiceListCategoriesProcedure = "/tandem.v1.ExpenseService/ListCategories"
)

// ExpenseServiceHandler records, lists and deletes group expenses.
type ExpenseServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	ListCategories(context.Context, *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler for svc. It returns the
// path to mount it on.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(ExpenseServiceCreateExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts...))
	mux.Handle(ExpenseServiceListExpensesProcedure, connect.NewUnaryHandler(ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts...))
	mux.Handle(ExpenseServiceDeleteExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...))
	mux.Handle(ExpenseServiceListCategoriesProcedure, connect.NewUnaryHandler(ExpenseServiceListCategoriesProcedure, svc.ListCategories, opts...))
	return "/tandem.v1.ExpenseService/", mux
}

// ExpenseServiceClient is a client for the tandem.v1.ExpenseService service.
type ExpenseServiceClient interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	ListCategories(context.Context, *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error)
}

// NewExpenseServiceClient constructs a client for the tandem.v1.ExpenseService service.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ExpenseServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &expenseServiceClient{
		createExpense:  connect.NewClient[api.CreateExpenseRequest, api.CreateExpenseResponse](httpClient, baseURL+ExpenseServiceCreateExpenseProcedure, opts...),
		listExpenses:   connect.NewClient[api.ListExpensesRequest, api.ListExpensesResponse](httpClient, baseURL+ExpenseServiceListExpensesProcedure, opts...),
		deleteExpense:  connect.NewClient[api.DeleteExpenseRequest, api.DeleteExpenseResponse](httpClient, baseURL+ExpenseServiceDeleteExpenseProcedure, opts...),
		listCategories: connect.NewClient[api.ListCategoriesRequest, api.ListCategoriesResponse](httpClient, baseURL+ExpenseServiceListCategoriesProcedure, opts...),
	}
}

type expenseServiceClient struct {
	createExpense  *connect.Client[api.CreateExpenseRequest, api.CreateExpenseResponse]
	listExpenses   *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
	deleteExpense  *connect.Client[api.DeleteExpenseRequest, api.DeleteExpenseResponse]
	listCategories *connect.Client[api.ListCategoriesRequest, api.ListCategoriesResponse]
}

func (c *expenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *expenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListCategories(ctx context.Context, req *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error) {
	return c.listCategories.CallUnary(ctx, req)
}
