// Package api defines the request and response messages of the tandem.v1
// services. Messages travel as JSON; amounts are decimal strings.
package api

// User is a signed-in account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

type RequestMagicLinkRequest struct {
	Email string `json:"email"`
}

type RequestMagicLinkResponse struct{}

type VerifyMagicLinkRequest struct {
	Token string `json:"token"`
}

type VerifyMagicLinkResponse struct {
	User *User `json:"user"`
	// Token is the session token for the Authorization header.
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

type GetCurrentUserRequest struct{}

// GetCurrentUserResponse carries a nil User when there is no session.
type GetCurrentUserResponse struct {
	User *User `json:"user,omitempty"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

// Member is one participant of a group.
type Member struct {
	UserID   string `json:"user_id"`
	Label    string `json:"label"`
	Role     string `json:"role"`
	JoinedAt int64  `json:"joined_at"`
}

type Group struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"invite_code"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  int64     `json:"created_at"`
	Members    []*Member `json:"members,omitempty"`
}

// GroupPreview is what an invite link reveals before joining.
type GroupPreview struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
}

type CreateGroupRequest struct {
	Name string `json:"name"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type ResolveInviteRequest struct {
	Code string `json:"code"`
}

// ResolveInviteResponse reports the caller's join state. Group is nil for
// unauthenticated callers.
type ResolveInviteResponse struct {
	State string        `json:"state"`
	Group *GroupPreview `json:"group,omitempty"`
}

type JoinGroupRequest struct {
	Code string `json:"code"`
}

type JoinGroupResponse struct {
	Group         *Group `json:"group"`
	AlreadyMember bool   `json:"already_member"`
}

type RemoveMemberRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

type RemoveMemberResponse struct{}

// Balance is a member's net position. Positive means others owe them.
type Balance struct {
	UserID string `json:"user_id"`
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

// Transfer is one suggested payment.
type Transfer struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type GetGroupBalancesRequest struct {
	GroupID    string `json:"group_id"`
	SharedOnly bool   `json:"shared_only"`
}

type GetGroupBalancesResponse struct {
	Balances    []*Balance  `json:"balances"`
	Settlements []*Transfer `json:"settlements"`
}

type CategoryTotal struct {
	Category string            `json:"category"`
	Label    string            `json:"label"`
	Amount   string            `json:"amount"`
	Percent  string            `json:"percent"`
	ByPayer  map[string]string `json:"by_payer"`
}

type Summary struct {
	TotalSpent string            `json:"total_spent"`
	Count      int               `json:"count"`
	ByPayer    map[string]string `json:"by_payer"`
	Categories []*CategoryTotal  `json:"categories"`
}

type MonthTotal struct {
	// Month is formatted YYYY-MM.
	Month   string            `json:"month"`
	Total   string            `json:"total"`
	ByPayer map[string]string `json:"by_payer"`
}

type WeekTotal struct {
	// WeekStart is the Sunday opening the week, formatted YYYY-MM-DD.
	WeekStart string `json:"week_start"`
	Total     string `json:"total"`
}

type GetGroupAnalyticsRequest struct {
	GroupID    string `json:"group_id"`
	SharedOnly bool   `json:"shared_only"`
	// Weeks defaults to 8.
	Weeks int `json:"weeks"`
	// Timezone is an IANA name used for month and week buckets; UTC if empty.
	Timezone string `json:"timezone"`
	// RecentLimit defaults to 10.
	RecentLimit int `json:"recent_limit"`
}

type GetGroupAnalyticsResponse struct {
	Summary *Summary      `json:"summary"`
	Monthly []*MonthTotal `json:"monthly"`
	Weekly  []*WeekTotal  `json:"weekly"`
	Recent  []*Expense    `json:"recent"`
}

type Expense struct {
	ID            string   `json:"id"`
	GroupID       string   `json:"group_id"`
	Amount        string   `json:"amount"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	CategoryLabel string   `json:"category_label"`
	PaidBy        string   `json:"paid_by"`
	SplitWith     []string `json:"split_with"`
	Shared        bool     `json:"shared"`
	CreatedAt     int64    `json:"created_at"`
}

type CreateExpenseRequest struct {
	GroupID     string `json:"group_id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
	// PaidBy defaults to the caller.
	PaidBy string `json:"paid_by"`
	// SplitWith defaults to the payer alone.
	SplitWith []string `json:"split_with"`
	Shared    bool     `json:"shared"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	GroupID    string `json:"group_id"`
	SharedOnly bool   `json:"shared_only"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type DeleteExpenseResponse struct{}

// CategoryOption is one entry of the expense form's category picker.
type CategoryOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type ListCategoriesRequest struct{}

type ListCategoriesResponse struct {
	Categories []*CategoryOption `json:"categories"`
}
