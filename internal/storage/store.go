// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/tandem/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a record already exists, such as a
	// duplicate membership.
	ErrConflict = errors.New("already exists")

	// ErrIntegrityViolation is returned when an expense references a payer
	// or split member outside its group.
	ErrIntegrityViolation = errors.New("integrity violation")

	// ErrLastMember is returned when removing a member would leave the
	// group empty.
	ErrLastMember = errors.New("group must keep at least one member")
)

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser persists a new user. The user.ID field is populated by the
	// store. Returns ErrConflict if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns ErrNotFound if no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns ErrNotFound if the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// GroupStore persists groups.
type GroupStore interface {
	// CreateGroup persists the group and adds creatorID as its admin in one
	// transaction. ID and InviteCode are assigned by the store.
	CreateGroup(ctx context.Context, group *models.Group, creatorID string) error

	// GetGroup returns ErrNotFound if the group does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// FindGroupByInviteCode returns ErrNotFound if no group has the code.
	FindGroupByInviteCode(ctx context.Context, code string) (*models.Group, error)

	// ListGroupsForUser returns the groups userID belongs to, newest first.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)
}

// MembershipStore persists group memberships.
type MembershipStore interface {
	// AddMember returns ErrConflict when userID is already a member.
	AddMember(ctx context.Context, groupID, userID string, role models.Role) (*models.Member, error)

	// GetMember returns ErrNotFound when userID is not a member.
	GetMember(ctx context.Context, groupID, userID string) (*models.Member, error)

	// ListMembers returns the group's members in join order.
	ListMembers(ctx context.Context, groupID string) ([]*models.Member, error)

	// RemoveMember returns ErrNotFound when userID is not a member and
	// ErrLastMember when userID is the only one left. A group never loses
	// its last admin: the longest-standing member is promoted instead.
	RemoveMember(ctx context.Context, groupID, userID string) error
}

// ExpenseStore persists expenses.
type ExpenseStore interface {
	// CreateExpense persists a new expense. The expense.ID field is
	// populated by the store. Returns ErrIntegrityViolation when the payer
	// or a split member is not in the group.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense returns ErrNotFound if the expense does not exist.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup returns the group's expenses, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// DeleteExpense returns ErrNotFound if the expense does not exist.
	DeleteExpense(ctx context.Context, expenseID string) error
}

// Store combines every persistence concern behind one handle.
// This abstraction allows swapping storage backends without changing the
// service layer.
type Store interface {
	UserStore
	GroupStore
	MembershipStore
	ExpenseStore

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
