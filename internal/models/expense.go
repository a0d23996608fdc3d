package models

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	maxDescriptionLen = 200

	// AmountPlaces is the number of decimal places an amount may carry.
	AmountPlaces = 2
)

// MaxAmount is the largest amount a single expense may record.
var MaxAmount = decimal.New(1, 9)

// Expense is a single spend paid by one member and split equally across
// SplitWith. Expenses are immutable; deleting one is the only mutation.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Amount is the positive, currency-agnostic amount paid.
	Amount decimal.Decimal

	// Description is free text and may be empty.
	Description string

	Category Category

	// PaidBy is the user ID of the paying member.
	PaidBy string

	// SplitWith holds the user IDs sharing the cost: non-empty, sorted,
	// without duplicates. It may exclude PaidBy.
	SplitWith []string

	// Shared marks an expense as shared household spending. Only the split
	// moves balances; the expense service widens a flagged payer-only split
	// to the whole group when recording it.
	Shared bool

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// ExpenseParams carries unvalidated input for NewExpense.
type ExpenseParams struct {
	GroupID     string
	Amount      decimal.Decimal
	Description string
	Category    string
	PaidBy      string
	SplitWith   []string
	Shared      bool
}

// NewExpense validates p and builds an expense.
// An empty SplitWith defaults to the payer alone.
func NewExpense(p ExpenseParams) (*Expense, error) {
	if p.GroupID == "" {
		return nil, invalid("group", "must not be empty")
	}
	if err := validateAmount(p.Amount); err != nil {
		return nil, err
	}
	description := strings.TrimSpace(p.Description)
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return nil, invalid("description", "too long (max 200 characters)")
	}
	category, err := ParseCategory(p.Category)
	if err != nil {
		return nil, err
	}
	if p.PaidBy == "" {
		return nil, invalid("paid_by", "must not be empty")
	}
	split, err := normalizeSplit(p.SplitWith, p.PaidBy)
	if err != nil {
		return nil, err
	}
	return &Expense{
		GroupID:     p.GroupID,
		Amount:      p.Amount,
		Description: description,
		Category:    category,
		PaidBy:      p.PaidBy,
		SplitWith:   split,
		Shared:      p.Shared,
		CreatedAt:   time.Now().Unix(),
	}, nil
}

// Validate re-checks the invariants NewExpense enforces, for records built
// elsewhere (e.g. read back from storage or assembled in tests).
func (e *Expense) Validate() error {
	switch {
	case e.GroupID == "":
		return invalid("group", "must not be empty")
	case e.PaidBy == "":
		return invalid("paid_by", "must not be empty")
	case len(e.SplitWith) == 0:
		return invalid("split_with", "must not be empty")
	}
	if err := validateAmount(e.Amount); err != nil {
		return err
	}
	if _, ok := categoryLabels[e.Category]; !ok {
		return invalid("category", "unknown category "+string(e.Category))
	}
	seen := make(map[string]bool, len(e.SplitWith))
	for _, id := range e.SplitWith {
		if id == "" {
			return invalid("split_with", "contains an empty member id")
		}
		if seen[id] {
			return invalid("split_with", "contains "+id+" more than once")
		}
		seen[id] = true
	}
	return nil
}

// validateAmount checks the exponent before comparing so an absurd
// exponent is never rescaled.
func validateAmount(amount decimal.Decimal) error {
	switch {
	case !amount.IsPositive():
		return invalid("amount", "must be greater than zero")
	case amount.Exponent() < -AmountPlaces:
		return invalid("amount", "at most 2 decimal places")
	case amount.Exponent() > 9 || amount.GreaterThan(MaxAmount):
		return invalid("amount", "must not exceed "+MaxAmount.String())
	}
	return nil
}

func normalizeSplit(ids []string, payer string) ([]string, error) {
	if len(ids) == 0 {
		return []string{payer}, nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, invalid("split_with", "contains an empty member id")
		}
		out = append(out, id)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// Participants returns the payer plus everyone in SplitWith, sorted.
func (e *Expense) Participants() []string {
	ids := append([]string{e.PaidBy}, e.SplitWith...)
	slices.Sort(ids)
	return slices.Compact(ids)
}

// CreatedTime returns CreatedAt as a time.Time.
func (e *Expense) CreatedTime() time.Time {
	return time.Unix(e.CreatedAt, 0)
}
