package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExpense(t *testing.T) {
	base := func() ExpenseParams {
		return ExpenseParams{
			GroupID:   "g1",
			Amount:    decimal.RequireFromString("12.50"),
			PaidBy:    "alice",
			SplitWith: []string{"bob", "alice"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(p *ExpenseParams)
		field   string
		wantErr bool
	}{
		{name: "valid", mutate: func(p *ExpenseParams) {}},
		{name: "zero amount", mutate: func(p *ExpenseParams) { p.Amount = decimal.Zero }, field: "amount", wantErr: true},
		{name: "negative amount", mutate: func(p *ExpenseParams) { p.Amount = decimal.NewFromInt(-3) }, field: "amount", wantErr: true},
		{name: "fractional cent", mutate: func(p *ExpenseParams) { p.Amount = decimal.RequireFromString("0.001") }, field: "amount", wantErr: true},
		{name: "huge exponent", mutate: func(p *ExpenseParams) { p.Amount = decimal.RequireFromString("1e8000000") }, field: "amount", wantErr: true},
		{name: "above ceiling", mutate: func(p *ExpenseParams) { p.Amount = MaxAmount.Add(decimal.RequireFromString("0.01")) }, field: "amount", wantErr: true},
		{name: "at ceiling", mutate: func(p *ExpenseParams) { p.Amount = MaxAmount }},
		{name: "trailing zero cents", mutate: func(p *ExpenseParams) { p.Amount = decimal.RequireFromString("7.10") }},
		{name: "missing group", mutate: func(p *ExpenseParams) { p.GroupID = "" }, field: "group", wantErr: true},
		{name: "missing payer", mutate: func(p *ExpenseParams) { p.PaidBy = "" }, field: "paid_by", wantErr: true},
		{name: "blank split id", mutate: func(p *ExpenseParams) { p.SplitWith = []string{"bob", " "} }, field: "split_with", wantErr: true},
		{name: "unknown category", mutate: func(p *ExpenseParams) { p.Category = "yachts" }, field: "category", wantErr: true},
		{name: "long description", mutate: func(p *ExpenseParams) { p.Description = strings.Repeat("x", 201) }, field: "description", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base()
			tt.mutate(&p)
			e, err := NewExpense(p)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, []string{"alice", "bob"}, e.SplitWith)
				assert.Equal(t, CategoryOther, e.Category)
				assert.NotZero(t, e.CreatedAt)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestNewExpense_SplitDefaultsToPayer(t *testing.T) {
	e, err := NewExpense(ExpenseParams{
		GroupID: "g1",
		Amount:  decimal.NewFromInt(20),
		PaidBy:  "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, e.SplitWith)
}

func TestNewExpense_DeduplicatesSplit(t *testing.T) {
	e, err := NewExpense(ExpenseParams{
		GroupID:   "g1",
		Amount:    decimal.NewFromInt(20),
		PaidBy:    "carol",
		SplitWith: []string{"bob", "alice", "bob"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, e.SplitWith)
	assert.Equal(t, []string{"alice", "bob", "carol"}, e.Participants())
}

func TestExpenseValidate(t *testing.T) {
	valid := func() *Expense {
		return &Expense{
			GroupID:   "g1",
			Amount:    decimal.RequireFromString("9.99"),
			Category:  CategoryOther,
			PaidBy:    "alice",
			SplitWith: []string{"alice", "bob"},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(e *Expense)
		field  string
	}{
		{"duplicate split id", func(e *Expense) { e.SplitWith = []string{"bob", "bob"} }, "split_with"},
		{"empty split id", func(e *Expense) { e.SplitWith = []string{"alice", ""} }, "split_with"},
		{"fractional cent", func(e *Expense) { e.Amount = decimal.RequireFromString("9.999") }, "amount"},
		{"huge amount", func(e *Expense) { e.Amount = decimal.RequireFromString("1e8000000") }, "amount"},
		{"unknown category", func(e *Expense) { e.Category = "yachts" }, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid()
			tt.mutate(e)
			var verr *ValidationError
			require.ErrorAs(t, e.Validate(), &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestNewGroup(t *testing.T) {
	g, err := NewGroup("  Flat 4B ", "alice")
	require.NoError(t, err)
	assert.Equal(t, "Flat 4B", g.Name)
	assert.Equal(t, "alice", g.CreatedBy)

	_, err = NewGroup("   ", "alice")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewGroup(strings.Repeat("n", 101), "alice")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewGroup("Us", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewMember(t *testing.T) {
	m, err := NewMember("g1", "alice", RoleAdmin)
	require.NoError(t, err)
	assert.True(t, m.IsAdmin())

	_, err = NewMember("g1", "alice", Role("owner"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"", CategoryOther},
		{"groceries", CategoryGroceries},
		{"Food & Dining", CategoryFoodDining},
		{"BILLS_UTILITIES", CategoryBillsUtilities},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCategory(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Len(t, Categories(), 9)
	assert.Equal(t, "Bills & Utilities", CategoryBillsUtilities.Label())
}

func TestNewUser(t *testing.T) {
	u, err := NewUser(" Alice@Example.com ", "")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "alice", u.DisplayName)
	assert.Equal(t, "alice", u.Label())

	_, err = NewUser("not-an-email", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewUser("Alice <alice@example.com>", "")
	assert.ErrorIs(t, err, ErrValidation)
}
