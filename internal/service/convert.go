package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tandem/internal/ledger"
	"github.com/mmynk/tandem/internal/models"
	"github.com/mmynk/tandem/pkg/api"
)

// displayPlaces is the rounding applied to every amount leaving the server.
// The ledger itself never rounds.
const displayPlaces = 2

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(displayPlaces)
}

func formatAmounts(m map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = formatAmount(v)
	}
	return out
}

func toAPIUser(u *models.User) *api.User {
	if u == nil {
		return nil
	}
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIMember(m *models.Member) *api.Member {
	return &api.Member{
		UserID:   m.UserID,
		Label:    m.Label,
		Role:     string(m.Role),
		JoinedAt: m.JoinedAt,
	}
}

func toAPIGroup(g *models.Group, members []*models.Member) *api.Group {
	out := &api.Group{
		ID:         g.ID,
		Name:       g.Name,
		InviteCode: g.InviteCode,
		CreatedBy:  g.CreatedBy,
		CreatedAt:  g.CreatedAt,
	}
	for _, m := range members {
		out.Members = append(out.Members, toAPIMember(m))
	}
	return out
}

func toAPIExpense(e *models.Expense) *api.Expense {
	return &api.Expense{
		ID:            e.ID,
		GroupID:       e.GroupID,
		Amount:        formatAmount(e.Amount),
		Description:   e.Description,
		Category:      string(e.Category),
		CategoryLabel: e.Category.Label(),
		PaidBy:        e.PaidBy,
		SplitWith:     e.SplitWith,
		Shared:        e.Shared,
		CreatedAt:     e.CreatedAt,
	}
}

func toEntry(e *models.Expense) ledger.Entry {
	return ledger.Entry{
		ID:        e.ID,
		Amount:    e.Amount,
		PaidBy:    e.PaidBy,
		SplitWith: e.SplitWith,
		Shared:    e.Shared,
		Category:  string(e.Category),
		CreatedAt: e.CreatedTime(),
	}
}

func toEntries(expenses []*models.Expense) []ledger.Entry {
	entries := make([]ledger.Entry, len(expenses))
	for i, e := range expenses {
		entries[i] = toEntry(e)
	}
	return entries
}

func memberIDs(members []*models.Member) []string {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	return ids
}

func toAPISummary(s ledger.Summary) *api.Summary {
	out := &api.Summary{
		TotalSpent: formatAmount(s.TotalSpent),
		Count:      s.Count,
		ByPayer:    formatAmounts(s.ByPayer),
		Categories: make([]*api.CategoryTotal, 0, len(s.Categories)),
	}
	for _, c := range s.Categories {
		out.Categories = append(out.Categories, &api.CategoryTotal{
			Category: c.Category,
			Label:    models.Category(c.Category).Label(),
			Amount:   formatAmount(c.Amount),
			Percent:  c.Percent.StringFixed(1),
			ByPayer:  formatAmounts(c.ByPayer),
		})
	}
	return out
}

func toAPIMonths(months []ledger.MonthTotal) []*api.MonthTotal {
	out := make([]*api.MonthTotal, 0, len(months))
	for _, m := range months {
		out = append(out, &api.MonthTotal{
			Month:   m.Month.Format("2006-01"),
			Total:   formatAmount(m.Total),
			ByPayer: formatAmounts(m.ByPayer),
		})
	}
	return out
}

func toAPIWeeks(weeks []ledger.WeekTotal) []*api.WeekTotal {
	out := make([]*api.WeekTotal, 0, len(weeks))
	for _, w := range weeks {
		out = append(out, &api.WeekTotal{
			WeekStart: w.WeekStart.Format(time.DateOnly),
			Total:     formatAmount(w.Total),
		})
	}
	return out
}
