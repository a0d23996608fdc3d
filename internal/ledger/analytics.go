package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultWeeks is how many weeks WeeklyTotals returns when asked for zero.
const DefaultWeeks = 8

var hundred = decimal.NewFromInt(100)

// CategoryTotal is the spend in one category.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
	// Percent of the overall total, 0 when nothing was spent.
	Percent decimal.Decimal
	// ByPayer breaks Amount down by who paid.
	ByPayer map[string]decimal.Decimal
}

// Summary aggregates a set of entries for the dashboard.
type Summary struct {
	TotalSpent decimal.Decimal
	Count      int
	ByPayer    map[string]decimal.Decimal
	// Categories is sorted by amount, largest first.
	Categories []CategoryTotal
}

// Summarize totals entries overall, by payer and by category.
func Summarize(entries []Entry) Summary {
	s := Summary{
		TotalSpent: decimal.Zero,
		Count:      len(entries),
		ByPayer:    make(map[string]decimal.Decimal),
	}
	byCategory := make(map[string]*CategoryTotal)
	for _, e := range entries {
		s.TotalSpent = s.TotalSpent.Add(e.Amount)
		s.ByPayer[e.PaidBy] = s.ByPayer[e.PaidBy].Add(e.Amount)

		ct, ok := byCategory[e.Category]
		if !ok {
			ct = &CategoryTotal{
				Category: e.Category,
				Amount:   decimal.Zero,
				ByPayer:  make(map[string]decimal.Decimal),
			}
			byCategory[e.Category] = ct
		}
		ct.Amount = ct.Amount.Add(e.Amount)
		ct.ByPayer[e.PaidBy] = ct.ByPayer[e.PaidBy].Add(e.Amount)
	}

	for _, ct := range byCategory {
		ct.Percent = decimal.Zero
		if s.TotalSpent.IsPositive() {
			ct.Percent = ct.Amount.Mul(hundred).DivRound(s.TotalSpent, DivisionScale)
		}
		s.Categories = append(s.Categories, *ct)
	}
	sort.Slice(s.Categories, func(i, j int) bool {
		if c := s.Categories[i].Amount.Cmp(s.Categories[j].Amount); c != 0 {
			return c > 0
		}
		return s.Categories[i].Category < s.Categories[j].Category
	})
	return s
}

// MonthTotal is the spend in one calendar month.
type MonthTotal struct {
	Month   time.Time // first day of the month, midnight, in loc
	Total   decimal.Decimal
	ByPayer map[string]decimal.Decimal
}

// MonthlyTrend buckets entries by calendar month in loc, oldest first.
func MonthlyTrend(entries []Entry, loc *time.Location) []MonthTotal {
	if loc == nil {
		loc = time.UTC
	}
	buckets := make(map[time.Time]*MonthTotal)
	for _, e := range entries {
		t := e.CreatedAt.In(loc)
		key := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
		mt, ok := buckets[key]
		if !ok {
			mt = &MonthTotal{Month: key, Total: decimal.Zero, ByPayer: make(map[string]decimal.Decimal)}
			buckets[key] = mt
		}
		mt.Total = mt.Total.Add(e.Amount)
		mt.ByPayer[e.PaidBy] = mt.ByPayer[e.PaidBy].Add(e.Amount)
	}

	out := make([]MonthTotal, 0, len(buckets))
	for _, mt := range buckets {
		out = append(out, *mt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// WeekTotal is the spend in one week starting on Sunday.
type WeekTotal struct {
	WeekStart time.Time
	Total     decimal.Decimal
}

// WeeklyTotals buckets entries by week (Sunday start) in loc and returns the
// latest n weeks that had spending, oldest first.
func WeeklyTotals(entries []Entry, loc *time.Location, n int) []WeekTotal {
	if loc == nil {
		loc = time.UTC
	}
	if n <= 0 {
		n = DefaultWeeks
	}
	buckets := make(map[time.Time]decimal.Decimal)
	for _, e := range entries {
		t := e.CreatedAt.In(loc)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		key := day.AddDate(0, 0, -int(day.Weekday()))
		buckets[key] = buckets[key].Add(e.Amount)
	}

	out := make([]WeekTotal, 0, len(buckets))
	for start, total := range buckets {
		out = append(out, WeekTotal{WeekStart: start, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart.Before(out[j].WeekStart) })
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

// Recent returns up to n entries, newest first.
func Recent(entries []Entry, n int) []Entry {
	out := append([]Entry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
