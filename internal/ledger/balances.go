// Package ledger computes balances, settlements and spending summaries for
// a group. Everything here is pure: callers hand in the full expense and
// member lists and results are recomputed from scratch on every call.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DivisionScale is the number of fractional digits kept when an amount is
// divided into shares. Running totals are never rounded further; rounding
// to cents is a presentation concern.
const DivisionScale = 12

// ErrEmptySplit is returned for an entry whose SplitWith is empty.
var ErrEmptySplit = errors.New("expense has an empty split")

// Entry is the minimal view of an expense the ledger needs.
type Entry struct {
	ID        string
	Amount    decimal.Decimal
	PaidBy    string
	SplitWith []string
	Shared    bool
	Category  string
	CreatedAt time.Time
}

// Policy decides how an expense whose split excludes the payer is treated.
type Policy int

const (
	// PayerCredited applies the balance definition literally: the payer is
	// credited the full amount and only SplitWith is charged, as in
	// "I paid, but it was not my expense at all".
	PayerCredited Policy = iota

	// PayerAlwaysShares adds the payer to every split, so a payer who left
	// themselves out still carries an equal share.
	PayerAlwaysShares
)

func (p Policy) String() string {
	switch p {
	case PayerCredited:
		return "payer_credited"
	case PayerAlwaysShares:
		return "payer_always_shares"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

type options struct {
	policy Policy
}

// Option tunes a balance computation.
type Option func(*options)

// WithPolicy selects the excluded-payer policy. The default is PayerCredited.
func WithPolicy(p Policy) Option {
	return func(o *options) { o.policy = p }
}

func buildOptions(opts []Option) options {
	o := options{policy: PayerCredited}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// sharers returns who is charged for e under the given policy.
func (o options) sharers(e Entry) []string {
	if o.policy != PayerAlwaysShares {
		return e.SplitWith
	}
	for _, id := range e.SplitWith {
		if id == e.PaidBy {
			return e.SplitWith
		}
	}
	return append(append([]string(nil), e.SplitWith...), e.PaidBy)
}

func share(amount decimal.Decimal, n int) decimal.Decimal {
	return amount.DivRound(decimal.NewFromInt(int64(n)), DivisionScale)
}

// ComputeBalance returns the net amount member is owed (positive) or owes
// (negative) across entries. A member that appears in no entry yields zero.
//
//	balance(m) = Σ amount(e) paid by m − Σ amount(e)/|split(e)| for m ∈ split(e)
func ComputeBalance(entries []Entry, member string, opts ...Option) (decimal.Decimal, error) {
	o := buildOptions(opts)
	balance := decimal.Zero
	for _, e := range entries {
		if len(e.SplitWith) == 0 {
			return decimal.Zero, fmt.Errorf("%w: %s", ErrEmptySplit, e.ID)
		}
		if e.PaidBy == member {
			balance = balance.Add(e.Amount)
		}
		split := o.sharers(e)
		for _, id := range split {
			if id == member {
				balance = balance.Sub(share(e.Amount, len(split)))
				break
			}
		}
	}
	return balance, nil
}

// ComputeGroupSummary returns a balance for every member, including members
// with no expenses. IDs referenced by entries but missing from members are
// reported as well, so an upstream integrity problem shows up as an extra
// key rather than disappearing.
func ComputeGroupSummary(members []string, entries []Entry, opts ...Option) (map[string]decimal.Decimal, error) {
	o := buildOptions(opts)
	ids := make(map[string]struct{}, len(members))
	for _, m := range members {
		ids[m] = struct{}{}
	}
	for _, e := range entries {
		if len(e.SplitWith) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptySplit, e.ID)
		}
		ids[e.PaidBy] = struct{}{}
		for _, id := range o.sharers(e) {
			ids[id] = struct{}{}
		}
	}

	summary := make(map[string]decimal.Decimal, len(ids))
	for id := range ids {
		bal, err := ComputeBalance(entries, id, opts...)
		if err != nil {
			return nil, err
		}
		summary[id] = bal
	}
	return summary, nil
}

// Total sums the balances of the given members. Zero when every payer and
// split ID is among them.
func Total(balances map[string]decimal.Decimal, members []string) decimal.Decimal {
	sum := decimal.Zero
	for _, m := range members {
		sum = sum.Add(balances[m])
	}
	return sum
}

// FilterShared keeps entries split between more than one member or
// explicitly flagged as shared, preserving order.
func FilterShared(entries []Entry) []Entry {
	var shared []Entry
	for _, e := range entries {
		if len(e.SplitWith) > 1 || e.Shared {
			shared = append(shared, e)
		}
	}
	return shared
}
