package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Epsilon is the magnitude below which a balance counts as settled.
var Epsilon = decimal.RequireFromString("0.005")

// Transfer is one suggested payment from a debtor to a creditor.
type Transfer struct {
	From   string // owes money
	To     string // is owed money
	Amount decimal.Decimal
}

type party struct {
	id     string
	amount decimal.Decimal // magnitude still to settle
}

// ComputeSettlement suggests transfers that clear the given balances.
//
// Greedy: the largest creditor is matched with the largest debtor, the
// smaller of the two magnitudes changes hands, and the process repeats until
// every balance is within Epsilon of zero. Ties are broken by ID so the
// output is deterministic. With two members whose balances mirror each other
// this yields a single transfer, or none when both are already settled.
//
// If the balances do not sum to zero the residue is left unsettled.
func ComputeSettlement(balances map[string]decimal.Decimal) []Transfer {
	var creditors, debtors []*party
	for id, bal := range balances {
		switch {
		case bal.GreaterThan(Epsilon):
			creditors = append(creditors, &party{id: id, amount: bal})
		case bal.LessThan(Epsilon.Neg()):
			debtors = append(debtors, &party{id: id, amount: bal.Neg()})
		}
	}

	var transfers []Transfer
	for len(creditors) > 0 && len(debtors) > 0 {
		sortParties(creditors)
		sortParties(debtors)
		creditor, debtor := creditors[0], debtors[0]

		amount := decimal.Min(creditor.amount, debtor.amount)
		transfers = append(transfers, Transfer{
			From:   debtor.id,
			To:     creditor.id,
			Amount: amount,
		})
		creditor.amount = creditor.amount.Sub(amount)
		debtor.amount = debtor.amount.Sub(amount)

		if !creditor.amount.GreaterThan(Epsilon) {
			creditors = creditors[1:]
		}
		if !debtor.amount.GreaterThan(Epsilon) {
			debtors = debtors[1:]
		}
	}
	return transfers
}

// sortParties orders by remaining amount, largest first, then by ID.
func sortParties(ps []*party) {
	sort.Slice(ps, func(i, j int) bool {
		if c := ps[i].amount.Cmp(ps[j].amount); c != 0 {
			return c > 0
		}
		return ps[i].id < ps[j].id
	})
}
