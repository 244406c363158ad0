package balance

import (
	"sort"

	"github.com/shopspring/decimal"
)

// settledThreshold is the smallest amount worth a transfer
var settledThreshold = decimal.New(1, -2)

type position struct {
	userID int64
	amount decimal.Decimal
}

// SettleUp suggests transfers that clear the given net balances.
// Debtors are matched greedily with creditors, largest amounts first;
// residues below one cent are left unsettled.
func SettleUp(summaries []*Summary) []Transfer {
	var debtors, creditors []position
	for _, s := range summaries {
		switch {
		case s.NetBalance.IsNegative():
			debtors = append(debtors, position{s.User.ID, s.NetBalance.Neg()})
		case s.NetBalance.IsPositive():
			creditors = append(creditors, position{s.User.ID, s.NetBalance})
		}
	}
	sortPositions(debtors)
	sortPositions(creditors)

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)

		if amount.GreaterThanOrEqual(settledThreshold) {
			transfers = append(transfers, Transfer{
				FromUserID: debtors[i].userID,
				ToUserID:   creditors[j].userID,
				Amount:     amount,
			})
		}

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		if debtors[i].amount.LessThan(settledThreshold) {
			i++
		}
		if creditors[j].amount.LessThan(settledThreshold) {
			j++
		}
	}

	return transfers
}

func sortPositions(p []position) {
	sort.SliceStable(p, func(a, b int) bool {
		if !p[a].amount.Equal(p[b].amount) {
			return p[a].amount.GreaterThan(p[b].amount)
		}
		return p[a].userID < p[b].userID
	})
}
