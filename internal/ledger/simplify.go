package ledger

import (
	"sort"

	"github.com/fairshare-app/fairshare/internal/money"
)

// Transaction is one payoff payment produced by simplification.
type Transaction struct {
	FromUserID int64   `json:"from"`
	ToUserID   int64   `json:"to"`
	Amount     float64 `json:"amount"`
}

type party struct {
	userID int64
	amount float64
}

// Simplify reduces a snapshot of net positions to a small ordered list of
// payoff transactions using greedy largest-debtor/largest-creditor matching.
//
// The result is deterministic and always drives every position to within
// epsilon of zero, but it is a heuristic: for some distributions an optimal
// assignment would need fewer transactions. Ties between equal amounts keep
// the input order of positions, so callers that want stable output must pass
// a stably ordered snapshot (AllNetPositions does).
func Simplify(positions []Position) []Transaction {
	var debtors, creditors []party
	for _, p := range positions {
		switch {
		case p.Net < -money.Epsilon:
			debtors = append(debtors, party{userID: p.UserID, amount: -p.Net})
		case p.Net > money.Epsilon:
			creditors = append(creditors, party{userID: p.UserID, amount: p.Net})
		}
	}

	sort.SliceStable(debtors, func(i, j int) bool { return debtors[i].amount > debtors[j].amount })
	sort.SliceStable(creditors, func(i, j int) bool { return creditors[i].amount > creditors[j].amount })

	transactions := []Transaction{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		settle := debtor.amount
		if creditor.amount < settle {
			settle = creditor.amount
		}

		transactions = append(transactions, Transaction{
			FromUserID: debtor.userID,
			ToUserID:   creditor.userID,
			Amount:     money.Round2(settle),
		})

		debtor.amount -= settle
		creditor.amount -= settle

		if debtor.amount < money.Epsilon {
			i++
		}
		if creditor.amount < money.Epsilon {
			j++
		}
	}

	return transactions
}
