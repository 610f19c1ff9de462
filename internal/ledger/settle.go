package ledger

import (
	"context"

	"github.com/fairshare-app/fairshare/internal/metrics"
	"github.com/fairshare-app/fairshare/internal/money"
	"github.com/fairshare-app/fairshare/pkg/apperr"
)

// SettlementResult describes a successfully applied settlement.
type SettlementResult struct {
	GroupID   int64   `json:"group_id"`
	PayerID   int64   `json:"payer_id"`
	PayeeID   int64   `json:"payee_id"`
	Amount    float64 `json:"amount"`
	Remaining float64 `json:"remaining"`
}

// Settle pays down an existing debt: payer must currently owe payee, and the
// amount must not exceed what is owed. Unlike a generic transfer this is a
// constrained operation, because it represents real money moving; the
// preconditions are checked under the group lock so the observed debt cannot
// change before the write.
func (l *Ledger) Settle(ctx context.Context, groupID, payerID, payeeID int64, amount float64) (result *SettlementResult, err error) {
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "rejected"
		}
		metrics.SettlementsTotal.WithLabelValues(outcome).Inc()
	}()

	if payerID == payeeID {
		return nil, apperr.Constraint("cannot settle a debt with yourself")
	}
	if amount <= 0 {
		return nil, apperr.Validation("settlement amount must be greater than 0")
	}

	lock := l.groupLock(groupID)
	lock.Lock()
	defer lock.Unlock()

	balances, found, err := l.store.Get(ctx, groupID, payerID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperr.NotFound("no balance found for user %d in group %d", payerID, groupID)
	}

	currentOwed := balances[payeeID]
	if currentOwed <= 0 {
		return nil, apperr.Constraint("user %d does not owe user %d", payerID, payeeID)
	}
	if amount > currentOwed {
		return nil, apperr.Constraint("settlement amount (%.2f) exceeds owed amount (%.2f)", amount, currentOwed)
	}

	// Paying down a debt is a transfer of the negated amount.
	if err := l.applyTransferLocked(ctx, groupID, payerID, payeeID, -amount); err != nil {
		return nil, err
	}

	remaining := money.Round2(currentOwed - amount)
	if money.IsZero(remaining) {
		remaining = 0
	}

	return &SettlementResult{
		GroupID:   groupID,
		PayerID:   payerID,
		PayeeID:   payeeID,
		Amount:    money.Round2(amount),
		Remaining: remaining,
	}, nil
}
