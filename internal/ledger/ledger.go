// Package ledger implements the balance ledger: the per-group map of signed
// pairwise debts, the constrained settlement operation on top of it, and the
// greedy debt simplifier.
//
// Sign convention: ledger[group][user][counterparty] > 0 means user owes
// counterparty that amount. Every mutation updates both the debtor's entry
// and the creditor's mirror entry, so for any pair of users the two stored
// values are negations of each other and all net positions in a group sum to
// zero.
package ledger

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/fairshare-app/fairshare/internal/metrics"
	"github.com/fairshare-app/fairshare/internal/money"
	"github.com/fairshare-app/fairshare/pkg/apperr"
)

// maxRetries bounds how often a mutation is retried with fresh reads after a
// storage-level conflict before the concurrency error is surfaced.
const maxRetries = 3

// Share is one participant's owed amount from a calculated split.
type Share struct {
	UserID int64
	Amount float64
}

// Transfer records one applied pairwise mutation.
type Transfer struct {
	DebtorID   int64   `json:"debtor_id"`
	CreditorID int64   `json:"creditor_id"`
	Amount     float64 `json:"amount"`
}

// Delta is the list of transfers an expense application (or reversal)
// produced on the ledger.
type Delta struct {
	GroupID   int64      `json:"group_id"`
	Transfers []Transfer `json:"transfers"`
}

// Position is one user's net standing in a group: positive means the user is
// owed money overall, negative means they owe.
type Position struct {
	UserID int64   `json:"user_id"`
	Net    float64 `json:"net"`
}

// Ledger owns all balance rows. All mutations for a group are serialized
// through a per-group lock; display reads go straight to the store.
type Ledger struct {
	store Store

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// New creates a ledger on top of the given store.
func New(store Store) *Ledger {
	return &Ledger{
		store: store,
		locks: make(map[int64]*sync.Mutex),
	}
}

// groupLock returns the mutex serializing mutations for a group, creating it
// on first use.
func (l *Ledger) groupLock(groupID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[groupID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[groupID] = lock
	}
	return lock
}

// ApplyTransfer adds amount to what debtor owes creditor and subtracts it
// from the creditor's mirror entry. amount may be negative, which is how
// reversals and settlements are expressed; the operation itself carries no
// business-rule constraint beyond distinct users and a finite amount.
func (l *Ledger) ApplyTransfer(ctx context.Context, groupID, debtorID, creditorID int64, amount float64) error {
	if debtorID == creditorID {
		return apperr.Validation("debtor and creditor must be different users")
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return apperr.Validation("transfer amount must be finite")
	}

	lock := l.groupLock(groupID)
	lock.Lock()
	defer lock.Unlock()

	return l.applyTransferLocked(ctx, groupID, debtorID, creditorID, amount)
}

// applyTransferLocked performs the two-row read-modify-write. The caller must
// hold the group lock. Storage conflicts are retried with fresh reads.
func (l *Ledger) applyTransferLocked(ctx context.Context, groupID, debtorID, creditorID int64, amount float64) error {
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = l.tryTransfer(ctx, groupID, debtorID, creditorID, amount)
		if err == nil {
			metrics.LedgerTransfersTotal.WithLabelValues("ok").Inc()
			return nil
		}
		if !apperr.IsKind(err, apperr.KindConcurrency) {
			metrics.LedgerTransfersTotal.WithLabelValues("error").Inc()
			return err
		}
	}
	metrics.LedgerTransfersTotal.WithLabelValues("conflict").Inc()
	return err
}

func (l *Ledger) tryTransfer(ctx context.Context, groupID, debtorID, creditorID int64, amount float64) error {
	debtorRow, _, err := l.store.Get(ctx, groupID, debtorID)
	if err != nil {
		return err
	}
	creditorRow, _, err := l.store.Get(ctx, groupID, creditorID)
	if err != nil {
		return err
	}

	debtorRow = adjustEntry(debtorRow, creditorID, amount)
	creditorRow = adjustEntry(creditorRow, debtorID, -amount)

	return l.store.PutPair(ctx, groupID, debtorID, debtorRow, creditorID, creditorRow)
}

// adjustEntry adds amount to balances[counterpartyID], rounding the result
// and pruning it when it falls below epsilon.
func adjustEntry(balances map[int64]float64, counterpartyID int64, amount float64) map[int64]float64 {
	if balances == nil {
		balances = make(map[int64]float64)
	}

	updated := balances[counterpartyID] + amount
	if money.IsZero(updated) {
		delete(balances, counterpartyID)
	} else {
		balances[counterpartyID] = money.Round2(updated)
	}
	return balances
}

// ApplyExpense applies one transfer per non-payer share: each participant
// owes the payer their share. The group lock is held across the whole
// expense so concurrent mutations cannot interleave with it.
func (l *Ledger) ApplyExpense(ctx context.Context, groupID, payerID int64, shares []Share) (*Delta, error) {
	return l.applyShares(ctx, groupID, payerID, shares, 1)
}

// ReverseExpense undoes ApplyExpense by replaying every transfer with the
// negated amount, restoring each touched pairwise balance to its pre-expense
// value.
func (l *Ledger) ReverseExpense(ctx context.Context, groupID, payerID int64, shares []Share) (*Delta, error) {
	return l.applyShares(ctx, groupID, payerID, shares, -1)
}

func (l *Ledger) applyShares(ctx context.Context, groupID, payerID int64, shares []Share, sign float64) (*Delta, error) {
	lock := l.groupLock(groupID)
	lock.Lock()
	defer lock.Unlock()

	delta := &Delta{GroupID: groupID}
	var applied []Share
	for _, share := range shares {
		if share.UserID == payerID {
			continue
		}

		amount := sign * share.Amount
		if err := l.applyTransferLocked(ctx, groupID, share.UserID, payerID, amount); err != nil {
			l.rollbackShares(ctx, groupID, payerID, applied, sign)
			return nil, err
		}
		applied = append(applied, share)
		delta.Transfers = append(delta.Transfers, Transfer{
			DebtorID:   share.UserID,
			CreditorID: payerID,
			Amount:     money.Round2(amount),
		})
	}

	return delta, nil
}

// rollbackShares replays already-applied transfers with negated amounts so a
// failed expense never leaves a partial set of debts behind. The caller must
// still hold the group lock. Best effort: a transfer that cannot be undone is
// logged, since the original error is what surfaces to the caller.
func (l *Ledger) rollbackShares(ctx context.Context, groupID, payerID int64, applied []Share, sign float64) {
	for i := len(applied) - 1; i >= 0; i-- {
		share := applied[i]
		if err := l.applyTransferLocked(ctx, groupID, share.UserID, payerID, -sign*share.Amount); err != nil {
			slog.Error("failed to roll back expense transfer",
				"group_id", groupID,
				"debtor_id", share.UserID,
				"creditor_id", payerID,
				"error", err,
			)
		}
	}
}

// Pairwise returns the stored signed amount user owes counterparty, or 0
// when no entry exists.
func (l *Ledger) Pairwise(ctx context.Context, groupID, userID, counterpartyID int64) (float64, error) {
	balances, _, err := l.store.Get(ctx, groupID, userID)
	if err != nil {
		return 0, err
	}
	return balances[counterpartyID], nil
}

// NetPosition returns the user's aggregate standing in the group: the
// negated sum of everything they owe. Positive means they are owed money.
func (l *Ledger) NetPosition(ctx context.Context, groupID, userID int64) (float64, error) {
	balances, _, err := l.store.Get(ctx, groupID, userID)
	if err != nil {
		return 0, err
	}
	return netOf(balances), nil
}

// AllNetPositions returns the net position of every user with at least one
// nonzero entry in the group, ordered by user ID. The order is what makes
// simplification deterministic for equal amounts.
func (l *Ledger) AllNetPositions(ctx context.Context, groupID int64) ([]Position, error) {
	rows, err := l.store.ListNonZero(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return PositionsFromRows(rows), nil
}

// Snapshot returns every nonzero row in the group, ordered by user ID. This
// is a display read: it does not take the group lock and may observe a state
// between two mutations.
func (l *Ledger) Snapshot(ctx context.Context, groupID int64) ([]Row, error) {
	return l.store.ListNonZero(ctx, groupID)
}

// PositionsFromRows reduces a row snapshot to net positions, preserving the
// snapshot's order.
func PositionsFromRows(rows []Row) []Position {
	positions := make([]Position, 0, len(rows))
	for _, row := range rows {
		positions = append(positions, Position{UserID: row.UserID, Net: netOf(row.Balances)})
	}
	return positions
}

func netOf(balances map[int64]float64) float64 {
	var net float64
	for _, amount := range balances {
		net -= amount
	}
	return money.Round2(net)
}

// BalanceEntry is one counterparty line in a user summary.
type BalanceEntry struct {
	UserID int64   `json:"user_id"`
	Amount float64 `json:"amount"`
}

// Summary is a user's standing in a group broken down by counterparty.
type Summary struct {
	UserID     int64          `json:"user_id"`
	GroupID    int64          `json:"group_id"`
	Owes       []BalanceEntry `json:"owes"`
	OwedBy     []BalanceEntry `json:"owed_by"`
	TotalOwed  float64        `json:"total_owed"`
	TotalOwing float64        `json:"total_owing"`
	NetBalance float64        `json:"net_balance"`
}

// UserSummary derives a user's summary from their single ledger row:
// positive entries are debts they owe, negative entries are what others owe
// them. A missing row yields the zero summary.
func (l *Ledger) UserSummary(ctx context.Context, groupID, userID int64) (*Summary, error) {
	balances, _, err := l.store.Get(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	return SummarizeRow(groupID, userID, balances), nil
}

// SummarizeRow builds a user summary from one balance map.
func SummarizeRow(groupID, userID int64, balances map[int64]float64) *Summary {
	summary := &Summary{
		UserID:  userID,
		GroupID: groupID,
		Owes:    []BalanceEntry{},
		OwedBy:  []BalanceEntry{},
	}

	counterparties := make([]int64, 0, len(balances))
	for id := range balances {
		counterparties = append(counterparties, id)
	}
	sort.Slice(counterparties, func(i, j int) bool { return counterparties[i] < counterparties[j] })

	for _, id := range counterparties {
		amount := balances[id]
		if amount > 0 {
			summary.Owes = append(summary.Owes, BalanceEntry{UserID: id, Amount: amount})
			summary.TotalOwing += amount
		} else if amount < 0 {
			summary.OwedBy = append(summary.OwedBy, BalanceEntry{UserID: id, Amount: math.Abs(amount)})
			summary.TotalOwed += math.Abs(amount)
		}
	}

	summary.TotalOwed = money.Round2(summary.TotalOwed)
	summary.TotalOwing = money.Round2(summary.TotalOwing)
	summary.NetBalance = money.Round2(summary.TotalOwed - summary.TotalOwing)
	return summary
}
