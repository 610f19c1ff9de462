package ledger

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/fairshare-app/fairshare/internal/money"
	"github.com/fairshare-app/fairshare/pkg/apperr"
)

func newTestLedger() *Ledger {
	return New(NewMemoryStore())
}

// checkSymmetry asserts that every stored entry has an exact mirror entry.
func checkSymmetry(t *testing.T, l *Ledger, groupID int64) {
	t.Helper()

	rows, err := l.Snapshot(context.Background(), groupID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	for _, row := range rows {
		for counterparty, amount := range row.Balances {
			mirror, err := l.Pairwise(context.Background(), groupID, counterparty, row.UserID)
			if err != nil {
				t.Fatalf("pairwise: %v", err)
			}
			if mirror != -amount {
				t.Errorf("asymmetric pair: ledger[%d][%d]=%.2f but ledger[%d][%d]=%.2f",
					row.UserID, counterparty, amount, counterparty, row.UserID, mirror)
			}
		}
	}
}

// checkConservation asserts that all net positions in the group sum to zero.
func checkConservation(t *testing.T, l *Ledger, groupID int64) {
	t.Helper()

	positions, err := l.AllNetPositions(context.Background(), groupID)
	if err != nil {
		t.Fatalf("net positions: %v", err)
	}

	var sum float64
	for _, p := range positions {
		sum += p.Net
	}
	if math.Abs(sum) > money.Epsilon {
		t.Errorf("net positions sum to %.4f, want 0", sum)
	}
}

func TestApplyTransfer(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	if err := l.ApplyTransfer(ctx, 1, 2, 3, 50); err != nil {
		t.Fatalf("apply transfer: %v", err)
	}

	owed, err := l.Pairwise(ctx, 1, 2, 3)
	if err != nil {
		t.Fatalf("pairwise: %v", err)
	}
	if owed != 50 {
		t.Errorf("user 2 owes user 3 %.2f, want 50.00", owed)
	}

	mirror, err := l.Pairwise(ctx, 1, 3, 2)
	if err != nil {
		t.Fatalf("pairwise: %v", err)
	}
	if mirror != -50 {
		t.Errorf("mirror entry = %.2f, want -50.00", mirror)
	}

	checkSymmetry(t, l, 1)
	checkConservation(t, l, 1)
}

func TestApplyTransferValidation(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	if err := l.ApplyTransfer(ctx, 1, 2, 2, 10); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("self transfer: got %v, want validation error", err)
	}
	if err := l.ApplyTransfer(ctx, 1, 2, 3, math.NaN()); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("NaN amount: got %v, want validation error", err)
	}
	if err := l.ApplyTransfer(ctx, 1, 2, 3, math.Inf(1)); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("Inf amount: got %v, want validation error", err)
	}
}

func TestTransferAccumulatesAndPrunes(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	if err := l.ApplyTransfer(ctx, 1, 2, 3, 30); err != nil {
		t.Fatalf("apply transfer: %v", err)
	}
	if err := l.ApplyTransfer(ctx, 1, 2, 3, 20); err != nil {
		t.Fatalf("apply transfer: %v", err)
	}

	owed, _ := l.Pairwise(ctx, 1, 2, 3)
	if owed != 50 {
		t.Fatalf("accumulated debt = %.2f, want 50.00", owed)
	}

	// Cancel it out entirely; both entries must be pruned, not stored as 0.
	if err := l.ApplyTransfer(ctx, 1, 2, 3, -50); err != nil {
		t.Fatalf("apply transfer: %v", err)
	}

	rows, err := l.Snapshot(ctx, 1)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	for _, row := range rows {
		if _, ok := row.Balances[2]; ok && row.UserID == 3 {
			t.Error("creditor entry not pruned after cancellation")
		}
		if _, ok := row.Balances[3]; ok && row.UserID == 2 {
			t.Error("debtor entry not pruned after cancellation")
		}
	}
}

func TestTransferPrunesSubEpsilonResidue(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	if err := l.ApplyTransfer(ctx, 1, 2, 3, 10.004); err != nil {
		t.Fatalf("apply transfer: %v", err)
	}
	if err := l.ApplyTransfer(ctx, 1, 2, 3, -10); err != nil {
		t.Fatalf("apply transfer: %v", err)
	}

	owed, _ := l.Pairwise(ctx, 1, 2, 3)
	if owed != 0 {
		t.Errorf("residue %.4f should have been pruned", owed)
	}
}

func TestApplyExpenseSkipsPayer(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	shares := []Share{
		{UserID: 1, Amount: 30},
		{UserID: 2, Amount: 30},
		{UserID: 3, Amount: 30},
	}
	delta, err := l.ApplyExpense(ctx, 10, 1, shares)
	if err != nil {
		t.Fatalf("apply expense: %v", err)
	}

	if len(delta.Transfers) != 2 {
		t.Fatalf("got %d transfers, want 2 (payer share skipped)", len(delta.Transfers))
	}
	for _, tr := range delta.Transfers {
		if tr.DebtorID == 1 {
			t.Errorf("payer appeared as debtor in transfer %+v", tr)
		}
		if tr.CreditorID != 1 {
			t.Errorf("creditor = %d, want payer 1", tr.CreditorID)
		}
	}

	net, _ := l.NetPosition(ctx, 10, 1)
	if net != 60 {
		t.Errorf("payer net = %.2f, want 60.00", net)
	}

	checkSymmetry(t, l, 10)
	checkConservation(t, l, 10)
}

func TestReverseExpenseRestoresState(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	// Pre-existing debt so reversal must restore a nonzero baseline.
	if err := l.ApplyTransfer(ctx, 1, 2, 3, 12.5); err != nil {
		t.Fatalf("seed transfer: %v", err)
	}

	shares := []Share{
		{UserID: 1, Amount: 33.33},
		{UserID: 2, Amount: 33.33},
		{UserID: 3, Amount: 33.33},
	}
	if _, err := l.ApplyExpense(ctx, 1, 1, shares); err != nil {
		t.Fatalf("apply expense: %v", err)
	}
	if _, err := l.ReverseExpense(ctx, 1, 1, shares); err != nil {
		t.Fatalf("reverse expense: %v", err)
	}

	owed, _ := l.Pairwise(ctx, 1, 2, 3)
	if owed != 12.5 {
		t.Errorf("after reversal ledger[2][3] = %.2f, want 12.50", owed)
	}
	owes1, _ := l.Pairwise(ctx, 1, 2, 1)
	if owes1 != 0 {
		t.Errorf("after reversal ledger[2][1] = %.2f, want 0", owes1)
	}

	checkSymmetry(t, l, 1)
	checkConservation(t, l, 1)
}

func TestNetPositionMissingRow(t *testing.T) {
	l := newTestLedger()

	net, err := l.NetPosition(context.Background(), 99, 7)
	if err != nil {
		t.Fatalf("net position: %v", err)
	}
	if net != 0 {
		t.Errorf("net = %.2f, want 0 for absent user", net)
	}
}

func TestAllNetPositionsOrdered(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	if err := l.ApplyTransfer(ctx, 1, 5, 2, 10); err != nil {
		t.Fatalf("apply transfer: %v", err)
	}
	if err := l.ApplyTransfer(ctx, 1, 9, 2, 10); err != nil {
		t.Fatalf("apply transfer: %v", err)
	}

	positions, err := l.AllNetPositions(ctx, 1)
	if err != nil {
		t.Fatalf("net positions: %v", err)
	}

	want := []Position{{UserID: 2, Net: 20}, {UserID: 5, Net: -10}, {UserID: 9, Net: -10}}
	if len(positions) != len(want) {
		t.Fatalf("got %d positions, want %d", len(positions), len(want))
	}
	for i, p := range positions {
		if p != want[i] {
			t.Errorf("positions[%d] = %+v, want %+v", i, p, want[i])
		}
	}
}

func TestUserSummary(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	if err := l.ApplyTransfer(ctx, 1, 2, 1, 40); err != nil {
		t.Fatalf("apply transfer: %v", err)
	}
	if err := l.ApplyTransfer(ctx, 1, 1, 3, 15); err != nil {
		t.Fatalf("apply transfer: %v", err)
	}

	summary, err := l.UserSummary(ctx, 1, 1)
	if err != nil {
		t.Fatalf("user summary: %v", err)
	}

	if len(summary.Owes) != 1 || summary.Owes[0].UserID != 3 || summary.Owes[0].Amount != 15 {
		t.Errorf("owes = %+v, want [{3 15}]", summary.Owes)
	}
	if len(summary.OwedBy) != 1 || summary.OwedBy[0].UserID != 2 || summary.OwedBy[0].Amount != 40 {
		t.Errorf("owed_by = %+v, want [{2 40}]", summary.OwedBy)
	}
	if summary.TotalOwed != 40 || summary.TotalOwing != 15 || summary.NetBalance != 25 {
		t.Errorf("totals = %.2f/%.2f/%.2f, want 40/15/25",
			summary.TotalOwed, summary.TotalOwing, summary.NetBalance)
	}
}

func TestUserSummaryEmpty(t *testing.T) {
	l := newTestLedger()

	summary, err := l.UserSummary(context.Background(), 1, 42)
	if err != nil {
		t.Fatalf("user summary: %v", err)
	}
	if len(summary.Owes) != 0 || len(summary.OwedBy) != 0 || summary.NetBalance != 0 {
		t.Errorf("expected zero summary, got %+v", summary)
	}
	if summary.Owes == nil || summary.OwedBy == nil {
		t.Error("owes/owed_by must be empty slices, not nil")
	}
}

func TestConcurrentTransfersKeepInvariants(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			debtor := int64(w%4 + 1)
			creditor := int64((w+1)%4 + 1)
			for i := 0; i < perWorker; i++ {
				if err := l.ApplyTransfer(ctx, 1, debtor, creditor, 1.25); err != nil {
					t.Errorf("worker %d: %v", w, err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	checkSymmetry(t, l, 1)
	checkConservation(t, l, 1)
}

// flakyStore fails the nth PutPair and passes everything else through.
type flakyStore struct {
	Store
	puts   int
	failOn int
}

func (s *flakyStore) PutPair(ctx context.Context, groupID, userA int64, rowA map[int64]float64, userB int64, rowB map[int64]float64) error {
	s.puts++
	if s.puts == s.failOn {
		return errors.New("write failed")
	}
	return s.Store.PutPair(ctx, groupID, userA, rowA, userB, rowB)
}

func TestApplyExpenseRollsBackOnStorageFailure(t *testing.T) {
	store := &flakyStore{Store: NewMemoryStore(), failOn: 2}
	l := New(store)
	ctx := context.Background()

	shares := []Share{
		{UserID: 2, Amount: 30},
		{UserID: 3, Amount: 30},
	}
	_, err := l.ApplyExpense(ctx, 1, 1, shares)
	if err == nil {
		t.Fatal("expected storage error")
	}

	// The first transfer landed before the second failed; it must have been
	// undone so the ledger carries no debts the expense record cannot explain.
	owed, getErr := l.Pairwise(ctx, 1, 2, 1)
	if getErr != nil {
		t.Fatalf("pairwise: %v", getErr)
	}
	if owed != 0 {
		t.Errorf("partial expense left transfer applied: user 2 owes %.2f, want 0", owed)
	}

	rows, err := l.Snapshot(ctx, 1)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("ledger not empty after failed expense: %+v", rows)
	}
}

func TestGroupsAreIsolated(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	if err := l.ApplyTransfer(ctx, 1, 2, 3, 100); err != nil {
		t.Fatalf("apply transfer: %v", err)
	}

	owed, err := l.Pairwise(ctx, 2, 2, 3)
	if err != nil {
		t.Fatalf("pairwise: %v", err)
	}
	if owed != 0 {
		t.Errorf("group 2 saw group 1's debt: %.2f", owed)
	}
}
