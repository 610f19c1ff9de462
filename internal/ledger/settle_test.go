package ledger

import (
	"context"
	"testing"

	"github.com/fairshare-app/fairshare/pkg/apperr"
)

func TestSettleFull(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	if err := l.ApplyTransfer(ctx, 1, 2, 3, 75); err != nil {
		t.Fatalf("seed transfer: %v", err)
	}

	result, err := l.Settle(ctx, 1, 2, 3, 75)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if result.Amount != 75 || result.Remaining != 0 {
		t.Errorf("result = %+v, want amount 75.00 remaining 0.00", result)
	}

	owed, _ := l.Pairwise(ctx, 1, 2, 3)
	if owed != 0 {
		t.Errorf("debt after full settlement = %.2f, want 0", owed)
	}
	checkSymmetry(t, l, 1)
	checkConservation(t, l, 1)
}

func TestSettlePartial(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	if err := l.ApplyTransfer(ctx, 1, 2, 3, 100); err != nil {
		t.Fatalf("seed transfer: %v", err)
	}

	result, err := l.Settle(ctx, 1, 2, 3, 40)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if result.Remaining != 60 {
		t.Errorf("remaining = %.2f, want 60.00", result.Remaining)
	}

	owed, _ := l.Pairwise(ctx, 1, 2, 3)
	if owed != 60 {
		t.Errorf("debt after partial settlement = %.2f, want 60.00", owed)
	}
}

func TestSettleRejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		seed     func(l *Ledger)
		payerID  int64
		payeeID  int64
		amount   float64
		wantKind apperr.Kind
	}{
		{
			name:     "self settlement",
			payerID:  2,
			payeeID:  2,
			amount:   10,
			wantKind: apperr.KindConstraint,
		},
		{
			name:     "zero amount",
			payerID:  2,
			payeeID:  3,
			amount:   0,
			wantKind: apperr.KindValidation,
		},
		{
			name:     "negative amount",
			payerID:  2,
			payeeID:  3,
			amount:   -5,
			wantKind: apperr.KindValidation,
		},
		{
			name:     "payer has no balances",
			payerID:  2,
			payeeID:  3,
			amount:   10,
			wantKind: apperr.KindNotFound,
		},
		{
			name: "no debt toward payee",
			seed: func(l *Ledger) {
				// Payer owes user 4, not user 3.
				_ = l.ApplyTransfer(ctx, 1, 2, 4, 50)
			},
			payerID:  2,
			payeeID:  3,
			amount:   10,
			wantKind: apperr.KindConstraint,
		},
		{
			name: "payee owes payer instead",
			seed: func(l *Ledger) {
				_ = l.ApplyTransfer(ctx, 1, 3, 2, 50)
			},
			payerID:  2,
			payeeID:  3,
			amount:   10,
			wantKind: apperr.KindConstraint,
		},
		{
			name: "overpayment",
			seed: func(l *Ledger) {
				_ = l.ApplyTransfer(ctx, 1, 2, 3, 50)
			},
			payerID:  2,
			payeeID:  3,
			amount:   50.01,
			wantKind: apperr.KindConstraint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger()
			if tt.seed != nil {
				tt.seed(l)
			}

			_, err := l.Settle(ctx, 1, tt.payerID, tt.payeeID, tt.amount)
			if err == nil {
				t.Fatal("expected error")
			}
			if !apperr.IsKind(err, tt.wantKind) {
				t.Errorf("got error %v, want kind %v", err, tt.wantKind)
			}
		})
	}
}

func TestSettleRejectionLeavesLedgerUntouched(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	if err := l.ApplyTransfer(ctx, 1, 2, 3, 50); err != nil {
		t.Fatalf("seed transfer: %v", err)
	}

	if _, err := l.Settle(ctx, 1, 2, 3, 60); err == nil {
		t.Fatal("expected overpayment rejection")
	}

	owed, _ := l.Pairwise(ctx, 1, 2, 3)
	if owed != 50 {
		t.Errorf("debt changed on rejected settlement: %.2f, want 50.00", owed)
	}
}

func TestSettleAfterFullSettlementReportsNotFound(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	if err := l.ApplyTransfer(ctx, 1, 2, 3, 50); err != nil {
		t.Fatalf("seed transfer: %v", err)
	}
	if _, err := l.Settle(ctx, 1, 2, 3, 50); err != nil {
		t.Fatalf("settle: %v", err)
	}

	// Full settlement prunes the payer's last entry and with it the row, so
	// a further settlement finds no row at all rather than a zero debt.
	_, err := l.Settle(ctx, 1, 2, 3, 10)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("got %v, want not-found error", err)
	}
}

func TestSettleExactBoundary(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	if err := l.ApplyTransfer(ctx, 1, 2, 3, 33.33); err != nil {
		t.Fatalf("seed transfer: %v", err)
	}

	// Paying exactly the owed amount is allowed; a cent more is not.
	result, err := l.Settle(ctx, 1, 2, 3, 33.33)
	if err != nil {
		t.Fatalf("settle at boundary: %v", err)
	}
	if result.Remaining != 0 {
		t.Errorf("remaining = %.2f, want 0", result.Remaining)
	}
}
