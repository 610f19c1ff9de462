package ledger

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/fairshare-app/fairshare/internal/money"
)

func TestSimplify(t *testing.T) {
	tests := []struct {
		name      string
		positions []Position
		want      []Transaction
	}{
		{
			name:      "empty",
			positions: []Position{},
			want:      []Transaction{},
		},
		{
			name: "all settled",
			positions: []Position{
				{UserID: 1, Net: 0},
				{UserID: 2, Net: 0.005},
				{UserID: 3, Net: -0.005},
			},
			want: []Transaction{},
		},
		{
			name: "single pair",
			positions: []Position{
				{UserID: 1, Net: 50},
				{UserID: 2, Net: -50},
			},
			want: []Transaction{{FromUserID: 2, ToUserID: 1, Amount: 50}},
		},
		{
			name: "one debtor two creditors",
			positions: []Position{
				{UserID: 1, Net: 70},
				{UserID: 2, Net: 30},
				{UserID: 3, Net: -100},
			},
			want: []Transaction{
				{FromUserID: 3, ToUserID: 1, Amount: 70},
				{FromUserID: 3, ToUserID: 2, Amount: 30},
			},
		},
		{
			name: "largest debtor matched with largest creditor first",
			positions: []Position{
				{UserID: 1, Net: 60},
				{UserID: 2, Net: 40},
				{UserID: 3, Net: -75},
				{UserID: 4, Net: -25},
			},
			want: []Transaction{
				{FromUserID: 3, ToUserID: 1, Amount: 60},
				{FromUserID: 3, ToUserID: 2, Amount: 15},
				{FromUserID: 4, ToUserID: 2, Amount: 25},
			},
		},
		{
			name: "ties keep input order",
			positions: []Position{
				{UserID: 2, Net: 20},
				{UserID: 5, Net: -10},
				{UserID: 9, Net: -10},
			},
			want: []Transaction{
				{FromUserID: 5, ToUserID: 2, Amount: 10},
				{FromUserID: 9, ToUserID: 2, Amount: 10},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Simplify(tt.positions)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Simplify() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSimplifyNeverReturnsNil(t *testing.T) {
	if got := Simplify(nil); got == nil {
		t.Error("Simplify(nil) returned nil, want empty slice")
	}
}

// TestSimplifyResolvesAllPositions replays the emitted transactions against
// the input positions and checks everyone ends within epsilon of zero.
func TestSimplifyResolvesAllPositions(t *testing.T) {
	positions := []Position{
		{UserID: 1, Net: 123.45},
		{UserID: 2, Net: -67.89},
		{UserID: 3, Net: 11.11},
		{UserID: 4, Net: -90.22},
		{UserID: 5, Net: 23.55},
	}

	remaining := map[int64]float64{}
	for _, p := range positions {
		remaining[p.UserID] = p.Net
	}

	for _, tx := range Simplify(positions) {
		if tx.Amount <= 0 {
			t.Errorf("non-positive transaction amount: %+v", tx)
		}
		remaining[tx.FromUserID] += tx.Amount
		remaining[tx.ToUserID] -= tx.Amount
	}

	for userID, net := range remaining {
		if math.Abs(net) > money.Epsilon {
			t.Errorf("user %d left with net %.4f after replay", userID, net)
		}
	}
}

// TestExpenseSettleLifecycle walks the canonical three-person flow: two
// shared expenses, the group-wide imbalance collapsed to a single suggested
// payment, and pairwise settlements draining the ledger to empty.
func TestExpenseSettleLifecycle(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()
	const group = int64(1)
	const userA, userB, userC = int64(1), int64(2), int64(3)

	// A pays 90, split equally three ways.
	shares := []Share{
		{UserID: userA, Amount: 30},
		{UserID: userB, Amount: 30},
		{UserID: userC, Amount: 30},
	}
	if _, err := l.ApplyExpense(ctx, group, userA, shares); err != nil {
		t.Fatalf("apply expense: %v", err)
	}

	netA, _ := l.NetPosition(ctx, group, userA)
	netB, _ := l.NetPosition(ctx, group, userB)
	netC, _ := l.NetPosition(ctx, group, userC)
	if netA != 60 || netB != -30 || netC != -30 {
		t.Fatalf("nets after expense = %.2f/%.2f/%.2f, want 60/-30/-30", netA, netB, netC)
	}

	// B pays 60, split equally between B and C.
	shares2 := []Share{
		{UserID: userB, Amount: 30},
		{UserID: userC, Amount: 30},
	}
	if _, err := l.ApplyExpense(ctx, group, userB, shares2); err != nil {
		t.Fatalf("apply expense: %v", err)
	}

	netA, _ = l.NetPosition(ctx, group, userA)
	netB, _ = l.NetPosition(ctx, group, userB)
	netC, _ = l.NetPosition(ctx, group, userC)
	if netA != 60 || netB != 0 || netC != -60 {
		t.Fatalf("nets = %.2f/%.2f/%.2f, want 60/0/-60", netA, netB, netC)
	}

	// Simplification collapses everything to C paying A 60 even though the
	// pairwise ledger says C owes A 30 and B 30 while B owes A 30.
	positions, err := l.AllNetPositions(ctx, group)
	if err != nil {
		t.Fatalf("net positions: %v", err)
	}
	transactions := Simplify(positions)
	want := []Transaction{{FromUserID: userC, ToUserID: userA, Amount: 60}}
	if !reflect.DeepEqual(transactions, want) {
		t.Fatalf("simplified = %+v, want %+v", transactions, want)
	}

	// Settle the pairwise debts directly: B pays A, C pays B, C pays A.
	if _, err := l.Settle(ctx, group, userB, userA, 30); err != nil {
		t.Fatalf("settle B->A: %v", err)
	}
	if _, err := l.Settle(ctx, group, userC, userB, 30); err != nil {
		t.Fatalf("settle C->B: %v", err)
	}
	if _, err := l.Settle(ctx, group, userC, userA, 30); err != nil {
		t.Fatalf("settle C->A: %v", err)
	}

	rows, err := l.Snapshot(ctx, group)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("ledger not empty after full settlement: %+v", rows)
	}
}
