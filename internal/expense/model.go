package expense

import (
	"time"

	"github.com/fairshare-app/fairshare/internal/expense/split"
	"github.com/fairshare-app/fairshare/internal/ledger"
)

// Expense represents a shared cost paid by one group member. Expenses are
// immutable once created; the only mutation is deletion, which exactly
// reverses the expense's effect on the ledger.
type Expense struct {
	ID          int64     `json:"id"`
	GroupID     int64     `json:"group_id"`
	PayerID     int64     `json:"payer_id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	SplitType   string    `json:"split_type"` // equal, exact, percentage
	CreatedAt   time.Time `json:"created_at"`

	Participants []*Participant `json:"participants,omitempty"`

	// Populated via JOIN
	PayerName string `json:"payer_name,omitempty"`
}

// Participant is one calculated share of an expense. Percentage is set only
// for percentage splits.
type Participant struct {
	ExpenseID  int64    `json:"expense_id"`
	UserID     int64    `json:"user_id"`
	Amount     float64  `json:"amount"`
	Percentage *float64 `json:"percentage,omitempty"`

	// Populated via JOIN
	Name string `json:"name,omitempty"`
}

// LedgerShares converts the stored participants into the ledger's share
// form, which is what both application and reversal consume.
func (e *Expense) LedgerShares() []ledger.Share {
	shares := make([]ledger.Share, len(e.Participants))
	for i, p := range e.Participants {
		shares[i] = ledger.Share{UserID: p.UserID, Amount: p.Amount}
	}
	return shares
}

// SplitParticipant is used when creating an expense
type SplitParticipant struct {
	UserID     int64    `json:"user_id"`
	Amount     *float64 `json:"amount,omitempty"`     // For exact split
	Percentage *float64 `json:"percentage,omitempty"` // For percentage split
}

// ToSplitInput converts to the split package's input type
func (p *SplitParticipant) ToSplitInput() split.Input {
	return split.Input{
		UserID:     p.UserID,
		Amount:     p.Amount,
		Percentage: p.Percentage,
	}
}
