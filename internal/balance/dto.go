package balance

import (
	"time"

	"github.com/fairshare-app/fairshare/internal/ledger"
	"github.com/fairshare-app/fairshare/internal/settlement"
)

// SettleRequest represents the request to settle a debt
type SettleRequest struct {
	GroupID int64   `json:"group_id"`
	PayerID int64   `json:"payer_id"`
	PayeeID int64   `json:"payee_id"`
	Amount  float64 `json:"amount"`
}

// SettleResponse combines the ledger result with the recorded settlement
type SettleResponse struct {
	Result     *ledger.SettlementResult `json:"result"`
	Settlement *SettlementRecord        `json:"settlement"`
}

// SettlementRecord represents a settlement history entry
type SettlementRecord struct {
	ID          int64   `json:"id"`
	GroupID     int64   `json:"group_id"`
	PayerID     int64   `json:"payer_id"`
	PayerName   string  `json:"payer_name,omitempty"`
	PayeeID     int64   `json:"payee_id"`
	PayeeName   string  `json:"payee_name,omitempty"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"created_at"`
}

// UserBalances is one user's row in the group balances view
type UserBalances struct {
	UserID   int64             `json:"user_id"`
	Balances map[int64]float64 `json:"balances"`
	Summary  *ledger.Summary   `json:"summary"`
}

// GroupBalancesResponse is the group-wide balances view with the simplified
// transaction plan
type GroupBalancesResponse struct {
	GroupID                int64                `json:"group_id"`
	Balances               []*UserBalances      `json:"balances"`
	SimplifiedTransactions []ledger.Transaction `json:"simplified_transactions"`
}

func toSettlementRecord(s *settlement.Settlement) *SettlementRecord {
	return &SettlementRecord{
		ID:          s.ID,
		GroupID:     s.GroupID,
		PayerID:     s.PayerID,
		PayerName:   s.PayerName,
		PayeeID:     s.PayeeID,
		PayeeName:   s.PayeeName,
		Amount:      s.Amount,
		Description: s.Description,
		CreatedAt:   s.CreatedAt.UTC().Format(time.RFC3339),
	}
}
