package expense

import (
	"time"

	"github.com/fairshare-app/fairshare/internal/ledger"
)

// CreateExpenseRequest represents the request to create an expense
type CreateExpenseRequest struct {
	GroupID      int64               `json:"group_id"`
	PayerID      int64               `json:"payer_id"`
	Description  string              `json:"description"`
	Amount       float64             `json:"amount"`
	SplitType    string              `json:"split_type"` // equal, exact, percentage
	Participants []*SplitParticipant `json:"participants,omitempty"`
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID           int64                  `json:"id"`
	GroupID      int64                  `json:"group_id"`
	PayerID      int64                  `json:"payer_id"`
	PayerName    string                 `json:"payer_name,omitempty"`
	Description  string                 `json:"description"`
	Amount       float64                `json:"amount"`
	SplitType    string                 `json:"split_type"`
	CreatedAt    string                 `json:"created_at"`
	Participants []*ParticipantResponse `json:"participants,omitempty"`
	LedgerDelta  *ledger.Delta          `json:"ledger_delta,omitempty"`
}

// ParticipantResponse represents one share in an expense response
type ParticipantResponse struct {
	UserID     int64    `json:"user_id"`
	Name       string   `json:"name,omitempty"`
	Amount     float64  `json:"amount"`
	Percentage *float64 `json:"percentage,omitempty"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	resp := &ExpenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		PayerName:   e.PayerName,
		Description: e.Description,
		Amount:      e.Amount,
		SplitType:   e.SplitType,
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, p := range e.Participants {
		resp.Participants = append(resp.Participants, &ParticipantResponse{
			UserID:     p.UserID,
			Name:       p.Name,
			Amount:     p.Amount,
			Percentage: p.Percentage,
		})
	}
	return resp
}
