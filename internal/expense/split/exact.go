package split

import (
	"math"

	"github.com/fairshare-app/fairshare/internal/money"
	"github.com/fairshare-app/fairshare/pkg/apperr"
)

// ExactStrategy takes a specific amount for each participant; the amounts
// must sum to the expense total within epsilon.
type ExactStrategy struct{}

// Type returns the split type identifier
func (s *ExactStrategy) Type() Type {
	return TypeExact
}

// Validate checks if the inputs are valid for an exact split
func (s *ExactStrategy) Validate(totalAmount float64, participants []Input) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount <= 0 {
		return ErrNonPositiveAmount
	}

	var sum float64
	for _, p := range participants {
		if p.Amount == nil {
			return ErrMissingExactAmount
		}
		if *p.Amount < 0 {
			return ErrNegativeShare
		}
		sum += *p.Amount
	}

	if math.Abs(sum-totalAmount) > money.Epsilon {
		return apperr.Validation("participant amounts (%.2f) must sum to total amount (%.2f)", sum, totalAmount)
	}

	return nil
}

// Calculate passes the specified amounts through, rounded to 2 decimals.
func (s *ExactStrategy) Calculate(totalAmount float64, participants []Input) ([]Output, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	outputs := make([]Output, len(participants))
	for i, p := range participants {
		outputs[i] = Output{UserID: p.UserID, Amount: round2(*p.Amount)}
	}
	return outputs, nil
}
