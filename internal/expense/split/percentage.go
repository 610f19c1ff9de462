package split

import (
	"math"

	"github.com/fairshare-app/fairshare/internal/money"
	"github.com/fairshare-app/fairshare/pkg/apperr"
)

// PercentageStrategy divides the total by per-participant percentages, which
// must sum to 100 within epsilon.
type PercentageStrategy struct{}

// Type returns the split type identifier
func (s *PercentageStrategy) Type() Type {
	return TypePercentage
}

// Validate checks if the inputs are valid for a percentage split
func (s *PercentageStrategy) Validate(totalAmount float64, participants []Input) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount <= 0 {
		return ErrNonPositiveAmount
	}

	var sum float64
	for _, p := range participants {
		if p.Percentage == nil {
			return ErrMissingPercentage
		}
		if *p.Percentage < 0 || *p.Percentage > 100 {
			return ErrPercentageRange
		}
		sum += *p.Percentage
	}

	if math.Abs(sum-100) > money.Epsilon {
		return apperr.Validation("percentages must sum to 100, got %.2f", sum)
	}

	return nil
}

// Calculate computes total * percentage / 100 for each participant, rounded
// to 2 decimals, and carries the originating percentage through.
func (s *PercentageStrategy) Calculate(totalAmount float64, participants []Input) ([]Output, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	outputs := make([]Output, len(participants))
	for i, p := range participants {
		pct := *p.Percentage
		outputs[i] = Output{
			UserID:     p.UserID,
			Amount:     round2(totalAmount * pct / 100),
			Percentage: &pct,
		}
	}
	return outputs, nil
}
