// Package split turns an expense amount and a split specification into a
// concrete list of per-participant owed amounts. Strategies are pure: no
// state, no side effects, and validation failures happen before any caller
// touches the ledger.
package split

import (
	"github.com/fairshare-app/fairshare/internal/money"
	"github.com/fairshare-app/fairshare/pkg/apperr"
)

// Type identifies a split strategy.
type Type string

const (
	TypeEqual      Type = "equal"
	TypeExact      Type = "exact"
	TypePercentage Type = "percentage"
)

// Input represents a participant in a split with optional values
type Input struct {
	UserID     int64    `json:"user_id"`
	Amount     *float64 `json:"amount,omitempty"`     // For exact split
	Percentage *float64 `json:"percentage,omitempty"` // For percentage split
}

// Output is the calculated share for a single participant. Percentage is
// populated only by the percentage strategy.
type Output struct {
	UserID     int64    `json:"user_id"`
	Amount     float64  `json:"amount"`
	Percentage *float64 `json:"percentage,omitempty"`
}

// Strategy is the interface that all split strategies must implement.
// Calculate returns one share per participant, payer included; applying the
// shares to the ledger is the caller's concern.
type Strategy interface {
	Calculate(totalAmount float64, participants []Input) ([]Output, error)
	Type() Type
	Validate(totalAmount float64, participants []Input) error
}

// Factory creates split strategies based on the requested type
type Factory struct{}

// NewFactory creates a new factory instance
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the strategy implementation for the given type
func (f *Factory) Create(splitType Type) (Strategy, error) {
	switch splitType {
	case TypeEqual:
		return &EqualStrategy{}, nil
	case TypeExact:
		return &ExactStrategy{}, nil
	case TypePercentage:
		return &PercentageStrategy{}, nil
	default:
		return nil, apperr.Validation("invalid split type %q: must be equal, exact, or percentage", string(splitType))
	}
}

// CreateFromString creates a strategy from a string type (useful for API requests)
func (f *Factory) CreateFromString(splitType string) (Strategy, error) {
	return f.Create(Type(splitType))
}

var (
	ErrNoParticipants     = apperr.Validation("at least one participant is required")
	ErrNonPositiveAmount  = apperr.Validation("amount must be greater than 0")
	ErrNegativeShare      = apperr.Validation("participant amounts cannot be negative")
	ErrMissingExactAmount = apperr.Validation("exact amount required for all participants")
	ErrMissingPercentage  = apperr.Validation("percentage value required for all participants")
	ErrPercentageRange    = apperr.Validation("percentage must be between 0 and 100")
)

func round2(value float64) float64 {
	return money.Round2(value)
}
