package split

// EqualStrategy divides the total evenly among all participants.
type EqualStrategy struct{}

// Type returns the split type identifier
func (s *EqualStrategy) Type() Type {
	return TypeEqual
}

// Validate checks if the inputs are valid for an equal split
func (s *EqualStrategy) Validate(totalAmount float64, participants []Input) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount <= 0 {
		return ErrNonPositiveAmount
	}
	return nil
}

// Calculate gives every participant total/count, rounded to 2 decimals. The
// rounding remainder is not redistributed, so the shares may sum to slightly
// less or more than the total; callers tolerate totals within rounding error.
func (s *EqualStrategy) Calculate(totalAmount float64, participants []Input) ([]Output, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	sharePerPerson := round2(totalAmount / float64(len(participants)))

	outputs := make([]Output, len(participants))
	for i, p := range participants {
		outputs[i] = Output{UserID: p.UserID, Amount: sharePerPerson}
	}
	return outputs, nil
}
