package split

import "github.com/shopspring/decimal"

// =============================================================================
// EQUAL SPLIT STRATEGY
// Divides the expense equally among all participants
// =============================================================================

// EqualStrategy implements the Strategy interface for equal splits
type EqualStrategy struct{}

// Type returns the split type identifier
func (s *EqualStrategy) Type() Type {
	return TypeEqual
}

// Calculate gives every participant round2(total / N).
// The rounding residue is not redistributed, so 100 over 3 yields 33.33 each.
func (s *EqualStrategy) Calculate(total decimal.Decimal, participants []Participant) ([]Share, error) {
	if len(participants) == 0 {
		return nil, ErrInvalidStrategyInput.WithMessage("at least one participant is required")
	}

	each := roundToTwoDecimals(total.Div(decimal.NewFromInt(int64(len(participants)))))

	shares := make([]Share, len(participants))
	for i, p := range participants {
		shares[i] = Share{UserID: p.UserID, Amount: each}
	}
	return shares, nil
}

// Validate only requires a non-empty split
func (s *EqualStrategy) Validate(total decimal.Decimal, shares []Share) error {
	if len(shares) == 0 {
		return ErrEmptySplit
	}
	return nil
}
