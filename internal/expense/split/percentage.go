package split

import "github.com/shopspring/decimal"

// =============================================================================
// PERCENTAGE SPLIT STRATEGY
// Divides the expense based on specified percentages for each participant
// =============================================================================

// PercentageStrategy implements the Strategy interface for percentage-based splits
type PercentageStrategy struct{}

// Type returns the split type identifier
func (s *PercentageStrategy) Type() Type {
	return TypePercentage
}

// Calculate gives every participant round2(total * pct / 100).
// A missing percentage counts as zero; the sum is checked by Validate.
func (s *PercentageStrategy) Calculate(total decimal.Decimal, participants []Participant) ([]Share, error) {
	if len(participants) == 0 {
		return nil, ErrInvalidStrategyInput.WithMessage("at least one participant is required")
	}

	shares := make([]Share, len(participants))
	for i, p := range participants {
		pct := orZero(p.Percentage)
		shares[i] = Share{
			UserID:     p.UserID,
			Amount:     roundToTwoDecimals(total.Mul(pct).Div(hundred)),
			Percentage: &pct,
		}
	}
	return shares, nil
}

// Validate checks that the percentages add up to 100, within one hundredth
func (s *PercentageStrategy) Validate(total decimal.Decimal, shares []Share) error {
	if len(shares) == 0 {
		return ErrEmptySplit
	}

	sum := decimal.Zero
	for _, sh := range shares {
		sum = sum.Add(orZero(sh.Percentage))
	}

	if sum.Sub(hundred).Abs().GreaterThan(tolerance) {
		return &PercentageMismatchError{Sum: sum}
	}
	return nil
}
