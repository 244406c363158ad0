package split

import "github.com/shopspring/decimal"

// =============================================================================
// CUSTOM SPLIT STRATEGY
// Each participant owes an explicitly specified amount
// =============================================================================

// CustomStrategy implements the Strategy interface for custom amount splits
type CustomStrategy struct{}

// Type returns the split type identifier
func (s *CustomStrategy) Type() Type {
	return TypeCustom
}

// Calculate passes the given amounts through unchanged. A missing amount counts as zero.
func (s *CustomStrategy) Calculate(total decimal.Decimal, participants []Participant) ([]Share, error) {
	if len(participants) == 0 {
		return nil, ErrInvalidStrategyInput.WithMessage("at least one participant is required")
	}

	shares := make([]Share, len(participants))
	for i, p := range participants {
		shares[i] = Share{UserID: p.UserID, Amount: orZero(p.Amount)}
	}
	return shares, nil
}

// Validate checks that the amounts add up to total, within one cent
func (s *CustomStrategy) Validate(total decimal.Decimal, shares []Share) error {
	if len(shares) == 0 {
		return ErrEmptySplit
	}

	sum := Sum(shares)
	if sum.Sub(total).Abs().GreaterThan(tolerance) {
		return &AmountMismatchError{Sum: sum, Total: total}
	}
	return nil
}
