package split

import "github.com/shopspring/decimal"

// =============================================================================
// SHARES SPLIT STRATEGY
// Divides the expense proportionally to a share count per participant
// =============================================================================

// SharesStrategy implements the Strategy interface for share-weighted splits
type SharesStrategy struct{}

// Type returns the split type identifier
func (s *SharesStrategy) Type() Type {
	return TypeShares
}

// Calculate gives every participant round2(total * shares / totalShares).
// A missing share count counts as zero.
func (s *SharesStrategy) Calculate(total decimal.Decimal, participants []Participant) ([]Share, error) {
	if len(participants) == 0 {
		return nil, ErrInvalidStrategyInput.WithMessage("at least one participant is required")
	}

	var totalShares int64
	for _, p := range participants {
		if p.Shares != nil {
			totalShares += *p.Shares
		}
	}
	if totalShares == 0 {
		return nil, ErrInvalidStrategyInput.WithMessage("total shares must be greater than zero")
	}

	divisor := decimal.NewFromInt(totalShares)
	shares := make([]Share, len(participants))
	for i, p := range participants {
		var n int64
		if p.Shares != nil {
			n = *p.Shares
		}
		shares[i] = Share{
			UserID: p.UserID,
			Amount: roundToTwoDecimals(total.Mul(decimal.NewFromInt(n)).Div(divisor)),
			Shares: &n,
		}
	}
	return shares, nil
}

// Validate requires a positive share count for every participant
func (s *SharesStrategy) Validate(total decimal.Decimal, shares []Share) error {
	if len(shares) == 0 {
		return ErrEmptySplit
	}
	for _, sh := range shares {
		if sh.Shares == nil || *sh.Shares <= 0 {
			return ErrInvalidShares
		}
	}
	return nil
}
