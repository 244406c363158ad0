package split

import (
	"github.com/shopspring/decimal"
)

// Type defines the split strategy used to divide an expense
type Type string

const (
	TypeEqual      Type = "equal"
	TypePercentage Type = "percentage"
	TypeShares     Type = "shares"
	TypeCustom     Type = "custom"
)

// Participant is one member taking part in a split, with the strategy-specific input
type Participant struct {
	UserID     int64            `json:"user_id"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"` // For percentage split
	Shares     *int64           `json:"shares,omitempty"`     // For shares split
	Amount     *decimal.Decimal `json:"amount,omitempty"`     // For custom split
}

// Share is the computed part of an expense owed by one participant.
// Only the metadata of the strategy that produced it is populated.
type Share struct {
	UserID     int64            `json:"user_id"`
	Amount     decimal.Decimal  `json:"amount"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
	Shares     *int64           `json:"shares,omitempty"`
}

// Strategy is the interface that all split strategies must implement
type Strategy interface {
	// Type returns the type identifier for this strategy
	Type() Type

	// Calculate computes the amount owed by every participant, in participant order
	Calculate(total decimal.Decimal, participants []Participant) ([]Share, error)

	// Validate checks that a computed or submitted split set is consistent with total
	Validate(total decimal.Decimal, shares []Share) error
}

// Factory creates split strategies based on the requested type
type Factory struct{}

// NewSplitStrategyFactory creates a new factory instance
func NewSplitStrategyFactory() *Factory {
	return &Factory{}
}

// Create returns the appropriate strategy implementation based on the type
func (f *Factory) Create(splitType Type) (Strategy, error) {
	switch splitType {
	case TypeEqual:
		return &EqualStrategy{}, nil
	case TypePercentage:
		return &PercentageStrategy{}, nil
	case TypeShares:
		return &SharesStrategy{}, nil
	case TypeCustom:
		return &CustomStrategy{}, nil
	default:
		return nil, ErrInvalidStrategyInput.WithMessage("unknown split strategy %q", splitType)
	}
}

// Calculate divides total among participants with the given strategy.
func (f *Factory) Calculate(total decimal.Decimal, splitType Type, participants []Participant) ([]Share, error) {
	strategy, err := f.Create(splitType)
	if err != nil {
		return nil, err
	}
	if len(participants) == 0 {
		return nil, ErrInvalidStrategyInput.WithMessage("at least one participant is required")
	}
	return strategy.Calculate(total, participants)
}

// Validate checks a split set with the given strategy.
func (f *Factory) Validate(total decimal.Decimal, splitType Type, shares []Share) error {
	strategy, err := f.Create(splitType)
	if err != nil {
		return err
	}
	if len(shares) == 0 {
		return ErrEmptySplit
	}
	return strategy.Validate(total, shares)
}

var (
	hundred   = decimal.NewFromInt(100)
	tolerance = decimal.New(1, -2)
)

// roundToTwoDecimals rounds a money value to cents
func roundToTwoDecimals(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}

// orZero dereferences an optional decimal input, treating a missing value as zero
func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// Sum adds up the amounts of a split set
func Sum(shares []Share) decimal.Decimal {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Amount)
	}
	return total
}

// CheckTotal checks that pre-computed amounts add up to total, allowing one cent
// of rounding per share
func CheckTotal(total decimal.Decimal, shares []Share) error {
	allowed := tolerance.Mul(decimal.NewFromInt(int64(len(shares))))
	sum := Sum(shares)
	if sum.Sub(total).Abs().GreaterThan(allowed) {
		return &AmountMismatchError{Sum: sum, Total: total}
	}
	return nil
}
