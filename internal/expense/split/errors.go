package split

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/tripsplit/pkg/apperror"
)

// Split validation errors
var (
	ErrInvalidStrategyInput = apperror.New(apperror.KindValidation, "INVALID_STRATEGY_INPUT", "invalid split strategy input")
	ErrEmptySplit           = apperror.New(apperror.KindValidation, "EMPTY_SPLIT", "at least one split is required")
	ErrInvalidShares        = apperror.New(apperror.KindValidation, "INVALID_SHARES", "every participant must have at least one share")
	ErrPercentageMismatch   = apperror.New(apperror.KindValidation, "PERCENTAGE_MISMATCH", "percentages must add up to 100")
	ErrAmountMismatch       = apperror.New(apperror.KindValidation, "AMOUNT_MISMATCH", "split amounts must add up to the expense amount")
)

// PercentageMismatchError reports the actual percentage sum of a rejected split.
type PercentageMismatchError struct {
	Sum decimal.Decimal
}

func (e *PercentageMismatchError) Error() string {
	return fmt.Sprintf("percentages must add up to 100 (currently %s)", e.Sum.StringFixed(2))
}

func (e *PercentageMismatchError) Kind() apperror.Kind { return apperror.KindValidation }
func (e *PercentageMismatchError) Code() string        { return ErrPercentageMismatch.Code() }
func (e *PercentageMismatchError) Is(target error) bool {
	return target == error(ErrPercentageMismatch)
}

func (e *PercentageMismatchError) Details() map[string]any {
	return map[string]any{"sum": e.Sum.StringFixed(2)}
}

// AmountMismatchError reports the split total and the expense total of a rejected split.
type AmountMismatchError struct {
	Sum   decimal.Decimal
	Total decimal.Decimal
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("split amounts (%s) must add up to the expense amount (%s)",
		e.Sum.StringFixed(2), e.Total.StringFixed(2))
}

func (e *AmountMismatchError) Kind() apperror.Kind { return apperror.KindValidation }
func (e *AmountMismatchError) Code() string        { return ErrAmountMismatch.Code() }
func (e *AmountMismatchError) Is(target error) bool {
	return target == error(ErrAmountMismatch)
}

func (e *AmountMismatchError) Details() map[string]any {
	return map[string]any{
		"sum":      e.Sum.StringFixed(2),
		"expected": e.Total.StringFixed(2),
	}
}
