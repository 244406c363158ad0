package expense

import (
	"net/url"
	"strconv"
	"time"

	"github.com/fkhayef/tripsplit/pkg/apperror"
)

var ErrInvalidFilter = apperror.New(apperror.KindValidation, "INVALID_FILTER", "invalid expense filter")

// ListFilter narrows an expense listing. Nil fields are not applied; date bounds are inclusive.
type ListFilter struct {
	Category *string
	PayerID  *int64
	From     *time.Time
	To       *time.Time
}

// predicate is a single "column op value" condition
type predicate struct {
	column string
	op     string
	value  any
}

// predicates lists the conditions of the filter in a stable order
func (f ListFilter) predicates() []predicate {
	var preds []predicate
	if f.Category != nil {
		preds = append(preds, predicate{"e.category", "=", *f.Category})
	}
	if f.PayerID != nil {
		preds = append(preds, predicate{"e.payer_id", "=", *f.PayerID})
	}
	if f.From != nil {
		preds = append(preds, predicate{"e.expense_date", ">=", *f.From})
	}
	if f.To != nil {
		preds = append(preds, predicate{"e.expense_date", "<=", *f.To})
	}
	return preds
}

// Matches reports whether e satisfies every condition of the filter
func (f ListFilter) Matches(e *Expense) bool {
	if f.Category != nil && (e.Category == nil || *e.Category != *f.Category) {
		return false
	}
	if f.PayerID != nil && e.PayerID != *f.PayerID {
		return false
	}
	if f.From != nil && e.ExpenseDate.Before(*f.From) {
		return false
	}
	if f.To != nil && e.ExpenseDate.After(*f.To) {
		return false
	}
	return true
}

// ParseListFilter reads category, payer_id, start_date and end_date query parameters
func ParseListFilter(q url.Values) (ListFilter, error) {
	var f ListFilter

	if v := q.Get("category"); v != "" {
		f.Category = &v
	}
	if v := q.Get("payer_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, ErrInvalidFilter.WithMessage("invalid payer_id %q", v)
		}
		f.PayerID = &id
	}
	if v := q.Get("start_date"); v != "" {
		d, err := time.Parse(dateLayout, v)
		if err != nil {
			return f, ErrInvalidFilter.WithMessage("invalid start_date %q, expected YYYY-MM-DD", v)
		}
		f.From = &d
	}
	if v := q.Get("end_date"); v != "" {
		d, err := time.Parse(dateLayout, v)
		if err != nil {
			return f, ErrInvalidFilter.WithMessage("invalid end_date %q, expected YYYY-MM-DD", v)
		}
		f.To = &d
	}

	return f, nil
}
