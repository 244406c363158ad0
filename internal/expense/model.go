package expense

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/tripsplit/internal/expense/split"
)

// Expense represents a trip expense
type Expense struct {
	ID          int64           `json:"id"`
	TripID      int64           `json:"trip_id"`
	Title       string          `json:"title"`
	Amount      decimal.Decimal `json:"amount"`
	Category    *string         `json:"category,omitempty"`
	PayerID     int64           `json:"payer_id"`
	ExpenseDate time.Time       `json:"expense_date"`
	ReceiptURL  *string         `json:"receipt_url,omitempty"`
	Notes       *string         `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Populated via JOIN
	PayerName string `json:"payer_name,omitempty"`
}

// Split is one participant's part of an expense
type Split struct {
	ID         int64            `json:"id"`
	ExpenseID  int64            `json:"expense_id"`
	UserID     int64            `json:"user_id"`
	Amount     decimal.Decimal  `json:"amount"`
	SplitType  split.Type       `json:"split_type"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
	Shares     *int64           `json:"shares,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`

	// Populated via JOIN
	UserName string `json:"user_name,omitempty"`
}

// ExpenseWithSplits combines an expense with its split rows
type ExpenseWithSplits struct {
	Expense *Expense
	Splits  []*Split
}

// SplitType reports the strategy the splits were computed with
func (e *ExpenseWithSplits) SplitType() split.Type {
	if len(e.Splits) == 0 {
		return ""
	}
	return e.Splits[0].SplitType
}
