package expense

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/tripsplit/internal/expense/split"
)

const dateLayout = "2006-01-02"

// SplitInput is one participant of a split: either strategy input for the
// calculator, or a pre-computed amount
type SplitInput struct {
	UserID     int64            `json:"user_id" validate:"required,gt=0"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
	Shares     *int64           `json:"shares,omitempty"`
}

// CreateExpenseRequest represents the request to create or replace an expense.
// Exactly one of Splits (pre-computed) or Participants (computed) is expected.
type CreateExpenseRequest struct {
	Title        string          `json:"title" validate:"required,min=1,max=255"`
	Amount       decimal.Decimal `json:"amount"`
	Category     *string         `json:"category,omitempty" validate:"omitempty,max=100"`
	PayerID      int64           `json:"payer_id,omitempty" validate:"omitempty,gt=0"`
	ExpenseDate  string          `json:"expense_date" validate:"required,datetime=2006-01-02"`
	ReceiptURL   *string         `json:"receipt_url,omitempty" validate:"omitempty,url"`
	Notes        *string         `json:"notes,omitempty"`
	SplitType    split.Type      `json:"split_type" validate:"required"`
	Splits       []SplitInput    `json:"splits,omitempty" validate:"omitempty,dive"`
	Participants []SplitInput    `json:"participants,omitempty" validate:"omitempty,dive"`
}

// UpdateExpenseRequest replaces every field of an expense and its whole split set
type UpdateExpenseRequest = CreateExpenseRequest

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID          int64            `json:"id"`
	TripID      int64            `json:"trip_id"`
	Title       string           `json:"title"`
	Amount      string           `json:"amount"`
	Category    *string          `json:"category,omitempty"`
	PayerID     int64            `json:"payer_id"`
	PayerName   string           `json:"payer_name,omitempty"`
	ExpenseDate string           `json:"expense_date"`
	ReceiptURL  *string          `json:"receipt_url,omitempty"`
	Notes       *string          `json:"notes,omitempty"`
	SplitType   split.Type       `json:"split_type,omitempty"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
	Splits      []*SplitResponse `json:"splits,omitempty"`
}

// SplitResponse represents one participant's split in a response
type SplitResponse struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	UserName   string     `json:"user_name,omitempty"`
	Amount     string     `json:"amount"`
	SplitType  split.Type `json:"split_type"`
	Percentage *string    `json:"percentage,omitempty"`
	Shares     *int64     `json:"shares,omitempty"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	return &ExpenseResponse{
		ID:          e.ID,
		TripID:      e.TripID,
		Title:       e.Title,
		Amount:      e.Amount.StringFixed(2),
		Category:    e.Category,
		PayerID:     e.PayerID,
		PayerName:   e.PayerName,
		ExpenseDate: e.ExpenseDate.Format(dateLayout),
		ReceiptURL:  e.ReceiptURL,
		Notes:       e.Notes,
		CreatedAt:   e.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   e.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a Split model to a SplitResponse DTO
func (s *Split) ToResponse() *SplitResponse {
	resp := &SplitResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		UserName:  s.UserName,
		Amount:    s.Amount.StringFixed(2),
		SplitType: s.SplitType,
		Shares:    s.Shares,
	}
	if s.Percentage != nil {
		pct := s.Percentage.StringFixed(2)
		resp.Percentage = &pct
	}
	return resp
}

// ToResponse converts an expense with its splits
func (e *ExpenseWithSplits) ToResponse() *ExpenseResponse {
	resp := e.Expense.ToResponse()
	resp.SplitType = e.SplitType()
	resp.Splits = make([]*SplitResponse, len(e.Splits))
	for i, s := range e.Splits {
		resp.Splits[i] = s.ToResponse()
	}
	return resp
}

// participants converts inputs for the split calculator
func participants(inputs []SplitInput) []split.Participant {
	out := make([]split.Participant, len(inputs))
	for i, in := range inputs {
		out[i] = split.Participant{
			UserID:     in.UserID,
			Percentage: in.Percentage,
			Shares:     in.Shares,
			Amount:     in.Amount,
		}
	}
	return out
}

// share converts a pre-computed equal or custom split. Percentage and share
// metadata never apply to those strategies.
func (in SplitInput) share() split.Share {
	s := split.Share{UserID: in.UserID}
	if in.Amount != nil {
		s.Amount = *in.Amount
	}
	return s
}
