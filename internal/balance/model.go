package balance

import "github.com/shopspring/decimal"

// UserRef identifies the user a summary belongs to
type UserRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary is a user's position within one trip.
// NetBalance is positive when others owe the user and negative when the user owes others.
type Summary struct {
	User       UserRef
	TotalPaid  decimal.Decimal
	TotalOwed  decimal.Decimal
	NetBalance decimal.Decimal
}

// Transfer is a suggested payment that moves a trip towards zero net balances
type Transfer struct {
	FromUserID int64
	ToUserID   int64
	Amount     decimal.Decimal
}

// SummaryResponse represents a balance summary in a response
type SummaryResponse struct {
	User       UserRef `json:"user"`
	TotalPaid  string  `json:"total_paid"`
	TotalOwed  string  `json:"total_owed"`
	NetBalance string  `json:"net_balance"`
}

// TransferResponse represents a suggested payment in a response
type TransferResponse struct {
	FromUserID int64  `json:"from_user_id"`
	ToUserID   int64  `json:"to_user_id"`
	Amount     string `json:"amount"`
}

// ToResponse converts a Summary to a SummaryResponse DTO
func (s *Summary) ToResponse() *SummaryResponse {
	return &SummaryResponse{
		User:       s.User,
		TotalPaid:  s.TotalPaid.StringFixed(2),
		TotalOwed:  s.TotalOwed.StringFixed(2),
		NetBalance: s.NetBalance.StringFixed(2),
	}
}

// ToResponse converts a Transfer to a TransferResponse DTO
func (t Transfer) ToResponse() *TransferResponse {
	return &TransferResponse{
		FromUserID: t.FromUserID,
		ToUserID:   t.ToUserID,
		Amount:     t.Amount.StringFixed(2),
	}
}
