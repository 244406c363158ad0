package trip

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// CreateTripRequest represents the request to create a new trip
type CreateTripRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Description *string `json:"description,omitempty"`
	StartDate   *string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Currency    string  `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
}

// UpdateTripRequest represents the request to update a trip
type UpdateTripRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty"`
	StartDate   *string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Currency    *string `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
}

// TripResponse represents the response for a trip
type TripResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	StartDate   *string           `json:"start_date,omitempty"`
	EndDate     *string           `json:"end_date,omitempty"`
	Currency    string            `json:"currency"`
	CreatedBy   int64             `json:"created_by"`
	CreatedAt   string            `json:"created_at"`
	Role        Role              `json:"role,omitempty"`
	Members     []*MemberResponse `json:"members,omitempty"`
}

// MemberResponse represents a member in a trip response
type MemberResponse struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	JoinedAt string `json:"joined_at"`
}

// ToResponse converts a Trip model to a TripResponse DTO
func (t *Trip) ToResponse() *TripResponse {
	return &TripResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		StartDate:   formatDate(t.StartDate),
		EndDate:     formatDate(t.EndDate),
		Currency:    t.Currency,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Role:        t.Role,
	}
}

// ToResponse converts a Member model to a MemberResponse DTO
func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:       m.ID,
		UserID:   m.UserID,
		Name:     m.Name,
		Email:    m.Email,
		Role:     m.Role,
		JoinedAt: m.JoinedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// toTrip converts a create request into a Trip, defaulting the currency to USD
func (req *CreateTripRequest) toTrip(creatorID int64) (*Trip, error) {
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if err := checkDateRange(start, end); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}

	return &Trip{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
		Currency:    currency,
		CreatedBy:   creatorID,
	}, nil
}

func (req *UpdateTripRequest) toUpdate() (*Update, error) {
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, err
	}

	var currency *string
	if req.Currency != nil {
		c := strings.ToUpper(*req.Currency)
		currency = &c
	}

	return &Update{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
		Currency:    currency,
	}, nil
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, ErrInvalidDates.WithMessage("invalid date %q, expected YYYY-MM-DD", *s)
	}
	return &t, nil
}

func checkDateRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return ErrInvalidDates
	}
	return nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
