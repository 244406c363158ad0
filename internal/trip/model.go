package trip

import "time"

// Role is a member's role within a trip
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Satisfies reports whether a member holding r may act where required is needed.
// Admin satisfies both roles, member satisfies only member.
func (r Role) Satisfies(required Role) bool {
	switch required {
	case RoleAdmin:
		return r == RoleAdmin
	case RoleMember:
		return r == RoleAdmin || r == RoleMember
	default:
		return false
	}
}

// Trip represents a shared trip
type Trip struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Currency    string     `json:"currency"`
	CreatedBy   int64      `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`

	// Role of the requesting user, populated by listing and lookup
	Role Role `json:"role,omitempty"`
}

// Member represents a user's membership in a trip
type Member struct {
	ID       int64     `json:"id"`
	TripID   int64     `json:"trip_id"`
	UserID   int64     `json:"user_id"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`

	// Populated from JOIN
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Update holds the trip fields to change; nil fields are left unchanged
type Update struct {
	Name        *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	Currency    *string
}
