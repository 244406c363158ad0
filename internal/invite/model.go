package invite

import "time"

// Invite is a signed invite token and the join link that carries it
type Invite struct {
	Token     string    `json:"token"`
	Link      string    `json:"link"`
	ExpiresAt time.Time `json:"expires_at"`
}

// EmailInviteResult reports what InviteByEmail did
type EmailInviteResult struct {
	Email string `json:"email"`
	// Added is true when the email belonged to a registered user who is now a member
	Added  bool   `json:"added"`
	UserID *int64 `json:"user_id,omitempty"`
	// EmailQueued is true when an invite email was handed to the mail worker
	EmailQueued bool   `json:"email_queued"`
	Message     string `json:"message"`
}

// JoinRequest is the body of POST /trips/join
type JoinRequest struct {
	Token string `json:"token" validate:"required"`
}

// InviteByEmailRequest is the body of POST /trips/{tripId}/members
type InviteByEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// JoinResponse is returned after a successful redemption
type JoinResponse struct {
	TripID  int64  `json:"trip_id"`
	Message string `json:"message"`
}
