package trip

import (
	"context"

	"github.com/fkhayef/tripsplit/pkg/apperror"
)

// MembershipStore looks up a single membership row
type MembershipStore interface {
	GetMember(ctx context.Context, tripID, userID int64) (*Member, error)
}

// Guard authorizes users against their trip role. Every trip-scoped operation goes
// through Authorize before touching any trip data.
type Guard struct {
	members MembershipStore
}

// NewGuard creates a new membership guard
func NewGuard(members MembershipStore) *Guard {
	return &Guard{members: members}
}

// Authorize checks that userID belongs to tripID with at least the required role
// and returns the role the user holds.
func (g *Guard) Authorize(ctx context.Context, tripID, userID int64, required Role) (Role, error) {
	m, err := g.members.GetMember(ctx, tripID, userID)
	if err != nil {
		return "", apperror.Transient(err)
	}
	if m == nil {
		return "", ErrNotTripMember
	}
	if !m.Role.Satisfies(required) {
		return m.Role, ErrInsufficientRole
	}
	return m.Role, nil
}

// IsMember reports whether userID currently belongs to tripID
func (g *Guard) IsMember(ctx context.Context, tripID, userID int64) (bool, error) {
	m, err := g.members.GetMember(ctx, tripID, userID)
	if err != nil {
		return false, apperror.Transient(err)
	}
	return m != nil, nil
}
