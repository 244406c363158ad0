package balance

import (
	"context"

	"github.com/fkhayef/tripsplit/internal/trip"
	"github.com/fkhayef/tripsplit/internal/user"
	"github.com/fkhayef/tripsplit/pkg/apperror"
)

// Authorizer checks trip membership
type Authorizer interface {
	Authorize(ctx context.Context, tripID, userID int64, required trip.Role) (trip.Role, error)
}

// Store reads paid and owed totals. NetBalance is left for the service to derive.
type Store interface {
	UserTotals(ctx context.Context, tripID, userID int64) (*Summary, error)
	MemberTotals(ctx context.Context, tripID int64) ([]*Summary, error)
}

// Service aggregates balances. Nothing is cached; every call reads the persisted rows.
type Service struct {
	repo  Store
	guard Authorizer
}

// NewService creates a new balance service
func NewService(repo Store, guard Authorizer) *Service {
	return &Service{repo: repo, guard: guard}
}

// Summary returns what targetID paid, owes and nets within a trip.
// Any member may view any user's summary.
func (s *Service) Summary(ctx context.Context, tripID, callerID, targetID int64) (*Summary, error) {
	if _, err := s.guard.Authorize(ctx, tripID, callerID, trip.RoleMember); err != nil {
		return nil, err
	}

	summary, err := s.repo.UserTotals(ctx, tripID, targetID)
	if err != nil {
		return nil, apperror.Transient(err)
	}
	if summary == nil {
		return nil, user.ErrUserNotFound
	}

	summary.NetBalance = summary.TotalPaid.Sub(summary.TotalOwed)
	return summary, nil
}

// TripSummaries returns the summary of every current member of a trip
func (s *Service) TripSummaries(ctx context.Context, tripID, callerID int64) ([]*Summary, error) {
	if _, err := s.guard.Authorize(ctx, tripID, callerID, trip.RoleMember); err != nil {
		return nil, err
	}

	summaries, err := s.repo.MemberTotals(ctx, tripID)
	if err != nil {
		return nil, apperror.Transient(err)
	}
	for _, sum := range summaries {
		sum.NetBalance = sum.TotalPaid.Sub(sum.TotalOwed)
	}
	return summaries, nil
}

// Transfers suggests who should pay whom to settle the trip's current members
func (s *Service) Transfers(ctx context.Context, tripID, callerID int64) ([]Transfer, error) {
	summaries, err := s.TripSummaries(ctx, tripID, callerID)
	if err != nil {
		return nil, err
	}
	return SettleUp(summaries), nil
}
