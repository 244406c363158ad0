package trip

import (
	"context"
	"log/slog"

	"github.com/fkhayef/tripsplit/pkg/apperror"
)

// Common errors
var (
	ErrTripNotFound     = apperror.New(apperror.KindNotFound, "TRIP_NOT_FOUND", "trip not found")
	ErrMemberNotFound   = apperror.New(apperror.KindNotFound, "MEMBER_NOT_FOUND", "member not found")
	ErrAlreadyMember    = apperror.New(apperror.KindConflict, "ALREADY_MEMBER", "user is already a member of this trip")
	ErrNotTripMember    = apperror.New(apperror.KindAuthorization, "NOT_A_TRIP_MEMBER", "you are not a member of this trip")
	ErrInsufficientRole = apperror.New(apperror.KindAuthorization, "INSUFFICIENT_ROLE", "only trip admins can perform this action")
	ErrInvalidDates     = apperror.New(apperror.KindValidation, "INVALID_TRIP_DATES", "end date must not be before start date")
)

// Store is the trip persistence the service depends on
type Store interface {
	MembershipStore
	CreateWithAdmin(ctx context.Context, t *Trip) (*Trip, error)
	GetByID(ctx context.Context, id int64) (*Trip, error)
	ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*Trip, int, error)
	Update(ctx context.Context, id int64, u *Update) (*Trip, error)
	Delete(ctx context.Context, id int64) (bool, error)
	ListMembers(ctx context.Context, tripID int64) ([]*Member, error)
	AddMember(ctx context.Context, tripID, userID int64, role Role) (*Member, error)
	RemoveMember(ctx context.Context, tripID, userID int64) (bool, error)
}

// Service handles trip business logic
type Service struct {
	repo  Store
	guard *Guard
}

// NewService creates a new trip service
func NewService(repo Store, guard *Guard) *Service {
	return &Service{repo: repo, guard: guard}
}

// Create creates a new trip and adds the creator as admin
func (s *Service) Create(ctx context.Context, creatorID int64, req *CreateTripRequest) (*Trip, error) {
	t, err := req.toTrip(creatorID)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.CreateWithAdmin(ctx, t)
	if err != nil {
		return nil, apperror.Transient(err)
	}

	slog.Info("Trip created", "trip_id", created.ID, "created_by", creatorID)
	return created, nil
}

// Get retrieves a trip with its members for a member of that trip
func (s *Service) Get(ctx context.Context, tripID, callerID int64) (*Trip, []*Member, error) {
	role, err := s.guard.Authorize(ctx, tripID, callerID, RoleMember)
	if err != nil {
		return nil, nil, err
	}

	t, err := s.repo.GetByID(ctx, tripID)
	if err != nil {
		return nil, nil, apperror.Transient(err)
	}
	if t == nil {
		return nil, nil, ErrTripNotFound
	}
	t.Role = role

	members, err := s.repo.ListMembers(ctx, tripID)
	if err != nil {
		return nil, nil, apperror.Transient(err)
	}

	return t, members, nil
}

// List retrieves the trips of a user
func (s *Service) List(ctx context.Context, userID int64, page, perPage int) ([]*Trip, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	trips, total, err := s.repo.ListByUserID(ctx, userID, perPage, offset)
	if err != nil {
		return nil, 0, apperror.Transient(err)
	}
	return trips, total, nil
}

// Update modifies a trip. Only admins may update.
func (s *Service) Update(ctx context.Context, tripID, callerID int64, req *UpdateTripRequest) (*Trip, error) {
	role, err := s.guard.Authorize(ctx, tripID, callerID, RoleAdmin)
	if err != nil {
		return nil, err
	}

	u, err := req.toUpdate()
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, tripID)
	if err != nil {
		return nil, apperror.Transient(err)
	}
	if existing == nil {
		return nil, ErrTripNotFound
	}

	start, end := existing.StartDate, existing.EndDate
	if u.StartDate != nil {
		start = u.StartDate
	}
	if u.EndDate != nil {
		end = u.EndDate
	}
	if err := checkDateRange(start, end); err != nil {
		return nil, err
	}

	t, err := s.repo.Update(ctx, tripID, u)
	if err != nil {
		return nil, apperror.Transient(err)
	}
	if t == nil {
		return nil, ErrTripNotFound
	}
	t.Role = role
	return t, nil
}

// Delete removes a trip with all its expenses. Only admins may delete.
func (s *Service) Delete(ctx context.Context, tripID, callerID int64) error {
	if _, err := s.guard.Authorize(ctx, tripID, callerID, RoleAdmin); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, tripID)
	if err != nil {
		return apperror.Transient(err)
	}
	if !deleted {
		return ErrTripNotFound
	}

	slog.Info("Trip deleted", "trip_id", tripID, "deleted_by", callerID)
	return nil
}

// Members lists the members of a trip for a member of that trip
func (s *Service) Members(ctx context.Context, tripID, callerID int64) ([]*Member, error) {
	if _, err := s.guard.Authorize(ctx, tripID, callerID, RoleMember); err != nil {
		return nil, err
	}

	members, err := s.repo.ListMembers(ctx, tripID)
	if err != nil {
		return nil, apperror.Transient(err)
	}
	return members, nil
}

// RemoveMember removes a user from a trip. Only admins may remove members; the
// last admin may remove themselves, leaving the trip without an admin.
func (s *Service) RemoveMember(ctx context.Context, tripID, callerID, userID int64) error {
	if _, err := s.guard.Authorize(ctx, tripID, callerID, RoleAdmin); err != nil {
		return err
	}

	removed, err := s.repo.RemoveMember(ctx, tripID, userID)
	if err != nil {
		return apperror.Transient(err)
	}
	if !removed {
		return ErrMemberNotFound
	}

	slog.Info("Member removed", "trip_id", tripID, "user_id", userID, "removed_by", callerID)
	return nil
}
