// Package triptest provides an in-memory trip store for tests of packages that
// depend on trip membership.
package triptest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fkhayef/tripsplit/internal/trip"
)

// Store is an in-memory trip.Store. The zero value is not usable; call NewStore.
type Store struct {
	mu      sync.Mutex
	nextID  int64
	trips   map[int64]*trip.Trip
	members map[int64][]*trip.Member

	// Err, when set, is returned by every method
	Err error
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		trips:   map[int64]*trip.Trip{},
		members: map[int64][]*trip.Member{},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// Seed creates a trip with the given admin and returns its ID
func (s *Store) Seed(adminID int64, name string) int64 {
	t, _ := s.CreateWithAdmin(context.Background(), &trip.Trip{Name: name, Currency: "USD", CreatedBy: adminID})
	return t.ID
}

// Join adds userID to tripID with role, ignoring duplicates
func (s *Store) Join(tripID, userID int64, role trip.Role) {
	_, _ = s.AddMember(context.Background(), tripID, userID, role)
}

func (s *Store) CreateWithAdmin(ctx context.Context, t *trip.Trip) (*trip.Trip, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	created := *t
	created.ID = s.id()
	created.CreatedAt = time.Now()
	created.Role = trip.RoleAdmin
	s.trips[created.ID] = &created
	s.members[created.ID] = append(s.members[created.ID], &trip.Member{
		ID: s.id(), TripID: created.ID, UserID: t.CreatedBy, Role: trip.RoleAdmin, JoinedAt: time.Now(),
	})

	out := created
	return &out, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*trip.Trip, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trips[id]
	if !ok {
		return nil, nil
	}
	out := *t
	out.Role = ""
	return &out, nil
}

func (s *Store) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*trip.Trip, int, error) {
	if s.Err != nil {
		return nil, 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var trips []*trip.Trip
	for id, members := range s.members {
		for _, m := range members {
			if m.UserID == userID {
				t := *s.trips[id]
				t.Role = m.Role
				trips = append(trips, &t)
			}
		}
	}
	sort.Slice(trips, func(i, j int) bool { return trips[i].ID > trips[j].ID })

	total := len(trips)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return trips[offset:end], total, nil
}

func (s *Store) Update(ctx context.Context, id int64, u *trip.Update) (*trip.Trip, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trips[id]
	if !ok {
		return nil, nil
	}
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.Description != nil {
		t.Description = u.Description
	}
	if u.StartDate != nil {
		t.StartDate = u.StartDate
	}
	if u.EndDate != nil {
		t.EndDate = u.EndDate
	}
	if u.Currency != nil {
		t.Currency = *u.Currency
	}
	out := *t
	return &out, nil
}

func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trips[id]; !ok {
		return false, nil
	}
	delete(s.trips, id)
	delete(s.members, id)
	return true, nil
}

func (s *Store) GetMember(ctx context.Context, tripID, userID int64) (*trip.Member, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.members[tripID] {
		if m.UserID == userID {
			out := *m
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Store) ListMembers(ctx context.Context, tripID int64) ([]*trip.Member, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*trip.Member, len(s.members[tripID]))
	for i, m := range s.members[tripID] {
		c := *m
		out[i] = &c
	}
	return out, nil
}

// AddMember mirrors the database constraints: a duplicate returns
// trip.ErrAlreadyMember and a missing trip returns trip.ErrTripNotFound.
func (s *Store) AddMember(ctx context.Context, tripID, userID int64, role trip.Role) (*trip.Member, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trips[tripID]; !ok {
		return nil, trip.ErrTripNotFound
	}
	for _, m := range s.members[tripID] {
		if m.UserID == userID {
			return nil, trip.ErrAlreadyMember
		}
	}

	m := &trip.Member{ID: s.id(), TripID: tripID, UserID: userID, Role: role, JoinedAt: time.Now()}
	s.members[tripID] = append(s.members[tripID], m)
	out := *m
	return &out, nil
}

func (s *Store) RemoveMember(ctx context.Context, tripID, userID int64) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	members := s.members[tripID]
	for i, m := range members {
		if m.UserID == userID {
			s.members[tripID] = append(members[:i:i], members[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

var _ trip.Store = (*Store)(nil)
