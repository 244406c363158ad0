package invite

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/fkhayef/tripsplit/internal/mail"
	"github.com/fkhayef/tripsplit/internal/trip"
	"github.com/fkhayef/tripsplit/internal/user"
	"github.com/fkhayef/tripsplit/pkg/apperror"
)

var ErrInvalidToken = apperror.New(apperror.KindToken, "INVALID_OR_EXPIRED_TOKEN", "invalid or expired invite link")

// Authorizer checks a user's role in a trip
type Authorizer interface {
	Authorize(ctx context.Context, tripID, userID int64, required trip.Role) (trip.Role, error)
}

// TripStore is the trip persistence the invite service depends on
type TripStore interface {
	GetByID(ctx context.Context, id int64) (*trip.Trip, error)
	GetMember(ctx context.Context, tripID, userID int64) (*trip.Member, error)
	AddMember(ctx context.Context, tripID, userID int64, role trip.Role) (*trip.Member, error)
}

// UserFinder looks users up by email
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

// Mailer queues outgoing mail
type Mailer interface {
	Enqueue(msg mail.Message)
}

// Options configures the invite service
type Options struct {
	// SigningKey signs invite tokens. It is independent of the session key.
	SigningKey  []byte
	TTL         time.Duration
	FrontendURL string
	Now         func() time.Time
}

// Service issues and redeems trip invites
type Service struct {
	guard       Authorizer
	trips       TripStore
	users       UserFinder
	mailer      Mailer
	codec       *tokenCodec
	frontendURL string
}

// NewService creates a new invite service
func NewService(guard Authorizer, trips TripStore, users UserFinder, mailer Mailer, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &Service{
		guard:       guard,
		trips:       trips,
		users:       users,
		mailer:      mailer,
		codec:       &tokenCodec{key: opts.SigningKey, ttl: ttl, now: now},
		frontendURL: strings.TrimRight(opts.FrontendURL, "/"),
	}
}

// Issue creates an invite link for a trip. Only admins may invite.
func (s *Service) Issue(ctx context.Context, tripID, issuerID int64) (*Invite, error) {
	if _, err := s.guard.Authorize(ctx, tripID, issuerID, trip.RoleAdmin); err != nil {
		return nil, err
	}
	return s.issue(tripID, issuerID)
}

func (s *Service) issue(tripID, issuerID int64) (*Invite, error) {
	token, expiresAt, err := s.codec.sign(tripID, issuerID)
	if err != nil {
		return nil, err
	}

	return &Invite{
		Token:     token,
		Link:      s.frontendURL + "/join?token=" + url.QueryEscape(token),
		ExpiresAt: expiresAt,
	}, nil
}

// Redeem adds userID to the trip named in the token and returns the trip ID
func (s *Service) Redeem(ctx context.Context, token string, userID int64) (int64, error) {
	claims, err := s.codec.parse(token)
	if err != nil {
		return 0, err
	}

	existing, err := s.trips.GetMember(ctx, claims.TripID, userID)
	if err != nil {
		return 0, apperror.Transient(err)
	}
	if existing != nil {
		return 0, trip.ErrAlreadyMember
	}

	// A concurrent redemption or a deleted trip is caught by the insert constraints
	if _, err := s.trips.AddMember(ctx, claims.TripID, userID, trip.RoleMember); err != nil {
		return 0, apperror.Transient(err)
	}

	slog.Info("Invite redeemed", "trip_id", claims.TripID, "user_id", userID, "inviter_id", claims.InviterID, "jti", claims.ID)
	return claims.TripID, nil
}

// InviteByEmail adds a registered user directly, or mails a join link to an
// unknown address. Only admins may invite. Mail failures never fail the call.
func (s *Service) InviteByEmail(ctx context.Context, tripID, adminID int64, email string) (*EmailInviteResult, error) {
	if _, err := s.guard.Authorize(ctx, tripID, adminID, trip.RoleAdmin); err != nil {
		return nil, err
	}

	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, apperror.Transient(err)
	}
	if t == nil {
		return nil, trip.ErrTripNotFound
	}

	invitee, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Transient(err)
	}

	result := &EmailInviteResult{Email: email}

	if invitee != nil {
		existing, err := s.trips.GetMember(ctx, tripID, invitee.ID)
		if err != nil {
			return nil, apperror.Transient(err)
		}
		if existing != nil {
			return nil, trip.ErrAlreadyMember
		}
		if _, err := s.trips.AddMember(ctx, tripID, invitee.ID, trip.RoleMember); err != nil {
			return nil, apperror.Transient(err)
		}

		result.Added = true
		result.UserID = &invitee.ID
		result.EmailQueued = s.queueInvite(email, t.Name, "")
		result.Message = "User added to trip"
		slog.Info("Member added by email", "trip_id", tripID, "user_id", invitee.ID, "added_by", adminID)
		return result, nil
	}

	inv, err := s.issue(tripID, adminID)
	if err != nil {
		return nil, err
	}
	result.EmailQueued = s.queueInvite(email, t.Name, inv.Link)
	result.Message = "User not found, invite email sent"
	return result, nil
}

func (s *Service) queueInvite(to, tripName, link string) bool {
	msg, err := mail.InviteMessage(to, tripName, link)
	if err != nil {
		slog.Error("Failed to build invite email", "to", to, "error", err)
		return false
	}
	s.mailer.Enqueue(msg)
	return true
}
