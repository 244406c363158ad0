package expense

import (
	"context"
	"log/slog"
	"time"

	"github.com/fkhayef/tripsplit/internal/expense/split"
	"github.com/fkhayef/tripsplit/internal/trip"
	"github.com/fkhayef/tripsplit/pkg/apperror"
)

var (
	ErrExpenseNotFound      = apperror.New(apperror.KindNotFound, "EXPENSE_NOT_FOUND", "expense not found")
	ErrForbidden            = apperror.New(apperror.KindAuthorization, "FORBIDDEN", "only the payer or a trip admin can modify this expense")
	ErrInvalidAmount        = apperror.New(apperror.KindValidation, "INVALID_AMOUNT", "amount must be positive with at most two decimal places")
	ErrInvalidDate          = apperror.New(apperror.KindValidation, "INVALID_DATE", "expense_date must be YYYY-MM-DD")
	ErrPayerNotMember       = apperror.New(apperror.KindValidation, "PAYER_NOT_A_MEMBER", "payer is not a member of this trip")
	ErrParticipantNotMember = apperror.New(apperror.KindValidation, "PARTICIPANT_NOT_A_MEMBER", "split participant is not a member of this trip")
	ErrDuplicateParticipant = apperror.New(apperror.KindValidation, "DUPLICATE_PARTICIPANT", "a user appears more than once in the split")
)

// Guard authorizes callers and checks membership of payers and participants
type Guard interface {
	Authorize(ctx context.Context, tripID, userID int64, required trip.Role) (trip.Role, error)
	IsMember(ctx context.Context, tripID, userID int64) (bool, error)
}

// Store is the persistence the ledger needs
type Store interface {
	Create(ctx context.Context, e *Expense, splits []*Split) (*ExpenseWithSplits, error)
	Update(ctx context.Context, e *Expense, splits []*Split) (*ExpenseWithSplits, error)
	Delete(ctx context.Context, tripID, expenseID int64) (bool, error)
	GetByID(ctx context.Context, tripID, expenseID int64) (*Expense, error)
	GetSplits(ctx context.Context, expenseID int64) ([]*Split, error)
	List(ctx context.Context, tripID int64, filter ListFilter) ([]*Expense, error)
}

// Service handles expense business logic
type Service struct {
	repo   Store
	guard  Guard
	splits *split.Factory
}

// NewService creates a new expense service
func NewService(repo Store, guard Guard) *Service {
	return &Service{
		repo:   repo,
		guard:  guard,
		splits: split.NewSplitStrategyFactory(),
	}
}

// Create records a new expense with its splits. Any trip member may create one.
func (s *Service) Create(ctx context.Context, tripID, callerID int64, req *CreateExpenseRequest) (*ExpenseWithSplits, error) {
	if _, err := s.guard.Authorize(ctx, tripID, callerID, trip.RoleMember); err != nil {
		return nil, err
	}

	e, splits, err := s.prepare(ctx, tripID, callerID, req)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, e, splits)
	if err != nil {
		return nil, apperror.Transient(err)
	}

	slog.Info("expense created",
		"expense_id", created.Expense.ID,
		"trip_id", tripID,
		"amount", created.Expense.Amount.StringFixed(2),
		"split_type", req.SplitType,
		"splits", len(created.Splits),
	)
	return created, nil
}

// Update replaces an expense and its splits. Only the payer or a trip admin may update.
func (s *Service) Update(ctx context.Context, tripID, expenseID, callerID int64, req *UpdateExpenseRequest) (*ExpenseWithSplits, error) {
	existing, err := s.authorizeModify(ctx, tripID, expenseID, callerID)
	if err != nil {
		return nil, err
	}

	// An edit that leaves payer_id out keeps the current payer
	e, splits, err := s.prepare(ctx, tripID, existing.PayerID, req)
	if err != nil {
		return nil, err
	}
	e.ID = expenseID

	updated, err := s.repo.Update(ctx, e, splits)
	if err != nil {
		return nil, apperror.Transient(err)
	}
	if updated == nil {
		return nil, ErrExpenseNotFound
	}

	slog.Info("expense updated", "expense_id", expenseID, "trip_id", tripID, "by", callerID)
	return updated, nil
}

// Delete removes an expense. Only the payer or a trip admin may delete.
func (s *Service) Delete(ctx context.Context, tripID, expenseID, callerID int64) error {
	if _, err := s.authorizeModify(ctx, tripID, expenseID, callerID); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, tripID, expenseID)
	if err != nil {
		return apperror.Transient(err)
	}
	if !deleted {
		return ErrExpenseNotFound
	}

	slog.Info("expense deleted", "expense_id", expenseID, "trip_id", tripID, "by", callerID)
	return nil
}

// List returns the trip's expenses matching filter
func (s *Service) List(ctx context.Context, tripID, callerID int64, filter ListFilter) ([]*Expense, error) {
	if _, err := s.guard.Authorize(ctx, tripID, callerID, trip.RoleMember); err != nil {
		return nil, err
	}

	expenses, err := s.repo.List(ctx, tripID, filter)
	if err != nil {
		return nil, apperror.Transient(err)
	}
	return expenses, nil
}

// Get returns an expense of the trip with its splits
func (s *Service) Get(ctx context.Context, tripID, expenseID, callerID int64) (*ExpenseWithSplits, error) {
	if _, err := s.guard.Authorize(ctx, tripID, callerID, trip.RoleMember); err != nil {
		return nil, err
	}

	e, err := s.repo.GetByID(ctx, tripID, expenseID)
	if err != nil {
		return nil, apperror.Transient(err)
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}

	splits, err := s.repo.GetSplits(ctx, expenseID)
	if err != nil {
		return nil, apperror.Transient(err)
	}

	return &ExpenseWithSplits{Expense: e, Splits: splits}, nil
}

// authorizeModify checks the caller is a member, the expense is in the trip,
// and the caller is its payer or a trip admin
func (s *Service) authorizeModify(ctx context.Context, tripID, expenseID, callerID int64) (*Expense, error) {
	role, err := s.guard.Authorize(ctx, tripID, callerID, trip.RoleMember)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, tripID, expenseID)
	if err != nil {
		return nil, apperror.Transient(err)
	}
	if existing == nil {
		return nil, ErrExpenseNotFound
	}

	if existing.PayerID != callerID && role != trip.RoleAdmin {
		return nil, ErrForbidden
	}
	return existing, nil
}

// prepare validates the request and builds the rows to persist. Nothing is written here.
// defaultPayerID is used when the request names no payer.
func (s *Service) prepare(ctx context.Context, tripID, defaultPayerID int64, req *CreateExpenseRequest) (*Expense, []*Split, error) {
	if !req.Amount.IsPositive() || !req.Amount.Equal(req.Amount.Round(2)) {
		return nil, nil, ErrInvalidAmount
	}

	date, err := time.Parse(dateLayout, req.ExpenseDate)
	if err != nil {
		return nil, nil, ErrInvalidDate
	}

	payerID := req.PayerID
	if payerID == 0 {
		payerID = defaultPayerID
	}
	ok, err := s.guard.IsMember(ctx, tripID, payerID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrPayerNotMember.WithMessage("payer %d is not a member of this trip", payerID)
	}

	shares, err := s.resolveShares(req)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[int64]bool, len(shares))
	splits := make([]*Split, len(shares))
	for i, sh := range shares {
		if seen[sh.UserID] {
			return nil, nil, ErrDuplicateParticipant.WithMessage("user %d appears more than once in the split", sh.UserID)
		}
		seen[sh.UserID] = true

		ok, err := s.guard.IsMember(ctx, tripID, sh.UserID)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, ErrParticipantNotMember.WithMessage("user %d is not a member of this trip", sh.UserID)
		}

		splits[i] = &Split{
			UserID:     sh.UserID,
			Amount:     sh.Amount,
			SplitType:  req.SplitType,
			Percentage: sh.Percentage,
			Shares:     sh.Shares,
		}
	}

	e := &Expense{
		TripID:      tripID,
		Title:       req.Title,
		Amount:      req.Amount,
		Category:    req.Category,
		PayerID:     payerID,
		ExpenseDate: date,
		ReceiptURL:  req.ReceiptURL,
		Notes:       req.Notes,
	}
	return e, splits, nil
}

// resolveShares computes the split from participants, or takes the pre-computed
// splits, and validates the result against the total
func (s *Service) resolveShares(req *CreateExpenseRequest) ([]split.Share, error) {
	var shares []split.Share

	switch {
	case len(req.Splits) > 0 && len(req.Participants) > 0:
		return nil, split.ErrInvalidStrategyInput.WithMessage("provide either splits or participants, not both")

	case len(req.Participants) > 0:
		computed, err := s.splits.Calculate(req.Amount, req.SplitType, participants(req.Participants))
		if err != nil {
			return nil, err
		}
		shares = computed

	case len(req.Splits) == 0:
		// nothing to split; Validate reports it

	case req.SplitType == split.TypePercentage || req.SplitType == split.TypeShares:
		// Amounts follow from the submitted percentages or share counts
		computed, err := s.splits.Calculate(req.Amount, req.SplitType, participants(req.Splits))
		if err != nil {
			return nil, err
		}
		shares = computed

	default:
		shares = make([]split.Share, len(req.Splits))
		for i, in := range req.Splits {
			if in.Amount == nil {
				return nil, split.ErrInvalidStrategyInput.WithMessage("split amount is required for user %d", in.UserID)
			}
			shares[i] = in.share()
		}
		if req.SplitType == split.TypeEqual {
			if err := split.CheckTotal(req.Amount, shares); err != nil {
				return nil, err
			}
		}
	}

	if err := s.splits.Validate(req.Amount, req.SplitType, shares); err != nil {
		return nil, err
	}
	return shares, nil
}
