package expense

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/tripsplit/internal/expense/split"
	"github.com/fkhayef/tripsplit/internal/trip"
	"github.com/fkhayef/tripsplit/internal/trip/triptest"
	"github.com/fkhayef/tripsplit/pkg/apperror"
)

// memStore is an in-memory Store that counts writes
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	expenses map[int64]*Expense
	splits   map[int64][]*Split
	writes   int
}

func newMemStore() *memStore {
	return &memStore{expenses: map[int64]*Expense{}, splits: map[int64][]*Split{}}
}

func (m *memStore) Create(ctx context.Context, e *Expense, splits []*Split) (*ExpenseWithSplits, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.nextID++

	created := *e
	created.ID = m.nextID
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	m.expenses[created.ID] = &created
	m.splits[created.ID] = splits
	return &ExpenseWithSplits{Expense: &created, Splits: splits}, nil
}

func (m *memStore) Update(ctx context.Context, e *Expense, splits []*Split) (*ExpenseWithSplits, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++

	existing, ok := m.expenses[e.ID]
	if !ok || existing.TripID != e.TripID {
		return nil, nil
	}
	updated := *e
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	m.expenses[e.ID] = &updated
	m.splits[e.ID] = splits
	return &ExpenseWithSplits{Expense: &updated, Splits: splits}, nil
}

func (m *memStore) Delete(ctx context.Context, tripID, expenseID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++

	e, ok := m.expenses[expenseID]
	if !ok || e.TripID != tripID {
		return false, nil
	}
	delete(m.expenses, expenseID)
	delete(m.splits, expenseID)
	return true, nil
}

func (m *memStore) GetByID(ctx context.Context, tripID, expenseID int64) (*Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.expenses[expenseID]
	if !ok || e.TripID != tripID {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (m *memStore) GetSplits(ctx context.Context, expenseID int64) ([]*Split, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.splits[expenseID], nil
}

func (m *memStore) List(ctx context.Context, tripID int64, filter ListFilter) ([]*Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*Expense
	for _, e := range m.expenses {
		if e.TripID == tripID && filter.Matches(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExpenseDate.Equal(out[j].ExpenseDate) {
			return out[i].ExpenseDate.After(out[j].ExpenseDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Users 1 (admin), 2 and 3 (members) belong to trip 1; user 4 only to trip 2.
func newTestService(t *testing.T) (*Service, *memStore) {
	t.Helper()
	trips := triptest.NewStore()
	tripID := trips.Seed(1, "Porto")
	trips.Join(tripID, 2, trip.RoleMember)
	trips.Join(tripID, 3, trip.RoleMember)
	trips.Seed(4, "Elsewhere")

	store := newMemStore()
	return NewService(store, trip.NewGuard(trips)), store
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func int64Ptr(n int64) *int64 { return &n }

func equalRequest(amount string, users ...int64) *CreateExpenseRequest {
	participants := make([]SplitInput, len(users))
	for i, id := range users {
		participants[i] = SplitInput{UserID: id}
	}
	return &CreateExpenseRequest{
		Title:        "Dinner",
		Amount:       dec(amount),
		ExpenseDate:  "2024-06-01",
		SplitType:    split.TypeEqual,
		Participants: participants,
	}
}

func TestCreateEqualSplit(t *testing.T) {
	svc, store := newTestService(t)

	got, err := svc.Create(context.Background(), 1, 2, equalRequest("100.00", 1, 2, 3))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if got.Expense.PayerID != 2 {
		t.Errorf("payer = %d, want caller 2", got.Expense.PayerID)
	}
	if len(got.Splits) != 3 {
		t.Fatalf("splits = %d, want 3", len(got.Splits))
	}
	for _, s := range got.Splits {
		if !s.Amount.Equal(dec("33.33")) {
			t.Errorf("split for %d = %s, want 33.33", s.UserID, s.Amount)
		}
		if s.SplitType != split.TypeEqual {
			t.Errorf("split type = %s", s.SplitType)
		}
	}
	if store.writes != 1 {
		t.Errorf("writes = %d, want 1", store.writes)
	}
}

func TestCreateComputedSplits(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name         string
		amount       string
		splitType    split.Type
		participants []SplitInput
		want         []string
	}{
		{
			name:      "percentage",
			amount:    "200.00",
			splitType: split.TypePercentage,
			participants: []SplitInput{
				{UserID: 1, Percentage: decPtr("50")},
				{UserID: 2, Percentage: decPtr("30")},
				{UserID: 3, Percentage: decPtr("20")},
			},
			want: []string{"100", "60", "40"},
		},
		{
			name:      "shares",
			amount:    "80.00",
			splitType: split.TypeShares,
			participants: []SplitInput{
				{UserID: 1, Shares: int64Ptr(1)},
				{UserID: 2, Shares: int64Ptr(1)},
				{UserID: 3, Shares: int64Ptr(2)},
			},
			want: []string{"20", "20", "40"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &CreateExpenseRequest{
				Title:        tt.name,
				Amount:       dec(tt.amount),
				ExpenseDate:  "2024-06-02",
				SplitType:    tt.splitType,
				Participants: tt.participants,
			}
			got, err := svc.Create(context.Background(), 1, 1, req)
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			for i, s := range got.Splits {
				if !s.Amount.Equal(dec(tt.want[i])) {
					t.Errorf("split[%d] = %s, want %s", i, s.Amount, tt.want[i])
				}
			}
		})
	}
}

func TestCreateRejectsBeforeWriting(t *testing.T) {
	tests := []struct {
		name     string
		callerID int64
		mutate   func(*CreateExpenseRequest)
		wantErr  error
		wantKind apperror.Kind
	}{
		{
			name:     "caller not a member",
			callerID: 4,
			wantErr:  trip.ErrNotTripMember,
			wantKind: apperror.KindAuthorization,
		},
		{
			name:     "payer not a member",
			callerID: 1,
			mutate:   func(r *CreateExpenseRequest) { r.PayerID = 4 },
			wantErr:  ErrPayerNotMember,
			wantKind: apperror.KindValidation,
		},
		{
			name:     "participant not a member",
			callerID: 1,
			mutate:   func(r *CreateExpenseRequest) { r.Participants = append(r.Participants, SplitInput{UserID: 4}) },
			wantErr:  ErrParticipantNotMember,
			wantKind: apperror.KindValidation,
		},
		{
			name:     "zero amount",
			callerID: 1,
			mutate:   func(r *CreateExpenseRequest) { r.Amount = decimal.Zero },
			wantErr:  ErrInvalidAmount,
			wantKind: apperror.KindValidation,
		},
		{
			name:     "sub-cent amount",
			callerID: 1,
			mutate:   func(r *CreateExpenseRequest) { r.Amount = dec("10.005") },
			wantErr:  ErrInvalidAmount,
			wantKind: apperror.KindValidation,
		},
		{
			name:     "bad date",
			callerID: 1,
			mutate:   func(r *CreateExpenseRequest) { r.ExpenseDate = "01/06/2024" },
			wantErr:  ErrInvalidDate,
			wantKind: apperror.KindValidation,
		},
		{
			name:     "duplicate participant",
			callerID: 1,
			mutate:   func(r *CreateExpenseRequest) { r.Participants = append(r.Participants, SplitInput{UserID: 2}) },
			wantErr:  ErrDuplicateParticipant,
			wantKind: apperror.KindValidation,
		},
		{
			name:     "no participants",
			callerID: 1,
			mutate:   func(r *CreateExpenseRequest) { r.Participants = nil },
			wantErr:  split.ErrEmptySplit,
			wantKind: apperror.KindValidation,
		},
		{
			name:     "splits and participants",
			callerID: 1,
			mutate: func(r *CreateExpenseRequest) {
				r.Splits = []SplitInput{{UserID: 1, Amount: decPtr("90.00")}}
			},
			wantErr:  split.ErrInvalidStrategyInput,
			wantKind: apperror.KindValidation,
		},
		{
			name:     "unknown strategy",
			callerID: 1,
			mutate:   func(r *CreateExpenseRequest) { r.SplitType = "weighted" },
			wantErr:  split.ErrInvalidStrategyInput,
			wantKind: apperror.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(t)
			req := equalRequest("90.00", 1, 2, 3)
			if tt.mutate != nil {
				tt.mutate(req)
			}

			_, err := svc.Create(context.Background(), 1, tt.callerID, req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
			if got := apperror.KindOf(err); got != tt.wantKind {
				t.Errorf("kind = %s, want %s", got, tt.wantKind)
			}
			if store.writes != 0 {
				t.Errorf("writes = %d, want none", store.writes)
			}
		})
	}
}

func TestCreatePrecomputedSplitsValidated(t *testing.T) {
	t.Run("percentage sum reported", func(t *testing.T) {
		svc, store := newTestService(t)
		req := &CreateExpenseRequest{
			Title:       "Hotel",
			Amount:      dec("200.00"),
			ExpenseDate: "2024-06-03",
			SplitType:   split.TypePercentage,
			Splits: []SplitInput{
				{UserID: 1, Amount: decPtr("100.00"), Percentage: decPtr("50")},
				{UserID: 2, Amount: decPtr("60.00"), Percentage: decPtr("30")},
				{UserID: 3, Amount: decPtr("20.00"), Percentage: decPtr("10")},
			},
		}

		_, err := svc.Create(context.Background(), 1, 1, req)
		var mismatch *split.PercentageMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("Create() error = %v, want PercentageMismatchError", err)
		}
		if !mismatch.Sum.Equal(dec("90")) {
			t.Errorf("sum = %s, want 90", mismatch.Sum)
		}
		if store.writes != 0 {
			t.Errorf("writes = %d, want none", store.writes)
		}
	})

	t.Run("custom amount mismatch", func(t *testing.T) {
		svc, _ := newTestService(t)
		req := &CreateExpenseRequest{
			Title:       "Tickets",
			Amount:      dec("100.00"),
			ExpenseDate: "2024-06-03",
			SplitType:   split.TypeCustom,
			Splits: []SplitInput{
				{UserID: 1, Amount: decPtr("50.00")},
				{UserID: 2, Amount: decPtr("49.00")},
			},
		}

		_, err := svc.Create(context.Background(), 1, 1, req)
		var mismatch *split.AmountMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("Create() error = %v, want AmountMismatchError", err)
		}
		if !mismatch.Sum.Equal(dec("99")) || !mismatch.Total.Equal(dec("100")) {
			t.Errorf("mismatch = %s of %s", mismatch.Sum, mismatch.Total)
		}
	})

	t.Run("missing amount", func(t *testing.T) {
		svc, _ := newTestService(t)
		req := &CreateExpenseRequest{
			Title:       "Taxi",
			Amount:      dec("30.00"),
			ExpenseDate: "2024-06-03",
			SplitType:   split.TypeEqual,
			Splits:      []SplitInput{{UserID: 1}},
		}

		_, err := svc.Create(context.Background(), 1, 1, req)
		if !errors.Is(err, split.ErrInvalidStrategyInput) {
			t.Fatalf("Create() error = %v, want INVALID_STRATEGY_INPUT", err)
		}
	})

	t.Run("custom keeps only amounts", func(t *testing.T) {
		svc, _ := newTestService(t)
		req := &CreateExpenseRequest{
			Title:       "Museum",
			Amount:      dec("100.00"),
			ExpenseDate: "2024-06-03",
			SplitType:   split.TypeCustom,
			Splits: []SplitInput{
				{UserID: 1, Amount: decPtr("70.00"), Shares: int64Ptr(3)},
				{UserID: 2, Amount: decPtr("30.00")},
			},
		}

		got, err := svc.Create(context.Background(), 1, 1, req)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if got.Splits[0].Shares != nil || got.Splits[0].Percentage != nil {
			t.Error("custom split should not carry shares or percentage")
		}
	})
}

func TestUpdateAuthorization(t *testing.T) {
	tests := []struct {
		name     string
		callerID int64
		wantErr  error
	}{
		{"payer", 2, nil},
		{"admin", 1, nil},
		{"other member", 3, ErrForbidden},
		{"non-member", 4, trip.ErrNotTripMember},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(t)
			created, err := svc.Create(context.Background(), 1, 2, equalRequest("60.00", 2, 3))
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			req := equalRequest("90.00", 1, 2, 3)
			req.PayerID = 2
			_, err = svc.Update(context.Background(), 1, created.Expense.ID, tt.callerID, req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Update() error = %v, want %v", err, tt.wantErr)
				}
				if apperror.KindOf(err) != apperror.KindAuthorization {
					t.Errorf("kind = %s, want authorization", apperror.KindOf(err))
				}
				if store.writes != 1 {
					t.Errorf("writes = %d, want only the create", store.writes)
				}
				return
			}
			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}

			got, err := svc.Get(context.Background(), 1, created.Expense.ID, 3)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if !got.Expense.Amount.Equal(dec("90")) || len(got.Splits) != 3 {
				t.Errorf("after update amount = %s splits = %d", got.Expense.Amount, len(got.Splits))
			}
		})
	}
}

func TestUpdateExpenseOfAnotherTrip(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(context.Background(), 2, 4, equalRequest("10.00", 4))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = svc.Update(context.Background(), 1, created.Expense.ID, 1, equalRequest("20.00", 1))
	if !errors.Is(err, ErrExpenseNotFound) {
		t.Fatalf("Update() error = %v, want ErrExpenseNotFound", err)
	}
	if err := svc.Delete(context.Background(), 1, created.Expense.ID, 1); !errors.Is(err, ErrExpenseNotFound) {
		t.Fatalf("Delete() error = %v, want ErrExpenseNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, 1, 2, equalRequest("60.00", 2, 3))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	id := created.Expense.ID

	if err := svc.Delete(ctx, 1, id, 3); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Delete() by other member error = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, 1, id, 2); err != nil {
		t.Fatalf("Delete() by payer error = %v", err)
	}
	if _, err := svc.Get(ctx, 1, id, 2); !errors.Is(err, ErrExpenseNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrExpenseNotFound", err)
	}
}

func TestListFiltersAndOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	food := "food"

	for _, c := range []struct {
		date     string
		payer    int64
		category *string
	}{
		{"2024-06-01", 1, &food},
		{"2024-06-03", 2, nil},
		{"2024-06-02", 2, &food},
	} {
		req := equalRequest("30.00", 1, 2, 3)
		req.ExpenseDate = c.date
		req.PayerID = c.payer
		req.Category = c.category
		if _, err := svc.Create(ctx, 1, 1, req); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	all, err := svc.List(ctx, 1, 3, ListFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var dates []string
	for _, e := range all {
		dates = append(dates, e.ExpenseDate.Format(dateLayout))
	}
	want := []string{"2024-06-03", "2024-06-02", "2024-06-01"}
	for i := range want {
		if i >= len(dates) || dates[i] != want[i] {
			t.Fatalf("order = %v, want %v", dates, want)
		}
	}

	payer := int64(2)
	from := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	got, err := svc.List(ctx, 1, 3, ListFilter{Category: &food, PayerID: &payer, From: &from, To: &from})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 || got[0].ExpenseDate.Format(dateLayout) != "2024-06-02" {
		t.Errorf("filtered list = %d expenses", len(got))
	}

	if _, err := svc.List(ctx, 1, 4, ListFilter{}); !errors.Is(err, trip.ErrNotTripMember) {
		t.Errorf("List() by non-member error = %v, want ErrNotTripMember", err)
	}
}

func TestCreatePrecomputedAmountsReconcileWithTotal(t *testing.T) {
	tests := []struct {
		name      string
		splitType split.Type
		splits    []SplitInput
		want      []string
		wantErr   error
	}{
		{
			name:      "percentage amounts follow percentages",
			splitType: split.TypePercentage,
			splits: []SplitInput{
				{UserID: 1, Amount: decPtr("1.00"), Percentage: decPtr("50")},
				{UserID: 2, Amount: decPtr("1.00"), Percentage: decPtr("50")},
			},
			want: []string{"50", "50"},
		},
		{
			name:      "share amounts follow share counts",
			splitType: split.TypeShares,
			splits: []SplitInput{
				{UserID: 1, Amount: decPtr("5.00"), Shares: int64Ptr(1)},
				{UserID: 2, Amount: decPtr("5.00"), Shares: int64Ptr(3)},
			},
			want: []string{"25", "75"},
		},
		{
			name:      "equal amounts far from total",
			splitType: split.TypeEqual,
			splits: []SplitInput{
				{UserID: 1, Amount: decPtr("1.00")},
				{UserID: 2, Amount: decPtr("1.00")},
			},
			wantErr: split.ErrAmountMismatch,
		},
		{
			name:      "equal amounts with redistributed cent",
			splitType: split.TypeEqual,
			splits: []SplitInput{
				{UserID: 1, Amount: decPtr("33.34")},
				{UserID: 2, Amount: decPtr("33.33")},
				{UserID: 3, Amount: decPtr("33.33")},
			},
			want: []string{"33.34", "33.33", "33.33"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(t)
			req := &CreateExpenseRequest{
				Title:       tt.name,
				Amount:      dec("100.00"),
				ExpenseDate: "2024-06-04",
				SplitType:   tt.splitType,
				Splits:      tt.splits,
			}

			got, err := svc.Create(context.Background(), 1, 1, req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
				}
				if store.writes != 0 {
					t.Errorf("writes = %d, want none", store.writes)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			sum := decimal.Zero
			for i, s := range got.Splits {
				if !s.Amount.Equal(dec(tt.want[i])) {
					t.Errorf("split[%d] = %s, want %s", i, s.Amount, tt.want[i])
				}
				sum = sum.Add(s.Amount)
			}
			if !sum.Equal(dec("100")) {
				t.Errorf("splits sum to %s, want 100", sum)
			}
		})
	}
}

func TestUpdateKeepsPayerWhenOmitted(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, 2, equalRequest("60.00", 2, 3))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	req := equalRequest("60.00", 2, 3)
	req.Title = "Dinner at the harbour"
	updated, err := svc.Update(ctx, 1, created.Expense.ID, 1, req)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Expense.PayerID != 2 {
		t.Errorf("payer after admin edit = %d, want 2", updated.Expense.PayerID)
	}

	req.PayerID = 3
	updated, err = svc.Update(ctx, 1, created.Expense.ID, 1, req)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Expense.PayerID != 3 {
		t.Errorf("payer after explicit change = %d, want 3", updated.Expense.PayerID)
	}
}
