package expense

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/fkhayef/tripsplit/internal/expense/split"
)

var expenseCols = []string{
	"id", "trip_id", "title", "amount", "category", "payer_id", "expense_date",
	"receipt_url", "notes", "created_at", "updated_at",
}

func sampleSplits() []*Split {
	return []*Split{
		{UserID: 1, Amount: dec("60.00"), SplitType: split.TypeCustom},
		{UserID: 2, Amount: dec("60.00"), SplitType: split.TypeCustom},
	}
}

func TestRepositoryCreateCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO expenses").
		WillReturnRows(sqlmock.NewRows(expenseCols).
			AddRow(7, 1, "Dinner", "120.00", nil, 1, now, nil, nil, now, now))
	mock.ExpectQuery("INSERT INTO expense_splits").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(11, now))
	mock.ExpectQuery("INSERT INTO expense_splits").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(12, now))
	mock.ExpectCommit()

	repo := NewRepository(db)
	e := &Expense{TripID: 1, Title: "Dinner", Amount: dec("120.00"), PayerID: 1, ExpenseDate: now}
	got, err := repo.Create(context.Background(), e, sampleSplits())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if got.Expense.ID != 7 || !got.Expense.Amount.Equal(dec("120")) {
		t.Errorf("expense = %+v", got.Expense)
	}
	if len(got.Splits) != 2 || got.Splits[1].ID != 12 || got.Splits[1].ExpenseID != 7 {
		t.Errorf("splits = %+v", got.Splits)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRepositoryUpdateRollsBackOnSplitFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE expenses").
		WillReturnRows(sqlmock.NewRows(expenseCols).
			AddRow(7, 1, "Dinner", "120.00", nil, 1, now, nil, nil, now, now))
	mock.ExpectExec("DELETE FROM expense_splits").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery("INSERT INTO expense_splits").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(11, now))
	mock.ExpectQuery("INSERT INTO expense_splits").
		WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	repo := NewRepository(db)
	e := &Expense{ID: 7, TripID: 1, Title: "Dinner", Amount: dec("120.00"), PayerID: 1, ExpenseDate: now}
	got, err := repo.Update(context.Background(), e, sampleSplits())
	if err == nil {
		t.Fatal("Update() should fail when a split insert fails")
	}
	if got != nil {
		t.Errorf("Update() returned %+v on failure", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expected rollback without commit: %v", err)
	}
}

func TestRepositoryUpdateMissingExpense(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE expenses").WillReturnRows(sqlmock.NewRows(expenseCols))
	mock.ExpectRollback()

	repo := NewRepository(db)
	got, err := repo.Update(context.Background(), &Expense{ID: 99, TripID: 1}, nil)
	if err != nil || got != nil {
		t.Fatalf("Update() = %v, %v; want nil, nil", got, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRepositoryListAppliesFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	filter, err := ParseListFilter(url.Values{"category": {"food"}, "end_date": {"2024-06-30"}})
	if err != nil {
		t.Fatalf("ParseListFilter() error = %v", err)
	}
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	now := time.Now()
	mock.ExpectQuery(`e\.trip_id = \$1 AND e\.category = \$2 AND e\.expense_date <= \$3`).
		WithArgs(1, "food", end).
		WillReturnRows(sqlmock.NewRows(append(expenseCols, "name")).
			AddRow(3, 1, "Lunch", "45.50", "food", 2, end, nil, nil, now, now, "Bea"))

	got, err := NewRepository(db).List(context.Background(), 1, filter)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 || got[0].PayerName != "Bea" || *got[0].Category != "food" {
		t.Errorf("List() = %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestParseListFilter(t *testing.T) {
	tests := []struct {
		name    string
		query   url.Values
		wantErr bool
		preds   int
	}{
		{"empty", url.Values{}, false, 0},
		{"all", url.Values{
			"category":   {"transport"},
			"payer_id":   {"4"},
			"start_date": {"2024-01-01"},
			"end_date":   {"2024-01-31"},
		}, false, 4},
		{"bad payer", url.Values{"payer_id": {"abc"}}, true, 0},
		{"negative payer", url.Values{"payer_id": {"-1"}}, true, 0},
		{"bad date", url.Values{"start_date": {"Jan 1"}}, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseListFilter(tt.query)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFilter) {
					t.Fatalf("ParseListFilter() error = %v, want ErrInvalidFilter", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseListFilter() error = %v", err)
			}
			if got := len(f.predicates()); got != tt.preds {
				t.Errorf("predicates = %d, want %d", got, tt.preds)
			}
		})
	}
}
