package expense

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/tripsplit/internal/database"
)

// errNoRow signals inside a transaction that the targeted expense does not exist
var errNoRow = errors.New("expense row not found")

// Repository handles expense and split persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const expenseColumns = `id, trip_id, title, amount, category, payer_id, expense_date, receipt_url, notes, created_at, updated_at`

// Create inserts an expense and all its splits in one transaction
func (r *Repository) Create(ctx context.Context, e *Expense, splits []*Split) (*ExpenseWithSplits, error) {
	query := `
		INSERT INTO expenses (trip_id, title, amount, category, payer_id, expense_date, receipt_url, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + expenseColumns

	var result *ExpenseWithSplits
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		created, err := scanExpense(tx.QueryRowContext(ctx, query,
			e.TripID, e.Title, e.Amount, e.Category, e.PayerID, e.ExpenseDate, e.ReceiptURL, e.Notes,
		))
		if err != nil {
			return fmt.Errorf("failed to create expense: %w", err)
		}

		inserted, err := insertSplits(ctx, tx, created.ID, splits)
		if err != nil {
			return err
		}

		result = &ExpenseWithSplits{Expense: created, Splits: inserted}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Update overwrites an expense and replaces its whole split set in one transaction.
// Returns nil if the expense does not exist in the trip.
func (r *Repository) Update(ctx context.Context, e *Expense, splits []*Split) (*ExpenseWithSplits, error) {
	query := `
		UPDATE expenses
		SET title = $1, amount = $2, category = $3, payer_id = $4, expense_date = $5,
			receipt_url = $6, notes = $7, updated_at = NOW()
		WHERE id = $8 AND trip_id = $9
		RETURNING ` + expenseColumns

	var result *ExpenseWithSplits
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		updated, err := scanExpense(tx.QueryRowContext(ctx, query,
			e.Title, e.Amount, e.Category, e.PayerID, e.ExpenseDate, e.ReceiptURL, e.Notes, e.ID, e.TripID,
		))
		if err == sql.ErrNoRows {
			return errNoRow
		}
		if err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM expense_splits WHERE expense_id = $1`, updated.ID); err != nil {
			return fmt.Errorf("failed to delete expense splits: %w", err)
		}

		inserted, err := insertSplits(ctx, tx, updated.ID, splits)
		if err != nil {
			return err
		}

		result = &ExpenseWithSplits{Expense: updated, Splits: inserted}
		return nil
	})
	if errors.Is(err, errNoRow) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Delete removes an expense from a trip; its splits cascade.
// Returns false if the expense does not exist in the trip.
func (r *Repository) Delete(ctx context.Context, tripID, expenseID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1 AND trip_id = $2`, expenseID, tripID)
	if err != nil {
		return false, fmt.Errorf("failed to delete expense: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// GetByID retrieves an expense of a trip with its payer's name.
// Returns nil if the expense does not exist in the trip.
func (r *Repository) GetByID(ctx context.Context, tripID, expenseID int64) (*Expense, error) {
	query := `
		SELECT e.id, e.trip_id, e.title, e.amount, e.category, e.payer_id, e.expense_date,
			e.receipt_url, e.notes, e.created_at, e.updated_at, u.name
		FROM expenses e
		JOIN users u ON u.id = e.payer_id
		WHERE e.id = $1 AND e.trip_id = $2
	`

	e, err := scanExpenseWithPayer(r.db.QueryRowContext(ctx, query, expenseID, tripID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return e, nil
}

// GetSplits retrieves the splits of an expense with participant names
func (r *Repository) GetSplits(ctx context.Context, expenseID int64) ([]*Split, error) {
	query := `
		SELECT es.id, es.expense_id, es.user_id, es.amount, es.split_type, es.percentage, es.shares,
			es.created_at, u.name
		FROM expense_splits es
		JOIN users u ON u.id = es.user_id
		WHERE es.expense_id = $1
		ORDER BY es.id
	`

	rows, err := r.db.QueryContext(ctx, query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense splits: %w", err)
	}
	defer rows.Close()

	var splits []*Split
	for rows.Next() {
		s := &Split{}
		var pct decimal.NullDecimal
		var shares sql.NullInt64
		if err := rows.Scan(
			&s.ID,
			&s.ExpenseID,
			&s.UserID,
			&s.Amount,
			&s.SplitType,
			&pct,
			&shares,
			&s.CreatedAt,
			&s.UserName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense split: %w", err)
		}
		setSplitMetadata(s, pct, shares)
		splits = append(splits, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense splits: %w", err)
	}

	return splits, nil
}

// List retrieves the expenses of a trip matching filter, newest first
func (r *Repository) List(ctx context.Context, tripID int64, filter ListFilter) ([]*Expense, error) {
	where, args := renderWhere(tripID, filter)
	query := `
		SELECT e.id, e.trip_id, e.title, e.amount, e.category, e.payer_id, e.expense_date,
			e.receipt_url, e.notes, e.created_at, e.updated_at, u.name
		FROM expenses e
		JOIN users u ON u.id = e.payer_id
		WHERE ` + where + `
		ORDER BY e.expense_date DESC, e.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		e, err := scanExpenseWithPayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	return expenses, nil
}

// renderWhere turns the filter's predicates into a WHERE clause with positional arguments
func renderWhere(tripID int64, filter ListFilter) (string, []any) {
	conds := []string{"e.trip_id = $1"}
	args := []any{tripID}
	for _, p := range filter.predicates() {
		args = append(args, p.value)
		conds = append(conds, fmt.Sprintf("%s %s $%d", p.column, p.op, len(args)))
	}
	return strings.Join(conds, " AND "), args
}

func insertSplits(ctx context.Context, tx database.DBTX, expenseID int64, splits []*Split) ([]*Split, error) {
	query := `
		INSERT INTO expense_splits (expense_id, user_id, amount, split_type, percentage, shares)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	inserted := make([]*Split, 0, len(splits))
	for _, s := range splits {
		row := *s
		row.ExpenseID = expenseID
		err := tx.QueryRowContext(ctx, query,
			expenseID, s.UserID, s.Amount, string(s.SplitType), s.Percentage, s.Shares,
		).Scan(&row.ID, &row.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to create expense split for user %d: %w", s.UserID, err)
		}
		inserted = append(inserted, &row)
	}
	return inserted, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (*Expense, error) {
	e := &Expense{}
	err := row.Scan(
		&e.ID,
		&e.TripID,
		&e.Title,
		&e.Amount,
		&e.Category,
		&e.PayerID,
		&e.ExpenseDate,
		&e.ReceiptURL,
		&e.Notes,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func scanExpenseWithPayer(row scanner) (*Expense, error) {
	e := &Expense{}
	err := row.Scan(
		&e.ID,
		&e.TripID,
		&e.Title,
		&e.Amount,
		&e.Category,
		&e.PayerID,
		&e.ExpenseDate,
		&e.ReceiptURL,
		&e.Notes,
		&e.CreatedAt,
		&e.UpdatedAt,
		&e.PayerName,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func setSplitMetadata(s *Split, pct decimal.NullDecimal, shares sql.NullInt64) {
	if pct.Valid {
		p := pct.Decimal
		s.Percentage = &p
	}
	if shares.Valid {
		n := shares.Int64
		s.Shares = &n
	}
}
