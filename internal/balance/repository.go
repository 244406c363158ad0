package balance

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository reads balance aggregates straight from expenses and splits
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new balance repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const paidSubquery = `
	COALESCE((
		SELECT SUM(e.amount) FROM expenses e
		WHERE e.trip_id = $1 AND e.payer_id = u.id
	), 0)`

const owedSubquery = `
	COALESCE((
		SELECT SUM(es.amount) FROM expense_splits es
		JOIN expenses e ON e.id = es.expense_id
		WHERE e.trip_id = $1 AND es.user_id = u.id
	), 0)`

// UserTotals sums what a user paid and owes within a trip.
// Returns nil if the user does not exist.
func (r *Repository) UserTotals(ctx context.Context, tripID, userID int64) (*Summary, error) {
	query := `
		SELECT u.id, u.name, u.email,` + paidSubquery + `,` + owedSubquery + `
		FROM users u
		WHERE u.id = $2
	`

	s := &Summary{}
	err := r.db.QueryRowContext(ctx, query, tripID, userID).Scan(
		&s.User.ID,
		&s.User.Name,
		&s.User.Email,
		&s.TotalPaid,
		&s.TotalOwed,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user balance: %w", err)
	}

	return s, nil
}

// MemberTotals sums what every current member paid and owes, in join order
func (r *Repository) MemberTotals(ctx context.Context, tripID int64) ([]*Summary, error) {
	query := `
		SELECT u.id, u.name, u.email,` + paidSubquery + `,` + owedSubquery + `
		FROM trip_members tm
		JOIN users u ON u.id = tm.user_id
		WHERE tm.trip_id = $1
		ORDER BY tm.joined_at, tm.id
	`

	rows, err := r.db.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to get trip balances: %w", err)
	}
	defer rows.Close()

	var summaries []*Summary
	for rows.Next() {
		s := &Summary{}
		if err := rows.Scan(
			&s.User.ID,
			&s.User.Name,
			&s.User.Email,
			&s.TotalPaid,
			&s.TotalOwed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balances: %w", err)
	}

	return summaries, nil
}
