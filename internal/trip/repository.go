package trip

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fkhayef/tripsplit/internal/database"
	"github.com/fkhayef/tripsplit/internal/user"
)

// Repository handles trip and membership persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new trip repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithAdmin inserts a trip and its creator as admin in one transaction
func (r *Repository) CreateWithAdmin(ctx context.Context, t *Trip) (*Trip, error) {
	query := `
		INSERT INTO trips (name, description, start_date, end_date, currency, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, description, start_date, end_date, currency, created_by, created_at
	`

	created := &Trip{}
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, query,
			t.Name, t.Description, t.StartDate, t.EndDate, t.Currency, t.CreatedBy,
		).Scan(
			&created.ID,
			&created.Name,
			&created.Description,
			&created.StartDate,
			&created.EndDate,
			&created.Currency,
			&created.CreatedBy,
			&created.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create trip: %w", err)
		}

		if _, err := insertMember(ctx, tx, created.ID, t.CreatedBy, RoleAdmin); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created.Role = RoleAdmin
	return created, nil
}

// GetByID retrieves a trip by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Trip, error) {
	query := `
		SELECT id, name, description, start_date, end_date, currency, created_by, created_at
		FROM trips
		WHERE id = $1
	`

	t := &Trip{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.StartDate,
		&t.EndDate,
		&t.Currency,
		&t.CreatedBy,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	return t, nil
}

// ListByUserID retrieves all trips a user belongs to, with the user's role
func (r *Repository) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*Trip, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM trip_members WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	query := `
		SELECT t.id, t.name, t.description, t.start_date, t.end_date, t.currency, t.created_by, t.created_at, tm.role
		FROM trips t
		JOIN trip_members tm ON t.id = tm.trip_id
		WHERE tm.user_id = $1
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var trips []*Trip
	for rows.Next() {
		t := &Trip{}
		if err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.Description,
			&t.StartDate,
			&t.EndDate,
			&t.Currency,
			&t.CreatedBy,
			&t.CreatedAt,
			&t.Role,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list trips: %w", err)
	}

	return trips, total, nil
}

// Update modifies an existing trip
func (r *Repository) Update(ctx context.Context, id int64, u *Update) (*Trip, error) {
	query := `
		UPDATE trips
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    start_date = COALESCE($4, start_date),
		    end_date = COALESCE($5, end_date),
		    currency = COALESCE($6, currency)
		WHERE id = $1
		RETURNING id, name, description, start_date, end_date, currency, created_by, created_at
	`

	t := &Trip{}
	err := r.db.QueryRowContext(ctx, query, id, u.Name, u.Description, u.StartDate, u.EndDate, u.Currency).Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.StartDate,
		&t.EndDate,
		&t.Currency,
		&t.CreatedBy,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update trip: %w", err)
	}

	return t, nil
}

// Delete removes a trip; members, expenses and splits cascade
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete trip: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// GetMember retrieves a single membership, or nil when the user is not a member
func (r *Repository) GetMember(ctx context.Context, tripID, userID int64) (*Member, error) {
	query := `
		SELECT tm.id, tm.trip_id, tm.user_id, tm.role, tm.joined_at, u.name, u.email
		FROM trip_members tm
		JOIN users u ON u.id = tm.user_id
		WHERE tm.trip_id = $1 AND tm.user_id = $2
	`

	m := &Member{}
	err := r.db.QueryRowContext(ctx, query, tripID, userID).Scan(
		&m.ID,
		&m.TripID,
		&m.UserID,
		&m.Role,
		&m.JoinedAt,
		&m.Name,
		&m.Email,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return m, nil
}

// ListMembers retrieves all members of a trip in join order
func (r *Repository) ListMembers(ctx context.Context, tripID int64) ([]*Member, error) {
	query := `
		SELECT tm.id, tm.trip_id, tm.user_id, tm.role, tm.joined_at, u.name, u.email
		FROM trip_members tm
		JOIN users u ON u.id = tm.user_id
		WHERE tm.trip_id = $1
		ORDER BY tm.joined_at ASC, tm.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		m := &Member{}
		if err := rows.Scan(
			&m.ID,
			&m.TripID,
			&m.UserID,
			&m.Role,
			&m.JoinedAt,
			&m.Name,
			&m.Email,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	return members, nil
}

// AddMember inserts a membership row. The (trip_id, user_id) unique constraint
// turns a concurrent duplicate into ErrAlreadyMember. A trip or user deleted in
// the meantime becomes ErrTripNotFound or user.ErrUserNotFound.
func (r *Repository) AddMember(ctx context.Context, tripID, userID int64, role Role) (*Member, error) {
	return insertMember(ctx, r.db, tripID, userID, role)
}

// Foreign key of trip_members.user_id, named in the initial migration
const memberUserFKey = "trip_members_user_id_fkey"

func insertMember(ctx context.Context, q database.DBTX, tripID, userID int64, role Role) (*Member, error) {
	query := `
		INSERT INTO trip_members (trip_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, trip_id, user_id, role, joined_at
	`

	m := &Member{}
	err := q.QueryRowContext(ctx, query, tripID, userID, role).Scan(
		&m.ID,
		&m.TripID,
		&m.UserID,
		&m.Role,
		&m.JoinedAt,
	)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return nil, ErrAlreadyMember
		case database.IsForeignKeyViolation(err):
			if database.ViolatedConstraint(err) == memberUserFKey {
				return nil, user.ErrUserNotFound
			}
			return nil, ErrTripNotFound
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return m, nil
}

// RemoveMember deletes a membership row
func (r *Repository) RemoveMember(ctx context.Context, tripID, userID int64) (bool, error) {
	query := `DELETE FROM trip_members WHERE trip_id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, tripID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to remove member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
