package session

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrSessionRowNotFound = errors.New("session row not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSession(ctx context.Context, s *Session) (*Session, error) {
	query := `
		INSERT INTO sessions (coach_id, title, description, start_time, end_time, max_students, price, status, visibility)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'available', $8)
		RETURNING id, coach_id, title, description, start_time, end_time, max_students, price, status, visibility, created_at
	`

	var created Session
	err := r.db.GetContext(ctx, &created, query,
		s.CoachID, s.Title, s.Description, s.StartTime, s.EndTime, s.MaxStudents, s.Price, s.Visibility)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetSessionByID(ctx context.Context, id int) (*Session, error) {
	query := `
		SELECT id, coach_id, title, description, start_time, end_time, max_students, price, status, visibility, created_at
		FROM sessions
		WHERE id = $1
	`

	var s Session
	err := r.db.GetContext(ctx, &s, query, id)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// HasOverlap reports whether the coach already has a committed session whose
// half-open window [start_time, end_time) intersects [start, end). Touching
// endpoints do not count; cancelled sessions never conflict.
func (r *repository) HasOverlap(ctx context.Context, coachID int, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM sessions
			WHERE coach_id = $1
			  AND status IN ('available', 'booked')
			  AND start_time < $3
			  AND end_time > $2
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, coachID, start, end)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *repository) GetSessionsByCoach(ctx context.Context, coachID int) ([]Session, error) {
	query := `
		SELECT id, coach_id, title, description, start_time, end_time, max_students, price, status, visibility, created_at
		FROM sessions
		WHERE coach_id = $1
		ORDER BY start_time ASC
	`

	var sessions []Session
	err := r.db.SelectContext(ctx, &sessions, query, coachID)
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *repository) GetPublicSessionsWithAvailability(ctx context.Context, onlyFuture bool) ([]SessionWithAvailability, error) {
	query := `
		SELECT
			s.id,
			s.coach_id,
			s.title,
			s.description,
			s.start_time,
			s.end_time,
			s.max_students,
			s.price,
			s.status,
			s.visibility,
			s.created_at,
			COUNT(b.id) FILTER (WHERE b.status IN ('pending', 'confirmed')) AS held_count,
			s.max_students - COUNT(b.id) FILTER (WHERE b.status IN ('pending', 'confirmed')) AS spots_left
		FROM sessions s
		LEFT JOIN bookings b ON b.session_id = s.id
		WHERE s.status = 'available' AND s.visibility = 'public'
	`

	if onlyFuture {
		query += ` AND s.start_time > NOW()`
	}

	query += `
		GROUP BY s.id
		ORDER BY s.start_time ASC
	`

	var sessions []SessionWithAvailability
	err := r.db.SelectContext(ctx, &sessions, query)
	if err != nil {
		return nil, err
	}

	for i := range sessions {
		sessions[i].IsFull = sessions[i].SpotsLeft <= 0
	}

	return sessions, nil
}

func (r *repository) UpdateSessionStatus(ctx context.Context, sessionID int, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET status = $2 WHERE id = $1`,
		sessionID, status)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrSessionRowNotFound
	}

	return nil
}

func (r *repository) CountConfirmedBookings(ctx context.Context, sessionID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE session_id = $1 AND status = 'confirmed'
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, sessionID)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// DeleteSessionCascade removes the session together with its non-confirmed
// bookings in one transaction. Callers must verify the zero-confirmed
// precondition first.
func (r *repository) DeleteSessionCascade(ctx context.Context, sessionID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM bookings WHERE session_id = $1 AND status IN ('pending', 'cancelled')`,
		sessionID); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrSessionRowNotFound
	}

	return tx.Commit()
}
