package booking

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrNoTransition is returned by UpdateStatusIf when the booking does not
// exist or is no longer in the expected state.
var ErrNoTransition = errors.New("booking not found or not in expected state")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateBooking(ctx context.Context, sessionID, studentID int) (*Booking, error) {
	query := `
		INSERT INTO bookings (session_id, student_id, status)
		VALUES ($1, $2, 'pending')
		RETURNING id, session_id, student_id, status, created_at
	`

	var booking Booking
	err := r.db.GetContext(ctx, &booking, query, sessionID, studentID)
	if err != nil {
		return nil, err
	}

	return &booking, nil
}

func (r *repository) GetBookingByID(ctx context.Context, id int) (*Booking, error) {
	query := `
		SELECT id, session_id, student_id, status, created_at
		FROM bookings
		WHERE id = $1
	`

	var booking Booking
	err := r.db.GetContext(ctx, &booking, query, id)
	if err != nil {
		return nil, err
	}

	return &booking, nil
}

func (r *repository) GetBookingWithSession(ctx context.Context, id int) (*BookingWithSession, error) {
	query := `
		SELECT
			b.id,
			b.session_id,
			b.student_id,
			b.status,
			b.created_at,
			s.coach_id,
			s.title AS session_title,
			s.start_time AS session_start,
			s.end_time AS session_end,
			s.max_students
		FROM bookings b
		JOIN sessions s ON b.session_id = s.id
		WHERE b.id = $1
	`

	var booking BookingWithSession
	err := r.db.GetContext(ctx, &booking, query, id)
	if err != nil {
		return nil, err
	}

	return &booking, nil
}

// UpdateStatusIf transitions the booking only when it is still in the `from`
// state, making check-then-transition atomic at the database.
func (r *repository) UpdateStatusIf(ctx context.Context, id int, from, to string) (*Booking, error) {
	query := `
		UPDATE bookings
		SET status = $3
		WHERE id = $1 AND status = $2
		RETURNING id, session_id, student_id, status, created_at
	`

	var booking Booking
	err := r.db.GetContext(ctx, &booking, query, id, from, to)
	if err != nil {
		return nil, ErrNoTransition
	}

	return &booking, nil
}

func (r *repository) CountHeldForSession(ctx context.Context, sessionID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE session_id = $1 AND status IN ('pending', 'confirmed')
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, sessionID)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *repository) CountConfirmedForSession(ctx context.Context, sessionID int) (int, error) {
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

func (r *repository) StudentHasActiveBooking(ctx context.Context, sessionID, studentID int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE session_id = $1 AND student_id = $2 AND status IN ('pending', 'confirmed')
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, sessionID, studentID)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *repository) GetStudentBookings(ctx context.Context, studentID int) ([]BookingWithSession, error) {
	query := `
		SELECT
			b.id,
			b.session_id,
			b.student_id,
			b.status,
			b.created_at,
			s.coach_id,
			s.title AS session_title,
			s.start_time AS session_start,
			s.end_time AS session_end,
			s.max_students
		FROM bookings b
		JOIN sessions s ON b.session_id = s.id
		WHERE b.student_id = $1
		ORDER BY b.created_at DESC
	`

	var bookings []BookingWithSession
	err := r.db.SelectContext(ctx, &bookings, query, studentID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) GetBookingsBySession(ctx context.Context, sessionID int) ([]BookingWithStudent, error) {
	query := `
		SELECT
			b.id,
			b.session_id,
			b.student_id,
			b.status,
			b.created_at,
			u.name AS student_name,
			u.email AS student_email
		FROM bookings b
		JOIN users u ON b.student_id = u.id
		WHERE b.session_id = $1
		ORDER BY b.created_at ASC
	`

	var bookings []BookingWithStudent
	err := r.db.SelectContext(ctx, &bookings, query, sessionID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}
