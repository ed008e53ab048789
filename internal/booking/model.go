package booking

import "time"

// Booking states. Transitions: pending -> confirmed (coach approval),
// pending -> cancelled (coach rejection or student cancel),
// confirmed -> cancelled (student cancel). No transition out of cancelled.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

type Booking struct {
	ID        int       `db:"id" json:"id"`
	SessionID int       `db:"session_id" json:"session_id"`
	StudentID int       `db:"student_id" json:"student_id"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// BookingWithSession carries the owning session's coach and window so
// ownership and state checks need a single read.
type BookingWithSession struct {
	Booking
	CoachID      int       `db:"coach_id" json:"coach_id"`
	SessionTitle string    `db:"session_title" json:"session_title"`
	SessionStart time.Time `db:"session_start" json:"session_start"`
	SessionEnd   time.Time `db:"session_end" json:"session_end"`
	MaxStudents  int       `db:"max_students" json:"max_students"`
}

// BookingWithStudent is the coach-facing roster row.
type BookingWithStudent struct {
	Booking
	StudentName  string `db:"student_name" json:"student_name"`
	StudentEmail string `db:"student_email" json:"student_email"`
}

type RequestBookingRequest struct {
	SessionID int `json:"session_id" binding:"required,min=1"`
}
