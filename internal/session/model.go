package session

import "time"

// Session lifecycle states. A session stays conflicting for scheduling
// purposes while it is available or booked; cancelled sessions free their
// time window.
const (
	StatusAvailable = "available"
	StatusBooked    = "booked"
	StatusCancelled = "cancelled"
)

// Visibility controls discoverability only, never scheduling.
const (
	VisibilityPublic      = "public"
	VisibilitySubscribers = "subscribers_only"
	VisibilityWhitelist   = "whitelist"
)

// Recurrence intervals accepted by CreateSessions.
const (
	IntervalNone   = "none"
	IntervalDaily  = "daily"
	IntervalWeekly = "weekly"
)

// MaxOccurrences is the hard ceiling on a recurring batch.
const MaxOccurrences = 52

type Session struct {
	ID          int       `db:"id" json:"id"`
	CoachID     int       `db:"coach_id" json:"coach_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	MaxStudents int       `db:"max_students" json:"max_students"`
	Price       float64   `db:"price" json:"price"`
	Status      string    `db:"status" json:"status"`
	Visibility  string    `db:"visibility" json:"visibility"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type SessionWithAvailability struct {
	Session
	HeldCount int  `db:"held_count" json:"held_count"`
	SpotsLeft int  `db:"spots_left" json:"spots_left"`
	IsFull    bool `json:"is_full"`
}

type CreateSessionsRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	StartTime   string  `json:"start_time" binding:"required"`
	EndTime     string  `json:"end_time" binding:"required"`
	MaxStudents int     `json:"max_students" binding:"omitempty,min=1"`
	Price       float64 `json:"price" binding:"omitempty,gte=0"`
	Visibility  string  `json:"visibility" binding:"omitempty,oneof=public subscribers_only whitelist"`
	Interval    string  `json:"interval" binding:"omitempty,oneof=none daily weekly"`
	Occurrences int     `json:"occurrences" binding:"omitempty,min=1"`
}

// Conflict describes one occurrence dropped from a recurring batch because
// its window overlaps an existing committed session.
type Conflict struct {
	Index     int       `json:"index"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type ScheduleResult struct {
	Created []Session  `json:"created"`
	Skipped []Conflict `json:"skipped"`
}

// Message summarises the batch outcome for API responses.
func (r *ScheduleResult) Message() string {
	switch {
	case len(r.Skipped) == 0:
		return "all sessions created"
	case len(r.Created) == 0:
		return "no sessions created: every occurrence conflicts with an existing session"
	default:
		return "some sessions created, conflicting occurrences skipped"
	}
}
