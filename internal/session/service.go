package session

import (
	"context"
	"errors"
	"time"

	"github.com/yihhan/coaching-calendar-app-sub000/internal/metrics"
)

var (
	ErrInvalidTimeWindow   = errors.New("end time must be after start time")
	ErrInvalidTimeFormat   = errors.New("start and end time must be valid RFC3339 timestamps")
	ErrTitleRequired       = errors.New("title is required")
	ErrInvalidCapacity     = errors.New("max students must be at least 1")
	ErrInvalidPrice        = errors.New("price must not be negative")
	ErrInvalidInterval     = errors.New("interval must be none, daily or weekly")
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionHasConfirmed = errors.New("session has confirmed bookings and cannot be deleted")
)

type Service interface {
	CreateSessions(ctx context.Context, coachID int, req CreateSessionsRequest) (*ScheduleResult, error)
	GetSessionByID(ctx context.Context, id int) (*Session, error)
	GetCoachSessions(ctx context.Context, coachID int) ([]Session, error)
	DiscoverSessions(ctx context.Context, onlyFuture bool) ([]SessionWithAvailability, error)
	DeleteSession(ctx context.Context, sessionID, coachID int) error
}

type service struct {
	repo  Repository
	locks *coachLocks
}

func NewService(repo Repository) Service {
	return &service{
		repo:  repo,
		locks: newCoachLocks(),
	}
}

// CreateSessions generates the recurring occurrences one at a time, strictly
// in order. Each occurrence is overlap-checked and committed before the next
// is considered, so later occurrences also see their earlier siblings.
// Conflicting occurrences are skipped, never fatal to the batch.
func (s *service) CreateSessions(ctx context.Context, coachID int, req CreateSessionsRequest) (*ScheduleResult, error) {
	template, interval, occurrences, err := validateRequest(req)
	if err != nil {
		return nil, err
	}
	template.CoachID = coachID

	lock := s.locks.forCoach(coachID)
	lock.Lock()
	defer lock.Unlock()

	result := &ScheduleResult{
		Created: []Session{},
		Skipped: []Conflict{},
	}

	duration := template.EndTime.Sub(template.StartTime)
	for i := 0; i < occurrences; i++ {
		start := template.StartTime.Add(occurrenceOffset(interval, i))
		end := start.Add(duration)

		overlaps, err := s.repo.HasOverlap(ctx, coachID, start, end)
		if err != nil {
			return nil, err
		}

		if overlaps {
			result.Skipped = append(result.Skipped, Conflict{Index: i, StartTime: start, EndTime: end})
			metrics.RecordSessionSkipped()
			continue
		}

		candidate := template
		candidate.StartTime = start
		candidate.EndTime = end

		created, err := s.repo.CreateSession(ctx, &candidate)
		if err != nil {
			return nil, err
		}

		result.Created = append(result.Created, *created)
		metrics.RecordSessionCreated(interval)
	}

	return result, nil
}

func validateRequest(req CreateSessionsRequest) (Session, string, int, error) {
	if req.Title == "" {
		return Session{}, "", 0, ErrTitleRequired
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return Session{}, "", 0, ErrInvalidTimeFormat
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return Session{}, "", 0, ErrInvalidTimeFormat
	}
	if !end.After(start) {
		return Session{}, "", 0, ErrInvalidTimeWindow
	}

	maxStudents := req.MaxStudents
	if maxStudents == 0 {
		maxStudents = 1
	}
	if maxStudents < 1 {
		return Session{}, "", 0, ErrInvalidCapacity
	}

	if req.Price < 0 {
		return Session{}, "", 0, ErrInvalidPrice
	}

	interval := req.Interval
	if interval == "" {
		interval = IntervalNone
	}
	switch interval {
	case IntervalNone, IntervalDaily, IntervalWeekly:
	default:
		return Session{}, "", 0, ErrInvalidInterval
	}

	occurrences := req.Occurrences
	if occurrences < 1 {
		occurrences = 1
	}
	if occurrences > MaxOccurrences {
		occurrences = MaxOccurrences
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = VisibilityPublic
	}

	template := Session{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   start,
		EndTime:     end,
		MaxStudents: maxStudents,
		Price:       req.Price,
		Visibility:  visibility,
	}

	return template, interval, occurrences, nil
}

func occurrenceOffset(interval string, index int) time.Duration {
	switch interval {
	case IntervalDaily:
		return time.Duration(index) * 24 * time.Hour
	case IntervalWeekly:
		return time.Duration(index) * 7 * 24 * time.Hour
	default:
		return 0
	}
}

func (s *service) GetSessionByID(ctx context.Context, id int) (*Session, error) {
	sess, err := s.repo.GetSessionByID(ctx, id)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *service) GetCoachSessions(ctx context.Context, coachID int) ([]Session, error) {
	return s.repo.GetSessionsByCoach(ctx, coachID)
}

func (s *service) DiscoverSessions(ctx context.Context, onlyFuture bool) ([]SessionWithAvailability, error) {
	return s.repo.GetPublicSessionsWithAvailability(ctx, onlyFuture)
}

// DeleteSession removes a coach-owned session with no confirmed bookings.
// Non-owners get a not-found, not a forbidden, so one coach cannot probe
// another coach's session IDs.
func (s *service) DeleteSession(ctx context.Context, sessionID, coachID int) error {
	sess, err := s.repo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return ErrSessionNotFound
	}

	if sess.CoachID != coachID {
		return ErrSessionNotFound
	}

	confirmed, err := s.repo.CountConfirmedBookings(ctx, sessionID)
	if err != nil {
		return err
	}
	if confirmed > 0 {
		return ErrSessionHasConfirmed
	}

	if err := s.repo.DeleteSessionCascade(ctx, sessionID); err != nil {
		if errors.Is(err, ErrSessionRowNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	return nil
}
