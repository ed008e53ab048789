package booking

import (
	"context"
	"errors"

	"github.com/yihhan/coaching-calendar-app-sub000/internal/email"
	"github.com/yihhan/coaching-calendar-app-sub000/internal/metrics"
	"github.com/yihhan/coaching-calendar-app-sub000/internal/session"
	"github.com/yihhan/coaching-calendar-app-sub000/internal/user"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionUnavailable = errors.New("session is not open for booking")
	ErrAlreadyRequested   = errors.New("student already has an active booking for this session")
	ErrSessionFull        = errors.New("session is full")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrBookingNotPending  = errors.New("booking is not pending")
)

type Service interface {
	RequestBooking(ctx context.Context, sessionID, studentID int) (*Booking, error)
	ApproveBooking(ctx context.Context, bookingID, coachID int) (*Booking, error)
	RejectBooking(ctx context.Context, bookingID, coachID int) (*Booking, error)
	CancelBooking(ctx context.Context, bookingID, studentID int) (*Booking, error)
	GetStudentBookings(ctx context.Context, studentID int) ([]BookingWithSession, error)
	GetSessionRoster(ctx context.Context, sessionID, coachID int) ([]BookingWithStudent, error)
}

type service struct {
	bookingRepo  Repository
	sessionRepo  session.Repository
	userRepo     user.Repository
	emailService *email.Service
	locks        *sessionLocks
}

func NewService(
	bookingRepo Repository,
	sessionRepo session.Repository,
	userRepo user.Repository,
	emailService *email.Service,
) Service {
	return &service{
		bookingRepo:  bookingRepo,
		sessionRepo:  sessionRepo,
		userRepo:     userRepo,
		emailService: emailService,
		locks:        newSessionLocks(),
	}
}

// RequestBooking creates a pending booking when the session is open, the
// student has no active booking for it, and the held count (pending plus
// confirmed) leaves a seat. Pending requests reserve capacity provisionally
// so a session cannot be over-subscribed during the approval window.
func (s *service) RequestBooking(ctx context.Context, sessionID, studentID int) (*Booking, error) {
	sess, err := s.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	if sess.Status != session.StatusAvailable {
		return nil, ErrSessionUnavailable
	}

	lock := s.locks.forSession(sessionID)
	lock.Lock()
	defer lock.Unlock()

	hasActive, err := s.bookingRepo.StudentHasActiveBooking(ctx, sessionID, studentID)
	if err != nil {
		return nil, err
	}
	if hasActive {
		return nil, ErrAlreadyRequested
	}

	held, err := s.bookingRepo.CountHeldForSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if held >= sess.MaxStudents {
		return nil, ErrSessionFull
	}

	booking, err := s.bookingRepo.CreateBooking(ctx, sessionID, studentID)
	if err != nil {
		return nil, err
	}
	metrics.RecordBooking("requested")

	s.notifyCoach(ctx, sess, studentID)

	return booking, nil
}

// ApproveBooking confirms a pending booking owned by the acting coach. The
// capacity recheck uses confirmed bookings only: pending requests may
// outnumber remaining seats, so approval is first-committed-first-served.
// A failed approval leaves the booking pending.
func (s *service) ApproveBooking(ctx context.Context, bookingID, coachID int) (*Booking, error) {
	booking, err := s.bookingRepo.GetBookingWithSession(ctx, bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}

	// ownership folded into not-found so coaches cannot probe each other's bookings
	if booking.CoachID != coachID {
		return nil, ErrBookingNotFound
	}

	if booking.Status != StatusPending {
		return nil, ErrBookingNotPending
	}

	lock := s.locks.forSession(booking.SessionID)
	lock.Lock()
	defer lock.Unlock()

	confirmed, err := s.bookingRepo.CountConfirmedForSession(ctx, booking.SessionID)
	if err != nil {
		return nil, err
	}
	if confirmed >= booking.MaxStudents {
		return nil, ErrSessionFull
	}

	updated, err := s.bookingRepo.UpdateStatusIf(ctx, bookingID, StatusPending, StatusConfirmed)
	if err != nil {
		if errors.Is(err, ErrNoTransition) {
			return nil, ErrBookingNotPending
		}
		return nil, err
	}
	metrics.RecordBooking("approved")

	// session is fully confirmed now, flip the coarse lifecycle flag
	if confirmed+1 >= booking.MaxStudents {
		if err := s.sessionRepo.UpdateSessionStatus(ctx, booking.SessionID, session.StatusBooked); err != nil {
			return updated, err
		}
	}

	s.notifyStudent(ctx, booking, true)

	return updated, nil
}

// RejectBooking cancels a pending booking owned by the acting coach. No
// capacity check: rejection only frees seats.
func (s *service) RejectBooking(ctx context.Context, bookingID, coachID int) (*Booking, error) {
	booking, err := s.bookingRepo.GetBookingWithSession(ctx, bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}

	if booking.CoachID != coachID {
		return nil, ErrBookingNotFound
	}

	if booking.Status != StatusPending {
		return nil, ErrBookingNotPending
	}

	updated, err := s.bookingRepo.UpdateStatusIf(ctx, bookingID, StatusPending, StatusCancelled)
	if err != nil {
		if errors.Is(err, ErrNoTransition) {
			return nil, ErrBookingNotPending
		}
		return nil, err
	}
	metrics.RecordBooking("rejected")

	s.notifyStudent(ctx, booking, false)

	return updated, nil
}

// CancelBooking cancels the student's own booking. Cancelling an already
// cancelled booking is an idempotent no-op returning the existing record.
func (s *service) CancelBooking(ctx context.Context, bookingID, studentID int) (*Booking, error) {
	booking, err := s.bookingRepo.GetBookingWithSession(ctx, bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}

	if booking.StudentID != studentID {
		return nil, ErrBookingNotFound
	}

	if booking.Status == StatusCancelled {
		return &booking.Booking, nil
	}

	wasConfirmed := booking.Status == StatusConfirmed

	updated, err := s.bookingRepo.UpdateStatusIf(ctx, bookingID, booking.Status, StatusCancelled)
	if err != nil {
		if errors.Is(err, ErrNoTransition) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	metrics.RecordBooking("cancelled")

	// a freed confirmed seat reopens a fully-booked session
	if wasConfirmed {
		if err := s.sessionRepo.UpdateSessionStatus(ctx, booking.SessionID, session.StatusAvailable); err != nil {
			return updated, err
		}
	}

	return updated, nil
}

func (s *service) GetStudentBookings(ctx context.Context, studentID int) ([]BookingWithSession, error) {
	return s.bookingRepo.GetStudentBookings(ctx, studentID)
}

// GetSessionRoster returns a session's bookings with student details, for the
// owning coach only.
func (s *service) GetSessionRoster(ctx context.Context, sessionID, coachID int) ([]BookingWithStudent, error) {
	sess, err := s.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	if sess.CoachID != coachID {
		return nil, ErrSessionNotFound
	}

	return s.bookingRepo.GetBookingsBySession(ctx, sessionID)
}

// notifications are best-effort, a failed email never fails the booking
func (s *service) notifyCoach(ctx context.Context, sess *session.Session, studentID int) {
	coach, err := s.userRepo.FindByID(ctx, sess.CoachID)
	if err != nil || coach == nil {
		return
	}
	studentName := "A student"
	if student, err := s.userRepo.FindByID(ctx, studentID); err == nil && student != nil {
		studentName = student.Name
	}
	s.emailService.SendBookingRequested(ctx, coach.Email, coach.Name, studentName, sess.Title, sess.StartTime)
}

func (s *service) notifyStudent(ctx context.Context, booking *BookingWithSession, approved bool) {
	student, err := s.userRepo.FindByID(ctx, booking.StudentID)
	if err != nil || student == nil {
		return
	}
	if approved {
		s.emailService.SendBookingApproved(ctx, student.Email, student.Name, booking.SessionTitle, booking.SessionStart)
		return
	}
	s.emailService.SendBookingRejected(ctx, student.Email, student.Name, booking.SessionTitle)
}
