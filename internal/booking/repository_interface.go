package booking

import "context"

type Repository interface {
	CreateBooking(ctx context.Context, sessionID, studentID int) (*Booking, error)
	GetBookingByID(ctx context.Context, id int) (*Booking, error)
	GetBookingWithSession(ctx context.Context, id int) (*BookingWithSession, error)
	UpdateStatusIf(ctx context.Context, id int, from, to string) (*Booking, error)
	CountHeldForSession(ctx context.Context, sessionID int) (int, error)
	CountConfirmedForSession(ctx context.Context, sessionID int) (int, error)
	StudentHasActiveBooking(ctx context.Context, sessionID, studentID int) (bool, error)
	GetStudentBookings(ctx context.Context, studentID int) ([]BookingWithSession, error)
	GetBookingsBySession(ctx context.Context, sessionID int) ([]BookingWithStudent, error)
}
