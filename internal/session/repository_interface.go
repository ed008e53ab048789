package session

import (
	"context"
	"time"
)

type Repository interface {
	CreateSession(ctx context.Context, s *Session) (*Session, error)
	GetSessionByID(ctx context.Context, id int) (*Session, error)
	HasOverlap(ctx context.Context, coachID int, start, end time.Time) (bool, error)
	GetSessionsByCoach(ctx context.Context, coachID int) ([]Session, error)
	GetPublicSessionsWithAvailability(ctx context.Context, onlyFuture bool) ([]SessionWithAvailability, error)
	UpdateSessionStatus(ctx context.Context, sessionID int, status string) error
	CountConfirmedBookings(ctx context.Context, sessionID int) (int, error)
	DeleteSessionCascade(ctx context.Context, sessionID int) error
}
