package session

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() {
		sqlxDB.Close()
	}

	return repo, mock, closer
}

func sessionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "coach_id", "title", "description", "start_time", "end_time",
		"max_students", "price", "status", "visibility", "created_at",
	})
}

func TestCreateAndGetSession(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	start := now.Add(24 * time.Hour)
	end := start.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO sessions")).
		WithArgs(1, "Math", "Algebra basics", start, end, 3, 25.0, "public").
		WillReturnRows(sessionRows().AddRow(7, 1, "Math", "Algebra basics", start, end, 3, 25.0, "available", "public", now))

	created, err := repo.CreateSession(context.Background(), &Session{
		CoachID:     1,
		Title:       "Math",
		Description: "Algebra basics",
		StartTime:   start,
		EndTime:     end,
		MaxStudents: 3,
		Price:       25.0,
		Visibility:  "public",
	})
	require.NoError(t, err)
	require.Equal(t, 7, created.ID)
	require.Equal(t, StatusAvailable, created.Status)

	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions")).
		WithArgs(7).
		WillReturnRows(sessionRows().AddRow(7, 1, "Math", "Algebra basics", start, end, 3, 25.0, "available", "public", now))

	got, err := repo.GetSessionByID(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 7, got.ID)
	require.Equal(t, "Math", got.Title)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHasOverlap(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	start := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(1, start, end).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	overlaps, err := repo.HasOverlap(context.Background(), 1, start, end)
	require.NoError(t, err)
	require.True(t, overlaps)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(1, start, end).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	overlaps, err = repo.HasOverlap(context.Background(), 1, start, end)
	require.NoError(t, err)
	require.False(t, overlaps)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSessionStatus(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions SET status = $2 WHERE id = $1")).
		WithArgs(5, "booked").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateSessionStatus(context.Background(), 5, "booked")
	require.NoError(t, err)

	// missing row
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions SET status = $2 WHERE id = $1")).
		WithArgs(6, "booked").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateSessionStatus(context.Background(), 6, "booked")
	require.ErrorIs(t, err, ErrSessionRowNotFound)
}

func TestCountConfirmedBookings(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountConfirmedBookings(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestGetPublicSessionsWithAvailability(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	start := now.Add(24 * time.Hour)
	end := start.Add(time.Hour)

	rows := sqlmock.NewRows([]string{
		"id", "coach_id", "title", "description", "start_time", "end_time",
		"max_students", "price", "status", "visibility", "created_at",
		"held_count", "spots_left",
	}).
		AddRow(1, 1, "Math", "", start, end, 3, 25.0, "available", "public", now, 1, 2).
		AddRow(2, 1, "Physics", "", start, end, 2, 30.0, "available", "public", now, 2, 0)

	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN bookings")).WillReturnRows(rows)

	sessions, err := repo.GetPublicSessionsWithAvailability(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.False(t, sessions[0].IsFull)
	require.True(t, sessions[1].IsFull)
	require.Equal(t, 2, sessions[0].SpotsLeft)
}

func TestDeleteSessionCascade(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE session_id = $1 AND status IN ('pending', 'cancelled')")).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE id = $1")).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.DeleteSessionCascade(context.Background(), 5)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSessionCascade_MissingSession(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE session_id = $1 AND status IN ('pending', 'cancelled')")).
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE id = $1")).
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.DeleteSessionCascade(context.Background(), 9)
	require.ErrorIs(t, err, ErrSessionRowNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
