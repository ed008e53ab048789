package user

import (
	"context"
	"database/sql"
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

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at"})
}

func TestCreateAndFindUser(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("Carol", "coach@example.com", "hashed", "coach").
		WillReturnRows(userRows().AddRow(1, "Carol", "coach@example.com", "hashed", "coach", now))

	created, err := repo.Create(context.Background(), "Carol", "coach@example.com", "hashed", "coach")
	require.NoError(t, err)
	require.Equal(t, 1, created.ID)
	require.Equal(t, "coach", created.Role)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1")).
		WithArgs("coach@example.com").
		WillReturnRows(userRows().AddRow(1, "Carol", "coach@example.com", "hashed", "coach", now))

	byEmail, err := repo.FindByEmail(context.Background(), "coach@example.com")
	require.NoError(t, err)
	require.Equal(t, 1, byEmail.ID)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs(1).
		WillReturnRows(userRows().AddRow(1, "Carol", "coach@example.com", "hashed", "coach", now))

	byID, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "Carol", byID.Name)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1")).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestEmailExists(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("coach@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.EmailExists(context.Background(), "coach@example.com")
	require.NoError(t, err)
	require.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("new@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err = repo.EmailExists(context.Background(), "new@example.com")
	require.NoError(t, err)
	require.False(t, exists)
}
