package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yihhan/coaching-calendar-app-sub000/internal/auth"
)

const testSecret = "test-secret-key"

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, name, email, passwordHash, role string) (*User, error) {
	args := m.Called(ctx, name, email, passwordHash, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id int) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func TestRegister(t *testing.T) {
	t.Run("registers coach with tokens", func(t *testing.T) {
		repo := new(MockRepository)
		service := NewService(repo, testSecret)

		repo.On("EmailExists", mock.Anything, "coach@example.com").Return(false, nil)
		repo.On("Create", mock.Anything, "Carol", "coach@example.com", mock.Anything, auth.RoleCoach).
			Return(&User{ID: 1, Name: "Carol", Email: "coach@example.com", Role: auth.RoleCoach}, nil)

		user, access, refresh, err := service.Register(context.Background(), RegisterRequest{
			Name:     "Carol",
			Email:    "coach@example.com",
			Password: "password123",
			Role:     auth.RoleCoach,
		})

		require.NoError(t, err)
		assert.Equal(t, auth.RoleCoach, user.Role)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)

		claims, err := auth.ValidateToken(access, testSecret)
		require.NoError(t, err)
		assert.Equal(t, 1, claims.UserID)
		assert.Equal(t, auth.RoleCoach, claims.Role)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := new(MockRepository)
		service := NewService(repo, testSecret)

		repo.On("EmailExists", mock.Anything, "taken@example.com").Return(true, nil)

		_, _, _, err := service.Register(context.Background(), RegisterRequest{
			Name:     "Carol",
			Email:    "taken@example.com",
			Password: "password123",
			Role:     auth.RoleStudent,
		})

		assert.ErrorIs(t, err, ErrEmailExists)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("password is stored hashed", func(t *testing.T) {
		repo := new(MockRepository)
		service := NewService(repo, testSecret)

		var storedHash string
		repo.On("EmailExists", mock.Anything, mock.Anything).Return(false, nil)
		repo.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.MatchedBy(func(hash string) bool {
			storedHash = hash
			return hash != "password123"
		}), mock.Anything).Return(&User{ID: 1, Role: auth.RoleStudent}, nil)

		_, _, _, err := service.Register(context.Background(), RegisterRequest{
			Name:     "Sam",
			Email:    "sam@example.com",
			Password: "password123",
			Role:     auth.RoleStudent,
		})

		require.NoError(t, err)
		assert.True(t, auth.CheckPassword(storedHash, "password123"))
	})
}

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		repo := new(MockRepository)
		service := NewService(repo, testSecret)

		repo.On("FindByEmail", mock.Anything, "sam@example.com").
			Return(&User{ID: 2, Email: "sam@example.com", PasswordHash: hash, Role: auth.RoleStudent}, nil)

		user, access, refresh, err := service.Login(context.Background(), LoginRequest{
			Email:    "sam@example.com",
			Password: "password123",
		})

		require.NoError(t, err)
		assert.Equal(t, 2, user.ID)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockRepository)
		service := NewService(repo, testSecret)

		repo.On("FindByEmail", mock.Anything, "sam@example.com").
			Return(&User{ID: 2, PasswordHash: hash, Role: auth.RoleStudent}, nil)

		_, _, _, err := service.Login(context.Background(), LoginRequest{
			Email:    "sam@example.com",
			Password: "wrong",
		})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		repo := new(MockRepository)
		service := NewService(repo, testSecret)

		repo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, errors.New("no rows"))

		_, _, _, err := service.Login(context.Background(), LoginRequest{
			Email:    "nobody@example.com",
			Password: "password123",
		})

		// unknown email and wrong password are indistinguishable to the caller
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestGetByID(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, testSecret)

	repo.On("FindByID", mock.Anything, 2).Return(&User{ID: 2, Name: "Sam"}, nil)
	repo.On("FindByID", mock.Anything, 99).Return(nil, errors.New("no rows"))

	user, err := service.GetByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Sam", user.Name)

	_, err = service.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRefreshToken(t *testing.T) {
	t.Run("issues new access token", func(t *testing.T) {
		repo := new(MockRepository)
		service := NewService(repo, testSecret)

		refresh, err := auth.GenerateRefreshToken(2, "sam@example.com", auth.RoleStudent, testSecret)
		require.NoError(t, err)

		repo.On("FindByID", mock.Anything, 2).
			Return(&User{ID: 2, Email: "sam@example.com", Role: auth.RoleStudent}, nil)

		access, user, err := service.RefreshToken(context.Background(), refresh)

		require.NoError(t, err)
		assert.Equal(t, 2, user.ID)

		claims, err := auth.ValidateToken(access, testSecret)
		require.NoError(t, err)
		assert.Equal(t, 2, claims.UserID)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		repo := new(MockRepository)
		service := NewService(repo, testSecret)

		access, err := auth.GenerateAccessToken(2, "sam@example.com", auth.RoleStudent, testSecret)
		require.NoError(t, err)

		_, _, err = service.RefreshToken(context.Background(), access)
		assert.Error(t, err)
		repo.AssertNotCalled(t, "FindByID")
	})

	t.Run("garbage token", func(t *testing.T) {
		repo := new(MockRepository)
		service := NewService(repo, testSecret)

		_, _, err := service.RefreshToken(context.Background(), "not-a-token")
		assert.Error(t, err)
	})
}
