package auth

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tabmind/tabmind-server/internal/types"
)

// MockAuthRepo is a mock implementation of the AuthRepo interface.
type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockAuthRepo) GetUserByID(ctx context.Context, userID string) (*types.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockAuthRepo) CreateUser(ctx context.Context, name, email, passwordHash, role string) (*types.User, error) {
	args := m.Called(ctx, name, email, passwordHash, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func newTestService(repo AuthRepo) *AuthServiceImpl {
	return NewAuthService(repo, NewTokenIssuer(testJWTConfig()), slog.Default())
}

func TestSignup(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		ctx := context.Background()

		created := &types.User{ID: "new-id", Name: "A", Email: "a@x.com", Role: types.RoleUser}
		mockRepo.On("CreateUser", ctx, "A", "a@x.com", mock.AnythingOfType("string"), types.RoleUser).
			Return(created, nil).Once()

		user, token, err := service.Signup(ctx, "A", "a@x.com", "p1", "")
		require.NoError(t, err)
		assert.Equal(t, "new-id", user.ID)
		assert.NotEmpty(t, token)

		// The stored digest must verify against the original plaintext and
		// never equal it.
		hashed := mockRepo.Calls[0].Arguments.String(3)
		assert.NotEqual(t, "p1", hashed)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hashed), []byte("p1")))
		assert.Error(t, bcrypt.CompareHashAndPassword([]byte(hashed), []byte("p2")))

		mockRepo.AssertExpectations(t)
	})

	t.Run("AdminRoleRequested", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		ctx := context.Background()

		created := &types.User{ID: "admin-id", Name: "Root", Email: "root@x.com", Role: types.RoleAdmin}
		mockRepo.On("CreateUser", ctx, "Root", "root@x.com", mock.AnythingOfType("string"), types.RoleAdmin).
			Return(created, nil).Once()

		user, token, err := service.Signup(ctx, "Root", "root@x.com", "p1", "admin")
		require.NoError(t, err)
		assert.Equal(t, types.RoleAdmin, user.Role)

		issuer := NewTokenIssuer(testJWTConfig())
		claims, err := issuer.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, types.RoleAdmin, claims.Role)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UnknownRoleDefaultsToUser", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		ctx := context.Background()

		created := &types.User{ID: "id", Name: "B", Email: "b@x.com", Role: types.RoleUser}
		mockRepo.On("CreateUser", ctx, "B", "b@x.com", mock.AnythingOfType("string"), types.RoleUser).
			Return(created, nil).Once()

		_, _, err := service.Signup(ctx, "B", "b@x.com", "p1", "superuser")
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		ctx := context.Background()

		mockRepo.On("CreateUser", ctx, "A", "dup@x.com", mock.AnythingOfType("string"), types.RoleUser).
			Return(nil, types.ErrConflict).Once()

		_, _, err := service.Signup(ctx, "A", "dup@x.com", "p1", "")
		assert.ErrorIs(t, err, types.ErrConflict)
		mockRepo.AssertExpectations(t)
	})
}

func TestLoginService(t *testing.T) {
	password := "password123"
	hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	stored := &types.User{
		ID:           "user-123",
		Name:         "Test",
		Email:        "test@example.com",
		PasswordHash: string(hashed),
		Role:         types.RoleUser,
	}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		ctx := context.Background()

		mockRepo.On("GetUserByEmail", ctx, stored.Email).Return(stored, nil).Once()

		user, token, err := service.Login(ctx, stored.Email, password)
		require.NoError(t, err)
		assert.Equal(t, stored.ID, user.ID)

		issuer := NewTokenIssuer(testJWTConfig())
		claims, err := issuer.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, stored.ID, claims.UserID)
		assert.Equal(t, stored.Role, claims.Role)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		ctx := context.Background()

		mockRepo.On("GetUserByEmail", ctx, "nobody@example.com").Return(nil, types.ErrNotFound).Once()

		_, _, err := service.Login(ctx, "nobody@example.com", password)
		assert.ErrorIs(t, err, types.ErrUnauthenticated)
		mockRepo.AssertExpectations(t)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		ctx := context.Background()

		mockRepo.On("GetUserByEmail", ctx, stored.Email).Return(stored, nil).Once()

		_, _, err := service.Login(ctx, stored.Email, "wrong-password")
		assert.ErrorIs(t, err, types.ErrUnauthenticated)
		mockRepo.AssertExpectations(t)
	})

	t.Run("WrongPasswordAndUnknownEmailAreIndistinguishable", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		ctx := context.Background()

		mockRepo.On("GetUserByEmail", ctx, stored.Email).Return(stored, nil).Once()
		mockRepo.On("GetUserByEmail", ctx, "ghost@example.com").Return(nil, types.ErrNotFound).Once()

		_, _, errWrongPassword := service.Login(ctx, stored.Email, "wrong")
		_, _, errUnknownEmail := service.Login(ctx, "ghost@example.com", "wrong")

		assert.Equal(t, errWrongPassword, errUnknownEmail)
		mockRepo.AssertExpectations(t)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		ctx := context.Background()

		mockRepo.On("GetUserByEmail", ctx, stored.Email).Return(nil, errors.New("connection reset")).Once()

		_, _, err := service.Login(ctx, stored.Email, password)
		require.Error(t, err)
		assert.NotErrorIs(t, err, types.ErrUnauthenticated)
		mockRepo.AssertExpectations(t)
	})
}

func TestGetUserByID(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	service := newTestService(mockRepo)
	ctx := context.Background()

	mockRepo.On("GetUserByID", ctx, "gone").Return(nil, types.ErrNotFound).Once()

	_, err := service.GetUserByID(ctx, "gone")
	assert.ErrorIs(t, err, types.ErrNotFound)
	mockRepo.AssertExpectations(t)
}
