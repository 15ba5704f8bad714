package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/contractiq/contractiq/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock implementation of UserRepositoryInterface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockTokenIssuer is a mock implementation of TokenIssuer
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

// MockPasswordHasher is a mock implementation of PasswordHasher
type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(plaintext string) (string, error) {
	args := m.Called(plaintext)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Compare(hash, plaintext string) error {
	args := m.Called(hash, plaintext)
	return args.Error(0)
}

// MockUUIDGenerator is a mock implementation of UUIDGenerator
type MockUUIDGenerator struct {
	callCount int
	uuids     []string
}

func NewMockUUIDGenerator(uuids ...string) *MockUUIDGenerator {
	return &MockUUIDGenerator{uuids: uuids}
}

func (m *MockUUIDGenerator) NewString() string {
	if m.callCount < len(m.uuids) {
		uuid := m.uuids[m.callCount]
		m.callCount++
		return uuid
	}
	return "default-uuid"
}

// TestAuthService_Signup tests the Signup method
func TestAuthService_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and issues token", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		mockHasher := new(MockPasswordHasher)
		mockTokens := new(MockTokenIssuer)
		mockUUIDGen := NewMockUUIDGenerator("user-id-1")

		service := NewAuthServiceWithUUIDGen(mockUserRepo, mockHasher, mockTokens, mockUUIDGen)

		mockHasher.On("Hash", "s3cret").Return("hashed-s3cret", nil)
		mockUserRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.ID == "user-id-1" &&
				u.Username == "alice" &&
				u.Email == "alice@example.com" &&
				u.PasswordHash == "hashed-s3cret"
		})).Return(nil)
		mockTokens.On("Issue", "user-id-1").Return("token-1", nil)

		result, err := service.Signup(ctx, SignupInput{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "s3cret",
		})

		require.NoError(t, err)
		assert.Equal(t, "token-1", result.Token)
		assert.Equal(t, "user-id-1", result.User.ID)
		assert.Equal(t, "alice@example.com", result.User.Email)

		mockUserRepo.AssertExpectations(t)
		mockHasher.AssertExpectations(t)
		mockTokens.AssertExpectations(t)
	})

	t.Run("trims username and email whitespace", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		mockHasher := new(MockPasswordHasher)
		mockTokens := new(MockTokenIssuer)

		service := NewAuthServiceWithUUIDGen(mockUserRepo, mockHasher, mockTokens, NewMockUUIDGenerator("user-id-1"))

		mockHasher.On("Hash", "s3cret").Return("hashed", nil)
		mockUserRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Username == "alice" && u.Email == "alice@example.com"
		})).Return(nil)
		mockTokens.On("Issue", "user-id-1").Return("token-1", nil)

		_, err := service.Signup(ctx, SignupInput{
			Username: "  alice  ",
			Email:    " alice@example.com ",
			Password: "s3cret",
		})

		require.NoError(t, err)
		mockUserRepo.AssertExpectations(t)
	})

	t.Run("returns validation error on empty password", func(t *testing.T) {
		service := NewAuthService(new(MockUserRepository), new(MockPasswordHasher), new(MockTokenIssuer))

		result, err := service.Signup(ctx, SignupInput{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "   ",
		})

		require.Error(t, err)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
	})

	t.Run("returns validation error on missing email", func(t *testing.T) {
		mockHasher := new(MockPasswordHasher)
		mockHasher.On("Hash", "s3cret").Return("hashed", nil)

		service := NewAuthService(new(MockUserRepository), mockHasher, new(MockTokenIssuer))

		result, err := service.Signup(ctx, SignupInput{
			Username: "alice",
			Password: "s3cret",
		})

		require.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "Email")
	})

	t.Run("propagates duplicate email from repository", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		mockHasher := new(MockPasswordHasher)

		service := NewAuthService(mockUserRepo, mockHasher, new(MockTokenIssuer))

		mockHasher.On("Hash", "s3cret").Return("hashed", nil)
		mockUserRepo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicateEmail)

		result, err := service.Signup(ctx, SignupInput{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "s3cret",
		})

		require.Error(t, err)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
	})
}

// TestAuthService_Login tests the Login method
func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	existing := &domain.User{
		ID:           "user-id-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hashed-s3cret",
		CreatedAt:    time.Now().UTC(),
	}

	t.Run("returns token on valid credentials", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		mockHasher := new(MockPasswordHasher)
		mockTokens := new(MockTokenIssuer)

		service := NewAuthService(mockUserRepo, mockHasher, mockTokens)

		mockUserRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(existing, nil)
		mockHasher.On("Compare", "hashed-s3cret", "s3cret").Return(nil)
		mockTokens.On("Issue", "user-id-1").Return("token-1", nil)

		result, err := service.Login(ctx, LoginInput{Email: "alice@example.com", Password: "s3cret"})

		require.NoError(t, err)
		assert.Equal(t, "token-1", result.Token)
		assert.Equal(t, existing, result.User)

		mockUserRepo.AssertExpectations(t)
		mockHasher.AssertExpectations(t)
		mockTokens.AssertExpectations(t)
	})

	t.Run("returns invalid credentials for unknown email", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)

		service := NewAuthService(mockUserRepo, new(MockPasswordHasher), new(MockTokenIssuer))

		mockUserRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrUserNotFound)

		result, err := service.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "s3cret"})

		require.Error(t, err)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("returns invalid credentials for wrong password", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		mockHasher := new(MockPasswordHasher)

		service := NewAuthService(mockUserRepo, mockHasher, new(MockTokenIssuer))

		mockUserRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(existing, nil)
		mockHasher.On("Compare", "hashed-s3cret", "wrong").Return(errors.New("mismatch"))

		result, err := service.Login(ctx, LoginInput{Email: "alice@example.com", Password: "wrong"})

		require.Error(t, err)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("propagates repository errors that are not not-found", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)

		service := NewAuthService(mockUserRepo, new(MockPasswordHasher), new(MockTokenIssuer))

		dbErr := errors.New("connection refused")
		mockUserRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, dbErr)

		result, err := service.Login(ctx, LoginInput{Email: "alice@example.com", Password: "s3cret"})

		require.Error(t, err)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

// TestAuthService_ResolveUser tests the ResolveUser method
func TestAuthService_ResolveUser(t *testing.T) {
	ctx := context.Background()

	t.Run("returns user by ID", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		existing := &domain.User{ID: "user-id-1", Username: "alice", Email: "alice@example.com"}

		service := NewAuthService(mockUserRepo, new(MockPasswordHasher), new(MockTokenIssuer))

		mockUserRepo.On("GetByID", mock.Anything, "user-id-1").Return(existing, nil)

		user, err := service.ResolveUser(ctx, "user-id-1")

		require.NoError(t, err)
		assert.Equal(t, existing, user)
	})

	t.Run("returns not found for deleted account", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)

		service := NewAuthService(mockUserRepo, new(MockPasswordHasher), new(MockTokenIssuer))

		mockUserRepo.On("GetByID", mock.Anything, "gone").Return(nil, domain.ErrUserNotFound)

		user, err := service.ResolveUser(ctx, "gone")

		require.Error(t, err)
		assert.Nil(t, user)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

// TestBcryptHasher exercises the real hasher roundtrip
func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher()

	hash, err := hasher.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.NoError(t, hasher.Compare(hash, "s3cret"))
	assert.Error(t, hasher.Compare(hash, "wrong"))
}
