package service

import (
	"context"
	"testing"
	"time"

	"github.com/askhat-dev/storefront/internal/domain/entity"
	"github.com/askhat-dev/storefront/internal/platform/logger"
	"github.com/askhat-dev/storefront/internal/repository"
	"github.com/askhat-dev/storefront/internal/validation"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

const testJWTSecret = "test-secret"

func validRegistrationForm() validation.RegistrationForm {
	return validation.RegistrationForm{
		Username:        "askhat_99",
		FirstName:       "Askhat",
		LastName:        "Bekov",
		Email:           "askhat@example.com",
		Password:        "Abcdef1",
		PasswordConfirm: "Abcdef1",
		AcceptTerms:     true,
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := NewAuthService(mockRepo, testJWTSecret, time.Hour, logger.NoOp())

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil).Once()

	user, err := authService.Register(context.Background(), validRegistrationForm())
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "askhat_99", user.Username)
	assert.Equal(t, "customer", user.Role)
	assert.True(t, user.IsActive)

	// The stored hash verifies against the submitted password and is never
	// the password itself.
	assert.NotEqual(t, "Abcdef1", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Abcdef1")))

	mockRepo.AssertExpectations(t)
}

func TestAuthService_Register_ValidationFailureSkipsRepo(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := NewAuthService(mockRepo, testJWTSecret, time.Hour, logger.NoOp())

	form := validRegistrationForm()
	form.Email = "not-an-email"
	form.Password = "short"
	form.PasswordConfirm = "short"

	_, err := authService.Register(context.Background(), form)

	var fieldErrs validation.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "email")
	assert.Contains(t, fieldErrs, "password")

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Register_DuplicateAccount(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := NewAuthService(mockRepo, testJWTSecret, time.Hour, logger.NoOp())

	mockRepo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrAlreadyExists).Once()

	_, err := authService.Register(context.Background(), validRegistrationForm())
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)
	mockRepo.AssertExpectations(t)
}

func storedUser(t *testing.T, password string) *entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &entity.User{
		ID:           "user-1",
		Username:     "askhat_99",
		Email:        "askhat@example.com",
		PasswordHash: string(hash),
		Role:         "customer",
		IsActive:     true,
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := NewAuthService(mockRepo, testJWTSecret, time.Hour, logger.NoOp())

	user := storedUser(t, "Abcdef1")
	mockRepo.On("GetByEmail", mock.Anything, "askhat@example.com").Return(user, nil).Once()

	token, err := authService.Login(context.Background(), validation.LoginForm{
		Email:    "askhat@example.com",
		Password: "Abcdef1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, "customer", claims["role"])

	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := NewAuthService(mockRepo, testJWTSecret, time.Hour, logger.NoOp())

	mockRepo.On("GetByEmail", mock.Anything, "askhat@example.com").Return(storedUser(t, "Abcdef1"), nil).Once()

	_, err := authService.Login(context.Background(), validation.LoginForm{
		Email:    "askhat@example.com",
		Password: "Wrongpass1",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := NewAuthService(mockRepo, testJWTSecret, time.Hour, logger.NoOp())

	mockRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrNotFound).Once()

	_, err := authService.Login(context.Background(), validation.LoginForm{
		Email:    "ghost@example.com",
		Password: "Abcdef1",
	})

	// Unknown account and wrong password are indistinguishable to the caller.
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_InactiveUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := NewAuthService(mockRepo, testJWTSecret, time.Hour, logger.NoOp())

	user := storedUser(t, "Abcdef1")
	user.IsActive = false
	mockRepo.On("GetByEmail", mock.Anything, "askhat@example.com").Return(user, nil).Once()

	_, err := authService.Login(context.Background(), validation.LoginForm{
		Email:    "askhat@example.com",
		Password: "Abcdef1",
	})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_Login_ValidationFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := NewAuthService(mockRepo, testJWTSecret, time.Hour, logger.NoOp())

	_, err := authService.Login(context.Background(), validation.LoginForm{})

	var fieldErrs validation.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	mockRepo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}
