package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/askhat-dev/storefront/internal/domain/entity"
	"github.com/askhat-dev/storefront/internal/platform/logger"
	"github.com/askhat-dev/storefront/internal/repository"
	"github.com/askhat-dev/storefront/internal/validation"
	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
)

const defaultTokenTTL = 24 * time.Hour

type AuthService interface {
	Register(ctx context.Context, form validation.RegistrationForm) (*entity.User, error)
	Login(ctx context.Context, form validation.LoginForm) (string, error)
}

type authService struct {
	userRepo  repository.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
	log       logger.Logger
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, tokenTTL time.Duration, log logger.Logger) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &authService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
	}
}

// Register validates the whole form at once and creates the account. A
// validation failure returns every field's error together, not just the first.
func (s *authService) Register(ctx context.Context, form validation.RegistrationForm) (*entity.User, error) {
	if errs := validation.ValidateRegistration(form); errs != nil {
		s.log.Debugf("Registration rejected for %q: %v", form.Email, errs)
		return nil, errs
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		s.log.Errorf("Failed to hash password for %q: %v", form.Email, err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID: %w", err)
	}

	now := time.Now().UTC()
	user := &entity.User{
		ID:           userID.String(),
		Username:     form.Username,
		Email:        form.Email,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		PasswordHash: string(hash),
		Role:         "customer",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			s.log.Warnf("Registration with taken username/email: %q", form.Email)
			return nil, fmt.Errorf("account with this email or username already exists: %w", err)
		}
		s.log.Errorf("Failed to create user %q: %v", form.Email, err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Infof("User %s registered", user.ID)
	return user, nil
}

func (s *authService) Login(ctx context.Context, form validation.LoginForm) (string, error) {
	if errs := validation.ValidateLogin(form); errs != nil {
		return "", errs
	}

	user, err := s.userRepo.GetByEmail(ctx, form.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		s.log.Errorf("Failed to look up user %q: %v", form.Email, err)
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.IsActive {
		return "", ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.Password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"iat":     now.Unix(),
		"exp":     now.Add(s.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		s.log.Errorf("Failed to sign token for user %s: %v", user.ID, err)
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	s.log.Infof("User %s logged in", user.ID)
	return token, nil
}
