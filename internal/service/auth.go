package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/contractiq/contractiq/internal/domain"
	"github.com/contractiq/contractiq/internal/telemetry"
)

// UserRepositoryInterface defines the repository interface for user persistence
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// TokenIssuer mints signed access tokens for an authenticated user.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// AuthService handles signup, login and credential verification.
type AuthService struct {
	userRepo UserRepositoryInterface
	hasher   PasswordHasher
	tokens   TokenIssuer
	uuidGen  UUIDGenerator
}

// NewAuthService creates a new AuthService instance
func NewAuthService(userRepo UserRepositoryInterface, hasher PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		uuidGen:  &DefaultUUIDGenerator{},
	}
}

// NewAuthServiceWithUUIDGen creates a new AuthService with custom UUID generator (for testing)
func NewAuthServiceWithUUIDGen(userRepo UserRepositoryInterface, hasher PasswordHasher, tokens TokenIssuer, uuidGen UUIDGenerator) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		uuidGen:  uuidGen,
	}
}

// SignupInput represents the input for registering a new account
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput represents the input for authenticating an existing account
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is returned by both Signup and Login: the account plus a
// freshly minted access token.
type AuthResult struct {
	User  *domain.User
	Token string
}

// Signup registers a new account, hashes the password and issues a token
// so the caller is logged in immediately.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.Signup", telemetry.SpanAttributes{
		Operation: "signup",
	})
	defer span.End()

	if strings.TrimSpace(input.Password) == "" {
		return nil, domain.ErrMissingRequiredField
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, &domain.DomainError{
			Code:    domain.ErrCodeInternalError,
			Message: "failed to hash password",
			Err:     err,
		}
	}

	user := &domain.User{
		ID:           s.uuidGen.NewString(),
		Username:     strings.TrimSpace(input.Username),
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := domain.ValidateUser(user); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, &domain.DomainError{
			Code:    domain.ErrCodeInternalError,
			Message: "failed to issue token",
			Err:     err,
		}
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and issues a token. A wrong email and a wrong
// password both return domain.ErrInvalidCredentials so callers cannot
// probe which accounts exist.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.Login", telemetry.SpanAttributes{
		Operation: "login",
	})
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, &domain.DomainError{
			Code:    domain.ErrCodeInternalError,
			Message: "failed to issue token",
			Err:     err,
		}
	}

	return &AuthResult{User: user, Token: token}, nil
}

// ResolveUser looks up the account behind a validated token subject.
// Used by the auth middleware after signature verification.
func (s *AuthService) ResolveUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}
