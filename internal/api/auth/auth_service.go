package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/tabmind/tabmind-server/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

type AuthService interface {
	// Signup creates a user and returns it with a fresh session token.
	Signup(ctx context.Context, name, email, password, role string) (*types.User, string, error)
	// Login verifies credentials and returns the user with a fresh token.
	// Unknown email and wrong password are indistinguishable to the caller.
	Login(ctx context.Context, email, password string) (*types.User, string, error)
	GetUserByID(ctx context.Context, userID string) (*types.User, error)
}

type AuthServiceImpl struct {
	repo   AuthRepo
	tokens *TokenIssuer
	logger *slog.Logger
}

func NewAuthService(repo AuthRepo, tokens *TokenIssuer, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		repo:   repo,
		tokens: tokens,
		logger: logger,
	}
}

// Signup hashes the password and creates the user. Role defaults to 'user';
// the caller may request 'admin'.
func (s *AuthServiceImpl) Signup(ctx context.Context, name, email, password, role string) (*types.User, string, error) {
	l := s.logger.With(slog.String("method", "Signup"), slog.String("email", email))

	if role != types.RoleAdmin {
		role = types.RoleUser
	}

	// The duplicate-email check is left entirely to the store's unique
	// constraint; a pre-check here would race with concurrent signups.
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, name, email, string(hashed), role)
	if err != nil {
		if errors.Is(err, types.ErrConflict) {
			l.WarnContext(ctx, "Signup rejected, email already in use")
			return nil, "", err
		}
		return nil, "", fmt.Errorf("signup failed: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("signup failed: %w", err)
	}

	l.InfoContext(ctx, "User created", slog.String("userID", user.ID), slog.String("role", user.Role))
	return user, token, nil
}

// Login authenticates a user by email and password.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*types.User, string, error) {
	l := s.logger.With(slog.String("method", "Login"), slog.String("email", email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			// Same external error as a wrong password so the response does
			// not reveal whether the email exists.
			l.WarnContext(ctx, "Login rejected, unknown email")
			return nil, "", types.ErrUnauthenticated
		}
		return nil, "", fmt.Errorf("login failed: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		l.WarnContext(ctx, "Login rejected, password mismatch", slog.String("userID", user.ID))
		return nil, "", types.ErrUnauthenticated
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("login failed: %w", err)
	}

	return user, token, nil
}

func (s *AuthServiceImpl) GetUserByID(ctx context.Context, userID string) (*types.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}
