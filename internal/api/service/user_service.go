package service

import (
	"context"
	"ctchen222/book-catalog/internal/api/models"
	"ctchen222/book-catalog/internal/api/repository"
	"ctchen222/book-catalog/internal/auth"
	"ctchen222/book-catalog/internal/db"
	loginrepo "ctchen222/book-catalog/internal/repository"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

//go:generate mockgen -source=user_service.go -destination=mocks/mock_user_service.go -package=mocks

var meter = otel.Meter("api.service")

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(username string) (string, time.Time, error)
}

// UserService defines the interface for user-related business logic.
type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Verify(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
}

// UserOption customizes a UserService.
type UserOption func(*userService)

// WithLoginThrottle rejects logins for a username once it has failed
// maxAttempts times inside the repository's window.
func WithLoginThrottle(attempts loginrepo.LoginAttemptRepository, maxAttempts int) UserOption {
	return func(s *userService) {
		s.attempts = attempts
		s.maxAttempts = int64(maxAttempts)
	}
}

// WithHashCost sets the bcrypt cost used for new passwords.
func WithHashCost(cost int) UserOption {
	return func(s *userService) {
		s.hashCost = cost
	}
}

type userService struct {
	tx          db.Transactor
	repos       repository.Manager
	issuer      TokenIssuer
	policy      auth.PasswordPolicy
	hashCost    int
	attempts    loginrepo.LoginAttemptRepository
	maxAttempts int64

	// dummyHash is compared against when the username is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash string

	tokensIssued  metric.Int64Counter
	loginFailures metric.Int64Counter
}

// NewUserService creates a new UserService.
func NewUserService(tx db.Transactor, repos repository.Manager, issuer TokenIssuer, policy auth.PasswordPolicy, opts ...UserOption) (UserService, error) {
	s := &userService{
		tx:     tx,
		repos:  repos,
		issuer: issuer,
		policy: policy,
	}
	for _, opt := range opts {
		opt(s)
	}

	dummy, err := auth.HashPassword(uuid.NewString(), s.hashCost)
	if err != nil {
		return nil, err
	}
	s.dummyHash = dummy

	if s.tokensIssued, err = meter.Int64Counter("auth.tokens.issued",
		metric.WithDescription("Bearer tokens issued on successful login")); err != nil {
		return nil, fmt.Errorf("failed to create tokens counter: %w", err)
	}
	if s.loginFailures, err = meter.Int64Counter("auth.login.failures",
		metric.WithDescription("Rejected login attempts")); err != nil {
		return nil, fmt.Errorf("failed to create login failure counter: %w", err)
	}
	return s, nil
}

// Register handles user registration.
func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	// Check if user already exists
	err := s.tx.WithTx(ctx, func(ctx context.Context, q db.Queryer) error {
		existing, err := s.repos.Users(q).GetUserByUsername(ctx, req.Username)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateIdentity
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if violations := s.policy.Check(req.Password); len(violations) > 0 {
		return nil, &WeakCredentialError{Violations: violations}
	}

	hash, err := auth.HashPassword(req.Password, s.hashCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:      req.Username,
		Email:         req.Email,
		PasswordHash:  hash,
		SecurityStamp: uuid.NewString(),
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context, q db.Queryer) error {
		return s.repos.Users(q).CreateUser(ctx, user)
	})
	if err != nil {
		// Another request registered the same name between the check and the insert.
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateIdentity
		}
		return nil, err
	}

	slog.InfoContext(ctx, "user registered", "user.id", user.ID, "user.name", user.Username)
	return user, nil
}

// Verify returns the user matching username and password. Unknown users and
// wrong passwords both yield ErrInvalidCredential.
func (s *userService) Verify(ctx context.Context, username, password string) (*models.User, error) {
	var user *models.User
	err := s.tx.WithTx(ctx, func(ctx context.Context, q db.Queryer) error {
		var err error
		user, err = s.repos.Users(q).GetUserByUsername(ctx, username)
		return err
	})
	if err != nil {
		return nil, err
	}

	if user == nil {
		_ = auth.ComparePassword(s.dummyHash, password)
		return nil, ErrInvalidCredential
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrMismatchedPassword) {
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("failed to compare password: %w", err)
	}
	return user, nil
}

// Login verifies the credentials and returns a signed token on success.
func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	if s.throttled(ctx, req.Username) {
		s.loginFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "throttled")))
		return nil, ErrTooManyAttempts
	}

	user, err := s.Verify(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredential) {
			s.loginFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "credentials")))
			s.recordFailure(ctx, req.Username)
		}
		return nil, err
	}
	s.resetFailures(ctx, req.Username)

	token, expiresAt, err := s.issuer.Issue(user.Username)
	if err != nil {
		return nil, err
	}
	s.tokensIssued.Add(ctx, 1)

	return &models.LoginResponse{Token: token, Expiration: expiresAt}, nil
}

// throttled fails open: if Redis is unreachable the login proceeds.
func (s *userService) throttled(ctx context.Context, username string) bool {
	if s.attempts == nil {
		return false
	}
	n, err := s.attempts.Failures(ctx, username)
	if err != nil {
		slog.WarnContext(ctx, "login throttle unavailable", "user.name", username, "error", err)
		return false
	}
	return n >= s.maxAttempts
}

func (s *userService) recordFailure(ctx context.Context, username string) {
	if s.attempts == nil {
		return
	}
	if _, err := s.attempts.RecordFailure(ctx, username); err != nil {
		slog.WarnContext(ctx, "failed to record login failure", "user.name", username, "error", err)
	}
}

func (s *userService) resetFailures(ctx context.Context, username string) {
	if s.attempts == nil {
		return
	}
	if err := s.attempts.Reset(ctx, username); err != nil {
		slog.WarnContext(ctx, "failed to reset login failures", "user.name", username, "error", err)
	}
}
