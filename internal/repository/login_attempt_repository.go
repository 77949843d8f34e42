package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

//go:generate mockgen -source=login_attempt_repository.go -destination=mocks/mock_login_attempt_repository.go -package=mocks

var tracer = otel.Tracer("repository.login_attempt")

// LoginAttemptRepository counts failed logins per username inside a fixed
// window that starts at the first failure.
type LoginAttemptRepository interface {
	Failures(ctx context.Context, username string) (int64, error)
	RecordFailure(ctx context.Context, username string) (int64, error)
	Reset(ctx context.Context, username string) error
}

type redisLoginAttemptRepository struct {
	rdb    *redis.Client
	window time.Duration
}

// NewLoginAttemptRepository creates a new Redis-based LoginAttemptRepository.
func NewLoginAttemptRepository(rdb *redis.Client, window time.Duration) LoginAttemptRepository {
	return &redisLoginAttemptRepository{rdb: rdb, window: window}
}

func attemptKey(username string) string {
	return fmt.Sprintf("login:failures:%s", username)
}

// Failures returns the current failure count for username.
func (r *redisLoginAttemptRepository) Failures(ctx context.Context, username string) (int64, error) {
	ctx, span := tracer.Start(ctx, "LoginAttemptRepository.Failures", trace.WithAttributes(attribute.String("user.name", username)))
	defer span.End()

	n, err := r.rdb.Get(ctx, attemptKey(username)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to read login failures: %w", err)
	}
	return n, nil
}

// recordFailureScript increments the counter and sets its expiry in one
// atomic step. A counter found without an expiry gets one as well.
var recordFailureScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 or redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// RecordFailure increments the counter and starts the window on the first
// failure.
func (r *redisLoginAttemptRepository) RecordFailure(ctx context.Context, username string) (int64, error) {
	ctx, span := tracer.Start(ctx, "LoginAttemptRepository.RecordFailure", trace.WithAttributes(attribute.String("user.name", username)))
	defer span.End()

	n, err := recordFailureScript.Run(ctx, r.rdb, []string{attemptKey(username)}, r.window.Milliseconds()).Int64()
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to record login failure: %w", err)
	}
	return n, nil
}

// Reset clears the counter, typically after a successful login.
func (r *redisLoginAttemptRepository) Reset(ctx context.Context, username string) error {
	ctx, span := tracer.Start(ctx, "LoginAttemptRepository.Reset", trace.WithAttributes(attribute.String("user.name", username)))
	defer span.End()

	return r.rdb.Del(ctx, attemptKey(username)).Err()
}
