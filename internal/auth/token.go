package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultTokenTTL = 7 * time.Hour

var (
	ErrNoToken           = errors.New("no token")
	ErrMalformedToken    = errors.New("token is malformed")
	ErrSignatureMismatch = errors.New("token signature is invalid")
	ErrExpired           = errors.New("token is expired")
	ErrInvalidClaims     = errors.New("token claims are invalid")
)

// Claims is the claim set carried by every bearer token.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
}

// Username returns the authenticated username.
func (c *Claims) Username() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Subject
}

// TokenConfig configures a TokenIssuer. Issuer and Audience are optional.
type TokenConfig struct {
	Secret   []byte
	TTL      time.Duration
	Issuer   string
	Audience string
}

// TokenIssuer signs and validates HS256 bearer tokens. It keeps no state
// about issued tokens.
type TokenIssuer struct {
	secret   []byte
	ttl      time.Duration
	issuer   string
	audience string
	now      func() time.Time
}

// NewTokenIssuer copies the secret so later changes to cfg do not leak in.
func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	return &TokenIssuer{
		secret:   secret,
		ttl:      ttl,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		now:      time.Now,
	}, nil
}

// WithClock returns a copy of the issuer that reads time from now.
func (ti *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	cp := *ti
	cp.now = now
	return &cp
}

// Issue builds and signs a token for username. The returned time is the
// token's expiry, truncated to the second like the exp claim.
func (ti *TokenIssuer) Issue(username string) (string, time.Time, error) {
	if username == "" {
		return "", time.Time{}, fmt.Errorf("failed to issue token: %w", ErrInvalidClaims)
	}

	issuedAt := ti.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(ti.ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    ti.issuer,
		},
		Name: username,
	}
	if ti.audience != "" {
		claims.Audience = jwt.ClaimStrings{ti.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate parses tokenString, checks the signature and the expiry, and
// returns its claims.
func (ti *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrNoToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(ti.now),
		jwt.WithExpirationRequired(),
	}
	if ti.issuer != "" {
		opts = append(opts, jwt.WithIssuer(ti.issuer))
	}
	if ti.audience != "" {
		opts = append(opts, jwt.WithAudience(ti.audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return ti.secret, nil
	}, opts...)
	if err != nil {
		return nil, classifyTokenError(err)
	}
	if !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrSignatureMismatch
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}
}

// IsTokenError reports whether err is one of the token rejection reasons.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrNoToken) ||
		errors.Is(err, ErrMalformedToken) ||
		errors.Is(err, ErrSignatureMismatch) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrInvalidClaims)
}
