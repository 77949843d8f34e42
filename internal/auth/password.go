package auth

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

var ErrMismatchedPassword = errors.New("password does not match")

// PasswordPolicy describes the minimum strength a new password must have.
type PasswordPolicy struct {
	MinLength     int
	RequireDigit  bool
	RequireLower  bool
	RequireUpper  bool
	RequireSymbol bool
}

// DefaultPasswordPolicy accepts passwords such as "Secret123".
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:    6,
		RequireDigit: true,
		RequireLower: true,
		RequireUpper: true,
	}
}

// Check returns every rule the password breaks, in a stable order. An empty
// result means the password is acceptable.
func (p PasswordPolicy) Check(password string) []string {
	var hasDigit, hasLower, hasUpper, hasSymbol bool
	length := 0
	for _, r := range password {
		length++
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case !unicode.IsLetter(r):
			hasSymbol = true
		}
	}

	var violations []string
	if length < p.MinLength {
		violations = append(violations, fmt.Sprintf("Passwords must be at least %d characters.", p.MinLength))
	}
	if p.RequireDigit && !hasDigit {
		violations = append(violations, "Passwords must have at least one digit ('0'-'9').")
	}
	if p.RequireLower && !hasLower {
		violations = append(violations, "Passwords must have at least one lowercase ('a'-'z').")
	}
	if p.RequireUpper && !hasUpper {
		violations = append(violations, "Passwords must have at least one uppercase ('A'-'Z').")
	}
	if p.RequireSymbol && !hasSymbol {
		violations = append(violations, "Passwords must have at least one non alphanumeric character.")
	}
	return violations
}

// HashPassword bcrypt-hashes password with the given cost. A cost of zero
// uses bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(h), nil
}

// ComparePassword checks password against a bcrypt hash.
func ComparePassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedPassword
		}
		return err
	}
	return nil
}
