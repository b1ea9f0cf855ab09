// Package auth provides authentication and authorization functionality.
//
// It implements password hashing, JWT token management and the HTTP guards
// that protect the API routes.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/apsx/clinic-api/internal/constants"
)

// PasswordConfig holds settings for password hashing.
type PasswordConfig struct {
	// Cost is the bcrypt cost factor. Higher is slower and stronger.
	Cost int
}

// DefaultPasswordConfig returns the production hashing configuration.
func DefaultPasswordConfig() *PasswordConfig {
	return &PasswordConfig{Cost: constants.DefaultBcryptCost}
}

// HashPassword hashes a plaintext password with bcrypt. The returned digest
// embeds the salt and cost, so it is the only value that needs storing.
func HashPassword(password string, cfg *PasswordConfig) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	if cfg == nil {
		cfg = DefaultPasswordConfig()
	}

	cost := cfg.Cost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = constants.DefaultBcryptCost
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(digest), nil
}

// CheckPassword verifies a plaintext password against a stored bcrypt digest.
// The comparison is constant time with respect to the password contents.
func CheckPassword(password, digest string) (bool, error) {
	if password == "" || digest == "" {
		return false, nil
	}

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("failed to verify password: %w", err)
	}

	return true, nil
}
