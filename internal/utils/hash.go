package utils

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes the given plaintext password with bcrypt using the
// provided cost. A cost of zero selects bcrypt.DefaultCost.
//
// Parameters:
//
//	password - plaintext password to hash
//	cost     - bcrypt cost factor; 0 means bcrypt.DefaultCost
//
// Returns:
//
//	string - the bcrypt hash, safe to store
//	error  - non-nil if the password is empty or hashing fails
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", errors.New("empty password")
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("error occurred during hashing password: %w", err)
	}

	return string(hash), nil
}

// VerifyPassword compares the stored bcrypt hash with the given plaintext
// password. Returns nil on match and a non-nil error on mismatch or on a
// malformed hash.
func VerifyPassword(hash string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
