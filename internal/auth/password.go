package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is used when no cost is configured.
const DefaultBcryptCost = bcrypt.DefaultCost

// HashPassword hashes a plaintext password using bcrypt with the given
// cost. Cost zero selects the bcrypt default.
func HashPassword(password string, cost int) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password is empty")
	}
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password with the stored hash.
// bcrypt performs the comparison over the full digest; it does not
// short-circuit on a prefix mismatch.
func VerifyPassword(hash, password string) error {
	if hash == "" {
		return errors.New("password hash is empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
