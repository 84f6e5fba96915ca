// api/auth/password.go
package auth

import (
	"golang.org/x/crypto/bcrypt"

	fintrack_errors "github.com/fintrack-app/api/errors"
)

// PasswordVerifier compares a stored hash against a login attempt. The
// hashing scheme is owned by the identity team; this layer only needs the
// comparison.
type PasswordVerifier interface {
	Verify(hash, password string) error
}

type BcryptVerifier struct{}

func (BcryptVerifier) Verify(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return fintrack_errors.ErrInvalidCredential
	}
	return nil
}
