package auth

import (
	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

func HashPassword(plain string) (string, error) {
	if len(plain) < MinPasswordLength {
		return "", domain.Validationf("password must be at least %d characters", MinPasswordLength)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(b), nil
}

// CheckPassword reports whether plain matches the stored bcrypt hash.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
