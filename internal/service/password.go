package service

import (
	"errors"

	"sales-admin/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor for bcrypt hashing
const BcryptCost = 10

// MaxPasswordBytes is the longest input bcrypt accepts
const MaxPasswordBytes = 72

var ErrPasswordTooLong = domain.NewError(domain.ErrValidation, "Password must be at most %d bytes", MaxPasswordBytes)

// hashPassword hashes a password using bcrypt with BcryptCost
func hashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", err
	}
	return string(hashedBytes), nil
}

// verifyPassword verifies a password against a bcrypt hash
func verifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
