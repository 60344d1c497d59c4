package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/readtrack/internal/apperr"
)

const (
	// MinPasswordLength is the shortest accepted password, in bytes.
	MinPasswordLength = 9
	// MaxPasswordLength is the bcrypt input limit; accepted passwords are strictly shorter.
	MaxPasswordLength = 72

	// PasswordSpecialChars lists the characters that satisfy the special-character rule.
	PasswordSpecialChars = "!@#$%^&"
)

var ErrInvalidPassword = errors.New("invalid password")

// Password policy violations, in the order they are checked.
var (
	ErrPasswordTooShort   = apperr.Policy("Password must be longer than 8 characters")
	ErrPasswordTooLong    = apperr.Policy("Password must be less than 72 characters")
	ErrPasswordWhitespace = apperr.Policy("Password must not start or end with empty space")
	ErrPasswordComplexity = apperr.Policy("Password must contain 1 upper case, 1 lower case, 1 number, and 1 special character")
)

// ValidatePassword enforces the password policy and returns the first violation.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) >= MaxPasswordLength {
		return ErrPasswordTooLong
	}

	first, _ := utf8.DecodeRuneInString(password)
	last, _ := utf8.DecodeLastRuneInString(password)
	if unicode.IsSpace(first) || unicode.IsSpace(last) {
		return ErrPasswordWhitespace
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(PasswordSpecialChars, r):
			hasSpecial = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return ErrPasswordComplexity
	}
	return nil
}

// HashPassword creates a bcrypt hash of the password.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a password with its hash.
func CheckPassword(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidPassword
		}
		return err
	}
	return nil
}

// GenerateSecret creates a random 32-byte hex secret for token signing.
func GenerateSecret() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
