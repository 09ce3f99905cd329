package grandjeu

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Password length bounds. bcrypt refuses anything past 72 bytes.
const (
	MinPasswordLen = 6
	MaxPasswordLen = 72
)

// SignUp is a team registration form.
type SignUp struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Validate trims the form and checks it. Email is optional only when
// requireEmail is false (teams created by an organizer).
func (s *SignUp) Validate(requireEmail bool) error {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(strings.ToLower(s.Email))

	switch {
	case s.Name == "":
		return missing("name")
	case requireEmail && s.Email == "":
		return missing("email")
	case s.Password == "":
		return missing("password")
	}
	if s.Email != "" && !strings.Contains(s.Email, "@") {
		return &ValidationError{Field: "email", Reason: "is not a valid address"}
	}
	if requireEmail && s.Password != s.ConfirmPassword {
		return &ValidationError{Field: "confirmPassword", Reason: "does not match password"}
	}
	if len(s.Password) < MinPasswordLen {
		return &ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", MinPasswordLen)}
	}
	if len(s.Password) > MaxPasswordLen {
		return &ValidationError{Field: "password", Reason: fmt.Sprintf("must be at most %d bytes", MaxPasswordLen)}
	}
	return nil
}

// HashPassword bcrypts a team password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(h), nil
}

// CheckPassword returns ErrInvalidCredentials unless password matches the
// team's hash.
func (t Team) CheckPassword(password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(t.PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	return nil
}
