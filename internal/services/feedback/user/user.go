package user

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/emojifeedback/internal/platform/errors"
)

const (
	// MinPasswordLength is the shortest accepted plaintext password.
	MinPasswordLength = 8
	// MaxPasswordLength is bcrypt's input limit in bytes.
	MaxPasswordLength = 72
)

var (
	// ErrInvalidEmail indicates an email that is empty or malformed.
	ErrInvalidEmail = apperrors.New(apperrors.CodeUserInvalidEmail, "email is invalid")
	// ErrInvalidPassword indicates a password outside the accepted length range.
	ErrInvalidPassword = apperrors.WithMetadata(apperrors.CodeUserInvalidPassword, "password length is out of range", map[string]string{
		"Min": strconv.Itoa(MinPasswordLength),
		"Max": strconv.Itoa(MaxPasswordLength),
	})
	// ErrInvalidRole indicates a role outside the closed set.
	ErrInvalidRole = apperrors.New(apperrors.CodeUserInvalidRole, "role is invalid")

	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)
)

// User is an account that can authenticate and submit feedback.
type User struct {
	ID int64
	// Email is unique and compared case-sensitively.
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Role is the closed set of account privilege levels.
type Role int

const (
	// RoleUnspecified is the zero value and never persisted.
	RoleUnspecified Role = iota
	RoleAdmin
	RoleUser
	RoleGuest
)

// String returns the persisted name of r.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "ADMIN"
	case RoleUser:
		return "USER"
	case RoleGuest:
		return "GUEST"
	default:
		return "UNSPECIFIED"
	}
}

// Valid reports whether r is one of the persisted roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser || r == RoleGuest
}

// ParseRole maps a persisted or user-supplied role name to a Role.
func ParseRole(value string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "ADMIN":
		return RoleAdmin, nil
	case "USER":
		return RoleUser, nil
	case "GUEST":
		return RoleGuest, nil
	default:
		return RoleUnspecified, ErrInvalidRole
	}
}

// NormalizeEmail trims surrounding whitespace and validates the shape of
// email. Case is preserved.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || !emailPattern.MatchString(email) {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// ValidatePassword enforces the accepted plaintext length range.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return ErrInvalidPassword
	}
	return nil
}
