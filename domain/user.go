package domain

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// User represents an authenticated identity in the platform.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// PublicUser is the only user shape that leaves the service.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Public strips everything but the id and email.
func (u *User) Public() PublicUser {
	if u == nil {
		return PublicUser{}
	}
	return PublicUser{ID: u.ID, Email: u.Email}
}

// Credentials is a validated email/password pair.
type Credentials struct {
	Email    string
	Password string
}

// ParseCredentials validates an email/password pair. When requireStrength is set
// the password must also satisfy the registration length rule.
func ParseCredentials(email, password string, requireStrength bool) (Credentials, error) {
	if !isEmail(email) {
		return Credentials{}, NewValidationError("email", "invalid email address")
	}
	if requireStrength && utf8.RuneCountInString(password) < MinPasswordLength {
		return Credentials{}, NewValidationError("password", "must contain at least 6 characters")
	}
	return Credentials{Email: email, Password: password}, nil
}

func isEmail(value string) bool {
	if value == "" || strings.TrimSpace(value) != value {
		return false
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return false
	}
	at := strings.LastIndexByte(value, '@')
	return at > 0 && strings.Contains(value[at+1:], ".")
}
