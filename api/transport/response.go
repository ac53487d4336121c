package transport

import "github.com/fastygo/tasktracker/domain"

// Envelope is the error body shared by every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewError returns an error envelope.
func NewError(message string) Envelope {
	return Envelope{Success: false, Error: message}
}

type MessageResponse struct {
	Message string `json:"message"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message      string            `json:"message"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
	User         domain.PublicUser `json:"user"`
}

type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// HealthResponse reports dependency status.
type HealthResponse struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Services  map[string]bool `json:"services"`
}
