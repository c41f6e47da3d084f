package events

import (
	"time"

	"github.com/spec-kit/admin-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered             EventType = "user_registered"
	EventUserUpdated                EventType = "user_updated"
	EventUserRoleChanged            EventType = "user_role_changed"
	EventUserActivationChanged      EventType = "user_activation_changed"
	EventUserDeleted                EventType = "user_deleted"
	EventPasswordResetRequested     EventType = "password_reset_requested"
	EventPasswordChanged            EventType = "password_changed"
	EventEmailVerificationRequested EventType = "email_verification_requested"
	EventEmailVerified              EventType = "email_verified"
)

// Actor encapsulates who triggered the event; nil ActorID means the account
// owner acted on themselves (or the caller was anonymous, e.g. reset request).
type Actor struct {
	ActorID *string      `json:"actor_id,omitempty"`
	Role    *domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// UserRoleChangedPayload payload.
type UserRoleChangedPayload struct {
	OldRole domain.Role `json:"old_role"`
	NewRole domain.Role `json:"new_role"`
}

// UserActivationChangedPayload payload.
type UserActivationChangedPayload struct {
	Active bool `json:"active"`
}

// PasswordResetRequestedPayload payload.
type PasswordResetRequestedPayload struct {
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// EmailVerificationRequestedPayload payload.
type EmailVerificationRequestedPayload struct {
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
