package domain

import "time"

// SessionData is the per-request view of an authenticated account. It is
// rebuilt from the token plus a live user lookup on every request and never
// cached.
type SessionData struct {
	UserID            string
	Email             string
	Role              Role
	EmailVerified     bool
	PasswordChangedAt time.Time
}

// SessionStatus names the outcome of token validation.
type SessionStatus string

const (
	SessionValid           SessionStatus = "VALID"
	SessionBadToken        SessionStatus = "BAD_TOKEN"
	SessionExpired         SessionStatus = "EXPIRED"
	SessionUserNotFound    SessionStatus = "USER_NOT_FOUND"
	SessionUserInactive    SessionStatus = "USER_INACTIVE"
	SessionPasswordRotated SessionStatus = "PASSWORD_ROTATED"
)

// SessionResult is the tagged outcome of validating a bearer token. Session
// is non-nil exactly when Status is SessionValid.
type SessionResult struct {
	Status  SessionStatus
	Session *SessionData
	Reason  string
}

// IsValid reports whether the token was accepted.
func (r SessionResult) IsValid() bool {
	return r.Status == SessionValid
}
