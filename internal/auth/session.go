package auth

import (
	"context"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/admin-service/internal/domain"
)

// UserSource supplies the live user record consulted during validation.
type UserSource interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// SessionAuthorizer turns bearer tokens into verified sessions. It keeps no
// state: every decision is a function of the token, the current user record
// and the clock.
type SessionAuthorizer struct {
	tokens *TokenManager
	users  UserSource
}

// NewSessionAuthorizer constructs the authorizer.
func NewSessionAuthorizer(tokens *TokenManager, users UserSource) *SessionAuthorizer {
	return &SessionAuthorizer{tokens: tokens, users: users}
}

// ValidateToken runs the full validation pipeline: signature and structure,
// expiry, live user lookup, active flag, and password rotation. Every
// rejection is a tagged result; no error escapes to the caller.
func (a *SessionAuthorizer) ValidateToken(ctx context.Context, tokenStr string) domain.SessionResult {
	claims, err := a.tokens.ParseToken(tokenStr)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.SessionResult{Status: domain.SessionExpired, Reason: "token expired"}
		}
		return domain.SessionResult{Status: domain.SessionBadToken, Reason: err.Error()}
	}

	user, err := a.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return domain.SessionResult{Status: domain.SessionUserNotFound, Reason: "user lookup failed"}
	}

	return Evaluate(claims, user, time.Now())
}

// SessionFromToken is a convenience wrapper discarding rejection detail.
func (a *SessionAuthorizer) SessionFromToken(ctx context.Context, tokenStr string) *domain.SessionData {
	result := a.ValidateToken(ctx, tokenStr)
	return result.Session
}

// Evaluate decides token validity from parsed claims, the current user
// record and the given clock. Exposed separately so each rejection reason is
// testable without signing real tokens.
func Evaluate(claims *Claims, user *domain.User, now time.Time) domain.SessionResult {
	if claims.ExpiresAt != nil && now.After(claims.ExpiresAt.Time) {
		return domain.SessionResult{Status: domain.SessionExpired, Reason: "token expired"}
	}
	if user == nil {
		return domain.SessionResult{Status: domain.SessionUserNotFound, Reason: "user not found"}
	}
	if !user.IsActive {
		return domain.SessionResult{Status: domain.SessionUserInactive, Reason: "account deactivated"}
	}

	// JWT timestamps are second-granular; truncate before the strictly-after
	// comparison so a token minted in the same second as the change survives.
	if user.PasswordChangedAt.Truncate(time.Second).After(time.Unix(claims.PasswordChangedAt, 0)) {
		return domain.SessionResult{Status: domain.SessionPasswordRotated, Reason: "password changed after token was issued"}
	}

	return domain.SessionResult{
		Status: domain.SessionValid,
		Session: &domain.SessionData{
			UserID:            user.ID,
			Email:             user.Email,
			Role:              user.Role,
			EmailVerified:     user.EmailVerified,
			PasswordChangedAt: user.PasswordChangedAt,
		},
	}
}
