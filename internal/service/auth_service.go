package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/admin-service/internal/auth"
	"github.com/spec-kit/admin-service/internal/config"
	"github.com/spec-kit/admin-service/internal/domain"
	"github.com/spec-kit/admin-service/internal/events"
	"github.com/spec-kit/admin-service/internal/repository"
	apperrors "github.com/spec-kit/admin-service/pkg/util"
)

// AuthService coordinates registration, login and credential flows.
type AuthService struct {
	users         repository.UserRepository
	resets        repository.PasswordResetRepository
	verifications repository.EmailVerificationRepository
	dispatcher    events.Dispatcher
	tokenMgr      *auth.TokenManager
	bcryptCost    int
	resetTTL      time.Duration
	verifyTTL     time.Duration
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo              repository.UserRepository
	PasswordResetRepo     repository.PasswordResetRepository
	EmailVerificationRepo repository.EmailVerificationRepository
	Dispatcher            events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:         deps.UserRepo,
		resets:        deps.PasswordResetRepo,
		verifications: deps.EmailVerificationRepo,
		dispatcher:    deps.Dispatcher,
		tokenMgr:      auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost:    cfg.Auth.BcryptCost,
		resetTTL:      time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
		verifyTTL:     time.Duration(cfg.Auth.EmailVerificationTTLMinutes) * time.Minute,
	}
}

// Register creates a new account and issues a first token plus an email
// verification token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, time.Time, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if err != nil && err != pgx.ErrNoRows {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	s.publish(ctx, events.EventUserRegistered, user.ID, nil,
		events.UserRegisteredPayload{Email: user.Email, Role: user.Role})

	if _, err := s.RequestEmailVerification(ctx, user.ID); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Login authenticates an account and issues a token bound to the current
// password generation.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if !user.IsActive {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("account deactivated")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Logout is a no-op server-side: tokens are stateless and expire on their
// own or on password rotation. Kept so clients have a uniform call.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

// RequestPasswordReset persists a reset token for the account email. An
// unknown email yields no token and no error, so callers cannot probe which
// addresses have accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*repository.PasswordResetToken, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	token := &repository.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventPasswordResetRequested, user.ID, nil,
		events.PasswordResetRequestedPayload{Email: user.Email, Token: token.Token, ExpiresAt: token.ExpiresAt})
	return token, nil
}

// ConfirmPasswordReset validates the reset token and rotates the password,
// invalidating every previously issued session token.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err == pgx.ErrNoRows {
		return apperrors.NewValidationError("invalid token", nil)
	}
	if err != nil {
		return err
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return apperrors.NewValidationError("token expired or used", nil)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, token.UserID, hash); err != nil {
		return err
	}
	if err := s.resets.MarkUsed(ctx, token.ID); err != nil {
		return err
	}

	s.publish(ctx, events.EventPasswordChanged, token.UserID, nil, nil)
	return nil
}

// ChangePassword verifies the current password before rotating to the new
// hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewValidationError("current password does not match", nil)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	s.publish(ctx, events.EventPasswordChanged, user.ID, &user.ID, nil)
	return nil
}

// RequestEmailVerification persists a verification token for the account.
func (s *AuthService) RequestEmailVerification(ctx context.Context, userID string) (*repository.EmailVerificationToken, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.EmailVerified {
		return nil, apperrors.NewConflict("email already verified", nil)
	}

	token := &repository.EmailVerificationToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.verifyTTL),
	}
	if err := s.verifications.Create(ctx, token); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventEmailVerificationRequested, user.ID, nil,
		events.EmailVerificationRequestedPayload{Email: user.Email, Token: token.Token, ExpiresAt: token.ExpiresAt})
	return token, nil
}

// ConfirmEmailVerification marks the account's email verified.
func (s *AuthService) ConfirmEmailVerification(ctx context.Context, tokenStr string) error {
	token, err := s.verifications.GetByToken(ctx, tokenStr)
	if err == pgx.ErrNoRows {
		return apperrors.NewValidationError("invalid token", nil)
	}
	if err != nil {
		return err
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return apperrors.NewValidationError("token expired or used", nil)
	}

	if err := s.users.SetEmailVerified(ctx, token.UserID, true); err != nil {
		return err
	}
	if err := s.verifications.MarkUsed(ctx, token.ID); err != nil {
		return err
	}

	s.publish(ctx, events.EventEmailVerified, token.UserID, nil, nil)
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, userID string, actorID *string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Actor:     events.Actor{ActorID: actorID},
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
