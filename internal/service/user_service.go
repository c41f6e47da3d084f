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

// UserService covers the admin-side account operations.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	bcryptCost int
}

// NewUserService builds the service.
func NewUserService(cfg config.Config, users repository.UserRepository, dispatcher events.Dispatcher) *UserService {
	return &UserService{
		users:      users,
		dispatcher: dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// List returns a page of accounts plus the total count.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]*domain.User, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	return s.users.List(ctx, limit, offset)
}

// Get fetches one account by id.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// Create provisions an account on behalf of an admin.
func (s *UserService) Create(ctx context.Context, actorID, name, email, password string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", nil)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if err != nil && err != pgx.ErrNoRows {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserRegistered, user.ID, actorID,
		events.UserRegisteredPayload{Email: user.Email, Role: user.Role})
	return user, nil
}

// UpdateProfile changes name and/or email.
func (s *UserService) UpdateProfile(ctx context.Context, actorID, id string, name, email *string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		user.Name = *name
	}
	if email != nil && *email != user.Email {
		if _, err := s.users.GetByEmail(ctx, *email); err == nil {
			return nil, apperrors.NewConflict("email already registered", nil)
		} else if err != pgx.ErrNoRows {
			return nil, err
		}
		user.Email = *email
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserUpdated, user.ID, actorID, nil)
	return user, nil
}

// Delete removes the account permanently.
func (s *UserService) Delete(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return apperrors.NewValidationError("cannot delete own account", nil)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.EventUserDeleted, id, actorID, nil)
	return nil
}

// ChangeRole moves the account to the given role.
func (s *UserService) ChangeRole(ctx context.Context, actorID, id string, role domain.Role) error {
	if !role.Valid() {
		return apperrors.NewValidationError("unknown role", nil)
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == role {
		return nil
	}
	if actorID == id && role != domain.RoleAdmin {
		return apperrors.NewValidationError("cannot demote own account", nil)
	}
	if err := s.users.SetRole(ctx, id, role); err != nil {
		return err
	}

	s.publish(ctx, events.EventUserRoleChanged, id, actorID,
		events.UserRoleChangedPayload{OldRole: user.Role, NewRole: role})
	return nil
}

// SetActive activates or deactivates the account. Deactivation takes effect
// immediately: the session authorizer rejects tokens of inactive accounts on
// their next request.
func (s *UserService) SetActive(ctx context.Context, actorID, id string, active bool) error {
	if actorID == id && !active {
		return apperrors.NewValidationError("cannot deactivate own account", nil)
	}
	if err := s.users.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.publish(ctx, events.EventUserActivationChanged, id, actorID,
		events.UserActivationChangedPayload{Active: active})
	return nil
}

func (s *UserService) publish(ctx context.Context, eventType events.EventType, userID, actorID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	actor := events.Actor{}
	if actorID != "" {
		actor.ActorID = &actorID
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Actor:     actor,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
