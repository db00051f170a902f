package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/authz"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/events"
	"github.com/spec-kit/user-service/internal/repository"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// UserService implements user CRUD and the administrative account operations,
// emitting lifecycle events for create/update/delete.
type UserService struct {
	users      repository.UserRepository
	hasher     auth.PasswordHasher
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, hasher auth.PasswordHasher, dispatcher events.Dispatcher, logger *zap.Logger) *UserService {
	return &UserService{users: users, hasher: hasher, dispatcher: dispatcher, logger: logger}
}

// UserUpdate carries the mutable profile fields. Password and Role are applied
// only when set.
type UserUpdate struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
	Role      *domain.Role
}

// CreateUser persists a new user. The email must be unused, the password is
// hashed before persistence and a missing role defaults to USER (the only
// opportunistic integrity repair).
func (s *UserService) CreateUser(ctx context.Context, user *domain.User, plainPassword string) (*domain.User, error) {
	exists, err := s.users.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflict(
			fmt.Sprintf("user with email %s already exists", user.Email),
			map[string]any{"email": user.Email})
	}

	if plainPassword != "" {
		hash, err := s.hasher.Hash(plainPassword)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if user.Role == "" {
		user.Role = domain.RoleUser
	} else if _, err := domain.ParseRole(string(user.Role)); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}

	user.Enabled = true
	user.AccountNonLocked = true

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.emitUserEvent(ctx, events.EventUserCreated, user,
		fmt.Sprintf("user %s created with email %s", user.FullName(), user.Email))
	return user, nil
}

// GetUser returns a user by ID.
func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserErr(err, id)
	}
	return user, nil
}

// GetUserByEmail returns a user by email.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return nil, err
	}
	return user, nil
}

// ListUsers returns all users.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// UpdateUser applies a profile update, enforcing email uniqueness on change.
func (s *UserService) UpdateUser(ctx context.Context, id int64, update UserUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserErr(err, id)
	}

	if update.Email != "" && update.Email != user.Email {
		exists, err := s.users.ExistsByEmail(ctx, update.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.NewConflict(
				fmt.Sprintf("email %s is already in use", update.Email),
				map[string]any{"email": update.Email})
		}
		user.Email = update.Email
	}

	if update.FirstName != "" {
		user.FirstName = update.FirstName
	}
	if update.LastName != "" {
		user.LastName = update.LastName
	}
	if update.Phone != "" {
		user.Phone = update.Phone
	}
	if update.Password != "" {
		hash, err := s.hasher.Hash(update.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if update.Role != nil {
		if _, err := domain.ParseRole(string(*update.Role)); err != nil {
			return nil, apperrors.NewValidationError(err.Error(), nil)
		}
		user.Role = *update.Role
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapUserErr(err, id)
	}

	s.emitUserEvent(ctx, events.EventUserUpdated, user,
		fmt.Sprintf("user %s updated with email %s", user.FullName(), user.Email))
	return user, nil
}

// DeleteUser removes a user permanently. The deletion event is emitted before
// the record disappears so the payload still names the user.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return mapUserErr(err, id)
	}

	s.emitUserEvent(ctx, events.EventUserDeleted, user,
		fmt.Sprintf("user %s with email %s was deleted", user.FullName(), user.Email))

	if err := s.users.Delete(ctx, id); err != nil {
		return mapUserErr(err, id)
	}
	return nil
}

// SearchUsersByName matches against first, last and full name.
func (s *UserService) SearchUsersByName(ctx context.Context, term string) ([]domain.User, error) {
	return s.users.SearchByName(ctx, term)
}

// UsersByEmailDomain lists users whose email ends with the given domain.
func (s *UserService) UsersByEmailDomain(ctx context.Context, emailDomain string) ([]domain.User, error) {
	return s.users.FindByEmailDomain(ctx, emailDomain)
}

// UsersByRole lists users holding the given role.
func (s *UserService) UsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	return s.users.FindByRole(ctx, role)
}

// CountUsers returns the total number of users.
func (s *UserService) CountUsers(ctx context.Context) (int64, error) {
	return s.users.Count(ctx)
}

// EmailExists reports whether any user holds the email.
func (s *UserService) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.users.ExistsByEmail(ctx, email)
}

// SetUserEnabled toggles the enabled flag.
func (s *UserService) SetUserEnabled(ctx context.Context, id int64, enabled bool) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return mapUserErr(err, id)
	}
	user.Enabled = enabled
	return s.users.Update(ctx, user)
}

// SetUserLocked locks or unlocks the account. Unlocking also resets the
// failed-attempt counter; there is no time-based auto-unlock.
func (s *UserService) SetUserLocked(ctx context.Context, id int64, locked bool) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return mapUserErr(err, id)
	}
	user.AccountNonLocked = !locked
	if !locked {
		user.FailedLoginAttempts = 0
	}
	return s.users.Update(ctx, user)
}

// ChangeUserRole assigns a new role.
func (s *UserService) ChangeUserRole(ctx context.Context, id int64, role domain.Role) error {
	if _, err := domain.ParseRole(string(role)); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return mapUserErr(err, id)
	}
	user.Role = role
	return s.users.Update(ctx, user)
}

// ChangePassword replaces the stored digest.
func (s *UserService) ChangePassword(ctx context.Context, id int64, newPassword string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return mapUserErr(err, id)
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}

// CanAccessReports is the injected predicate for report endpoints: managers
// and admins qualify.
func (s *UserService) CanAccessReports(p *authz.Principal) (bool, error) {
	if p == nil {
		return false, nil
	}
	return p.Role == domain.RoleManager || p.Role == domain.RoleAdmin, nil
}

func (s *UserService) emitUserEvent(ctx context.Context, eventType events.EventType, user *domain.User, details string) {
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    strconv.FormatInt(user.ID, 10),
		Timestamp: time.Now(),
		Payload: events.UserEventPayload{
			Email:    user.Email,
			FullName: user.FullName(),
			Role:     string(user.Role),
			Details:  details,
		},
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to dispatch user event",
			zap.String("event_type", string(eventType)),
			zap.Error(err))
	}
}

func mapUserErr(err error, id int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("user", map[string]any{"id": id})
	}
	return err
}
