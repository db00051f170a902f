package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/config"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/repository"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// VerifyResult classifies the outcome of a credential check. UserNotFound and
// BadPassword stay distinct internally; the HTTP layer collapses them into one
// message so login responses never leak account existence.
type VerifyResult int

const (
	VerifySuccess VerifyResult = iota
	VerifyUserNotFound
	VerifyBadPassword
	VerifyAccountLocked
	VerifyAccountDisabled
	VerifyNoPassword
)

func (r VerifyResult) String() string {
	switch r {
	case VerifySuccess:
		return "SUCCESS"
	case VerifyUserNotFound:
		return "USER_NOT_FOUND"
	case VerifyBadPassword:
		return "BAD_PASSWORD"
	case VerifyAccountLocked:
		return "ACCOUNT_LOCKED"
	case VerifyAccountDisabled:
		return "ACCOUNT_DISABLED"
	case VerifyNoPassword:
		return "NO_PASSWORD_SET"
	default:
		return "UNKNOWN"
	}
}

// LoginResult carries everything a successful login produces. On any result
// other than VerifySuccess the remaining fields besides Result are zero.
type LoginResult struct {
	Result    VerifyResult
	User      *domain.User
	Session   *domain.Session
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates credential verification, account lockout and the
// single-session-per-user policy.
type AuthService struct {
	users           repository.UserRepository
	sessions        repository.SessionRepository
	hasher          auth.PasswordHasher
	tokens          *auth.TokenManager
	logger          *zap.Logger
	maxFailedLogins int
}

// AuthDependencies encapsulates collaborator requirements for the auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	SessionRepo repository.SessionRepository
	Hasher      auth.PasswordHasher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies, logger *zap.Logger) *AuthService {
	maxFailed := cfg.MaxFailedLogins
	if maxFailed <= 0 {
		maxFailed = 5
	}
	return &AuthService{
		users:           deps.UserRepo,
		sessions:        deps.SessionRepo,
		hasher:          deps.Hasher,
		tokens:          auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		logger:          logger,
		maxFailedLogins: maxFailed,
	}
}

// Verify authenticates email+password against the stored digest and updates
// the account security state. A failed comparison durably increments the
// failed-attempt counter and may lock the account in the same update; a
// successful one resets the counter and stamps last_login. The returned error
// reports collaborator failures only, never an authentication outcome.
func (s *AuthService) Verify(ctx context.Context, email, password string) (VerifyResult, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return VerifyUserNotFound, nil, nil
		}
		return VerifyUserNotFound, nil, err
	}

	if user.PasswordHash == "" {
		return VerifyNoPassword, user, nil
	}
	if !user.Enabled {
		return VerifyAccountDisabled, user, nil
	}
	if !user.AccountNonLocked {
		return VerifyAccountLocked, user, nil
	}

	if !s.hasher.Matches(password, user.PasswordHash) {
		attempts, locked, err := s.users.RecordLoginFailure(ctx, user.ID, s.maxFailedLogins)
		if err != nil {
			return VerifyBadPassword, user, err
		}
		user.FailedLoginAttempts = attempts
		user.AccountNonLocked = !locked
		if locked {
			s.logger.Warn("account locked after repeated failed logins",
				zap.Int64("user_id", user.ID),
				zap.Int("failed_attempts", attempts))
		}
		return VerifyBadPassword, user, nil
	}

	now := time.Now()
	if err := s.users.RecordLoginSuccess(ctx, user.ID, now); err != nil {
		return VerifySuccess, user, err
	}
	user.FailedLoginAttempts = 0
	user.LastLogin = &now
	return VerifySuccess, user, nil
}

// Login verifies credentials and, on success, supersedes any existing valid
// session for the user before issuing a token bound to the new session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	result, user, err := s.Verify(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if result != VerifySuccess {
		return &LoginResult{Result: result}, nil
	}

	session, err := s.sessions.Replace(ctx, user.ID, uuid.NewString(), time.Now())
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Role, session.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID))
	return &LoginResult{
		Result:    VerifySuccess,
		User:      user,
		Session:   session,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Logout invalidates exactly the given session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Invalidate(ctx, sessionID)
}

// ActiveSession returns the user's current valid session, if any. At most one
// exists because Login replaces rather than appends.
func (s *AuthService) ActiveSession(ctx context.Context, userID int64) (*domain.Session, error) {
	session, err := s.sessions.FindValidByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("session", map[string]any{"user_id": userID})
		}
		return nil, err
	}
	return session, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}
