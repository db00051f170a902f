package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/events"
)

// memUserRepo is an in-memory UserRepository for tests.
type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[int64]*domain.User)}
}

func (r *memUserRepo) add(user *domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	clone := *user
	r.users[user.ID] = &clone
	return user
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.add(user)
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for id := int64(1); id < r.nextID; id++ {
		if user, ok := r.users[id]; ok {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (r *memUserRepo) SearchByName(_ context.Context, term string) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lowered := strings.ToLower(term)
	var out []domain.User
	for id := int64(1); id < r.nextID; id++ {
		user, ok := r.users[id]
		if !ok {
			continue
		}
		full := strings.ToLower(user.FirstName + " " + user.LastName)
		if strings.Contains(full, lowered) {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (r *memUserRepo) FindByEmailDomain(_ context.Context, emailDomain string) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for id := int64(1); id < r.nextID; id++ {
		if user, ok := r.users[id]; ok && strings.HasSuffix(user.Email, emailDomain) {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (r *memUserRepo) FindByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for id := int64(1); id < r.nextID; id++ {
		if user, ok := r.users[id]; ok && user.Role == role {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (r *memUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *memUserRepo) RecordLoginFailure(_ context.Context, id int64, lockThreshold int) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return 0, false, pgx.ErrNoRows
	}
	user.FailedLoginAttempts++
	if user.FailedLoginAttempts >= lockThreshold {
		user.AccountNonLocked = false
	}
	return user.FailedLoginAttempts, !user.AccountNonLocked, nil
}

func (r *memUserRepo) RecordLoginSuccess(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.FailedLoginAttempts = 0
	stamp := at
	user.LastLogin = &stamp
	return nil
}

// memSessionRepo is an in-memory SessionRepository for tests.
type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *memSessionRepo) Replace(_ context.Context, userID int64, sessionID string, at time.Time) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.UserID == userID {
			session.Valid = false
		}
	}
	session := &domain.Session{ID: sessionID, UserID: userID, CreatedAt: at, Valid: true}
	r.sessions[sessionID] = session
	clone := *session
	return &clone, nil
}

func (r *memSessionRepo) Invalidate(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return pgx.ErrNoRows
	}
	session.Valid = false
	return nil
}

func (r *memSessionRepo) GetByID(_ context.Context, sessionID string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *session
	return &clone, nil
}

func (r *memSessionRepo) FindValidByUser(_ context.Context, userID int64) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.UserID == userID && session.Valid {
			clone := *session
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memSessionRepo) validCount(userID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, session := range r.sessions {
		if session.UserID == userID && session.Valid {
			count++
		}
	}
	return count
}

// fakeHasher is a transparent PasswordHasher for tests.
type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) { return "digest:" + plain, nil }

func (fakeHasher) Matches(plain, digest string) bool { return digest == "digest:"+plain }

// capturePublisher records stream publishes.
type capturePublisher struct {
	mu       sync.Mutex
	messages []capturedMessage
}

type capturedMessage struct {
	Topic   string
	Key     string
	Payload any
}

func (p *capturePublisher) Publish(topic, key string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, capturedMessage{Topic: topic, Key: key, Payload: payload})
}

func (p *capturePublisher) byTopic(topic string) []capturedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []capturedMessage
	for _, msg := range p.messages {
		if msg.Topic == topic {
			out = append(out, msg)
		}
	}
	return out
}

var _ events.Publisher = (*capturePublisher)(nil)
