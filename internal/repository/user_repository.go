package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/user-service/internal/domain"
)

// UserRepository defines persistence access for managed users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	SearchByName(ctx context.Context, term string) ([]domain.User, error)
	FindByEmailDomain(ctx context.Context, emailDomain string) ([]domain.User, error)
	FindByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Count(ctx context.Context) (int64, error)
	// RecordLoginFailure increments the failed-attempt counter and locks the
	// account when the post-increment value reaches the threshold, in one
	// statement so concurrent failures against the same row cannot lose
	// updates. It returns the post-update counter and lock state.
	RecordLoginFailure(ctx context.Context, id int64, lockThreshold int) (int, bool, error)
	// RecordLoginSuccess resets the counter and stamps last_login.
	RecordLoginSuccess(ctx context.Context, id int64, at time.Time) error
}

const userColumns = `id, email, password_hash, first_name, last_name, phone, role,
        enabled, account_non_locked, failed_login_attempts, last_login, created_at`

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (email, password_hash, first_name, last_name, phone, role, enabled, account_non_locked)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.Role,
		user.Enabled,
		user.AccountNonLocked,
	).Scan(&user.ID, &user.CreatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET email=$1, password_hash=$2, first_name=$3, last_name=$4, phone=$5,
            role=$6, enabled=$7, account_non_locked=$8, failed_login_attempts=$9, last_login=$10
        WHERE id=$11`

	cmd, err := r.pool.Exec(ctx, query,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.Role,
		user.Enabled,
		user.AccountNonLocked,
		user.FailedLoginAttempts,
		user.LastLogin,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.getMany(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
}

func (r *userRepository) SearchByName(ctx context.Context, term string) ([]domain.User, error) {
	const query = `
        SELECT ` + userColumns + ` FROM users
        WHERE first_name ILIKE '%' || $1 || '%'
           OR last_name ILIKE '%' || $1 || '%'
           OR (first_name || ' ' || last_name) ILIKE '%' || $1 || '%'
        ORDER BY id`
	return r.getMany(ctx, query, term)
}

func (r *userRepository) FindByEmailDomain(ctx context.Context, emailDomain string) ([]domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email LIKE '%' || $1 ORDER BY id`
	return r.getMany(ctx, query, emailDomain)
}

func (r *userRepository) FindByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	return r.getMany(ctx, `SELECT `+userColumns+` FROM users WHERE role=$1 ORDER BY id`, role)
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email=$1)`, email).Scan(&exists)
	return exists, err
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func (r *userRepository) RecordLoginFailure(ctx context.Context, id int64, lockThreshold int) (int, bool, error) {
	const query = `
        UPDATE users SET
            failed_login_attempts = failed_login_attempts + 1,
            account_non_locked = account_non_locked AND (failed_login_attempts + 1 < $2)
        WHERE id=$1
        RETURNING failed_login_attempts, account_non_locked`

	var attempts int
	var nonLocked bool
	if err := r.pool.QueryRow(ctx, query, id, lockThreshold).Scan(&attempts, &nonLocked); err != nil {
		return 0, false, err
	}
	return attempts, !nonLocked, nil
}

func (r *userRepository) RecordLoginSuccess(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE users SET failed_login_attempts = 0, last_login = $2 WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) getOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.Role,
		&user.Enabled,
		&user.AccountNonLocked,
		&user.FailedLoginAttempts,
		&user.LastLogin,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) getMany(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.PasswordHash,
			&user.FirstName,
			&user.LastName,
			&user.Phone,
			&user.Role,
			&user.Enabled,
			&user.AccountNonLocked,
			&user.FailedLoginAttempts,
			&user.LastLogin,
			&user.CreatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
