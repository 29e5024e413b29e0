package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/debtor-registry/internal/domain"
)

// UserRepository defines persistence access for account holders.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// ExpireSubscriptions clears the subscription flag for users whose
	// end date is before now, returning how many rows changed.
	ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error)
}

type userRepository struct {
	db Querier
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db Querier) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, name, surname, age, email, password_hash, tg_account,
               subscription, subscription_end_date, is_active, is_staff, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (username, name, surname, age, email, password_hash, tg_account, subscription, subscription_end_date, is_active, is_staff)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		user.Username,
		user.Name,
		user.Surname,
		user.Age,
		user.Email,
		user.PasswordHash,
		user.TelegramAccount,
		user.Subscription,
		user.SubscriptionEndDate,
		user.IsActive,
		user.IsStaff,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET username=$1, name=$2, surname=$3, age=$4, email=$5, password_hash=$6,
            tg_account=$7, subscription=$8, subscription_end_date=$9, is_active=$10, is_staff=$11, updated_at=NOW()
        WHERE id=$12`

	cmd, err := r.db.Exec(ctx, query,
		user.Username,
		user.Name,
		user.Surname,
		user.Age,
		user.Email,
		user.PasswordHash,
		user.TelegramAccount,
		user.Subscription,
		user.SubscriptionEndDate,
		user.IsActive,
		user.IsStaff,
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

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`, username)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Name,
		&user.Surname,
		&user.Age,
		&user.Email,
		&user.PasswordHash,
		&user.TelegramAccount,
		&user.Subscription,
		&user.SubscriptionEndDate,
		&user.IsActive,
		&user.IsStaff,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	const query = `
        UPDATE users SET subscription=FALSE, updated_at=NOW()
        WHERE subscription=TRUE AND subscription_end_date IS NOT NULL AND subscription_end_date < $1`

	cmd, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
