package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/debtor-registry/internal/domain"
)

// DebtorRepository encapsulates canonical debtor persistence.
type DebtorRepository interface {
	Create(ctx context.Context, debtor *domain.Debtor) error
	Update(ctx context.Context, debtor *domain.Debtor) error
	GetByID(ctx context.Context, id string) (*domain.Debtor, error)
	// GetByOwnerAndKey correlates a canonical row with a staging row by
	// (owner, index key). Used as fallback when the staging row carries
	// no canonical reference.
	GetByOwnerAndKey(ctx context.Context, userID string, indexKey int64) (*domain.Debtor, error)
	List(ctx context.Context, limit, offset int) ([]domain.Debtor, error)
	Delete(ctx context.Context, id string) error
}

type debtorRepository struct {
	db Querier
}

// NewDebtorRepository instantiates repository.
func NewDebtorRepository(db Querier) DebtorRepository {
	return &debtorRepository{db: db}
}

const debtorColumns = `id, user_id, name, surname, amount_cents, address, region, city, index_key, created_at, updated_at`

func (r *debtorRepository) Create(ctx context.Context, debtor *domain.Debtor) error {
	const query = `
        INSERT INTO debtors (user_id, name, surname, amount_cents, address, region, city, index_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		debtor.UserID,
		debtor.Name,
		debtor.Surname,
		debtor.AmountCents,
		debtor.Address,
		debtor.Region,
		debtor.City,
		debtor.IndexKey,
	).Scan(&debtor.ID, &debtor.CreatedAt, &debtor.UpdatedAt)
}

func (r *debtorRepository) Update(ctx context.Context, debtor *domain.Debtor) error {
	const query = `
        UPDATE debtors SET name=$1, surname=$2, amount_cents=$3, address=$4, region=$5, city=$6, updated_at=NOW()
        WHERE id=$7`

	cmd, err := r.db.Exec(ctx, query,
		debtor.Name,
		debtor.Surname,
		debtor.AmountCents,
		debtor.Address,
		debtor.Region,
		debtor.City,
		debtor.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *debtorRepository) GetByID(ctx context.Context, id string) (*domain.Debtor, error) {
	return r.fetchSingle(ctx, `SELECT `+debtorColumns+` FROM debtors WHERE id=$1`, id)
}

func (r *debtorRepository) GetByOwnerAndKey(ctx context.Context, userID string, indexKey int64) (*domain.Debtor, error) {
	return r.fetchSingle(ctx, `SELECT `+debtorColumns+` FROM debtors WHERE user_id=$1 AND index_key=$2`, userID, indexKey)
}

func (r *debtorRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Debtor, error) {
	var debtor domain.Debtor
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&debtor.ID,
		&debtor.UserID,
		&debtor.Name,
		&debtor.Surname,
		&debtor.AmountCents,
		&debtor.Address,
		&debtor.Region,
		&debtor.City,
		&debtor.IndexKey,
		&debtor.CreatedAt,
		&debtor.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &debtor, nil
}

func (r *debtorRepository) List(ctx context.Context, limit, offset int) ([]domain.Debtor, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.Query(ctx, `SELECT `+debtorColumns+` FROM debtors ORDER BY index_key LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Debtor
	for rows.Next() {
		var debtor domain.Debtor
		if err := rows.Scan(
			&debtor.ID,
			&debtor.UserID,
			&debtor.Name,
			&debtor.Surname,
			&debtor.AmountCents,
			&debtor.Address,
			&debtor.Region,
			&debtor.City,
			&debtor.IndexKey,
			&debtor.CreatedAt,
			&debtor.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, debtor)
	}
	return result, rows.Err()
}

func (r *debtorRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM debtors WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
