package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/debtor-registry/internal/domain"
)

// RequestFilter captures operator search parameters over staging rows.
type RequestFilter struct {
	UserID   *string
	Statuses []domain.RequestStatus
	Limit    int
	Offset   int
}

// RequestRepository encapsulates staging-row persistence.
type RequestRepository interface {
	// NextIndexKey draws the next value from the index-key sequence.
	// Values are monotonic and never handed out twice, including after
	// the row holding one was deleted.
	NextIndexKey(ctx context.Context) (int64, error)
	Create(ctx context.Context, req *domain.DebtorRequest) error
	Update(ctx context.Context, req *domain.DebtorRequest) error
	GetByID(ctx context.Context, id string) (*domain.DebtorRequest, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.DebtorRequest, error)
	ListWithFilter(ctx context.Context, filter RequestFilter) ([]domain.DebtorRequest, error)
	Delete(ctx context.Context, id string) error
}

type requestRepository struct {
	db Querier
}

// NewRequestRepository instantiates repository.
func NewRequestRepository(db Querier) RequestRepository {
	return &requestRepository{db: db}
}

const requestColumns = `id, user_id, name, surname, amount_cents, address, region, city, document,
               status, rejection_reason, deletion_reason, deletion_document, change_note, index_key, canonical_id, created_at, updated_at`

func (r *requestRepository) NextIndexKey(ctx context.Context) (int64, error) {
	var key int64
	if err := r.db.QueryRow(ctx, `SELECT nextval('debtor_request_index_seq')`).Scan(&key); err != nil {
		return 0, fmt.Errorf("next index key: %w", err)
	}
	return key, nil
}

func (r *requestRepository) Create(ctx context.Context, req *domain.DebtorRequest) error {
	const query = `
        INSERT INTO debtor_requests (user_id, name, surname, amount_cents, address, region, city, document, status, rejection_reason, deletion_reason, deletion_document, change_note, index_key, canonical_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		req.UserID,
		req.Name,
		req.Surname,
		req.AmountCents,
		req.Address,
		req.Region,
		req.City,
		req.Document,
		req.Status,
		req.RejectionReason,
		req.DeletionReason,
		req.DeletionDocument,
		req.ChangeNote,
		req.IndexKey,
		req.CanonicalID,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
}

func (r *requestRepository) Update(ctx context.Context, req *domain.DebtorRequest) error {
	const query = `
        UPDATE debtor_requests SET name=$1, surname=$2, amount_cents=$3, address=$4, region=$5, city=$6,
            document=$7, status=$8, rejection_reason=$9, deletion_reason=$10, deletion_document=$11, change_note=$12, canonical_id=$13, updated_at=NOW()
        WHERE id=$14`

	cmd, err := r.db.Exec(ctx, query,
		req.Name,
		req.Surname,
		req.AmountCents,
		req.Address,
		req.Region,
		req.City,
		req.Document,
		req.Status,
		req.RejectionReason,
		req.DeletionReason,
		req.DeletionDocument,
		req.ChangeNote,
		req.CanonicalID,
		req.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.DebtorRequest, error) {
	var req domain.DebtorRequest
	if err := scanRequest(r.db.QueryRow(ctx, `SELECT `+requestColumns+` FROM debtor_requests WHERE id=$1`, id), &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.DebtorRequest, error) {
	return r.ListWithFilter(ctx, RequestFilter{UserID: &userID, Limit: limit, Offset: offset})
}

func (r *requestRepository) ListWithFilter(ctx context.Context, filter RequestFilter) ([]domain.DebtorRequest, error) {
	base := `SELECT ` + requestColumns + ` FROM debtor_requests`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DebtorRequest
	for rows.Next() {
		var req domain.DebtorRequest
		if err := scanRequest(rows, &req); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}

func (r *requestRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM debtor_requests WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanRequest(row pgx.Row, req *domain.DebtorRequest) error {
	return row.Scan(
		&req.ID,
		&req.UserID,
		&req.Name,
		&req.Surname,
		&req.AmountCents,
		&req.Address,
		&req.Region,
		&req.City,
		&req.Document,
		&req.Status,
		&req.RejectionReason,
		&req.DeletionReason,
		&req.DeletionDocument,
		&req.ChangeNote,
		&req.IndexKey,
		&req.CanonicalID,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
}
