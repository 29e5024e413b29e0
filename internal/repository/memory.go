package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/debtor-registry/internal/domain"
)

// Memory-backed implementations of the repository interfaces. They keep
// the workflow core testable without a database and mirror the Postgres
// semantics, including pgx.ErrNoRows on missing rows.

// MemoryUserRepository is an in-memory UserRepository.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewMemoryUserRepository builds an empty store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]domain.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if user, ok := r.users[id]; ok {
		copied := user
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.findBy(func(u domain.User) bool { return u.Username == username })
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.findBy(func(u domain.User) bool { return u.Email == email })
}

func (r *MemoryUserRepository) findBy(match func(domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if match(user) {
			copied := user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryUserRepository) ExpireSubscriptions(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var changed int64
	for id, user := range r.users {
		if user.Subscription && user.SubscriptionEndDate != nil && user.SubscriptionEndDate.Before(now) {
			user.Subscription = false
			user.UpdatedAt = now
			r.users[id] = user
			changed++
		}
	}
	return changed, nil
}

// MemoryRequestRepository is an in-memory RequestRepository.
type MemoryRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]domain.DebtorRequest
	nextKey  int64
}

// NewMemoryRequestRepository builds an empty store.
func NewMemoryRequestRepository() *MemoryRequestRepository {
	return &MemoryRequestRepository{requests: make(map[string]domain.DebtorRequest)}
}

func (r *MemoryRequestRepository) NextIndexKey(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextKey++
	return r.nextKey, nil
}

func (r *MemoryRequestRepository) Create(_ context.Context, req *domain.DebtorRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	r.requests[req.ID] = *req
	return nil
}

func (r *MemoryRequestRepository) Update(_ context.Context, req *domain.DebtorRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[req.ID]; !ok {
		return pgx.ErrNoRows
	}
	req.UpdatedAt = time.Now()
	r.requests[req.ID] = *req
	return nil
}

func (r *MemoryRequestRepository) GetByID(_ context.Context, id string) (*domain.DebtorRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if req, ok := r.requests[id]; ok {
		copied := req
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryRequestRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.DebtorRequest, error) {
	return r.ListWithFilter(ctx, RequestFilter{UserID: &userID, Limit: limit, Offset: offset})
}

func (r *MemoryRequestRepository) ListWithFilter(_ context.Context, filter RequestFilter) ([]domain.DebtorRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.DebtorRequest
	for _, req := range r.requests {
		if filter.UserID != nil && req.UserID != *filter.UserID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, req.Status) {
			continue
		}
		result = append(result, req)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].IndexKey < result[j].IndexKey })
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (r *MemoryRequestRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.requests, id)
	return nil
}

// MemoryDebtorRepository is an in-memory DebtorRepository.
type MemoryDebtorRepository struct {
	mu      sync.RWMutex
	debtors map[string]domain.Debtor
}

// NewMemoryDebtorRepository builds an empty store.
func NewMemoryDebtorRepository() *MemoryDebtorRepository {
	return &MemoryDebtorRepository{debtors: make(map[string]domain.Debtor)}
}

func (r *MemoryDebtorRepository) Create(_ context.Context, debtor *domain.Debtor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if debtor.ID == "" {
		debtor.ID = uuid.NewString()
	}
	now := time.Now()
	debtor.CreatedAt = now
	debtor.UpdatedAt = now
	r.debtors[debtor.ID] = *debtor
	return nil
}

func (r *MemoryDebtorRepository) Update(_ context.Context, debtor *domain.Debtor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.debtors[debtor.ID]; !ok {
		return pgx.ErrNoRows
	}
	debtor.UpdatedAt = time.Now()
	r.debtors[debtor.ID] = *debtor
	return nil
}

func (r *MemoryDebtorRepository) GetByID(_ context.Context, id string) (*domain.Debtor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if debtor, ok := r.debtors[id]; ok {
		copied := debtor
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryDebtorRepository) GetByOwnerAndKey(_ context.Context, userID string, indexKey int64) (*domain.Debtor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, debtor := range r.debtors {
		if debtor.UserID == userID && debtor.IndexKey == indexKey {
			copied := debtor
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryDebtorRepository) List(_ context.Context, limit, offset int) ([]domain.Debtor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Debtor, 0, len(r.debtors))
	for _, debtor := range r.debtors {
		result = append(result, debtor)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].IndexKey < result[j].IndexKey })
	if limit <= 0 {
		limit = 100
	}
	return paginate(result, limit, offset), nil
}

func (r *MemoryDebtorRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.debtors[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.debtors, id)
	return nil
}

// memoryTransactor serializes workflow operations over the shared
// memory stores. There is no rollback; callers validate before they
// mutate, which the workflow service does.
type memoryTransactor struct {
	mu     sync.Mutex
	stores Stores
}

// NewMemoryStores wires a full in-memory store set with a Transactor.
func NewMemoryStores() (Stores, Transactor) {
	stores := Stores{
		Users:    NewMemoryUserRepository(),
		Requests: NewMemoryRequestRepository(),
		Debtors:  NewMemoryDebtorRepository(),
	}
	return stores, &memoryTransactor{stores: stores}
}

func (t *memoryTransactor) InTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx, t.stores)
}

func containsStatus(statuses []domain.RequestStatus, status domain.RequestStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
