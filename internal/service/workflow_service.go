package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/debtor-registry/internal/config"
	"github.com/spec-kit/debtor-registry/internal/domain"
	"github.com/spec-kit/debtor-registry/internal/events"
	"github.com/spec-kit/debtor-registry/internal/repository"
	apperrors "github.com/spec-kit/debtor-registry/pkg/util"
)

// WorkflowService drives debtor requests through their lifecycle and
// promotes, updates or removes the matching canonical rows. Every
// operation that touches both stores runs inside one transaction.
type WorkflowService struct {
	requests   repository.RequestRepository
	debtors    repository.DebtorRepository
	tx         repository.Transactor
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.WorkflowConfig
}

// WorkflowDependencies bundles collaborators for the workflow service.
type WorkflowDependencies struct {
	RequestRepo repository.RequestRepository
	DebtorRepo  repository.DebtorRepository
	Transactor  repository.Transactor
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// SubmitInput describes a new debtor request. Amount arrives as text
// exactly as the user typed it.
type SubmitInput struct {
	Name     string
	Surname  string
	Amount   string
	Address  string
	Region   string
	City     string
	Document string
}

// EditInput carries a partial field set for an edit. Nil means "leave
// unchanged".
type EditInput struct {
	Name       *string
	Surname    *string
	Amount     *string
	Address    *string
	Region     *string
	City       *string
	Document   *string
	ChangeNote *string
}

// ConfirmDeletionResult reports the two-store outcome of a confirmed
// deletion.
type ConfirmDeletionResult struct {
	CanonicalRemoved bool
	IndexKey         int64
}

// NewWorkflowService constructs the service.
func NewWorkflowService(cfg config.WorkflowConfig, deps WorkflowDependencies) *WorkflowService {
	return &WorkflowService{
		requests:   deps.RequestRepo,
		debtors:    deps.DebtorRepo,
		tx:         deps.Transactor,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		cfg:        cfg,
	}
}

// Submit creates a staging row with status pending and a freshly drawn
// index key. The key is assigned here, explicitly, before the insert.
func (s *WorkflowService) Submit(ctx context.Context, userID string, input SubmitInput) (*domain.DebtorRequest, error) {
	missing := map[string]any{}
	for field, value := range map[string]string{
		"name":    input.Name,
		"surname": input.Surname,
		"address": input.Address,
		"region":  input.Region,
		"city":    input.City,
	} {
		if strings.TrimSpace(value) == "" {
			missing[field] = "required"
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("all fields are required", missing)
	}

	amount, err := domain.ParseAmountCents(input.Amount)
	if err != nil {
		return nil, apperrors.NewValidationError("amount must be a positive decimal number", map[string]any{"amount": input.Amount})
	}

	req := &domain.DebtorRequest{
		UserID:      userID,
		Name:        strings.TrimSpace(input.Name),
		Surname:     strings.TrimSpace(input.Surname),
		AmountCents: amount,
		Address:     strings.TrimSpace(input.Address),
		Region:      strings.TrimSpace(input.Region),
		City:        strings.TrimSpace(input.City),
		Document:    input.Document,
		Status:      domain.RequestStatusPending,
	}

	err = s.tx.InTx(ctx, func(ctx context.Context, st repository.Stores) error {
		key, err := st.Requests.NextIndexKey(ctx)
		if err != nil {
			return err
		}
		req.IndexKey = key
		return st.Requests.Create(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventRequestSubmitted,
		RequestID: req.ID,
		Actor:     userActor(userID),
		Payload: events.RequestSubmittedPayload{
			IndexKey:    req.IndexKey,
			Name:        req.Name,
			Surname:     req.Surname,
			AmountCents: req.AmountCents,
		},
	})
	return req, nil
}

// RequestEdit applies an owner's partial field set and re-enters review
// as an update request. When the record has already been promoted the
// outcome depends on configuration: reopen it, or refuse the edit.
func (s *WorkflowService) RequestEdit(ctx context.Context, userID, requestID string, input EditInput) (*domain.DebtorRequest, error) {
	req, err := s.getOwned(ctx, userID, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status == domain.RequestStatusAdded && !s.cfg.ReopenAdded {
		return nil, apperrors.NewInvalidState(string(req.Status), "not yet promoted")
	}
	if !domain.CanTransition(req.Status, domain.RequestStatusUpdateRequested) {
		return nil, apperrors.NewInvalidState(string(req.Status), string(domain.RequestStatusUpdateRequested))
	}

	// Parse before mutating anything so a bad amount leaves the record
	// exactly as it was.
	var amount *int64
	if input.Amount != nil {
		parsed, err := domain.ParseAmountCents(*input.Amount)
		if err != nil {
			return nil, apperrors.NewInvalidAmount(*input.Amount)
		}
		amount = &parsed
	}

	oldStatus := req.Status
	applyEdit(req, input, amount)
	req.Status = domain.RequestStatusUpdateRequested

	if err := s.requests.Update(ctx, req); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishStatusChange(ctx, userActor(userID), req.ID, oldStatus, req.Status, "")
	return req, nil
}

// RequestDeletion records the owner's reason and optional document and
// marks the row for operator confirmation.
func (s *WorkflowService) RequestDeletion(ctx context.Context, userID, requestID, reason string, document *string) (*domain.DebtorRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewMissingReason("deletion request")
	}
	req, err := s.getOwned(ctx, userID, requestID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(req.Status, domain.RequestStatusDeleting) {
		return nil, apperrors.NewInvalidState(string(req.Status), string(domain.RequestStatusDeleting))
	}

	oldStatus := req.Status
	trimmed := strings.TrimSpace(reason)
	req.DeletionReason = &trimmed
	req.DeletionDocument = document
	req.Status = domain.RequestStatusDeleting

	if err := s.requests.Update(ctx, req); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishStatusChange(ctx, userActor(userID), req.ID, oldStatus, req.Status, trimmed)
	return req, nil
}

// EditOwn mutates an owner's staging row in place without entering the
// review cycle. This is the simpler edit path; promoted rows are out of
// its reach.
func (s *WorkflowService) EditOwn(ctx context.Context, userID, requestID string, input EditInput) (*domain.DebtorRequest, error) {
	req, err := s.getOwned(ctx, userID, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status == domain.RequestStatusAdded {
		return nil, apperrors.NewInvalidState(string(req.Status), "not yet promoted")
	}

	var amount *int64
	if input.Amount != nil {
		parsed, err := domain.ParseAmountCents(*input.Amount)
		if err != nil {
			return nil, apperrors.NewInvalidAmount(*input.Amount)
		}
		amount = &parsed
	}

	applyEdit(req, input, amount)
	if err := s.requests.Update(ctx, req); err != nil {
		return nil, apperrors.MapError(err)
	}
	return req, nil
}

// DeleteOwn removes an owner's staging row outright, without operator
// involvement. The canonical store is never touched here.
func (s *WorkflowService) DeleteOwn(ctx context.Context, userID, requestID string) error {
	req, err := s.getOwned(ctx, userID, requestID)
	if err != nil {
		return err
	}
	if err := s.requests.Delete(ctx, req.ID); err != nil {
		return apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:      events.EventRequestRemoved,
		RequestID: req.ID,
		Actor:     userActor(userID),
		Payload:   events.RequestRemovedPayload{IndexKey: req.IndexKey},
	})
	return nil
}

// Approve promotes a pending request into the canonical store. The new
// debtor inherits the owner reference and index key; the staging row
// keeps a back-reference to it and becomes "added".
func (s *WorkflowService) Approve(ctx context.Context, operatorID, requestID string) (*domain.Debtor, error) {
	var debtor *domain.Debtor
	var oldStatus domain.RequestStatus

	err := s.tx.InTx(ctx, func(ctx context.Context, st repository.Stores) error {
		req, err := st.Requests.GetByID(ctx, requestID)
		if err != nil {
			return mapRequestLookup(err, requestID)
		}
		if req.Status != domain.RequestStatusPending && req.Status != domain.RequestStatusUnderReview {
			return apperrors.NewInvalidState(string(req.Status), string(domain.RequestStatusPending))
		}
		oldStatus = req.Status

		debtor = &domain.Debtor{
			UserID:      req.UserID,
			Name:        req.Name,
			Surname:     req.Surname,
			AmountCents: req.AmountCents,
			Address:     req.Address,
			Region:      req.Region,
			City:        req.City,
			IndexKey:    req.IndexKey,
		}
		if err := st.Debtors.Create(ctx, debtor); err != nil {
			return err
		}

		req.Status = domain.RequestStatusAdded
		req.CanonicalID = &debtor.ID
		return st.Requests.Update(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("request promoted to canonical store",
		zap.String("request_id", requestID),
		zap.String("debtor_id", debtor.ID),
		zap.Int64("index_key", debtor.IndexKey))
	s.publish(ctx, events.Event{
		Type:      events.EventRequestPromoted,
		RequestID: requestID,
		Actor:     operatorActor(operatorID),
		Payload:   events.RequestPromotedPayload{DebtorID: debtor.ID, IndexKey: debtor.IndexKey},
	})
	s.publishStatusChange(ctx, operatorActor(operatorID), requestID, oldStatus, domain.RequestStatusAdded, "")
	return debtor, nil
}

// Reject declines a pending request, recording the operator's reason.
func (s *WorkflowService) Reject(ctx context.Context, operatorID, requestID, reason string) (*domain.DebtorRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewMissingReason("rejection")
	}

	var req *domain.DebtorRequest
	var oldStatus domain.RequestStatus
	err := s.tx.InTx(ctx, func(ctx context.Context, st repository.Stores) error {
		var err error
		req, err = st.Requests.GetByID(ctx, requestID)
		if err != nil {
			return mapRequestLookup(err, requestID)
		}
		if req.Status != domain.RequestStatusPending && req.Status != domain.RequestStatusUnderReview {
			return apperrors.NewInvalidState(string(req.Status), string(domain.RequestStatusPending))
		}
		oldStatus = req.Status
		trimmed := strings.TrimSpace(reason)
		req.Status = domain.RequestStatusRejected
		req.RejectionReason = &trimmed
		return st.Requests.Update(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.publishStatusChange(ctx, operatorActor(operatorID), requestID, oldStatus, domain.RequestStatusRejected, *req.RejectionReason)
	return req, nil
}

// ConfirmDeletion removes the staging row and, when present, its
// canonical counterpart. A missing canonical row is reported as a
// warning, never as a failure: the staging side is deleted regardless.
func (s *WorkflowService) ConfirmDeletion(ctx context.Context, operatorID, requestID string) (*ConfirmDeletionResult, error) {
	result := &ConfirmDeletionResult{}

	err := s.tx.InTx(ctx, func(ctx context.Context, st repository.Stores) error {
		req, err := st.Requests.GetByID(ctx, requestID)
		if err != nil {
			return mapRequestLookup(err, requestID)
		}
		if req.Status != domain.RequestStatusDeleting {
			return apperrors.NewInvalidState(string(req.Status), string(domain.RequestStatusDeleting))
		}
		result.IndexKey = req.IndexKey

		debtor, err := findCanonical(ctx, st.Debtors, req)
		switch {
		case err == nil:
			if err := st.Debtors.Delete(ctx, debtor.ID); err != nil {
				return err
			}
			result.CanonicalRemoved = true
		case errors.Is(err, pgx.ErrNoRows):
			s.logger.Warn("no canonical debtor for confirmed deletion",
				zap.String("request_id", req.ID),
				zap.String("user_id", req.UserID),
				zap.Int64("index_key", req.IndexKey))
		default:
			return err
		}

		return st.Requests.Delete(ctx, req.ID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventRequestRemoved,
		RequestID: requestID,
		Actor:     operatorActor(operatorID),
		Payload: events.RequestRemovedPayload{
			IndexKey:         result.IndexKey,
			CanonicalRemoved: result.CanonicalRemoved,
		},
	})
	return result, nil
}

// MarkUnderReview flags a pending request as being looked at, so other
// operators skip it.
func (s *WorkflowService) MarkUnderReview(ctx context.Context, operatorID, requestID string) (*domain.DebtorRequest, error) {
	var req *domain.DebtorRequest
	err := s.tx.InTx(ctx, func(ctx context.Context, st repository.Stores) error {
		var err error
		req, err = st.Requests.GetByID(ctx, requestID)
		if err != nil {
			return mapRequestLookup(err, requestID)
		}
		if req.Status != domain.RequestStatusPending {
			return apperrors.NewInvalidState(string(req.Status), string(domain.RequestStatusPending))
		}
		req.Status = domain.RequestStatusUnderReview
		return st.Requests.Update(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.publishStatusChange(ctx, operatorActor(operatorID), requestID, domain.RequestStatusPending, domain.RequestStatusUnderReview, "")
	return req, nil
}

// MarkForUpdate acknowledges an update request without applying it yet.
// The record waits in approved_for_update until an operator confirms.
func (s *WorkflowService) MarkForUpdate(ctx context.Context, operatorID, requestID string) (*domain.DebtorRequest, error) {
	var req *domain.DebtorRequest
	err := s.tx.InTx(ctx, func(ctx context.Context, st repository.Stores) error {
		var err error
		req, err = st.Requests.GetByID(ctx, requestID)
		if err != nil {
			return mapRequestLookup(err, requestID)
		}
		if req.Status != domain.RequestStatusUpdateRequested {
			return apperrors.NewInvalidState(string(req.Status), string(domain.RequestStatusUpdateRequested))
		}
		req.Status = domain.RequestStatusApprovedForUpdate
		return st.Requests.Update(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.publishStatusChange(ctx, operatorActor(operatorID), requestID, domain.RequestStatusUpdateRequested, domain.RequestStatusApprovedForUpdate, "")
	return req, nil
}

// ApproveUpdate copies the staged field values over the matching
// canonical row. Without a canonical counterpart nothing changes and
// the caller gets a not-found failure.
func (s *WorkflowService) ApproveUpdate(ctx context.Context, operatorID, requestID string) (*domain.Debtor, error) {
	var debtor *domain.Debtor
	var oldStatus domain.RequestStatus

	err := s.tx.InTx(ctx, func(ctx context.Context, st repository.Stores) error {
		req, err := st.Requests.GetByID(ctx, requestID)
		if err != nil {
			return mapRequestLookup(err, requestID)
		}
		if req.Status != domain.RequestStatusUpdateRequested && req.Status != domain.RequestStatusApprovedForUpdate {
			return apperrors.NewInvalidState(string(req.Status), string(domain.RequestStatusUpdateRequested))
		}
		oldStatus = req.Status

		debtor, err = findCanonical(ctx, st.Debtors, req)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("canonical debtor", map[string]any{
					"user_id":   req.UserID,
					"index_key": req.IndexKey,
				})
			}
			return err
		}

		debtor.Name = req.Name
		debtor.Surname = req.Surname
		debtor.AmountCents = req.AmountCents
		debtor.Address = req.Address
		debtor.Region = req.Region
		debtor.City = req.City
		if err := st.Debtors.Update(ctx, debtor); err != nil {
			return err
		}

		req.Status = domain.RequestStatusUpdatedInDB
		if req.CanonicalID == nil {
			req.CanonicalID = &debtor.ID
		}
		return st.Requests.Update(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.publishStatusChange(ctx, operatorActor(operatorID), requestID, oldStatus, domain.RequestStatusUpdatedInDB, "")
	return debtor, nil
}

// RejectUpdate declines a pending update request without touching the
// canonical store.
func (s *WorkflowService) RejectUpdate(ctx context.Context, operatorID, requestID string) (*domain.DebtorRequest, error) {
	var req *domain.DebtorRequest
	var oldStatus domain.RequestStatus
	err := s.tx.InTx(ctx, func(ctx context.Context, st repository.Stores) error {
		var err error
		req, err = st.Requests.GetByID(ctx, requestID)
		if err != nil {
			return mapRequestLookup(err, requestID)
		}
		if req.Status != domain.RequestStatusUpdateRequested && req.Status != domain.RequestStatusApprovedForUpdate {
			return apperrors.NewInvalidState(string(req.Status), string(domain.RequestStatusUpdateRequested))
		}
		oldStatus = req.Status
		req.Status = domain.RequestStatusRejected
		return st.Requests.Update(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.publishStatusChange(ctx, operatorActor(operatorID), requestID, oldStatus, domain.RequestStatusRejected, "")
	return req, nil
}

// GetRequest fetches any staging row. Operator use only, access control
// happens at the route.
func (s *WorkflowService) GetRequest(ctx context.Context, requestID string) (*domain.DebtorRequest, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, mapRequestLookup(err, requestID)
	}
	return req, nil
}

// GetOwned fetches a staging row ensuring ownership.
func (s *WorkflowService) GetOwned(ctx context.Context, userID, requestID string) (*domain.DebtorRequest, error) {
	return s.getOwned(ctx, userID, requestID)
}

// ListUserRequests returns the owner's staging rows.
func (s *WorkflowService) ListUserRequests(ctx context.Context, userID string, limit, offset int) ([]domain.DebtorRequest, error) {
	return s.requests.ListByUser(ctx, userID, limit, offset)
}

// ListRequests returns staging rows for operator review.
func (s *WorkflowService) ListRequests(ctx context.Context, filter repository.RequestFilter) ([]domain.DebtorRequest, error) {
	return s.requests.ListWithFilter(ctx, filter)
}

func (s *WorkflowService) getOwned(ctx context.Context, userID, requestID string) (*domain.DebtorRequest, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, mapRequestLookup(err, requestID)
	}
	if req.UserID != userID {
		// Reported as not-found so strangers cannot probe for rows.
		return nil, apperrors.NewNotFound("debtor request", map[string]any{"id": requestID})
	}
	return req, nil
}

func applyEdit(req *domain.DebtorRequest, input EditInput, amount *int64) {
	if input.Name != nil {
		req.Name = strings.TrimSpace(*input.Name)
	}
	if input.Surname != nil {
		req.Surname = strings.TrimSpace(*input.Surname)
	}
	if amount != nil {
		req.AmountCents = *amount
	}
	if input.Address != nil {
		req.Address = strings.TrimSpace(*input.Address)
	}
	if input.Region != nil {
		req.Region = strings.TrimSpace(*input.Region)
	}
	if input.City != nil {
		req.City = strings.TrimSpace(*input.City)
	}
	if input.Document != nil {
		req.Document = *input.Document
	}
	if input.ChangeNote != nil {
		req.ChangeNote = input.ChangeNote
	}
}

// findCanonical tries the staging row's back-reference first and falls
// back to the (owner, index key) correlation.
func findCanonical(ctx context.Context, debtors repository.DebtorRepository, req *domain.DebtorRequest) (*domain.Debtor, error) {
	if req.CanonicalID != nil {
		debtor, err := debtors.GetByID(ctx, *req.CanonicalID)
		if err == nil {
			return debtor, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}
	return debtors.GetByOwnerAndKey(ctx, req.UserID, req.IndexKey)
}

func mapRequestLookup(err error, requestID string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("debtor request", map[string]any{"id": requestID})
	}
	return err
}

func (s *WorkflowService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func (s *WorkflowService) publishStatusChange(ctx context.Context, actor events.Actor, requestID string, oldStatus, newStatus domain.RequestStatus, reason string) {
	s.publish(ctx, events.Event{
		Type:      events.EventRequestStatusChanged,
		RequestID: requestID,
		Actor:     actor,
		Payload: events.RequestStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Reason:    reason,
		},
	})
}

func userActor(userID string) events.Actor {
	return events.Actor{Type: domain.SubjectTypeUser, UserID: userID}
}

func operatorActor(userID string) events.Actor {
	return events.Actor{Type: domain.SubjectTypeOperator, UserID: userID}
}
