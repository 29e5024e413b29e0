package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/spec-kit/debtor-registry/internal/config"
	"github.com/spec-kit/debtor-registry/internal/domain"
	"github.com/spec-kit/debtor-registry/internal/events"
	"github.com/spec-kit/debtor-registry/internal/repository"
	apperrors "github.com/spec-kit/debtor-registry/pkg/util"
)

const (
	ownerID    = "user-1"
	strangerID = "user-2"
	operatorID = "op-1"
)

type WorkflowSuite struct {
	suite.Suite
	stores  repository.Stores
	service *WorkflowService
	ctx     context.Context
}

func TestWorkflowSuite(t *testing.T) {
	suite.Run(t, new(WorkflowSuite))
}

func (s *WorkflowSuite) SetupTest() {
	s.ctx = context.Background()
	stores, tx := repository.NewMemoryStores()
	s.stores = stores
	s.service = NewWorkflowService(
		config.WorkflowConfig{ReopenAdded: true},
		WorkflowDependencies{
			RequestRepo: stores.Requests,
			DebtorRepo:  stores.Debtors,
			Transactor:  tx,
			Dispatcher:  events.NewInMemoryDispatcher(),
			Logger:      zap.NewNop(),
		},
	)
}

func (s *WorkflowSuite) submit() *domain.DebtorRequest {
	req, err := s.service.Submit(s.ctx, ownerID, SubmitInput{
		Name:    "Ivan",
		Surname: "Petrov",
		Amount:  "1500,50",
		Address: "Lenina 1",
		Region:  "Moscow Oblast",
		City:    "Moscow",
	})
	s.Require().NoError(err)
	return req
}

func (s *WorkflowSuite) TestSubmit() {
	s.Run("creates a pending record with parsed amount", func() {
		req := s.submit()
		s.Equal(domain.RequestStatusPending, req.Status)
		s.Equal(int64(150050), req.AmountCents)
		s.NotEmpty(req.ID)
		s.Positive(req.IndexKey)
	})

	s.Run("assigns strictly increasing index keys", func() {
		first := s.submit()
		second := s.submit()
		s.Greater(second.IndexKey, first.IndexKey)
	})

	s.Run("rejects blank fields with per-field details", func() {
		_, err := s.service.Submit(s.ctx, ownerID, SubmitInput{Amount: "10"})
		s.Require().Error(err)
		s.True(apperrors.IsCode(err, "VALIDATION_FAILED"))
		details := apperrors.ToDomainError(err).Details
		s.Contains(details, "name")
		s.Contains(details, "city")
	})

	s.Run("rejects unparseable and non-positive amounts", func() {
		for _, amount := range []string{"abc", "", "-5", "0", "1.234", "10,5,5", "5.-5", "-0.50"} {
			_, err := s.service.Submit(s.ctx, ownerID, SubmitInput{
				Name: "a", Surname: "b", Amount: amount,
				Address: "c", Region: "d", City: "e",
			})
			s.Require().Error(err, "amount %q", amount)
			s.True(apperrors.IsCode(err, "VALIDATION_FAILED"), "amount %q", amount)
		}
	})

	s.Run("accepts dot as decimal separator", func() {
		req, err := s.service.Submit(s.ctx, ownerID, SubmitInput{
			Name: "a", Surname: "b", Amount: "99.90",
			Address: "c", Region: "d", City: "e",
		})
		s.Require().NoError(err)
		s.Equal(int64(9990), req.AmountCents)
	})
}

func (s *WorkflowSuite) TestApprove() {
	s.Run("promotes a pending record into the canonical store", func() {
		req := s.submit()
		debtor, err := s.service.Approve(s.ctx, operatorID, req.ID)
		s.Require().NoError(err)

		s.Equal(req.UserID, debtor.UserID)
		s.Equal(req.IndexKey, debtor.IndexKey)
		s.Equal(req.AmountCents, debtor.AmountCents)

		stored, err := s.stores.Requests.GetByID(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Equal(domain.RequestStatusAdded, stored.Status)
		s.Require().NotNil(stored.CanonicalID)
		s.Equal(debtor.ID, *stored.CanonicalID)
	})

	s.Run("promotes a record taken under review", func() {
		req := s.submit()
		_, err := s.service.MarkUnderReview(s.ctx, operatorID, req.ID)
		s.Require().NoError(err)

		_, err = s.service.Approve(s.ctx, operatorID, req.ID)
		s.NoError(err)
	})

	s.Run("refuses a second approval", func() {
		req := s.submit()
		_, err := s.service.Approve(s.ctx, operatorID, req.ID)
		s.Require().NoError(err)

		_, err = s.service.Approve(s.ctx, operatorID, req.ID)
		s.True(apperrors.IsCode(err, "INVALID_STATE"))
	})

	s.Run("unknown id reports not found", func() {
		_, err := s.service.Approve(s.ctx, operatorID, "missing")
		s.True(apperrors.IsCode(err, "NOT_FOUND"))
	})
}

func (s *WorkflowSuite) TestReject() {
	s.Run("requires a reason", func() {
		req := s.submit()
		_, err := s.service.Reject(s.ctx, operatorID, req.ID, "   ")
		s.Require().Error(err)
		s.True(apperrors.IsCode(err, "MISSING_REASON"))

		stored, err := s.stores.Requests.GetByID(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Equal(domain.RequestStatusPending, stored.Status)
	})

	s.Run("records the reason on the request", func() {
		req := s.submit()
		rejected, err := s.service.Reject(s.ctx, operatorID, req.ID, "insufficient documents")
		s.Require().NoError(err)
		s.Equal(domain.RequestStatusRejected, rejected.Status)
		s.Require().NotNil(rejected.RejectionReason)
		s.Equal("insufficient documents", *rejected.RejectionReason)
	})

	s.Run("refuses a promoted record", func() {
		req := s.submit()
		_, err := s.service.Approve(s.ctx, operatorID, req.ID)
		s.Require().NoError(err)

		_, err = s.service.Reject(s.ctx, operatorID, req.ID, "too late")
		s.True(apperrors.IsCode(err, "INVALID_STATE"))
	})
}

func (s *WorkflowSuite) TestRequestEdit() {
	s.Run("reopens a rejected record as an update request", func() {
		req := s.submit()
		_, err := s.service.Reject(s.ctx, operatorID, req.ID, "typo in surname")
		s.Require().NoError(err)

		surname := "Petroff"
		edited, err := s.service.RequestEdit(s.ctx, ownerID, req.ID, EditInput{Surname: &surname})
		s.Require().NoError(err)
		s.Equal(domain.RequestStatusUpdateRequested, edited.Status)
		s.Equal("Petroff", edited.Surname)
	})

	s.Run("bad amount leaves the record untouched", func() {
		req := s.submit()
		bad := "12,345"
		_, err := s.service.RequestEdit(s.ctx, ownerID, req.ID, EditInput{Amount: &bad})
		s.Require().Error(err)
		s.True(apperrors.IsCode(err, "INVALID_AMOUNT"))

		stored, err := s.stores.Requests.GetByID(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Equal(domain.RequestStatusPending, stored.Status)
		s.Equal(int64(150050), stored.AmountCents)
	})

	s.Run("edits a promoted record when reopening is enabled", func() {
		req := s.submit()
		_, err := s.service.Approve(s.ctx, operatorID, req.ID)
		s.Require().NoError(err)

		amount := "2000"
		edited, err := s.service.RequestEdit(s.ctx, ownerID, req.ID, EditInput{Amount: &amount})
		s.Require().NoError(err)
		s.Equal(domain.RequestStatusUpdateRequested, edited.Status)
		s.Equal(int64(200000), edited.AmountCents)
	})

	s.Run("refuses a promoted record when reopening is disabled", func() {
		s.service.cfg.ReopenAdded = false
		defer func() { s.service.cfg.ReopenAdded = true }()

		req := s.submit()
		_, err := s.service.Approve(s.ctx, operatorID, req.ID)
		s.Require().NoError(err)

		name := "x"
		_, err = s.service.RequestEdit(s.ctx, ownerID, req.ID, EditInput{Name: &name})
		s.True(apperrors.IsCode(err, "INVALID_STATE"))
	})

	s.Run("non-owner cannot see the record", func() {
		req := s.submit()
		name := "x"
		_, err := s.service.RequestEdit(s.ctx, strangerID, req.ID, EditInput{Name: &name})
		s.True(apperrors.IsCode(err, "NOT_FOUND"))
	})
}

func (s *WorkflowSuite) TestDeletionFlow() {
	s.Run("deletion request requires a reason", func() {
		req := s.submit()
		_, err := s.service.RequestDeletion(s.ctx, ownerID, req.ID, "", nil)
		s.True(apperrors.IsCode(err, "MISSING_REASON"))
	})

	s.Run("confirmed deletion removes both rows", func() {
		req := s.submit()
		debtor, err := s.service.Approve(s.ctx, operatorID, req.ID)
		s.Require().NoError(err)

		doc := "proof.pdf"
		_, err = s.service.RequestDeletion(s.ctx, ownerID, req.ID, "debt repaid", &doc)
		s.Require().NoError(err)

		result, err := s.service.ConfirmDeletion(s.ctx, operatorID, req.ID)
		s.Require().NoError(err)
		s.True(result.CanonicalRemoved)
		s.Equal(req.IndexKey, result.IndexKey)

		_, err = s.stores.Requests.GetByID(s.ctx, req.ID)
		s.Error(err)
		_, err = s.stores.Debtors.GetByID(s.ctx, debtor.ID)
		s.Error(err)
	})

	s.Run("missing canonical row is a warning, not a failure", func() {
		req := s.submit()
		_, err := s.service.RequestDeletion(s.ctx, ownerID, req.ID, "submitted by mistake", nil)
		s.Require().NoError(err)

		result, err := s.service.ConfirmDeletion(s.ctx, operatorID, req.ID)
		s.Require().NoError(err)
		s.False(result.CanonicalRemoved)

		_, err = s.stores.Requests.GetByID(s.ctx, req.ID)
		s.Error(err)
	})

	s.Run("confirmation needs a deletion request first", func() {
		req := s.submit()
		_, err := s.service.ConfirmDeletion(s.ctx, operatorID, req.ID)
		s.True(apperrors.IsCode(err, "INVALID_STATE"))
	})
}

func (s *WorkflowSuite) TestUpdateFlow() {
	s.Run("approved update overwrites the canonical row", func() {
		req := s.submit()
		debtor, err := s.service.Approve(s.ctx, operatorID, req.ID)
		s.Require().NoError(err)

		amount := "3000,10"
		city := "Kazan"
		_, err = s.service.RequestEdit(s.ctx, ownerID, req.ID, EditInput{Amount: &amount, City: &city})
		s.Require().NoError(err)

		updated, err := s.service.ApproveUpdate(s.ctx, operatorID, req.ID)
		s.Require().NoError(err)
		s.Equal(debtor.ID, updated.ID)
		s.Equal(int64(300010), updated.AmountCents)
		s.Equal("Kazan", updated.City)

		stored, err := s.stores.Requests.GetByID(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Equal(domain.RequestStatusUpdatedInDB, stored.Status)
	})

	s.Run("two step confirmation via approved_for_update", func() {
		req := s.submit()
		_, err := s.service.Approve(s.ctx, operatorID, req.ID)
		s.Require().NoError(err)

		name := "Igor"
		_, err = s.service.RequestEdit(s.ctx, ownerID, req.ID, EditInput{Name: &name})
		s.Require().NoError(err)

		marked, err := s.service.MarkForUpdate(s.ctx, operatorID, req.ID)
		s.Require().NoError(err)
		s.Equal(domain.RequestStatusApprovedForUpdate, marked.Status)

		updated, err := s.service.ApproveUpdate(s.ctx, operatorID, req.ID)
		s.Require().NoError(err)
		s.Equal("Igor", updated.Name)
	})

	s.Run("update without canonical counterpart fails and changes nothing", func() {
		req := s.submit()
		amount := "500"
		_, err := s.service.RequestEdit(s.ctx, ownerID, req.ID, EditInput{Amount: &amount})
		s.Require().NoError(err)

		_, err = s.service.ApproveUpdate(s.ctx, operatorID, req.ID)
		s.True(apperrors.IsCode(err, "NOT_FOUND"))

		stored, err := s.stores.Requests.GetByID(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Equal(domain.RequestStatusUpdateRequested, stored.Status)
	})

	s.Run("rejected update leaves the canonical row alone", func() {
		req := s.submit()
		debtor, err := s.service.Approve(s.ctx, operatorID, req.ID)
		s.Require().NoError(err)

		amount := "9999"
		_, err = s.service.RequestEdit(s.ctx, ownerID, req.ID, EditInput{Amount: &amount})
		s.Require().NoError(err)

		rejected, err := s.service.RejectUpdate(s.ctx, operatorID, req.ID)
		s.Require().NoError(err)
		s.Equal(domain.RequestStatusRejected, rejected.Status)

		stored, err := s.stores.Debtors.GetByID(s.ctx, debtor.ID)
		s.Require().NoError(err)
		s.Equal(int64(150050), stored.AmountCents)
	})

	s.Run("an update marked for approval can still be declined", func() {
		req := s.submit()
		_, err := s.service.Approve(s.ctx, operatorID, req.ID)
		s.Require().NoError(err)

		amount := "9999"
		_, err = s.service.RequestEdit(s.ctx, ownerID, req.ID, EditInput{Amount: &amount})
		s.Require().NoError(err)
		_, err = s.service.MarkForUpdate(s.ctx, operatorID, req.ID)
		s.Require().NoError(err)

		rejected, err := s.service.RejectUpdate(s.ctx, operatorID, req.ID)
		s.Require().NoError(err)
		s.Equal(domain.RequestStatusRejected, rejected.Status)
	})
}

func (s *WorkflowSuite) TestOwnEditsAndDeletes() {
	s.Run("direct edit keeps the status", func() {
		req := s.submit()
		name := "Oleg"
		edited, err := s.service.EditOwn(s.ctx, ownerID, req.ID, EditInput{Name: &name})
		s.Require().NoError(err)
		s.Equal(domain.RequestStatusPending, edited.Status)
		s.Equal("Oleg", edited.Name)
	})

	s.Run("direct edit refuses a promoted record", func() {
		req := s.submit()
		_, err := s.service.Approve(s.ctx, operatorID, req.ID)
		s.Require().NoError(err)

		name := "x"
		_, err = s.service.EditOwn(s.ctx, ownerID, req.ID, EditInput{Name: &name})
		s.True(apperrors.IsCode(err, "INVALID_STATE"))
	})

	s.Run("direct delete removes only the staging row", func() {
		req := s.submit()
		debtor, err := s.service.Approve(s.ctx, operatorID, req.ID)
		s.Require().NoError(err)

		s.Require().NoError(s.service.DeleteOwn(s.ctx, ownerID, req.ID))

		_, err = s.stores.Requests.GetByID(s.ctx, req.ID)
		s.Error(err)
		_, err = s.stores.Debtors.GetByID(s.ctx, debtor.ID)
		s.NoError(err)
	})
}

func (s *WorkflowSuite) TestIndexKeysNeverReused() {
	first := s.submit()
	s.Require().NoError(s.service.DeleteOwn(s.ctx, ownerID, first.ID))

	second := s.submit()
	s.Greater(second.IndexKey, first.IndexKey)
}

func (s *WorkflowSuite) TestListing() {
	s.Run("owner listing is scoped to the owner", func() {
		s.submit()
		s.submit()

		mine, err := s.service.ListUserRequests(s.ctx, ownerID, 10, 0)
		s.Require().NoError(err)
		s.Len(mine, 2)

		others, err := s.service.ListUserRequests(s.ctx, strangerID, 10, 0)
		s.Require().NoError(err)
		s.Empty(others)
	})

	s.Run("operator listing filters by status", func() {
		req := s.submit()
		s.submit()
		_, err := s.service.Approve(s.ctx, operatorID, req.ID)
		s.Require().NoError(err)

		added, err := s.service.ListRequests(s.ctx, repository.RequestFilter{
			Statuses: []domain.RequestStatus{domain.RequestStatusAdded},
			Limit:    10,
		})
		s.Require().NoError(err)
		s.Len(added, 1)
		s.Equal(req.ID, added[0].ID)
	})
}
