package domain

import "time"

// RequestStatus enumerates lifecycle states for debtor requests.
type RequestStatus string

const (
	RequestStatusPending           RequestStatus = "pending"
	RequestStatusUnderReview       RequestStatus = "under_review"
	RequestStatusApproved          RequestStatus = "approved"
	RequestStatusAdded             RequestStatus = "added"
	RequestStatusRejected          RequestStatus = "rejected"
	RequestStatusDeleting          RequestStatus = "deleting"
	RequestStatusUpdateRequested   RequestStatus = "update_requested"
	RequestStatusApprovedForUpdate RequestStatus = "approved_for_update"
	RequestStatusUpdatedInDB       RequestStatus = "updated_in_db"
)

// DebtorRequest is a staging row: a debtor addition/edit/deletion
// request awaiting operator action. Existence of a matching row in the
// canonical store is what makes the debtor "real"; the two are
// correlated by CanonicalID when set, falling back to (UserID, IndexKey).
type DebtorRequest struct {
	ID               string
	UserID           string
	Name             string
	Surname          string
	AmountCents      int64
	Address          string
	Region           string
	City             string
	Document         string
	Status           RequestStatus
	RejectionReason  *string
	DeletionReason   *string
	DeletionDocument *string
	ChangeNote       *string
	IndexKey         int64
	CanonicalID      *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

var allowedTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusPending:           {RequestStatusUnderReview, RequestStatusAdded, RequestStatusRejected, RequestStatusDeleting, RequestStatusUpdateRequested},
	RequestStatusUnderReview:       {RequestStatusAdded, RequestStatusRejected, RequestStatusDeleting, RequestStatusUpdateRequested},
	RequestStatusApproved:          {RequestStatusAdded, RequestStatusUpdateRequested, RequestStatusDeleting},
	RequestStatusAdded:             {RequestStatusUpdateRequested, RequestStatusDeleting},
	RequestStatusRejected:          {RequestStatusUpdateRequested, RequestStatusDeleting},
	RequestStatusDeleting:          {RequestStatusUpdateRequested},
	RequestStatusUpdateRequested:   {RequestStatusApprovedForUpdate, RequestStatusUpdatedInDB, RequestStatusRejected, RequestStatusDeleting},
	RequestStatusApprovedForUpdate: {RequestStatusUpdatedInDB, RequestStatusRejected, RequestStatusDeleting},
	RequestStatusUpdatedInDB:       {RequestStatusUpdateRequested, RequestStatusDeleting},
}

// CanTransition reports whether moving from current to next is legal.
// Transition legality lives here, in one table, rather than in each
// handler that mutates a request. Staying in the current status is
// always allowed.
func CanTransition(current, next RequestStatus) bool {
	if current == next {
		return true
	}
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// IsKnownStatus reports whether the value is a member of the enum.
func IsKnownStatus(s RequestStatus) bool {
	if s == RequestStatusPending {
		return true
	}
	_, ok := allowedTransitions[s]
	return ok
}
