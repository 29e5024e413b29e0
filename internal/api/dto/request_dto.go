package dto

import "time"

// CreateRequestRequest is the owner's submission payload. Amount is the raw
// user-typed string so the service can accept both "," and "." separators.
type CreateRequestRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Surname  string `json:"surname" validate:"required,max=100"`
	Amount   string `json:"amount" validate:"required,max=32"`
	Address  string `json:"address" validate:"required,max=255"`
	Region   string `json:"region" validate:"required,max=100"`
	City     string `json:"city" validate:"required,max=100"`
	Document string `json:"document" validate:"omitempty,max=255"`
}

// EditRequestRequest carries partial corrections. Nil means "leave as is".
type EditRequestRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=100"`
	Surname    *string `json:"surname" validate:"omitempty,max=100"`
	Amount     *string `json:"amount" validate:"omitempty,max=32"`
	Address    *string `json:"address" validate:"omitempty,max=255"`
	Region     *string `json:"region" validate:"omitempty,max=100"`
	City       *string `json:"city" validate:"omitempty,max=100"`
	Document   *string `json:"document" validate:"omitempty,max=255"`
	ChangeNote *string `json:"change_note" validate:"omitempty,max=500"`
}

// DeletionRequestRequest asks to retire a record. Reason is mandatory.
type DeletionRequestRequest struct {
	Reason   string  `json:"reason" validate:"required,max=500"`
	Document *string `json:"document" validate:"omitempty,max=255"`
}

// RequestResponse mirrors a staging record.
type RequestResponse struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Name             string    `json:"name"`
	Surname          string    `json:"surname"`
	Amount           string    `json:"amount"`
	AmountCents      int64     `json:"amount_cents"`
	Address          string    `json:"address"`
	Region           string    `json:"region"`
	City             string    `json:"city"`
	Document         string    `json:"document,omitempty"`
	Status           string    `json:"status"`
	RejectionReason  *string   `json:"rejection_reason,omitempty"`
	DeletionReason   *string   `json:"deletion_reason,omitempty"`
	DeletionDocument *string   `json:"deletion_document,omitempty"`
	ChangeNote       *string   `json:"change_note,omitempty"`
	IndexKey         int64     `json:"index_key"`
	CanonicalID      *string   `json:"canonical_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ListRequestsResponse wraps a page of staging records.
type ListRequestsResponse struct {
	Requests []RequestResponse `json:"requests"`
	Count    int               `json:"count"`
}
