package dto

import "time"

// DebtorResponse mirrors a canonical debtor row.
type DebtorResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Surname     string    `json:"surname"`
	Amount      string    `json:"amount"`
	AmountCents int64     `json:"amount_cents"`
	Address     string    `json:"address"`
	Region      string    `json:"region"`
	City        string    `json:"city"`
	IndexKey    int64     `json:"index_key"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListDebtorsResponse wraps a page of canonical debtors.
type ListDebtorsResponse struct {
	Debtors []DebtorResponse `json:"debtors"`
	Count   int              `json:"count"`
}
