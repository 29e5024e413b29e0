package domain

import "time"

// Debtor is a canonical debtor record. There is no status field:
// presence in the canonical store is the approved state.
type Debtor struct {
	ID          string
	UserID      string
	Name        string
	Surname     string
	AmountCents int64
	Address     string
	Region      string
	City        string
	IndexKey    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
