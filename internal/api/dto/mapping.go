package dto

import "github.com/spec-kit/debtor-registry/internal/domain"

// FromUser converts a domain user to its API shape. The password hash never
// leaves the service layer.
func FromUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:                  u.ID,
		Username:            u.Username,
		Name:                u.Name,
		Surname:             u.Surname,
		Age:                 u.Age,
		Email:               u.Email,
		TelegramAccount:     u.TelegramAccount,
		Subscription:        u.Subscription,
		SubscriptionEndDate: u.SubscriptionEndDate,
		IsStaff:             u.IsStaff,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

func FromRequest(r *domain.DebtorRequest) RequestResponse {
	return RequestResponse{
		ID:               r.ID,
		UserID:           r.UserID,
		Name:             r.Name,
		Surname:          r.Surname,
		Amount:           domain.FormatAmountCents(r.AmountCents),
		AmountCents:      r.AmountCents,
		Address:          r.Address,
		Region:           r.Region,
		City:             r.City,
		Document:         r.Document,
		Status:           string(r.Status),
		RejectionReason:  r.RejectionReason,
		DeletionReason:   r.DeletionReason,
		DeletionDocument: r.DeletionDocument,
		ChangeNote:       r.ChangeNote,
		IndexKey:         r.IndexKey,
		CanonicalID:      r.CanonicalID,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func FromRequests(rs []domain.DebtorRequest) []RequestResponse {
	out := make([]RequestResponse, 0, len(rs))
	for i := range rs {
		out = append(out, FromRequest(&rs[i]))
	}
	return out
}

func FromDebtor(d *domain.Debtor) DebtorResponse {
	return DebtorResponse{
		ID:          d.ID,
		UserID:      d.UserID,
		Name:        d.Name,
		Surname:     d.Surname,
		Amount:      domain.FormatAmountCents(d.AmountCents),
		AmountCents: d.AmountCents,
		Address:     d.Address,
		Region:      d.Region,
		City:        d.City,
		IndexKey:    d.IndexKey,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func FromDebtors(ds []domain.Debtor) []DebtorResponse {
	out := make([]DebtorResponse, 0, len(ds))
	for i := range ds {
		out = append(out, FromDebtor(&ds[i]))
	}
	return out
}
