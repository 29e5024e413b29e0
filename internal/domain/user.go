package domain

import "time"

// MinimumAge is the lowest age accepted at registration.
const MinimumAge = 18

// User is the domain model for registered account holders.
type User struct {
	ID                  string
	Username            string
	Name                string
	Surname             string
	Age                 int
	Email               string
	PasswordHash        string
	TelegramAccount     string
	Subscription        bool
	SubscriptionEndDate *time.Time
	IsActive            bool
	IsStaff             bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// FullName joins name and surname for display.
func (u *User) FullName() string {
	return u.Name + " " + u.Surname
}

// HasValidSubscription reports whether the subscription flag is set and
// the expiry date has not passed.
func (u *User) HasValidSubscription(now time.Time) bool {
	return u.Subscription && u.SubscriptionEndDate != nil && u.SubscriptionEndDate.After(now)
}
