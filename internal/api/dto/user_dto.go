package dto

import "time"

// RegisterRequest payload.
type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=100"`
	Name            string `json:"name" validate:"required,max=100"`
	Surname         string `json:"surname" validate:"required,max=100"`
	Age             int    `json:"age" validate:"required,gt=18"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	RepeatPassword  string `json:"repeat_password" validate:"required,eqfield=Password"`
	TelegramAccount string `json:"tg_account" validate:"max=33"`
}

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// UpdateTelegramRequest payload.
type UpdateTelegramRequest struct {
	Telegram string `json:"telegram" validate:"required,max=33"`
}

// UpdateEmailRequest payload.
type UpdateEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UpdateFullNameRequest payload.
type UpdateFullNameRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Surname string `json:"surname" validate:"required,max=100"`
}

// UserResponse mirrors a user profile.
type UserResponse struct {
	ID                  string     `json:"id"`
	Username            string     `json:"username"`
	Name                string     `json:"name"`
	Surname             string     `json:"surname"`
	Age                 int        `json:"age"`
	Email               string     `json:"email"`
	TelegramAccount     string     `json:"tg_account"`
	Subscription        bool       `json:"subscription"`
	SubscriptionEndDate *time.Time `json:"subscription_end_date,omitempty"`
	IsStaff             bool       `json:"is_staff"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// AuthResponse carries a fresh token and its owner.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}
