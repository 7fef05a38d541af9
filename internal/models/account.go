package models

import "time"

// Account is the tenant that owns invoices
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	BusinessName string    `json:"businessName"`
	Logo         *string   `json:"logo"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SignUpRequest represents the request body for sign-up
type SignUpRequest struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	BusinessName string `json:"businessName"`
	TOS          bool   `json:"tos"`
}

// SignInRequest represents the request body for sign-in
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest represents the request body for PATCH /me.
// Absent fields are left unchanged.
type UpdateProfileRequest struct {
	Name         *string `json:"name"`
	Logo         *string `json:"logo"`
	BusinessName *string `json:"businessName"`
	Email        *string `json:"email"`
}

// AuthResult is what sign-up and sign-in hand back to the handler
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *Account
}

// MessageResponse is a plain acknowledgement body
type MessageResponse struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message"`
}

// CurrentAccountResponse wraps the account for GET /me; User is nil without a session
type CurrentAccountResponse struct {
	User *Account `json:"user"`
}
