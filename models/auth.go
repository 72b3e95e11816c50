// ABOUTME: Auth request/response models for the portal BFF
// ABOUTME: Defines login/register contracts and the serialized session payload

package models

import "encoding/json"

// LoginRequest represents credentials posted by the dashboard.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest carries the registration payload. Role-specific fields are
// forwarded upstream only when they match the requested role.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	UserType    string `json:"user_type"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`

	// Employer-only fields.
	CompanyName string `json:"companyName,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Country     string `json:"country,omitempty"`
	City        string `json:"city,omitempty"`
}

// AuthResponse is what the portal returns to the dashboard after login or
// registration. The bearer token stays server-side; only the session cookie
// reaches the browser.
type AuthResponse struct {
	Success      bool        `json:"success"`
	User         *UserRecord `json:"user,omitempty"`
	RedirectPath string      `json:"redirectPath,omitempty"`
	Message      string      `json:"message,omitempty"`
}

// UserInfoResponse represents the current session state for the dashboard.
type UserInfoResponse struct {
	Authenticated bool        `json:"authenticated"`
	User          *UserRecord `json:"user,omitempty"`
	IsAdmin       bool        `json:"isAdmin"`
	Expired       bool        `json:"expired,omitempty"`
}

// SessionPayload is the serialized form of a stored session. Field names
// mirror the storage keys the original dashboard persisted (token, user,
// token_expiry) so the layout stays recognizable in debugging output.
// User is kept as raw JSON so a corrupted record surfaces as a decode error
// at read time instead of poisoning every reader.
type SessionPayload struct {
	Token         string          `json:"token"`
	User          json.RawMessage `json:"user"`
	TokenExpiryMs int64           `json:"token_expiry"`
}

// ErrorResponse is the portal's JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    int    `json:"code"`
}
