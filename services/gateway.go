// ABOUTME: Auth gateway talking to the upstream credential API auth endpoints
// ABOUTME: Normalizes role aliases into one canonical userType at the boundary

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gaelxxl34/whoiswho-portal/models"
)

// Result is the outcome of an upstream auth call. Business failures (wrong
// password, duplicate email, expired reset link) come back as
// Success=false with the upstream's message; they are never errors.
// Errors are reserved for transport-level failures.
type Result struct {
	Success     bool
	Token       string
	User        *models.UserRecord
	Message     string
	TokenExpiry time.Time // zero when the token carries no parseable expiry
}

// Gateway is the only component that talks to the upstream auth endpoints.
type Gateway struct {
	upstream *Upstream
}

func NewGateway(upstream *Upstream) *Gateway {
	return &Gateway{upstream: upstream}
}

// Login authenticates against POST /api/auth/login.
func (g *Gateway) Login(ctx context.Context, email, password string) (Result, error) {
	return g.post(ctx, "/api/auth/login", models.LoginRequest{
		Email:    email,
		Password: password,
	})
}

// Register creates an account via POST /api/auth/register. Role-specific
// fields are forwarded only when they match the requested role.
func (g *Gateway) Register(ctx context.Context, req models.RegisterRequest) (Result, error) {
	if req.UserType == "" {
		req.UserType = models.RoleStudent
	}
	if req.UserType != models.RoleEmployer {
		req.CompanyName = ""
		req.Industry = ""
		req.Country = ""
		req.City = ""
	}
	return g.post(ctx, "/api/auth/register", req)
}

// ForgotPassword requests a reset link via POST /api/auth/forgot-password.
func (g *Gateway) ForgotPassword(ctx context.Context, email string) (Result, error) {
	return g.post(ctx, "/api/auth/forgot-password", map[string]string{
		"email": email,
	})
}

// ResetPassword completes a reset via POST /api/auth/reset-password.
func (g *Gateway) ResetPassword(ctx context.Context, password, accessToken, refreshToken string) (Result, error) {
	return g.post(ctx, "/api/auth/reset-password", map[string]string{
		"password":      password,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// RedirectPath maps a user's role to its landing page. Unknown or missing
// roles land on the general dashboard; no user at all lands on the login
// screen.
func RedirectPath(user *models.UserRecord) string {
	if user == nil {
		return "/login"
	}
	return user.DashboardPath()
}

// authEnvelope is the upstream auth response shape. The backend has used
// both "message" and "error" for failure text over time.
type authEnvelope struct {
	Success bool            `json:"success"`
	Token   string          `json:"token"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	User    json.RawMessage `json:"user"`
}

func (g *Gateway) post(ctx context.Context, path string, body any) (Result, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return Result{}, fmt.Errorf("encode auth request: %w", err)
	}

	resp, err := g.upstream.Do(ctx, http.MethodPost, path, "", bytes.NewReader(payload), "application/json", "")
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read auth response: %w", err)
	}

	var envelope authEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Result{}, fmt.Errorf("parse auth response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !envelope.Success {
		message := envelope.Message
		if message == "" {
			message = envelope.Error
		}
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return Result{Success: false, Message: message}, nil
	}

	result := Result{
		Success: true,
		Token:   envelope.Token,
		Message: envelope.Message,
	}

	if len(envelope.User) > 0 {
		user, err := NormalizeUser(envelope.User)
		if err != nil {
			return Result{}, fmt.Errorf("parse auth user: %w", err)
		}
		result.User = &user
	}

	if envelope.Token != "" {
		result.TokenExpiry = tokenExpiry(envelope.Token)
	}

	return result, nil
}

// flexibleID tolerates both string and numeric IDs from the upstream.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexibleID(n.String())
		return nil
	}
	return fmt.Errorf("user id is neither string nor number: %s", data)
}

// wireUser accepts every role-field alias the upstream has historically
// returned, plus loosely-typed IDs.
type wireUser struct {
	ID              flexibleID      `json:"id"`
	Email           string          `json:"email"`
	UserType        string          `json:"userType"`
	TypeAlias       string          `json:"type"`
	UserTypeAlias   string          `json:"user_type"`
	IsEmailVerified bool            `json:"isEmailVerified"`
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName"`
	Profile         *models.Profile `json:"profile"`
	RedirectPath    string          `json:"redirectPath"`
}

// NormalizeUser collapses the upstream user shape into the canonical
// UserRecord. Role aliases resolve with priority userType > type > user_type,
// defaulting to student. This runs exactly once, at the gateway boundary;
// nothing downstream branches on the aliases again.
func NormalizeUser(raw json.RawMessage) (models.UserRecord, error) {
	var wire wireUser
	if err := json.Unmarshal(raw, &wire); err != nil {
		return models.UserRecord{}, err
	}

	userType := firstNonEmpty(wire.UserType, wire.TypeAlias, wire.UserTypeAlias)
	userType = strings.ToLower(strings.TrimSpace(userType))
	if userType == "" {
		userType = models.RoleStudent
	}

	return models.UserRecord{
		ID:              string(wire.ID),
		Email:           wire.Email,
		UserType:        userType,
		IsEmailVerified: wire.IsEmailVerified,
		FirstName:       wire.FirstName,
		LastName:        wire.LastName,
		Profile:         wire.Profile,
		RedirectPath:    wire.RedirectPath,
	}, nil
}

// tokenExpiry extracts the exp claim when the upstream token happens to be a
// JWT. The token is otherwise opaque to the portal; no signature check is
// done here because only the upstream can verify it.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
