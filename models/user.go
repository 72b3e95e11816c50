// ABOUTME: Canonical user record shared by session store, gateway, and handlers
// ABOUTME: Defines platform roles and the display-name fallback chain

package models

import "strings"

// Platform roles. The upstream API owns role assignment; the portal only
// routes and gates on these values.
const (
	RoleAdmin           = "admin"
	RoleUniversityAdmin = "university_admin"
	RoleStudent         = "student"
	RoleEmployer        = "employer"
)

// ValidRole reports whether role is one of the known platform roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleUniversityAdmin, RoleStudent, RoleEmployer:
		return true
	default:
		return false
	}
}

// Profile is the role-dependent bag of profile fields. Student and admin
// style profiles carry person names; employer profiles carry company fields.
type Profile struct {
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Country     string `json:"country,omitempty"`
	City        string `json:"city,omitempty"`
}

// UserRecord is the normalized shape of an authenticated principal.
// It is produced once at the gateway boundary and treated as an immutable
// snapshot afterwards; edits made through admin dialogs do not update it
// until the user logs in again.
type UserRecord struct {
	ID              string   `json:"id"`
	Email           string   `json:"email"`
	UserType        string   `json:"userType"`
	IsEmailVerified bool     `json:"isEmailVerified,omitempty"`
	FirstName       string   `json:"firstName,omitempty"`
	LastName        string   `json:"lastName,omitempty"`
	Profile         *Profile `json:"profile,omitempty"`
	RedirectPath    string   `json:"redirectPath,omitempty"`
}

// roleLabels are the last-resort display names per role.
var roleLabels = map[string]string{
	RoleAdmin:           "Administrator",
	RoleUniversityAdmin: "University Administrator",
	RoleStudent:         "Student",
	RoleEmployer:        "Employer",
}

// DisplayName derives exactly one display name for the record.
// Fallback chain: profile name -> top-level name fields -> email -> role label.
func (u *UserRecord) DisplayName() string {
	if u.Profile != nil {
		if u.UserType == RoleEmployer && u.Profile.CompanyName != "" {
			return u.Profile.CompanyName
		}
		if name := joinName(u.Profile.FirstName, u.Profile.LastName); name != "" {
			return name
		}
	}
	if name := joinName(u.FirstName, u.LastName); name != "" {
		return name
	}
	if u.Email != "" {
		return u.Email
	}
	if label, ok := roleLabels[u.UserType]; ok {
		return label
	}
	return "User"
}

// DashboardPath is the landing page for the user's role. Unknown roles land
// on the general dashboard.
func (u *UserRecord) DashboardPath() string {
	switch u.UserType {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleUniversityAdmin:
		return "/university-admin/dashboard"
	default:
		return "/dashboard"
	}
}

// IsElevated reports whether the user holds any administrative role.
// Both platform admins and university admins have an admin dashboard.
func (u *UserRecord) IsElevated() bool {
	return u.UserType == RoleAdmin || u.UserType == RoleUniversityAdmin
}

func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
