// ABOUTME: Route-correction state machine keeping the visible route consistent with the session
// ABOUTME: Guarantees at most one redirect per disallowed-state episode

package authflow

import (
	"strings"
	"sync"

	"github.com/gaelxxl34/whoiswho-portal/models"
)

// State is the resolver's position in the redirect lifecycle.
type State int

const (
	// StateUnresolved: the session has not been read yet; no decision is
	// possible and none is made.
	StateUnresolved State = iota
	// StateRedirecting: a redirect has been issued and the resolver is
	// waiting to observe a location consistent with the session. Further
	// redirects are suppressed until then.
	StateRedirecting
	// StateSettled: the observed location is consistent with the session.
	StateSettled
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateRedirecting:
		return "redirecting"
	case StateSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// Decision is the ephemeral outcome of evaluating (user, path).
type Decision struct {
	Redirect bool
	Location string
}

// Evaluate is the pure route-correction rule, checked in order:
//
//  1. An authenticated user sitting on a login/register screen is sent to
//     its role's dashboard.
//  2. A non-admin under the /admin section is sent to the general dashboard.
//  3. A non-university-admin under the /university-admin section is sent to
//     the general dashboard.
//  4. Otherwise no action.
//
// Non-prefixed routes (including /dashboard itself) are intentionally open
// to every authenticated role; per-page allow-lists handle the rest.
// Anonymous visitors are out of scope here -- the route guard owns them.
func Evaluate(user *models.UserRecord, path string) Decision {
	if user == nil {
		return Decision{}
	}

	if path == "/login" || path == "/register" {
		return Decision{Redirect: true, Location: user.DashboardPath()}
	}

	if underSection(path, "/admin") && user.UserType != models.RoleAdmin {
		return Decision{Redirect: true, Location: "/dashboard"}
	}

	if underSection(path, "/university-admin") && user.UserType != models.RoleUniversityAdmin {
		return Decision{Redirect: true, Location: "/dashboard"}
	}

	return Decision{}
}

// Resolver latches Evaluate's decision so that each disallowed-state episode
// produces exactly one redirect. Transition table:
//
//	state        | observation            | next state   | action
//	-------------+------------------------+--------------+----------
//	Unresolved   | loading                | Unresolved   | none
//	Unresolved   | allowed location       | Settled      | none
//	Unresolved   | disallowed location    | Redirecting  | redirect
//	Redirecting  | allowed location       | Settled      | none
//	Redirecting  | disallowed location    | Redirecting  | none (suppressed)
//	Settled      | allowed location       | Settled      | none
//	Settled      | disallowed location    | Redirecting  | redirect (new episode)
type Resolver struct {
	mu     sync.Mutex
	state  State
	target string
}

func NewResolver() *Resolver {
	return &Resolver{state: StateUnresolved}
}

// State returns the resolver's current state.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Resolve records an observation of (user, loading, path) and returns the
// action to take. While loading, the resolver stays Unresolved and never
// redirects.
func (r *Resolver) Resolve(user *models.UserRecord, loading bool, path string) Decision {
	r.mu.Lock()
	defer r.mu.Unlock()

	if loading {
		return Decision{}
	}

	decision := Evaluate(user, path)

	if !decision.Redirect {
		r.state = StateSettled
		r.target = ""
		return Decision{}
	}

	if r.state == StateRedirecting {
		// Already redirected for this episode; suppress until we observe an
		// allowed location.
		return Decision{}
	}

	r.state = StateRedirecting
	r.target = decision.Location
	return decision
}

// underSection reports whether path is the section root or below it.
// Segment-aware so that /admin does not capture e.g. /administrators.
func underSection(path, section string) bool {
	return path == section || strings.HasPrefix(path, section+"/")
}
