// ABOUTME: Route-correction middleware for page routes
// ABOUTME: Applies the authflow resolver's decisions as HTTP redirects

package middleware

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gaelxxl34/whoiswho-portal/authflow"
)

// RouteCorrector keeps one authflow resolver per session so each
// disallowed-state episode produces exactly one redirect even when a browser
// re-requests the same page before following the Location header.
type RouteCorrector struct {
	resolvers sync.Map // session ID -> *authflow.Resolver
}

func NewRouteCorrector() *RouteCorrector {
	return &RouteCorrector{}
}

// Middleware evaluates the route-correction rules for page requests and
// issues a 302 when the visible route is inconsistent with the session.
// Anonymous requests pass through untouched; the page guards own those.
func (rc *RouteCorrector) Middleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r)
			if user == nil {
				next(w, r)
				return
			}

			decision := rc.resolver(SessionID(r)).Resolve(user, false, r.URL.Path)
			if decision.Redirect {
				slog.Debug("Route correction",
					"path", r.URL.Path,
					"location", decision.Location,
					"user_role", user.UserType,
				)
				http.Redirect(w, r, decision.Location, http.StatusFound)
				return
			}

			next(w, r)
		}
	}
}

// Forget drops the resolver for a session, typically on logout.
func (rc *RouteCorrector) Forget(sessionID string) {
	rc.resolvers.Delete(sessionID)
}

func (rc *RouteCorrector) resolver(sessionID string) *authflow.Resolver {
	if val, ok := rc.resolvers.Load(sessionID); ok {
		return val.(*authflow.Resolver)
	}
	val, _ := rc.resolvers.LoadOrStore(sessionID, authflow.NewResolver())
	return val.(*authflow.Resolver)
}
