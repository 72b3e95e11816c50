// ABOUTME: Server-side session store for the portal BFF
// ABOUTME: Persists token/user/expiry records on the cache, keyed by session ID

package services

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gaelxxl34/whoiswho-portal/cache"
	"github.com/gaelxxl34/whoiswho-portal/models"
)

// ExpiryLookahead is how far ahead of the stored expiry a session is already
// treated as expired, so callers re-authenticate proactively instead of
// racing a live request against token expiry.
const ExpiryLookahead = 5 * time.Minute

// DefaultSessionTTL is how long a session stays valid after Set.
const DefaultSessionTTL = 24 * time.Hour

// SessionStore persists authentication sessions keyed by an opaque session
// ID (the value of the browser's session cookie). Records are stored as
// JSON so corruption is detectable; a record missing either the token or
// the user is never treated as a valid session.
type SessionStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewSessionStore creates a session store over the given cache. A zero ttl
// falls back to DefaultSessionTTL.
func NewSessionStore(c *cache.Cache, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{cache: c, ttl: ttl}
}

// NewID mints a cryptographically secure session ID (32 random bytes,
// base64url encoded).
func (s *SessionStore) NewID() (string, error) {
	idBytes := make([]byte, 32)
	if _, err := rand.Read(idBytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(idBytes), nil
}

// Set writes the session record with an expiry one session-TTL from now
// (24 hours by default). Serialization failure propagates to the caller.
func (s *SessionStore) Set(id, token string, user models.UserRecord) error {
	return s.SetWithExpiry(id, token, user, time.Now().Add(s.ttl))
}

// SetWithExpiry writes the session record with an explicit expiry. Used when
// the upstream token carries its own sooner expiry.
func (s *SessionStore) SetWithExpiry(id, token string, user models.UserRecord, expiry time.Time) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return err
	}

	payload := models.SessionPayload{
		Token:         token,
		User:          userJSON,
		TokenExpiryMs: expiry.UnixMilli(),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	// Keep the record around a little past expiry so IsExpired can still
	// report "expired" rather than "absent" right at the boundary.
	ttl := time.Until(expiry) + 10*time.Minute
	if ttl < time.Minute {
		ttl = time.Minute
	}
	s.cache.SetWithTTL(sessionKey(id), string(raw), ttl)

	return nil
}

// Get returns the stored user record, or nil when the session is absent,
// partial (missing token or user), or fails to deserialize. Deserialization
// failure force-clears the record; it never propagates to callers.
func (s *SessionStore) Get(id string) *models.UserRecord {
	payload, ok := s.load(id)
	if !ok {
		return nil
	}

	if payload.Token == "" || len(payload.User) == 0 {
		return nil
	}

	var user models.UserRecord
	if err := json.Unmarshal(payload.User, &user); err != nil {
		slog.Warn("Session user record corrupted, clearing session", "error", err)
		s.Clear(id)
		return nil
	}

	return &user
}

// GetToken returns the raw bearer token, or empty string when absent.
func (s *SessionStore) GetToken(id string) string {
	payload, ok := s.load(id)
	if !ok {
		return ""
	}
	return payload.Token
}

// Clear removes the session record. Idempotent.
func (s *SessionStore) Clear(id string) {
	s.cache.Clear(sessionKey(id))
}

// IsExpired reports whether the session's token expiry is unset, past, or
// within the look-ahead window of now. Boundary: an expiry exactly at
// now+lookahead counts as expired.
func (s *SessionStore) IsExpired(id string) bool {
	payload, ok := s.load(id)
	if !ok || payload.TokenExpiryMs == 0 {
		return true
	}

	expiry := time.UnixMilli(payload.TokenExpiryMs)
	return !expiry.After(time.Now().Add(ExpiryLookahead))
}

// load reads and decodes the raw session payload. Undecodable records are
// cleared and treated as absent.
func (s *SessionStore) load(id string) (models.SessionPayload, bool) {
	val, ok := s.cache.Get(sessionKey(id))
	if !ok {
		return models.SessionPayload{}, false
	}

	raw, ok := val.(string)
	if !ok {
		slog.Warn("Session record has unexpected type, clearing session")
		s.Clear(id)
		return models.SessionPayload{}, false
	}

	var payload models.SessionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		slog.Warn("Session record corrupted, clearing session", "error", err)
		s.Clear(id)
		return models.SessionPayload{}, false
	}

	return payload, true
}

// sessionKey returns the cache key for a session ID.
func sessionKey(id string) string {
	return "session:" + id
}
