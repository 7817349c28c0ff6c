package tasks

import (
	"encoding/json"
	"time"

	"github.com/goliatone/go-router"
)

// Cookie names are part of the external contract; clients read auth_user
// directly and both names must survive reimplementation bit-exact.
const (
	// CookieAuthToken carries the signed credential. Never readable from
	// scripts.
	CookieAuthToken = "auth_token"
	// CookieAuthUser carries a display snapshot of the authenticated user,
	// deliberately script-readable so client UI can render identity
	// without a network round trip.
	CookieAuthUser = "auth_user"
)

// UserSnapshot is the denormalized subset of user fields stored in the
// auth_user cookie. It must never contain password or credential material.
type UserSnapshot struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	FirstName string   `json:"first_name,omitempty"`
	LastName  string   `json:"last_name,omitempty"`
	Role      RoleCode `json:"role,omitempty"`
}

// SnapshotFromUser builds the display snapshot for a user record
func SnapshotFromUser(user *User) UserSnapshot {
	return UserSnapshot{
		ID:        user.ID.String(),
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
	}
}

// SessionTransport owns the lifecycle of the session cookie pair. Every
// mutation of a given cookie goes through exactly one write path so the
// attributes cannot drift between set and clear call sites.
type SessionTransport struct {
	secure   bool
	duration time.Duration
	logger   Logger
}

// NewSessionTransport creates a transport. The secure flag tracks the
// deployment profile: cookies are Secure in production.
func NewSessionTransport(cfg Config, logger Logger) *SessionTransport {
	if logger == nil {
		logger = defLogger{}
	}

	duration := time.Duration(DefaultTokenExpiration) * time.Hour
	if cfg.GetTokenExpiration() > 0 {
		duration = time.Duration(cfg.GetTokenExpiration()) * time.Hour
	}

	return &SessionTransport{
		secure:   cfg.IsProduction(),
		duration: duration,
		logger:   logger,
	}
}

// WriteCredentialCookie writes the auth_token cookie for the credential
func (t *SessionTransport) WriteCredentialCookie(ctx router.Context, credential string) {
	t.writeCookie(ctx, CookieAuthToken, credential, true, time.Now().Add(t.duration))
}

// WriteUserSnapshotCookie writes the script-readable auth_user cookie
func (t *SessionTransport) WriteUserSnapshotCookie(ctx router.Context, snapshot UserSnapshot) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		// A snapshot is plain scalars; this does not happen outside of
		// programmer error, but a broken snapshot must not strand a lone
		// credential cookie.
		t.logger.Error("failed to serialize user snapshot", "error", err)
		t.ClearSessionCookies(ctx)
		return
	}

	t.writeCookie(ctx, CookieAuthUser, string(payload), false, time.Now().Add(t.duration))
}

// ClearSessionCookies expires both cookies. Deletion re-sends them with
// identical attributes and a past expiry, the only approach browsers honor
// consistently.
func (t *SessionTransport) ClearSessionCookies(ctx router.Context) {
	expired := time.Now().Add(-time.Hour * 24 * 365)
	t.writeCookie(ctx, CookieAuthToken, "", true, expired)
	t.writeCookie(ctx, CookieAuthUser, "", false, expired)
}

// ReadCredentialCookie returns the raw credential or "" when absent
func (t *SessionTransport) ReadCredentialCookie(ctx router.Context) string {
	return ctx.Cookies(CookieAuthToken)
}

// ReadUserSnapshot returns the parsed snapshot, or nil if the cookie is
// absent, fails to parse, or lacks the minimum required fields. A corrupt
// or tampered cookie degrades to "no session", never to a partially
// trusted identity.
func (t *SessionTransport) ReadUserSnapshot(ctx router.Context) *UserSnapshot {
	raw := ctx.Cookies(CookieAuthUser)
	if raw == "" {
		return nil
	}

	var snapshot UserSnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		t.logger.Warn("discarding corrupt user snapshot cookie", "error", err)
		return nil
	}

	if snapshot.ID == "" || snapshot.Username == "" {
		t.logger.Warn("discarding user snapshot cookie missing required fields")
		return nil
	}

	return &snapshot
}

func (t *SessionTransport) writeCookie(ctx router.Context, name, value string, httpOnly bool, expires time.Time) {
	ctx.Cookie(&router.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: httpOnly,
		Secure:   t.secure,
		SameSite: "Strict",
	})
}
