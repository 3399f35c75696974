package model

import "time"

// SessionTTL is the lifetime of a login session.
const SessionTTL = 7 * 24 * time.Hour

// Session models a row of the `sessions` table.  A session is created at
// login and is never updated afterwards except for deactivation.  A user
// may hold several active sessions at once.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the session.
//  Token     – opaque bearer credential (unique).
//  CreatedAt – creation timestamp.
//  ExpiresAt – CreatedAt + SessionTTL.
//  Active    – false once the session was revoked.
type Session struct {
	ID        uint64    // sessions.id
	UserID    uint64    // sessions.user_id
	Token     string    // sessions.token
	CreatedAt time.Time // sessions.created_at
	ExpiresAt time.Time // sessions.expires_at
	Active    bool      // sessions.active
}

// ValidAt reports whether the session authenticates requests at t.
func (s Session) ValidAt(t time.Time) bool {
	return s.Active && s.ExpiresAt.After(t)
}
