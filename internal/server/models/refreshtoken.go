package models

import "time"

// RefreshToken is one issued session. Rotation deletes the presented token
// and stores its successor, so a token is usable at most once.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is no longer valid at now. A token
// expiring exactly at now is already expired.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
