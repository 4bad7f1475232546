package domain

import (
	"errors"
	"time"
)

var ErrInvalidToken = errors.New("invalid token")
var ErrSessionExpired = errors.New("session expired")

// Session is the server-side half of the dual revocation mechanism: a signed
// token alone is necessary but not sufficient — a live session record for the
// exact token must also exist. Deleting the record revokes access immediately
// without token-blacklist infrastructure.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is past its expiry at the given instant.
// Expiry is checked lazily at verification time; store-side TTL cleanup is
// garbage collection only.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
