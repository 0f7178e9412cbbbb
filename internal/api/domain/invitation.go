package domain

import "time"

// Invitation is a transient entity bridging "not yet an account" to
// "account". It is consumed exactly once (deleted in the same transaction
// that creates the account) or left to expire. Expired rows are never
// required to be purged; expiry is checked lazily at consumption time.
type Invitation struct {
	ID        string
	TokenHash string // SHA-256 fingerprint of the opaque invite token
	Email     string
	Role      Role
	CompanyID string
	CreatedBy string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the invitation can no longer be consumed at the
// given instant. An invitation expiring exactly now is already expired.
func (i Invitation) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
