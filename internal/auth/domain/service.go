package domain

import "time"

// Principal is the authenticated caller.
type Principal struct {
	UserID    string
	ExpiresAt time.Time
}

// Verifier validates bearer tokens issued by the identity provider.
type Verifier interface {
	Verify(token string) (Principal, error)
}
