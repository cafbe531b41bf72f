// Package limiter throttles login attempts per (username, client address).
package limiter

import (
	"context"
	"crypto/sha256"
	"time"
)

// Key identifies a login source. The address is stored hashed only.
type Key struct {
	Username string
	IPHash   []byte
}

// NewKey hashes ip into a Key.
func NewKey(username, ip string) Key {
	h := sha256.Sum256([]byte(ip))
	return Key{Username: username, IPHash: h[:]}
}

// Policy is the lockout rule: MaxFails failures inside Window block the key for BlockFor.
type Policy struct {
	Window   time.Duration
	MaxFails int
	BlockFor time.Duration
}

// DefaultPolicy locks for 15 minutes after 5 failures within 15 minutes.
var DefaultPolicy = Policy{Window: 15 * time.Minute, MaxFails: 5, BlockFor: 15 * time.Minute}

// Limiter controls login attempts and temporary lockouts.
type Limiter interface {
	// Allow reports whether a login may be attempted, and how long to wait if not.
	Allow(ctx context.Context, k Key) (bool, time.Duration, error)
	// Success clears the failure history of k.
	Success(ctx context.Context, k Key) error
	// Failure records a failed attempt and reports whether k is now blocked.
	Failure(ctx context.Context, k Key) (bool, time.Duration, error)
}
