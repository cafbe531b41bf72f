package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Account is a user row as stored by the backend. The password is kept as a bcrypt hash only.
type Account struct {
	ID        uuid.UUID // PK
	Username  string    // unique
	PwdHash   []byte
	Role      Role
	CreatedAt time.Time
}

// Public strips credentials for the user listing.
func (a Account) Public() User {
	return User{ID: UserID(a.ID.String()), Username: a.Username, Role: a.Role}
}

// CacheEntry is one analyzed URL kept by the backend, keyed by sha256(url).
type CacheEntry struct {
	URLHash   string
	URL       string
	Insights  Insights
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FreshAt reports whether the entry is still valid at now for the given TTL.
func (e CacheEntry) FreshAt(now time.Time, ttl time.Duration) bool {
	return now.Before(e.UpdatedAt.Add(ttl))
}

// AnalysisTotals is the aggregate over the analysis log.
type AnalysisTotals struct {
	Total      int
	Hits       int
	Misses     int
	UniqueURLs int
	Last       *time.Time
}
