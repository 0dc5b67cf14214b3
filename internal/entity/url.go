// Package entity defines the entities and errors used in the application.
// It includes the URL struct, which represents a shortened URL owned by an
// account, the account itself, the lookaside cache entry and the request log
// record, along with the error taxonomy shared by every layer.
package entity

import "time"

// State is the lifecycle state of a URL derived from its expiry.
type State uint8

const (
	// StateActive means the URL resolves.
	StateActive State = iota
	// StateExpired means the URL carries an expiry in the past. The row is kept.
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// URL represents a shortened URL.
type URL struct {
	ID          int64      // ID is the unique identifier of the URL in the database.
	ShortCode   string     // ShortCode is the unique, immutable code used to shorten the original URL.
	OriginalURL string     // OriginalURL is the full URL that the short code resolves to.
	Password    *string    // Password, when set, must be supplied verbatim to resolve the URL.
	ExpiresAt   *time.Time // ExpiresAt, when set and in the past, marks the URL as expired.
	OwnerID     int64      // OwnerID references the account that owns the URL.
	URLStats               // URLStats contains statistics about the URL.
	CreatedAt   time.Time  // CreatedAt is the timestamp when the URL was created.
}

// URLStats contains statistics related to a shortened URL.
type URLStats struct {
	VisitCount     int64     // VisitCount is the number of successful resolutions.
	LastAccessedAt time.Time // LastAccessedAt is the timestamp of the last successful resolution.
}

// State reports whether the URL is active or expired at the given instant.
func (u *URL) State(now time.Time) State {
	if u.ExpiresAt != nil && u.ExpiresAt.Before(now) {
		return StateExpired
	}
	return StateActive
}

// IsExpired is shorthand for State(now) == StateExpired.
func (u *URL) IsExpired(now time.Time) bool {
	return u.State(now) == StateExpired
}

// HasPassword reports whether the URL is password protected.
func (u *URL) HasPassword() bool {
	return u.Password != nil
}

// CheckPassword compares the supplied password with the stored one.
// Comparison is exact string equality, case-sensitive.
//
// TODO: store a bcrypt hash instead of the plain password once existing rows are migrated.
func (u *URL) CheckPassword(supplied *string) error {
	if u.Password == nil {
		return nil
	}
	if supplied == nil {
		return ErrPasswordRequired
	}
	if *supplied != *u.Password {
		return ErrPasswordIncorrect
	}
	return nil
}

// Resolution is the outcome of a successful redirect resolution.
type Resolution struct {
	URL       string
	FromCache bool
}

// CacheEntry is the lookaside cache value stored under a short code.
type CacheEntry struct {
	Valid bool   `json:"valid"`
	URL   string `json:"url"`
}
