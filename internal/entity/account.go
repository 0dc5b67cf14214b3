package entity

import "time"

// Tier is an account class gating bulk operations and rate-limit bands.
type Tier string

const (
	TierHobby      Tier = "hobby"
	TierFree       Tier = "free"
	TierEnterprise Tier = "enterprise"
)

// Account is the owner of shortened URLs, identified by its API key.
type Account struct {
	ID        int64
	Email     string
	Name      string
	Tier      Tier
	APIKey    string
	CreatedAt time.Time
}

// CanBulkShorten reports whether the account may use bulk creation.
func (a *Account) CanBulkShorten() bool {
	return a.Tier == TierEnterprise
}
