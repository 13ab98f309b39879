package domain

import (
	"time"
)

// DefaultQueryLimit is the per-identity query quota when none is configured.
const DefaultQueryLimit = 30

// UsageRecord is the per-identity query counter. Exactly one row exists per
// identity key; it is created lazily on first read. The counter only ever
// increases.
type UsageRecord struct {
	ID          int64      `json:"id"`
	IdentityKey string     `json:"identity_key"`
	Email       string     `json:"email"`
	Queries     int        `json:"queries"`
	LastQuery   *time.Time `json:"last_query,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Remaining returns how many queries are left under the given limit, never
// negative.
func (u *UsageRecord) Remaining(limit int) int {
	if u.Queries >= limit {
		return 0
	}
	return limit - u.Queries
}

// QueryRecord is one logged query in the usage history.
type QueryRecord struct {
	ID          int64          `json:"id"`
	IdentityKey string         `json:"identity_key"`
	Email       string         `json:"email"`
	QueryType   string         `json:"query_type"`
	QueryData   map[string]any `json:"query_data,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
