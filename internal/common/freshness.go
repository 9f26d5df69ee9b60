// Package common provides shared utilities for FolioSync
package common

import "time"

// Freshness TTLs for data components
const (
	// FreshnessInstrument bounds how often instrument catalog entries are
	// re-fetched when referenced by a holdings sync.
	FreshnessInstrument = 24 * time.Hour
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
