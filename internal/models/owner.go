// Package models defines data structures for FolioSync
package models

import "time"

// Sync status values recorded on an owner after each run.
const (
	SyncStatusIdle      = "idle"
	SyncStatusRunning   = "running"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
)

// Owner represents an individual whose brokerage data is tracked.
type Owner struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`

	// BrokerToken is the bearer credential used against the brokerage API.
	// Never serialized out of the store.
	BrokerToken string `json:"-"`

	LastSyncAt     time.Time `json:"last_sync_at"`
	LastSyncStatus string    `json:"last_sync_status"`
	LastSyncError  string    `json:"last_sync_error,omitempty"`
}
