package models

import "time"

// StageResult counts synced items and accumulates per-item errors for one
// stage of a sync run. A stage with some errors still reports what it synced.
type StageResult struct {
	Synced int      `json:"synced"`
	Errors []string `json:"errors,omitempty"`
}

// AddError appends an error message to the stage result.
func (r *StageResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// SyncReport is the result of one orchestrated sync run for an owner.
// Returned to the caller even on partial failure; silent loss of a chunk or
// record is never acceptable.
type SyncReport struct {
	RunID    string `json:"run_id"`
	OwnerID  string `json:"owner_id"`
	FullSync bool   `json:"full_sync"`

	Accounts     StageResult `json:"accounts"`
	Holdings     StageResult `json:"holdings"`
	Transactions StageResult `json:"transactions"`
	Snapshot     StageResult `json:"snapshot"`

	SnapshotID string `json:"snapshot_id,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// TotalErrors returns the count of errors across all stages.
func (r *SyncReport) TotalErrors() int {
	return len(r.Accounts.Errors) + len(r.Holdings.Errors) +
		len(r.Transactions.Errors) + len(r.Snapshot.Errors)
}

// SyncEvent is published after each owner completes during a bulk sync.
type SyncEvent struct {
	OwnerID    string      `json:"owner_id"`
	Err        string      `json:"err,omitempty"`
	Report     *SyncReport `json:"report,omitempty"`
	FinishedAt time.Time   `json:"finished_at"`
}

// OwnerSyncOutcome records per-owner success or failure for a bulk run.
type OwnerSyncOutcome struct {
	OwnerID string      `json:"owner_id"`
	Report  *SyncReport `json:"report,omitempty"`
	Err     error       `json:"-"`
}
