// Package interfaces defines service contracts for FolioSync
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/foliosync/internal/models"
)

// StorageManager coordinates all entity stores. Writes are per-record
// upserts; no multi-record transaction guarantee is assumed.
type StorageManager interface {
	Owners() OwnerStore
	Accounts() AccountStore
	Holdings() HoldingStore
	Transactions() TransactionStore
	Instruments() InstrumentStore
	Snapshots() SnapshotStore

	Close() error
}

// OwnerStore manages tracked owners.
type OwnerStore interface {
	Get(ctx context.Context, ownerID string) (*models.Owner, error)
	Save(ctx context.Context, owner *models.Owner) error
	// Delete removes the owner and cascades to accounts, holdings,
	// transactions, and snapshots.
	Delete(ctx context.Context, ownerID string) error
	List(ctx context.Context) ([]*models.Owner, error)
	ListActive(ctx context.Context) ([]*models.Owner, error)
}

// AccountStore manages brokerage accounts, keyed by (owner, account).
type AccountStore interface {
	Get(ctx context.Context, ownerID, accountID string) (*models.Account, error)
	Upsert(ctx context.Context, account *models.Account) error
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Account, error)
}

// HoldingStore manages positions, keyed by (owner, account, symbol).
type HoldingStore interface {
	Upsert(ctx context.Context, holding *models.Holding) error
	ListByAccount(ctx context.Context, ownerID, accountID string) ([]*models.Holding, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Holding, error)
	ListAll(ctx context.Context) ([]*models.Holding, error)
	// DeleteByAccount clears an account's holdings ahead of a full-sync
	// rebuild so positions that disappeared upstream do not survive.
	DeleteByAccount(ctx context.Context, ownerID, accountID string) (int, error)
}

// TransactionStore manages immutable transactions keyed by dedup identity.
type TransactionStore interface {
	// Insert persists a transaction under its DedupKey. Existing keys are
	// left untouched.
	Insert(ctx context.Context, txn *models.Transaction) error
	ExistsKey(ctx context.Context, ownerID, dedupKey string) (bool, error)
	ListByAccount(ctx context.Context, ownerID, accountID string) ([]*models.Transaction, error)
	// ListByAccountRange returns transactions with Date in [start, end].
	ListByAccountRange(ctx context.Context, ownerID, accountID string, start, end time.Time) ([]*models.Transaction, error)
}

// InstrumentStore manages the global instrument catalog.
type InstrumentStore interface {
	Get(ctx context.Context, id int64) (*models.Instrument, error)
	Upsert(ctx context.Context, instrument *models.Instrument) error
	GetBatch(ctx context.Context, ids []int64) ([]*models.Instrument, error)
}

// SnapshotStore manages append-only portfolio snapshots.
type SnapshotStore interface {
	Append(ctx context.Context, snapshot *models.PortfolioSnapshot) error
	ListByOwner(ctx context.Context, ownerID string) ([]*models.PortfolioSnapshot, error)
	// Prune deletes the owner's oldest snapshots beyond keep. Returns the
	// number deleted.
	Prune(ctx context.Context, ownerID string, keep int) (int, error)
}
