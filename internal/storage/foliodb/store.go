// Package foliodb implements the entity stores on BadgerHold. Records are
// keyed by composite keys; lookups that cross a key prefix scan and filter,
// matching the embedded store's strengths for modest data volumes.
package foliodb

import (
	"fmt"
	"os"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/foliosync/internal/common"
)

// keySep separates composite key segments. A null byte prevents collisions
// when identifiers contain printable separators.
const keySep = "\x00"

// Store owns the BadgerHold database shared by the entity stores.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// Open creates or opens the database at path.
func Open(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data path %s: %w", path, err)
	}

	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil

	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", path, err)
	}

	logger.Info().Str("path", path).Msg("FolioDB opened")
	return &Store{db: db, logger: logger}, nil
}

// Close shuts down the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Owners returns the owner store view.
func (s *Store) Owners() *OwnerStore { return &OwnerStore{store: s} }

// Accounts returns the account store view.
func (s *Store) Accounts() *AccountStore { return &AccountStore{store: s} }

// Holdings returns the holding store view.
func (s *Store) Holdings() *HoldingStore { return &HoldingStore{store: s} }

// Transactions returns the transaction store view.
func (s *Store) Transactions() *TransactionStore { return &TransactionStore{store: s} }

// Instruments returns the instrument store view.
func (s *Store) Instruments() *InstrumentStore { return &InstrumentStore{store: s} }

// Snapshots returns the snapshot store view.
func (s *Store) Snapshots() *SnapshotStore { return &SnapshotStore{store: s} }
