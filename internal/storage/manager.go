// Package storage wires the entity stores into the StorageManager contract.
package storage

import (
	"fmt"

	"github.com/bobmcallan/foliosync/internal/common"
	"github.com/bobmcallan/foliosync/internal/interfaces"
	"github.com/bobmcallan/foliosync/internal/storage/foliodb"
)

// Manager implements interfaces.StorageManager on the embedded store.
type Manager struct {
	store  *foliodb.Store
	logger *common.Logger
}

// NewManager opens the embedded store at the configured path.
func NewManager(config *common.Config, logger *common.Logger) (*Manager, error) {
	store, err := foliodb.Open(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return &Manager{store: store, logger: logger}, nil
}

func (m *Manager) Owners() interfaces.OwnerStore             { return m.store.Owners() }
func (m *Manager) Accounts() interfaces.AccountStore         { return m.store.Accounts() }
func (m *Manager) Holdings() interfaces.HoldingStore         { return m.store.Holdings() }
func (m *Manager) Transactions() interfaces.TransactionStore { return m.store.Transactions() }
func (m *Manager) Instruments() interfaces.InstrumentStore   { return m.store.Instruments() }
func (m *Manager) Snapshots() interfaces.SnapshotStore       { return m.store.Snapshots() }

// Close shuts down the underlying store.
func (m *Manager) Close() error {
	m.logger.Debug().Msg("Closing storage")
	return m.store.Close()
}

// Ensure Manager implements StorageManager
var _ interfaces.StorageManager = (*Manager)(nil)
