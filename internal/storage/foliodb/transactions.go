package foliodb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/foliosync/internal/models"
)

// transactionKey builds the composite key: owner_id + \x00 + dedup_key
func transactionKey(ownerID, dedupKey string) string {
	return ownerID + keySep + dedupKey
}

// TransactionStore manages immutable transactions keyed by dedup identity.
type TransactionStore struct {
	store *Store
}

// Insert persists a transaction under its dedup key. An existing record is
// left untouched so re-syncs never overwrite history.
func (s *TransactionStore) Insert(_ context.Context, txn *models.Transaction) error {
	ck := transactionKey(txn.OwnerID, txn.DedupKey())

	if err := s.store.db.Insert(ck, txn); err != nil {
		if err == badgerhold.ErrKeyExists {
			return nil
		}
		return fmt.Errorf("failed to insert transaction '%s': %w", txn.DedupKey(), err)
	}
	return nil
}

func (s *TransactionStore) ExistsKey(_ context.Context, ownerID, dedupKey string) (bool, error) {
	var txn models.Transaction
	err := s.store.db.Get(transactionKey(ownerID, dedupKey), &txn)
	if err == badgerhold.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check transaction '%s': %w", dedupKey, err)
	}
	return true, nil
}

func (s *TransactionStore) ListByAccount(_ context.Context, ownerID, accountID string) ([]*models.Transaction, error) {
	return s.list(func(t *models.Transaction) bool {
		return t.OwnerID == ownerID && t.AccountID == accountID
	})
}

// ListByAccountRange returns the account's transactions with Date in
// [start, end] inclusive.
func (s *TransactionStore) ListByAccountRange(_ context.Context, ownerID, accountID string, start, end time.Time) ([]*models.Transaction, error) {
	return s.list(func(t *models.Transaction) bool {
		return t.OwnerID == ownerID && t.AccountID == accountID &&
			!t.Date.Before(start) && !t.Date.After(end)
	})
}

func (s *TransactionStore) list(match func(*models.Transaction) bool) ([]*models.Transaction, error) {
	var all []models.Transaction
	if err := s.store.db.Find(&all, nil); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	var result []*models.Transaction
	for i := range all {
		if match(&all[i]) {
			txn := all[i]
			result = append(result, &txn)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}
