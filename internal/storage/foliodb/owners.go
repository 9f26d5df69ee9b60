package foliodb

import (
	"context"
	"fmt"
	"sort"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/foliosync/internal/models"
)

// OwnerStore manages tracked owners.
type OwnerStore struct {
	store *Store
}

func (s *OwnerStore) Get(_ context.Context, ownerID string) (*models.Owner, error) {
	var owner models.Owner
	if err := s.store.db.Get(ownerID, &owner); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("owner '%s' not found", ownerID)
		}
		return nil, fmt.Errorf("failed to get owner '%s': %w", ownerID, err)
	}
	return &owner, nil
}

func (s *OwnerStore) Save(_ context.Context, owner *models.Owner) error {
	if err := s.store.db.Upsert(owner.ID, owner); err != nil {
		return fmt.Errorf("failed to save owner '%s': %w", owner.ID, err)
	}
	return nil
}

// Delete removes the owner and cascades to every dependent record: accounts,
// holdings, transactions, and snapshots.
func (s *OwnerStore) Delete(ctx context.Context, ownerID string) error {
	if err := s.store.db.Delete(ownerID, models.Owner{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete owner '%s': %w", ownerID, err)
	}

	var accounts []models.Account
	if err := s.store.db.Find(&accounts, nil); err == nil {
		for _, account := range accounts {
			if account.OwnerID == ownerID {
				_ = s.store.db.Delete(accountKey(account.OwnerID, account.AccountID), models.Account{})
			}
		}
	}

	var holdings []models.Holding
	if err := s.store.db.Find(&holdings, nil); err == nil {
		for _, h := range holdings {
			if h.OwnerID == ownerID {
				_ = s.store.db.Delete(holdingKey(h.OwnerID, h.AccountID, h.Symbol), models.Holding{})
			}
		}
	}

	var transactions []models.Transaction
	if err := s.store.db.Find(&transactions, nil); err == nil {
		for i := range transactions {
			if transactions[i].OwnerID == ownerID {
				_ = s.store.db.Delete(transactionKey(ownerID, transactions[i].DedupKey()), models.Transaction{})
			}
		}
	}

	var snapshots []models.PortfolioSnapshot
	if err := s.store.db.Find(&snapshots, nil); err == nil {
		for _, snap := range snapshots {
			if snap.OwnerID == ownerID {
				_ = s.store.db.Delete(snapshotKey(snap.OwnerID, snap.ID), models.PortfolioSnapshot{})
			}
		}
	}

	s.store.logger.Info().Str("owner", ownerID).Msg("Owner deleted with cascade")
	return nil
}

func (s *OwnerStore) List(_ context.Context) ([]*models.Owner, error) {
	var all []models.Owner
	if err := s.store.db.Find(&all, nil); err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	result := make([]*models.Owner, 0, len(all))
	for i := range all {
		owner := all[i]
		result = append(result, &owner)
	}
	return result, nil
}

func (s *OwnerStore) ListActive(ctx context.Context) ([]*models.Owner, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var active []*models.Owner
	for _, owner := range all {
		if owner.Active {
			active = append(active, owner)
		}
	}
	return active, nil
}
