package foliodb

import (
	"context"
	"fmt"
	"sort"

	"github.com/bobmcallan/foliosync/internal/models"
)

// holdingKey builds the composite key: owner_id + \x00 + account_id + \x00 + symbol
func holdingKey(ownerID, accountID, symbol string) string {
	return ownerID + keySep + accountID + keySep + symbol
}

// HoldingStore manages positions.
type HoldingStore struct {
	store *Store
}

func (s *HoldingStore) Upsert(_ context.Context, holding *models.Holding) error {
	ck := holdingKey(holding.OwnerID, holding.AccountID, holding.Symbol)
	if err := s.store.db.Upsert(ck, holding); err != nil {
		return fmt.Errorf("failed to upsert holding '%s': %w", holding.Symbol, err)
	}
	return nil
}

func (s *HoldingStore) ListByAccount(ctx context.Context, ownerID, accountID string) ([]*models.Holding, error) {
	return s.list(func(h *models.Holding) bool {
		return h.OwnerID == ownerID && h.AccountID == accountID
	})
}

func (s *HoldingStore) ListByOwner(ctx context.Context, ownerID string) ([]*models.Holding, error) {
	return s.list(func(h *models.Holding) bool { return h.OwnerID == ownerID })
}

func (s *HoldingStore) ListAll(ctx context.Context) ([]*models.Holding, error) {
	return s.list(func(*models.Holding) bool { return true })
}

func (s *HoldingStore) list(match func(*models.Holding) bool) ([]*models.Holding, error) {
	var all []models.Holding
	if err := s.store.db.Find(&all, nil); err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}

	var result []*models.Holding
	for i := range all {
		if match(&all[i]) {
			holding := all[i]
			result = append(result, &holding)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].AccountID != result[j].AccountID {
			return result[i].AccountID < result[j].AccountID
		}
		return result[i].Symbol < result[j].Symbol
	})
	return result, nil
}

// DeleteByAccount clears an account's holdings ahead of a full-sync rebuild.
func (s *HoldingStore) DeleteByAccount(ctx context.Context, ownerID, accountID string) (int, error) {
	holdings, err := s.ListByAccount(ctx, ownerID, accountID)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, h := range holdings {
		ck := holdingKey(h.OwnerID, h.AccountID, h.Symbol)
		if err := s.store.db.Delete(ck, models.Holding{}); err == nil {
			deleted++
		}
	}
	return deleted, nil
}
