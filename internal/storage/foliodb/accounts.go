package foliodb

import (
	"context"
	"fmt"
	"sort"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/foliosync/internal/models"
)

// accountKey builds the composite key: owner_id + \x00 + account_id
func accountKey(ownerID, accountID string) string {
	return ownerID + keySep + accountID
}

// AccountStore manages brokerage accounts.
type AccountStore struct {
	store *Store
}

func (s *AccountStore) Get(_ context.Context, ownerID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := s.store.db.Get(accountKey(ownerID, accountID), &account); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("account '%s' not found for owner '%s'", accountID, ownerID)
		}
		return nil, fmt.Errorf("failed to get account '%s': %w", accountID, err)
	}
	return &account, nil
}

func (s *AccountStore) Upsert(_ context.Context, account *models.Account) error {
	ck := accountKey(account.OwnerID, account.AccountID)
	if err := s.store.db.Upsert(ck, account); err != nil {
		return fmt.Errorf("failed to upsert account '%s': %w", account.AccountID, err)
	}
	return nil
}

func (s *AccountStore) ListByOwner(_ context.Context, ownerID string) ([]*models.Account, error) {
	var all []models.Account
	if err := s.store.db.Find(&all, nil); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	var result []*models.Account
	for i := range all {
		if all[i].OwnerID == ownerID {
			account := all[i]
			result = append(result, &account)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AccountID < result[j].AccountID })
	return result, nil
}
