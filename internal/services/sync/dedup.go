package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/foliosync/internal/common"
	"github.com/bobmcallan/foliosync/internal/interfaces"
	"github.com/bobmcallan/foliosync/internal/models"
)

// Deduper decides new-vs-existing transactions and performs idempotent
// inserts. Persisted transactions are never updated in place — a record is
// written only when its identity key is unseen.
type Deduper struct {
	store  interfaces.TransactionStore
	logger *common.Logger
}

// NewDeduper creates a transaction deduplicator.
func NewDeduper(store interfaces.TransactionStore, logger *common.Logger) *Deduper {
	return &Deduper{store: store, logger: logger}
}

// PersistNew converts raw activities to transactions and inserts the ones
// whose dedup key is new within the sync window. Each write failure is
// isolated: it is recorded in errs and siblings continue.
func (d *Deduper) PersistNew(ctx context.Context, ownerID, accountID string, activities []*models.BrokerActivity, windowStart, windowEnd time.Time) (inserted int, errs []string) {
	seen, err := d.existingKeys(ctx, ownerID, accountID, windowStart, windowEnd)
	if err != nil {
		// Fall back to per-record existence checks against the store.
		d.logger.Warn().Err(err).Str("account", accountID).Msg("Failed to preload dedup keys")
		seen = make(map[string]bool)
	}

	for _, activity := range activities {
		txn, err := activityToTransaction(ownerID, accountID, activity)
		if err != nil {
			errs = append(errs, fmt.Sprintf("transaction %s/%s: %v", accountID, activity.Date, err))
			continue
		}

		key := txn.DedupKey()
		if seen[key] {
			continue
		}

		exists, err := d.store.ExistsKey(ctx, ownerID, key)
		if err != nil {
			errs = append(errs, fmt.Sprintf("transaction %s: %v", key, err))
			continue
		}
		if exists {
			seen[key] = true
			continue
		}

		if err := d.store.Insert(ctx, txn); err != nil {
			errs = append(errs, fmt.Sprintf("transaction %s: %v", key, err))
			continue
		}

		seen[key] = true
		inserted++
	}

	return inserted, errs
}

// existingKeys loads dedup keys already persisted in the window.
func (d *Deduper) existingKeys(ctx context.Context, ownerID, accountID string, start, end time.Time) (map[string]bool, error) {
	existing, err := d.store.ListByAccountRange(ctx, ownerID, accountID, start, end)
	if err != nil {
		return nil, err
	}
	keys := make(map[string]bool, len(existing))
	for _, txn := range existing {
		keys[txn.DedupKey()] = true
	}
	return keys, nil
}

// activityToTransaction maps a raw upstream activity to the persisted model,
// classifying its type.
func activityToTransaction(ownerID, accountID string, activity *models.BrokerActivity) (*models.Transaction, error) {
	date, err := parseActivityDate(activity.Date)
	if err != nil {
		return nil, fmt.Errorf("unparseable date %q: %w", activity.Date, err)
	}

	return &models.Transaction{
		OwnerID:     ownerID,
		AccountID:   accountID,
		Date:        date,
		Type:        models.ClassifyTransaction(activity.Type),
		RawType:     activity.Type,
		Symbol:      activity.Symbol,
		NetAmount:   activity.NetAmount,
		Units:       activity.Quantity,
		Description: activity.Description,
		Currency:    activity.Currency,
		CreatedAt:   time.Now(),
	}, nil
}

// parseActivityDate accepts full ISO-8601 timestamps and bare dates.
func parseActivityDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}
