package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/foliosync/internal/common"
	"github.com/bobmcallan/foliosync/internal/models"
)

// memTransactionStore keeps transactions keyed by (owner, dedup key).
type memTransactionStore struct {
	records map[string]*models.Transaction
	inserts int
}

func newMemTransactionStore() *memTransactionStore {
	return &memTransactionStore{records: make(map[string]*models.Transaction)}
}

func (m *memTransactionStore) key(ownerID, dedupKey string) string {
	return ownerID + "\x00" + dedupKey
}

func (m *memTransactionStore) Insert(ctx context.Context, txn *models.Transaction) error {
	m.inserts++
	m.records[m.key(txn.OwnerID, txn.DedupKey())] = txn
	return nil
}

func (m *memTransactionStore) ExistsKey(ctx context.Context, ownerID, dedupKey string) (bool, error) {
	_, ok := m.records[m.key(ownerID, dedupKey)]
	return ok, nil
}

func (m *memTransactionStore) ListByAccount(ctx context.Context, ownerID, accountID string) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, txn := range m.records {
		if txn.OwnerID == ownerID && txn.AccountID == accountID {
			out = append(out, txn)
		}
	}
	return out, nil
}

func (m *memTransactionStore) ListByAccountRange(ctx context.Context, ownerID, accountID string, start, end time.Time) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, txn := range m.records {
		if txn.OwnerID == ownerID && txn.AccountID == accountID &&
			!txn.Date.Before(start) && !txn.Date.After(end) {
			out = append(out, txn)
		}
	}
	return out, nil
}

func window() (time.Time, time.Time) {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
}

func TestPersistNew_InsertsDistinctOnce(t *testing.T) {
	store := newMemTransactionStore()
	deduper := NewDeduper(store, common.NewSilentLogger())
	start, end := window()

	activities := []*models.BrokerActivity{
		activity("2024-03-01", "Dividend", 25),
		activity("2024-03-15", "Buy", -500),
	}

	inserted, errs := deduper.PersistNew(context.Background(), "o1", "acct", activities, start, end)
	assert.Empty(t, errs)
	assert.Equal(t, 2, inserted)
	assert.Len(t, store.records, 2)
}

func TestPersistNew_RerunIsIdempotent(t *testing.T) {
	store := newMemTransactionStore()
	deduper := NewDeduper(store, common.NewSilentLogger())
	start, end := window()

	activities := []*models.BrokerActivity{
		activity("2024-03-01", "Dividend", 25),
		activity("2024-03-15", "Buy", -500),
	}

	inserted, _ := deduper.PersistNew(context.Background(), "o1", "acct", activities, start, end)
	require.Equal(t, 2, inserted)

	// Second run over the same window sees everything as existing.
	inserted, errs := deduper.PersistNew(context.Background(), "o1", "acct", activities, start, end)
	assert.Empty(t, errs)
	assert.Equal(t, 0, inserted)
	assert.Len(t, store.records, 2)
}

func TestPersistNew_DuplicatesWithinBatchCollapse(t *testing.T) {
	store := newMemTransactionStore()
	deduper := NewDeduper(store, common.NewSilentLogger())
	start, end := window()

	// Overlapping chunks can hand the deduper the same activity twice.
	same := activity("2024-03-01", "Dividend", 25)
	inserted, errs := deduper.PersistNew(context.Background(), "o1", "acct",
		[]*models.BrokerActivity{same, same}, start, end)

	assert.Empty(t, errs)
	assert.Equal(t, 1, inserted)
}

func TestPersistNew_ClassifiesAndMapsFields(t *testing.T) {
	store := newMemTransactionStore()
	deduper := NewDeduper(store, common.NewSilentLogger())
	start, end := window()

	raw := &models.BrokerActivity{
		Date:        "2024-03-01T00:00:00+10:00",
		Type:        "DIV",
		Symbol:      "VDY",
		NetAmount:   25.50,
		Quantity:    0,
		Description: "Dividend payment",
		Currency:    "CAD",
	}

	inserted, errs := deduper.PersistNew(context.Background(), "o1", "acct",
		[]*models.BrokerActivity{raw}, start, end)
	require.Empty(t, errs)
	require.Equal(t, 1, inserted)

	stored, err := store.ListByAccount(context.Background(), "o1", "acct")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, models.TransactionDividend, stored[0].Type)
	assert.Equal(t, "DIV", stored[0].RawType)
	assert.Equal(t, "o1", stored[0].OwnerID)
	assert.Equal(t, 2024, stored[0].Date.Year())
}

func TestPersistNew_UnparseableDateIsolated(t *testing.T) {
	store := newMemTransactionStore()
	deduper := NewDeduper(store, common.NewSilentLogger())
	start, end := window()

	activities := []*models.BrokerActivity{
		{Date: "not-a-date", Type: "Buy", NetAmount: -100},
		activity("2024-03-01", "Dividend", 25),
	}

	inserted, errs := deduper.PersistNew(context.Background(), "o1", "acct", activities, start, end)
	assert.Len(t, errs, 1)
	assert.Equal(t, 1, inserted)
}
