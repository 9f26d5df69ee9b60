package foliodb

import (
	"context"
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/foliosync/internal/models"
)

// InstrumentStore manages the global instrument catalog, keyed by the
// upstream numeric instrument ID.
type InstrumentStore struct {
	store *Store
}

func (s *InstrumentStore) Get(_ context.Context, id int64) (*models.Instrument, error) {
	var instrument models.Instrument
	if err := s.store.db.Get(id, &instrument); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("instrument %d not found", id)
		}
		return nil, fmt.Errorf("failed to get instrument %d: %w", id, err)
	}
	return &instrument, nil
}

func (s *InstrumentStore) Upsert(_ context.Context, instrument *models.Instrument) error {
	if err := s.store.db.Upsert(instrument.ID, instrument); err != nil {
		return fmt.Errorf("failed to upsert instrument %d: %w", instrument.ID, err)
	}
	return nil
}

// GetBatch returns the catalog entries that exist for the given IDs. Missing
// IDs are skipped, not errors.
func (s *InstrumentStore) GetBatch(ctx context.Context, ids []int64) ([]*models.Instrument, error) {
	var result []*models.Instrument
	for _, id := range ids {
		instrument, err := s.Get(ctx, id)
		if err != nil {
			continue
		}
		result = append(result, instrument)
	}
	return result, nil
}
