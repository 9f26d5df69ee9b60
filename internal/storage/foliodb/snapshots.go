package foliodb

import (
	"context"
	"fmt"
	"sort"

	"github.com/bobmcallan/foliosync/internal/models"
)

// snapshotKey builds the composite key: owner_id + \x00 + snapshot_id
func snapshotKey(ownerID, snapshotID string) string {
	return ownerID + keySep + snapshotID
}

// SnapshotStore manages append-only portfolio snapshots.
type SnapshotStore struct {
	store *Store
}

func (s *SnapshotStore) Append(_ context.Context, snapshot *models.PortfolioSnapshot) error {
	ck := snapshotKey(snapshot.OwnerID, snapshot.ID)
	if err := s.store.db.Insert(ck, snapshot); err != nil {
		return fmt.Errorf("failed to append snapshot '%s': %w", snapshot.ID, err)
	}
	return nil
}

// ListByOwner returns the owner's snapshots, newest first.
func (s *SnapshotStore) ListByOwner(_ context.Context, ownerID string) ([]*models.PortfolioSnapshot, error) {
	var all []models.PortfolioSnapshot
	if err := s.store.db.Find(&all, nil); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	var result []*models.PortfolioSnapshot
	for i := range all {
		if all[i].OwnerID == ownerID {
			snap := all[i]
			result = append(result, &snap)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TakenAt.After(result[j].TakenAt) })
	return result, nil
}

// Prune deletes the owner's oldest snapshots beyond keep. Returns the number
// deleted.
func (s *SnapshotStore) Prune(ctx context.Context, ownerID string, keep int) (int, error) {
	snapshots, err := s.ListByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	if keep <= 0 || len(snapshots) <= keep {
		return 0, nil
	}

	pruned := 0
	for _, snap := range snapshots[keep:] {
		ck := snapshotKey(snap.OwnerID, snap.ID)
		if err := s.store.db.Delete(ck, models.PortfolioSnapshot{}); err == nil {
			pruned++
		}
	}

	if pruned > 0 {
		s.store.logger.Debug().
			Str("owner", ownerID).
			Int("pruned", pruned).
			Msg("Pruned old snapshots")
	}
	return pruned, nil
}
