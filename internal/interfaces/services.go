// Package interfaces defines service contracts for FolioSync
package interfaces

import (
	"context"

	"github.com/bobmcallan/foliosync/internal/models"
)

// SyncService runs the account → holdings → transactions → snapshot sequence
// for one owner. At most one sync per owner is in flight at any time.
type SyncService interface {
	// Synchronize runs a sync and returns a report even on partial failure.
	// Returns a ConcurrencyError if a sync is already running for the owner
	// and a ValidationError if the owner or credential is unusable.
	Synchronize(ctx context.Context, ownerID string, opts SyncOptions) (*models.SyncReport, error)
}

// SyncOptions configures a sync run.
type SyncOptions struct {
	// FullSync selects the 6-month lookback and holdings rebuild; false
	// selects the 1-month incremental behavior.
	FullSync bool

	// ForceSnapshot creates a snapshot even on an incremental sync.
	ForceSnapshot bool
}

// AggregationScope selects the breadth over which holdings are grouped.
// Zero value means all holdings; OwnerID narrows to one owner; AccountID
// (with OwnerID) narrows to one account.
type AggregationScope struct {
	OwnerID   string
	AccountID string
}

// SummaryOptions configures portfolio summary computation.
type SummaryOptions struct {
	// AllHoldingsYield selects the all-holdings yield-on-cost basis for the
	// summary's primary figure. Default (false) restricts to dividend-paying
	// holdings only.
	AllHoldingsYield bool

	// IncludeHoldings attaches the aggregated holdings to the summary.
	IncludeHoldings bool
}

// AggregationService combines holdings of the same instrument across
// accounts/owners and computes portfolio-wide metrics.
type AggregationService interface {
	// AggregateHoldings groups holdings in scope by instrument
	AggregateHoldings(ctx context.Context, scope AggregationScope) ([]*models.AggregatedHolding, error)

	// PortfolioSummary computes portfolio-wide totals, yields, and
	// allocation breakdowns over the scope
	PortfolioSummary(ctx context.Context, scope AggregationScope, opts SummaryOptions) (*models.PortfolioSummary, error)
}
