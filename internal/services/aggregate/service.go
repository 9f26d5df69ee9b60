// Package aggregate combines holdings of the same instrument across
// accounts and owners and computes portfolio-wide metrics.
package aggregate

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/bobmcallan/foliosync/internal/common"
	"github.com/bobmcallan/foliosync/internal/interfaces"
	"github.com/bobmcallan/foliosync/internal/models"
)

// Service implements AggregationService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new aggregation service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{storage: storage, logger: logger}
}

// AggregateHoldings groups holdings in scope by instrument. Groups with a
// single member pass through with their own metrics; multi-member groups are
// combined.
func (s *Service) AggregateHoldings(ctx context.Context, scope interfaces.AggregationScope) ([]*models.AggregatedHolding, error) {
	holdings, err := s.holdingsInScope(ctx, scope)
	if err != nil {
		return nil, err
	}
	return CombineHoldings(holdings), nil
}

// holdingsInScope loads holdings for the requested aggregation scope.
func (s *Service) holdingsInScope(ctx context.Context, scope interfaces.AggregationScope) ([]*models.Holding, error) {
	switch {
	case scope.OwnerID != "" && scope.AccountID != "":
		holdings, err := s.storage.Holdings().ListByAccount(ctx, scope.OwnerID, scope.AccountID)
		if err != nil {
			return nil, fmt.Errorf("failed to list account holdings: %w", err)
		}
		return holdings, nil
	case scope.OwnerID != "":
		holdings, err := s.storage.Holdings().ListByOwner(ctx, scope.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("failed to list owner holdings: %w", err)
		}
		return holdings, nil
	default:
		holdings, err := s.storage.Holdings().ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list holdings: %w", err)
		}
		return holdings, nil
	}
}

// CombineHoldings groups holdings by instrument and combines each group.
// Pure function over its input; ordering is by symbol for stable output.
func CombineHoldings(holdings []*models.Holding) []*models.AggregatedHolding {
	groups := make(map[string][]*models.Holding)
	for _, h := range holdings {
		groups[h.Symbol] = append(groups[h.Symbol], h)
	}

	symbols := make([]string, 0, len(groups))
	for symbol := range groups {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	combined := make([]*models.AggregatedHolding, 0, len(groups))
	for _, symbol := range symbols {
		combined = append(combined, combineGroup(groups[symbol]))
	}
	return combined
}

// combineGroup merges one instrument's holdings across accounts.
func combineGroup(members []*models.Holding) *models.AggregatedHolding {
	agg := &models.AggregatedHolding{
		InstrumentID: members[0].InstrumentID,
		Symbol:       members[0].Symbol,
		Sector:       members[0].Sector,
		Currency:     members[0].Currency,
		Members:      len(members),
	}

	for _, h := range members {
		agg.Accounts = append(agg.Accounts, h.AccountID)
		agg.TotalUnits += h.Units
		agg.TotalCost += h.TotalCost
		agg.TotalMarketValue += h.MarketValue
		agg.TotalOpenPnl += h.OpenPnl
		agg.TotalDayPnl += h.DayPnl

		// Dividend metrics sum field by field
		agg.Dividend.TotalReceived += h.Dividend.TotalReceived
		agg.Dividend.AnnualIncome += h.Dividend.AnnualIncome
		agg.Dividend.MonthlyIncome += h.Dividend.MonthlyIncome

		if h.Dividend.LastDate.After(agg.Dividend.LastDate) {
			agg.Dividend.LastDate = h.Dividend.LastDate
			agg.Dividend.LastAmount = h.Dividend.LastAmount
		}
		if h.Dividend.Frequency > agg.Dividend.Frequency {
			agg.Dividend.Frequency = h.Dividend.Frequency
		}
	}

	if agg.TotalUnits > 0 {
		agg.WeightedAvgCost = agg.TotalCost / agg.TotalUnits
	}

	// Representative per-share amount when members disagree: most frequent
	// value wins, ties break to the larger value.
	agg.Dividend.PerShareAmount = representativePerShare(members)
	agg.Dividend.AnnualPerShare = agg.Dividend.PerShareAmount * float64(agg.Dividend.Frequency)

	// Group yield on cost is recomputed from summed values, never averaged
	// from member yields.
	if agg.TotalCost > 0 {
		agg.Dividend.YieldOnCost = agg.Dividend.AnnualIncome / agg.TotalCost * 100
		agg.Dividend.ReturnPercent = agg.Dividend.TotalReceived / agg.TotalCost * 100
	}

	agg.DividendPaying = agg.Dividend.AnnualIncome > 0 ||
		agg.Dividend.TotalReceived > 0 ||
		agg.Dividend.PerShareAmount > 0

	return agg
}

// representativePerShare picks the per-share dividend amount that occurs most
// frequently among members, breaking ties by choosing the larger value.
func representativePerShare(members []*models.Holding) float64 {
	counts := make(map[float64]int)
	for _, h := range members {
		key := roundPerShare(h.Dividend.PerShareAmount)
		counts[key]++
	}

	var best float64
	bestCount := 0
	for value, count := range counts {
		if count > bestCount || (count == bestCount && value > best) {
			best = value
			bestCount = count
		}
	}
	return best
}

// roundPerShare normalizes float noise so equal amounts group together.
func roundPerShare(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// Ensure Service implements AggregationService
var _ interfaces.AggregationService = (*Service)(nil)
