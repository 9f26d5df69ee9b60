package aggregate

import (
	"context"

	"github.com/bobmcallan/foliosync/internal/interfaces"
	"github.com/bobmcallan/foliosync/internal/models"
)

// PortfolioSummary computes portfolio-wide totals, both yield-on-cost bases,
// and allocation breakdowns over the scope.
func (s *Service) PortfolioSummary(ctx context.Context, scope interfaces.AggregationScope, opts interfaces.SummaryOptions) (*models.PortfolioSummary, error) {
	holdings, err := s.holdingsInScope(ctx, scope)
	if err != nil {
		return nil, err
	}

	aggregated := CombineHoldings(holdings)
	summary := SummarizeHoldings(holdings, aggregated, opts)

	if opts.IncludeHoldings {
		summary.Holdings = aggregated
	}

	s.logger.Debug().
		Int("holdings", summary.HoldingCount).
		Int("dividend_paying", summary.DividendPayingCount).
		Float64("total_value", summary.TotalMarketValue).
		Msg("Portfolio summary computed")

	return summary, nil
}

// SummarizeHoldings rolls aggregated holdings up into a portfolio summary.
// Allocation percentages are computed from the raw per-account holdings so
// owner and account breakdowns survive aggregation.
func SummarizeHoldings(holdings []*models.Holding, aggregated []*models.AggregatedHolding, opts interfaces.SummaryOptions) *models.PortfolioSummary {
	summary := &models.PortfolioSummary{
		HoldingCount: len(aggregated),
	}

	var divPayingCost, divPayingAnnual float64

	for _, agg := range aggregated {
		summary.TotalMarketValue += agg.TotalMarketValue
		summary.TotalCost += agg.TotalCost
		summary.TotalOpenPnl += agg.TotalOpenPnl
		summary.TotalDayPnl += agg.TotalDayPnl
		summary.TotalAnnualDividend += agg.Dividend.AnnualIncome
		summary.TotalMonthlyDividend += agg.Dividend.MonthlyIncome
		summary.TotalReceived += agg.Dividend.TotalReceived

		if agg.DividendPaying {
			summary.DividendPayingCount++
			divPayingCost += agg.TotalCost
			divPayingAnnual += agg.Dividend.AnnualIncome
		}
	}

	// Two distinct portfolio-wide yield-on-cost figures
	if summary.TotalCost > 0 {
		summary.YieldOnCostAll = summary.TotalAnnualDividend / summary.TotalCost * 100
	}
	if divPayingCost > 0 {
		summary.YieldOnCostDividendPaying = divPayingAnnual / divPayingCost * 100
	}

	if opts.AllHoldingsYield {
		summary.YieldOnCost = summary.YieldOnCostAll
	} else {
		summary.YieldOnCost = summary.YieldOnCostDividendPaying
	}

	summary.SectorAllocation = allocation(holdings, summary.TotalMarketValue, func(h *models.Holding) string {
		if h.Sector == "" {
			return "Unclassified"
		}
		return h.Sector
	})
	summary.CurrencyAllocation = allocation(holdings, summary.TotalMarketValue, func(h *models.Holding) string {
		return h.Currency
	})
	summary.AccountAllocation = allocation(holdings, summary.TotalMarketValue, func(h *models.Holding) string {
		return h.AccountID
	})
	summary.OwnerAllocation = allocation(holdings, summary.TotalMarketValue, func(h *models.Holding) string {
		return h.OwnerID
	})

	return summary
}

// allocation computes a percentage-of-market-value breakdown keyed by the
// classifier.
func allocation(holdings []*models.Holding, totalValue float64, classify func(*models.Holding) string) map[string]float64 {
	if totalValue <= 0 || len(holdings) == 0 {
		return nil
	}

	result := make(map[string]float64)
	for _, h := range holdings {
		key := classify(h)
		if key == "" {
			continue
		}
		result[key] += h.MarketValue / totalValue * 100
	}
	return result
}
