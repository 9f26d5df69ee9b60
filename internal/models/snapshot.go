package models

import "time"

// PortfolioSnapshot is an immutable point-in-time rollup of an owner's
// portfolio. Append-only; old snapshots are pruned by retention count.
type PortfolioSnapshot struct {
	ID      string    `json:"id"`
	OwnerID string    `json:"owner_id"`
	TakenAt time.Time `json:"taken_at"`

	TotalMarketValue    float64 `json:"total_market_value"`
	TotalCost           float64 `json:"total_cost"`
	TotalAnnualDividend float64 `json:"total_annual_dividend"`
	YieldOnCost         float64 `json:"yield_on_cost"`
	HoldingCount        int     `json:"holding_count"`

	// Allocation breakdowns as percentages of total current market value.
	SectorAllocation   map[string]float64 `json:"sector_allocation,omitempty"`
	CurrencyAllocation map[string]float64 `json:"currency_allocation,omitempty"`
	AccountAllocation  map[string]float64 `json:"account_allocation,omitempty"`
}
