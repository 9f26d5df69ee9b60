package models

// AggregatedHolding combines holdings of the same instrument across
// accounts/owners within an aggregation scope.
type AggregatedHolding struct {
	InstrumentID int64    `json:"instrument_id"`
	Symbol       string   `json:"symbol"`
	Accounts     []string `json:"accounts"`
	Members      int      `json:"members"`

	TotalUnits       float64 `json:"total_units"`
	TotalCost        float64 `json:"total_cost"`
	WeightedAvgCost  float64 `json:"weighted_avg_cost"`
	TotalMarketValue float64 `json:"total_market_value"`
	TotalOpenPnl     float64 `json:"total_open_pnl"`
	TotalDayPnl      float64 `json:"total_day_pnl"`

	Sector   string `json:"sector,omitempty"`
	Currency string `json:"currency,omitempty"`

	Dividend       DividendMetrics `json:"dividend"`
	DividendPaying bool            `json:"dividend_paying"`
}

// PortfolioSummary is a portfolio-wide rollup over an aggregation scope.
type PortfolioSummary struct {
	TotalMarketValue     float64 `json:"total_market_value"`
	TotalCost            float64 `json:"total_cost"`
	TotalOpenPnl         float64 `json:"total_open_pnl"`
	TotalDayPnl          float64 `json:"total_day_pnl"`
	TotalAnnualDividend  float64 `json:"total_annual_dividend"`
	TotalMonthlyDividend float64 `json:"total_monthly_dividend"`
	TotalReceived        float64 `json:"total_received"`
	HoldingCount         int     `json:"holding_count"`
	DividendPayingCount  int     `json:"dividend_paying_count"`

	// YieldOnCost is the selected portfolio-wide figure (see
	// YieldOnCostDividendPaying and YieldOnCostAll for both bases).
	YieldOnCost float64 `json:"yield_on_cost"`

	// YieldOnCostDividendPaying restricts cost and dividend to
	// dividend-paying holdings only. This is the default basis.
	YieldOnCostDividendPaying float64 `json:"yield_on_cost_dividend_paying"`

	// YieldOnCostAll uses every holding's cost and dividend.
	YieldOnCostAll float64 `json:"yield_on_cost_all"`

	// Allocation breakdowns as percentages of total current market value.
	SectorAllocation   map[string]float64 `json:"sector_allocation,omitempty"`
	CurrencyAllocation map[string]float64 `json:"currency_allocation,omitempty"`
	AccountAllocation  map[string]float64 `json:"account_allocation,omitempty"`
	OwnerAllocation    map[string]float64 `json:"owner_allocation,omitempty"`

	Holdings []*AggregatedHolding `json:"holdings,omitempty"`
}
