package models

import "time"

// Holding represents a quantity of one instrument held in one account.
// Identity key is (OwnerID, AccountID, Symbol).
type Holding struct {
	OwnerID      string  `json:"owner_id"`
	AccountID    string  `json:"account_id"`
	InstrumentID int64   `json:"instrument_id"`
	Symbol       string  `json:"symbol"`
	Units        float64 `json:"units"`
	AvgCost      float64 `json:"avg_cost"`
	TotalCost    float64 `json:"total_cost"`
	CurrentPrice float64 `json:"current_price"`
	MarketValue  float64 `json:"market_value"`
	OpenPnl      float64 `json:"open_pnl"`
	DayPnl       float64 `json:"day_pnl"`
	RealizedPnl  float64 `json:"realized_pnl"`
	Currency     string  `json:"currency"`
	Sector       string  `json:"sector,omitempty"`

	Dividend DividendMetrics `json:"dividend"`

	LastUpdated time.Time `json:"last_updated"`
}

// DividendMetrics combines historical dividend fact with forward projection
// for a single holding.
type DividendMetrics struct {
	// Projection inputs
	PerShareAmount float64 `json:"per_share_amount"`
	Frequency      int     `json:"frequency"` // payments per year

	// Forward-looking projection
	AnnualPerShare float64 `json:"annual_per_share"`
	AnnualIncome   float64 `json:"annual_income"`
	MonthlyIncome  float64 `json:"monthly_income"`

	// Historical fact
	TotalReceived float64   `json:"total_received"`
	LastAmount    float64   `json:"last_amount"`
	LastDate      time.Time `json:"last_date,omitzero"`

	// ReturnPercent is realized: dividends actually received over total cost.
	ReturnPercent float64 `json:"return_percent"`

	// YieldOnCost is projected: annual per-share dividend over average cost.
	// Distinct from ReturnPercent and never interchangeable with it.
	YieldOnCost float64 `json:"yield_on_cost"`

	AdjustedCostPerShare float64 `json:"adjusted_cost_per_share"`
}
