package models

// BrokerAccount is an account descriptor from the brokerage API.
type BrokerAccount struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Currency  string `json:"currency"`
}

// BrokerBalances is the balance payload for one account. The upstream may
// omit the block entirely; callers treat a nil value as zero cash in the
// account's default currency.
type BrokerBalances struct {
	PerCurrency map[string]float64 `json:"per_currency"`
	Combined    float64            `json:"combined"`
}

// BrokerHolding is a position row from the brokerage API.
type BrokerHolding struct {
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
}

// BrokerActivity is a raw transaction-history row from the brokerage API.
// Type carries the upstream label verbatim; classification happens locally.
type BrokerActivity struct {
	Date        string  `json:"date"` // ISO-8601
	Type        string  `json:"type"`
	SymbolID    int64   `json:"symbol_id,omitempty"`
	Symbol      string  `json:"symbol,omitempty"`
	NetAmount   float64 `json:"net_amount"`
	Quantity    float64 `json:"quantity,omitempty"`
	Description string  `json:"description,omitempty"`
	Currency    string  `json:"currency,omitempty"`
}
