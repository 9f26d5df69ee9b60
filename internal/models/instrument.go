package models

import "time"

// Instrument is a global catalog entry for a tradable security, keyed by the
// upstream numeric instrument identifier. Refreshed lazily on a TTL whenever
// referenced by a holdings sync.
type Instrument struct {
	ID       int64  `json:"id"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Sector   string `json:"sector,omitempty"`

	LastPrice float64 `json:"last_price"`
	Volume    int64   `json:"volume"`

	// Dividend projection fields
	DividendPerShare  float64 `json:"dividend_per_share"`
	DividendFrequency string  `json:"dividend_frequency,omitempty"` // e.g. "monthly", "quarterly"
	DividendYield     float64 `json:"dividend_yield"`               // percent

	LastUpdated time.Time `json:"last_updated"`
}
