package models

import "time"

// Account represents one brokerage account belonging to an owner.
// AccountID is the upstream account identifier, unique per owner.
type Account struct {
	OwnerID   string `json:"owner_id"`
	AccountID string `json:"account_id"`
	Name      string `json:"name"`

	// Currency is the account's default currency, applied when the upstream
	// balance payload omits one.
	Currency string `json:"currency"`

	// Balances maps currency code to cash balance. A missing upstream balance
	// block yields an empty map and zero combined balance.
	Balances        map[string]float64 `json:"balances"`
	CombinedBalance float64            `json:"combined_balance"`

	LastUpdated time.Time `json:"last_updated"`
}
