// Package interfaces defines service contracts for FolioSync
package interfaces

import (
	"context"

	"github.com/bobmcallan/foliosync/internal/models"
)

// BrokerageClient provides access to the brokerage API. All calls take the
// owner's bearer token; date arguments are ISO-8601 with an explicit fixed
// offset and whole-day time (the brokerage's local exchange timezone).
type BrokerageClient interface {
	// GetAccounts retrieves all accounts visible to the credential
	GetAccounts(ctx context.Context, token string) ([]*models.BrokerAccount, error)

	// GetAccountBalances retrieves cash balances for one account.
	// May return nil when the upstream omits the balance block.
	GetAccountBalances(ctx context.Context, token, accountID string) (*models.BrokerBalances, error)

	// GetHoldings retrieves current positions for one account
	GetHoldings(ctx context.Context, token, accountID string) ([]*models.BrokerHolding, error)

	// GetTransactions retrieves transaction history for one account within
	// [startISO, endISO] formatted as YYYY-MM-DDT00:00:00±HH:MM
	GetTransactions(ctx context.Context, token, accountID, startISO, endISO string) ([]*models.BrokerActivity, error)

	// GetInstruments retrieves catalog entries for instrument IDs
	GetInstruments(ctx context.Context, token string, ids []int64) ([]*models.Instrument, error)
}

// CredentialProvider supplies a currently-valid bearer credential per owner.
type CredentialProvider interface {
	// Token returns the owner's bearer credential
	Token(ctx context.Context, ownerID string) (string, error)

	// Healthy reports whether the owner has a usable, unexpired credential
	Healthy(ctx context.Context, ownerID string) bool
}
