package models

import (
	"fmt"
	"strings"
	"time"
)

// TransactionType is the closed classification of a brokerage activity.
type TransactionType string

const (
	TransactionTrade      TransactionType = "trade"
	TransactionDividend   TransactionType = "dividend"
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionInterest   TransactionType = "interest"
	TransactionTransfer   TransactionType = "transfer"
	TransactionFee        TransactionType = "fee"
	TransactionTax        TransactionType = "tax"
	TransactionFX         TransactionType = "fx"
	TransactionOther      TransactionType = "other"
)

// ClassifyTransaction maps a raw upstream activity label to a TransactionType.
// Unrecognized labels fall back to TransactionOther.
func ClassifyTransaction(raw string) TransactionType {
	label := strings.ToLower(strings.TrimSpace(raw))

	switch {
	case strings.Contains(label, "dividend"), strings.Contains(label, "distribution"):
		return TransactionDividend
	case strings.Contains(label, "buy"), strings.Contains(label, "sell"), strings.Contains(label, "trade"):
		return TransactionTrade
	case strings.Contains(label, "deposit"), strings.Contains(label, "contribution"):
		return TransactionDeposit
	case strings.Contains(label, "withdrawal"), strings.Contains(label, "redemption"):
		return TransactionWithdrawal
	case strings.Contains(label, "interest"):
		return TransactionInterest
	case strings.Contains(label, "transfer"):
		return TransactionTransfer
	case strings.Contains(label, "fee"), strings.Contains(label, "commission"), strings.Contains(label, "brokerage"):
		return TransactionFee
	case strings.Contains(label, "tax"), strings.Contains(label, "withholding"):
		return TransactionTax
	case strings.Contains(label, "fx"), strings.Contains(label, "exchange"), strings.Contains(label, "conversion"):
		return TransactionFX
	default:
		return TransactionOther
	}
}

// Transaction is a dated, typed, signed cash or security event in an account.
// Immutable once persisted — sync only inserts rows whose DedupKey is new.
type Transaction struct {
	OwnerID   string          `json:"owner_id"`
	AccountID string          `json:"account_id"`
	Date      time.Time       `json:"date"`
	Type      TransactionType `json:"type"`
	RawType   string          `json:"raw_type,omitempty"`

	// Symbol is empty for pure cash events.
	Symbol      string  `json:"symbol,omitempty"`
	NetAmount   float64 `json:"net_amount"` // signed
	Units       float64 `json:"units,omitempty"`
	Description string  `json:"description,omitempty"`
	Currency    string  `json:"currency,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// DedupKey returns the identity key used for deduplication:
// (account, transaction date, symbol or empty, classified type, net amount, description).
func (t *Transaction) DedupKey() string {
	return fmt.Sprintf("%s|%s|%s|%s|%.2f|%s",
		t.AccountID,
		t.Date.Format("2006-01-02"),
		t.Symbol,
		t.Type,
		t.NetAmount,
		t.Description,
	)
}
