package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTransaction(t *testing.T) {
	cases := []struct {
		raw  string
		want TransactionType
	}{
		{"Dividend", TransactionDividend},
		{"DIST - Distribution", TransactionDividend},
		{"Buy", TransactionTrade},
		{"Sell to close", TransactionTrade},
		{"Deposit", TransactionDeposit},
		{"Contribution", TransactionDeposit},
		{"Withdrawal", TransactionWithdrawal},
		{"Interest paid", TransactionInterest},
		{"Transfer in", TransactionTransfer},
		{"Commission rebate", TransactionFee},
		{"Non-resident withholding tax", TransactionTax},
		{"FX conversion", TransactionFX},
		{"", TransactionOther},
		{"Some brand-new label", TransactionOther},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyTransaction(tc.raw), "raw=%q", tc.raw)
	}
}

func TestDedupKey_StableIdentity(t *testing.T) {
	date := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)

	a := &Transaction{
		AccountID:   "tfsa",
		Date:        date,
		Symbol:      "VDY",
		Type:        TransactionDividend,
		NetAmount:   25.50,
		Description: "Dividend payment",
	}

	// Same identity fields at a different time of day collapse to one key
	b := *a
	b.Date = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, a.DedupKey(), b.DedupKey())

	// Any identity field change produces a new key
	c := *a
	c.NetAmount = 25.51
	assert.NotEqual(t, a.DedupKey(), c.DedupKey())

	d := *a
	d.Description = "Dividend payment (adjusted)"
	assert.NotEqual(t, a.DedupKey(), d.DedupKey())
}

func TestDedupKey_EmptySymbolForCashEvents(t *testing.T) {
	txn := &Transaction{
		AccountID: "tfsa",
		Date:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Type:      TransactionDeposit,
		NetAmount: 1000,
	}
	assert.Contains(t, txn.DedupKey(), "tfsa|2024-03-01||deposit|1000.00|")
}
