package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/foliosync/internal/models"
)

func holding(account, symbol string, units, totalCost float64) *models.Holding {
	return &models.Holding{
		OwnerID:   "owner-1",
		AccountID: account,
		Symbol:    symbol,
		Units:     units,
		TotalCost: totalCost,
	}
}

func TestCombineHoldings_WeightedAverageCost(t *testing.T) {
	holdings := []*models.Holding{
		holding("tfsa", "VDY", 10, 1000),
		holding("rrsp", "VDY", 5, 600),
	}

	combined := CombineHoldings(holdings)
	require.Len(t, combined, 1)

	agg := combined[0]
	assert.Equal(t, 2, agg.Members)
	assert.InDelta(t, 15, agg.TotalUnits, 0.0001)
	assert.InDelta(t, 1600, agg.TotalCost, 0.0001)
	assert.InDelta(t, 106.67, agg.WeightedAvgCost, 0.01)
	assert.ElementsMatch(t, []string{"tfsa", "rrsp"}, agg.Accounts)
}

func TestCombineHoldings_ZeroSharesNoDivisionByZero(t *testing.T) {
	holdings := []*models.Holding{
		holding("tfsa", "GONE", 0, 0),
		holding("rrsp", "GONE", 0, 0),
	}

	combined := CombineHoldings(holdings)
	require.Len(t, combined, 1)
	assert.Equal(t, 0.0, combined[0].WeightedAvgCost)
}

func TestCombineHoldings_DividendMetricsSummedYieldRecomputed(t *testing.T) {
	h1 := holding("tfsa", "VDY", 10, 1000)
	h1.Dividend = models.DividendMetrics{
		PerShareAmount: 0.30,
		Frequency:      4,
		AnnualIncome:   40,
		MonthlyIncome:  40.0 / 12,
		TotalReceived:  100,
		YieldOnCost:    4.0, // member yields must not be averaged
	}
	h2 := holding("rrsp", "VDY", 5, 600)
	h2.Dividend = models.DividendMetrics{
		PerShareAmount: 0.30,
		Frequency:      4,
		AnnualIncome:   20,
		MonthlyIncome:  20.0 / 12,
		TotalReceived:  50,
		YieldOnCost:    3.3,
	}

	combined := CombineHoldings([]*models.Holding{h1, h2})
	require.Len(t, combined, 1)

	agg := combined[0]
	assert.InDelta(t, 150, agg.Dividend.TotalReceived, 0.0001)
	assert.InDelta(t, 60, agg.Dividend.AnnualIncome, 0.0001)
	assert.InDelta(t, 5, agg.Dividend.MonthlyIncome, 0.0001)

	// Recomputed: 60 / 1600 * 100 = 3.75, not the average of 4.0 and 3.3
	assert.InDelta(t, 3.75, agg.Dividend.YieldOnCost, 0.0001)
	assert.True(t, agg.DividendPaying)
}

func TestCombineHoldings_SingleMemberPassthrough(t *testing.T) {
	h := holding("tfsa", "CSL", 20, 5000)
	h.MarketValue = 6000
	h.OpenPnl = 1000

	combined := CombineHoldings([]*models.Holding{h})
	require.Len(t, combined, 1)
	assert.Equal(t, 1, combined[0].Members)
	assert.InDelta(t, 6000, combined[0].TotalMarketValue, 0.0001)
	assert.InDelta(t, 1000, combined[0].TotalOpenPnl, 0.0001)
}

func TestRepresentativePerShare_MostFrequentWins(t *testing.T) {
	h1 := holding("a", "X", 1, 1)
	h1.Dividend.PerShareAmount = 0.25
	h2 := holding("b", "X", 1, 1)
	h2.Dividend.PerShareAmount = 0.25
	h3 := holding("c", "X", 1, 1)
	h3.Dividend.PerShareAmount = 0.30

	assert.InDelta(t, 0.25, representativePerShare([]*models.Holding{h1, h2, h3}), 0.0001)
}

func TestRepresentativePerShare_TieBreaksHigher(t *testing.T) {
	h1 := holding("a", "X", 1, 1)
	h1.Dividend.PerShareAmount = 0.25
	h2 := holding("b", "X", 1, 1)
	h2.Dividend.PerShareAmount = 0.30

	assert.InDelta(t, 0.30, representativePerShare([]*models.Holding{h1, h2}), 0.0001)
}

func TestCombineHoldings_DividendPayingClassification(t *testing.T) {
	// No projection, but historical receipts → still dividend-paying
	h := holding("tfsa", "OLD", 10, 100)
	h.Dividend.TotalReceived = 12.50

	combined := CombineHoldings([]*models.Holding{h})
	require.Len(t, combined, 1)
	assert.True(t, combined[0].DividendPaying)

	// Nothing at all → not dividend-paying
	h2 := holding("tfsa", "GROWTH", 10, 100)
	combined = CombineHoldings([]*models.Holding{h2})
	require.Len(t, combined, 1)
	assert.False(t, combined[0].DividendPaying)
}

func TestCombineHoldings_LatestDividendDateWins(t *testing.T) {
	h1 := holding("a", "X", 1, 1)
	h1.Dividend.LastDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h1.Dividend.LastAmount = 10
	h2 := holding("b", "X", 1, 1)
	h2.Dividend.LastDate = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	h2.Dividend.LastAmount = 12

	combined := CombineHoldings([]*models.Holding{h1, h2})
	require.Len(t, combined, 1)
	assert.InDelta(t, 12, combined[0].Dividend.LastAmount, 0.0001)
	assert.Equal(t, h2.Dividend.LastDate, combined[0].Dividend.LastDate)
}
