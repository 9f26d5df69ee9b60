// Package dividend derives historical and projected dividend metrics for
// holdings.
package dividend

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/foliosync/internal/common"
	"github.com/bobmcallan/foliosync/internal/models"
)

const (
	// minAdjustedCost floors the dividend-adjusted cost per share.
	minAdjustedCost = 0.01

	// Anomaly thresholds — flagged in logs, never block persistence.
	maxSaneYieldOnCost = 50.0
	maxSaneFrequency   = 12

	// ratioTolerance bounds how far the implied payments-per-year ratio may
	// sit from a standard frequency before the signal is discarded.
	ratioTolerance = 0.25
)

// Calculator produces DividendMetrics blocks for holdings.
type Calculator struct {
	logger *common.Logger
}

// NewCalculator creates a dividend calculator.
func NewCalculator(logger *common.Logger) *Calculator {
	return &Calculator{logger: logger}
}

// Metrics derives the dividend metrics block for one holding from its
// instrument's projection fields and the holding's historical
// dividend-classified transactions. On any internal error it returns the
// zero-value block — a single holding's calculation failure must not abort
// the account's sync.
func (c *Calculator) Metrics(holding *models.Holding, instrument *models.Instrument, dividends []*models.Transaction) (metrics models.DividendMetrics) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().
				Str("symbol", holding.Symbol).
				Interface("panic", r).
				Msg("Dividend calculation failed, returning zero metrics")
			metrics = models.DividendMetrics{}
		}
	}()

	metrics.TotalReceived, metrics.LastAmount, metrics.LastDate = historical(dividends)

	var perShare float64
	if instrument != nil {
		perShare = instrument.DividendPerShare
	}
	metrics.PerShareAmount = perShare
	metrics.Frequency = c.resolveFrequency(holding, instrument, dividends)

	// Forward projection
	metrics.AnnualPerShare = perShare * float64(metrics.Frequency)
	metrics.AnnualIncome = metrics.AnnualPerShare * holding.Units
	metrics.MonthlyIncome = metrics.AnnualIncome / 12

	// Realized return: dividends actually received over cost
	if holding.TotalCost > 0 {
		metrics.ReturnPercent = metrics.TotalReceived / holding.TotalCost * 100
	}

	// Projected yield on cost: distinct from realized return
	if holding.AvgCost > 0 {
		metrics.YieldOnCost = metrics.AnnualPerShare / holding.AvgCost * 100
	}

	metrics.AdjustedCostPerShare = holding.AvgCost
	if holding.Units > 0 {
		adjusted := holding.AvgCost - metrics.TotalReceived/holding.Units
		if adjusted < minAdjustedCost {
			adjusted = minAdjustedCost
		}
		metrics.AdjustedCostPerShare = adjusted
	}

	c.flagAnomalies(holding.Symbol, &metrics)

	return metrics
}

// PerShareFromTransaction derives the per-share dividend amount paid by one
// dividend transaction.
func PerShareFromTransaction(netAmount, units float64) float64 {
	if units <= 0 {
		return 0
	}
	return math.Abs(netAmount) / units
}

// historical sums absolute net amounts over dividend transactions and finds
// the most recent payment.
func historical(dividends []*models.Transaction) (total, lastAmount float64, lastDate time.Time) {
	for _, txn := range dividends {
		if txn.Type != models.TransactionDividend {
			continue
		}
		amount := math.Abs(txn.NetAmount)
		total += amount
		if txn.Date.After(lastDate) {
			lastDate = txn.Date
			lastAmount = amount
		}
	}
	return total, lastAmount, lastDate
}

// resolveFrequency determines payments-per-year, in priority order:
// explicit instrument frequency string, yield-vs-amount ratio inference,
// historical payment-gap inference, then a quarterly default when the
// instrument pays a nonzero dividend.
func (c *Calculator) resolveFrequency(holding *models.Holding, instrument *models.Instrument, dividends []*models.Transaction) int {
	if instrument != nil {
		if freq := parseFrequency(instrument.DividendFrequency); freq > 0 {
			return freq
		}
		if freq := inferFromYieldRatio(instrument); freq > 0 {
			return freq
		}
	}

	if freq := inferFromPaymentGaps(dividends); freq > 0 {
		return freq
	}

	if instrument != nil && instrument.DividendPerShare > 0 {
		return 4
	}

	return 0
}

// parseFrequency maps an explicit frequency string to payments per year.
// Accepts both labels and bare integers.
func parseFrequency(s string) int {
	label := strings.ToLower(strings.TrimSpace(s))
	if label == "" {
		return 0
	}

	switch {
	case strings.Contains(label, "month"):
		return 12
	case strings.Contains(label, "quarter"):
		return 4
	case strings.Contains(label, "semi"), strings.Contains(label, "half"), strings.Contains(label, "bi-annual"), strings.Contains(label, "biannual"):
		return 2
	case strings.Contains(label, "annual"), strings.Contains(label, "year"):
		return 1
	}

	if n, err := strconv.Atoi(label); err == nil && n > 0 {
		return n
	}

	return 0
}

// inferFromYieldRatio implies payments-per-year from the instrument's
// yield-derived annual amount divided by the raw per-payment amount, matched
// against 12/4/2/1 within tolerance.
func inferFromYieldRatio(instrument *models.Instrument) int {
	if instrument.DividendPerShare <= 0 || instrument.DividendYield <= 0 || instrument.LastPrice <= 0 {
		return 0
	}

	annualPerShare := instrument.DividendYield / 100 * instrument.LastPrice
	ratio := annualPerShare / instrument.DividendPerShare

	for _, freq := range []int{12, 4, 2, 1} {
		if math.Abs(ratio-float64(freq)) <= float64(freq)*ratioTolerance {
			return freq
		}
	}

	return 0
}

// inferFromPaymentGaps classifies the average day gap between the holding's
// historical dividend payments.
func inferFromPaymentGaps(dividends []*models.Transaction) int {
	var dates []time.Time
	for _, txn := range dividends {
		if txn.Type == models.TransactionDividend {
			dates = append(dates, txn.Date)
		}
	}
	if len(dates) < 2 {
		return 0
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	totalGap := 0.0
	for i := 1; i < len(dates); i++ {
		totalGap += dates[i].Sub(dates[i-1]).Hours() / 24
	}
	avgGap := totalGap / float64(len(dates)-1)

	switch {
	case avgGap <= 40:
		return 12
	case avgGap <= 120:
		return 4
	case avgGap <= 200:
		return 2
	default:
		return 1
	}
}

// flagAnomalies logs suspicious values that indicate upstream data problems.
// These do not block persistence.
func (c *Calculator) flagAnomalies(symbol string, m *models.DividendMetrics) {
	if m.TotalReceived < 0 || m.AnnualIncome < 0 {
		c.logger.Warn().
			Str("symbol", symbol).
			Float64("total_received", m.TotalReceived).
			Float64("annual_income", m.AnnualIncome).
			Msg("Negative dividend total")
	}
	if m.YieldOnCost > maxSaneYieldOnCost {
		c.logger.Warn().
			Str("symbol", symbol).
			Float64("yield_on_cost", m.YieldOnCost).
			Msg("Implausibly high yield on cost")
	}
	if m.Frequency > maxSaneFrequency {
		c.logger.Warn().
			Str("symbol", symbol).
			Int("frequency", m.Frequency).
			Msg("Dividend frequency above monthly")
	}
}
