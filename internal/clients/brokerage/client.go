// Package brokerage provides a client for the brokerage account API
package brokerage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/foliosync/internal/common"
	"github.com/bobmcallan/foliosync/internal/interfaces"
	"github.com/bobmcallan/foliosync/internal/models"
)

const (
	DefaultBaseURL   = "https://api.brokerage.example.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second

	// DefaultExchangeOffsetMinutes is the fixed UTC offset applied to all
	// date arguments (+10:00, the upstream's exchange timezone).
	DefaultExchangeOffsetMinutes = 600
)

// Client implements the BrokerageClient interface
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	exchange   *time.Location
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithExchangeOffset sets the fixed UTC offset (in minutes) used when
// formatting date arguments
func WithExchangeOffset(minutes int) ClientOption {
	return func(c *Client) {
		c.exchange = fixedOffsetLocation(minutes)
	}
}

// NewClient creates a new brokerage client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:  rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:   common.NewSilentLogger(),
		exchange: fixedOffsetLocation(DefaultExchangeOffsetMinutes),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// fixedOffsetLocation builds a fixed-offset location named "±HH:MM".
func fixedOffsetLocation(minutes int) *time.Location {
	sign := "+"
	m := minutes
	if m < 0 {
		sign = "-"
		m = -m
	}
	name := fmt.Sprintf("%s%02d:%02d", sign, m/60, m%60)
	return time.FixedZone(name, minutes*60)
}

// FormatSyncDate renders t as an ISO-8601 timestamp with whole-day time and
// the client's fixed exchange offset: YYYY-MM-DDT00:00:00±HH:MM.
func (c *Client) FormatSyncDate(t time.Time) string {
	day := t.In(c.exchange)
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, c.exchange)
	return day.Format("2006-01-02T15:04:05-07:00")
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("brokerage API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request authorized with the given token
func (c *Client) get(ctx context.Context, token, path string, query url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", path).Msg("Brokerage API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetAccounts retrieves all accounts visible to the credential
func (c *Client) GetAccounts(ctx context.Context, token string) ([]*models.BrokerAccount, error) {
	var resp accountsResponse
	if err := c.get(ctx, token, "/v1/accounts", nil, &resp); err != nil {
		return nil, err
	}

	accounts := make([]*models.BrokerAccount, len(resp.Data))
	for i, a := range resp.Data {
		accounts[i] = &models.BrokerAccount{
			AccountID: a.Number,
			Name:      a.Name,
			Currency:  a.Currency,
		}
	}

	return accounts, nil
}

type accountsResponse struct {
	Data []struct {
		Number   string `json:"number"`
		Name     string `json:"name"`
		Currency string `json:"currency"`
	} `json:"data"`
}

// GetAccountBalances retrieves cash balances for one account. Returns nil
// when the upstream omits the balance block.
func (c *Client) GetAccountBalances(ctx context.Context, token, accountID string) (*models.BrokerBalances, error) {
	var resp balancesResponse
	path := fmt.Sprintf("/v1/accounts/%s/balances", url.PathEscape(accountID))
	if err := c.get(ctx, token, path, nil, &resp); err != nil {
		return nil, err
	}

	if len(resp.Data.PerCurrency) == 0 && resp.Data.Combined == nil {
		return nil, nil
	}

	balances := &models.BrokerBalances{
		PerCurrency: make(map[string]float64, len(resp.Data.PerCurrency)),
	}
	for _, b := range resp.Data.PerCurrency {
		balances.PerCurrency[b.Currency] = b.Cash
		balances.Combined += b.Cash
	}
	if resp.Data.Combined != nil {
		balances.Combined = *resp.Data.Combined
	}

	return balances, nil
}

type balancesResponse struct {
	Data struct {
		PerCurrency []struct {
			Currency string  `json:"currency"`
			Cash     float64 `json:"cash"`
		} `json:"per_currency"`
		Combined *float64 `json:"combined"`
	} `json:"data"`
}

// GetHoldings retrieves current positions for one account
func (c *Client) GetHoldings(ctx context.Context, token, accountID string) ([]*models.BrokerHolding, error) {
	var resp holdingsResponse
	path := fmt.Sprintf("/v1/accounts/%s/positions", url.PathEscape(accountID))
	if err := c.get(ctx, token, path, nil, &resp); err != nil {
		return nil, err
	}

	holdings := make([]*models.BrokerHolding, len(resp.Data))
	for i, h := range resp.Data {
		holdings[i] = &models.BrokerHolding{
			InstrumentID: h.SymbolID,
			Symbol:       h.Symbol,
			Units:        h.Quantity,
			AvgCost:      h.AverageEntryPrice,
			TotalCost:    h.BookValue,
			CurrentPrice: h.CurrentPrice,
			MarketValue:  h.CurrentMarketValue,
			OpenPnl:      h.OpenPnl,
			DayPnl:       h.DayPnl,
			RealizedPnl:  h.ClosedPnl,
			Currency:     h.Currency,
		}
	}

	return holdings, nil
}

type holdingsResponse struct {
	Data []struct {
		SymbolID           int64   `json:"symbol_id"`
		Symbol             string  `json:"symbol"`
		Quantity           float64 `json:"quantity"`
		AverageEntryPrice  float64 `json:"average_entry_price"`
		BookValue          float64 `json:"book_value"`
		CurrentPrice       float64 `json:"current_price"`
		CurrentMarketValue float64 `json:"current_market_value"`
		OpenPnl            float64 `json:"open_pnl"`
		DayPnl             float64 `json:"day_pnl"`
		ClosedPnl          float64 `json:"closed_pnl"`
		Currency           string  `json:"currency"`
	} `json:"data"`
}

// GetTransactions retrieves transaction history for one account within
// [startISO, endISO]. Bounds must be whole-day fixed-offset timestamps
// (see FormatSyncDate).
func (c *Client) GetTransactions(ctx context.Context, token, accountID, startISO, endISO string) ([]*models.BrokerActivity, error) {
	query := url.Values{}
	query.Set("startTime", startISO)
	query.Set("endTime", endISO)

	var resp activitiesResponse
	path := fmt.Sprintf("/v1/accounts/%s/activities", url.PathEscape(accountID))
	if err := c.get(ctx, token, path, query, &resp); err != nil {
		return nil, err
	}

	activities := make([]*models.BrokerActivity, len(resp.Data))
	for i, a := range resp.Data {
		activities[i] = &models.BrokerActivity{
			Date:        a.TradeDate,
			Type:        a.Type,
			SymbolID:    a.SymbolID,
			Symbol:      a.Symbol,
			NetAmount:   a.NetAmount,
			Quantity:    a.Quantity,
			Description: a.Description,
			Currency:    a.Currency,
		}
	}

	return activities, nil
}

type activitiesResponse struct {
	Data []struct {
		TradeDate   string  `json:"trade_date"`
		Type        string  `json:"type"`
		SymbolID    int64   `json:"symbol_id"`
		Symbol      string  `json:"symbol"`
		NetAmount   float64 `json:"net_amount"`
		Quantity    float64 `json:"quantity"`
		Description string  `json:"description"`
		Currency    string  `json:"currency"`
	} `json:"data"`
}

// GetInstruments retrieves catalog entries for instrument IDs
func (c *Client) GetInstruments(ctx context.Context, token string, ids []int64) ([]*models.Instrument, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = strconv.FormatInt(id, 10)
	}
	query := url.Values{}
	query.Set("ids", strings.Join(strIDs, ","))

	var resp instrumentsResponse
	if err := c.get(ctx, token, "/v1/symbols", query, &resp); err != nil {
		return nil, err
	}

	instruments := make([]*models.Instrument, len(resp.Data))
	for i, s := range resp.Data {
		instruments[i] = &models.Instrument{
			ID:                s.SymbolID,
			Symbol:            s.Symbol,
			Name:              s.Description,
			Currency:          s.Currency,
			Sector:            s.Sector,
			LastPrice:         s.PrevDayClosePrice,
			Volume:            s.AverageVol3Months,
			DividendPerShare:  s.Dividend,
			DividendFrequency: s.DividendFrequency,
			DividendYield:     s.Yield,
			LastUpdated:       time.Now(),
		}
	}

	return instruments, nil
}

type instrumentsResponse struct {
	Data []struct {
		SymbolID          int64   `json:"symbol_id"`
		Symbol            string  `json:"symbol"`
		Description       string  `json:"description"`
		Currency          string  `json:"currency"`
		Sector            string  `json:"sector"`
		PrevDayClosePrice float64 `json:"prev_day_close_price"`
		AverageVol3Months int64   `json:"average_vol_3months"`
		Dividend          float64 `json:"dividend"`
		DividendFrequency string  `json:"dividend_frequency"`
		Yield             float64 `json:"yield"`
	} `json:"data"`
}

// Ensure Client implements BrokerageClient
var _ interfaces.BrokerageClient = (*Client)(nil)
