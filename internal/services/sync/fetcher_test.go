package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/foliosync/internal/common"
	"github.com/bobmcallan/foliosync/internal/models"
	"github.com/bobmcallan/foliosync/internal/syncerr"
)

// mockBrokerageClient scripts per-call GetTransactions outcomes.
type mockBrokerageClient struct {
	calls      int
	responses  []mockResponse
	lastStart  string
	lastEnd    string
	getAccErr  error
	accounts   []*models.BrokerAccount
	balances   *models.BrokerBalances
	holdings   []*models.BrokerHolding
	instrument []*models.Instrument
}

type mockResponse struct {
	activities []*models.BrokerActivity
	err        error
}

func (m *mockBrokerageClient) GetAccounts(ctx context.Context, token string) ([]*models.BrokerAccount, error) {
	return m.accounts, m.getAccErr
}

func (m *mockBrokerageClient) GetAccountBalances(ctx context.Context, token, accountID string) (*models.BrokerBalances, error) {
	return m.balances, nil
}

func (m *mockBrokerageClient) GetHoldings(ctx context.Context, token, accountID string) ([]*models.BrokerHolding, error) {
	return m.holdings, nil
}

func (m *mockBrokerageClient) GetTransactions(ctx context.Context, token, accountID, startISO, endISO string) ([]*models.BrokerActivity, error) {
	m.lastStart = startISO
	m.lastEnd = endISO
	if m.calls >= len(m.responses) {
		return nil, errors.New("unscripted call")
	}
	resp := m.responses[m.calls]
	m.calls++
	return resp.activities, resp.err
}

func (m *mockBrokerageClient) GetInstruments(ctx context.Context, token string, ids []int64) ([]*models.Instrument, error) {
	return m.instrument, nil
}

// plainDates formats without an exchange offset, good enough for tests.
type plainDates struct{}

func (plainDates) FormatSyncDate(t time.Time) string {
	return t.Format("2006-01-02T15:04:05-07:00")
}

func newTestFetcher(client *mockBrokerageClient, maxRetries int) (*Fetcher, *[]time.Duration) {
	f := NewFetcher(client, plainDates{}, common.NewSilentLogger(), maxRetries, 50*time.Millisecond)
	var slept []time.Duration
	f.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return f, &slept
}

func activity(date, typ string, amount float64) *models.BrokerActivity {
	return &models.BrokerActivity{
		Date:      date,
		Type:      typ,
		Symbol:    "VDY",
		NetAmount: amount,
		Currency:  "CAD",
	}
}

func TestFetchTransactions_RetriesWithExponentialBackoff(t *testing.T) {
	client := &mockBrokerageClient{
		responses: []mockResponse{
			{err: errors.New("upstream 503")},
			{err: errors.New("upstream 503")},
			{activities: []*models.BrokerActivity{activity("2024-03-01", "DIV", 25)}},
		},
	}
	fetcher, slept := newTestFetcher(client, 3)

	chunks := []Chunk{{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}}

	result, err := fetcher.FetchTransactions(context.Background(), "tok", "acct", chunks)
	require.NoError(t, err)
	require.Len(t, result.Activities, 1)
	assert.Empty(t, result.Failures)
	assert.Equal(t, 3, client.calls)

	// Two failures before success: backoff 2s then 4s, no sleep after success.
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *slept)
}

func TestFetchTransactions_ChunkSkippedAfterExhaustedRetries(t *testing.T) {
	client := &mockBrokerageClient{
		responses: []mockResponse{
			// Chunk 1 fails all three attempts
			{err: errors.New("boom")},
			{err: errors.New("boom")},
			{err: errors.New("boom")},
			// Chunk 2 succeeds
			{activities: []*models.BrokerActivity{activity("2024-04-05", "BUY", -500)}},
		},
	}
	fetcher, _ := newTestFetcher(client, 3)

	chunks := []Chunk{
		{Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)},
		{Start: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)},
	}

	result, err := fetcher.FetchTransactions(context.Background(), "tok", "acct", chunks)
	require.NoError(t, err)

	// Partial results survive the failed chunk
	require.Len(t, result.Activities, 1)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, chunks[0], result.Failures[0].Chunk)

	var upstream *syncerr.UpstreamError
	assert.ErrorAs(t, result.Failures[0].Err, &upstream)
}

func TestFetchTransactions_DelayBetweenChunksNotAfterLast(t *testing.T) {
	client := &mockBrokerageClient{
		responses: []mockResponse{
			{activities: nil},
			{activities: nil},
		},
	}
	fetcher, slept := newTestFetcher(client, 3)

	chunks := []Chunk{
		{Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)},
		{Start: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)},
	}

	_, err := fetcher.FetchTransactions(context.Background(), "tok", "acct", chunks)
	require.NoError(t, err)

	// One courtesy delay between the two chunks, none trailing.
	assert.Equal(t, []time.Duration{50 * time.Millisecond}, *slept)
}

func TestFetchTransactions_CancellationBetweenChunks(t *testing.T) {
	client := &mockBrokerageClient{
		responses: []mockResponse{
			{activities: []*models.BrokerActivity{activity("2024-03-01", "DIV", 10)}},
		},
	}
	fetcher, _ := newTestFetcher(client, 3)
	fetcher.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chunks := []Chunk{
		{Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)},
	}

	result, err := fetcher.FetchTransactions(ctx, "tok", "acct", chunks)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.Activities)
	assert.Equal(t, 0, client.calls)
}
