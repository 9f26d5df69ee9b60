package brokerage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSyncDate_FixedOffsetWholeDay(t *testing.T) {
	client := NewClient(WithExchangeOffset(600))

	// 2024-02-10 14:35 UTC is 2024-02-11 00:35 at +10:00 — the formatted
	// date must be the exchange-local day at midnight.
	in := time.Date(2024, 2, 10, 14, 35, 0, 0, time.UTC)
	assert.Equal(t, "2024-02-11T00:00:00+10:00", client.FormatSyncDate(in))

	// Negative offsets format with a minus sign.
	client = NewClient(WithExchangeOffset(-300))
	in = time.Date(2024, 2, 10, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-02-09T00:00:00-05:00", client.FormatSyncDate(in))
}

func TestGetTransactions_PassesDateBounds(t *testing.T) {
	var gotStart, gotEnd, gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStart = r.URL.Query().Get("startTime")
		gotEnd = r.URL.Query().Get("endTime")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{
					"trade_date": "2024-03-04T00:00:00+10:00",
					"type":       "Dividends",
					"symbol_id":  8049,
					"symbol":     "BHP",
					"net_amount": -25.00,
					"quantity":   100,
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	activities, err := client.GetTransactions(context.Background(), "tok-1", "acct-1",
		"2024-03-01T00:00:00+10:00", "2024-03-31T00:00:00+10:00")
	require.NoError(t, err)
	require.Len(t, activities, 1)

	assert.Equal(t, "2024-03-01T00:00:00+10:00", gotStart)
	assert.Equal(t, "2024-03-31T00:00:00+10:00", gotEnd)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "Dividends", activities[0].Type)
	assert.Equal(t, -25.00, activities[0].NetAmount)
}

func TestGetAccountBalances_MissingBlockReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"data": map[string]interface{}{}})
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	balances, err := client.GetAccountBalances(context.Background(), "tok", "acct-1")
	require.NoError(t, err)
	assert.Nil(t, balances)
}

func TestGet_NonOKStatusReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.GetAccounts(context.Background(), "stale")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok, "expected *APIError, got %T", err)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "/v1/accounts", apiErr.Endpoint)
}
