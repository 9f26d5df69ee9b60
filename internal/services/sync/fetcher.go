package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/foliosync/internal/common"
	"github.com/bobmcallan/foliosync/internal/interfaces"
	"github.com/bobmcallan/foliosync/internal/models"
	"github.com/bobmcallan/foliosync/internal/syncerr"
)

const (
	// DefaultMaxRetries bounds attempts per chunk.
	DefaultMaxRetries = 3

	// DefaultChunkDelay is the courtesy pause between successful chunk
	// requests, respecting the shared upstream rate limit.
	DefaultChunkDelay = 500 * time.Millisecond
)

// DateFormatter renders a date as the upstream's expected fixed-offset
// whole-day timestamp.
type DateFormatter interface {
	FormatSyncDate(t time.Time) string
}

// ChunkFailure records a chunk that exhausted its retries.
type ChunkFailure struct {
	Chunk Chunk
	Err   error
}

// FetchResult aggregates one account's transaction fetch: everything
// obtained from successful chunks plus per-chunk failures. Partial results
// are kept — failed chunks never discard sibling data.
type FetchResult struct {
	Activities []*models.BrokerActivity
	Failures   []ChunkFailure
}

// Fetcher drives the date-chunked, paginated transaction-history fetch with
// per-chunk retry and backoff. Chunks are processed strictly sequentially.
type Fetcher struct {
	client     interfaces.BrokerageClient
	dates      DateFormatter
	logger     *common.Logger
	maxRetries int
	chunkDelay time.Duration

	// sleep is injectable for deterministic tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFetcher creates a transaction fetcher.
func NewFetcher(client interfaces.BrokerageClient, dates DateFormatter, logger *common.Logger, maxRetries int, chunkDelay time.Duration) *Fetcher {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if chunkDelay <= 0 {
		chunkDelay = DefaultChunkDelay
	}
	return &Fetcher{
		client:     client,
		dates:      dates,
		logger:     logger,
		maxRetries: maxRetries,
		chunkDelay: chunkDelay,
		sleep:      sleepCtx,
	}
}

// sleepCtx waits for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FetchTransactions retrieves the account's transaction history across the
// planned chunks. A chunk that exhausts retries is recorded as a failure and
// skipped; later chunks still run. Cancellation is checked between chunks,
// never mid-call.
func (f *Fetcher) FetchTransactions(ctx context.Context, token, accountID string, chunks []Chunk) (*FetchResult, error) {
	result := &FetchResult{}

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		activities, err := f.fetchChunk(ctx, token, accountID, chunk)
		if err != nil {
			f.logger.Warn().
				Str("account", accountID).
				Str("from", chunk.Start.Format("2006-01-02")).
				Str("to", chunk.End.Format("2006-01-02")).
				Err(err).
				Msg("Chunk failed after retries, skipping")
			result.Failures = append(result.Failures, ChunkFailure{Chunk: chunk, Err: err})
			continue
		}

		result.Activities = append(result.Activities, activities...)

		// Courtesy delay before the next chunk
		if i < len(chunks)-1 {
			if err := f.sleep(ctx, f.chunkDelay); err != nil {
				return result, err
			}
		}
	}

	return result, nil
}

// fetchChunk calls the transaction endpoint for one chunk, retrying up to
// maxRetries with exponentially growing backoff (2^attempt seconds).
func (f *Fetcher) fetchChunk(ctx context.Context, token, accountID string, chunk Chunk) ([]*models.BrokerActivity, error) {
	startISO := f.dates.FormatSyncDate(chunk.Start)
	endISO := f.dates.FormatSyncDate(chunk.End)

	var lastErr error
	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		activities, err := f.client.GetTransactions(ctx, token, accountID, startISO, endISO)
		if err == nil {
			return activities, nil
		}
		lastErr = err

		f.logger.Debug().
			Str("account", accountID).
			Int("attempt", attempt).
			Int("max", f.maxRetries).
			Err(err).
			Msg("Transaction chunk attempt failed")

		if attempt < f.maxRetries {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			if err := f.sleep(ctx, backoff); err != nil {
				return nil, err
			}
		}
	}

	return nil, &syncerr.UpstreamError{
		Endpoint: fmt.Sprintf("activities[%s..%s]", startISO, endISO),
		Err:      lastErr,
	}
}
