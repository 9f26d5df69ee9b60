package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/foliosync/internal/common"
	"github.com/bobmcallan/foliosync/internal/interfaces"
	"github.com/bobmcallan/foliosync/internal/models"
	"github.com/bobmcallan/foliosync/internal/syncerr"
)

// Service implements SyncService. It sequences account → holdings →
// transactions → snapshot for one owner and enforces single-flight
// execution per owner.
type Service struct {
	storage    interfaces.StorageManager
	client     interfaces.BrokerageClient
	creds      interfaces.CredentialProvider
	dividends  DividendCalculator
	aggregator interfaces.AggregationService
	logger     *common.Logger
	config     common.SyncConfig

	fetcher *Fetcher
	deduper *Deduper

	// running is the in-memory single-flight registry, keyed by owner ID.
	// Rebuilt empty on process start; entries are always released in a
	// guaranteed cleanup path.
	mu      sync.Mutex
	running map[string]bool

	now func() time.Time
}

// DividendCalculator derives the dividend metrics block for one holding.
type DividendCalculator interface {
	Metrics(holding *models.Holding, instrument *models.Instrument, dividends []*models.Transaction) models.DividendMetrics
}

// NewService creates a new sync service
func NewService(
	storage interfaces.StorageManager,
	client interfaces.BrokerageClient,
	creds interfaces.CredentialProvider,
	dividends DividendCalculator,
	aggregator interfaces.AggregationService,
	dates DateFormatter,
	logger *common.Logger,
	config common.SyncConfig,
) *Service {
	return &Service{
		storage:    storage,
		client:     client,
		creds:      creds,
		dividends:  dividends,
		aggregator: aggregator,
		logger:     logger,
		config:     config,
		fetcher:    NewFetcher(client, dates, logger, config.MaxRetries, config.GetChunkDelay()),
		deduper:    NewDeduper(storage.Transactions(), logger),
		running:    make(map[string]bool),
		now:        time.Now,
	}
}

// Synchronize runs one sync for the owner. Concurrent invocations for the
// same owner fail immediately with a ConcurrencyError and leave all state
// untouched. A report is returned even on partial failure.
func (s *Service) Synchronize(ctx context.Context, ownerID string, opts interfaces.SyncOptions) (*models.SyncReport, error) {
	if !s.acquire(ownerID) {
		return nil, &syncerr.ConcurrencyError{OwnerID: ownerID}
	}
	defer s.release(ownerID)

	owner, err := s.validate(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	token, err := s.creds.Token(ctx, ownerID)
	if err != nil {
		return nil, &syncerr.ValidationError{OwnerID: ownerID, Reason: err.Error()}
	}

	s.logger.Info().
		Str("owner", ownerID).
		Bool("full_sync", opts.FullSync).
		Msg("Sync started")

	report := &models.SyncReport{
		RunID:     uuid.NewString(),
		OwnerID:   ownerID,
		FullSync:  opts.FullSync,
		StartedAt: s.now(),
	}

	owner.LastSyncStatus = models.SyncStatusRunning
	if err := s.storage.Owners().Save(ctx, owner); err != nil {
		s.logger.Warn().Err(err).Str("owner", ownerID).Msg("Failed to mark owner running")
	}

	// Stage errors accumulate into the report; later stages still run.
	accounts := s.syncAccounts(ctx, token, owner, report)

	if len(accounts) > 0 || len(report.Accounts.Errors) == 0 {
		s.syncHoldings(ctx, token, owner, accounts, opts.FullSync, report)
		s.syncTransactions(ctx, token, owner, accounts, opts.FullSync, report)

		if opts.FullSync || opts.ForceSnapshot {
			s.createSnapshot(ctx, owner, report)
		}
	}

	report.FinishedAt = s.now()
	s.finalize(ctx, owner, report)

	s.logger.Info().
		Str("owner", ownerID).
		Int("accounts", report.Accounts.Synced).
		Int("holdings", report.Holdings.Synced).
		Int("transactions", report.Transactions.Synced).
		Int("errors", report.TotalErrors()).
		Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).
		Msg("Sync finished")

	return report, nil
}

// acquire registers the owner in the single-flight map. Returns false when a
// sync is already in flight.
func (s *Service) acquire(ownerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[ownerID] {
		return false
	}
	s.running[ownerID] = true
	return true
}

// release removes the owner from the single-flight map.
func (s *Service) release(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, ownerID)
}

// validate checks the owner exists, is active, and holds a healthy
// credential. Failures abort before any stage runs.
func (s *Service) validate(ctx context.Context, ownerID string) (*models.Owner, error) {
	owner, err := s.storage.Owners().Get(ctx, ownerID)
	if err != nil {
		return nil, &syncerr.ValidationError{OwnerID: ownerID, Reason: "owner not found"}
	}
	if !owner.Active {
		return nil, &syncerr.ValidationError{OwnerID: ownerID, Reason: "owner is inactive"}
	}
	if !s.creds.Healthy(ctx, ownerID) {
		return nil, &syncerr.ValidationError{OwnerID: ownerID, Reason: "no active credential"}
	}
	return owner, nil
}

// syncAccounts upserts the owner's accounts with balances. Missing upstream
// balance blocks default to zero cash in the account's default currency.
func (s *Service) syncAccounts(ctx context.Context, token string, owner *models.Owner, report *models.SyncReport) []*models.Account {
	brokerAccounts, err := s.client.GetAccounts(ctx, token)
	if err != nil {
		report.Accounts.AddError(fmt.Sprintf("accounts: %v", err))
		return nil
	}

	var synced []*models.Account
	for _, ba := range brokerAccounts {
		account := &models.Account{
			OwnerID:     owner.ID,
			AccountID:   ba.AccountID,
			Name:        ba.Name,
			Currency:    ba.Currency,
			Balances:    map[string]float64{},
			LastUpdated: s.now(),
		}

		balances, err := s.client.GetAccountBalances(ctx, token, ba.AccountID)
		if err != nil {
			report.Accounts.AddError(fmt.Sprintf("balances %s: %v", ba.AccountID, err))
		} else if balances != nil {
			account.Balances = balances.PerCurrency
			account.CombinedBalance = balances.Combined
		}

		if err := s.storage.Accounts().Upsert(ctx, account); err != nil {
			report.Accounts.AddError(fmt.Sprintf("account %s: %v", ba.AccountID, err))
			continue
		}

		synced = append(synced, account)
		report.Accounts.Synced++
	}

	return synced
}

// syncHoldings rebuilds or refreshes each account's positions, lazily
// refreshing referenced instruments and enriching with dividend metrics.
func (s *Service) syncHoldings(ctx context.Context, token string, owner *models.Owner, accounts []*models.Account, fullSync bool, report *models.SyncReport) {
	for _, account := range accounts {
		if err := ctx.Err(); err != nil {
			report.Holdings.AddError(fmt.Sprintf("holdings %s: %v", account.AccountID, err))
			return
		}

		brokerHoldings, err := s.client.GetHoldings(ctx, token, account.AccountID)
		if err != nil {
			report.Holdings.AddError(fmt.Sprintf("holdings %s: %v", account.AccountID, err))
			continue
		}

		instruments := s.refreshInstruments(ctx, token, brokerHoldings, report)

		// On a full sync, clear first so positions that disappeared
		// upstream do not survive the rebuild.
		if fullSync {
			if _, err := s.storage.Holdings().DeleteByAccount(ctx, owner.ID, account.AccountID); err != nil {
				report.Holdings.AddError(fmt.Sprintf("clear holdings %s: %v", account.AccountID, err))
			}
		}

		transactions, err := s.storage.Transactions().ListByAccount(ctx, owner.ID, account.AccountID)
		if err != nil {
			s.logger.Warn().Err(err).Str("account", account.AccountID).Msg("Failed to load transactions for dividend enrichment")
		}

		for _, bh := range brokerHoldings {
			holding := &models.Holding{
				OwnerID:      owner.ID,
				AccountID:    account.AccountID,
				InstrumentID: bh.InstrumentID,
				Symbol:       bh.Symbol,
				Units:        bh.Units,
				AvgCost:      bh.AvgCost,
				TotalCost:    bh.TotalCost,
				CurrentPrice: bh.CurrentPrice,
				MarketValue:  bh.MarketValue,
				OpenPnl:      bh.OpenPnl,
				DayPnl:       bh.DayPnl,
				RealizedPnl:  bh.RealizedPnl,
				Currency:     bh.Currency,
				LastUpdated:  s.now(),
			}

			instrument := instruments[bh.InstrumentID]
			if instrument != nil {
				holding.Sector = instrument.Sector
			}
			holding.Dividend = s.dividends.Metrics(holding, instrument, dividendsForSymbol(transactions, bh.Symbol))

			if err := s.storage.Holdings().Upsert(ctx, holding); err != nil {
				report.Holdings.AddError(fmt.Sprintf("holding %s/%s: %v", account.AccountID, bh.Symbol, err))
				continue
			}
			report.Holdings.Synced++
		}
	}
}

// refreshInstruments fetches catalog entries whose stored copy is stale and
// returns the instruments referenced by the holdings, fresh or cached.
func (s *Service) refreshInstruments(ctx context.Context, token string, holdings []*models.BrokerHolding, report *models.SyncReport) map[int64]*models.Instrument {
	result := make(map[int64]*models.Instrument)
	var staleIDs []int64

	for _, h := range holdings {
		if h.InstrumentID == 0 {
			continue
		}
		instrument, err := s.storage.Instruments().Get(ctx, h.InstrumentID)
		if err == nil && common.IsFresh(instrument.LastUpdated, common.FreshnessInstrument) {
			result[h.InstrumentID] = instrument
			continue
		}
		staleIDs = append(staleIDs, h.InstrumentID)
	}

	if len(staleIDs) == 0 {
		return result
	}

	fetched, err := s.client.GetInstruments(ctx, token, staleIDs)
	if err != nil {
		report.Holdings.AddError(fmt.Sprintf("instruments: %v", err))
		return result
	}

	for _, instrument := range fetched {
		if err := s.storage.Instruments().Upsert(ctx, instrument); err != nil {
			report.Holdings.AddError(fmt.Sprintf("instrument %d: %v", instrument.ID, err))
		}
		result[instrument.ID] = instrument
	}

	return result
}

// dividendsForSymbol filters dividend-classified transactions for a symbol.
func dividendsForSymbol(transactions []*models.Transaction, symbol string) []*models.Transaction {
	var dividends []*models.Transaction
	for _, txn := range transactions {
		if txn.Type == models.TransactionDividend && txn.Symbol == symbol {
			dividends = append(dividends, txn)
		}
	}
	return dividends
}

// syncTransactions fetches and deduplicates each account's transaction
// history over the lookback window.
func (s *Service) syncTransactions(ctx context.Context, token string, owner *models.Owner, accounts []*models.Account, fullSync bool, report *models.SyncReport) {
	start, end := s.syncWindow(fullSync)
	chunks := PlanChunks(start, end, s.config.MaxChunkDays)

	for _, account := range accounts {
		if err := ctx.Err(); err != nil {
			report.Transactions.AddError(fmt.Sprintf("transactions %s: %v", account.AccountID, err))
			return
		}

		result, err := s.fetcher.FetchTransactions(ctx, token, account.AccountID, chunks)
		if err != nil {
			report.Transactions.AddError(fmt.Sprintf("transactions %s: %v", account.AccountID, err))
			continue
		}

		for _, failure := range result.Failures {
			report.Transactions.AddError(fmt.Sprintf("transactions %s chunk %s..%s: %v",
				account.AccountID,
				failure.Chunk.Start.Format("2006-01-02"),
				failure.Chunk.End.Format("2006-01-02"),
				failure.Err))
		}

		inserted, errs := s.deduper.PersistNew(ctx, owner.ID, account.AccountID, result.Activities, start, end)
		report.Transactions.Synced += inserted
		for _, msg := range errs {
			report.Transactions.AddError(msg)
		}
	}
}

// syncWindow computes the lookback window: 6 months for a full sync,
// 1 month incremental, ending now.
func (s *Service) syncWindow(fullSync bool) (start, end time.Time) {
	end = s.now()
	months := s.config.IncrementalLookbackMonths
	if months <= 0 {
		months = 1
	}
	if fullSync {
		months = s.config.FullLookbackMonths
		if months <= 0 {
			months = 6
		}
	}
	return end.AddDate(0, -months, 0), end
}

// createSnapshot rolls the owner's persisted holdings into an immutable
// snapshot and prunes old ones by retention count.
func (s *Service) createSnapshot(ctx context.Context, owner *models.Owner, report *models.SyncReport) {
	summary, err := s.aggregator.PortfolioSummary(ctx,
		interfaces.AggregationScope{OwnerID: owner.ID},
		interfaces.SummaryOptions{})
	if err != nil {
		report.Snapshot.AddError(fmt.Sprintf("snapshot summary: %v", err))
		return
	}

	snapshot := &models.PortfolioSnapshot{
		ID:                  uuid.NewString(),
		OwnerID:             owner.ID,
		TakenAt:             s.now(),
		TotalMarketValue:    summary.TotalMarketValue,
		TotalCost:           summary.TotalCost,
		TotalAnnualDividend: summary.TotalAnnualDividend,
		YieldOnCost:         summary.YieldOnCost,
		HoldingCount:        summary.HoldingCount,
		SectorAllocation:    summary.SectorAllocation,
		CurrencyAllocation:  summary.CurrencyAllocation,
		AccountAllocation:   summary.AccountAllocation,
	}

	if err := s.storage.Snapshots().Append(ctx, snapshot); err != nil {
		report.Snapshot.AddError(fmt.Sprintf("snapshot: %v", err))
		return
	}
	report.SnapshotID = snapshot.ID

	if keep := s.config.SnapshotRetention; keep > 0 {
		if pruned, err := s.storage.Snapshots().Prune(ctx, owner.ID, keep); err != nil {
			s.logger.Warn().Err(err).Str("owner", owner.ID).Msg("Snapshot pruning failed")
		} else if pruned > 0 {
			s.logger.Debug().Str("owner", owner.ID).Int("pruned", pruned).Msg("Pruned old snapshots")
		}
	}
}

// finalize updates the owner's last-sync metadata. Runs in all terminal
// paths after the stages.
func (s *Service) finalize(ctx context.Context, owner *models.Owner, report *models.SyncReport) {
	owner.LastSyncAt = report.FinishedAt

	if report.Accounts.Synced == 0 && len(report.Accounts.Errors) > 0 {
		owner.LastSyncStatus = models.SyncStatusFailed
		owner.LastSyncError = report.Accounts.Errors[0]
	} else {
		owner.LastSyncStatus = models.SyncStatusCompleted
		owner.LastSyncError = ""
		if report.TotalErrors() > 0 {
			owner.LastSyncError = fmt.Sprintf("%d errors during sync", report.TotalErrors())
		}
	}

	if err := s.storage.Owners().Save(ctx, owner); err != nil {
		s.logger.Warn().Err(err).Str("owner", owner.ID).Msg("Failed to update owner sync metadata")
	}
}

// Ensure Service implements SyncService
var _ interfaces.SyncService = (*Service)(nil)
