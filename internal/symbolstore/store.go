package symbolstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arnabmitra/index-symbols/internal/repository"
	"github.com/arnabmitra/index-symbols/internal/symbols"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists acquisition results and serves the stored constituent lists.
type Repository interface {
	SaveResult(ctx context.Context, result *symbols.Result, trigger string) (uuid.UUID, error)
	ActiveSymbols(ctx context.Context, exchange string) ([]symbols.Record, error)
	LatestRun(ctx context.Context) (*repository.AcquisitionRun, error)
	RunErrors(ctx context.Context, runID uuid.UUID) ([]repository.SourceError, error)
}

// ErrNoRuns is returned by LatestRun before anything was stored.
var ErrNoRuns = errors.New("no acquisition runs stored")

type store struct {
	pool   *pgxpool.Pool
	q      *repository.Queries
	logger *slog.Logger
}

func New(pool *pgxpool.Pool, logger *slog.Logger) Repository {
	return &store{
		pool:   pool,
		q:      repository.New(pool),
		logger: logger,
	}
}

// SaveResult stores one run in a single transaction. Each exchange that succeeded has its
// list replaced by the constituents it reported, including tickers another exchange won in
// the merged records. Exchanges that failed keep what they had.
func (s *store) SaveResult(ctx context.Context, result *symbols.Result, trigger string) (uuid.UUID, error) {
	runID := uuid.New()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)
	q := s.q.WithTx(tx)

	exchanges := make([]string, 0, len(result.Sources))
	for _, src := range result.Sources {
		exchanges = append(exchanges, src.Exchange)
	}

	_, err = q.InsertAcquisitionRun(ctx, repository.InsertAcquisitionRunParams{
		ID:          runID,
		Trigger:     trigger,
		Exchanges:   exchanges,
		SymbolCount: int32(len(result.Records)),
		ErrorCount:  int32(len(result.Errors)),
		StartedAt:   result.StartedAt,
		FinishedAt:  result.FinishedAt,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert run: %w", err)
	}

	for _, src := range result.Sources {
		if !src.OK() {
			err := q.InsertSourceError(ctx, repository.InsertSourceErrorParams{
				RunID:    runID,
				Exchange: src.Exchange,
				Message:  src.Err.Error(),
			})
			if err != nil {
				return uuid.Nil, fmt.Errorf("failed to record error for %s: %w", src.Exchange, err)
			}
			continue
		}

		for _, rec := range result.Constituents(src.Exchange) {
			err := q.UpsertSymbol(ctx, repository.UpsertSymbolParams{
				Exchange:  rec.Exchange,
				Ticker:    rec.Ticker,
				LastRunID: runID,
			})
			if err != nil {
				return uuid.Nil, fmt.Errorf("failed to upsert %s/%s: %w", rec.Exchange, rec.Ticker, err)
			}
		}

		n, err := q.DeactivateMissingSymbols(ctx, repository.DeactivateMissingSymbolsParams{
			Exchange:  src.Exchange,
			LastRunID: runID,
		})
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to deactivate symbols for %s: %w", src.Exchange, err)
		}
		if n > 0 {
			s.logger.Info("symbols left index", slog.String("exchange", src.Exchange), slog.Int64("count", n))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// ActiveSymbols lists stored tickers, for one exchange or for all when exchange is empty.
func (s *store) ActiveSymbols(ctx context.Context, exchange string) ([]symbols.Record, error) {
	var rows []repository.Symbol
	var err error
	if exchange == "" {
		rows, err = s.q.ListActiveSymbols(ctx)
	} else {
		rows, err = s.q.ListActiveSymbolsByExchange(ctx, exchange)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list symbols: %w", err)
	}

	out := make([]symbols.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, symbols.Record{Ticker: r.Ticker, Exchange: r.Exchange})
	}
	return out, nil
}

func (s *store) LatestRun(ctx context.Context) (*repository.AcquisitionRun, error) {
	run, err := s.q.GetLatestRun(ctx)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest run: %w", err)
	}
	return &run, nil
}

// RunErrors lists the sources that failed in runID.
func (s *store) RunErrors(ctx context.Context, runID uuid.UUID) ([]repository.SourceError, error) {
	rows, err := s.q.ListSourceErrorsByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list source errors: %w", err)
	}
	return rows, nil
}
