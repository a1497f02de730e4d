package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const insertAcquisitionRun = `-- name: InsertAcquisitionRun :one
INSERT INTO acquisition_runs (id, trigger, exchanges, symbol_count, error_count, started_at, finished_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, trigger, exchanges, symbol_count, error_count, started_at, finished_at
`

type InsertAcquisitionRunParams struct {
	ID          uuid.UUID `json:"id"`
	Trigger     string    `json:"trigger"`
	Exchanges   []string  `json:"exchanges"`
	SymbolCount int32     `json:"symbol_count"`
	ErrorCount  int32     `json:"error_count"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

func (q *Queries) InsertAcquisitionRun(ctx context.Context, arg InsertAcquisitionRunParams) (AcquisitionRun, error) {
	row := q.db.QueryRow(ctx, insertAcquisitionRun,
		arg.ID,
		arg.Trigger,
		arg.Exchanges,
		arg.SymbolCount,
		arg.ErrorCount,
		arg.StartedAt,
		arg.FinishedAt,
	)
	var i AcquisitionRun
	err := row.Scan(
		&i.ID,
		&i.Trigger,
		&i.Exchanges,
		&i.SymbolCount,
		&i.ErrorCount,
		&i.StartedAt,
		&i.FinishedAt,
	)
	return i, err
}

const getLatestRun = `-- name: GetLatestRun :one
SELECT id, trigger, exchanges, symbol_count, error_count, started_at, finished_at
FROM acquisition_runs
ORDER BY finished_at DESC
LIMIT 1
`

func (q *Queries) GetLatestRun(ctx context.Context) (AcquisitionRun, error) {
	row := q.db.QueryRow(ctx, getLatestRun)
	var i AcquisitionRun
	err := row.Scan(
		&i.ID,
		&i.Trigger,
		&i.Exchanges,
		&i.SymbolCount,
		&i.ErrorCount,
		&i.StartedAt,
		&i.FinishedAt,
	)
	return i, err
}

const upsertSymbol = `-- name: UpsertSymbol :exec
INSERT INTO symbols (exchange, ticker, active, last_run_id)
VALUES ($1, $2, TRUE, $3)
ON CONFLICT (exchange, ticker)
DO UPDATE SET active = TRUE, last_seen_at = NOW(), last_run_id = EXCLUDED.last_run_id
`

type UpsertSymbolParams struct {
	Exchange  string    `json:"exchange"`
	Ticker    string    `json:"ticker"`
	LastRunID uuid.UUID `json:"last_run_id"`
}

func (q *Queries) UpsertSymbol(ctx context.Context, arg UpsertSymbolParams) error {
	_, err := q.db.Exec(ctx, upsertSymbol, arg.Exchange, arg.Ticker, arg.LastRunID)
	return err
}

const deactivateMissingSymbols = `-- name: DeactivateMissingSymbols :execrows
UPDATE symbols SET active = FALSE
WHERE exchange = $1 AND last_run_id <> $2 AND active
`

type DeactivateMissingSymbolsParams struct {
	Exchange  string    `json:"exchange"`
	LastRunID uuid.UUID `json:"last_run_id"`
}

func (q *Queries) DeactivateMissingSymbols(ctx context.Context, arg DeactivateMissingSymbolsParams) (int64, error) {
	result, err := q.db.Exec(ctx, deactivateMissingSymbols, arg.Exchange, arg.LastRunID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listActiveSymbols = `-- name: ListActiveSymbols :many
SELECT exchange, ticker, active, first_seen_at, last_seen_at, last_run_id
FROM symbols
WHERE active
ORDER BY exchange, ticker
`

func (q *Queries) ListActiveSymbols(ctx context.Context) ([]Symbol, error) {
	rows, err := q.db.Query(ctx, listActiveSymbols)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Symbol
	for rows.Next() {
		var i Symbol
		if err := rows.Scan(
			&i.Exchange,
			&i.Ticker,
			&i.Active,
			&i.FirstSeenAt,
			&i.LastSeenAt,
			&i.LastRunID,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listActiveSymbolsByExchange = `-- name: ListActiveSymbolsByExchange :many
SELECT exchange, ticker, active, first_seen_at, last_seen_at, last_run_id
FROM symbols
WHERE active AND exchange = $1
ORDER BY ticker
`

func (q *Queries) ListActiveSymbolsByExchange(ctx context.Context, exchange string) ([]Symbol, error) {
	rows, err := q.db.Query(ctx, listActiveSymbolsByExchange, exchange)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Symbol
	for rows.Next() {
		var i Symbol
		if err := rows.Scan(
			&i.Exchange,
			&i.Ticker,
			&i.Active,
			&i.FirstSeenAt,
			&i.LastSeenAt,
			&i.LastRunID,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertSourceError = `-- name: InsertSourceError :exec
INSERT INTO source_errors (run_id, exchange, message)
VALUES ($1, $2, $3)
`

type InsertSourceErrorParams struct {
	RunID    uuid.UUID `json:"run_id"`
	Exchange string    `json:"exchange"`
	Message  string    `json:"message"`
}

func (q *Queries) InsertSourceError(ctx context.Context, arg InsertSourceErrorParams) error {
	_, err := q.db.Exec(ctx, insertSourceError, arg.RunID, arg.Exchange, arg.Message)
	return err
}

const listSourceErrorsByRun = `-- name: ListSourceErrorsByRun :many
SELECT id, run_id, exchange, message, recorded_at
FROM source_errors
WHERE run_id = $1
ORDER BY exchange
`

func (q *Queries) ListSourceErrorsByRun(ctx context.Context, runID uuid.UUID) ([]SourceError, error) {
	rows, err := q.db.Query(ctx, listSourceErrorsByRun, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SourceError
	for rows.Next() {
		var i SourceError
		if err := rows.Scan(
			&i.ID,
			&i.RunID,
			&i.Exchange,
			&i.Message,
			&i.RecordedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
