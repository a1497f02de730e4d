package repository

import (
	"time"

	"github.com/google/uuid"
)

type AcquisitionRun struct {
	ID          uuid.UUID `json:"id"`
	Trigger     string    `json:"trigger"`
	Exchanges   []string  `json:"exchanges"`
	SymbolCount int32     `json:"symbol_count"`
	ErrorCount  int32     `json:"error_count"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

type Symbol struct {
	Exchange    string    `json:"exchange"`
	Ticker      string    `json:"ticker"`
	Active      bool      `json:"active"`
	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	LastRunID   uuid.UUID `json:"last_run_id"`
}

type SourceError struct {
	ID         int64     `json:"id"`
	RunID      uuid.UUID `json:"run_id"`
	Exchange   string    `json:"exchange"`
	Message    string    `json:"message"`
	RecordedAt time.Time `json:"recorded_at"`
}
