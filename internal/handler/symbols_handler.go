package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/arnabmitra/index-symbols/internal/config"
	"github.com/arnabmitra/index-symbols/internal/exchange"
	"github.com/arnabmitra/index-symbols/internal/metrics"
	"github.com/arnabmitra/index-symbols/internal/repository"
	"github.com/arnabmitra/index-symbols/internal/symbols"
	"github.com/arnabmitra/index-symbols/internal/symbolstore"
)

const acquireTimeout = 2 * time.Minute

type SymbolsHandler struct {
	logger   *slog.Logger
	registry *exchange.Registry
	acquirer *symbols.Acquirer
	store    symbolstore.Repository

	mu     sync.RWMutex
	latest *symbols.Result
}

// NewSymbolsHandler serves the registry and collected symbols. store may be nil, in which
// case symbols come from the most recent result published to the handler.
func NewSymbolsHandler(logger *slog.Logger, registry *exchange.Registry, acquirer *symbols.Acquirer, store symbolstore.Repository) *SymbolsHandler {
	return &SymbolsHandler{
		logger:   logger,
		registry: registry,
		acquirer: acquirer,
		store:    store,
	}
}

// Publish makes res the latest in-memory result.
func (h *SymbolsHandler) Publish(res *symbols.Result) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = res
}

func (h *SymbolsHandler) Latest() *symbols.Result {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

func (h *SymbolsHandler) ListExchanges(w http.ResponseWriter, r *http.Request) {
	specs := h.registry.List()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"exchanges": specs,
		"count":     len(specs),
	})
}

func (h *SymbolsHandler) GetSymbols(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("exchange")
	if id != "" && !h.registry.Has(id) {
		http.Error(w, "unknown exchange "+id, http.StatusNotFound)
		return
	}

	var records []symbols.Record
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		var err error
		records, err = h.store.ActiveSymbols(ctx, id)
		if err != nil {
			h.logger.Error("Failed to load symbols", slog.Any("error", err))
			http.Error(w, "Failed to load symbols", http.StatusInternalServerError)
			return
		}
	} else {
		latest := h.Latest()
		if latest == nil {
			http.Error(w, "no symbols collected yet", http.StatusNotFound)
			return
		}
		if id == "" {
			records = latest.Records
		} else {
			records = latest.Constituents(id)
		}
	}
	if records == nil {
		records = []symbols.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"exchange": id,
		"symbols":  records,
		"count":    len(records),
	})
}

type acquireResponse struct {
	RunID   string                 `json:"run_id,omitempty"`
	Records []symbols.Record       `json:"records"`
	Errors  map[string]string      `json:"errors"`
	Sources []symbols.SourceReport `json:"sources"`
}

func (h *SymbolsHandler) Acquire(w http.ResponseWriter, r *http.Request) {
	ids := config.SplitList(r.URL.Query().Get("exchange"))

	ctx, cancel := context.WithTimeout(r.Context(), acquireTimeout)
	defer cancel()

	metrics.Runs.WithLabelValues("api").Inc()
	res, err := h.acquirer.AcquireIDs(ctx, ids)
	switch {
	case errors.Is(err, symbols.ErrEmptySelection):
		http.Error(w, "select at least one exchange with ?exchange=ID[,ID]", http.StatusBadRequest)
		return
	case errors.Is(err, exchange.ErrUnknownExchange):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.logger.Error("Failed to acquire symbols", slog.Any("error", err))
		http.Error(w, "Failed to acquire symbols", http.StatusInternalServerError)
		return
	}

	resp := acquireResponse{
		Records: res.Records,
		Errors:  res.ErrorMessages(),
		Sources: res.Sources,
	}
	if h.store != nil {
		runID, err := h.store.SaveResult(ctx, res, "api")
		if err != nil {
			h.logger.Error("Failed to store symbols", slog.Any("error", err))
		} else {
			resp.RunID = runID.String()
		}
	}
	h.Publish(res)

	writeJSON(w, http.StatusOK, resp)
}

type runResponse struct {
	Run    *repository.AcquisitionRun `json:"run"`
	Errors []repository.SourceError   `json:"errors"`
}

// LatestRun reports the most recent stored run and the sources that failed in it.
func (h *SymbolsHandler) LatestRun(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, "runs are only recorded with DATABASE_URL set", http.StatusNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	run, err := h.store.LatestRun(ctx)
	if errors.Is(err, symbolstore.ErrNoRuns) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("Failed to load latest run", slog.Any("error", err))
		http.Error(w, "Failed to load latest run", http.StatusInternalServerError)
		return
	}

	runErrs, err := h.store.RunErrors(ctx, run.ID)
	if err != nil {
		h.logger.Error("Failed to load run errors", slog.String("run_id", run.ID.String()), slog.Any("error", err))
		http.Error(w, "Failed to load latest run", http.StatusInternalServerError)
		return
	}
	if runErrs == nil {
		runErrs = []repository.SourceError{}
	}

	writeJSON(w, http.StatusOK, runResponse{Run: run, Errors: runErrs})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
