package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arnabmitra/index-symbols/internal/exchange"
	"github.com/arnabmitra/index-symbols/internal/repository"
	"github.com/arnabmitra/index-symbols/internal/symbols"
	"github.com/arnabmitra/index-symbols/internal/symbolstore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memFetcher map[string]string

func (m memFetcher) Fetch(_ context.Context, location string) ([]byte, error) {
	p, ok := m[location]
	if !ok {
		return nil, &httpError{location}
	}
	return []byte(p), nil
}

type httpError struct{ loc string }

func (e *httpError) Error() string { return "GET " + e.loc + " returned 404 Not Found" }

// memStore keeps one list per exchange, replaced whenever the exchange succeeds.
type memStore struct {
	saved []*symbols.Result
	lists map[string][]symbols.Record
	order []string
	runs  []repository.AcquisitionRun
	errs  map[uuid.UUID][]repository.SourceError
}

func (s *memStore) SaveResult(_ context.Context, res *symbols.Result, trigger string) (uuid.UUID, error) {
	if s.lists == nil {
		s.lists = make(map[string][]symbols.Record)
		s.errs = make(map[uuid.UUID][]repository.SourceError)
	}
	runID := uuid.New()
	for _, src := range res.Sources {
		if !src.OK() {
			s.errs[runID] = append(s.errs[runID], repository.SourceError{RunID: runID, Exchange: src.Exchange, Message: src.Err.Error()})
			continue
		}
		if _, ok := s.lists[src.Exchange]; !ok {
			s.order = append(s.order, src.Exchange)
		}
		s.lists[src.Exchange] = res.Constituents(src.Exchange)
	}
	s.saved = append(s.saved, res)
	s.runs = append(s.runs, repository.AcquisitionRun{ID: runID, Trigger: trigger, ErrorCount: int32(len(res.Errors))})
	return runID, nil
}

func (s *memStore) ActiveSymbols(_ context.Context, ex string) ([]symbols.Record, error) {
	if ex != "" {
		return s.lists[ex], nil
	}
	var out []symbols.Record
	for _, id := range s.order {
		out = append(out, s.lists[id]...)
	}
	return out, nil
}

func (s *memStore) LatestRun(context.Context) (*repository.AcquisitionRun, error) {
	if len(s.runs) == 0 {
		return nil, symbolstore.ErrNoRuns
	}
	run := s.runs[len(s.runs)-1]
	return &run, nil
}

func (s *memStore) RunErrors(_ context.Context, runID uuid.UUID) ([]repository.SourceError, error) {
	return s.errs[runID], nil
}

func newHandler(t *testing.T, withStore bool) (*SymbolsHandler, *memStore) {
	t.Helper()
	reg := exchange.NewRegistry()
	require.NoError(t, reg.Register(exchange.Spec{ID: "nasdaq100", Source: "mem://nasdaq", Strategy: exchange.StrategyLines}))
	require.NoError(t, reg.Register(exchange.Spec{ID: "sp500", Source: "mem://sp500", Strategy: exchange.StrategyLines}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	acq := symbols.NewAcquirer(reg, memFetcher{"mem://nasdaq": "AAPL\nMSFT\n"}, logger)

	if !withStore {
		return NewSymbolsHandler(logger, reg, acq, nil), nil
	}
	store := &memStore{}
	return NewSymbolsHandler(logger, reg, acq, store), store
}

func TestListExchanges(t *testing.T) {
	h, _ := newHandler(t, false)

	rec := httptest.NewRecorder()
	h.ListExchanges(rec, httptest.NewRequest(http.MethodGet, "/exchanges", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Exchanges []exchange.Spec `json:"exchanges"`
		Count     int             `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "nasdaq100", body.Exchanges[0].ID)
}

func TestAcquireThenGetSymbols(t *testing.T) {
	h, store := newHandler(t, true)

	rec := httptest.NewRecorder()
	h.Acquire(rec, httptest.NewRequest(http.MethodPost, "/acquire?exchange=nasdaq100,sp500", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp acquireResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Records, 2)
	assert.Contains(t, resp.Errors["sp500"], "404")
	assert.NotEmpty(t, resp.RunID)
	require.Len(t, store.saved, 1)

	rec = httptest.NewRecorder()
	h.GetSymbols(rec, httptest.NewRequest(http.MethodGet, "/symbols?exchange=nasdaq100", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Symbols []symbols.Record `json:"symbols"`
		Count   int              `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "AAPL", body.Symbols[0].Ticker)
}

func TestAcquireBadSelection(t *testing.T) {
	h, _ := newHandler(t, false)

	for _, target := range []string{"/acquire", "/acquire?exchange=", "/acquire?exchange=NIKKEI"} {
		rec := httptest.NewRecorder()
		h.Acquire(rec, httptest.NewRequest(http.MethodPost, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestGetSymbolsWithoutStore(t *testing.T) {
	h, _ := newHandler(t, false)

	rec := httptest.NewRecorder()
	h.GetSymbols(rec, httptest.NewRequest(http.MethodGet, "/symbols", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	h.Publish(&symbols.Result{Records: []symbols.Record{
		{Ticker: "AAPL", Exchange: "nasdaq100"},
		{Ticker: "MMM", Exchange: "sp500"},
	}})

	rec = httptest.NewRecorder()
	h.GetSymbols(rec, httptest.NewRequest(http.MethodGet, "/symbols?exchange=sp500", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"MMM"`)
	assert.NotContains(t, rec.Body.String(), `"AAPL"`)

	rec = httptest.NewRecorder()
	h.GetSymbols(rec, httptest.NewRequest(http.MethodGet, "/symbols?exchange=NIKKEI", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSymbolsKeepsSharedConstituents(t *testing.T) {
	for _, withStore := range []bool{false, true} {
		name := "memory"
		if withStore {
			name = "store"
		}
		t.Run(name, func(t *testing.T) {
			reg := exchange.NewRegistry()
			require.NoError(t, reg.Register(exchange.Spec{ID: "DJIA", Source: "mem://djia", Strategy: exchange.StrategyLines}))
			require.NoError(t, reg.Register(exchange.Spec{ID: "SNP_500", Source: "mem://sp500", Strategy: exchange.StrategyLines}))

			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			acq := symbols.NewAcquirer(reg, memFetcher{
				"mem://djia":  "AAPL\nMSFT\n",
				"mem://sp500": "AAPL\nMSFT\nNVDA\n",
			}, logger)

			var store symbolstore.Repository
			if withStore {
				store = &memStore{}
			}
			h := NewSymbolsHandler(logger, reg, acq, store)

			rec := httptest.NewRecorder()
			h.Acquire(rec, httptest.NewRequest(http.MethodPost, "/acquire?exchange=DJIA,SNP_500", nil))
			require.Equal(t, http.StatusOK, rec.Code)

			var resp acquireResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Len(t, resp.Records, 3, "merged list holds each ticker once")

			rec = httptest.NewRecorder()
			h.GetSymbols(rec, httptest.NewRequest(http.MethodGet, "/symbols?exchange=SNP_500", nil))
			require.Equal(t, http.StatusOK, rec.Code)
			var body struct {
				Symbols []symbols.Record `json:"symbols"`
				Count   int              `json:"count"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, 3, body.Count)
			assert.Equal(t, []symbols.Record{
				{Ticker: "AAPL", Exchange: "SNP_500"},
				{Ticker: "MSFT", Exchange: "SNP_500"},
				{Ticker: "NVDA", Exchange: "SNP_500"},
			}, body.Symbols)
		})
	}
}

func TestLatestRun(t *testing.T) {
	h, _ := newHandler(t, true)

	rec := httptest.NewRecorder()
	h.LatestRun(rec, httptest.NewRequest(http.MethodGet, "/runs/latest", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.Acquire(rec, httptest.NewRequest(http.MethodPost, "/acquire?exchange=nasdaq100,sp500", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var acquired acquireResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&acquired))

	rec = httptest.NewRecorder()
	h.LatestRun(rec, httptest.NewRequest(http.MethodGet, "/runs/latest", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body runResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.NotNil(t, body.Run)
	assert.Equal(t, acquired.RunID, body.Run.ID.String())
	assert.Equal(t, "api", body.Run.Trigger)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "sp500", body.Errors[0].Exchange)
	assert.Contains(t, body.Errors[0].Message, "404")
}

func TestLatestRunWithoutStore(t *testing.T) {
	h, _ := newHandler(t, false)

	rec := httptest.NewRecorder()
	h.LatestRun(rec, httptest.NewRequest(http.MethodGet, "/runs/latest", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
