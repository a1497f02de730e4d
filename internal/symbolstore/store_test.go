package symbolstore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/arnabmitra/index-symbols/internal/database"
	"github.com/arnabmitra/index-symbols/internal/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pool, err := database.Connect(ctx, logger, url)
	require.NoError(t, err)
	defer pool.Close()

	exchange := "TEST_" + time.Now().Format("150405.000000")
	other := exchange + "_DOWN"
	s := New(pool, logger)

	first := &symbols.Result{
		Records: []symbols.Record{
			{Ticker: "AAA", Exchange: exchange},
			{Ticker: "BBB", Exchange: exchange},
		},
		Errors:     map[string]error{},
		Sources:    []symbols.SourceReport{{Exchange: exchange, Records: 2, Tickers: []string{"AAA", "BBB"}}},
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
	}
	_, err = s.SaveResult(ctx, first, "test")
	require.NoError(t, err)

	fetchErr := &symbols.FetchError{Exchange: other, Source: "x", Err: errors.New("404")}
	second := &symbols.Result{
		Records: []symbols.Record{{Ticker: "BBB", Exchange: exchange}, {Ticker: "CCC", Exchange: exchange}},
		Errors:  map[string]error{other: fetchErr},
		Sources: []symbols.SourceReport{
			{Exchange: exchange, Records: 2, Tickers: []string{"BBB", "CCC"}},
			{Exchange: other, Err: fetchErr},
		},
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
	}
	runID, err := s.SaveResult(ctx, second, "test")
	require.NoError(t, err)

	got, err := s.ActiveSymbols(ctx, exchange)
	require.NoError(t, err)
	assert.Equal(t, []symbols.Record{
		{Ticker: "BBB", Exchange: exchange},
		{Ticker: "CCC", Exchange: exchange},
	}, got)

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, runID, latest.ID)
	assert.Equal(t, int32(1), latest.ErrorCount)

	runErrs, err := s.RunErrors(ctx, runID)
	require.NoError(t, err)
	require.Len(t, runErrs, 1)
	assert.Equal(t, other, runErrs[0].Exchange)
	assert.Contains(t, runErrs[0].Message, "404")
}

func TestStoreKeepsSharedConstituents(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pool, err := database.Connect(ctx, logger, url)
	require.NoError(t, err)
	defer pool.Close()

	suffix := time.Now().Format("150405.000000")
	djia, sp := "DJIA_"+suffix, "SP_"+suffix
	s := New(pool, logger)

	res := &symbols.Result{
		Records: []symbols.Record{
			{Ticker: "AAPL", Exchange: djia},
			{Ticker: "MSFT", Exchange: djia},
			{Ticker: "NVDA", Exchange: sp},
		},
		Errors: map[string]error{},
		Sources: []symbols.SourceReport{
			{Exchange: djia, Records: 2, Tickers: []string{"AAPL", "MSFT"}},
			{Exchange: sp, Records: 1, Duplicates: 2, Tickers: []string{"AAPL", "MSFT", "NVDA"}},
		},
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
	}
	for i := 0; i < 2; i++ {
		_, err = s.SaveResult(ctx, res, "test")
		require.NoError(t, err)
	}

	got, err := s.ActiveSymbols(ctx, sp)
	require.NoError(t, err)
	assert.Equal(t, []symbols.Record{
		{Ticker: "AAPL", Exchange: sp},
		{Ticker: "MSFT", Exchange: sp},
		{Ticker: "NVDA", Exchange: sp},
	}, got)

	got, err = s.ActiveSymbols(ctx, djia)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
