package symbols

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arnabmitra/index-symbols/internal/exchange"
	"github.com/arnabmitra/index-symbols/internal/strategy"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTimeout = 30 * time.Second
	DefaultWorkers = 4
)

// Fetcher retrieves the raw payload stored at location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// Observer is told about every fetch and parse. The zero Acquirer uses a no-op.
type Observer interface {
	ObserveFetch(exchange string, elapsed time.Duration, bytes int, err error)
	ObserveParse(exchange string, records int, err error)
}

// Forgetter is implemented by fetchers that keep payloads between runs. A payload that fails
// to parse is forgotten so the next run fetches it again.
type Forgetter interface {
	Forget(ctx context.Context, location string) error
}

type nopObserver struct{}

func (nopObserver) ObserveFetch(string, time.Duration, int, error) {}
func (nopObserver) ObserveParse(string, int, error)                {}

// Acquirer turns a selection of exchanges into one de-duplicated list of tickers.
type Acquirer struct {
	registry *exchange.Registry
	fetcher  Fetcher
	parsers  *strategy.Set
	logger   *slog.Logger
	observer Observer
	timeout  time.Duration
	workers  int
}

type Option func(*Acquirer)

func WithParsers(s *strategy.Set) Option {
	return func(a *Acquirer) { a.parsers = s }
}

// WithTimeout bounds each fetch. A fetch that runs out of time is a FetchError.
func WithTimeout(d time.Duration) Option {
	return func(a *Acquirer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithWorkers bounds how many sources are fetched at once.
func WithWorkers(n int) Option {
	return func(a *Acquirer) {
		if n > 0 {
			a.workers = n
		}
	}
}

func WithObserver(o Observer) Option {
	return func(a *Acquirer) {
		if o != nil {
			a.observer = o
		}
	}
}

func NewAcquirer(registry *exchange.Registry, fetcher Fetcher, logger *slog.Logger, opts ...Option) *Acquirer {
	a := &Acquirer{
		registry: registry,
		fetcher:  fetcher,
		parsers:  strategy.Defaults(),
		logger:   logger,
		observer: nopObserver{},
		timeout:  DefaultTimeout,
		workers:  DefaultWorkers,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AcquireIDs resolves ids through the registry ("all" selects everything) and acquires them.
func (a *Acquirer) AcquireIDs(ctx context.Context, ids []string) (*Result, error) {
	specs, err := a.registry.Resolve(ids)
	if err != nil {
		return nil, err
	}
	return a.Acquire(ctx, specs)
}

// Acquire fetches and parses every spec and merges the tickers in the order specs are
// given: when two sources yield the same ticker the earlier spec keeps it. A source that
// fails is recorded in Result.Errors and does not stop the others.
//
// Acquire itself fails only for an empty selection, a spec the registry does not know, or
// a cancelled ctx.
func (a *Acquirer) Acquire(ctx context.Context, specs []exchange.Spec) (*Result, error) {
	if len(specs) == 0 {
		return nil, ErrEmptySelection
	}

	selected := make([]exchange.Spec, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		if _, err := a.registry.Get(s.ID); err != nil {
			return nil, err
		}
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		selected = append(selected, s)
	}

	result := &Result{
		Records:   make([]Record, 0),
		Errors:    make(map[string]error),
		StartedAt: time.Now(),
	}
	a.logger.Info("acquiring symbols", slog.Int("exchanges", len(selected)), slog.Int("workers", a.workers))

	// Every source writes only its own slot, so no locking is needed until the merge.
	outcomes := make([]outcome, len(selected))
	var g errgroup.Group
	g.SetLimit(a.workers)
	for i, spec := range selected {
		g.Go(func() error {
			outcomes[i] = a.collect(ctx, spec)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("acquisition cancelled: %w", err)
	}

	a.merge(result, selected, outcomes)
	result.FinishedAt = time.Now()

	a.logger.Info("acquisition finished",
		slog.Int("records", len(result.Records)),
		slog.Int("failed", len(result.Errors)),
		slog.Duration("elapsed", result.FinishedAt.Sub(result.StartedAt)),
	)
	return result, nil
}

type outcome struct {
	tickers  []string
	raw      int
	rejected int
	bytes    int
	elapsed  time.Duration
	err      error
}

func (a *Acquirer) collect(ctx context.Context, spec exchange.Spec) outcome {
	start := time.Now()
	out := a.fetchAndParse(ctx, spec)
	out.elapsed = time.Since(start)

	if out.err != nil {
		a.logger.Warn("source failed", slog.String("exchange", spec.ID), slog.Any("error", out.err))
	} else {
		a.logger.Debug("source parsed",
			slog.String("exchange", spec.ID),
			slog.Int("tickers", len(out.tickers)),
			slog.Duration("elapsed", out.elapsed),
		)
	}
	return out
}

func (a *Acquirer) fetchAndParse(ctx context.Context, spec exchange.Spec) outcome {
	parser, err := a.parsers.Get(spec.Strategy)
	if err != nil {
		a.observer.ObserveParse(spec.ID, 0, err)
		return outcome{err: &ParseError{Exchange: spec.ID, Strategy: spec.Strategy, Err: err}}
	}
	rewrites, err := spec.CompileRewrites()
	if err != nil {
		a.observer.ObserveParse(spec.ID, 0, err)
		return outcome{err: &ParseError{Exchange: spec.ID, Strategy: spec.Strategy, Err: err}}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, a.timeout)
	start := time.Now()
	payload, err := a.fetcher.Fetch(fetchCtx, spec.Source)
	if err == nil && errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
		// the fetcher ignored its context and came back late
		payload, err = nil, fetchCtx.Err()
	}
	cancel()
	a.observer.ObserveFetch(spec.ID, time.Since(start), len(payload), err)
	if err != nil {
		return outcome{err: &FetchError{Exchange: spec.ID, Source: spec.Source, Err: err}}
	}

	raw, err := parser.Parse(payload, spec.Options)
	if err != nil {
		a.observer.ObserveParse(spec.ID, 0, err)
		a.forget(ctx, spec)
		return outcome{bytes: len(payload), err: &ParseError{Exchange: spec.ID, Strategy: spec.Strategy, Err: err}}
	}

	out := outcome{raw: len(raw), bytes: len(payload), tickers: make([]string, 0, len(raw))}
	for _, r := range raw {
		t := clean(r)
		for _, rw := range rewrites {
			t = rw.Apply(t)
		}
		t = Normalize(t)
		if t == "" {
			out.rejected++
			continue
		}
		out.tickers = append(out.tickers, t)
	}
	a.observer.ObserveParse(spec.ID, len(out.tickers), nil)
	return out
}

func (a *Acquirer) forget(ctx context.Context, spec exchange.Spec) {
	f, ok := a.fetcher.(Forgetter)
	if !ok {
		return
	}
	if err := f.Forget(ctx, spec.Source); err != nil {
		a.logger.Warn("failed to forget payload", slog.String("exchange", spec.ID), slog.Any("error", err))
	}
}

func (a *Acquirer) merge(result *Result, specs []exchange.Spec, outcomes []outcome) {
	owner := make(map[string]bool)
	for i, spec := range specs {
		o := outcomes[i]
		report := SourceReport{
			Exchange: spec.ID,
			Raw:      o.raw,
			Rejected: o.rejected,
			Bytes:    o.bytes,
			Elapsed:  o.elapsed,
			Err:      o.err,
		}
		if o.err != nil {
			result.Errors[spec.ID] = o.err
			result.Sources = append(result.Sources, report)
			continue
		}

		listed := make(map[string]bool, len(o.tickers))
		for _, t := range o.tickers {
			if !listed[t] {
				listed[t] = true
				report.Tickers = append(report.Tickers, t)
			}
			if owner[t] {
				report.Duplicates++
				continue
			}
			owner[t] = true
			result.Records = append(result.Records, Record{Ticker: t, Exchange: spec.ID})
			report.Records++
		}
		result.Sources = append(result.Sources, report)
	}
}
