package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/arnabmitra/index-symbols/internal/metrics"
	"github.com/arnabmitra/index-symbols/internal/symbols"
	"github.com/arnabmitra/index-symbols/internal/symbolstore"
)

const collectTimeout = 10 * time.Minute

type SymbolCollector struct {
	acquirer *symbols.Acquirer
	store    symbolstore.Repository
	publish  func(*symbols.Result)
	ids      []string
	interval time.Duration
	logger   *slog.Logger
	stop     chan struct{}
	done     chan struct{}
}

// NewSymbolCollector refreshes the exchanges named by ids every interval. store and publish
// are optional.
func NewSymbolCollector(logger *slog.Logger, acquirer *symbols.Acquirer, store symbolstore.Repository, publish func(*symbols.Result), ids []string, interval time.Duration) *SymbolCollector {
	return &SymbolCollector{
		acquirer: acquirer,
		store:    store,
		publish:  publish,
		ids:      ids,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (c *SymbolCollector) Start() {
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		// Run immediately on start
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stop:
				return
			}
		}
	}()
}

// Stop ends the loop and waits for a collection in flight to finish.
func (c *SymbolCollector) Stop() {
	close(c.stop)
	<-c.done
}

func (c *SymbolCollector) collect() {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
	defer cancel()

	c.logger.Info("starting symbol collection", slog.Any("exchanges", c.ids))
	metrics.Runs.WithLabelValues("schedule").Inc()

	res, err := c.acquirer.AcquireIDs(ctx, c.ids)
	if err != nil {
		c.logger.Error("symbol collection failed", slog.Any("error", err))
		return
	}

	if c.store != nil {
		runID, err := c.store.SaveResult(ctx, res, "schedule")
		if err != nil {
			c.logger.Error("failed to store symbols", slog.Any("error", err))
		} else {
			c.logger.Info("stored symbols", slog.String("run_id", runID.String()))
		}
	}
	if c.publish != nil {
		c.publish(res)
	}

	c.logger.Info("completed symbol collection",
		slog.Int("symbols", len(res.Records)),
		slog.Int("failed_sources", len(res.Errors)),
		slog.Duration("elapsed", time.Since(startTime)),
	)
}
