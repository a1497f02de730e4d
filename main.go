package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/arnabmitra/index-symbols/internal/app"
	"github.com/arnabmitra/index-symbols/internal/cache"
	"github.com/arnabmitra/index-symbols/internal/config"
	"github.com/arnabmitra/index-symbols/internal/database"
	"github.com/arnabmitra/index-symbols/internal/exchange"
	"github.com/arnabmitra/index-symbols/internal/metrics"
	"github.com/arnabmitra/index-symbols/internal/output"
	"github.com/arnabmitra/index-symbols/internal/symbols"
	"github.com/arnabmitra/index-symbols/internal/symbolstore"
	"github.com/redis/go-redis/v9"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(v string) error {
	*l = append(*l, config.SplitList(v)...)
	return nil
}

type options struct {
	exchanges  listFlag
	all        bool
	out        string
	format     string
	configPath string
	list       bool
	chart      string
	store      bool
	cache      bool
	serve      bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	var opts options
	fs := flag.NewFlagSet("index-symbols", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.Var(&opts.exchanges, "exchange", "exchange `ID` to fetch symbols from; repeat or comma separate for several")
	fs.Var(&opts.exchanges, "e", "shorthand for -exchange")
	fs.BoolVar(&opts.all, "all", false, "fetch symbols from all configured exchanges")
	fs.BoolVar(&opts.all, "a", false, "shorthand for -all")
	fs.StringVar(&opts.out, "out", "", "write symbols to `PATH` instead of stdout")
	fs.StringVar(&opts.out, "o", "", "shorthand for -out")
	fs.StringVar(&opts.format, "format", "", "output format: txt, csv or json (default: from -out extension, else txt)")
	fs.StringVar(&opts.configPath, "config", "", "YAML `FILE` listing exchanges (default: built-in list)")
	fs.BoolVar(&opts.list, "list", false, "list configured exchanges and exit")
	fs.StringVar(&opts.chart, "chart", "", "save a bar chart of symbols per exchange to `PATH`")
	fs.BoolVar(&opts.store, "store", false, "store the result in Postgres (DATABASE_URL)")
	fs.BoolVar(&opts.cache, "cache", false, "cache fetched pages in Redis (REDIS_ADDR)")
	fs.BoolVar(&opts.serve, "serve", false, "run the HTTP API and periodic collector")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: index-symbols [-e ID[,ID...] | -a] [flags]\n\nFetch ticker symbols of stock indices and exchanges.\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return &opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(stderr, "failed to load .env:", err)
	}
	cfg := config.Load(slog.New(slog.NewJSONHandler(stderr, nil)))
	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	registry := exchange.Default()
	if opts.configPath != "" {
		registry, err = exchange.LoadFile(opts.configPath)
		if err != nil {
			logger.Error("failed to load exchanges", slog.String("path", opts.configPath), slog.Any("error", err))
			return exitError
		}
	}

	if opts.list {
		listExchanges(stdout, registry)
		return exitOK
	}

	if opts.serve {
		if err := app.New(logger, cfg, registry).Start(ctx); err != nil {
			logger.Error("failed to start server", slog.Any("error", err))
			return exitError
		}
		return exitOK
	}

	return collect(ctx, opts, cfg, registry, logger, stdout, stderr)
}

func collect(ctx context.Context, opts *options, cfg config.Config, registry *exchange.Registry, logger *slog.Logger, stdout, stderr io.Writer) int {
	format := output.FormatFromPath(opts.out)
	if opts.format != "" {
		f, err := output.ParseFormat(opts.format)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitUsage
		}
		format = f
	}

	ids := []string(opts.exchanges)
	if opts.all {
		ids = append([]string{exchange.All}, ids...)
	}

	var rdb *redis.Client
	if opts.cache {
		c, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Warn("redis unavailable, fetching without cache", slog.Any("error", err))
		} else {
			rdb = c
			defer rdb.Close()
		}
	}

	acquirer := app.NewAcquirer(cfg, registry, app.NewFetcher(cfg, rdb, logger), logger)
	metrics.Runs.WithLabelValues("cli").Inc()

	res, err := acquirer.AcquireIDs(ctx, ids)
	switch {
	case errors.Is(err, symbols.ErrEmptySelection):
		fmt.Fprintf(stderr, "%v: use -e ID or -a (available: %s)\n", err, strings.Join(registry.IDs(), ", "))
		return exitUsage
	case errors.Is(err, exchange.ErrUnknownExchange):
		fmt.Fprintln(stderr, err)
		return exitUsage
	case err != nil:
		logger.Error("acquisition failed", slog.Any("error", err))
		return exitError
	}

	if opts.out != "" {
		if err := output.WriteFile(opts.out, res, format); err != nil {
			logger.Error("failed to write symbols", slog.String("path", opts.out), slog.Any("error", err))
			return exitError
		}
	} else if err := output.Write(stdout, res, format); err != nil {
		logger.Error("failed to write symbols", slog.Any("error", err))
		return exitError
	}

	output.WriteSummary(stderr, res)

	if opts.chart != "" {
		if err := output.SaveChart(res, opts.chart); err != nil {
			logger.Error("failed to save chart", slog.String("path", opts.chart), slog.Any("error", err))
			return exitError
		}
	}

	if opts.store {
		if err := storeResult(ctx, cfg, logger, res); err != nil {
			logger.Error("failed to store symbols", slog.Any("error", err))
			return exitError
		}
	}

	return exitOK
}

func storeResult(ctx context.Context, cfg config.Config, logger *slog.Logger, res *symbols.Result) error {
	db, err := database.Connect(ctx, logger, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	runID, err := symbolstore.New(db, logger).SaveResult(ctx, res, "cli")
	if err != nil {
		return err
	}
	logger.Info("stored symbols", slog.String("run_id", runID.String()), slog.Int("symbols", len(res.Records)))
	return nil
}

func listExchanges(w io.Writer, registry *exchange.Registry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTRATEGY\tSOURCE")
	for _, s := range registry.List() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Strategy, s.Source)
	}
	tw.Flush()
}
