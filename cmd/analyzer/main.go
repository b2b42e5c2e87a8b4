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
	"strconv"
	"strings"
	"syscall"

	"ecomcli/internal/config"
	"ecomcli/internal/exporter"
	"ecomcli/internal/infrastructure"
	"ecomcli/internal/report"
	"ecomcli/internal/services"
	"ecomcli/internal/validation"
	"ecomcli/pkg/contracts/domain"
)

// options holds the parsed command line
type options struct {
	configPath string
	dataDir    string
	outDir     string
	status     string
	statusSet  bool
	current    string
	previous   string
	export     string
	top        int
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		slog.Error("Analysis failed", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("analyzer", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", "", "path to a YAML config file (defaults to ECOM_CONFIG or config.yaml)")
	fs.StringVar(&opts.dataDir, "data", "", "directory holding the dataset CSV files")
	fs.StringVar(&opts.outDir, "out", "", "directory for exported reports")
	fs.StringVar(&opts.status, "status", "", "order status filter, empty keeps every status")
	fs.StringVar(&opts.current, "current", "", "current period as YYYY-MM:YYYY-MM")
	fs.StringVar(&opts.previous, "previous", "", "previous period as YYYY-MM:YYYY-MM")
	fs.StringVar(&opts.export, "export", "", "comma separated export formats (csv, xlsx)")
	fs.IntVar(&opts.top, "top", report.DefaultTopN, "number of categories and states to print")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "status" {
			opts.statusSet = true
		}
	})
	if opts.top < 1 {
		fmt.Fprintln(stderr, "-top must be at least 1")
		return nil, fmt.Errorf("invalid -top %d", opts.top)
	}
	return opts, nil
}

// request converts the period and status flags into a run request
func (o *options) request() (services.RunRequest, error) {
	var req services.RunRequest

	if o.current != "" {
		p, err := parsePeriod(o.current)
		if err != nil {
			return req, fmt.Errorf("-current: %w", err)
		}
		req.Current = &p
	}
	if o.previous != "" {
		p, err := parsePeriod(o.previous)
		if err != nil {
			return req, fmt.Errorf("-previous: %w", err)
		}
		req.Previous = &p
	}
	if o.statusSet {
		status := strings.TrimSpace(o.status)
		req.StatusFilter = &status
	}
	return req, nil
}

// parsePeriod reads YYYY-MM:YYYY-MM. A single YYYY-MM is a one-month period.
func parsePeriod(s string) (domain.Period, error) {
	start, end, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		end = start
	}

	sy, sm, err := parseYearMonth(start)
	if err != nil {
		return domain.Period{}, err
	}
	ey, em, err := parseYearMonth(end)
	if err != nil {
		return domain.Period{}, err
	}

	p := domain.NewPeriod(sy, sm, ey, em)
	if err := config.ValidatePeriod(p); err != nil {
		return domain.Period{}, err
	}
	return p, nil
}

func parseYearMonth(s string) (int, int, error) {
	y, m, found := strings.Cut(s, "-")
	if !found {
		return 0, 0, fmt.Errorf("expected YYYY-MM, got %q", s)
	}
	year, err := strconv.Atoi(y)
	if err != nil || len(y) != 4 {
		return 0, 0, fmt.Errorf("invalid year in %q", s)
	}
	month, err := strconv.Atoi(m)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month in %q", s)
	}
	return year, month, nil
}

func run(ctx context.Context, opts *options, stdout io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.dataDir != "" {
		cfg.Paths.DataDir = opts.dataDir
	}
	if opts.outDir != "" {
		cfg.Paths.ReportsDir = opts.outDir
	}

	logger := newLogger(cfg.Logging)

	formats, err := exporter.ParseFormats(opts.export)
	if err != nil {
		return err
	}
	req, err := opts.request()
	if err != nil {
		return err
	}

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}

	validator := validation.NewFileValidator(logger)
	check, err := validator.CheckDataset(paths.DataDir, cfg.Analysis.Files)
	if err != nil {
		return err
	}
	if !check.Complete() {
		return fmt.Errorf("dataset in %s is missing %s", check.Dir, strings.Join(check.Missing, ", "))
	}

	// no HTTP listener here, so nothing would scrape a Prometheus registry
	otelCfg := infrastructure.OTelConfigFrom(cfg.Telemetry)
	otelCfg.MetricExporter = "none"
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			logger.Warn("OpenTelemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := infrastructure.CreateAnalysisMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("failed to create analysis metrics: %w", err)
	}

	svc := services.NewAnalysisService(cfg.Analysis, paths.DataDir, services.NewAnalysisTracer(metrics), logger)

	logger.Info("Starting analysis",
		slog.String("data_dir", paths.DataDir),
		slog.Int("formats", len(formats)))

	result, err := svc.Run(ctx, req)
	if err != nil {
		return err
	}

	if err := report.NewPrinter(stdout).WithTopN(opts.top).Print(result.Report); err != nil {
		return fmt.Errorf("failed to print report: %w", err)
	}

	if len(formats) == 0 {
		return nil
	}

	if err := validator.ValidateOutputDirectory(paths.ReportsDir); err != nil {
		return err
	}
	files, err := exporter.NewExporter(paths, logger).Export(ctx, result.Report, result.Facts, formats)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Fprintf(stdout, "Exported %s\n", f)
	}
	return nil
}

// newLogger keeps log lines off stdout so the printed report stays clean
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	switch strings.ToLower(cfg.Output) {
	case "file", "both":
		cfg.Output = "file"
		logger, err := infrastructure.InitializeLogger(cfg)
		if err == nil {
			return logger
		}
		slog.Warn("Failed to initialize file logger, logging to stderr", slog.String("error", err.Error()))
	}
	logger := infrastructure.NewLogger(os.Stderr, cfg.Level)
	slog.SetDefault(logger)
	return logger
}
