package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"ecomcli/internal/config"
	"ecomcli/internal/dataprocessing"
	apperrors "ecomcli/internal/errors"
	"ecomcli/internal/metrics"
	"ecomcli/pkg/contracts/domain"
)

// RunRequest overrides parts of the configured analysis for one run.
// Nil fields keep the configured value.
type RunRequest struct {
	Current      *domain.Period `json:"current,omitempty"`
	Previous     *domain.Period `json:"previous,omitempty"`
	StatusFilter *string        `json:"status_filter,omitempty"`
}

// Result is a finished analysis run: the report plus the fact tables it was
// computed from
type Result struct {
	Report   *domain.AnalysisReport
	Facts    domain.FactTable
	Current  domain.FactTable
	Previous domain.FactTable
}

// Table returns the period-filtered fact table for scope
func (r *Result) Table(scope Scope) domain.FactTable {
	if scope == ScopePrevious {
		return r.Previous
	}
	return r.Current
}

// Bundle returns the metrics computed for scope
func (r *Result) Bundle(scope Scope) domain.MetricBundle {
	if scope == ScopePrevious {
		return r.Report.Previous
	}
	return r.Report.Current
}

// AnalysisService runs the sales analysis pipeline and keeps the last
// successful result for queries
type AnalysisService struct {
	cfg       config.AnalysisConfig
	dataDir   string
	builder   *dataprocessing.FactBuilder
	tracer    *AnalysisTracer
	publisher RunPublisher
	logger    *slog.Logger
	now       func() time.Time

	mu   sync.RWMutex
	last *Result
}

// NewAnalysisService creates a service reading the dataset from dataDir
func NewAnalysisService(cfg config.AnalysisConfig, dataDir string, tracer *AnalysisTracer, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = NewAnalysisTracer(nil)
	}
	logger = logger.With(slog.String("component", "analysis_service"))

	logger.Info("AnalysisService initialized",
		slog.String("data_dir", dataDir),
		slog.String("current", cfg.Current.String()),
		slog.String("previous", cfg.Previous.String()),
		slog.String("status_filter", cfg.StatusFilter))

	return &AnalysisService{
		cfg:     cfg,
		dataDir: dataDir,
		builder: dataprocessing.NewFactBuilder(logger),
		tracer:  tracer,
		logger:  logger,
		now:     time.Now,
	}
}

// WithPublisher streams run progress snapshots to p
func (s *AnalysisService) WithPublisher(p RunPublisher) *AnalysisService {
	s.publisher = p
	return s
}

// Config returns the configured analysis defaults
func (s *AnalysisService) Config() config.AnalysisConfig {
	return s.cfg
}

// Resolve applies req to the configured analysis and validates the result
func (s *AnalysisService) Resolve(req RunRequest) (config.AnalysisConfig, error) {
	cfg := s.cfg
	if req.Current != nil {
		cfg.Current = *req.Current
	}
	if req.Previous != nil {
		cfg.Previous = *req.Previous
	}
	if req.StatusFilter != nil {
		cfg.StatusFilter = *req.StatusFilter
	}

	periods := []struct {
		name   string
		period domain.Period
	}{
		{"current", cfg.Current},
		{"previous", cfg.Previous},
	}
	for _, p := range periods {
		if err := config.ValidatePeriod(p.period); err != nil {
			return cfg, apperrors.NewAppError(apperrors.ErrTypeInvalidParameter, err.Error(), nil).
				WithContext("period", p.name)
		}
	}
	return cfg, nil
}

// Run loads the dataset from the data directory and analyzes it
func (s *AnalysisService) Run(ctx context.Context, req RunRequest) (*Result, error) {
	return s.execute(ctx, req, func(ctx context.Context, cfg config.AnalysisConfig) (dataprocessing.Dataset, error) {
		return dataprocessing.NewLoader(cfg.Files, s.logger).Load(ctx, s.dataDir)
	})
}

// RunDataset analyzes an already loaded dataset
func (s *AnalysisService) RunDataset(ctx context.Context, ds dataprocessing.Dataset, req RunRequest) (*Result, error) {
	return s.execute(ctx, req, func(context.Context, config.AnalysisConfig) (dataprocessing.Dataset, error) {
		return ds, nil
	})
}

type loadFunc func(ctx context.Context, cfg config.AnalysisConfig) (dataprocessing.Dataset, error)

func (s *AnalysisService) execute(ctx context.Context, req RunRequest, load loadFunc) (*Result, error) {
	cfg, err := s.Resolve(req)
	if err != nil {
		return nil, err
	}

	runID := ulid.Make().String()
	ctx, span := s.tracer.TraceRun(ctx, runID, cfg)
	start := time.Now()

	logger := s.logger.With(slog.String("run_id", runID))
	logger.InfoContext(ctx, "analysis started",
		slog.String("current", cfg.Current.String()),
		slog.String("previous", cfg.Previous.String()),
		slog.String("status_filter", cfg.StatusFilter))

	progress := newRunProgress(runID, s.publisher, s.now)
	progress.start(ctx)

	result, err := s.analyze(ctx, runID, cfg, load, progress)
	duration := time.Since(start)
	s.tracer.RecordCompletion(ctx, span, duration, err)
	progress.finish(ctx, err)

	if err != nil {
		logger.ErrorContext(ctx, "analysis failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", duration))
		return nil, err
	}

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()

	logger.InfoContext(ctx, "analysis completed",
		slog.Int("fact_rows", result.Facts.Len()),
		slog.String("current_revenue", result.Report.Comparison.CurrentRevenue.String()),
		slog.String("previous_revenue", result.Report.Comparison.PreviousRevenue.String()),
		slog.Duration("duration", duration))

	return result, nil
}

// stage runs fn as a traced pipeline stage and reports its transitions
func (s *AnalysisService) stage(ctx context.Context, progress *runProgress, name string, fn func(ctx context.Context) error) error {
	progress.beginStage(ctx, name)
	err := s.tracer.TraceStage(ctx, name, fn)
	progress.endStage(ctx, name, err)
	return err
}

func (s *AnalysisService) analyze(ctx context.Context, runID string, cfg config.AnalysisConfig, load loadFunc, progress *runProgress) (*Result, error) {
	opts, err := dataprocessing.FactOptionsFrom(cfg)
	if err != nil {
		return nil, err
	}

	var ds dataprocessing.Dataset
	if err := s.stage(ctx, progress, StageLoad, func(ctx context.Context) error {
		ds, err = load(ctx, cfg)
		return err
	}); err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	var facts domain.FactTable
	var stats domain.FactBuildStats
	if err := s.stage(ctx, progress, StageFacts, func(ctx context.Context) error {
		facts, stats, err = s.builder.Build(ds, opts)
		if err == nil {
			s.tracer.RecordBuild(ctx, stats)
		}
		return err
	}); err != nil {
		return nil, fmt.Errorf("build fact table: %w", err)
	}

	result := &Result{Facts: facts}
	var current, previous domain.MetricBundle

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.stage(gctx, progress, StageMetricsCurrent, func(ctx context.Context) error {
			result.Current, current = periodMetrics(facts, ds.Orders, cfg.Current)
			return ctx.Err()
		})
	})
	g.Go(func() error {
		return s.stage(gctx, progress, StageMetricsPrevious, func(ctx context.Context) error {
			result.Previous, previous = periodMetrics(facts, ds.Orders, cfg.Previous)
			return ctx.Err()
		})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Report = &domain.AnalysisReport{
		RunID:        runID,
		GeneratedAt:  s.now().UTC(),
		StatusFilter: cfg.StatusFilter,
		BuildStats:   stats,
		Current:      current,
		Previous:     previous,
		Comparison:   metrics.ComparePeriods(result.Current.Rows, result.Previous.Rows),
	}

	return result, nil
}

// periodMetrics filters the fact and order tables to p and computes the
// period's metric bundle
func periodMetrics(facts domain.FactTable, orders []domain.Order, p domain.Period) (domain.FactTable, domain.MetricBundle) {
	table := dataprocessing.FilterTable(facts, p)
	return table, metrics.BuildBundle(p, table, dataprocessing.FilterRange(orders, p))
}

// LastResult returns the most recent successful run
func (s *AnalysisService) LastResult() (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.last == nil {
		return nil, ErrNoReport
	}
	return s.last, nil
}

// LastReport returns the report of the most recent successful run
func (s *AnalysisService) LastReport() (*domain.AnalysisReport, error) {
	result, err := s.LastResult()
	if err != nil {
		return nil, err
	}
	return result.Report, nil
}
