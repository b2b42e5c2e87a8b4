package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "ecomcli/internal/errors"
	"ecomcli/internal/exporter"
	"ecomcli/internal/metrics"
	mw "ecomcli/internal/middleware"
	"ecomcli/internal/services"
	"ecomcli/pkg/contracts/domain"
)

const (
	// MaxLimit caps the limit query parameter of ranking endpoints
	MaxLimit = 1000

	// DefaultExportFormats is used when an export names no format
	DefaultExportFormats = "csv,xlsx"
)

// RunAnalysisRequest is the body of POST /api/analysis/run. Omitted fields
// keep the server's configured defaults; an empty status_filter includes
// every status.
type RunAnalysisRequest struct {
	Current      *domain.Period `json:"current,omitempty"`
	Previous     *domain.Period `json:"previous,omitempty"`
	StatusFilter *string        `json:"status_filter,omitempty" validate:"omitempty,status"`
}

// QueryResponse wraps the result of a report query
type QueryResponse struct {
	RunID  string         `json:"run_id"`
	Scope  services.Scope `json:"scope,omitempty"`
	Period *domain.Period `json:"period,omitempty"`
	Count  *int           `json:"count,omitempty"`
	Data   interface{}    `json:"data"`
}

// ExportResponse lists the files written by an export
type ExportResponse struct {
	RunID string   `json:"run_id"`
	Files []string `json:"files"`
}

// AnalysisHandler serves the analysis API
type AnalysisHandler struct {
	service      AnalysisServiceInterface
	exporter     ReportExporter
	validation   *mw.ValidationMiddleware
	query        *mw.QueryParamValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
	runTimeout   time.Duration
}

// NewAnalysisHandler creates an analysis handler. A zero runTimeout lets a
// run last as long as the request.
func NewAnalysisHandler(service AnalysisServiceInterface, runTimeout time.Duration, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	return &AnalysisHandler{
		service:      service,
		validation:   mw.NewValidationMiddleware(logger, errorHandler),
		query:        mw.NewQueryParamValidator(logger, errorHandler),
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "analysis_handler")),
		runTimeout:   runTimeout,
	}
}

// WithExporter enables POST /export
func (h *AnalysisHandler) WithExporter(e ReportExporter) *AnalysisHandler {
	h.exporter = e
	return h
}

// Routes returns the analysis routes
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.With(h.validation.ValidateRequest).Post("/run", h.RunAnalysis)

	r.Group(func(r chi.Router) {
		r.Use(h.ResultCtx)
		r.Get("/report", h.GetReport)
		r.Get("/summary", h.GetSummary)
		r.Get("/comparison", h.GetComparison)
		r.Get("/revenue", h.GetRevenue)
		r.Get("/revenue/growth", h.GetRevenueGrowth)
		r.Get("/categories", h.GetCategories)
		r.Get("/states", h.GetStates)
		r.Get("/reviews/distribution", h.GetReviewDistribution)
		r.Get("/reviews/delivery", h.GetReviewByDelivery)
		r.Get("/orders/status", h.GetOrderStatus)
		if h.exporter != nil {
			r.Post("/export", h.ExportReport)
		}
	})

	return r
}

type resultCtxKey struct{}

// ResultCtx loads the last analysis result into the request context. Queries
// made before any run answer 404.
func (h *AnalysisHandler) ResultCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result, err := h.service.LastResult()
		if err != nil {
			if errors.Is(err, services.ErrNoReport) {
				h.errorHandler.HandleError(w, r, apierrors.ErrNoReport)
				return
			}
			h.errorHandler.HandleError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), resultCtxKey{}, result)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func resultFrom(ctx context.Context) *services.Result {
	result, _ := ctx.Value(resultCtxKey{}).(*services.Result)
	return result
}

// RunAnalysis handles POST /api/analysis/run
func (h *AnalysisHandler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	reqID := mw.GetReqID(r.Context())

	var req RunAnalysisRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ctx := r.Context()
	if h.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.runTimeout)
		defer cancel()
	}

	h.logger.InfoContext(ctx, "analysis run requested",
		slog.String("request_id", reqID),
		slog.Bool("current_override", req.Current != nil),
		slog.Bool("previous_override", req.Previous != nil),
	)

	result, err := h.service.Run(ctx, services.RunRequest{
		Current:      req.Current,
		Previous:     req.Previous,
		StatusFilter: req.StatusFilter,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "analysis run failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, result.Report)
}

// ExportReport handles POST /api/analysis/export?format=csv,xlsx and writes
// the last report below the reports directory
func (h *AnalysisHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	result := resultFrom(r.Context())

	formatList := r.URL.Query().Get("format")
	if formatList == "" {
		formatList = DefaultExportFormats
	}
	formats, err := exporter.ParseFormats(formatList)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if len(formats) == 0 {
		h.errorHandler.HandleError(w, r, apierrors.NewInvalidParameter("format names no export format, expected csv or xlsx").
			WithContext("format", formatList))
		return
	}

	files, err := h.exporter.Export(r.Context(), result.Report, result.Facts, formats)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "report exported",
		slog.String("run_id", result.Report.RunID),
		slog.Int("files", len(files)),
	)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, ExportResponse{RunID: result.Report.RunID, Files: files})
}

// GetReport handles GET /api/analysis/report
func (h *AnalysisHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, resultFrom(r.Context()).Report)
}

// GetSummary handles GET /api/analysis/summary?scope=
func (h *AnalysisHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	result, scope, ok := h.scoped(w, r)
	if !ok {
		return
	}
	bundle := result.Bundle(scope)
	h.respond(w, r, result, scope, bundle.Summary, nil)
}

// GetComparison handles GET /api/analysis/comparison
func (h *AnalysisHandler) GetComparison(w http.ResponseWriter, r *http.Request) {
	result := resultFrom(r.Context())
	render.JSON(w, r, QueryResponse{
		RunID: result.Report.RunID,
		Data:  result.Report.Comparison,
	})
}

// GetRevenue handles GET /api/analysis/revenue?period=&scope=. Revenue is
// regrouped from the scope's fact rows, so any grouping can be asked for.
func (h *AnalysisHandler) GetRevenue(w http.ResponseWriter, r *http.Request) {
	result, scope, ok := h.scoped(w, r)
	if !ok {
		return
	}
	grouping, ok := h.query.ValidateEnum(w, r, "period",
		[]string{string(domain.GroupByYear), string(domain.GroupByMonth), string(domain.GroupByYearMonth)},
		string(domain.GroupByYearMonth))
	if !ok {
		return
	}

	revenue, err := metrics.RevenueByPeriod(result.Table(scope).Rows, domain.RevenueGrouping(grouping))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respond(w, r, result, scope, revenue, counted(len(revenue)))
}

// GetRevenueGrowth handles GET /api/analysis/revenue/growth?scope=
func (h *AnalysisHandler) GetRevenueGrowth(w http.ResponseWriter, r *http.Request) {
	result, scope, ok := h.scoped(w, r)
	if !ok {
		return
	}
	bundle := result.Bundle(scope)
	h.respond(w, r, result, scope, map[string]interface{}{
		"months":             bundle.MoMGrowth,
		"average_mom_growth": bundle.AverageMoMGrowth,
	}, counted(len(bundle.MoMGrowth)))
}

// GetCategories handles GET /api/analysis/categories?limit=&scope=
func (h *AnalysisHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	h.groups(w, r, func(b domain.MetricBundle) []domain.GroupRevenue { return b.RevenueByCategory })
}

// GetStates handles GET /api/analysis/states?limit=&scope=
func (h *AnalysisHandler) GetStates(w http.ResponseWriter, r *http.Request) {
	h.groups(w, r, func(b domain.MetricBundle) []domain.GroupRevenue { return b.RevenueByState })
}

func (h *AnalysisHandler) groups(w http.ResponseWriter, r *http.Request, pick func(domain.MetricBundle) []domain.GroupRevenue) {
	result, scope, ok := h.scoped(w, r)
	if !ok {
		return
	}
	limit, ok := h.query.ValidateInt(w, r, "limit", 1, MaxLimit, 0)
	if !ok {
		return
	}
	groups := metrics.TopN(pick(result.Bundle(scope)), limit)
	h.respond(w, r, result, scope, groups, counted(len(groups)))
}

// GetReviewDistribution handles GET /api/analysis/reviews/distribution?scope=
func (h *AnalysisHandler) GetReviewDistribution(w http.ResponseWriter, r *http.Request) {
	result, scope, ok := h.scoped(w, r)
	if !ok {
		return
	}
	bundle := result.Bundle(scope)
	if !bundle.Summary.HasReviewScore() {
		h.errorHandler.HandleError(w, r, apierrors.NewNotFoundError("review data"))
		return
	}
	h.respond(w, r, result, scope, bundle.ReviewDistribution, counted(len(bundle.ReviewDistribution)))
}

// GetReviewByDelivery handles GET /api/analysis/reviews/delivery?scope=
func (h *AnalysisHandler) GetReviewByDelivery(w http.ResponseWriter, r *http.Request) {
	result, scope, ok := h.scoped(w, r)
	if !ok {
		return
	}
	bundle := result.Bundle(scope)
	if !bundle.Summary.HasReviewScore() || !bundle.Summary.HasDeliveryDays() {
		h.errorHandler.HandleError(w, r, apierrors.NewNotFoundError("review and delivery data"))
		return
	}
	h.respond(w, r, result, scope, bundle.ReviewByDelivery, counted(len(bundle.ReviewByDelivery)))
}

// GetOrderStatus handles GET /api/analysis/orders/status?scope=
func (h *AnalysisHandler) GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	result, scope, ok := h.scoped(w, r)
	if !ok {
		return
	}
	bundle := result.Bundle(scope)
	h.respond(w, r, result, scope, bundle.StatusDistribution, counted(len(bundle.StatusDistribution)))
}

// scoped returns the context result and the parsed scope query parameter
func (h *AnalysisHandler) scoped(w http.ResponseWriter, r *http.Request) (*services.Result, services.Scope, bool) {
	scope, err := services.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, "", false
	}
	return resultFrom(r.Context()), scope, true
}

func (h *AnalysisHandler) respond(w http.ResponseWriter, r *http.Request, result *services.Result, scope services.Scope, data interface{}, count *int) {
	period := result.Bundle(scope).Period
	render.JSON(w, r, QueryResponse{
		RunID:  result.Report.RunID,
		Scope:  scope,
		Period: &period,
		Count:  count,
		Data:   data,
	})
}

func counted(n int) *int {
	return &n
}
