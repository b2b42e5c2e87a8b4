package http

import (
	"context"

	"ecomcli/internal/exporter"
	"ecomcli/internal/services"
	"ecomcli/pkg/contracts/domain"
)

// AnalysisServiceInterface is what the analysis handler needs from the service layer
type AnalysisServiceInterface interface {
	Run(ctx context.Context, req services.RunRequest) (*services.Result, error)
	LastResult() (*services.Result, error)
}

// ReportExporter writes a finished report to files and returns their paths
type ReportExporter interface {
	Export(ctx context.Context, report *domain.AnalysisReport, facts domain.FactTable, formats []exporter.Format) ([]string, error)
}
