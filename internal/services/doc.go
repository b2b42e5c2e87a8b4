// Package services implements the business logic layer of the analyzer.
// It sits between the HTTP handlers or the CLI and the pipeline packages,
// so that a run is orchestrated the same way regardless of the caller.
//
// # Analysis runs
//
// AnalysisService drives one run end to end:
//
//	1. Resolve the request against the configured periods and status filter
//	2. Load and normalize the dataset (dataprocessing.Loader)
//	3. Build the sales fact table (dataprocessing.FactBuilder)
//	4. Filter the facts to both periods and compute their metrics concurrently
//	5. Compare the periods and store the report for later queries
//
// Every stage runs inside an OpenTelemetry span and records its duration
// through AnalysisTracer. Each run is identified by a ULID, which sorts by
// start time.
//
// # Example
//
//	svc := services.NewAnalysisService(cfg.Analysis, paths.DataDir, tracer, logger)
//	result, err := svc.Run(ctx, services.RunRequest{})
//	if err != nil {
//	    return fmt.Errorf("analysis failed: %w", err)
//	}
//	fmt.Println(result.Report.Comparison.RevenueGrowthRate)
//
// # Health
//
// HealthService answers liveness and readiness probes; readiness depends
// only on the data directory being accessible.
package services
