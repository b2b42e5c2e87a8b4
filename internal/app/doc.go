// Package app wires the HTTP application: configuration, logging,
// OpenTelemetry, the analysis and health services, the router and the
// server lifecycle.
//
// Typical use from a main package:
//
//	cfg, _ := config.Load("")
//	logger, _ := infrastructure.InitializeLogger(cfg.Logging)
//	application, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return application.Run(context.Background())
//
// Run blocks until SIGINT or SIGTERM and then drains in-flight requests for
// at most Server.ShutdownTimeout.
package app
