// Package shared groups helpers used across packages that belong to no
// single layer.
//
// The testutil subpackage captures slog output so tests can assert on log
// messages and attributes:
//
//	logger, logs := testutil.NewTestLogger(t)
//	svc := services.NewAnalysisService(cfg, dir, nil, logger)
//	...
//	assert.True(t, logs.ContainsMessage("analysis completed"))
package shared
