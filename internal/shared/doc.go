// Package shared holds helpers used by more than one package.
//
// The testutil subpackage captures slog output so tests can assert on the
// records a component logs:
//
//	logger, logs := testutil.NewTestLogger()
//	cleaner := dataprocessing.NewCleaner(logger, opts)
//	...
//	testutil.RequireLog(t, logs, slog.LevelInfo, "Dataset cleaned")
package shared
