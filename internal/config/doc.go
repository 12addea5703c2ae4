// Package config provides centralized configuration management for a sales report run.
// It handles loading configuration from multiple sources, validation, and path resolution.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Command-line flags (highest priority, applied by cmd/salesreport)
//	2. Environment variables
//	3. YAML configuration file (--config)
//	4. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SALES_* for namespacing:
//
//	SALES_INPUT_PATH=data/sales.csv
//	SALES_OUTPUT_DIR=results
//	SALES_QUALITY_MISSING_POLICY=drop
//	SALES_QUALITY_MISMATCH_POLICY=annotate
//	SALES_REPORT_FORMATS=csv,xlsx
//	SALES_LOGGING_LEVEL=debug
//	SALES_TELEMETRY_METRICS_FILE=results/pipeline.prom
//
// # Policies
//
// The quality section makes two cleaning decisions explicit:
//
//	missing_policy:  drop | keep | fail
//	mismatch_policy: annotate | exclude | correct
//
// Validate enforces these enumerations with go-playground/validator tags.
package config
