// Package dataprocessing turns a sales export into KPIs. It covers the whole
// data lifecycle from file ingestion to aggregated results.
//
// # Architecture
//
// The package is organized into five components, one per pipeline stage:
//
// 1. Parser: reads a CSV or Excel file into a domain.Dataset
// 2. Profile: shape, preview, inferred column types and descriptive statistics
// 3. QualityChecker: missing values, duplicates and revenue consistency, read only
// 4. Cleaner: drops scratch columns, applies policies and removes duplicate rows
// 5. Analyzer: revenue and unit rankings, averages and monthly revenue
//
// # Usage
//
//	ds, err := dataprocessing.NewParser(logger).Ingest(ctx, "sales_data.csv")
//	if err != nil {
//	    return err
//	}
//	report := dataprocessing.NewQualityChecker(logger).Validate(ctx, ds)
//	cleaned, summary, err := dataprocessing.NewCleaner(logger, dataprocessing.DefaultCleanOptions()).Clean(ctx, ds)
//	kpis := dataprocessing.NewAnalyzer(logger, dataprocessing.AnalyzerOptions{}).Aggregate(ctx, cleaned)
//
// Money is carried as decimal.Decimal throughout, so regional revenue always
// sums exactly to the total.
package dataprocessing
