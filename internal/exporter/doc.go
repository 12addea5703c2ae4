// Package exporter writes KPI results to the output directory.
//
// CSVWriter is the core CSV writing functionality, with support for headers,
// append mode and a UTF-8 BOM for Excel compatibility. Exporter drives it to
// produce the three KPI tables:
//
//	kpi_summary.csv        KPI,Value
//	revenue_by_region.csv  Region,Revenue
//	units_by_product.csv   Product,Units_Sold
//
// and, when the xlsx or pdf formats are enabled, kpi_report.xlsx and kpi_report.pdf.
//
// Example usage:
//
//	exp := exporter.NewExporter(paths, exporter.Options{Formats: []string{"csv", "xlsx"}, Currency: "R"}, logger)
//	result := exp.Export(ctx, kpis)
//	if err := result.Err(); err != nil {
//	    // result.Written still lists the files that made it to disk
//	}
package exporter
