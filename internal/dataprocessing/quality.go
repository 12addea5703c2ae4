package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"salespulse/pkg/contracts/domain"
)

// fieldColumns maps validated Record fields to their dataset column
var fieldColumns = map[string]domain.Column{
	"UnitsSold": domain.ColUnitsSold,
	"UnitPrice": domain.ColUnitPrice,
}

// QualityChecker measures missing values, duplicates, revenue consistency and
// value constraints. It never modifies the dataset.
type QualityChecker struct {
	logger   *slog.Logger
	validate *validator.Validate
}

// NewQualityChecker creates a checker; a nil logger uses slog.Default()
func NewQualityChecker(logger *slog.Logger) *QualityChecker {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(nullableValue, domain.NullInt{}, decimal.NullDecimal{})

	return &QualityChecker{
		logger:   logger,
		validate: v,
	}
}

// nullableValue exposes the wrapped value of a nullable field, or nil when absent
func nullableValue(field reflect.Value) interface{} {
	switch v := field.Interface().(type) {
	case domain.NullInt:
		if v.Valid {
			return v.Int64
		}
	case decimal.NullDecimal:
		if v.Valid {
			return v.Decimal.InexactFloat64()
		}
	}
	return nil
}

// Validate builds the quality report of ds
func (q *QualityChecker) Validate(ctx context.Context, ds *domain.Dataset) *domain.QualityReport {
	report := &domain.QualityReport{
		Rows:       ds.Len(),
		Missing:    MissingValues(ds),
		Duplicates: FindDuplicates(ds),
	}
	report.Mismatches, report.Uncomparable = RevenueMismatches(ds)
	report.Violations = q.constraintViolations(ds)

	q.logger.InfoContext(ctx, "Data quality checked",
		slog.Int("rows", report.Rows),
		slog.Int("missing_cells", report.MissingCells()),
		slog.Int("duplicate_rows", report.Duplicates.Rows),
		slog.Int("duplicate_order_ids", report.Duplicates.OrderIDs),
		slog.Int("revenue_mismatches", len(report.Mismatches)),
		slog.Int("uncomparable_rows", report.Uncomparable),
		slog.Int("constraint_violations", len(report.Violations)))

	if !report.Consistent() {
		q.logger.WarnContext(ctx, "Revenue does not match Units_Sold x Unit_Price",
			slog.Int("rows", len(report.Mismatches)))
	}
	return report
}

// MissingValues counts empty cells per column, in dataset column order.
// Columns without missing values are omitted. Percent is rounded to two decimals.
func MissingValues(ds *domain.Dataset) []domain.MissingValue {
	rows := ds.Len()
	if rows == 0 {
		return nil
	}

	var out []domain.MissingValue
	for _, name := range ds.Columns {
		count := len(ds.Records) - countPresent(columnValues(ds, name))
		if count == 0 {
			continue
		}
		out = append(out, domain.MissingValue{
			Column:  name,
			Count:   count,
			Percent: math.Round(float64(count)/float64(rows)*100*100) / 100,
		})
	}
	return out
}

// FindDuplicates counts full-row duplicates and repeated Order_IDs.
// Both count occurrences beyond the first; missing values compare equal.
func FindDuplicates(ds *domain.Dataset) domain.DuplicateSummary {
	extras := ds.ExtraColumns()
	rows := make(map[string]bool, ds.Len())
	ids := make(map[string]int, ds.Len())

	var summary domain.DuplicateSummary
	for i := range ds.Records {
		rec := &ds.Records[i]

		key := rec.Key(extras)
		if rows[key] {
			summary.Rows++
		}
		rows[key] = true

		ids[rec.OrderID]++
		switch ids[rec.OrderID] {
		case 1:
		case 2:
			summary.RepeatedIDs = append(summary.RepeatedIDs, rec.OrderID)
			summary.OrderIDs++
		default:
			summary.OrderIDs++
		}
	}
	return summary
}

// RevenueMismatches lists rows whose Revenue differs exactly from Units_Sold x Unit_Price.
// Rows missing any of the three values are counted as uncomparable instead.
func RevenueMismatches(ds *domain.Dataset) ([]domain.RevenueMismatch, int) {
	var mismatches []domain.RevenueMismatch
	uncomparable := 0
	for i := range ds.Records {
		rec := &ds.Records[i]
		computed, ok := rec.ComputedRevenue()
		if !ok || !rec.Revenue.Valid {
			uncomparable++
			continue
		}
		if rec.Revenue.Decimal.Equal(computed) {
			continue
		}
		mismatches = append(mismatches, domain.RevenueMismatch{
			Line:      rec.Line,
			OrderID:   rec.OrderID,
			UnitsSold: rec.UnitsSold.Int64,
			UnitPrice: rec.UnitPrice.Decimal,
			Stored:    rec.Revenue.Decimal,
			Computed:  computed,
		})
	}
	return mismatches, uncomparable
}

// constraintViolations runs struct validation on every record
func (q *QualityChecker) constraintViolations(ds *domain.Dataset) []domain.ConstraintViolation {
	var out []domain.ConstraintViolation
	for i := range ds.Records {
		rec := &ds.Records[i]
		err := q.validate.Struct(rec)
		if err == nil {
			continue
		}
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			q.logger.Warn("Record validation failed", slog.Int("line", rec.Line), slog.String("error", err.Error()))
			continue
		}
		for _, fe := range fieldErrs {
			col, ok := fieldColumns[fe.StructField()]
			if !ok {
				col = domain.Column(fe.StructField())
			}
			out = append(out, domain.ConstraintViolation{
				Line:    rec.Line,
				OrderID: rec.OrderID,
				Field:   string(col),
				Rule:    ruleText(fe),
				Value:   fmt.Sprint(fe.Value()),
			})
		}
	}
	return out
}

func ruleText(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
}
