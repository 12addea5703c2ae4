package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"

	"salespulse/internal/config"
	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// CleanOptions selects how cleaning treats scratch columns, missing values and revenue mismatches
type CleanOptions struct {
	ScratchColumns []string
	MissingPolicy  string
	MismatchPolicy string
}

// DefaultCleanOptions returns the options used when nothing is configured
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{
		ScratchColumns: []string{config.ScratchRevenueColumn},
		MissingPolicy:  config.MissingPolicyDrop,
		MismatchPolicy: config.MismatchPolicyAnnotate,
	}
}

// CleanOptionsFromConfig builds clean options from the quality configuration
func CleanOptionsFromConfig(cfg config.QualityConfig) CleanOptions {
	return CleanOptions{
		ScratchColumns: cfg.ScratchColumns,
		MissingPolicy:  cfg.MissingPolicy,
		MismatchPolicy: cfg.MismatchPolicy,
	}
}

// CleanSummary describes what cleaning changed
type CleanSummary struct {
	InputRows          int       `json:"input_rows"`
	Rows               int       `json:"rows"`
	Columns            int       `json:"columns"`
	DroppedColumns     []string  `json:"dropped_columns,omitempty"`
	DatesParsed        int       `json:"dates_parsed"`
	DateMin            time.Time `json:"date_min"`
	DateMax            time.Time `json:"date_max"`
	RowsWithMissing    int       `json:"rows_with_missing"`
	MissingRemoved     int       `json:"missing_removed"`
	DuplicatesRemoved  int       `json:"duplicates_removed"`
	MismatchesFound    int       `json:"mismatches_found"`
	MismatchesExcluded int       `json:"mismatches_excluded"`
	RevenueCorrected   int       `json:"revenue_corrected"`
}

// HasDateRange reports whether any order date was parsed
func (s CleanSummary) HasDateRange() bool {
	return !s.DateMin.IsZero()
}

// Cleaner produces the cleaned dataset. It never mutates its input.
type Cleaner struct {
	logger *slog.Logger
	opts   CleanOptions
}

// NewCleaner creates a cleaner; a nil logger uses slog.Default()
func NewCleaner(logger *slog.Logger, opts CleanOptions) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MissingPolicy == "" {
		opts.MissingPolicy = config.MissingPolicyDrop
	}
	if opts.MismatchPolicy == "" {
		opts.MismatchPolicy = config.MismatchPolicyAnnotate
	}
	return &Cleaner{logger: logger, opts: opts}
}

// Clean drops scratch columns, applies the missing-value policy, parses order
// dates, applies the revenue-mismatch policy and removes exact duplicate rows.
// Running it on its own output changes nothing.
func (c *Cleaner) Clean(ctx context.Context, ds *domain.Dataset) (*domain.Dataset, CleanSummary, error) {
	out := ds.Clone()
	summary := CleanSummary{InputRows: ds.Len()}

	summary.DroppedColumns = dropColumns(out, c.opts.ScratchColumns)

	if err := c.applyMissingPolicy(out, &summary); err != nil {
		return nil, summary, err
	}

	if err := parseOrderDates(out, &summary); err != nil {
		return nil, summary, err
	}

	c.applyMismatchPolicy(out, &summary)

	summary.DuplicatesRemoved = dropDuplicates(out)

	summary.Rows, summary.Columns = out.Shape()

	c.logger.InfoContext(ctx, "Dataset cleaned",
		slog.Int("input_rows", summary.InputRows),
		slog.Int("rows", summary.Rows),
		slog.Int("columns", summary.Columns),
		slog.Any("dropped_columns", summary.DroppedColumns),
		slog.String("missing_policy", c.opts.MissingPolicy),
		slog.Int("missing_removed", summary.MissingRemoved),
		slog.Int("duplicates_removed", summary.DuplicatesRemoved),
		slog.String("mismatch_policy", c.opts.MismatchPolicy),
		slog.Int("mismatches_found", summary.MismatchesFound))

	return out, summary, nil
}

// dropColumns removes the named non-schema columns that are present; absent names are ignored
func dropColumns(ds *domain.Dataset, names []string) []string {
	if len(names) == 0 {
		return nil
	}

	drop := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		protected := false
		for _, col := range domain.Schema {
			if string(col) == n {
				protected = true
				break
			}
		}
		if !protected {
			drop[n] = true
		}
	}

	var dropped []string
	kept := ds.Columns[:0:0]
	for _, col := range ds.Columns {
		if drop[col] {
			dropped = append(dropped, col)
			continue
		}
		kept = append(kept, col)
	}
	if len(dropped) == 0 {
		return nil
	}

	ds.Columns = kept
	for i := range ds.Records {
		for _, col := range dropped {
			delete(ds.Records[i].Extra, col)
		}
	}
	return dropped
}

func (c *Cleaner) applyMissingPolicy(ds *domain.Dataset, summary *CleanSummary) error {
	extras := ds.ExtraColumns()
	hasMissing := func(rec *domain.Record) bool {
		if rec.HasMissing() {
			return true
		}
		for _, name := range extras {
			if rec.Extra[name] == "" {
				return true
			}
		}
		return false
	}

	kept := ds.Records[:0]
	for i := range ds.Records {
		rec := ds.Records[i]
		if !hasMissing(&rec) {
			kept = append(kept, rec)
			continue
		}
		summary.RowsWithMissing++
		switch c.opts.MissingPolicy {
		case config.MissingPolicyFail:
			return apperrors.NewValidationError(
				fmt.Sprintf("row on line %d has missing values and the missing-value policy is %q", rec.Line, config.MissingPolicyFail)).
				WithContext("line", rec.Line)
		case config.MissingPolicyKeep:
			kept = append(kept, rec)
		default:
			summary.MissingRemoved++
		}
	}
	ds.Records = kept
	return nil
}

// parseOrderDates converts Order_Date strings to dates. Empty values are left unset.
func parseOrderDates(ds *domain.Dataset, summary *CleanSummary) error {
	for i := range ds.Records {
		rec := &ds.Records[i]
		if rec.OrderDateRaw == "" {
			continue
		}
		t, err := dateparse.ParseIn(rec.OrderDateRaw, time.UTC)
		if err != nil {
			return apperrors.NewParseError(
				fmt.Sprintf("unparseable Order_Date %q on line %d", rec.OrderDateRaw, rec.Line), err).
				WithContext("line", rec.Line).
				WithContext("value", rec.OrderDateRaw)
		}
		rec.OrderDate = t
		summary.DatesParsed++
		if summary.DateMin.IsZero() || t.Before(summary.DateMin) {
			summary.DateMin = t
		}
		if summary.DateMax.IsZero() || t.After(summary.DateMax) {
			summary.DateMax = t
		}
	}
	return nil
}

func (c *Cleaner) applyMismatchPolicy(ds *domain.Dataset, summary *CleanSummary) {
	kept := ds.Records[:0]
	for i := range ds.Records {
		rec := ds.Records[i]
		rec.RevenueMismatch = false

		computed, ok := rec.ComputedRevenue()
		if !ok || !rec.Revenue.Valid || rec.Revenue.Decimal.Equal(computed) {
			kept = append(kept, rec)
			continue
		}

		summary.MismatchesFound++
		switch c.opts.MismatchPolicy {
		case config.MismatchPolicyExclude:
			summary.MismatchesExcluded++
			continue
		case config.MismatchPolicyCorrect:
			rec.Revenue = decimal.NewNullDecimal(computed)
			summary.RevenueCorrected++
		default:
			rec.RevenueMismatch = true
		}
		kept = append(kept, rec)
	}
	ds.Records = kept
}

// dropDuplicates removes full-row duplicates, keeping the first occurrence
func dropDuplicates(ds *domain.Dataset) int {
	extras := ds.ExtraColumns()
	seen := make(map[string]bool, ds.Len())
	removed := 0

	kept := ds.Records[:0]
	for _, rec := range ds.Records {
		key := rec.Key(extras)
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		kept = append(kept, rec)
	}
	ds.Records = kept
	return removed
}
