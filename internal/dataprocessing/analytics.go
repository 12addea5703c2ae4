package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"salespulse/internal/config"
	"salespulse/pkg/contracts/domain"
)

// AnalyzerOptions bounds the length of the ranked leaderboards
type AnalyzerOptions struct {
	TopReps     int
	TopProducts int
}

// Analyzer computes KPIs from a cleaned dataset
type Analyzer struct {
	logger *slog.Logger
	opts   AnalyzerOptions
}

// NewAnalyzer creates an analyzer; zero options fall back to the default leaderboard sizes
func NewAnalyzer(logger *slog.Logger, opts AnalyzerOptions) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TopReps <= 0 {
		opts.TopReps = config.DefaultTopReps
	}
	if opts.TopProducts <= 0 {
		opts.TopProducts = config.DefaultTopProducts
	}
	return &Analyzer{logger: logger, opts: opts}
}

// Aggregate computes total revenue, average units, revenue by region and
// sales rep, units by product and revenue by month. Rankings are sorted by
// value descending; ties keep the order in which their keys first appear.
func (a *Analyzer) Aggregate(ctx context.Context, ds *domain.Dataset) *domain.KPIResults {
	kpis := &domain.KPIResults{
		Orders:       ds.Len(),
		TotalRevenue: decimal.Zero,
	}

	var unitsTotal int64
	var unitsCount int
	for i := range ds.Records {
		rec := &ds.Records[i]
		if rec.Revenue.Valid {
			kpis.TotalRevenue = kpis.TotalRevenue.Add(rec.Revenue.Decimal)
		}
		if rec.UnitsSold.Valid {
			unitsTotal += rec.UnitsSold.Int64
			unitsCount++
		}
	}
	if unitsCount == 0 {
		kpis.AverageUnits = math.NaN()
	} else {
		kpis.AverageUnits = float64(unitsTotal) / float64(unitsCount)
	}

	kpis.RevenueByRegion = revenueBy(ds, func(r *domain.Record) string { return r.Region })
	kpis.RevenueByRep = revenueBy(ds, func(r *domain.Record) string { return r.SalesRep })
	kpis.TopReps = headRevenue(kpis.RevenueByRep, a.opts.TopReps)
	kpis.UnitsByProduct = unitsBy(ds, func(r *domain.Record) string { return r.Product })
	kpis.TopProducts = headUnits(kpis.UnitsByProduct, a.opts.TopProducts)
	kpis.RevenueByMonth = revenueByMonth(ds)

	attrs := []any{
		slog.Int("orders", kpis.Orders),
		slog.String("total_revenue", kpis.TotalRevenue.StringFixed(2)),
		slog.Float64("average_units", kpis.AverageUnits),
		slog.Int("regions", len(kpis.RevenueByRegion)),
		slog.Int("sales_reps", len(kpis.RevenueByRep)),
		slog.Int("products", len(kpis.UnitsByProduct)),
	}
	if best, ok := kpis.BestPerformer(); ok {
		attrs = append(attrs, slog.String("best_performer", best.Key))
	}
	a.logger.InfoContext(ctx, "KPIs aggregated", attrs...)

	return kpis
}

// groupSums sums value per key, remembering the first-seen order of keys
func groupSums[V any](ds *domain.Dataset, key func(*domain.Record) string, value func(*domain.Record) (V, bool), add func(V, V) V) ([]string, map[string]V) {
	var order []string
	sums := make(map[string]V)
	for i := range ds.Records {
		rec := &ds.Records[i]
		k := key(rec)
		cur, seen := sums[k]
		if !seen {
			order = append(order, k)
		}
		if v, ok := value(rec); ok {
			cur = add(cur, v)
		}
		sums[k] = cur
	}
	return order, sums
}

func revenueBy(ds *domain.Dataset, key func(*domain.Record) string) []domain.RankedRevenue {
	order, sums := groupSums(ds, key,
		func(r *domain.Record) (decimal.Decimal, bool) { return r.Revenue.Decimal, r.Revenue.Valid },
		func(a, b decimal.Decimal) decimal.Decimal { return a.Add(b) })

	out := make([]domain.RankedRevenue, len(order))
	for i, k := range order {
		out[i] = domain.RankedRevenue{Key: k, Revenue: sums[k]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Revenue.GreaterThan(out[j].Revenue)
	})
	return out
}

func unitsBy(ds *domain.Dataset, key func(*domain.Record) string) []domain.RankedUnits {
	order, sums := groupSums(ds, key,
		func(r *domain.Record) (int64, bool) { return r.UnitsSold.Int64, r.UnitsSold.Valid },
		func(a, b int64) int64 { return a + b })

	out := make([]domain.RankedUnits, len(order))
	for i, k := range order {
		out[i] = domain.RankedUnits{Key: k, Units: sums[k]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Units > out[j].Units
	})
	return out
}

// revenueByMonth sums revenue per calendar month of Order_Date, chronologically.
// Records without a parsed date are left out.
func revenueByMonth(ds *domain.Dataset) []domain.MonthlyRevenue {
	type period struct {
		year  int
		month time.Month
	}

	sums := make(map[period]decimal.Decimal)
	for i := range ds.Records {
		rec := &ds.Records[i]
		if rec.OrderDate.IsZero() {
			continue
		}
		p := period{rec.OrderDate.Year(), rec.OrderDate.Month()}
		cur, ok := sums[p]
		if !ok {
			cur = decimal.Zero
		}
		if rec.Revenue.Valid {
			cur = cur.Add(rec.Revenue.Decimal)
		}
		sums[p] = cur
	}

	out := make([]domain.MonthlyRevenue, 0, len(sums))
	for p, rev := range sums {
		out = append(out, domain.MonthlyRevenue{
			Year:      p.year,
			Month:     p.month,
			MonthName: p.month.String(),
			Revenue:   rev,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

func headRevenue(ranked []domain.RankedRevenue, n int) []domain.RankedRevenue {
	if len(ranked) < n {
		n = len(ranked)
	}
	return append([]domain.RankedRevenue(nil), ranked[:n]...)
}

func headUnits(ranked []domain.RankedUnits, n int) []domain.RankedUnits {
	if len(ranked) < n {
		n = len(ranked)
	}
	return append([]domain.RankedUnits(nil), ranked[:n]...)
}
