package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"diet-planner/internal/cache"
	"diet-planner/internal/catalog"
	"diet-planner/internal/config"
	"diet-planner/internal/logger"
	"diet-planner/internal/metrics"
	"diet-planner/internal/planner"
)

// MetricsRecorder persists one record per planning request.
type MetricsRecorder interface {
	Record(ctx context.Context, m metrics.SolveMetric) error
}

// App holds the application's dependencies.
type App struct {
	mealPlanner  *planner.Planner
	cache        cache.Cache
	metricsStore MetricsRecorder
	tables       config.Tables
	solveTimeout time.Duration
	// scopeHash covers everything besides the request that shapes a report.
	scopeHash    string
}

// NewApp creates and initializes a new App instance. cache and metricsStore
// may be nil.
func NewApp(
	mealPlanner *planner.Planner,
	c cache.Cache,
	metricsStore MetricsRecorder,
	tables config.Tables,
	solveTimeout time.Duration,
) *App {
	scope := hashJSON(struct {
		Foods  []catalog.FoodItem
		Tables config.Tables
	}{mealPlanner.Catalog().Items(), tables})

	return &App{
		mealPlanner:  mealPlanner,
		cache:        c,
		metricsStore: metricsStore,
		tables:       tables,
		solveTimeout: solveTimeout,
		scopeHash:    scope,
	}
}

// Planner returns the underlying meal planner.
func (a *App) Planner() *planner.Planner {
	return a.mealPlanner
}

// GeneratePlan validates req and produces a report. The error is non-nil only
// for invalid input; planning failures come back as a report with StatusError.
func (a *App) GeneratePlan(ctx context.Context, req PlanRequest) (planner.Report, error) {
	preq, err := req.Derive(a.tables)
	if err != nil {
		return planner.Report{}, err
	}
	return a.Plan(ctx, preq), nil
}

// Plan runs the planner on an already derived request, serving identical
// requests from the cache when one is configured.
func (a *App) Plan(ctx context.Context, preq planner.Request) planner.Report {
	start := time.Now()
	id := uuid.NewString()
	key := "plan:" + a.scopeHash[:16] + ":" + hashJSON(preq)

	if report, ok := a.cached(ctx, key); ok {
		report.ID = id
		logger.Debug("Serving meal plan from cache", zap.String("request_id", id))
		a.record(ctx, id, report, time.Since(start))
		return report
	}

	solveCtx := ctx
	if a.solveTimeout > 0 {
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(ctx, a.solveTimeout)
		defer cancel()
	}

	report := a.mealPlanner.Plan(solveCtx, preq)
	report.ID = id

	if report.Status == planner.StatusSuccess {
		a.store(ctx, key, report)
	}
	a.record(ctx, id, report, time.Since(start))

	logger.Info("Meal plan request finished",
		zap.String("request_id", id),
		zap.String("status", string(report.Status)),
		zap.String("error_kind", report.ErrorKind),
		zap.Duration("latency", time.Since(start)),
	)
	return report
}

func (a *App) cached(ctx context.Context, key string) (planner.Report, bool) {
	if a.cache == nil {
		return planner.Report{}, false
	}
	raw, ok := a.cache.Get(ctx, key)
	if !ok {
		return planner.Report{}, false
	}
	var report planner.Report
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		logger.Warn("Discarding unreadable cache entry", zap.String("key", key), zap.Error(err))
		return planner.Report{}, false
	}
	return report, true
}

func (a *App) store(ctx context.Context, key string, report planner.Report) {
	if a.cache == nil {
		return
	}
	report.ID = ""
	raw, err := json.Marshal(report)
	if err != nil {
		logger.Warn("Failed to encode report for cache", zap.Error(err))
		return
	}
	if err := a.cache.Set(ctx, key, string(raw)); err != nil {
		logger.Warn("Failed to cache report", zap.Error(err))
	}
}

func (a *App) record(ctx context.Context, id string, report planner.Report, latency time.Duration) {
	if a.metricsStore == nil {
		return
	}
	err := a.metricsStore.Record(ctx, metrics.SolveMetric{
		RequestID:       id,
		Status:          string(report.Status),
		ErrorKind:       report.ErrorKind,
		FoodsConsidered: report.FoodsConsidered,
		FoodsSelected:   len(report.Selected),
		TotalCost:       report.TotalCost,
		LatencyMS:       latency.Milliseconds(),
	})
	if err != nil {
		logger.Warn("Failed to record metrics", zap.String("request_id", id), zap.Error(err))
	}
}

func hashJSON(v any) string {
	raw, _ := json.Marshal(v)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
