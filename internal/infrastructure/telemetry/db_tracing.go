package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mailriver/backend/internal/infrastructure/config"
)

type startTimeKey struct{}

// DBTracing attaches otelgorm query spans to a Gorm instance along with
// a slow-query marker. Query variables are never recorded; mail items
// and delivery addresses carry customer PII.
type DBTracing struct {
	slowThresh time.Duration
	logger     *zap.Logger
}

// NewDBTracing creates the database tracing hook from config.
func NewDBTracing(cfg config.TelemetryConfig, logger *zap.Logger) *DBTracing {
	return &DBTracing{
		slowThresh: cfg.DBSlowQueryThresh,
		logger:     logger,
	}
}

// Register installs the otelgorm plugin plus the timing callbacks.
func (t *DBTracing) Register(db *gorm.DB) error {
	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName("postgresql"),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return err
	}
	if err := t.registerTimingCallbacks(db); err != nil {
		return err
	}
	t.logger.Info("Database tracing enabled",
		zap.Duration("slow_query_threshold", t.slowThresh))
	return nil
}

// registerTimingCallbacks brackets each Gorm operation so the after hook
// can compute elapsed time inside the otelgorm span.
func (t *DBTracing) registerTimingCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	register := func(op string, before, after interface {
		Register(string, func(*gorm.DB)) error
	}) error {
		if err := before.Register("query_timing:before_"+op, t.markStart); err != nil {
			return err
		}
		return after.Register("query_timing:after_"+op, t.annotateSpan)
	}

	if err := register("create", cb.Create().Before("gorm:create"), cb.Create().After("gorm:create")); err != nil {
		return err
	}
	if err := register("query", cb.Query().Before("gorm:query"), cb.Query().After("gorm:query")); err != nil {
		return err
	}
	if err := register("update", cb.Update().Before("gorm:update"), cb.Update().After("gorm:update")); err != nil {
		return err
	}
	if err := register("delete", cb.Delete().Before("gorm:delete"), cb.Delete().After("gorm:delete")); err != nil {
		return err
	}
	if err := register("row", cb.Row().Before("gorm:row"), cb.Row().After("gorm:row")); err != nil {
		return err
	}
	return register("raw", cb.Raw().Before("gorm:raw"), cb.Raw().After("gorm:raw"))
}

func (t *DBTracing) markStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = contextWithStart(db.Statement.Context, time.Now())
	}
}

// annotateSpan stamps the otelgorm span with row counts, errors, and a
// slow-query event.
func (t *DBTracing) annotateSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if start, ok := startFromContext(ctx); ok {
		if elapsed := time.Since(start); elapsed > t.slowThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()))
			span.AddEvent("slow_query", trace.WithAttributes(
				attribute.Int64("threshold_ms", t.slowThresh.Milliseconds())))
		}
	}
}

func contextWithStart(ctx context.Context, start time.Time) context.Context {
	return context.WithValue(ctx, startTimeKey{}, start)
}

func startFromContext(ctx context.Context) (time.Time, bool) {
	start, ok := ctx.Value(startTimeKey{}).(time.Time)
	return start, ok
}
