package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include query variables; development only
	SlowQueryThresh time.Duration // default 200ms
}

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin on db plus callbacks that
// mark slow and failed queries on their span.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}

	opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { annotateSpan(tx, cfg.SlowQueryThresh) }

	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("sibar:before_create", before); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("sibar:after_create", after); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("sibar:before_query", before); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("sibar:after_query", after); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("sibar:before_update", before); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("sibar:after_update", after); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("sibar:before_delete", before); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("sibar:after_delete", after); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("sibar:before_row", before); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("sibar:after_row", after); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("sibar:before_raw", before); err != nil {
		return err
	}
	if err := cb.Raw().After("gorm:raw").Register("sibar:after_raw", after); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func annotateSpan(tx *gorm.DB, slow time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, tx.Error.Error())
		span.RecordError(tx.Error)
	}
	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > slow {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
