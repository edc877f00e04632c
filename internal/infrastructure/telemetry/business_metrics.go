package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when no meter is given.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Attribute keys on business metrics.
var (
	AttrDocumentType = attribute.Key("document_type")
	AttrMutationType = attribute.Key("mutation_type")
)

// LowStockCounter reports how many active items are at or below minimum stock.
type LowStockCounter interface {
	CountLowStock(ctx context.Context) (int64, error)
}

// BusinessMetrics records inventory activity.
type BusinessMetrics struct {
	logger *zap.Logger

	documentsIssued metric.Int64Counter
	numberConflicts metric.Int64Counter
	stockMutations  metric.Int64Counter
	lowStockItems   metric.Int64Gauge

	stop     chan struct{}
	stopOnce sync.Once
	runOnce  sync.Once
}

// NewBusinessMetrics registers the business instruments on meter.
func NewBusinessMetrics(meter metric.Meter, logger *zap.Logger) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	bm := &BusinessMetrics{logger: logger, stop: make(chan struct{})}

	var err error
	if bm.documentsIssued, err = meter.Int64Counter("documents_issued_total",
		metric.WithDescription("Documents created with a number"),
		metric.WithUnit("{documents}")); err != nil {
		return nil, err
	}
	if bm.numberConflicts, err = meter.Int64Counter("document_number_conflicts_total",
		metric.WithDescription("Document numbers regenerated after a duplicate"),
		metric.WithUnit("{conflicts}")); err != nil {
		return nil, err
	}
	if bm.stockMutations, err = meter.Int64Counter("stock_mutations_total",
		metric.WithDescription("Stock mutations recorded"),
		metric.WithUnit("{mutations}")); err != nil {
		return nil, err
	}
	if bm.lowStockItems, err = meter.Int64Gauge("inventory_low_stock_items",
		metric.WithDescription("Active items at or below minimum stock"),
		metric.WithUnit("{items}")); err != nil {
		return nil, err
	}
	return bm, nil
}

// DocumentIssued counts one numbered document of documentType.
func (bm *BusinessMetrics) DocumentIssued(ctx context.Context, documentType string) {
	if bm == nil {
		return
	}
	bm.documentsIssued.Add(ctx, 1, metric.WithAttributes(AttrDocumentType.String(documentType)))
}

// NumberConflict counts a number that collided and was regenerated.
func (bm *BusinessMetrics) NumberConflict(ctx context.Context, documentType string) {
	if bm == nil {
		return
	}
	bm.numberConflicts.Add(ctx, 1, metric.WithAttributes(AttrDocumentType.String(documentType)))
}

// StockMutations counts n mutations of mutationType.
func (bm *BusinessMetrics) StockMutations(ctx context.Context, mutationType string, n int) {
	if bm == nil || n <= 0 {
		return
	}
	bm.stockMutations.Add(ctx, int64(n), metric.WithAttributes(AttrMutationType.String(mutationType)))
}

// StartLowStockCollection samples the low stock gauge every interval until
// ctx ends or Stop is called. Only the first call starts a collector.
func (bm *BusinessMetrics) StartLowStockCollection(ctx context.Context, counter LowStockCounter, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	bm.runOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				bm.collectLowStock(ctx, counter)
				select {
				case <-bm.stop:
					return
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
			}
		}()
	})
}

func (bm *BusinessMetrics) collectLowStock(ctx context.Context, counter LowStockCounter) {
	n, err := counter.CountLowStock(ctx)
	if err != nil {
		bm.logger.Warn("Failed to count low stock items", zap.Error(err))
		return
	}
	bm.lowStockItems.Record(ctx, n)
}

// Stop ends periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() { close(bm.stop) })
}
