package shared

import (
	"context"

	"github.com/sibarkumen/backend/internal/domain/inventory"
)

// Metrics records business counters. telemetry.BusinessMetrics implements it.
type Metrics interface {
	DocumentIssued(ctx context.Context, documentType string)
	NumberConflict(ctx context.Context, documentType string)
	StockMutations(ctx context.Context, mutationType string, n int)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) DocumentIssued(context.Context, string)      {}
func (NopMetrics) NumberConflict(context.Context, string)      {}
func (NopMetrics) StockMutations(context.Context, string, int) {}

// RecordMutations counts mutations per type.
func RecordMutations(ctx context.Context, m Metrics, mutations []*inventory.Mutation) {
	if m == nil || len(mutations) == 0 {
		return
	}
	counts := make(map[inventory.MutationType]int, 3)
	for _, mu := range mutations {
		counts[mu.Type]++
	}
	for t, n := range counts {
		m.StockMutations(ctx, string(t), n)
	}
}
