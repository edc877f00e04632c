// Package report assembles the dashboard statistics.
package report

import (
	"context"
	"time"

	appinventory "github.com/sibarkumen/backend/internal/application/inventory"
	"github.com/sibarkumen/backend/internal/domain/document"
	"github.com/sibarkumen/backend/internal/domain/inventory"
	"github.com/sibarkumen/backend/internal/domain/masterdata"
	"golang.org/x/sync/errgroup"
)

// LatestMutations is how many history lines the dashboard shows.
const LatestMutations = 10

// Stats is the dashboard summary
type Stats struct {
	Items           int64                           `json:"items"`
	LowStockItems   int64                           `json:"low_stock_items"`
	Suppliers       int64                           `json:"suppliers"`
	Employees       int64                           `json:"employees"`
	Year            int                             `json:"year"`
	DocumentsIssued map[string]int64                `json:"documents_issued"`
	LatestMutations []appinventory.MutationResponse `json:"latest_mutations"`
}

// StatsService computes dashboard statistics
type StatsService struct {
	items     inventory.ItemRepository
	mutations inventory.MutationRepository
	suppliers masterdata.SupplierRepository
	employees masterdata.EmployeeRepository
	counter   document.Counter
	now       func() time.Time
}

// NewStatsService creates a new StatsService
func NewStatsService(
	items inventory.ItemRepository,
	mutations inventory.MutationRepository,
	suppliers masterdata.SupplierRepository,
	employees masterdata.EmployeeRepository,
	counter document.Counter,
) *StatsService {
	return &StatsService{
		items:     items,
		mutations: mutations,
		suppliers: suppliers,
		employees: employees,
		counter:   counter,
		now:       time.Now,
	}
}

// Get runs every count concurrently; the first failure cancels the rest.
func (s *StatsService) Get(ctx context.Context) (*Stats, error) {
	now := s.now()
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	types := document.AllTypes()

	stats := &Stats{Year: now.Year(), DocumentsIssued: make(map[string]int64, len(types))}
	perType := make([]int64, len(types))
	var latest []inventory.Mutation

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Items, err = s.items.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.LowStockItems, err = s.items.CountLowStock(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Suppliers, err = s.suppliers.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Employees, err = s.employees.Count(gctx)
		return err
	})
	for i, t := range types {
		g.Go(func() (err error) {
			perType[i], err = s.counter.CountDocumentsSince(gctx, t, yearStart)
			return err
		})
	}
	g.Go(func() (err error) {
		latest, err = s.mutations.Latest(gctx, LatestMutations)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, t := range types {
		stats.DocumentsIssued[string(t)] = perType[i]
	}
	stats.LatestMutations = make([]appinventory.MutationResponse, len(latest))
	for i := range latest {
		stats.LatestMutations[i] = appinventory.ToMutationResponse(&latest[i])
	}
	return stats, nil
}
