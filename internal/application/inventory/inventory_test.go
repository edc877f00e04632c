package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sibarkumen/backend/internal/domain/inventory"
	"github.com/sibarkumen/backend/internal/domain/masterdata"
	"github.com/sibarkumen/backend/internal/domain/shared"
	"github.com/sibarkumen/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fixture struct {
	db       *gorm.DB
	items    *ItemService
	opnames  *OpnameService
	category uuid.UUID
	unit     uuid.UUID
	metrics  *countingMetrics
}

type countingMetrics struct {
	mutations map[string]int
}

func (m *countingMetrics) DocumentIssued(context.Context, string) {}
func (m *countingMetrics) NumberConflict(context.Context, string) {}
func (m *countingMetrics) StockMutations(_ context.Context, t string, n int) {
	m.mutations[t] += n
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(persistence.Models()...))

	cat, err := masterdata.NewCategory("ATK", "Alat Tulis Kantor", "")
	require.NoError(t, err)
	require.NoError(t, db.Create(cat).Error)
	unit, err := masterdata.NewUnit("Rim", "")
	require.NoError(t, err)
	require.NoError(t, db.Create(unit).Error)

	itemRepo := persistence.NewGormItemRepository(db)
	metrics := &countingMetrics{mutations: map[string]int{}}
	return &fixture{
		db: db,
		items: NewItemService(itemRepo, persistence.NewGormMutationRepository(db),
			persistence.NewGormCategoryRepository(db), persistence.NewGormUnitRepository(db)),
		opnames: NewOpnameService(persistence.NewGormOpnameRepository(db), itemRepo,
			persistence.NewGormTransactionScope(db), metrics, zap.NewNop()),
		category: cat.ID,
		unit:     unit.ID,
		metrics:  metrics,
	}
}

// stockItem creates an item and gives it stock through a receipt mutation.
func (f *fixture) stockItem(t *testing.T, code, name string, stock int64) *ItemResponse {
	t.Helper()
	resp, err := f.items.Create(context.Background(), ItemRequest{Code: code, Name: name, CategoryID: f.category, UnitID: f.unit})
	require.NoError(t, err)
	if stock == 0 {
		return resp
	}
	var item inventory.Item
	require.NoError(t, f.db.First(&item, "id = ?", resp.ID).Error)
	m, err := item.Receive(decimal.NewFromInt(stock), inventory.Reference{Type: inventory.RefHandoverIn, ID: uuid.New()})
	require.NoError(t, err)
	require.NoError(t, f.db.Save(&item).Error)
	require.NoError(t, persistence.NewGormMutationRepository(f.db).Append(context.Background(), m))
	resp.Stock = item.Stock
	return resp
}

func TestItemService_CreateAndValidate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	item, err := f.items.Create(ctx, ItemRequest{Code: "hvs-a4", Name: "Kertas HVS A4", CategoryID: f.category, UnitID: f.unit})
	require.NoError(t, err)
	assert.Equal(t, "HVS-A4", item.Code)
	assert.True(t, item.Stock.IsZero())
	assert.True(t, item.LowStock)

	_, err = f.items.Create(ctx, ItemRequest{Code: "HVS-A4", Name: "Duplikat", CategoryID: f.category, UnitID: f.unit})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	_, err = f.items.Create(ctx, ItemRequest{Code: "X-1", Name: "X", CategoryID: uuid.New(), UnitID: f.unit})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Category not found")

	minStock := decimal.NewFromInt(-1)
	_, err = f.items.Create(ctx, ItemRequest{Code: "X-2", Name: "X", CategoryID: f.category, UnitID: f.unit, MinStock: &minStock})
	assert.Error(t, err)
}

func TestItemService_Search(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.stockItem(t, "ATK-001", "Kertas HVS A4", 0)
	f.stockItem(t, "ATK-002", "Pulpen Hitam", 0)
	f.stockItem(t, "KRT-001", "Map Kertas", 0)

	hits, err := f.items.Search(ctx, "kertas")
	require.NoError(t, err)
	require.Len(t, hits, 2)

	hits, err = f.items.Search(ctx, "krt")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "KRT-001", hits[0].Code)

	hits, err = f.items.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestItemService_DeleteWithHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	moved := f.stockItem(t, "ATK-001", "Kertas", 10)
	fresh := f.stockItem(t, "ATK-002", "Pulpen", 0)

	err := f.items.Delete(ctx, moved.ID)
	assert.ErrorIs(t, err, shared.ErrInUse)

	require.NoError(t, f.items.Delete(ctx, fresh.ID))
	_, err = f.items.Get(ctx, fresh.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestItemService_Mutations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.stockItem(t, "ATK-001", "Kertas", 10)
	f.stockItem(t, "ATK-002", "Pulpen", 5)

	page, err := f.items.Mutations(ctx, MutationListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = f.items.Mutations(ctx, MutationListFilter{ItemID: &a.ID, Type: "IN"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "ATK-001", page.Items[0].ItemCode)
	assert.True(t, page.Items[0].Delta.Equal(decimal.NewFromInt(10)))

	yesterday := time.Now().AddDate(0, 0, -1)
	page, err = f.items.Mutations(ctx, MutationListFilter{To: &yesterday})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	_, err = f.items.Mutations(ctx, MutationListFilter{Type: "LOST"})
	assert.Error(t, err)
}

func TestOpnameService_CompleteAdjustsStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	kertas := f.stockItem(t, "ATK-001", "Kertas", 10)
	pulpen := f.stockItem(t, "ATK-002", "Pulpen", 5)
	by := uuid.New()

	o, err := f.opnames.Create(ctx, by, CreateOpnameRequest{Date: time.Now(), Note: "Opname semester I"})
	require.NoError(t, err)
	assert.Equal(t, 2, o.TotalLines)

	_, err = f.opnames.Create(ctx, by, CreateOpnameRequest{Date: time.Now()})
	require.Error(t, err, "only one draft at a time")

	_, err = f.opnames.Complete(ctx, o.ID, by)
	require.Error(t, err, "uncounted lines block completion")

	o, err = f.opnames.RecordCounts(ctx, o.ID, RecordCountRequest{Counts: []CountInput{
		{ItemID: kertas.ID, Actual: decimal.NewFromInt(8), Remark: "2 rim rusak"},
		{ItemID: pulpen.ID, Actual: decimal.NewFromInt(5)},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, o.CountedLines)

	o, err = f.opnames.Complete(ctx, o.ID, by)
	require.NoError(t, err)
	assert.Equal(t, string(inventory.OpnameStatusCompleted), o.Status)

	got, err := f.items.Get(ctx, kertas.ID)
	require.NoError(t, err)
	assert.True(t, got.Stock.Equal(decimal.NewFromInt(8)))

	page, err := f.items.Mutations(ctx, MutationListFilter{Type: "ADJUSTMENT"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1, "matching counts leave no mutation")
	assert.True(t, page.Items[0].Delta.Equal(decimal.NewFromInt(-2)))
	assert.Equal(t, "2 rim rusak", page.Items[0].Note)
	assert.Equal(t, 1, f.metrics.mutations["ADJUSTMENT"])

	_, err = f.opnames.Cancel(ctx, o.ID)
	assert.Error(t, err, "completed opname cannot be cancelled")
}

func TestOpnameService_Cancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.stockItem(t, "ATK-001", "Kertas", 3)

	o, err := f.opnames.Create(ctx, uuid.New(), CreateOpnameRequest{Date: time.Now()})
	require.NoError(t, err)
	o, err = f.opnames.Cancel(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, string(inventory.OpnameStatusCancelled), o.Status)

	_, err = f.opnames.Create(ctx, uuid.New(), CreateOpnameRequest{Date: time.Now()})
	assert.NoError(t, err, "a cancelled draft no longer blocks new sessions")

	list, err := f.opnames.List(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
}
