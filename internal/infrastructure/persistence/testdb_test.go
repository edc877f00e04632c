package persistence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sibarkumen/backend/internal/domain/inventory"
	"github.com/sibarkumen/backend/internal/domain/masterdata"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(Models()...))
	return db
}

// seedItem stores a category, a unit and one item holding stock.
func seedItem(t *testing.T, db *gorm.DB, code string, stock int64) *inventory.Item {
	t.Helper()
	cat, err := masterdata.NewCategory("C"+code, "Category "+code, "")
	require.NoError(t, err)
	require.NoError(t, db.Create(cat).Error)
	unit, err := masterdata.NewUnit("Unit "+code, "")
	require.NoError(t, err)
	require.NoError(t, db.Create(unit).Error)

	item, err := inventory.NewItem(inventory.ItemDetails{
		Code:       code,
		Name:       "Item " + code,
		CategoryID: cat.ID,
		UnitID:     unit.ID,
		MinStock:   decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	item.Stock = decimal.NewFromInt(stock)
	require.NoError(t, db.Create(item).Error)
	return item
}
