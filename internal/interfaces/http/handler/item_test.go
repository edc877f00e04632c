package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/sibarkumen/backend/internal/application/inventory"
	"github.com/sibarkumen/backend/internal/domain/masterdata"
	"github.com/sibarkumen/backend/internal/infrastructure/persistence"
	"github.com/sibarkumen/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type itemFixture struct {
	engine   *gin.Engine
	category *masterdata.Category
	unit     *masterdata.Unit
}

func newItemFixture(t *testing.T) *itemFixture {
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

	f := &itemFixture{}
	f.category, err = masterdata.NewCategory("ATK", "Alat Tulis Kantor", "")
	require.NoError(t, err)
	require.NoError(t, db.Create(f.category).Error)
	f.unit, err = masterdata.NewUnit("Buah", "")
	require.NoError(t, err)
	require.NoError(t, db.Create(f.unit).Error)

	h := NewItemHandler(inventoryapp.NewItemService(
		persistence.NewGormItemRepository(db),
		persistence.NewGormMutationRepository(db),
		persistence.NewGormCategoryRepository(db),
		persistence.NewGormUnitRepository(db),
	))
	engine := gin.New()
	engine.GET("/dashboard/items", h.List)
	engine.POST("/dashboard/items", h.Create)
	engine.GET("/dashboard/items/search", h.Search)
	engine.GET("/dashboard/items/:id", h.Get)
	engine.PUT("/dashboard/items/:id/active", h.SetActive)
	engine.DELETE("/dashboard/items/:id", h.Delete)
	engine.GET("/dashboard/items/:id/mutations", h.ItemMutations)
	engine.GET("/dashboard/mutations", h.Mutations)
	f.engine = engine
	return f
}

func (f *itemFixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	var resp dto.Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func (f *itemFixture) create(t *testing.T, code, name, minStock string) string {
	t.Helper()
	w, resp := f.do(t, http.MethodPost, "/dashboard/items", gin.H{
		"code": code, "name": name, "category_id": f.category.ID, "unit_id": f.unit.ID, "min_stock": minStock,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return resp.Data.(map[string]any)["id"].(string)
}

func TestItemHandler_CreateAndList(t *testing.T) {
	f := newItemFixture(t)
	f.create(t, "ATK-001", "Kertas HVS A4", "5")
	f.create(t, "ATK-002", "Pulpen Hitam", "0")

	w, resp := f.do(t, http.MethodPost, "/dashboard/items", gin.H{
		"code": "ATK-001", "name": "Duplikat", "category_id": f.category.ID, "unit_id": f.unit.ID,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeAlreadyExists, resp.Error.Code)

	w, resp = f.do(t, http.MethodPost, "/dashboard/items", gin.H{
		"code": "ATK-003", "name": "Map", "category_id": uuid.New(), "unit_id": f.unit.ID,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "ERR_INVALID_CATEGORY", resp.Error.Code)

	w, resp = f.do(t, http.MethodGet, "/dashboard/items?low_stock=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := resp.Data.([]any)
	require.Len(t, items, 2, "stock at the minimum counts as low")
	for _, it := range items {
		assert.Equal(t, true, it.(map[string]any)["low_stock"])
	}

	w, resp = f.do(t, http.MethodGet, "/dashboard/items?category_id="+uuid.NewString(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp.Data)

	w, resp = f.do(t, http.MethodGet, "/dashboard/items?page_size=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data.([]any), 1)
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)
}

func TestItemHandler_Search(t *testing.T) {
	f := newItemFixture(t)
	f.create(t, "ATK-001", "Kertas HVS A4", "0")
	f.create(t, "ATK-002", "Pulpen Hitam", "0")

	w, resp := f.do(t, http.MethodGet, "/dashboard/items/search?q=KERTAS", nil)
	require.Equal(t, http.StatusOK, w.Code)
	hits := resp.Data.([]any)
	require.Len(t, hits, 1)
	assert.Equal(t, "Kertas HVS A4", hits[0].(map[string]any)["name"])

	w, resp = f.do(t, http.MethodGet, "/dashboard/items/search?q=atk-00", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data.([]any), 2)

	w, resp = f.do(t, http.MethodGet, "/dashboard/items/search?q=+++", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp.Data)
}

func TestItemHandler_SetActiveAndDelete(t *testing.T) {
	f := newItemFixture(t)
	id := f.create(t, "ATK-001", "Kertas HVS A4", "0")

	w, _ := f.do(t, http.MethodPut, "/dashboard/items/"+id+"/active", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code, "active is required even when false")

	w, resp := f.do(t, http.MethodPut, "/dashboard/items/"+id+"/active", gin.H{"active": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, resp.Data.(map[string]any)["active"])

	w, _ = f.do(t, http.MethodDelete, "/dashboard/items/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = f.do(t, http.MethodGet, "/dashboard/items/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestItemHandler_MutationQuery(t *testing.T) {
	f := newItemFixture(t)
	id := f.create(t, "ATK-001", "Kertas HVS A4", "0")

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantCode   string
	}{
		{"empty history", "/dashboard/mutations", http.StatusOK, ""},
		{"per item", "/dashboard/items/" + id + "/mutations?type=IN", http.StatusOK, ""},
		{"date range", "/dashboard/mutations?from=2026-01-01&to=2026-01-31", http.StatusOK, ""},
		{"unknown type", "/dashboard/mutations?type=TRANSFER", http.StatusBadRequest, dto.ErrCodeValidation},
		{"bad item id", "/dashboard/mutations?item_id=12", http.StatusBadRequest, dto.ErrCodeValidation},
		{"bad date", "/dashboard/mutations?from=01-02-2026", http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"reversed range", "/dashboard/mutations?from=2026-02-01&to=2026-01-01", http.StatusUnprocessableEntity, "ERR_INVALID_DATE_RANGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := f.do(t, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				return
			}
			assert.True(t, resp.Success)
			assert.NotNil(t, resp.Meta)
		})
	}
}
