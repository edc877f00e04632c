package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	t.Run("matches sentinel with same code", func(t *testing.T) {
		err := NewDomainError("NOT_FOUND", "Item not found")
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.False(t, errors.Is(err, ErrAlreadyExists))
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		err := fmt.Errorf("loading item: %w", ErrInsufficientStock)
		assert.True(t, errors.Is(err, ErrInsufficientStock))
	})

	t.Run("message is returned by Error", func(t *testing.T) {
		assert.Equal(t, "Resource not found", ErrNotFound.Error())
	})
}

func TestFilter_Normalize(t *testing.T) {
	t.Run("clamps paging", func(t *testing.T) {
		f := Filter{Page: 0, PageSize: 1000}.Normalize()
		assert.Equal(t, 1, f.Page)
		assert.Equal(t, MaxPageSize, f.PageSize)
		assert.Equal(t, "desc", f.OrderDir)
		assert.NotNil(t, f.Filters)
	})

	t.Run("rejects unknown order column", func(t *testing.T) {
		f := Filter{OrderBy: "name; drop table items", OrderDir: "ASC"}.Normalize("name", "code")
		assert.Equal(t, "created_at", f.OrderBy)
		assert.Equal(t, "asc", f.OrderDir)
	})

	t.Run("keeps allowed order column", func(t *testing.T) {
		f := Filter{Page: 3, PageSize: 10, OrderBy: "code"}.Normalize("name", "code")
		assert.Equal(t, "code desc", f.OrderClause())
		assert.Equal(t, 20, f.Offset())
	})
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2, 3}, 21, 1, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, int64(21), p.Total)

	empty := NewPaginated([]int{}, 0, 1, 10)
	assert.Equal(t, 0, empty.TotalPages)
}
