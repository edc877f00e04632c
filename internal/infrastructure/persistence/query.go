package persistence

import (
	"errors"
	"strings"

	"github.com/sibarkumen/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translate maps gorm errors onto the domain sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return shared.ErrInUse
	}
	return err
}

// IsDuplicateKey reports whether err came from a unique constraint.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, shared.ErrAlreadyExists)
}

// paginate counts the filtered query and loads one page of it into out,
// preloading the named associations on the page only. filter must already
// be normalized.
func paginate[T any](query *gorm.DB, filter shared.Filter, out *[]T, preloads ...string) (int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, err
	}
	if total == 0 {
		*out = []T{}
		return 0, nil
	}
	for _, p := range preloads {
		query = query.Preload(p)
	}
	err := query.
		Order(filter.OrderClause()).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(out).Error
	return total, err
}

// likePattern builds a lower-case contains pattern with LIKE wildcards escaped.
func likePattern(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}

// searchAny adds "LOWER(col) LIKE pattern" for each column, OR-ed together.
func searchAny(query *gorm.DB, term string, columns ...string) *gorm.DB {
	if strings.TrimSpace(term) == "" || len(columns) == 0 {
		return query
	}
	pattern := likePattern(term)
	conds := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		conds[i] = "LOWER(" + col + ") LIKE ? ESCAPE '\\'"
		args[i] = pattern
	}
	return query.Where(strings.Join(conds, " OR "), args...)
}

// exists runs a COUNT on query and reports whether any row matched.
func exists(query *gorm.DB) (bool, error) {
	var count int64
	if err := query.Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
