package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/sibarkumen/backend/internal/domain/document"
	"gorm.io/gorm"
)

// GormDocumentCounter counts persisted documents per numbering type. It is
// the storage side of the number generator.
type GormDocumentCounter struct {
	db *gorm.DB
}

// NewGormDocumentCounter creates a new GormDocumentCounter
func NewGormDocumentCounter(db *gorm.DB) *GormDocumentCounter {
	return &GormDocumentCounter{db: db}
}

// CountDocuments returns the number of documents of type t ever stored
func (c *GormDocumentCounter) CountDocuments(ctx context.Context, t document.Type) (int64, error) {
	query, err := c.scope(ctx, t)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := query.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// CountDocumentsSince counts documents of type t dated on or after since
func (c *GormDocumentCounter) CountDocumentsSince(ctx context.Context, t document.Type, since time.Time) (int64, error) {
	query, err := c.scope(ctx, t)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := query.Where("document_date >= ?", since).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// NumberTaken checks the whole table behind t: both handover directions
// share one unique index on document_number.
func (c *GormDocumentCounter) NumberTaken(ctx context.Context, t document.Type, number string) (bool, error) {
	query, err := c.table(ctx, t)
	if err != nil {
		return false, err
	}
	var n int64
	if err := query.Where("document_number = ?", number).Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *GormDocumentCounter) table(ctx context.Context, t document.Type) (*gorm.DB, error) {
	db := c.db.WithContext(ctx)
	switch t {
	case document.TypeRequisition:
		return db.Model(&document.Requisition{}), nil
	case document.TypeApproval:
		return db.Model(&document.Approval{}), nil
	case document.TypeHandoverIn, document.TypeHandoverOut:
		return db.Model(&document.Handover{}), nil
	}
	return nil, fmt.Errorf("no document table for type %q", t)
}

func (c *GormDocumentCounter) scope(ctx context.Context, t document.Type) (*gorm.DB, error) {
	query, err := c.table(ctx, t)
	if err != nil {
		return nil, err
	}
	switch t {
	case document.TypeHandoverIn:
		return query.Where("direction = ?", document.DirectionIn), nil
	case document.TypeHandoverOut:
		return query.Where("direction = ?", document.DirectionOut), nil
	}
	return query, nil
}

var _ document.Counter = (*GormDocumentCounter)(nil)
