package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/document"
	"github.com/sibarkumen/backend/internal/domain/shared"
	"gorm.io/gorm"
)

var documentOrder = []string{"document_date", "document_number", "status"}

// updateHeader writes the header of a versioned document. The stored version
// must be one behind the in-memory one; otherwise another request won.
func updateHeader(ctx context.Context, db *gorm.DB, model any, id uuid.UUID, version int, fields map[string]any) error {
	result := db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", id, version-1).
		Updates(fields)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConflict
	}
	return nil
}

// GormRequisitionRepository implements document.RequisitionRepository (SPB)
type GormRequisitionRepository struct {
	db *gorm.DB
}

// NewGormRequisitionRepository creates a new GormRequisitionRepository
func NewGormRequisitionRepository(db *gorm.DB) *GormRequisitionRepository {
	return &GormRequisitionRepository{db: db}
}

func (r *GormRequisitionRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Requisition, error) {
	var req document.Requisition
	if err := r.db.WithContext(ctx).Preload("Lines").First(&req, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

// FindAll lists SPB headers. Filters: status, employee_id.
func (r *GormRequisitionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]document.Requisition, int64, error) {
	filter = filter.Normalize(documentOrder...)
	query := searchAny(r.db.WithContext(ctx).Model(&document.Requisition{}), filter.Search, "document_number", "purpose")
	if v, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", v)
	}
	if v, ok := filter.Filters["employee_id"]; ok {
		query = query.Where("employee_id = ?", v)
	}
	var out []document.Requisition
	total, err := paginate(query, filter, &out)
	return out, total, err
}

// Create inserts the SPB with its lines. A taken number returns
// shared.ErrAlreadyExists.
func (r *GormRequisitionRepository) Create(ctx context.Context, req *document.Requisition) error {
	return translate(r.db.WithContext(ctx).Create(req).Error)
}

func (r *GormRequisitionRepository) Update(ctx context.Context, req *document.Requisition) error {
	return updateHeader(ctx, r.db, &document.Requisition{}, req.ID, req.Version, map[string]any{
		"status":        req.Status,
		"reject_reason": req.RejectReason,
		"version":       req.Version,
		"updated_at":    req.UpdatedAt,
	})
}

// GormApprovalRepository implements document.ApprovalRepository (SPPB)
type GormApprovalRepository struct {
	db *gorm.DB
}

// NewGormApprovalRepository creates a new GormApprovalRepository
func NewGormApprovalRepository(db *gorm.DB) *GormApprovalRepository {
	return &GormApprovalRepository{db: db}
}

func (r *GormApprovalRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Approval, error) {
	var a document.Approval
	if err := r.db.WithContext(ctx).Preload("Lines").First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// FindAll lists SPPB headers. Filters: status, employee_id.
func (r *GormApprovalRepository) FindAll(ctx context.Context, filter shared.Filter) ([]document.Approval, int64, error) {
	filter = filter.Normalize(documentOrder...)
	query := searchAny(r.db.WithContext(ctx).Model(&document.Approval{}), filter.Search, "document_number")
	if v, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", v)
	}
	if v, ok := filter.Filters["employee_id"]; ok {
		query = query.Where("employee_id = ?", v)
	}
	var out []document.Approval
	total, err := paginate(query, filter, &out)
	return out, total, err
}

func (r *GormApprovalRepository) Create(ctx context.Context, a *document.Approval) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

func (r *GormApprovalRepository) Update(ctx context.Context, a *document.Approval) error {
	return updateHeader(ctx, r.db, &document.Approval{}, a.ID, a.Version, map[string]any{
		"status":     a.Status,
		"version":    a.Version,
		"updated_at": a.UpdatedAt,
	})
}

// GormHandoverRepository implements document.HandoverRepository (BAST)
type GormHandoverRepository struct {
	db *gorm.DB
}

// NewGormHandoverRepository creates a new GormHandoverRepository
func NewGormHandoverRepository(db *gorm.DB) *GormHandoverRepository {
	return &GormHandoverRepository{db: db}
}

func (r *GormHandoverRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Handover, error) {
	var h document.Handover
	if err := r.db.WithContext(ctx).Preload("Lines").First(&h, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &h, nil
}

// FindAll lists handovers of one direction. Filters: supplier_id, employee_id.
func (r *GormHandoverRepository) FindAll(ctx context.Context, dir document.Direction, filter shared.Filter) ([]document.Handover, int64, error) {
	filter = filter.Normalize("document_date", "document_number")
	query := searchAny(r.db.WithContext(ctx).Model(&document.Handover{}).Where("direction = ?", dir),
		filter.Search, "document_number", "note")
	if v, ok := filter.Filters["supplier_id"]; ok {
		query = query.Where("supplier_id = ?", v)
	}
	if v, ok := filter.Filters["employee_id"]; ok {
		query = query.Where("employee_id = ?", v)
	}
	var out []document.Handover
	total, err := paginate(query, filter, &out)
	return out, total, err
}

func (r *GormHandoverRepository) Create(ctx context.Context, h *document.Handover) error {
	return translate(r.db.WithContext(ctx).Create(h).Error)
}

func (r *GormHandoverRepository) UpdateAttachment(ctx context.Context, id uuid.UUID, key string) error {
	result := r.db.WithContext(ctx).
		Model(&document.Handover{}).
		Where("id = ?", id).
		Update("attachment_key", key)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var (
	_ document.RequisitionRepository = (*GormRequisitionRepository)(nil)
	_ document.ApprovalRepository    = (*GormApprovalRepository)(nil)
	_ document.HandoverRepository    = (*GormHandoverRepository)(nil)
)
