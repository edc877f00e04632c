// Package masterdata implements the reference data services: categories,
// units, positions, suppliers and employees.
package masterdata

import (
	"context"

	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/inventory"
	"github.com/sibarkumen/backend/internal/domain/masterdata"
	"github.com/sibarkumen/backend/internal/domain/shared"
)

func page[T, R any](items []T, total int64, filter shared.Filter, fn func(*T) R) *shared.Paginated[R] {
	filter = filter.Normalize()
	p := shared.NewPaginated(mapSlice(items, fn), total, filter.Page, filter.PageSize)
	return &p
}

// CategoryService handles category-related business operations
type CategoryService struct {
	categories masterdata.CategoryRepository
	items      inventory.ItemRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categories masterdata.CategoryRepository, items inventory.ItemRepository) *CategoryService {
	return &CategoryService{categories: categories, items: items}
}

// List returns a page of categories
func (s *CategoryService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[CategoryResponse], error) {
	cats, total, err := s.categories.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return page(cats, total, filter, ToCategoryResponse), nil
}

// Get returns one category
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(c)
	return &resp, nil
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, req CategoryRequest) (*CategoryResponse, error) {
	c, err := masterdata.NewCategory(req.Code, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCodeFree(ctx, c.Code, c.ID); err != nil {
		return nil, err
	}
	if err := s.categories.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(c)
	return &resp, nil
}

// Update updates a category
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req CategoryRequest) (*CategoryResponse, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Update(req.Code, req.Name, req.Description); err != nil {
		return nil, err
	}
	if err := s.ensureCodeFree(ctx, c.Code, c.ID); err != nil {
		return nil, err
	}
	if err := s.categories.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(c)
	return &resp, nil
}

// Delete removes a category that no item uses
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	used, err := s.items.ExistsByCategory(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return shared.NewDomainError("IN_USE", "Category is still used by items")
	}
	return s.categories.Delete(ctx, id)
}

func (s *CategoryService) ensureCodeFree(ctx context.Context, code string, id uuid.UUID) error {
	taken, err := s.categories.ExistsByCode(ctx, code, id)
	if err != nil {
		return err
	}
	if taken {
		return shared.NewDomainError("ALREADY_EXISTS", "Category with this code already exists")
	}
	return nil
}

// UnitService handles units of measure
type UnitService struct {
	units masterdata.UnitRepository
	items inventory.ItemRepository
}

// NewUnitService creates a new UnitService
func NewUnitService(units masterdata.UnitRepository, items inventory.ItemRepository) *UnitService {
	return &UnitService{units: units, items: items}
}

// List returns a page of units
func (s *UnitService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[NamedResponse], error) {
	units, total, err := s.units.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return page(units, total, filter, ToUnitResponse), nil
}

// Get returns one unit
func (s *UnitService) Get(ctx context.Context, id uuid.UUID) (*NamedResponse, error) {
	u, err := s.units.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUnitResponse(u)
	return &resp, nil
}

// Create creates a unit
func (s *UnitService) Create(ctx context.Context, req NamedRequest) (*NamedResponse, error) {
	u, err := masterdata.NewUnit(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, u)
}

// Update updates a unit
func (s *UnitService) Update(ctx context.Context, id uuid.UUID, req NamedRequest) (*NamedResponse, error) {
	u, err := s.units.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.Update(req.Name, req.Description); err != nil {
		return nil, err
	}
	return s.save(ctx, u)
}

func (s *UnitService) save(ctx context.Context, u *masterdata.Unit) (*NamedResponse, error) {
	taken, err := s.units.ExistsByName(ctx, u.Name, u.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Unit with this name already exists")
	}
	if err := s.units.Save(ctx, u); err != nil {
		return nil, err
	}
	resp := ToUnitResponse(u)
	return &resp, nil
}

// Delete removes a unit that no item uses
func (s *UnitService) Delete(ctx context.Context, id uuid.UUID) error {
	used, err := s.items.ExistsByUnit(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return shared.NewDomainError("IN_USE", "Unit is still used by items")
	}
	return s.units.Delete(ctx, id)
}

// PositionService handles positions (jabatan)
type PositionService struct {
	positions masterdata.PositionRepository
}

// NewPositionService creates a new PositionService
func NewPositionService(positions masterdata.PositionRepository) *PositionService {
	return &PositionService{positions: positions}
}

// List returns a page of positions
func (s *PositionService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[NamedResponse], error) {
	positions, total, err := s.positions.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return page(positions, total, filter, ToPositionResponse), nil
}

// Get returns one position
func (s *PositionService) Get(ctx context.Context, id uuid.UUID) (*NamedResponse, error) {
	p, err := s.positions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPositionResponse(p)
	return &resp, nil
}

// Create creates a position
func (s *PositionService) Create(ctx context.Context, req NamedRequest) (*NamedResponse, error) {
	p, err := masterdata.NewPosition(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, p)
}

// Update updates a position
func (s *PositionService) Update(ctx context.Context, id uuid.UUID, req NamedRequest) (*NamedResponse, error) {
	p, err := s.positions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Update(req.Name, req.Description); err != nil {
		return nil, err
	}
	return s.save(ctx, p)
}

func (s *PositionService) save(ctx context.Context, p *masterdata.Position) (*NamedResponse, error) {
	taken, err := s.positions.ExistsByName(ctx, p.Name, p.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Position with this name already exists")
	}
	if err := s.positions.Save(ctx, p); err != nil {
		return nil, err
	}
	resp := ToPositionResponse(p)
	return &resp, nil
}

// Delete removes a position nobody has held
func (s *PositionService) Delete(ctx context.Context, id uuid.UUID) error {
	assigned, err := s.positions.IsAssigned(ctx, id)
	if err != nil {
		return err
	}
	if assigned {
		return shared.NewDomainError("IN_USE", "Position appears in employee assignments")
	}
	return s.positions.Delete(ctx, id)
}
