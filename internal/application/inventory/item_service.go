// Package inventory implements item management, the mutation history and
// stock opname.
package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/inventory"
	"github.com/sibarkumen/backend/internal/domain/masterdata"
	"github.com/sibarkumen/backend/internal/domain/shared"
)

// SearchLimit caps autocomplete results.
const SearchLimit = 10

// ItemService handles items (barang)
type ItemService struct {
	items      inventory.ItemRepository
	mutations  inventory.MutationRepository
	categories masterdata.CategoryRepository
	units      masterdata.UnitRepository
}

// NewItemService creates a new ItemService
func NewItemService(
	items inventory.ItemRepository,
	mutations inventory.MutationRepository,
	categories masterdata.CategoryRepository,
	units masterdata.UnitRepository,
) *ItemService {
	return &ItemService{items: items, mutations: mutations, categories: categories, units: units}
}

// ===================== Query Methods =====================

// List returns a page of items
func (s *ItemService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[ItemResponse], error) {
	items, total, err := s.items.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]ItemResponse, len(items))
	for i := range items {
		out[i] = ToItemResponse(&items[i])
	}
	filter = filter.Normalize()
	p := shared.NewPaginated(out, total, filter.Page, filter.PageSize)
	return &p, nil
}

// Get returns one item
func (s *ItemService) Get(ctx context.Context, id uuid.UUID) (*ItemResponse, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// Search is the document form autocomplete: active items whose code or
// name contains q, code-prefix matches first.
func (s *ItemService) Search(ctx context.Context, q string) ([]ItemSuggestion, error) {
	items, err := s.items.Search(ctx, q, SearchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]ItemSuggestion, len(items))
	for i, it := range items {
		out[i] = ItemSuggestion{ID: it.ID, Code: it.Code, Name: it.Name, Stock: it.Stock}
	}
	return out, nil
}

// Mutations returns the stock history. To is inclusive.
func (s *ItemService) Mutations(ctx context.Context, f MutationListFilter) (*shared.Paginated[MutationResponse], error) {
	filter := inventory.MutationFilter{
		ItemID:   f.ItemID,
		Type:     inventory.MutationType(f.Type),
		From:     f.From,
		Page:     f.Page,
		PageSize: f.PageSize,
	}
	if filter.Type != "" && !filter.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_MUTATION_TYPE", "Unknown mutation type")
	}
	if f.To != nil {
		y, m, d := f.To.Date()
		end := time.Date(y, m, d+1, 0, 0, 0, 0, f.To.Location())
		filter.To = &end
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "Start date is after end date")
	}

	mutations, total, err := s.mutations.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]MutationResponse, len(mutations))
	for i := range mutations {
		out[i] = ToMutationResponse(&mutations[i])
	}
	norm := shared.Filter{Page: f.Page, PageSize: f.PageSize}.Normalize()
	p := shared.NewPaginated(out, total, norm.Page, norm.PageSize)
	return &p, nil
}

// ===================== Command Methods =====================

// Create creates an item with zero stock. Stock arrives through BAST-in.
func (s *ItemService) Create(ctx context.Context, req ItemRequest) (*ItemResponse, error) {
	item, err := inventory.NewItem(req.details())
	if err != nil {
		return nil, err
	}
	if err := s.check(ctx, item); err != nil {
		return nil, err
	}
	if err := s.items.Save(ctx, item); err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// Update updates an item's details
func (s *ItemService) Update(ctx context.Context, id uuid.UUID, req ItemRequest) (*ItemResponse, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := item.Update(req.details()); err != nil {
		return nil, err
	}
	if err := s.check(ctx, item); err != nil {
		return nil, err
	}
	if err := s.items.Save(ctx, item); err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// SetActive enables or disables an item
func (s *ItemService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*ItemResponse, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	item.SetActive(active)
	if err := s.items.Save(ctx, item); err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// Delete removes an item with no stock history. Items that ever moved must be
// deactivated instead.
func (s *ItemService) Delete(ctx context.Context, id uuid.UUID) error {
	moved, err := s.mutations.ExistsForItem(ctx, id)
	if err != nil {
		return err
	}
	if moved {
		return shared.NewDomainError("IN_USE", "Item has stock history; deactivate it instead")
	}
	return s.items.Delete(ctx, id)
}

func (s *ItemService) check(ctx context.Context, item *inventory.Item) error {
	taken, err := s.items.ExistsByCode(ctx, item.Code, item.ID)
	if err != nil {
		return err
	}
	if taken {
		return shared.NewDomainError("ALREADY_EXISTS", "Item with this code already exists")
	}
	if _, err := s.categories.FindByID(ctx, item.CategoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return err
	}
	if _, err := s.units.FindByID(ctx, item.UnitID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_UNIT", "Unit not found")
		}
		return err
	}
	return nil
}
