package inventory

import (
	"context"

	"github.com/google/uuid"
	appshared "github.com/sibarkumen/backend/internal/application/shared"
	"github.com/sibarkumen/backend/internal/domain/inventory"
	"github.com/sibarkumen/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OpnameService runs stock opname sessions. Only one draft may be open at a
// time so counts are always taken against a single snapshot.
type OpnameService struct {
	opnames inventory.OpnameRepository
	items   inventory.ItemRepository
	tx      appshared.TransactionScope
	metrics appshared.Metrics
	logger  *zap.Logger
}

// NewOpnameService creates a new OpnameService
func NewOpnameService(
	opnames inventory.OpnameRepository,
	items inventory.ItemRepository,
	tx appshared.TransactionScope,
	metrics appshared.Metrics,
	logger *zap.Logger,
) *OpnameService {
	if metrics == nil {
		metrics = appshared.NopMetrics{}
	}
	return &OpnameService{opnames: opnames, items: items, tx: tx, metrics: metrics, logger: logger}
}

// List returns a page of opname headers
func (s *OpnameService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[OpnameResponse], error) {
	opnames, total, err := s.opnames.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]OpnameResponse, len(opnames))
	for i := range opnames {
		out[i] = ToOpnameResponse(&opnames[i], false)
	}
	filter = filter.Normalize()
	p := shared.NewPaginated(out, total, filter.Page, filter.PageSize)
	return &p, nil
}

// Get returns an opname with its lines
func (s *OpnameService) Get(ctx context.Context, id uuid.UUID) (*OpnameResponse, error) {
	o, err := s.opnames.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOpnameResponse(o, true)
	return &resp, nil
}

// Create opens a draft over every active item, snapshotting system stock.
func (s *OpnameService) Create(ctx context.Context, by uuid.UUID, req CreateOpnameRequest) (*OpnameResponse, error) {
	open, err := s.opnames.HasDraft(ctx)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, shared.NewDomainError("OPNAME_IN_PROGRESS", "Another stock opname is still in draft")
	}
	items, err := s.items.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	o, err := inventory.NewStockOpname(req.Date, req.Note, by, items)
	if err != nil {
		return nil, err
	}
	if err := s.opnames.Save(ctx, o); err != nil {
		return nil, err
	}
	s.logger.Info("Stock opname created", zap.String("opname_id", o.ID.String()), zap.Int("items", len(o.Lines)))
	resp := ToOpnameResponse(o, true)
	return &resp, nil
}

// RecordCounts stores counted quantities on a draft
func (s *OpnameService) RecordCounts(ctx context.Context, id uuid.UUID, req RecordCountRequest) (*OpnameResponse, error) {
	o, err := s.opnames.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, c := range req.Counts {
		if err := o.RecordCount(c.ItemID, c.Actual, c.Remark); err != nil {
			return nil, err
		}
	}
	if err := s.opnames.Save(ctx, o); err != nil {
		return nil, err
	}
	resp := ToOpnameResponse(o, true)
	return &resp, nil
}

// Complete adjusts stock to the counted values and closes the opname.
// Items are locked, adjusted, and their mutations written in one
// transaction with the opname.
func (s *OpnameService) Complete(ctx context.Context, id, by uuid.UUID) (*OpnameResponse, error) {
	var (
		result    *inventory.StockOpname
		mutations []*inventory.Mutation
	)
	err := s.tx.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		o, err := repos.Opnames().FindByID(ctx, id)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(o.Lines))
		for i, l := range o.Lines {
			ids[i] = l.ItemID
		}
		locked, err := repos.Items().FindByIDsForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*inventory.Item, len(locked))
		for i := range locked {
			byID[locked[i].ID] = &locked[i]
		}

		mutations, err = o.Complete(by, byID)
		if err != nil {
			return err
		}
		changed := make([]*inventory.Item, 0, len(mutations))
		for _, m := range mutations {
			changed = append(changed, byID[m.ItemID])
		}
		if err := repos.Items().SaveAll(ctx, changed); err != nil {
			return err
		}
		if err := repos.Mutations().Append(ctx, mutations...); err != nil {
			return err
		}
		if err := repos.Opnames().Save(ctx, o); err != nil {
			return err
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	appshared.RecordMutations(ctx, s.metrics, mutations)
	s.logger.Info("Stock opname completed",
		zap.String("opname_id", id.String()),
		zap.Int("adjustments", len(mutations)))
	resp := ToOpnameResponse(result, true)
	return &resp, nil
}

// Cancel abandons a draft without touching stock
func (s *OpnameService) Cancel(ctx context.Context, id uuid.UUID) (*OpnameResponse, error) {
	o, err := s.opnames.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.Cancel(); err != nil {
		return nil, err
	}
	if err := s.opnames.Save(ctx, o); err != nil {
		return nil, err
	}
	resp := ToOpnameResponse(o, false)
	return &resp, nil
}
