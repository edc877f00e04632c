// Package document implements the SPB, SPPB and BAST workflows. Every new
// document is stored through the NumberIssuer so its number is unique.
package document

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appshared "github.com/sibarkumen/backend/internal/application/shared"
	"github.com/sibarkumen/backend/internal/domain/document"
	"github.com/sibarkumen/backend/internal/domain/inventory"
	"github.com/sibarkumen/backend/internal/domain/masterdata"
	"github.com/sibarkumen/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DocumentService creates and reads procurement documents
type DocumentService struct {
	issuer       *NumberIssuer
	requisitions document.RequisitionRepository
	approvals    document.ApprovalRepository
	handovers    document.HandoverRepository
	counter      document.RecordCounter
	items        inventory.ItemRepository
	employees    masterdata.EmployeeRepository
	suppliers    masterdata.SupplierRepository
	metrics      appshared.Metrics
	logger       *zap.Logger
}

// Repositories groups the read-side repositories the service needs
type Repositories struct {
	Requisitions document.RequisitionRepository
	Approvals    document.ApprovalRepository
	Handovers    document.HandoverRepository
	Counter      document.RecordCounter
	Items        inventory.ItemRepository
	Employees    masterdata.EmployeeRepository
	Suppliers    masterdata.SupplierRepository
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(issuer *NumberIssuer, repos Repositories, metrics appshared.Metrics, logger *zap.Logger) *DocumentService {
	if metrics == nil {
		metrics = appshared.NopMetrics{}
	}
	return &DocumentService{
		issuer:       issuer,
		requisitions: repos.Requisitions,
		approvals:    repos.Approvals,
		handovers:    repos.Handovers,
		counter:      repos.Counter,
		items:        repos.Items,
		employees:    repos.Employees,
		suppliers:    repos.Suppliers,
		metrics:      metrics,
		logger:       logger,
	}
}

// ===================== Query Methods =====================

// NextNumber previews the number the next document of a type would get
func (s *DocumentService) NextNumber(ctx context.Context, tag string) (*NextNumberResponse, error) {
	t, ok := document.ParseType(tag)
	if !ok {
		return nil, shared.NewDomainError("INVALID_TYPE", "Unknown document type: "+tag)
	}
	n, err := s.issuer.Preview(ctx, s.counter, t)
	if err != nil {
		return nil, err
	}
	return &NextNumberResponse{Type: string(t), Number: n}, nil
}

// ListRequisitions returns a page of SPBs without lines
func (s *DocumentService) ListRequisitions(ctx context.Context, filter shared.Filter) (*shared.Paginated[RequisitionResponse], error) {
	rows, total, err := s.requisitions.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]RequisitionResponse, len(rows))
	for i := range rows {
		rows[i].Lines = nil
		out[i] = ToRequisitionResponse(&rows[i], nil)
	}
	filter = filter.Normalize()
	p := shared.NewPaginated(out, total, filter.Page, filter.PageSize)
	return &p, nil
}

// GetRequisition returns an SPB with its lines
func (s *DocumentService) GetRequisition(ctx context.Context, id uuid.UUID) (*RequisitionResponse, error) {
	r, err := s.requisitions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	names, err := s.itemNames(ctx, requisitionItems(r))
	if err != nil {
		return nil, err
	}
	resp := ToRequisitionResponse(r, names)
	return &resp, nil
}

// ListApprovals returns a page of SPPBs without lines
func (s *DocumentService) ListApprovals(ctx context.Context, filter shared.Filter) (*shared.Paginated[ApprovalResponse], error) {
	rows, total, err := s.approvals.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]ApprovalResponse, len(rows))
	for i := range rows {
		rows[i].Lines = nil
		out[i] = ToApprovalResponse(&rows[i], nil)
	}
	filter = filter.Normalize()
	p := shared.NewPaginated(out, total, filter.Page, filter.PageSize)
	return &p, nil
}

// GetApproval returns an SPPB with its lines
func (s *DocumentService) GetApproval(ctx context.Context, id uuid.UUID) (*ApprovalResponse, error) {
	a, err := s.approvals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	names, err := s.itemNames(ctx, approvalItems(a))
	if err != nil {
		return nil, err
	}
	resp := ToApprovalResponse(a, names)
	return &resp, nil
}

// ListHandovers returns a page of BASTs of one direction
func (s *DocumentService) ListHandovers(ctx context.Context, dir document.Direction, filter shared.Filter) (*shared.Paginated[HandoverResponse], error) {
	rows, total, err := s.handovers.FindAll(ctx, dir, filter)
	if err != nil {
		return nil, err
	}
	out := make([]HandoverResponse, len(rows))
	for i := range rows {
		rows[i].Lines = nil
		out[i] = ToHandoverResponse(&rows[i], nil)
	}
	filter = filter.Normalize()
	p := shared.NewPaginated(out, total, filter.Page, filter.PageSize)
	return &p, nil
}

// GetHandover returns a BAST of the given direction with its lines
func (s *DocumentService) GetHandover(ctx context.Context, dir document.Direction, id uuid.UUID) (*HandoverResponse, error) {
	h, err := s.findHandover(ctx, dir, id)
	if err != nil {
		return nil, err
	}
	names, err := s.itemNames(ctx, h.ItemIDs())
	if err != nil {
		return nil, err
	}
	resp := ToHandoverResponse(h, names)
	return &resp, nil
}

// ===================== Command Methods =====================

// CreateRequisition records an employee's request for goods as a numbered SPB
func (s *DocumentService) CreateRequisition(ctx context.Context, by uuid.UUID, req CreateRequisitionRequest) (*RequisitionResponse, error) {
	if err := s.checkEmployee(ctx, req.EmployeeID); err != nil {
		return nil, err
	}
	lines := toLineInputs(req.Lines)
	names, err := s.checkItems(ctx, lines)
	if err != nil {
		return nil, err
	}
	r, err := document.NewRequisition(req.Date, req.EmployeeID, req.Purpose, by, lines)
	if err != nil {
		return nil, err
	}

	_, err = s.issuer.Issue(ctx, document.TypeRequisition, func(repos appshared.TransactionalRepositories, number string) error {
		r.AssignNumber(number)
		return repos.Requisitions().Create(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("SPB created", zap.String("id", r.ID.String()), zap.String("number", r.Number))
	resp := ToRequisitionResponse(r, names)
	return &resp, nil
}

// RejectRequisition closes a pending SPB without approving it
func (s *DocumentService) RejectRequisition(ctx context.Context, id uuid.UUID, req RejectRequest) (*RequisitionResponse, error) {
	r, err := s.requisitions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.Reject(req.Reason); err != nil {
		return nil, err
	}
	if err := s.requisitions.Update(ctx, r); err != nil {
		return nil, err
	}
	s.logger.Info("SPB rejected", zap.String("id", r.ID.String()), zap.String("number", r.Number))
	resp := ToRequisitionResponse(r, nil)
	return &resp, nil
}

// ApproveRequisition issues an SPPB for a pending SPB and marks it approved
func (s *DocumentService) ApproveRequisition(ctx context.Context, requisitionID, by uuid.UUID, req ApproveRequest) (*ApprovalResponse, error) {
	approved := make(map[uuid.UUID]decimal.Decimal, len(req.Lines))
	for _, l := range req.Lines {
		if _, dup := approved[l.ItemID]; dup {
			return nil, shared.NewDomainError("DUPLICATE_ITEM", "An item can only appear once")
		}
		approved[l.ItemID] = l.Quantity
	}

	var a *document.Approval
	_, err := s.issuer.Issue(ctx, document.TypeApproval, func(repos appshared.TransactionalRepositories, number string) error {
		// Reload on every attempt: a failed attempt may have mutated the copy.
		r, err := repos.Requisitions().FindByID(ctx, requisitionID)
		if err != nil {
			return err
		}
		a, err = document.NewApproval(r, req.Date, approved, req.Note, by)
		if err != nil {
			return err
		}
		a.AssignNumber(number)
		if err := repos.Approvals().Create(ctx, a); err != nil {
			return err
		}
		return repos.Requisitions().Update(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("SPPB issued",
		zap.String("id", a.ID.String()),
		zap.String("number", a.Number),
		zap.String("requisition_id", requisitionID.String()))
	names, err := s.itemNames(ctx, approvalItems(a))
	if err != nil {
		return nil, err
	}
	resp := ToApprovalResponse(a, names)
	return &resp, nil
}

// CreateHandoverIn records goods received from a supplier and adds them to stock
func (s *DocumentService) CreateHandoverIn(ctx context.Context, by uuid.UUID, req CreateHandoverInRequest) (*HandoverResponse, error) {
	supplier, err := s.suppliers.FindByID(ctx, req.SupplierID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier does not exist")
		}
		return nil, err
	}
	if !supplier.Active {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier is inactive")
	}
	lines := toLineInputs(req.Lines)
	names, err := s.checkItems(ctx, lines)
	if err != nil {
		return nil, err
	}
	h, err := document.NewHandoverIn(req.Date, req.SupplierID, req.Note, by, lines)
	if err != nil {
		return nil, err
	}

	var mutations []*inventory.Mutation
	_, err = s.issuer.Issue(ctx, document.TypeHandoverIn, func(repos appshared.TransactionalRepositories, number string) error {
		h.AssignNumber(number)
		if err := repos.Handovers().Create(ctx, h); err != nil {
			return err
		}
		mutations, err = applyStock(ctx, repos, h)
		return err
	})
	if err != nil {
		return nil, err
	}
	appshared.RecordMutations(ctx, s.metrics, mutations)
	s.logger.Info("BAST in created",
		zap.String("id", h.ID.String()),
		zap.String("number", h.Number),
		zap.String("total", h.Total().StringFixed(2)))
	resp := ToHandoverResponse(h, names)
	return &resp, nil
}

// CreateHandoverOut hands out the goods of an issued SPPB. Stock of every
// approved line is reduced; if any item is short nothing is applied.
func (s *DocumentService) CreateHandoverOut(ctx context.Context, by uuid.UUID, req CreateHandoverOutRequest) (*HandoverResponse, error) {
	var (
		h         *document.Handover
		mutations []*inventory.Mutation
	)
	_, err := s.issuer.Issue(ctx, document.TypeHandoverOut, func(repos appshared.TransactionalRepositories, number string) error {
		a, err := repos.Approvals().FindByID(ctx, req.ApprovalID)
		if err != nil {
			return err
		}
		h, err = document.NewHandoverOut(a, req.Date, req.Note, by)
		if err != nil {
			return err
		}
		h.AssignNumber(number)
		if err := repos.Handovers().Create(ctx, h); err != nil {
			return err
		}
		if err := repos.Approvals().Update(ctx, a); err != nil {
			return err
		}
		mutations, err = applyStock(ctx, repos, h)
		return err
	})
	if err != nil {
		return nil, err
	}
	appshared.RecordMutations(ctx, s.metrics, mutations)
	s.logger.Info("BAST out created",
		zap.String("id", h.ID.String()),
		zap.String("number", h.Number),
		zap.String("approval_id", req.ApprovalID.String()))
	names, err := s.itemNames(ctx, h.ItemIDs())
	if err != nil {
		return nil, err
	}
	resp := ToHandoverResponse(h, names)
	return &resp, nil
}

// ===================== Helpers =====================

// applyStock locks the handover's items, moves their stock and appends the
// mutations. Runs inside the caller's transaction.
func applyStock(ctx context.Context, repos appshared.TransactionalRepositories, h *document.Handover) ([]*inventory.Mutation, error) {
	locked, err := repos.Items().FindByIDsForUpdate(ctx, h.ItemIDs())
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*inventory.Item, len(locked))
	changed := make([]*inventory.Item, len(locked))
	for i := range locked {
		byID[locked[i].ID] = &locked[i]
		changed[i] = &locked[i]
	}
	mutations, err := h.ApplyStock(byID)
	if err != nil {
		return nil, err
	}
	if err := repos.Items().SaveAll(ctx, changed); err != nil {
		return nil, err
	}
	if err := repos.Mutations().Append(ctx, mutations...); err != nil {
		return nil, err
	}
	return mutations, nil
}

func (s *DocumentService) findHandover(ctx context.Context, dir document.Direction, id uuid.UUID) (*document.Handover, error) {
	h, err := s.handovers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.Direction != dir {
		return nil, shared.ErrNotFound
	}
	return h, nil
}

func (s *DocumentService) checkEmployee(ctx context.Context, id uuid.UUID) error {
	e, err := s.employees.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_EMPLOYEE", "Employee does not exist")
		}
		return err
	}
	if !e.Active {
		return shared.NewDomainError("INVALID_EMPLOYEE", "Employee is inactive")
	}
	return nil
}

// checkItems requires every line's item to exist and be active.
func (s *DocumentService) checkItems(ctx context.Context, lines []document.LineInput) (ItemNames, error) {
	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.ItemID
	}
	items, err := s.items.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	found := make(map[uuid.UUID]*inventory.Item, len(items))
	for i := range items {
		found[items[i].ID] = &items[i]
	}
	names := make(ItemNames, len(items))
	for _, id := range ids {
		item, ok := found[id]
		if !ok {
			return nil, shared.NewDomainError("INVALID_ITEM", "Item does not exist: "+id.String())
		}
		if !item.Active {
			return nil, shared.NewDomainError("INVALID_ITEM", "Item "+item.Code+" is inactive")
		}
		names[id] = [2]string{item.Code, item.Name}
	}
	return names, nil
}

func (s *DocumentService) itemNames(ctx context.Context, ids []uuid.UUID) (ItemNames, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	items, err := s.items.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(ItemNames, len(items))
	for _, item := range items {
		names[item.ID] = [2]string{item.Code, item.Name}
	}
	return names, nil
}

func requisitionItems(r *document.Requisition) []uuid.UUID {
	ids := make([]uuid.UUID, len(r.Lines))
	for i, l := range r.Lines {
		ids[i] = l.ItemID
	}
	return ids
}

func approvalItems(a *document.Approval) []uuid.UUID {
	ids := make([]uuid.UUID, len(a.Lines))
	for i, l := range a.Lines {
		ids[i] = l.ItemID
	}
	return ids
}
