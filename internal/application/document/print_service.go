package document

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/document"
	"github.com/sibarkumen/backend/internal/domain/identity"
	"github.com/sibarkumen/backend/internal/domain/inventory"
	"github.com/sibarkumen/backend/internal/domain/masterdata"
	"github.com/sibarkumen/backend/internal/domain/shared"
	"github.com/sibarkumen/backend/internal/infrastructure/printing"
)

// SheetPrinter renders a sheet. *printing.Printer implements it.
type SheetPrinter interface {
	Print(ctx context.Context, s *printing.Sheet) (*printing.Output, error)
}

// PrintService turns stored documents into printable sheets
type PrintService struct {
	printer      SheetPrinter
	requisitions document.RequisitionRepository
	approvals    document.ApprovalRepository
	handovers    document.HandoverRepository
	items        inventory.ItemRepository
	units        masterdata.UnitRepository
	employees    masterdata.EmployeeRepository
	suppliers    masterdata.SupplierRepository
	users        identity.UserRepository
}

// NewPrintService creates a new PrintService
func NewPrintService(
	printer SheetPrinter,
	repos Repositories,
	units masterdata.UnitRepository,
	users identity.UserRepository,
) *PrintService {
	return &PrintService{
		printer:      printer,
		requisitions: repos.Requisitions,
		approvals:    repos.Approvals,
		handovers:    repos.Handovers,
		items:        repos.Items,
		units:        units,
		employees:    repos.Employees,
		suppliers:    repos.Suppliers,
		users:        users,
	}
}

// PrintRequisition renders an SPB
func (s *PrintService) PrintRequisition(ctx context.Context, id uuid.UUID) (*printing.Output, error) {
	r, err := s.requisitions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	requester, err := s.employee(ctx, r.EmployeeID)
	if err != nil {
		return nil, err
	}
	lines := make([]printing.Line, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = printing.Line{Quantity: l.Quantity, Note: l.Note}
	}
	if err := s.describe(ctx, requisitionItems(r), lines); err != nil {
		return nil, err
	}

	return s.printer.Print(ctx, &printing.Sheet{
		Title:  "Surat Permintaan Barang",
		Number: r.Number,
		Date:   r.Date,
		Fields: []printing.Field{
			{Label: "Nama Pemohon", Value: requester.Name},
			{Label: "NIP", Value: requester.NIP},
			{Label: "Keperluan", Value: r.Purpose},
		},
		Lines: lines,
		Signatures: []printing.Signature{
			{Caption: "Mengetahui"},
			{Caption: "Yang Meminta", Name: requester.Name, NIP: requester.NIP},
		},
	})
}

// PrintApproval renders an SPPB, showing requested next to approved quantities
func (s *PrintService) PrintApproval(ctx context.Context, id uuid.UUID) (*printing.Output, error) {
	a, err := s.approvals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r, err := s.requisitions.FindByID(ctx, a.RequisitionID)
	if err != nil {
		return nil, err
	}
	receiver, err := s.employee(ctx, a.EmployeeID)
	if err != nil {
		return nil, err
	}
	approver := s.userName(ctx, a.ApprovedBy)

	lines := make([]printing.Line, len(a.Lines))
	for i, l := range a.Lines {
		lines[i] = printing.Line{Requested: l.RequestedQty, Quantity: l.ApprovedQty}
	}
	if err := s.describe(ctx, approvalItems(a), lines); err != nil {
		return nil, err
	}

	return s.printer.Print(ctx, &printing.Sheet{
		Title:  "Surat Perintah Penyaluran Barang",
		Number: a.Number,
		Date:   a.Date,
		Fields: []printing.Field{
			{Label: "Nomor SPB", Value: r.Number},
			{Label: "Penerima", Value: receiver.Name},
			{Label: "NIP", Value: receiver.NIP},
			{Label: "Keperluan", Value: r.Purpose},
		},
		Lines:         lines,
		ShowRequested: true,
		Note:          a.Note,
		Signatures: []printing.Signature{
			{Caption: "Yang Menyetujui", Name: approver},
			{Caption: "Penerima", Name: receiver.Name, NIP: receiver.NIP},
		},
	})
}

// PrintHandover renders a BAST of the given direction. Incoming ones show
// prices and the total value.
func (s *PrintService) PrintHandover(ctx context.Context, dir document.Direction, id uuid.UUID) (*printing.Output, error) {
	h, err := s.handovers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.Direction != dir {
		return nil, shared.ErrNotFound
	}
	lines := make([]printing.Line, len(h.Lines))
	for i, l := range h.Lines {
		lines[i] = printing.Line{Quantity: l.Quantity, UnitPrice: l.UnitPrice, Note: l.Note}
	}
	if err := s.describe(ctx, h.ItemIDs(), lines); err != nil {
		return nil, err
	}
	officer := s.userName(ctx, h.CreatedBy)

	sheet := &printing.Sheet{
		Title:  "Berita Acara Serah Terima Barang",
		Number: h.Number,
		Date:   h.Date,
		Lines:  lines,
		Note:   h.Note,
	}
	if dir == document.DirectionIn {
		supplier, err := s.suppliers.FindByID(ctx, *h.SupplierID)
		if err != nil {
			return nil, err
		}
		sheet.ShowPrices = true
		sheet.Fields = []printing.Field{
			{Label: "Penyedia", Value: supplier.Name},
			{Label: "Alamat", Value: supplier.Address},
			{Label: "NPWP", Value: supplier.NPWP},
		}
		sheet.Signatures = []printing.Signature{
			{Caption: "Yang Menyerahkan", Name: firstNonEmpty(supplier.ContactName, supplier.Name)},
			{Caption: "Yang Menerima", Name: officer},
		}
		return s.printer.Print(ctx, sheet)
	}

	a, err := s.approvals.FindByID(ctx, *h.ApprovalID)
	if err != nil {
		return nil, err
	}
	receiver, err := s.employee(ctx, *h.EmployeeID)
	if err != nil {
		return nil, err
	}
	sheet.Fields = []printing.Field{
		{Label: "Nomor SPPB", Value: a.Number},
		{Label: "Penerima", Value: receiver.Name},
		{Label: "NIP", Value: receiver.NIP},
	}
	sheet.Signatures = []printing.Signature{
		{Caption: "Yang Menyerahkan", Name: officer},
		{Caption: "Yang Menerima", Name: receiver.Name, NIP: receiver.NIP},
	}
	return s.printer.Print(ctx, sheet)
}

// describe fills code, name and unit of lines; ids[i] belongs to lines[i].
func (s *PrintService) describe(ctx context.Context, ids []uuid.UUID, lines []printing.Line) error {
	items, err := s.items.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[uuid.UUID]*inventory.Item, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	units := make(map[uuid.UUID]string)
	for i, id := range ids {
		item, ok := byID[id]
		if !ok {
			continue
		}
		unit, ok := units[item.UnitID]
		if !ok {
			u, err := s.units.FindByID(ctx, item.UnitID)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			if u != nil {
				unit = u.Name
			}
			units[item.UnitID] = unit
		}
		lines[i].Code, lines[i].Name, lines[i].Unit = item.Code, item.Name, unit
	}
	return nil
}

func (s *PrintService) employee(ctx context.Context, id uuid.UUID) (*masterdata.Employee, error) {
	e, err := s.employees.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return &masterdata.Employee{}, nil
	}
	return e, err
}

// userName returns the user's name, or empty when the account is gone.
func (s *PrintService) userName(ctx context.Context, id uuid.UUID) string {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return ""
	}
	return u.Name
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
