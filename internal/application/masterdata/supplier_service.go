package masterdata

import (
	"context"

	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/masterdata"
	"github.com/sibarkumen/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SupplierService handles suppliers and their bank accounts
type SupplierService struct {
	suppliers masterdata.SupplierRepository
	logger    *zap.Logger
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(suppliers masterdata.SupplierRepository, logger *zap.Logger) *SupplierService {
	return &SupplierService{suppliers: suppliers, logger: logger}
}

// List returns a page of suppliers
func (s *SupplierService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[SupplierResponse], error) {
	suppliers, total, err := s.suppliers.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return page(suppliers, total, filter, ToSupplierResponse), nil
}

// Get returns a supplier with its bank accounts
func (s *SupplierService) Get(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Create creates a supplier
func (s *SupplierService) Create(ctx context.Context, req SupplierRequest) (*SupplierResponse, error) {
	supplier, err := masterdata.NewSupplier(req.details())
	if err != nil {
		return nil, err
	}
	if err := s.suppliers.Save(ctx, supplier); err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Update updates a supplier's details
func (s *SupplierService) Update(ctx context.Context, id uuid.UUID, req SupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := supplier.Update(req.details()); err != nil {
		return nil, err
	}
	if err := s.suppliers.Save(ctx, supplier); err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// SetActive enables or disables a supplier
func (s *SupplierService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*SupplierResponse, error) {
	supplier, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	supplier.SetActive(active)
	if err := s.suppliers.Save(ctx, supplier); err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Delete removes a supplier. Suppliers referenced by a BAST cannot be
// deleted; deactivate them instead.
func (s *SupplierService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.suppliers.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Supplier deleted", zap.String("supplier_id", id.String()))
	return nil
}

// AddAccount adds a bank account. The first account becomes primary.
func (s *SupplierService) AddAccount(ctx context.Context, supplierID uuid.UUID, req BankAccountRequest) (*SupplierResponse, error) {
	supplier, err := s.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	account, err := masterdata.NewBankAccount(supplier.ID, req.BankName, req.AccountNumber, req.AccountHolder)
	if err != nil {
		return nil, err
	}
	accounts := append(supplier.Accounts, *account)
	if req.Primary || len(accounts) == 1 {
		if accounts, err = masterdata.MarkPrimary(accounts, account.ID); err != nil {
			return nil, err
		}
	}
	return s.saveAccounts(ctx, supplier, accounts)
}

// UpdateAccount edits a bank account
func (s *SupplierService) UpdateAccount(ctx context.Context, supplierID, accountID uuid.UUID, req BankAccountRequest) (*SupplierResponse, error) {
	supplier, err := s.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	accounts := supplier.Accounts
	found := false
	for i := range accounts {
		if accounts[i].ID != accountID {
			continue
		}
		found = true
		if err := accounts[i].Update(req.BankName, req.AccountNumber, req.AccountHolder); err != nil {
			return nil, err
		}
	}
	if !found {
		return nil, shared.NewDomainError("NOT_FOUND", "Bank account not found")
	}
	if req.Primary {
		if accounts, err = masterdata.MarkPrimary(accounts, accountID); err != nil {
			return nil, err
		}
	}
	return s.saveAccounts(ctx, supplier, accounts)
}

// SetPrimaryAccount makes one account the supplier's primary account
func (s *SupplierService) SetPrimaryAccount(ctx context.Context, supplierID, accountID uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	accounts, err := masterdata.MarkPrimary(supplier.Accounts, accountID)
	if err != nil {
		return nil, err
	}
	return s.saveAccounts(ctx, supplier, accounts)
}

// DeleteAccount removes a bank account. When the primary account goes, the
// oldest remaining one takes its place.
func (s *SupplierService) DeleteAccount(ctx context.Context, supplierID, accountID uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if err := s.suppliers.DeleteAccount(ctx, supplierID, accountID); err != nil {
		return nil, err
	}

	remaining := make([]masterdata.BankAccount, 0, len(supplier.Accounts))
	hasPrimary := false
	for _, a := range supplier.Accounts {
		if a.ID == accountID {
			continue
		}
		hasPrimary = hasPrimary || a.IsPrimary
		remaining = append(remaining, a)
	}
	if !hasPrimary && len(remaining) > 0 {
		if remaining, err = masterdata.MarkPrimary(remaining, remaining[0].ID); err != nil {
			return nil, err
		}
		return s.saveAccounts(ctx, supplier, remaining)
	}
	supplier.Accounts = remaining
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

func (s *SupplierService) saveAccounts(ctx context.Context, supplier *masterdata.Supplier, accounts []masterdata.BankAccount) (*SupplierResponse, error) {
	if err := s.suppliers.SaveAccounts(ctx, accounts...); err != nil {
		return nil, err
	}
	fresh, err := s.suppliers.FindAccounts(ctx, supplier.ID)
	if err != nil {
		return nil, err
	}
	supplier.Accounts = fresh
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}
