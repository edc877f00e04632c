package masterdata

import (
	"strings"

	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/shared"
)

// Supplier is a vendor goods are received from (BAST in).
type Supplier struct {
	shared.BaseAggregateRoot
	Name        string        `gorm:"type:varchar(200);not null;index"`
	Address     string        `gorm:"type:text"`
	Phone       string        `gorm:"type:varchar(50)"`
	ContactName string        `gorm:"type:varchar(100)"`
	NPWP        string        `gorm:"column:npwp;type:varchar(30)"`
	Active      bool          `gorm:"not null;default:true"`
	Accounts    []BankAccount `gorm:"foreignKey:SupplierID"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// SupplierDetails are the editable supplier fields.
type SupplierDetails struct {
	Name        string
	Address     string
	Phone       string
	ContactName string
	NPWP        string
}

// NewSupplier creates an active supplier.
func NewSupplier(d SupplierDetails) (*Supplier, error) {
	s := &Supplier{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Active: true}
	if err := s.apply(d); err != nil {
		return nil, err
	}
	return s, nil
}

// Update replaces the supplier's details.
func (s *Supplier) Update(d SupplierDetails) error {
	if err := s.apply(d); err != nil {
		return err
	}
	s.IncrementVersion()
	return nil
}

// SetActive toggles whether the supplier can be used on new documents.
func (s *Supplier) SetActive(active bool) {
	s.Active = active
	s.IncrementVersion()
}

func (s *Supplier) apply(d SupplierDetails) error {
	name := strings.TrimSpace(d.Name)
	if err := validateName("SUPPLIER", name, 200); err != nil {
		return err
	}
	npwp := strings.TrimSpace(d.NPWP)
	if npwp != "" && !isNPWP(npwp) {
		return shared.NewDomainError("INVALID_NPWP", "NPWP must contain 15 or 16 digits")
	}
	s.Name = name
	s.Address = strings.TrimSpace(d.Address)
	s.Phone = strings.TrimSpace(d.Phone)
	s.ContactName = strings.TrimSpace(d.ContactName)
	s.NPWP = npwp
	return nil
}

// isNPWP accepts the formatted (99.999.999.9-999.999) or bare tax number.
func isNPWP(v string) bool {
	digits := 0
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.' || r == '-':
		default:
			return false
		}
	}
	return digits == 15 || digits == 16
}

// BankAccount is a supplier account payments are transferred to.
type BankAccount struct {
	shared.BaseEntity
	SupplierID    uuid.UUID `gorm:"type:uuid;not null;index"`
	BankName      string    `gorm:"type:varchar(100);not null"`
	AccountNumber string    `gorm:"type:varchar(50);not null"`
	AccountHolder string    `gorm:"type:varchar(200);not null"`
	IsPrimary     bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (BankAccount) TableName() string {
	return "bank_accounts"
}

// NewBankAccount creates an account for the supplier.
func NewBankAccount(supplierID uuid.UUID, bankName, number, holder string) (*BankAccount, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier is required")
	}
	a := &BankAccount{BaseEntity: shared.NewBaseEntity(), SupplierID: supplierID}
	if err := a.Update(bankName, number, holder); err != nil {
		return nil, err
	}
	return a, nil
}

// Update replaces the account fields.
func (a *BankAccount) Update(bankName, number, holder string) error {
	bankName = strings.TrimSpace(bankName)
	number = strings.TrimSpace(number)
	holder = strings.TrimSpace(holder)
	if bankName == "" {
		return shared.NewDomainError("INVALID_BANK_NAME", "Bank name cannot be empty")
	}
	if number == "" {
		return shared.NewDomainError("INVALID_ACCOUNT_NUMBER", "Account number cannot be empty")
	}
	for _, r := range number {
		if (r < '0' || r > '9') && r != '-' && r != ' ' {
			return shared.NewDomainError("INVALID_ACCOUNT_NUMBER", "Account number can only contain digits")
		}
	}
	if holder == "" {
		return shared.NewDomainError("INVALID_ACCOUNT_HOLDER", "Account holder cannot be empty")
	}
	a.BankName = bankName
	a.AccountNumber = number
	a.AccountHolder = holder
	a.Touch()
	return nil
}

// MarkPrimary makes account the only primary account among accounts.
// accounts must all belong to the same supplier.
func MarkPrimary(accounts []BankAccount, accountID uuid.UUID) ([]BankAccount, error) {
	found := false
	for i := range accounts {
		isTarget := accounts[i].ID == accountID
		found = found || isTarget
		accounts[i].IsPrimary = isTarget
	}
	if !found {
		return nil, shared.NewDomainError("NOT_FOUND", "Bank account not found")
	}
	return accounts, nil
}
