package ports

import (
	"context"
	"time"
)

// Read table names
const (
	TableCondominiums       = "condominiums"
	TableUnits              = "units"
	TableUnitLedgerAccounts = "unit_ledger_accounts"
	TableExpenses           = "expenses"
	TableFeesIssued         = "fees_issued"
	TablePaymentsReceived   = "payments_received"
	TableOwners             = "owners"
)

// ReadTables lists every projection table
var ReadTables = []string{
	TableCondominiums,
	TableUnits,
	TableUnitLedgerAccounts,
	TableExpenses,
	TableFeesIssued,
	TablePaymentsReceived,
	TableOwners,
}

// CondominiumView is a row of the condominiums table
type CondominiumView struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Street     string    `json:"street"`
	City       string    `json:"city"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	Version    int       `json:"version"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UnitView is a row of the units table; OwnerID is "" when the unit has no owner
type UnitView struct {
	ID            string    `json:"id"`
	CondominiumID string    `json:"condominium_id"`
	Identifier    string    `json:"identifier"`
	OwnerID       string    `json:"owner_id,omitempty"`
	Version       int       `json:"version"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UnitLedgerAccountView is a row of the unit_ledger_accounts table
type UnitLedgerAccountView struct {
	UnitID        string    `json:"unit_id"`
	BalanceAmount int64     `json:"balance_amount"`
	Currency      string    `json:"currency"`
	Version       int       `json:"version"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OwnerView is a row of the owners table
type OwnerView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ExpenseView is a row of the expenses table
type ExpenseView struct {
	ID            string    `json:"id"`
	EventID       string    `json:"event_id"`
	CondominiumID string    `json:"condominium_id"`
	CategoryID    string    `json:"category_id"`
	Description   string    `json:"description"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	ExpenseDate   time.Time `json:"expense_date"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// FeeIssuedView is a row of the fees_issued table
type FeeIssuedView struct {
	EventID     string    `json:"event_id"`
	FeeItemID   string    `json:"fee_item_id"`
	UnitID      string    `json:"unit_id"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	DueDate     time.Time `json:"due_date"`
	Description string    `json:"description"`
	IssuedAt    time.Time `json:"issued_at"`
}

// PaymentReceivedView is a row of the payments_received table
type PaymentReceivedView struct {
	EventID       string    `json:"event_id"`
	PaymentID     string    `json:"payment_id"`
	UnitID        string    `json:"unit_id"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	PaymentDate   time.Time `json:"payment_date"`
	PaymentMethod string    `json:"payment_method"`
	ReceivedAt    time.Time `json:"received_at"`
}

// ReadModelStore is the storage behind projectors and queries.
// Save methods only overwrite a row whose stored version is lower than the
// new one. Insert methods ignore a row whose key already exists. Get methods
// return a NotFound error for a missing row.
type ReadModelStore interface {
	GetCondominium(ctx context.Context, id string) (CondominiumView, error)
	SaveCondominium(ctx context.Context, view CondominiumView) error
	ListCondominiums(ctx context.Context) ([]CondominiumView, error)

	GetUnit(ctx context.Context, id string) (UnitView, error)
	SaveUnit(ctx context.Context, view UnitView) error
	ListUnitsByCondominium(ctx context.Context, condominiumID string) ([]UnitView, error)

	GetUnitLedgerAccount(ctx context.Context, unitID string) (UnitLedgerAccountView, error)
	SaveUnitLedgerAccount(ctx context.Context, view UnitLedgerAccountView) error

	GetOwner(ctx context.Context, id string) (OwnerView, error)
	SaveOwner(ctx context.Context, view OwnerView) error
	ListOwners(ctx context.Context) ([]OwnerView, error)

	InsertExpense(ctx context.Context, view ExpenseView) error
	ListExpensesByCondominium(ctx context.Context, condominiumID string) ([]ExpenseView, error)

	InsertFeeIssued(ctx context.Context, view FeeIssuedView) error
	ListFeesByUnit(ctx context.Context, unitID string) ([]FeeIssuedView, error)

	InsertPaymentReceived(ctx context.Context, view PaymentReceivedView) error
	ListPaymentsByUnit(ctx context.Context, unitID string) ([]PaymentReceivedView, error)

	// Reset deletes every row of a table
	Reset(ctx context.Context, table string) error
}
