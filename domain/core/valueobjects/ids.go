package valueobjects

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

// identifier is the UUID string shared by every typed id.
// Value objects are immutable and have no identity beyond their value.
type identifier struct {
	value string
}

func newIdentifier() identifier {
	return identifier{value: uuid.New().String()}
}

func parseIdentifier(kind, id string) (identifier, error) {
	if id == "" {
		return identifier{}, pkgerrors.NewInvalidArgumentError(fmt.Sprintf("%s cannot be empty", kind))
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return identifier{}, pkgerrors.NewInvalidArgumentError(fmt.Sprintf("%s must be a valid UUID: '%s'", kind, id)).WithCause(err)
	}
	return identifier{value: parsed.String()}, nil
}

// String returns the string representation of the id
func (id identifier) String() string {
	return id.value
}

// IsZero checks if the id is the zero value
func (id identifier) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id identifier) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

func (id *identifier) unmarshalJSON(kind string, data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New(kind + " must be a string")
	}
	parsed, err := parseIdentifier(kind, string(data[1:len(data)-1]))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// AccountID identifies an Account aggregate
type AccountID struct{ identifier }

// NewAccountID creates a new random AccountID
func NewAccountID() AccountID { return AccountID{newIdentifier()} }

// AccountIDFromString parses an AccountID
func AccountIDFromString(s string) (AccountID, error) {
	id, err := parseIdentifier("account ID", s)
	return AccountID{id}, err
}

// Equals checks if two AccountIDs are equal
func (id AccountID) Equals(other AccountID) bool { return id.value == other.value }

// UnmarshalJSON implements json.Unmarshaler
func (id *AccountID) UnmarshalJSON(data []byte) error {
	return id.unmarshalJSON("account ID", data)
}

// UnitID identifies a Unit and its UnitLedgerAccount
type UnitID struct{ identifier }

// NewUnitID creates a new random UnitID
func NewUnitID() UnitID { return UnitID{newIdentifier()} }

// UnitIDFromString parses a UnitID
func UnitIDFromString(s string) (UnitID, error) {
	id, err := parseIdentifier("unit ID", s)
	return UnitID{id}, err
}

// Equals checks if two UnitIDs are equal
func (id UnitID) Equals(other UnitID) bool { return id.value == other.value }

// UnmarshalJSON implements json.Unmarshaler
func (id *UnitID) UnmarshalJSON(data []byte) error {
	return id.unmarshalJSON("unit ID", data)
}

// CondominiumID identifies a Condominium aggregate
type CondominiumID struct{ identifier }

// NewCondominiumID creates a new random CondominiumID
func NewCondominiumID() CondominiumID { return CondominiumID{newIdentifier()} }

// CondominiumIDFromString parses a CondominiumID
func CondominiumIDFromString(s string) (CondominiumID, error) {
	id, err := parseIdentifier("condominium ID", s)
	return CondominiumID{id}, err
}

// Equals checks if two CondominiumIDs are equal
func (id CondominiumID) Equals(other CondominiumID) bool { return id.value == other.value }

// UnmarshalJSON implements json.Unmarshaler
func (id *CondominiumID) UnmarshalJSON(data []byte) error {
	return id.unmarshalJSON("condominium ID", data)
}

// OwnerID identifies an Owner aggregate
type OwnerID struct{ identifier }

// NewOwnerID creates a new random OwnerID
func NewOwnerID() OwnerID { return OwnerID{newIdentifier()} }

// OwnerIDFromString parses an OwnerID
func OwnerIDFromString(s string) (OwnerID, error) {
	id, err := parseIdentifier("owner ID", s)
	return OwnerID{id}, err
}

// Equals checks if two OwnerIDs are equal
func (id OwnerID) Equals(other OwnerID) bool { return id.value == other.value }

// UnmarshalJSON implements json.Unmarshaler
func (id *OwnerID) UnmarshalJSON(data []byte) error {
	return id.unmarshalJSON("owner ID", data)
}

// ExpenseID identifies an Expense aggregate
type ExpenseID struct{ identifier }

// NewExpenseID creates a new random ExpenseID
func NewExpenseID() ExpenseID { return ExpenseID{newIdentifier()} }

// ExpenseIDFromString parses an ExpenseID
func ExpenseIDFromString(s string) (ExpenseID, error) {
	id, err := parseIdentifier("expense ID", s)
	return ExpenseID{id}, err
}

// Equals checks if two ExpenseIDs are equal
func (id ExpenseID) Equals(other ExpenseID) bool { return id.value == other.value }

// UnmarshalJSON implements json.Unmarshaler
func (id *ExpenseID) UnmarshalJSON(data []byte) error {
	return id.unmarshalJSON("expense ID", data)
}

// CategoryID identifies an expense category
type CategoryID struct{ identifier }

// NewCategoryID creates a new random CategoryID
func NewCategoryID() CategoryID { return CategoryID{newIdentifier()} }

// CategoryIDFromString parses a CategoryID
func CategoryIDFromString(s string) (CategoryID, error) {
	id, err := parseIdentifier("category ID", s)
	return CategoryID{id}, err
}

// Equals checks if two CategoryIDs are equal
func (id CategoryID) Equals(other CategoryID) bool { return id.value == other.value }

// FeeItemID identifies a fee line charged to a unit
type FeeItemID struct{ identifier }

// NewFeeItemID creates a new random FeeItemID
func NewFeeItemID() FeeItemID { return FeeItemID{newIdentifier()} }

// FeeItemIDFromString parses a FeeItemID
func FeeItemIDFromString(s string) (FeeItemID, error) {
	id, err := parseIdentifier("fee item ID", s)
	return FeeItemID{id}, err
}

// Equals checks if two FeeItemIDs are equal
func (id FeeItemID) Equals(other FeeItemID) bool { return id.value == other.value }

// PaymentID identifies a payment received on a unit ledger
type PaymentID struct{ identifier }

// NewPaymentID creates a new random PaymentID
func NewPaymentID() PaymentID { return PaymentID{newIdentifier()} }

// PaymentIDFromString parses a PaymentID
func PaymentIDFromString(s string) (PaymentID, error) {
	id, err := parseIdentifier("payment ID", s)
	return PaymentID{id}, err
}

// Equals checks if two PaymentIDs are equal
func (id PaymentID) Equals(other PaymentID) bool { return id.value == other.value }
