package valueobjects

import (
	"fmt"
	"math"

	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

// Money is an amount in minor units (cents) of a single currency.
// Every operation returns a new value.
type Money struct {
	amount   int64
	currency CurrencyCode
}

// NewMoney creates Money from minor units and an already validated currency
func NewMoney(amount int64, currency CurrencyCode) Money {
	return Money{amount: amount, currency: currency}
}

// NewMoneyFromPrimitives creates Money from minor units and a raw currency code
func NewMoneyFromPrimitives(amount int64, currency string) (Money, error) {
	code, err := NewCurrencyCode(currency)
	if err != nil {
		return Money{}, err
	}
	return Money{amount: amount, currency: code}, nil
}

// Zero returns an empty amount in the given currency
func Zero(currency CurrencyCode) Money {
	return Money{currency: currency}
}

// Amount returns the amount in minor units
func (m Money) Amount() int64 {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() CurrencyCode {
	return m.currency
}

// SameCurrency reports whether both values share a currency
func (m Money) SameCurrency(other Money) bool {
	return m.currency.Equals(other.currency)
}

// Add returns m + other. A sum outside the int64 range is an invalid argument.
func (m Money) Add(other Money) (Money, error) {
	if !m.SameCurrency(other) {
		return Money{}, pkgerrors.NewCurrencyMismatchError(m.currency.String(), other.currency.String())
	}
	a, b := m.amount, other.amount
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return Money{}, overflowError("add", m, other)
	}
	return Money{amount: a + b, currency: m.currency}, nil
}

// Subtract returns m - other. A difference outside the int64 range is an
// invalid argument.
func (m Money) Subtract(other Money) (Money, error) {
	if !m.SameCurrency(other) {
		return Money{}, pkgerrors.NewCurrencyMismatchError(m.currency.String(), other.currency.String())
	}
	a, b := m.amount, other.amount
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return Money{}, overflowError("subtract", m, other)
	}
	return Money{amount: a - b, currency: m.currency}, nil
}

func overflowError(op string, m, other Money) *pkgerrors.AppError {
	return pkgerrors.NewInvalidArgumentError("amount out of range").
		WithCode("AMOUNT_OVERFLOW").
		WithDetails(map[string]interface{}{
			"operation": op,
			"left":      m.amount,
			"right":     other.amount,
			"currency":  m.currency.String(),
		})
}

// GreaterThan compares two amounts of the same currency
func (m Money) GreaterThan(other Money) (bool, error) {
	if !m.SameCurrency(other) {
		return false, pkgerrors.NewCurrencyMismatchError(m.currency.String(), other.currency.String())
	}
	return m.amount > other.amount, nil
}

// Negate flips the sign of the amount. The smallest int64 has no positive
// counterpart and is an invalid argument.
func (m Money) Negate() (Money, error) {
	if m.amount == math.MinInt64 {
		return Money{}, overflowError("negate", m, Money{})
	}
	return Money{amount: -m.amount, currency: m.currency}, nil
}

// Equals is true iff amount and currency both match
func (m Money) Equals(other Money) bool {
	return m.amount == other.amount && m.currency.Equals(other.currency)
}

// IsZero checks if the amount is zero
func (m Money) IsZero() bool {
	return m.amount == 0
}

// IsPositive checks if the amount is above zero
func (m Money) IsPositive() bool {
	return m.amount > 0
}

// IsNegative checks if the amount is below zero
func (m Money) IsNegative() bool {
	return m.amount < 0
}

// String formats the amount with two decimals, e.g. "12.34 USD"
func (m Money) String() string {
	sign := ""
	abs := uint64(m.amount)
	if m.amount < 0 {
		sign = "-"
		abs = uint64(-(m.amount + 1)) + 1
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, abs/100, abs%100, m.currency)
}
