package valueobjects

import (
	"fmt"
	"regexp"

	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// CurrencyCode is an ISO 4217 style three letter code
type CurrencyCode struct {
	code string
}

// Common currencies
var (
	USD = MustCurrencyCode("USD")
	EUR = MustCurrencyCode("EUR")
	BRL = MustCurrencyCode("BRL")
)

// NewCurrencyCode validates and creates a CurrencyCode
func NewCurrencyCode(code string) (CurrencyCode, error) {
	if !currencyCodePattern.MatchString(code) {
		return CurrencyCode{}, pkgerrors.NewInvalidArgumentError(
			fmt.Sprintf("invalid currency code '%s': expected three uppercase letters", code)).
			WithCode("InvalidFormat")
	}
	return CurrencyCode{code: code}, nil
}

// MustCurrencyCode is NewCurrencyCode for compile-time constants
func MustCurrencyCode(code string) CurrencyCode {
	c, err := NewCurrencyCode(code)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the three letter code
func (c CurrencyCode) String() string {
	return c.code
}

// Equals checks if two codes are the same currency
func (c CurrencyCode) Equals(other CurrencyCode) bool {
	return c.code == other.code
}

// IsZero reports whether the code was never set
func (c CurrencyCode) IsZero() bool {
	return c.code == ""
}
