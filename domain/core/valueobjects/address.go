package valueobjects

import (
	"strings"

	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

// Address is the postal address of a condominium
type Address struct {
	street     string
	city       string
	postalCode string
	country    string
}

// NewAddress creates an address; street and city are required
func NewAddress(street, city, postalCode, country string) (Address, error) {
	street = strings.TrimSpace(street)
	city = strings.TrimSpace(city)
	if street == "" {
		return Address{}, pkgerrors.NewInvalidArgumentError("address street cannot be empty")
	}
	if city == "" {
		return Address{}, pkgerrors.NewInvalidArgumentError("address city cannot be empty")
	}
	return Address{
		street:     street,
		city:       city,
		postalCode: strings.TrimSpace(postalCode),
		country:    strings.TrimSpace(country),
	}, nil
}

// Street returns the street line
func (a Address) Street() string { return a.street }

// City returns the city
func (a Address) City() string { return a.city }

// PostalCode returns the postal code
func (a Address) PostalCode() string { return a.postalCode }

// Country returns the country
func (a Address) Country() string { return a.country }

// Equals compares all address fields
func (a Address) Equals(other Address) bool {
	return a == other
}

// String renders the address on one line
func (a Address) String() string {
	parts := []string{a.street, a.city}
	if a.postalCode != "" {
		parts = append(parts, a.postalCode)
	}
	if a.country != "" {
		parts = append(parts, a.country)
	}
	return strings.Join(parts, ", ")
}
