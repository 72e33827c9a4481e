package valueobjects

import (
	"strings"

	"github.com/luisriego/MatisseAPI-sub001/pkg/utils"
)

// Email is a validated email address
type Email struct {
	value string
}

// NewEmail validates and normalises an email address
func NewEmail(value string) (Email, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if err := utils.ValidateVar("email", value, "required,email"); err != nil {
		return Email{}, err
	}
	return Email{value: value}, nil
}

// String returns the address
func (e Email) String() string { return e.value }

// Equals compares two addresses
func (e Email) Equals(other Email) bool { return e.value == other.value }

// Phone is an optional E.164 phone number; the zero value means "none"
type Phone struct {
	value string
}

// NewPhone validates a phone number; an empty string yields the zero Phone
func NewPhone(value string) (Phone, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Phone{}, nil
	}
	if err := utils.ValidateVar("phone", value, "e164"); err != nil {
		return Phone{}, err
	}
	return Phone{value: value}, nil
}

// String returns the number, or "" when unset
func (p Phone) String() string { return p.value }

// IsZero reports whether no phone is set
func (p Phone) IsZero() bool { return p.value == "" }

// Equals compares two numbers
func (p Phone) Equals(other Phone) bool { return p.value == other.value }
