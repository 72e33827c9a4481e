package aggregates

import (
	"strings"

	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

// Condominium is a building or complex whose units share expenses
type Condominium struct {
	AggregateRoot
	condominiumID valueobjects.CondominiumID
	name          string
	address       valueobjects.Address
}

func validCondominiumName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", pkgerrors.NewInvalidArgumentError("condominium name cannot be empty")
	}
	return name, nil
}

// RegisterCondominium creates a condominium
func RegisterCondominium(id valueobjects.CondominiumID, name string, address valueobjects.Address) (*Condominium, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewInvalidArgumentError("condominium ID is required")
	}
	name, err := validCondominiumName(name)
	if err != nil {
		return nil, err
	}
	if address.Street() == "" {
		return nil, pkgerrors.NewInvalidArgumentError("condominium address is required")
	}

	c := &Condominium{}
	if err := c.raise(events.NewCondominiumRegistered(id, name, address)); err != nil {
		return nil, err
	}
	return c, nil
}

// ReconstituteCondominium rebuilds a condominium from its stored events
func ReconstituteCondominium(history ...events.DomainEvent) (*Condominium, error) {
	c := &Condominium{}
	if err := replay(&c.AggregateRoot, events.AggregateTypeCondominium, history, c.apply); err != nil {
		return nil, err
	}
	return c, nil
}

// ID returns the typed condominium ID
func (c *Condominium) ID() valueobjects.CondominiumID { return c.condominiumID }

// Name returns the current name
func (c *Condominium) Name() string { return c.name }

// Address returns the current address
func (c *Condominium) Address() valueobjects.Address { return c.address }

// Rename changes the name; the same name records nothing
func (c *Condominium) Rename(name string) error {
	name, err := validCondominiumName(name)
	if err != nil {
		return err
	}
	if name == c.name {
		return nil
	}
	return c.raise(events.NewCondominiumRenamed(c.condominiumID, c.name, name))
}

// ChangeAddress moves the condominium; the same address records nothing
func (c *Condominium) ChangeAddress(address valueobjects.Address) error {
	if address.Street() == "" {
		return pkgerrors.NewInvalidArgumentError("condominium address is required")
	}
	if address.Equals(c.address) {
		return nil
	}
	return c.raise(events.NewCondominiumAddressChanged(c.condominiumID, address))
}

func (c *Condominium) raise(e events.CondominiumEvent) error {
	if err := c.apply(e); err != nil {
		return err
	}
	c.record(e)
	return nil
}

func (c *Condominium) apply(e events.CondominiumEvent) error {
	switch ev := e.(type) {
	case events.CondominiumRegistered:
		if err := c.initialize(ev); err != nil {
			return err
		}
		id, err := valueobjects.CondominiumIDFromString(ev.AggregateID())
		if err != nil {
			return pkgerrors.NewDataIntegrityError("condominium.registered carries an invalid condominium ID").WithCause(err)
		}
		c.condominiumID = id
		c.name = ev.Name
		c.address = ev.Address
	case events.CondominiumRenamed:
		if err := c.requireCreated(ev); err != nil {
			return err
		}
		c.name = ev.Name
	case events.CondominiumAddressChanged:
		if err := c.requireCreated(ev); err != nil {
			return err
		}
		c.address = ev.Address
	default:
		return unrecognizedEvent(events.AggregateTypeCondominium, e)
	}
	return nil
}
