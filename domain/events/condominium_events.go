package events

import (
	"time"

	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
)

const (
	EventCondominiumRegistered     = "condominium.registered"
	EventCondominiumRenamed        = "condominium.renamed"
	EventCondominiumAddressChanged = "condominium.address_changed"
)

// CondominiumEvent is implemented only by the events a Condominium can apply
type CondominiumEvent interface {
	DomainEvent
	isCondominiumEvent()
}

func putAddress(p Primitives, a valueobjects.Address) {
	p["address_street"] = a.Street()
	p["address_city"] = a.City()
	p["address_postal_code"] = a.PostalCode()
	p["address_country"] = a.Country()
}

func getAddress(p Primitives) (valueobjects.Address, error) {
	street, err := p.GetString("address_street")
	if err != nil {
		return valueobjects.Address{}, err
	}
	city, err := p.GetString("address_city")
	if err != nil {
		return valueobjects.Address{}, err
	}
	postalCode, err := p.GetOptionalString("address_postal_code")
	if err != nil {
		return valueobjects.Address{}, err
	}
	country, err := p.GetOptionalString("address_country")
	if err != nil {
		return valueobjects.Address{}, err
	}
	return valueobjects.NewAddress(street, city, postalCode, country)
}

// CondominiumRegistered is raised when a condominium joins the ledger
type CondominiumRegistered struct {
	BaseEvent
	Name    string
	Address valueobjects.Address
}

// NewCondominiumRegistered creates a CondominiumRegistered event
func NewCondominiumRegistered(id valueobjects.CondominiumID, name string, address valueobjects.Address) CondominiumRegistered {
	return CondominiumRegistered{BaseEvent: NewBaseEvent(id.String()), Name: name, Address: address}
}

func (CondominiumRegistered) EventName() string  { return EventCondominiumRegistered }
func (CondominiumRegistered) isCondominiumEvent() {}

func (e CondominiumRegistered) ToPrimitives() Primitives {
	p := Primitives{"name": e.Name}
	putAddress(p, e.Address)
	return p
}

// CondominiumRegisteredFromPrimitives rebuilds a CondominiumRegistered event
func CondominiumRegisteredFromPrimitives(aggregateID string, payload Primitives, eventID string, occurredOn time.Time) (CondominiumRegistered, error) {
	name, err := payload.GetString("name")
	if err != nil {
		return CondominiumRegistered{}, invalidPayload(EventCondominiumRegistered, err)
	}
	address, err := getAddress(payload)
	if err != nil {
		return CondominiumRegistered{}, invalidPayload(EventCondominiumRegistered, err)
	}
	return CondominiumRegistered{
		BaseEvent: RestoreBaseEvent(aggregateID, eventID, occurredOn),
		Name:      name,
		Address:   address,
	}, nil
}

// CondominiumRenamed is raised when the condominium name changes
type CondominiumRenamed struct {
	BaseEvent
	PreviousName string
	Name         string
}

// NewCondominiumRenamed creates a CondominiumRenamed event
func NewCondominiumRenamed(id valueobjects.CondominiumID, previousName, name string) CondominiumRenamed {
	return CondominiumRenamed{BaseEvent: NewBaseEvent(id.String()), PreviousName: previousName, Name: name}
}

func (CondominiumRenamed) EventName() string  { return EventCondominiumRenamed }
func (CondominiumRenamed) isCondominiumEvent() {}

func (e CondominiumRenamed) ToPrimitives() Primitives {
	return Primitives{"previous_name": e.PreviousName, "name": e.Name}
}

// CondominiumRenamedFromPrimitives rebuilds a CondominiumRenamed event
func CondominiumRenamedFromPrimitives(aggregateID string, payload Primitives, eventID string, occurredOn time.Time) (CondominiumRenamed, error) {
	previous, err := payload.GetOptionalString("previous_name")
	if err != nil {
		return CondominiumRenamed{}, invalidPayload(EventCondominiumRenamed, err)
	}
	name, err := payload.GetString("name")
	if err != nil {
		return CondominiumRenamed{}, invalidPayload(EventCondominiumRenamed, err)
	}
	return CondominiumRenamed{
		BaseEvent:    RestoreBaseEvent(aggregateID, eventID, occurredOn),
		PreviousName: previous,
		Name:         name,
	}, nil
}

// CondominiumAddressChanged is raised when the condominium moves
type CondominiumAddressChanged struct {
	BaseEvent
	Address valueobjects.Address
}

// NewCondominiumAddressChanged creates a CondominiumAddressChanged event
func NewCondominiumAddressChanged(id valueobjects.CondominiumID, address valueobjects.Address) CondominiumAddressChanged {
	return CondominiumAddressChanged{BaseEvent: NewBaseEvent(id.String()), Address: address}
}

func (CondominiumAddressChanged) EventName() string  { return EventCondominiumAddressChanged }
func (CondominiumAddressChanged) isCondominiumEvent() {}

func (e CondominiumAddressChanged) ToPrimitives() Primitives {
	p := Primitives{}
	putAddress(p, e.Address)
	return p
}

// CondominiumAddressChangedFromPrimitives rebuilds a CondominiumAddressChanged event
func CondominiumAddressChangedFromPrimitives(aggregateID string, payload Primitives, eventID string, occurredOn time.Time) (CondominiumAddressChanged, error) {
	address, err := getAddress(payload)
	if err != nil {
		return CondominiumAddressChanged{}, invalidPayload(EventCondominiumAddressChanged, err)
	}
	return CondominiumAddressChanged{
		BaseEvent: RestoreBaseEvent(aggregateID, eventID, occurredOn),
		Address:   address,
	}, nil
}
