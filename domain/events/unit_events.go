package events

import (
	"time"

	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
)

const (
	EventUnitCreated       = "unit.created"
	EventUnitOwnerAssigned = "unit.owner_assigned"
	EventUnitOwnerRemoved  = "unit.owner_removed"
)

// UnitEvent is implemented only by the events a Unit can apply
type UnitEvent interface {
	DomainEvent
	isUnitEvent()
}

// UnitCreated is raised when a unit is added to a condominium
type UnitCreated struct {
	BaseEvent
	CondominiumID valueobjects.CondominiumID
	Identifier    string
}

// NewUnitCreated creates a UnitCreated event
func NewUnitCreated(id valueobjects.UnitID, condominiumID valueobjects.CondominiumID, identifier string) UnitCreated {
	return UnitCreated{BaseEvent: NewBaseEvent(id.String()), CondominiumID: condominiumID, Identifier: identifier}
}

func (UnitCreated) EventName() string { return EventUnitCreated }
func (UnitCreated) isUnitEvent()      {}

func (e UnitCreated) ToPrimitives() Primitives {
	return Primitives{
		"condominium_id": e.CondominiumID.String(),
		"identifier":     e.Identifier,
	}
}

// UnitCreatedFromPrimitives rebuilds a UnitCreated event
func UnitCreatedFromPrimitives(aggregateID string, payload Primitives, eventID string, occurredOn time.Time) (UnitCreated, error) {
	condominiumID, err := parseID(payload, "condominium_id", valueobjects.CondominiumIDFromString)
	if err != nil {
		return UnitCreated{}, invalidPayload(EventUnitCreated, err)
	}
	identifier, err := payload.GetString("identifier")
	if err != nil {
		return UnitCreated{}, invalidPayload(EventUnitCreated, err)
	}
	return UnitCreated{
		BaseEvent:     RestoreBaseEvent(aggregateID, eventID, occurredOn),
		CondominiumID: condominiumID,
		Identifier:    identifier,
	}, nil
}

// UnitOwnerAssigned is raised when an owner takes a unit
type UnitOwnerAssigned struct {
	BaseEvent
	OwnerID valueobjects.OwnerID
}

// NewUnitOwnerAssigned creates a UnitOwnerAssigned event
func NewUnitOwnerAssigned(id valueobjects.UnitID, ownerID valueobjects.OwnerID) UnitOwnerAssigned {
	return UnitOwnerAssigned{BaseEvent: NewBaseEvent(id.String()), OwnerID: ownerID}
}

func (UnitOwnerAssigned) EventName() string { return EventUnitOwnerAssigned }
func (UnitOwnerAssigned) isUnitEvent()      {}

func (e UnitOwnerAssigned) ToPrimitives() Primitives {
	return Primitives{"owner_id": e.OwnerID.String()}
}

// UnitOwnerAssignedFromPrimitives rebuilds a UnitOwnerAssigned event
func UnitOwnerAssignedFromPrimitives(aggregateID string, payload Primitives, eventID string, occurredOn time.Time) (UnitOwnerAssigned, error) {
	ownerID, err := parseID(payload, "owner_id", valueobjects.OwnerIDFromString)
	if err != nil {
		return UnitOwnerAssigned{}, invalidPayload(EventUnitOwnerAssigned, err)
	}
	return UnitOwnerAssigned{BaseEvent: RestoreBaseEvent(aggregateID, eventID, occurredOn), OwnerID: ownerID}, nil
}

// UnitOwnerRemoved is raised when a unit no longer has an owner
type UnitOwnerRemoved struct {
	BaseEvent
	PreviousOwnerID valueobjects.OwnerID
}

// NewUnitOwnerRemoved creates a UnitOwnerRemoved event
func NewUnitOwnerRemoved(id valueobjects.UnitID, previousOwnerID valueobjects.OwnerID) UnitOwnerRemoved {
	return UnitOwnerRemoved{BaseEvent: NewBaseEvent(id.String()), PreviousOwnerID: previousOwnerID}
}

func (UnitOwnerRemoved) EventName() string { return EventUnitOwnerRemoved }
func (UnitOwnerRemoved) isUnitEvent()      {}

func (e UnitOwnerRemoved) ToPrimitives() Primitives {
	return Primitives{"previous_owner_id": e.PreviousOwnerID.String()}
}

// UnitOwnerRemovedFromPrimitives rebuilds a UnitOwnerRemoved event
func UnitOwnerRemovedFromPrimitives(aggregateID string, payload Primitives, eventID string, occurredOn time.Time) (UnitOwnerRemoved, error) {
	ownerID, err := parseID(payload, "previous_owner_id", valueobjects.OwnerIDFromString)
	if err != nil {
		return UnitOwnerRemoved{}, invalidPayload(EventUnitOwnerRemoved, err)
	}
	return UnitOwnerRemoved{BaseEvent: RestoreBaseEvent(aggregateID, eventID, occurredOn), PreviousOwnerID: ownerID}, nil
}
