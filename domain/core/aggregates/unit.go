package aggregates

import (
	"fmt"
	"strings"

	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

// Unit is an apartment or shop inside a condominium, with at most one owner
type Unit struct {
	AggregateRoot
	unitID        valueobjects.UnitID
	condominiumID valueobjects.CondominiumID
	identifier    string
	ownerID       valueobjects.OwnerID
}

// CreateNewUnit adds a unit to a condominium
func CreateNewUnit(id valueobjects.UnitID, condominiumID valueobjects.CondominiumID, identifier string) (*Unit, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewInvalidArgumentError("unit ID is required")
	}
	if condominiumID.IsZero() {
		return nil, pkgerrors.NewInvalidArgumentError("condominium ID is required")
	}
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, pkgerrors.NewInvalidArgumentError("unit identifier cannot be empty")
	}

	u := &Unit{}
	if err := u.raise(events.NewUnitCreated(id, condominiumID, identifier)); err != nil {
		return nil, err
	}
	return u, nil
}

// ReconstituteUnit rebuilds a unit from its stored events
func ReconstituteUnit(history ...events.DomainEvent) (*Unit, error) {
	u := &Unit{}
	if err := replay(&u.AggregateRoot, events.AggregateTypeUnit, history, u.apply); err != nil {
		return nil, err
	}
	return u, nil
}

// ID returns the typed unit ID
func (u *Unit) ID() valueobjects.UnitID { return u.unitID }

// CondominiumID returns the condominium the unit belongs to
func (u *Unit) CondominiumID() valueobjects.CondominiumID { return u.condominiumID }

// Identifier returns the human label of the unit, e.g. "101-A"
func (u *Unit) Identifier() string { return u.identifier }

// OwnerID returns the current owner, if any
func (u *Unit) OwnerID() (valueobjects.OwnerID, bool) {
	return u.ownerID, !u.ownerID.IsZero()
}

// AssignOwner sets the owner of the unit
func (u *Unit) AssignOwner(ownerID valueobjects.OwnerID) error {
	if ownerID.IsZero() {
		return pkgerrors.NewInvalidArgumentError("owner ID is required")
	}
	if u.ownerID.Equals(ownerID) {
		return nil
	}
	if !u.ownerID.IsZero() {
		return pkgerrors.NewDomainRuleViolationError(
			fmt.Sprintf("unit %s already belongs to owner %s", u.identifier, u.ownerID)).
			WithCode("UNIT_ALREADY_OWNED")
	}
	return u.raise(events.NewUnitOwnerAssigned(u.unitID, ownerID))
}

// RemoveOwner clears the owner of the unit
func (u *Unit) RemoveOwner() error {
	if u.ownerID.IsZero() {
		return pkgerrors.NewDomainRuleViolationError(
			fmt.Sprintf("unit %s has no owner to remove", u.identifier)).
			WithCode("UNIT_HAS_NO_OWNER")
	}
	return u.raise(events.NewUnitOwnerRemoved(u.unitID, u.ownerID))
}

func (u *Unit) raise(e events.UnitEvent) error {
	if err := u.apply(e); err != nil {
		return err
	}
	u.record(e)
	return nil
}

func (u *Unit) apply(e events.UnitEvent) error {
	switch ev := e.(type) {
	case events.UnitCreated:
		if err := u.initialize(ev); err != nil {
			return err
		}
		id, err := valueobjects.UnitIDFromString(ev.AggregateID())
		if err != nil {
			return pkgerrors.NewDataIntegrityError("unit.created carries an invalid unit ID").WithCause(err)
		}
		u.unitID = id
		u.condominiumID = ev.CondominiumID
		u.identifier = ev.Identifier
	case events.UnitOwnerAssigned:
		if err := u.requireCreated(ev); err != nil {
			return err
		}
		u.ownerID = ev.OwnerID
	case events.UnitOwnerRemoved:
		if err := u.requireCreated(ev); err != nil {
			return err
		}
		u.ownerID = valueobjects.OwnerID{}
	default:
		return unrecognizedEvent(events.AggregateTypeUnit, e)
	}
	return nil
}
