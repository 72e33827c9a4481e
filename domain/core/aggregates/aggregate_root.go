package aggregates

import (
	"fmt"

	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

// AggregateRoot is embedded by every event-sourced aggregate.
// It owns the identity, the count of applied events and the buffer of
// events recorded since the aggregate was loaded.
type AggregateRoot struct {
	id      string
	version int
	pending []events.DomainEvent
}

// AggregateID returns the aggregate ID, empty until the creation event is applied
func (a *AggregateRoot) AggregateID() string {
	return a.id
}

// Version returns the number of events applied so far, pending ones included
func (a *AggregateRoot) Version() int {
	return a.version
}

// PullDomainEvents returns the recorded events oldest first and clears the buffer
func (a *AggregateRoot) PullDomainEvents() []events.DomainEvent {
	pulled := a.pending
	a.pending = nil
	return pulled
}

// HasPendingEvents reports whether anything was recorded since the last pull
func (a *AggregateRoot) HasPendingEvents() bool {
	return len(a.pending) > 0
}

// record appends an already applied event to the pending buffer
func (a *AggregateRoot) record(e events.DomainEvent) {
	a.version++
	a.pending = append(a.pending, e)
}

func (a *AggregateRoot) initialized() bool {
	return a.id != ""
}

// initialize establishes identity from the creation event
func (a *AggregateRoot) initialize(e events.DomainEvent) error {
	if a.initialized() {
		return pkgerrors.NewDataIntegrityError(
			fmt.Sprintf("%s applied to aggregate %s which already exists", e.EventName(), a.id))
	}
	if e.AggregateID() == "" {
		return pkgerrors.NewDataIntegrityError(fmt.Sprintf("%s has no aggregate id", e.EventName()))
	}
	a.id = e.AggregateID()
	return nil
}

// requireCreated guards every non-creation event
func (a *AggregateRoot) requireCreated(e events.DomainEvent) error {
	if !a.initialized() {
		return pkgerrors.NewDataIntegrityError(
			fmt.Sprintf("%s cannot be the first event of aggregate %s", e.EventName(), e.AggregateID()))
	}
	return nil
}

func unrecognizedEvent(aggregateType string, e events.DomainEvent) error {
	return pkgerrors.NewDataIntegrityError(
		fmt.Sprintf("event %s (%T) cannot be applied to %s", e.EventName(), e, aggregateType))
}

// replay rebuilds state from history without recording anything.
// Each event must belong to E and to the aggregate identified by the first one.
func replay[E events.DomainEvent](root *AggregateRoot, aggregateType string, history []events.DomainEvent, apply func(E) error) error {
	if len(history) == 0 {
		return pkgerrors.NewInvalidArgumentError(
			fmt.Sprintf("cannot reconstitute %s from an empty history", aggregateType))
	}

	for i, raw := range history {
		if raw == nil {
			return pkgerrors.NewDataIntegrityError(fmt.Sprintf("nil event at position %d of %s history", i, aggregateType))
		}
		e, ok := raw.(E)
		if !ok {
			return unrecognizedEvent(aggregateType, raw)
		}
		if root.initialized() && e.AggregateID() != root.id {
			return pkgerrors.NewDataIntegrityError(
				fmt.Sprintf("event %s belongs to aggregate %s, not %s", e.EventID(), e.AggregateID(), root.id))
		}
		if err := apply(e); err != nil {
			return err
		}
		root.version++
	}

	root.pending = nil
	return nil
}

func requirePositive(what string, amount valueobjects.Money) error {
	if !amount.IsPositive() {
		return pkgerrors.NewInvalidArgumentError(fmt.Sprintf("%s must be positive, got %s", what, amount))
	}
	return nil
}
