package events

import (
	"fmt"
	"sort"
	"time"
)

// Factory rebuilds a concrete event from its stored primitives
type Factory func(aggregateID string, payload Primitives, eventID string, occurredOn time.Time) (DomainEvent, error)

// RegistryEntry binds an event name to the aggregate that owns it and its factory
type RegistryEntry struct {
	EventName     string
	AggregateType string
	Factory       Factory
}

// Registry is the immutable table of readable event types.
// New event types must be registered here before stored events of that
// type can be read back.
type Registry struct {
	entries map[string]RegistryEntry
}

// NewRegistry builds a registry; a duplicate event name is a programming error and panics
func NewRegistry(entries ...RegistryEntry) *Registry {
	r := &Registry{entries: make(map[string]RegistryEntry, len(entries))}
	for _, e := range entries {
		if e.EventName == "" || e.AggregateType == "" || e.Factory == nil {
			panic(fmt.Sprintf("events: incomplete registry entry %+v", e))
		}
		if _, exists := r.entries[e.EventName]; exists {
			panic(fmt.Sprintf("events: event type '%s' registered twice", e.EventName))
		}
		r.entries[e.EventName] = e
	}
	return r
}

// Lookup finds the entry for an event name
func (r *Registry) Lookup(eventName string) (RegistryEntry, bool) {
	e, ok := r.entries[eventName]
	return e, ok
}

// EventNames lists the registered names in sorted order
func (r *Registry) EventNames() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entry adapts a typed FromPrimitives constructor into a RegistryEntry
func Entry[E DomainEvent](eventName, aggregateType string, fromPrimitives func(string, Primitives, string, time.Time) (E, error)) RegistryEntry {
	return RegistryEntry{
		EventName:     eventName,
		AggregateType: aggregateType,
		Factory: func(aggregateID string, payload Primitives, eventID string, occurredOn time.Time) (DomainEvent, error) {
			e, err := fromPrimitives(aggregateID, payload, eventID, occurredOn)
			if err != nil {
				return nil, err
			}
			return e, nil
		},
	}
}

// DefaultRegistry returns the registry of every event in the ledger
func DefaultRegistry() *Registry {
	return NewRegistry(
		Entry(EventAccountCreated, AggregateTypeAccount, AccountCreatedFromPrimitives),
		Entry(EventAccountMoneyDeposited, AggregateTypeAccount, MoneyDepositedFromPrimitives),
		Entry(EventAccountMoneyWithdrawn, AggregateTypeAccount, MoneyWithdrawnFromPrimitives),
		Entry(EventAccountWithdrawalFailedInsufficientFunds, AggregateTypeAccount, WithdrawalFailedDueToInsufficientFundsFromPrimitives),

		Entry(EventUnitLedgerCreated, AggregateTypeUnitLedgerAccount, UnitLedgerAccountCreatedFromPrimitives),
		Entry(EventUnitLedgerFeeApplied, AggregateTypeUnitLedgerAccount, FeeAppliedToUnitLedgerFromPrimitives),
		Entry(EventUnitLedgerPaymentReceived, AggregateTypeUnitLedgerAccount, PaymentReceivedOnUnitLedgerFromPrimitives),

		Entry(EventCondominiumRegistered, AggregateTypeCondominium, CondominiumRegisteredFromPrimitives),
		Entry(EventCondominiumRenamed, AggregateTypeCondominium, CondominiumRenamedFromPrimitives),
		Entry(EventCondominiumAddressChanged, AggregateTypeCondominium, CondominiumAddressChangedFromPrimitives),

		Entry(EventUnitCreated, AggregateTypeUnit, UnitCreatedFromPrimitives),
		Entry(EventUnitOwnerAssigned, AggregateTypeUnit, UnitOwnerAssignedFromPrimitives),
		Entry(EventUnitOwnerRemoved, AggregateTypeUnit, UnitOwnerRemovedFromPrimitives),

		Entry(EventOwnerCreated, AggregateTypeOwner, OwnerCreatedFromPrimitives),
		Entry(EventOwnerContactInfoUpdated, AggregateTypeOwner, OwnerContactInfoUpdatedFromPrimitives),

		Entry(EventExpenseRecorded, AggregateTypeExpense, ExpenseRecordedFromPrimitives),
	)
}

// AggregateTypeOf returns the aggregate type that owns an event
func AggregateTypeOf(e DomainEvent) string {
	switch e.(type) {
	case AccountEvent:
		return AggregateTypeAccount
	case UnitLedgerEvent:
		return AggregateTypeUnitLedgerAccount
	case CondominiumEvent:
		return AggregateTypeCondominium
	case UnitEvent:
		return AggregateTypeUnit
	case OwnerEvent:
		return AggregateTypeOwner
	case ExpenseEvent:
		return AggregateTypeExpense
	default:
		return ""
	}
}
