package aggregates

import (
	"strings"

	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

// Owner is a person who owns one or more units
type Owner struct {
	AggregateRoot
	ownerID valueobjects.OwnerID
	name    string
	email   valueobjects.Email
	phone   valueobjects.Phone
}

// CreateNewOwner registers an owner
func CreateNewOwner(id valueobjects.OwnerID, name string, email valueobjects.Email, phone valueobjects.Phone) (*Owner, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewInvalidArgumentError("owner ID is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.NewInvalidArgumentError("owner name cannot be empty")
	}
	if email.String() == "" {
		return nil, pkgerrors.NewInvalidArgumentError("owner email is required")
	}

	o := &Owner{}
	if err := o.raise(events.NewOwnerCreated(id, name, email, phone)); err != nil {
		return nil, err
	}
	return o, nil
}

// ReconstituteOwner rebuilds an owner from its stored events
func ReconstituteOwner(history ...events.DomainEvent) (*Owner, error) {
	o := &Owner{}
	if err := replay(&o.AggregateRoot, events.AggregateTypeOwner, history, o.apply); err != nil {
		return nil, err
	}
	return o, nil
}

// ID returns the typed owner ID
func (o *Owner) ID() valueobjects.OwnerID { return o.ownerID }

// Name returns the owner's name
func (o *Owner) Name() string { return o.name }

// Email returns the contact email
func (o *Owner) Email() valueobjects.Email { return o.email }

// Phone returns the contact phone, zero when unknown
func (o *Owner) Phone() valueobjects.Phone { return o.phone }

// UpdateContactInfo replaces email and phone; identical values record nothing
func (o *Owner) UpdateContactInfo(email valueobjects.Email, phone valueobjects.Phone) error {
	if email.String() == "" {
		return pkgerrors.NewInvalidArgumentError("owner email is required")
	}
	if email.Equals(o.email) && phone.Equals(o.phone) {
		return nil
	}
	return o.raise(events.NewOwnerContactInfoUpdated(o.ownerID, email, phone))
}

func (o *Owner) raise(e events.OwnerEvent) error {
	if err := o.apply(e); err != nil {
		return err
	}
	o.record(e)
	return nil
}

func (o *Owner) apply(e events.OwnerEvent) error {
	switch ev := e.(type) {
	case events.OwnerCreated:
		if err := o.initialize(ev); err != nil {
			return err
		}
		id, err := valueobjects.OwnerIDFromString(ev.AggregateID())
		if err != nil {
			return pkgerrors.NewDataIntegrityError("owner.created carries an invalid owner ID").WithCause(err)
		}
		o.ownerID = id
		o.name = ev.Name
		o.email = ev.Email
		o.phone = ev.Phone
	case events.OwnerContactInfoUpdated:
		if err := o.requireCreated(ev); err != nil {
			return err
		}
		o.email = ev.Email
		o.phone = ev.Phone
	default:
		return unrecognizedEvent(events.AggregateTypeOwner, e)
	}
	return nil
}
