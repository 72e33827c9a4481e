package events

import (
	"time"

	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
)

const (
	EventOwnerCreated            = "owner.created"
	EventOwnerContactInfoUpdated = "owner.contact_info_updated"
)

// OwnerEvent is implemented only by the events an Owner can apply
type OwnerEvent interface {
	DomainEvent
	isOwnerEvent()
}

func getContact(p Primitives) (valueobjects.Email, valueobjects.Phone, error) {
	rawEmail, err := p.GetString("email")
	if err != nil {
		return valueobjects.Email{}, valueobjects.Phone{}, err
	}
	email, err := valueobjects.NewEmail(rawEmail)
	if err != nil {
		return valueobjects.Email{}, valueobjects.Phone{}, err
	}
	rawPhone, err := p.GetOptionalString("phone")
	if err != nil {
		return valueobjects.Email{}, valueobjects.Phone{}, err
	}
	phone, err := valueobjects.NewPhone(rawPhone)
	if err != nil {
		return valueobjects.Email{}, valueobjects.Phone{}, err
	}
	return email, phone, nil
}

// OwnerCreated is raised when a new owner is registered
type OwnerCreated struct {
	BaseEvent
	Name  string
	Email valueobjects.Email
	Phone valueobjects.Phone
}

// NewOwnerCreated creates an OwnerCreated event
func NewOwnerCreated(id valueobjects.OwnerID, name string, email valueobjects.Email, phone valueobjects.Phone) OwnerCreated {
	return OwnerCreated{BaseEvent: NewBaseEvent(id.String()), Name: name, Email: email, Phone: phone}
}

func (OwnerCreated) EventName() string { return EventOwnerCreated }
func (OwnerCreated) isOwnerEvent()     {}

func (e OwnerCreated) ToPrimitives() Primitives {
	return Primitives{
		"name":  e.Name,
		"email": e.Email.String(),
		"phone": e.Phone.String(),
	}
}

// OwnerCreatedFromPrimitives rebuilds an OwnerCreated event
func OwnerCreatedFromPrimitives(aggregateID string, payload Primitives, eventID string, occurredOn time.Time) (OwnerCreated, error) {
	name, err := payload.GetString("name")
	if err != nil {
		return OwnerCreated{}, invalidPayload(EventOwnerCreated, err)
	}
	email, phone, err := getContact(payload)
	if err != nil {
		return OwnerCreated{}, invalidPayload(EventOwnerCreated, err)
	}
	return OwnerCreated{
		BaseEvent: RestoreBaseEvent(aggregateID, eventID, occurredOn),
		Name:      name,
		Email:     email,
		Phone:     phone,
	}, nil
}

// OwnerContactInfoUpdated is raised when an owner's email or phone changes
type OwnerContactInfoUpdated struct {
	BaseEvent
	Email valueobjects.Email
	Phone valueobjects.Phone
}

// NewOwnerContactInfoUpdated creates an OwnerContactInfoUpdated event
func NewOwnerContactInfoUpdated(id valueobjects.OwnerID, email valueobjects.Email, phone valueobjects.Phone) OwnerContactInfoUpdated {
	return OwnerContactInfoUpdated{BaseEvent: NewBaseEvent(id.String()), Email: email, Phone: phone}
}

func (OwnerContactInfoUpdated) EventName() string { return EventOwnerContactInfoUpdated }
func (OwnerContactInfoUpdated) isOwnerEvent()     {}

func (e OwnerContactInfoUpdated) ToPrimitives() Primitives {
	return Primitives{
		"email": e.Email.String(),
		"phone": e.Phone.String(),
	}
}

// OwnerContactInfoUpdatedFromPrimitives rebuilds an OwnerContactInfoUpdated event
func OwnerContactInfoUpdatedFromPrimitives(aggregateID string, payload Primitives, eventID string, occurredOn time.Time) (OwnerContactInfoUpdated, error) {
	email, phone, err := getContact(payload)
	if err != nil {
		return OwnerContactInfoUpdated{}, invalidPayload(EventOwnerContactInfoUpdated, err)
	}
	return OwnerContactInfoUpdated{
		BaseEvent: RestoreBaseEvent(aggregateID, eventID, occurredOn),
		Email:     email,
		Phone:     phone,
	}, nil
}
