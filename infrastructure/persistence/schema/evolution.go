package schema

import (
	"fmt"
	"sort"

	"github.com/luisriego/MatisseAPI-sub001/domain/events"
)

// InitialVersion is the schema version of an event type with no upcasters
const InitialVersion = 1

// UpcastFunc transforms a stored payload from one schema version to the next
type UpcastFunc func(payload events.Primitives) (events.Primitives, error)

// Upcaster moves payloads of one event type from FromVersion to FromVersion+1
type Upcaster struct {
	EventType   string
	FromVersion int
	Description string
	Up          UpcastFunc
}

// Upcasters manages payload schema evolution per event type.
// Stored events keep the schema version they were written with; reading
// upgrades them step by step to the current version before the event
// factory sees them.
type Upcasters struct {
	chains map[string]map[int]Upcaster
}

// NewUpcasters creates an empty set where every event type is at InitialVersion
func NewUpcasters() *Upcasters {
	return &Upcasters{chains: make(map[string]map[int]Upcaster)}
}

// Register adds one step to the chain of an event type
func (u *Upcasters) Register(upcaster Upcaster) error {
	if upcaster.EventType == "" {
		return fmt.Errorf("invalid upcaster: event type is required")
	}
	if upcaster.FromVersion < InitialVersion {
		return fmt.Errorf("invalid upcaster: from version must be at least %d", InitialVersion)
	}
	if upcaster.Up == nil {
		return fmt.Errorf("invalid upcaster: transform is required")
	}

	chain := u.chains[upcaster.EventType]
	if chain == nil {
		chain = make(map[int]Upcaster)
		u.chains[upcaster.EventType] = chain
	}
	if _, exists := chain[upcaster.FromVersion]; exists {
		return fmt.Errorf("upcaster for %s from %d to %d already exists",
			upcaster.EventType, upcaster.FromVersion, upcaster.FromVersion+1)
	}
	chain[upcaster.FromVersion] = upcaster
	return nil
}

// CurrentVersion returns the version new events of this type are written with
func (u *Upcasters) CurrentVersion(eventType string) int {
	version := InitialVersion
	for {
		if _, ok := u.chains[eventType][version]; !ok {
			return version
		}
		version++
	}
}

// Upcast upgrades a payload written at fromVersion to the current version
func (u *Upcasters) Upcast(eventType string, fromVersion int, payload events.Primitives) (events.Primitives, error) {
	if fromVersion < InitialVersion {
		fromVersion = InitialVersion
	}
	current := u.CurrentVersion(eventType)
	if fromVersion > current {
		return nil, fmt.Errorf("%s payload has schema version %d, newer than supported %d",
			eventType, fromVersion, current)
	}

	for version := fromVersion; version < current; version++ {
		step := u.chains[eventType][version]
		upgraded, err := step.Up(payload)
		if err != nil {
			return nil, fmt.Errorf("upcast %s %d->%d failed: %w", eventType, version, version+1, err)
		}
		payload = upgraded
	}
	return payload, nil
}

// History lists the registered steps of an event type in order
func (u *Upcasters) History(eventType string) []Upcaster {
	chain := u.chains[eventType]
	steps := make([]Upcaster, 0, len(chain))
	for _, step := range chain {
		steps = append(steps, step)
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].FromVersion < steps[j].FromVersion })
	return steps
}

// RenameField returns an UpcastFunc that moves a payload key
func RenameField(from, to string) UpcastFunc {
	return func(payload events.Primitives) (events.Primitives, error) {
		out := make(events.Primitives, len(payload))
		for k, v := range payload {
			out[k] = v
		}
		if v, ok := out[from]; ok {
			out[to] = v
			delete(out, from)
		}
		return out, nil
	}
}

// DefaultField returns an UpcastFunc that fills a key missing from older payloads
func DefaultField(key string, value interface{}) UpcastFunc {
	return func(payload events.Primitives) (events.Primitives, error) {
		out := make(events.Primitives, len(payload)+1)
		for k, v := range payload {
			out[k] = v
		}
		if _, ok := out[key]; !ok {
			out[key] = value
		}
		return out, nil
	}
}

// DefaultUpcasters returns the upcasters of the ledger; every event type
// is still at its initial schema
func DefaultUpcasters() *Upcasters {
	return NewUpcasters()
}
