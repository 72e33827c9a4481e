package events

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
	"github.com/luisriego/MatisseAPI-sub001/pkg/utils"
)

// Primitives is the flat key-value payload of an event
type Primitives map[string]interface{}

func missingField(key string) error {
	return pkgerrors.NewDeserializationError(fmt.Sprintf("payload field '%s' is missing", key))
}

func wrongType(key, want string, got interface{}) error {
	return pkgerrors.NewDeserializationError(
		fmt.Sprintf("payload field '%s' must be a %s, got %T", key, want, got))
}

// GetString returns a required string field
func (p Primitives) GetString(key string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", missingField(key)
	}
	s, ok := v.(string)
	if !ok {
		return "", wrongType(key, "string", v)
	}
	return s, nil
}

// GetOptionalString returns a string field, "" when absent
func (p Primitives) GetOptionalString(key string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", wrongType(key, "string", v)
	}
	return s, nil
}

// GetInt64 returns an integral field; JSON and DynamoDB decoders produce
// float64 or json.Number so both are accepted
func (p Primitives) GetInt64(key string) (int64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, missingField(key)
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, wrongType(key, "integer", v)
		}
		return int64(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, wrongType(key, "integer", v)
		}
		return i, nil
	default:
		return 0, wrongType(key, "integer", v)
	}
}

// GetTime returns an RFC3339 timestamp field
func (p Primitives) GetTime(key string) (time.Time, error) {
	s, err := p.GetString(key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := utils.ParseTimestamp(s)
	if err != nil {
		return time.Time{}, pkgerrors.NewDeserializationError(
			fmt.Sprintf("payload field '%s' is not an RFC3339 timestamp", key)).WithCause(err)
	}
	return t, nil
}

// GetMoney reads a money value flattened as <prefix>_amount and <prefix>_currency
func (p Primitives) GetMoney(prefix string) (valueobjects.Money, error) {
	amount, err := p.GetInt64(prefix + "_amount")
	if err != nil {
		return valueobjects.Money{}, err
	}
	currency, err := p.GetString(prefix + "_currency")
	if err != nil {
		return valueobjects.Money{}, err
	}
	m, err := valueobjects.NewMoneyFromPrimitives(amount, currency)
	if err != nil {
		return valueobjects.Money{}, pkgerrors.NewDeserializationError(
			fmt.Sprintf("payload field '%s_currency' is invalid", prefix)).WithCause(err)
	}
	return m, nil
}

func (p Primitives) putMoney(prefix string, m valueobjects.Money) {
	p[prefix+"_amount"] = m.Amount()
	p[prefix+"_currency"] = m.Currency().String()
}

func (p Primitives) putTime(key string, t time.Time) {
	p[key] = utils.FormatTimestamp(t)
}

// parseID converts a typed id parse failure into a deserialization error
func parseID[T any](p Primitives, key string, parse func(string) (T, error)) (T, error) {
	var zero T
	s, err := p.GetString(key)
	if err != nil {
		return zero, err
	}
	id, err := parse(s)
	if err != nil {
		return zero, pkgerrors.NewDeserializationError(
			fmt.Sprintf("payload field '%s' is not a valid id", key)).WithCause(err)
	}
	return id, nil
}

// invalidPayload tags an error raised while rebuilding a named event
func invalidPayload(eventName string, err error) error {
	return fmt.Errorf("failed to rebuild %s: %w", eventName, err)
}
