package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsType(t *testing.T) {
	conflict := NewConcurrencyConflictError("acc-1", 2, 3)

	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{name: "direct match", err: conflict, check: IsConcurrencyConflict, want: true},
		{name: "wrapped with fmt", err: fmt.Errorf("save: %w", conflict), check: IsConcurrencyConflict, want: true},
		{name: "cause of another app error", err: NewStorageError("append", NewNotFoundError("stream")), check: IsNotFound, want: true},
		{name: "other type", err: conflict, check: IsStorage, want: false},
		{name: "plain error", err: errors.New("boom"), check: isAnyAppError, want: false},
		{name: "nil", err: nil, check: IsConcurrencyConflict, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func isAnyAppError(err error) bool {
	return IsAppError(err)
}

func TestConcurrencyConflictDetails(t *testing.T) {
	err := NewConcurrencyConflictError("unit-7", 4, 6)

	assert.Equal(t, http.StatusConflict, err.HTTPStatus)
	assert.Equal(t, "unit-7", err.Details["aggregateID"])
	assert.Equal(t, 4, err.Details["expectedVersion"])
	assert.Equal(t, 6, err.Details["actualVersion"])
	assert.True(t, IsRetryable(err))
	assert.False(t, IsRetryable(NewStorageError("append", errors.New("timeout"))))
}

func TestStorageErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStorageError("append", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil, "ignored"))

	wrapped := Wrap(NewNotFoundError("owner"), "load owner")
	assert.True(t, IsNotFound(wrapped))
	assert.Contains(t, wrapped.Error(), "load owner")

	internal := Wrapf(errors.New("disk full"), "write %s", "snapshot")
	appErr := GetAppError(internal)
	require.NotNil(t, appErr)
	assert.Equal(t, ErrorTypeInternal, appErr.Type)
	assert.Equal(t, "write snapshot", appErr.Message)
}

func TestCurrencyMismatchDetails(t *testing.T) {
	err := NewCurrencyMismatchError("USD", "EUR")

	assert.True(t, IsCurrencyMismatch(err))
	assert.Equal(t, "USD", err.Details["left"])
	assert.Equal(t, "EUR", err.Details["right"])
}
