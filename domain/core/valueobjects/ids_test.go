package valueobjects

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

func TestNewUnitID(t *testing.T) {
	id := NewUnitID()

	assert.NotEmpty(t, id.String())
	assert.False(t, id.IsZero())

	_, err := uuid.Parse(id.String())
	assert.NoError(t, err)
	assert.False(t, id.Equals(NewUnitID()))
}

func TestUnitIDFromString(t *testing.T) {
	validUUID := uuid.New().String()

	tests := []struct {
		name    string
		input   string
		wantErr bool
		errMsg  string
	}{
		{
			name:  "valid UUID string",
			input: validUUID,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
			errMsg:  "unit ID cannot be empty",
		},
		{
			name:    "invalid UUID format",
			input:   "not-a-uuid",
			wantErr: true,
			errMsg:  "unit ID must be a valid UUID",
		},
		{
			name:    "whitespace only",
			input:   "   ",
			wantErr: true,
			errMsg:  "unit ID must be a valid UUID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := UnitIDFromString(tt.input)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.True(t, pkgerrors.IsInvalidArgument(err))
				assert.True(t, id.IsZero())
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.input, id.String())
			}
		})
	}
}

func TestTypedIDsParse(t *testing.T) {
	raw := uuid.New().String()

	account, err := AccountIDFromString(raw)
	require.NoError(t, err)
	condo, err := CondominiumIDFromString(raw)
	require.NoError(t, err)
	owner, err := OwnerIDFromString(raw)
	require.NoError(t, err)
	expense, err := ExpenseIDFromString(raw)
	require.NoError(t, err)
	category, err := CategoryIDFromString(raw)
	require.NoError(t, err)
	fee, err := FeeItemIDFromString(raw)
	require.NoError(t, err)
	payment, err := PaymentIDFromString(raw)
	require.NoError(t, err)

	for _, s := range []string{
		account.String(), condo.String(), owner.String(), expense.String(),
		category.String(), fee.String(), payment.String(),
	} {
		assert.Equal(t, raw, s)
	}
}

func TestIDJSON(t *testing.T) {
	original := NewOwnerID()

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded OwnerID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, original.Equals(decoded))

	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`42`), &decoded))
}
