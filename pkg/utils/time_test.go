package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampRoundTripKeepsNanoseconds(t *testing.T) {
	local := time.Date(2024, 3, 9, 14, 30, 5, 123456789, time.FixedZone("BRT", -3*3600))

	formatted := FormatTimestamp(local)
	assert.Equal(t, "2024-03-09T17:30:05.123456789Z", formatted)

	parsed, err := ParseTimestamp(formatted)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(local))
	assert.Equal(t, time.UTC, parsed.Location())
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "date only", input: "2024-02-29", want: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{name: "full timestamp", input: "2024-02-29T10:00:00Z", want: time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC)},
		{name: "garbage", input: "29/02/2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want))
			assert.Equal(t, "2024-02-29", FormatDate(got))
		})
	}
}
