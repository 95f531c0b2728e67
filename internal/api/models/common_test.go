package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courierops/pricegrid/internal/api/models"
)

func TestTimestamp_RoundTrip(t *testing.T) {
	in := models.Timestamp(time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC))

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-05T14:30:00Z"`, string(data))

	var out models.Timestamp
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, out.Time().Equal(in.Time()))
}

func TestTimestamp_UnmarshalDateOnly(t *testing.T) {
	var ts models.Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-05"`), &ts))
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), ts.Time())
}

func TestTimestamp_UnmarshalNull(t *testing.T) {
	var ts models.Timestamp
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.True(t, ts.Time().IsZero())
}

func TestTimestamp_UnmarshalMalformed(t *testing.T) {
	// Non-string tokens must error, never panic; a bare number used to
	// slice out of bounds.
	for _, input := range []string{`5`, `12345`, `true`, `{}`, `""`, `"not-a-date"`} {
		var ts models.Timestamp
		err := json.Unmarshal([]byte(input), &ts)
		assert.Error(t, err, "input %s", input)
	}
}
