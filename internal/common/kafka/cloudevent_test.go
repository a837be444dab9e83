package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloudEvent_Envelope(t *testing.T) {
	ce, err := NewCloudEvent("rider-web", "rider.fare_quoted", map[string]any{"estimatedFare": 232})
	require.NoError(t, err)

	raw, err := json.Marshal(ce)
	require.NoError(t, err)

	parsed, err := ParseCloudEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, "1.0", parsed.SpecVersion)
	assert.Equal(t, ce.ID, parsed.ID)
	assert.Equal(t, "rider.fare_quoted", parsed.Type)

	var data struct {
		EstimatedFare float64 `json:"estimatedFare"`
	}
	require.NoError(t, parsed.ParseData(&data))
	assert.Equal(t, 232.0, data.EstimatedFare)
}

func TestParseCloudEvent_Rejects(t *testing.T) {
	_, err := ParseCloudEvent([]byte("{"))
	assert.Error(t, err)

	_, err = ParseCloudEvent([]byte(`{"specversion":"1.0","id":"x"}`))
	assert.Error(t, err, "an event without a type cannot be routed")
}
