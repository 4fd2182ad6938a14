package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanwise/invoice-extractor/internal/pipeline"
)

func TestParseRecordPlainJSON(t *testing.T) {
	raw, err := ParseRecord(`{"business_name": "Corner Deli", "total_amount": 143.40}`)
	require.NoError(t, err)
	assert.Equal(t, "Corner Deli", raw["business_name"])
	assert.Equal(t, 143.40, raw["total_amount"])
}

func TestParseRecordStripsMarkdownFences(t *testing.T) {
	raw, err := ParseRecord("```json\n{\"total_amount\": 19.99}\n```")
	require.NoError(t, err)
	assert.Equal(t, 19.99, raw["total_amount"])
}

func TestParseRecordExtractsObjectFromSurroundingText(t *testing.T) {
	raw, err := ParseRecord(`Here is the data you asked for: {"subtotal": 10} hope that helps!`)
	require.NoError(t, err)
	assert.Equal(t, 10.0, raw["subtotal"])
}

func TestParseRecordAcceptsStringNumbers(t *testing.T) {
	raw, err := ParseRecord(`{"total_amount": "143.40", "items": [{"name": "x", "quantity": "2"}]}`)
	require.NoError(t, err)
	assert.Equal(t, "143.40", raw["total_amount"])
}

func TestParseRecordRejectsNonJSON(t *testing.T) {
	_, err := ParseRecord("I could not read the bill, sorry.")

	var se *pipeline.StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, pipeline.ReasonMalformedResponse, se.Reason)
	assert.Equal(t, "I could not read the bill, sorry.", se.Raw, "raw text kept for diagnostics")
}

func TestParseRecordRejectsInvalidJSON(t *testing.T) {
	_, err := ParseRecord(`{"total_amount": 143.40,}`)
	assert.Equal(t, pipeline.ReasonMalformedResponse, pipeline.ReasonOf(err))
}

func TestParseRecordRejectsEmptyObject(t *testing.T) {
	_, err := ParseRecord(`{}`)
	assert.Equal(t, pipeline.ReasonMalformedResponse, pipeline.ReasonOf(err))
}

func TestParseRecordRejectsWrongShapes(t *testing.T) {
	cases := map[string]string{
		"items not an array":    `{"items": {"name": "x"}}`,
		"item not an object":    `{"items": ["just a string"]}`,
		"name not a string":     `{"business_name": [1, 2]}`,
		"total not numberish":   `{"total_amount": {"value": 1}}`,
	}
	for name, input := range cases {
		_, err := ParseRecord(input)
		assert.Equal(t, pipeline.ReasonMalformedResponse, pipeline.ReasonOf(err), name)
	}
}

func TestParseRecordIgnoresUnknownKeys(t *testing.T) {
	raw, err := ParseRecord(`{"total_amount": 5, "model_notes": "extra"}`)
	require.NoError(t, err)
	assert.Contains(t, raw, "model_notes", "unknown keys pass parsing; the shaper drops them")
}
