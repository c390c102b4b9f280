package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_FencedJSON(t *testing.T) {
	raw := "Here is the result:\n```json\n{\n  \"image_understanding\": \"a steel pipe\",\n  \"detected_defects\": \"surface corrosion\",\n  \"root_cause\": \"moisture exposure\",\n  \"severity\": \"Medium\",\n  \"recommendations\": \"apply protective coating\",\n  \"confidence\": 0.85\n}\n```\nLet me know if you need more detail."

	res := Normalize(raw)

	require.Empty(t, res.Error)
	assert.Equal(t, "a steel pipe", res.ImageUnderstanding)
	assert.Equal(t, "surface corrosion", res.DetectedDefects)
	assert.Equal(t, "moisture exposure", res.RootCause)
	assert.Equal(t, "medium", res.Severity)
	assert.Equal(t, "apply protective coating", res.Recommendations)
	assert.Equal(t, "0.85", res.Confidence)
}

func TestNormalize_FenceWithoutLanguageTag(t *testing.T) {
	raw := "```\n{\"severity\": \"LOW\", \"detected_defects\": \"none\"}\n```"

	res := Normalize(raw)

	require.Empty(t, res.Error)
	assert.Equal(t, "low", res.Severity)
	assert.Equal(t, "none", res.DetectedDefects)
	assert.Empty(t, res.ImageUnderstanding)
}

func TestNormalize_BareBraces(t *testing.T) {
	raw := `The inspection is complete. {"severity":"HIGH", "detected_defects":"crack along the weld seam"} Hope this helps.`

	res := Normalize(raw)

	require.Empty(t, res.Error)
	assert.Equal(t, "high", res.Severity)
	assert.Equal(t, "crack along the weld seam", res.DetectedDefects)
}

func TestNormalize_NoJSONFallback(t *testing.T) {
	raw := "The image shows a wooden table with a visible scratch on the surface."

	res := Normalize(raw)

	assert.Equal(t, ParseFailedMarker, res.Error)
	assert.Equal(t, raw, res.ImageUnderstanding)
	assert.Empty(t, res.DetectedDefects)
	assert.Empty(t, res.RootCause)
	assert.Empty(t, res.Severity)
	assert.Empty(t, res.Recommendations)
	assert.Empty(t, res.Confidence)
}

func TestNormalize_FallbackTruncatesLongText(t *testing.T) {
	raw := strings.Repeat("x", 1200)

	res := Normalize(raw)

	assert.Equal(t, ParseFailedMarker, res.Error)
	assert.Len(t, res.ImageUnderstanding, 500)
}

func TestNormalize_FallbackKeepsShortTextWhole(t *testing.T) {
	res := Normalize("nope")

	assert.Equal(t, "nope", res.ImageUnderstanding)
	assert.NotEmpty(t, res.Error)
}

func TestNormalize_MissingFieldsDefaultEmpty(t *testing.T) {
	res := Normalize(`{"image_understanding": "a brick wall"}`)

	require.Empty(t, res.Error)
	assert.Equal(t, "a brick wall", res.ImageUnderstanding)
	assert.Empty(t, res.Severity)
	assert.Empty(t, res.Confidence)
}

func TestNormalize_NonScalarFieldFallsBack(t *testing.T) {
	raw := `{"detected_defects": ["crack", "rust"], "severity": "high"}`

	res := Normalize(raw)

	assert.Equal(t, ParseFailedMarker, res.Error)
	assert.Equal(t, raw, res.ImageUnderstanding)
	assert.Empty(t, res.Severity)
}

func TestNormalize_MalformedJSONInFenceFallsThroughToBraces(t *testing.T) {
	raw := "```json\n{broken\n```\nbut later {\"severity\": \"Low\"} appears"

	res := Normalize(raw)

	// The brace scan spans from the first { to the last }, which covers the
	// broken fence content here, so extraction fails entirely.
	assert.Equal(t, ParseFailedMarker, res.Error)
}

func TestNormalize_NumericConfidenceKeepsPrecision(t *testing.T) {
	res := Normalize(`{"confidence": 0.923}`)

	require.Empty(t, res.Error)
	assert.Equal(t, "0.923", res.Confidence)
}

func TestNormalize_EmptyInput(t *testing.T) {
	res := Normalize("")

	assert.Equal(t, ParseFailedMarker, res.Error)
	assert.Empty(t, res.ImageUnderstanding)
}

func TestNormalize_NullFieldTreatedAsAbsent(t *testing.T) {
	res := Normalize(`{"severity": null, "root_cause": "fatigue"}`)

	require.Empty(t, res.Error)
	assert.Empty(t, res.Severity)
	assert.Equal(t, "fatigue", res.RootCause)
}
