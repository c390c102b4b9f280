package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseFailedMarker is stored in ModelResult.Error when no structured payload
// could be recovered from a model reply.
const ParseFailedMarker = "failed to parse structured response from model"

// fallbackPreviewRunes bounds how much raw reply text is kept when extraction
// fails.
const fallbackPreviewRunes = 500

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// Normalize converts a raw model reply into a ModelResult. It is total: any
// input, including garbage, yields a usable report. Extraction tries a fenced
// code block first, then the outermost brace-delimited substring; a candidate
// that parses but holds non-scalar values in recognized fields counts as a
// failed extraction.
func Normalize(raw string) ModelResult {
	if obj, ok := extractJSON(raw); ok {
		if res, err := mapFields(obj); err == nil {
			return res
		}
	}
	return fallback(raw)
}

func extractJSON(text string) (map[string]any, bool) {
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		if obj, ok := parseObject(m[1]); ok {
			return obj, true
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if obj, ok := parseObject(text[start : end+1]); ok {
			return obj, true
		}
	}
	return nil, false
}

func parseObject(candidate string) (map[string]any, bool) {
	dec := json.NewDecoder(strings.NewReader(candidate))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, false
	}
	return obj, true
}

// mapFields copies the six recognized keys into the report, defaulting absent
// ones to empty strings. Severity is case-folded, confidence stringified.
func mapFields(obj map[string]any) (ModelResult, error) {
	var res ModelResult
	fields := []struct {
		key string
		dst *string
	}{
		{"image_understanding", &res.ImageUnderstanding},
		{"detected_defects", &res.DetectedDefects},
		{"root_cause", &res.RootCause},
		{"severity", &res.Severity},
		{"recommendations", &res.Recommendations},
		{"confidence", &res.Confidence},
	}
	for _, f := range fields {
		v, ok := obj[f.key]
		if !ok || v == nil {
			continue
		}
		s, err := scalarString(v)
		if err != nil {
			return ModelResult{}, fmt.Errorf("field %s: %w", f.key, err)
		}
		*f.dst = s
	}
	res.Severity = strings.ToLower(res.Severity)
	return res, nil
}

func scalarString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	default:
		return "", fmt.Errorf("unexpected type %T", v)
	}
}

func fallback(raw string) ModelResult {
	preview := raw
	if r := []rune(raw); len(r) > fallbackPreviewRunes {
		preview = string(r[:fallbackPreviewRunes])
	}
	return ModelResult{
		ImageUnderstanding: preview,
		Error:              ParseFailedMarker,
	}
}
