package middleware

import (
	"fmt"
	"net/url"
	"strings"
)

// Input validation utilities

// ValidateImageURL checks the image reference from an analyze request. Both
// external URLs and inline data:image references are accepted; they pass
// through to the provider unchanged.
func ValidateImageURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("image_url is required")
	}

	// Inline base64 image data
	if strings.HasPrefix(raw, "data:image") {
		if !strings.Contains(raw, ",") {
			return fmt.Errorf("invalid data URL: missing payload")
		}
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid image_url format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid image_url scheme: %s (allowed: http, https, data:image)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("image_url host cannot be empty")
	}

	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
