package usecase

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/buybuddy/backend/internal/domain"
)

// ValidateURL is the pipeline's only input gate: it accepts absolute http(s)
// URLs with a non-empty host and rejects everything else with ErrInvalidURL.
// Pure and synchronous; downstream stages assume a syntactically valid URL.
func ValidateURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty input", domain.ErrInvalidURL)
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%w: scheme %q not allowed", domain.ErrInvalidURL, parsed.Scheme)
	}

	if parsed.Hostname() == "" {
		return "", fmt.Errorf("%w: missing host", domain.ErrInvalidURL)
	}

	return parsed.String(), nil
}
