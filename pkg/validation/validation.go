package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

var (
	// ErrInvalidInput indicates the input failed validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidRange is returned for a chart range outside the supported set
	ErrInvalidRange = errors.New("invalid range")

	// Intent targets are switch or path identifiers such as "s1", "path-2" or "of:0000000000000001"
	targetRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_:.-]{0,127}$`)
)

// ranges maps the accepted chart range tokens to their window length.
var ranges = map[string]time.Duration{
	"10s": 10 * time.Second,
	"1m":  time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
}

// Ranges returns the accepted range tokens, shortest first.
func Ranges() []string {
	return []string{"10s", "1m", "5m", "15m", "30m", "1h"}
}

// ParseRange resolves a range token. An empty token selects def.
func ParseRange(token, def string) (time.Duration, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		token = def
	}
	d, ok := ranges[token]
	if !ok {
		return 0, fmt.Errorf("%w %q: must be one of %s", ErrInvalidRange, token, strings.Join(Ranges(), ", "))
	}
	return d, nil
}

// IsRange reports whether token is an accepted range.
func IsRange(token string) bool {
	_, ok := ranges[token]
	return ok
}

// SanitizeString removes potentially dangerous characters and trims whitespace
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	var builder strings.Builder
	for _, r := range input {
		if !unicode.IsControl(r) || r == '\n' || r == '\t' {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

// ValidateTarget checks an optional intent target. Empty is allowed.
func ValidateTarget(target string) error {
	if target == "" {
		return nil
	}
	if !targetRegex.MatchString(target) {
		return fmt.Errorf("%w: target must start with a letter or digit and contain only letters, digits, '_', ':', '.' or '-'", ErrInvalidInput)
	}
	return nil
}

// ClampLimit bounds a listing size to [1, max], using def for non-positive input.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		limit = def
	}
	if max > 0 && limit > max {
		limit = max
	}
	if limit < 1 {
		limit = 1
	}
	return limit
}
