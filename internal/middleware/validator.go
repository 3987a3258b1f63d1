package middleware

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const CodeInvalidInput = "VALIDATION_ERROR"

var (
	idPattern  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)
	orgPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// ValidateID checks a path id (uuid or slug).
func ValidateID(kind, id string) error {
	if id == "" {
		return fmt.Errorf("%s id cannot be empty", kind)
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid %s id format", kind)
	}
	return nil
}

func ValidateOrgID(org string) error {
	if org == "" {
		return fmt.Errorf("organization id cannot be empty")
	}
	if !orgPattern.MatchString(org) {
		return fmt.Errorf("invalid organization id format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ParseLimit reads the limit query value. Empty means 0, which the ranker treats
// as its default.
func ParseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("limit must be a non-negative integer")
	}
	return n, nil
}

// ParseMinScore reads the minScore query value in [0,100]. Empty means no filter.
func ParseMinScore(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > 100 {
		return 0, fmt.Errorf("minScore must be a number between 0 and 100")
	}
	return v, nil
}

// SanitizeString drops NUL and control characters other than tab and newline.
func SanitizeString(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
