package model

import (
	"regexp"
	"strings"
)

const (
	// MaxFieldKeyLength bounds field keys.
	MaxFieldKeyLength = 50
	// MaxLabelLength bounds display labels.
	MaxLabelLength = 100
)

var (
	fieldKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	nonAlnumPattern = regexp.MustCompile(`[^a-z0-9\s]`)
)

// ValidFieldKey reports whether key matches [a-z][a-z0-9_]* within the length
// limit.
func ValidFieldKey(key string) bool {
	return len(key) <= MaxFieldKeyLength && fieldKeyPattern.MatchString(key)
}

// KeyFromLabel derives a field key from a display label: "Serial Number (SN)"
// becomes "serial_number_sn". Words split on whitespace only, so digits stay
// attached to their word ("Motor2 Speed" becomes "motor2_speed"). Leading
// digits are dropped so the result starts with a letter; the key is truncated
// to MaxFieldKeyLength.
func KeyFromLabel(label string) string {
	cleaned := nonAlnumPattern.ReplaceAllString(strings.ToLower(label), "")
	key := strings.Join(strings.Fields(cleaned), "_")
	key = strings.TrimLeft(key, "0123456789_")
	if len(key) > MaxFieldKeyLength {
		key = strings.TrimRight(key[:MaxFieldKeyLength], "_")
	}
	return key
}
