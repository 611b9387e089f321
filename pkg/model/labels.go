package model

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// DefaultLabeler turns a field key into a display label for review screens
// ("serial_number" → "Serial Number"). Underscores, dashes and camelCase
// boundaries separate words.
func DefaultLabeler(key string) string {
	if key == "" {
		return ""
	}

	words := strings.Fields(strcase.ToDelimited(key, ' '))
	for i, word := range words {
		words[i] = capitalize(word)
	}
	return strings.Join(words, " ")
}

// LabelFor returns the descriptor label, falling back to DefaultLabeler.
func LabelFor(field FieldDescriptor) string {
	if label := strings.TrimSpace(field.Label); label != "" {
		return label
	}
	return DefaultLabeler(field.FieldKey)
}

func capitalize(word string) string {
	if word == "" {
		return ""
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
