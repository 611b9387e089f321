package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Issue codes reported by descriptor validation.
const (
	IssueInvalidKey       = "invalid_key"
	IssueDuplicateKey     = "duplicate_key"
	IssueLabelLength      = "label_length"
	IssueColumnSpan       = "column_span"
	IssueUnknownType      = "unknown_type"
	IssueMalformedOptions = "malformed_options"
	IssueMissingOptions   = "missing_options"
	IssueKeyCollision     = "key_collision"
)

// ConfigIssue describes a configuration problem with a descriptor. Issues are
// advisory: renderers degrade gracefully instead of refusing the form.
type ConfigIssue struct {
	FieldKey string `json:"field_key"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

func (i ConfigIssue) Error() string {
	if i.FieldKey == "" {
		return "model: " + i.Message
	}
	return fmt.Sprintf("model: field %q: %s", i.FieldKey, i.Message)
}

// ValidateDescriptor checks a single descriptor against the key, label and
// layout constraints.
func ValidateDescriptor(field FieldDescriptor) []ConfigIssue {
	var issues []ConfigIssue
	add := func(code, format string, args ...any) {
		issues = append(issues, ConfigIssue{FieldKey: field.FieldKey, Code: code, Message: fmt.Sprintf(format, args...)})
	}

	if !ValidFieldKey(field.FieldKey) {
		add(IssueInvalidKey, "field key must start with a lowercase letter, contain only lowercase letters, numbers and underscores, and be at most %d characters", MaxFieldKeyLength)
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(field.Label)); n == 0 || n > MaxLabelLength {
		add(IssueLabelLength, "label must be between 1 and %d characters", MaxLabelLength)
	}
	if field.ColumnSpan != 0 && field.ColumnSpan != 1 && field.ColumnSpan != 2 {
		add(IssueColumnSpan, "column span %d is not 1 or 2", field.ColumnSpan)
	}
	if !field.FieldType.Known() {
		add(IssueUnknownType, "field type %q is not recognised, rendered as text", field.FieldType)
	}
	if field.FieldType == FieldTypeDropdown {
		choices := field.Choices()
		switch {
		case choices.Malformed():
			add(IssueMalformedOptions, "dropdown options are not a list of strings or label/value pairs")
		case len(choices.Items) == 0:
			add(IssueMissingOptions, "dropdown has no options")
		}
	}
	return issues
}

// ValidateFieldSet validates every descriptor and reports duplicate keys
// within the set.
func ValidateFieldSet(set FieldSet) []ConfigIssue {
	var issues []ConfigIssue
	seen := make(map[string]struct{}, set.Len())
	for _, field := range set.Fields {
		issues = append(issues, ValidateDescriptor(field)...)
		if _, ok := seen[field.FieldKey]; ok {
			issues = append(issues, ConfigIssue{
				FieldKey: field.FieldKey,
				Code:     IssueDuplicateKey,
				Message:  fmt.Sprintf("field key is defined more than once in %s set %q", set.Origin, set.OwnerID),
			})
			continue
		}
		seen[field.FieldKey] = struct{}{}
	}
	return issues
}
