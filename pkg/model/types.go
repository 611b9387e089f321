package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FieldType enumerates the field kinds a designer can pick. Values outside the
// known set are preserved verbatim and treated as text downstream.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
	FieldTypeDropdown FieldType = "dropdown"
	FieldTypeLookup   FieldType = "lookup"
	FieldTypeToggle   FieldType = "toggle"
	FieldTypeTextarea FieldType = "textarea"
)

// FieldTypes lists the known field types in designer order.
var FieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeNumber,
	FieldTypeDate,
	FieldTypeDropdown,
	FieldTypeLookup,
	FieldTypeToggle,
	FieldTypeTextarea,
}

// Known reports whether t belongs to the closed set of field types.
func (t FieldType) Known() bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeDate, FieldTypeDropdown,
		FieldTypeLookup, FieldTypeToggle, FieldTypeTextarea:
		return true
	default:
		return false
	}
}

// FieldDescriptor models one configurable field. Options and ValidationRules
// hold the raw JSON payloads persisted by the backend.
type FieldDescriptor struct {
	ID              string          `json:"id" yaml:"id"`
	FieldKey        string          `json:"field_key" yaml:"field_key"`
	Label           string          `json:"label" yaml:"label"`
	FieldType       FieldType       `json:"field_type" yaml:"field_type"`
	IsRequired      bool            `json:"is_required" yaml:"is_required"`
	IsReadonly      bool            `json:"is_readonly" yaml:"is_readonly"`
	IsVisible       bool            `json:"is_visible" yaml:"is_visible"`
	IsSystemField   bool            `json:"is_system_field" yaml:"is_system_field"`
	DefaultValue    *string         `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	HelpText        string          `json:"help_text,omitempty" yaml:"help_text,omitempty"`
	Placeholder     string          `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Options         json.RawMessage `json:"options,omitempty" yaml:"-"`
	ValidationRules json.RawMessage `json:"validation_rules,omitempty" yaml:"-"`
	SortOrder       int             `json:"sort_order" yaml:"sort_order"`
	ColumnSpan      int             `json:"column_span,omitempty" yaml:"column_span,omitempty"`
	Section         string          `json:"section,omitempty" yaml:"section,omitempty"`
	Tab             string          `json:"tab,omitempty" yaml:"tab,omitempty"`
}

// Span returns the layout width clamped to the 1..2 grid.
func (f FieldDescriptor) Span() int {
	if f.ColumnSpan == 2 {
		return 2
	}
	return 1
}

// Default returns the configured default value, or "" when unset.
func (f FieldDescriptor) Default() string {
	if f.DefaultValue == nil {
		return ""
	}
	return *f.DefaultValue
}

// HasDefault reports whether a default value was configured.
func (f FieldDescriptor) HasDefault() bool {
	return f.DefaultValue != nil
}

// TypedDefault coerces the configured default by field type: toggles parse as
// booleans, numbers as float64 and every other type keeps the string. Unset
// or unparsable defaults report false.
func (f FieldDescriptor) TypedDefault() (any, bool) {
	if f.DefaultValue == nil {
		return nil, false
	}
	raw := strings.TrimSpace(*f.DefaultValue)
	switch f.FieldType {
	case FieldTypeToggle:
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, false
		}
		return value, true
	case FieldTypeNumber:
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, false
		}
		return value, true
	default:
		return *f.DefaultValue, true
	}
}

// SeedDefaults returns a copy of values where every field without a value
// (absent or nil) carries its typed default. values is not mutated.
func SeedDefaults(fields []FieldDescriptor, values FormValue) FormValue {
	out := make(FormValue, len(values)+len(fields))
	for key, value := range values {
		out[key] = value
	}
	for _, field := range fields {
		if current, ok := out[field.FieldKey]; ok && current != nil {
			continue
		}
		if value, ok := field.TypedDefault(); ok {
			out[field.FieldKey] = value
		}
	}
	return out
}

// Choices resolves the raw options payload into an OptionList.
func (f FieldDescriptor) Choices() OptionList {
	if len(f.Options) == 0 {
		return OptionList{Kind: OptionsEmpty}
	}
	return NormalizeOptions(f.Options)
}

// FormValue maps field keys to the collected values. Values are string,
// float64, bool or nil; the map is always flat.
type FormValue map[string]any

// Clone returns a shallow copy of the value map.
func (v FormValue) Clone() FormValue {
	if v == nil {
		return nil
	}
	out := make(FormValue, len(v))
	for key, value := range v {
		out[key] = value
	}
	return out
}

// Keys returns the value keys in no particular order.
func (v FormValue) Keys() []string {
	keys := make([]string, 0, len(v))
	for key := range v {
		keys = append(keys, key)
	}
	return keys
}
