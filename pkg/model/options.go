package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OptionsKind tags the shape an options payload had when it was normalised.
type OptionsKind string

const (
	// OptionsEmpty means no payload was configured.
	OptionsEmpty OptionsKind = "empty"
	// OptionsStringList means the payload was a list of plain strings.
	OptionsStringList OptionsKind = "strings"
	// OptionsLabeledPairs means the payload was a list of {label, value} pairs.
	OptionsLabeledPairs OptionsKind = "pairs"
	// OptionsMalformed means a payload was present but could not be read as a
	// list of choices. Items is always empty in that case.
	OptionsMalformed OptionsKind = "malformed"
)

// Option is a single dropdown choice.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// OptionList is the normalised form of a dropdown options payload.
type OptionList struct {
	Kind  OptionsKind
	Items []Option
}

// Malformed reports whether the source payload was unusable.
func (l OptionList) Malformed() bool {
	return l.Kind == OptionsMalformed
}

// Values returns the option values in order.
func (l OptionList) Values() []string {
	out := make([]string, 0, len(l.Items))
	for _, item := range l.Items {
		out = append(out, item.Value)
	}
	return out
}

// Labels returns the option labels in order.
func (l OptionList) Labels() []string {
	out := make([]string, 0, len(l.Items))
	for _, item := range l.Items {
		out = append(out, item.Label)
	}
	return out
}

// Contains reports whether value matches one of the option values.
func (l OptionList) Contains(value string) bool {
	for _, item := range l.Items {
		if item.Value == value {
			return true
		}
	}
	return false
}

// NormalizeOptions resolves an options payload into an OptionList. A list of
// strings becomes label==value pairs, a list of {label, value} objects is
// kept as-is, and anything else (nil, scalars, objects, mixed lists)
// normalises to an empty list. Raw JSON ([]byte, json.RawMessage) is decoded
// first.
func NormalizeOptions(raw any) OptionList {
	switch v := raw.(type) {
	case nil:
		return OptionList{Kind: OptionsEmpty, Items: []Option{}}
	case OptionList:
		return v
	case json.RawMessage:
		return normalizeJSONOptions(v)
	case []byte:
		return normalizeJSONOptions(v)
	case []string:
		items := make([]Option, 0, len(v))
		for _, s := range v {
			items = append(items, Option{Label: s, Value: s})
		}
		return OptionList{Kind: OptionsStringList, Items: items}
	case []Option:
		return OptionList{Kind: OptionsLabeledPairs, Items: append([]Option{}, v...)}
	case []map[string]any:
		generic := make([]any, 0, len(v))
		for _, entry := range v {
			generic = append(generic, entry)
		}
		return normalizeList(generic)
	case []any:
		return normalizeList(v)
	default:
		return malformedOptions()
	}
}

func normalizeJSONOptions(data []byte) OptionList {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return OptionList{Kind: OptionsEmpty, Items: []Option{}}
	}
	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return malformedOptions()
	}
	if decoded == nil {
		return OptionList{Kind: OptionsEmpty, Items: []Option{}}
	}
	return NormalizeOptions(decoded)
}

func normalizeList(list []any) OptionList {
	if len(list) == 0 {
		return OptionList{Kind: OptionsStringList, Items: []Option{}}
	}

	var kind OptionsKind
	items := make([]Option, 0, len(list))
	for _, entry := range list {
		var (
			option Option
			shape  OptionsKind
			ok     bool
		)
		switch e := entry.(type) {
		case string:
			option, shape, ok = Option{Label: e, Value: e}, OptionsStringList, true
		case Option:
			option, shape, ok = e, OptionsLabeledPairs, true
		case map[string]any:
			option, ok = pairFromMap(e)
			shape = OptionsLabeledPairs
		}
		if !ok {
			return malformedOptions()
		}
		if kind == "" {
			kind = shape
		} else if kind != shape {
			return malformedOptions()
		}
		items = append(items, option)
	}
	return OptionList{Kind: kind, Items: items}
}

func pairFromMap(entry map[string]any) (Option, bool) {
	rawLabel, hasLabel := entry["label"]
	rawValue, hasValue := entry["value"]
	if !hasLabel || !hasValue {
		return Option{}, false
	}
	label, ok := scalarString(rawLabel)
	if !ok {
		return Option{}, false
	}
	value, ok := scalarString(rawValue)
	if !ok {
		return Option{}, false
	}
	return Option{Label: label, Value: value}, true
}

func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64, int, int64, bool:
		return fmt.Sprint(s), true
	default:
		return "", false
	}
}

func malformedOptions() OptionList {
	return OptionList{Kind: OptionsMalformed, Items: []Option{}}
}

// ParseOptionList splits comma separated designer input ("Low, Medium, High")
// into plain option strings, dropping blanks.
func ParseOptionList(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// EncodeOptions marshals plain option strings into the raw payload stored on
// a descriptor. An empty list encodes to nil.
func EncodeOptions(options []string) json.RawMessage {
	if len(options) == 0 {
		return nil
	}
	data, err := json.Marshal(options)
	if err != nil {
		return nil
	}
	return data
}
