package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-assetform/pkg/model"
)

// DateLayouts lists the accepted date formats, tried in order.
var DateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// Kind groups field types by the value they validate to.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindDate    Kind = "date"
)

// check validates one raw value, returning the coerced value or a message.
type check func(label string, required bool, raw any) (any, string)

type rule struct {
	kind  Kind
	check check
}

var rulesByType = map[model.FieldType]rule{
	model.FieldTypeNumber:   {kind: KindNumber, check: checkNumber},
	model.FieldTypeToggle:   {kind: KindBoolean, check: checkToggle},
	model.FieldTypeDate:     {kind: KindDate, check: checkDate},
	model.FieldTypeText:     {kind: KindString, check: checkString},
	model.FieldTypeTextarea: {kind: KindString, check: checkString},
	model.FieldTypeDropdown: {kind: KindString, check: checkString},
	model.FieldTypeLookup:   {kind: KindString, check: checkString},
}

var defaultRule = rule{kind: KindString, check: checkString}

func ruleFor(fieldType model.FieldType) rule {
	if r, ok := rulesByType[fieldType]; ok {
		return r
	}
	return defaultRule
}

// KindOf reports the value kind a field type validates to. Unknown types
// report KindString.
func KindOf(fieldType model.FieldType) Kind {
	return ruleFor(fieldType).kind
}

func requiredMessage(label string) string {
	return label + " is required"
}

func checkString(label string, required bool, raw any) (any, string) {
	value, ok := coerceString(raw)
	if !ok {
		return nil, fmt.Sprintf("%s must be text", label)
	}
	if required && strings.TrimSpace(value) == "" {
		return value, requiredMessage(label)
	}
	return value, ""
}

func checkNumber(label string, required bool, raw any) (any, string) {
	if isBlank(raw) {
		if required {
			return nil, requiredMessage(label)
		}
		return nil, ""
	}
	number, ok := coerceNumber(raw)
	if !ok {
		if required {
			return nil, requiredMessage(label)
		}
		return nil, fmt.Sprintf("%s must be a number", label)
	}
	return number, ""
}

// checkToggle never reports a missing value: an absent toggle is false.
func checkToggle(label string, _ bool, raw any) (any, string) {
	switch v := raw.(type) {
	case nil:
		return false, ""
	case bool:
		return v, ""
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return false, ""
		}
		parsed, err := strconv.ParseBool(trimmed)
		if err != nil {
			return false, fmt.Sprintf("%s must be true or false", label)
		}
		return parsed, ""
	default:
		return false, fmt.Sprintf("%s must be true or false", label)
	}
}

func checkDate(label string, required bool, raw any) (any, string) {
	value, ok := coerceString(raw)
	if !ok {
		return nil, fmt.Sprintf("%s must be a valid date", label)
	}
	if strings.TrimSpace(value) == "" {
		if required {
			return value, requiredMessage(label)
		}
		return value, ""
	}
	if !ValidDate(value) {
		return value, fmt.Sprintf("%s must be a valid date", label)
	}
	return value, ""
}

// ValidDate reports whether value parses with one of DateLayouts.
func ValidDate(value string) bool {
	trimmed := strings.TrimSpace(value)
	for _, layout := range DateLayouts {
		if _, err := time.Parse(layout, trimmed); err == nil {
			return true
		}
	}
	return false
}

func isBlank(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}

func coerceString(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32, int, int32, int64, uint, uint32, uint64, bool:
		return fmt.Sprint(v), true
	default:
		return "", false
	}
}

func coerceNumber(raw any) (float64, bool) {
	var number float64
	switch v := raw.(type) {
	case float64:
		number = v
	case float32:
		number = float64(v)
	case int:
		number = float64(v)
	case int32:
		number = float64(v)
	case int64:
		number = float64(v)
	case uint:
		number = float64(v)
	case uint32:
		number = float64(v)
	case uint64:
		number = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		number = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		number = parsed
	default:
		return 0, false
	}
	if math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, false
	}
	return number, true
}
