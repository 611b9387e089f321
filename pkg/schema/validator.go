package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-assetform/pkg/model"
)

// ErrInvalid is matched by every *ValidationError.
var ErrInvalid = errors.New("schema: validation failed")

// FieldRule is the synthesised contract for one field.
type FieldRule struct {
	Key      string
	Label    string
	Type     model.FieldType
	Kind     Kind
	Required bool

	check check
}

// Validator validates FormValues against a synthesised field list.
type Validator struct {
	rules []FieldRule
	index map[string]int
}

// Synthesize builds a Validator for the supplied descriptors. The descriptor
// order is preserved; when a key repeats, the later descriptor's rule wins so
// a validator never holds two rules for one payload property.
func Synthesize(fields []model.FieldDescriptor) *Validator {
	v := &Validator{
		rules: make([]FieldRule, 0, len(fields)),
		index: make(map[string]int, len(fields)),
	}
	for _, field := range fields {
		r := ruleFor(field.FieldType)
		fr := FieldRule{
			Key:      field.FieldKey,
			Label:    model.LabelFor(field),
			Type:     field.FieldType,
			Kind:     r.kind,
			Required: field.IsRequired && r.kind != KindBoolean,
			check:    r.check,
		}
		if idx, ok := v.index[field.FieldKey]; ok {
			v.rules[idx] = fr
			continue
		}
		v.index[field.FieldKey] = len(v.rules)
		v.rules = append(v.rules, fr)
	}
	return v
}

// Rules returns a copy of the field rules in order.
func (v *Validator) Rules() []FieldRule {
	if v == nil {
		return nil
	}
	return append([]FieldRule(nil), v.rules...)
}

// Fields returns the validated keys in order.
func (v *Validator) Fields() []string {
	if v == nil {
		return nil
	}
	keys := make([]string, 0, len(v.rules))
	for _, r := range v.rules {
		keys = append(keys, r.Key)
	}
	return keys
}

// Rule looks up the rule for key.
func (v *Validator) Rule(key string) (FieldRule, bool) {
	if v == nil {
		return FieldRule{}, false
	}
	idx, ok := v.index[key]
	if !ok {
		return FieldRule{}, false
	}
	return v.rules[idx], true
}

// ValidateField validates a single value. Keys without a rule pass through
// unchanged.
func (v *Validator) ValidateField(key string, raw any) (any, string) {
	r, ok := v.Rule(key)
	if !ok {
		return raw, ""
	}
	return r.check(r.Label, r.Required, raw)
}

// Result is the outcome of validating a FormValue.
type Result struct {
	Valid  bool
	Errors map[string]string
	// Values holds the coerced value for every rule, including defaults for
	// absent fields. Keys without a rule are dropped.
	Values model.FormValue
}

// Err returns a *ValidationError when the result is invalid, nil otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Errors: r.Errors}
}

// Validate checks every rule against values. The input map is not mutated.
func (v *Validator) Validate(values model.FormValue) Result {
	result := Result{Valid: true, Values: make(model.FormValue)}
	if v == nil {
		return result
	}
	for _, r := range v.rules {
		coerced, message := r.check(r.Label, r.Required, values[r.Key])
		result.Values[r.Key] = coerced
		if message == "" {
			continue
		}
		if result.Errors == nil {
			result.Errors = make(map[string]string)
		}
		result.Errors[r.Key] = message
		result.Valid = false
	}
	return result
}

// ValidationError carries per-field messages keyed by field key.
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Errors) == 0 {
		return ErrInvalid.Error()
	}
	keys := make([]string, 0, len(e.Errors))
	for key := range e.Errors {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", key, e.Errors[key]))
	}
	return ErrInvalid.Error() + ": " + strings.Join(parts, "; ")
}

// Is matches ErrInvalid.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}
