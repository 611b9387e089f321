package model

import (
	"errors"
	"fmt"
)

// ErrDuplicateFieldKey is returned when a field key is added twice to the same
// field set.
var ErrDuplicateFieldKey = errors.New("model: duplicate field key")

// Origin identifies where a field set was defined.
type Origin string

const (
	// OriginCore marks asset-type level, mandatory fields.
	OriginCore Origin = "core"
	// OriginCustom marks form-level fields.
	OriginCustom Origin = "custom"
)

// FieldSet is an ordered sequence of descriptors owned by an asset type (core)
// or a form definition (custom).
type FieldSet struct {
	Origin  Origin            `json:"origin" yaml:"origin"`
	OwnerID string            `json:"owner_id" yaml:"owner_id"`
	Fields  []FieldDescriptor `json:"fields" yaml:"fields"`
}

// NewFieldSet builds a field set, rejecting duplicate keys.
func NewFieldSet(origin Origin, ownerID string, fields ...FieldDescriptor) (FieldSet, error) {
	set := FieldSet{Origin: origin, OwnerID: ownerID}
	for _, field := range fields {
		if err := set.Add(field); err != nil {
			return FieldSet{}, err
		}
	}
	return set, nil
}

// Add appends a descriptor. A key already present in the set is rejected so
// the caller can surface the configuration error before persisting.
func (s *FieldSet) Add(field FieldDescriptor) error {
	if s == nil {
		return errors.New("model: field set is nil")
	}
	if _, ok := s.Lookup(field.FieldKey); ok {
		return fmt.Errorf("%w: %q in %s set %q", ErrDuplicateFieldKey, field.FieldKey, s.Origin, s.OwnerID)
	}
	s.Fields = append(s.Fields, field)
	return nil
}

// Len reports the number of descriptors.
func (s FieldSet) Len() int {
	return len(s.Fields)
}

// Empty reports whether the set has no descriptors.
func (s FieldSet) Empty() bool {
	return len(s.Fields) == 0
}

// Lookup finds a descriptor by key.
func (s FieldSet) Lookup(key string) (FieldDescriptor, bool) {
	for _, field := range s.Fields {
		if field.FieldKey == key {
			return field, true
		}
	}
	return FieldDescriptor{}, false
}

// Keys returns the field keys in sequence order.
func (s FieldSet) Keys() []string {
	keys := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		keys = append(keys, field.FieldKey)
	}
	return keys
}

// KeyCollision records a field key present in two field sets.
type KeyCollision struct {
	Key   string
	Left  Origin
	Right Origin
}

func (c KeyCollision) String() string {
	return fmt.Sprintf("field key %q defined in both %s and %s fields", c.Key, c.Left, c.Right)
}

// Union concatenates two field sets in order. Shared keys are not resolved:
// every descriptor is kept and each shared key is reported as a collision so
// callers can flag the configuration instead of overwriting silently.
func Union(left, right FieldSet) ([]FieldDescriptor, []KeyCollision) {
	out := make([]FieldDescriptor, 0, left.Len()+right.Len())
	out = append(out, left.Fields...)
	out = append(out, right.Fields...)

	seen := make(map[string]struct{}, left.Len())
	for _, field := range left.Fields {
		seen[field.FieldKey] = struct{}{}
	}

	var collisions []KeyCollision
	reported := make(map[string]struct{})
	for _, field := range right.Fields {
		if _, ok := seen[field.FieldKey]; !ok {
			continue
		}
		if _, ok := reported[field.FieldKey]; ok {
			continue
		}
		reported[field.FieldKey] = struct{}{}
		collisions = append(collisions, KeyCollision{Key: field.FieldKey, Left: left.Origin, Right: right.Origin})
	}
	return out, collisions
}
