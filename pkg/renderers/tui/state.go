package tui

import (
	"sort"

	"github.com/goliatone/go-assetform/pkg/model"
)

// State tracks the values collected for one stage together with the error
// messages shown next to each field.
type State struct {
	values model.FormValue
	errors map[string][]string
}

// NewState seeds state from prefilled values and server-side errors. Inputs
// are copied.
func NewState(prefill model.FormValue, errs map[string][]string) *State {
	values := prefill.Clone()
	if values == nil {
		values = make(model.FormValue)
	}
	return &State{values: values, errors: cloneErrors(errs)}
}

// Values returns a copy of the collected values.
func (s *State) Values() model.FormValue {
	return s.values.Clone()
}

// ErrorsFor returns the messages recorded for key.
func (s *State) ErrorsFor(key string) []string {
	return append([]string(nil), s.errors[key]...)
}

// GetValue reads the value stored for key.
func (s *State) GetValue(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// SetValue stores value and clears any errors recorded for key.
func (s *State) SetValue(key string, value any) {
	s.values[key] = value
	delete(s.errors, key)
}

// SetError records message for key, replacing earlier messages.
func (s *State) SetError(key, message string) {
	if s.errors == nil {
		s.errors = make(map[string][]string)
	}
	s.errors[key] = []string{message}
}

// Keys returns the stored keys sorted.
func (s *State) Keys() []string {
	keys := s.values.Keys()
	sort.Strings(keys)
	return keys
}

func cloneErrors(src map[string][]string) map[string][]string {
	out := make(map[string][]string, len(src))
	for key, messages := range src {
		out[key] = append([]string(nil), messages...)
	}
	return out
}
