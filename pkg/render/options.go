package render

import "github.com/goliatone/go-assetform/pkg/model"

// RenderOptions describe per-request data that renderers use to customise
// their output without mutating the assembled stage.
type RenderOptions struct {
	// Values pre-populates controls keyed by field key.
	Values model.FormValue
	// Errors surfaces validation feedback keyed by field key. Messages are
	// shown inline next to the matching control.
	Errors map[string][]string
	// FormErrors carries messages that do not belong to a single field, such
	// as a rejected submission.
	FormErrors []string
	// Readonly disables every control regardless of descriptor flags.
	Readonly bool
	// Hidden adds hidden inputs (form id, asset type id) to HTML output.
	Hidden map[string]string
	// OnChange receives edits made through a control. Nil discards them.
	OnChange ChangeFunc
}

// FieldErrors converts a flat validator error map into RenderOptions errors.
func FieldErrors(errs map[string]string) map[string][]string {
	if len(errs) == 0 {
		return nil
	}
	out := make(map[string][]string, len(errs))
	for key, message := range errs {
		out[key] = []string{message}
	}
	return out
}
