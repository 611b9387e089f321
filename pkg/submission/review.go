package submission

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-assetform/pkg/model"
)

// EmptyDisplay is shown in place of missing values.
const EmptyDisplay = "—"

// Labeler turns a field key into a display label.
type Labeler func(key string) string

// Entry is one line of the review screen.
type Entry struct {
	Stage   Stage  `json:"stage"`
	Key     string `json:"key"`
	Label   string `json:"label"`
	Display string `json:"display"`
	Value   any    `json:"value"`
}

// Review lists every value collected by the stages in stage order, keys
// sorted within a stage. A key written by several stages is listed once,
// under the stage whose value survives the merge. A nil labeler falls back to
// model.DefaultLabeler.
func Review(stages []StageValue, labeler Labeler) []Entry {
	if labeler == nil {
		labeler = model.DefaultLabeler
	}

	final := make(map[string]int)
	for i, stage := range stages {
		for key := range stage.Values {
			final[key] = i
		}
	}

	var entries []Entry
	for i, stage := range stages {
		for _, key := range sortedKeys(stage.Values) {
			if final[key] != i {
				continue
			}
			value := stage.Values[key]
			entries = append(entries, Entry{
				Stage:   stage.Stage,
				Key:     key,
				Label:   labeler(key),
				Display: Display(value),
				Value:   value,
			})
		}
	}
	return entries
}

// FieldLabeler resolves labels from descriptors, falling back to
// model.DefaultLabeler for unknown keys.
func FieldLabeler(fields ...model.FieldDescriptor) Labeler {
	labels := make(map[string]string, len(fields))
	for _, field := range fields {
		labels[field.FieldKey] = model.LabelFor(field)
	}
	return func(key string) string {
		if label, ok := labels[key]; ok {
			return label
		}
		return model.DefaultLabeler(key)
	}
}

// Display formats a value for review: empty values show EmptyDisplay and
// booleans show Yes or No.
func Display(value any) string {
	switch v := value.(type) {
	case nil:
		return EmptyDisplay
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	case string:
		if strings.TrimSpace(v) == "" {
			return EmptyDisplay
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			return s
		}
		return EmptyDisplay
	}
}

func sortedKeys(values model.FormValue) []string {
	keys := values.Keys()
	sort.Strings(keys)
	return keys
}
