package testsupport

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-assetform/pkg/model"
)

// PumpCoreFields returns the core field set of the "pump" asset type used
// across package tests. Fields are deliberately stored out of sort order and
// include a hidden and a system field.
func PumpCoreFields() model.FieldSet {
	return model.FieldSet{
		Origin:  model.OriginCore,
		OwnerID: "pump",
		Fields: []model.FieldDescriptor{
			{ID: "f-power", FieldKey: "rated_power", Label: "Rated Power", FieldType: model.FieldTypeNumber, IsRequired: true, IsVisible: true, SortOrder: 2, HelpText: "Nameplate power in <b>kW</b>"},
			{ID: "f-serial", FieldKey: "serial_number", Label: "Serial Number", FieldType: model.FieldTypeText, IsRequired: true, IsVisible: true, SortOrder: 1},
			{ID: "f-size", FieldKey: "size", Label: "Size", FieldType: model.FieldTypeDropdown, IsVisible: true, SortOrder: 3, Options: json.RawMessage(`["S","M","L"]`)},
			{ID: "f-notes", FieldKey: "notes", Label: "Notes", FieldType: model.FieldTypeTextarea, IsVisible: true, SortOrder: 4, ColumnSpan: 2},
			{ID: "f-legacy", FieldKey: "legacy_code", Label: "Legacy Code", FieldType: model.FieldTypeText, IsVisible: false, SortOrder: 5},
			{ID: "f-sync", FieldKey: "synced_at", Label: "Synced At", FieldType: model.FieldTypeDate, IsVisible: true, IsSystemField: true, SortOrder: 0},
		},
	}
}

// InspectionFormFields returns the custom field set of the "inspection" form.
func InspectionFormFields() model.FieldSet {
	return model.FieldSet{
		Origin:  model.OriginCustom,
		OwnerID: "inspection",
		Fields: []model.FieldDescriptor{
			{ID: "c-inspector", FieldKey: "inspector", Label: "Inspector", FieldType: model.FieldTypeLookup, IsRequired: true, IsVisible: true, SortOrder: 1},
			{ID: "c-date", FieldKey: "inspected_on", Label: "Inspected On", FieldType: model.FieldTypeDate, IsRequired: true, IsVisible: true, SortOrder: 2},
			{ID: "c-passed", FieldKey: "passed", Label: "Passed", FieldType: model.FieldTypeToggle, IsVisible: true, SortOrder: 3},
		},
	}
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// CaptureTemplateOutput executes a render function that writes to an
// io.Writer, returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
