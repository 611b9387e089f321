package submission

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-assetform/pkg/model"
)

func TestReview(t *testing.T) {
	stages := []StageValue{
		Core(model.FormValue{"serial_number": "SN-1", "rated_power": 7.5, "notes": "", "shared": "core"}),
		Custom(model.FormValue{"passed": false, "inspected_on": nil, "shared": "custom"}),
	}

	got := Review(stages, nil)
	want := []Entry{
		{Stage: StageCore, Key: "notes", Label: "Notes", Display: "—", Value: ""},
		{Stage: StageCore, Key: "rated_power", Label: "Rated Power", Display: "7.5", Value: 7.5},
		{Stage: StageCore, Key: "serial_number", Label: "Serial Number", Display: "SN-1", Value: "SN-1"},
		{Stage: StageCustom, Key: "inspected_on", Label: "Inspected On", Display: "—", Value: nil},
		{Stage: StageCustom, Key: "passed", Label: "Passed", Display: "No", Value: false},
		{Stage: StageCustom, Key: "shared", Label: "Shared", Display: "custom", Value: "custom"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("review mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldLabeler(t *testing.T) {
	labeler := FieldLabeler(model.FieldDescriptor{FieldKey: "sn", Label: "Serial #"})
	if got := labeler("sn"); got != "Serial #" {
		t.Fatalf("expected descriptor label, got %q", got)
	}
	if got := labeler("rated_power"); got != "Rated Power" {
		t.Fatalf("expected fallback label, got %q", got)
	}
}

func TestDisplay(t *testing.T) {
	cases := map[string]struct {
		value any
		want  string
	}{
		"nil":     {nil, "—"},
		"blank":   {"  ", "—"},
		"true":    {true, "Yes"},
		"false":   {false, "No"},
		"integer": {3, "3"},
		"float":   {2.50, "2.5"},
		"text":    {"Pump", "Pump"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := Display(tc.value); got != tc.want {
				t.Fatalf("Display(%#v) = %q, want %q", tc.value, got, tc.want)
			}
		})
	}
}
