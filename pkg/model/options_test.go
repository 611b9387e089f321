package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeOptions(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		wantKind OptionsKind
		want     []Option
	}{
		{
			name:     "plain strings",
			raw:      []any{"A", "B"},
			wantKind: OptionsStringList,
			want:     []Option{{Label: "A", Value: "A"}, {Label: "B", Value: "B"}},
		},
		{
			name:     "typed strings",
			raw:      []string{"Low", "High"},
			wantKind: OptionsStringList,
			want:     []Option{{Label: "Low", Value: "Low"}, {Label: "High", Value: "High"}},
		},
		{
			name:     "labeled pairs",
			raw:      []any{map[string]any{"label": "X", "value": "x"}},
			wantKind: OptionsLabeledPairs,
			want:     []Option{{Label: "X", Value: "x"}},
		},
		{
			name:     "raw json strings",
			raw:      json.RawMessage(`["A","B"]`),
			wantKind: OptionsStringList,
			want:     []Option{{Label: "A", Value: "A"}, {Label: "B", Value: "B"}},
		},
		{
			name:     "raw json pairs",
			raw:      []byte(`[{"label":"X","value":"x"}]`),
			wantKind: OptionsLabeledPairs,
			want:     []Option{{Label: "X", Value: "x"}},
		},
		{
			name:     "nil",
			raw:      nil,
			wantKind: OptionsEmpty,
			want:     []Option{},
		},
		{
			name:     "json null",
			raw:      json.RawMessage(`null`),
			wantKind: OptionsEmpty,
			want:     []Option{},
		},
		{
			name:     "object is not a list",
			raw:      map[string]any{"label": "X", "value": "x"},
			wantKind: OptionsMalformed,
			want:     []Option{},
		},
		{
			name:     "scalar",
			raw:      "A,B",
			wantKind: OptionsMalformed,
			want:     []Option{},
		},
		{
			name:     "invalid json",
			raw:      json.RawMessage(`[`),
			wantKind: OptionsMalformed,
			want:     []Option{},
		},
		{
			name:     "pair missing value",
			raw:      []any{map[string]any{"label": "X"}},
			wantKind: OptionsMalformed,
			want:     []Option{},
		},
		{
			name:     "mixed shapes",
			raw:      []any{"A", map[string]any{"label": "X", "value": "x"}},
			wantKind: OptionsMalformed,
			want:     []Option{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeOptions(tt.raw)
			if got.Kind != tt.wantKind {
				t.Fatalf("kind = %q, want %q", got.Kind, tt.wantKind)
			}
			if diff := cmp.Diff(tt.want, got.Items); diff != "" {
				t.Fatalf("items mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeOptionsIsIdempotent(t *testing.T) {
	first := NormalizeOptions([]any{map[string]any{"label": "X", "value": "x"}})
	second := NormalizeOptions(first.Items)
	if diff := cmp.Diff(first.Items, second.Items); diff != "" {
		t.Fatalf("normalising pairs twice changed them (-first +second):\n%s", diff)
	}
}

func TestParseOptionList(t *testing.T) {
	got := ParseOptionList(" Low, Medium ,,High ,")
	want := []string{"Low", "Medium", "High"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ParseOptionList mismatch (-want +got):\n%s", diff)
	}

	encoded := EncodeOptions(got)
	if string(encoded) != `["Low","Medium","High"]` {
		t.Fatalf("unexpected encoded options %s", encoded)
	}
	if EncodeOptions(nil) != nil {
		t.Fatalf("expected empty options to encode to nil")
	}
}

func TestFieldDescriptorChoices(t *testing.T) {
	field := FieldDescriptor{FieldType: FieldTypeDropdown, Options: json.RawMessage(`["On","Off"]`)}
	if got := field.Choices().Values(); !cmp.Equal(got, []string{"On", "Off"}) {
		t.Fatalf("unexpected values %v", got)
	}
	if got := (FieldDescriptor{}).Choices(); got.Kind != OptionsEmpty || len(got.Items) != 0 {
		t.Fatalf("expected empty choices, got %#v", got)
	}
}
