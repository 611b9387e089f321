package assembler

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-assetform/pkg/model"
)

func descriptor(key string, order int) model.FieldDescriptor {
	return model.FieldDescriptor{
		FieldKey:  key,
		Label:     model.DefaultLabeler(key),
		FieldType: model.FieldTypeText,
		IsVisible: true,
		SortOrder: order,
	}
}

func TestRenderableIsStableAndFiltered(t *testing.T) {
	hidden := descriptor("hidden", 0)
	hidden.IsVisible = false
	system := descriptor("system", 0)
	system.IsSystemField = true

	set := model.FieldSet{Origin: model.OriginCore, Fields: []model.FieldDescriptor{
		descriptor("c", 2),
		descriptor("a", 1),
		hidden,
		descriptor("b", 1),
		system,
		descriptor("d", 0),
	}}

	got := (Stage{Fields: Renderable(set)}).Keys()
	want := []string{"d", "a", "b", "c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("renderable order mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderableCountProperty(t *testing.T) {
	sets := [][]model.FieldDescriptor{
		nil,
		{descriptor("a", 3), descriptor("b", 2)},
		{
			{FieldKey: "x", IsVisible: true, IsSystemField: true},
			{FieldKey: "y", IsVisible: false},
			{FieldKey: "z", IsVisible: true},
		},
	}
	for _, fields := range sets {
		want := 0
		for _, field := range fields {
			if field.IsVisible && !field.IsSystemField {
				want++
			}
		}
		got := Renderable(model.FieldSet{Fields: fields})
		if len(got) != want {
			t.Fatalf("expected %d renderable fields, got %d", want, len(got))
		}
	}
}

func TestLayout(t *testing.T) {
	wide := func(key string) model.FieldDescriptor {
		f := descriptor(key, 0)
		f.ColumnSpan = 2
		return f
	}
	odd := descriptor("odd", 0)
	odd.ColumnSpan = 5

	fields := []model.FieldDescriptor{
		descriptor("a", 0),
		wide("notes"),
		descriptor("b", 0),
		descriptor("c", 0),
		odd,
		wide("summary"),
	}

	rows := Layout(fields)
	var got [][]string
	for _, row := range rows {
		got = append(got, (Stage{Fields: row.Fields}).Keys())
	}
	want := [][]string{{"a"}, {"notes"}, {"b", "c"}, {"odd"}, {"summary"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleOrdersStagesAndReportsCollisions(t *testing.T) {
	core := model.FieldSet{Origin: model.OriginCore, OwnerID: "pump", Fields: []model.FieldDescriptor{
		descriptor("serial_number", 1),
		descriptor("manufacturer", 0),
	}}
	custom := model.FieldSet{Origin: model.OriginCustom, OwnerID: "inspection", Fields: []model.FieldDescriptor{
		descriptor("serial_number", 0),
		descriptor("inspector", 1),
	}}

	core2, observed := observer.New(zap.WarnLevel)
	assembly := New(WithLogger(zap.New(core2))).Assemble(&core, &custom)

	if len(assembly.Stages) != 2 {
		t.Fatalf("expected two stages, got %d", len(assembly.Stages))
	}
	if assembly.Stages[0].Origin != model.OriginCore || assembly.Stages[1].Origin != model.OriginCustom {
		t.Fatalf("stages out of order: %+v", assembly.Stages)
	}
	want := []string{"manufacturer", "serial_number", "serial_number", "inspector"}
	var got []string
	for _, field := range assembly.Fields() {
		got = append(got, field.FieldKey)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	if len(assembly.Issues) != 1 || assembly.Issues[0].Code != model.IssueKeyCollision || assembly.Issues[0].FieldKey != "serial_number" {
		t.Fatalf("expected one collision issue, got %+v", assembly.Issues)
	}
	if observed.Len() != 1 {
		t.Fatalf("expected collision to be logged once, got %d entries", observed.Len())
	}
}

func TestAssembleNilAndEmptySets(t *testing.T) {
	empty := model.FieldSet{Origin: model.OriginCustom, OwnerID: "blank"}
	assembly := Assemble(nil, &empty)
	if len(assembly.Stages) != 1 {
		t.Fatalf("expected only the custom stage, got %d", len(assembly.Stages))
	}
	stage, ok := assembly.Stage(model.OriginCustom)
	if !ok || !stage.Empty() {
		t.Fatalf("expected empty custom stage, got %+v", stage)
	}
	if _, ok := assembly.Stage(model.OriginCore); ok {
		t.Fatalf("did not expect a core stage")
	}
}

func TestAssembleReportsDescriptorIssues(t *testing.T) {
	dropdown := descriptor("size", 0)
	dropdown.FieldType = model.FieldTypeDropdown
	dropdown.Options = json.RawMessage(`{"not":"a list"}`)
	core := model.FieldSet{Origin: model.OriginCore, Fields: []model.FieldDescriptor{dropdown}}

	assembly := Assemble(&core, nil)
	if len(assembly.Issues) != 1 || assembly.Issues[0].Code != model.IssueMalformedOptions {
		t.Fatalf("expected malformed options issue, got %+v", assembly.Issues)
	}
	if stage, _ := assembly.Stage(model.OriginCore); len(stage.Fields) != 1 {
		t.Fatalf("malformed dropdown must still render")
	}

	quiet := New(WithDescriptorChecks(false)).Assemble(&core, nil)
	if len(quiet.Issues) != 0 {
		t.Fatalf("expected descriptor checks to be disabled, got %+v", quiet.Issues)
	}
}
