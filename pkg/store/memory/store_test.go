package memory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-assetform/pkg/model"
	"github.com/goliatone/go-assetform/pkg/store"
)

func loadStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	fixture, err := LoadFixture("testdata/catalog.yaml")
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	s, err := NewFromFixture(fixture, opts...)
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return s
}

func TestFixtureDescriptors(t *testing.T) {
	s := loadStore(t)
	ctx := context.Background()

	core, err := s.CoreFields(ctx, "pump")
	if err != nil {
		t.Fatalf("core fields: %v", err)
	}
	if diff := cmp.Diff([]string{"serial_number", "rated_power", "size", "legacy_code"}, core.Keys()); diff != "" {
		t.Fatalf("core keys mismatch (-want +got):\n%s", diff)
	}
	if core.Origin != model.OriginCore || core.OwnerID != "pump" {
		t.Fatalf("unexpected set identity: %s/%s", core.Origin, core.OwnerID)
	}

	size, _ := core.Lookup("size")
	if diff := cmp.Diff([]string{"S", "M", "L"}, size.Choices().Values()); diff != "" {
		t.Fatalf("size options mismatch (-want +got):\n%s", diff)
	}
	serial, _ := core.Lookup("serial_number")
	if !serial.IsVisible {
		t.Fatalf("expected is_visible to default to true")
	}
	legacy, _ := core.Lookup("legacy_code")
	if legacy.IsVisible {
		t.Fatalf("expected legacy_code to stay hidden")
	}

	custom, err := s.FormFields(ctx, "inspection")
	if err != nil {
		t.Fatalf("form fields: %v", err)
	}
	grade, _ := custom.Lookup("grade")
	if diff := cmp.Diff([]string{"Good", "Poor"}, grade.Choices().Labels()); diff != "" {
		t.Fatalf("grade labels mismatch (-want +got):\n%s", diff)
	}
}

func TestFormsArePublishedAndScoped(t *testing.T) {
	s := loadStore(t)
	ctx := context.Background()

	forms, err := s.Forms(ctx, "pump")
	if err != nil {
		t.Fatalf("forms: %v", err)
	}
	var ids []string
	for _, form := range forms {
		ids = append(ids, form.ID)
	}
	if diff := cmp.Diff([]string{"inspection", "commissioning"}, ids); diff != "" {
		t.Fatalf("forms mismatch (-want +got):\n%s", diff)
	}

	none, err := s.Forms(ctx, "valve")
	if err != nil {
		t.Fatalf("forms: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no forms for valve, got %d", len(none))
	}

	if _, err := s.Forms(ctx, "compressor"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFormRulesKeptVerbatim(t *testing.T) {
	s := loadStore(t)
	rules, err := s.FormRules(context.Background(), "inspection")
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected one rule, got %d", len(rules))
	}
	if rules[0].FormID != "inspection" {
		t.Fatalf("expected form id to be stamped, got %q", rules[0].FormID)
	}
	var conditions map[string]any
	if err := json.Unmarshal(rules[0].Conditions, &conditions); err != nil {
		t.Fatalf("decode conditions: %v", err)
	}
	if conditions["operator"] != "empty" {
		t.Fatalf("unexpected conditions: %v", conditions)
	}
}

func TestCreateAndUpdateAsset(t *testing.T) {
	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	clock := created
	s := loadStore(t,
		WithClock(func() time.Time { return clock }),
		WithIDGenerator(func() string { return "asset-1" }),
	)
	ctx := context.Background()

	asset, err := s.CreateAsset(ctx, model.Asset{
		Name:        "P-101",
		AssetTypeID: "pump",
		Data:        model.FormValue{"serial_number": "SN-1"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if asset.ID != "asset-1" || !asset.CreatedAt.Equal(created) {
		t.Fatalf("unexpected created asset: %+v", asset)
	}

	clock = created.Add(time.Hour)
	asset.Data["serial_number"] = "SN-2"
	updated, err := s.UpdateAsset(ctx, asset)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.CreatedAt.Equal(created) || !updated.UpdatedAt.Equal(clock) {
		t.Fatalf("unexpected timestamps: %+v", updated)
	}

	stored, err := s.Asset(ctx, "asset-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Data["serial_number"] != "SN-2" {
		t.Fatalf("expected update to persist, got %v", stored.Data)
	}

	if _, err := s.UpdateAsset(ctx, model.Asset{ID: "missing"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateAssetRejectsUnknownType(t *testing.T) {
	s := New()
	_, err := s.CreateAsset(context.Background(), model.Asset{Name: "x", AssetTypeID: "ghost"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewFromFixtureRejectsDanglingForm(t *testing.T) {
	fixture, err := ParseFixture([]byte(`
forms:
  - id: orphan
    name: Orphan
    asset_type_id: ghost
    is_published: true
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := NewFromFixture(fixture); err == nil {
		t.Fatalf("expected dangling form to be rejected")
	}
}

func TestFixtureKeepsDuplicateKeys(t *testing.T) {
	fixture, err := ParseFixture([]byte(`
asset_types:
  - id: pump
    name: Pump
    core_fields:
      - field_key: serial
        field_type: text
      - field_key: serial
        field_type: number
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	core, _, err := fixture.FieldSets()
	if err != nil {
		t.Fatalf("field sets: %v", err)
	}
	issues := model.ValidateFieldSet(core["pump"])
	var found bool
	for _, issue := range issues {
		if issue.Code == model.IssueDuplicateKey {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected duplicate key issue, got %v", issues)
	}
}
