package sqlstore

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-assetform/pkg/model"
	"github.com/goliatone/go-assetform/pkg/store"
)

var fieldColumnNames = []string{
	"id", "field_key", "label", "field_type", "is_required", "is_readonly", "is_visible",
	"is_system_field", "default_value", "help_text", "placeholder", "options", "validation_rules",
	"sort_order", "column_span", "section", "tab",
}

var fixedNow = time.Date(2024, 3, 9, 10, 30, 0, 0, time.UTC)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	s := New(db,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "asset-1" }),
	)
	return s, mock
}

func TestMigrateRunsEveryStatement(t *testing.T) {
	s, mock := newMockStore(t)
	for _, stmt := range migrations {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func TestCoreFieldsScansDescriptors(t *testing.T) {
	s, mock := newMockStore(t)
	rows := sqlmock.NewRows(fieldColumnNames).
		AddRow("f1", "serial_number", "Serial Number", "text", true, false, true, false,
			nil, "", "", nil, nil, 1, 1, "", "").
		AddRow("f2", "size", "Size", "dropdown", false, false, true, false,
			"M", "Pick one", "", `["S","M","L"]`, nil, 2, 2, "", "")
	mock.ExpectQuery(regexp.QuoteMeta(selectCoreFields)).WithArgs("pump").WillReturnRows(rows)

	set, err := s.CoreFields(context.Background(), "pump")
	if err != nil {
		t.Fatalf("core fields: %v", err)
	}
	if set.Origin != model.OriginCore || set.OwnerID != "pump" {
		t.Fatalf("unexpected set identity: %s/%s", set.Origin, set.OwnerID)
	}
	if diff := cmp.Diff([]string{"serial_number", "size"}, set.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	serial := set.Fields[0]
	if !serial.IsRequired || serial.HasDefault() || len(serial.Options) != 0 {
		t.Fatalf("unexpected serial descriptor: %+v", serial)
	}
	size := set.Fields[1]
	if size.Default() != "M" || size.Span() != 2 || size.HelpText != "Pick one" {
		t.Fatalf("unexpected size descriptor: %+v", size)
	}
	if diff := cmp.Diff([]string{"S", "M", "L"}, size.Choices().Values()); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestCoreFieldsUnknownAssetType(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectCoreFields)).WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(fieldColumnNames))
	mock.ExpectQuery(regexp.QuoteMeta(assetTypeExists)).WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	_, err := s.CoreFields(context.Background(), "ghost")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCoreFieldsEmptyForKnownAssetType(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectCoreFields)).WithArgs("valve").
		WillReturnRows(sqlmock.NewRows(fieldColumnNames))
	mock.ExpectQuery(regexp.QuoteMeta(assetTypeExists)).WithArgs("valve").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	set, err := s.CoreFields(context.Background(), "valve")
	if err != nil {
		t.Fatalf("core fields: %v", err)
	}
	if !set.Empty() {
		t.Fatalf("expected empty set, got %v", set.Keys())
	}
}

func TestFormsReturnsPublishedDefinitions(t *testing.T) {
	s, mock := newMockStore(t)
	rows := sqlmock.NewRows([]string{"id", "name", "description", "asset_type_id", "version", "is_published", "status"}).
		AddRow("inspection", "Inspection", "", "pump", 2, true, "Active")
	mock.ExpectQuery(regexp.QuoteMeta(selectForms)).WithArgs("pump").WillReturnRows(rows)

	forms, err := s.Forms(context.Background(), "pump")
	if err != nil {
		t.Fatalf("forms: %v", err)
	}
	want := []model.FormDefinition{{
		ID: "inspection", Name: "Inspection", AssetTypeID: "pump",
		Version: 2, IsPublished: true, Status: model.LifecycleActive,
	}}
	if diff := cmp.Diff(want, forms); diff != "" {
		t.Fatalf("forms mismatch (-want +got):\n%s", diff)
	}
}

func TestFormNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectForm)).WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "asset_type_id", "version", "is_published", "status"}))

	if _, err := s.Form(context.Background(), "ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutAssetTypeReplacesFields(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(upsertAssetType)).
		WithArgs("pump", "Pump", "", "", "Active").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteCoreFields)).WithArgs("pump").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(insertCoreField)).
		WithArgs("pump", "pump-serial-0", "serial", "Serial", "text",
			true, false, true, false, nil, "", "", nil, nil, 1, 0, "", "", 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	core := model.FieldSet{Fields: []model.FieldDescriptor{{
		FieldKey: "serial", Label: "Serial", FieldType: model.FieldTypeText,
		IsRequired: true, IsVisible: true, SortOrder: 1,
	}}}
	at := model.AssetType{ID: "pump", Name: "Pump", Status: model.LifecycleActive}
	if err := s.PutAssetType(context.Background(), at, core); err != nil {
		t.Fatalf("put asset type: %v", err)
	}
}

func TestPutFormRollsBackOnFieldError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(upsertForm)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteFormFields)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(insertFormField)).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	form := model.FormDefinition{ID: "inspection", Name: "Inspection", AssetTypeID: "pump", Version: 1}
	fields := model.FieldSet{Fields: []model.FieldDescriptor{{FieldKey: "inspector", FieldType: model.FieldTypeLookup}}}
	if err := s.PutForm(context.Background(), form, fields); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCreateAssetInsertsRow(t *testing.T) {
	s, mock := newMockStore(t)
	stamp := fixedNow.Format(time.RFC3339Nano)
	mock.ExpectExec(regexp.QuoteMeta(insertAsset)).
		WithArgs("asset-1", "P-101", "pump", "", "Unit", "Active", "Medium", "Plant 2",
			`{"rated_power":7.5,"serial_number":"SN-1"}`, stamp, stamp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	asset, err := s.CreateAsset(context.Background(), model.Asset{
		Name:           "P-101",
		AssetTypeID:    "pump",
		HierarchyLevel: model.HierarchyUnit,
		Status:         model.AssetActive,
		Criticality:    model.CriticalityMedium,
		Location:       "Plant 2",
		Data:           model.FormValue{"serial_number": "SN-1", "rated_power": 7.5},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if asset.ID != "asset-1" || !asset.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected asset: %+v", asset)
	}
}

func TestUpdateAssetMissingRow(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta(updateAsset)).WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := s.UpdateAsset(context.Background(), model.Asset{ID: "ghost", Name: "x"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateAssetReturnsStoredRecord(t *testing.T) {
	s, mock := newMockStore(t)
	created := fixedNow.Add(-24 * time.Hour).Format(time.RFC3339Nano)
	updated := fixedNow.Format(time.RFC3339Nano)
	mock.ExpectExec(regexp.QuoteMeta(updateAsset)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectAsset)).WithArgs("asset-1").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name", "asset_type_id", "parent_id", "hierarchy_level", "status",
			"criticality", "location", "data", "created_at", "updated_at"}).
			AddRow("asset-1", "P-101", "pump", "", "Unit", "Maintenance", "High", "", `{"serial_number":"SN-2"}`, created, updated),
	)

	asset, err := s.UpdateAsset(context.Background(), model.Asset{
		ID: "asset-1", Name: "P-101", AssetTypeID: "pump",
		HierarchyLevel: model.HierarchyUnit, Status: model.AssetMaintenance, Criticality: model.CriticalityHigh,
		Data: model.FormValue{"serial_number": "SN-2"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if asset.Status != model.AssetMaintenance || asset.Data["serial_number"] != "SN-2" {
		t.Fatalf("unexpected asset: %+v", asset)
	}
	if !asset.UpdatedAt.Equal(fixedNow) || asset.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected timestamps: %+v", asset)
	}
}
