package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-assetform/pkg/model"
	"github.com/goliatone/go-assetform/pkg/render"
	"github.com/goliatone/go-assetform/pkg/renderers/html"
	"github.com/goliatone/go-assetform/pkg/store"
	"github.com/goliatone/go-assetform/pkg/store/memory"
	"github.com/goliatone/go-assetform/pkg/testsupport"
)

func newCatalog() *memory.Store {
	s := memory.New(memory.WithIDGenerator(func() string { return "asset-1" }))
	s.PutAssetType(model.AssetType{ID: "pump", Name: "Pump"}, testsupport.PumpCoreFields())
	s.PutForm(model.FormDefinition{ID: "inspection", Name: "Inspection", AssetTypeID: "pump", IsPublished: true}, testsupport.InspectionFormFields())
	s.PutForm(model.FormDefinition{ID: "retired", Name: "Retired", AssetTypeID: "pump"}, testsupport.InspectionFormFields())
	return s
}

func newServer(t *testing.T, sink store.AssetSink) (*httptest.Server, *memory.Store) {
	t.Helper()
	catalog := newCatalog()
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("html renderer: %v", err)
	}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	opts := []Option{WithRenderers(registry)}
	if sink == nil {
		opts = append(opts, WithSink(catalog))
	} else {
		opts = append(opts, WithSink(sink))
	}
	srv := httptest.NewServer(New(catalog, opts...).Routes())
	t.Cleanup(srv.Close)
	return srv, catalog
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return resp, data
}

func TestHealth(t *testing.T) {
	srv, _ := newServer(t, nil)
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"ok"`) {
		t.Fatalf("unexpected health response %d: %s", resp.StatusCode, body)
	}
}

func TestListForms(t *testing.T) {
	srv, _ := newServer(t, nil)
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/asset-types/pump/forms", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, body)
	}
	var decoded struct {
		Forms []model.FormDefinition `json:"forms"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.Forms) != 1 || decoded.Forms[0].ID != "inspection" {
		t.Fatalf("expected only the published form, got %+v", decoded.Forms)
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/asset-types/ghost/forms", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestRenderCoreStage(t *testing.T) {
	srv, _ := newServer(t, nil)
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/asset-types/pump/forms/core", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, body)
	}
	if got := resp.Header.Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Fatalf("unexpected content type %q", got)
	}
	html := string(body)
	for _, want := range []string{`data-field-key="serial_number"`, `data-field-key="notes"`, `name="form_id" value="core"`} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in output:\n%s", want, html)
		}
	}
	for _, hidden := range []string{"legacy_code", "synced_at"} {
		if strings.Contains(html, `data-field-key="`+hidden+`"`) {
			t.Fatalf("expected %s to be excluded", hidden)
		}
	}
	if strings.Index(html, "serial_number") > strings.Index(html, "rated_power") {
		t.Fatalf("expected fields in sort order")
	}
}

func TestRenderUnpublishedFormIsNotFound(t *testing.T) {
	srv, _ := newServer(t, nil)
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/asset-types/pump/forms/retired", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestRenderUnknownRenderer(t *testing.T) {
	srv, _ := newServer(t, nil)
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/asset-types/pump/forms/core?renderer=pdf", nil)
	if resp.StatusCode != http.StatusNotAcceptable {
		t.Fatalf("expected 406, got %d", resp.StatusCode)
	}
}

func TestSchemaIncludesFormFields(t *testing.T) {
	srv, _ := newServer(t, nil)
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/asset-types/pump/schema?form_id=inspection", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, body)
	}
	var decoded struct {
		Type       string                    `json:"type"`
		Properties map[string]map[string]any `json:"properties"`
		Required   []string                  `json:"required"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Type != "object" {
		t.Fatalf("unexpected type %q", decoded.Type)
	}
	if diff := cmp.Diff([]string{"serial_number", "rated_power", "inspector", "inspected_on"}, decoded.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	if _, ok := decoded.Properties["passed"]; !ok {
		t.Fatalf("expected custom properties, got %v", decoded.Properties)
	}
}

func TestValidateReportsStageErrors(t *testing.T) {
	srv, _ := newServer(t, nil)
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/asset-types/pump/validate", map[string]any{
		"form_id": "inspection",
		"core":    map[string]any{"rated_power": 4},
		"custom":  map[string]any{"inspector": "Ana", "inspected_on": "yesterday"},
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.StatusCode, body)
	}
	var decoded errorResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]map[string]string{
		"core":   {"serial_number": "Serial Number is required"},
		"custom": {"inspected_on": "Inspected On must be a valid date"},
	}
	if diff := cmp.Diff(want, decoded.Fields); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateMergesStages(t *testing.T) {
	srv, _ := newServer(t, nil)
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/asset-types/pump/validate", map[string]any{
		"form_id": "inspection",
		"core":    map[string]any{"serial_number": "SN-1", "rated_power": "4"},
		"custom":  map[string]any{"inspector": "Ana", "inspected_on": "2024-05-01"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, body)
	}
	var decoded validateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := model.FormValue{
		"serial_number": "SN-1",
		"rated_power":   4.0,
		"size":          "",
		"notes":         "",
		"inspector":     "Ana",
		"inspected_on":  "2024-05-01",
		"passed":        false,
	}
	if diff := cmp.Diff(want, decoded.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateAsset(t *testing.T) {
	srv, catalog := newServer(t, nil)
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/asset-types/pump/assets", map[string]any{
		"name":        "P-101",
		"criticality": "High",
		"core":        map[string]any{"serial_number": "SN-1", "rated_power": 7.5},
		"custom":      map[string]any{"inspector": "Ana", "inspected_on": "2024-05-01", "passed": true},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}
	asset, err := catalog.Asset(context.Background(), "asset-1")
	if err != nil {
		t.Fatalf("stored asset: %v", err)
	}
	if asset.Criticality != model.CriticalityHigh || asset.Data["passed"] != true || asset.Data["rated_power"] != 7.5 {
		t.Fatalf("unexpected asset: %+v", asset)
	}
}

func TestCreateAssetRequiresName(t *testing.T) {
	srv, _ := newServer(t, nil)
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/asset-types/pump/assets", map[string]any{
		"core": map[string]any{"serial_number": "SN-1", "rated_power": 1},
	})
	if resp.StatusCode != http.StatusUnprocessableEntity || !strings.Contains(string(body), "INCOMPLETE") {
		t.Fatalf("expected INCOMPLETE, got %d: %s", resp.StatusCode, body)
	}
}

type rejectingSink struct{}

func (rejectingSink) CreateAsset(context.Context, model.Asset) (model.Asset, error) {
	return model.Asset{}, &store.RejectionError{
		Message: "Quota exceeded",
		Fields:  map[string][]string{"body.data.serial_number": {"already registered"}},
	}
}

func (rejectingSink) UpdateAsset(context.Context, model.Asset) (model.Asset, error) {
	return model.Asset{}, nil
}

func TestCreateAssetMapsRejection(t *testing.T) {
	srv, _ := newServer(t, rejectingSink{})
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/asset-types/pump/assets", map[string]any{
		"name":   "P-101",
		"core":   map[string]any{"serial_number": "SN-1", "rated_power": 7.5},
		"custom": map[string]any{"inspector": "Ana", "inspected_on": "2024-05-01"},
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.StatusCode, body)
	}
	var decoded errorResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := errorResponse{
		Error:  "submission rejected",
		Code:   "REJECTED",
		Fields: map[string]map[string]string{"core": {"serial_number": "already registered"}},
		Form:   []string{"Quota exceeded"},
	}
	if diff := cmp.Diff(want, decoded); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
}
