package memory

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-assetform/pkg/model"
)

// Fixture is the YAML catalog seed: asset types with their core fields and
// form definitions with their custom fields.
type Fixture struct {
	AssetTypes []AssetTypeFixture `yaml:"asset_types"`
	Forms      []FormFixture      `yaml:"forms"`
}

// AssetTypeFixture declares an asset type and its core fields.
type AssetTypeFixture struct {
	model.AssetType `yaml:",inline"`
	CoreFields      []FieldFixture `yaml:"core_fields"`
}

// FormFixture declares a form definition and its custom fields.
type FormFixture struct {
	model.FormDefinition `yaml:",inline"`
	Fields               []FieldFixture `yaml:"fields"`
	Rules                []RuleFixture  `yaml:"rules"`
}

// RuleFixture declares a stored form rule. Conditions and actions are kept
// verbatim.
type RuleFixture struct {
	model.FormRule `yaml:",inline"`
	Conditions     any `yaml:"conditions"`
	Actions        any `yaml:"actions"`
}

// FieldFixture mirrors model.FieldDescriptor with YAML-friendly options.
// is_visible defaults to true when omitted.
type FieldFixture struct {
	ID              string          `yaml:"id"`
	FieldKey        string          `yaml:"field_key"`
	Label           string          `yaml:"label"`
	FieldType       model.FieldType `yaml:"field_type"`
	IsRequired      bool            `yaml:"is_required"`
	IsReadonly      bool            `yaml:"is_readonly"`
	IsVisible       *bool           `yaml:"is_visible"`
	IsSystemField   bool            `yaml:"is_system_field"`
	DefaultValue    *string         `yaml:"default_value"`
	HelpText        string          `yaml:"help_text"`
	Placeholder     string          `yaml:"placeholder"`
	Options         any             `yaml:"options"`
	ValidationRules any             `yaml:"validation_rules"`
	SortOrder       int             `yaml:"sort_order"`
	ColumnSpan      int             `yaml:"column_span"`
	Section         string          `yaml:"section"`
	Tab             string          `yaml:"tab"`
}

// LoadFixture reads and parses a YAML catalog file.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("memory: read fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes a YAML catalog.
func ParseFixture(data []byte) (Fixture, error) {
	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return Fixture{}, fmt.Errorf("memory: decode fixture: %w", err)
	}
	return fixture, nil
}

// Descriptor converts the fixture into a descriptor, encoding options and
// validation rules as raw JSON.
func (f FieldFixture) Descriptor() (model.FieldDescriptor, error) {
	field := model.FieldDescriptor{
		ID:            f.ID,
		FieldKey:      f.FieldKey,
		Label:         f.Label,
		FieldType:     f.FieldType,
		IsRequired:    f.IsRequired,
		IsReadonly:    f.IsReadonly,
		IsVisible:     f.IsVisible == nil || *f.IsVisible,
		IsSystemField: f.IsSystemField,
		DefaultValue:  f.DefaultValue,
		HelpText:      f.HelpText,
		Placeholder:   f.Placeholder,
		SortOrder:     f.SortOrder,
		ColumnSpan:    f.ColumnSpan,
		Section:       f.Section,
		Tab:           f.Tab,
	}

	var err error
	if field.Options, err = rawJSON(f.Options); err != nil {
		return model.FieldDescriptor{}, fmt.Errorf("memory: field %q options: %w", field.FieldKey, err)
	}
	if field.ValidationRules, err = rawJSON(f.ValidationRules); err != nil {
		return model.FieldDescriptor{}, fmt.Errorf("memory: field %q validation rules: %w", field.FieldKey, err)
	}
	return field, nil
}

// Rule converts the fixture into a form rule.
func (r RuleFixture) Rule() (model.FormRule, error) {
	rule := r.FormRule
	var err error
	if rule.Conditions, err = rawJSON(r.Conditions); err != nil {
		return model.FormRule{}, fmt.Errorf("memory: rule %q conditions: %w", rule.ID, err)
	}
	if rule.Actions, err = rawJSON(r.Actions); err != nil {
		return model.FormRule{}, fmt.Errorf("memory: rule %q actions: %w", rule.ID, err)
	}
	return rule, nil
}

// FieldSets converts every declared field list, keyed by owner id. Core sets
// are keyed by asset type id and custom sets by form id. Duplicate keys are
// kept so they can be reported as configuration issues.
func (f Fixture) FieldSets() (core map[string]model.FieldSet, custom map[string]model.FieldSet, err error) {
	core = make(map[string]model.FieldSet, len(f.AssetTypes))
	custom = make(map[string]model.FieldSet, len(f.Forms))
	for _, at := range f.AssetTypes {
		set, err := fieldSet(model.OriginCore, at.ID, at.CoreFields)
		if err != nil {
			return nil, nil, err
		}
		core[at.ID] = set
	}
	for _, form := range f.Forms {
		set, err := fieldSet(model.OriginCustom, form.ID, form.Fields)
		if err != nil {
			return nil, nil, err
		}
		custom[form.ID] = set
	}
	return core, custom, nil
}

func fieldSet(origin model.Origin, owner string, fixtures []FieldFixture) (model.FieldSet, error) {
	set := model.FieldSet{Origin: origin, OwnerID: owner, Fields: make([]model.FieldDescriptor, 0, len(fixtures))}
	for i, fixture := range fixtures {
		field, err := fixture.Descriptor()
		if err != nil {
			return model.FieldSet{}, err
		}
		if field.ID == "" {
			field.ID = fmt.Sprintf("%s-%s-%d", owner, field.FieldKey, i)
		}
		set.Fields = append(set.Fields, field)
	}
	return set, nil
}

func rawJSON(value any) (json.RawMessage, error) {
	if value == nil {
		return nil, nil
	}
	data, err := json.Marshal(normalizeYAML(value))
	if err != nil {
		return nil, err
	}
	return data, nil
}

// normalizeYAML turns map[any]any nodes into map[string]any so the value
// can be marshalled as JSON.
func normalizeYAML(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalizeYAML(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = normalizeYAML(item)
		}
		return out
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, normalizeYAML(item))
		}
		return out
	default:
		return v
	}
}
