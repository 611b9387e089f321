package schema

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-assetform/pkg/model"
)

// ToOpenAPI exports the validation contract for fields as an OpenAPI object
// schema. Required string fields gain minLength 1, dropdown options become an
// enum, toggles default to false and dates carry format "date".
func ToOpenAPI(fields []model.FieldDescriptor) *openapi3.Schema {
	v := Synthesize(fields)
	root := openapi3.NewObjectSchema()

	byKey := make(map[string]model.FieldDescriptor, len(fields))
	for _, field := range fields {
		byKey[field.FieldKey] = field
	}

	var required []string
	for _, r := range v.rules {
		field := byKey[r.Key]
		prop := propertySchema(r, field)
		prop.Title = r.Label
		if help := field.HelpText; help != "" {
			prop.Description = help
		}
		if field.IsReadonly {
			prop.ReadOnly = true
		}
		root.WithProperty(r.Key, prop)
		if r.Required {
			required = append(required, r.Key)
		}
	}
	root.Required = required
	return root
}

func propertySchema(r FieldRule, field model.FieldDescriptor) *openapi3.Schema {
	switch r.Kind {
	case KindNumber:
		s := openapi3.NewFloat64Schema()
		if !r.Required {
			s.Nullable = true
		}
		return s
	case KindBoolean:
		s := openapi3.NewBoolSchema()
		s.Default = false
		return s
	case KindDate:
		s := openapi3.NewStringSchema().WithFormat("date")
		if r.Required {
			s.WithMinLength(1)
		}
		return s
	default:
		s := openapi3.NewStringSchema()
		if r.Required {
			s.WithMinLength(1)
		}
		if field.FieldType == model.FieldTypeDropdown {
			if choices := field.Choices(); len(choices.Items) > 0 {
				values := make([]any, 0, len(choices.Items))
				for _, value := range choices.Values() {
					values = append(values, value)
				}
				if !r.Required {
					values = append(values, "")
				}
				s.WithEnum(values...)
			}
		}
		if field.HasDefault() {
			s.Default = field.Default()
		}
		return s
	}
}
