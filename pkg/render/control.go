package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-assetform/pkg/model"
)

// ControlKind names the input control a descriptor resolves to.
type ControlKind string

const (
	ControlInput    ControlKind = "input"
	ControlNumber   ControlKind = "number"
	ControlDate     ControlKind = "date"
	ControlTextarea ControlKind = "textarea"
	ControlSwitch   ControlKind = "switch"
	ControlSelect   ControlKind = "select"
)

// ChangeFunc receives the new value for a field.
type ChangeFunc func(value any)

// Control is a descriptor bound to its current value. Controls are values;
// binding never mutates the descriptor.
type Control struct {
	Kind        ControlKind
	Key         string
	Label       string
	FieldType   model.FieldType
	Value       any
	Text        string
	Checked     bool
	Placeholder string
	HelpText    string
	Required    bool
	Disabled    bool
	Span        int
	Options     []model.Option

	onChange ChangeFunc
}

// Set forwards value to the change callback. Disabled controls drop the
// edit and report false.
func (c Control) Set(value any) bool {
	if c.Disabled || c.onChange == nil {
		return false
	}
	c.onChange(value)
	return true
}

// Selected reports whether option is the current selection.
func (c Control) Selected(option model.Option) bool {
	return c.Text != "" && c.Text == option.Value
}

type binder func(field model.FieldDescriptor, value any, c *Control)

var binders = map[model.FieldType]binder{
	model.FieldTypeText:     bindInput("Enter %s..."),
	model.FieldTypeLookup:   bindInput("Search..."),
	model.FieldTypeNumber:   bindNumber,
	model.FieldTypeDate:     bindDate,
	model.FieldTypeTextarea: bindTextarea,
	model.FieldTypeToggle:   bindSwitch,
	model.FieldTypeDropdown: bindSelect,
}

var defaultBinder = bindInput("Enter %s...")

// Bind resolves field into a Control. A nil value falls back to the field's
// typed default. readonly disables the control on top of the descriptor's own
// IsReadonly flag.
func Bind(field model.FieldDescriptor, value any, onChange ChangeFunc, readonly bool) Control {
	if value == nil {
		if def, ok := field.TypedDefault(); ok {
			value = def
		}
	}
	c := Control{
		Key:       field.FieldKey,
		Label:     model.LabelFor(field),
		FieldType: field.FieldType,
		Value:     value,
		HelpText:  field.HelpText,
		Required:  field.IsRequired && field.FieldType != model.FieldTypeToggle,
		Disabled:  field.IsReadonly || readonly,
		Span:      field.Span(),
		onChange:  onChange,
	}
	bind, ok := binders[field.FieldType]
	if !ok {
		bind = defaultBinder
	}
	bind(field, value, &c)
	if custom := strings.TrimSpace(field.Placeholder); custom != "" && c.Kind != ControlSwitch {
		c.Placeholder = custom
	}
	return c
}

func bindInput(placeholder string) binder {
	return func(field model.FieldDescriptor, value any, c *Control) {
		c.Kind = ControlInput
		c.Text = Display(value)
		if strings.Contains(placeholder, "%s") {
			c.Placeholder = fmt.Sprintf(placeholder, strings.ToLower(c.Label))
			return
		}
		c.Placeholder = placeholder
	}
}

func bindNumber(_ model.FieldDescriptor, value any, c *Control) {
	c.Kind = ControlNumber
	c.Text = Display(value)
	c.Placeholder = "0"
}

func bindDate(_ model.FieldDescriptor, value any, c *Control) {
	c.Kind = ControlDate
	c.Text = Display(value)
}

func bindTextarea(_ model.FieldDescriptor, value any, c *Control) {
	c.Kind = ControlTextarea
	c.Text = Display(value)
	c.Placeholder = fmt.Sprintf("Enter %s...", strings.ToLower(c.Label))
}

func bindSwitch(_ model.FieldDescriptor, value any, c *Control) {
	c.Kind = ControlSwitch
	c.Checked = Truthy(value)
	c.Value = c.Checked
	c.Text = strconv.FormatBool(c.Checked)
}

func bindSelect(field model.FieldDescriptor, value any, c *Control) {
	c.Kind = ControlSelect
	c.Text = Display(value)
	c.Placeholder = "Select..."
	c.Options = field.Choices().Items
}

// Display formats a stored value for a text control. Nil renders empty.
func Display(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Truthy reports the truthiness of a stored value: nil, false, zero, NaN and
// the empty string are false, everything else is true.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0 && !math.IsNaN(v)
	case float32:
		return v != 0 && !math.IsNaN(float64(v))
	case int:
		return v != 0
	case int64:
		return v != 0
	default:
		return true
	}
}
