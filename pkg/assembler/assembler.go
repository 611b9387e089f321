package assembler

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/goliatone/go-assetform/pkg/model"
)

// Columns is the width of the form grid.
const Columns = 2

// Row is one line of the grid. A row holds either a single full-width field
// or up to Columns half-width fields.
type Row struct {
	Fields []model.FieldDescriptor `json:"fields"`
}

// Width sums the column spans in the row.
func (r Row) Width() int {
	width := 0
	for _, field := range r.Fields {
		width += field.Span()
	}
	return width
}

// Stage is one renderable step of the form.
type Stage struct {
	Origin  model.Origin            `json:"origin"`
	OwnerID string                  `json:"owner_id"`
	Fields  []model.FieldDescriptor `json:"fields"`
	Rows    []Row                   `json:"rows"`
}

// Empty reports whether the stage renders no fields.
func (s Stage) Empty() bool {
	return len(s.Fields) == 0
}

// Keys lists the stage field keys in render order.
func (s Stage) Keys() []string {
	keys := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		keys = append(keys, field.FieldKey)
	}
	return keys
}

// Assembly is the result of composing the core and custom field sets.
type Assembly struct {
	Stages []Stage             `json:"stages"`
	Issues []model.ConfigIssue `json:"issues,omitempty"`
}

// Stage returns the stage built from the given origin.
func (a Assembly) Stage(origin model.Origin) (Stage, bool) {
	for _, stage := range a.Stages {
		if stage.Origin == origin {
			return stage, true
		}
	}
	return Stage{}, false
}

// Fields returns every renderable field across stages in stage order.
func (a Assembly) Fields() []model.FieldDescriptor {
	var out []model.FieldDescriptor
	for _, stage := range a.Stages {
		out = append(out, stage.Fields...)
	}
	return out
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger routes configuration issues to logger at warn level.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithDescriptorChecks enables per-descriptor configuration checks on top of
// the cross-stage collision check.
func WithDescriptorChecks(enabled bool) Option {
	return func(a *Assembler) {
		a.checkDescriptors = enabled
	}
}

// Assembler builds stage assemblies.
type Assembler struct {
	logger           *zap.Logger
	checkDescriptors bool
}

// New constructs an Assembler.
func New(options ...Option) *Assembler {
	a := &Assembler{logger: zap.NewNop(), checkDescriptors: true}
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Assemble composes the core stage followed by the custom stage. A nil set
// yields no stage; an empty set yields an empty stage so callers can decide
// whether to skip it.
func (a *Assembler) Assemble(core, custom *model.FieldSet) Assembly {
	var assembly Assembly
	for _, set := range []*model.FieldSet{core, custom} {
		if set == nil {
			continue
		}
		if a.checkDescriptors {
			assembly.Issues = append(assembly.Issues, model.ValidateFieldSet(*set)...)
		}
		fields := Renderable(*set)
		assembly.Stages = append(assembly.Stages, Stage{
			Origin:  set.Origin,
			OwnerID: set.OwnerID,
			Fields:  fields,
			Rows:    Layout(fields),
		})
	}

	if core != nil && custom != nil {
		_, collisions := model.Union(*core, *custom)
		for _, collision := range collisions {
			assembly.Issues = append(assembly.Issues, model.ConfigIssue{
				FieldKey: collision.Key,
				Code:     model.IssueKeyCollision,
				Message:  fmt.Sprintf("%s; the %s value overwrites the %s value on submit", collision, collision.Right, collision.Left),
			})
		}
	}

	for _, issue := range assembly.Issues {
		a.logger.Warn("form configuration issue",
			zap.String("field_key", issue.FieldKey),
			zap.String("code", issue.Code),
			zap.String("message", issue.Message),
		)
	}
	return assembly
}

// Assemble composes stages with the default Assembler.
func Assemble(core, custom *model.FieldSet) Assembly {
	return New().Assemble(core, custom)
}

// Renderable orders a set by SortOrder (stable, so ties keep their stored
// order) and keeps visible, non-system fields.
func Renderable(set model.FieldSet) []model.FieldDescriptor {
	sorted := append([]model.FieldDescriptor(nil), set.Fields...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortOrder < sorted[j].SortOrder
	})

	out := make([]model.FieldDescriptor, 0, len(sorted))
	for _, field := range sorted {
		if !field.IsVisible || field.IsSystemField {
			continue
		}
		out = append(out, field)
	}
	return out
}

// Layout packs fields into grid rows in order. A full-width field always
// starts a new row and closes it; half-width fields fill rows left to right.
func Layout(fields []model.FieldDescriptor) []Row {
	var rows []Row
	var current Row
	flush := func() {
		if len(current.Fields) > 0 {
			rows = append(rows, current)
			current = Row{}
		}
	}

	for _, field := range fields {
		span := field.Span()
		if current.Width()+span > Columns {
			flush()
		}
		current.Fields = append(current.Fields, field)
		if current.Width() == Columns {
			flush()
		}
	}
	flush()
	return rows
}
