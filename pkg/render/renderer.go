package render

import (
	"context"

	"github.com/goliatone/go-assetform/pkg/assembler"
)

// Renderer converts an assembled form stage into a byte representation
// (HTML, JSON collected from a terminal session, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form Form, options RenderOptions) ([]byte, error)
}

// Form is one wizard stage ready to render.
type Form struct {
	ID          string
	Title       string
	Description string
	Action      string
	Method      string
	Stage       assembler.Stage
}

// FieldKeys lists the keys rendered by the form.
func (f Form) FieldKeys() []string {
	return f.Stage.Keys()
}
