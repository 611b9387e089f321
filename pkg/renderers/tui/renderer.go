// Package tui collects one form stage interactively in a terminal.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-assetform/pkg/model"
	"github.com/goliatone/go-assetform/pkg/render"
	"github.com/goliatone/go-assetform/pkg/schema"
)

const noneOption = "(none)"

// Renderer implements render.Renderer for terminal-driven sessions. Render
// prompts for every field of the stage and returns the collected values.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
	logger       *zap.Logger
	strip        *bluemonday.Policy
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{
		driver:       NewSurveyDriver(),
		outputFormat: OutputFormatJSON,
		logger:       zap.NewNop(),
		strip:        bluemonday.StrictPolicy(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatPrettyText {
		return "text/plain; charset=utf-8"
	}
	return "application/json"
}

// Render prompts for the stage and serialises the collected values.
func (r *Renderer) Render(ctx context.Context, form render.Form, opts render.RenderOptions) ([]byte, error) {
	values, err := r.Collect(ctx, form, opts)
	if err != nil {
		return nil, err
	}
	return r.serialize(form, values)
}

// Collect prompts for each field in render order. Answers are validated as
// they are entered and the prompt repeats until the field accepts the value.
// Readonly fields are not prompted; their prefilled value (or configured
// default) is kept.
func (r *Renderer) Collect(ctx context.Context, form render.Form, opts render.RenderOptions) (model.FormValue, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	state := NewState(opts.Values, opts.Errors)
	validator := schema.Synthesize(form.Stage.Fields)

	if form.Title != "" {
		if err := r.info(ctx, form.Title); err != nil {
			return nil, err
		}
	}
	for _, message := range render.MergeFormErrors(opts.FormErrors) {
		if err := r.errorLine(ctx, message); err != nil {
			return nil, err
		}
	}

	for _, field := range form.Stage.Fields {
		if err := r.promptField(ctx, field, validator, state, opts.Readonly); err != nil {
			return nil, err
		}
	}

	for _, key := range validator.Fields() {
		if _, ok := state.GetValue(key); ok {
			continue
		}
		if coerced, message := validator.ValidateField(key, nil); message == "" {
			state.SetValue(key, coerced)
		}
	}
	return state.Values(), nil
}

func (r *Renderer) promptField(ctx context.Context, field model.FieldDescriptor, validator *schema.Validator, state *State, readonly bool) error {
	key := field.FieldKey
	current, _ := state.GetValue(key)
	control := render.Bind(field, current, nil, readonly)

	if control.Disabled {
		if _, ok := state.GetValue(key); !ok && control.Value != nil {
			state.SetValue(key, control.Value)
		}
		return nil
	}

	for _, message := range state.ErrorsFor(key) {
		if err := r.errorLine(ctx, message); err != nil {
			return err
		}
	}

	help := r.plain(control.HelpText)
	switch control.Kind {
	case render.ControlSwitch:
		answer, err := r.driver.Confirm(ctx, ConfirmConfig{Message: control.Label, Default: control.Checked, Help: help})
		if err != nil {
			return err
		}
		state.SetValue(key, answer)
		return nil
	case render.ControlSelect:
		return r.promptSelect(ctx, control, help, validator, state)
	}

	def := control.Text
	for {
		var (
			answer string
			err    error
		)
		if control.Kind == render.ControlTextarea {
			answer, err = r.driver.TextArea(ctx, TextAreaConfig{Message: control.Label, Default: def, Help: help})
		} else {
			answer, err = r.driver.Input(ctx, InputConfig{Message: control.Label, Default: def, Help: help})
		}
		if err != nil {
			return err
		}
		if r.accept(ctx, key, answer, validator, state) {
			return nil
		}
	}
}

func (r *Renderer) promptSelect(ctx context.Context, control render.Control, help string, validator *schema.Validator, state *State) error {
	var labels []string
	offset := 0
	if !control.Required {
		labels = append(labels, noneOption)
		offset = 1
	}
	defaultIdx := offset - 1
	for i, option := range control.Options {
		labels = append(labels, option.Label)
		if control.Selected(option) {
			defaultIdx = i + offset
		}
	}
	if len(control.Options) == 0 && control.Required {
		return fmt.Errorf("tui: field %q: %w", control.Key, ErrNoOptions)
	}

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      control.Label,
			Options:      labels,
			DefaultIndex: defaultIdx,
			Help:         help,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(labels) {
			if err := r.errorLine(ctx, fmt.Sprintf("Invalid %s selection", control.Label)); err != nil {
				return err
			}
			continue
		}
		value := ""
		if idx >= offset {
			value = control.Options[idx-offset].Value
		}
		if r.accept(ctx, control.Key, value, validator, state) {
			return nil
		}
	}
}

// accept validates answer and stores the coerced value. Rejected answers are
// reported through the driver.
func (r *Renderer) accept(ctx context.Context, key string, answer any, validator *schema.Validator, state *State) bool {
	coerced, message := validator.ValidateField(key, answer)
	if message == "" {
		state.SetValue(key, coerced)
		return true
	}
	r.logger.Debug("answer rejected", zap.String("field_key", key), zap.String("reason", message))
	state.SetError(key, message)
	_ = r.errorLine(ctx, message)
	return false
}

func (r *Renderer) info(ctx context.Context, message string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+message)
}

func (r *Renderer) errorLine(ctx context.Context, message string) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+message)
}

// plain strips markup from help text for terminal display.
func (r *Renderer) plain(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(r.strip.Sanitize(text)))
}

func (r *Renderer) serialize(form render.Form, values model.FormValue) ([]byte, error) {
	if r.outputFormat == OutputFormatPrettyText {
		return []byte(prettyPrint(form, values)), nil
	}
	return json.Marshal(values)
}

func prettyPrint(form render.Form, values model.FormValue) string {
	var b strings.Builder
	for _, field := range form.Stage.Fields {
		value := values[field.FieldKey]
		display := render.Display(value)
		if v, ok := value.(bool); ok {
			display = "No"
			if v {
				display = "Yes"
			}
		}
		fmt.Fprintf(&b, "%s: %s\n", model.LabelFor(field), display)
	}
	return b.String()
}
