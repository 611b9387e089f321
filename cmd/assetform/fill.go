package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-assetform/pkg/assembler"
	"github.com/goliatone/go-assetform/pkg/model"
	"github.com/goliatone/go-assetform/pkg/render"
	"github.com/goliatone/go-assetform/pkg/renderers/tui"
	"github.com/goliatone/go-assetform/pkg/store"
	"github.com/goliatone/go-assetform/pkg/submission"
	"github.com/goliatone/go-assetform/pkg/wizard"
)

// maxStageAttempts bounds how often a stage is re-prompted after failing
// validation.
const maxStageAttempts = 3

var errCancelled = errors.New("assetform: submission cancelled")

func newFillCmd(a *app) *cobra.Command {
	var assetID string
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Create or edit an asset interactively",
		Long: `Walk through the asset wizard in the terminal: basic information, asset
type, core fields, form selection, form fields and review. With --asset the
existing asset is edited instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			b, closeFn, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			driver := a.prompts
			if driver == nil {
				driver = tui.NewSurveyDriver()
			}

			var w *wizard.Wizard
			if assetID == "" {
				w = wizard.New(b, b, wizard.WithLogger(a.logger))
			} else {
				asset, err := b.Asset(ctx, assetID)
				if err != nil {
					return err
				}
				if w, err = wizard.NewEdit(ctx, b, b, asset, wizard.WithLogger(a.logger)); err != nil {
					return err
				}
			}
			defer w.Close()

			s := &session{
				catalog:   b,
				wizard:    w,
				driver:    driver,
				collector: tui.New(
					tui.WithPromptDriver(driver),
					tui.WithTheme(tui.Theme{ErrorPrefix: "! "}),
					tui.WithLogger(a.logger),
				),
				logger:    a.logger,
			}
			asset, err := s.run(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(asset)
		},
	}
	cmd.Flags().StringVar(&assetID, "asset", "", "id of an existing asset to edit")
	return cmd
}

// session drives a wizard through terminal prompts, one step at a time.
type session struct {
	catalog   store.Catalog
	wizard    *wizard.Wizard
	driver    tui.PromptDriver
	collector *tui.Renderer
	logger    *zap.Logger
}

func (s *session) run(ctx context.Context) (model.Asset, error) {
	for {
		var err error
		switch step := s.wizard.Step(); step {
		case wizard.StepAssetType:
			err = s.chooseAssetType(ctx)
		case wizard.StepBasicInfo:
			err = s.basicInfo(ctx)
		case wizard.StepCoreFields:
			err = s.fillStage(ctx, submission.StageCore)
		case wizard.StepFormSelect:
			err = s.chooseForm(ctx)
		case wizard.StepFormFill:
			err = s.fillStage(ctx, submission.StageCustom)
		case wizard.StepReview:
			return s.review(ctx)
		default:
			err = fmt.Errorf("%w: %s", wizard.ErrNoStep, step)
		}
		if err != nil {
			return model.Asset{}, err
		}
		if _, err := s.wizard.Next(); err != nil {
			return model.Asset{}, err
		}
	}
}

func (s *session) header(ctx context.Context, step wizard.Step) error {
	steps := s.wizard.Steps()
	for i, candidate := range steps {
		if candidate == step {
			return s.driver.Info(ctx, fmt.Sprintf("Step %d of %d: %s", i+1, len(steps), step.Label()))
		}
	}
	return nil
}

func (s *session) chooseAssetType(ctx context.Context) error {
	if err := s.basicInfo(ctx); err != nil {
		return err
	}
	types, err := s.catalog.AssetTypes(ctx)
	if err != nil {
		return err
	}
	if len(types) == 0 {
		return errors.New("assetform: the catalog has no asset types")
	}
	names := make([]string, 0, len(types))
	current := 0
	selected, _ := s.wizard.AssetType()
	for i, at := range types {
		names = append(names, at.Name)
		if at.ID == selected.ID {
			current = i
		}
	}
	idx, err := s.selectIndex(ctx, "Asset type", names, current)
	if err != nil {
		return err
	}
	return s.wizard.SelectAssetType(ctx, types[idx].ID)
}

func (s *session) basicInfo(ctx context.Context) error {
	if err := s.header(ctx, s.wizard.Step()); err != nil {
		return err
	}
	info := s.wizard.BasicInfo()

	name, err := s.driver.Input(ctx, tui.InputConfig{
		Message: "Name",
		Default: info.Name,
		Validator: func(value string) error {
			if strings.TrimSpace(value) == "" {
				return errors.New("Name is required")
			}
			return nil
		},
	})
	if err != nil {
		return err
	}
	info.Name = name
	if info.HierarchyLevel, err = choose(ctx, s, "Hierarchy level", model.HierarchyLevels, info.HierarchyLevel); err != nil {
		return err
	}
	if info.Status, err = choose(ctx, s, "Status", model.AssetStatuses, info.Status); err != nil {
		return err
	}
	if info.Criticality, err = choose(ctx, s, "Criticality", model.CriticalityLevels, info.Criticality); err != nil {
		return err
	}
	if info.Location, err = s.driver.Input(ctx, tui.InputConfig{Message: "Location", Default: info.Location}); err != nil {
		return err
	}
	return s.wizard.SetBasicInfo(info)
}

func (s *session) chooseForm(ctx context.Context) error {
	if err := s.header(ctx, wizard.StepFormSelect); err != nil {
		return err
	}
	forms := s.wizard.Forms()
	names := make([]string, 0, len(forms))
	current := 0
	chosen, _ := s.wizard.Form()
	for i, form := range forms {
		names = append(names, form.Name)
		if form.ID == chosen.ID {
			current = i
		}
	}
	idx, err := s.selectIndex(ctx, "Form", names, current)
	if err != nil {
		return err
	}
	return s.wizard.SelectForm(ctx, forms[idx].ID)
}

// fillStage collects a stage through the TUI renderer and submits it to the
// wizard, re-prompting when the stage fails validation.
func (s *session) fillStage(ctx context.Context, stage submission.Stage) error {
	step, origin, title := wizard.StepCoreFields, model.OriginCore, "Core fields"
	if stage == submission.StageCustom {
		step, origin = wizard.StepFormFill, model.OriginCustom
		if form, ok := s.wizard.Form(); ok {
			title = form.Name
		}
	}
	if err := s.header(ctx, step); err != nil {
		return err
	}
	fields, err := s.wizard.Fields(stage)
	if err != nil {
		return err
	}
	form := render.Form{
		Title: title,
		Stage: assembler.Stage{Origin: origin, Fields: fields, Rows: assembler.Layout(fields)},
	}

	for attempt := 1; ; attempt++ {
		values, err := s.collector.Collect(ctx, form, render.RenderOptions{
			Values: s.wizard.Values(stage),
			Errors: render.FieldErrors(s.wizard.Errors(stage)),
		})
		if err != nil {
			return err
		}
		_, err = s.wizard.SubmitStage(stage, values)
		if errors.Is(err, wizard.ErrStageInvalid) && attempt < maxStageAttempts {
			s.logger.Debug("stage rejected", zap.String("stage", string(stage)), zap.Int("attempt", attempt))
			continue
		}
		return err
	}
}

// review lists the merged payload and submits it once confirmed. A rejected
// submission prints the sink's messages and asks again.
func (s *session) review(ctx context.Context) (model.Asset, error) {
	if err := s.header(ctx, wizard.StepReview); err != nil {
		return model.Asset{}, err
	}
	for _, entry := range s.wizard.Review() {
		if err := s.driver.Info(ctx, fmt.Sprintf("%s: %s", entry.Label, entry.Display)); err != nil {
			return model.Asset{}, err
		}
	}

	for {
		ok, err := s.driver.Confirm(ctx, tui.ConfirmConfig{Message: "Submit asset?", Default: true})
		if err != nil {
			return model.Asset{}, err
		}
		if !ok {
			return model.Asset{}, errCancelled
		}
		asset, err := s.wizard.Submit(ctx)
		var rejected *wizard.SubmissionError
		if !errors.As(err, &rejected) {
			return asset, err
		}
		payload := rejected.Payload()
		paths := make([]string, 0, len(payload))
		for path := range payload {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			line := strings.Join(payload[path], "; ")
			if path != "" {
				line = path + ": " + line
			}
			if err := s.driver.Info(ctx, line); err != nil {
				return model.Asset{}, err
			}
		}
	}
}

func (s *session) selectIndex(ctx context.Context, message string, options []string, current int) (int, error) {
	for {
		idx, err := s.driver.Select(ctx, tui.SelectConfig{Message: message, Options: options, DefaultIndex: current})
		if err != nil {
			return 0, err
		}
		if idx >= 0 && idx < len(options) {
			return idx, nil
		}
		if err := s.driver.Info(ctx, fmt.Sprintf("Invalid %s selection", strings.ToLower(message))); err != nil {
			return 0, err
		}
	}
}

func choose[T ~string](ctx context.Context, s *session, message string, options []T, current T) (T, error) {
	labels := make([]string, 0, len(options))
	idx := 0
	for i, option := range options {
		labels = append(labels, string(option))
		if option == current {
			idx = i
		}
	}
	picked, err := s.selectIndex(ctx, message, labels, idx)
	if err != nil {
		return current, err
	}
	return options[picked], nil
}
