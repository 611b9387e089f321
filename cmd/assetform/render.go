package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-assetform/pkg/orchestrator"
	"github.com/goliatone/go-assetform/pkg/render"
	"github.com/goliatone/go-assetform/pkg/renderers/html"
	"github.com/goliatone/go-assetform/pkg/renderers/tui"
)

type renderFlags struct {
	renderer  string
	overrides string
	output    string
	action    string
	templates string
	format    string
}

func newRenderCmd(a *app) *cobra.Command {
	var flags renderFlags
	cmd := &cobra.Command{
		Use:   "render <asset-type-id> [form-id]",
		Short: "Render the core stage or a form stage",
		Long: `Render one stage of an asset type. Without a form id the core stage is
rendered. The tui renderer prompts for every field and prints the collected
values as JSON.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format := tui.OutputFormat(flags.format); format {
			case tui.OutputFormatJSON, tui.OutputFormatPrettyText:
			default:
				return fmt.Errorf("unknown output format %q", format)
			}
			ctx := cmd.Context()
			catalog, closeFn, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			registry, err := newRegistry(flags.templates, tui.New(
				tui.WithPromptDriver(a.prompts),
				tui.WithOutputFormat(tui.OutputFormat(flags.format)),
				tui.WithLogger(a.logger),
			))
			if err != nil {
				return err
			}
			transformer, err := loadOverrides(flags.overrides)
			if err != nil {
				return err
			}
			gen := orchestrator.New(catalog,
				orchestrator.WithRegistry(registry),
				orchestrator.WithTransformer(transformer),
				orchestrator.WithLogger(a.logger),
			)

			req := orchestrator.Request{
				AssetTypeID: args[0],
				FormID:      orchestrator.CoreFormID,
				Renderer:    flags.renderer,
				Action:      flags.action,
			}
			if len(args) == 2 {
				req.FormID = args[1]
			}
			result, err := gen.Generate(ctx, req)
			if err != nil {
				return err
			}
			for _, issue := range result.Issues {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", issue.Error())
			}

			if flags.output == "" {
				_, err = cmd.OutOrStdout().Write(result.Output)
				return err
			}
			if err := os.WriteFile(flags.output, result.Output, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			a.logger.Info("stage rendered", zap.String("output", flags.output), zap.String("content_type", result.ContentType))
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags.renderer, "renderer", "r", "html", "renderer to use (html, tui)")
	cmd.Flags().StringVar(&flags.overrides, "overrides", "", "JSON document patching labels, order and visibility")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&flags.action, "action", "", "form action URL for HTML output")
	cmd.Flags().StringVar(&flags.format, "format", string(tui.OutputFormatJSON), "tui output format (json, pretty)")
	cmd.Flags().StringVar(&flags.templates, "templates", "", "directory holding templates/form.tmpl to replace the built-in HTML template")
	return cmd
}

// newRegistry registers the HTML renderer as the default and the extra
// renderers next to it. A non-empty templatesDir replaces the built-in HTML
// template bundle.
func newRegistry(templatesDir string, extra ...render.Renderer) (*render.Registry, error) {
	htmlRenderer, err := html.New(html.WithTemplatesDir(templatesDir))
	if err != nil {
		return nil, err
	}
	registry := render.NewRegistry()
	if err := registry.Register(htmlRenderer); err != nil {
		return nil, err
	}
	for _, renderer := range extra {
		if err := registry.Register(renderer); err != nil {
			return nil, err
		}
	}
	if err := registry.SetDefault(htmlRenderer.Name()); err != nil {
		return nil, err
	}
	return registry, nil
}

// loadOverrides returns nil when path is empty.
func loadOverrides(path string) (orchestrator.Transformer, error) {
	if path == "" {
		return nil, nil
	}
	transformer, err := orchestrator.NewJSONPresetTransformerFromFS(os.DirFS(filepath.Dir(path)), filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return transformer, nil
}
