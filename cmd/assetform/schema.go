package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-assetform/pkg/assembler"
	"github.com/goliatone/go-assetform/pkg/orchestrator"
	"github.com/goliatone/go-assetform/pkg/schema"
)

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <asset-type-id> [form-id]",
		Short: "Print the OpenAPI schema of the core fields and an optional form",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			catalog, closeFn, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			core, _, err := orchestrator.StageSet(ctx, catalog, args[0], orchestrator.CoreFormID)
			if err != nil {
				return err
			}
			fields := assembler.Renderable(core)
			if len(args) == 2 {
				custom, _, err := orchestrator.StageSet(ctx, catalog, args[0], args[1])
				if err != nil {
					return err
				}
				fields = append(fields, assembler.Renderable(custom)...)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(schema.ToOpenAPI(fields))
		},
	}
}
