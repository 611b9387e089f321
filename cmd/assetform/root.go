package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-assetform/pkg/config"
	"github.com/goliatone/go-assetform/pkg/model"
	"github.com/goliatone/go-assetform/pkg/renderers/tui"
	"github.com/goliatone/go-assetform/pkg/store"
	"github.com/goliatone/go-assetform/pkg/store/memory"
	"github.com/goliatone/go-assetform/pkg/store/sqlstore"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	catalog    string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
	// prompts replaces the survey driver in tests.
	prompts tui.PromptDriver
}

// backend is what the CLI needs from a store: the catalog, the sink and
// asset lookups for editing.
type backend interface {
	store.Catalog
	store.AssetSink
	Asset(ctx context.Context, id string) (model.Asset, error)
}

func newRootCmd() *cobra.Command {
	return buildRootCmd(&app{})
}

func buildRootCmd(a *app) *cobra.Command {
	a.logger = zap.NewNop()
	root := &cobra.Command{
		Use:   "assetform",
		Short: "Dynamic asset form engine",
		Long: `assetform renders asset type and form definitions as forms, walks
users through the asset creation wizard and serves the same engine over HTTP.

The catalog comes from the configured database or a YAML fixture:

  assetform --catalog examples/catalog.yaml render pump inspection`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&a.catalog, "catalog", "", "YAML catalog fixture (overrides the fixtures setting)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newRenderCmd(a),
		newFillCmd(a),
		newServeCmd(a),
		newCheckCmd(a),
		newSchemaCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.catalog != "" {
		cfg.Fixtures = a.catalog
	}
	if a.verbose {
		cfg.Log.Level = "debug"
		cfg.Log.Format = config.FormatConsole
	}
	logger, err := cfg.Logger()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger.With(zap.String("command", cmd.Name()))
	return nil
}

// openBackend opens the configured store and seeds it from the fixture file
// when one is set. The returned func releases the store.
func (a *app) openBackend(ctx context.Context) (backend, func() error, error) {
	var fixture *memory.Fixture
	if a.cfg.Fixtures != "" {
		loaded, err := memory.LoadFixture(a.cfg.Fixtures)
		if err != nil {
			return nil, nil, err
		}
		fixture = &loaded
	}

	switch a.cfg.Database.Driver {
	case config.DriverSQLite:
		s, err := sqlstore.Open(ctx, a.cfg.Database.DSN, sqlstore.WithLogger(a.logger))
		if err != nil {
			return nil, nil, err
		}
		if fixture != nil {
			if err := seed(ctx, s, *fixture); err != nil {
				_ = s.Close()
				return nil, nil, err
			}
		}
		a.logger.Debug("sqlite store opened", zap.String("dsn", a.cfg.Database.DSN))
		return s, s.Close, nil
	default:
		if fixture == nil {
			return memory.New(), noClose, nil
		}
		s, err := memory.NewFromFixture(*fixture)
		if err != nil {
			return nil, nil, err
		}
		a.logger.Debug("memory store seeded", zap.String("fixtures", a.cfg.Fixtures))
		return s, noClose, nil
	}
}

func noClose() error { return nil }

// seed writes a fixture into the SQL store. Existing rows are replaced.
func seed(ctx context.Context, s *sqlstore.Store, fixture memory.Fixture) error {
	core, custom, err := fixture.FieldSets()
	if err != nil {
		return err
	}
	for _, at := range fixture.AssetTypes {
		if err := s.PutAssetType(ctx, at.AssetType, core[at.ID]); err != nil {
			return fmt.Errorf("seed asset type %q: %w", at.ID, err)
		}
	}
	for _, form := range fixture.Forms {
		if err := s.PutForm(ctx, form.FormDefinition, custom[form.ID]); err != nil {
			return fmt.Errorf("seed form %q: %w", form.ID, err)
		}
	}
	return nil
}
