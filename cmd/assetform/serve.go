package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-assetform/pkg/httpapi"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var (
		addr      string
		overrides string
		templates string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the form engine over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			b, closeFn, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			registry, err := newRegistry(templates)
			if err != nil {
				return err
			}
			transformer, err := loadOverrides(overrides)
			if err != nil {
				return err
			}
			api := httpapi.New(b,
				httpapi.WithSink(b),
				httpapi.WithRenderers(registry),
				httpapi.WithTransformer(transformer),
				httpapi.WithLogger(a.logger),
			)

			if addr == "" {
				addr = a.cfg.HTTP.Addr
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           api.Routes(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("http server listening", zap.String("addr", addr))
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			a.logger.Info("shutting down http server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to http.addr)")
	cmd.Flags().StringVar(&overrides, "overrides", "", "JSON document patching labels, order and visibility")
	cmd.Flags().StringVar(&templates, "templates", "", "directory holding templates/form.tmpl to replace the built-in HTML template")
	return cmd
}
