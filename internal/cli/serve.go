package cli

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/pokedex-client/internal/web"
	"github.com/Sternrassler/pokedex-client/pkg/pagination"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions, ver string) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Pokémon list as a JSON API",
		Long: `Serve the Pokémon list over HTTP.

Routes:
  GET /health                     liveness and cached page count
  GET /metrics                    Prometheus metrics
  GET /api/pokemon?page=&search=  one page of the list
  GET /api/pokemon/:name          detail document of one Pokémon`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				opts.cfg.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts, ver)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	return cmd
}

func runServe(ctx context.Context, opts *rootOptions, ver string) error {
	cfg := opts.cfg

	pokeapi, err := newClient(cfg)
	if err != nil {
		return err
	}
	defer pokeapi.Close()

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn().Err(err).Msg("Failed to release page cache")
		}
	}()

	if cfg.Prefetch != 0 {
		go func() {
			prefetcher := pagination.NewPrefetcher(pokeapi, store, pagination.Config{Limit: cfg.PageLimit})
			pages := cfg.Prefetch
			if pages < 0 {
				pages = 0
			}
			if _, err := prefetcher.Warm(ctx, pages); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn().Err(err).Msg("Prefetch did not complete")
			}
		}()
	}

	app := web.New(pokeapi, pokeapi, store, web.Config{
		PageState:     cfg.PageStateConfig(),
		DetailBaseURL: pokeapi.BaseURL(),
		Version:       ver,
	})

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(net.JoinHostPort("", cfg.Port))
	}()

	logger.Info().
		Str("port", cfg.Port).
		Str("version", ver).
		Str("cache_backend", cfg.CacheBackend).
		Msg("Server listening")

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
