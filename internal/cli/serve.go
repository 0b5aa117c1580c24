package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/qweave/metalize/internal/httpapi"
	"github.com/qweave/metalize/pkg/cache"
	"github.com/qweave/metalize/pkg/observability"
	"github.com/qweave/metalize/pkg/pipeline"
	"github.com/qweave/metalize/pkg/session"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string
	redisAddr string // shared artifact cache for multi-instance deployments
	noCache   bool
	store     storeFlags
}

// serveCommand creates the serve command running the HTTP bridge.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP render bridge",
		Long: `Serve exposes rendering and design storage over HTTP. Designs come
from the configured store; artifacts are cached on disk, or in Redis when
--redis is set so multiple instances share one cache.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.addr, "addr", "a", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "Redis address for a shared artifact cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	opts.store.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	observability.SetCacheHooks(&cacheLogHooks{logger: c.Logger})

	artifactCache, err := c.serveCache(ctx, opts)
	if err != nil {
		return err
	}

	designs, err := opts.store.open(ctx)
	if err != nil {
		return err
	}
	defer designs.Close()

	runner := pipeline.NewRunner(artifactCache, nil, c.Logger)
	defer runner.Close()

	srv := httpapi.NewServer(httpapi.Config{
		Runner:   runner,
		Designs:  designs,
		Sessions: session.NewMemoryStore(),
		Logger:   c.Logger,
	})

	httpServer := &http.Server{
		Addr:              opts.addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("serving", "addr", opts.addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// cacheLogHooks logs cache traffic at debug level while the bridge runs.
type cacheLogHooks struct {
	observability.NoopCacheHooks
	logger *log.Logger
}

func (h *cacheLogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *cacheLogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *cacheLogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

// serveCache picks the artifact cache backend for the bridge.
func (c *CLI) serveCache(ctx context.Context, opts *serveOpts) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	if opts.redisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: opts.redisAddr})
		if err != nil {
			return nil, fmt.Errorf("connect to Redis: %w", err)
		}
		return rc, nil
	}
	return newCache(false)
}
