package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"fictures/internal/cache"
	"fictures/internal/config"
	"fictures/internal/generate"
	"fictures/internal/mcp"
	"fictures/internal/narrative"
	"fictures/internal/server"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	var mcpMode bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API, or the MCP server over stdio with --mcp",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(mcpMode)
		},
	}
	cmd.Flags().BoolVar(&mcpMode, "mcp", false, "Serve MCP over stdio instead of HTTP")
	return cmd
}

func runServe(mcpMode bool) error {
	ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer done()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	c := cacheBackend(ctx, cfg)
	svc := narrative.NewService(db, c, cfg.Cache.PublicTTL.Std(), cfg.Cache.PrivateTTL.Std())

	if mcpMode {
		srv := mcp.NewServer(db, svc, version)
		return srv.Run(ctx, &sdk.StdioTransport{})
	}

	var gen *generate.Service
	if cfg.LLM.APIKey != "" || cfg.LLM.BaseURL != "" {
		planner := generate.NewOpenAIPlanner(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
		gen = generate.NewService(planner, db, svc.OnEntityMutated)
	} else {
		log.Warn("no llm endpoint configured, outline generation disabled")
	}

	srv := server.New(db, svc, gen)

	errs := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", cfg.Server.Addr)
		errs <- srv.Start(cfg.Server.Addr)
	}()

	select {
	case err := <-errs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// cacheBackend returns the configured redis cache, falling back to the
// in-process cache when redis is not configured or not reachable. The service
// degrades to more database reads either way, never to failed requests.
func cacheBackend(ctx context.Context, cfg *config.Config) cache.Cache {
	if cfg.Cache.Addr == "" {
		log.Warn("no redis configured, using in-process cache")
		return cache.NewMemory()
	}
	redis, err := cache.NewRedis(ctx, cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
	if err != nil {
		log.Warn("redis unreachable, using in-process cache", "err", err)
		return cache.NewMemory()
	}
	return redis
}
