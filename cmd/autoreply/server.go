package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/autoreply/internal/api"
	"github.com/kalambet/autoreply/internal/engine"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reply API over HTTP (foreground)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if port, _ := cmd.Flags().GetInt("port"); port > 0 {
				cfg.Server.Port = port
			}

			a := newApp(cfg)
			defer a.Close()

			return runServer(cmd.Context(), a)
		},
	}
	cmd.Flags().Int("port", 0, "listen port (overrides server.port)")
	return cmd
}

func runServer(ctx context.Context, a *app) error {
	fmt.Fprintf(logOutput, "autoreply version %s\n", version)
	warnIfModelUnavailable(ctx, a)

	deps := api.AppDeps{
		Replier: a.generator,
		Profile: a.profile,
		Model:   a.modelName(),
		Token:   a.cfg.Server.Token,
	}
	if a.store != nil {
		deps.Replies = a.store
	}
	if c := a.checker(); c != nil {
		deps.Health = c
	}
	if deps.Token == "" {
		slog.Warn("server.token not set; API requests are not authenticated")
	}

	addr := fmt.Sprintf("127.0.0.1:%d", a.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewAppHandler(deps),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		printSuccess("autoreply listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		printStep("shutting down...")
		// Graceful shutdown with timeout.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve reply tools over the Model Context Protocol (stdio)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			a := newApp(cfg)
			defer a.Close()

			warnIfModelUnavailable(cmd.Context(), a)

			mcpSrv := api.NewMCPServer(api.MCPDeps{
				Replier:  a.generator,
				Analyzer: a.analyzer,
				Profile:  a.profile,
			}, version)
			slog.Info("MCP server started (stdio transport)")

			stdioSrv := server.NewStdioServer(mcpSrv)
			if err := stdioSrv.Listen(cmd.Context(), os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("MCP stdio server: %w", err)
			}
			return nil
		},
	}
}

// warnIfModelUnavailable reports configuration and reachability problems at
// startup. Replies keep working through the fallback responder.
func warnIfModelUnavailable(ctx context.Context, a *app) {
	if a.model == nil {
		printWarning("No usable model provider (%s); every reply will be a canned fallback", a.cfg.Model.Provider)
		return
	}
	c := a.checker()
	if c == nil {
		return
	}
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Check(checkCtx); err != nil {
		printWarning("Model %s not ready: %v", a.model.Model(), err)
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration and server status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStatus(cmd.Context())
		},
	}
}

func showStatus(ctx context.Context) error {
	cfg := loadConfig()

	provider := cfg.Model.Provider
	if cfg.Model.Name != "" {
		provider += " (" + cfg.Model.Name + ")"
	}
	printStatus("Provider", "%s", provider)
	switch {
	case cfg.Model.Provider == engine.ProviderOllama:
		printStatus("API key", "not needed")
	case engine.HasUsableKey(cfg.Model.APIKey):
		printStatus("API key", "configured")
	default:
		printStatus("API key", "%s", colorize(colorYellow, "missing, replies use the fallback"))
	}
	printStatus("Timeout", "%s", cfg.Model.Timeout)
	printStatus("Profile", "%s", cfg.Style.ProfilePath)
	printStatus("Data dir", "%s", cfg.Storage.DataDir)

	// Check server health.
	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serverURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		printStatus("Server", "stopped")
		return nil
	}
	defer resp.Body.Close()

	var health map[string]string
	if resp.StatusCode != http.StatusOK || json.NewDecoder(resp.Body).Decode(&health) != nil {
		printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		return nil
	}
	printStatus("Server", "%s on port %d", health["status"], cfg.Server.Port)
	if msg := health["model_error"]; msg != "" {
		printStatus("Model", "%s", colorize(colorRed, msg))
	}
	return nil
}
