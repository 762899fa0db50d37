package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"autogenmcp/backend"
	"autogenmcp/config"
	"autogenmcp/gateway"
	loggerv2 "autogenmcp/logger/v2"
	"autogenmcp/transport"
)

// shutdownTimeout bounds graceful HTTP server teardown.
const shutdownTimeout = 30 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "autogen-gateway",
		Short: "MCP gateway for the AutoGen multi-agent backend",
		Long: `autogen-gateway exposes the AutoGen multi-agent backend over the
Model Context Protocol. It declares the tool, prompt, and resource
schemas, multiplexes stdio, SSE, and streamable-HTTP transports, and
forwards tool execution to the Python backend process.

Examples:
  # Serve on stdio (default)
  autogen-gateway

  # Serve SSE on a custom port
  autogen-gateway --transport sse --port 8090

  # Point at a different backend script
  autogen-gateway --python python3 --backend src/autogen_mcp/server.py`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	config.SetDefaults(v)

	flags := cmd.Flags()
	flags.String("transport", config.TransportStdio, "transport: stdio, sse, or http")
	flags.String("host", "127.0.0.1", "listen host for HTTP-based transports")
	flags.Int("port", 8080, "listen port for HTTP-based transports")
	flags.String("python", "python3", "backend interpreter path")
	flags.String("backend", "src/autogen_mcp/server.py", "backend script path")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")

	for _, name := range []string{"transport", "host", "port", "python", "backend", "log-level", "log-format"} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			// Binding fails only for unknown flag names.
			panic(err)
		}
	}

	return cmd
}

func run(cfg config.Config) error {
	log, err := loggerv2.New(loggerv2.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: "stderr",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Close()

	bridge := backend.NewBridge(cfg.Python, cfg.BackendScript,
		log.With(loggerv2.String("component", "backend")))
	svc := gateway.NewService(bridge, log)
	router := transport.NewRouter(svc, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("gateway starting",
		loggerv2.String("transport", cfg.Transport),
		loggerv2.String("backend", cfg.BackendScript))

	switch cfg.Transport {
	case config.TransportStdio:
		return runStdio(ctx, router, svc, log)
	case config.TransportSSE:
		srv := transport.NewSSEServer(router, svc, log)
		return runHTTP(ctx, cfg.Addr(), srv.Handler(), svc, log)
	case config.TransportHTTP:
		srv := transport.NewStreamableServer(router, svc, log)
		return runHTTP(ctx, cfg.Addr(), srv.Handler(), svc, log)
	default:
		return fmt.Errorf("invalid transport %q", cfg.Transport)
	}
}

func runStdio(ctx context.Context, router *transport.Router, svc *gateway.Service, log loggerv2.Logger) error {
	srv := transport.NewStdioServer(router, svc.Registry, os.Stdin, os.Stdout, log)
	err := srv.Run(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	svc.Registry.CloseAll()
	log.Info("gateway stopped")
	return err
}

func runHTTP(ctx context.Context, addr string, handler http.Handler, svc *gateway.Service, log loggerv2.Logger) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", loggerv2.String("addr", addr))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		// Immediate listen failure, e.g. the port is taken.
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	svc.Registry.CloseAll()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", err)
		return err
	}
	log.Info("gateway stopped")
	return nil
}
