package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gratitude5dee/tendril"
	"github.com/gratitude5dee/tendril/internal/cli"
	"github.com/gratitude5dee/tendril/internal/config"
	"github.com/gratitude5dee/tendril/internal/logging"
	httpadapter "github.com/gratitude5dee/tendril/pkg/adapters/http"
	"github.com/gratitude5dee/tendril/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the node in server mode, exposing a JSON API over HTTP: generate,
state, model selection, credential management, an SSE progress stream, and
Prometheus metrics on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		addr, _ := cmd.Flags().GetString("addr")

		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		if cmd.Flags().Changed("addr") {
			cfg.Server.Address = addr
		}

		level, _ := logging.ParseLevel(cfg.Log.Level)
		logger := logging.New(level, cfg.Log.JSON)

		metrics := observability.NewMetrics()

		node, err := cli.BuildNode(cfg, logger,
			tendril.WithLifecycleHooks(metrics.Hooks()),
		)
		if err != nil {
			fmt.Printf("Error initializing tendril: %v\n", err)
			os.Exit(1)
		}

		// Resolve the credential eagerly so the first generate does not pay
		// for it. Clients re-run this via POST /initialize after signing in.
		if err := node.Initialize(cmd.Context()); err != nil {
			logger.Warn("starting without resolved credential", "err", err)
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/", httpadapter.NewHandler(node, logger))

		srv := &http.Server{
			Addr:    cfg.Server.Address,
			Handler: mux,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Tendril Server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			// Error when starting HTTP server.
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Tendril Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
}
