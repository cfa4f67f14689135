package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/lattice-ai/lattice"
	httpAdapter "github.com/lattice-ai/lattice/internal/adapters/http"
	"github.com/lattice-ai/lattice/internal/adapters/pgvector"
	redisAdapter "github.com/lattice-ai/lattice/internal/adapters/redis"
	"github.com/lattice-ai/lattice/internal/config"
	"github.com/lattice-ai/lattice/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the workflow API server",
	Long:  `Starts the Lattice engine in server mode, exposing the workflow, document and run endpoints as a JSON API over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		basePath, _ := cmd.Flags().GetString("base-path")
		addr, _ := cmd.Flags().GetString("addr")

		cfg := config.Default()
		if configPath != "" {
			loaded, err := config.Load(configPath)
			if err != nil {
				fmt.Printf("Error loading config: %v\n", err)
				os.Exit(1)
			}
			cfg = loaded
		}
		if basePath != "" {
			cfg.BasePath = basePath
		}
		if addr != "" {
			cfg.Addr = addr
		}

		logger := logging.New(slog.LevelInfo)
		if cfg.JSONLogs {
			logger = logging.NewJSON(slog.LevelInfo)
		}

		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		opts := []lattice.Option{
			lattice.WithLogger(logger),
			lattice.WithBasePath(cfg.BasePath),
			lattice.WithProviderKeys(cfg.Providers.OpenAIKey, cfg.Providers.GoogleKey, cfg.Providers.SerpKey),
			lattice.WithMetrics(registry),
		}
		if cfg.Chunking.Size > 0 {
			opts = append(opts, lattice.WithChunking(cfg.Chunking.Size, cfg.Chunking.Overlap))
		}
		if cfg.Redis.Enabled {
			store := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			opts = append(opts, lattice.WithWorkflowStore(store), lattice.WithChatStore(store))
			logger.Info("using redis store", "addr", cfg.Redis.Addr)
		}
		if cfg.Postgres.DSN != "" {
			vectors, err := pgvector.New(cfg.Postgres.DSN)
			if err != nil {
				fmt.Printf("Error connecting to postgres: %v\n", err)
				os.Exit(1)
			}
			defer vectors.Close()
			opts = append(opts, lattice.WithVectorStore(vectors))
			logger.Info("using pgvector store")
		}

		engine, err := lattice.New(opts...)
		if err != nil {
			fmt.Printf("Error initializing lattice: %v\n", err)
			os.Exit(1)
		}

		handler := httpAdapter.NewHandler(&httpAdapter.Server{
			Runner:    engine,
			Workflows: engine.Workflows(),
			Documents: engine.Documents(),
			Chat:      engine.Chat(),
			Logger:    logger,
		})

		srv := &http.Server{
			Addr:    cfg.Addr,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Lattice Server on %s\n", srv.Addr)
			fmt.Printf("Storing data under: %s\n", cfg.BasePath)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Lattice Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Listen address (default :8000)")
}
