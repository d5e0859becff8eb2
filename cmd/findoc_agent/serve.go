package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jonathan/findoc-analyzer/internal/config"
	"github.com/jonathan/findoc-analyzer/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that accepts PDF uploads, queues them for analysis,
and exposes job status, history, and synchronous analysis endpoints.`,
	RunE: runServe,
}

var (
	serveConfigPath string
	servePort       int
	serveWorkers    int
)

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().IntVar(&serveWorkers, "workers", 0, "Worker pool size (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = serveWorkers
	}

	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.close()

	// Workers run alongside the HTTP server in the same process.
	go func() {
		if err := rt.pool.Run(ctx); err != nil {
			slog.Error("worker pool stopped", "error", err)
		}
	}()

	srv, err := server.New(server.Config{
		Port:    cfg.Port,
		DataDir: cfg.DataDir,
	}, rt.jobs, rt.pool, rt.runner, slog.Default())
	if err != nil {
		return err
	}

	return srv.Start()
}
