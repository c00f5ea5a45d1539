package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/nbukhari/diwan/internal/logging"
	"github.com/nbukhari/diwan/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Diwan API server",
		Long:  "Serves the task lifecycle JSON API and the dashboard event stream. Stops cleanly on SIGINT/SIGTERM.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "diwan.yaml", "path to Diwan config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "override server.port from config")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	cfg, gormDB, err := openFromConfig(configPath)
	if err != nil {
		return err
	}
	if err := logging.Init(logging.Options{Dir: cfg.Log.Dir, Level: cfg.Log.Level}); err != nil {
		return err
	}
	if cfg.Server.JWTSecret == "" {
		return fmt.Errorf("server.jwt_secret (or DIWAN_JWT_SECRET) is required")
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Start(ctx, server.StartOpts{
		DB:        gormDB,
		Schema:    buildSchema(cfg),
		JWTSecret: cfg.Server.JWTSecret,
		Port:      port,
		Out:       cmd.OutOrStdout(),
	})
}
