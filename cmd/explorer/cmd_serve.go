package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"edudata-explorer/internal/server"
)

var serveFlags struct {
	addr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the explorer as a JSON API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "Listen address (default server.address)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, svc, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	addr := cfg.Server.Address
	if serveFlags.addr != "" {
		addr = serveFlags.addr
	}

	router := server.SetupRouter(cfg.Server, svc, log)
	return server.Run(ctx, addr, router, log)
}
