// Command slc-server serves the SimpleLang compiler over HTTP.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/labstack/echo/v4"

	"slc/pkg/config"
	"slc/pkg/server"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if *verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	s := server.NewServer(e, cfg.Server)
	server.NewCompileRouter(e, cfg).Bind()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := s.Start(ctx); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
