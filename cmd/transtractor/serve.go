package main

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/insightdelivered/transtractor/internal/api"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes parse, debug and layout over HTTP. Statements are
uploaded as multipart form data and nothing is stored after the
response is sent.`,
		RunE: runServe,
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	p, err := newParser()
	if err != nil {
		return err
	}
	handler := &api.Handler{
		Parser:  p,
		Log:     slog.Default(),
		Version: version,
	}

	app := fiber.New(fiber.Config{
		AppName:   "transtractor " + version,
		BodyLimit: 32 << 20,
	})
	handler.Register(app)

	addr := viper.GetString("server.addr")
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(addr)
	}()
	slog.Info("API listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
		slog.Info("shutting down")
		return app.Shutdown()
	}
}
