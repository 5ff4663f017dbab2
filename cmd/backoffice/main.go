package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Environ(), os.Getwd, os.Args[1:]); err != nil {
		// App logger may be not initialized yet
		slog.Error("backoffice stopped with error", "error", err.Error())
		os.Exit(1)
	}
}

// Run app until context cancelled or app failed
func run(ctx context.Context, environ []string, getwd func() (string, error), args []string) error {
	c, err := LoadConfig(environ, getwd, args)
	if err != nil {
		return err
	}

	srv, err := NewServerApp(ctx, c)
	if err != nil {
		return fmt.Errorf("can't initialize app, sorry: %w", err)
	}

	return srv.Run(ctx)
}
