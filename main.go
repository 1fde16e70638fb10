package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shandysiswandi/credkeep/internal/app"
)

func main() {
	application := app.New() // Initialize the application

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := application.Run(ctx, os.Args[1:]) // Run one command until it returns or is interrupted
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	application.Stop(shutdownCtx) // Flush pending events and close resources
	cancel()

	os.Exit(code)
}
