package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ferry/internal/app"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	application := app.New()
	os.Exit(application.RunWithContext(ctx, os.Args[1:]))
}
