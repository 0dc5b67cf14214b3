package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/keyshort/url-shortener/internal/app"
	"github.com/keyshort/url-shortener/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to run app: %v", err)
	}
}
