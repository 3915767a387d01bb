package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Apurer/provider-onboarding/internal/app/api"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if err := api.Run(ctx, cfg); err != nil {
		log.Fatalf("onboarding API exited: %v", err)
	}
}
