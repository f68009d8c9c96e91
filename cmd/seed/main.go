// Package main seeds the feedback store with the default emoji catalog and an
// optional admin account.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/emojifeedback/internal/cmd/seed"
	entrypoint "github.com/louisbranch/emojifeedback/internal/platform/cmd"
	"github.com/louisbranch/emojifeedback/internal/platform/config"
)

func main() {
	cfg, err := seed.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := seed.Run(ctx, cfg, os.Stdout); err != nil {
		config.Exitf("Error: %s", entrypoint.Describe(err, cfg.Locale))
	}
}
