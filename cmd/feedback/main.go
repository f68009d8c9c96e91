// Package main starts the feedback service process lifecycle.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	feedbackcmd "github.com/louisbranch/emojifeedback/internal/cmd/feedback"
	entrypoint "github.com/louisbranch/emojifeedback/internal/platform/cmd"
)

func main() {
	cfg, err := feedbackcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[FEEDBACK] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := feedbackcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %s", entrypoint.Describe(err, cfg.Locale))
	}
}
