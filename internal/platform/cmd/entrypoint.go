// Package cmd holds the startup plumbing shared by the feedback commands.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/louisbranch/emojifeedback/internal/platform/config"
	apperrors "github.com/louisbranch/emojifeedback/internal/platform/errors"
	"github.com/louisbranch/emojifeedback/internal/platform/otel"
	"github.com/louisbranch/emojifeedback/internal/platform/timeouts"
)

// Service names reported as the OpenTelemetry service.name of each command.
const (
	ServiceFeedback    = "feedback"
	ServiceSeed        = "seed"
	ServiceMaintenance = "maintenance"
)

// ParseConfig loads environment defaults into cfg.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// RunWithTelemetry sets up tracing for service, runs run, and flushes
// pending spans before returning run's error.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	if run == nil {
		return fmt.Errorf("run function is required")
	}
	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("%s otel shutdown: %v", service, err)
		}
	}()
	return run(ctx)
}

// Describe renders err for a terminal in the language closest to locale.
// Coded errors lead with their catalog message and keep the internal detail
// in parentheses.
func Describe(err error, locale string) string {
	if err == nil {
		return ""
	}
	message := apperrors.Message(err, locale)
	if detail := err.Error(); detail != message {
		return fmt.Sprintf("%s (%s)", message, detail)
	}
	return message
}
