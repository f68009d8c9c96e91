// Package seed parses seed command flags and seeds the feedback store.
package seed

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"

	entrypoint "github.com/louisbranch/emojifeedback/internal/platform/cmd"
	feedbackapp "github.com/louisbranch/emojifeedback/internal/services/feedback/app"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/catalog"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/service"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage/backend"
)

// Config holds seed command configuration.
type Config struct {
	DatabaseURL   string `env:"DATABASE_URL" envDefault:"data/feedback.db"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	Locale        string `env:"LOCALE" envDefault:"en-US"`
	List          bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "SQLite path or postgres:// connection string")
	fs.StringVar(&cfg.AdminEmail, "admin-email", cfg.AdminEmail, "Email of an admin account to create")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "language of error messages, e.g. en-US or pt-BR")
	fs.BoolVar(&cfg.List, "list", false, "list the default emoji catalog and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the seed command.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if cfg.List {
		fmt.Fprintln(out, "Default emoji catalog:")
		for _, entry := range catalog.DefaultSeed() {
			fmt.Fprintf(out, "  %s  %s\n", entry.Character, entry.Meaning)
		}
		return nil
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSeed, func(ctx context.Context) error {
		return seedStore(ctx, cfg, out)
	})
}

func seedStore(ctx context.Context, cfg Config, out io.Writer) error {
	store, err := backend.Open(ctx, cfg.DatabaseURL, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close feedback store: %v", err)
		}
	}()

	result, err := feedbackapp.Bootstrap(ctx, service.New(store, service.Config{}, nil), feedbackapp.BootstrapOptions{
		SeedCatalog:   true,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Added %d emojis\n", result.EmojisAdded)
	if result.AdminCreated {
		fmt.Fprintf(out, "Created admin %s\n", cfg.AdminEmail)
	}
	return nil
}
