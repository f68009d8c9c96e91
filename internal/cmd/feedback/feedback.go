// Package feedback parses feedback command flags and launches the runtime.
package feedback

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	entrypoint "github.com/louisbranch/emojifeedback/internal/platform/cmd"
	platformgrpc "github.com/louisbranch/emojifeedback/internal/platform/grpc"
	"github.com/louisbranch/emojifeedback/internal/platform/timeouts"
	feedbackapp "github.com/louisbranch/emojifeedback/internal/services/feedback/app"
)

// Config holds feedback command configuration.
type Config struct {
	Port          int           `env:"PORT" envDefault:"8091"`
	DatabaseURL   string        `env:"DATABASE_URL" envDefault:"data/feedback.db"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	TokenSecret   string        `env:"TOKEN_SECRET"`
	TokenIssuer   string        `env:"TOKEN_ISSUER" envDefault:"emojifeedback"`
	SeedCatalog   bool          `env:"SEED_CATALOG" envDefault:"true"`
	AdminEmail    string        `env:"ADMIN_EMAIL"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`
	// Locale picks the language of error messages printed on exit.
	Locale string `env:"LOCALE" envDefault:"en-US"`
	// Probe checks a running server's health instead of serving.
	Probe     bool
	ProbeAddr string
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The feedback gRPC server port")
	fs.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "SQLite path or postgres:// connection string")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "Lifetime of login sessions")
	fs.StringVar(&cfg.TokenIssuer, "token-issuer", cfg.TokenIssuer, "Issuer recorded in access tokens")
	fs.BoolVar(&cfg.SeedCatalog, "seed-catalog", cfg.SeedCatalog, "Seed the default emoji catalog at startup")
	fs.StringVar(&cfg.AdminEmail, "admin-email", cfg.AdminEmail, "Email of the admin account to ensure at startup")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Language of error messages, e.g. en-US or pt-BR")
	fs.BoolVar(&cfg.Probe, "probe", false, "Check the health of a running server and exit")
	fs.StringVar(&cfg.ProbeAddr, "probe-addr", "", "Address to probe (default: localhost:<port>)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("session ttl must be positive")
	}
	if cfg.ProbeAddr == "" {
		cfg.ProbeAddr = fmt.Sprintf("localhost:%d", cfg.Port)
	}
	return cfg, nil
}

// Run starts the feedback runtime, or probes a running one.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Probe {
		return platformgrpc.Probe(ctx, cfg.ProbeAddr, feedbackapp.HealthService, timeouts.Probe, log.Printf)
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceFeedback, func(ctx context.Context) error {
		return feedbackapp.Run(ctx, feedbackapp.Config{
			Port:          cfg.Port,
			DatabaseURL:   cfg.DatabaseURL,
			SessionTTL:    cfg.SessionTTL,
			TokenSecret:   cfg.TokenSecret,
			TokenIssuer:   cfg.TokenIssuer,
			SeedCatalog:   cfg.SeedCatalog,
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
		})
	})
}
