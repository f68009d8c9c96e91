// Package maintenance runs offline upkeep against the feedback store.
package maintenance

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	entrypoint "github.com/louisbranch/emojifeedback/internal/platform/cmd"
	apperrors "github.com/louisbranch/emojifeedback/internal/platform/errors"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/session"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage/backend"
)

// Config holds maintenance command configuration.
type Config struct {
	DatabaseURL string        `env:"DATABASE_URL" envDefault:"data/feedback.db"`
	Timeout     time.Duration `env:"MAINTENANCE_TIMEOUT" envDefault:"2m"`
	// OlderThan is the grace period after expiry or revocation before a
	// session row is purged.
	OlderThan  time.Duration `env:"MAINTENANCE_SESSION_GRACE" envDefault:"168h"`
	Locale     string        `env:"LOCALE" envDefault:"en-US"`
	JSONOutput bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "SQLite path or postgres:// connection string")
	fs.DurationVar(&cfg.OlderThan, "older-than", cfg.OlderThan, "purge sessions that ended before now minus this duration")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "language of error messages, e.g. en-US or pt-BR")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "output a JSON report")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.OlderThan < 0 {
		return errors.New("-older-than must not be negative")
	}
	if cfg.Timeout <= 0 {
		return errors.New("-timeout must be positive")
	}
	return nil
}

// Report summarizes one maintenance run.
type Report struct {
	PurgedSessions int64  `json:"purged_sessions"`
	OlderThan      string `json:"older_than"`
	Code           string `json:"code,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Run executes the maintenance command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if err := validate(cfg); err != nil {
		return err
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMaintenance, func(ctx context.Context) error {
		return runPurge(ctx, cfg, out, errOut)
	})
}

func runPurge(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	store, err := backend.Open(ctx, cfg.DatabaseURL, nil)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			fmt.Fprintf(errOut, "close feedback store: %v\n", closeErr)
		}
	}()

	report, err := purgeSessions(ctx, store, nil, cfg.OlderThan)
	if cfg.JSONOutput {
		if encodeErr := json.NewEncoder(out).Encode(report); encodeErr != nil {
			return fmt.Errorf("encode report: %w", encodeErr)
		}
		return err
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Purged %d sessions that ended more than %s ago\n", report.PurgedSessions, report.OlderThan)
	return nil
}

func purgeSessions(ctx context.Context, store storage.SessionStore, clock func() time.Time, olderThan time.Duration) (Report, error) {
	report := Report{OlderThan: olderThan.String()}
	manager := session.NewManager(store, nil, clock)
	purged, err := manager.PurgeExpired(ctx, olderThan)
	if err != nil {
		report.Code = string(apperrors.GetCode(err))
		report.Error = err.Error()
		return report, err
	}
	report.PurgedSessions = purged
	return report, nil
}
