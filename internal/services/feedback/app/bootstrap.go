package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/emojifeedback/internal/services/feedback/catalog"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/service"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/user"
)

// BootstrapOptions selects the startup data to ensure.
type BootstrapOptions struct {
	SeedCatalog   bool
	AdminEmail    string
	AdminPassword string
}

// BootstrapResult reports what Bootstrap changed.
type BootstrapResult struct {
	EmojisAdded  int
	AdminCreated bool
}

// Bootstrap seeds the default catalog and creates the admin account when
// configured. An existing account with the admin email is left untouched.
func Bootstrap(ctx context.Context, desk *service.Service, opts BootstrapOptions) (BootstrapResult, error) {
	var result BootstrapResult
	if desk == nil {
		return result, errors.New("feedback desk is required")
	}
	if opts.SeedCatalog {
		added, err := desk.Catalog().Seed(ctx, catalog.DefaultSeed())
		if err != nil {
			return result, fmt.Errorf("seed catalog: %w", err)
		}
		result.EmojisAdded = added
	}

	email := strings.TrimSpace(opts.AdminEmail)
	if email == "" {
		return result, nil
	}
	if opts.AdminPassword == "" {
		return result, errors.New("admin password is required when admin email is set")
	}
	_, err := desk.Identity().Register(ctx, email, opts.AdminPassword, user.RoleAdmin)
	switch {
	case err == nil:
		result.AdminCreated = true
	case errors.Is(err, storage.ErrDuplicateEmail):
	default:
		return result, fmt.Errorf("bootstrap admin: %w", err)
	}
	return result, nil
}
