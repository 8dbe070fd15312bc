// Package bootstrap handles one-time initialization tasks for the application.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vietart/artmarket/internal/auth"
	"github.com/vietart/artmarket/internal/domain"
)

// AdminConfig contains configuration for the initial admin user.
type AdminConfig struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Validate checks that the admin configuration is valid.
func (c *AdminConfig) Validate() error {
	if c.Email == "" {
		return errors.New("admin email is required")
	}
	if c.Password == "" {
		return errors.New("admin password is required")
	}
	if len(c.Password) < 12 {
		return errors.New("admin password must be at least 12 characters")
	}
	return nil
}

// EnsureAdmin creates the initial admin user if it doesn't exist.
// This function is idempotent - safe to call on every startup.
//
// If the admin user already exists (by email), it returns without error.
// If AdminConfig is nil or has empty Email/Password, it logs a warning and skips.
func EnsureAdmin(ctx context.Context, users domain.UserStore, cfg *AdminConfig, logger *slog.Logger) error {
	// If no config provided, skip admin creation (allows running without admin in dev)
	if cfg == nil || cfg.Email == "" || cfg.Password == "" {
		logger.Warn("bootstrap: skipping admin creation - ADMIN_EMAIL or ADMIN_PASSWORD not set",
			"hint", "Set these environment variables to create an admin user on first startup",
		)
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid admin configuration: %w", err)
	}

	existing, err := users.GetByEmail(ctx, cfg.Email)
	if err == nil && existing != nil {
		logger.Info("bootstrap: admin user already exists", "email", cfg.Email)
		return nil
	}
	if err != nil && domain.ErrorCode(err) != domain.ENOTFOUND {
		return fmt.Errorf("failed to check for existing admin: %w", err)
	}

	passwordHash, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	firstName := cfg.FirstName
	if firstName == "" {
		firstName = "Admin"
	}
	lastName := cfg.LastName
	if lastName == "" {
		lastName = "User"
	}

	user, err := users.Create(ctx, domain.CreateUserParams{
		Email:     cfg.Email,
		FirstName: firstName,
		LastName:  lastName,
		Role:      domain.RoleAdmin,
	}, passwordHash)
	if err != nil {
		// Concurrent startup may have created it between the check and insert.
		if domain.ErrorCode(err) == domain.ECONFLICT {
			logger.Info("bootstrap: admin user already exists (concurrent creation)", "email", cfg.Email)
			return nil
		}
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("bootstrap: admin user created successfully",
		"email", cfg.Email,
		"user_id", user.ID,
	)

	return nil
}
