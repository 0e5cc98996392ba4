package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gemrelay/gemrelay/internal/storage"
	"github.com/gemrelay/gemrelay/internal/transport/http/handler/shared"
)

// ensureAdminPassword stores the admin password from the ADMIN_PASSWORD
// environment variable on first run. With no password configured the
// admin API stays open, which is acceptable for localhost deployments.
func ensureAdminPassword(store storage.Storage, logger *slog.Logger) error {
	hasPassword, err := store.HasAdminPassword()
	if err != nil {
		return fmt.Errorf("failed to check admin password: %w", err)
	}
	if hasPassword {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		logger.Warn("no admin password configured; admin API is unauthenticated",
			"hint", "set ADMIN_PASSWORD or PUT /api/admin/password")
		return nil
	}

	if !shared.IsValidAdminPassword(password) {
		return fmt.Errorf("ADMIN_PASSWORD must be alphanumeric with at least 8 characters")
	}

	hash, err := storage.HashPassword(password, storage.DefaultArgon2Params())
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := store.SetAdminPasswordHash(hash); err != nil {
		return fmt.Errorf("failed to save password: %w", err)
	}

	logger.Info("admin password configured from environment")
	return nil
}
