package main

import (
	"os"

	"bookreviews/internal/config"
)

const defaultMigrationsDir = "db/migrations"

type migrateConfig struct {
	DSN string
	Dir string
}

// loadMigrateConfig takes the DSN from the shared configuration and the
// migrations directory from MIGRATIONS_DIR.
func loadMigrateConfig() (migrateConfig, error) {
	cfg, err := config.Read()
	if err != nil {
		return migrateConfig{}, err
	}
	return migrateConfig{DSN: cfg.Database.DSN, Dir: migrationsDir()}, nil
}

func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return defaultMigrationsDir
}
