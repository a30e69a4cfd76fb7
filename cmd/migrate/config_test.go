package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsDir_EnvOverride(t *testing.T) {
	t.Setenv("MIGRATIONS_DIR", "/custom/migrations")

	assert.Equal(t, "/custom/migrations", migrationsDir())
}

func TestMigrationsDir_Default(t *testing.T) {
	t.Setenv("MIGRATIONS_DIR", "")

	assert.Equal(t, defaultMigrationsDir, migrationsDir())
}

func TestLoadMigrateConfig_EnvWinsOverDotEnv(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, ".env"), []byte("DB_DSN=from_file\n"), 0o644))

	cwd, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmp))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	t.Setenv("DB_DSN", "from_env")
	mc, err := loadMigrateConfig()
	require.NoError(t, err)
	assert.Equal(t, "from_env", mc.DSN)
}

func TestNewCommand_FlagDefaults(t *testing.T) {
	cmd := newCommand(migrateConfig{DSN: "postgres://x", Dir: "db/migrations"})

	names := make([]string, 0, len(cmd.Commands))
	for _, c := range cmd.Commands {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"up", "down", "status", "create"}, names)
}

func TestNewCommand_HelpMasksDSNPassword(t *testing.T) {
	cmd := newCommand(migrateConfig{DSN: "postgres://admin:hunter2@db:5432/books", Dir: "db/migrations"})
	var out bytes.Buffer
	cmd.Writer = &out

	require.NoError(t, cmd.Run(context.Background(), []string{"migrate", "--help"}))

	assert.Contains(t, out.String(), "postgres://***@db:5432/books")
	assert.NotContains(t, out.String(), "hunter2")
}
