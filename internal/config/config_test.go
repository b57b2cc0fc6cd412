package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTOML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edificio.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom("", map[string]string{"JWT_SECRET": "s3cret"})
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "database.db", cfg.DatabaseURL)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "atomic", cfg.AllocationMode)
	assert.Equal(t, "ignore", cfg.OverpaymentMode)
	assert.Equal(t, "archivos", cfg.S3Bucket)
	assert.True(t, cfg.S3UsePathStyle)
	assert.Equal(t, "Admin Edificios Backups", cfg.DriveFolderName)
	assert.Equal(t, time.Duration(0), cfg.BackupInterval)
	assert.Equal(t, 10*time.Minute, cfg.MaintenanceInterval)
	assert.Equal(t, 30*time.Second, cfg.PDFTimeout)
}

func TestLoadFrom_RequiresSecret(t *testing.T) {
	_, err := LoadFrom("", map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadFrom_FileAndEnvironment(t *testing.T) {
	path := writeTOML(t, `
jwt_secret = "from-file"
port = 9090
database_driver = "postgres"
database_url = "postgres://localhost/edificio"
backup_interval = "24h"

[s3]
endpoint = "http://localhost:9000"
access_key = "ak"
use_path_style = false

[building]
name = "Torre Sur"
`)

	cfg, err := LoadFrom(path, map[string]string{"PORT": "7000", "S3_ACCESS_KEY": "env-ak"})
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "postgres://localhost/edificio", cfg.DatabaseURL)
	assert.Equal(t, 24*time.Hour, cfg.BackupInterval)
	assert.Equal(t, "http://localhost:9000", cfg.S3Endpoint)
	assert.Equal(t, "env-ak", cfg.S3AccessKey)
	assert.False(t, cfg.S3UsePathStyle)
	assert.Equal(t, "Torre Sur", cfg.BuildingName)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"driver", map[string]string{"DATABASE_DRIVER": "mysql"}, "DATABASE_DRIVER"},
		{"allocation mode", map[string]string{"ALLOCATION_MODE": "eager"}, "ALLOCATION_MODE"},
		{"overpayment mode", map[string]string{"OVERPAYMENT_MODE": "refund"}, "OVERPAYMENT_MODE"},
		{"maintenance interval", map[string]string{"MAINTENANCE_INTERVAL": "0s"}, "MAINTENANCE_INTERVAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.env["JWT_SECRET"] = "x"
			_, err := LoadFrom("", tt.env)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFrom_BadFile(t *testing.T) {
	path := writeTOML(t, "port = = 1")
	_, err := LoadFrom(path, map[string]string{"JWT_SECRET": "x"})
	require.Error(t, err)
}
