package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.LoaderMode != LoaderCopy {
		t.Errorf("expected default loader_mode %q, got %q", LoaderCopy, cfg.LoaderMode)
	}
	if cfg.BatchSize != DefaultBatchSize {
		t.Errorf("expected default batch_size %d, got %d", DefaultBatchSize, cfg.BatchSize)
	}
	if cfg.LogDir != "logs" {
		t.Errorf("expected default log_dir %q, got %q", "logs", cfg.LogDir)
	}
	if cfg.Database.Port == 0 {
		t.Error("default database port not set")
	}
}

func TestDefaultConfigHonorsPGEnv(t *testing.T) {
	os.Setenv("PGHOST", "warehouse.internal")
	os.Setenv("PGPORT", "5433")
	os.Setenv("PGDATABASE", "hadoop_logs")
	defer func() {
		os.Unsetenv("PGHOST")
		os.Unsetenv("PGPORT")
		os.Unsetenv("PGDATABASE")
	}()

	cfg := DefaultConfig()
	if cfg.Database.Host != "warehouse.internal" {
		t.Errorf("PGHOST not honored: got %q", cfg.Database.Host)
	}
	if cfg.Database.Port != 5433 {
		t.Errorf("PGPORT not honored: got %d", cfg.Database.Port)
	}
	if cfg.Database.Name != "hadoop_logs" {
		t.Errorf("PGDATABASE not honored: got %q", cfg.Database.Name)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.logward.yml")

	original := DefaultConfig()
	original.LogDir = "/var/log/hadoop"
	original.OutDir = "/srv/warehouse"
	original.LoaderMode = LoaderBatch
	original.BatchSize = 250
	original.Database.Host = "db.example.com"
	original.Database.Name = "logs"

	// Save.
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load back.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Verify round-trip.
	if loaded.LogDir != original.LogDir {
		t.Errorf("log_dir: got %q, want %q", loaded.LogDir, original.LogDir)
	}
	if loaded.OutDir != original.OutDir {
		t.Errorf("out_dir: got %q, want %q", loaded.OutDir, original.OutDir)
	}
	if loaded.LoaderMode != original.LoaderMode {
		t.Errorf("loader_mode: got %q, want %q", loaded.LoaderMode, original.LoaderMode)
	}
	if loaded.BatchSize != original.BatchSize {
		t.Errorf("batch_size: got %d, want %d", loaded.BatchSize, original.BatchSize)
	}
	if loaded.Database.Host != original.Database.Host {
		t.Errorf("database.host: got %q, want %q", loaded.Database.Host, original.Database.Host)
	}
	if loaded.Database.Name != original.Database.Name {
		t.Errorf("database.name: got %q, want %q", loaded.Database.Name, original.Database.Name)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.LoaderMode != LoaderCopy {
		t.Errorf("expected default loader_mode, got %q", cfg.LoaderMode)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	os.Setenv("LOGWARD_LOADER_MODE", "batch")
	os.Setenv("LOGWARD_DATABASE__HOST", "override.internal")
	defer func() {
		os.Unsetenv("LOGWARD_LOADER_MODE")
		os.Unsetenv("LOGWARD_DATABASE__HOST")
	}()

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.LoaderMode != LoaderBatch {
		t.Errorf("env override failed: got %q, want %q", loaded.LoaderMode, LoaderBatch)
	}
	if loaded.Database.Host != "override.internal" {
		t.Errorf("nested env override failed: got %q", loaded.Database.Host)
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateInvalidLoaderMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LoaderMode = "bulk"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid loader_mode")
	}
}

func TestValidateEmptyLogDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogDir = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty log_dir")
	}
}

func TestValidateEmptyOutDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutDir = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty out_dir")
	}
}

func TestValidateBatchSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchSize = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for zero batch_size")
	}
}

func TestValidateInvalidLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "loud"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid log_level")
	}
}

func TestValidateDatabasePort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for out-of-range port")
	}
}

func TestDSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database = Database{
		Host:     "db.example.com",
		Port:     5433,
		Name:     "logs",
		User:     "loader",
		Password: "s3cret/with@chars",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	if !strings.HasPrefix(dsn, "postgres://") {
		t.Fatalf("DSN = %q", dsn)
	}
	if !strings.Contains(dsn, "db.example.com:5433") {
		t.Errorf("DSN missing host: %q", dsn)
	}
	if !strings.Contains(dsn, "/logs") {
		t.Errorf("DSN missing database: %q", dsn)
	}
	if !strings.Contains(dsn, "sslmode=require") {
		t.Errorf("DSN missing sslmode: %q", dsn)
	}
	if strings.Contains(dsn, "s3cret/with@chars") {
		t.Errorf("DSN password not escaped: %q", dsn)
	}
}

func TestDSNWithoutPassword(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database = Database{
		Host: "localhost", Port: 5432, Name: "logward", User: "postgres", SSLMode: "disable",
	}
	dsn := cfg.DSN()
	if strings.Contains(dsn, ":@") {
		t.Errorf("DSN has empty password separator: %q", dsn)
	}
}
