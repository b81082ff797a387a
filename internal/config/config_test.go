package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BotToken: "123456:test-token",
		BaseDir:  "/home/user/.local/share/tgstore",
		LogDir:   "/home/user/.local/share/tgstore/log",
		Limits: LimitsConfig{
			MaxUploadBytes:   4 * gib,
			MaxDownloadBytes: 10 * gib,
			PlatformMaxBytes: 2 * gib,
			MaxFilesPerOwner: 100,
			StatsTopN:        5,
		},
		Database: DatabaseConfig{Type: "sqlite", DataDir: "/home/user/.local/share/tgstore/db"},
		Server:   ServerConfig{Addr: ":5000"},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BotToken != original.BotToken {
		t.Errorf("BotToken = %q, want %q", got.BotToken, original.BotToken)
	}
	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.Limits != original.Limits {
		t.Errorf("Limits = %+v, want %+v", got.Limits, original.Limits)
	}
	if got.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want %q", got.Database.Type, "sqlite")
	}
	if got.Database.DataDir != original.Database.DataDir {
		t.Errorf("Database.DataDir = %q, want %q", got.Database.DataDir, original.Database.DataDir)
	}
	if got.Server.Addr != ":5000" {
		t.Errorf("Server.Addr = %q, want %q", got.Server.Addr, ":5000")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/tgstore")

	if cfg.BaseDir != "/data/tgstore" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/tgstore")
	}
	if cfg.LogDir != "/data/tgstore/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/tgstore/log")
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want %q", cfg.Database.Type, "sqlite")
	}
	if cfg.Database.DataDir != "/data/tgstore/db" {
		t.Errorf("Database.DataDir = %q, want %q", cfg.Database.DataDir, "/data/tgstore/db")
	}
	if cfg.Limits.MaxUploadBytes != 4*gib {
		t.Errorf("Limits.MaxUploadBytes = %d, want %d", cfg.Limits.MaxUploadBytes, 4*gib)
	}
	if cfg.Limits.PlatformMaxBytes != DefaultPlatformMaxBytes {
		t.Errorf("Limits.PlatformMaxBytes = %d, want %d", cfg.Limits.PlatformMaxBytes, DefaultPlatformMaxBytes)
	}
	if cfg.Limits.MaxFilesPerOwner != 100 {
		t.Errorf("Limits.MaxFilesPerOwner = %d, want %d", cfg.Limits.MaxFilesPerOwner, 100)
	}
	if cfg.Server.Addr != ":5000" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":5000")
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "tgstore.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "tgstore.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "tgstore.toml")
		cfg := NewConfig(dir)
		cfg.BotToken = "from-file"
		cfg.Database = DatabaseConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		t.Setenv("TELEGRAM_BOT_TOKEN", "")
		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.BotToken != "from-file" {
			t.Errorf("BotToken = %q, want %q", got.BotToken, "from-file")
		}
		if got.Database.Type != "memory" {
			t.Errorf("Database.Type = %q, want %q", got.Database.Type, "memory")
		}
	})

	t.Run("environment variable overrides the file token", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "tgstore.toml")
		cfg := NewConfig(dir)
		cfg.BotToken = "from-file"

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")
		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.BotToken != "from-env" {
			t.Errorf("BotToken = %q, want %q", got.BotToken, "from-env")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/tgstore.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
