package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for tgstore.
type Config struct {
	BotToken string         `toml:"bot_token"`
	BaseDir  string         `toml:"base_dir"`
	LogDir   string         `toml:"log_dir"`
	Limits   LimitsConfig   `toml:"limits"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
}

// LimitsConfig holds the size ceilings and quotas the core enforces.
type LimitsConfig struct {
	MaxUploadBytes   int64 `toml:"max_upload_bytes"`
	MaxDownloadBytes int64 `toml:"max_download_bytes"`
	PlatformMaxBytes int64 `toml:"platform_max_bytes"` // Telegram's own transfer ceiling
	MaxFilesPerOwner int   `toml:"max_files_per_owner"`
	StatsTopN        int   `toml:"stats_top_n"`
}

// DatabaseConfig represents configuration for the metadata database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// ServerConfig holds settings for the webhook HTTP server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

const (
	gib = int64(1024 * 1024 * 1024)

	// DefaultPlatformMaxBytes is Telegram's per-file transfer ceiling.
	DefaultPlatformMaxBytes = 2 * gib
)

// NewConfig creates a Config with the provided base directory and default
// limits matching Telegram's transfer ceilings.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Limits: LimitsConfig{
			MaxUploadBytes:   4 * gib,
			MaxDownloadBytes: 10 * gib,
			PlatformMaxBytes: DefaultPlatformMaxBytes,
			MaxFilesPerOwner: 100,
			StatsTopN:        5,
		},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Server: ServerConfig{
			Addr: ":5000",
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path. The bot token
// can be overridden with the TELEGRAM_BOT_TOKEN environment variable so
// the secret never has to live in the config file.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.BotToken = token
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
