// Package config loads server and tool configuration from an optional YAML
// file and SMARTPM_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Transport modes.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Store     StoreConfig     `yaml:"store"`
	Workbook  WorkbookConfig  `yaml:"workbook"`
	Log       LogConfig       `yaml:"log"`
	Session   SessionConfig   `yaml:"session"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"`
}

type StoreConfig struct {
	Driver        string `yaml:"driver"`
	ProjectsPath  string `yaml:"projects_path"`
	ChangeLogPath string `yaml:"changelog_path"`
	DBPath        string `yaml:"db_path"`
}

type WorkbookConfig struct {
	DataDir    string `yaml:"data_dir"`
	SharedPath string `yaml:"shared_path"`
	BackupDir  string `yaml:"backup_dir"`
	Watch      bool   `yaml:"watch"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

type SessionConfig struct {
	User string `yaml:"user"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: TransportStdio,
		},
		Store: StoreConfig{
			Driver:        DriverJSON,
			ProjectsPath:  "projects_database.json",
			ChangeLogPath: "changelog.json",
			DBPath:        "smartpm.db",
		},
		Workbook: WorkbookConfig{
			DataDir:   ".",
			BackupDir: "backups",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  5,
			MaxBackups: 3,
		},
		Session: SessionConfig{
			User: "Текущий пользователь",
		},
	}
}

// Load reads configuration from the YAML file named by SMARTPM_CONFIG_PATH,
// if any, and environment variables.
func Load() (Config, error) {
	return LoadFile(os.Getenv("SMARTPM_CONFIG_PATH"))
}

// LoadFile is Load with an explicit file path. An empty path skips the file.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"SMARTPM_SERVER_HOST":    &cfg.Server.Host,
		"SMARTPM_TRANSPORT_MODE": &cfg.Transport.Mode,
		"SMARTPM_STORE_DRIVER":   &cfg.Store.Driver,
		"SMARTPM_PROJECTS_PATH":  &cfg.Store.ProjectsPath,
		"SMARTPM_CHANGELOG_PATH": &cfg.Store.ChangeLogPath,
		"SMARTPM_DB_PATH":        &cfg.Store.DBPath,
		"SMARTPM_DATA_DIR":       &cfg.Workbook.DataDir,
		"SMARTPM_SHARED_PATH":    &cfg.Workbook.SharedPath,
		"SMARTPM_BACKUP_DIR":     &cfg.Workbook.BackupDir,
		"SMARTPM_LOG_LEVEL":      &cfg.Log.Level,
		"SMARTPM_LOG_PATH":       &cfg.Log.Path,
		"SMARTPM_USER":           &cfg.Session.User,
	}
	for name, dst := range strs {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"SMARTPM_SERVER_PORT":     &cfg.Server.Port,
		"SMARTPM_LOG_MAX_SIZE_MB": &cfg.Log.MaxSizeMB,
		"SMARTPM_LOG_MAX_BACKUPS": &cfg.Log.MaxBackups,
	}
	for name, dst := range ints {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		*dst = n
	}

	if v := os.Getenv("SMARTPM_WATCH"); v != "" {
		watch, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SMARTPM_WATCH: %w", err)
		}
		cfg.Workbook.Watch = watch
	}
	return nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	switch c.Store.Driver {
	case DriverJSON, DriverSQLite:
	default:
		return fmt.Errorf("invalid store driver %q", c.Store.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// Resolve joins a relative path onto the data directory. Absolute paths,
// empty strings and names like ":memory:" are returned unchanged.
func (c Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || strings.HasPrefix(path, ":") {
		return path
	}
	return filepath.Join(c.Workbook.DataDir, path)
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
