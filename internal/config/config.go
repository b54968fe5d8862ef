package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/studiowebux/kycfill/internal/types"
	"gopkg.in/yaml.v3"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// DefaultAPIBase is the address of a locally running service
	DefaultAPIBase = "http://localhost:8000"

	// LocalConfigFile overrides the global config when present in the working directory
	LocalConfigFile = ".kycfill.yaml"
)

// Race policies for overlapping intake and generation requests
const (
	RaceLastResponseWins  = "last-response-wins"
	RaceLatestRequestWins = "latest-request-wins"
)

var (
	// ConfigDir is the global configuration directory (~/.kycfill)
	ConfigDir string

	// ConfigFile is the global settings file
	ConfigFile string

	// DatabasePath is the SQLite database file for exchange history
	DatabasePath string

	// LogFile receives TUI logs (the terminal belongs to the UI)
	LogFile string
)

// Settings holds user configurable behavior
type Settings struct {
	APIBase        string            `yaml:"api_base"`
	Timeout        time.Duration     `yaml:"timeout"` // 0 means no client timeout
	RacePolicy     string            `yaml:"race_policy"`
	HistoryEnabled *bool             `yaml:"history,omitempty"`
	ProfileFormat  string            `yaml:"profile_format"` // json or yaml
	Hints          map[string]string `yaml:"hints,omitempty"`
	DocumentExts   []string          `yaml:"document_extensions,omitempty"`
	TLS            *types.TLSConfig  `yaml:"tls,omitempty"`
}

// Defaults returns the settings used when nothing is configured
func Defaults() Settings {
	enabled := true
	return Settings{
		APIBase:        DefaultAPIBase,
		RacePolicy:     RaceLastResponseWins,
		HistoryEnabled: &enabled,
		ProfileFormat:  "json",
		DocumentExts:   []string{".pdf", ".docx", ".doc", ".txt", ".png", ".jpg", ".jpeg", ".tiff"},
	}
}

// IsHistoryEnabled reports whether exchanges are recorded
func (s Settings) IsHistoryEnabled() bool {
	return s.HistoryEnabled == nil || *s.HistoryEnabled
}

// Validate checks settings values
func (s Settings) Validate() error {
	if s.APIBase == "" {
		return fmt.Errorf("api_base is required")
	}
	if !strings.HasPrefix(s.APIBase, "http://") && !strings.HasPrefix(s.APIBase, "https://") {
		return fmt.Errorf("api_base must start with http:// or https://: %s", s.APIBase)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	switch s.RacePolicy {
	case RaceLastResponseWins, RaceLatestRequestWins:
	default:
		return fmt.Errorf("unknown race_policy %q (want %s or %s)", s.RacePolicy, RaceLastResponseWins, RaceLatestRequestWins)
	}
	switch s.ProfileFormat {
	case "json", "yaml":
	default:
		return fmt.Errorf("unknown profile_format %q (want json or yaml)", s.ProfileFormat)
	}
	return nil
}

// Initialize sets up the configuration directory and files
// It creates ~/.kycfill/ if it doesn't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return InitializeAt(filepath.Join(homeDir, ".kycfill"))
}

// InitializeAt sets up configuration under dir
func InitializeAt(dir string) error {
	ConfigDir = dir
	ConfigFile = filepath.Join(ConfigDir, "config.yaml")
	DatabasePath = filepath.Join(ConfigDir, "kycfill.db")
	LogFile = filepath.Join(ConfigDir, "kycfill.log")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	// Create default config file if it doesn't exist
	if _, err := os.Stat(ConfigFile); os.IsNotExist(err) {
		data, err := yaml.Marshal(Defaults())
		if err != nil {
			return fmt.Errorf("failed to marshal default config: %w", err)
		}
		if err := os.WriteFile(ConfigFile, data, FilePermissions); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	}

	return nil
}

// GetConfigFilePath returns the config file path (local or global)
func GetConfigFilePath() string {
	if _, err := os.Stat(LocalConfigFile); err == nil {
		return LocalConfigFile
	}
	return ConfigFile
}

// Load reads settings from the config file and applies environment overrides
func Load() (Settings, error) {
	settings := Defaults()

	path := GetConfigFilePath()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return settings, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &settings); err != nil {
				return settings, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	applyEnv(&settings)

	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

func applyEnv(s *Settings) {
	s.APIBase = strings.TrimRight(getEnv("KYCFILL_API_BASE", s.APIBase), "/")
	s.Timeout = getEnvAsDuration("KYCFILL_TIMEOUT", s.Timeout)
	s.RacePolicy = getEnv("KYCFILL_RACE_POLICY", s.RacePolicy)
	if value := os.Getenv("KYCFILL_HISTORY"); value != "" {
		if enabled, err := strconv.ParseBool(value); err == nil {
			s.HistoryEnabled = &enabled
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
