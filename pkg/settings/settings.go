// Package settings manages persistent user settings for the topocheck CLI.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/newtron-network/topocheck/pkg/util"
)

// Built-in defaults used when a setting is unset.
const (
	DefaultRedisAddr      = "127.0.0.1:6379"
	DefaultSnapshotPrefix = "TOPOCHECK"
	DefaultFailOn         = "error"
	DefaultMinSeverity    = "info"
)

// Settings holds persistent user preferences. Command-line flags override
// these; these override the built-in defaults.
type Settings struct {
	// Checks run by `topocheck check` when --checks is not given
	DefaultChecks []string `json:"default_checks,omitempty"`

	// MinSeverity hides issues below this severity in reports
	MinSeverity string `json:"min_severity,omitempty"`

	// FailOn is the lowest severity that produces a non-zero exit code
	FailOn string `json:"fail_on,omitempty"`

	// Concurrency limits parallel check tasks; 0 means one per CPU
	Concurrency int `json:"concurrency,omitempty"`

	// Snapshot store
	RedisAddr      string `json:"redis_addr,omitempty"`
	RedisDB        int    `json:"redis_db,omitempty"`
	SnapshotPrefix string `json:"snapshot_prefix,omitempty"`

	// SSHHost/SSHUser reach a Redis that only listens on the remote loopback
	SSHHost string `json:"ssh_host,omitempty"`
	SSHUser string `json:"ssh_user,omitempty"`
}

// Keys lists the names accepted by Set, in display order.
var Keys = []string{
	"default_checks",
	"min_severity",
	"fail_on",
	"concurrency",
	"redis_addr",
	"redis_db",
	"snapshot_prefix",
	"ssh_host",
	"ssh_user",
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "topocheck_settings.json"
	}
	return filepath.Join(home, ".topocheck", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Set assigns one setting by key from its string form.
func (s *Settings) Set(key, value string) error {
	switch key {
	case "default_checks":
		s.DefaultChecks = util.SplitCommaSeparated(value)
	case "min_severity":
		s.MinSeverity = value
	case "fail_on":
		s.FailOn = value
	case "concurrency":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: concurrency must be a non-negative integer, got %q", util.ErrInvalidConfig, value)
		}
		s.Concurrency = n
	case "redis_addr":
		s.RedisAddr = value
	case "redis_db":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: redis_db must be a non-negative integer, got %q", util.ErrInvalidConfig, value)
		}
		s.RedisDB = n
	case "snapshot_prefix":
		s.SnapshotPrefix = value
	case "ssh_host":
		s.SSHHost = value
	case "ssh_user":
		s.SSHUser = value
	default:
		return fmt.Errorf("%w: unknown setting %q (valid: %s)", util.ErrInvalidConfig, key, strings.Join(Keys, ", "))
	}
	return nil
}

// Get returns the stored string form of one setting; empty when unset.
func (s *Settings) Get(key string) string {
	switch key {
	case "default_checks":
		return util.JoinCommaSeparated(s.DefaultChecks)
	case "min_severity":
		return s.MinSeverity
	case "fail_on":
		return s.FailOn
	case "concurrency":
		if s.Concurrency == 0 {
			return ""
		}
		return strconv.Itoa(s.Concurrency)
	case "redis_addr":
		return s.RedisAddr
	case "redis_db":
		if s.RedisDB == 0 {
			return ""
		}
		return strconv.Itoa(s.RedisDB)
	case "snapshot_prefix":
		return s.SnapshotPrefix
	case "ssh_host":
		return s.SSHHost
	case "ssh_user":
		return s.SSHUser
	}
	return ""
}

// GetChecks returns the default check selection (with fallback)
func (s *Settings) GetChecks() []string {
	if len(s.DefaultChecks) > 0 {
		return s.DefaultChecks
	}
	return []string{"all"}
}

// GetMinSeverity returns the report threshold (with fallback)
func (s *Settings) GetMinSeverity() string {
	if s.MinSeverity != "" {
		return s.MinSeverity
	}
	return DefaultMinSeverity
}

// GetFailOn returns the exit-code threshold (with fallback)
func (s *Settings) GetFailOn() string {
	if s.FailOn != "" {
		return s.FailOn
	}
	return DefaultFailOn
}

// GetRedisAddr returns the snapshot store address (with fallback)
func (s *Settings) GetRedisAddr() string {
	if s.RedisAddr != "" {
		return s.RedisAddr
	}
	return DefaultRedisAddr
}

// GetSnapshotPrefix returns the key prefix for stored snapshots (with fallback)
func (s *Settings) GetSnapshotPrefix() string {
	if s.SnapshotPrefix != "" {
		return s.SnapshotPrefix
	}
	return DefaultSnapshotPrefix
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
