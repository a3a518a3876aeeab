package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kokistudios/board/internal/rules"
)

// RulesConfig selects the rule set used for parsing.
type RulesConfig struct {
	// Path to a YAML rule set; relative paths resolve against BOARD_HOME.
	// Empty selects the built-in rules.
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type OutputConfig struct {
	Format string `yaml:"format"` // "yaml" or "json"
}

// Config holds board configuration.
type Config struct {
	Version string       `yaml:"version"`
	Rules   RulesConfig  `yaml:"rules,omitempty"`
	Log     LogConfig    `yaml:"log,omitempty"`
	Output  OutputConfig `yaml:"output,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Version: "1",
		Log: LogConfig{
			Level: "info",
		},
		Output: OutputConfig{
			Format: "yaml",
		},
	}
}

// Store represents a loaded BOARD_HOME.
type Store struct {
	Home   string
	Config Config
}

// Issue represents a health check finding.
type Issue struct {
	Severity string // "warning" or "error"
	Message  string
}

// Home returns the BOARD_HOME path, respecting the BOARD_HOME env var.
func Home() string {
	if h := os.Getenv("BOARD_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".board")
	}
	return filepath.Join(home, ".board")
}

// Init creates BOARD_HOME with a default config and a copy of the built-in
// rule set under rules/ for editing.
func Init(home string, force bool) error {
	if _, err := os.Stat(home); err == nil && !force {
		return fmt.Errorf("BOARD_HOME already exists at %s (use --force to reinitialize)", home)
	}

	if err := os.MkdirAll(filepath.Join(home, "rules"), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", home, err)
	}

	data, err := rules.Default().Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(home, "rules", "default.yaml"), data, 0644); err != nil {
		return fmt.Errorf("failed to write rule set: %w", err)
	}

	st := &Store{Home: home, Config: DefaultConfig()}
	return st.SaveConfig()
}

// Load reads an existing BOARD_HOME.
// Missing config fields are filled from defaults.
func Load(home string) (*Store, error) {
	cfgPath := filepath.Join(home, "config.yaml")
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read BOARD_HOME config at %s: %w", cfgPath, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config.yaml: %w", err)
	}
	return &Store{Home: home, Config: cfg}, nil
}

// LoadOrDefault loads home when it exists and otherwise returns a store
// carrying the default config, so parsing works before `board init`.
func LoadOrDefault(home string) (*Store, error) {
	if _, err := os.Stat(filepath.Join(home, "config.yaml")); os.IsNotExist(err) {
		return &Store{Home: home, Config: DefaultConfig()}, nil
	}
	return Load(home)
}

// SaveConfig writes the current config to config.yaml.
func (s *Store) SaveConfig() error {
	data, err := yaml.Marshal(s.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(s.Home, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.Home, err)
	}
	cfgPath := filepath.Join(s.Home, "config.yaml")
	if err := os.WriteFile(cfgPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ConfigValue returns a config value by dot-path key.
func (s *Store) ConfigValue(key string) (string, error) {
	switch key {
	case "rules.path":
		return s.Config.Rules.Path, nil
	case "log.level":
		return s.Config.Log.Level, nil
	case "output.format":
		return s.Config.Output.Format, nil
	default:
		return "", unknownKey(key)
	}
}

// SetConfigValue sets a config value by dot-path key (e.g. "log.level").
func (s *Store) SetConfigValue(key, value string) error {
	switch key {
	case "rules.path":
		s.Config.Rules.Path = value
	case "log.level":
		switch value {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("log.level must be one of debug, info, warn, error")
		}
		s.Config.Log.Level = value
	case "output.format":
		if value != "yaml" && value != "json" {
			return fmt.Errorf("output.format must be yaml or json")
		}
		s.Config.Output.Format = value
	default:
		return unknownKey(key)
	}
	return s.SaveConfig()
}

func unknownKey(key string) error {
	return fmt.Errorf("unknown config key: %s\nValid keys: rules.path, log.level, output.format", key)
}

// Path resolves a path within BOARD_HOME.
func (s *Store) Path(parts ...string) string {
	all := append([]string{s.Home}, parts...)
	return filepath.Join(all...)
}

// RulesPath returns the configured rule set file, resolved against
// BOARD_HOME, or "" for the built-in rules.
func (s *Store) RulesPath() string {
	p := s.Config.Rules.Path
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return s.Path(p)
}

// RuleSet loads the configured rule set.
func (s *Store) RuleSet() (rules.RuleSet, error) {
	return rules.Load(s.RulesPath())
}

// CheckHealth verifies BOARD_HOME structure integrity.
func CheckHealth(home string) []Issue {
	var issues []Issue

	cfgPath := filepath.Join(home, "config.yaml")
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return append(issues, Issue{"error", fmt.Sprintf("cannot read config.yaml: %v", err)})
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return append(issues, Issue{"error", fmt.Sprintf("config.yaml is not valid YAML: %v", err)})
	}

	st := &Store{Home: home, Config: cfg}
	rs, err := st.RuleSet()
	if err != nil {
		issues = append(issues, Issue{"error", err.Error()})
	} else {
		for _, w := range rules.ConflictWarnings(rs.Blocks) {
			issues = append(issues, Issue{"warning", w})
		}
	}

	if info, err := os.Stat(filepath.Join(home, "rules")); err != nil || !info.IsDir() {
		issues = append(issues, Issue{"warning", "missing rules/ directory"})
	}

	return issues
}

// FixIssues attempts to repair simple issues in BOARD_HOME.
func FixIssues(home string) []string {
	var fixed []string

	rulesDir := filepath.Join(home, "rules")
	if _, err := os.Stat(rulesDir); err != nil {
		if err := os.MkdirAll(rulesDir, 0755); err == nil {
			fixed = append(fixed, "recreated missing directory: rules")
		}
	}

	defaultRules := filepath.Join(rulesDir, "default.yaml")
	if _, err := os.Stat(defaultRules); err != nil {
		if data, err := rules.Default().Marshal(); err == nil && os.WriteFile(defaultRules, data, 0644) == nil {
			fixed = append(fixed, "recreated rules/default.yaml")
		}
	}

	cfgPath := filepath.Join(home, "config.yaml")
	if _, err := os.Stat(cfgPath); err != nil {
		cfg := DefaultConfig()
		data, _ := yaml.Marshal(cfg)
		if os.WriteFile(cfgPath, data, 0644) == nil {
			fixed = append(fixed, "recreated missing config.yaml with defaults")
		}
	}

	return fixed
}
