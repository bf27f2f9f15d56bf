package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	Theme       ThemeConfig      `toml:"theme"`
	Filter      FilterConfig     `toml:"filter"`
	Display     DisplayConfig    `toml:"display"`
	Follow      FollowConfig     `toml:"follow"`
	LogLevels   LogLevelConfig   `toml:"log_levels"`
	Keybindings KeybindingConfig `toml:"keybindings"`
}

// ThemeConfig defines color schemes
type ThemeConfig struct {
	Name          string         `toml:"name"`
	LineNumbers   string         `toml:"line_numbers"`
	StatusBar     string         `toml:"status_bar"`
	StatusBarText string         `toml:"status_bar_text"`
	Invalid       string         `toml:"invalid"`
	Levels        LogLevelColors `toml:"levels"`
}

// LogLevelColors defines colors for each log level
type LogLevelColors struct {
	Debug string `toml:"debug"`
	Info  string `toml:"info"`
	Warn  string `toml:"warn"`
	Error string `toml:"error"`
	Fatal string `toml:"fatal"`
}

// FilterConfig holds the criteria applied at startup
type FilterConfig struct {
	Severity       []string `toml:"severity"`
	Nodes          []string `toml:"nodes"` // empty selects every node found
	UseRegexp      bool     `toml:"use_regexp"`
	Include        []string `toml:"include"`
	Exclude        []string `toml:"exclude"`
	IncludePattern string   `toml:"include_pattern"`
	ExcludePattern string   `toml:"exclude_pattern"`
}

// DisplayConfig holds display options
type DisplayConfig struct {
	ShowTime        bool `toml:"show_time"`
	AbsoluteTime    bool `toml:"absolute_time"`
	ShowLineNumbers bool `toml:"show_line_numbers"`
}

// FollowConfig controls tailing of the input files
type FollowConfig struct {
	Enabled        bool `toml:"enabled"`
	PollIntervalMs int  `toml:"poll_interval_ms"`
}

// LogLevelConfig defines level detection patterns for plain text lines
type LogLevelConfig struct {
	DebugPatterns []string `toml:"debug_patterns"`
	InfoPatterns  []string `toml:"info_patterns"`
	WarnPatterns  []string `toml:"warn_patterns"`
	ErrorPatterns []string `toml:"error_patterns"`
	FatalPatterns []string `toml:"fatal_patterns"`
}

// KeybindingConfig allows customizing keybindings
type KeybindingConfig struct {
	Quit         []string `toml:"quit"`
	ScrollUp     []string `toml:"scroll_up"`
	ScrollDown   []string `toml:"scroll_down"`
	PageUp       []string `toml:"page_up"`
	PageDown     []string `toml:"page_down"`
	Top          []string `toml:"top"`
	Bottom       []string `toml:"bottom"`
	Include      []string `toml:"include"`
	Exclude      []string `toml:"exclude"`
	Nodes        []string `toml:"nodes"`
	ToggleRegexp []string `toml:"toggle_regexp"`
	ToggleTime   []string `toml:"toggle_time"`
	ToggleAbs    []string `toml:"toggle_absolute"`
	Follow       []string `toml:"follow"`
	Save         []string `toml:"save"`
	Detail       []string `toml:"detail"`
	Goto         []string `toml:"goto"`
	Levels       []string `toml:"levels"` // one key per level, debug to fatal
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Theme: ThemeConfig{
			Name:          "subtle",
			LineNumbers:   "240", // Dark gray
			StatusBar:     "236", // Darker gray background
			StatusBarText: "252", // Light gray text
			Invalid:       "196",
			Levels: LogLevelColors{
				Debug: "244", // Medium gray
				Info:  "250", // Light gray
				Warn:  "214", // Orange
				Error: "167", // Soft red
				Fatal: "196", // Bright red
			},
		},
		Filter: FilterConfig{
			Severity: []string{"debug", "info", "warn", "error", "fatal"},
		},
		Display: DisplayConfig{
			ShowTime:        true,
			AbsoluteTime:    false,
			ShowLineNumbers: false,
		},
		Follow: FollowConfig{
			Enabled:        true,
			PollIntervalMs: 250,
		},
		LogLevels: LogLevelConfig{
			DebugPatterns: []string{"[DBG]", "[DEBUG]", "DEBUG", "[TRACE]", "TRACE"},
			InfoPatterns:  []string{"[INF]", "[INFO]", "INFO"},
			WarnPatterns:  []string{"[WRN]", "[WARN]", "[WARNING]", "WARN", "WARNING"},
			ErrorPatterns: []string{"[ERR]", "[ERROR]", "ERROR"},
			FatalPatterns: []string{"[FTL]", "[FATAL]", "FATAL", "[CRIT]", "CRITICAL"},
		},
		Keybindings: KeybindingConfig{
			Quit:         []string{"q", "ctrl+c"},
			ScrollUp:     []string{"k", "up"},
			ScrollDown:   []string{"j", "down"},
			PageUp:       []string{"b", "pgup", "ctrl+u"},
			PageDown:     []string{"f", "pgdown", "ctrl+d", " "},
			Top:          []string{"g", "home"},
			Bottom:       []string{"G", "end"},
			Include:      []string{"/"},
			Exclude:      []string{"\\"},
			Nodes:        []string{"n"},
			ToggleRegexp: []string{"r"},
			ToggleTime:   []string{"t"},
			ToggleAbs:    []string{"a"},
			Follow:       []string{"F"},
			Save:         []string{"w"},
			Detail:       []string{"enter"},
			Goto:         []string{":"},
			Levels:       []string{"1", "2", "3", "4", "5"},
		},
	}
}

// Load loads config from the default path, falling back to defaults
func Load() (*Config, error) {
	return LoadFrom(getConfigPath())
}

// LoadFrom loads config from path; a missing file yields defaults
func LoadFrom(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	if cfg.Follow.PollIntervalMs <= 0 {
		cfg.Follow.PollIntervalMs = DefaultConfig().Follow.PollIntervalMs
	}

	return cfg, nil
}

// Save saves config to the default path
func Save(cfg *Config) error {
	configPath := getConfigPath()
	if configPath == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mconsole", "config.toml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "mconsole", "config.toml")
}

// GetConfigPath exports the config path for user reference
func GetConfigPath() string {
	return getConfigPath()
}
