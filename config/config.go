// Package config handles application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	appName        = "dictate"
	configFileName = "config.json"
)

// APIConfig holds the recognizer connection parameters.
type APIConfig struct {
	APIKey            string `json:"api_key"`
	ModelID           string `json:"model_id"`
	LanguageCode      string `json:"language_code,omitempty"`
	IncludeTimestamps bool   `json:"include_timestamps"`
	VadCommitStrategy string `json:"vad_commit_strategy,omitempty"`
}

// AudioConfig holds input device and capture preferences.
type AudioConfig struct {
	InputDeviceID    string  `json:"input_device_id,omitempty"`
	Gain             float64 `json:"gain"`
	SilenceThreshold float64 `json:"silence_threshold"`
	NoiseSuppression bool    `json:"noise_suppression"`
}

// HotkeyConfig holds the three hotkey slots driving the dispatcher.
type HotkeyConfig struct {
	PushToTalk string `json:"push_to_talk"`
	Cancel     string `json:"cancel"`
	ToggleMode string `json:"toggle_mode,omitempty"`
}

// BehaviorConfig holds injection strategy and UI behavior settings.
type BehaviorConfig struct {
	InjectionStrategy     string `json:"injection_strategy"`
	AutoThreshold         int    `json:"auto_threshold"`
	PasteDelayMS          int    `json:"paste_delay_ms"`
	PreInjectionDelayMS   int    `json:"pre_injection_delay_ms"`
	AutoInject            bool   `json:"auto_inject"`
	ShowOverlay           bool   `json:"show_overlay"`
	MinimizeToTray        bool   `json:"minimize_to_tray"`
	ProcessingTimeoutSecs int    `json:"processing_timeout_secs"`
}

// Config represents the application configuration.
type Config struct {
	API      APIConfig      `json:"api"`
	Audio    AudioConfig    `json:"audio"`
	Hotkeys  HotkeyConfig   `json:"hotkeys"`
	Behavior BehaviorConfig `json:"behavior"`
}

// Load loads configuration from the config file.
// Returns default config if the file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := defaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	backfillDefaults(cfg)

	return cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// defaultConfig returns the configuration with every documented
// default value filled in.
func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			ModelID:           "scribe_v1",
			IncludeTimestamps: true,
		},
		Audio: AudioConfig{
			Gain:             1.0,
			SilenceThreshold: 0.01,
			NoiseSuppression: true,
		},
		Behavior: BehaviorConfig{
			InjectionStrategy:     "auto",
			AutoThreshold:         20,
			PasteDelayMS:          100,
			PreInjectionDelayMS:   0,
			AutoInject:            true,
			ShowOverlay:           true,
			MinimizeToTray:        true,
			ProcessingTimeoutSecs: 30,
		},
	}
}

// backfillDefaults fills in zero-valued fields that must never be
// zero, so a config saved by an older version (or hand-edited) still
// loads with sane values.
func backfillDefaults(c *Config) {
	def := defaultConfig()
	if c.API.ModelID == "" {
		c.API.ModelID = def.API.ModelID
	}
	if c.Audio.Gain == 0 {
		c.Audio.Gain = def.Audio.Gain
	}
	if c.Behavior.InjectionStrategy == "" {
		c.Behavior.InjectionStrategy = def.Behavior.InjectionStrategy
	}
	if c.Behavior.AutoThreshold == 0 {
		c.Behavior.AutoThreshold = def.Behavior.AutoThreshold
	}
	if c.Behavior.PasteDelayMS == 0 {
		c.Behavior.PasteDelayMS = def.Behavior.PasteDelayMS
	}
	if c.Behavior.ProcessingTimeoutSecs == 0 {
		c.Behavior.ProcessingTimeoutSecs = def.Behavior.ProcessingTimeoutSecs
	}
}

func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}
