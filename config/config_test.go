package config

import (
	"os"
	"testing"
)

// TestLoadMissingFileReturnsDefaults exercises the no-file branch
// directly against the real user config dir resolution, by pointing
// HOME/APPDATA somewhere empty for the duration of the test.
func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("APPDATA", tmpHome)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.ModelID != "scribe_v1" {
		t.Errorf("ModelID = %q, want default", cfg.API.ModelID)
	}
	if cfg.Behavior.AutoThreshold != 20 {
		t.Errorf("AutoThreshold = %d, want 20", cfg.Behavior.AutoThreshold)
	}
}

// TestBackfillDefaultsFillsZeroedFields covers a config file saved by
// an older build that predates one of the documented defaults.
func TestBackfillDefaultsFillsZeroedFields(t *testing.T) {
	cfg := &Config{}
	backfillDefaults(cfg)

	if cfg.API.ModelID != "scribe_v1" {
		t.Errorf("ModelID not backfilled: %q", cfg.API.ModelID)
	}
	if cfg.Audio.Gain != 1.0 {
		t.Errorf("Gain not backfilled: %v", cfg.Audio.Gain)
	}
	if cfg.Behavior.InjectionStrategy != "auto" {
		t.Errorf("InjectionStrategy not backfilled: %q", cfg.Behavior.InjectionStrategy)
	}
	if cfg.Behavior.ProcessingTimeoutSecs != 30 {
		t.Errorf("ProcessingTimeoutSecs not backfilled: %d", cfg.Behavior.ProcessingTimeoutSecs)
	}
}

// TestBackfillDefaultsPreservesExplicitValues ensures backfill keeps
// non-zero values the user set. A backfilled field explicitly set to
// its zero value cannot be told apart from an unset one and is
// replaced by the default.
func TestBackfillDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		API:      APIConfig{ModelID: "custom-model"},
		Behavior: BehaviorConfig{InjectionStrategy: "clipboard", AutoThreshold: 5},
	}
	backfillDefaults(cfg)

	if cfg.API.ModelID != "custom-model" {
		t.Errorf("ModelID clobbered: %q", cfg.API.ModelID)
	}
	if cfg.Behavior.InjectionStrategy != "clipboard" {
		t.Errorf("InjectionStrategy clobbered: %q", cfg.Behavior.InjectionStrategy)
	}
	if cfg.Behavior.AutoThreshold != 5 {
		t.Errorf("AutoThreshold clobbered: %d", cfg.Behavior.AutoThreshold)
	}
}

// TestSaveThenLoadRoundTrips saves a config under a temporary user
// config dir (HOME/APPDATA pointed at a temp dir, as above) and
// confirms Load reads the same values back.
func TestSaveThenLoadRoundTrips(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("APPDATA", tmpHome)

	cfg := defaultConfig()
	cfg.API.APIKey = "sk-test-key"
	cfg.Hotkeys.PushToTalk = "CommandOrControl+Shift+D"

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path, err := configPath()
	if err != nil {
		t.Fatalf("configPath: %v", err)
	}
	if _, err := os.ReadFile(path); err != nil {
		t.Fatalf("read: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.API.APIKey != "sk-test-key" {
		t.Errorf("APIKey = %q, want sk-test-key", loaded.API.APIKey)
	}
	if loaded.Hotkeys.PushToTalk != "CommandOrControl+Shift+D" {
		t.Errorf("PushToTalk = %q, want CommandOrControl+Shift+D", loaded.Hotkeys.PushToTalk)
	}
}
