package config

import (
	"fmt"
	"strconv"
	"strings"
)

// LookupFunc reads an environment variable.
type LookupFunc func(key string) (string, bool)

// envSetting binds one environment variable to a config field.
type envSetting struct {
	key string
	set func(c *Config, raw string) error
}

var envSettings = []envSetting{
	{"LOG_LEVEL", setString(func(c *Config) *string { return &c.Log.Level })},
	{"LOG_FILE", setString(func(c *Config) *string { return &c.Log.File })},
	{"LOOP_FRAME_RATE", setInt(func(c *Config) *int { return &c.Loop.FrameRate })},
	{"LOOP_RECOVER_PANICS", setBool(func(c *Config) *bool { return &c.Loop.RecoverPanics })},
	{"LOOP_MAX_SECONDS", setInt(func(c *Config) *int { return &c.Loop.MaxSeconds })},
	{"DISPLAY_HEADLESS", setBool(func(c *Config) *bool { return &c.Display.Headless })},
	{"DISPLAY_WIDTH", setInt(func(c *Config) *int { return &c.Display.Width })},
	{"DISPLAY_HEIGHT", setInt(func(c *Config) *int { return &c.Display.Height })},
	{"THEME_ACCENT", setString(func(c *Config) *string { return &c.Theme.Accent })},
	{"MODES_INITIAL", setString(func(c *Config) *string { return &c.Modes.Initial })},
	{"GAME_ROUND_SECONDS", setInt(func(c *Config) *int { return &c.Game.RoundSeconds })},
	{"GAME_LANES", setInt(func(c *Config) *int { return &c.Game.Lanes })},
}

// EnvKeys returns every supported environment variable name.
func EnvKeys() []string {
	keys := make([]string, len(envSettings))
	for i, s := range envSettings {
		keys[i] = EnvPrefix + s.key
	}
	return keys
}

// ApplyEnv overrides cfg from GAMEFLOW_* variables read through lookup.
// Empty values are treated as set.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	for _, s := range envSettings {
		raw, ok := lookup(EnvPrefix + s.key)
		if !ok {
			continue
		}
		if err := s.set(cfg, raw); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, s.key, err)
		}
	}
	return nil
}

func setString(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, raw string) error {
		*field(c) = raw
		return nil
	}
}

func setInt(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, raw string) error {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("invalid integer %q", raw)
		}
		*field(c) = n
		return nil
	}
}

func setBool(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, raw string) error {
		b, err := parseBool(raw)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

// parseBool accepts the spellings people put in .env files.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}
