package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the optional fdlab configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
	Theme    ThemeConfig    `toml:"theme"`
}

// DefaultsConfig holds persistent flag defaults. Nil means unset.
type DefaultsConfig struct {
	Verify     *bool   `toml:"verify"`
	BWLimit    *string `toml:"bwlimit"`
	RaceWindow *string `toml:"race_window"`
	Digest     *string `toml:"digest"`
}

// ThemeConfig holds optional color overrides.
type ThemeConfig struct {
	Data *string `toml:"data"`
	Hole *string `toml:"hole"`
	OK   *string `toml:"ok"`
	Fail *string `toml:"fail"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "fdlab", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	return LoadFile(path)
}

// LoadFile reads and validates the config at path. A missing file is not
// an error.
func LoadFile(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Defaults.BWLimit != nil {
		if _, err := ParseSize(*c.Defaults.BWLimit); err != nil {
			return fmt.Errorf("defaults.bwlimit: %w", err)
		}
	}
	if _, err := c.Defaults.Window(); err != nil {
		return err
	}
	return nil
}

// Window parses race_window, returning 0 when unset.
func (d DefaultsConfig) Window() (time.Duration, error) {
	if d.RaceWindow == nil {
		return 0, nil
	}
	w, err := time.ParseDuration(*d.RaceWindow)
	if err != nil {
		return 0, fmt.Errorf("defaults.race_window: %w", err)
	}
	if w < 0 {
		return 0, fmt.Errorf("defaults.race_window: negative duration %s", w)
	}
	return w, nil
}
