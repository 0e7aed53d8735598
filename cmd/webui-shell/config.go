package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cros-webui/webui-go/pkg/volume"
)

// Config holds the shell configuration. Values come from an optional YAML
// file and are overridden by flags that were set explicitly.
type Config struct {
	// Downloads is mounted as the Downloads volume when set.
	Downloads string `yaml:"downloads"`

	// MediaRoot is watched for removable media directories.
	MediaRoot string `yaml:"media_root"`

	// ShortcutStore is the shortcut database. Paths ending in .db or
	// .sqlite use SQLite, anything else a JSON state file. Empty keeps
	// shortcuts in memory.
	ShortcutStore string `yaml:"shortcut_store"`

	// EventLog is the CBOR model event log file.
	EventLog string `yaml:"event_log"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	Printers PrinterConfig  `yaml:"printers"`
	Volumes  []VolumeConfig `yaml:"volumes"`
}

// PrinterConfig configures print destination discovery.
type PrinterConfig struct {
	Browse    bool          `yaml:"browse"`
	Interface string        `yaml:"interface"`
	Timeout   time.Duration `yaml:"timeout"`
}

// VolumeConfig is a volume mounted at startup.
type VolumeConfig struct {
	volume.Info `yaml:",inline"`

	// Type is the volume type name (downloads, removable, archive,
	// provided, network).
	Type string `yaml:"type"`
}

// DefaultConfig returns the default shell configuration.
func DefaultConfig() Config {
	return Config{LogLevel: "info"}
}

// LoadConfig reads a YAML config file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration and resolves volume types.
func (c *Config) Validate() ([]volume.Info, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	var errs []error
	infos := make([]volume.Info, 0, len(c.Volumes))
	for _, v := range c.Volumes {
		info := v.Info
		if v.Type != "" {
			t, err := volume.ParseType(v.Type)
			if err != nil {
				errs = append(errs, fmt.Errorf("volume %s: %w", v.VolumeID, err))
				continue
			}
			info.Type = t
		}
		if info.VolumeID == "" || info.MountPath == "" {
			errs = append(errs, fmt.Errorf("volume %q: id and path are required", info.VolumeID))
			continue
		}
		infos = append(infos, info)
	}
	return infos, errors.Join(errs...)
}
