// Package config loads the misting policy from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/garden-mister/internal/logic"
)

// File is the on-disk layout. Durations use Go syntax ("25s", "2h").
// Unset fields keep their defaults.
type File struct {
	MistDuration       *Duration `yaml:"mist_duration"`
	MistInterval       *Duration `yaml:"mist_interval"`
	WindowStart        *int      `yaml:"window_start"`
	WindowEnd          *int      `yaml:"window_end"`
	TimeJumpThreshold  *Duration `yaml:"time_jump_threshold"`
	FailsafeMultiplier *int      `yaml:"failsafe_multiplier"`
}

// Duration is a time.Duration that unmarshals from a YAML string.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(v)
	return nil
}

// Load reads path from fs and overlays it on logic.DefaultConfig.
// An empty path returns the defaults.
func Load(fs afero.Fs, path string) (logic.Config, error) {
	cfg := logic.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return f.apply(cfg), nil
}

func (f File) apply(cfg logic.Config) logic.Config {
	if f.MistDuration != nil {
		cfg.MistDuration = time.Duration(*f.MistDuration)
	}
	if f.MistInterval != nil {
		cfg.MistInterval = time.Duration(*f.MistInterval)
	}
	if f.WindowStart != nil {
		cfg.WindowStart = *f.WindowStart
	}
	if f.WindowEnd != nil {
		cfg.WindowEnd = *f.WindowEnd
	}
	if f.TimeJumpThreshold != nil {
		cfg.TimeJumpThreshold = time.Duration(*f.TimeJumpThreshold)
	}
	if f.FailsafeMultiplier != nil {
		cfg.FailsafeMultiplier = *f.FailsafeMultiplier
	}
	return cfg
}

// Validate checks cfg together with the daemon's poll interval.
// All problems are reported, not just the first.
func Validate(cfg logic.Config, poll time.Duration) error {
	var errs []error
	if cfg.MistDuration <= 0 {
		errs = append(errs, fmt.Errorf("mist_duration must be positive, got %v", cfg.MistDuration))
	}
	if cfg.MistInterval < time.Second {
		errs = append(errs, fmt.Errorf("mist_interval must be at least 1s, got %v", cfg.MistInterval))
	}
	if cfg.WindowStart < 0 || cfg.WindowStart > 23 {
		errs = append(errs, fmt.Errorf("window_start must be in [0, 23], got %d", cfg.WindowStart))
	}
	if cfg.WindowEnd < 1 || cfg.WindowEnd > 24 {
		errs = append(errs, fmt.Errorf("window_end must be in [1, 24], got %d", cfg.WindowEnd))
	}
	if cfg.WindowStart >= cfg.WindowEnd {
		errs = append(errs, fmt.Errorf("window_start (%d) must be before window_end (%d)", cfg.WindowStart, cfg.WindowEnd))
	}
	if cfg.TimeJumpThreshold <= 0 {
		errs = append(errs, fmt.Errorf("time_jump_threshold must be positive, got %v", cfg.TimeJumpThreshold))
	}
	if cfg.FailsafeMultiplier < 2 {
		errs = append(errs, fmt.Errorf("failsafe_multiplier must be at least 2, got %d", cfg.FailsafeMultiplier))
	}
	if poll <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be positive, got %v", poll))
	} else if cfg.MistDuration > 0 && poll > cfg.MistDuration/10 {
		errs = append(errs, fmt.Errorf("poll interval %v exceeds a tenth of mist_duration %v", poll, cfg.MistDuration))
	}
	return errors.Join(errs...)
}
