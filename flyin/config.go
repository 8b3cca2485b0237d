package flyin

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultOriginClass = "flyin-origin"
	DefaultTargetClass = "flyin-letters"

	DefaultStartDelay  = 80 * time.Millisecond
	DefaultCommitDelay = 30 * time.Millisecond

	DefaultMinDuration     = 3000
	DefaultMaxDuration     = 3000
	DefaultMinColorDur     = 1000
	DefaultMaxColorDur     = 1400
	DefaultMaxInitialDelay = 350
	DefaultPerCharStagger  = 20

	DefaultStartOpacity = 0.95
	DefaultZIndex       = 9999
)

// Timing holds the per-container timing parameters, in milliseconds.
type Timing struct {
	MinDuration     float64 `yaml:"min_duration"`
	MaxDuration     float64 `yaml:"max_duration"`
	MinColorDur     float64 `yaml:"min_color_dur"`
	MaxColorDur     float64 `yaml:"max_color_dur"`
	MaxInitialDelay float64 `yaml:"max_initial_delay"`
	PerCharStagger  float64 `yaml:"per_char_stagger"`
}

// Range is a closed interval sampled uniformly.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Config is the effect configuration. It is passed by value and never
// mutated by the effect.
type Config struct {
	OriginClass string        `yaml:"origin_class"`
	TargetClass string        `yaml:"target_class"`
	StartDelay  time.Duration `yaml:"start_delay"`
	CommitDelay time.Duration `yaml:"commit_delay"`
	Timing      Timing        `yaml:"timing"`

	// Start state of a floating character.
	ExtraY       Range   `yaml:"extra_y"`      // extra vertical offset, px
	Rotation     Range   `yaml:"rotation"`     // degrees
	Scale        Range   `yaml:"scale"`        // uniform scale factor
	StartOpacity float64 `yaml:"start_opacity"`
	ZIndex       int     `yaml:"z_index"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		OriginClass: DefaultOriginClass,
		TargetClass: DefaultTargetClass,
		StartDelay:  DefaultStartDelay,
		CommitDelay: DefaultCommitDelay,
		Timing: Timing{
			MinDuration:     DefaultMinDuration,
			MaxDuration:     DefaultMaxDuration,
			MinColorDur:     DefaultMinColorDur,
			MaxColorDur:     DefaultMaxColorDur,
			MaxInitialDelay: DefaultMaxInitialDelay,
			PerCharStagger:  DefaultPerCharStagger,
		},
		ExtraY:       Range{-80, -20},
		Rotation:     Range{-30, 30},
		Scale:        Range{0.85, 1.25},
		StartOpacity: DefaultStartOpacity,
		ZIndex:       DefaultZIndex,
	}
}

// LoadConfig reads a YAML file over the defaults. Fields missing from the
// file keep their default values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("flyin: read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("flyin: parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("flyin: config %s: %w", path, err)
	}
	return cfg, nil
}

var (
	errEmptyClass = errors.New("origin_class and target_class must be set")
	errNegative   = errors.New("delays and durations must not be negative")
	errRange      = errors.New("range minimum exceeds maximum")
	errOpacity    = errors.New("start_opacity must be within [0, 1]")
)

// Validate reports configuration values the effect cannot use.
func (c Config) Validate() error {
	if c.OriginClass == "" || c.TargetClass == "" {
		return errEmptyClass
	}
	if c.StartDelay < 0 || c.CommitDelay < 0 {
		return errNegative
	}
	t := c.Timing
	for _, v := range []float64{t.MinDuration, t.MaxDuration, t.MinColorDur, t.MaxColorDur, t.MaxInitialDelay, t.PerCharStagger} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return errNegative
		}
	}
	for _, r := range []Range{{t.MinDuration, t.MaxDuration}, {t.MinColorDur, t.MaxColorDur}, c.ExtraY, c.Rotation, c.Scale} {
		if r.Min > r.Max {
			return errRange
		}
	}
	if c.StartOpacity < 0 || c.StartOpacity > 1 {
		return errOpacity
	}
	return nil
}
