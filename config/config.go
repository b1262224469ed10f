// Package config provides configuration loading and access for the simulator.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osbornjw-stats/lizsample/population"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulator configuration parameters.
type Config struct {
	Population   PopulationConfig       `yaml:"population" validate:"required"`
	Catchability population.CatchPolicy `yaml:"catchability"`
	Sampling     SamplingConfig         `yaml:"sampling"`
	Server       ServerConfig           `yaml:"server"`
	Screen       ScreenConfig           `yaml:"screen"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-" validate:"-"`
}

// PopulationConfig holds the synthetic population definition.
type PopulationConfig struct {
	Seed     int64           `yaml:"seed"`
	Habitats []HabitatConfig `yaml:"habitats" validate:"required,min=1,unique=Name,dive"`
}

// HabitatConfig defines one stratum. Catch probability comes from the
// catchability section.
type HabitatConfig struct {
	Name        string  `yaml:"name" validate:"required"`
	DisplayName string  `yaml:"display_name"`
	IDPrefix    string  `yaml:"id_prefix"` // Defaults to the first letter of Name
	Mean        float64 `yaml:"mean"`
	StdDev      float64 `yaml:"std_dev" validate:"gt=0"`
	Size        int     `yaml:"size" validate:"gte=0"`
}

// SamplingConfig holds the defaults a user starts from.
type SamplingConfig struct {
	Seed          int64 `yaml:"seed"`           // 0 = time-based
	TotalSize     int   `yaml:"total_size" validate:"gt=0"`
	MaxTotalSize  int   `yaml:"max_total_size" validate:"gtefield=TotalSize"`
	Quota         int   `yaml:"quota" validate:"gte=0"`
	MaxQuota      int   `yaml:"max_quota" validate:"gtefield=Quota"`
	Bias          bool  `yaml:"bias"`
	Stratified    bool  `yaml:"stratified"`
	HistogramBins int   `yaml:"histogram_bins" validate:"gt=0"`
	Trials        int   `yaml:"trials" validate:"gt=0"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr    string `yaml:"addr" validate:"required"`
	Metrics bool   `yaml:"metrics"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width" validate:"gt=0"`
	Height    int `yaml:"height" validate:"gt=0"`
	TargetFPS int `yaml:"target_fps" validate:"gt=0"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Habitats []population.Habitat // Habitat table with catch policy applied
}

// global holds the loaded configuration.
var global *Config

// validate is shared; validator caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. Invalid habitat tables
// are reported as population.ErrInvalidConfiguration.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := Parse(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse unmarshals data over cfg. Only fields present in data are overwritten,
// except lists, which are replaced whole.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// finish validates the config and computes derived values.
func (c *Config) finish() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %s", population.ErrInvalidConfiguration, verrs.Error())
		}
		return fmt.Errorf("%w: %v", population.ErrInvalidConfiguration, err)
	}

	c.computeDerived()

	if err := population.Validate(c.Derived.Habitats); err != nil {
		return err
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	habitats := make([]population.Habitat, len(c.Population.Habitats))
	for i, h := range c.Population.Habitats {
		habitats[i] = population.Habitat{
			Name:        h.Name,
			DisplayName: h.DisplayName,
			IDPrefix:    h.IDPrefix,
			Mean:        h.Mean,
			StdDev:      h.StdDev,
			Size:        h.Size,
		}
	}
	c.Derived.Habitats = c.Catchability.Apply(habitats)
}

// DefaultQuotas returns the starting stratified quota for every habitat.
func (c *Config) DefaultQuotas() map[string]int {
	q := make(map[string]int, len(c.Population.Habitats))
	for _, h := range c.Population.Habitats {
		q[h.Name] = c.Sampling.Quota
	}
	return q
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
