// Package config defines the YAML configuration of an obfuscation run.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/deepnoodle-ai/radon/exclusion"
	"github.com/deepnoodle-ai/radon/names"
	"github.com/deepnoodle-ai/radon/transform"
)

// Pass names accepted in Passes.
const (
	InvokeDynamic    = "InvokeDynamic"
	StringEncryption = "StringEncryption"
)

// KnownPasses lists the passes in their default order.
var KnownPasses = []string{InvokeDynamic, StringEncryption}

// WatermarkConfig holds the watermark settings.
type WatermarkConfig struct {
	// Key encrypts and decrypts watermark identifiers.
	Key string `yaml:"key" mapstructure:"key"`
	// ID is the identifier embedded by the embed command.
	ID string `yaml:"id,omitempty" mapstructure:"id"`
}

// Config holds the settings of a run.
type Config struct {
	// Dictionary is a built-in dictionary name or a custom set of
	// characters used for generated names.
	Dictionary string `yaml:"dictionary" mapstructure:"dictionary"`
	NameLength int    `yaml:"name_length" mapstructure:"name_length"`
	// Seed makes runs reproducible. Zero picks a random seed.
	Seed int64 `yaml:"seed" mapstructure:"seed"`
	// MaxCodeSize is the method size at which passes stop rewriting.
	MaxCodeSize int `yaml:"max_code_size" mapstructure:"max_code_size"`
	// SpigotMode keeps string literals holding Spigot placeholders.
	SpigotMode bool `yaml:"spigot_mode" mapstructure:"spigot_mode"`
	// Exemptions are patterns of elements to leave untouched, optionally
	// prefixed with a pass name and a colon.
	Exemptions []string        `yaml:"exemptions" mapstructure:"exemptions"`
	Passes     []string        `yaml:"passes" mapstructure:"passes"`
	Watermark  WatermarkConfig `yaml:"watermark" mapstructure:"watermark"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Dictionary:  "alphabetic",
		NameLength:  4,
		MaxCodeSize: 60000,
		Exemptions:  []string{},
		Passes:      append([]string{}, KnownPasses...),
	}
}

// Parse reads a YAML document over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Marshal returns the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Characters returns the characters of the configured dictionary.
func (c *Config) Characters() string {
	return names.Resolve(c.Dictionary)
}

// Exempter compiles the exemption patterns.
func (c *Config) Exempter() (*exclusion.Manager, error) {
	return exclusion.New(c.Exemptions...)
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs *multierror.Error
	if err := names.Validate(c.Characters()); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("dictionary: %w", err))
	}
	if c.NameLength < 1 {
		errs = multierror.Append(errs, fmt.Errorf("name_length must be positive, got %d", c.NameLength))
	}
	if c.MaxCodeSize < 1 || c.MaxCodeSize > transform.MaxCodeSizeLimit {
		errs = multierror.Append(errs, fmt.Errorf("max_code_size must be between 1 and %d, got %d", transform.MaxCodeSizeLimit, c.MaxCodeSize))
	}
	seen := map[string]bool{}
	for _, p := range c.Passes {
		switch {
		case p != InvokeDynamic && p != StringEncryption:
			errs = multierror.Append(errs, fmt.Errorf("unknown pass %q", p))
		case seen[p]:
			errs = multierror.Append(errs, fmt.Errorf("pass %q listed twice", p))
		}
		seen[p] = true
	}
	ex, err := c.Exempter()
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	for _, tag := range ex.Passes() {
		if tag != exclusion.Global && tag != InvokeDynamic && tag != StringEncryption {
			errs = multierror.Append(errs, fmt.Errorf("exemption tag %q is not a pass", tag))
		}
	}
	return errs.ErrorOrNil()
}
