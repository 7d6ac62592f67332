package workflow

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config describes a sequence of masking steps followed by an optional
// favicon set.
type Config struct {
	Steps   []Step         `yaml:"steps"`
	Favicon *FaviconConfig `yaml:"favicon"`

	// Relative paths are resolved against this directory.
	baseDir string
}

// Step runs one operation from input to output. Params override the
// operation defaults field by field.
type Step struct {
	Op     string    `yaml:"op"`
	Input  string    `yaml:"input"`
	Output string    `yaml:"output"`
	Params yaml.Node `yaml:"params"`
}

type FaviconConfig struct {
	Dir   string `yaml:"dir"`
	Sizes []int  `yaml:"sizes"`
	// When set, the icons are this image scaled down instead of the
	// rendered glyph.
	Source string    `yaml:"source"`
	Style  yaml.Node `yaml:"style"`
}

// Load reads and validates a workflow file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolving workflow dir: %w", err)
	}
	cfg.baseDir = base
	return cfg, nil
}

// Parse decodes and validates workflow YAML. Relative paths stay relative
// to the working directory.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse workflow: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workflow: %w", err)
	}
	return &cfg, nil
}

// Validate checks that every step names a known operation with decodable
// params and that all paths are present.
func (c *Config) Validate() error {
	if len(c.Steps) == 0 && c.Favicon == nil {
		return errors.New("workflow has no steps and no favicon block")
	}
	for i, st := range c.Steps {
		o, ok := ops[st.Op]
		if !ok {
			return fmt.Errorf("steps[%d]: unknown op %q (known: %s)", i, st.Op, strings.Join(Ops(), ", "))
		}
		if st.Input == "" {
			return fmt.Errorf("steps[%d].input is required", i)
		}
		if st.Output == "" {
			return fmt.Errorf("steps[%d].output is required", i)
		}
		if err := o.check(&st.Params); err != nil {
			return fmt.Errorf("steps[%d].params: %w", i, err)
		}
	}
	if f := c.Favicon; f != nil {
		for _, n := range f.Sizes {
			if n <= 0 {
				return fmt.Errorf("favicon.sizes: %d is not a positive size", n)
			}
		}
		if _, err := faviconStyle(&f.Style); err != nil {
			return fmt.Errorf("favicon.style: %w", err)
		}
	}
	return nil
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.baseDir == "" {
		return p
	}
	return filepath.Join(c.baseDir, p)
}
