// Package config loads fxpick's YAML configuration. The embedded
// default_config.yaml holds every default; a user file is layered on top.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/fxpick/internal/filter"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

var (
	embeddedOnce sync.Once
	embedded     Config
	embeddedErr  error
)

// Render modes for dropdown rows.
const (
	RenderOneLine = "one-line"
	RenderTwoLine = "two-line"
)

// Config is the merged configuration.
type Config struct {
	App       AppConfig        `yaml:"app"`
	Source    SourceConfig     `yaml:"source"`
	Debounce  DebounceConfig   `yaml:"debounce"`
	Dropdown  DropdownConfig   `yaml:"dropdown"`
	Instances []InstanceConfig `yaml:"instances"`
}

type AppConfig struct {
	Name  string `yaml:"name"`
	Title string `yaml:"title"`
}

// SourceConfig describes where candidates come from. A non-empty File wins
// over URL.
type SourceConfig struct {
	URL     string   `yaml:"url"`
	Base    string   `yaml:"base"`
	File    string   `yaml:"file"`
	Retries int      `yaml:"retries"`
	Timeout Duration `yaml:"timeout"`
}

type DebounceConfig struct {
	Query Duration `yaml:"query"`
	Keys  Duration `yaml:"keys"`
}

type DropdownConfig struct {
	MaxRows int `yaml:"max_rows"`
	Width   int `yaml:"width"`
}

// InstanceConfig configures one combobox.
type InstanceConfig struct {
	ID          string `yaml:"id"`
	Label       string `yaml:"label"`
	Description string `yaml:"description,omitempty"`
	Placeholder string `yaml:"placeholder,omitempty"`
	Strategy    string `yaml:"strategy"`
	Multiple    bool   `yaml:"multiple"`
	Render      string `yaml:"render"`
	Disabled    bool   `yaml:"disabled,omitempty"`
}

// Duration is a time.Duration written as a Go duration string.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalYAML() (any, error) { return d.String(), nil }

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("line %d: duration must be a string like \"500ms\"", node.Line)
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// DefaultYAML returns a copy of the embedded default configuration.
func DefaultYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default returns the parsed embedded configuration.
func Default() (Config, error) {
	embeddedOnce.Do(func() {
		if len(embeddedDefaultConfig) == 0 {
			embeddedErr = errors.New("embedded default config is empty")
			return
		}
		embeddedErr = yaml.Unmarshal(embeddedDefaultConfig, &embedded)
		if embeddedErr != nil {
			embeddedErr = fmt.Errorf("decode embedded default config: %w", embeddedErr)
		}
	})
	return embedded.clone(), embeddedErr
}

// Load returns the defaults with the file at path layered on top. An empty
// path returns the defaults. Sections the file omits keep their defaults;
// an instances list in the file replaces the default list.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	if path == "" {
		cfg.normalize()
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := merge(&cfg, data); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

func merge(cfg *Config, data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// ResolvePath picks the config file: the explicit flag value, else
// $XDG_CONFIG_HOME/<app>/config.yaml, else ~/.config/<app>/config.yaml.
// Implicit locations are only returned when the file exists.
func ResolvePath(flagValue, app string) string {
	if flagValue != "" {
		return flagValue
	}
	var candidates []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, app, "config.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", app, "config.yaml"))
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// Marshal renders cfg as YAML.
func (c Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate checks values the loader cannot. Strategy names are checked
// against reg when it is non-nil.
func (c Config) Validate(reg *filter.Registry) error {
	var errs []error
	if c.Debounce.Query <= 0 {
		errs = append(errs, fmt.Errorf("debounce.query must be positive, got %s", c.Debounce.Query))
	}
	if c.Debounce.Keys <= 0 {
		errs = append(errs, fmt.Errorf("debounce.keys must be positive, got %s", c.Debounce.Keys))
	}
	if c.Source.Retries < 0 {
		errs = append(errs, fmt.Errorf("source.retries must be non-negative, got %d", c.Source.Retries))
	}
	if c.Source.Timeout < 0 {
		errs = append(errs, fmt.Errorf("source.timeout must be non-negative, got %s", c.Source.Timeout))
	}
	if c.Source.File == "" && c.Source.URL == "" {
		errs = append(errs, errors.New("source needs a url or a file"))
	}
	if c.Dropdown.MaxRows < 1 {
		errs = append(errs, fmt.Errorf("dropdown.max_rows must be at least 1, got %d", c.Dropdown.MaxRows))
	}
	if len(c.Instances) == 0 {
		errs = append(errs, errors.New("at least one instance is required"))
	}
	seen := map[string]bool{}
	for i, inst := range c.Instances {
		where := fmt.Sprintf("instances[%d]", i)
		if inst.ID == "" {
			errs = append(errs, fmt.Errorf("%s: id is required", where))
		} else if seen[inst.ID] {
			errs = append(errs, fmt.Errorf("%s: duplicate id %q", where, inst.ID))
		}
		seen[inst.ID] = true
		if inst.Render != RenderOneLine && inst.Render != RenderTwoLine {
			errs = append(errs, fmt.Errorf("%s: render must be %q or %q, got %q", where, RenderOneLine, RenderTwoLine, inst.Render))
		}
		if reg != nil {
			if _, ok := reg.Lookup(inst.Strategy); !ok {
				errs = append(errs, fmt.Errorf("%s: unknown strategy %q (known: %s)", where, inst.Strategy, strings.Join(reg.Names(), ", ")))
			}
		}
	}
	return errors.Join(errs...)
}

// Instance returns the instance with the given id.
func (c Config) Instance(id string) (InstanceConfig, bool) {
	for _, inst := range c.Instances {
		if inst.ID == id {
			return inst, true
		}
	}
	return InstanceConfig{}, false
}

// normalize fills per-instance fields a user file may leave blank.
func (c *Config) normalize() {
	for i := range c.Instances {
		inst := &c.Instances[i]
		if inst.ID == "" {
			inst.ID = fmt.Sprintf("instance-%d", i+1)
		}
		if inst.Label == "" {
			inst.Label = inst.ID
		}
		if inst.Strategy == "" {
			inst.Strategy = filter.Partial
		}
		if inst.Render == "" {
			inst.Render = RenderOneLine
			if inst.Multiple {
				inst.Render = RenderTwoLine
			}
		}
	}
}

func (c Config) clone() Config {
	out := c
	out.Instances = append([]InstanceConfig(nil), c.Instances...)
	return out
}
