package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/fxpick/internal/filter"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func registry(t *testing.T) *filter.Registry {
	t.Helper()
	reg, err := filter.DefaultRegistry()
	require.NoError(t, err)
	return reg
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "fxpick", cfg.App.Name)
	assert.Equal(t, "SGD", cfg.Source.Base)
	assert.Equal(t, 500*time.Millisecond, cfg.Debounce.Query.Std())
	assert.Equal(t, 150*time.Millisecond, cfg.Debounce.Keys.Std())
	assert.Equal(t, 5*time.Second, cfg.Source.Timeout.Std())
	require.Len(t, cfg.Instances, 2)

	currency, ok := cfg.Instance("currency")
	require.True(t, ok)
	assert.True(t, currency.Multiple)
	assert.Equal(t, filter.Partial, currency.Strategy)
	assert.Equal(t, RenderTwoLine, currency.Render)

	rate, ok := cfg.Instance("rate")
	require.True(t, ok)
	assert.False(t, rate.Multiple)
	assert.Equal(t, filter.Rate, rate.Strategy)
	assert.Equal(t, RenderOneLine, rate.Render)

	assert.NoError(t, cfg.Validate(registry(t)))
}

func TestDefaultReturnsCopies(t *testing.T) {
	a, err := Default()
	require.NoError(t, err)
	a.Instances[0].Label = "changed"

	b, err := Default()
	require.NoError(t, err)
	assert.Equal(t, "Currency Selector", b.Instances[0].Label)
	assert.NotEmpty(t, DefaultYAML())
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Len(t, cfg.Instances, 2)
}

func TestLoadOverlaysUserFile(t *testing.T) {
	path := writeConfig(t, `
source:
  base: USD
debounce:
  query: 250ms
instances:
  - id: fuzzy
    strategy: fuzzy
    multiple: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "USD", cfg.Source.Base)
	assert.Equal(t, "https://api.exchangerate-api.com/v4/latest", cfg.Source.URL, "untouched keys keep defaults")
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce.Query.Std())
	assert.Equal(t, 150*time.Millisecond, cfg.Debounce.Keys.Std())

	require.Len(t, cfg.Instances, 1)
	inst := cfg.Instances[0]
	assert.Equal(t, "fuzzy", inst.Label)
	assert.Equal(t, RenderTwoLine, inst.Render)
	assert.NoError(t, cfg.Validate(registry(t)))
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad duration", "debounce:\n  query: soon\n", "invalid duration"},
		{"unitless duration", "debounce:\n  keys: 150\n", "missing unit"},
		{"unknown key", "dropdwn:\n  max_rows: 3\n", "dropdwn"},
		{"not yaml", "debounce: [", "decode config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadBlankFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, "\n"))
	require.NoError(t, err)
	assert.Len(t, cfg.Instances, 2)
}

func TestValidate(t *testing.T) {
	base, err := Default()
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero query debounce", func(c *Config) { c.Debounce.Query = 0 }, "debounce.query"},
		{"negative key debounce", func(c *Config) { c.Debounce.Keys = Duration(-time.Second) }, "debounce.keys"},
		{"negative retries", func(c *Config) { c.Source.Retries = -1 }, "source.retries"},
		{"no source", func(c *Config) { c.Source.URL = "" }, "url or a file"},
		{"no rows", func(c *Config) { c.Dropdown.MaxRows = 0 }, "max_rows"},
		{"no instances", func(c *Config) { c.Instances = nil }, "at least one instance"},
		{"duplicate id", func(c *Config) { c.Instances[1].ID = c.Instances[0].ID }, "duplicate id"},
		{"bad render", func(c *Config) { c.Instances[0].Render = "three-line" }, "render must be"},
		{"unknown strategy", func(c *Config) { c.Instances[0].Strategy = "soundex" }, `unknown strategy "soundex"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base.clone()
			tt.mutate(&cfg)
			err := cfg.Validate(registry(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("nil registry skips strategies", func(t *testing.T) {
		cfg := base.clone()
		cfg.Instances[0].Strategy = "soundex"
		assert.NoError(t, cfg.Validate(nil))
	})
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	data, err := cfg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "query: 500ms")

	var back Config
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, cfg, back)
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "/explicit.yaml", ResolvePath("/explicit.yaml", "fxpick"))

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", t.TempDir())
	assert.Empty(t, ResolvePath("", "fxpick"))

	path := filepath.Join(xdg, "fxpick", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("app:\n  name: x\n"), 0o644))
	assert.Equal(t, path, ResolvePath("", "fxpick"))
}
