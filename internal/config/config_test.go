package config

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, 8, cfg.Editor.TabSize)
	assert.True(t, cfg.Editor.TabsToSpaces)
	assert.Equal(t, 2, cfg.Editor.IndentWidth)
	assert.True(t, cfg.Editor.AutoIndent)
	assert.False(t, cfg.Editor.StripTrailingWhitespace)
	assert.Equal(t, 80, cfg.Editor.LineLimit)
	assert.Equal(t, 100000, cfg.Parser.Leash)
	assert.Equal(t, "info", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadTOML(t *testing.T) {
	fsys := fstest.MapFS{"config.toml": {Data: []byte(`
[editor]
tab_size = 4
strip_trailing_whitespace = true

[parser]
leash = 500

[grammar]
files = ["extra.toml"]
extensions = { ".inc" = "c" }
keywords = { c = ["restrict"] }
`)}}

	cfg, err := NewLoader(fsys).Load("config.toml")
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Editor.TabSize)
	assert.True(t, cfg.Editor.StripTrailingWhitespace)
	assert.Equal(t, 2, cfg.Editor.IndentWidth, "unset keys keep defaults")
	assert.Equal(t, 500, cfg.Parser.Leash)
	assert.Equal(t, []string{"extra.toml"}, cfg.Grammar.Files)
	assert.Equal(t, map[string]string{".inc": "c"}, cfg.Grammar.Extensions)
	assert.Equal(t, []string{"restrict"}, cfg.Grammar.Keywords["c"])
}

func TestLoadYAML(t *testing.T) {
	fsys := fstest.MapFS{"config.yml": {Data: []byte(`
editor:
  auto_indent: false
log:
  level: debug
  path: /tmp/cistorm.log
script:
  init: init.lua
`)}}

	cfg, err := NewLoader(fsys).Load("config.yml")
	require.NoError(t, err)

	assert.False(t, cfg.Editor.AutoIndent)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/cistorm.log", cfg.Log.Path)
	assert.Equal(t, "init.lua", cfg.Script.Init)
}

func TestLoadMissingOrEmpty(t *testing.T) {
	fsys := fstest.MapFS{"empty.yaml": {Data: nil}}
	l := NewLoader(fsys)

	for _, path := range []string{"", "missing.toml", "empty.yaml"} {
		cfg, err := l.Load(path)
		require.NoError(t, err, path)
		assert.Equal(t, Defaults(), cfg, path)
	}
}

func TestLoadParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		data     string
		wantLine int
	}{
		{"toml syntax", "bad.toml", "[editor\ntab_size = 4\n", 0},
		{"toml unknown key", "unknown.toml", "[editor]\n\ntabsize = 4\n", 3},
		{"toml wrong type", "type.toml", "[parser]\nleash = \"many\"\n", 2},
		{"yaml unknown key", "unknown.yaml", "editor:\n  tabsize: 4\n", 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fsys := fstest.MapFS{tc.path: {Data: []byte(tc.data)}}

			_, err := NewLoader(fsys).Load(tc.path)
			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "error = %v", err)
			assert.Equal(t, tc.path, parseErr.Path)
			if tc.wantLine > 0 {
				assert.Equal(t, tc.wantLine, parseErr.Line)
			} else {
				assert.Positive(t, parseErr.Line)
			}
			assert.NotNil(t, parseErr.Unwrap())
		})
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := NewLoader(fstest.MapFS{}).Load("config.json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadValidates(t *testing.T) {
	fsys := fstest.MapFS{"config.toml": {Data: []byte("[editor]\ntab_size = 0\n")}}

	_, err := NewLoader(fsys).Load("config.toml")
	assert.ErrorIs(t, err, ErrValidationFailed)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "editor.tab_size", vErr.Path)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"indent", func(c *Config) { c.Editor.IndentWidth = -1 }, "editor.indent_width"},
		{"line limit", func(c *Config) { c.Editor.LineLimit = -1 }, "editor.line_limit"},
		{"leash", func(c *Config) { c.Parser.Leash = 0 }, "parser.leash"},
		{"rotation", func(c *Config) { c.Log.MaxBackups = -1 }, "log"},
		{"level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(cfg)

			var vErr *ValidationError
			require.ErrorAs(t, cfg.Validate(), &vErr)
			assert.Equal(t, tc.path, vErr.Path)
		})
	}

	cfg := Defaults()
	cfg.Log.Level = "WARN"
	assert.NoError(t, cfg.Validate())
}

func TestOverlay(t *testing.T) {
	v := viper.New()
	v.Set("editor.tab_size", 3)
	v.Set("log.level", "error")
	v.Set("grammar.files", []string{"a.toml", "b.yaml"})

	cfg := Defaults()
	require.NoError(t, Overlay(cfg, v))

	assert.Equal(t, 3, cfg.Editor.TabSize)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, []string{"a.toml", "b.yaml"}, cfg.Grammar.Files)
	assert.Equal(t, 100000, cfg.Parser.Leash, "unset keys are left alone")

	assert.NoError(t, Overlay(cfg, nil))
}

func TestOverlayEnvironment(t *testing.T) {
	t.Setenv("CISTORM_PARSER_LEASH", "42")
	t.Setenv("CISTORM_EDITOR_AUTO_INDENT", "false")

	v := viper.New()
	v.SetEnvPrefix("CISTORM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range Keys() {
		require.NoError(t, v.BindEnv(k))
	}

	cfg := Defaults()
	require.NoError(t, Overlay(cfg, v))
	assert.Equal(t, 42, cfg.Parser.Leash)
	assert.False(t, cfg.Editor.AutoIndent)
	assert.Equal(t, 8, cfg.Editor.TabSize)
}

func TestOverlayValidates(t *testing.T) {
	v := viper.New()
	v.Set("parser.leash", -5)
	assert.ErrorIs(t, Overlay(Defaults(), v), ErrValidationFailed)
}
