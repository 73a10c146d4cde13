package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cistorm/internal/config"
	"github.com/dshills/cistorm/internal/engine/profile"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := writeFile(t, "config.toml", "[editor]\ntab_size = 4\n\n[parser]\nleash = 10\n")
	r := newRoot("test")
	require.NoError(t, r.cmd.ParseFlags([]string{"--config", path, "--leash", "500", "--log-level", "debug"}))

	cfg, err := r.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Editor.TabSize)
	assert.Equal(t, 500, cfg.Parser.Leash)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, config.Defaults().Editor.IndentWidth, cfg.Editor.IndentWidth)
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("CISTORM_PARSER_LEASH", "42")
	t.Setenv("CISTORM_EDITOR_AUTO_INDENT", "false")
	path := writeFile(t, "config.yaml", "editor:\n  tab_size: 2\n")
	r := newRoot("test")
	require.NoError(t, r.cmd.ParseFlags([]string{"-c", path}))

	cfg, err := r.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Parser.Leash)
	assert.False(t, cfg.Editor.AutoIndent)
	assert.Equal(t, 2, cfg.Editor.TabSize)
}

func TestLoadConfigErrors(t *testing.T) {
	r := newRoot("test")
	require.NoError(t, r.cmd.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")}))
	_, err := r.loadConfig()
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := writeFile(t, "config.toml", "")
	r = newRoot("test")
	require.NoError(t, r.cmd.ParseFlags([]string{"--config", path, "--leash=-1"}))
	_, err = r.loadConfig()
	assert.ErrorIs(t, err, config.ErrValidationFailed)
}

func TestBuildRegistry(t *testing.T) {
	grammars := writeFile(t, "lua.yaml", `grammar:
  - name: lua
    extensions: [".lua"]
    contains: [lua_comment]
    keywords: [local, function]
  - name: lua_comment
    begin: "--"
    end: "\n"
`)
	cfg := config.Defaults()
	cfg.Grammar.Files = []string{grammars}
	cfg.Grammar.Extensions = map[string]string{".conf": "shell"}
	cfg.Grammar.Keywords = map[string][]string{"python": {"match"}}

	r, err := buildRegistry(cfg, nil)
	require.NoError(t, err)

	lua := r.ForPath("init.lua")
	assert.Equal(t, "lua", lua.Name)
	assert.True(t, lua.IsKeyword("local"))
	require.Len(t, lua.Children, 1)
	assert.Equal(t, "lua_comment", lua.Children[0].Name)

	assert.Equal(t, "shell", r.ForPath("app.conf").Name)
	python, ok := r.Get("python")
	require.True(t, ok)
	assert.True(t, python.IsKeyword("match"))
	assert.Equal(t, "c", r.ForPath("main.c").Name)
}

func TestBuildRegistryMissingFile(t *testing.T) {
	cfg := config.Defaults()
	cfg.Grammar.Files = []string{filepath.Join(t.TempDir(), "none.toml")}
	_, err := buildRegistry(cfg, nil)
	assert.Error(t, err)
}

func TestNewDocument(t *testing.T) {
	cfg := config.Defaults()
	cfg.Editor.TabSize = 4
	cfg.Editor.SystemClipboard = false
	registry, err := buildRegistry(cfg, nil)
	require.NoError(t, err)

	doc, err := newDocument(cfg, registry, profile.New(), nil)
	require.NoError(t, err)

	path := writeFile(t, "tabs.py", "\tpass\n")
	require.NoError(t, doc.Load(path))
	assert.Equal(t, "python", doc.Grammar().Name)
	assert.Equal(t, "    pass", doc.Buffer().Line(0))
}

func TestRootCommandArgs(t *testing.T) {
	cmd := newRootCmd("1.2.3")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	cmd.SetArgs([]string{"--version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "1.2.3")

	cmd = newRootCmd("1.2.3")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"a.txt", "b.txt"})
	assert.Error(t, cmd.Execute())
}
