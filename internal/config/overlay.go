package config

import (
	"github.com/spf13/viper"
)

type setting struct {
	key   string
	apply func(c *Config, v *viper.Viper, key string)
}

// settings lists every key that can be overridden by flags or environment.
var settings = []setting{
	{"editor.tab_size", func(c *Config, v *viper.Viper, k string) { c.Editor.TabSize = v.GetInt(k) }},
	{"editor.tabs_to_spaces", func(c *Config, v *viper.Viper, k string) { c.Editor.TabsToSpaces = v.GetBool(k) }},
	{"editor.indent_width", func(c *Config, v *viper.Viper, k string) { c.Editor.IndentWidth = v.GetInt(k) }},
	{"editor.auto_indent", func(c *Config, v *viper.Viper, k string) { c.Editor.AutoIndent = v.GetBool(k) }},
	{"editor.strip_trailing_whitespace", func(c *Config, v *viper.Viper, k string) {
		c.Editor.StripTrailingWhitespace = v.GetBool(k)
	}},
	{"editor.line_limit", func(c *Config, v *viper.Viper, k string) { c.Editor.LineLimit = v.GetInt(k) }},
	{"editor.system_clipboard", func(c *Config, v *viper.Viper, k string) { c.Editor.SystemClipboard = v.GetBool(k) }},
	{"parser.leash", func(c *Config, v *viper.Viper, k string) { c.Parser.Leash = v.GetInt(k) }},
	{"log.level", func(c *Config, v *viper.Viper, k string) { c.Log.Level = v.GetString(k) }},
	{"log.path", func(c *Config, v *viper.Viper, k string) { c.Log.Path = v.GetString(k) }},
	{"log.max_size_mb", func(c *Config, v *viper.Viper, k string) { c.Log.MaxSizeMB = v.GetInt(k) }},
	{"log.max_backups", func(c *Config, v *viper.Viper, k string) { c.Log.MaxBackups = v.GetInt(k) }},
	{"log.max_age_days", func(c *Config, v *viper.Viper, k string) { c.Log.MaxAgeDays = v.GetInt(k) }},
	{"grammar.files", func(c *Config, v *viper.Viper, k string) { c.Grammar.Files = v.GetStringSlice(k) }},
	{"script.init", func(c *Config, v *viper.Viper, k string) { c.Script.Init = v.GetString(k) }},
}

// Keys returns the settings Overlay reads, for binding flags and
// environment variables.
func Keys() []string {
	keys := make([]string, len(settings))
	for i, s := range settings {
		keys[i] = s.key
	}
	return keys
}

// Overlay copies every setting that is set in v into cfg and validates the
// result. v normally holds command line flags and environment variables.
func Overlay(cfg *Config, v *viper.Viper) error {
	if v == nil {
		return nil
	}
	for _, s := range settings {
		if v.IsSet(s.key) {
			s.apply(cfg, v, s.key)
		}
	}
	return cfg.Validate()
}
