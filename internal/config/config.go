package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config is the complete editor configuration.
type Config struct {
	Editor  EditorConfig  `toml:"editor" yaml:"editor"`
	Parser  ParserConfig  `toml:"parser" yaml:"parser"`
	Log     LogConfig     `toml:"log" yaml:"log"`
	Grammar GrammarConfig `toml:"grammar" yaml:"grammar"`
	Script  ScriptConfig  `toml:"script" yaml:"script"`
}

// EditorConfig holds text buffer settings.
type EditorConfig struct {
	// TabSize is the tab stop width used when expanding tabs on load.
	TabSize int `toml:"tab_size" yaml:"tab_size"`

	// TabsToSpaces expands tabs to spaces on load.
	TabsToSpaces bool `toml:"tabs_to_spaces" yaml:"tabs_to_spaces"`

	// IndentWidth is the number of spaces used by indent and auto-indent.
	IndentWidth int `toml:"indent_width" yaml:"indent_width"`

	// AutoIndent copies indentation on carriage return.
	AutoIndent bool `toml:"auto_indent" yaml:"auto_indent"`

	// StripTrailingWhitespace strips trailing whitespace on save.
	StripTrailingWhitespace bool `toml:"strip_trailing_whitespace" yaml:"strip_trailing_whitespace"`

	// LineLimit is the column marked as the right margin. Zero hides it.
	LineLimit int `toml:"line_limit" yaml:"line_limit"`

	// SystemClipboard connects copy and paste to the system clipboard.
	SystemClipboard bool `toml:"system_clipboard" yaml:"system_clipboard"`
}

// ParserConfig holds syntax parser settings.
type ParserConfig struct {
	// Leash is the iteration limit of one parse pass.
	Leash int `toml:"leash" yaml:"leash"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level" yaml:"level"`

	// Path is the log file. Empty disables logging.
	Path string `toml:"path" yaml:"path"`

	// MaxSizeMB is the size at which the log file is rotated.
	MaxSizeMB int `toml:"max_size_mb" yaml:"max_size_mb"`

	// MaxBackups is the number of rotated files kept.
	MaxBackups int `toml:"max_backups" yaml:"max_backups"`

	// MaxAgeDays is the number of days rotated files are kept.
	MaxAgeDays int `toml:"max_age_days" yaml:"max_age_days"`
}

// GrammarConfig holds syntax grammar settings.
type GrammarConfig struct {
	// Files are TOML or YAML grammar definition files loaded after the
	// built-in grammars.
	Files []string `toml:"files" yaml:"files"`

	// Extensions maps file extensions to grammar names.
	Extensions map[string]string `toml:"extensions" yaml:"extensions"`

	// Keywords adds keywords to grammars by name.
	Keywords map[string][]string `toml:"keywords" yaml:"keywords"`
}

// ScriptConfig holds Lua scripting settings.
type ScriptConfig struct {
	// Init is a Lua script run after the document is loaded.
	Init string `toml:"init" yaml:"init"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Editor: EditorConfig{
			TabSize:         8,
			TabsToSpaces:    true,
			IndentWidth:     2,
			AutoIndent:      true,
			LineLimit:       80,
			SystemClipboard: true,
		},
		Parser: ParserConfig{
			Leash: 100000,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate checks that every setting is in range.
func (c *Config) Validate() error {
	switch {
	case c.Editor.TabSize <= 0:
		return invalid("editor.tab_size", c.Editor.TabSize, "must be positive")
	case c.Editor.IndentWidth <= 0:
		return invalid("editor.indent_width", c.Editor.IndentWidth, "must be positive")
	case c.Editor.LineLimit < 0:
		return invalid("editor.line_limit", c.Editor.LineLimit, "must not be negative")
	case c.Parser.Leash <= 0:
		return invalid("parser.leash", c.Parser.Leash, "must be positive")
	case c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0:
		return invalid("log", c.Log, "rotation limits must not be negative")
	}
	for _, l := range logLevels {
		if strings.EqualFold(c.Log.Level, l) {
			return nil
		}
	}
	return invalid("log.level", c.Log.Level, "must be one of "+strings.Join(logLevels, ", "))
}

func invalid(path string, value any, msg string) error {
	return fmt.Errorf("%w: %w", ErrValidationFailed, &ValidationError{Path: path, Message: msg, Value: value})
}

// DefaultPath returns the user configuration file, or "" when the user
// configuration directory is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "cistorm", "config.toml")
}
