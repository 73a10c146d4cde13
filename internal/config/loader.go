package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileSystem is the file access used by a Loader.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// Format is a configuration file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Loader reads configuration files.
type Loader struct {
	fs FileSystem
}

// NewLoader creates a loader reading from fsys.
func NewLoader(fsys FileSystem) *Loader {
	if fsys == nil {
		fsys = DefaultFS()
	}
	return &Loader{fs: fsys}
}

// Load reads path on top of the defaults. An empty path or a missing file
// gives the defaults.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil // File doesn't exist, not an error
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := Decode(path, data, format, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Load reads path from the OS file system on top of the defaults.
func Load(path string) (*Config, error) {
	return NewLoader(DefaultFS()).Load(path)
}

// Decode parses data into cfg. Settings missing from data keep their values
// in cfg; unknown settings are errors.
func Decode(source string, data []byte, format Format, cfg *Config) error {
	var err error
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(cfg); errors.Is(err, io.EOF) {
			err = nil // empty document
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return newParseError(source, err)
	}
	return nil
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

func newParseError(source string, err error) *ParseError {
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}

	var decodeErr *toml.DecodeError
	var strictErr *toml.StrictMissingError
	switch {
	case errors.As(err, &decodeErr):
		pe.Line, pe.Column = decodeErr.Position()
	case errors.As(err, &strictErr) && len(strictErr.Errors) > 0:
		pe.Line, pe.Column = strictErr.Errors[0].Position()
	default:
		if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
			pe.Line, _ = strconv.Atoi(m[1])
		}
	}
	return pe
}
