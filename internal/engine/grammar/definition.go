package grammar

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Definition is the data form of a grammar.
type Definition struct {
	Name string `toml:"name" yaml:"name"`

	// Extensions lists file extensions, with the leading dot, for which this
	// grammar is the root.
	Extensions []string `toml:"extensions" yaml:"extensions"`

	// Begin starts the region when the grammar is a child. Root grammars
	// leave it empty.
	Begin string `toml:"begin" yaml:"begin"`
	// End closes the region. Empty means the region runs until its parent
	// ends or the document does.
	End string `toml:"end" yaml:"end"`
	// Escape matches text that must not be taken as End, such as \" in a
	// string.
	Escape string `toml:"escape" yaml:"escape"`

	// Contains names the child grammars, in priority order.
	Contains []string `toml:"contains" yaml:"contains"`
	Keywords []string `toml:"keywords" yaml:"keywords"`

	Color         string `toml:"color" yaml:"color"`
	KeywordsColor string `toml:"keywords_color" yaml:"keywords_color"`
}

type definitionFile struct {
	Grammars []Definition `toml:"grammar" yaml:"grammar"`
}

// Format is the encoding of a definition file.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor returns the format implied by a file name's extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// ParseDefinitions decodes a list of definitions.
func ParseDefinitions(data []byte, format Format) ([]Definition, error) {
	var f definitionFile
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &f)
	case FormatYAML:
		err = yaml.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s grammar definitions: %w", format, err)
	}
	return f.Grammars, nil
}

// LoadDefinitions reads a definition file, choosing the decoder by the file
// extension.
func LoadDefinitions(path string) ([]Definition, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading grammar file %s: %w", path, err)
	}
	defs, err := ParseDefinitions(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}
