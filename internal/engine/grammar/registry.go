package grammar

import (
	_ "embed"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

//go:embed defaults.toml
var defaultDefinitions []byte

// FallbackName is the grammar used for files no other grammar claims.
const FallbackName = "text"

// Option configures a Registry.
type Option func(*options)

type options struct {
	dictionary map[string][]string
	extensions map[string]string
	logger     *slog.Logger
}

// WithDictionary adds words to the keyword sets of the named grammars.
func WithDictionary(words map[string][]string) Option {
	return func(o *options) {
		o.dictionary = words
	}
}

// WithExtensions maps extra file extensions to grammar names, overriding the
// extensions listed in the definitions.
func WithExtensions(extensions map[string]string) Option {
	return func(o *options) {
		o.extensions = extensions
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Registry resolves compiled grammars by name, extension or path.
type Registry struct {
	mu sync.RWMutex

	byName      map[string]*Grammar
	byExtension map[string]*Grammar
	fallback    *Grammar
}

// DefaultDefinitions returns the definitions embedded in the package.
func DefaultDefinitions() ([]Definition, error) {
	return ParseDefinitions(defaultDefinitions, FormatTOML)
}

// DefaultRegistry compiles the embedded definitions.
func DefaultRegistry(opts ...Option) (*Registry, error) {
	defs, err := DefaultDefinitions()
	if err != nil {
		return nil, err
	}
	return NewRegistry(defs, opts...)
}

// NewRegistry compiles defs. A definition replaces any earlier definition
// with the same name. A plain "text" grammar is added when none is defined.
func NewRegistry(defs []Definition, opts ...Option) (*Registry, error) {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	var ordered []Definition
	index := make(map[string]int)
	for _, def := range defs {
		if def.Name == "" {
			return nil, ErrEmptyName
		}
		if i, ok := index[def.Name]; ok {
			ordered[i] = def
			continue
		}
		index[def.Name] = len(ordered)
		ordered = append(ordered, def)
	}
	if _, ok := index[FallbackName]; !ok {
		ordered = append(ordered, Definition{Name: FallbackName})
	}

	r := &Registry{
		byName:      make(map[string]*Grammar, len(ordered)),
		byExtension: make(map[string]*Grammar),
	}
	for _, def := range ordered {
		g := &Grammar{
			Name:  def.Name,
			begin: def.Begin,
			Attributes: Attributes{
				Color:         def.Color,
				KeywordsColor: def.KeywordsColor,
			},
			keywords: make(map[string]struct{}, len(def.Keywords)),
		}
		for _, w := range def.Keywords {
			g.keywords[w] = struct{}{}
		}
		r.byName[def.Name] = g
	}

	for _, def := range ordered {
		g := r.byName[def.Name]
		for _, name := range def.Contains {
			child, ok := r.byName[name]
			if !ok {
				return nil, fmt.Errorf("grammar %q contains %q: %w", def.Name, name, ErrUnknownGrammar)
			}
			if child.begin == "" {
				return nil, fmt.Errorf("grammar %q contains %q: %w", def.Name, name, ErrMissingBegin)
			}
			g.Children = append(g.Children, child)
		}
	}
	for _, def := range ordered {
		if err := r.byName[def.Name].compile(def.Escape, def.End); err != nil {
			return nil, err
		}
		for _, ext := range def.Extensions {
			r.byExtension[normalizeExt(ext)] = r.byName[def.Name]
		}
	}

	for ext, name := range o.extensions {
		g, ok := r.byName[name]
		if !ok {
			return nil, fmt.Errorf("extension %q: %q: %w", ext, name, ErrUnknownGrammar)
		}
		r.byExtension[normalizeExt(ext)] = g
	}
	for name, words := range o.dictionary {
		g, ok := r.byName[name]
		if !ok {
			o.logger.Debug("dictionary for unknown grammar", "grammar", name)
			continue
		}
		for _, w := range words {
			g.keywords[w] = struct{}{}
		}
	}

	r.fallback = r.byName[FallbackName]
	return r, nil
}

// Get returns the grammar with the given name.
func (r *Registry) Get(name string) (*Grammar, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.byName[name]
	return g, ok
}

// ForExtension returns the root grammar for a file extension. The leading
// dot is optional.
func (r *Registry) ForExtension(ext string) (*Grammar, bool) {
	if ext == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.byExtension[normalizeExt(ext)]
	return g, ok
}

// ForPath returns the root grammar for a file, or the fallback grammar.
func (r *Registry) ForPath(path string) *Grammar {
	if g, ok := r.ForExtension(filepath.Ext(path)); ok {
		return g
	}
	return r.Fallback()
}

// Fallback returns the grammar for unrecognized files.
func (r *Registry) Fallback() *Grammar {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fallback
}

// SetExtension maps ext to the named grammar.
func (r *Registry) SetExtension(ext, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.byName[name]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrUnknownGrammar)
	}
	r.byExtension[normalizeExt(ext)] = g
	return nil
}

// Names returns the grammar names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
