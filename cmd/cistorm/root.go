package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dshills/cistorm/internal/app"
	"github.com/dshills/cistorm/internal/config"
	"github.com/dshills/cistorm/internal/engine"
	"github.com/dshills/cistorm/internal/engine/buffer"
	"github.com/dshills/cistorm/internal/engine/grammar"
	"github.com/dshills/cistorm/internal/engine/profile"
	"github.com/dshills/cistorm/internal/watcher"
)

// envPrefix prefixes environment overrides, e.g. CISTORM_PARSER_LEASH.
const envPrefix = "CISTORM"

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"leash":                     "parser.leash",
	"log-level":                 "log.level",
	"log-file":                  "log.path",
	"tab-size":                  "editor.tab_size",
	"indent-width":              "editor.indent_width",
	"strip-trailing-whitespace": "editor.strip_trailing_whitespace",
	"init":                      "script.init",
}

type rootCommand struct {
	cmd *cobra.Command
	v   *viper.Viper

	configPath string
	profile    bool
}

func newRootCmd(version string) *cobra.Command {
	return newRoot(version).cmd
}

func newRoot(version string) *rootCommand {
	r := &rootCommand{v: viper.New()}
	r.cmd = &cobra.Command{
		Use:   "cistorm [file]",
		Short: "A terminal text editor",
		Long: `cistorm edits one file in the terminal with syntax highlighting,
unlimited undo and regular expression search and replace.`,
		Version:      version,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return r.run(cmd.Context(), path)
		},
	}

	flags := r.cmd.Flags()
	flags.StringVarP(&r.configPath, "config", "c", "",
		"config file (default: "+config.DefaultPath()+")")
	flags.BoolVar(&r.profile, "profile", false, "print parser timings on exit")
	flags.Int("leash", 0, "parser iteration limit per pass")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "write logs to this file")
	flags.Int("tab-size", 0, "tab stop width used when loading files")
	flags.Int("indent-width", 0, "spaces per indent level")
	flags.Bool("strip-trailing-whitespace", false, "strip trailing whitespace on save")
	flags.String("init", "", "Lua script run after the file is loaded")

	bindFlags(r.v, flags)
	bindEnv(r.v)
	return r
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	for name, key := range flagKeys {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range config.Keys() {
		_ = v.BindEnv(key)
	}
}

// loadConfig reads the config file and applies flag and environment
// overrides. An explicitly named file must exist.
func (r *rootCommand) loadConfig() (*config.Config, error) {
	path := r.configPath
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	} else {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Overlay(cfg, r.v); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *rootCommand) run(ctx context.Context, path string) error {
	cfg, err := r.loadConfig()
	if err != nil {
		return err
	}

	logger, closer := app.NewLogger(app.LoggerConfig{
		Level:      cfg.Log.Level,
		Path:       cfg.Log.Path,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer closer.Close()

	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		return err
	}
	stats := profile.New()
	doc, err := newDocument(cfg, registry, stats, logger)
	if err != nil {
		return err
	}
	if path != "" {
		if err := doc.Load(path); err != nil {
			return err
		}
	}

	appOpts := []app.Option{
		app.WithLogger(logger),
		app.WithIndentWidth(cfg.Editor.IndentWidth),
		app.WithLineLimit(cfg.Editor.LineLimit),
		app.WithInitScript(cfg.Script.Init),
	}
	if w, err := watcher.New(watcher.WithLogger(logger)); err != nil {
		logger.Warn("file watching disabled", "error", err)
	} else {
		defer w.Close()
		appOpts = append(appOpts, app.WithWatcher(w))
	}

	editor, err := app.New(doc, appOpts...)
	if err != nil {
		return fmt.Errorf("failed to create terminal: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = editor.Run(ctx)
	if r.profile {
		fmt.Fprint(r.cmd.ErrOrStderr(), stats.Report())
	}
	if errors.Is(err, app.ErrQuit) {
		return nil
	}
	return err
}

// buildRegistry compiles the built-in grammars followed by the configured
// grammar files.
func buildRegistry(cfg *config.Config, logger *slog.Logger) (*grammar.Registry, error) {
	defs, err := grammar.DefaultDefinitions()
	if err != nil {
		return nil, err
	}
	for _, file := range cfg.Grammar.Files {
		more, err := grammar.LoadDefinitions(file)
		if err != nil {
			return nil, err
		}
		defs = append(defs, more...)
	}
	return grammar.NewRegistry(defs,
		grammar.WithExtensions(cfg.Grammar.Extensions),
		grammar.WithDictionary(cfg.Grammar.Keywords),
		grammar.WithLogger(logger))
}

func newDocument(cfg *config.Config, registry *grammar.Registry, stats *profile.Stats, logger *slog.Logger) (*engine.Document, error) {
	bufOpts := []buffer.Option{
		buffer.WithTabSize(cfg.Editor.TabSize),
		buffer.WithTabsToSpaces(cfg.Editor.TabsToSpaces),
		buffer.WithIndentWidth(cfg.Editor.IndentWidth),
		buffer.WithAutoIndent(cfg.Editor.AutoIndent),
	}
	if cfg.Editor.SystemClipboard {
		if c := app.NewSystemClipboard(logger); c != nil {
			bufOpts = append(bufOpts, buffer.WithClipboard(c))
		}
	}
	return engine.New(
		engine.WithRegistry(registry),
		engine.WithBufferOptions(bufOpts...),
		engine.WithLeash(cfg.Parser.Leash),
		engine.WithStripTrailingWhitespace(cfg.Editor.StripTrailingWhitespace),
		engine.WithProfile(stats),
		engine.WithLogger(logger),
	)
}
