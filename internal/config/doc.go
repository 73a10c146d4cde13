// Package config provides the configuration of the editor.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Flags and Environment   │  ← Highest priority (Overlay)
//	├─────────────────────────────┤
//	│  2. User File               │  ← ~/.config/cistorm/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority (Defaults)
//	└─────────────────────────────┘
//
// The user file may be TOML or YAML, chosen by extension. Unknown settings
// are reported as a *ParseError with the line where they appear.
//
// # Basic Usage
//
//	cfg, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    return err
//	}
//	if err := config.Overlay(cfg, v); err != nil {
//	    return err
//	}
//
// Environment variables use the CISTORM_ prefix with dots replaced by
// underscores, for example CISTORM_PARSER_LEASH.
package config
