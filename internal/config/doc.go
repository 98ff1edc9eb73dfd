// Package config loads and validates subgen's TOML configuration.
//
// Configuration is optional: every key has a working default, so the tool runs
// with no config file at all. The default file location is
// ~/.config/subgen/config.toml, overridable with --config or SUBGEN_CONFIG.
package config
