package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// CacheDir is the hidden working cache holding downloaded assets and
	// transient audio files. Relative values resolve against the process
	// working directory.
	CacheDir string `toml:"cache_dir"`
}

// Model contains speech model provisioning settings.
type Model struct {
	Variant string `toml:"variant"`
	BaseURL string `toml:"base_url"`
}

// Transcoder contains media transcoder settings.
type Transcoder struct {
	// Command overrides the cached transcoder binary with one resolved from
	// PATH. Empty means download-and-cache.
	Command       string `toml:"command"`
	DownloadURL   string `toml:"download_url"`
	SampleRate    int    `toml:"sample_rate"`
	KeepTempFiles bool   `toml:"keep_temp_files"`
}

// Recognizer contains speech recognition settings.
type Recognizer struct {
	Command  string `toml:"command"`
	Language string `toml:"language"`
}

// Logging contains log output settings.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// History contains run-history store settings.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Config is the root configuration structure.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Model      Model      `toml:"model"`
	Transcoder Transcoder `toml:"transcoder"`
	Recognizer Recognizer `toml:"recognizer"`
	Logging    Logging    `toml:"logging"`
	History    History    `toml:"history"`
}

// DefaultConfigPath returns the absolute path of the default config file.
func DefaultConfigPath() (string, error) {
	if env := strings.TrimSpace(os.Getenv("SUBGEN_CONFIG")); env != "" {
		return expandPath(env)
	}
	return expandPath("~/.config/subgen/config.toml")
}

// Load locates, parses, and validates a configuration file. A missing file is
// not an error; defaults apply. The returned path reports where the config was
// (or would be) read, and exists whether a file was actually loaded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		def, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		path = def
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(expanded); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return expanded, true, nil
}

// CacheRoot resolves the working cache directory to an absolute path.
func (c *Config) CacheRoot() (string, error) {
	dir := c.Paths.CacheDir
	if dir == "" {
		dir = defaultCacheDir
	}
	if strings.HasPrefix(dir, "~") {
		return expandPath(dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve cache dir %q: %w", dir, err)
	}
	return abs, nil
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
