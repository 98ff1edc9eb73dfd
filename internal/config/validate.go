package config

import (
	"errors"
	"fmt"
	"strings"
)

// Known whisper.cpp ggml model variants. Quantized variants are accepted
// as-is; this list only guards against obvious typos in common names.
var knownModelVariants = map[string]struct{}{
	"tiny": {}, "tiny.en": {},
	"base": {}, "base.en": {},
	"small": {}, "small.en": {},
	"medium": {}, "medium.en": {},
	"large-v1": {}, "large-v2": {}, "large-v3": {}, "large-v3-turbo": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateModel(); err != nil {
		return err
	}
	if err := c.validateTranscoder(); err != nil {
		return err
	}
	if err := c.validateRecognizer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateModel() error {
	variant := strings.TrimSpace(c.Model.Variant)
	if variant == "" {
		return errors.New("model.variant must be set")
	}
	if _, ok := knownModelVariants[variant]; !ok && !strings.HasPrefix(variant, "tiny-") && !strings.Contains(variant, "q") {
		return fmt.Errorf("model.variant %q is not a known whisper model", variant)
	}
	if !strings.HasPrefix(c.Model.BaseURL, "http://") && !strings.HasPrefix(c.Model.BaseURL, "https://") {
		return fmt.Errorf("model.base_url %q must be an http(s) URL", c.Model.BaseURL)
	}
	return nil
}

func (c *Config) validateTranscoder() error {
	if c.Transcoder.SampleRate <= 0 {
		return errors.New("transcoder.sample_rate must be positive")
	}
	if c.Transcoder.Command == "" {
		if !strings.HasPrefix(c.Transcoder.DownloadURL, "http://") && !strings.HasPrefix(c.Transcoder.DownloadURL, "https://") {
			return fmt.Errorf("transcoder.download_url %q must be an http(s) URL", c.Transcoder.DownloadURL)
		}
	}
	return nil
}

func (c *Config) validateRecognizer() error {
	if strings.TrimSpace(c.Recognizer.Command) == "" {
		return errors.New("recognizer.command must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
