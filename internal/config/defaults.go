package config

const (
	defaultCacheDir           = ".subgen"
	defaultModelVariant       = "base"
	defaultModelBaseURL       = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"
	defaultTranscoderURL      = "https://github.com/eugeneware/ffmpeg-static/releases/download/b6.0"
	defaultSampleRate         = 16000
	defaultRecognizerCommand  = "whisper-cli"
	defaultRecognizerLanguage = "auto"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultHistoryEnabled     = true
	defaultKeepTempFiles      = false
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir,
		},
		Model: Model{
			Variant: defaultModelVariant,
			BaseURL: defaultModelBaseURL,
		},
		Transcoder: Transcoder{
			DownloadURL:   defaultTranscoderURL,
			SampleRate:    defaultSampleRate,
			KeepTempFiles: defaultKeepTempFiles,
		},
		Recognizer: Recognizer{
			Command:  defaultRecognizerCommand,
			Language: defaultRecognizerLanguage,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: defaultHistoryEnabled,
		},
	}
}

// applyDefaults fills fields a partial config file left empty.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Paths.CacheDir == "" {
		c.Paths.CacheDir = def.Paths.CacheDir
	}
	if c.Model.Variant == "" {
		c.Model.Variant = def.Model.Variant
	}
	if c.Model.BaseURL == "" {
		c.Model.BaseURL = def.Model.BaseURL
	}
	if c.Transcoder.DownloadURL == "" {
		c.Transcoder.DownloadURL = def.Transcoder.DownloadURL
	}
	if c.Transcoder.SampleRate == 0 {
		c.Transcoder.SampleRate = def.Transcoder.SampleRate
	}
	if c.Recognizer.Command == "" {
		c.Recognizer.Command = def.Recognizer.Command
	}
	if c.Recognizer.Language == "" {
		c.Recognizer.Language = def.Recognizer.Language
	}
	if c.Logging.Format == "" {
		c.Logging.Format = def.Logging.Format
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
}
