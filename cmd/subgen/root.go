package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"subgen/internal/config"
)

func newRootCommand() *cobra.Command {
	ctx := newCommandContext()

	rootCmd := &cobra.Command{
		Use:           "subgen <media-file>",
		Short:         "Generate SRT subtitles from a video or audio file",
		Long: "subgen transcodes the input to normalized audio, runs speech recognition,\n" +
			"and writes an SRT subtitle file beside the input. The transcoder build and\n" +
			"the speech model are downloaded into a hidden cache on first use.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("provide the path to a media file. Example: subgen clip.mp4")
			}
			return runGenerate(cmd, ctx, args[0])
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	flags.StringVar(&ctx.logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&ctx.logFormatFlag, "log-format", "", "Log format (console, json)")

	rootCmd.Flags().StringVar(&ctx.modelFlag, "model", "", "Speech model variant (tiny, base, small, medium, large-v3, ...)")
	rootCmd.Flags().StringVar(&ctx.languageFlag, "language", "", `Spoken language code, or "auto" to detect`)
	rootCmd.Flags().BoolVar(&ctx.keepTempFlag, "keep-temp", false, "Keep intermediate audio files in the working cache")

	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

// commandContext carries flag values and lazily loaded configuration shared
// by the subcommands.
type commandContext struct {
	configFlag    string
	logLevelFlag  string
	logFormatFlag string
	modelFlag     string
	languageFlag  string
	keepTempFlag  bool

	cfg *config.Config
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

// ensureConfig loads the configuration once and applies flag overrides.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, _, _, err := config.Load(c.configFlag)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if c.logLevelFlag != "" {
		cfg.Logging.Level = c.logLevelFlag
	}
	if c.logFormatFlag != "" {
		cfg.Logging.Format = c.logFormatFlag
	}
	if c.modelFlag != "" {
		cfg.Model.Variant = c.modelFlag
	}
	if c.languageFlag != "" {
		lang := strings.TrimSpace(c.languageFlag)
		if lang != "auto" {
			if _, err := language.Parse(lang); err != nil {
				return nil, fmt.Errorf("invalid language %q: %w", lang, err)
			}
		}
		cfg.Recognizer.Language = lang
	}
	if c.keepTempFlag {
		cfg.Transcoder.KeepTempFiles = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

func resolveInputPath(arg string) (string, error) {
	source := strings.TrimSpace(arg)
	if source == "" {
		return "", fmt.Errorf("media file path is required")
	}
	source, err := filepath.Abs(source)
	if err != nil {
		return "", fmt.Errorf("resolve input path: %w", err)
	}
	info, err := os.Stat(source)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("media file %q not found", source)
		}
		return "", fmt.Errorf("stat input: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("input path %q is a directory", source)
	}
	return source, nil
}
