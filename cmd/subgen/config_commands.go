package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"subgen/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage subgen configuration",
	}
	cmd.AddCommand(newConfigInitCommand(ctx))
	cmd.AddCommand(newConfigShowCommand(ctx))
	return cmd
}

func newConfigInitCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented sample configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ctx.configFlag
			if path == "" {
				def, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				path = def
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
			}
			if err := config.CreateSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			encoded, err := toml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(encoded)
			return err
		},
	}
}
