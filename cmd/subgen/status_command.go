package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"subgen/internal/assets"
	"subgen/internal/deps"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show cached assets and external binary availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cacheRoot, err := cfg.CacheRoot()
			if err != nil {
				return err
			}
			manager := assets.NewManager(assets.Options{
				Root:              cacheRoot,
				ModelBaseURL:      cfg.Model.BaseURL,
				TranscoderBaseURL: cfg.Transcoder.DownloadURL,
			})

			model, err := manager.InspectModel(cfg.Model.Variant)
			if err != nil {
				return fmt.Errorf("inspect model: %w", err)
			}
			transcoder, err := manager.InspectTranscoder()
			if err != nil {
				return fmt.Errorf("inspect transcoder: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Working cache: %s\n\n", cacheRoot)

			assetRows := [][]string{
				assetRow("model ("+cfg.Model.Variant+")", model),
				assetRow("transcoder", transcoder),
			}
			fmt.Fprintln(out, renderTable([]string{"Asset", "State", "Size", "Path"}, assetRows, 3))

			statuses := deps.CheckBinaries(deps.ForConfig(cfg))
			binRows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				availability := "ok"
				if !status.Available {
					availability = status.Detail
				}
				binRows = append(binRows, []string{status.Name, status.Command, availability})
			}
			fmt.Fprintln(out, renderTable([]string{"Binary", "Command", "Status"}, binRows))
			return nil
		},
	}
}

func assetRow(label string, asset *assets.CachedAsset) []string {
	size := "-"
	if asset.Exists {
		size = strconv.FormatInt(asset.Size, 10)
	}
	return []string{label, asset.State.String(), size, asset.Path}
}
