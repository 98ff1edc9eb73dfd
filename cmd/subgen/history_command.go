package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"subgen/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent transcription runs",
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
			dbPath := filepath.Join(cacheRoot, "history.db")
			if _, err := os.Stat(dbPath); os.IsNotExist(err) {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}
			store, err := history.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					strconv.FormatInt(run.ID, 10),
					run.CreatedAt.Local().Format(time.DateTime),
					run.SourcePath,
					strconv.Itoa(run.SegmentCount),
					run.Language,
					run.Elapsed.Round(time.Second).String(),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "When", "Source", "Segments", "Language", "Elapsed"},
				rows, 1, 4,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}
