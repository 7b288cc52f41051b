package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newHistoryCommand(cmdCtx *commandContext) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent rename runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			batches, err := store.RecentBatches(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(batches) == 0 {
				fmt.Fprintln(out, "No rename runs recorded.")
				return nil
			}

			rows := make([][]string, 0, len(batches))
			for _, batch := range batches {
				mode := "applied"
				if batch.Preview {
					mode = "preview"
				}
				rows = append(rows, []string{
					batch.ID,
					batch.StartedAt.Local().Format("2006-01-02 15:04"),
					mode,
					fmt.Sprintf("%d", batch.Planned),
					fmt.Sprintf("%d", batch.Applied),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Batch", "Started", "Mode", "Planned", "Applied"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	historyCmd.PersistentFlags().IntVar(&limit, "limit", 20, "Maximum entries to show")
	historyCmd.AddCommand(newHistoryDownloadsCommand(cmdCtx, &limit))
	historyCmd.AddCommand(newHistoryShowCommand(cmdCtx))

	return historyCmd
}

func newHistoryDownloadsCommand(cmdCtx *commandContext, limit *int) *cobra.Command {
	return &cobra.Command{
		Use:   "downloads",
		Short: "Show recent download outcomes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.RecentDownloads(cmd.Context(), *limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No downloads recorded.")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				detail := humanize.Bytes(uint64(entry.Bytes))
				if entry.Error != "" {
					detail = entry.Error
				}
				rows = append(rows, []string{
					entry.DownloadID,
					entry.Kind,
					entry.State,
					detail,
					entry.FinishedAt.Local().Format("2006-01-02 15:04"),
					entry.FinishedAt.Sub(entry.StartedAt).Round(time.Second).String(),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Kind", "State", "Detail", "Finished", "Duration"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newHistoryShowCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <batch-id>",
		Short: "Show the operations of one rename run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ops, err := store.BatchOperations(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(ops) == 0 {
				fmt.Fprintln(out, "No operations recorded for that batch.")
				return nil
			}

			rows := make([][]string, 0, len(ops))
			for _, op := range ops {
				kind := "file"
				if op.IsDirectory {
					kind = "dir"
				}
				rows = append(rows, []string{kind, op.OriginalPath, op.NewPath})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Type", "From", "To"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
