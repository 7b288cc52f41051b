package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"curator/internal/activity"
	"curator/internal/logging"
	"curator/internal/media"
	"curator/internal/renamer"
	"curator/internal/services"
)

func newApplyCommand(cmdCtx *commandContext) *cobra.Command {
	var preview bool
	var force bool

	cmd := &cobra.Command{
		Use:   "apply <manifest>",
		Short: "Plan and apply renames for a library manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cmdCtx.ensureLogger()
			if err != nil {
				return err
			}

			batchID := uuid.NewString()
			runCtx := services.WithBatchID(cmd.Context(), batchID)

			started := time.Now()
			ops, err := buildPlan(runCtx, cmdCtx, args[0])
			if err != nil {
				return err
			}
			printPlan(cmd, ops)
			if len(ops) == 0 {
				return nil
			}

			if preview || cfg.Rename.PreviewOnly {
				fmt.Fprintln(cmd.OutOrStdout(), "Preview only; nothing was renamed.")
				recordBatch(cmdCtx, activity.Batch{
					ID:         batchID,
					Planned:    len(ops),
					Preview:    true,
					StartedAt:  started,
					FinishedAt: time.Now(),
				}, ops)
				return nil
			}
			if !cfg.Rename.EnableAutoRename && !force {
				return fmt.Errorf("automatic renaming is disabled: enable rename.enable_auto_rename or pass --force")
			}

			applied, execErr := renamer.New(cfg, logger).Execute(runCtx, ops)
			recordBatch(cmdCtx, activity.Batch{
				ID:         batchID,
				Planned:    len(ops),
				Applied:    applied,
				StartedAt:  started,
				FinishedAt: time.Now(),
			}, ops)
			if execErr != nil {
				return execErr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d of %d operation(s)\n", applied, len(ops))
			return nil
		},
	}

	cmd.Flags().BoolVar(&preview, "preview", false, "Show the plan without renaming anything")
	cmd.Flags().BoolVar(&force, "force", false, "Apply even when automatic renaming is disabled in the config")
	return cmd
}

// recordBatch stores the run in the activity database. Best effort: a
// storage failure never fails the rename run itself.
func recordBatch(cmdCtx *commandContext, batch activity.Batch, ops []media.RenameOp) {
	logger, err := cmdCtx.ensureLogger()
	if err != nil {
		return
	}
	store, err := cmdCtx.openStore()
	if err != nil {
		logger.Warn("failed to open activity store", logging.Error(err))
		return
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := store.RecordBatch(ctx, batch, ops); err != nil {
		logger.Warn("failed to record rename batch", logging.Error(err))
	}
}
