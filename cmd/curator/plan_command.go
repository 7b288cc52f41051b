package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"curator/internal/library"
	"curator/internal/media"
	"curator/internal/planner"
)

func newPlanCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <manifest>",
		Short: "Preview the renames curator would apply for a library manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := buildPlan(cmd.Context(), cmdCtx, args[0])
			if err != nil {
				return err
			}
			printPlan(cmd, ops)
			return nil
		},
	}
}

// buildPlan loads the manifest, makes the configured model resident, and
// runs the planner over the items.
func buildPlan(ctx context.Context, cmdCtx *commandContext, manifestPath string) ([]media.RenameOp, error) {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := cmdCtx.ensureLogger()
	if err != nil {
		return nil, err
	}
	if cfg.Model.Path == "" {
		return nil, fmt.Errorf("no model configured: set model.path in the config file or fetch one with `curator models fetch`")
	}

	items, err := library.NewManifestSource(manifestPath).Items(ctx)
	if err != nil {
		return nil, err
	}

	manager, err := cmdCtx.newManager()
	if err != nil {
		return nil, err
	}
	defer manager.Close()
	if err := manager.Load(ctx, cfg.Model.Path); err != nil {
		return nil, err
	}

	return planner.New(cfg, manager, logger).Plan(ctx, items)
}

func printPlan(cmd *cobra.Command, ops []media.RenameOp) {
	out := cmd.OutOrStdout()
	if len(ops) == 0 {
		fmt.Fprintln(out, "Nothing to rename.")
		return
	}

	rows := make([][]string, 0, len(ops))
	for _, op := range ops {
		kind := "file"
		if op.IsDirectory {
			kind = "dir"
		}
		rows = append(rows, []string{kind, op.OriginalPath, op.NewPath, op.Reason})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Type", "From", "To", "Reason"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
	))
	fmt.Fprintf(out, "%d operation(s) planned\n", len(ops))
}
