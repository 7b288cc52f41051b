package main

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"curator/internal/download"
	"curator/internal/services"
)

func newModelsCommand(cmdCtx *commandContext) *cobra.Command {
	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "Manage local model files and the native runtime",
	}

	modelsCmd.AddCommand(newModelsListCommand(cmdCtx))
	modelsCmd.AddCommand(newModelsDeleteCommand(cmdCtx))
	modelsCmd.AddCommand(newModelsFetchCommand(cmdCtx))
	modelsCmd.AddCommand(newModelsFetchRuntimeCommand(cmdCtx))

	return modelsCmd
}

func newModelsListCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List downloaded model files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			entries, err := os.ReadDir(cfg.Paths.ModelsDir)
			if err != nil {
				return fmt.Errorf("read models directory: %w", err)
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				info, err := entry.Info()
				if err != nil {
					continue
				}
				active := ""
				if filepath.Join(cfg.Paths.ModelsDir, entry.Name()) == cfg.Model.Path {
					active = "*"
				}
				rows = append(rows, []string{
					entry.Name(),
					humanize.Bytes(uint64(info.Size())),
					info.ModTime().Format("2006-01-02 15:04"),
					active,
				})
			}
			sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No models downloaded.")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Size", "Modified", "Active"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newModelsDeleteCommand(cmdCtx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a downloaded model file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			name := filepath.Base(strings.TrimSpace(args[0]))
			target := filepath.Join(cfg.Paths.ModelsDir, name)
			if _, err := os.Stat(target); err != nil {
				return services.Wrap(services.ErrNotFound, "models", "delete", "no local model named "+name, err)
			}
			if target == cfg.Model.Path && !force {
				return fmt.Errorf("%s is the configured model (model.path); pass --force to delete it anyway", name)
			}
			if err := os.Remove(target); err != nil {
				return fmt.Errorf("delete model %s: %w", name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Delete even when the model is set as model.path")
	return cmd
}

func newModelsFetchCommand(cmdCtx *commandContext) *cobra.Command {
	var name string
	var expectedSize int64

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Download a model file into the models directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rawURL := strings.TrimSpace(args[0])
			id := strings.TrimSpace(name)
			if id == "" {
				id = fileNameFromURL(rawURL)
			}
			if id == "" {
				return services.Wrap(services.ErrValidation, "models", "fetch", "cannot derive a filename from the URL; pass --name", nil)
			}
			return runDownload(cmd, cmdCtx, download.KindModel, id, rawURL, expectedSize)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Filename to store the model as")
	cmd.Flags().Int64Var(&expectedSize, "size", 0, "Expected size in bytes, enabling the resume short-circuit")
	return cmd
}

func newModelsFetchRuntimeCommand(cmdCtx *commandContext) *cobra.Command {
	var runtimeURL string

	cmd := &cobra.Command{
		Use:   "fetch-runtime",
		Short: "Download and extract the native inference runtime for this platform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			src := strings.TrimSpace(runtimeURL)
			if src == "" {
				src = cfg.Downloads.RuntimeURL
			}
			return runDownload(cmd, cmdCtx, download.KindRuntime, "runtime.zip", src, 0)
		},
	}

	cmd.Flags().StringVar(&runtimeURL, "url", "", "Runtime archive URL (defaults to downloads.runtime_url)")
	return cmd
}

// runDownload starts a download and polls its progress to the terminal until
// it reaches a terminal state.
func runDownload(cmd *cobra.Command, cmdCtx *commandContext, kind download.Kind, id, rawURL string, expectedSize int64) error {
	store, err := cmdCtx.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	orch, err := cmdCtx.newOrchestrator(store)
	if err != nil {
		return err
	}
	if !orch.StartDownload(kind, id, rawURL, expectedSize) {
		return services.Wrap(services.ErrValidation, "models", "fetch", "download rejected; check the URL and filename", nil)
	}

	out := cmd.OutOrStdout()
	tty := isatty.IsTerminal(os.Stdout.Fd())
	lastStatus := ""
	for {
		progress, ok := orch.CurrentProgress()
		if !ok {
			break
		}
		if progress.StatusText != lastStatus {
			lastStatus = progress.StatusText
			if tty {
				fmt.Fprintf(out, "\r\033[K%s: %s", progress.ID, progress.StatusText)
			} else {
				fmt.Fprintf(out, "%s: %s\n", progress.ID, progress.StatusText)
			}
		}
		if progress.State.Terminal() {
			if tty {
				fmt.Fprintln(out)
			}
			if progress.State != download.StateCompleted {
				return fmt.Errorf("download finished in state %s: %s", progress.State, progress.StatusText)
			}
			if progress.CompletedPath != "" {
				fmt.Fprintf(out, "Saved to %s\n", progress.CompletedPath)
			}
			return nil
		}
		time.Sleep(300 * time.Millisecond)
	}
	return nil
}

func fileNameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	name := path.Base(parsed.Path)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
