package planner

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"curator/internal/config"
	"curator/internal/logging"
	"curator/internal/media"
	"curator/internal/services"
)

// Generator produces a single-line suggestion for a prompt. Satisfied by
// inference.Manager.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Planner turns library items into an ordered list of rename operations.
// File renames go through the generator; directory renames are derived from
// metadata rules only.
type Planner struct {
	cfg    *config.Config
	gen    Generator
	logger *slog.Logger
}

// New constructs a planner over an immutable configuration snapshot.
func New(cfg *config.Config, gen Generator, logger *slog.Logger) *Planner {
	return &Planner{
		cfg:    cfg,
		gen:    gen,
		logger: logging.NewComponentLogger(logger, "planner"),
	}
}

// Plan processes items in order and returns the planned operations. Per-item
// failures are logged and skipped; the returned error is non-nil only on
// cancellation, alongside the operations planned so far.
func (p *Planner) Plan(ctx context.Context, items []media.Item) ([]media.RenameOp, error) {
	ops := make([]media.RenameOp, 0, len(items))
	seenDirs := make(map[string]struct{})

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return ops, err
		}
		if strings.TrimSpace(item.Path) == "" {
			p.logger.Warn("skipping item without a path", logging.String("name", item.Name))
			continue
		}
		if !p.kindEnabled(item.Kind()) {
			continue
		}

		if op, ok := p.planFile(ctx, item); ok {
			ops = append(ops, op)
		}
		if p.cfg.Rename.Directories {
			ops = append(ops, p.planDirectories(item, seenDirs)...)
		}
	}
	return ops, nil
}

func (p *Planner) kindEnabled(kind media.Kind) bool {
	switch kind {
	case media.KindEpisode:
		return p.cfg.Rename.Episodes
	case media.KindTrack:
		return p.cfg.Rename.Music
	default:
		return p.cfg.Rename.Movies
	}
}

// planFile produces the item's file rename, if one is needed. Items already
// matching the deterministic target name are skipped without a generator
// call.
func (p *Planner) planFile(ctx context.Context, item media.Item) (media.RenameOp, bool) {
	current := filepath.Base(item.Path)
	ctx = services.WithItemName(ctx, current)
	logger := logging.WithContext(ctx, p.logger)

	if target, ok := media.TargetFileName(item); ok && strings.EqualFold(current, target) {
		logger.Debug("filename already correct", logging.String("path", item.Path))
		return media.RenameOp{}, false
	}

	raw, err := p.gen.Generate(ctx, buildPrompt(item, p.cfg.Rename.CustomPromptAdditions))
	if err != nil {
		logger.Warn("suggestion failed, skipping item",
			logging.String("path", item.Path),
			logging.Error(err),
		)
		return media.RenameOp{}, false
	}

	cleaned := media.CleanGenerated(raw, promptLabel, filepath.Ext(item.Path))
	if cleaned == "" || strings.EqualFold(cleaned, current) {
		return media.RenameOp{}, false
	}
	return media.RenameOp{
		OriginalPath: item.Path,
		NewPath:      filepath.Join(filepath.Dir(item.Path), cleaned),
		Reason:       "suggested rename for " + item.Kind().String(),
	}, true
}

// planDirectories derives up to two metadata-rule directory renames for the
// item: the movie's parent folder, or the episode's season and series
// folders. Proposals already planned for the same original path are dropped.
func (p *Planner) planDirectories(item media.Item, seen map[string]struct{}) []media.RenameOp {
	var ops []media.RenameOp
	appendDir := func(dir, target, reason string) {
		if dir == "" || target == "" {
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Never rename a filesystem root.
			return
		}
		if strings.EqualFold(filepath.Base(dir), target) {
			return
		}
		if _, dup := seen[dir]; dup {
			return
		}
		seen[dir] = struct{}{}
		ops = append(ops, media.RenameOp{
			OriginalPath: dir,
			NewPath:      filepath.Join(parent, target),
			Reason:       reason,
			IsDirectory:  true,
		})
	}

	switch item.Kind() {
	case media.KindMovie:
		if target, ok := media.TargetMovieDirName(item); ok {
			appendDir(filepath.Dir(item.Path), target, "movie folder")
		}
	case media.KindEpisode:
		seasonDir := filepath.Dir(item.Path)
		if target, ok := media.TargetSeasonDirName(item); ok {
			appendDir(seasonDir, target, "season folder")
		}
		if target, ok := media.TargetSeriesDirName(item); ok {
			appendDir(filepath.Dir(seasonDir), target, "series folder")
		}
	}
	return ops
}
