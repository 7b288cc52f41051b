package renamer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"

	"curator/internal/config"
	"curator/internal/logging"
	"curator/internal/media"
	"curator/internal/services"
)

const lockFileName = "rename.lock"

// Executor applies planned rename operations to the filesystem. A whole run
// holds an advisory file lock so two processes cannot rename concurrently.
type Executor struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs an executor.
func New(cfg *config.Config, logger *slog.Logger) *Executor {
	return &Executor{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "renamer"),
	}
}

// Execute applies operations and returns the count actually applied. File
// renames run first; directory renames follow, deepest path first, with
// previously renamed ancestor prefixes rewritten into later operations.
// Skipped operations do not count. Cancellation is honored between
// operations, never mid-rename.
func (e *Executor) Execute(ctx context.Context, ops []media.RenameOp) (int, error) {
	if len(ops) == 0 {
		return 0, nil
	}

	lock := flock.New(filepath.Join(e.cfg.Paths.StateDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return 0, services.Wrap(services.ErrAlreadyInProgress, "renamer", "execute", "acquire rename lock", err)
	}
	if !locked {
		return 0, services.Wrap(services.ErrAlreadyInProgress, "renamer", "execute", "another rename run holds the lock", nil)
	}
	defer lock.Unlock()

	e.writeHistory(ops)

	var files, dirs []media.RenameOp
	for _, op := range ops {
		if op.IsDirectory {
			dirs = append(dirs, op)
		} else {
			files = append(files, op)
		}
	}
	sort.SliceStable(dirs, func(i, j int) bool {
		return pathDepth(dirs[i].OriginalPath) > pathDepth(dirs[j].OriginalPath)
	})

	applied := 0
	for _, op := range files {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		if e.apply(op.OriginalPath, op.NewPath) {
			applied++
		}
	}

	var remaps []prefixRemap
	for _, op := range dirs {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		from := remapPath(op.OriginalPath, remaps)
		to := remapPath(op.NewPath, remaps)
		if e.apply(from, to) {
			applied++
			remaps = append(remaps, prefixRemap{old: from, new: to})
		}
	}

	logging.WithContext(ctx, e.logger).Info("rename run finished",
		logging.Int("planned", len(ops)),
		logging.Int("applied", applied),
	)
	return applied, nil
}

// apply performs one rename guarded by "source exists and destination does
// not". Violations are skipped with a warning; nothing is ever overwritten.
func (e *Executor) apply(from, to string) bool {
	if _, err := os.Stat(from); err != nil {
		e.logger.Warn("source missing, skipping rename", logging.String("path", from))
		return false
	}
	if _, err := os.Stat(to); err == nil {
		e.logger.Warn("destination exists, skipping rename",
			logging.String("from", from),
			logging.String("to", to),
		)
		return false
	}
	if err := os.Rename(from, to); err != nil {
		e.logger.Warn("rename failed",
			logging.String("from", from),
			logging.String("to", to),
			logging.Error(err),
		)
		return false
	}
	e.logger.Info("renamed", logging.String("from", from), logging.String("to", to))
	return true
}

type prefixRemap struct {
	old string
	new string
}

// remapPath rewrites path through earlier directory renames. Prefix matches
// must end on a path separator boundary so renaming "show" never rewrites a
// sibling "showcase".
func remapPath(path string, remaps []prefixRemap) string {
	for _, r := range remaps {
		if path == r.old {
			path = r.new
			continue
		}
		prefix := r.old + string(os.PathSeparator)
		if strings.HasPrefix(path, prefix) {
			path = r.new + path[len(r.old):]
		}
	}
	return path
}

func pathDepth(path string) int {
	return strings.Count(filepath.Clean(path), string(os.PathSeparator))
}
