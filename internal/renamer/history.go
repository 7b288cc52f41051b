package renamer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"curator/internal/logging"
	"curator/internal/media"
)

// HistoryFileName is the append-only audit log kept in every directory a
// rename originated from.
const HistoryFileName = ".rename-history.txt"

// writeHistory appends every operation to the history log of the directory
// containing its original path, before any rename runs. Log-write failures
// are logged and never block execution.
func (e *Executor) writeHistory(ops []media.RenameOp) {
	byDir := make(map[string][]media.RenameOp)
	order := make([]string, 0)
	for _, op := range ops {
		dir := filepath.Dir(op.OriginalPath)
		if _, seen := byDir[dir]; !seen {
			order = append(order, dir)
		}
		byDir[dir] = append(byDir[dir], op)
	}

	stamp := time.Now().Format(time.RFC3339)
	for _, dir := range order {
		if err := appendHistory(dir, stamp, byDir[dir]); err != nil {
			e.logger.Warn("failed to write rename history",
				logging.String("dir", dir),
				logging.Error(err),
			)
		}
	}
}

func appendHistory(dir, stamp string, ops []media.RenameOp) error {
	f, err := os.OpenFile(filepath.Join(dir, HistoryFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, op := range ops {
		kind := "file"
		if op.IsDirectory {
			kind = "dir"
		}
		if _, err := fmt.Fprintf(f, "%s\t%s\t%s -> %s\n", stamp, kind, op.OriginalPath, op.NewPath); err != nil {
			return err
		}
	}
	return nil
}
