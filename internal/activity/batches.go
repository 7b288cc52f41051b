package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"curator/internal/media"
)

// Batch summarizes one rename run.
type Batch struct {
	ID         string
	Planned    int
	Applied    int
	Preview    bool
	StartedAt  time.Time
	FinishedAt time.Time
}

// RecordBatch stores a rename run and its operations. A missing batch ID is
// assigned. Returns the batch ID.
func (s *Store) RecordBatch(ctx context.Context, batch Batch, ops []media.RenameOp) (string, error) {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	preview := 0
	if batch.Preview {
		preview = 1
	}
	err := s.execWithRetry(ctx,
		`INSERT INTO rename_batches (id, planned, applied, preview, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		batch.ID, batch.Planned, batch.Applied, preview,
		batch.StartedAt.UTC().Format(time.RFC3339),
		batch.FinishedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert batch: %w", err)
	}

	for _, op := range ops {
		isDir := 0
		if op.IsDirectory {
			isDir = 1
		}
		if err := s.execWithRetry(ctx,
			`INSERT INTO rename_operations (batch_id, original_path, new_path, reason, is_directory)
			 VALUES (?, ?, ?, ?, ?)`,
			batch.ID, op.OriginalPath, op.NewPath, op.Reason, isDir,
		); err != nil {
			return "", fmt.Errorf("insert batch operation: %w", err)
		}
	}
	return batch.ID, nil
}

// RecentBatches returns the most recent rename runs, newest first.
func (s *Store) RecentBatches(ctx context.Context, limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = 20
	}
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, planned, applied, preview, started_at, finished_at
		 FROM rename_batches ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var batch Batch
		var preview int
		var started, finished string
		if err := rows.Scan(&batch.ID, &batch.Planned, &batch.Applied, &preview, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan batch row: %w", err)
		}
		batch.Preview = preview != 0
		batch.StartedAt, _ = time.Parse(time.RFC3339, started)
		batch.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		batches = append(batches, batch)
	}
	return batches, rows.Err()
}

// BatchOperations returns the operations stored for one rename run.
func (s *Store) BatchOperations(ctx context.Context, batchID string) ([]media.RenameOp, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT original_path, new_path, reason, is_directory
		 FROM rename_operations WHERE batch_id = ? ORDER BY id`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query batch operations: %w", err)
	}
	defer rows.Close()

	var ops []media.RenameOp
	for rows.Next() {
		var op media.RenameOp
		var isDir int
		if err := rows.Scan(&op.OriginalPath, &op.NewPath, &op.Reason, &isDir); err != nil {
			return nil, fmt.Errorf("scan operation row: %w", err)
		}
		op.IsDirectory = isDir != 0
		ops = append(ops, op)
	}
	return ops, rows.Err()
}
