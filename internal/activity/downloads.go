package activity

import (
	"context"
	"fmt"
	"time"

	"curator/internal/download"
)

// DownloadEntry is a stored download outcome.
type DownloadEntry struct {
	DownloadID string
	Kind       string
	URL        string
	Dest       string
	State      string
	Bytes      int64
	Total      int64
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// RecordDownload stores a terminal download outcome. Implements
// download.Recorder.
func (s *Store) RecordDownload(ctx context.Context, rec download.Record) error {
	return s.execWithRetry(ctx,
		`INSERT INTO downloads (download_id, kind, url, dest, state, bytes, total, error, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Kind, rec.URL, rec.Dest, string(rec.State),
		rec.Bytes, rec.Total, rec.Error,
		rec.StartedAt.UTC().Format(time.RFC3339),
		rec.FinishedAt.UTC().Format(time.RFC3339),
	)
}

// RecentDownloads returns the most recent download outcomes, newest first.
func (s *Store) RecentDownloads(ctx context.Context, limit int) ([]DownloadEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT download_id, kind, url, dest, state, bytes, total, error, started_at, finished_at
		 FROM downloads ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query downloads: %w", err)
	}
	defer rows.Close()

	var entries []DownloadEntry
	for rows.Next() {
		var entry DownloadEntry
		var started, finished string
		if err := rows.Scan(&entry.DownloadID, &entry.Kind, &entry.URL, &entry.Dest, &entry.State,
			&entry.Bytes, &entry.Total, &entry.Error, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan download row: %w", err)
		}
		entry.StartedAt, _ = time.Parse(time.RFC3339, started)
		entry.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
