// Package download implements curator's byte-stream downloader and the
// single-slot orchestrator that runs transfers in the background, publishes
// rate-limited progress snapshots, short-circuits on satisfied local files,
// and hands runtime archives to the extractor before reporting completion.
package download
