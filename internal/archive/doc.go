// Package archive extracts platform-specific native runtime payloads from
// downloaded zip archives into the runtimes directory layout the inference
// backend selection depends on.
package archive
