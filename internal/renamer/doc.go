// Package renamer applies planned renames: files first, then directories
// deepest-first with ancestor prefix remapping, never overwriting an
// existing destination. Every operation is appended to a per-directory
// history log before execution.
package renamer
