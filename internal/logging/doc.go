// Package logging provides curator's slog construction helpers: console and
// JSON handlers, shared attribute helpers, context-derived fields, and a
// sampler that rate-limits download progress output.
package logging
