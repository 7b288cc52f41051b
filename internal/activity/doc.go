// Package activity keeps an append-only SQLite record of rename batches and
// download outcomes for the history command.
package activity
