// Package planner builds rename plans: file renames are suggested by the
// inference backend and sanitized, directory renames come from deterministic
// metadata rules. Planning is partial-failure tolerant and preserves input
// order.
package planner
