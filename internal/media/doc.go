// Package media holds curator's core data model: library items, the closed
// movie/episode/track kind classification, planned rename operations, the
// deterministic metadata naming rules, and filename sanitization shared by
// the planner and executor.
package media
