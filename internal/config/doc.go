// Package config loads and validates curator's TOML configuration. Loading
// runs a fixed pipeline: defaults, file decode, normalization (path expansion
// and fallbacks), then validation. Configuration is treated as an immutable
// snapshot by every consumer; nothing in the core writes it back.
package config
