package media

import (
	"path/filepath"
	"strings"
)

const illegalFilenameRunes = `<>:"/\|?*`

// SanitizeComponent replaces filesystem-illegal characters in a single path
// component with underscores and trims surrounding whitespace.
func SanitizeComponent(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if strings.ContainsRune(illegalFilenameRunes, r) || r < 0x20 {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// CleanGenerated normalizes raw model output into a usable filename. It trims
// whitespace, backticks, and quotes, strips an echoed prompt label, replaces
// illegal characters, and forces the result to carry originalExt regardless
// of what the model produced. An empty string means the output was unusable.
func CleanGenerated(raw, promptLabel, originalExt string) string {
	cleaned := strings.TrimSpace(raw)
	// Models occasionally answer with several lines; only the first is the name.
	if idx := strings.IndexAny(cleaned, "\r\n"); idx >= 0 {
		cleaned = cleaned[:idx]
	}
	cleaned = strings.Trim(cleaned, "`\"' \t")
	if promptLabel != "" {
		for {
			lower := strings.ToLower(cleaned)
			label := strings.ToLower(promptLabel)
			if !strings.HasPrefix(lower, label) {
				break
			}
			cleaned = strings.TrimSpace(cleaned[len(promptLabel):])
			cleaned = strings.TrimLeft(cleaned, ": \t")
		}
		cleaned = strings.Trim(cleaned, "`\"' \t")
	}
	cleaned = SanitizeComponent(cleaned)
	if cleaned == "" {
		return ""
	}
	if originalExt == "" {
		return cleaned
	}
	ext := filepath.Ext(cleaned)
	if strings.EqualFold(ext, originalExt) {
		return cleaned[:len(cleaned)-len(ext)] + originalExt
	}
	if ext != "" && looksLikeExtension(strings.ToLower(ext)) {
		cleaned = cleaned[:len(cleaned)-len(ext)]
	}
	cleaned = strings.TrimRight(cleaned, ". ")
	if cleaned == "" {
		return ""
	}
	return cleaned + originalExt
}

// looksLikeExtension distinguishes a real extension from a dotted title
// fragment such as "Vol. 2": extensions are short and purely alphanumeric.
func looksLikeExtension(ext string) bool {
	if len(ext) < 2 || len(ext) > 6 {
		return false
	}
	for _, r := range ext[1:] {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
