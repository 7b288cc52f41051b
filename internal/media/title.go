package media

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// HumanizeBaseName turns a scene-style filename into a readable guess used as
// prompt context: extension removed, separators replaced with spaces, words
// title-cased. It makes no attempt to strip release tags; the model sees the
// raw name alongside it.
func HumanizeBaseName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	replacer := strings.NewReplacer(".", " ", "_", " ", "-", " ")
	base = replacer.Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return ""
	}
	return titleCaser.String(strings.ToLower(base))
}
