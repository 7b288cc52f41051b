package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"curator/internal/logging"
	"curator/internal/services"
)

const entryPrefix = "runtimes/"

// PlatformTag identifies the current platform's subtree inside a runtime
// archive, e.g. "linux-amd64". The directory layout under the runtimes dir
// mirrors this tag, which the backend variant selection depends on.
func PlatformTag() string {
	return runtime.GOOS + "-" + runtime.GOARCH
}

// Extractor materializes platform-specific entries from runtime archives.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor constructs an extractor. A nil logger is replaced with a no-op.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logging.NewComponentLogger(logger, "extractor")}
}

// Extract copies every archive entry namespaced under the platform tag into
// targetDir, preserving the relative structure below the prefix so multiple
// hardware-variant subfolders can coexist. Entries outside the prefix are
// ignored. Existing files are overwritten; directory and zero-length entries
// are skipped. Returns the number of files written.
func (e *Extractor) Extract(archivePath, platformTag, targetDir string) (int, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, services.Wrap(services.ErrExtraction, "extractor", "open archive", archivePath, err)
	}
	defer reader.Close()

	prefix := entryPrefix + strings.Trim(platformTag, "/") + "/"
	extracted := 0
	for _, entry := range reader.File {
		name := filepath.ToSlash(entry.Name)
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		rel := strings.TrimPrefix(name, prefix)
		if rel == "" || strings.HasSuffix(name, "/") || entry.UncompressedSize64 == 0 {
			continue
		}
		if !filepath.IsLocal(filepath.FromSlash(rel)) {
			return extracted, services.Wrap(services.ErrExtraction, "extractor", "validate entry", fmt.Sprintf("entry %q escapes target directory", entry.Name), nil)
		}
		dest := filepath.Join(targetDir, filepath.FromSlash(rel))
		if err := writeEntry(entry, dest); err != nil {
			return extracted, services.Wrap(services.ErrExtraction, "extractor", "write entry", entry.Name, err)
		}
		extracted++
	}

	e.logger.Info("runtime payload extracted",
		logging.String("archive", archivePath),
		logging.String("platform", platformTag),
		logging.Int("files", extracted),
	)
	return extracted, nil
}

func writeEntry(entry *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	in, err := entry.Open()
	if err != nil {
		return err
	}
	defer in.Close()

	mode := entry.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
