package inference

import (
	"os"
	"path/filepath"

	"curator/internal/archive"
)

// Runtime variant preference, best first. GPU variants are only considered
// when the configuration requests GPU offload; CPU variants are ordered by
// instruction-set capability so newer hosts pick the fastest build.
var (
	gpuVariants = []string{"cuda12", "cuda"}
	cpuVariants = []string{"avx512", "avx2", "avx", "noavx"}
)

// variantDir resolves the library directory for a named variant under the
// current platform's runtime payload, or "" when not installed.
func variantDir(runtimesDir, variant string) string {
	dir := filepath.Join(runtimesDir, archive.PlatformTag(), variant)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ""
	}
	return dir
}

// selectCPUVariant returns the best installed CPU variant directory, or ""
// when no runtime payload is installed at all.
func selectCPUVariant(runtimesDir string) (dir, variant string) {
	for _, v := range cpuVariants {
		if d := variantDir(runtimesDir, v); d != "" {
			return d, v
		}
	}
	return "", ""
}

// selectGPUVariant returns the best installed GPU variant directory, or ""
// when none is installed.
func selectGPUVariant(runtimesDir string) (dir, variant string) {
	for _, v := range gpuVariants {
		if d := variantDir(runtimesDir, v); d != "" {
			return d, v
		}
	}
	return "", ""
}
