package library

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"curator/internal/media"
	"curator/internal/services"
)

// Source supplies the media items to plan against. Implementations are
// read-only collaborators; curator never writes metadata back through them.
type Source interface {
	Items(ctx context.Context) ([]media.Item, error)
}

// ManifestSource reads items from a JSON manifest exported by the media
// server: either a bare array of items or an object with an "items" field.
type ManifestSource struct {
	path string
}

// NewManifestSource constructs a source for the given manifest path.
func NewManifestSource(path string) *ManifestSource {
	return &ManifestSource{path: strings.TrimSpace(path)}
}

type manifestEnvelope struct {
	Items []media.Item `json:"items"`
}

// Items decodes the manifest. Items without a path are dropped with no error;
// an unreadable or unparsable manifest fails as a whole.
func (s *ManifestSource) Items(ctx context.Context) ([]media.Item, error) {
	if s == nil || s.path == "" {
		return nil, services.Wrap(services.ErrValidation, "library", "read manifest", "manifest path required", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "library", "read manifest", s.path, err)
		}
		return nil, services.Wrap(services.ErrValidation, "library", "read manifest", s.path, err)
	}

	var items []media.Item
	if err := json.Unmarshal(data, &items); err != nil {
		var envelope manifestEnvelope
		if envErr := json.Unmarshal(data, &envelope); envErr != nil {
			return nil, services.Wrap(services.ErrValidation, "library", "parse manifest", fmt.Sprintf("%s is neither an item array nor an items object", s.path), err)
		}
		items = envelope.Items
	}

	kept := items[:0]
	for _, item := range items {
		if strings.TrimSpace(item.Path) == "" {
			continue
		}
		if strings.TrimSpace(item.Name) == "" {
			// Manifests without titles still get readable prompt context.
			item.Name = media.HumanizeBaseName(filepath.Base(item.Path))
		}
		kept = append(kept, item)
	}
	return kept, nil
}
