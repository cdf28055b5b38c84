// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package split

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/spl-splitter/pkg/types"
)

// ManifestFile is written at the output root when SplitConfig.Manifest is set.
const ManifestFile = "manifest.yaml"

func buildManifest(doc *Document, s Summary) types.Manifest {
	counts := make(map[types.Category]int, len(s.Matches))
	for c, n := range s.Matches {
		if n > 0 {
			counts[c] = n
		}
	}
	return types.Manifest{
		Source:   filepath.Base(doc.Path),
		Encoding: doc.Encoding,
		Entries:  s.Files,
		Counts:   counts,
	}
}

func writeManifest(outputDir string, m types.Manifest) error {
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, ManifestFile), data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by a previous run.
func ReadManifest(outputDir string) (*types.Manifest, error) {
	data, err := os.ReadFile(filepath.Join(outputDir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m types.Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}
