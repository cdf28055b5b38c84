// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package split partitions one source-dialect file into per-category
// component files (links, includes, defines, objects, procedures, screens,
// menus, version, globals) by running a fixed sequence of independent
// pattern passes over the full text. It does no parsing: block boundaries
// are whatever the patterns say they are.
package split

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pdiddy/spl-splitter/pkg/types"
)

// Summary holds counts from one extraction run.
type Summary struct {
	// Matches counts matches per category.
	Matches map[types.Category]int

	// Files lists every write in order, relative to the output root.
	Files []types.ManifestEntry
}

// Total returns the number of matches across all categories.
func (s Summary) Total() int {
	n := 0
	for _, c := range s.Matches {
		n += c
	}
	return n
}

// Extractor runs the rule sequence against one input file at a time.
type Extractor struct {
	cfg   types.SplitConfig
	rules []Rule
	log   *zap.Logger
}

// New returns an Extractor using DefaultRules. A nil logger disables
// diagnostic logging.
func New(cfg types.SplitConfig, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{
		cfg:   cfg,
		rules: DefaultRules(),
		log:   log,
	}
}

// Extract splits inputPath into outputDir with the default configuration.
func Extract(inputPath, outputDir string) error {
	_, err := New(types.SplitConfig{}, nil).Extract(inputPath, outputDir)
	return err
}

// Extract reads inputPath, creates outputDir and its category
// subdirectories, and writes every rule's output. Existing files that no
// rule writes are left alone. If the input cannot be read nothing is
// created. A failed write aborts the remaining rules.
func (e *Extractor) Extract(inputPath, outputDir string) (Summary, error) {
	doc, err := Load(inputPath, e.cfg.EncodingOrDefault())
	if err != nil {
		return Summary{}, err
	}
	e.log.Debug("loaded source",
		zap.String("path", doc.Path),
		zap.String("encoding", doc.Encoding),
		zap.Int("bytes", len(doc.Text)),
	)

	if err := createLayout(outputDir); err != nil {
		return Summary{}, err
	}

	summary := Summary{Matches: make(map[types.Category]int)}
	written := make(map[string]bool)
	for _, rule := range e.rules {
		outs, err := rule.Apply(doc.Text)
		if err != nil {
			return summary, err
		}
		for _, out := range outs {
			if err := writeOutput(outputDir, out); err != nil {
				return summary, err
			}
			if !out.Overwrites || !written[out.Path] {
				summary.Matches[out.Category] += out.Matches
			}
			written[out.Path] = true
			summary.Files = append(summary.Files, types.ManifestEntry{
				Category: out.Category,
				Name:     out.Name,
				Path:     out.Path,
			})
		}
		e.log.Debug("rule applied",
			zap.String("category", string(rule.Category)),
			zap.String("dest", rule.Dest),
			zap.Int("writes", len(outs)),
		)
	}

	if e.cfg.Manifest {
		m := buildManifest(doc, summary)
		if err := writeManifest(outputDir, m); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

func createLayout(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	for _, dir := range outputDirs {
		if err := os.MkdirAll(filepath.Join(outputDir, dir), 0o755); err != nil {
			return fmt.Errorf("creating %s directory: %w", dir, err)
		}
	}
	return nil
}

func writeOutput(outputDir string, out Output) error {
	target := filepath.Join(outputDir, filepath.FromSlash(out.Path))
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if out.Append {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}

	f, err := os.OpenFile(target, flags, 0o644)
	if err != nil {
		return fmt.Errorf("writing %s: %w", out.Path, err)
	}
	if _, err := io.WriteString(f, out.Content); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", out.Path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", out.Path, err)
	}
	return nil
}
