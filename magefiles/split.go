//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"

	"github.com/pdiddy/spl-splitter/internal/split"
)

// Split namespaces targets that run the splitter from the repository root.
type Split mg.Namespace

// Default splits m50lines.spl into m50lines_components.
func (Split) Default() error {
	return splitFile("m50lines.spl", "m50lines_components")
}

// File splits the given source file into the given output directory.
func (Split) File(input, output string) error {
	return splitFile(input, output)
}

func splitFile(input, output string) error {
	if err := split.Extract(input, output); err != nil {
		return err
	}
	fmt.Printf("Extraction completed. Components saved in %s\n", output)
	return nil
}
