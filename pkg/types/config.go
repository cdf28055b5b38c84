// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DefaultEncoding is the text encoding assumed for source files.
const DefaultEncoding = "utf-8"

// SplitConfig holds settings for the split stage.
type SplitConfig struct {
	// Encoding is the WHATWG label of the source file encoding
	// (e.g. "utf-8", "windows-1252"). Empty means DefaultEncoding.
	Encoding string `json:"encoding" yaml:"encoding"`

	// Manifest controls whether manifest.yaml is written at the output root.
	Manifest bool `json:"manifest" yaml:"manifest"`
}

// EncodingOrDefault returns the configured encoding label or DefaultEncoding.
func (c SplitConfig) EncodingOrDefault() string {
	if c.Encoding == "" {
		return DefaultEncoding
	}
	return c.Encoding
}

// CatalogConfig holds settings for the component catalog.
type CatalogConfig struct {
	// DBPath is the SQLite database file (e.g. "spl-catalog.db").
	DBPath string `json:"db_path" yaml:"db_path"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ToolConfig groups all stage configurations.
type ToolConfig struct {
	Split   SplitConfig   `json:"split" yaml:"split"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`
}
