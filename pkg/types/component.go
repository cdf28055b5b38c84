// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Category names one syntactic category of the source dialect that the
// splitter extracts.
type Category string

const (
	CategoryLink      Category = "link"
	CategoryInclude   Category = "include"
	CategoryDefine    Category = "define"
	CategoryObject    Category = "object"
	CategoryProcedure Category = "procedure"
	CategoryScreen    Category = "screen"
	CategoryMenu      Category = "menu"
	CategoryVersion   Category = "version"
	CategoryField     Category = "field"
	CategoryMode      Category = "mode"
)

// AllCategories lists every category in extraction order.
var AllCategories = []Category{
	CategoryLink,
	CategoryInclude,
	CategoryDefine,
	CategoryObject,
	CategoryProcedure,
	CategoryScreen,
	CategoryMenu,
	CategoryVersion,
	CategoryField,
	CategoryMode,
}

// EntityCategories are the categories written one file per matched name.
var EntityCategories = []Category{
	CategoryObject,
	CategoryProcedure,
	CategoryScreen,
	CategoryMenu,
}

// IsEntity reports whether c is written one file per entity.
func (c Category) IsEntity() bool {
	for _, e := range EntityCategories {
		if c == e {
			return true
		}
	}
	return false
}

// ManifestEntry records one file written by an extraction run.
type ManifestEntry struct {
	// Category is the category of the rule that wrote the file.
	Category Category `json:"category" yaml:"category"`

	// Name is the entity name as it appears in the source, before
	// sanitizing. Empty for aggregate files.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Path is the file path relative to the output directory, using
	// forward slashes.
	Path string `json:"path" yaml:"path"`
}

// Manifest lists everything an extraction run wrote, in write order.
// It carries no timestamps so identical inputs yield identical manifests.
type Manifest struct {
	Source   string           `json:"source" yaml:"source"`
	Encoding string           `json:"encoding" yaml:"encoding"`
	Entries  []ManifestEntry  `json:"entries" yaml:"entries"`
	Counts   map[Category]int `json:"counts" yaml:"counts"`
}
