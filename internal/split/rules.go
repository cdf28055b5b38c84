// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package split

import (
	"fmt"
	"path"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/pdiddy/spl-splitter/pkg/types"
)

// Output file and directory names, relative to the output root.
const (
	linksDir      = "links"
	includesDir   = "includes"
	definesDir    = "defines"
	objectsDir    = "objects"
	proceduresDir = "procedures"
	screensDir    = "screens"
	menusDir      = "menus"

	linksFile    = "links/all_links.txt"
	includesFile = "includes/all_includes.txt"
	definesFile  = "defines/all_defines.txt"
	versionFile  = "version.txt"
	globalsFile  = "globals.txt"
)

// outputDirs are created before any rule runs, whether or not anything
// lands in them.
var outputDirs = []string{
	linksDir,
	includesDir,
	definesDir,
	objectsDir,
	proceduresDir,
	screensDir,
	menusDir,
}

// Block patterns need lookahead, so they run on a backtracking engine.
// Lazy bodies stop at the first line where the lookahead succeeds. A
// second header token is only taken from the header line itself.
const (
	linkPattern    = `link\s+['"]([^'"\n]+)['"]`
	includePattern = `#include\s+['"]([^'"\n]+)['"]`
	definePattern  = `#define\s+(\S+)(?:\s+(.+))?`
	objectPattern  = `object\s+(\S+)(?:[^\S\n]+\S+)?\s*\n((?:.+\n)*?)(?=\s*object|\s*(?:procedure|field|mode|screen|menu|end))`
	mainPattern    = `procedure\s+main(?:[^\S\n]+\S+)?\s*\n((?:.+\n)*?)(?=\s*endprocedure)\s*endprocedure`
	versionPattern = `version-number\s+"([^"]+)"`
	fieldPattern   = `field\s+(.*?)\n((?:.+\n)*?)(?=\s*(?:field|procedure|screen|menu|mode))`
	modePattern    = `mode\s+(\S+)((?:.+\n)*?)(?=\s*(?:mode|procedure|screen|menu))`
)

// blockPattern builds the pattern for keyword ... endkeyword blocks. The
// body may not run past another opening keyword.
func blockPattern(keyword string) string {
	return fmt.Sprintf(`%[1]s\s+(\S+)(?:[^\S\n]+\S+)?\s*\n((?:.+\n)*?)(?=\s*(?:%[1]s|end%[1]s))\s*end%[1]s`, keyword)
}

// Rule is one extraction pass: a pattern, how each match is rendered, and
// where the rendering goes.
//
// Aggregate rules (Entity == nil) concatenate every rendering into the file
// at Dest and skip the file when nothing matched, unless Always is set.
// Entity rules write one file per match to Dest/<sanitized name>.txt.
type Rule struct {
	Category types.Category
	Regexp   *regexp2.Regexp

	// Render produces the text written for one match. groups holds the
	// capture groups without the whole match.
	Render func(groups []string) string

	// Entity returns the entity name of a match. Nil for aggregate rules.
	Entity func(groups []string) string

	// Dest is the aggregate file or the entity directory.
	Dest string

	// FirstOnly stops after the first match.
	FirstOnly bool

	// Always writes the aggregate file even with zero matches.
	Always bool

	// Append adds to Dest instead of replacing it.
	Append bool

	// Overwrites marks a rule that may rewrite a file an earlier rule
	// already produced. A match whose file was already written in the same
	// run is not counted a second time.
	Overwrites bool
}

// Output is one file write produced by a rule.
type Output struct {
	Category types.Category
	Name     string
	Path     string
	Content  string
	Matches  int
	Append   bool

	// Overwrites is copied from the rule that produced the output.
	Overwrites bool
}

// Apply runs the rule against text and returns the writes it implies, in
// document order.
func (r Rule) Apply(text string) ([]Output, error) {
	matches, err := r.find(text)
	if err != nil {
		return nil, err
	}

	if r.Entity != nil {
		outs := make([]Output, 0, len(matches))
		for _, g := range matches {
			name := r.Entity(g)
			outs = append(outs, Output{
				Category:   r.Category,
				Name:       name,
				Path:       path.Join(r.Dest, SanitizeName(name)+".txt"),
				Content:    r.Render(g),
				Matches:    1,
				Overwrites: r.Overwrites,
			})
		}
		return outs, nil
	}

	if len(matches) == 0 && !r.Always {
		return nil, nil
	}
	var b strings.Builder
	for _, g := range matches {
		b.WriteString(r.Render(g))
	}
	return []Output{{
		Category: r.Category,
		Path:     r.Dest,
		Content:  b.String(),
		Matches:  len(matches),
		Append:   r.Append,
	}}, nil
}

func (r Rule) find(text string) ([][]string, error) {
	var all [][]string
	m, err := r.Regexp.FindStringMatch(text)
	for err == nil && m != nil {
		groups := m.Groups()
		g := make([]string, len(groups)-1)
		for i := 1; i < len(groups); i++ {
			g[i-1] = groups[i].String()
		}
		all = append(all, g)
		if r.FirstOnly {
			break
		}
		m, err = r.Regexp.FindNextMatch(m)
	}
	if err != nil {
		return nil, fmt.Errorf("matching %s rule: %w", r.Category, err)
	}
	return all, nil
}

// SanitizeName turns an entity name into a file name stem.
func SanitizeName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

func group(i int) func([]string) string {
	return func(g []string) string { return g[i] }
}

func blockRule(category types.Category, keyword, dir string) Rule {
	return Rule{
		Category: category,
		Regexp:   regexp2.MustCompile(blockPattern(keyword), regexp2.Multiline),
		Entity:   group(0),
		Render: func(g []string) string {
			return keyword + " " + g[0] + "\n" + g[1] + "end" + keyword
		},
		Dest: dir,
	}
}

// DefaultRules returns the extraction passes in the order they run. Later
// rules overwrite files written by earlier ones, which is how the dedicated
// main pass replaces the generic procedures/main.txt.
func DefaultRules() []Rule {
	return []Rule{
		{
			Category: types.CategoryLink,
			Regexp:   regexp2.MustCompile(linkPattern, regexp2.None),
			Render:   func(g []string) string { return "link '" + g[0] + "'\n" },
			Dest:     linksFile,
		},
		{
			Category: types.CategoryInclude,
			Regexp:   regexp2.MustCompile(includePattern, regexp2.None),
			Render:   func(g []string) string { return "#include '" + g[0] + "'\n" },
			Dest:     includesFile,
		},
		{
			Category: types.CategoryDefine,
			Regexp:   regexp2.MustCompile(definePattern, regexp2.None),
			Render: func(g []string) string {
				if g[1] != "" {
					return "#define " + g[0] + " " + g[1] + "\n"
				}
				return "#define " + g[0] + "\n"
			},
			Dest: definesFile,
		},
		{
			Category: types.CategoryObject,
			Regexp:   regexp2.MustCompile(objectPattern, regexp2.Multiline),
			Entity:   group(0),
			Render:   func(g []string) string { return "object " + g[0] + "\n" + g[1] },
			Dest:     objectsDir,
		},
		blockRule(types.CategoryProcedure, "procedure", proceduresDir),
		{
			Category:   types.CategoryProcedure,
			Regexp:     regexp2.MustCompile(mainPattern, regexp2.Multiline),
			Entity:     func([]string) string { return "main" },
			Render:     func(g []string) string { return "procedure main\n" + g[0] + "endprocedure" },
			Dest:       proceduresDir,
			FirstOnly:  true,
			Overwrites: true,
		},
		blockRule(types.CategoryScreen, "screen", screensDir),
		blockRule(types.CategoryMenu, "menu", menusDir),
		{
			Category: types.CategoryVersion,
			Regexp:   regexp2.MustCompile(versionPattern, regexp2.None),
			Render:   func(g []string) string { return `version-number "` + g[0] + "\"\n" },
			Dest:     versionFile,
		},
		{
			Category: types.CategoryField,
			Regexp:   regexp2.MustCompile(fieldPattern, regexp2.Multiline),
			Render:   func(g []string) string { return "field " + g[0] + "\n" + g[1] + "\n" },
			Dest:     globalsFile,
			Always:   true,
		},
		{
			Category: types.CategoryMode,
			Regexp:   regexp2.MustCompile(modePattern, regexp2.Multiline),
			Render:   func(g []string) string { return "mode " + g[0] + g[1] + "\n" },
			Dest:     globalsFile,
			Always:   true,
			Append:   true,
		},
	}
}
