// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package split

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/spl-splitter/pkg/types"
)

// ruleFor returns the first default rule for category.
func ruleFor(t *testing.T, category types.Category) Rule {
	t.Helper()
	for _, r := range DefaultRules() {
		if r.Category == category {
			return r
		}
	}
	t.Fatalf("no rule for category %s", category)
	return Rule{}
}

// contents maps output path to content, later writes replacing earlier ones.
func contents(outs []Output) map[string]string {
	m := make(map[string]string, len(outs))
	for _, o := range outs {
		m[o.Path] = o.Content
	}
	return m
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Customer", "Customer"},
		{"foo-bar", "foo_bar"},
		{"a-b-c", "a_b_c"},
		{"already_clean", "already_clean"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeName(tt.name))
		})
	}
}

func TestRuleOrder(t *testing.T) {
	var got []types.Category
	for _, r := range DefaultRules() {
		got = append(got, r.Category)
	}
	want := []types.Category{
		types.CategoryLink,
		types.CategoryInclude,
		types.CategoryDefine,
		types.CategoryObject,
		types.CategoryProcedure,
		types.CategoryProcedure,
		types.CategoryScreen,
		types.CategoryMenu,
		types.CategoryVersion,
		types.CategoryField,
		types.CategoryMode,
	}
	assert.Equal(t, want, got)
}

func TestLinkRule(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		none bool
	}{
		{
			name: "single and double quotes in source order",
			text: "link 'first.lib'\nlink \"second.lib\"\n",
			want: "link 'first.lib'\nlink 'second.lib'\n",
		},
		{
			name: "url value",
			text: "link 'http://example.com'\n",
			want: "link 'http://example.com'\n",
		},
		{
			name: "quoted value may not span lines",
			text: "link 'broken\nvalue'\n",
			none: true,
		},
		{
			name: "no links",
			text: "object X\nend\n",
			none: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outs, err := ruleFor(t, types.CategoryLink).Apply(tt.text)
			require.NoError(t, err)
			if tt.none {
				assert.Empty(t, outs)
				return
			}
			require.Len(t, outs, 1)
			assert.Equal(t, linksFile, outs[0].Path)
			assert.Equal(t, tt.want, outs[0].Content)
		})
	}
}

func TestIncludeRule(t *testing.T) {
	outs, err := ruleFor(t, types.CategoryInclude).Apply("#include 'std.h'\n#include \"extra.h\"\n")
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, includesFile, outs[0].Path)
	assert.Equal(t, "#include 'std.h'\n#include 'extra.h'\n", outs[0].Content)
	assert.Equal(t, 2, outs[0].Matches)
}

func TestDefineRule(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "name and value",
			text: "#define MAXLEN 80\n",
			want: "#define MAXLEN 80\n",
		},
		{
			name: "value keeps inner spaces",
			text: "#define NAME value with spaces\n",
			want: "#define NAME value with spaces\n",
		},
		{
			name: "bare name at end of file",
			text: "#define DEBUG",
			want: "#define DEBUG\n",
		},
		{
			// Whitespace after the name may include a newline, so the next
			// line becomes the value.
			name: "bare name followed by another line",
			text: "#define FLAG\nnext line\n",
			want: "#define FLAG next line\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outs, err := ruleFor(t, types.CategoryDefine).Apply(tt.text)
			require.NoError(t, err)
			require.Len(t, outs, 1)
			assert.Equal(t, definesFile, outs[0].Path)
			assert.Equal(t, tt.want, outs[0].Content)
		})
	}
}

func TestObjectRule(t *testing.T) {
	text := "object foo-bar string\n" +
		"  label \"x\"\n" +
		"  size 10\n" +
		"end\n" +
		"object Order\n" +
		"  qty 1\n" +
		"endobject\n"

	outs, err := ruleFor(t, types.CategoryObject).Apply(text)
	require.NoError(t, err)
	require.Len(t, outs, 2)

	assert.Equal(t, "foo-bar", outs[0].Name)
	assert.Equal(t, "objects/foo_bar.txt", outs[0].Path)
	assert.Equal(t, "object foo-bar\n  label \"x\"\n  size 10\n", outs[0].Content)

	assert.Equal(t, "Order", outs[1].Name)
	assert.Equal(t, "objects/Order.txt", outs[1].Path)
	assert.Equal(t, "object Order\n  qty 1\n", outs[1].Content)
}

func TestObjectRuleStopsAtField(t *testing.T) {
	outs, err := ruleFor(t, types.CategoryObject).Apply("object Customer\nfield name\nprocedure main\n")
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, "object Customer\n", outs[0].Content)
}

func TestObjectRuleMisboundsAfterEndobject(t *testing.T) {
	// "endobject" contains "object", so the next screen header is read as
	// an object named "screen". Kept as-is.
	text := "object Order\n  qty 1\nendobject\nscreen cust-edit\n  display name\nendscreen\n"

	outs, err := ruleFor(t, types.CategoryObject).Apply(text)
	require.NoError(t, err)
	got := contents(outs)
	assert.Equal(t, "object screen\n  display name\n", got["objects/screen.txt"])
}

func TestProcedureRule(t *testing.T) {
	text := "procedure load-customer\n" +
		"  read customer\n" +
		"  display customer\n" +
		"endprocedure\n" +
		"procedure empty\n" +
		"endprocedure\n"

	outs, err := ruleFor(t, types.CategoryProcedure).Apply(text)
	require.NoError(t, err)
	require.Len(t, outs, 2)

	assert.Equal(t, "procedures/load_customer.txt", outs[0].Path)
	assert.Equal(t, "procedure load-customer\n  read customer\n  display customer\nendprocedure", outs[0].Content)

	assert.Equal(t, "procedures/empty.txt", outs[1].Path)
	assert.Equal(t, "procedure empty\nendprocedure", outs[1].Content)
}

func TestProcedureRuleSecondHeaderTokenIgnored(t *testing.T) {
	outs, err := ruleFor(t, types.CategoryProcedure).Apply("procedure main returns\ndo-something\nendprocedure\n")
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, "main", outs[0].Name)
	assert.Equal(t, "procedure main\ndo-something\nendprocedure", outs[0].Content)
}

func TestMainRuleTakesFirstMain(t *testing.T) {
	text := "procedure main\n  first\nendprocedure\nprocedure main\n  second\nendprocedure\n"

	rules := DefaultRules()
	var main Rule
	for _, r := range rules {
		if r.Overwrites {
			main = r
		}
	}
	require.NotNil(t, main.Regexp)

	outs, err := main.Apply(text)
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, "procedures/main.txt", outs[0].Path)
	assert.Equal(t, "procedure main\n  first\nendprocedure", outs[0].Content)
	assert.Equal(t, 1, outs[0].Matches)
	assert.True(t, outs[0].Overwrites)
}

func TestScreenAndMenuRules(t *testing.T) {
	text := "screen cust-edit\n  display name\nendscreen\nmenu main-menu\n  option 1\nendmenu\n"

	outs, err := ruleFor(t, types.CategoryScreen).Apply(text)
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, "screens/cust_edit.txt", outs[0].Path)
	assert.Equal(t, "screen cust-edit\n  display name\nendscreen", outs[0].Content)

	outs, err = ruleFor(t, types.CategoryMenu).Apply(text)
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, "menus/main_menu.txt", outs[0].Path)
	assert.Equal(t, "menu main-menu\n  option 1\nendmenu", outs[0].Content)
}

func TestVersionRule(t *testing.T) {
	outs, err := ruleFor(t, types.CategoryVersion).Apply("version-number \"1.2\"\nversion-number \"1.3\"\n")
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, versionFile, outs[0].Path)
	assert.Equal(t, "version-number \"1.2\"\nversion-number \"1.3\"\n", outs[0].Content)
}

func TestGlobalsRules(t *testing.T) {
	text := "field a\n" +
		"  len 10\n" +
		"field b\n" +
		"  len 20\n" +
		"mode edit\n" +
		"  allow\n" +
		"procedure p\n" +
		"endprocedure\n"

	fields, err := ruleFor(t, types.CategoryField).Apply(text)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, globalsFile, fields[0].Path)
	assert.False(t, fields[0].Append)
	assert.Equal(t, 2, fields[0].Matches)
	assert.Equal(t, "field a\n  len 10\n\nfield b\n  len 20\n\n", fields[0].Content)

	modes, err := ruleFor(t, types.CategoryMode).Apply(text)
	require.NoError(t, err)
	require.Len(t, modes, 1)
	assert.True(t, modes[0].Append)
	assert.Equal(t, "mode edit\n  allow\n\n", modes[0].Content)
}

func TestGlobalsRulesAlwaysWrite(t *testing.T) {
	for _, c := range []types.Category{types.CategoryField, types.CategoryMode} {
		outs, err := ruleFor(t, c).Apply("link 'x'\n")
		require.NoError(t, err)
		require.Len(t, outs, 1, "category %s", c)
		assert.Empty(t, outs[0].Content)
		assert.Zero(t, outs[0].Matches)
	}
}
