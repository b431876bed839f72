package blockparser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/cssblocks/internal/diag"
)

func TestImports(t *testing.T) {
	f, _ := newTestFactory(t, map[string]string{
		"nav.block.css":  `@block icon from "./icon.block.css"; @export icon; .link { color: red; }`,
		"icon.block.css": `.glyph { color: red; }`,
		"main.block.css": `
@block nav from "./nav.block.css";
@block (default as navigation, icon) from "./nav.block.css";
`,
	})
	b, err := f.GetBlock(context.Background(), "main.block.css")
	require.NoError(t, err)
	assert.Empty(t, messages(b))

	assert.Equal(t, []string{"icon", "nav", "navigation"}, b.References())
	assert.Same(t, b.Reference("nav"), b.Reference("navigation"))
	assert.Equal(t, "icon.block.css", b.Reference("icon").Identifier())
	assert.Equal(t, "./nav.block.css", b.ReferencePath("nav"))

	style, err := b.Lookup("icon.glyph")
	require.NoError(t, err)
	require.NotNil(t, style)
	assert.Equal(t, "icon.glyph", style.String())
}

func TestImportErrors(t *testing.T) {
	tests := []struct {
		name string
		css  string
		want string
	}{
		{
			name: "duplicate local name",
			css:  `@block a from "./a.block.css"; @block a from "./b.block.css";`,
			want: `Blocks "./a.block.css" and "./b.block.css" cannot both have the name "a" in this scope.`,
		},
		{
			name: "reserved name",
			css:  `@block (default as html) from "./a.block.css";`,
			want: `Cannot import "default" as reserved word "html"`,
		},
		{
			name: "redundant default alias",
			css:  `@block (default as default) from "./a.block.css";`,
			want: "Unnecessary re-aliasing of \"default\" to \"default\" in `@block (default as default) from \"./a.block.css\"`.",
		},
		{
			name: "missing export",
			css:  `@block (nope as n) from "./a.block.css";`,
			want: `Cannot import "nope" from "./a.block.css": no block is exported with that name.`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newTestFactory(t, map[string]string{
				"a.block.css":    ".a { color: red; }",
				"b.block.css":    ".b { color: red; }",
				"main.block.css": tt.css,
			})
			b, err := f.GetBlock(context.Background(), "main.block.css")
			require.NoError(t, err)
			assert.Contains(t, messages(b), tt.want)
		})
	}
}

func TestMalformedImports(t *testing.T) {
	tests := []struct {
		name string
		css  string
		want string
	}{
		{name: "missing from", css: `@block a "./a.block.css";`, want: "Malformed block reference"},
		{name: "bad alias", css: `@block (a to b) from "./a.block.css";`, want: "Malformed block reference"},
		{name: "illegal identifier", css: `@block 1a from "./a.block.css";`, want: "Illegal block name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newTestFactory(t, map[string]string{
				"a.block.css":    ".a { color: red; }",
				"main.block.css": tt.css,
			})
			_, err := f.GetBlock(context.Background(), "main.block.css")
			require.Error(t, err)
			assert.True(t, diag.IsKind(err, diag.KindSyntax))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestImportCascadesThrownErrors(t *testing.T) {
	f, _ := newTestFactory(t, map[string]string{
		"broken.block.css": ".a[state|scope] { color: red; }",
		"mid.block.css":    `@block broken from "./broken.block.css";`,
		"main.block.css":   `@block mid from "./mid.block.css";`,
	})
	_, err := f.GetBlock(context.Background(), "main.block.css")
	require.Error(t, err)

	var d *diag.Error
	require.ErrorAs(t, err, &d)
	assert.Equal(t, diag.KindCascading, d.Kind)
	assert.Equal(t, "main.block.css", d.Location.Filename)

	chain := diag.Chain(err)
	require.Len(t, chain, 3)
	root := diag.RootCause(err)
	var cause *diag.Error
	require.ErrorAs(t, root, &cause)
	assert.Equal(t, diag.KindSyntax, cause.Kind)
	assert.Equal(t, "broken.block.css", cause.Location.Filename)
}

func TestImportMissingFile(t *testing.T) {
	f, _ := newTestFactory(t, map[string]string{
		"main.block.css": `@block gone from "./gone.block.css";`,
	})
	_, err := f.GetBlock(context.Background(), "main.block.css")
	require.Error(t, err)
	assert.True(t, diag.IsKind(err, diag.KindCascading))
	assert.Contains(t, err.Error(), "Error in imported block.")
}

func TestImportsParseEachFileOnce(t *testing.T) {
	f, imp := newTestFactory(t, map[string]string{
		"shared.block.css":    ".s { color: red; }",
		"sub/left.block.css":  `@block shared from "../shared.block.css";`,
		"sub/right.block.css": `@block shared from "./../shared.block.css";`,
		"main.block.css": `
@block left from "./sub/left.block.css";
@block right from "./sub/right.block.css";
@block (default as s1) from "./shared.block.css";
@block (default as s2) from "./sub/../shared.block.css";
`,
	})
	b, err := f.GetBlock(context.Background(), "main.block.css")
	require.NoError(t, err)
	assert.Empty(t, messages(b))

	assert.Equal(t, 1, imp.count("shared.block.css"))
	assert.Same(t, b.Reference("s1"), b.Reference("s2"))
	assert.Same(t, b.Reference("s1"), b.Reference("left").Reference("shared"))
	assert.Equal(t, 4, f.Parses())
}

func TestExports(t *testing.T) {
	f, _ := newTestFactory(t, map[string]string{
		"nav.block.css": ".link { color: red; }",
		"main.block.css": `
@block nav from "./nav.block.css";
@export nav;
@export (nav as navigation, default as self);
@export (default as reexported) from "./nav.block.css";
`,
	})
	b, err := f.GetBlock(context.Background(), "main.block.css")
	require.NoError(t, err)
	assert.Empty(t, messages(b))

	assert.Equal(t, []string{"default", "nav", "navigation", "reexported", "self"}, b.Exports())
	assert.Same(t, b, b.Export("self"))
	assert.Same(t, b.Reference("nav"), b.Export("reexported"))
}

func TestExportErrors(t *testing.T) {
	tests := []struct {
		name string
		css  string
		want string
	}{
		{
			name: "duplicate in one export",
			css:  `@export (nav as x, nav as x);`,
			want: `Cannot have duplicate Block export of same name: "x".`,
		},
		{
			name: "reserved",
			css:  `@export (nav as svg);`,
			want: `Cannot export "nav" as reserved word "svg"`,
		},
		{
			name: "redundant",
			css:  `@export (default as default);`,
			want: "Unnecessary re-aliasing of \"default\" to \"default\" in `@export (default as default)`.",
		},
		{
			name: "unknown",
			css:  `@export nope;`,
			want: `Cannot export Block "nope": no Block with that name is in scope.`,
		},
		{
			name: "exported twice",
			css:  `@export nav; @export nav;`,
			want: `Block "nav" has already been exported.`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newTestFactory(t, map[string]string{
				"nav.block.css":  ".link { color: red; }",
				"main.block.css": `@block nav from "./nav.block.css";` + "\n" + tt.css,
			})
			b, err := f.GetBlock(context.Background(), "main.block.css")
			require.NoError(t, err)
			assert.Contains(t, messages(b), tt.want)
		})
	}
}
