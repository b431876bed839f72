package blockparser

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/cssblocks/internal/block"
	"github.com/yacobolo/cssblocks/internal/diag"
)

func TestExtendsAndImplements(t *testing.T) {
	files := map[string]string{
		"base.block.css":  `.foo { color: red; } .bar[state|on] { color: red; }`,
		"iface.block.css": `.foo { color: red; } .baz { color: red; }`,
	}

	t.Run("missing implementation", func(t *testing.T) {
		files["main.block.css"] = `
@block base from "./base.block.css";
@block iface from "./iface.block.css";
:scope { extends: base; implements: iface; }
`
		f, _ := newTestFactory(t, files)
		b, err := f.GetBlock(context.Background(), "main.block.css")
		require.NoError(t, err)

		assert.Equal(t, "base", b.BaseName())
		require.Len(t, b.Implementations(), 1)
		assert.Equal(t, []string{"Missing implementations for: .baz from iface.block.css"}, messages(b))

		inherited, err := b.Lookup(".bar[state|on]")
		require.NoError(t, err)
		require.NotNil(t, inherited)
		assert.Same(t, b.Base(), inherited.Block())
	})

	t.Run("complete implementation", func(t *testing.T) {
		files["main.block.css"] = `
@block base from "./base.block.css";
@block iface from "./iface.block.css";
:scope { extends: base; implements: iface; }
.baz { color: blue; }
`
		f, _ := newTestFactory(t, files)
		b, err := f.GetBlock(context.Background(), "main.block.css")
		require.NoError(t, err)
		assert.Empty(t, messages(b))
	})

	t.Run("errors", func(t *testing.T) {
		files["main.block.css"] = `
@block base from "./base.block.css";
@block iface from "./iface.block.css";
:scope { extends: base; extends: iface; implements: nope; }
:scope { extends: missing; }
`
		f, _ := newTestFactory(t, files)
		b, err := f.GetBlock(context.Background(), "main.block.css")
		require.NoError(t, err)
		assert.Equal(t, []string{
			"A block can only extend one other block: extends: iface",
			`No Block named "nope" found in scope: implements: nope`,
			"A block can only extend one other block: extends: missing",
		}, messages(b))
	})

	t.Run("unknown base", func(t *testing.T) {
		files["main.block.css"] = `:scope { extends: missing; }`
		f, _ := newTestFactory(t, files)
		b, err := f.GetBlock(context.Background(), "main.block.css")
		require.NoError(t, err)
		assert.Equal(t, []string{`No Block named "missing" found in scope: extends: missing`}, messages(b))
	})
}

func TestBlockName(t *testing.T) {
	b, err := parseOne(t, `:scope { block-name: "my-nav"; }`)
	require.NoError(t, err)
	assert.Equal(t, "my-nav", b.Name())

	b, err = parseOne(t, `:scope { block-name: "1nav"; }`)
	require.NoError(t, err)
	assert.Equal(t, "test", b.Name())
	assert.Equal(t, []string{`Illegal block name. "1nav" is not a legal CSS identifier.`}, messages(b))
}

func TestComposes(t *testing.T) {
	f, _ := newTestFactory(t, map[string]string{
		"other.block.css": `.btn { color: red; } .btn[state|primary] { color: blue; }`,
		"main.block.css": `
@block other from "./other.block.css";
.a { composes: other.btn; }
.a[state|big] { composes: "other.btn[state|primary]"; }
:scope .b { composes: other.btn; }
.c { composes: .a; }
.d { composes: other.nope; }
`,
	})
	b, err := f.GetBlock(context.Background(), "main.block.css")
	require.NoError(t, err)

	comps := b.Class("a").Compositions()
	require.Len(t, comps, 2)
	assert.Equal(t, "other.btn", comps[0].Style.String())
	assert.Empty(t, comps[0].Conditions)
	assert.Equal(t, "other.btn[state|primary]", comps[1].Style.String())
	require.Len(t, comps[1].Conditions, 1)
	assert.Equal(t, ".a[state|big]", comps[1].Conditions[0].AsSource())

	assert.Empty(t, b.Class("b").Compositions())
	assert.Equal(t, []string{
		"Style composition is not allowed in rules with scoping selectors: :scope .b",
		"Cannot compose classes from the same block: .a",
		`No style "other.nope" found in scope.`,
	}, messages(b))
}

func TestComposesQuotedAttributeValue(t *testing.T) {
	f, _ := newTestFactory(t, map[string]string{
		"o.block.css": `.b[state|label="two words"] { color: red; }`,
		"main.block.css": `
@block o from "./o.block.css";
.a { composes: o.b[state|label="two words"]; }
.c { composes: 'o.b[state|label="two words"]'; }
`,
	})
	b, err := f.GetBlock(context.Background(), "main.block.css")
	require.NoError(t, err)
	assert.Empty(t, messages(b))

	for _, class := range []string{"a", "c"} {
		comps := b.Class(class).Compositions()
		require.Len(t, comps, 1, class)
		v, ok := comps[0].Style.(*block.AttrValue)
		require.True(t, ok, class)
		assert.Equal(t, "two words", v.Value())
	}
}

func TestComposesBadPath(t *testing.T) {
	f, _ := newTestFactory(t, map[string]string{
		"other.block.css": `.btn { color: red; }`,
		"main.block.css":  "@block other from \"./other.block.css\";\n.a { composes: \"other.btn.x\"; }",
	})
	_, err := f.GetBlock(context.Background(), "main.block.css")
	require.Error(t, err)
	assert.True(t, diag.IsKind(err, diag.KindPath))

	var d *diag.Error
	require.ErrorAs(t, err, &d)
	require.NotNil(t, d.Location)
	assert.Equal(t, 2, d.Location.Start.Line)
}

func TestBlockGlobal(t *testing.T) {
	b, err := parseOne(t, `
@block-global [state|theme=dark];
@block-global [state|compact];
@block-global .a;
@block-global :scope [state|x];
`)
	require.NoError(t, err)

	globals := b.GlobalAttributeValues()
	require.Len(t, globals, 2)
	assert.Equal(t, "[state|theme=dark]", globals[0].AsSource())
	assert.Equal(t, "[state|compact]", globals[1].AsSource())

	assert.Equal(t, []string{
		"Illegal global state declaration: `@block-global .a`",
		"Illegal global state declaration: `@block-global :scope [state|x]`",
	}, messages(b))
}

func TestBlockAlias(t *testing.T) {
	b, err := parseOne(t, `.a, .b[state|on] { block-alias: legacy "old-a" 9bad; }`)
	require.NoError(t, err)

	assert.Equal(t, []string{"legacy", "old-a"}, b.Class("a").Aliases())
	on := b.Class("b").AttributeValues()[0]
	assert.Equal(t, []string{"legacy", "old-a"}, on.Aliases())
	assert.Empty(t, b.Class("b").Aliases())
	assert.Equal(t, []string{`Illegal block-alias. "9bad" is not a legal CSS identifier.`}, messages(b))
}

const navDefinition = `
:scope { block-name: nav; block-id: "abc123"; block-class: nav-root; }
:scope[state|open] { block-class: nav--open; }
.item { block-class: nav-item; block-interface-index: 1; }
.item[state|on] { block-class: nav-item--on; block-interface-index: 2; }
`

func TestDefinitionFile(t *testing.T) {
	f, _ := newTestFactory(t, map[string]string{"nav.block.d.css": navDefinition})
	b, err := f.GetBlock(context.Background(), "nav.block.d.css")
	require.NoError(t, err)
	assert.Empty(t, messages(b))

	assert.True(t, b.IsDefinition())
	assert.Equal(t, "nav", b.Name())
	assert.Equal(t, "abc123", b.GUID())

	preset, ok := b.RootClass().PresetClass()
	require.True(t, ok)
	assert.Equal(t, "nav-root", preset)

	on := b.Class("item").AttributeValues()[0]
	preset, _ = on.PresetClass()
	assert.Equal(t, "nav-item--on", preset)
	idx, ok := on.InterfaceIndex()
	require.True(t, ok)
	assert.Equal(t, 2, idx)
}

func TestDefinitionFileErrors(t *testing.T) {
	f, _ := newTestFactory(t, map[string]string{"nav.block.d.css": `
:scope { block-class: nav-root; }
.item { color: red; }
.other { block-class: "not a class"; block-interface-index: -1; }
`})
	b, err := f.GetBlock(context.Background(), "nav.block.d.css")
	require.NoError(t, err)

	assert.Equal(t, []string{
		`Rule ".item" in a definition file must declare a block-class.`,
		`Illegal block-class. "not a class" is not a legal CSS class name.`,
		`Illegal block-interface-index. "-1" is not a non-negative integer.`,
		"Definition files must declare a block-name on :scope.",
		"Definition files must declare a block-id on :scope.",
		"No block-class declared for .item. The definition file is incomplete.",
		"No block-class declared for .other. The definition file is incomplete.",
	}, messages(b))
	for _, e := range b.Errors() {
		assert.Equal(t, diag.KindDefinition, e.Kind)
	}
}

func TestDefinitionExpectations(t *testing.T) {
	tests := []struct {
		name     string
		expected Expectation
		wantErr  string
	}{
		{name: "matching", expected: Expectation{ID: "abc123", Name: "nav"}},
		{name: "id only", expected: Expectation{ID: "abc123"}},
		{name: "stale id", expected: Expectation{ID: "zzz"}, wantErr: `Expected block-id "zzz" but the definition file declares "abc123".`},
		{name: "stale name", expected: Expectation{Name: "menu"}, wantErr: `Expected block-name "menu" but the definition file declares "nav".`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newTestFactory(t, map[string]string{"nav.block.d.css": navDefinition},
				WithExpectations(map[string]Expectation{"nav.block.d.css": tt.expected}))
			_, err := f.GetBlock(context.Background(), "nav.block.d.css")
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, diag.IsKind(err, diag.KindDefinition))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPinningOutsideDefinition(t *testing.T) {
	tests := []string{
		`:scope { block-id: abc; }`,
		`.a { block-id: abc; color: red; }`,
		`.a { block-class: a; }`,
		`.a { block-interface-index: 1; }`,
	}
	for _, css := range tests {
		t.Run(css, func(t *testing.T) {
			_, err := parseOne(t, css)
			require.Error(t, err)
			assert.True(t, diag.IsKind(err, diag.KindDefinition))
			assert.Contains(t, err.Error(), "is only allowed in definition files.")
		})
	}
}

func TestBlockIDOutsideScope(t *testing.T) {
	f, _ := newTestFactory(t, map[string]string{"nav.block.d.css": `
:scope { block-name: nav; block-id: abc; block-class: nav-root; }
.item { block-class: nav-item; block-id: def; }
`})
	_, err := f.GetBlock(context.Background(), "nav.block.d.css")
	require.Error(t, err)
	assert.True(t, diag.IsKind(err, diag.KindDefinition))
	assert.Contains(t, err.Error(), `The "block-id" declaration is only allowed in the :scope rule.`)

	var d *diag.Error
	require.ErrorAs(t, err, &d)
	require.NotNil(t, d.Location)
	assert.Equal(t, 3, d.Location.Start.Line)
}

func TestBlockDebug(t *testing.T) {
	var stdout, stderr bytes.Buffer
	f, _ := newTestFactory(t, map[string]string{
		"nav.block.css": `.link { color: red; }`,
		"main.block.css": `
@block nav from "./nav.block.css";
@block-debug self to comment;
@block-debug nav to stdout;
@block-debug nav to stderr;
@block-debug nope to stdout;
@block-debug self to file;
.a { color: red; }
`,
	}, WithDebugOutput(&stdout, &stderr))
	b, err := f.GetBlock(context.Background(), "main.block.css")
	require.NoError(t, err)

	comments := b.DebugComments()
	require.NotEmpty(t, comments)
	assert.Equal(t, "Source: main.block.css", comments[0])
	assert.Contains(t, comments, ".a")

	assert.Equal(t, "Source: nav.block.css\n:scope\n.link\n", stdout.String())
	assert.Equal(t, stdout.String(), stderr.String())

	assert.Equal(t, []string{
		`Invalid block debug: No Block named "nope" found in scope.`,
		"Malformed block debug: `@block-debug self to file`",
	}, messages(b))
}

func TestRulesetsAreAttached(t *testing.T) {
	b, err := parseOne(t, `
.a { color: red; }
@media (min-width: 100px) { .a { color: blue; } }
@keyframes spin { from { opacity: 0; } }
`)
	require.NoError(t, err)
	assert.Empty(t, messages(b))

	rulesets := b.Class("a").Rulesets()
	require.Len(t, rulesets, 2)
	assert.Equal(t, []block.Declaration{{Property: "color", Value: "blue"}}, rulesets[1].Declarations)
	assert.Equal(t, 3, rulesets[1].Location.Start.Line)
	assert.Len(t, b.Classes(), 2)
}
