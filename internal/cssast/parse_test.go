package cssast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	src := `@block nav from "./nav.block.css";
/* root */
:scope {
  block-name: my-block;
  extends: nav;
}
.item, .item[state|active] { color: red; composes: "nav.link" }
@media (min-width: 10px) {
  .item { color: blue; }
}
@keyframes pulse {
  from { opacity: 0; }
}
`
	sheet, err := Parse("test.block.css", src)
	require.NoError(t, err)

	blocks := sheet.AtRules("block")
	require.Len(t, blocks, 1)
	assert.Equal(t, `nav from "./nav.block.css"`, blocks[0].Params)
	assert.Equal(t, 0, blocks[0].Start)
	assert.Equal(t, len("@block "), blocks[0].ParamsOffset)
	assert.False(t, blocks[0].HasBlock)

	rules := sheet.Rules()
	require.Len(t, rules, 3)

	root := rules[0]
	assert.Equal(t, ":scope", root.Selector)
	assert.Equal(t, src[root.SelectorOffset:root.SelectorOffset+len(":scope")], ":scope")
	require.Len(t, root.Declarations, 2)
	assert.Equal(t, "block-name", root.Declarations[0].Property)
	assert.Equal(t, "my-block", root.Declarations[0].Value)
	assert.Equal(t, "my-block", src[root.Declarations[0].ValueOffset:root.Declarations[0].ValueOffset+len("my-block")])
	assert.Equal(t, "nav", root.Declaration("extends").Value)
	assert.Nil(t, root.Declaration("implements"))

	item := rules[1]
	assert.Equal(t, ".item, .item[state|active]", item.Selector)
	assert.Equal(t, `"nav.link"`, item.Declaration("composes").Value)
	assert.Nil(t, item.Parent)

	nested := rules[2]
	require.NotNil(t, nested.Parent)
	assert.Equal(t, "media", nested.Parent.Name)
	assert.Equal(t, "(min-width: 10px)", nested.Parent.Params)
}

func TestParseDeclarationSpan(t *testing.T) {
	src := ".a { block-class: foo; }"
	sheet, err := Parse("a.css", src)
	require.NoError(t, err)

	rules := sheet.Rules()
	require.Len(t, rules, 1)
	decl := rules[0].Declarations[0]
	start, end := decl.Span()
	assert.Equal(t, "block-class: foo", src[start:end])
	assert.Equal(t, "block-class: foo", decl.String())
}

func TestParseDeclarationValueKeepsSpacing(t *testing.T) {
	src := ".a { color: blue !important; margin:0 auto ; font: 12px/1.5 \"a b\", serif }"
	sheet, err := Parse("a.css", src)
	require.NoError(t, err)

	decls := sheet.Rules()[0].Declarations
	require.Len(t, decls, 3)
	assert.Equal(t, "blue !important", decls[0].Value)
	assert.Equal(t, "0 auto", decls[1].Value)
	assert.Equal(t, `12px/1.5 "a b", serif`, decls[2].Value)
}
