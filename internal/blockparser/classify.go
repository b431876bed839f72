package blockparser

import (
	"github.com/yacobolo/cssblocks/internal/block"
	"github.com/yacobolo/cssblocks/internal/blockpath"
	"github.com/yacobolo/cssblocks/internal/cssast"
)

// ClassifiedStyles are the styles a compound selector targets.
type ClassifiedStyles struct {
	AttrValues []*block.AttrValue
	Classes    []*block.BlockClass
}

// Styles returns the attribute values when there are any, otherwise the classes.
func (c ClassifiedStyles) Styles() []block.Style {
	var out []block.Style
	if len(c.AttrValues) > 0 {
		for _, v := range c.AttrValues {
			out = append(out, v)
		}
		return out
	}
	for _, cls := range c.Classes {
		out = append(out, cls)
	}
	return out
}

// Classify resolves the styles of b selected by compound, creating classes
// and states on first use. States are attached to the most recent class of
// the same compound; a state seen before any class is skipped.
func Classify(b *block.Block, compound *cssast.CompoundSelector) ClassifiedStyles {
	var result ClassifiedStyles
	var current *block.BlockClass

	for _, n := range compound.Nodes {
		switch {
		case isRootNode(n):
			current = b.RootClass()
			result.Classes = appendClass(result.Classes, current)
		case n.Kind == cssast.NodeClass:
			current = b.EnsureClass(n.Value)
			result.Classes = appendClass(result.Classes, current)
		case isStateNode(n):
			if current == nil {
				continue
			}
			result.AttrValues = append(result.AttrValues, current.EnsureAttributeValue(attrToken(n)))
		}
	}
	return result
}

func appendClass(classes []*block.BlockClass, c *block.BlockClass) []*block.BlockClass {
	for _, existing := range classes {
		if existing == c {
			return classes
		}
	}
	return append(classes, c)
}

func isRootNode(n *cssast.SelectorNode) bool {
	return n.Kind == cssast.NodePseudo && n.Value == blockpath.RootClass
}

func isStateNode(n *cssast.SelectorNode) bool {
	return n.Kind == cssast.NodeAttribute && n.Namespace == blockpath.StateNamespace
}

// attrToken normalizes an attribute node. Presence selectors get the
// blockpath.AttrPresent value.
func attrToken(n *cssast.SelectorNode) block.AttrToken {
	tok := block.AttrToken{
		Namespace: n.Namespace,
		Name:      n.Attribute,
		Value:     n.AttrValue,
		Quoted:    n.Quoted,
	}
	if n.Operator == "" {
		tok.Value = blockpath.AttrPresent
	}
	return tok
}
