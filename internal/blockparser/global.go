package blockparser

import (
	"context"

	"github.com/yacobolo/cssblocks/internal/cssast"
	"github.com/yacobolo/cssblocks/internal/diag"
)

// processGlobals marks the states named by @block-global as selectable from
// other Blocks. Only a bare state selector is accepted.
func (p *fileParser) processGlobals(context.Context) error {
	for _, at := range p.sheet.AtRules(atBlockGlobal) {
		node := bareState(at)
		if node == nil {
			p.record(diag.Syntax(p.rangeOf(at), "Illegal global state declaration: `%s`", at))
			continue
		}
		v := p.block.RootClass().EnsureAttributeValue(attrToken(node))
		v.Attribute().SetGlobal()
	}
	return nil
}

func bareState(at *cssast.AtRule) *cssast.SelectorNode {
	list, err := cssast.ParseSelectors(at.Params, at.ParamsOffset)
	if err != nil || len(list) != 1 {
		return nil
	}
	sel := list[0]
	if sel.Selector != sel.Key || len(sel.Key.Nodes) != 1 {
		return nil
	}
	n := sel.Key.Nodes[0]
	if !isStateNode(n) || n.Attribute == "scope" || (n.Operator != "" && n.Operator != "=") {
		return nil
	}
	return n
}
