package blockparser

import (
	"context"

	"github.com/yacobolo/cssblocks/internal/block"
	"github.com/yacobolo/cssblocks/internal/blockpath"
	"github.com/yacobolo/cssblocks/internal/diag"
)

// processComposes attaches the styles named by composes declarations to
// the classes the rule targets.
func (p *fileParser) processComposes(context.Context) error {
	for _, rec := range p.rules {
		for _, d := range rec.rule.Declarations {
			if d.Property != propComposes {
				continue
			}
			if rec.scoped {
				p.record(diag.Syntax(p.rangeOf(d), "Style composition is not allowed in rules with scoping selectors: %s", rec.rule.Selector))
				continue
			}
			for _, name := range parseNames(d.Value) {
				loc := p.locate(d.ValueOffset, d.End, name)
				path, err := blockpath.Parse(name, loc)
				if err != nil {
					return err
				}
				if path.Block() == "" {
					p.record(diag.Syntax(loc, "Cannot compose classes from the same block: %s", name))
					continue
				}
				style := p.block.LookupPath(path)
				if style == nil {
					p.record(diag.Syntax(loc, "No style %q found in scope.", name))
					continue
				}
				if style.Block() == p.block {
					p.record(diag.Syntax(loc, "Cannot compose classes from the same block: %s", name))
					continue
				}
				for _, cls := range rec.classes {
					cls.AddComposition(style, conditionsOf(cls, rec.attrValues))
				}
			}
		}
	}
	return nil
}

func conditionsOf(cls *block.BlockClass, values []*block.AttrValue) []*block.AttrValue {
	var out []*block.AttrValue
	for _, v := range values {
		if v.Class() == cls {
			out = append(out, v)
		}
	}
	return out
}
