package blockparser

import (
	"context"
	"strings"

	"github.com/yacobolo/cssblocks/internal/blockpath"
	"github.com/yacobolo/cssblocks/internal/cssast"
	"github.com/yacobolo/cssblocks/internal/diag"
)

// rootRules returns the rules whose whole selector is the root class.
func (p *fileParser) rootRules() []*cssast.Rule {
	var out []*cssast.Rule
	for _, r := range p.sheet.Rules() {
		if isRootRule(r) {
			out = append(out, r)
		}
	}
	return out
}

func isRootRule(r *cssast.Rule) bool {
	return strings.TrimSpace(r.Selector) == blockpath.RootClass
}

func (p *fileParser) valueLocation(d *cssast.Declaration) *diag.Location {
	return p.source.Range(d.ValueOffset, d.End)
}

// processRootDeclarations handles the Block level declarations of :scope
// rules: block-name, block-id, extends and implements.
func (p *fileParser) processRootDeclarations(context.Context) error {
	for _, rule := range p.rootRules() {
		for _, d := range rule.Declarations {
			switch d.Property {
			case propBlockName:
				name := unquote(d.Value)
				if !blockpath.IsIdent(name) {
					p.record(diag.Syntax(p.valueLocation(d), "Illegal block name. %q is not a legal CSS identifier.", name))
					continue
				}
				p.block.SetName(name)
				p.declaredName = name

			case propBlockID:
				if !p.block.IsDefinition() {
					return p.pinningOutsideDefinition(d)
				}
				id := unquote(d.Value)
				if id == "" {
					p.record(diag.Definition(p.valueLocation(d), "block-id must not be empty."))
					continue
				}
				p.block.SetGUID(id)
				p.declaredID = id

			case propExtends:
				name := unquote(d.Value)
				if p.block.Base() != nil {
					p.record(diag.Syntax(p.valueLocation(d), "A block can only extend one other block: %s", d))
					continue
				}
				base := p.block.Reference(name)
				if base == nil {
					p.record(diag.Syntax(p.valueLocation(d), "No Block named %q found in scope: %s", name, d))
					continue
				}
				if err := p.block.SetBase(name, base); err != nil {
					p.record(diag.Syntax(p.valueLocation(d), "A block can only extend one other block: %s", d))
				}

			case propImplements:
				for _, name := range parseNames(d.Value) {
					loc := p.locate(d.ValueOffset, d.End, name)
					other := p.block.Reference(name)
					if other == nil {
						p.record(diag.Syntax(loc, "No Block named %q found in scope: %s", name, d))
						continue
					}
					if err := p.block.AddImplementation(other); err != nil {
						p.record(diag.Syntax(loc, "Block %q is already implemented: %s", name, d))
						continue
					}
					p.implementsAt[other] = loc
				}
			}
		}
	}
	return p.checkExpectations()
}

// pinningOutsideDefinition is the error for block-id, block-class and
// block-interface-index in an ordinary Block file.
func (p *fileParser) pinningOutsideDefinition(d *cssast.Declaration) error {
	return diag.Definition(p.rangeOf(d), "The %q declaration is only allowed in definition files.", d.Property)
}

// checkImplementations verifies that every implemented interface is covered
// by this Block's own or inherited styles.
func (p *fileParser) checkImplementations(context.Context) error {
	for _, other := range p.block.Implementations() {
		missing := p.block.MissingImplementations(other)
		if len(missing) == 0 {
			continue
		}
		loc := p.implementsAt[other]
		if loc == nil {
			loc = p.source.FileLocation()
		}
		p.record(diag.Syntax(loc, "Missing implementations for: %s from %s",
			strings.Join(missing, ", "), p.factory.importer.DebugIdentifier(other.Identifier())))
	}
	return nil
}
