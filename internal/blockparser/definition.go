package blockparser

import (
	"context"

	"github.com/yacobolo/cssblocks/internal/diag"
)

// checkExpectations compares a definition file's declared name and id
// with what the build expects. A mismatch means the definition is stale.
func (p *fileParser) checkExpectations() error {
	if !p.block.IsDefinition() {
		return nil
	}
	exp := p.factory.expectation(p.file)
	if exp == nil {
		return nil
	}
	loc := p.source.FileLocation()
	if exp.ID != "" && p.declaredID != "" && exp.ID != p.declaredID {
		return diag.Definition(loc, "Expected block-id %q but the definition file declares %q. The definition file is out of date.",
			exp.ID, p.declaredID)
	}
	if exp.Name != "" && p.declaredName != "" && exp.Name != p.declaredName {
		return diag.Definition(loc, "Expected block-name %q but the definition file declares %q. The definition file is out of date.",
			exp.Name, p.declaredName)
	}
	return nil
}

// checkDefinition verifies that a definition file pins every style it
// declares.
func (p *fileParser) checkDefinition(context.Context) error {
	if !p.block.IsDefinition() {
		return nil
	}
	loc := p.source.FileLocation()
	if p.declaredName == "" {
		p.record(diag.Definition(loc, "Definition files must declare a block-name on %s.", ":scope"))
	}
	if p.declaredID == "" {
		p.record(diag.Definition(loc, "Definition files must declare a block-id on %s.", ":scope"))
	}
	for _, s := range p.block.Styles() {
		if _, ok := s.PresetClass(); !ok {
			p.record(diag.Definition(loc, "No block-class declared for %s. The definition file is incomplete.", s.AsSource()))
		}
	}
	return nil
}
