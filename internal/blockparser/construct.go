package blockparser

import (
	"context"
	"errors"
	"strconv"

	"github.com/yacobolo/cssblocks/internal/block"
	"github.com/yacobolo/cssblocks/internal/blockpath"
	"github.com/yacobolo/cssblocks/internal/cssast"
	"github.com/yacobolo/cssblocks/internal/diag"
)

// construct validates every rule, creates the styles its key selectors
// target and applies the rule's style level declarations.
func (p *fileParser) construct(context.Context) error {
	for _, rule := range p.sheet.Rules() {
		rec, err := p.constructRule(rule)
		if err != nil {
			return err
		}
		p.rules = append(p.rules, rec)
	}
	return nil
}

func (p *fileParser) constructRule(rule *cssast.Rule) (*ruleRecord, error) {
	selectors, err := cssast.ParseSelectors(rule.Selector, rule.SelectorOffset)
	if err != nil {
		var perr *cssast.ParseError
		if errors.As(err, &perr) {
			return nil, diag.Syntax(p.source.Range(perr.Offset, perr.Offset), "Invalid selector %q: %v", rule.Selector, perr.Err)
		}
		return nil, diag.Syntax(p.rangeOf(rule), "Invalid selector %q: %v", rule.Selector, err)
	}

	rec := &ruleRecord{rule: rule, selectors: selectors}
	for _, sel := range selectors {
		if sel.Selector != sel.Key {
			rec.scoped = true
		}
		key, err := p.assertValidSelector(sel)
		if err != nil {
			return nil, err
		}
		classified := p.keyStyles(key, sel.Key)
		rec.classes = append(rec.classes, classified.Classes...)
		rec.attrValues = append(rec.attrValues, classified.AttrValues...)
		for _, s := range classified.Styles() {
			rec.addStyle(s)
		}
	}

	ruleset := block.Ruleset{Selector: rule.Selector, Location: p.rangeOf(rule)}
	for _, d := range rule.Declarations {
		ruleset.Declarations = append(ruleset.Declarations, block.Declaration{Property: d.Property, Value: d.Value})
	}
	for _, s := range rec.styles {
		s.AddRuleset(ruleset)
	}

	if err := p.styleDeclarations(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *ruleRecord) addStyle(s block.Style) {
	for _, existing := range r.styles {
		if existing == s {
			return
		}
	}
	r.styles = append(r.styles, s)
}

// styleDeclarations applies block-class, block-interface-index and
// block-alias to the styles of a rule. block-id is only checked here; the
// root rules apply it.
func (p *fileParser) styleDeclarations(rec *ruleRecord) error {
	hasClass := false
	for _, d := range rec.rule.Declarations {
		switch d.Property {
		case propBlockID:
			if !p.block.IsDefinition() {
				return p.pinningOutsideDefinition(d)
			}
			if !isRootRule(rec.rule) {
				return diag.Definition(p.rangeOf(d), "The %q declaration is only allowed in the %s rule.", d.Property, blockpath.RootClass)
			}

		case propBlockClass:
			if !p.block.IsDefinition() {
				return p.pinningOutsideDefinition(d)
			}
			hasClass = true
			name := unquote(d.Value)
			if !blockpath.IsIdent(name) {
				p.record(diag.Definition(p.valueLocation(d), "Illegal block-class. %q is not a legal CSS class name.", name))
				continue
			}
			for _, s := range rec.styles {
				if err := s.SetPresetClass(name); err != nil {
					p.record(diag.Definition(p.valueLocation(d), "Conflicting block-class for %s: %v", s.AsSource(), err))
				}
			}

		case propInterfaceIndex:
			if !p.block.IsDefinition() {
				return p.pinningOutsideDefinition(d)
			}
			idx, err := strconv.Atoi(unquote(d.Value))
			if err != nil || idx < 0 {
				p.record(diag.Definition(p.valueLocation(d), "Illegal block-interface-index. %q is not a non-negative integer.", d.Value))
				continue
			}
			for _, s := range rec.styles {
				if err := s.SetInterfaceIndex(idx); err != nil {
					p.record(diag.Definition(p.valueLocation(d), "Conflicting block-interface-index for %s: %v", s.AsSource(), err))
				}
			}

		case propBlockAlias:
			for _, alias := range parseNames(d.Value) {
				if !blockpath.IsIdent(alias) {
					p.record(diag.Syntax(p.locate(d.ValueOffset, d.End, alias), "Illegal block-alias. %q is not a legal CSS identifier.", alias))
					continue
				}
				for _, s := range rec.styles {
					s.AddAlias(alias)
				}
			}
		}
	}

	if p.block.IsDefinition() && !hasClass && len(rec.styles) > 0 {
		p.record(diag.Definition(p.rangeOf(rec.rule), "Rule %q in a definition file must declare a block-class.", rec.rule.Selector))
	}
	return nil
}
