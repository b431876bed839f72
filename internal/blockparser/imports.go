package blockparser

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yacobolo/cssblocks/internal/block"
	"github.com/yacobolo/cssblocks/internal/cssast"
	"github.com/yacobolo/cssblocks/internal/diag"
)

// resolution is a referenced file requested by @block or @export ... from.
type resolution struct {
	params *referenceParams
	block  *block.Block
	err    error
}

// resolveReferences parses the parameters of every @block and @export and
// fetches the referenced files in parallel. It returns once every request
// has settled.
func (p *fileParser) resolveReferences(ctx context.Context) error {
	var pending []*resolution
	for _, n := range p.sheet.Nodes {
		at, ok := n.(*cssast.AtRule)
		if !ok || (at.Name != atBlock && at.Name != atExport) {
			continue
		}
		params, err := parseReferenceParams(at.Params, at.Name == atBlock)
		if err != nil {
			return diag.Syntax(p.rangeOf(at), "Malformed block reference: `%s`", at)
		}
		if err := checkNames(params.names); err != nil {
			return diag.Syntax(p.rangeOf(at), "Illegal block name in `%s`: %v", at, err)
		}
		res := &resolution{params: params}
		p.resolved[at] = res
		if params.hasFrom {
			pending = append(pending, res)
		}
	}

	var g errgroup.Group
	if p.factory.opts.Concurrency > 0 {
		g.SetLimit(p.factory.opts.Concurrency)
	}
	for _, res := range pending {
		g.Go(func() error {
			res.block, res.err = p.factory.getBlockRelative(ctx, p.file.Identifier, res.params.path)
			return nil
		})
	}
	_ = g.Wait()
	p.log.Debug("References resolved", zap.Int("count", len(pending)))
	return nil
}

// settle converts a failed resolution into a diagnostic. Cycles are
// recorded; any other failure is returned and aborts the file.
func (p *fileParser) settle(at *cssast.AtRule, res *resolution) (ok bool, err error) {
	if res.err == nil {
		return true, nil
	}
	cascade := diag.Cascade(p.rangeOf(at), res.err)
	if errors.Is(res.err, ErrCircularDependency) {
		p.record(cascade)
		return false, nil
	}
	return false, cascade
}

// processImports binds the names requested by each @block.
func (p *fileParser) processImports(context.Context) error {
	for _, at := range p.sheet.AtRules(atBlock) {
		res := p.resolved[at]
		ok, err := p.settle(at, res)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		path := res.params.path
		for _, name := range res.params.names {
			loc := p.locate(at.Start, at.End, name.local)
			switch {
			case name.remote == block.DefaultExport && name.local == block.DefaultExport:
				p.record(diag.Syntax(loc, "Unnecessary re-aliasing of %q to %q in `%s`.", name.remote, name.local, at))
				continue
			case block.IsReserved(name.local):
				p.record(diag.Syntax(loc, "Cannot import %q as reserved word %q", name.remote, name.local))
				continue
			}

			target := res.block.Export(name.remote)
			if target == nil {
				p.record(diag.Syntax(loc, "Cannot import %q from %q: no block is exported with that name.", name.remote, path))
				continue
			}
			if err := p.block.AddReference(name.local, path, target); err != nil {
				p.record(diag.Syntax(loc, "Blocks %q and %q cannot both have the name %q in this scope.",
					p.block.ReferencePath(name.local), path, name.local))
			}
		}
	}
	return nil
}

// processExports adds the names listed by each @export to the export table.
func (p *fileParser) processExports(context.Context) error {
	for _, at := range p.sheet.AtRules(atExport) {
		res := p.resolved[at]
		ok, err := p.settle(at, res)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		seen := make(map[string]bool)
		for _, name := range res.params.names {
			loc := p.locate(at.Start, at.End, name.local)
			switch {
			case name.remote == block.DefaultExport && name.local == block.DefaultExport:
				p.record(diag.Syntax(loc, "Unnecessary re-aliasing of %q to %q in `%s`.", name.remote, name.local, at))
				continue
			case block.IsReserved(name.local):
				p.record(diag.Syntax(loc, "Cannot export %q as reserved word %q", name.remote, name.local))
				continue
			case seen[name.local]:
				p.record(diag.Syntax(loc, "Cannot have duplicate Block export of same name: %q.", name.local))
				continue
			}
			seen[name.local] = true

			target := p.exportSource(res, name.remote)
			if target == nil {
				p.record(diag.Syntax(loc, "Cannot export Block %q: no Block with that name is in scope.", name.remote))
				continue
			}
			if err := p.block.AddExport(name.local, target); err != nil {
				p.record(diag.Syntax(loc, "Block %q has already been exported.", name.local))
			}
		}
	}
	return nil
}

// exportSource finds the Block an export refers to: an export of the named
// file when the directive has a path, otherwise a local reference or the
// Block itself.
func (p *fileParser) exportSource(res *resolution, name string) *block.Block {
	if res.params.hasFrom {
		return res.block.Export(name)
	}
	if name == block.DefaultExport {
		return p.block
	}
	return p.block.Reference(name)
}
