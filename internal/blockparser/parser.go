// Package blockparser turns Block files into block.Block models. It
// classifies and validates every selector, builds the Block's classes and
// states, and resolves the directives that link one Block to another.
package blockparser

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/yacobolo/cssblocks/internal/block"
	"github.com/yacobolo/cssblocks/internal/cssast"
	"github.com/yacobolo/cssblocks/internal/diag"
)

// Directive and declaration names.
const (
	atBlock       = "block"
	atExport      = "export"
	atBlockGlobal = "block-global"
	atBlockDebug  = "block-debug"

	propBlockName      = "block-name"
	propBlockID        = "block-id"
	propBlockClass     = "block-class"
	propInterfaceIndex = "block-interface-index"
	propBlockAlias     = "block-alias"
	propExtends        = "extends"
	propImplements     = "implements"
	propComposes       = "composes"
)

// fileParser constructs one Block. It is used by a single goroutine.
type fileParser struct {
	factory *Factory
	file    *ImportedFile
	log     *zap.Logger

	block  *block.Block
	source *diag.SourceFile
	sheet  *cssast.Stylesheet
	rules  []*ruleRecord

	// resolved reference targets keyed by the directive that requested them
	resolved map[*cssast.AtRule]*resolution

	declaredName string
	declaredID   string
	implementsAt map[*block.Block]*diag.Location
}

// ruleRecord is a rule after selector validation and classification.
type ruleRecord struct {
	rule       *cssast.Rule
	selectors  []*cssast.ComplexSelector
	styles     []block.Style
	classes    []*block.BlockClass
	attrValues []*block.AttrValue
	// scoped is true when any selector of the rule has more than one compound.
	scoped bool
}

func newFileParser(f *Factory, file *ImportedFile) *fileParser {
	b := block.New(file.Identifier, file.DefaultName)
	if file.IsDefinition {
		b.MarkDefinition()
	}
	return &fileParser{
		factory:      f,
		file:         file,
		log:          f.log.Named("block-parser").With(zap.String("block", file.Identifier)),
		block:        b,
		resolved:     make(map[*cssast.AtRule]*resolution),
		implementsAt: make(map[*block.Block]*diag.Location),
	}
}

// run executes the construction phases in order. A returned error aborts
// the file; recorded errors stay on the Block.
func (p *fileParser) run(ctx context.Context) (*block.Block, error) {
	source, err := diag.NewSourceFile(p.file.Identifier, p.file.Contents, p.file.SourceMap)
	if err != nil {
		return p.block, err
	}
	p.source = source

	sheet, err := cssast.Parse(p.file.Identifier, string(p.file.Contents))
	if err != nil {
		var perr *cssast.ParseError
		if errors.As(err, &perr) {
			return p.block, diag.Syntax(p.source.Range(perr.Offset, perr.Offset), "%v", perr.Err)
		}
		return p.block, diag.Syntax(p.source.FileLocation(), "%v", err)
	}
	p.sheet = sheet

	phases := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"references", p.resolveReferences},
		{"imports", p.processImports},
		{"exports", p.processExports},
		{"global states", p.processGlobals},
		{"block declarations", p.processRootDeclarations},
		{"construction", p.construct},
		{"composition", p.processComposes},
		{"definition", p.checkDefinition},
		{"implementations", p.checkImplementations},
		{"debug", p.processDebug},
	}
	for _, phase := range phases {
		if err := phase.fn(ctx); err != nil {
			return p.block, err
		}
		p.log.Debug("Phase complete", zap.String("phase", phase.name), zap.Int("errors", len(p.block.Errors())))
	}

	if owner := p.factory.registerGUID(p.block.GUID(), p.file.Identifier); owner != p.file.Identifier {
		p.record(diag.New(p.source.FileLocation(), "Block id %q of %s is already used by %s.",
			p.block.GUID(), p.file.Identifier, owner))
	}
	return p.block, nil
}

// record adds a non-fatal diagnostic to the Block.
func (p *fileParser) record(err *diag.Error) {
	p.log.Debug("Recorded error", zap.String("message", err.Message))
	p.block.AddError(err)
}

func (p *fileParser) rangeOf(node diag.Span) *diag.Location {
	return p.source.RangeOf(node)
}
