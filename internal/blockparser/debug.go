package blockparser

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/yacobolo/cssblocks/internal/block"
	"github.com/yacobolo/cssblocks/internal/diag"
)

// Debug channels
const (
	debugComment = "comment"
	debugStderr  = "stderr"
	debugStdout  = "stdout"
)

// parseDebugParams splits `<name> to <channel>`.
func parseDebugParams(params string) (name, channel string, ok bool) {
	items := lexItems(params)
	if len(items) != 3 {
		return "", "", false
	}
	for _, item := range items {
		if !item.word() || item.quoted {
			return "", "", false
		}
	}
	if items[1].text != "to" {
		return "", "", false
	}
	switch items[2].text {
	case debugComment, debugStderr, debugStdout:
		return items[0].text, items[2].text, true
	}
	return "", "", false
}

// processDebug handles `@block-debug <name> to <channel>`.
func (p *fileParser) processDebug(context.Context) error {
	for _, at := range p.sheet.AtRules(atBlockDebug) {
		name, channel, ok := parseDebugParams(at.Params)
		if !ok {
			p.record(diag.Syntax(p.rangeOf(at), "Malformed block debug: `%s`", at))
			continue
		}

		var target *block.Block
		if name == "self" {
			target = p.block
		} else if target = p.block.Reference(name); target == nil {
			p.record(diag.Syntax(p.rangeOf(at), "Invalid block debug: No Block named %q found in scope.", name))
			continue
		}

		lines := target.DebugLines()
		switch channel {
		case debugComment:
			for _, line := range lines {
				p.block.AddDebug(line)
			}
		case debugStderr:
			p.factory.writeDebug(p.factory.opts.Stderr, lines)
		case debugStdout:
			p.factory.writeDebug(p.factory.opts.Stdout, lines)
		}
	}
	return nil
}

func (f *Factory) writeDebug(w io.Writer, lines []string) {
	if w == nil {
		return
	}
	f.debugMu.Lock()
	defer f.debugMu.Unlock()
	fmt.Fprintln(w, strings.Join(lines, "\n"))
}
