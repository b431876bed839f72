package block

import (
	"fmt"
	"strings"
)

// DebugLines describes the Block's structure for @block-debug and the
// inspect command.
func (b *Block) DebugLines() []string {
	lines := []string{fmt.Sprintf("Source: %s", b.identifier)}
	if b.base != nil {
		lines = append(lines, fmt.Sprintf("Extends: %s (%s)", b.baseName, b.base.Identifier()))
	}
	for _, impl := range b.implements {
		lines = append(lines, fmt.Sprintf("Implements: %s", impl.Identifier()))
	}
	for _, name := range b.References() {
		lines = append(lines, fmt.Sprintf("Reference: %s => %s", name, b.references[name].Identifier()))
	}

	for _, c := range b.Classes() {
		lines = append(lines, describe(c.AsSource(), c))
		for _, comp := range c.composes {
			lines = append(lines, "  composes "+describeComposition(comp))
		}
		for _, v := range c.AttributeValues() {
			line := "  " + describe(v.selector(), v)
			if v.IsGlobal() {
				line += " (global)"
			}
			lines = append(lines, line)
		}
	}
	return lines
}

func describe(label string, s Style) string {
	var sb strings.Builder
	sb.WriteString(label)
	if preset, ok := s.PresetClass(); ok {
		sb.WriteString(" => ")
		sb.WriteString(preset)
	}
	if idx, ok := s.InterfaceIndex(); ok {
		fmt.Fprintf(&sb, " #%d", idx)
	}
	if aliases := s.Aliases(); len(aliases) > 0 {
		sb.WriteString(" aka ")
		sb.WriteString(strings.Join(aliases, ", "))
	}
	return sb.String()
}

func describeComposition(c Composition) string {
	s := c.Style.String()
	if len(c.Conditions) == 0 {
		return s
	}
	conds := make([]string, len(c.Conditions))
	for i, v := range c.Conditions {
		conds[i] = v.AsSource()
	}
	return s + " when " + strings.Join(conds, " ")
}
