// Package cssast is a small CSS syntax tree built on tdewolff/parse. It keeps
// the byte offsets of every rule, declaration and at-rule so later stages can
// point diagnostics at the author's source, and it splits selector text into
// compound selectors joined by combinators.
package cssast

import (
	"fmt"
	"strings"
)

// Node is a top level or nested stylesheet item.
type Node interface {
	Span() (start, end int)
	node()
}

// Stylesheet is a parsed CSS document.
type Stylesheet struct {
	Filename string
	Source   string
	Nodes    []Node
}

// Rule is a qualified rule: a selector list and its declarations.
type Rule struct {
	Selector       string
	SelectorOffset int
	Declarations   []*Declaration
	Parent         *AtRule
	Start, End     int
}

// Declaration is a `property: value` pair.
type Declaration struct {
	Property    string
	Value       string
	ValueOffset int
	Start, End  int
}

// AtRule is an at-rule with or without a block. Name excludes the "@".
type AtRule struct {
	Name         string
	Params       string
	ParamsOffset int
	Children     []Node
	Declarations []*Declaration
	Parent       *AtRule
	HasBlock     bool
	Start, End   int
}

func (*Rule) node()   {}
func (*AtRule) node() {}

// Span implements Node.
func (r *Rule) Span() (int, int) { return r.Start, r.End }

// Span implements Node.
func (a *AtRule) Span() (int, int) { return a.Start, a.End }

// Span returns the byte range of the declaration.
func (d *Declaration) Span() (int, int) { return d.Start, d.End }

func (d *Declaration) String() string {
	return d.Property + ": " + d.Value
}

// Declaration returns the last declaration of the given property, or nil.
func (r *Rule) Declaration(property string) *Declaration {
	var found *Declaration
	for _, d := range r.Declarations {
		if d.Property == property {
			found = d
		}
	}
	return found
}

func (a *AtRule) String() string {
	if a.Params == "" {
		return "@" + a.Name
	}
	return fmt.Sprintf("@%s %s", a.Name, a.Params)
}

// Keyframes reports whether the at-rule is a (possibly vendor prefixed) @keyframes.
func (a *AtRule) Keyframes() bool {
	return strings.HasSuffix(a.Name, "keyframes")
}

// Walk visits every node depth first, in source order. Returning false from
// fn skips the children of an at-rule.
func (s *Stylesheet) Walk(fn func(Node) bool) {
	walk(s.Nodes, fn)
}

func walk(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		if !fn(n) {
			continue
		}
		if at, ok := n.(*AtRule); ok {
			walk(at.Children, fn)
		}
	}
}

// Rules returns every style rule in source order, including rules nested in
// conditional at-rules. Keyframe selectors are not style rules and are skipped.
func (s *Stylesheet) Rules() []*Rule {
	var rules []*Rule
	s.Walk(func(n Node) bool {
		switch n := n.(type) {
		case *Rule:
			rules = append(rules, n)
		case *AtRule:
			return !n.Keyframes()
		}
		return true
	})
	return rules
}

// AtRules returns the top level at-rules with the given name.
func (s *Stylesheet) AtRules(name string) []*AtRule {
	var out []*AtRule
	for _, n := range s.Nodes {
		if at, ok := n.(*AtRule); ok && at.Name == name {
			out = append(out, at)
		}
	}
	return out
}
