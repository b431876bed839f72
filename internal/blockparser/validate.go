package blockparser

import (
	"fmt"
	"strings"

	"github.com/yacobolo/cssblocks/internal/blockpath"
	"github.com/yacobolo/cssblocks/internal/cssast"
	"github.com/yacobolo/cssblocks/internal/diag"
)

// BlockType is the kind of Block object a compound selector selects.
type BlockType int

// Block object kinds. Root and Attribute are root-level; Class and
// ClassAttribute are class-level.
const (
	ExternalBlock BlockType = iota
	Root
	Attribute
	Class
	ClassAttribute
)

func (t BlockType) String() string {
	switch t {
	case ExternalBlock:
		return "external block"
	case Root:
		return blockpath.RootClass
	case Attribute:
		return "root-level state"
	case Class:
		return "class"
	case ClassAttribute:
		return "class-level state"
	}
	return "unknown"
}

func (t BlockType) plural() string {
	switch t {
	case ExternalBlock:
		return "external blocks"
	case Root:
		return blockpath.RootClass + " selectors"
	case Attribute:
		return "root-level states"
	case Class:
		return "classes"
	case ClassAttribute:
		return "class-level states"
	}
	return "unknown"
}

// RootLevel reports whether the type applies to the Block's root element.
func (t BlockType) RootLevel() bool { return t == Root || t == Attribute }

// ClassLevel reports whether the type applies to a sub-element.
func (t BlockType) ClassLevel() bool { return t == Class || t == ClassAttribute }

// NodeAndType is the single Block object a compound selector resolves to.
type NodeAndType struct {
	Type BlockType
	// Node is the selector node that determined Type.
	Node *cssast.SelectorNode
	// BlockName is set for ExternalBlock.
	BlockName string
	// ClassName is set for Class and ClassAttribute.
	ClassName string
	// Attr is the state node for Attribute, ClassAttribute and a qualified
	// ExternalBlock.
	Attr *cssast.SelectorNode
}

// Text renders the object independent of how the compound spelled it.
func (n *NodeAndType) Text() string {
	attr := ""
	if n.Attr != nil {
		attr = n.Attr.String()
	}
	switch n.Type {
	case ExternalBlock:
		return n.BlockName + attr
	case Root, Attribute:
		return blockpath.RootClass + attr
	default:
		return "." + n.ClassName + attr
	}
}

// assertBlockObject reduces a compound selector to the Block object it
// selects. Problems that leave the rule usable are recorded; the returned
// error aborts the file. A nil result means nothing could be classified.
func (p *fileParser) assertBlockObject(sel *cssast.ComplexSelector, compound *cssast.CompoundSelector) (*NodeAndType, error) {
	var found *NodeAndType
	recorded := false
	fail := func(node diag.Span, format string, args ...any) {
		recorded = true
		p.record(diag.Syntax(p.rangeOf(node), "%s: %s", fmt.Sprintf(format, args...), sel))
	}
	throw := func(node diag.Span, format string, args ...any) error {
		return diag.Syntax(p.rangeOf(node), "%s: %s", fmt.Sprintf(format, args...), sel)
	}

	for i, n := range compound.Nodes {
		switch n.Kind {
		case cssast.NodeTag:
			if p.block.Reference(n.Value) != nil {
				if found != nil {
					fail(n, "A block reference cannot be combined with a %s", found.Type)
					continue
				}
				found = &NodeAndType{Type: ExternalBlock, Node: n, BlockName: n.Value}
				continue
			}
			if i+1 < len(compound.Nodes) && isStateNode(compound.Nodes[i+1]) {
				return nil, throw(n, "No Block named %q found in scope", n.Value)
			}
			fail(n, "Tag name selectors are not allowed")

		case cssast.NodePseudo:
			switch n.Value {
			case blockpath.RootClass:
				if found != nil && found.Type.ClassLevel() {
					fail(n, "%s cannot be on the same element as a %s", blockpath.RootClass, found.Type)
					continue
				}
				if found == nil {
					found = &NodeAndType{Type: Root, Node: n}
				}
			case ":not", ":matches":
				fail(n, "The %s() pseudoclass cannot be used", n.Value)
			}

		case cssast.NodeClass:
			switch {
			case found == nil:
				found = &NodeAndType{Type: Class, Node: n, ClassName: n.Value}
			case found.Type == Root:
				fail(n, "%s cannot be on the same element as a class", blockpath.RootClass)
			case found.Type == Class:
				if found.ClassName != n.Value {
					fail(n, "Two distinct classes cannot be selected on the same element")
				}
			case found.Type == ClassAttribute || found.Type == Attribute:
				fail(n, "The class must precede the state")
			case found.Type == ExternalBlock:
				fail(n, "A class cannot be selected on the same element as a block reference")
			}

		case cssast.NodeAttribute:
			if n.AnyNamespace {
				return nil, throw(n, "The \"any namespace\" form of the attribute selector is not allowed")
			}
			if n.Namespace != blockpath.StateNamespace {
				fail(n, "Only the %q namespace is allowed in attribute selectors", blockpath.StateNamespace)
				continue
			}
			if n.Attribute == "scope" {
				return nil, throw(n, "A state cannot be named 'scope'")
			}
			if n.Operator != "" && n.Operator != "=" {
				fail(n, "A state with a value must use the = operator (found %s)", n.Operator)
				continue
			}
			switch {
			case found == nil:
				fail(n, "States without an explicit %s or class selector are not supported", blockpath.RootClass)
			case found.Type == ExternalBlock:
				found.Attr = n
			case found.Type == Root:
				found = &NodeAndType{Type: Attribute, Node: n, Attr: n}
			case found.Type == Class:
				found = &NodeAndType{Type: ClassAttribute, Node: n, ClassName: found.ClassName, Attr: n}
			default:
				// A second state replaces the first.
				found.Node, found.Attr = n, n
			}
		}
	}

	if found == nil {
		if !recorded {
			p.record(diag.Syntax(p.rangeOf(compound), "Missing block object in selector component '%s': %s", compound, sel))
		}
		return nil, nil
	}
	if found.Type == ExternalBlock {
		if err := p.assertGlobalState(sel, found); err != nil {
			return nil, err
		}
	}
	return found, nil
}

// assertGlobalState checks that a selector of another Block selects one of
// its global states.
func (p *fileParser) assertGlobalState(sel *cssast.ComplexSelector, obj *NodeAndType) error {
	other := p.block.Reference(obj.BlockName)
	if other == nil {
		return diag.Syntax(p.rangeOf(obj.Node), "No Block named %q found in scope: %s", obj.BlockName, sel)
	}
	globals := other.GlobalAttributeValues()
	if len(globals) == 0 {
		return diag.Syntax(p.rangeOf(obj.Node), "External Block '%s' has no global states: %s", obj.BlockName, sel)
	}
	if obj.Attr == nil {
		suggestions := make([]string, 0, len(globals))
		for _, v := range globals {
			suggestions = append(suggestions, obj.BlockName+v.AsSource())
		}
		return diag.Syntax(p.rangeOf(obj.Node),
			"Missing global state selector on external Block '%s'. Did you mean one of: %s",
			obj.BlockName, strings.Join(suggestions, " "))
	}

	tok := attrToken(obj.Attr)
	v := other.RootClass().ResolveAttributeValue(tok.Key())
	if v == nil {
		return diag.Syntax(p.rangeOf(obj.Attr), "No state %s%s is declared by Block '%s': %s",
			obj.BlockName, obj.Attr, obj.BlockName, sel)
	}
	if !v.IsGlobal() {
		return diag.Syntax(p.rangeOf(obj.Attr), "`%s%s` is not global: %s", obj.BlockName, obj.Attr, sel)
	}
	return nil
}

// assertValidSelector validates one selector of a rule and returns the
// object its key selector targets.
func (p *fileParser) assertValidSelector(sel *cssast.ComplexSelector) (*NodeAndType, error) {
	key, err := p.assertBlockObject(sel, sel.Key)
	if err != nil || key == nil {
		return nil, err
	}
	if key.Type == ExternalBlock {
		p.record(diag.Syntax(p.rangeOf(sel.Key), "Cannot style values from other blocks: %s", sel))
		return key, nil
	}
	if sel.Selector == sel.Key {
		return key, nil
	}

	current, err := p.assertBlockObject(sel, sel.Selector)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return key, nil
	}

	recordf := func(node diag.Span, format string, args ...any) {
		p.record(diag.Syntax(p.rangeOf(node), "%s: %s", fmt.Sprintf(format, args...), sel))
	}

	seenRoot := current.Type.RootLevel()
	seenClass := current.Type.ClassLevel()
	seen := []*NodeAndType{current}
	hierarchical := false

	for c := sel.Selector; c.Next != nil; c = c.Next {
		var next *NodeAndType
		if c.Next == sel.Key {
			next = key
		} else {
			next, err = p.assertBlockObject(sel, c.Next)
			if err != nil {
				return nil, err
			}
			if next == nil {
				return key, nil
			}
		}

		comb := c.Combinator
		sibling := comb == "+" || comb == "~"
		switch comb {
		case " ", ">":
			hierarchical = true
		case "+", "~":
		default:
			recordf(c.Next, "Illegal Combinator '%s'", comb)
		}

		if next.Type.RootLevel() {
			switch {
			case current.Type.ClassLevel() && sibling:
				recordf(c.Next, "A class is never a sibling of a %s", next.Type)
			case seenClass:
				recordf(c.Next, "Illegal scoping of a %s", next.Type)
			case seenRoot && hierarchical && !allSame(seen, next):
				recordf(c.Next, "Illegal scoping of a %s", next.Type)
			}
		}

		if next.Type.ClassLevel() {
			if current.Type.RootLevel() && sibling {
				recordf(c.Next, "A %s cannot be a sibling with a %s", next.Type, current.Type)
			}
			for _, prev := range seen {
				if !prev.Type.ClassLevel() || prev.Text() == next.Text() {
					continue
				}
				if prev.Type == next.Type {
					recordf(c.Next, "Distinct %s cannot be combined", next.Type.plural())
				} else {
					recordf(c.Next, "Cannot combine a %s with a %s", prev.Type, next.Type)
				}
				break
			}
		}

		seenRoot = seenRoot || next.Type.RootLevel()
		seenClass = seenClass || next.Type.ClassLevel()
		seen = append(seen, next)
		current = next
	}
	return key, nil
}

func allSame(seen []*NodeAndType, next *NodeAndType) bool {
	for _, s := range seen {
		if s.Text() != next.Text() {
			return false
		}
	}
	return true
}

// keyStyles returns the styles targeted by a validated key selector.
func (p *fileParser) keyStyles(key *NodeAndType, compound *cssast.CompoundSelector) ClassifiedStyles {
	if key == nil || key.Type == ExternalBlock {
		return ClassifiedStyles{}
	}
	return Classify(p.block, compound)
}
