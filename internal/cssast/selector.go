package cssast

import (
	"fmt"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// NodeKind is the kind of a simple selector.
type NodeKind int

// Simple selector kinds
const (
	NodeTag NodeKind = iota
	NodeUniversal
	NodeClass
	NodeID
	NodeAttribute
	NodePseudo
	NodeNesting
)

func (k NodeKind) String() string {
	switch k {
	case NodeTag:
		return "tag"
	case NodeUniversal:
		return "universal"
	case NodeClass:
		return "class"
	case NodeID:
		return "id"
	case NodeAttribute:
		return "attribute"
	case NodePseudo:
		return "pseudo"
	case NodeNesting:
		return "nesting"
	}
	return "unknown"
}

// SelectorNode is a simple selector. Offsets are absolute in the stylesheet.
type SelectorNode struct {
	Kind NodeKind
	// Value is the tag, class or id name, or the pseudo including its colons.
	Value string

	// Namespace prefix of tags and attributes. NamespaceSet distinguishes
	// `[|a]` from `[a]`; AnyNamespace is `[*|a]`.
	Namespace    string
	NamespaceSet bool
	AnyNamespace bool

	Attribute string
	Operator  string
	AttrValue string
	Quoted    bool

	// Args is the raw text between the parentheses of a functional pseudo.
	Args string

	Offset, End int
	raw         string
}

// Span implements diag.Span.
func (n *SelectorNode) Span() (int, int) { return n.Offset, n.End }

func (n *SelectorNode) String() string { return n.raw }

// CompoundSelector is a sequence of simple selectors with no combinator
// between them. Compounds of a complex selector form a linked list.
type CompoundSelector struct {
	Nodes      []*SelectorNode
	Combinator string // towards Next; empty on the key selector
	Next       *CompoundSelector

	Offset, End int
	raw         string
}

// Span implements diag.Span.
func (c *CompoundSelector) Span() (int, int) { return c.Offset, c.End }

func (c *CompoundSelector) String() string { return c.raw }

// ComplexSelector is one entry of a selector list.
type ComplexSelector struct {
	Selector *CompoundSelector // leftmost compound
	Key      *CompoundSelector // rightmost compound, the one declarations apply to

	Offset, End int
	raw         string
}

// Span implements diag.Span.
func (c *ComplexSelector) Span() (int, int) { return c.Offset, c.End }

func (c *ComplexSelector) String() string { return c.raw }

// Compounds returns the compound selectors from left to right.
func (c *ComplexSelector) Compounds() []*CompoundSelector {
	var out []*CompoundSelector
	for s := c.Selector; s != nil; s = s.Next {
		out = append(out, s)
	}
	return out
}

type token struct {
	tt     css.TokenType
	data   string
	offset int
}

type selectorParser struct {
	text   string
	base   int
	tokens []token
	pos    int
}

// ParseSelectors parses a selector list. base is the offset of text in its
// stylesheet and is added to every node offset.
func ParseSelectors(text string, base int) ([]*ComplexSelector, error) {
	p := &selectorParser{text: text, base: base}
	lexer := css.NewLexer(parse.NewInputString(text))
	offset := 0
	for {
		tt, data := lexer.Next()
		if tt == css.ErrorToken {
			break
		}
		p.tokens = append(p.tokens, token{tt: tt, data: string(data), offset: offset})
		offset += len(data)
	}

	var list []*ComplexSelector
	for {
		cs, err := p.complex()
		if err != nil {
			return nil, err
		}
		list = append(list, cs)
		if p.eof() {
			return list, nil
		}
		p.pos++ // comma
	}
}

func (p *selectorParser) eof() bool {
	return p.pos >= len(p.tokens)
}

func (p *selectorParser) peek(n int) token {
	if p.pos+n >= len(p.tokens) {
		return token{tt: css.ErrorToken, offset: len(p.text)}
	}
	return p.tokens[p.pos+n]
}

func (p *selectorParser) next() token {
	t := p.peek(0)
	p.pos++
	return t
}

func (p *selectorParser) errorf(t token, format string, args ...any) error {
	return &ParseError{Offset: p.base + t.offset, Err: fmt.Errorf(format, args...)}
}

func (p *selectorParser) skipSpace() {
	for !p.eof() {
		switch p.peek(0).tt {
		case css.WhitespaceToken, css.CommentToken:
			p.pos++
		default:
			return
		}
	}
}

func isDelim(t token, c string) bool {
	return t.tt == css.DelimToken && t.data == c
}

func (p *selectorParser) complex() (*ComplexSelector, error) {
	p.skipSpace()
	cs := &ComplexSelector{}
	var cur *CompoundSelector
	combinator := ""
	explicit := false

loop:
	for {
		t := p.peek(0)
		switch {
		case t.tt == css.ErrorToken || t.tt == css.CommaToken:
			break loop

		case t.tt == css.WhitespaceToken || t.tt == css.CommentToken:
			p.pos++
			if cur != nil && combinator == "" {
				combinator = " "
			}

		case isDelim(t, ">") || isDelim(t, "+") || isDelim(t, "~") || t.tt == css.ColumnToken:
			if cur == nil {
				return nil, p.errorf(t, "selector cannot start with combinator %q", t.data)
			}
			if explicit {
				return nil, p.errorf(t, "unexpected combinator %q", t.data)
			}
			p.pos++
			combinator = t.data
			explicit = true

		default:
			node, err := p.simple()
			if err != nil {
				return nil, err
			}
			switch {
			case cur == nil:
				cur = &CompoundSelector{Offset: node.Offset}
				cs.Selector = cur
				cs.Offset = node.Offset
			case combinator != "":
				c := &CompoundSelector{Offset: node.Offset}
				cur.Combinator = combinator
				cur.Next = c
				cur = c
				combinator = ""
				explicit = false
			}
			cur.Nodes = append(cur.Nodes, node)
			cur.End = node.End
			cur.raw = p.slice(cur.Offset, cur.End)
		}
	}

	if cur == nil {
		return nil, p.errorf(p.peek(0), "empty selector")
	}
	if explicit {
		return nil, p.errorf(p.peek(0), "selector cannot end with combinator %q", combinator)
	}
	cs.Key = cur
	cs.End = cur.End
	cs.raw = p.slice(cs.Offset, cs.End)
	return cs, nil
}

func (p *selectorParser) slice(start, end int) string {
	return p.text[start-p.base : end-p.base]
}

func (p *selectorParser) node(kind NodeKind, first token) *SelectorNode {
	last := p.tokens[p.pos-1]
	n := &SelectorNode{
		Kind:   kind,
		Offset: p.base + first.offset,
		End:    p.base + last.offset + len(last.data),
	}
	n.raw = p.slice(n.Offset, n.End)
	return n
}

func (p *selectorParser) simple() (*SelectorNode, error) {
	t := p.next()
	switch {
	case isDelim(t, "."):
		name := p.next()
		if name.tt != css.IdentToken {
			return nil, p.errorf(name, "expected class name after %q", ".")
		}
		n := p.node(NodeClass, t)
		n.Value = name.data
		return n, nil

	case t.tt == css.HashToken:
		n := p.node(NodeID, t)
		n.Value = strings.TrimPrefix(t.data, "#")
		return n, nil

	case isDelim(t, "&"):
		n := p.node(NodeNesting, t)
		n.Value = "&"
		return n, nil

	case t.tt == css.IdentToken || isDelim(t, "*"):
		kind, value := NodeTag, t.data
		namespace, set := "", false
		if isDelim(p.peek(0), "|") {
			name := p.peek(1)
			if name.tt == css.IdentToken || isDelim(name, "*") {
				p.pos += 2
				namespace, set = t.data, true
				value = name.data
			}
		}
		if value == "*" {
			kind = NodeUniversal
		}
		n := p.node(kind, t)
		n.Value = value
		n.Namespace = namespace
		n.NamespaceSet = set
		n.AnyNamespace = namespace == "*"
		return n, nil

	case t.tt == css.ColonToken:
		return p.pseudo(t)

	case t.tt == css.LeftBracketToken:
		return p.attribute(t)
	}
	return nil, p.errorf(t, "unexpected %q in selector", t.data)
}

func (p *selectorParser) pseudo(colon token) (*SelectorNode, error) {
	prefix := ":"
	if p.peek(0).tt == css.ColonToken {
		p.pos++
		prefix = "::"
	}
	name := p.next()
	switch name.tt {
	case css.IdentToken:
		n := p.node(NodePseudo, colon)
		n.Value = prefix + name.data
		return n, nil
	case css.FunctionToken:
		argsStart := p.pos
		depth := 1
		for depth > 0 {
			t := p.next()
			switch t.tt {
			case css.ErrorToken:
				return nil, p.errorf(name, "unclosed %s", prefix+name.data+")")
			case css.FunctionToken, css.LeftParenthesisToken:
				depth++
			case css.RightParenthesisToken:
				depth--
			}
		}
		closing := p.tokens[p.pos-1]
		n := p.node(NodePseudo, colon)
		n.Value = prefix + strings.TrimSuffix(name.data, "(")
		if argsStart < p.pos-1 {
			n.Args = strings.TrimSpace(p.text[p.tokens[argsStart].offset:closing.offset])
		}
		return n, nil
	}
	return nil, p.errorf(name, "expected pseudo-class name after %q", prefix)
}

var attrOperators = map[css.TokenType]string{
	css.IncludeMatchToken:   "~=",
	css.DashMatchToken:      "|=",
	css.PrefixMatchToken:    "^=",
	css.SuffixMatchToken:    "$=",
	css.SubstringMatchToken: "*=",
}

func (p *selectorParser) attribute(open token) (*SelectorNode, error) {
	attr := &SelectorNode{}
	p.skipSpace()

	t := p.peek(0)
	switch {
	case isDelim(t, "|"):
		p.pos++
		attr.NamespaceSet = true
	case (t.tt == css.IdentToken || isDelim(t, "*")) && isDelim(p.peek(1), "|"):
		p.pos += 2
		attr.Namespace = t.data
		attr.NamespaceSet = true
		attr.AnyNamespace = t.data == "*"
	}

	name := p.next()
	if name.tt != css.IdentToken {
		return nil, p.errorf(name, "expected attribute name")
	}
	attr.Attribute = name.data
	p.skipSpace()

	op := p.next()
	switch {
	case op.tt == css.RightBracketToken:
		return p.finishAttribute(attr, open), nil
	case isDelim(op, "="):
		attr.Operator = "="
	default:
		s, ok := attrOperators[op.tt]
		if !ok {
			return nil, p.errorf(op, "unexpected %q in attribute selector", op.data)
		}
		attr.Operator = s
	}

	p.skipSpace()
	value := p.next()
	switch value.tt {
	case css.IdentToken, css.NumberToken, css.DimensionToken:
		attr.AttrValue = value.data
	case css.StringToken:
		attr.AttrValue = unquote(value.data)
		attr.Quoted = true
	default:
		return nil, p.errorf(value, "expected attribute value")
	}

	p.skipSpace()
	if flag := p.peek(0); flag.tt == css.IdentToken && (flag.data == "i" || flag.data == "s") {
		p.pos++
		p.skipSpace()
	}
	if closing := p.next(); closing.tt != css.RightBracketToken {
		return nil, p.errorf(closing, "unclosed attribute selector")
	}
	return p.finishAttribute(attr, open), nil
}

func (p *selectorParser) finishAttribute(attr *SelectorNode, open token) *SelectorNode {
	n := p.node(NodeAttribute, open)
	attr.Kind = n.Kind
	attr.Offset, attr.End, attr.raw = n.Offset, n.End, n.raw
	return attr
}

func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	q := s[0]
	body := s[1:]
	if body[len(body)-1] == q {
		body = body[:len(body)-1]
	}
	return strings.ReplaceAll(body, `\`+string(q), string(q))
}
