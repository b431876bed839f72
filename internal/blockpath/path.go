// Package blockpath parses Block Path expressions such as
// `block.class[state|name="value"]`, the notation used to refer to a style
// object inside a Block or inside one of the Blocks it references.
package blockpath

import (
	"fmt"
	"iter"
	"strings"

	"github.com/yacobolo/cssblocks/internal/diag"
)

// Reserved path literals.
const (
	// RootClass is the class name of a Block's root element.
	RootClass = ":scope"
	// StateNamespace is the only namespace attribute selectors may use.
	StateNamespace = "state"
	// AttrPresent is the value of an attribute selected by presence alone.
	AttrPresent = "::attr-present"
)

// Tokenizer messages. The text is part of the diagnostics contract.
const (
	MsgWhitespace        = "Whitespace is only allowed in quoted attribute values"
	MsgNamespace         = "Attribute selectors are required to use a valid namespace."
	MsgNoName            = "Block path segments must include a valid name"
	MsgUnclosedAttribute = "Unclosed attribute selector"
	MsgMismatchedQuote   = "No closing quote found in Block path"
	MsgClassAfterAttr    = "Attribute selectors must follow their class in Block path"
)

// InvalidIdent is the message for an identifier that breaks the CSS grammar.
func InvalidIdent(ident string) string {
	return fmt.Sprintf("Invalid identifier %q found in Block path.", ident)
}

// ExpectsSepInsteadRec is the message for a character following `]` that is not a separator.
func ExpectsSepInsteadRec(c string) string {
	return fmt.Sprintf("Expected separator tokens \"[\" or \".\", instead found `%s`", c)
}

// MultipleOfType is the message for a second token of the same kind.
func MultipleOfType(kind string) string {
	return fmt.Sprintf("Can not have multiple %s selectors in Block path.", kind)
}

// Kind identifies a path segment.
type Kind int

// Path segment kinds, in the order they must appear.
const (
	KindBlock Kind = iota
	KindClass
	KindAttribute
)

func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "block"
	case KindClass:
		return "class"
	case KindAttribute:
		return "attribute"
	}
	return "unknown"
}

// Token is one segment of a path.
type Token struct {
	Kind      Kind
	Name      string
	Namespace string // attribute only
	Value     string // attribute only; AttrPresent when no value was given
	Quoted    bool   // attribute only

	synthetic bool
}

// String renders the token in canonical form.
func (t Token) String() string {
	switch t.Kind {
	case KindBlock:
		return t.Name
	case KindClass:
		if t.Name == RootClass {
			return RootClass
		}
		return "." + t.Name
	case KindAttribute:
		var sb strings.Builder
		sb.WriteString("[")
		if t.Namespace != "" {
			sb.WriteString(t.Namespace)
			sb.WriteString("|")
		}
		sb.WriteString(t.Name)
		if t.Value != AttrPresent {
			sb.WriteString("=")
			if t.Quoted {
				// values cannot hold escapes, so a double quote forces single quotes
				quote := `"`
				if strings.Contains(t.Value, `"`) {
					quote = `'`
				}
				sb.WriteString(quote + t.Value + quote)
			} else {
				sb.WriteString(t.Value)
			}
		}
		sb.WriteString("]")
		return sb.String()
	}
	return ""
}

// Error is a tokenizer failure. Index is the byte offset in the path the
// error points at; Location is that offset applied to the caller's location.
type Error struct {
	Message  string
	Index    int
	Location *diag.Location
}

func (e *Error) Error() string {
	return e.Diagnostic().Error()
}

// Diagnostic converts the error into a css-blocks diagnostic.
func (e *Error) Diagnostic() *diag.Error {
	return diag.Path(e.Location, "%s", e.Message)
}

// Unwrap lets errors.As reach the diagnostic.
func (e *Error) Unwrap() error {
	return e.Diagnostic()
}

// BlockPath is a parsed path expression.
type BlockPath struct {
	text   string
	tokens []Token
}

// Parse tokenizes a path expression. loc, when given, is the location of the
// first character of text and is used to position errors.
func Parse(text string, loc *diag.Location) (*BlockPath, error) {
	t := &tokenizer{w: walker{data: text}, loc: loc}
	if err := t.run(); err != nil {
		return nil, err
	}
	return &BlockPath{text: text, tokens: t.tokens}, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(text string) *BlockPath {
	p, err := Parse(text, nil)
	if err != nil {
		panic(err)
	}
	return p
}

func fromTokens(tokens []Token) *BlockPath {
	cp := make([]Token, len(tokens))
	copy(cp, tokens)
	return &BlockPath{tokens: cp}
}

func (p *BlockPath) find(kind Kind) *Token {
	for i := range p.tokens {
		if p.tokens[i].Kind == kind {
			return &p.tokens[i]
		}
	}
	return nil
}

// Block returns the referenced block name, or "" for the enclosing Block.
func (p *BlockPath) Block() string {
	if t := p.find(KindBlock); t != nil {
		return t.Name
	}
	return ""
}

// Class returns the class name, RootClass when the path selects the root.
// A view that holds no class token returns "".
func (p *BlockPath) Class() string {
	if t := p.find(KindClass); t != nil {
		return t.Name
	}
	return ""
}

// Attribute returns the attribute token, or nil.
func (p *BlockPath) Attribute() *Token {
	if t := p.find(KindAttribute); t != nil {
		cp := *t
		return &cp
	}
	return nil
}

// Tokens returns a copy of the path's tokens, including synthesized ones.
func (p *BlockPath) Tokens() []Token {
	cp := make([]Token, len(p.tokens))
	copy(cp, p.tokens)
	return cp
}

// Path renders everything but the block segment.
func (p *BlockPath) Path() string {
	var sb strings.Builder
	for _, t := range p.tokens {
		if t.Kind != KindBlock {
			sb.WriteString(t.String())
		}
	}
	return sb.String()
}

// String renders the path in canonical form.
func (p *BlockPath) String() string {
	return p.Block() + p.Path()
}

// Original returns the text the path was parsed from. Views built with
// ParentPath or ChildPath have no original text and return String().
func (p *BlockPath) Original() string {
	if p.text == "" {
		return p.String()
	}
	return p.text
}

// ParentPath returns a view of the path without its last token.
func (p *BlockPath) ParentPath() *BlockPath {
	if len(p.tokens) == 0 {
		return fromTokens(nil)
	}
	return fromTokens(p.tokens[:len(p.tokens)-1])
}

// ChildPath returns a view of the path without its first token.
func (p *BlockPath) ChildPath() *BlockPath {
	if len(p.tokens) == 0 {
		return fromTokens(nil)
	}
	return fromTokens(p.tokens[1:])
}

// Segments yields the names of the tokens that were present in the source
// text, skipping those the tokenizer synthesized.
func (p *BlockPath) Segments() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, t := range p.tokens {
			if t.synthetic {
				continue
			}
			if !yield(t.Name) {
				return
			}
		}
	}
}

type tokenizer struct {
	w      walker
	loc    *diag.Location
	tokens []Token

	cur     *Token
	working strings.Builder
	inValue bool
	hasEq   bool
}

func (t *tokenizer) fail(msg string, length int) error {
	idx := t.w.index() - length
	if idx < 0 {
		idx = 0
	}
	return &Error{Message: msg, Index: idx, Location: t.loc.Offset(idx)}
}

func (t *tokenizer) inAttribute() bool {
	return t.cur != nil && t.cur.Kind == KindAttribute
}

func (t *tokenizer) begin(kind Kind) {
	t.cur = &Token{Kind: kind}
	t.working.Reset()
	t.inValue = false
	t.hasEq = false
}

func (t *tokenizer) run() error {
	t.begin(KindBlock)
	for {
		c, ok := t.w.next()
		if !ok {
			break
		}
		switch {
		case c == '.' || c == '[':
			if t.inAttribute() {
				return t.fail(MsgUnclosedAttribute, 1)
			}
			if err := t.finish(); err != nil {
				return err
			}
			if c == '.' {
				t.begin(KindClass)
			} else {
				t.begin(KindAttribute)
			}

		case c == ']':
			if !t.inAttribute() {
				return t.fail(InvalidIdent(t.working.String()+"]"), t.working.Len()+1)
			}
			if err := t.finish(); err != nil {
				return err
			}
			t.cur = nil
			if next, ok := t.w.peek(); ok && next != '.' && next != '[' {
				return t.fail(ExpectsSepInsteadRec(string(next)), 0)
			}

		case c == '|' && t.inAttribute() && !t.inValue:
			if t.working.String() != StateNamespace || t.cur.Namespace != "" {
				return t.fail(MsgNamespace, t.working.Len()+1)
			}
			t.cur.Namespace = t.working.String()
			t.working.Reset()

		case c == '=' && t.inAttribute() && !t.inValue:
			t.cur.Name = t.working.String()
			t.working.Reset()
			t.inValue = true
			t.hasEq = true

		case c == '"' || c == '\'':
			if !t.inAttribute() || !t.inValue || t.working.Len() > 0 || t.cur.Quoted {
				return t.fail(InvalidIdent(t.working.String()+string(c)), t.working.Len()+1)
			}
			value := t.w.consume(c)
			if _, closed := t.w.next(); !closed {
				return t.fail(MsgMismatchedQuote, len(value)+1)
			}
			t.cur.Value = value
			t.cur.Quoted = true

		case c == ':':
			if t.inAttribute() || !strings.HasPrefix(t.w.rest(), RootClass[1:]) {
				return t.fail(InvalidIdent(t.working.String()+":"), t.working.Len()+1)
			}
			if err := t.finish(); err != nil {
				return err
			}
			t.w.skip(len(RootClass) - 1)
			t.begin(KindClass)
			t.cur.Name = RootClass
			if next, ok := t.w.peek(); ok && next != '.' && next != '[' {
				return t.fail(ExpectsSepInsteadRec(string(next)), 0)
			}

		case isWhitespace(c):
			return t.fail(MsgWhitespace, 1)

		default:
			if t.inAttribute() && t.cur.Quoted {
				return t.fail(InvalidIdent(string(c)), 1)
			}
			t.working.WriteByte(c)
		}
	}

	if t.inAttribute() {
		return t.fail(MsgUnclosedAttribute, 0)
	}
	if err := t.finish(); err != nil {
		return err
	}

	if !t.has(KindClass) {
		root := Token{Kind: KindClass, Name: RootClass, synthetic: true}
		if i := t.indexOf(KindAttribute); i >= 0 {
			t.tokens = append(t.tokens[:i], append([]Token{root}, t.tokens[i:]...)...)
		} else {
			t.tokens = append(t.tokens, root)
		}
	}
	if !t.has(KindBlock) {
		t.tokens = append([]Token{{Kind: KindBlock, synthetic: true}}, t.tokens...)
	}
	return nil
}

// finish closes the current token, validating its name.
func (t *tokenizer) finish() error {
	if t.cur == nil {
		return nil
	}
	tok := *t.cur
	working := t.working.String()
	t.cur = nil

	switch tok.Kind {
	case KindBlock:
		if working == "" {
			return nil
		}
		if !IsIdent(working) {
			return t.fail(InvalidIdent(working), len(working))
		}
		tok.Name = working

	case KindClass:
		if tok.Name != RootClass {
			if working == "" {
				return t.fail(MsgNoName, 1)
			}
			if !IsIdent(working) {
				return t.fail(InvalidIdent(working), len(working))
			}
			tok.Name = working
		}

	case KindAttribute:
		if t.hasEq {
			if !tok.Quoted {
				if working == "" {
					return t.fail(MsgNoName, 1)
				}
				if !IsIdent(working) {
					return t.fail(InvalidIdent(working), len(working)+1)
				}
				tok.Value = working
			}
		} else {
			tok.Name = working
			tok.Value = AttrPresent
		}
		if tok.Namespace == "" {
			return t.fail(MsgNamespace, len(tok.Name)+1)
		}
		if tok.Name == "" {
			return t.fail(MsgNoName, 1)
		}
		if !IsIdent(tok.Name) {
			return t.fail(InvalidIdent(tok.Name), len(tok.Name)+1)
		}
	}
	return t.add(tok, len(working)+1)
}

func (t *tokenizer) add(tok Token, length int) error {
	if t.has(tok.Kind) {
		return t.fail(MultipleOfType(tok.Kind.String()), length)
	}
	if tok.Kind == KindClass && t.has(KindAttribute) {
		return t.fail(MsgClassAfterAttr, length)
	}
	t.tokens = append(t.tokens, tok)
	return nil
}

func (t *tokenizer) has(kind Kind) bool {
	return t.indexOf(kind) >= 0
}

func (t *tokenizer) indexOf(kind Kind) int {
	for i, tok := range t.tokens {
		if tok.Kind == kind {
			return i
		}
	}
	return -1
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
