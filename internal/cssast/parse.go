package cssast

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// ParseError is a CSS syntax error at a byte offset of the source.
type ParseError struct {
	Filename string
	Offset   int
	Err      error
}

func (e *ParseError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("%s: offset %d: %v", e.Filename, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// parserState holds the open rule and at-rule stack while walking the grammar.
type parserState struct {
	src    string
	sheet  *Stylesheet
	stack  []*AtRule
	rule   *Rule
	parser *css.Parser
}

// Parse parses a stylesheet.
func Parse(filename, src string) (*Stylesheet, error) {
	state := &parserState{
		src:    src,
		sheet:  &Stylesheet{Filename: filename, Source: src},
		parser: css.NewParser(parse.NewInputString(src), false),
	}

	prev := 0
	stalled := 0
	for {
		gt, _, data := state.parser.Next()
		offset := state.parser.Offset()
		start := skipTrivia(src, prev)

		switch gt {
		case css.ErrorGrammar:
			err := state.parser.Err()
			if errors.Is(err, io.EOF) {
				state.closeAll()
				return state.sheet, nil
			}
			if err != nil {
				return nil, &ParseError{Filename: filename, Offset: start, Err: err}
			}
			// recoverable; the parser skipped the bad tokens
			if offset == prev {
				stalled++
				if stalled > 2 {
					return nil, &ParseError{Filename: filename, Offset: start, Err: errors.New("unexpected token")}
				}
			}

		case css.AtRuleGrammar:
			state.addAtRule(atRuleName(data), start, offset, false)

		case css.BeginAtRuleGrammar:
			at := state.addAtRule(atRuleName(data), start, offset, true)
			state.stack = append(state.stack, at)

		case css.EndAtRuleGrammar:
			if n := len(state.stack); n > 0 {
				state.stack[n-1].End = offset
				state.stack = state.stack[:n-1]
			}

		case css.BeginRulesetGrammar, css.QualifiedRuleGrammar:
			selector := strings.TrimSuffix(strings.TrimSpace(src[start:offset]), "{")
			state.rule = &Rule{
				Selector:       strings.TrimSpace(selector),
				SelectorOffset: start,
				Parent:         state.parent(),
				Start:          start,
				End:            offset,
			}
			state.appendNode(state.rule)

		case css.EndRulesetGrammar:
			if state.rule != nil {
				state.rule.End = offset
				state.rule = nil
			}

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			state.addDeclaration(string(data), start, offset)
		}

		if offset != prev {
			stalled = 0
		}
		prev = offset
	}
}

func atRuleName(data []byte) string {
	return strings.TrimPrefix(strings.ToLower(string(data)), "@")
}

func (s *parserState) parent() *AtRule {
	if n := len(s.stack); n > 0 {
		return s.stack[n-1]
	}
	return nil
}

func (s *parserState) appendNode(n Node) {
	if parent := s.parent(); parent != nil {
		parent.Children = append(parent.Children, n)
		return
	}
	s.sheet.Nodes = append(s.sheet.Nodes, n)
}

func (s *parserState) addAtRule(name string, start, end int, hasBlock bool) *AtRule {
	paramsStart := skipSpace(s.src, min(start+len(name)+1, end))
	params := strings.TrimRight(s.src[paramsStart:end], " \t\r\n\f;{")
	at := &AtRule{
		Name:         name,
		Params:       params,
		ParamsOffset: paramsStart,
		Parent:       s.parent(),
		HasBlock:     hasBlock,
		Start:        start,
		End:          end,
	}
	s.appendNode(at)
	return at
}

func (s *parserState) addDeclaration(property string, start, end int) {
	raw := strings.TrimRight(s.src[start:end], " \t\r\n\f;}")
	decl := &Declaration{
		Property: property,
		Start:    start,
		End:      start + len(raw),
	}
	decl.ValueOffset = decl.End
	if colon := strings.IndexByte(raw, ':'); colon >= 0 {
		decl.ValueOffset = min(skipSpace(s.src, start+colon+1), decl.End)
	}
	// the source text keeps the spacing the tokens lose, as in `blue !important`
	decl.Value = s.src[decl.ValueOffset:decl.End]

	switch {
	case s.rule != nil:
		s.rule.Declarations = append(s.rule.Declarations, decl)
	case s.parent() != nil:
		at := s.parent()
		at.Declarations = append(at.Declarations, decl)
	}
}

func (s *parserState) closeAll() {
	if s.rule != nil {
		s.rule.End = len(s.src)
		s.rule = nil
	}
	for _, at := range s.stack {
		at.End = len(s.src)
	}
	s.stack = nil
}

// skipTrivia advances past whitespace and comments.
func skipTrivia(src string, i int) int {
	for i < len(src) {
		switch {
		case isSpace(src[i]):
			i++
		case strings.HasPrefix(src[i:], "/*"):
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return len(src)
			}
			i += end + 4
		case strings.HasPrefix(src[i:], "<!--"):
			i += 4
		case strings.HasPrefix(src[i:], "-->"):
			i += 3
		default:
			return i
		}
	}
	return i
}

func skipSpace(src string, i int) int {
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
