package blockparser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"github.com/yacobolo/cssblocks/internal/block"
	"github.com/yacobolo/cssblocks/internal/blockpath"
	"github.com/yacobolo/cssblocks/internal/diag"
)

// valueItem is a lexed piece of a directive parameter or declaration value:
// a word made of adjacent tokens, or one of the punctuation tokens , ( ) { }.
type valueItem struct {
	tt     css.TokenType
	text   string
	quoted bool // the word is a single string token
}

func (v valueItem) word() bool { return v.tt == css.IdentToken }

// lexItems splits s with the CSS lexer into words separated by whitespace,
// comments and punctuation. A string token is a word of its own and is
// unquoted. Brackets keep their contents, including quotes and whitespace,
// inside the surrounding word.
func lexItems(s string) []valueItem {
	var items []valueItem
	var cur strings.Builder
	depth := 0
	flush := func() {
		if cur.Len() > 0 {
			items = append(items, valueItem{tt: css.IdentToken, text: cur.String()})
			cur.Reset()
		}
	}

	lexer := css.NewLexer(parse.NewInputString(s))
	for {
		tt, data := lexer.Next()
		if tt == css.ErrorToken {
			break
		}
		if depth > 0 {
			switch tt {
			case css.LeftBracketToken:
				depth++
			case css.RightBracketToken:
				depth--
			}
			cur.Write(data)
			continue
		}
		switch tt {
		case css.WhitespaceToken, css.CommentToken:
			flush()
		case css.StringToken:
			flush()
			items = append(items, valueItem{tt: css.IdentToken, text: unquote(string(data)), quoted: true})
		case css.CommaToken, css.LeftParenthesisToken, css.RightParenthesisToken,
			css.LeftBraceToken, css.RightBraceToken:
			flush()
			items = append(items, valueItem{tt: tt, text: string(data)})
		default:
			if tt == css.LeftBracketToken {
				depth++
			}
			cur.Write(data)
		}
	}
	flush()
	return items
}

// parseNames splits a declaration value into names separated by commas or
// whitespace. A name written as one quoted string is unquoted; quotes inside
// a name, as in `o.b[state|label="two words"]`, are kept.
func parseNames(value string) []string {
	var names []string
	for _, item := range lexItems(value) {
		if item.word() && item.text != "" {
			names = append(names, item.text)
		}
	}
	return names
}

// unquote strips one level of matching quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// nameMapping binds a remote (exported) name to a local one.
type nameMapping struct {
	remote string
	local  string
}

var errMalformed = errors.New("malformed")

// referenceParams is the parsed parameter list of @block and @export.
type referenceParams struct {
	names   []nameMapping
	path    string
	hasFrom bool
}

// parseReferenceParams parses `<names> [from "<path>"]`. Bare names outside
// a group import the default export when a path is given.
func parseReferenceParams(params string, requireFrom bool) (*referenceParams, error) {
	out := &referenceParams{}
	items := lexItems(params)
	if n := len(items); n >= 2 && items[n-1].quoted && !items[n-2].quoted && items[n-2].text == "from" {
		out.path = items[n-1].text
		out.hasFrom = true
		items = items[:n-2]
		if out.path == "" {
			return nil, errMalformed
		}
	} else if requireFrom {
		return nil, errMalformed
	}

	mappings, err := parseNameList(items, out.hasFrom)
	if err != nil {
		return nil, err
	}
	out.names = mappings
	return out, nil
}

func parseNameList(items []valueItem, bareIsDefault bool) ([]nameMapping, error) {
	var out []nameMapping
	for i := 0; i < len(items); i++ {
		item := items[i]
		switch item.tt {
		case css.CommaToken:
			continue
		case css.LeftParenthesisToken, css.LeftBraceToken:
			closing := css.RightParenthesisToken
			if item.tt == css.LeftBraceToken {
				closing = css.RightBraceToken
			}
			end := i + 1
			for end < len(items) && items[end].tt != closing {
				end++
			}
			if end == len(items) {
				return nil, errMalformed
			}
			group, err := parseGroup(items[i+1 : end])
			if err != nil {
				return nil, err
			}
			out = append(out, group...)
			i = end
		case css.IdentToken:
			if item.quoted {
				return nil, errMalformed
			}
			if bareIsDefault {
				out = append(out, nameMapping{remote: block.DefaultExport, local: item.text})
			} else {
				out = append(out, nameMapping{remote: item.text, local: item.text})
			}
		default:
			return nil, errMalformed
		}
	}
	if len(out) == 0 {
		return nil, errMalformed
	}
	return out, nil
}

// parseGroup parses the inside of `( a, b as c )`.
func parseGroup(items []valueItem) ([]nameMapping, error) {
	var out []nameMapping
	var words []string
	flush := func() error {
		switch {
		case len(words) == 0:
		case len(words) == 1:
			out = append(out, nameMapping{remote: words[0], local: words[0]})
		case len(words) == 3 && words[1] == "as":
			out = append(out, nameMapping{remote: words[0], local: words[2]})
		default:
			return errMalformed
		}
		words = words[:0]
		return nil
	}
	for _, item := range items {
		switch {
		case item.tt == css.CommaToken:
			if err := flush(); err != nil {
				return nil, err
			}
		case item.word() && !item.quoted:
			words = append(words, item.text)
		default:
			return nil, errMalformed
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errMalformed
	}
	return out, nil
}

// checkNames rejects names that are not CSS identifiers.
func checkNames(names []nameMapping) error {
	for _, n := range names {
		for _, name := range []string{n.remote, n.local} {
			if !blockpath.IsIdent(name) {
				return fmt.Errorf("%q is not a legal block name", name)
			}
		}
	}
	return nil
}

// locate returns the location of text inside the byte range [start, end)
// of the source, falling back to the whole range.
func (p *fileParser) locate(start, end int, text string) *diag.Location {
	src := p.sheet.Source
	if start >= 0 && end <= len(src) && start <= end {
		if i := strings.Index(src[start:end], text); i >= 0 {
			return p.source.Range(start+i, start+i+len(text))
		}
	}
	return p.source.Range(start, end)
}
