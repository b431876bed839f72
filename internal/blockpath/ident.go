package blockpath

import "regexp"

// identPattern is the CSS <ident-token> grammar: an optional leading hyphen
// followed by a name-start code point, or a double hyphen.
var identPattern = regexp.MustCompile(`^(?:-?(?:[_a-zA-Z]|[^\x00-\x7F]|\\.)|--)(?:[_a-zA-Z0-9-]|[^\x00-\x7F]|\\.)*$`)

// IsIdent reports whether s is a legal CSS identifier.
func IsIdent(s string) bool {
	return identPattern.MatchString(s)
}
