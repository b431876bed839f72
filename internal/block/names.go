package block

// DefaultExport is the name every Block exports itself under.
const DefaultExport = "default"

var reservedNames = map[string]struct{}{
	DefaultExport: {},
	"html":        {},
	"svg":         {},
	"math":        {},
	"xlink":       {},
	"xml":         {},
	"xmlns":       {},
}

// IsReserved reports whether name can never be used as a block alias.
func IsReserved(name string) bool {
	_, ok := reservedNames[name]
	return ok
}
