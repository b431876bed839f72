package blockparser

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/gosimple/slug"
)

// File name suffixes
const (
	BlockSuffix      = ".block.css"
	DefinitionSuffix = ".block.d.css"
)

// Expectation is the id and name a definition file is expected to declare.
// Empty fields are not checked.
type Expectation struct {
	ID   string `koanf:"id" json:"id,omitempty"`
	Name string `koanf:"name" json:"name,omitempty"`
}

// ImportedFile is a Block file as returned by an Importer.
type ImportedFile struct {
	Identifier   string
	DefaultName  string
	Contents     []byte
	IsDefinition bool
	SourceMap    []byte
	Expected     *Expectation
}

// Importer locates and reads Block files.
type Importer interface {
	// Identifier returns the canonical identifier of path as referenced
	// from the file with identifier from ("" for a root request). Two
	// spellings of the same file must produce the same identifier.
	Identifier(from, path string) (string, error)
	// Import reads the file with the given identifier.
	Import(ctx context.Context, identifier string) (*ImportedFile, error)
	// DebugIdentifier renders an identifier for humans.
	DebugIdentifier(identifier string) string
}

// FSImporter imports Block files from a billy filesystem. Identifiers are
// slash separated paths relative to the filesystem root.
type FSImporter struct {
	fs           billy.Filesystem
	aliases      map[string]string
	expectations map[string]Expectation
}

// NewFSImporter creates an importer over fs. aliases map a path prefix such
// as "ui" to a directory; expectations are keyed by identifier.
func NewFSImporter(fs billy.Filesystem, aliases map[string]string, expectations map[string]Expectation) *FSImporter {
	imp := &FSImporter{
		fs:           fs,
		aliases:      make(map[string]string, len(aliases)),
		expectations: make(map[string]Expectation, len(expectations)),
	}
	for k, v := range aliases {
		imp.aliases[strings.Trim(k, "/")] = normalize(v)
	}
	for k, v := range expectations {
		imp.expectations[normalize(k)] = v
	}
	return imp
}

func normalize(p string) string {
	p = path.Clean("/" + filepath.ToSlash(p))
	return strings.TrimPrefix(p, "/")
}

// Identifier implements Importer.
func (imp *FSImporter) Identifier(from, p string) (string, error) {
	if p == "" {
		return "", errors.New("empty import path")
	}
	p = filepath.ToSlash(p)

	switch {
	case strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../"):
		if from == "" {
			return normalize(p), nil
		}
		return normalize(path.Join(path.Dir(from), p)), nil
	case strings.HasPrefix(p, "/"):
		return normalize(p), nil
	}

	// longest alias first so "ui/forms" wins over "ui"
	names := make([]string, 0, len(imp.aliases))
	for name := range imp.aliases {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	for _, name := range names {
		if p == name || strings.HasPrefix(p, name+"/") {
			return normalize(path.Join(imp.aliases[name], strings.TrimPrefix(p, name))), nil
		}
	}

	if from == "" {
		return normalize(p), nil
	}
	return normalize(path.Join(path.Dir(from), p)), nil
}

// Import implements Importer.
func (imp *FSImporter) Import(_ context.Context, identifier string) (*ImportedFile, error) {
	contents, err := util.ReadFile(imp.fs, identifier)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", identifier, err)
	}

	file := &ImportedFile{
		Identifier:   identifier,
		DefaultName:  DefaultName(identifier),
		Contents:     contents,
		IsDefinition: strings.HasSuffix(identifier, DefinitionSuffix),
	}

	sourceMap, err := util.ReadFile(imp.fs, identifier+".map")
	switch {
	case err == nil:
		file.SourceMap = sourceMap
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("read source map for %s: %w", identifier, err)
	}

	if exp, ok := imp.expectations[identifier]; ok {
		file.Expected = &exp
	}
	return file, nil
}

// DebugIdentifier implements Importer.
func (imp *FSImporter) DebugIdentifier(identifier string) string {
	root := imp.fs.Root()
	if root == "" || root == "/" {
		return identifier
	}
	return filepath.Join(root, filepath.FromSlash(identifier))
}

// DefaultName derives a Block name from a file name:
// "ui/Main Nav.block.css" becomes "main-nav".
func DefaultName(identifier string) string {
	base := path.Base(identifier)
	for _, suffix := range []string{DefinitionSuffix, BlockSuffix, ".css"} {
		if strings.HasSuffix(base, suffix) {
			base = strings.TrimSuffix(base, suffix)
			break
		}
	}
	return slug.Make(base)
}
