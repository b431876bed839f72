// Package block is the semantic model of a Block file: its classes and
// states, the Blocks it references and exports, its base Block and the
// Blocks it implements.
//
// A Block is mutated only by the goroutine constructing it. Once
// construction finishes it is shared read-only.
package block

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/google/uuid"

	"github.com/yacobolo/cssblocks/internal/blockpath"
	"github.com/yacobolo/cssblocks/internal/diag"
)

// ErrAlreadySet is returned when a set-once property is assigned twice.
var ErrAlreadySet = errors.New("already set")

func errAlreadySet(what string, current any) error {
	return fmt.Errorf("%s %w to %v", what, ErrAlreadySet, current)
}

// Block is the model of one Block file.
type Block struct {
	identifier   string
	name         string
	guid         string
	isDefinition bool

	root       *BlockClass
	classes    map[string]*BlockClass
	classOrder []string

	references map[string]*Block
	refPaths   map[string]string
	exports    map[string]*Block
	base       *Block
	baseName   string
	implements []*Block

	errors diag.List
	debug  []string
}

// New creates an empty Block for the file identifier.
func New(identifier, name string) *Block {
	b := &Block{
		identifier: identifier,
		name:       name,
		guid:       GenerateGUID(identifier),
		classes:    make(map[string]*BlockClass),
		references: make(map[string]*Block),
		refPaths:   make(map[string]string),
		exports:    make(map[string]*Block),
	}
	b.root = newClass(b, blockpath.RootClass)
	b.exports[DefaultExport] = b
	return b
}

// GenerateGUID derives a short stable id from a file identifier.
func GenerateGUID(identifier string) string {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(identifier))
	return id.String()[:8]
}

func (b *Block) Identifier() string { return b.identifier }
func (b *Block) Name() string       { return b.name }
func (b *Block) GUID() string       { return b.guid }

// SetName overrides the name the Block was created with.
func (b *Block) SetName(name string) { b.name = name }

// SetGUID pins the Block's id, as definition files do.
func (b *Block) SetGUID(guid string) { b.guid = guid }

// IsDefinition reports whether the Block was read from a definition file.
func (b *Block) IsDefinition() bool { return b.isDefinition }

// MarkDefinition flags the Block as read from a definition file.
func (b *Block) MarkDefinition() { b.isDefinition = true }

// RootClass returns the class representing the Block's root element.
func (b *Block) RootClass() *BlockClass { return b.root }

// Class returns the named class, the root class for blockpath.RootClass, or nil.
func (b *Block) Class(name string) *BlockClass {
	if name == blockpath.RootClass {
		return b.root
	}
	return b.classes[name]
}

// EnsureClass returns the named class, creating it on first use.
func (b *Block) EnsureClass(name string) *BlockClass {
	if c := b.Class(name); c != nil {
		return c
	}
	c := newClass(b, name)
	b.classes[name] = c
	b.classOrder = append(b.classOrder, name)
	return c
}

// Classes returns the root class followed by the other classes in creation order.
func (b *Block) Classes() []*BlockClass {
	out := []*BlockClass{b.root}
	for _, name := range b.classOrder {
		out = append(out, b.classes[name])
	}
	return out
}

// ResolveClass looks a class up on this Block and then its base Blocks.
func (b *Block) ResolveClass(name string) *BlockClass {
	for blk := b; blk != nil; blk = blk.base {
		if c := blk.Class(name); c != nil {
			return c
		}
	}
	return nil
}

// AddReference binds localName to a referenced Block. path is the import
// path, kept for diagnostics.
func (b *Block) AddReference(localName, path string, ref *Block) error {
	if _, ok := b.references[localName]; ok {
		return errAlreadySet("reference "+localName, b.refPaths[localName])
	}
	b.references[localName] = ref
	b.refPaths[localName] = path
	return nil
}

// Reference returns the Block bound to name in this Block's scope, looking
// through base Blocks.
func (b *Block) Reference(name string) *Block {
	for blk := b; blk != nil; blk = blk.base {
		if ref, ok := blk.references[name]; ok {
			return ref
		}
	}
	return nil
}

// ReferencePath returns the import path that bound name, or "".
func (b *Block) ReferencePath(name string) string {
	return b.refPaths[name]
}

// References returns the local reference names, sorted.
func (b *Block) References() []string {
	return sortedKeys(b.references)
}

// AddExport exposes ref under name.
func (b *Block) AddExport(name string, ref *Block) error {
	if existing, ok := b.exports[name]; ok {
		return errAlreadySet("export "+name, existing.Identifier())
	}
	b.exports[name] = ref
	return nil
}

// Export returns the Block exported under name, or nil.
func (b *Block) Export(name string) *Block {
	return b.exports[name]
}

// Exports returns the exported names, sorted.
func (b *Block) Exports() []string {
	return sortedKeys(b.exports)
}

// SetBase sets the Block this one extends.
func (b *Block) SetBase(name string, base *Block) error {
	if b.base != nil {
		return errAlreadySet("base block", b.baseName)
	}
	b.base, b.baseName = base, name
	return nil
}

func (b *Block) Base() *Block     { return b.base }
func (b *Block) BaseName() string { return b.baseName }

// AddImplementation records that this Block implements other.
func (b *Block) AddImplementation(other *Block) error {
	if slices.Contains(b.implements, other) {
		return errAlreadySet("implementation", other.Identifier())
	}
	b.implements = append(b.implements, other)
	return nil
}

// Implementations returns the implemented Blocks in declaration order.
func (b *Block) Implementations() []*Block {
	return slices.Clone(b.implements)
}

// AddError records a non-fatal diagnostic.
func (b *Block) AddError(err *diag.Error) {
	b.errors.Add(err)
}

// Errors returns the recorded diagnostics.
func (b *Block) Errors() []*diag.Error {
	return b.errors.Errors()
}

// Err combines the recorded diagnostics, or returns nil.
func (b *Block) Err() error {
	return b.errors.Err()
}

// Valid reports whether no diagnostics were recorded.
func (b *Block) Valid() bool {
	return b.errors.Len() == 0
}

// AddDebug appends a line to the Block's debug comment.
func (b *Block) AddDebug(line string) {
	b.debug = append(b.debug, line)
}

// DebugComments returns the lines added with AddDebug.
func (b *Block) DebugComments() []string {
	return slices.Clone(b.debug)
}

// Styles returns every style declared directly on the Block.
func (b *Block) Styles() []Style {
	var out []Style
	for _, c := range b.Classes() {
		out = append(out, c.Styles()...)
	}
	return out
}

// GlobalAttributeValues returns the root states other Blocks may select.
func (b *Block) GlobalAttributeValues() []*AttrValue {
	var out []*AttrValue
	for blk := b; blk != nil; blk = blk.base {
		for _, v := range blk.root.AttributeValues() {
			if v.IsGlobal() {
				out = append(out, v)
			}
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
