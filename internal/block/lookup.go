package block

import (
	"github.com/yacobolo/cssblocks/internal/blockpath"
)

// Lookup resolves a path such as `nav.item[state|active]` relative to this
// Block. Referenced Blocks and base Blocks are searched. It returns nil when
// nothing matches.
func (b *Block) Lookup(path string) (Style, error) {
	p, err := blockpath.Parse(path, nil)
	if err != nil {
		return nil, err
	}
	return b.LookupPath(p), nil
}

// LookupPath is Lookup for an already parsed path.
func (b *Block) LookupPath(p *blockpath.BlockPath) Style {
	target := b
	if name := p.Block(); name != "" {
		target = b.Reference(name)
		if target == nil {
			return nil
		}
	}

	cls := target.ResolveClass(p.Class())
	if cls == nil {
		return nil
	}
	attr := p.Attribute()
	if attr == nil {
		return cls
	}
	v := cls.ResolveAttributeValue(AttrValueKey{Namespace: attr.Namespace, Name: attr.Name, Value: attr.Value})
	if v == nil {
		return nil
	}
	return v
}

// Interface returns every style of the Block, own and inherited, keyed by
// its path within the Block. Own styles shadow inherited ones.
func (b *Block) Interface() map[string]Style {
	var chain []*Block
	for blk := b; blk != nil; blk = blk.base {
		chain = append(chain, blk)
	}
	out := make(map[string]Style)
	for i := len(chain) - 1; i >= 0; i-- {
		for _, s := range chain[i].Styles() {
			out[interfaceKey(s)] = s
		}
	}
	return out
}

// MissingImplementations lists, sorted, the paths of other's interface that
// have no counterpart in this Block's interface.
func (b *Block) MissingImplementations(other *Block) []string {
	own := b.Interface()
	var missing []string
	for key := range other.Interface() {
		if _, ok := own[key]; !ok {
			missing = append(missing, key)
		}
	}
	return sortedKeys(toSet(missing))
}

func interfaceKey(s Style) string {
	switch s := s.(type) {
	case *BlockClass:
		return s.interfaceKey()
	case *AttrValue:
		return s.interfaceKey()
	}
	return s.AsSource()
}

func toSet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}
