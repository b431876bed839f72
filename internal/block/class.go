package block

import (
	"slices"

	"github.com/yacobolo/cssblocks/internal/blockpath"
)

// Composition is a foreign style a class requires, optionally only while
// some of the class's own states are applied.
type Composition struct {
	Style      Style
	Conditions []*AttrValue
}

// BlockClass is a class of a Block. The root class is named blockpath.RootClass.
type BlockClass struct {
	styleState
	block *Block
	name  string

	attrs      map[AttrKey]*Attribute
	attrOrder  []AttrKey
	values     map[AttrValueKey]*AttrValue
	valueOrder []AttrValueKey

	composes []Composition
}

var _ Style = (*BlockClass)(nil)

func newClass(b *Block, name string) *BlockClass {
	return &BlockClass{
		block:  b,
		name:   name,
		attrs:  make(map[AttrKey]*Attribute),
		values: make(map[AttrValueKey]*AttrValue),
	}
}

func (c *BlockClass) Block() *Block { return c.block }
func (c *BlockClass) Name() string  { return c.name }
func (c *BlockClass) IsRoot() bool  { return c.name == blockpath.RootClass }

func (c *BlockClass) AsSource() string {
	if c.IsRoot() {
		return blockpath.RootClass
	}
	return "." + c.name
}

func (c *BlockClass) String() string {
	return c.block.Name() + c.AsSource()
}

func (c *BlockClass) interfaceKey() string {
	return c.AsSource()
}

// sourcePrefix is what precedes an attribute of this class in source form.
// Root states are written without the root class.
func (c *BlockClass) sourcePrefix() string {
	if c.IsRoot() {
		return ""
	}
	return c.AsSource()
}

// EnsureAttributeValue returns the value for tok, creating it and its
// attribute group on first use.
func (c *BlockClass) EnsureAttributeValue(tok AttrToken) *AttrValue {
	if v, ok := c.values[tok.Key()]; ok {
		return v
	}
	attr := c.ensureAttribute(tok.GroupKey())
	v := &AttrValue{attr: attr, value: tok.Value, quoted: tok.Quoted}
	attr.values = append(attr.values, v)
	c.values[tok.Key()] = v
	c.valueOrder = append(c.valueOrder, tok.Key())
	return v
}

func (c *BlockClass) ensureAttribute(key AttrKey) *Attribute {
	if a, ok := c.attrs[key]; ok {
		return a
	}
	a := &Attribute{class: c, key: key}
	c.attrs[key] = a
	c.attrOrder = append(c.attrOrder, key)
	return a
}

// EnsureAttribute returns the attribute group for key, creating it on first use.
func (c *BlockClass) EnsureAttribute(key AttrKey) *Attribute {
	return c.ensureAttribute(key)
}

// AttributeValue returns the value declared on this class, or nil.
func (c *BlockClass) AttributeValue(key AttrValueKey) *AttrValue {
	return c.values[key]
}

// ResolveAttributeValue looks the value up on this class and then on the
// same-named classes of base Blocks.
func (c *BlockClass) ResolveAttributeValue(key AttrValueKey) *AttrValue {
	for cls := c; cls != nil; cls = cls.Base() {
		if v := cls.AttributeValue(key); v != nil {
			return v
		}
	}
	return nil
}

// Attribute returns the attribute group declared on this class, or nil.
func (c *BlockClass) Attribute(key AttrKey) *Attribute {
	return c.attrs[key]
}

// Attributes returns the attribute groups in creation order.
func (c *BlockClass) Attributes() []*Attribute {
	out := make([]*Attribute, 0, len(c.attrOrder))
	for _, k := range c.attrOrder {
		out = append(out, c.attrs[k])
	}
	return out
}

// AttributeValues returns every value of every group in creation order.
func (c *BlockClass) AttributeValues() []*AttrValue {
	out := make([]*AttrValue, 0, len(c.valueOrder))
	for _, k := range c.valueOrder {
		out = append(out, c.values[k])
	}
	return out
}

// Base returns the same-named class of the base Block, if any.
func (c *BlockClass) Base() *BlockClass {
	for base := c.block.Base(); base != nil; base = base.Base() {
		if cls := base.Class(c.name); cls != nil {
			return cls
		}
	}
	return nil
}

// AddComposition records that the class composes style.
func (c *BlockClass) AddComposition(style Style, conditions []*AttrValue) {
	c.composes = append(c.composes, Composition{Style: style, Conditions: slices.Clone(conditions)})
}

// Compositions returns the composed styles in declaration order.
func (c *BlockClass) Compositions() []Composition {
	return slices.Clone(c.composes)
}

// Styles returns the class followed by its attribute values.
func (c *BlockClass) Styles() []Style {
	out := []Style{c}
	for _, v := range c.AttributeValues() {
		out = append(out, v)
	}
	return out
}
