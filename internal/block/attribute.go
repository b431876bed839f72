package block

import (
	"slices"

	"github.com/yacobolo/cssblocks/internal/blockpath"
)

// AttrKey identifies an attribute group of a class.
type AttrKey struct {
	Namespace string
	Name      string
}

// AttrValueKey identifies a single attribute value of a class.
type AttrValueKey struct {
	Namespace string
	Name      string
	Value     string
}

// AttrToken is the normalized form of an attribute selector. Value is
// blockpath.AttrPresent for presence selectors.
type AttrToken struct {
	Namespace string
	Name      string
	Value     string
	Quoted    bool
}

// Key returns the value key of the token.
func (t AttrToken) Key() AttrValueKey {
	return AttrValueKey{Namespace: t.Namespace, Name: t.Name, Value: t.Value}
}

// GroupKey returns the attribute group key of the token.
func (t AttrToken) GroupKey() AttrKey {
	return AttrKey{Namespace: t.Namespace, Name: t.Name}
}

// Attribute groups the values of one namespaced attribute on a class.
type Attribute struct {
	class  *BlockClass
	key    AttrKey
	global bool
	values []*AttrValue
}

func (a *Attribute) Class() *BlockClass { return a.class }
func (a *Attribute) Name() string       { return a.key.Name }
func (a *Attribute) Namespace() string  { return a.key.Namespace }
func (a *Attribute) Key() AttrKey       { return a.key }

// IsGlobal reports whether the attribute may be selected from other Blocks.
func (a *Attribute) IsGlobal() bool { return a.global }

// SetGlobal marks every value of the attribute as globally selectable.
func (a *Attribute) SetGlobal() { a.global = true }

// Values returns the values of the attribute in creation order.
func (a *Attribute) Values() []*AttrValue {
	return slices.Clone(a.values)
}

// AsSource renders the attribute without a value, e.g. `.foo[state|size]`.
func (a *Attribute) AsSource() string {
	return a.class.sourcePrefix() + "[" + a.key.Namespace + "|" + a.key.Name + "]"
}

// AttrValue is a single state of a class.
type AttrValue struct {
	styleState
	attr   *Attribute
	value  string
	quoted bool
}

var _ Style = (*AttrValue)(nil)

func (v *AttrValue) Block() *Block         { return v.attr.class.block }
func (v *AttrValue) Class() *BlockClass    { return v.attr.class }
func (v *AttrValue) Attribute() *Attribute { return v.attr }
func (v *AttrValue) Value() string         { return v.value }

// IsGlobal reports whether the value's attribute was declared global.
func (v *AttrValue) IsGlobal() bool { return v.attr.global }

// IsPresence reports whether the value selects the attribute by presence.
func (v *AttrValue) IsPresence() bool { return v.value == blockpath.AttrPresent }

func (v *AttrValue) Key() AttrValueKey {
	return AttrValueKey{Namespace: v.attr.key.Namespace, Name: v.attr.key.Name, Value: v.value}
}

func (v *AttrValue) Token() AttrToken {
	return AttrToken{Namespace: v.attr.key.Namespace, Name: v.attr.key.Name, Value: v.value, Quoted: v.quoted}
}

func (v *AttrValue) AsSource() string {
	return v.attr.class.sourcePrefix() + v.selector()
}

func (v *AttrValue) String() string {
	return v.Block().Name() + v.interfaceKey()
}

func (v *AttrValue) interfaceKey() string {
	return v.attr.class.AsSource() + v.selector()
}

func (v *AttrValue) selector() string {
	tok := blockpath.Token{
		Kind:      blockpath.KindAttribute,
		Namespace: v.attr.key.Namespace,
		Name:      v.attr.key.Name,
		Value:     v.value,
		Quoted:    v.value != blockpath.AttrPresent && !blockpath.IsIdent(v.value),
	}
	return tok.String()
}
