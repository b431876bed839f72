package block

import (
	"slices"

	"github.com/yacobolo/cssblocks/internal/diag"
)

// Style is anything a rule can target: a class (including the root) or an
// attribute value of a class.
type Style interface {
	Block() *Block
	// AsSource renders the style the way it is written inside its own Block.
	AsSource() string
	// String renders the style qualified by its Block's name.
	String() string

	PresetClass() (string, bool)
	SetPresetClass(name string) error
	InterfaceIndex() (int, bool)
	SetInterfaceIndex(i int) error
	AddAlias(alias string)
	Aliases() []string
	AddRuleset(rs Ruleset)
	Rulesets() []Ruleset
}

// Declaration is a property/value pair applied by a ruleset.
type Declaration struct {
	Property string
	Value    string
}

// Ruleset records a rule that targets a style.
type Ruleset struct {
	Selector     string
	Location     *diag.Location
	Declarations []Declaration
}

// styleState carries the bookkeeping shared by every kind of style.
type styleState struct {
	presetClass    string
	hasPreset      bool
	interfaceIndex int
	hasIndex       bool
	aliases        []string
	rulesets       []Ruleset
}

func (s *styleState) PresetClass() (string, bool) {
	return s.presetClass, s.hasPreset
}

func (s *styleState) SetPresetClass(name string) error {
	if s.hasPreset && s.presetClass != name {
		return errAlreadySet("block-class", s.presetClass)
	}
	s.presetClass, s.hasPreset = name, true
	return nil
}

func (s *styleState) InterfaceIndex() (int, bool) {
	return s.interfaceIndex, s.hasIndex
}

func (s *styleState) SetInterfaceIndex(i int) error {
	if s.hasIndex && s.interfaceIndex != i {
		return errAlreadySet("block-interface-index", s.interfaceIndex)
	}
	s.interfaceIndex, s.hasIndex = i, true
	return nil
}

func (s *styleState) AddAlias(alias string) {
	if !slices.Contains(s.aliases, alias) {
		s.aliases = append(s.aliases, alias)
	}
}

func (s *styleState) Aliases() []string {
	out := slices.Clone(s.aliases)
	slices.Sort(out)
	return out
}

func (s *styleState) AddRuleset(rs Ruleset) {
	s.rulesets = append(s.rulesets, rs)
}

func (s *styleState) Rulesets() []Ruleset {
	return slices.Clone(s.rulesets)
}
