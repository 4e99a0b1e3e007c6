package keyremap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func key(code uint16) EventCode {
	return EventCode{Family: FamilyKey, Code: code}
}

func held(codes ...EventCode) map[EventCode]struct{} {
	set := make(map[EventCode]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}

	return set
}

func TestResolveKeys_SimpleRemap(t *testing.T) {
	table := NewMappingTable(nil, []Rule{
		{
			Kind:        RuleRemap,
			RemapInput:  []KeyRef{{Code: key(KeyCapslock), Scale: 1}},
			RemapOutput: []KeyRef{{Code: key(KeyEsc), Scale: 1}},
		},
	}, nil)

	got := ResolveKeys(held(key(KeyCapslock)), table)
	require.Equal(t, held(key(KeyEsc)), got)
}

func TestResolveKeys_DualRoleHold(t *testing.T) {
	table := NewMappingTable([]Rule{
		{
			Kind:  RuleDualRole,
			Input: key(KeyCapslock),
			Hold:  []EventCode{key(KeyLeftCtrl)},
			Tap:   []EventCode{key(KeyEsc)},
		},
	}, nil, nil)

	got := ResolveKeys(held(key(KeyCapslock), key(KeyC)), table)
	require.Equal(t, held(key(KeyLeftCtrl), key(KeyC)), got)
}

// TestResolveKeys_ChordModifierFirstOrdering checks only the resolved
// key set for the chord; the emission order of that set is checked by
// the engine's TestEngine_ChordModifierFirstOrdering.
func TestResolveKeys_ChordModifierFirstOrdering(t *testing.T) {
	table := NewMappingTable(nil, []Rule{
		{
			Kind:        RuleRemap,
			RemapInput:  []KeyRef{{Code: key(KeyLeftAlt), Scale: 1}, {Code: key(KeyTab), Scale: 1}},
			RemapOutput: []KeyRef{{Code: key(KeyLeftCtrl), Scale: 1}, {Code: key(KeyTab), Scale: 1}},
		},
	}, nil)

	got := ResolveKeys(held(key(KeyLeftAlt), key(KeyTab)), table)
	require.Equal(t, held(key(KeyLeftCtrl), key(KeyTab)), got)
}

func TestResolveKeys_ChordRequiresFullInput(t *testing.T) {
	table := NewMappingTable(nil, []Rule{
		{
			Kind:        RuleRemap,
			RemapInput:  []KeyRef{{Code: key(KeyLeftAlt), Scale: 1}, {Code: key(KeyTab), Scale: 1}},
			RemapOutput: []KeyRef{{Code: key(KeyLeftCtrl), Scale: 1}, {Code: key(KeyTab), Scale: 1}},
		},
	}, nil)

	got := ResolveKeys(held(key(KeyLeftAlt)), table)
	require.Equal(t, held(key(KeyLeftAlt)), got)
}

func TestResolveKeys_ModifierStaysVisibleAfterChord(t *testing.T) {
	// A second rule keyed on the chord's modifier input must still see
	// it after the chord consumes it, since modifiers are exempted from
	// the visible-set removal.
	table := NewMappingTable(nil, []Rule{
		{
			Kind:        RuleRemap,
			RemapInput:  []KeyRef{{Code: key(KeyLeftAlt), Scale: 1}, {Code: key(KeyTab), Scale: 1}},
			RemapOutput: []KeyRef{{Code: key(KeyLeftCtrl), Scale: 1}},
		},
		{
			Kind:        RuleRemap,
			RemapInput:  []KeyRef{{Code: key(KeyLeftAlt), Scale: 1}},
			RemapOutput: []KeyRef{{Code: key(KeyLeftShift), Scale: 1}},
		},
	}, nil)

	got := ResolveKeys(held(key(KeyLeftAlt), key(KeyTab)), table)
	require.Equal(t, held(key(KeyLeftCtrl), key(KeyLeftShift)), got)
}

func TestKeyRef_EqualIgnoresMagnitude(t *testing.T) {
	a := KeyRef{Code: EventCode{Family: FamilyRel, Code: 8}, Scale: 2}
	b := KeyRef{Code: EventCode{Family: FamilyRel, Code: 8}, Scale: 5}
	c := KeyRef{Code: EventCode{Family: FamilyRel, Code: 8}, Scale: -1}

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.Equal(t, a.Key(), b.Key())
	require.NotEqual(t, a.Key(), c.Key())
}

func TestKeyRef_MatchesSign(t *testing.T) {
	wildcard := KeyRef{Scale: 0}
	positive := KeyRef{Scale: 3}
	negative := KeyRef{Scale: -3}

	require.True(t, wildcard.MatchesSign(-5))
	require.True(t, wildcard.MatchesSign(5))
	require.True(t, positive.MatchesSign(1))
	require.False(t, positive.MatchesSign(-1))
	require.True(t, negative.MatchesSign(-1))
	require.False(t, negative.MatchesSign(1))
}

func TestKeyRef_EffectiveScale(t *testing.T) {
	require.Equal(t, int32(1), KeyRef{Scale: 0}.EffectiveScale())
	require.Equal(t, int32(4), KeyRef{Scale: 4}.EffectiveScale())
	require.Equal(t, int32(-4), KeyRef{Scale: -4}.EffectiveScale())
}

func TestSortModifiersLastAndFirst(t *testing.T) {
	table := NewMappingTable(nil, nil, nil)

	release := []EventCode{key(KeyLeftCtrl), key(KeyC)}
	SortModifiersLast(release, table)
	require.Equal(t, key(KeyC), release[0])

	press := []EventCode{key(KeyC), key(KeyLeftCtrl)}
	SortModifiersFirst(press, table)
	require.Equal(t, key(KeyLeftCtrl), press[0])
}

func TestMappingTable_OutputCodes(t *testing.T) {
	table := NewMappingTable([]Rule{
		{Kind: RuleDualRole, Input: key(KeyCapslock), Hold: []EventCode{key(KeyLeftCtrl)}, Tap: []EventCode{key(KeyEsc)}},
	}, []Rule{
		{Kind: RuleRemap, RemapInput: []KeyRef{{Code: key(KeyTab)}}, RemapOutput: []KeyRef{{Code: key(KeyEsc)}}},
	}, nil)

	codes := table.OutputCodes()
	require.Contains(t, codes, key(KeyLeftCtrl))
	require.Contains(t, codes, key(KeyEsc))
	require.Len(t, codes, 2)
}

func TestMappingTable_DefaultModifiers(t *testing.T) {
	table := NewMappingTable(nil, nil, nil)

	require.True(t, table.IsModifier(key(KeyLeftCtrl)))
	require.True(t, table.IsModifier(key(KeyFn)))
	require.False(t, table.IsModifier(key(KeyC)))
}

// A handful of non-modifier codes used only by these tests; KeyC/KeyTab/
// KeyEsc aren't part of the package's small modifier-only constant set.
const (
	KeyEsc      uint16 = 1
	KeyC        uint16 = 46
	KeyTab      uint16 = 15
	KeyCapslock uint16 = 58
)
