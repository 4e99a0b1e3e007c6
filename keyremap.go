// Package keyremap holds the domain types shared by every layer of the
// remapper: the event vocabulary, the declarative rule set, and the
// pure key-set resolver that sits at the heart of the engine. Nothing
// in this package touches a file descriptor or the system clock, so
// it compiles and tests on any platform even though most of the
// module is Linux-only.
package keyremap

import "sort"

// EventFamily is the high-level category an [EventCode] belongs to.
// It mirrors the EV_* event types of the Linux input subsystem.
type EventFamily uint8

const (
	FamilySyn EventFamily = iota
	FamilyKey
	FamilyRel
	FamilyAbs
	FamilyMsc
	FamilySw
	FamilyLed
	FamilySnd
	FamilyRep
	FamilyFF
	FamilyFFStatus
	FamilyPwr

	// FamilyUnknown is the catch-all for event types this package
	// does not recognize. It is never considered "mapped".
	FamilyUnknown
)

// EventCode is a tagged value identifying a family and a code within
// that family, e.g. (FamilyKey, KEY_CAPSLOCK). Equality is structural.
type EventCode struct {
	Family EventFamily
	Code   uint16
}

// InputEvent is a single evdev event: a family-tagged code, a signed
// value, and the kernel-supplied timestamp it arrived with.
type InputEvent struct {
	Sec   int64
	Usec  int64
	Code  EventCode
	Value int32
}

// KeyRef names an [EventCode] together with an integer scale. For key
// codes, Scale is irrelevant and should be normalized to 1. For axis
// codes its sign is a direction filter (match only events whose value
// has the same sign; zero matches either sign) and its magnitude is a
// divisor/multiplier applied when rewriting axis values.
type KeyRef struct {
	Code  EventCode
	Scale int32
}

// signClass reports the two-valued equality class of Scale used by
// [KeyRef.Equal] and [KeyRef.Key]: negative vs. non-negative. This is
// deliberately coarser than [KeyRef.MatchesSign], which treats a zero
// scale as a wildcard rather than as non-negative.
func (k KeyRef) signClass() bool {
	return k.Scale < 0
}

// Equal reports whether two KeyRefs name the same code and fall in the
// same sign-class of scale. Magnitude is not compared.
func (k KeyRef) Equal(other KeyRef) bool {
	return k.Code == other.Code && k.signClass() == other.signClass()
}

// keyRefKey is the map/set key for a KeyRef: it hashes exactly the
// fields [KeyRef.Equal] compares, so map-based sets agree with that
// equality without needing a custom hash table.
type keyRefKey struct {
	code      EventCode
	negative  bool
}

// Key returns the normalized map key for k, consistent with [KeyRef.Equal].
func (k KeyRef) Key() keyRefKey {
	return keyRefKey{code: k.Code, negative: k.signClass()}
}

// MatchesSign reports whether an event with the given value satisfies
// k's direction filter: a zero scale matches either sign, otherwise
// the signs of k.Scale and value must agree. Zero values match a
// non-negative filter (0 is not negative).
func (k KeyRef) MatchesSign(value int32) bool {
	if k.Scale == 0 {
		return true
	}

	return (k.Scale < 0) == (value < 0)
}

// EffectiveScale returns k.Scale, treating a zero scale as 1 for the
// purposes of axis arithmetic.
func (k KeyRef) EffectiveScale() int32 {
	if k.Scale == 0 {
		return 1
	}

	return k.Scale
}

// RuleKind distinguishes the two Rule variants.
type RuleKind uint8

const (
	// RuleDualRole: while Input is held, substitute the Hold set; a
	// quick tap-and-release of Input instead emits press+release of Tap.
	RuleDualRole RuleKind = iota

	// RuleRemap: when every member of RemapInput is held/active and no
	// higher-precedence rule applies, substitute RemapOutput for it.
	RuleRemap
)

// Rule is the tagged variant at the heart of the mapping table: either a
// DualRole mapping or a chorded Remap. Exactly one field group is
// meaningful depending on Kind.
type Rule struct {
	Kind RuleKind

	// DualRole fields.
	Input EventCode
	Hold  []EventCode
	Tap   []EventCode

	// Remap fields.
	RemapInput  []KeyRef
	RemapOutput []KeyRef
}

// InputCodes returns the set of EventCodes this rule reads from, i.e.
// rule.input for a Remap, or the single dual-role Input code.
func (r Rule) InputCodes() []EventCode {
	if r.Kind == RuleDualRole {
		return []EventCode{r.Input}
	}

	codes := make([]EventCode, len(r.RemapInput))
	for i, kr := range r.RemapInput {
		codes[i] = kr.Code
	}

	return codes
}

// SynReportCode is the SYN_REPORT sync marker that delimits a batch of
// writes to the synthetic output device.
var SynReportCode = EventCode{Family: FamilySyn, Code: 0}

// DefaultModifierCodes are the KEY_* codes treated as modifiers when a
// [MappingTable] is built with an empty modifiers set: FN and the
// left/right ALT, META, CTRL, SHIFT pairs.
var DefaultModifierCodes = []uint16{
	KeyFn,
	KeyLeftAlt, KeyRightAlt,
	KeyLeftMeta, KeyRightMeta,
	KeyLeftCtrl, KeyRightCtrl,
	KeyLeftShift, KeyRightShift,
}

// The handful of KEY_* numeric codes this package needs to know by
// name in order to compute the default modifier set. They are part of
// the evdev wire vocabulary (stable ABI), not a Linux syscall, so they
// live here rather than in linux/evdev. The exhaustive code table,
// used for config parsing and device enumeration, lives in linux/evdev.
const (
	KeyFn         uint16 = 0x1d0
	KeyLeftCtrl   uint16 = 29
	KeyLeftShift  uint16 = 42
	KeyLeftAlt    uint16 = 56
	KeyRightCtrl  uint16 = 97
	KeyRightShift uint16 = 54
	KeyRightAlt   uint16 = 100
	KeyLeftMeta   uint16 = 125
	KeyRightMeta  uint16 = 126
)

// MappingTable is the immutable, startup-built configuration the
// engine consults: an ordered rule list (DualRole rules before Remap
// rules, per declaration order within each group) and the set of
// EventCodes treated as modifiers.
type MappingTable struct {
	Rules     []Rule
	Modifiers map[EventCode]struct{}
}

// NewMappingTable builds a table from dualRoles and remaps, in that
// order, and from a modifiers set. An empty modifiers set is replaced
// with [DefaultModifierCodes].
func NewMappingTable(dualRoles, remaps []Rule, modifiers []EventCode) MappingTable {
	var (
		table MappingTable
		code  EventCode
	)

	table.Rules = make([]Rule, 0, len(dualRoles)+len(remaps))
	table.Rules = append(table.Rules, dualRoles...)
	table.Rules = append(table.Rules, remaps...)

	table.Modifiers = make(map[EventCode]struct{})
	if len(modifiers) == 0 {
		for _, code := range DefaultModifierCodes {
			table.Modifiers[EventCode{Family: FamilyKey, Code: code}] = struct{}{}
		}
	} else {
		for _, code = range modifiers {
			table.Modifiers[code] = struct{}{}
		}
	}

	return table
}

// IsModifier reports whether code is in the table's modifier set.
func (t MappingTable) IsModifier(code EventCode) bool {
	_, ok := t.Modifiers[code]

	return ok
}

// MappedFamilies returns the set of event families touched by the
// input side of at least one rule. Events outside this set bypass the
// engine entirely.
func (t MappingTable) MappedFamilies() map[EventFamily]struct{} {
	families := make(map[EventFamily]struct{})

	for _, rule := range t.Rules {
		for _, code := range rule.InputCodes() {
			families[code.Family] = struct{}{}
		}
	}

	return families
}

// OutputCodes returns every EventCode that can appear as a rule output
// (DualRole's hold/tap, Remap's output) — the set of codes that must be
// enabled on the synthetic device before it is created.
func (t MappingTable) OutputCodes() []EventCode {
	seen := make(map[EventCode]struct{})
	codes := make([]EventCode, 0)

	add := func(code EventCode) {
		if _, ok := seen[code]; ok {
			return
		}

		seen[code] = struct{}{}
		codes = append(codes, code)
	}

	for _, rule := range t.Rules {
		if rule.Kind == RuleDualRole {
			for _, code := range rule.Hold {
				add(code)
			}

			for _, code := range rule.Tap {
				add(code)
			}

			continue
		}

		for _, kr := range rule.RemapOutput {
			add(kr.Code)
		}
	}

	return codes
}

// ResolveKeys is the key-set resolver: given the
// set of currently-held physical keys and the mapping table, it
// computes the set of EventCodes that should be held on the output.
// It touches nothing but its arguments.
func ResolveKeys(held map[EventCode]struct{}, table MappingTable) map[EventCode]struct{} {
	primary := cloneSet(held)

	// Phase A: DualRole substitution, applied immediately so a later
	// DualRole rule never sees an earlier rule's pre-substitution input.
	for _, rule := range table.Rules {
		if rule.Kind != RuleDualRole {
			continue
		}

		if _, ok := primary[rule.Input]; !ok {
			continue
		}

		delete(primary, rule.Input)
		for _, code := range rule.Hold {
			primary[code] = struct{}{}
		}
	}

	// Phase B: chord remap, tracked against a secondary "visible" set
	// so non-modifier outputs don't chain into further remaps while
	// modifiers remain visible to later rules.
	visible := cloneSet(primary)

	for _, rule := range table.Rules {
		if rule.Kind != RuleRemap {
			continue
		}

		if !chordSatisfied(rule.RemapInput, visible) {
			continue
		}

		for _, kr := range rule.RemapInput {
			delete(primary, kr.Code)

			if !table.IsModifier(kr.Code) {
				delete(visible, kr.Code)
			}
		}

		for _, kr := range rule.RemapOutput {
			primary[kr.Code] = struct{}{}

			if !table.IsModifier(kr.Code) {
				delete(visible, kr.Code)
			}
		}
	}

	return primary
}

// chordSatisfied reports whether every code referenced by input is
// present in visible.
func chordSatisfied(input []KeyRef, visible map[EventCode]struct{}) bool {
	for _, kr := range input {
		if _, ok := visible[kr.Code]; !ok {
			return false
		}
	}

	return true
}

func cloneSet(set map[EventCode]struct{}) map[EventCode]struct{} {
	clone := make(map[EventCode]struct{}, len(set))
	for code := range set {
		clone[code] = struct{}{}
	}

	return clone
}

// SortModifiersLast stable-sorts codes so every non-modifier precedes
// every modifier — used when ordering a release batch so a dangling
// character doesn't leak out of a combo like CTRL-C.
func SortModifiersLast(codes []EventCode, table MappingTable) {
	sort.SliceStable(codes, func(i, j int) bool {
		return !table.IsModifier(codes[i]) && table.IsModifier(codes[j])
	})
}

// SortModifiersFirst stable-sorts codes so every modifier precedes
// every non-modifier — used when ordering a press batch so e.g. CTRL
// is held before C is tapped.
func SortModifiersFirst(codes []EventCode, table MappingTable) {
	sort.SliceStable(codes, func(i, j int) bool {
		return table.IsModifier(codes[i]) && !table.IsModifier(codes[j])
	})
}
