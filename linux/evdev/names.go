//go:build linux

package evdev

import (
	"sort"
	"strings"

	"github.com/thorio/keyremap"
)

// Family classifies a raw evdev event type (the Type field of struct
// input_event) into an [keyremap.EventFamily]. Families this package
// does not recognize map to keyremap.FamilyUnknown: Family is a total
// function, and an unrecognized type is never considered "mapped".
func Family(rawType uint16) keyremap.EventFamily {
	switch rawType {
	case EV_SYN:
		return keyremap.FamilySyn
	case EV_KEY:
		return keyremap.FamilyKey
	case EV_REL:
		return keyremap.FamilyRel
	case EV_ABS:
		return keyremap.FamilyAbs
	case EV_MSC:
		return keyremap.FamilyMsc
	case EV_SW:
		return keyremap.FamilySw
	case EV_LED:
		return keyremap.FamilyLed
	case EV_SND:
		return keyremap.FamilySnd
	case EV_REP:
		return keyremap.FamilyRep
	case EV_FF:
		return keyremap.FamilyFF
	case EV_FF_STATUS:
		return keyremap.FamilyFFStatus
	case EV_PWR:
		return keyremap.FamilyPwr
	default:
		return keyremap.FamilyUnknown
	}
}

// rawType returns the EV_* type value a family is decoded from. It is
// the inverse of [Family] for the families config/device code can
// actually name.
func rawType(family keyremap.EventFamily) (uint16, bool) {
	switch family {
	case keyremap.FamilySyn:
		return EV_SYN, true
	case keyremap.FamilyKey:
		return EV_KEY, true
	case keyremap.FamilyRel:
		return EV_REL, true
	case keyremap.FamilyAbs:
		return EV_ABS, true
	case keyremap.FamilyMsc:
		return EV_MSC, true
	case keyremap.FamilySw:
		return EV_SW, true
	case keyremap.FamilyLed:
		return EV_LED, true
	case keyremap.FamilySnd:
		return EV_SND, true
	case keyremap.FamilyRep:
		return EV_REP, true
	case keyremap.FamilyFF:
		return EV_FF, true
	case keyremap.FamilyFFStatus:
		return EV_FF_STATUS, true
	case keyremap.FamilyPwr:
		return EV_PWR, true
	default:
		return 0, false
	}
}

// namePrefixFamily maps a config grammar name's prefix to the family
// it belongs to. BTN_* is normalized to the KEY family, matching how
// button codes are treated as keys throughout this package.
var namePrefixFamily = map[string]keyremap.EventFamily{
	"KEY": keyremap.FamilyKey,
	"BTN": keyremap.FamilyKey,
	"REL": keyremap.FamilyRel,
	"ABS": keyremap.FamilyAbs,
	"SW":  keyremap.FamilySw,
	"LED": keyremap.FamilyLed,
	"SND": keyremap.FamilySnd,
	"SYN": keyremap.FamilySyn,
	"MSC": keyremap.FamilyMsc,
}

// ParseCodeName resolves a bare evdev code name such as "KEY_A",
// "BTN_LEFT", "REL_WHEEL", or "ABS_X" to an [keyremap.EventCode].
func ParseCodeName(name string) (keyremap.EventCode, bool) {
	prefix, _, ok := strings.Cut(name, "_")
	if !ok {
		return keyremap.EventCode{}, false
	}

	family, ok := namePrefixFamily[prefix]
	if !ok {
		return keyremap.EventCode{}, false
	}

	code, ok := nameToCode[name]
	if !ok {
		return keyremap.EventCode{}, false
	}

	return keyremap.EventCode{Family: family, Code: code}, true
}

// KeyNames returns every KEY_*/BTN_* name this package knows, sorted,
// for the `list-keys` CLI subcommand.
func KeyNames() []string {
	names := make([]string, 0, len(nameToCode))

	for name := range nameToCode {
		if strings.HasPrefix(name, "KEY_") || strings.HasPrefix(name, "BTN_") {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	return names
}
