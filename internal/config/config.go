//go:build linux

// Package config loads and validates the TOML configuration file that
// describes a remapping session: which physical device to use, which
// codes count as modifiers, and the dual-role/remap rule set. Parsing
// itself is an external collaborator by design — the core engine never
// imports this package.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/thorio/keyremap"
	"github.com/thorio/keyremap/linux/evdev"
)

// dualRoleEntry is one element of the TOML `dual_role` array. Input,
// Hold, and Tap accept either a bare key name or a list of them, so
// they're decoded into `any` and normalized in toStringSlice.
type dualRoleEntry struct {
	Input any `toml:"input"`
	Hold  any `toml:"hold"`
	Tap   any `toml:"tap"`
}

// remapEntry is one element of the TOML `remap` array.
type remapEntry struct {
	Input  []string `toml:"input"`
	Output []string `toml:"output"`
}

// File is the decoded shape of the TOML configuration document: which
// device to grab, which codes act as modifiers, and the dual-role and
// remap rule lists.
type File struct {
	DeviceName string          `toml:"device_name"`
	Phys       string          `toml:"phys"`
	Modifiers  []string        `toml:"modifiers"`
	DualRole   []dualRoleEntry `toml:"dual_role"`
	Remap      []remapEntry    `toml:"remap"`
}

// Config is a fully parsed and validated configuration: the device
// selector plus a ready-to-use [keyremap.MappingTable].
type Config struct {
	DeviceName string
	Phys       string
	Table      keyremap.MappingTable
}

// Load reads and parses the TOML file at path and validates it into a
// [Config]. DeviceName is required; every other field is optional.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}

	var file File
	if _, err := toml.Decode(string(data), &file); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}

	return file.validate()
}

func (f File) validate() (Config, error) {
	if f.DeviceName == "" {
		return Config{}, fmt.Errorf("config: device_name is required")
	}

	modifiers, err := parseCodeNames(f.Modifiers)
	if err != nil {
		return Config{}, fmt.Errorf("config: modifiers: %w", err)
	}

	dualRoles, err := parseDualRoles(f.DualRole)
	if err != nil {
		return Config{}, fmt.Errorf("config: dual_role: %w", err)
	}

	remaps, err := parseRemaps(f.Remap)
	if err != nil {
		return Config{}, fmt.Errorf("config: remap: %w", err)
	}

	table := keyremap.NewMappingTable(dualRoles, remaps, modifiers)

	return Config{DeviceName: f.DeviceName, Phys: f.Phys, Table: table}, nil
}

func parseCodeNames(names []string) ([]keyremap.EventCode, error) {
	codes := make([]keyremap.EventCode, 0, len(names))

	for _, name := range names {
		code, ok := evdev.ParseCodeName(name)
		if !ok {
			return nil, fmt.Errorf("unknown code name %q", name)
		}

		codes = append(codes, code)
	}

	return codes, nil
}

func parseDualRoles(entries []dualRoleEntry) ([]keyremap.Rule, error) {
	rules := make([]keyremap.Rule, 0, len(entries))

	for i, entry := range entries {
		inputNames, err := toStringSlice(entry.Input)
		if err != nil {
			return nil, fmt.Errorf("entry %d: input: %w", i, err)
		}

		if len(inputNames) != 1 {
			return nil, fmt.Errorf("entry %d: input must name exactly one key", i)
		}

		input, ok := evdev.ParseCodeName(inputNames[0])
		if !ok {
			return nil, fmt.Errorf("entry %d: unknown code name %q", i, inputNames[0])
		}

		hold, err := parseCodeList(entry.Hold)
		if err != nil {
			return nil, fmt.Errorf("entry %d: hold: %w", i, err)
		}

		tap, err := parseCodeList(entry.Tap)
		if err != nil {
			return nil, fmt.Errorf("entry %d: tap: %w", i, err)
		}

		rules = append(rules, keyremap.Rule{
			Kind:  keyremap.RuleDualRole,
			Input: input,
			Hold:  hold,
			Tap:   tap,
		})
	}

	return rules, nil
}

func parseCodeList(raw any) ([]keyremap.EventCode, error) {
	names, err := toStringSlice(raw)
	if err != nil {
		return nil, err
	}

	return parseCodeNames(names)
}

// toStringSlice normalizes a TOML value that's either a bare string or
// an array of strings, the shape allowed for dual_role's
// input/hold/tap fields.
func toStringSlice(raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))

		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", item)
			}

			out = append(out, s)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("expected string or list of strings, got %T", raw)
	}
}

func parseRemaps(entries []remapEntry) ([]keyremap.Rule, error) {
	rules := make([]keyremap.Rule, 0, len(entries))

	for i, entry := range entries {
		input, err := parseKeyRefs(entry.Input)
		if err != nil {
			return nil, fmt.Errorf("entry %d: input: %w", i, err)
		}

		output, err := parseKeyRefs(entry.Output)
		if err != nil {
			return nil, fmt.Errorf("entry %d: output: %w", i, err)
		}

		rules = append(rules, keyremap.Rule{
			Kind:        keyremap.RuleRemap,
			RemapInput:  input,
			RemapOutput: output,
		})
	}

	return rules, nil
}

func parseKeyRefs(names []string) ([]keyremap.KeyRef, error) {
	refs := make([]keyremap.KeyRef, 0, len(names))

	for _, name := range names {
		ref, err := ParseKeyRef(name)
		if err != nil {
			return nil, err
		}

		refs = append(refs, ref)
	}

	return refs, nil
}

// ParseKeyRef parses the KeyRef string grammar:
// `NAME[±[N]]`. NAME is an evdev code name such as "KEY_A", "BTN_LEFT",
// "REL_WHEEL", or "ABS_X"; BTN_* is normalized to the KEY family by
// [evdev.ParseCodeName]. A trailing '+' or '-' sets the direction
// filter sign; an integer magnitude may follow the sign. Bare KEY/BTN
// names default to scale 1 (direction irrelevant for discrete keys);
// bare names in every other family default to scale 0 (match either
// direction, no rescaling).
func ParseKeyRef(s string) (keyremap.KeyRef, error) {
	name, sign, magnitude, err := splitKeyRefSuffix(s)
	if err != nil {
		return keyremap.KeyRef{}, fmt.Errorf("config.ParseKeyRef(%q): %w", s, err)
	}

	code, ok := evdev.ParseCodeName(name)
	if !ok {
		return keyremap.KeyRef{}, fmt.Errorf("config.ParseKeyRef(%q): unknown code name %q", s, name)
	}

	scale := resolveScale(code, sign, magnitude)

	return keyremap.KeyRef{Code: code, Scale: scale}, nil
}

// splitKeyRefSuffix separates NAME from an optional trailing sign and
// magnitude. sign is 0 when absent, +1 or -1 otherwise; magnitude is 0
// when absent.
func splitKeyRefSuffix(s string) (name string, sign int32, magnitude int32, err error) {
	name = s

	if name == "" {
		return "", 0, 0, fmt.Errorf("empty key reference")
	}

	last := name[len(name)-1]
	digitsStart := len(name)

	for digitsStart > 0 && name[digitsStart-1] >= '0' && name[digitsStart-1] <= '9' {
		digitsStart--
	}

	digits := name[digitsStart:]

	signPos := digitsStart - 1
	if digits != "" && signPos >= 0 && (name[signPos] == '+' || name[signPos] == '-') {
		if name[signPos] == '+' {
			sign = 1
		} else {
			sign = -1
		}

		mag, err := strconv.ParseInt(digits, 10, 32)
		if err != nil {
			return "", 0, 0, fmt.Errorf("invalid scale magnitude %q", digits)
		}

		return name[:signPos], sign, int32(mag), nil
	}

	if last == '+' || last == '-' {
		if last == '+' {
			sign = 1
		} else {
			sign = -1
		}

		return name[:len(name)-1], sign, 0, nil
	}

	return name, 0, 0, nil
}

func resolveScale(code keyremap.EventCode, sign, magnitude int32) int32 {
	if sign == 0 {
		if code.Family == keyremap.FamilyKey {
			return 1
		}

		return 0
	}

	if magnitude == 0 {
		magnitude = 1
	}

	return sign * magnitude
}
