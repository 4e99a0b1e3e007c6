package engine

import (
	"sort"

	"github.com/thorio/keyremap"
)

// lookupDualRoleMapping returns the DualRole rule whose Input equals
// code, if any. Used by the release path to decide whether a tap
// should be considered.
func (e *Engine) lookupDualRoleMapping(code keyremap.EventCode) (keyremap.Rule, bool) {
	for _, rule := range e.table.Rules {
		if rule.Kind == keyremap.RuleDualRole && rule.Input == code {
			return rule, true
		}
	}

	return keyremap.Rule{}, false
}

// lookupMapping returns the best matching rule for an event whose code
// is code and whose value is value: a DualRole rule
// with a matching Input wins outright; otherwise the Remap rule with
// the most input keys among those whose chord is fully satisfied.
func (e *Engine) lookupMapping(code keyremap.EventCode, value int32) (keyremap.Rule, bool) {
	if rule, ok := e.lookupDualRoleMapping(code); ok {
		return rule, true
	}

	candidates := make([]keyremap.Rule, 0)

	for _, rule := range e.table.Rules {
		if rule.Kind != keyremap.RuleRemap {
			continue
		}

		codeMatched := false
		allMatched := true

		for _, kr := range rule.RemapInput {
			switch {
			case kr.Code == code:
				if code.Family == keyremap.FamilyKey {
					codeMatched = true
				} else {
					codeMatched = kr.MatchesSign(value)
				}
			case !e.input.Contains(kr.Code):
				allMatched = false
			}
		}

		if codeMatched && allMatched {
			candidates = append(candidates, rule)
		}
	}

	if len(candidates) == 0 {
		return keyremap.Rule{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i].RemapInput) > len(candidates[j].RemapInput)
	})

	return candidates[0], true
}
