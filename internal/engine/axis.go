package engine

import "github.com/thorio/keyremap"

// handleNonKeyEvent is the axis/non-key remap path:
// relative, absolute, switch, and other non-KEY families whose family
// is mapped. It consults the same rule lookup as the key path, then,
// for a matching Remap rule, finds the specific input KeyRef that
// matched this event's code and direction and rewrites accordingly.
func (e *Engine) handleNonKeyEvent(event keyremap.InputEvent) error {
	rule, ok := e.lookupMapping(event.Code, event.Value)
	if !ok || rule.Kind != keyremap.RuleRemap {
		e.tap.Cancel()

		return e.passthroughWithSync(event)
	}

	matched, ok := findMatchingInput(rule.RemapInput, event.Code, event.Value)
	if !ok {
		return nil
	}

	for _, out := range rule.RemapOutput {
		if out.Code.Family == keyremap.FamilyKey {
			if err := e.writeEvent(out.Code, 1, event.Sec, event.Usec); err != nil {
				return err
			}

			if err := e.writeEvent(out.Code, 0, event.Sec, event.Usec); err != nil {
				return err
			}

			continue
		}

		outValue := (event.Value / matched.EffectiveScale()) * out.EffectiveScale()
		if err := e.writeEvent(out.Code, outValue, event.Sec, event.Usec); err != nil {
			return err
		}
	}

	return e.device.WriteSync(event.Sec, event.Usec)
}

func findMatchingInput(input []keyremap.KeyRef, code keyremap.EventCode, value int32) (keyremap.KeyRef, bool) {
	for _, kr := range input {
		if kr.Code == code && kr.MatchesSign(value) {
			return kr, true
		}
	}

	return keyremap.KeyRef{}, false
}

// passthroughWithSync writes event verbatim and follows it with a sync
// marker, used for the catch-all arms of the non-key and key paths
// (unmatched axis events, repeats with no mapping, unknown key values).
func (e *Engine) passthroughWithSync(event keyremap.InputEvent) error {
	if err := e.device.WriteEvent(event); err != nil {
		return err
	}

	return e.device.WriteSync(event.Sec, event.Usec)
}
