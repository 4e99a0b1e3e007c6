package engine

import "github.com/thorio/keyremap"

// tapDetector tracks the most recent dual-role press candidate. At
// most one key can be "tapping" at a time; arming a
// new candidate or cancelling replaces whatever was there before.
type tapDetector struct {
	candidate *keyremap.EventCode
}

// Arm replaces the current candidate with code.
func (t *tapDetector) Arm(code keyremap.EventCode) {
	c := code
	t.candidate = &c
}

// Cancel clears the current candidate.
func (t *tapDetector) Cancel() {
	t.candidate = nil
}

// Take clears and returns the current candidate, if any.
func (t *tapDetector) Take() (keyremap.EventCode, bool) {
	if t.candidate == nil {
		return keyremap.EventCode{}, false
	}

	code := *t.candidate
	t.candidate = nil

	return code, true
}

const tapWindowMillis = 200

// maybeEmitTap implements the release half of tap detection: if
// code is a DualRole input, the key that was tapping matches it, and
// the hold duration was within the tap window, emit press+release of
// the rule's tap sequence. The emission happens without going through
// [Engine.computeAndApplyKeys]/[OutputState.Apply] — the source project
// leaves output_keys bookkeeping unaudited here; this repo preserves
// that observable fire-and-forget
// behavior rather than silently correcting it.
func (e *Engine) maybeEmitTap(code keyremap.EventCode, pressedAt, releasedAt pressTime) error {
	rule, ok := e.lookupDualRoleMapping(code)
	if !ok {
		return nil
	}

	candidate, wasTapping := e.tap.Take()
	if !wasTapping || candidate != code {
		return nil
	}

	if millisSince(pressedAt, releasedAt) > tapWindowMillis {
		return nil
	}

	for _, tapCode := range rule.Tap {
		event := keyremap.InputEvent{Sec: releasedAt.sec, Usec: releasedAt.usec, Code: tapCode, Value: 1}
		if err := e.device.WriteEvent(event); err != nil {
			return err
		}
	}

	if err := e.device.WriteSync(releasedAt.sec, releasedAt.usec); err != nil {
		return err
	}

	for _, tapCode := range rule.Tap {
		event := keyremap.InputEvent{Sec: releasedAt.sec, Usec: releasedAt.usec, Code: tapCode, Value: 0}
		if err := e.device.WriteEvent(event); err != nil {
			return err
		}
	}

	return e.device.WriteSync(releasedAt.sec, releasedAt.usec)
}
