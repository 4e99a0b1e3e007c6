package engine

import "github.com/thorio/keyremap"

// computeAndApplyKeys is the diff-and-emit core of the engine.
// It resolves the desired key set, diffs it against the output state,
// and writes a release batch (non-modifiers first) followed by a press
// batch (modifiers first), each closed with a sync marker.
func (e *Engine) computeAndApplyKeys(sec, usec int64) error {
	desired := keyremap.ResolveKeys(e.input.Keys(), e.table)
	current := e.output.Keys()

	toRelease := setDifference(current, desired)
	toPress := setDifference(desired, current)

	if len(toRelease) > 0 {
		keyremap.SortModifiersLast(toRelease, e.table)

		if err := e.emitKeys(toRelease, sec, usec, 0); err != nil {
			return err
		}
	}

	if len(toPress) > 0 {
		keyremap.SortModifiersFirst(toPress, e.table)

		if err := e.emitKeys(toPress, sec, usec, 1); err != nil {
			return err
		}
	}

	return nil
}

func setDifference(from, minus map[keyremap.EventCode]struct{}) []keyremap.EventCode {
	diff := make([]keyremap.EventCode, 0)

	for code := range from {
		if _, ok := minus[code]; !ok {
			diff = append(diff, code)
		}
	}

	return diff
}

// emitKeys writes value for every code in codes, updating output
// state as it goes, then closes the batch with one sync marker.
func (e *Engine) emitKeys(codes []keyremap.EventCode, sec, usec int64, value int32) error {
	for _, code := range codes {
		if err := e.writeEvent(code, value, sec, usec); err != nil {
			return err
		}
	}

	return e.device.WriteSync(sec, usec)
}

// writeEvent writes a single event to the output device and updates
// output state accordingly.
func (e *Engine) writeEvent(code keyremap.EventCode, value int32, sec, usec int64) error {
	event := keyremap.InputEvent{Sec: sec, Usec: usec, Code: code, Value: value}

	if err := e.device.WriteEvent(event); err != nil {
		return err
	}

	if code.Family == keyremap.FamilyKey {
		e.output.Apply(code, value)
	}

	return nil
}
