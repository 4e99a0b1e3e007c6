package engine

import "github.com/thorio/keyremap"

// pressTime is the kernel-supplied timestamp a key went down at.
// Durations are computed only from these values, never a system clock
// read, so the tap window stays reproducible in tests.
type pressTime struct {
	sec, usec int64
}

func millisSince(older, newer pressTime) int64 {
	const microsPerSecond = 1_000_000

	secs := newer.sec - older.sec
	usecs := newer.usec - older.usec

	if usecs < 0 {
		secs--
		usecs += microsPerSecond
	}

	return (secs*microsPerSecond + usecs) / 1000
}

// InputState records which physical keys are currently held and when
// each went down.
type InputState struct {
	keys map[keyremap.EventCode]pressTime
}

func newInputState() *InputState {
	return &InputState{keys: make(map[keyremap.EventCode]pressTime)}
}

// OnPress inserts or refreshes the press time for code. It is
// idempotent on repeated presses without an intervening release: the
// latest time wins.
func (s *InputState) OnPress(code keyremap.EventCode, sec, usec int64) {
	s.keys[code] = pressTime{sec: sec, usec: usec}
}

// OnRelease removes code and returns the time it was pressed at, or
// ok=false if the key was not tracked.
func (s *InputState) OnRelease(code keyremap.EventCode) (sec, usec int64, ok bool) {
	t, tracked := s.keys[code]
	if !tracked {
		return 0, 0, false
	}

	delete(s.keys, code)

	return t.sec, t.usec, true
}

// Contains reports whether code is currently tracked as held.
func (s *InputState) Contains(code keyremap.EventCode) bool {
	_, ok := s.keys[code]

	return ok
}

// Keys returns a snapshot of the currently held codes.
func (s *InputState) Keys() map[keyremap.EventCode]struct{} {
	set := make(map[keyremap.EventCode]struct{}, len(s.keys))
	for code := range s.keys {
		set[code] = struct{}{}
	}

	return set
}

// OutputState mirrors InputState but is driven by the engine
// immediately before/after writing to the synthetic device.
type OutputState struct {
	keys map[keyremap.EventCode]struct{}
}

func newOutputState() *OutputState {
	return &OutputState{keys: make(map[keyremap.EventCode]struct{})}
}

// Apply updates the held-set according to a key event's value: press
// and repeat mark the code held, release unmarks it, any other value
// is a no-op.
func (s *OutputState) Apply(code keyremap.EventCode, value int32) {
	switch value {
	case 0:
		delete(s.keys, code)
	case 1, 2:
		s.keys[code] = struct{}{}
	}
}

// Keys returns a snapshot of the codes currently held on the output.
func (s *OutputState) Keys() map[keyremap.EventCode]struct{} {
	set := make(map[keyremap.EventCode]struct{}, len(s.keys))
	for code := range s.keys {
		set[code] = struct{}{}
	}

	return set
}
