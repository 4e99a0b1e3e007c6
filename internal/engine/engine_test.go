package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thorio/keyremap"
)

const (
	keyEsc       uint16 = 1
	keyC         uint16 = 46
	keyTab       uint16 = 15
	keyCapslock  uint16 = 58
	relWheel     uint16 = 8
	keyVolumeUp  uint16 = 115
	keyVolumeDn  uint16 = 114
	keyLeftAlt   uint16 = 56
	keyLeftCtrl  uint16 = 29
)

func code(family keyremap.EventFamily, c uint16) keyremap.EventCode {
	return keyremap.EventCode{Family: family, Code: c}
}

func keyCode(c uint16) keyremap.EventCode {
	return code(keyremap.FamilyKey, c)
}

// fakeDevice is an in-memory [Device] that records every write and
// replays a scripted sequence of reads.
type fakeDevice struct {
	reads   []keyremap.InputEvent
	readPos int
	writes  []keyremap.InputEvent
}

func (d *fakeDevice) ReadEvent() (keyremap.InputEvent, ReadStatus, error) {
	if d.readPos >= len(d.reads) {
		return keyremap.InputEvent{}, StatusOK, errEndOfScript
	}

	event := d.reads[d.readPos]
	d.readPos++

	return event, StatusOK, nil
}

func (d *fakeDevice) WriteEvent(event keyremap.InputEvent) error {
	d.writes = append(d.writes, event)

	return nil
}

func (d *fakeDevice) WriteSync(sec, usec int64) error {
	d.writes = append(d.writes, keyremap.InputEvent{Sec: sec, Usec: usec, Code: keyremap.SynReportCode})

	return nil
}

type sentinelError string

func (e sentinelError) Error() string { return string(e) }

const errEndOfScript = sentinelError("end of script")

func press(c keyremap.EventCode, sec, usec int64) keyremap.InputEvent {
	return keyremap.InputEvent{Sec: sec, Usec: usec, Code: c, Value: 1}
}

func release(c keyremap.EventCode, sec, usec int64) keyremap.InputEvent {
	return keyremap.InputEvent{Sec: sec, Usec: usec, Code: c, Value: 0}
}

func TestEngine_SimpleRemap(t *testing.T) {
	table := keyremap.NewMappingTable(nil, []keyremap.Rule{
		{
			Kind:        keyremap.RuleRemap,
			RemapInput:  []keyremap.KeyRef{{Code: keyCode(keyCapslock), Scale: 1}},
			RemapOutput: []keyremap.KeyRef{{Code: keyCode(keyEsc), Scale: 1}},
		},
	}, nil)

	dev := &fakeDevice{}
	eng := New(dev, table, nil)

	require.NoError(t, eng.HandleEvent(press(keyCode(keyCapslock), 0, 0)))
	require.NoError(t, eng.HandleEvent(release(keyCode(keyCapslock), 0, 10000)))

	require.Equal(t, []keyremap.InputEvent{
		press(keyCode(keyEsc), 0, 0),
		{Sec: 0, Usec: 0, Code: keyremap.SynReportCode},
		release(keyCode(keyEsc), 0, 10000),
		{Sec: 0, Usec: 10000, Code: keyremap.SynReportCode},
	}, dev.writes)
}

func TestEngine_DualRoleTap(t *testing.T) {
	table := keyremap.NewMappingTable([]keyremap.Rule{
		{
			Kind:  keyremap.RuleDualRole,
			Input: keyCode(keyCapslock),
			Hold:  []keyremap.EventCode{keyCode(keyLeftCtrl)},
			Tap:   []keyremap.EventCode{keyCode(keyEsc)},
		},
	}, nil, nil)

	dev := &fakeDevice{}
	eng := New(dev, table, nil)

	require.NoError(t, eng.HandleEvent(press(keyCode(keyCapslock), 0, 0)))
	require.NoError(t, eng.HandleEvent(release(keyCode(keyCapslock), 0, 50000)))

	require.Equal(t, []keyremap.InputEvent{
		press(keyCode(keyLeftCtrl), 0, 0),
		{Sec: 0, Usec: 0, Code: keyremap.SynReportCode},
		release(keyCode(keyLeftCtrl), 0, 50000),
		{Sec: 0, Usec: 50000, Code: keyremap.SynReportCode},
		press(keyCode(keyEsc), 0, 50000),
		{Sec: 0, Usec: 50000, Code: keyremap.SynReportCode},
		release(keyCode(keyEsc), 0, 50000),
		{Sec: 0, Usec: 50000, Code: keyremap.SynReportCode},
	}, dev.writes)
}

func TestEngine_DualRoleHoldSuppressesTap(t *testing.T) {
	table := keyremap.NewMappingTable([]keyremap.Rule{
		{
			Kind:  keyremap.RuleDualRole,
			Input: keyCode(keyCapslock),
			Hold:  []keyremap.EventCode{keyCode(keyLeftCtrl)},
			Tap:   []keyremap.EventCode{keyCode(keyEsc)},
		},
	}, nil, nil)

	dev := &fakeDevice{}
	eng := New(dev, table, nil)

	require.NoError(t, eng.HandleEvent(press(keyCode(keyCapslock), 0, 0)))
	require.NoError(t, eng.HandleEvent(press(keyCode(keyC), 0, 10000)))
	require.NoError(t, eng.HandleEvent(release(keyCode(keyC), 1, 0)))
	require.NoError(t, eng.HandleEvent(release(keyCode(keyCapslock), 1, 10000)))

	for _, event := range dev.writes {
		require.NotEqual(t, keyCode(keyEsc), event.Code)
	}
}

func TestEngine_AxisRemapWithScaleAndDirection(t *testing.T) {
	table := keyremap.NewMappingTable(nil, []keyremap.Rule{
		{
			Kind:        keyremap.RuleRemap,
			RemapInput:  []keyremap.KeyRef{{Code: code(keyremap.FamilyRel, relWheel), Scale: 1}},
			RemapOutput: []keyremap.KeyRef{{Code: keyCode(keyVolumeUp), Scale: 1}},
		},
		{
			Kind:        keyremap.RuleRemap,
			RemapInput:  []keyremap.KeyRef{{Code: code(keyremap.FamilyRel, relWheel), Scale: -1}},
			RemapOutput: []keyremap.KeyRef{{Code: keyCode(keyVolumeDn), Scale: 1}},
		},
	}, nil)

	dev := &fakeDevice{}
	eng := New(dev, table, nil)

	require.NoError(t, eng.HandleEvent(keyremap.InputEvent{Code: code(keyremap.FamilyRel, relWheel), Value: 1}))
	require.NoError(t, eng.HandleEvent(keyremap.InputEvent{Code: code(keyremap.FamilyRel, relWheel), Value: -2}))

	require.Equal(t, []keyremap.InputEvent{
		press(keyCode(keyVolumeUp), 0, 0),
		release(keyCode(keyVolumeUp), 0, 0),
		{Code: keyremap.SynReportCode},
		press(keyCode(keyVolumeDn), 0, 0),
		release(keyCode(keyVolumeDn), 0, 0),
		{Code: keyremap.SynReportCode},
	}, dev.writes)
}

// TestEngine_ChordModifierFirstOrdering presses the two halves of a
// chord one at a time and asserts the exact write sequence for the
// second press: the LeftCtrl passthrough from the first press is
// released, then the chord's output is pressed with its modifier
// (LeftAlt) ahead of its non-modifier (Tab).
func TestEngine_ChordModifierFirstOrdering(t *testing.T) {
	table := keyremap.NewMappingTable(nil, []keyremap.Rule{
		{
			Kind: keyremap.RuleRemap,
			RemapInput: []keyremap.KeyRef{
				{Code: keyCode(keyLeftCtrl), Scale: 1},
				{Code: keyCode(keyC), Scale: 1},
			},
			RemapOutput: []keyremap.KeyRef{
				{Code: keyCode(keyLeftAlt), Scale: 1},
				{Code: keyCode(keyTab), Scale: 1},
			},
		},
	}, nil)

	dev := &fakeDevice{}
	eng := New(dev, table, nil)

	require.NoError(t, eng.HandleEvent(press(keyCode(keyLeftCtrl), 0, 0)))
	require.NoError(t, eng.HandleEvent(press(keyCode(keyC), 0, 10000)))

	require.Equal(t, []keyremap.InputEvent{
		press(keyCode(keyLeftCtrl), 0, 0),
		{Sec: 0, Usec: 0, Code: keyremap.SynReportCode},
		release(keyCode(keyLeftCtrl), 0, 10000),
		{Sec: 0, Usec: 10000, Code: keyremap.SynReportCode},
		press(keyCode(keyLeftAlt), 0, 10000),
		press(keyCode(keyTab), 0, 10000),
		{Sec: 0, Usec: 10000, Code: keyremap.SynReportCode},
	}, dev.writes)
}

// TestEngine_Specificity declares a two-key chord ahead of the
// single-key rule it subsumes. With only the shared key held, the
// subset rule's output is pressed; once the second chord key goes
// down too, the more specific rule wins outright: its output is
// pressed and the subset rule's output is released, rather than both
// staying held side by side.
func TestEngine_Specificity(t *testing.T) {
	table := keyremap.NewMappingTable(nil, []keyremap.Rule{
		{
			Kind: keyremap.RuleRemap,
			RemapInput: []keyremap.KeyRef{
				{Code: keyCode(keyCapslock), Scale: 1},
				{Code: keyCode(keyC), Scale: 1},
			},
			RemapOutput: []keyremap.KeyRef{{Code: keyCode(keyTab), Scale: 1}},
		},
		{
			Kind:        keyremap.RuleRemap,
			RemapInput:  []keyremap.KeyRef{{Code: keyCode(keyC), Scale: 1}},
			RemapOutput: []keyremap.KeyRef{{Code: keyCode(keyEsc), Scale: 1}},
		},
	}, nil)

	dev := &fakeDevice{}
	eng := New(dev, table, nil)

	require.NoError(t, eng.HandleEvent(press(keyCode(keyC), 0, 0)))

	require.Equal(t, []keyremap.InputEvent{
		press(keyCode(keyEsc), 0, 0),
		{Sec: 0, Usec: 0, Code: keyremap.SynReportCode},
	}, dev.writes)

	require.NoError(t, eng.HandleEvent(press(keyCode(keyCapslock), 0, 10000)))

	require.Equal(t, []keyremap.InputEvent{
		press(keyCode(keyEsc), 0, 0),
		{Sec: 0, Usec: 0, Code: keyremap.SynReportCode},
		release(keyCode(keyEsc), 0, 10000),
		{Sec: 0, Usec: 10000, Code: keyremap.SynReportCode},
		press(keyCode(keyTab), 0, 10000),
		{Sec: 0, Usec: 10000, Code: keyremap.SynReportCode},
	}, dev.writes)
}

func TestEngine_PassthroughUnmappedFamily(t *testing.T) {
	table := keyremap.NewMappingTable(nil, nil, nil)

	dev := &fakeDevice{}
	eng := New(dev, table, nil)

	event := keyremap.InputEvent{Code: code(keyremap.FamilyAbs, 0), Value: 512}
	require.NoError(t, eng.HandleEvent(event))
	require.Equal(t, []keyremap.InputEvent{event}, dev.writes)
}
