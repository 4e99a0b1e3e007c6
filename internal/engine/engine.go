// Package engine implements the remapping engine: the single-threaded
// state machine that turns a stream of raw
// evdev events into a stream of synthesized events. It owns no file
// descriptors itself — it reads from and writes to whatever [Device]
// it is constructed with, so the resolver and state-tracking logic can
// be exercised without a real kernel device.
package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/thorio/keyremap"
)

// Engine is the sole owner of the remapper's mutable state. It is not
// safe for concurrent use; it expects a single reader.
type Engine struct {
	device Device
	table  keyremap.MappingTable
	log    *logrus.Logger

	input  *InputState
	output *OutputState
	tap    tapDetector

	mappedFamilies map[keyremap.EventFamily]struct{}
}

// New builds an Engine over device using table. Table and device are
// expected to already reflect a fully configured synthetic output
// (codes enabled, exclusive grab acquired) — device setup is out of
// the engine's scope.
func New(device Device, table keyremap.MappingTable, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Engine{
		device:         device,
		table:          table,
		log:            log,
		input:          newInputState(),
		output:         newOutputState(),
		mappedFamilies: table.MappedFamilies(),
	}
}

// Run blocks, reading events from the device and dispatching them,
// until ReadEvent returns an error or a resync status (a kernel queue
// overflow is treated as fatal).
func (e *Engine) Run() error {
	e.log.Info("entering event loop")

	for {
		event, status, err := e.device.ReadEvent()
		if err != nil {
			return fmt.Errorf("engine.Run: %w", err)
		}

		if status == StatusResync {
			return fmt.Errorf("engine.Run: kernel event queue overflowed (resync required)")
		}

		if err := e.HandleEvent(event); err != nil {
			return fmt.Errorf("engine.Run: %w", err)
		}
	}
}

// HandleEvent dispatches a single input event: families no rule
// claims pass through verbatim with no extra sync (the upstream device
// emits its own SYN events, which are themselves unmapped and pass
// through); mapped families are handled by family.
func (e *Engine) HandleEvent(event keyremap.InputEvent) error {
	if _, mapped := e.mappedFamilies[event.Code.Family]; !mapped {
		e.log.Tracef("passthru %+v", event)

		return e.device.WriteEvent(event)
	}

	e.log.Tracef("in %+v", event)

	if event.Code.Family == keyremap.FamilyKey {
		return e.handleKeyEvent(event)
	}

	return e.handleNonKeyEvent(event)
}

func (e *Engine) handleKeyEvent(event keyremap.InputEvent) error {
	switch event.Value {
	case 0:
		return e.handleKeyRelease(event)
	case 1:
		return e.handleKeyPress(event)
	case 2:
		return e.handleKeyRepeat(event)
	default:
		return e.passthroughWithSync(event)
	}
}

func (e *Engine) handleKeyRelease(event keyremap.InputEvent) error {
	sec, usec, tracked := e.input.OnRelease(event.Code)
	if !tracked {
		return e.passthroughWithSync(event)
	}

	if err := e.computeAndApplyKeys(event.Sec, event.Usec); err != nil {
		return err
	}

	pressedAt := pressTime{sec: sec, usec: usec}
	releasedAt := pressTime{sec: event.Sec, usec: event.Usec}

	return e.maybeEmitTap(event.Code, pressedAt, releasedAt)
}

func (e *Engine) handleKeyPress(event keyremap.InputEvent) error {
	e.input.OnPress(event.Code, event.Sec, event.Usec)

	if _, ok := e.lookupMapping(event.Code, 1); ok {
		if err := e.computeAndApplyKeys(event.Sec, event.Usec); err != nil {
			return err
		}

		e.tap.Arm(event.Code)

		return nil
	}

	e.tap.Cancel()

	return e.computeAndApplyKeys(event.Sec, event.Usec)
}

func (e *Engine) handleKeyRepeat(event keyremap.InputEvent) error {
	rule, ok := e.lookupMapping(event.Code, 2)
	if !ok {
		e.tap.Cancel()

		return e.passthroughWithSync(event)
	}

	var codes []keyremap.EventCode

	if rule.Kind == keyremap.RuleDualRole {
		codes = rule.Hold
	} else {
		codes = make([]keyremap.EventCode, len(rule.RemapOutput))
		for i, kr := range rule.RemapOutput {
			codes[i] = kr.Code
		}
	}

	for _, code := range codes {
		if err := e.writeEvent(code, 2, event.Sec, event.Usec); err != nil {
			return err
		}
	}

	return e.device.WriteSync(event.Sec, event.Usec)
}
