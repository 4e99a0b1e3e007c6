//go:build linux

package evdev

import (
	"fmt"

	"github.com/thorio/keyremap"
	"github.com/thorio/keyremap/internal/engine"
)

// RemapDevice pairs a grabbed physical device with the synthetic
// output device the engine writes to, implementing [engine.Device].
// Building one is the only place that needs both halves at once; the
// engine itself only ever sees the interface.
type RemapDevice struct {
	Input  *Device
	Output *OutputDevice
}

// OpenRemapDevice opens path, grabs it exclusively, and creates a
// synthetic output device named after it, enabling every code the
// physical device natively reports plus every code table can ever
// produce as a rule output (the synthetic device must
// be able to emit the union of passthrough and remapped codes).
func OpenRemapDevice(path string, table keyremap.MappingTable) (*RemapDevice, error) {
	input, err := Open(path)
	if err != nil {
		return nil, err
	}

	output, err := NewOutputDevice()
	if err != nil {
		input.Close()

		return nil, err
	}

	if err := copyCapabilities(input, output); err != nil {
		input.Close()
		output.Close()

		return nil, fmt.Errorf("evdev.OpenRemapDevice: %w", err)
	}

	if err := enableMappedOutputs(output, table); err != nil {
		input.Close()
		output.Close()

		return nil, fmt.Errorf("evdev.OpenRemapDevice: %w", err)
	}

	if err := output.Create(fmt.Sprintf("keyremap Virtual input for %s", path)); err != nil {
		input.Close()
		output.Close()

		return nil, fmt.Errorf("evdev.OpenRemapDevice: %w", err)
	}

	if err := input.Grab(); err != nil {
		input.Close()
		output.Close()

		return nil, fmt.Errorf("evdev.OpenRemapDevice: %w", err)
	}

	return &RemapDevice{Input: input, Output: output}, nil
}

// copyCapabilities mirrors every event type/code the physical device
// natively reports onto the synthetic device, including abs axis
// ranges, so unmapped passthrough events remain well-formed.
func copyCapabilities(input *Device, output *OutputDevice) error {
	types, err := input.EventTypes()
	if err != nil {
		return err
	}

	for _, raw := range types {
		family := Family(raw)
		if _, ok := codeBitRequest(family); !ok {
			continue
		}

		codes, err := input.Codes(raw)
		if err != nil {
			return err
		}

		if err := output.EnableFamily(family, codes); err != nil {
			return err
		}

		if family == keyremap.FamilyAbs {
			for _, code := range codes {
				info, err := input.AbsInfo(code)
				if err != nil {
					return err
				}

				if err := output.EnableAbs(code, info); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// enableMappedOutputs enables every code the mapping table can ever
// write, in case a rule maps onto a family/code the physical device
// itself never emits.
func enableMappedOutputs(output *OutputDevice, table keyremap.MappingTable) error {
	byFamily := make(map[keyremap.EventFamily][]uint16)

	for _, code := range table.OutputCodes() {
		byFamily[code.Family] = append(byFamily[code.Family], code.Code)
	}

	for family, codes := range byFamily {
		if err := output.EnableFamily(family, codes); err != nil {
			return err
		}
	}

	return nil
}

// ReadEvent implements [engine.Device].
func (r *RemapDevice) ReadEvent() (keyremap.InputEvent, engine.ReadStatus, error) {
	return r.Input.ReadEvent()
}

// WriteEvent implements [engine.Device].
func (r *RemapDevice) WriteEvent(event keyremap.InputEvent) error {
	return r.Output.WriteEvent(event)
}

// WriteSync implements [engine.Device].
func (r *RemapDevice) WriteSync(sec, usec int64) error {
	return r.Output.WriteSync(sec, usec)
}

// Close releases the grab, destroys the synthetic device, and closes
// both file descriptors.
func (r *RemapDevice) Close() error {
	releaseErr := r.Input.Release()
	inputErr := r.Input.Close()
	outputErr := r.Output.Close()

	for _, err := range []error{releaseErr, inputErr, outputErr} {
		if err != nil {
			return err
		}
	}

	return nil
}
