//go:build linux

package evdev

import (
	"fmt"
	"os"

	"github.com/thorio/keyremap"
	"github.com/thorio/keyremap/linux/ioctl"
)

const uinputPath = "/dev/uinput"

// OutputDevice is a synthetic input device created through /dev/uinput.
// It is configured once with every code it will ever need to emit, then
// created; after that its code set is immutable for the life of the
// device, matching how the kernel's uinput ABI works.
type OutputDevice struct {
	file    *os.File
	created bool
}

// NewOutputDevice opens /dev/uinput. Call EnableFamily/EnableAbs for
// every code the device should be able to emit, then Create.
func NewOutputDevice() (*OutputDevice, error) {
	file, err := os.OpenFile(uinputPath, os.O_WRONLY|os.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("evdev.NewOutputDevice: %w", err)
	}

	return &OutputDevice{file: file}, nil
}

// EnableFamily declares that the device will emit events of family, and
// enables every code in codes within it. Families with no UI_SET_*BIT
// request here (SYN, REP, FF, FF status, power) are rejected — the caller should
// never need to enable them explicitly since the kernel infers SYN.
func (o *OutputDevice) EnableFamily(family keyremap.EventFamily, codes []uint16) error {
	evType, ok := rawType(family)
	if !ok {
		return fmt.Errorf("evdev.EnableFamily: unsupported family %v", family)
	}

	setBit, ok := codeBitRequest(family)
	if !ok {
		return fmt.Errorf("evdev.EnableFamily: family %v has no per-code bitmask", family)
	}

	evTypeArg := int32(evType)
	if err := ioctl.Any(o.fd(), UI_SET_EVBIT, &evTypeArg); err != nil {
		return fmt.Errorf("evdev.EnableFamily: %w", err)
	}

	for _, code := range codes {
		c := int32(code)
		if err := ioctl.Any(o.fd(), setBit, &c); err != nil {
			return fmt.Errorf("evdev.EnableFamily: code %d: %w", code, err)
		}
	}

	return nil
}

func codeBitRequest(family keyremap.EventFamily) (uint, bool) {
	switch family {
	case keyremap.FamilyKey:
		return UI_SET_KEYBIT, true
	case keyremap.FamilyRel:
		return UI_SET_RELBIT, true
	case keyremap.FamilyAbs:
		return UI_SET_ABSBIT, true
	case keyremap.FamilyMsc:
		return UI_SET_MSCBIT, true
	case keyremap.FamilyLed:
		return UI_SET_LEDBIT, true
	case keyremap.FamilySnd:
		return UI_SET_SNDBIT, true
	case keyremap.FamilySw:
		return UI_SET_SWBIT, true
	default:
		return 0, false
	}
}

// EnableAbs configures one absolute axis's range/fuzz/flat/resolution,
// mirroring what the source physical device reported for that axis.
func (o *OutputDevice) EnableAbs(code uint16, info AbsInfo) error {
	setup := uinputAbsSetup{Code: code, Abs: info}

	if err := ioctl.Any(o.fd(), UI_ABS_SETUP, &setup); err != nil {
		return fmt.Errorf("evdev.EnableAbs: %w", err)
	}

	return nil
}

// Create finalizes the synthetic device under the given name. Once
// Create succeeds, the kernel publishes a new /dev/input/eventN node
// and the device begins accepting WriteEvent calls.
func (o *OutputDevice) Create(name string) error {
	var setup uinputSetup
	copy(setup.Name[:], name)
	if len(name) >= uinputMaxNameSize {
		return fmt.Errorf("evdev.Create: name %q exceeds %d bytes", name, uinputMaxNameSize-1)
	}

	setup.ID = ID{Bustype: 0x06, Vendor: 0x4b52, Product: 0x0001, Version: 0x0001}

	if err := ioctl.Any(o.fd(), UI_DEV_SETUP, &setup); err != nil {
		return fmt.Errorf("evdev.Create: %w", err)
	}

	if err := ioctl.Any[int](o.fd(), UI_DEV_CREATE, nil); err != nil {
		return fmt.Errorf("evdev.Create: %w", err)
	}

	o.created = true

	return nil
}

// WriteEvent emits one event on the synthetic device.
func (o *OutputDevice) WriteEvent(event keyremap.InputEvent) error {
	buf, err := encodeEvent(event)
	if err != nil {
		return fmt.Errorf("evdev.OutputDevice.WriteEvent: %w", err)
	}

	if _, err := o.file.Write(buf); err != nil {
		return fmt.Errorf("evdev.OutputDevice.WriteEvent: %w", err)
	}

	return nil
}

// WriteSync emits a SYN_REPORT at the given timestamp.
func (o *OutputDevice) WriteSync(sec, usec int64) error {
	return o.WriteEvent(keyremap.InputEvent{
		Sec:   sec,
		Usec:  usec,
		Code:  keyremap.EventCode{Family: keyremap.FamilySyn, Code: SYN_REPORT},
		Value: 0,
	})
}

// Close destroys the synthetic device (if created) and closes the
// underlying file descriptor. Safe to call on a device that was never
// created.
func (o *OutputDevice) Close() error {
	if o.created {
		if err := ioctl.Any[int](o.fd(), UI_DEV_DESTROY, nil); err != nil {
			o.file.Close()

			return fmt.Errorf("evdev.OutputDevice.Close: %w", err)
		}
	}

	if err := o.file.Close(); err != nil {
		return fmt.Errorf("evdev.OutputDevice.Close: %w", err)
	}

	return nil
}

func (o *OutputDevice) fd() uintptr {
	return o.file.Fd()
}
