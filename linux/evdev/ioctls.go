//go:build linux

package evdev

import "github.com/thorio/keyremap/linux/ioctl"

// ID identifies a device by bus type, vendor, product, and version,
// mirroring struct input_id from input.h.
type ID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

// AbsInfo mirrors struct input_absinfo: the current value and the
// range/fuzz/flat/resolution parameters of one absolute axis.
type AbsInfo struct {
	Value      int32
	Minimum    int32
	Maximum    int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

var (
	// EVIOCGID retrieves the device identifier.
	EVIOCGID = ioctl.IOR('E', 0x02, ID{})

	// EVIOCGRAB, given a non-zero int, grabs exclusive access to a
	// device; given zero, releases it.
	EVIOCGRAB = ioctl.IOW('E', 0x90, int32(0))
)

// EVIOCGNAME returns the request code to read up to length bytes of
// the device's human-readable name.
func EVIOCGNAME(length uint) uint {
	return ioctl.IOC(ioctl.IOC_READ, 'E', 0x06, length)
}

// EVIOCGPHYS returns the request code to read up to length bytes of
// the device's physical topology path.
func EVIOCGPHYS(length uint) uint {
	return ioctl.IOC(ioctl.IOC_READ, 'E', 0x07, length)
}

// EVIOCGBIT returns the request code to read a length-byte capability
// bitmask for the given EV_* type (0 requests the set of supported
// event types themselves).
func EVIOCGBIT(evType uint, length uint) uint {
	return ioctl.IOC(ioctl.IOC_READ, 'E', 0x20+evType, length)
}

// EVIOCGABS returns the request code to read the [AbsInfo] for abs
// axis code.
func EVIOCGABS(code uint) uint {
	return ioctl.IOR('E', 0x40+code, AbsInfo{})
}

// uinput ioctl magic ('U') and request numbers, from uinput.h. uinput
// predates a generic "any" helper for a couple of its shapes, so the
// numeric requests are built the same way [ioctl.IOR]/[ioctl.IOW]
// build evdev's.
const uinputMagic = 'U'

var (
	// UI_SET_EVBIT declares that the synthetic device will emit events
	// of a given EV_* type.
	UI_SET_EVBIT = ioctl.IOW(uinputMagic, 100, int32(0))

	// UI_SET_KEYBIT declares a KEY_*/BTN_* code the synthetic device emits.
	UI_SET_KEYBIT = ioctl.IOW(uinputMagic, 101, int32(0))

	// UI_SET_RELBIT declares a REL_* code the synthetic device emits.
	UI_SET_RELBIT = ioctl.IOW(uinputMagic, 102, int32(0))

	// UI_SET_ABSBIT declares an ABS_* code the synthetic device emits.
	UI_SET_ABSBIT = ioctl.IOW(uinputMagic, 103, int32(0))

	// UI_SET_MSCBIT declares an MSC_* code the synthetic device emits.
	UI_SET_MSCBIT = ioctl.IOW(uinputMagic, 104, int32(0))

	// UI_SET_LEDBIT declares an LED_* code the synthetic device emits.
	UI_SET_LEDBIT = ioctl.IOW(uinputMagic, 105, int32(0))

	// UI_SET_SNDBIT declares an SND_* code the synthetic device emits.
	UI_SET_SNDBIT = ioctl.IOW(uinputMagic, 106, int32(0))

	// UI_SET_SWBIT declares an SW_* code the synthetic device emits.
	UI_SET_SWBIT = ioctl.IOW(uinputMagic, 109, int32(0))

	// UI_DEV_SETUP configures the synthetic device's identity and name.
	UI_DEV_SETUP = ioctl.IOW(uinputMagic, 3, uinputSetup{})

	// UI_ABS_SETUP configures one absolute axis's [AbsInfo] on the
	// synthetic device.
	UI_ABS_SETUP = ioctl.IOW(uinputMagic, 4, uinputAbsSetup{})

	// UI_DEV_CREATE finalizes device creation; the kernel publishes a
	// new /dev/input/eventN node after this call succeeds.
	UI_DEV_CREATE = ioctl.IO(uinputMagic, 1)

	// UI_DEV_DESTROY tears down the synthetic device.
	UI_DEV_DESTROY = ioctl.IO(uinputMagic, 2)
)

const uinputMaxNameSize = 80

// uinputSetup mirrors struct uinput_setup from uinput.h.
type uinputSetup struct {
	ID           ID
	Name         [uinputMaxNameSize]byte
	FFEffectsMax uint32
}

// uinputAbsSetup mirrors struct uinput_abs_setup from uinput.h.
type uinputAbsSetup struct {
	Code uint16
	_    [2]byte // alignment padding: AbsInfo's first field is a 4-byte int32
	Abs  AbsInfo
}
