package engine

import "github.com/thorio/keyremap"

// ReadStatus reports whether a read from the physical device returned
// a usable event or signaled that the kernel's event queue overflowed.
type ReadStatus int

const (
	StatusOK ReadStatus = iota
	StatusResync
)

// Device is the engine's view of the physical/synthetic device pair.
// Enumeration, path resolution, capability setup, and exclusive grab
// are out of the engine's scope — they're performed
// before a Device reaches the engine, by linux/evdev.
type Device interface {
	// ReadEvent blocks for the next event from the physical device.
	ReadEvent() (keyremap.InputEvent, ReadStatus, error)

	// WriteEvent emits one event on the synthetic output device.
	WriteEvent(event keyremap.InputEvent) error

	// WriteSync emits a SYN_REPORT at the given timestamp.
	WriteSync(sec, usec int64) error
}
