//go:build linux

package evdev

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"unsafe"

	"github.com/thorio/keyremap"
	"github.com/thorio/keyremap/internal/engine"
	"github.com/thorio/keyremap/linux/ioctl"
	"golang.org/x/sys/unix"
)

// rawEvent mirrors struct input_event on a 64-bit Linux kernel: two
// 8-byte timeval fields, then a 2-byte type, a 2-byte code, and a
// 4-byte signed value — 24 bytes, with no implicit padding.
type rawEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

const rawEventSize = int(unsafe.Sizeof(rawEvent{}))

// Device is an opened physical evdev device (/dev/input/eventN).
type Device struct {
	path string
	file *os.File
}

// Open opens the evdev device at path for read/write. The caller must
// call Close when done.
func Open(path string) (*Device, error) {
	file, err := os.OpenFile(filepath.Clean(path), os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("evdev.Open: %w", err)
	}

	return &Device{path: path, file: file}, nil
}

// Path returns the filesystem path this device was opened from.
func (d *Device) Path() string {
	return d.path
}

func (d *Device) fd() uintptr {
	return d.file.Fd()
}

// Name reads the device's human-readable name (EVIOCGNAME).
func (d *Device) Name() (string, error) {
	buf := make([]byte, 256)

	if err := ioctl.AnyLen(d.fd(), ioctl.IOC_READ, 'E', 0x06, buf); err != nil {
		return "", fmt.Errorf("Device.Name: %w", err)
	}

	return unix.ByteSliceToString(buf), nil
}

// Phys reads the device's physical topology path (EVIOCGPHYS), if any.
func (d *Device) Phys() (string, error) {
	buf := make([]byte, 256)

	if err := ioctl.AnyLen(d.fd(), ioctl.IOC_READ, 'E', 0x07, buf); err != nil {
		return "", fmt.Errorf("Device.Phys: %w", err)
	}

	return unix.ByteSliceToString(buf), nil
}

// ID reads the device's bus/vendor/product/version identifier.
func (d *Device) ID() (ID, error) {
	var id ID

	if err := ioctl.Any(d.fd(), EVIOCGID, &id); err != nil {
		return ID{}, fmt.Errorf("Device.ID: %w", err)
	}

	return id, nil
}

// EventTypes returns every EV_* type this device reports events for.
func (d *Device) EventTypes() ([]uint16, error) {
	buf := make([]byte, (EV_MAX+7)/8+1)

	if err := ioctl.AnyLen(d.fd(), ioctl.IOC_READ, 'E', 0x20, buf); err != nil {
		return nil, fmt.Errorf("Device.EventTypes: %w", err)
	}

	types := make([]uint16, 0, EV_CNT)

	for t := uint(0); t <= EV_MAX; t++ {
		if TestBit(buf, t) {
			types = append(types, uint16(t))
		}
	}

	return types, nil
}

// Codes returns every code this device supports within evType.
func (d *Device) Codes(evType uint16) ([]uint16, error) {
	max, ok := maxCodes(evType)
	if !ok {
		return nil, fmt.Errorf("Device.Codes: unsupported event type %d", evType)
	}

	buf := make([]byte, max/8+1)

	if err := ioctl.AnyLen(d.fd(), ioctl.IOC_READ, 'E', 0x20+uint(evType), buf); err != nil {
		return nil, fmt.Errorf("Device.Codes: %w", err)
	}

	codes := make([]uint16, 0)

	for c := uint(0); c <= max; c++ {
		if TestBit(buf, c) {
			codes = append(codes, uint16(c))
		}
	}

	return codes, nil
}

// AbsInfo reads the range/resolution parameters of an absolute axis.
func (d *Device) AbsInfo(code uint16) (AbsInfo, error) {
	var info AbsInfo

	if err := ioctl.Any(d.fd(), EVIOCGABS(uint(code)), &info); err != nil {
		return AbsInfo{}, fmt.Errorf("Device.AbsInfo: %w", err)
	}

	return info, nil
}

// Grab acquires exclusive access: other consumers of this device stop
// receiving its events until Release is called or the descriptor is
// closed.
func (d *Device) Grab() error {
	grab := int32(1)
	if err := ioctl.Any(d.fd(), EVIOCGRAB, &grab); err != nil {
		return fmt.Errorf("Device.Grab: %w", err)
	}

	return nil
}

// Release relinquishes a prior Grab.
func (d *Device) Release() error {
	grab := int32(0)
	if err := ioctl.Any(d.fd(), EVIOCGRAB, &grab); err != nil {
		return fmt.Errorf("Device.Release: %w", err)
	}

	return nil
}

// ReadEvent blocks for the next raw event. A SYN_DROPPED sync event —
// the kernel's signal that its event queue overflowed and events were
// lost — is reported as [engine.StatusResync] rather than decoded
// further; that's treated as fatal here rather than silently resyncing.
func (d *Device) ReadEvent() (keyremap.InputEvent, engine.ReadStatus, error) {
	buf := make([]byte, rawEventSize)

	if _, err := readFull(d.file, buf); err != nil {
		return keyremap.InputEvent{}, engine.StatusOK, fmt.Errorf("Device.ReadEvent: %w", err)
	}

	var raw rawEvent
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &raw); err != nil {
		return keyremap.InputEvent{}, engine.StatusOK, fmt.Errorf("Device.ReadEvent: %w", err)
	}

	if raw.Type == EV_SYN && raw.Code == SYN_DROPPED {
		return keyremap.InputEvent{}, engine.StatusResync, nil
	}

	event := keyremap.InputEvent{
		Sec:   raw.Sec,
		Usec:  raw.Usec,
		Code:  keyremap.EventCode{Family: Family(raw.Type), Code: raw.Code},
		Value: raw.Value,
	}

	return event, engine.StatusOK, nil
}

// WriteEvent writes event directly to this device's file descriptor.
// Nothing in this module calls it: `listen` only reads, and the
// remapper, passthrough included, writes to the synthetic
// [OutputDevice] instead.
func (d *Device) WriteEvent(event keyremap.InputEvent) error {
	buf, err := encodeEvent(event)
	if err != nil {
		return fmt.Errorf("Device.WriteEvent: %w", err)
	}

	if _, err := d.file.Write(buf); err != nil {
		return fmt.Errorf("Device.WriteEvent: %w", err)
	}

	return nil
}

// Close closes the underlying file descriptor.
func (d *Device) Close() error {
	if err := d.file.Close(); err != nil {
		return fmt.Errorf("Device.Close: %w", err)
	}

	return nil
}

func encodeEvent(event keyremap.InputEvent) ([]byte, error) {
	raw := rawEvent{
		Sec:   event.Sec,
		Usec:  event.Usec,
		Type:  familyRawType(event.Code.Family),
		Code:  event.Code.Code,
		Value: event.Value,
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, raw); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func familyRawType(family keyremap.EventFamily) uint16 {
	t, _ := rawType(family)

	return t
}

// readFull reads exactly len(buf) bytes, looping over short reads as
// a read on a character device may return fewer bytes than
// requested for a single event.
func readFull(file *os.File, buf []byte) (int, error) {
	total := 0

	for total < len(buf) {
		n, err := file.Read(buf[total:])
		if err != nil {
			return total, err
		}

		total += n
	}

	return total, nil
}
