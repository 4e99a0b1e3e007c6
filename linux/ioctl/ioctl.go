//go:build linux

// Package ioctl implements the request-code encoding from the Linux
// kernel's [ioctl.h] and a generic syscall wrapper for issuing them.
//
// ioctl command encoding: 32 bits total, command in the lower 16 bits,
// size of the parameter structure in the lower 14 bits of the upper 16
// bits. Encoding the size of the parameter structure in the ioctl
// request is useful for catching programs compiled with old versions
// and for avoiding writes outside the caller's buffer. The highest 2
// bits indicate the access mode (read/write/none).
//
// [ioctl.h]: https://github.com/torvalds/linux/blob/master/include/uapi/asm-generic/ioctl.h
package ioctl

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	// IOC_NRBITS is the number of bits allocated for the command
	// number (nr) field.
	IOC_NRBITS = 8

	// IOC_TYPEBITS is the number of bits allocated for the type field.
	IOC_TYPEBITS = 8

	// IOC_SIZEBITS is the number of bits allocated for the size field.
	IOC_SIZEBITS = 14

	// IOC_DIRBITS is the number of bits allocated for the direction
	// (read/write) field.
	IOC_DIRBITS = 2

	// IOC_NRMASK masks out the nr field bits.
	IOC_NRMASK = 1<<IOC_NRBITS - 1

	// IOC_TYPEMASK masks out the type field bits.
	IOC_TYPEMASK = 1<<IOC_TYPEBITS - 1

	// IOC_SIZEMASK masks out the size field bits.
	IOC_SIZEMASK = 1<<IOC_SIZEBITS - 1

	// IOC_DIRMASK masks out the direction field bits.
	IOC_DIRMASK = 1<<IOC_DIRBITS - 1

	// IOC_NRSHIFT is the bit offset of the nr field.
	IOC_NRSHIFT = 0

	// IOC_TYPESHIFT is the bit offset of the type field.
	IOC_TYPESHIFT = IOC_NRSHIFT + IOC_NRBITS

	// IOC_SIZESHIFT is the bit offset of the size field.
	IOC_SIZESHIFT = IOC_TYPESHIFT + IOC_TYPEBITS

	// IOC_DIRSHIFT is the bit offset of the direction field.
	IOC_DIRSHIFT = IOC_SIZESHIFT + IOC_SIZEBITS

	// IOC_NONE specifies no data transfer for the ioctl.
	IOC_NONE = 0

	// IOC_WRITE specifies a write (user to kernel) transfer.
	IOC_WRITE = 1

	// IOC_READ specifies a read (kernel to user) transfer.
	IOC_READ = 2
)

// IOC_TYPECHECK returns the size in bytes of T, using typ only to infer
// it. A non-generic version taking `any` would report the size of the
// interface header instead of the concrete value it boxes — always 16
// bytes regardless of T — so this must stay generic over T.
func IOC_TYPECHECK[T any](typ T) uint {
	return uint(unsafe.Sizeof(typ))
}

// IOC packs the four ioctl components into a single request code.
func IOC(dir, typ, nr, size uint) uint {
	return dir<<IOC_DIRSHIFT |
		typ<<IOC_TYPESHIFT |
		nr<<IOC_NRSHIFT |
		size<<IOC_SIZESHIFT
}

// IO returns a request code for an ioctl that carries no data.
func IO(typ, nr uint) uint {
	return IOC(IOC_NONE, typ, nr, 0)
}

// IOR returns a request code for reading data from the kernel.
func IOR[T any](typ, nr uint, argtype T) uint {
	return IOC(IOC_READ, typ, nr, IOC_TYPECHECK(argtype))
}

// IOW returns a request code for writing data to the kernel.
func IOW[T any](typ, nr uint, argtype T) uint {
	return IOC(IOC_WRITE, typ, nr, IOC_TYPECHECK(argtype))
}

// IOWR returns a request code for bidirectional data transfer.
func IOWR[T any](typ, nr uint, argtype T) uint {
	return IOC(IOC_READ|IOC_WRITE, typ, nr, IOC_TYPECHECK(argtype))
}

// Any issues an ioctl on fd with the given request code. arg, when
// non-nil, has its address passed to the kernel so data can be read
// into or written from *arg; pass nil for no-data requests such as
// those built with [IO].
func Any[T any](fd uintptr, req uint, arg *T) error {
	var errno syscall.Errno

	_, _, errno = unix.Syscall(unix.SYS_IOCTL, fd, uintptr(req), uintptr(unsafe.Pointer(arg)))
	if errno != 0 {
		return errno
	}

	return nil
}

// AnyLen issues an ioctl on fd with a request code whose size field is
// len bytes, passing the address of the first element of buf. It is
// used for variable-length reads such as EVIOCGNAME or EVIOCGBIT,
// where the structure size baked into the request code is the buffer
// length rather than a fixed Go type.
func AnyLen(fd uintptr, dir, typ, nr uint, buf []byte) error {
	var (
		req   uint
		errno syscall.Errno
	)

	req = IOC(dir, typ, nr, uint(len(buf)))

	_, _, errno = unix.Syscall(unix.SYS_IOCTL, fd, uintptr(req), uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return errno
	}

	return nil
}
