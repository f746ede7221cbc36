// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package evdev

import (
	"encoding/binary"
	"io"
	"os"
	"sort"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// EventSize is the wire size of struct input_event on 64-bit Linux.
const EventSize = int(unsafe.Sizeof(InputEvent{}))

// InputEvent mirrors struct input_event.
type InputEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// Device wraps an open /dev/input node.
type Device struct {
	f    *os.File
	path string
	buf  [EventSize]byte
}

// Open opens the node read-only. With nonblock set, reads return
// unix.EAGAIN instead of blocking; used only for probing.
func Open(path string, nonblock bool) (*Device, error) {
	flags := os.O_RDONLY
	if nonblock {
		flags |= unix.O_NONBLOCK
	}
	f, err := os.OpenFile(path, flags, 0)
	if err != nil {
		return nil, err
	}
	return &Device{f: f, path: path}, nil
}

func (d *Device) Path() string {
	return d.path
}

// Name reports the device name via EVIOCGNAME.
func (d *Device) Name() (string, error) {
	var name [256]byte
	err := ioctl(d.f.Fd(), eviocgname(len(name)), uintptr(unsafe.Pointer(&name[0])))
	if err != nil {
		return "", err
	}
	n := 0
	for n < len(name) && name[n] != 0 {
		n++
	}
	return string(name[:n]), nil
}

// SupportsKey reports whether the device advertises the given EV_KEY code.
func (d *Device) SupportsKey(code uint16) bool {
	var bits [keyCnt / 8]byte
	err := ioctl(d.f.Fd(), eviocgbit(int(EvKey), len(bits)), uintptr(unsafe.Pointer(&bits[0])))
	if err != nil {
		return false
	}
	return bits[code/8]&(1<<(code%8)) != 0
}

// Grab takes the device exclusively; kernel delivery to other readers stops.
func (d *Device) Grab() error {
	return ioctl(d.f.Fd(), eviocgrab(), 1)
}

func (d *Device) Release() error {
	return ioctl(d.f.Fd(), eviocgrab(), 0)
}

// ReadEvent reads one input_event. Short reads surface as
// io.ErrUnexpectedEOF so callers can resync.
func (d *Device) ReadEvent() (InputEvent, error) {
	var ev InputEvent
	_, err := io.ReadFull(d.f, d.buf[:])
	if err != nil {
		return ev, err
	}
	decodeEvent(d.buf[:], &ev)
	return ev, nil
}

// Read exposes the raw byte stream, used for PS/2 packet devices.
func (d *Device) Read(p []byte) (int, error) {
	return d.f.Read(p)
}

func (d *Device) Close() error {
	return d.f.Close()
}

func decodeEvent(b []byte, ev *InputEvent) {
	ev.Time.Sec = int64(binary.LittleEndian.Uint64(b[0:]))
	ev.Time.Usec = int64(binary.LittleEndian.Uint64(b[8:]))
	ev.Type = binary.LittleEndian.Uint16(b[16:])
	ev.Code = binary.LittleEndian.Uint16(b[18:])
	ev.Value = int32(binary.LittleEndian.Uint32(b[20:]))
}

func encodeEvent(ev *InputEvent, b []byte) {
	binary.LittleEndian.PutUint64(b[0:], uint64(ev.Time.Sec))
	binary.LittleEndian.PutUint64(b[8:], uint64(ev.Time.Usec))
	binary.LittleEndian.PutUint16(b[16:], ev.Type)
	binary.LittleEndian.PutUint16(b[18:], ev.Code)
	binary.LittleEndian.PutUint32(b[20:], uint32(ev.Value))
}

// ListDevicePaths enumerates /dev/input nodes in auto-detection order:
// mouse-like nodes first, then eventN nodes, then the rest.
func ListDevicePaths() ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var mice, events, others []string
	for _, name := range names {
		path := "/dev/input/" + name
		switch {
		case IsMousePath(name):
			mice = append(mice, path)
		case strings.HasPrefix(name, "event"):
			events = append(events, path)
		default:
			others = append(others, path)
		}
	}
	result := append(mice, events...)
	return append(result, others...), nil
}

// IsMousePath reports whether the node speaks the PS/2 mouse protocol
// rather than evdev.
func IsMousePath(path string) bool {
	base := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		base = path[i+1:]
	}
	return strings.Contains(base, "mouse") || base == "mice"
}
