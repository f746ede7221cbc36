// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package evdev

import (
	"golang.org/x/sys/unix"
)

// ioctl request encoding from linux/ioctl.h.
const (
	iocNone  = 0x0
	iocWrite = 0x1
	iocRead  = 0x2

	iocNrBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNrShift   = 0
	iocTypeShift = iocNrShift + iocNrBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits
)

func _IOC(dir, typ, nr, size int) uintptr {
	return uintptr(dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNrShift | size<<iocSizeShift)
}

func _IO(typ, nr int) uintptr {
	return _IOC(iocNone, typ, nr, 0)
}

func _IOR(typ, nr, size int) uintptr {
	return _IOC(iocRead, typ, nr, size)
}

func _IOW(typ, nr, size int) uintptr {
	return _IOC(iocWrite, typ, nr, size)
}

// Requests from linux/input.h.
func eviocgname(length int) uintptr { return _IOC(iocRead, 'E', 0x06, length) }

func eviocgbit(ev, length int) uintptr { return _IOC(iocRead, 'E', 0x20+ev, length) }

func eviocgrab() uintptr { return _IOW('E', 0x90, 4) }

// Requests from linux/uinput.h.
func uiSetEvBit() uintptr  { return _IOW('U', 100, 4) }
func uiSetKeyBit() uintptr { return _IOW('U', 101, 4) }
func uiSetAbsBit() uintptr { return _IOW('U', 103, 4) }
func uiDevCreate() uintptr { return _IO('U', 1) }
func uiDevDestroy() uintptr {
	return _IO('U', 2)
}

func ioctl(fd uintptr, request uintptr, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, request, arg)
	if errno != 0 {
		return errno
	}
	return nil
}
