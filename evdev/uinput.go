// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package evdev

import (
	"encoding/binary"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

const uinputMaxNameSize = 80

const uinputPath = "/dev/uinput"

// uinputUserDev mirrors struct uinput_user_dev.
type uinputUserDev struct {
	Name       [uinputMaxNameSize]byte
	ID         inputID
	EffectsMax uint32
	AbsMax     [absCnt]int32
	AbsMin     [absCnt]int32
	AbsFuzz    [absCnt]int32
	AbsFlat    [absCnt]int32
}

type inputID struct {
	BusType uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

// UinputDevice is a synthetic absolute-axis input device created
// through /dev/uinput.
type UinputDevice struct {
	f *os.File
}

// CreateUinput creates a single-touch absolute device advertising
// EV_KEY+BTN_TOUCH, EV_ABS+ABS_X/ABS_Y over [0,width-1]x[0,height-1]
// and EV_SYN.
func CreateUinput(name string, vendor, product uint16, width, height int32) (*UinputDevice, error) {
	f, err := os.OpenFile(uinputPath, os.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", uinputPath, err)
	}

	fd := f.Fd()
	setups := []struct {
		req uintptr
		arg uintptr
	}{
		{uiSetEvBit(), uintptr(EvKey)},
		{uiSetKeyBit(), uintptr(BtnTouch)},
		{uiSetEvBit(), uintptr(EvAbs)},
		{uiSetAbsBit(), uintptr(AbsX)},
		{uiSetAbsBit(), uintptr(AbsY)},
		{uiSetEvBit(), uintptr(EvSyn)},
	}
	for _, s := range setups {
		if err := ioctl(fd, s.req, s.arg); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("uinput setup ioctl: %w", err)
		}
	}

	var dev uinputUserDev
	copy(dev.Name[:uinputMaxNameSize-1], name)
	dev.ID = inputID{BusType: BusUSB, Vendor: vendor, Product: product, Version: 1}
	dev.AbsMin[AbsX] = 0
	dev.AbsMax[AbsX] = width - 1
	dev.AbsMin[AbsY] = 0
	dev.AbsMax[AbsY] = height - 1

	if _, err := f.Write(encodeUserDev(&dev)); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write uinput_user_dev: %w", err)
	}
	if err := ioctl(fd, uiDevCreate(), 0); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("UI_DEV_CREATE: %w", err)
	}
	return &UinputDevice{f: f}, nil
}

// Emit writes one event to the synthetic device.
func (u *UinputDevice) Emit(typ, code uint16, value int32) error {
	ev := InputEvent{Type: typ, Code: code, Value: value}
	var buf [EventSize]byte
	encodeEvent(&ev, buf[:])
	_, err := u.f.Write(buf[:])
	return err
}

// Destroy tears the device down. UI_DEV_DESTROY always runs before the
// fd is closed.
func (u *UinputDevice) Destroy() error {
	err := ioctl(u.f.Fd(), uiDevDestroy(), 0)
	closeErr := u.f.Close()
	if err != nil {
		return err
	}
	return closeErr
}

func encodeUserDev(dev *uinputUserDev) []byte {
	size := int(unsafe.Sizeof(*dev))
	buf := make([]byte, 0, size)
	buf = append(buf, dev.Name[:]...)
	var id [8]byte
	binary.LittleEndian.PutUint16(id[0:], dev.ID.BusType)
	binary.LittleEndian.PutUint16(id[2:], dev.ID.Vendor)
	binary.LittleEndian.PutUint16(id[4:], dev.ID.Product)
	binary.LittleEndian.PutUint16(id[6:], dev.ID.Version)
	buf = append(buf, id[:]...)
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], dev.EffectsMax)
	buf = append(buf, u32[:]...)
	for _, arr := range [][absCnt]int32{dev.AbsMax, dev.AbsMin, dev.AbsFuzz, dev.AbsFlat} {
		for _, v := range arr {
			binary.LittleEndian.PutUint32(u32[:], uint32(v))
			buf = append(buf, u32[:]...)
		}
	}
	return buf
}
