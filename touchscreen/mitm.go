// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package touchscreen

import (
	"errors"
	"fmt"

	"github.com/misha-armatura/TouchScreenDriver/evdev"
)

// ErrUinputUnavailable means /dev/uinput is absent or not writable.
var ErrUinputUnavailable = errors.New("touchscreen: uinput unavailable")

const (
	mitmDeviceName = "touch_reader_calibrated"
	mitmVendorID   = 0x1234
	mitmProductID  = 0x5678
)

// EnableMitm republishes the calibrated stream through a synthetic
// single-touch device. With grabSource set, the source device is taken
// exclusively so the OS sees only the calibrated stream; a failed grab
// is a warning, not an error.
func (r *Reader) EnableMitm(enable, grabSource bool) error {
	r.touchMu.Lock()
	defer r.touchMu.Unlock()

	if !enable {
		r.disableMitmLocked()
		return nil
	}

	if r.uinput == nil {
		width := int32(maxInt(1, r.cal.ScreenWidth))
		height := int32(maxInt(1, r.cal.ScreenHeight))
		u, err := evdev.CreateUinput(mitmDeviceName, mitmVendorID, mitmProductID, width, height)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUinputUnavailable, err)
		}
		r.uinput = u
	}

	if grabSource && !r.grabbed {
		if r.dev == nil {
			logger.Warning("cannot grab source: no device open")
		} else if err := r.dev.Grab(); err != nil {
			logger.Warningf("grab %s failed: %v", r.selected, err)
		} else {
			r.grabbed = true
		}
	}

	r.mitmEnabled = true
	return nil
}

func (r *Reader) disableMitmLocked() {
	if r.grabbed && r.dev != nil {
		if err := r.dev.Release(); err != nil {
			logger.Warning("release grab:", err)
		}
	}
	r.grabbed = false
	if r.uinput != nil {
		if err := r.uinput.Destroy(); err != nil {
			logger.Warning("destroy uinput device:", err)
		}
		r.uinput = nil
	}
	r.mitmEnabled = false
}

// emitMitmLocked forwards one gesture emission to the synthetic device.
// Contact events write BTN_TOUCH=1 plus the position; a release writes
// BTN_TOUCH=0. Both end with SYN_REPORT.
func (r *Reader) emitMitmLocked(ev *TouchEvent) {
	if !r.mitmEnabled || r.uinput == nil {
		return
	}

	switch ev.Type {
	case TouchDown, TouchMove:
		r.writeUinput(evdev.EvKey, evdev.BtnTouch, 1)
		r.writeUinput(evdev.EvAbs, evdev.AbsX, int32(ev.X))
		r.writeUinput(evdev.EvAbs, evdev.AbsY, int32(ev.Y))
		r.writeUinput(evdev.EvSyn, evdev.SynReport, 0)
	case TouchUp:
		r.writeUinput(evdev.EvKey, evdev.BtnTouch, 0)
		r.writeUinput(evdev.EvSyn, evdev.SynReport, 0)
	}
}

func (r *Reader) writeUinput(typ, code uint16, value int32) {
	if err := r.uinput.Emit(typ, code, value); err != nil {
		logger.Warningf("uinput emit (%d,%d,%d): %v", typ, code, value, err)
	}
}
