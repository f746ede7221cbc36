// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package touchscreen

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/misha-armatura/TouchScreenDriver/evdev"
)

// maxEvents bounds the pending queue; the oldest event is dropped on
// overflow so the producer never blocks.
const maxEvents = 32

var (
	// ErrNoDevice means auto-detection found nothing usable.
	ErrNoDevice = errors.New("touchscreen: no usable input device found")
	// ErrAlreadyRunning is returned by Start on an active reader.
	ErrAlreadyRunning = errors.New("touchscreen: reader already running")
	// ErrNotRunning is returned by operations needing a live device.
	ErrNotRunning = errors.New("touchscreen: reader is not running")
)

// Reader owns the device fd, the slot table, the gesture state and, with
// MITM enabled, the uinput fd. Lock order is always touchMu before
// eventMu.
type Reader struct {
	// touchMu guards the slot table, calibration, gesture state, the
	// device handle and the MITM state.
	touchMu sync.Mutex
	// eventMu guards the queue; eventSignal stands in for its
	// condition variable.
	eventMu     sync.Mutex
	eventSignal chan struct{}

	touches     [maxSlots]TouchPoint
	cal         Calibration
	gesture     gestureDetector
	currentSlot int
	dirty       bool

	queue    []TouchEvent
	callback EventCallback

	dev         *evdev.Device
	selected    string
	isMouse     bool
	hasBtnTouch bool

	uinput      *evdev.UinputDevice
	grabbed     bool
	mitmEnabled bool

	running atomic.Bool
	wg      sync.WaitGroup

	// now returns milliseconds; replaced by tests driving time.
	now func() int64
}

// NewReader returns an idle reader with the default calibration.
func NewReader() *Reader {
	r := &Reader{
		eventSignal: make(chan struct{}, 1),
		cal:         defaultCalibration(),
		now:         func() int64 { return time.Now().UnixMilli() },
	}
	for i := range r.touches {
		r.touches[i].TrackingID = -1
	}
	return r
}

// Start opens the device read-only, probes its key capabilities and
// spawns the reader goroutine.
func (r *Reader) Start(path string) error {
	if r.running.Load() {
		return ErrAlreadyRunning
	}

	dev, err := evdev.Open(path, false)
	if err != nil {
		return fmt.Errorf("touchscreen: open device %s: %w", path, err)
	}

	r.touchMu.Lock()
	r.dev = dev
	r.selected = path
	r.isMouse = evdev.IsMousePath(path)
	if r.isMouse {
		r.hasBtnTouch = false
	} else {
		r.hasBtnTouch = dev.SupportsKey(evdev.BtnTouch)
	}
	for i := range r.touches {
		r.touches[i] = TouchPoint{TrackingID: -1}
	}
	r.gesture.reset()
	r.currentSlot = 0
	r.dirty = false
	r.touchMu.Unlock()

	r.running.Store(true)
	r.wg.Add(1)
	go r.readLoop(dev)
	return nil
}

// StartAuto enumerates /dev/input, probing mouse-like nodes first, then
// eventN nodes, then the rest. The first node that starts wins.
func (r *Reader) StartAuto() error {
	if r.running.Load() {
		return ErrAlreadyRunning
	}
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return fmt.Errorf("touchscreen: list devices: %w", err)
	}
	for _, path := range paths {
		probe, err := evdev.Open(path, true)
		if err != nil {
			continue
		}
		_ = probe.Close()

		if err := r.Start(path); err != nil {
			logger.Debugf("auto-detect: %s: %v", path, err)
			continue
		}
		logger.Infof("auto-detect selected %s", path)
		return nil
	}
	return ErrNoDevice
}

// Stop terminates the reader. It is idempotent; a caller blocked in
// WaitForEvent observes the shutdown within one second.
func (r *Reader) Stop() {
	r.running.Store(false)

	// Releasing the grab and closing the source fd first also unblocks
	// the reader goroutine's pending read.
	r.touchMu.Lock()
	if r.dev != nil {
		if r.grabbed {
			if err := r.dev.Release(); err != nil {
				logger.Warning("release grab:", err)
			}
			r.grabbed = false
		}
		_ = r.dev.Close()
		r.dev = nil
	}
	r.touchMu.Unlock()

	r.signalEvent()
	r.wg.Wait()

	r.touchMu.Lock()
	if r.uinput != nil {
		if err := r.uinput.Destroy(); err != nil {
			logger.Warning("destroy uinput device:", err)
		}
		r.uinput = nil
	}
	r.mitmEnabled = false
	r.touchMu.Unlock()
}

// SetEventCallback registers cb, invoked on the reader goroutine for
// every event. The callback must not re-enter Reader APIs.
func (r *Reader) SetEventCallback(cb EventCallback) {
	r.touchMu.Lock()
	r.callback = cb
	r.touchMu.Unlock()
}

func (r *Reader) SelectedDevice() string {
	r.touchMu.Lock()
	defer r.touchMu.Unlock()
	return r.selected
}

// TouchCount reports the number of active slots.
func (r *Reader) TouchCount() int {
	r.touchMu.Lock()
	defer r.touchMu.Unlock()
	n := 0
	for i := range r.touches {
		if r.touches[i].TrackingID >= 0 {
			n++
		}
	}
	return n
}

// TouchCoordinates reports the calibrated position of slot index.
func (r *Reader) TouchCoordinates(index int) (x, y int, ok bool) {
	r.touchMu.Lock()
	defer r.touchMu.Unlock()
	if index < 0 || index >= maxSlots || r.touches[index].TrackingID < 0 {
		return 0, 0, false
	}
	return r.touches[index].X, r.touches[index].Y, true
}

// RawTouchCoordinates reports the raw position of slot index.
func (r *Reader) RawTouchCoordinates(index int) (x, y int, ok bool) {
	r.touchMu.Lock()
	defer r.touchMu.Unlock()
	if index < 0 || index >= maxSlots || r.touches[index].TrackingID < 0 {
		return 0, 0, false
	}
	return r.touches[index].RawX, r.touches[index].RawY, true
}

// ActiveTouches snapshots all active slots.
func (r *Reader) ActiveTouches() []TouchPoint {
	r.touchMu.Lock()
	defer r.touchMu.Unlock()
	return r.activeTouchesLocked()
}

func (r *Reader) activeTouchesLocked() []TouchPoint {
	var out []TouchPoint
	for i := range r.touches {
		if r.touches[i].TrackingID >= 0 {
			out = append(out, r.touches[i])
		}
	}
	return out
}

// GetNextEvent pops the oldest pending event without blocking.
func (r *Reader) GetNextEvent() (TouchEvent, bool) {
	r.eventMu.Lock()
	defer r.eventMu.Unlock()
	if len(r.queue) == 0 {
		return TouchEvent{}, false
	}
	ev := r.queue[0]
	r.queue = r.queue[1:]
	return ev, true
}

// WaitForEvent blocks until an event arrives, the timeout elapses, or
// the reader stops. timeoutMs < 0 waits without bound; internal wakes
// are capped at one second so Stop stays visible.
func (r *Reader) WaitForEvent(timeoutMs int) (TouchEvent, bool) {
	if ev, ok := r.GetNextEvent(); ok {
		return ev, true
	}
	if timeoutMs == 0 {
		return TouchEvent{}, false
	}

	var deadline time.Time
	if timeoutMs > 0 {
		deadline = time.Now().Add(time.Duration(timeoutMs) * time.Millisecond)
	}

	for {
		if !r.running.Load() {
			return TouchEvent{}, false
		}

		wait := time.Second
		if timeoutMs > 0 {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return r.GetNextEvent()
			}
			if remaining < wait {
				wait = remaining
			}
		}

		timer := time.NewTimer(wait)
		select {
		case <-r.eventSignal:
			timer.Stop()
		case <-timer.C:
		}

		if ev, ok := r.GetNextEvent(); ok {
			return ev, true
		}
		if timeoutMs > 0 && !time.Now().Before(deadline) {
			return TouchEvent{}, false
		}
	}
}

// ClearEvents drops all pending events.
func (r *Reader) ClearEvents() {
	r.eventMu.Lock()
	r.queue = nil
	r.eventMu.Unlock()
}

// SetCalibration installs a MinMax calibration. Safe to call while the
// reader is running.
func (r *Reader) SetCalibration(minX, maxX, minY, maxY, screenWidth, screenHeight int) {
	r.touchMu.Lock()
	defer r.touchMu.Unlock()
	if maxX <= minX || maxY <= minY {
		logger.Warningf("non-monotone calibration ranges (%d,%d)x(%d,%d), Apply falls back to range=1",
			minX, maxX, minY, maxY)
	}
	r.cal.Mode = CalibrationMinMax
	r.cal.MinX = float64(minX)
	r.cal.MaxX = float64(maxX)
	r.cal.MinY = float64(minY)
	r.cal.MaxY = float64(maxY)
	r.cal.ScreenWidth = screenWidth
	r.cal.ScreenHeight = screenHeight
	r.cal.MarginPercent = 0
	r.cal.Affine = [6]float64{1, 0, 0, 0, 1, 0}
}

// SetAffineCalibration installs a six-coefficient affine calibration.
func (r *Reader) SetAffineCalibration(affine [6]float64, screenWidth, screenHeight int) {
	r.touchMu.Lock()
	defer r.touchMu.Unlock()
	r.cal.Mode = CalibrationAffine
	r.cal.Affine = affine
	r.cal.ScreenWidth = screenWidth
	r.cal.ScreenHeight = screenHeight
}

func (r *Reader) SetCalibrationOffset(xOffset, yOffset int) {
	r.touchMu.Lock()
	defer r.touchMu.Unlock()
	r.cal.XOffset = xOffset
	r.cal.YOffset = yOffset
}

func (r *Reader) SetCalibrationMargin(marginPercent float64) {
	r.touchMu.Lock()
	defer r.touchMu.Unlock()
	r.cal.MarginPercent = marginPercent
}

func (r *Reader) GetCalibration() Calibration {
	r.touchMu.Lock()
	defer r.touchMu.Unlock()
	return r.cal
}

// LoadCalibration reads the file; keys absent from it keep the current
// in-memory values.
func (r *Reader) LoadCalibration(filename string) error {
	r.touchMu.Lock()
	defer r.touchMu.Unlock()
	cal, err := loadCalibrationFile(filename, r.cal)
	if err != nil {
		return err
	}
	r.cal = cal
	return nil
}

func (r *Reader) SaveCalibration(filename string) error {
	cal := r.GetCalibration()
	return saveCalibrationFile(filename, cal)
}

// readLoop is the single producer. It never panics across the goroutine
// boundary: transient errors continue, permanent ones end the loop.
func (r *Reader) readLoop(dev *evdev.Device) {
	defer r.wg.Done()
	defer func() {
		if p := recover(); p != nil {
			logger.Errorf("reader loop panic: %v", p)
			r.running.Store(false)
			r.signalEvent()
		}
	}()

	if r.isMouse {
		r.mouseLoop(dev)
	} else {
		r.evdevLoop(dev)
	}
	r.running.Store(false)
	r.signalEvent()
}

func (r *Reader) evdevLoop(dev *evdev.Device) {
	for r.running.Load() {
		ev, err := dev.ReadEvent()
		if err != nil {
			if isTransientReadError(err) {
				logger.Debugf("device %s transient read error: %v", r.selected, err)
				continue
			}
			if r.running.Load() {
				logger.Warningf("device %s read failed: %v", r.selected, err)
			}
			return
		}
		r.processEvent(ev)
	}
}

// mouseLoop consumes 3-byte PS/2 packets. Partial packets are discarded
// on read errors so the stream resyncs.
func (r *Reader) mouseLoop(dev *evdev.Device) {
	var packet [3]byte
	filled := 0
	var buf [1]byte

	for r.running.Load() {
		n, err := dev.Read(buf[:])
		if err != nil || n == 0 {
			if err != nil && isTransientReadError(err) {
				logger.Debugf("mouse device %s transient read error: %v", r.selected, err)
				filled = 0
				continue
			}
			if err != nil {
				if r.running.Load() {
					logger.Warningf("mouse device %s read failed: %v", r.selected, err)
				}
				return
			}
			continue
		}
		packet[filled] = buf[0]
		filled++
		if filled < 3 {
			continue
		}
		filled = 0
		r.processMousePacket(packet)
	}
}

func (r *Reader) processMousePacket(packet [3]byte) {
	left := packet[0]&0x01 != 0
	dx := int(packet[1])
	if packet[0]&0x10 != 0 {
		dx -= 256
	}
	dy := int(packet[2])
	if packet[0]&0x20 != 0 {
		dy -= 256
	}

	r.touchMu.Lock()
	defer r.touchMu.Unlock()

	slot := &r.touches[0]
	updated := false
	if left {
		if slot.TrackingID < 0 {
			slot.TrackingID = 1
			slot.Timestamp = r.now()
			updated = true
		}
		if dx != 0 || dy != 0 {
			slot.RawX += dx
			slot.RawY -= dy
			slot.X, slot.Y = r.cal.Apply(slot.RawX, slot.RawY)
			updated = true
		}
	} else if slot.TrackingID >= 0 {
		slot.TrackingID = -1
		updated = true
	}

	if updated {
		r.detectLocked()
	}
}

// processEvent applies one evdev event to the slot table. All updates
// up to a SYN_REPORT land before any gesture is emitted for it.
func (r *Reader) processEvent(ev evdev.InputEvent) {
	r.touchMu.Lock()
	defer r.touchMu.Unlock()

	switch ev.Type {
	case evdev.EvAbs:
		r.processAbsLocked(ev)
	case evdev.EvKey:
		r.processKeyLocked(ev)
	case evdev.EvRel:
		r.processRelLocked(ev)
	case evdev.EvSyn:
		if ev.Code == evdev.SynReport && r.dirty {
			r.detectLocked()
			r.dirty = false
		}
	}
}

func (r *Reader) processAbsLocked(ev evdev.InputEvent) {
	switch ev.Code {
	case evdev.AbsMtSlot:
		r.currentSlot = int(ev.Value)
	case evdev.AbsMtTrackingID:
		if r.currentSlot < 0 || r.currentSlot >= maxSlots {
			return
		}
		slot := &r.touches[r.currentSlot]
		if ev.Value >= 0 {
			if slot.TrackingID < 0 {
				slot.StartX = slot.X
				slot.StartY = slot.Y
				slot.Timestamp = r.now()
			}
			slot.TrackingID = int(ev.Value)
		} else {
			slot.TrackingID = -1
		}
		r.dirty = true
	case evdev.AbsMtPositionX:
		if r.currentSlot < 0 || r.currentSlot >= maxSlots {
			return
		}
		slot := &r.touches[r.currentSlot]
		slot.RawX = int(ev.Value)
		slot.X, slot.Y = r.cal.Apply(slot.RawX, slot.RawY)
		r.dirty = true
	case evdev.AbsMtPositionY:
		if r.currentSlot < 0 || r.currentSlot >= maxSlots {
			return
		}
		slot := &r.touches[r.currentSlot]
		slot.RawY = int(ev.Value)
		slot.X, slot.Y = r.cal.Apply(slot.RawX, slot.RawY)
		r.dirty = true
	case evdev.AbsX:
		slot := &r.touches[0]
		slot.RawX = int(ev.Value)
		slot.X, slot.Y = r.cal.Apply(slot.RawX, slot.RawY)
		r.dirty = true
	case evdev.AbsY:
		slot := &r.touches[0]
		slot.RawY = int(ev.Value)
		slot.X, slot.Y = r.cal.Apply(slot.RawX, slot.RawY)
		r.dirty = true
	}
}

func (r *Reader) processKeyLocked(ev evdev.InputEvent) {
	contact := ev.Code == evdev.BtnTouch
	if !contact && !r.hasBtnTouch {
		contact = ev.Code == evdev.BtnToolPen || ev.Code == evdev.BtnLeft
	}
	if !contact {
		return
	}

	slot := &r.touches[0]
	if ev.Value == 1 {
		if slot.TrackingID < 0 {
			slot.TrackingID = 1
			slot.StartX = slot.X
			slot.StartY = slot.Y
			slot.Timestamp = r.now()
			r.dirty = true
		}
	} else if ev.Value == 0 && slot.TrackingID >= 0 {
		slot.TrackingID = -1
		r.dirty = true
	}
}

func (r *Reader) processRelLocked(ev evdev.InputEvent) {
	slot := &r.touches[0]
	if slot.TrackingID < 0 {
		return
	}
	switch ev.Code {
	case evdev.RelX:
		slot.RawX += int(ev.Value)
	case evdev.RelY:
		slot.RawY += int(ev.Value)
	default:
		return
	}
	slot.X, slot.Y = r.cal.Apply(slot.RawX, slot.RawY)
	r.dirty = true
}

// detectLocked runs the gesture pass for one report. Emission order per
// report is FIFO into the queue; the callback runs on this goroutine.
func (r *Reader) detectLocked() {
	now := r.now()
	r.gesture.process(&r.touches, now, func(typ EventType, count, x, y, value int) {
		ev := TouchEvent{
			Type:       typ,
			TouchCount: count,
			X:          x,
			Y:          y,
			Value:      value,
			Touches:    r.activeTouchesLocked(),
			Timestamp:  now,
		}
		for i := range r.touches {
			if r.touches[i].TrackingID >= 0 {
				ev.RawX = r.touches[i].RawX
				ev.RawY = r.touches[i].RawY
				break
			}
		}

		r.emitMitmLocked(&ev)

		if r.callback != nil {
			r.callback(&ev)
		}

		r.enqueueEvent(ev)
	})
}

func (r *Reader) enqueueEvent(ev TouchEvent) {
	r.eventMu.Lock()
	if len(r.queue) >= maxEvents {
		r.queue = r.queue[1:]
	}
	r.queue = append(r.queue, ev)
	r.eventMu.Unlock()
	r.signalEvent()
}

func (r *Reader) signalEvent() {
	select {
	case r.eventSignal <- struct{}{}:
	default:
	}
}

func isTransientReadError(err error) bool {
	return errors.Is(err, unix.EINTR) ||
		errors.Is(err, unix.EAGAIN) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
