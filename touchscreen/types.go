// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package touchscreen

// EventType identifies the kind of touch event delivered to consumers.
type EventType int32

const (
	TouchDown EventType = iota
	TouchUp
	TouchMove
	SwipeLeft
	SwipeRight
	SwipeUp
	SwipeDown
	PinchIn
	PinchOut
	LongPress
	DoubleTap
	// Rotate is reserved; no detector emits it yet.
	Rotate
)

func (t EventType) String() string {
	switch t {
	case TouchDown:
		return "touch-down"
	case TouchUp:
		return "touch-up"
	case TouchMove:
		return "touch-move"
	case SwipeLeft:
		return "swipe-left"
	case SwipeRight:
		return "swipe-right"
	case SwipeUp:
		return "swipe-up"
	case SwipeDown:
		return "swipe-down"
	case PinchIn:
		return "pinch-in"
	case PinchOut:
		return "pinch-out"
	case LongPress:
		return "long-press"
	case DoubleTap:
		return "double-tap"
	case Rotate:
		return "rotate"
	}
	return "unknown"
}

// maxSlots caps the per-slot table; indices beyond it are ignored.
const maxSlots = 10

// TouchPoint is the state of one contact slot. A slot is active iff
// TrackingID >= 0. Start coordinates and the timestamp are latched when
// the slot activates.
type TouchPoint struct {
	TrackingID int
	RawX       int
	RawY       int
	X          int
	Y          int
	StartX     int
	StartY     int
	Timestamp  int64
}

// TouchEvent is one pipeline output. For TouchDown, TouchMove and pinch
// events X and Y are the arithmetic mean of the active slots' calibrated
// coordinates; TouchUp reports 0,0, LongPress the contact's start point,
// and swipes and DoubleTap the release point. Value carries gesture
// magnitude (swipe distance, pinch delta).
type TouchEvent struct {
	Type       EventType
	TouchCount int
	X          int
	Y          int
	RawX       int
	RawY       int
	Value      int
	Touches    []TouchPoint
	Timestamp  int64
}

// EventCallback is invoked on the reader goroutine for every emitted
// event. Callbacks must not re-enter Reader APIs.
type EventCallback func(ev *TouchEvent)
