// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package touchscreen

import (
	"math"
)

// Gesture thresholds.
const (
	swipeMinDistance = 50  // px
	pinchThreshold   = 20  // px
	longPressMs      = 500 // ms
	doubleTapMs      = 300 // ms
	doubleTapRadius  = 30  // px
	pressJitter      = 20  // px
)

// gestureEmit receives detector output. count, x, y are the event's
// touch count and primary position, value the gesture magnitude.
type gestureEmit func(typ EventType, count, x, y, value int)

// gestureDetector turns contact-set transitions into higher-level
// events. It runs once per SYN_REPORT, on the reader goroutine, with the
// slot table already updated for that report.
type gestureDetector struct {
	prevCount    int
	prevDistance int

	lastTapTime int64
	lastTapX    int
	lastTapY    int

	// startSnapshot is copied at the 0 -> >0 transition; rotation
	// detection would extend from here.
	startSnapshot [maxSlots]TouchPoint
	tracking      bool
}

func (g *gestureDetector) reset() {
	*g = gestureDetector{}
}

// process inspects the slot table after one report. Deactivated slots
// retain their last coordinates, which is what the release-time checks
// (long press, swipe, double tap) read.
func (g *gestureDetector) process(touches *[maxSlots]TouchPoint, now int64, emit gestureEmit) {
	count := 0
	primaryX, primaryY := 0, 0
	var first, second *TouchPoint
	for i := range touches {
		if touches[i].TrackingID < 0 {
			continue
		}
		count++
		if first == nil {
			first = &touches[i]
		} else if second == nil {
			second = &touches[i]
		}
		primaryX += touches[i].X
		primaryY += touches[i].Y
	}
	if count > 0 {
		primaryX /= count
		primaryY /= count
	}

	if count > 0 && g.prevCount == 0 {
		for i := range touches {
			if touches[i].TrackingID < 0 {
				continue
			}
			touches[i].StartX = touches[i].X
			touches[i].StartY = touches[i].Y
			touches[i].Timestamp = now
		}
		g.startSnapshot = *touches
		g.tracking = true
		g.prevDistance = 0
		emit(TouchDown, count, primaryX, primaryY, 0)
	}

	if count == 0 && g.prevCount > 0 {
		g.processRelease(touches, now, emit)
	}

	if count > 0 && count == g.prevCount {
		emit(TouchMove, count, primaryX, primaryY, 0)
	}

	if count == 2 && g.prevCount == 2 && second != nil {
		d := pointDistance(first, second)
		if g.prevDistance > 0 {
			delta := d - g.prevDistance
			if delta > pinchThreshold {
				emit(PinchOut, 2, primaryX, primaryY, delta)
			} else if -delta > pinchThreshold {
				emit(PinchIn, 2, primaryX, primaryY, -delta)
			}
		}
		g.prevDistance = d
	}

	g.prevCount = count
}

func (g *gestureDetector) processRelease(touches *[maxSlots]TouchPoint, now int64, emit gestureEmit) {
	g.tracking = false

	// Long press: a contact that stayed within the jitter box for the
	// whole hold, reported at its start coordinates.
	for i := range g.startSnapshot {
		start := &g.startSnapshot[i]
		if start.TrackingID < 0 {
			continue
		}
		dx := absInt(touches[i].X - start.StartX)
		dy := absInt(touches[i].Y - start.StartY)
		if dx < pressJitter && dy < pressJitter && now-start.Timestamp >= longPressMs {
			emit(LongPress, 1, start.StartX, start.StartY, 0)
		}
	}

	emit(TouchUp, 0, 0, 0, 0)

	if g.prevCount != 1 {
		return
	}

	// Release point: last positions of the slots active at gesture start.
	releaseX, releaseY, n := 0, 0, 0
	for i := range g.startSnapshot {
		if g.startSnapshot[i].TrackingID < 0 {
			continue
		}
		releaseX += touches[i].X
		releaseY += touches[i].Y
		n++
	}
	if n > 0 {
		releaseX /= n
		releaseY /= n
	}

	if g.lastTapTime > 0 &&
		absInt(releaseX-g.lastTapX) < doubleTapRadius &&
		absInt(releaseY-g.lastTapY) < doubleTapRadius &&
		now-g.lastTapTime < doubleTapMs {
		emit(DoubleTap, 1, releaseX, releaseY, 0)
	}
	g.lastTapTime = now
	g.lastTapX = releaseX
	g.lastTapY = releaseY

	for i := range g.startSnapshot {
		start := &g.startSnapshot[i]
		if start.TrackingID < 0 {
			continue
		}
		dx := touches[i].X - start.StartX
		dy := touches[i].Y - start.StartY
		if absInt(dx) > swipeMinDistance && absInt(dx) > 2*absInt(dy) {
			if dx > 0 {
				emit(SwipeRight, 1, releaseX, releaseY, dx)
			} else {
				emit(SwipeLeft, 1, releaseX, releaseY, -dx)
			}
		} else if absInt(dy) > swipeMinDistance && absInt(dy) > 2*absInt(dx) {
			if dy > 0 {
				emit(SwipeDown, 1, releaseX, releaseY, dy)
			} else {
				emit(SwipeUp, 1, releaseX, releaseY, -dy)
			}
		}
		break
	}
}

func pointDistance(a, b *TouchPoint) int {
	return int(math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y)))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
