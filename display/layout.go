// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Monitor rotations as reported by the display server.
const (
	RotationNormal   = "normal"
	RotationInverted = "inverted"
	RotationLeft     = "left"
	RotationRight    = "right"
)

// ErrLayoutMissing means the display server reported no usable monitors;
// kernel-side reading is unaffected by it.
var ErrLayoutMissing = errors.New("display: no active monitors detected")

// Monitor describes one output in device pixels of the virtual desktop.
type Monitor struct {
	Index    int
	Name     string
	Primary  bool
	X        int
	Y        int
	Width    int
	Height   int
	ScaleX   float64
	ScaleY   float64
	Rotation string
	EdidHash string
}

// DesktopLayout is the ordered monitor list plus its bounding box and a
// stable fingerprint of the whole arrangement.
type DesktopLayout struct {
	Monitors []Monitor
	OriginX  int
	OriginY  int
	Width    int
	Height   int
	Hash     string
}

// finalize computes the bounding box and fingerprint. Layouts without
// monitors fail with ErrLayoutMissing.
func (l *DesktopLayout) finalize() error {
	if len(l.Monitors) == 0 {
		return ErrLayoutMissing
	}

	minX := l.Monitors[0].X
	minY := l.Monitors[0].Y
	maxX := l.Monitors[0].X + l.Monitors[0].Width
	maxY := l.Monitors[0].Y + l.Monitors[0].Height
	for _, m := range l.Monitors[1:] {
		if m.X < minX {
			minX = m.X
		}
		if m.Y < minY {
			minY = m.Y
		}
		if m.X+m.Width > maxX {
			maxX = m.X + m.Width
		}
		if m.Y+m.Height > maxY {
			maxY = m.Y + m.Height
		}
	}

	l.OriginX = minX
	l.OriginY = minY
	l.Width = maxX - minX
	l.Height = maxY - minY
	l.Hash = hashString(l.canonicalString())
	return nil
}

// canonicalString is the fingerprint input: the bounding box, then each
// monitor tuple in list order.
func (l *DesktopLayout) canonicalString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d,%d,%d,%d;", l.OriginX, l.OriginY, l.Width, l.Height)
	for _, m := range l.Monitors {
		sb.WriteString(m.Name)
		sb.WriteByte('|')
		sb.WriteString(strconv.Itoa(m.X))
		sb.WriteByte('|')
		sb.WriteString(strconv.Itoa(m.Y))
		sb.WriteByte('|')
		sb.WriteString(strconv.Itoa(m.Width))
		sb.WriteByte('|')
		sb.WriteString(strconv.Itoa(m.Height))
		sb.WriteByte('|')
		sb.WriteString(m.Rotation)
		sb.WriteByte('|')
		sb.WriteString(formatScale(m.ScaleX))
		sb.WriteByte('|')
		sb.WriteString(formatScale(m.ScaleY))
		sb.WriteByte('|')
		sb.WriteString(m.EdidHash)
		sb.WriteByte(';')
	}
	return sb.String()
}

// FindMonitorByIndex looks the monitor up by its reported index, then by
// list position.
func (l *DesktopLayout) FindMonitorByIndex(index int) (Monitor, bool) {
	for _, m := range l.Monitors {
		if m.Index == index {
			return m, true
		}
	}
	if index >= 0 && index < len(l.Monitors) {
		return l.Monitors[index], true
	}
	return Monitor{}, false
}

// FindMonitorByName matches by exact output name.
func (l *DesktopLayout) FindMonitorByName(name string) (Monitor, bool) {
	for _, m := range l.Monitors {
		if m.Name == name {
			return m, true
		}
	}
	return Monitor{}, false
}

// hashString is 64-bit FNV-1a as lowercase hex without leading zeros.
func hashString(data string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(data))
	return strconv.FormatUint(h.Sum64(), 16)
}

// formatScale renders scale factors the way the fingerprint expects:
// shortest decimal, integers without a fraction.
func formatScale(v float64) string {
	if v == 0 {
		v = 1
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
