// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ComputeCTMRightHandMonitor(t *testing.T) {
	layout := twoMonitorLayout()
	require.NoError(t, layout.finalize())

	m := ComputeCTM(layout, layout.Monitors[1])
	expected := TransformationMatrix{0.5, 0, 0.5, 0, 1, 0, 0, 0, 1}
	for i := range expected {
		assert.InDelta(t, expected[i], m[i], 1e-12, "m%d", i)
	}
}

func Test_ComputeCTMNormalCorners(t *testing.T) {
	layout := &DesktopLayout{
		Monitors: []Monitor{
			{Name: "a", X: 0, Y: 0, Width: 2560, Height: 1440, ScaleX: 1, ScaleY: 1, Rotation: RotationNormal},
			{Name: "b", X: 2560, Y: 360, Width: 1920, Height: 1080, ScaleX: 1, ScaleY: 1, Rotation: RotationNormal},
		},
	}
	require.NoError(t, layout.finalize())

	mon := layout.Monitors[1]
	m := ComputeCTM(layout, mon)

	dw := float64(layout.Width)
	dh := float64(layout.Height)
	ox := float64(mon.X - layout.OriginX)
	oy := float64(mon.Y - layout.OriginY)
	w := float64(mon.Width)
	h := float64(mon.Height)

	x0, y0 := m.Apply(0, 0)
	assert.InDelta(t, ox/dw, x0, 1e-12)
	assert.InDelta(t, oy/dh, y0, 1e-12)

	x1, y1 := m.Apply(1, 1)
	assert.InDelta(t, (ox+w)/dw, x1, 1e-12)
	assert.InDelta(t, (oy+h)/dh, y1, 1e-12)
}

func Test_ComputeCTMRotations(t *testing.T) {
	layout := twoMonitorLayout()
	require.NoError(t, layout.finalize())
	mon := layout.Monitors[1]

	// ox=1920 oy=0 W=1920 H=1080 inside a 3840x1080 desktop.
	cases := map[string]TransformationMatrix{
		RotationNormal:   {0.5, 0, 0.5, 0, 1, 0, 0, 0, 1},
		RotationInverted: {-0.5, 0, 1, 0, -1, 1, 0, 0, 1},
		RotationLeft:     {0, 1080.0 / 3840, 0.5, -1920.0 / 1080, 0, 1920.0 / 1080, 0, 0, 1},
		RotationRight:    {0, -1080.0 / 3840, 3000.0 / 3840, 1920.0 / 1080, 0, 0, 0, 0, 1},
	}
	for rotation, expected := range cases {
		mon.Rotation = rotation
		m := ComputeCTM(layout, mon)
		for i := range expected {
			assert.InDelta(t, expected[i], m[i], 1e-12, "rotation %s m%d", rotation, i)
		}
	}
}

func Test_ComputeCTMInverted(t *testing.T) {
	layout := twoMonitorLayout()
	require.NoError(t, layout.finalize())
	mon := layout.Monitors[1]
	mon.Rotation = RotationInverted

	m := ComputeCTM(layout, mon)
	// (0,0) maps to the sub-rectangle's far corner.
	x, y := m.Apply(0, 0)
	assert.InDelta(t, 1.0, x, 1e-12)
	assert.InDelta(t, 1.0, y, 1e-12)
	x, y = m.Apply(1, 1)
	assert.InDelta(t, 0.5, x, 1e-12)
	assert.InDelta(t, 0.0, y, 1e-12)
}

func Test_ComputeCTMScale(t *testing.T) {
	layout := &DesktopLayout{
		Monitors: []Monitor{
			{Name: "a", X: 0, Y: 0, Width: 1920, Height: 1080, ScaleX: 2, ScaleY: 2, Rotation: RotationNormal},
		},
	}
	require.NoError(t, layout.finalize())

	m := ComputeCTM(layout, layout.Monitors[0])
	// W and H double under scale while the desktop box stays put.
	assert.InDelta(t, 2.0, m[0], 1e-12)
	assert.InDelta(t, 2.0, m[4], 1e-12)
}

func Test_IdentityMatrix(t *testing.T) {
	m := IdentityMatrix()
	x, y := m.Apply(0.25, 0.75)
	assert.Equal(t, 0.25, x)
	assert.Equal(t, 0.75, y)
}
