// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoMonitorLayout() *DesktopLayout {
	return &DesktopLayout{
		Monitors: []Monitor{
			{Index: 0, Name: "eDP-1", Primary: true, X: 0, Y: 0, Width: 1920, Height: 1080,
				ScaleX: 1, ScaleY: 1, Rotation: RotationNormal, EdidHash: "aa11"},
			{Index: 1, Name: "HDMI-1", X: 1920, Y: 0, Width: 1920, Height: 1080,
				ScaleX: 1, ScaleY: 1, Rotation: RotationNormal, EdidHash: "bb22"},
		},
	}
}

func Test_LayoutBounds(t *testing.T) {
	layout := twoMonitorLayout()
	require.NoError(t, layout.finalize())

	assert.Equal(t, 0, layout.OriginX)
	assert.Equal(t, 0, layout.OriginY)
	assert.Equal(t, 3840, layout.Width)
	assert.Equal(t, 1080, layout.Height)
}

func Test_LayoutBoundsNegativeOrigin(t *testing.T) {
	layout := &DesktopLayout{
		Monitors: []Monitor{
			{Name: "a", X: -1920, Y: 100, Width: 1920, Height: 1080, ScaleX: 1, ScaleY: 1, Rotation: RotationNormal},
			{Name: "b", X: 0, Y: 0, Width: 2560, Height: 1440, ScaleX: 1, ScaleY: 1, Rotation: RotationNormal},
		},
	}
	require.NoError(t, layout.finalize())

	assert.Equal(t, -1920, layout.OriginX)
	assert.Equal(t, 0, layout.OriginY)
	assert.Equal(t, 4480, layout.Width)
	assert.Equal(t, 1440, layout.Height)
}

func Test_LayoutHashStable(t *testing.T) {
	a := twoMonitorLayout()
	b := twoMonitorLayout()
	require.NoError(t, a.finalize())
	require.NoError(t, b.finalize())
	assert.Equal(t, a.Hash, b.Hash)
}

func Test_LayoutHashChanges(t *testing.T) {
	base := twoMonitorLayout()
	require.NoError(t, base.finalize())

	mutations := []func(l *DesktopLayout){
		func(l *DesktopLayout) { l.Monitors[1].Rotation = RotationLeft },
		func(l *DesktopLayout) { l.Monitors[1].ScaleX = 1.25 },
		func(l *DesktopLayout) { l.Monitors[1].EdidHash = "cc33" },
		func(l *DesktopLayout) { l.Monitors[1].X = 1000 },
		func(l *DesktopLayout) { l.Monitors[1].Width = 2560 },
		func(l *DesktopLayout) { l.Monitors[1].Name = "DP-2" },
	}
	for i, mutate := range mutations {
		layout := twoMonitorLayout()
		mutate(layout)
		require.NoError(t, layout.finalize())
		assert.NotEqual(t, base.Hash, layout.Hash, "mutation %d", i)
	}
}

func Test_LayoutHashFormat(t *testing.T) {
	layout := twoMonitorLayout()
	require.NoError(t, layout.finalize())
	assert.Regexp(t, "^[0-9a-f]+$", layout.Hash)
	assert.NotEqual(t, "0", layout.Hash[:1])
}

func Test_HashStringKnownValue(t *testing.T) {
	// FNV-1a 64-bit of an empty string is the offset basis.
	assert.Equal(t, "cbf29ce484222325", hashString(""))
	// Leading zeros are not padded.
	assert.NotContains(t, hashString("a")[:1], "0")
}

func Test_FindMonitor(t *testing.T) {
	layout := twoMonitorLayout()
	require.NoError(t, layout.finalize())

	m, ok := layout.FindMonitorByIndex(1)
	require.True(t, ok)
	assert.Equal(t, "HDMI-1", m.Name)

	m, ok = layout.FindMonitorByName("eDP-1")
	require.True(t, ok)
	assert.True(t, m.Primary)

	_, ok = layout.FindMonitorByIndex(5)
	assert.False(t, ok)
	_, ok = layout.FindMonitorByName("DP-9")
	assert.False(t, ok)
}

func Test_FinalizeEmpty(t *testing.T) {
	layout := &DesktopLayout{}
	assert.ErrorIs(t, layout.finalize(), ErrLayoutMissing)
}
