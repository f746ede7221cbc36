// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleListReport = `Monitors: 2
 0: +*eDP-1 1920/344x1080/194+0+0  eDP-1
 1: +HDMI-1 1920/509x1080/286+1920+0  HDMI-1
`

const sampleVerboseReport = `Screen 0: minimum 320 x 200, current 3840 x 1080, maximum 16384 x 16384
eDP-1 connected primary 1920x1080+0+0 (0x47) normal (normal left inverted right x axis y axis) 344mm x 194mm
	Identifier: 0x42
	Scale: 1.25 x 1.25
	EDID:
		00ffffffffffff0006af3d5700000000
		001c0104a51f117802ee95a3544c9926
		0f505400000001010101010101010101
	Brightness: 1.0
HDMI-1 connected 1920x1080+1920+0 (0x48) left (normal left inverted right x axis y axis) 509mm x 286mm
	Identifier: 0x43
	Scale: 1 x 1
`

func Test_ParseMonitorsReport(t *testing.T) {
	monitors := parseMonitorsReport(sampleListReport)
	require.Len(t, monitors, 2)

	assert.Equal(t, 0, monitors[0].Index)
	assert.Equal(t, "eDP-1", monitors[0].Name)
	assert.True(t, monitors[0].Primary)
	assert.Equal(t, 1920, monitors[0].Width)
	assert.Equal(t, 1080, monitors[0].Height)
	assert.Equal(t, 0, monitors[0].X)
	assert.Equal(t, 0, monitors[0].Y)
	assert.Equal(t, RotationNormal, monitors[0].Rotation)
	assert.Equal(t, 1.0, monitors[0].ScaleX)

	assert.Equal(t, 1, monitors[1].Index)
	assert.Equal(t, "HDMI-1", monitors[1].Name)
	assert.False(t, monitors[1].Primary)
	assert.Equal(t, 1920, monitors[1].X)
}

func Test_ParseMonitorsReportTolerance(t *testing.T) {
	report := "Monitors: 1\n\n   1:   +DP-3    2560/597x1440/336-100+200   DP-3  \n"
	monitors := parseMonitorsReport(report)
	require.Len(t, monitors, 1)
	assert.Equal(t, 2560, monitors[0].Width)
	assert.Equal(t, 1440, monitors[0].Height)
	assert.Equal(t, -100, monitors[0].X)
	assert.Equal(t, 200, monitors[0].Y)
	assert.Equal(t, "DP-3", monitors[0].Name)
}

func Test_ApplyVerboseReport(t *testing.T) {
	monitors := parseMonitorsReport(sampleListReport)
	require.Len(t, monitors, 2)
	applyVerboseReport(monitors, sampleVerboseReport)

	assert.Equal(t, RotationNormal, monitors[0].Rotation)
	assert.Equal(t, 1.25, monitors[0].ScaleX)
	assert.Equal(t, 1.25, monitors[0].ScaleY)
	assert.NotEmpty(t, monitors[0].EdidHash)

	assert.Equal(t, RotationLeft, monitors[1].Rotation)
	assert.Equal(t, 1.0, monitors[1].ScaleX)
	assert.Empty(t, monitors[1].EdidHash)
}

func Test_ApplyVerboseReportEdidHashStable(t *testing.T) {
	run := func() string {
		monitors := parseMonitorsReport(sampleListReport)
		applyVerboseReport(monitors, sampleVerboseReport)
		return monitors[0].EdidHash
	}
	assert.Equal(t, run(), run())

	// Whitespace inside the EDID block does not change the hash.
	reindented := "eDP-1 connected primary 1920x1080+0+0 (0x47) normal () 344mm x 194mm\n" +
		"  EDID:\n" +
		"      00ffffffffffff0006af3d5700000000\n" +
		"      001c0104a51f1178 02ee95a3544c9926\n" +
		"      0f505400000001010101010101010101\n"
	monitors := parseMonitorsReport(sampleListReport)
	applyVerboseReport(monitors, reindented)
	assert.Equal(t, run(), monitors[0].EdidHash)
}

func Test_ParseLayoutReports(t *testing.T) {
	layout, err := ParseLayoutReports(sampleListReport, sampleVerboseReport)
	require.NoError(t, err)

	assert.Equal(t, 0, layout.OriginX)
	assert.Equal(t, 0, layout.OriginY)
	assert.Equal(t, 3840, layout.Width)
	assert.Equal(t, 1080, layout.Height)
	assert.NotEmpty(t, layout.Hash)
}

func Test_ParseLayoutReportsEmpty(t *testing.T) {
	_, err := ParseLayoutReports("Monitors: 0\n", "")
	assert.ErrorIs(t, err, ErrLayoutMissing)
}
