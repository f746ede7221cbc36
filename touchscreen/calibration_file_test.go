// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package touchscreen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CalibrationFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.ini")

	cal := defaultCalibration()
	cal.MinX = 12.5
	cal.MaxX = 4012.25
	cal.MinY = 8
	cal.MaxY = 3991.75
	cal.ScreenWidth = 1920
	cal.ScreenHeight = 1080
	cal.XOffset = 10
	cal.YOffset = -5
	cal.MarginPercent = 2.5

	require.NoError(t, saveCalibrationFile(path, cal))

	loaded, err := loadCalibrationFile(path, defaultCalibration())
	require.NoError(t, err)
	assert.Equal(t, cal, loaded)

	// Applying both over the raw range yields identical outputs.
	for _, raw := range [][2]int{{0, 0}, {13, 9}, {2048, 2048}, {4012, 3991}, {4095, 4095}} {
		x1, y1 := cal.Apply(raw[0], raw[1])
		x2, y2 := loaded.Apply(raw[0], raw[1])
		assert.Equal(t, x1, x2)
		assert.Equal(t, y1, y2)
	}
}

func Test_CalibrationFileAffineRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.ini")

	cal := defaultCalibration()
	cal.Mode = CalibrationAffine
	cal.Affine = [6]float64{0.468750, 0.00125, -4.5, -0.0025, 0.263672, 6.25}
	cal.ScreenWidth = 1920
	cal.ScreenHeight = 1080

	require.NoError(t, saveCalibrationFile(path, cal))

	loaded, err := loadCalibrationFile(path, defaultCalibration())
	require.NoError(t, err)
	assert.Equal(t, CalibrationAffine, loaded.Mode)
	assert.Equal(t, cal.Affine, loaded.Affine)
}

func Test_CalibrationFileMissingKeysKeepCurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.ini")
	content := "[Calibration]\nmode=minmax\nmin_x=100.000000\nmax_x=4000.000000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	base := defaultCalibration()
	base.MinY = 55
	base.MaxY = 3333
	base.ScreenWidth = 800
	base.ScreenHeight = 600

	loaded, err := loadCalibrationFile(path, base)
	require.NoError(t, err)
	assert.Equal(t, 100.0, loaded.MinX)
	assert.Equal(t, 4000.0, loaded.MaxX)
	assert.Equal(t, 55.0, loaded.MinY)
	assert.Equal(t, 3333.0, loaded.MaxY)
	assert.Equal(t, 800, loaded.ScreenWidth)
	assert.Equal(t, 600, loaded.ScreenHeight)
}

func Test_CalibrationFileUnknownKeysRetained(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.ini")
	content := "[Calibration]\nmode=minmax\nmin_x=0.000000\nmax_x=4095.000000\n" +
		"[Metadata]\ndevice=Test Panel\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cal, err := loadCalibrationFile(path, defaultCalibration())
	require.NoError(t, err)
	require.NoError(t, saveCalibrationFile(path, cal))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "device=Test Panel")
}

func Test_CalibrationFileBadMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.ini")
	require.NoError(t, os.WriteFile(path, []byte("[Calibration]\nmode=cubic\n"), 0644))

	_, err := loadCalibrationFile(path, defaultCalibration())
	assert.Error(t, err)
}
