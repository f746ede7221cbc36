// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package touchscreen

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minmaxCalibration(minX, maxX, minY, maxY float64, w, h int) Calibration {
	cal := defaultCalibration()
	cal.MinX = minX
	cal.MaxX = maxX
	cal.MinY = minY
	cal.MaxY = maxY
	cal.ScreenWidth = w
	cal.ScreenHeight = h
	return cal
}

func Test_ApplyMinMax(t *testing.T) {
	cal := minmaxCalibration(0, 4095, 0, 4095, 1920, 1080)

	x, y := cal.Apply(2048, 1024)
	assert.Equal(t, 960, x)
	assert.Equal(t, 270, y)

	x, y = cal.Apply(0, 0)
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)

	x, y = cal.Apply(4095, 4095)
	assert.Equal(t, 1919, x)
	assert.Equal(t, 1079, y)

	// Out-of-range raw values clamp to the screen edges.
	x, y = cal.Apply(-500, 9000)
	assert.Equal(t, 0, x)
	assert.Equal(t, 1079, y)
}

func Test_ApplyMinMaxOffset(t *testing.T) {
	cal := minmaxCalibration(0, 4095, 0, 4095, 800, 600)
	cal.XOffset = 100
	cal.YOffset = 50

	x, y := cal.Apply(0, 0)
	assert.Equal(t, 100, x)
	assert.Equal(t, 50, y)

	x, y = cal.Apply(4095, 4095)
	assert.Equal(t, 100+799, x)
	assert.Equal(t, 50+599, y)
}

func Test_ApplyZeroRange(t *testing.T) {
	// Non-monotone ranges fall back to range=1 instead of failing.
	cal := minmaxCalibration(100, 100, 200, 100, 1920, 1080)

	x, y := cal.Apply(100, 200)
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)

	x, _ = cal.Apply(101, 200)
	assert.Equal(t, 1919, x)
}

func Test_ApplyAffine(t *testing.T) {
	cal := defaultCalibration()
	cal.Mode = CalibrationAffine
	cal.ScreenWidth = 1920
	cal.ScreenHeight = 1080
	// Pure scale from a 4096 raw range.
	s := 1920.0 / 4096.0
	sy := 1080.0 / 4096.0
	cal.Affine = [6]float64{s, 0, 0, 0, sy, 0}

	x, y := cal.Apply(2048, 2048)
	assert.Equal(t, 960, x)
	assert.Equal(t, 540, y)

	// Clamped to the output window even for wild raw input.
	x, y = cal.Apply(100000, -100000)
	assert.Equal(t, 1919, x)
	assert.Equal(t, 0, y)
}

func Test_FitAffineCorners(t *testing.T) {
	samples := [4]Point{{100, 100}, {3900, 120}, {3920, 2980}, {80, 3000}}
	targets := CalibrationTargets(1920, 1080)

	cal, err := FitFromCorners(samples, targets, CalibrationAffine, 1920, 1080, 0)
	require.NoError(t, err)
	require.Equal(t, CalibrationAffine, cal.Mode)

	for i := range samples {
		mx := cal.Affine[0]*samples[i].X + cal.Affine[1]*samples[i].Y + cal.Affine[2]
		my := cal.Affine[3]*samples[i].X + cal.Affine[4]*samples[i].Y + cal.Affine[5]
		assert.InDelta(t, targets[i].X, mx, 2, "corner %d x", i)
		assert.InDelta(t, targets[i].Y, my, 2, "corner %d y", i)
	}
}

func Test_FitMinMaxCorners(t *testing.T) {
	samples := [4]Point{{100, 100}, {3900, 120}, {3920, 2980}, {80, 3000}}
	targets := CalibrationTargets(1920, 1080)

	cal, err := FitFromCorners(samples, targets, CalibrationMinMax, 1920, 1080, 0)
	require.NoError(t, err)
	assert.Equal(t, CalibrationMinMax, cal.Mode)
	assert.InDelta(t, 90, cal.MinX, 1e-9)
	assert.InDelta(t, 3910, cal.MaxX, 1e-9)
	assert.InDelta(t, 110, cal.MinY, 1e-9)
	assert.InDelta(t, 2990, cal.MaxY, 1e-9)
}

func Test_FitMargin(t *testing.T) {
	samples := [4]Point{{0, 0}, {1000, 0}, {1000, 1000}, {0, 1000}}
	targets := CalibrationTargets(1920, 1080)

	cal, err := FitFromCorners(samples, targets, CalibrationMinMax, 1920, 1080, 10)
	require.NoError(t, err)
	assert.InDelta(t, 100, cal.MinX, 1e-9)
	assert.InDelta(t, 900, cal.MaxX, 1e-9)
	assert.InDelta(t, 100, cal.MinY, 1e-9)
	assert.InDelta(t, 900, cal.MaxY, 1e-9)
}

func Test_FitDegenerate(t *testing.T) {
	// Identical samples: the affine system is singular and the MinMax
	// fallback collapses, so the fit is rejected.
	samples := [4]Point{{500, 500}, {500, 500}, {500, 500}, {500, 500}}
	targets := CalibrationTargets(1920, 1080)

	_, err := FitFromCorners(samples, targets, CalibrationAffine, 1920, 1080, 0)
	assert.ErrorIs(t, err, ErrCalibrationInvalid)

	_, err = FitFromCorners(samples, targets, CalibrationMinMax, 0, 0, 0)
	assert.ErrorIs(t, err, ErrCalibrationInvalid)
}

func Test_GaussJordanSingular(t *testing.T) {
	var zero [3][3]float64
	_, ok := gaussJordan3(zero, [3]float64{1, 2, 3})
	assert.False(t, ok)

	identity := [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	sol, ok := gaussJordan3(identity, [3]float64{4, 5, 6})
	assert.True(t, ok)
	assert.Equal(t, [3]float64{4, 5, 6}, sol)
}

func Test_GaussJordanPivoting(t *testing.T) {
	// Leading zero forces a row swap.
	m := [3][3]float64{{0, 2, 1}, {1, 1, 1}, {1, 0, 2}}
	b := [3]float64{7, 6, 7}
	sol, ok := gaussJordan3(m, b)
	require.True(t, ok)
	// Solution of the system is (1, 2, 3).
	assert.InDelta(t, 1, sol[0], 1e-9)
	assert.InDelta(t, 2, sol[1], 1e-9)
	assert.InDelta(t, 3, sol[2], 1e-9)
}

func Test_RoundHalfToEven(t *testing.T) {
	assert.Equal(t, 2.0, math.RoundToEven(2.5))
	assert.Equal(t, 4.0, math.RoundToEven(3.5))
}
