// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package touchscreen

import (
	"math"

	"golang.org/x/xerrors"
)

// CalibrationMode selects how raw device coordinates map to the screen.
type CalibrationMode int32

const (
	// CalibrationMinMax is an axis-aligned linear mapping from the raw
	// [min,max] ranges onto [0,screen-1].
	CalibrationMinMax CalibrationMode = iota
	// CalibrationAffine is a six-parameter mapping fitted from corner
	// samples.
	CalibrationAffine
)

func (m CalibrationMode) String() string {
	if m == CalibrationAffine {
		return "affine"
	}
	return "minmax"
}

// Calibration converts raw device coordinates to logical screen
// coordinates. The additive offset applies after mapping; the result is
// clamped to [offset, offset+screen-1] and rounded half to even.
type Calibration struct {
	Mode CalibrationMode

	MinX float64
	MaxX float64
	MinY float64
	MaxY float64

	// Affine holds (a,b,c,d,e,f) with screenX = a*rx + b*ry + c and
	// screenY = d*rx + e*ry + f.
	Affine [6]float64

	ScreenWidth  int
	ScreenHeight int
	XOffset      int
	YOffset      int

	MarginPercent float64
}

// ErrCalibrationInvalid covers non-monotone ranges, singular fit
// matrices and zero screen dimensions.
var ErrCalibrationInvalid = xerrors.New("touchscreen: invalid calibration")

func defaultCalibration() Calibration {
	return Calibration{
		Mode:         CalibrationMinMax,
		MinX:         0,
		MaxX:         4095,
		MinY:         0,
		MaxY:         4095,
		Affine:       [6]float64{1, 0, 0, 0, 1, 0},
		ScreenWidth:  1920,
		ScreenHeight: 1080,
	}
}

// Apply maps one raw sample. The affine branch is clamped only on the
// final output so it stays stable on intermediate values; the MinMax
// branch also clamps its normalised u,v to [0,1].
func (c *Calibration) Apply(rawX, rawY int) (x, y int) {
	rx := float64(rawX)
	ry := float64(rawY)

	var mappedX, mappedY float64
	if c.Mode == CalibrationAffine {
		mappedX = c.Affine[0]*rx + c.Affine[1]*ry + c.Affine[2]
		mappedY = c.Affine[3]*rx + c.Affine[4]*ry + c.Affine[5]
	} else {
		rangeX := c.MaxX - c.MinX
		rangeY := c.MaxY - c.MinY
		if rangeX <= 0 {
			rangeX = 1
		}
		if rangeY <= 0 {
			rangeY = 1
		}
		u := clampF((rx-c.MinX)/rangeX, 0, 1)
		v := clampF((ry-c.MinY)/rangeY, 0, 1)
		mappedX = u * float64(maxInt(0, c.ScreenWidth-1))
		mappedY = v * float64(maxInt(0, c.ScreenHeight-1))
	}

	mappedX += float64(c.XOffset)
	mappedY += float64(c.YOffset)

	minX := float64(c.XOffset)
	maxX := minX + float64(maxInt(0, c.ScreenWidth-1))
	minY := float64(c.YOffset)
	maxY := minY + float64(maxInt(0, c.ScreenHeight-1))

	x = int(math.RoundToEven(clampF(mappedX, minX, maxX)))
	y = int(math.RoundToEven(clampF(mappedY, minY, maxY)))
	return x, y
}

// Point is a raw or screen sample used by the corner fit.
type Point struct {
	X float64
	Y float64
}

// CalibrationTargets returns the four screen-space fit targets for the
// given dimensions, inset 20 px from each edge, in TL, TR, BR, BL order.
func CalibrationTargets(screenWidth, screenHeight int) [4]Point {
	w := float64(screenWidth)
	h := float64(screenHeight)
	const inset = 20.0
	return [4]Point{
		{inset, inset},
		{w - inset, inset},
		{w - inset, h - inset},
		{inset, h - inset},
	}
}

// FitFromCorners builds a calibration from four raw corner samples in
// TL, TR, BR, BL order and their screen targets. In affine mode a
// singular system falls back to the MinMax derivation.
func FitFromCorners(samples, targets [4]Point, mode CalibrationMode,
	screenWidth, screenHeight int, marginPercent float64) (Calibration, error) {

	if screenWidth <= 0 || screenHeight <= 0 {
		return Calibration{}, xerrors.Errorf("fit: %dx%d screen: %w",
			screenWidth, screenHeight, ErrCalibrationInvalid)
	}

	cal := defaultCalibration()
	cal.ScreenWidth = screenWidth
	cal.ScreenHeight = screenHeight
	cal.MarginPercent = marginPercent

	if mode == CalibrationAffine {
		affine, ok := solveLeastSquares(samples, targets)
		if ok {
			cal.Mode = CalibrationAffine
			cal.Affine = affine
			return cal, nil
		}
		logger.Warning("affine fit is singular, falling back to minmax")
	}

	minX := (samples[0].X + samples[3].X) / 2
	maxX := (samples[1].X + samples[2].X) / 2
	minY := (samples[0].Y + samples[1].Y) / 2
	maxY := (samples[3].Y + samples[2].Y) / 2

	shrinkX := marginPercent / 100 * (maxX - minX)
	shrinkY := marginPercent / 100 * (maxY - minY)
	minX += shrinkX
	maxX -= shrinkX
	minY += shrinkY
	maxY -= shrinkY

	if maxX-minX <= 0 || maxY-minY <= 0 {
		return Calibration{}, xerrors.Errorf("fit: collapsed range: %w", ErrCalibrationInvalid)
	}

	cal.Mode = CalibrationMinMax
	cal.MinX = minX
	cal.MaxX = maxX
	cal.MinY = minY
	cal.MaxY = maxY
	return cal, nil
}

// solveLeastSquares solves the two 3x3 normal-equation systems of the
// affine fit, one per output axis.
func solveLeastSquares(raw, target [4]Point) ([6]float64, bool) {
	var m [3][3]float64
	var bx, by [3]float64

	for i := range raw {
		v := [3]float64{raw[i].X, raw[i].Y, 1}
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				m[r][c] += v[r] * v[c]
			}
		}
		for r := 0; r < 3; r++ {
			bx[r] += v[r] * target[i].X
			by[r] += v[r] * target[i].Y
		}
	}

	ax, ok := gaussJordan3(m, bx)
	if !ok {
		return [6]float64{}, false
	}
	ay, ok := gaussJordan3(m, by)
	if !ok {
		return [6]float64{}, false
	}
	return [6]float64{ax[0], ax[1], ax[2], ay[0], ay[1], ay[2]}, true
}

// gaussJordan3 runs Gauss-Jordan elimination with partial pivoting on a
// 3x3 system. Pivots below 1e-9 in magnitude mean a singular system.
func gaussJordan3(m [3][3]float64, b [3]float64) ([3]float64, bool) {
	const pivotEps = 1e-9

	for i := 0; i < 3; i++ {
		pivotRow := i
		pivot := math.Abs(m[i][i])
		for r := i + 1; r < 3; r++ {
			if math.Abs(m[r][i]) > pivot {
				pivot = math.Abs(m[r][i])
				pivotRow = r
			}
		}
		if pivot < pivotEps {
			return [3]float64{}, false
		}
		if pivotRow != i {
			m[i], m[pivotRow] = m[pivotRow], m[i]
			b[i], b[pivotRow] = b[pivotRow], b[i]
		}

		diag := m[i][i]
		for c := 0; c < 3; c++ {
			m[i][c] /= diag
		}
		b[i] /= diag

		for r := 0; r < 3; r++ {
			if r == i {
				continue
			}
			factor := m[r][i]
			for c := 0; c < 3; c++ {
				m[r][c] -= factor * m[i][c]
			}
			b[r] -= factor * b[i]
		}
	}
	return b, true
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
