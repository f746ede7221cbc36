// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

// TransformationMatrix is a row-major 3x3 affine matrix over normalised
// desktop coordinates, suitable for the input extension's Coordinate
// Transformation Matrix property.
type TransformationMatrix [9]float64

// IdentityMatrix maps the whole desktop onto itself.
func IdentityMatrix() TransformationMatrix {
	return TransformationMatrix{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// ComputeCTM derives the matrix that restricts a full-desktop pointer
// to the monitor's sub-rectangle under its rotation and scale. The
// matrix is returned for an external push to the display server; it is
// never applied here.
func ComputeCTM(layout *DesktopLayout, monitor Monitor) TransformationMatrix {
	dw := float64(layout.Width)
	if dw < 1 {
		dw = 1
	}
	dh := float64(layout.Height)
	if dh < 1 {
		dh = 1
	}

	ox := float64(monitor.X - layout.OriginX)
	oy := float64(monitor.Y - layout.OriginY)

	sx := monitor.ScaleX
	if sx <= 0 {
		sx = 1
	}
	sy := monitor.ScaleY
	if sy <= 0 {
		sy = 1
	}
	w := float64(monitor.Width) * sx
	h := float64(monitor.Height) * sy

	m := IdentityMatrix()
	switch monitor.Rotation {
	case RotationInverted:
		m[0], m[1], m[2] = -w/dw, 0, (ox+w)/dw
		m[3], m[4], m[5] = 0, -h/dh, (oy+h)/dh
	case RotationLeft:
		m[0], m[1], m[2] = 0, h/dw, ox/dw
		m[3], m[4], m[5] = -w/dh, 0, (oy+w)/dh
	case RotationRight:
		m[0], m[1], m[2] = 0, -h/dw, (ox+h)/dw
		m[3], m[4], m[5] = w/dh, 0, oy/dh
	default:
		m[0], m[1], m[2] = w/dw, 0, ox/dw
		m[3], m[4], m[5] = 0, h/dh, oy/dh
	}
	return m
}

// Apply maps one normalised point through the matrix.
func (m TransformationMatrix) Apply(u, v float64) (float64, float64) {
	x := m[0]*u + m[1]*v + m[2]
	y := m[3]*u + m[4]*v + m[5]
	w := m[6]*u + m[7]*v + m[8]
	if w != 0 && w != 1 {
		x /= w
		y /= w
	}
	return x, y
}
