// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package touchscreen

import (
	"fmt"
	"strconv"

	"github.com/linuxdeepin/go-lib/keyfile"
)

const (
	calSectionMain     = "Calibration"
	calSectionAffine   = "Affine"
	calSectionMetadata = "Metadata"

	calKeyMode         = "mode"
	calKeyMinX         = "min_x"
	calKeyMaxX         = "max_x"
	calKeyMinY         = "min_y"
	calKeyMaxY         = "max_y"
	calKeyScreenWidth  = "screen_width"
	calKeyScreenHeight = "screen_height"
	calKeyOffsetX      = "offset_x"
	calKeyOffsetY      = "offset_y"
	calKeyMargin       = "margin_percent"
)

// formatCalFloat writes C-locale decimals with six fractional digits.
func formatCalFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// loadCalibrationFile reads the file over base: keys present in the file
// replace the corresponding fields, missing keys keep the base values.
func loadCalibrationFile(filename string, base Calibration) (Calibration, error) {
	kf := keyfile.NewKeyFile()
	err := kf.LoadFromFile(filename)
	if err != nil {
		return base, err
	}

	cal := base

	if mode, err := kf.GetString(calSectionMain, calKeyMode); err == nil {
		switch mode {
		case "affine":
			cal.Mode = CalibrationAffine
		case "minmax":
			cal.Mode = CalibrationMinMax
		default:
			return base, fmt.Errorf("calibration file %q: unknown mode %q", filename, mode)
		}
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{calKeyMinX, &cal.MinX},
		{calKeyMaxX, &cal.MaxX},
		{calKeyMinY, &cal.MinY},
		{calKeyMaxY, &cal.MaxY},
		{calKeyMargin, &cal.MarginPercent},
	}
	for _, f := range floats {
		if v, err := kf.GetFloat64(calSectionMain, f.key); err == nil {
			*f.dst = v
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{calKeyScreenWidth, &cal.ScreenWidth},
		{calKeyScreenHeight, &cal.ScreenHeight},
		{calKeyOffsetX, &cal.XOffset},
		{calKeyOffsetY, &cal.YOffset},
	}
	for _, f := range ints {
		if v, err := kf.GetInteger(calSectionMain, f.key); err == nil {
			*f.dst = int(v)
		}
	}

	if cal.Mode == CalibrationAffine {
		for i := 0; i < 6; i++ {
			key := fmt.Sprintf("m%d", i)
			if v, err := kf.GetFloat64(calSectionAffine, key); err == nil {
				cal.Affine[i] = v
			}
		}
	}

	if cal.MaxX <= cal.MinX || cal.MaxY <= cal.MinY {
		logger.Warningf("calibration file %q has non-monotone ranges, Apply will fall back to range=1", filename)
	}
	return cal, nil
}

// saveCalibrationFile writes the calibration. When the file already
// exists its unknown keys and the Metadata section are retained.
func saveCalibrationFile(filename string, cal Calibration) error {
	kf := keyfile.NewKeyFile()
	// Best effort: a missing or unreadable file just means a fresh one.
	_ = kf.LoadFromFile(filename)

	kf.SetString(calSectionMain, calKeyMode, cal.Mode.String())
	kf.SetValue(calSectionMain, calKeyMinX, formatCalFloat(cal.MinX))
	kf.SetValue(calSectionMain, calKeyMaxX, formatCalFloat(cal.MaxX))
	kf.SetValue(calSectionMain, calKeyMinY, formatCalFloat(cal.MinY))
	kf.SetValue(calSectionMain, calKeyMaxY, formatCalFloat(cal.MaxY))
	kf.SetInteger(calSectionMain, calKeyScreenWidth, int32(cal.ScreenWidth))
	kf.SetInteger(calSectionMain, calKeyScreenHeight, int32(cal.ScreenHeight))
	kf.SetInteger(calSectionMain, calKeyOffsetX, int32(cal.XOffset))
	kf.SetInteger(calSectionMain, calKeyOffsetY, int32(cal.YOffset))
	kf.SetValue(calSectionMain, calKeyMargin, formatCalFloat(cal.MarginPercent))

	if cal.Mode == CalibrationAffine {
		for i := 0; i < 6; i++ {
			kf.SetValue(calSectionAffine, fmt.Sprintf("m%d", i), formatCalFloat(cal.Affine[i]))
		}
	}

	return kf.SaveToFile(filename)
}
