// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package touchscreen

import (
	"fmt"
	"time"
)

var calibrationCorners = [4]string{"top-left", "top-right", "bottom-right", "bottom-left"}

// RunCalibration collects one touch per screen corner (TL, TR, BR, BL)
// from the live stream and installs the fitted calibration, preferring
// the affine fit and falling back to MinMax. The user callback is
// suspended for the duration and restored afterwards.
func (r *Reader) RunCalibration(screenWidth, screenHeight int) error {
	if !r.running.Load() {
		return ErrNotRunning
	}
	if screenWidth <= 0 || screenHeight <= 0 {
		return fmt.Errorf("run calibration: %dx%d screen: %w",
			screenWidth, screenHeight, ErrCalibrationInvalid)
	}

	type cornerSample struct {
		x, y int
	}
	downs := make(chan cornerSample, 8)
	ups := make(chan struct{}, 8)

	r.touchMu.Lock()
	saved := r.callback
	margin := r.cal.MarginPercent
	r.callback = func(ev *TouchEvent) {
		switch ev.Type {
		case TouchDown:
			select {
			case downs <- cornerSample{ev.RawX, ev.RawY}:
			default:
			}
		case TouchUp:
			select {
			case ups <- struct{}{}:
			default:
			}
		}
	}
	r.touchMu.Unlock()

	defer func() {
		r.touchMu.Lock()
		r.callback = saved
		r.touchMu.Unlock()
	}()

	const cornerTimeout = 30 * time.Second
	var samples [4]Point
	for i, corner := range calibrationCorners {
		logger.Infof("calibration: waiting for %s touch", corner)
		select {
		case s := <-downs:
			samples[i] = Point{float64(s.x), float64(s.y)}
		case <-time.After(cornerTimeout):
			return fmt.Errorf("run calibration: timed out waiting for %s touch", corner)
		}
		select {
		case <-ups:
		case <-time.After(cornerTimeout):
			return fmt.Errorf("run calibration: timed out waiting for %s release", corner)
		}
	}

	cal, err := FitFromCorners(samples, CalibrationTargets(screenWidth, screenHeight),
		CalibrationAffine, screenWidth, screenHeight, margin)
	if err != nil {
		return err
	}

	r.touchMu.Lock()
	cal.XOffset = r.cal.XOffset
	cal.YOffset = r.cal.YOffset
	r.cal = cal
	r.touchMu.Unlock()
	logger.Infof("calibration fitted: mode=%s", cal.Mode)
	return nil
}
