// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package touchscreen

import (
	"github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/go-lib/dbusutil"
)

func (m *Manager) Start(path string) *dbus.Error {
	return dbusutil.ToError(m.reader.Start(path))
}

func (m *Manager) StartAuto() *dbus.Error {
	err := m.reader.StartAuto()
	if err != nil {
		return dbusutil.ToError(err)
	}
	m.emitDeviceChanged()
	return nil
}

func (m *Manager) Stop() *dbus.Error {
	m.reader.Stop()
	return nil
}

func (m *Manager) IsRunning() (running bool, busErr *dbus.Error) {
	return m.reader.running.Load(), nil
}

func (m *Manager) GetSelectedDevice() (device string, busErr *dbus.Error) {
	return m.reader.SelectedDevice(), nil
}

func (m *Manager) GetTouchCount() (count int32, busErr *dbus.Error) {
	return int32(m.reader.TouchCount()), nil
}

func (m *Manager) EnableMitm(enable, grabSource bool) *dbus.Error {
	return dbusutil.ToError(m.reader.EnableMitm(enable, grabSource))
}

func (m *Manager) SetCalibration(minX, maxX, minY, maxY, screenWidth, screenHeight int32) *dbus.Error {
	m.reader.SetCalibration(int(minX), int(maxX), int(minY), int(maxY),
		int(screenWidth), int(screenHeight))
	return nil
}

func (m *Manager) SetCalibrationOffset(xOffset, yOffset int32) *dbus.Error {
	m.reader.SetCalibrationOffset(int(xOffset), int(yOffset))
	return nil
}

func (m *Manager) SetCalibrationMargin(marginPercent float64) *dbus.Error {
	m.reader.SetCalibrationMargin(marginPercent)
	return nil
}

func (m *Manager) LoadCalibration(filename string) *dbus.Error {
	return dbusutil.ToError(m.reader.LoadCalibration(filename))
}

func (m *Manager) SaveCalibration(filename string) *dbus.Error {
	return dbusutil.ToError(m.reader.SaveCalibration(filename))
}

func (m *Manager) RunCalibration(screenWidth, screenHeight int32) *dbus.Error {
	return dbusutil.ToError(m.reader.RunCalibration(int(screenWidth), int(screenHeight)))
}

func (m *Manager) emitDeviceChanged() {
	err := m.service.Emit(m, "DeviceChanged", m.reader.SelectedDevice())
	if err != nil {
		logger.Warning("emit DeviceChanged failed:", err)
	}
}
