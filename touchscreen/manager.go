// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package touchscreen

import (
	"github.com/linuxdeepin/go-lib/dbusutil"
)

// Manager exports one Reader on the bus and keeps auto-detection alive
// across device hotplug.
type Manager struct {
	service *dbusutil.Service
	reader  *Reader

	signals *struct {
		TouchEvent struct {
			eventType  int32
			touchCount int32
			x          int32
			y          int32
			value      int32
		}

		DeviceChanged struct {
			device string
		}
	}
}

func NewManager(service *dbusutil.Service) *Manager {
	m := &Manager{
		service: service,
		reader:  NewReader(),
	}
	m.reader.SetEventCallback(m.handleTouchEvent)
	return m
}

// Export publishes the manager and requests the service name.
func (m *Manager) Export() error {
	err := m.service.Export(dbusPath, m)
	if err != nil {
		return err
	}
	return m.service.RequestName(dbusServiceName)
}

// Reader exposes the underlying pump for in-process callers.
func (m *Manager) Reader() *Reader {
	return m.reader
}

// Destroy stops the reader and withdraws the service.
func (m *Manager) Destroy() {
	m.reader.Stop()
	err := m.service.StopExport(m)
	if err != nil {
		logger.Warning("stop export failed:", err)
	}
}

// handleTouchEvent runs on the reader goroutine; it only forwards the
// event onto the bus.
func (m *Manager) handleTouchEvent(ev *TouchEvent) {
	err := m.service.Emit(m, "TouchEvent",
		int32(ev.Type), int32(ev.TouchCount), int32(ev.X), int32(ev.Y), int32(ev.Value))
	if err != nil {
		logger.Warning("emit TouchEvent failed:", err)
	}
}
