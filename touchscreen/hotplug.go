// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package touchscreen

import (
	"strings"

	"github.com/fsnotify/fsnotify"
)

const inputDevDir = "/dev/input"

// WatchHotplug retries auto-detection whenever a new input node shows
// up while no device is active. Returns a stop function.
func (m *Manager) WatchHotplug() (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	err = watcher.Add(inputDevDir)
	if err != nil {
		_ = watcher.Close()
		return nil, err
	}

	quit := make(chan struct{})
	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&fsnotify.Create == 0 {
					continue
				}
				if !strings.HasPrefix(ev.Name, inputDevDir+"/") {
					continue
				}
				if m.reader.running.Load() {
					continue
				}
				logger.Debugf("hotplug: %s appeared, retrying auto-detect", ev.Name)
				if err := m.reader.StartAuto(); err != nil {
					logger.Debug("hotplug auto-detect:", err)
				} else {
					m.emitDeviceChanged()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warning("hotplug watcher:", err)
			case <-quit:
				return
			}
		}
	}()

	return func() {
		close(quit)
		_ = watcher.Close()
	}, nil
}
