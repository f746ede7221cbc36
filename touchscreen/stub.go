// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package touchscreen

const (
	dbusServiceName = "org.deepin.dde.TouchScreen1"
	dbusPath        = "/org/deepin/dde/TouchScreen1"
	dbusInterface   = dbusServiceName
)

func (*Manager) GetInterfaceName() string {
	return dbusInterface
}
