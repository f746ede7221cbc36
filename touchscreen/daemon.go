// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package touchscreen

import (
	"github.com/linuxdeepin/go-lib/log"
)

var logger = log.NewLogger("daemon/touchscreen")
