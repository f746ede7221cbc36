// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package evdev

// Event types and codes from linux/input-event-codes.h.
const (
	EvSyn uint16 = 0x00
	EvKey uint16 = 0x01
	EvRel uint16 = 0x02
	EvAbs uint16 = 0x03

	SynReport uint16 = 0

	RelX uint16 = 0x00
	RelY uint16 = 0x01

	AbsX uint16 = 0x00
	AbsY uint16 = 0x01

	AbsMtSlot       uint16 = 0x2f
	AbsMtPositionX  uint16 = 0x35
	AbsMtPositionY  uint16 = 0x36
	AbsMtTrackingID uint16 = 0x39

	BtnLeft    uint16 = 0x110
	BtnToolPen uint16 = 0x140
	BtnTouch   uint16 = 0x14a

	keyMax = 0x2ff
	keyCnt = keyMax + 1
	absMax = 0x3f
	absCnt = absMax + 1
)

// Bus types from linux/input.h.
const (
	BusUSB uint16 = 0x03
)
