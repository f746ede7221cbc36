// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

import (
	"encoding/hex"
	"fmt"
	"os"

	x "github.com/linuxdeepin/go-x11-client"
	"github.com/linuxdeepin/go-x11-client/ext/randr"
)

// ReadLayout queries the X server through the randr protocol directly;
// no shell-out to display tools. A Wayland-only session without an X11
// display fails here while kernel-side reading keeps working.
func ReadLayout() (*DesktopLayout, error) {
	if os.Getenv("DISPLAY") == "" {
		return nil, fmt.Errorf("display: DISPLAY is not set: %w", ErrLayoutMissing)
	}
	xConn, err := x.NewConn()
	if err != nil {
		return nil, fmt.Errorf("display: connect to X server: %v: %w", err, ErrLayoutMissing)
	}
	defer xConn.Close()
	return readLayoutFromConn(xConn)
}

func readLayoutFromConn(xConn *x.Conn) (*DesktopLayout, error) {
	root := xConn.GetDefaultScreen().Root
	resources, err := randr.GetScreenResources(xConn, root).Reply(xConn)
	if err != nil {
		return nil, fmt.Errorf("display: get screen resources: %v: %w", err, ErrLayoutMissing)
	}
	cfgTs := resources.ConfigTimestamp

	var primaryOutput randr.Output
	primaryReply, err := randr.GetOutputPrimary(xConn, root).Reply(xConn)
	if err != nil {
		logger.Warning("get primary output failed:", err)
	} else {
		primaryOutput = primaryReply.Output
	}

	layout := &DesktopLayout{}
	for _, output := range resources.Outputs {
		outputInfo, err := randr.GetOutputInfo(xConn, output, cfgTs).Reply(xConn)
		if err != nil {
			logger.Warningf("get output %v info failed: %v", output, err)
			continue
		}
		if outputInfo.Connection != randr.ConnectionConnected || outputInfo.Crtc == 0 {
			continue
		}
		crtcInfo, err := randr.GetCrtcInfo(xConn, outputInfo.Crtc, cfgTs).Reply(xConn)
		if err != nil {
			logger.Warningf("get crtc %v info failed: %v", outputInfo.Crtc, err)
			continue
		}

		m := Monitor{
			Index:    len(layout.Monitors),
			Name:     outputInfo.Name,
			Primary:  output == primaryOutput,
			X:        int(crtcInfo.X),
			Y:        int(crtcInfo.Y),
			Width:    int(crtcInfo.Width),
			Height:   int(crtcInfo.Height),
			ScaleX:   1,
			ScaleY:   1,
			Rotation: rotationName(crtcInfo.Rotation),
		}

		edid, err := getOutputEdid(xConn, output)
		if err != nil {
			logger.Warningf("get output %v edid failed: %v", output, err)
		} else if len(edid) > 0 {
			m.EdidHash = hashString(hex.EncodeToString(edid))
		}

		layout.Monitors = append(layout.Monitors, m)
	}

	err = layout.finalize()
	if err != nil {
		return nil, err
	}
	return layout, nil
}

// rotationName maps the crtc rotation bits onto report tokens; the
// reflection bits are not part of the layout model.
func rotationName(rotation uint16) string {
	switch rotation & 0xf {
	case randr.RotationRotate90:
		return RotationLeft
	case randr.RotationRotate180:
		return RotationInverted
	case randr.RotationRotate270:
		return RotationRight
	default:
		return RotationNormal
	}
}

func getOutputEdid(xConn *x.Conn, output randr.Output) ([]byte, error) {
	atomEDID, err := xConn.GetAtom("EDID")
	if err != nil {
		return nil, err
	}
	reply, err := randr.GetOutputProperty(xConn, output,
		atomEDID, x.AtomInteger,
		0, 32, false, false).Reply(xConn)
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}
