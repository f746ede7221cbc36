// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/linuxdeepin/go-lib/keyfile"
	"github.com/linuxdeepin/go-lib/strv"
)

const (
	profileSectionMain   = "Profile"
	profileSectionLayout = "Layout"
	profileSectionCTM    = "CTM"
)

// Profile binds a device identity to a monitor inside a concrete
// desktop layout, with the precomputed transformation matrix.
type Profile struct {
	DeviceID   int
	DeviceName string
	LayoutHash string

	MonitorName     string
	MonitorIndex    int
	MonitorX        int
	MonitorY        int
	MonitorWidth    int
	MonitorHeight   int
	MonitorRotation string
	MonitorScaleX   float64
	MonitorScaleY   float64

	IncludeRelated bool
	ToolFilters    strv.Strv

	LayoutOriginX int
	LayoutOriginY int
	LayoutWidth   int
	LayoutHeight  int

	CTM TransformationMatrix
}

// NewProfile captures layout, monitor and matrix into a profile ready
// to persist.
func NewProfile(deviceID int, deviceName string, layout *DesktopLayout, monitor Monitor) *Profile {
	return &Profile{
		DeviceID:        deviceID,
		DeviceName:      deviceName,
		LayoutHash:      layout.Hash,
		MonitorName:     monitor.Name,
		MonitorIndex:    monitor.Index,
		MonitorX:        monitor.X,
		MonitorY:        monitor.Y,
		MonitorWidth:    monitor.Width,
		MonitorHeight:   monitor.Height,
		MonitorRotation: monitor.Rotation,
		MonitorScaleX:   monitor.ScaleX,
		MonitorScaleY:   monitor.ScaleY,
		LayoutOriginX:   layout.OriginX,
		LayoutOriginY:   layout.OriginY,
		LayoutWidth:     layout.Width,
		LayoutHeight:    layout.Height,
		CTM:             ComputeCTM(layout, monitor),
	}
}

// Save writes the profile; numerics are C-locale decimals.
func (p *Profile) Save(filename string) error {
	kf := keyfile.NewKeyFile()

	kf.SetInteger(profileSectionMain, "device_id", int32(p.DeviceID))
	kf.SetString(profileSectionMain, "device_name", p.DeviceName)
	kf.SetString(profileSectionMain, "layout_hash", p.LayoutHash)
	kf.SetString(profileSectionMain, "monitor_name", p.MonitorName)
	kf.SetInteger(profileSectionMain, "monitor_index", int32(p.MonitorIndex))
	kf.SetInteger(profileSectionMain, "monitor_x", int32(p.MonitorX))
	kf.SetInteger(profileSectionMain, "monitor_y", int32(p.MonitorY))
	kf.SetInteger(profileSectionMain, "monitor_width", int32(p.MonitorWidth))
	kf.SetInteger(profileSectionMain, "monitor_height", int32(p.MonitorHeight))
	kf.SetString(profileSectionMain, "monitor_rotation", p.MonitorRotation)
	kf.SetValue(profileSectionMain, "monitor_scale_x", formatProfileFloat(p.MonitorScaleX))
	kf.SetValue(profileSectionMain, "monitor_scale_y", formatProfileFloat(p.MonitorScaleY))
	kf.SetValue(profileSectionMain, "include_related", boolKey(p.IncludeRelated))
	kf.SetString(profileSectionMain, "tool_filters", strings.Join(p.ToolFilters, ","))

	kf.SetInteger(profileSectionLayout, "origin_x", int32(p.LayoutOriginX))
	kf.SetInteger(profileSectionLayout, "origin_y", int32(p.LayoutOriginY))
	kf.SetInteger(profileSectionLayout, "width", int32(p.LayoutWidth))
	kf.SetInteger(profileSectionLayout, "height", int32(p.LayoutHeight))

	for i, v := range p.CTM {
		kf.SetValue(profileSectionCTM, fmt.Sprintf("m%d", i), formatProfileFloat(v))
	}

	return kf.SaveToFile(filename)
}

// LoadProfile reads a profile file. Layout matching is the caller's
// decision; see Verify.
func LoadProfile(filename string) (*Profile, error) {
	kf := keyfile.NewKeyFile()
	err := kf.LoadFromFile(filename)
	if err != nil {
		return nil, err
	}

	p := &Profile{MonitorScaleX: 1, MonitorScaleY: 1, CTM: IdentityMatrix()}

	ints := []struct {
		section string
		key     string
		dst     *int
	}{
		{profileSectionMain, "device_id", &p.DeviceID},
		{profileSectionMain, "monitor_index", &p.MonitorIndex},
		{profileSectionMain, "monitor_x", &p.MonitorX},
		{profileSectionMain, "monitor_y", &p.MonitorY},
		{profileSectionMain, "monitor_width", &p.MonitorWidth},
		{profileSectionMain, "monitor_height", &p.MonitorHeight},
		{profileSectionLayout, "origin_x", &p.LayoutOriginX},
		{profileSectionLayout, "origin_y", &p.LayoutOriginY},
		{profileSectionLayout, "width", &p.LayoutWidth},
		{profileSectionLayout, "height", &p.LayoutHeight},
	}
	for _, f := range ints {
		if v, err := kf.GetInteger(f.section, f.key); err == nil {
			*f.dst = int(v)
		}
	}

	if v, err := kf.GetString(profileSectionMain, "device_name"); err == nil {
		p.DeviceName = v
	}
	if v, err := kf.GetString(profileSectionMain, "layout_hash"); err == nil {
		p.LayoutHash = v
	}
	if v, err := kf.GetString(profileSectionMain, "monitor_name"); err == nil {
		p.MonitorName = v
	}
	if v, err := kf.GetString(profileSectionMain, "monitor_rotation"); err == nil && v != "" {
		p.MonitorRotation = v
	}
	if v, err := kf.GetFloat64(profileSectionMain, "monitor_scale_x"); err == nil && v > 0 {
		p.MonitorScaleX = v
	}
	if v, err := kf.GetFloat64(profileSectionMain, "monitor_scale_y"); err == nil && v > 0 {
		p.MonitorScaleY = v
	}
	if v, err := kf.GetString(profileSectionMain, "include_related"); err == nil {
		p.IncludeRelated = v == "1"
	}
	if v, err := kf.GetString(profileSectionMain, "tool_filters"); err == nil && v != "" {
		p.ToolFilters = strv.Strv(strings.Split(v, ","))
	}

	for i := range p.CTM {
		if v, err := kf.GetFloat64(profileSectionCTM, fmt.Sprintf("m%d", i)); err == nil {
			p.CTM[i] = v
		}
	}
	return p, nil
}

// Verify checks the profile against the current layout fingerprint.
// With override set a mismatch is only logged.
func (p *Profile) Verify(layout *DesktopLayout, override bool) error {
	if p.LayoutHash == layout.Hash {
		return nil
	}
	if override {
		logger.Warningf("profile layout hash %s does not match current %s, override requested",
			p.LayoutHash, layout.Hash)
		return nil
	}
	return fmt.Errorf("display: profile layout hash %s does not match current layout %s",
		p.LayoutHash, layout.Hash)
}

// ListProfiles returns the profile files in dir, sorted by name.
func ListProfiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		out = append(out, filepath.Join(dir, entry.Name()))
	}
	return out, nil
}

func formatProfileFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func boolKey(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
