// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

// Textual-report parsing. The reports follow the display server's
// monitor-list and verbose dump formats; ordering differences, extra
// whitespace and missing optional fields are tolerated.

var geometryRegexp = regexp.MustCompile(`(\d+)/\d+x(\d+)/\d+([+-]\d+)([+-]\d+)`)

// ParseLayoutReports builds a layout from the compact monitor list and
// an optional verbose dump (rotation, scale, EDID), then fingerprints
// it.
func ParseLayoutReports(listReport, verboseReport string) (*DesktopLayout, error) {
	layout := &DesktopLayout{
		Monitors: parseMonitorsReport(listReport),
	}
	if verboseReport != "" {
		applyVerboseReport(layout.Monitors, verboseReport)
	}
	err := layout.finalize()
	if err != nil {
		return nil, err
	}
	return layout, nil
}

// parseMonitorsReport reads the compact list: one monitor per line with
// an index, a primary asterisk marker, a W/mmxH/mm+X+Y geometry token
// and a trailing name.
func parseMonitorsReport(report string) []Monitor {
	var monitors []Monitor

	scanner := bufio.NewScanner(strings.NewReader(report))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		tokens := strings.Fields(line)
		if len(tokens) < 3 {
			continue
		}

		var m Monitor
		idx := tokens[0]
		if pos := strings.IndexByte(idx, ':'); pos >= 0 {
			idx = idx[:pos]
		}
		index, err := strconv.Atoi(idx)
		if err != nil {
			index = len(monitors)
		}
		m.Index = index
		m.Primary = strings.Contains(tokens[1], "*")

		var geometry string
		for _, tok := range tokens {
			if strings.Contains(tok, "x") && strings.Contains(tok, "+") {
				geometry = tok
				break
			}
		}
		match := geometryRegexp.FindStringSubmatch(geometry)
		if match == nil {
			continue
		}
		m.Width, _ = strconv.Atoi(match[1])
		m.Height, _ = strconv.Atoi(match[2])
		m.X, _ = strconv.Atoi(match[3])
		m.Y, _ = strconv.Atoi(match[4])

		m.Name = tokens[len(tokens)-1]
		m.ScaleX = 1
		m.ScaleY = 1
		m.Rotation = RotationNormal
		monitors = append(monitors, m)
	}
	return monitors
}

// applyVerboseReport overlays rotation, scale and EDID hashes onto the
// monitors parsed from the compact list. Monitor sections start at
// column zero with the output name; indented lines belong to the
// current section.
func applyVerboseReport(monitors []Monitor, report string) {
	lines := strings.Split(report, "\n")
	var current *Monitor

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}

		if !isIndented(line) {
			current = nil
			trimmed := strings.TrimSpace(line)
			for j := range monitors {
				name := monitors[j].Name
				if trimmed == name || strings.HasPrefix(trimmed, name+" ") {
					current = &monitors[j]
					if rot := headerRotation(trimmed); rot != "" {
						current.Rotation = rot
					}
					break
				}
			}
			continue
		}
		if current == nil {
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "Scale:"):
			sx, sy, ok := parseScaleLine(trimmed[len("Scale:"):])
			if ok {
				if sx > 0 {
					current.ScaleX = sx
				}
				if sy > 0 {
					current.ScaleY = sy
				}
			}
		case trimmed == "EDID:":
			var hexData strings.Builder
			for i+1 < len(lines) && isIndented(lines[i+1]) && looksLikeHex(lines[i+1]) {
				i++
				for _, c := range lines[i] {
					if !isSpace(c) {
						hexData.WriteRune(c)
					}
				}
			}
			if hexData.Len() > 0 {
				current.EdidHash = hashString(hexData.String())
			}
		}
	}
}

// headerRotation scans the section header for a rotation token. The
// capability list in parentheses is stripped first so its tokens do not
// match.
func headerRotation(header string) string {
	var sb strings.Builder
	depth := 0
	for _, c := range header {
		switch {
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			sb.WriteRune(c)
		}
	}
	for _, tok := range strings.Fields(sb.String()) {
		switch strings.ToLower(tok) {
		case RotationNormal, RotationInverted, RotationLeft, RotationRight:
			return strings.ToLower(tok)
		}
	}
	return ""
}

// parseScaleLine reads "sx x sy" after the Scale: prefix.
func parseScaleLine(rest string) (sx, sy float64, ok bool) {
	fields := strings.Fields(rest)
	if len(fields) == 1 {
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return 0, 0, false
		}
		return v, v, true
	}
	if len(fields) >= 3 && fields[1] == "x" {
		var err1, err2 error
		sx, err1 = strconv.ParseFloat(fields[0], 64)
		sy, err2 = strconv.ParseFloat(fields[2], 64)
		if err1 != nil || err2 != nil {
			return 0, 0, false
		}
		return sx, sy, true
	}
	return 0, 0, false
}

func isIndented(line string) bool {
	return line != "" && (line[0] == ' ' || line[0] == '\t')
}

// looksLikeHex accepts lines of hex digits, possibly with internal
// whitespace; the hash input strips the whitespace anyway.
func looksLikeHex(line string) bool {
	seen := false
	for _, c := range line {
		if isSpace(c) {
			continue
		}
		isHex := c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
		if !isHex {
			return false
		}
		seen = true
	}
	return seen
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
