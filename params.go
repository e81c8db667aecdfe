package main

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// halfPi is the only controlled-phase angle the gate set supports.
const halfPi = math.Pi / 2

// anglePattern matches one angle argument: a plain number or a multiple/fraction of pi.
const anglePattern = `-?(?:\d*\.?\d*\s*\*?\s*pi(?:\s*/\s*\d+\.?\d*)?|\d+\.?\d*(?:[eE][+\-]?\d+)?)`

// piAngleRegex matches pi, 2pi, 2*pi, pi/2, 3*pi/4, -pi/2, ...
var piAngleRegex = regexp.MustCompile(`^(-?)(\d*\.?\d*)\s*\*?\s*pi(?:\s*/\s*(\d+\.?\d*))?$`)

// parseAngle parses a QASM angle such as "1.5707", "pi/2" or "-3*pi/4".
func parseAngle(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty angle")
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}

	m := piAngleRegex.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return 0, fmt.Errorf("invalid angle %q", s)
	}

	coeff := 1.0
	if m[2] != "" {
		c, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid angle coefficient %q", m[2])
		}
		coeff = c
	}
	v := coeff * math.Pi
	if m[3] != "" {
		d, err := strconv.ParseFloat(m[3], 64)
		if err != nil || d == 0 {
			return 0, fmt.Errorf("invalid angle denominator %q", m[3])
		}
		v /= d
	}
	if m[1] == "-" {
		v = -v
	}
	return v, nil
}

// formatAngle prints v in pi notation when it is a common fraction of pi.
func formatAngle(v float64) string {
	forms := []struct {
		value   float64
		display string
	}{
		{2 * math.Pi, "2*pi"},
		{math.Pi, "pi"},
		{math.Pi / 2, "pi/2"},
		{math.Pi / 4, "pi/4"},
		{math.Pi / 8, "pi/8"},
		{3 * math.Pi / 4, "3*pi/4"},
		{3 * math.Pi / 2, "3*pi/2"},
	}
	for _, f := range forms {
		if math.Abs(v-f.value) < 1e-10 {
			return f.display
		}
		if math.Abs(v+f.value) < 1e-10 {
			return "-" + f.display
		}
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
