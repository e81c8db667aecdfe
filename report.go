package main

import (
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// ReportEntry is one printed line of a probabilities report.
type ReportEntry struct {
	Index       int
	Label       string
	Amplitude   Complex
	Probability float64 // percent, rounded to 4 decimals
}

// Entries lists every basis state, or only the non-zero ones when reduced is set.
func (s *StateVector) Entries(reduced bool) []ReportEntry {
	entries := make([]ReportEntry, 0, len(s.Amplitudes))
	for i, amp := range s.Amplitudes {
		if reduced && amp == 0 {
			continue
		}
		entries = append(entries, ReportEntry{
			Index:       i,
			Label:       s.BasisLabel(i),
			Amplitude:   amp,
			Probability: roundTo(sq(amp)*100, 4),
		})
	}
	return entries
}

// ProbabilitiesReport renders one line per basis state:
//
//	 0.707106781186547462+0.000000000000000000i|00>	-> 50.0%
//	+0.707106781186547462+0.000000000000000000i|11>	-> 50.0%
//
// Every real and imaginary part is printed with as many decimals as the longest
// shortest-form representation among them. Rounding errors show up as printed.
func (s *StateVector) ProbabilitiesReport(reduced bool) string {
	entries := s.Entries(reduced)

	width := 0
	for _, e := range entries {
		width = max(width, len(shortFloat(real(e.Amplitude))), len(shortFloat(imag(e.Amplitude))))
	}

	var sb strings.Builder
	for _, e := range entries {
		re := real(e.Amplitude)
		switch {
		case e.Index > 0 && re >= 0:
			sb.WriteByte('+')
		case e.Index == 0 && re >= 0:
			sb.WriteByte(' ')
		}
		sb.WriteString(formatAmplitude(e.Amplitude, width))
		fmt.Fprintf(&sb, "|%s>\t-> %s%%\n", e.Label, shortFloat(e.Probability))
	}
	return sb.String()
}

func formatAmplitude(amp Complex, decimals int) string {
	re := strconv.FormatFloat(real(amp), 'f', decimals, 64)
	im := strconv.FormatFloat(imag(amp), 'f', decimals, 64)
	if imag(amp) >= 0 {
		return re + "+" + im + "i"
	}
	return re + im + "i"
}

// ReportTable writes the report as an aligned table.
func (s *StateVector) ReportTable(w io.Writer, reduced bool) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"State", "Amplitude", "Probability"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAutoFormatHeaders(false)
	for _, e := range s.Entries(reduced) {
		table.Append([]string{
			"|" + e.Label + ">",
			formatAmplitude(e.Amplitude, 6),
			shortFloat(e.Probability) + "%",
		})
	}
	table.Render()
}

// StyledReport renders the report with terminal colours and a probability bar.
func (s *StateVector) StyledReport(reduced bool, barWidth int) string {
	var sb strings.Builder
	for _, e := range s.Entries(reduced) {
		filled := int(math.Round(e.Probability / 100 * float64(barWidth)))
		sb.WriteString(basisLabelStyle.Render("|" + e.Label + "⟩"))
		sb.WriteString("  ")
		sb.WriteString(amplitudeStyle.Render(fmt.Sprintf("%-24s", formatAmplitude(e.Amplitude, 4))))
		sb.WriteString(probBarStyle.Render(strings.Repeat("█", filled)))
		sb.WriteString(dimStyle.Render(strings.Repeat("░", barWidth-filled)))
		fmt.Fprintf(&sb, " %s%%\n", shortFloat(e.Probability))
	}
	return sb.String()
}

// sq is |amp|² computed from the modulus.
func sq(amp Complex) float64 {
	a := cmplx.Abs(amp)
	return a * a
}

// roundTo rounds f to the given number of decimals on its exact binary value.
func roundTo(f float64, decimals int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', decimals, 64), 64)
	if err != nil {
		return f
	}
	return r
}

// shortFloat formats f with the fewest digits that round-trip, always keeping a
// fractional part ("50.0", "0.0", "-0.0") and switching to exponent form outside
// [1e-4, 1e16) ("1e-05", "1.5e+16").
func shortFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	mant, expStr, _ := strings.Cut(sci, "e")
	exp, _ := strconv.Atoi(expStr)
	if exp < -4 || exp >= 16 {
		return fmt.Sprintf("%se%+03d", mant, exp)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
