package main

import (
	"fmt"
	"slices"
	"strings"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	total := width - len(s)
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// groupSymbol returns the wire symbol of a tag inside a linked group, or "" when the tag
// is drawn as a boxed gate.
func groupSymbol(tag string, tags []string) string {
	switch tag {
	case TagControl:
		return "●"
	case TagSwap:
		return "×"
	case TagX:
		return "⊕"
	case TagZ:
		if slices.Contains(tags, TagControl) {
			return "●"
		}
	}
	return ""
}

// ──────────────────────────── Cell layout ────────────────────────────

// cellInfo is what one grid position shows.
type cellInfo struct {
	tag         string
	symbol      string // wire symbol for grouped cells
	inGroup     bool
	passThrough bool // identity cell inside a group span
	vertAbove   bool
	vertBelow   bool
}

// columnLayout returns the cell info of every qubit row of column ci.
func (c *Circuit) columnLayout(ci int) []cellInfo {
	infos := make([]cellInfo, c.NumQubits)
	if ci < 0 || ci >= len(c.Columns) {
		return infos
	}
	col := c.Columns[ci]
	for row := 0; row < c.NumQubits && row < len(col); row++ {
		if col[row] != nil {
			infos[row].tag = col[row].Gate
		}
	}

	steps, issues := (&Circuit{NumQubits: c.NumQubits, Columns: []Column{col}}).Steps()
	groups := make([][]int, 0, len(steps)+len(issues))
	tags := make([][]string, 0, len(steps)+len(issues))
	for _, s := range steps {
		if s.Group {
			groups = append(groups, s.Positions)
			tags = append(tags, s.Tags)
		}
	}
	for _, is := range issues {
		groups = append(groups, is.Positions)
		tags = append(tags, is.Tags)
	}

	for gi, positions := range groups {
		lo, hi := slices.Min(positions), slices.Max(positions)
		for row := lo; row <= hi && row < len(infos); row++ {
			info := &infos[row]
			info.inGroup = true
			info.vertAbove = row > lo
			info.vertBelow = row < hi
			if info.tag == "" || info.tag == TagIdentity {
				info.passThrough = true
				continue
			}
			info.symbol = groupSymbol(info.tag, tags[gi])
		}
	}
	return infos
}

// ──────────────────────────── Cell rendering ────────────────────────────

// renderCell returns 3 lines (top, mid, bot) for a single cell.
// Each line is exactly cellW visual characters wide.
func renderCell(info cellInfo, cursor bool) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", cellW-halfW-1)
	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1
	margin := (cellW - gateBoxW) / 2
	rightMargin := cellW - margin - gateBoxW

	top, bot = emptyRow, emptyRow
	if info.vertAbove {
		top = vertRow
	}
	if info.vertBelow {
		bot = vertRow
	}

	box := gateStyle
	if cursor {
		box = cursorBoxStyle
	}

	switch {
	case info.symbol != "":
		mid = strings.Repeat("─", dashL) + box.Render(info.symbol) + strings.Repeat("─", dashR)
	case info.passThrough:
		mid = strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR)
	case info.tag == "" || info.tag == TagIdentity:
		mid = strings.Repeat("─", cellW)
		if cursor {
			mid = strings.Repeat("─", dashL) + box.Render("·") + strings.Repeat("─", dashR)
		}
	default:
		name := padCenter(info.tag, gateNameW)
		mid = strings.Repeat("─", margin) + box.Render("┤"+name+"├") + strings.Repeat("─", rightMargin)
		if !info.vertAbove {
			top = strings.Repeat(" ", margin) + box.Render("┌"+strings.Repeat("─", gateNameW)+"┐") + strings.Repeat(" ", rightMargin)
		}
		if !info.vertBelow {
			bot = strings.Repeat(" ", margin) + box.Render("└"+strings.Repeat("─", gateNameW)+"┘") + strings.Repeat(" ", rightMargin)
		}
	}
	return
}

// ──────────────────────────── Panel rendering ────────────────────────────

// renderCircuitPanel renders the circuit grid with the applied columns highlighted.
func (m Model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Quantum Circuit"))
	if m.source != "" {
		sb.WriteString(dimStyle.Render("  " + m.source))
	}
	sb.WriteString("\n\n")

	// How many columns fit
	availWidth := width - labelVisualW - 4
	maxCols := max(availWidth/cellW, 1)
	numCols := len(m.circuit.Columns)

	start := 0
	if m.column >= maxCols {
		start = m.column - maxCols + 1
	}
	end := min(start+maxCols, numCols)

	if start > 0 {
		fmt.Fprintf(&sb, "  ◀ showing columns %d–%d\n", start, end-1)
	}

	issueCols := make(map[int]bool)
	for _, is := range m.allIssues {
		issueCols[is.Column] = true
	}

	// Column number header
	header := strings.Repeat(" ", labelVisualW)
	for ci := start; ci < end; ci++ {
		label := padCenter(fmt.Sprintf("%d", ci), cellW)
		switch {
		case issueCols[ci]:
			header += issueStyle.Render(padCenter(fmt.Sprintf("%d!", ci), cellW))
		case ci <= m.column:
			header += appliedColumnStyle.Render(label)
		default:
			header += dimStyle.Render(label)
		}
	}
	sb.WriteString(header + "\n")

	layouts := make([][]cellInfo, 0, end-start)
	for ci := start; ci < end; ci++ {
		layouts = append(layouts, m.circuit.columnLayout(ci))
	}

	// Render each qubit as 3 lines
	for qubit := range m.circuit.NumQubits {
		topLine := strings.Repeat(" ", labelVisualW)
		label := fmt.Sprintf("q[%d]", qubit)
		midLine := qubitLabelStyle.Render(fmt.Sprintf("%-5s", label)) + "──"
		botLine := strings.Repeat(" ", labelVisualW)

		for i, layout := range layouts {
			cursor := start+i == m.column && qubit == m.cursorQubit
			top, mid, bot := renderCell(layout[qubit], cursor)
			topLine += top
			midLine += mid
			botLine += bot
		}

		sb.WriteString(topLine + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(botLine + "\n")
	}

	// Status line
	if m.column < 0 {
		sb.WriteString("\n  Initial state")
	} else {
		fmt.Fprintf(&sb, "\n  After column %d of %d", m.column, numCols-1)
	}
	fmt.Fprintf(&sb, "  │  Qubit %d", m.cursorQubit)
	if m.err != nil {
		fmt.Fprintf(&sb, "  │  %s", issueStyle.Render(m.err.Error()))
	}

	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

// stateContent is the text shown in the state viewport.
func (m Model) stateContent() string {
	if m.state == nil {
		return ""
	}
	var sb strings.Builder

	sb.WriteString(m.state.StyledReport(m.reduced, barW))

	probs := m.state.GetQubitProbabilities()
	if m.cursorQubit < len(probs) {
		p := probs[m.cursorQubit]
		sb.WriteString("\n")
		sb.WriteString(qubitLabelStyle.Render(fmt.Sprintf("q[%d]", m.cursorQubit)))
		fmt.Fprintf(&sb, "  P(0)=%.4f  P(1)=%.4f\n", p.Prob0, p.Prob1)
	}

	if len(m.issues) > 0 {
		sb.WriteString("\n")
		sb.WriteString(issueStyle.Render("Skipped"))
		sb.WriteString("\n")
		for _, is := range m.issues {
			sb.WriteString(dimStyle.Render("  " + is.String()))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// renderStatePanel renders the scrolling state report, or the gate legend when shown.
func (m Model) renderStatePanel(width, height int) string {
	if m.showGates {
		return renderCatalog()
	}

	var sb strings.Builder
	title := "State"
	if m.reduced {
		title += " (non-zero)"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")
	sb.WriteString(m.report.View())

	return stateStyle.Width(width).Height(height).Render(sb.String())
}

// renderControlsPanel renders the bottom help bar.
func (m Model) renderControlsPanel(width, height int) string {
	return controlsStyle.Width(width).Height(height).Render(m.help.View(m.keys))
}
