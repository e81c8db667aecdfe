package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// catalogItem describes one gate the simulator understands.
type catalogItem struct {
	name   string
	kind   GateKind
	tags   []string // cells of the editor group, controls first
	symbol string
}

// catalogCategory groups related gates under a heading.
type catalogCategory struct {
	name  string
	items []catalogItem
}

var gateCatalog = []catalogCategory{
	{
		name: "Single Qubit",
		items: []catalogItem{
			{name: "Identity", kind: GateI, tags: []string{TagIdentity}, symbol: "I"},
			{name: "Pauli-X (NOT)", kind: GateX, tags: []string{TagX}, symbol: "X"},
			{name: "Pauli-Y", kind: GateY, tags: []string{TagY}, symbol: "Y"},
			{name: "Pauli-Z", kind: GateZ, tags: []string{TagZ}, symbol: "Z"},
			{name: "Hadamard", kind: GateH, tags: []string{TagH}, symbol: "H"},
			{name: "Phase (S)", kind: GateS, tags: []string{TagS}, symbol: "S"},
			{name: "pi/8 (T)", kind: GateT, tags: []string{TagT}, symbol: "T"},
		},
	},
	{
		name: "Multi Qubit",
		items: []catalogItem{
			{name: "CNOT", kind: GateCNOT, tags: []string{TagControl, TagX}, symbol: "●─⊕"},
			{name: "Controlled-Z", kind: GateCZ, tags: []string{TagControl, TagZ}, symbol: "●─●"},
			{name: "Controlled-Phase", kind: GateCP, tags: []string{TagControl, TagS}, symbol: "●─S"},
			{name: "Toffoli (CCX)", kind: GateToffoli, tags: []string{TagControl, TagControl, TagX}, symbol: "●─●─⊕"},
			{name: "SWAP", kind: GateSWAP, tags: []string{TagSwap, TagSwap}, symbol: "×─×"},
			{name: "Fredkin (CSWAP)", kind: GateFredkin, tags: []string{TagControl, TagSwap, TagSwap}, symbol: "●─×─×"},
		},
	},
}

// WriteGateCatalog prints the catalog as a table.
func WriteGateCatalog(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Category", "Gate", "Kind", "Cells", "Symbol", "QASM"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoMergeCells(true)
	for _, cat := range gateCatalog {
		for _, it := range cat.items {
			table.Append([]string{
				cat.name,
				it.name,
				it.kind.String(),
				strings.Join(it.tags, " "),
				it.symbol,
				qasmGateName(it.kind),
			})
		}
	}
	table.Render()
}

// renderCatalog renders the gate legend panel of the viewer.
func renderCatalog() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Gates"))
	sb.WriteString("\n")
	for _, cat := range gateCatalog {
		sb.WriteString("\n")
		sb.WriteString(appliedColumnStyle.Render(cat.name))
		sb.WriteString("\n")
		sb.WriteString(dimStyle.Render(strings.Repeat("─", 36)))
		sb.WriteString("\n")
		for _, it := range cat.items {
			sb.WriteString(catalogNameStyle.Render(fmt.Sprintf(" %-18s", it.name)))
			sb.WriteString(gateStyle.Render(fmt.Sprintf("%-7s", it.symbol)))
			sb.WriteString(dimStyle.Render(strings.Join(it.tags, " ")))
			sb.WriteString("\n")
		}
	}
	sb.WriteString(dimStyle.Render("\n ? close"))

	return catalogBorderStyle.Render(sb.String())
}
