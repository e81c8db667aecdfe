package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

var ErrMalformedCircuit = errors.New("malformed circuit")

// Cell is one grid position of a column. Cells sharing a link marker within a column
// delimit a multi-qubit gate group.
type Cell struct {
	Gate string `json:"gate"`
	Link *int   `json:"link"`
}

func (c *Cell) Linked() bool {
	return c != nil && c.Link != nil
}

// Column holds the cells of one circuit step, indexed by qubit row. Entries may be nil.
type Column []*Cell

// Circuit is a qubit count plus its ordered columns.
type Circuit struct {
	NumQubits int
	Columns   []Column
}

// UnmarshalJSON decodes the editor's wire format: [qubitCount, column0, column1, ...].
func (c *Circuit) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCircuit, err)
	}
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing qubit count", ErrMalformedCircuit)
	}

	var numQubits int
	if err := json.Unmarshal(raw[0], &numQubits); err != nil {
		return fmt.Errorf("%w: qubit count: %v", ErrMalformedCircuit, err)
	}

	columns := make([]Column, 0, len(raw)-1)
	for i, r := range raw[1:] {
		var col Column
		if err := json.Unmarshal(r, &col); err != nil {
			return fmt.Errorf("%w: column %d: %v", ErrMalformedCircuit, i, err)
		}
		columns = append(columns, col)
	}

	c.NumQubits = numQubits
	c.Columns = columns
	return nil
}

// ParseCircuitJSON decodes a circuit in the editor's wire format and drops nil cells.
func ParseCircuitJSON(data []byte) (*Circuit, error) {
	var c Circuit
	if err := c.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	c.Cleanup()
	return &c, nil
}

// MarshalJSON encodes the circuit in the same format UnmarshalJSON reads.
func (c Circuit) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(c.Columns)+1)
	out = append(out, c.NumQubits)
	for _, col := range c.Columns {
		out = append(out, col)
	}
	return json.Marshal(out)
}

// Validate rejects circuits the engine cannot be built for.
// maxQubits <= 0 means only MaxRegisterQubits applies.
func (c *Circuit) Validate(maxQubits int) error {
	if c.NumQubits < 1 || c.NumQubits > MaxRegisterQubits {
		return fmt.Errorf("%w: %w: got %d, want 1 to %d", ErrMalformedCircuit, ErrQubitCount, c.NumQubits, MaxRegisterQubits)
	}
	if maxQubits > 0 && c.NumQubits > maxQubits {
		return fmt.Errorf("%w: %d qubits exceeds the limit of %d", ErrMalformedCircuit, c.NumQubits, maxQubits)
	}
	return nil
}

// Cleanup drops nil cells from every column in a single pass.
// Empty columns are kept so column indexes stay stable.
func (c *Circuit) Cleanup() {
	for i, col := range c.Columns {
		c.Columns[i] = slices.DeleteFunc(col, func(cell *Cell) bool {
			return cell == nil
		})
	}
}

// Step is one logical gate invocation derived from a column.
type Step struct {
	Column    int
	Positions []int
	Tags      []string
	Group     bool
}

// Issue is an operation that was reported and skipped.
type Issue struct {
	Column    int
	Positions []int
	Tags      []string
	Err       error
}

func (i Issue) String() string {
	return fmt.Sprintf("column %d: %v", i.Column, i.Err)
}

// Steps splits every column into single gates and linked groups.
//
// Walking a column, a linked cell opens a group; every following cell joins it until
// the next linked cell, which joins and closes it. Cells outside a group are single
// gates. A group still open at the end of its column is reported as an issue.
func (c *Circuit) Steps() ([]Step, []Issue) {
	var steps []Step
	var issues []Issue

	for ci, col := range c.Columns {
		var group *Step
		for pos, cell := range col {
			if cell == nil {
				continue
			}
			switch {
			case group == nil && cell.Linked():
				group = &Step{Column: ci, Group: true}
				group.Positions = append(group.Positions, pos)
				group.Tags = append(group.Tags, cell.Gate)
			case group != nil:
				group.Positions = append(group.Positions, pos)
				group.Tags = append(group.Tags, cell.Gate)
				if cell.Linked() {
					steps = append(steps, *group)
					group = nil
				}
			default:
				steps = append(steps, Step{
					Column:    ci,
					Positions: []int{pos},
					Tags:      []string{cell.Gate},
				})
			}
		}
		if group != nil {
			issues = append(issues, Issue{
				Column:    ci,
				Positions: group.Positions,
				Tags:      group.Tags,
				Err:       fmt.Errorf("%w: link at qubit %d is never closed", ErrUnmatchedGroup, group.Positions[0]),
			})
		}
	}
	return steps, issues
}

// SimulateCircuit runs the circuit up to and including column upToColumn, or all of it
// when upToColumn is negative. Steps that fail are returned as issues and skipped.
func SimulateCircuit(c *Circuit, upToColumn int, log *Logger) (*StateVector, []Issue, error) {
	if log == nil {
		log = NoopLogger()
	}
	p, err := NewProtocol(c.NumQubits, log)
	if err != nil {
		return nil, nil, err
	}

	steps, issues := c.Steps()
	if upToColumn >= 0 {
		issues = slices.DeleteFunc(issues, func(i Issue) bool {
			return i.Column > upToColumn
		})
	}
	for _, issue := range issues {
		log.LogIssue(issue)
	}

	for _, step := range steps {
		if upToColumn >= 0 && step.Column > upToColumn {
			break
		}
		if step.Group {
			err = p.ApplyGateGroup(step.Positions, step.Tags)
		} else {
			err = p.ApplySingleGate(step.Positions[0], step.Tags[0])
		}
		if err != nil {
			issue := Issue{Column: step.Column, Positions: step.Positions, Tags: step.Tags, Err: err}
			log.LogIssue(issue)
			issues = append(issues, issue)
		}
	}

	slices.SortStableFunc(issues, func(a, b Issue) int {
		return a.Column - b.Column
	})
	return p.State(), issues, nil
}

// AddOp places op in the given column, padding with identity cells as needed.
// Multi-qubit operations are linked at the lowest and highest qubit they touch, so every
// cell between those rows must be free.
func (c *Circuit) AddOp(column int, op Op) error {
	if err := op.validate(c.NumQubits); err != nil {
		return err
	}
	for len(c.Columns) <= column {
		c.Columns = append(c.Columns, nil)
	}
	col := c.Columns[column]
	for len(col) < c.NumQubits {
		col = append(col, &Cell{Gate: TagIdentity})
	}
	c.Columns[column] = col

	lo, hi := slices.Min(op.Qubits), slices.Max(op.Qubits)
	inGroup := false
	for q, cell := range col {
		covered := inGroup || cell.Linked()
		if cell.Linked() {
			inGroup = !inGroup
		}
		if q < lo || q > hi || cell == nil {
			continue
		}
		if covered || cell.Gate != TagIdentity {
			return fmt.Errorf("column %d: qubit %d is already in use", column, q)
		}
	}

	tags := opTags(op)
	if len(op.Qubits) == 1 {
		col[op.Qubits[0]] = &Cell{Gate: tags[0]}
		return nil
	}

	link := 0
	for _, cell := range col {
		if cell.Linked() {
			link++
		}
	}
	link /= 2
	for i, q := range op.Qubits {
		cell := &Cell{Gate: tags[i]}
		if q == lo || q == hi {
			id := link
			cell.Link = &id
		}
		col[q] = cell
	}
	return nil
}

// opTags returns the cell tag of each qubit of op, in op.Qubits order.
func opTags(op Op) []string {
	switch op.Kind {
	case GateCNOT:
		return []string{TagControl, TagX}
	case GateCZ:
		return []string{TagControl, TagZ}
	case GateCP:
		return []string{TagControl, TagS}
	case GateToffoli:
		return []string{TagControl, TagControl, TagX}
	case GateSWAP:
		return []string{TagSwap, TagSwap}
	case GateFredkin:
		return []string{TagControl, TagSwap, TagSwap}
	}
	return []string{op.Kind.String()}
}

// Ops returns the operations the circuit describes, in execution order. Steps that
// do not form a valid operation on the register are returned as issues instead.
func (c *Circuit) Ops() ([]Op, []Issue) {
	steps, issues := c.Steps()
	ops := make([]Op, 0, len(steps))
	for _, step := range steps {
		op, err := c.stepOp(step)
		if err != nil {
			issues = append(issues, Issue{Column: step.Column, Positions: step.Positions, Tags: step.Tags, Err: err})
			continue
		}
		if op.Kind != GateI {
			ops = append(ops, op)
		}
	}
	slices.SortStableFunc(issues, func(a, b Issue) int {
		return a.Column - b.Column
	})
	return ops, issues
}

func (c *Circuit) stepOp(step Step) (Op, error) {
	var op Op
	if step.Group {
		var err error
		if op, err = MatchGroup(step.Positions, step.Tags); err != nil {
			return Op{}, err
		}
	} else {
		kind, ok := singleGateTags[step.Tags[0]]
		if !ok {
			return Op{}, fmt.Errorf("%w: %q", ErrUnknownGate, step.Tags[0])
		}
		op = NewOp(kind, step.Positions[0])
	}
	if err := op.validate(c.NumQubits); err != nil {
		return Op{}, err
	}
	return op, nil
}
