package main

import (
	"fmt"
	"slices"
)

// DAGNode is one operation together with the operations that must run before it.
type DAGNode struct {
	ID           int
	Op           Op
	Column       int   // earliest column the operation can occupy
	Dependencies []int // IDs of earlier nodes sharing a qubit row in the span
}

// CircuitDAG orders operations by the qubit rows they occupy. A multi-qubit gate
// occupies every row between its lowest and highest qubit, since the cells in between
// belong to its link group.
type CircuitDAG struct {
	Nodes     []*DAGNode
	NumQubits int

	lastOnRow map[int]int // row -> ID of the last node covering it
}

func NewCircuitDAG(numQubits int) *CircuitDAG {
	return &CircuitDAG{
		NumQubits: numQubits,
		lastOnRow: make(map[int]int),
	}
}

// AddOp appends op after every node it overlaps with.
func (dag *CircuitDAG) AddOp(op Op) error {
	if err := op.validate(dag.NumQubits); err != nil {
		return err
	}

	node := &DAGNode{ID: len(dag.Nodes), Op: op}
	lo, hi := slices.Min(op.Qubits), slices.Max(op.Qubits)
	for row := lo; row <= hi; row++ {
		dep, ok := dag.lastOnRow[row]
		if !ok {
			continue
		}
		if !slices.Contains(node.Dependencies, dep) {
			node.Dependencies = append(node.Dependencies, dep)
		}
		node.Column = max(node.Column, dag.Nodes[dep].Column+1)
	}
	for row := lo; row <= hi; row++ {
		dag.lastOnRow[row] = node.ID
	}
	dag.Nodes = append(dag.Nodes, node)
	return nil
}

// Depth is the number of columns the operations need.
func (dag *CircuitDAG) Depth() int {
	depth := 0
	for _, n := range dag.Nodes {
		depth = max(depth, n.Column+1)
	}
	return depth
}

// ToCircuit lays every node out in its column.
func (dag *CircuitDAG) ToCircuit() (*Circuit, error) {
	c := &Circuit{NumQubits: dag.NumQubits}
	for _, n := range dag.Nodes {
		if err := c.AddOp(n.Column, n.Op); err != nil {
			return nil, fmt.Errorf("node %d (%s): %w", n.ID, n.Op, err)
		}
	}
	for len(c.Columns) < dag.Depth() {
		c.Columns = append(c.Columns, nil)
	}
	return c, nil
}
