package main

import (
	"errors"
	"fmt"
)

var (
	ErrQubitCount      = errors.New("invalid qubit count")
	ErrQubitOutOfRange = errors.New("qubit position out of range")
	ErrDuplicateQubit  = errors.New("qubit used more than once by one operation")
	ErrUnknownGate     = errors.New("unknown gate")
)

// GateKind identifies one of the fixed gates the engine knows how to apply.
type GateKind int

const (
	GateI GateKind = iota
	GateX
	GateY
	GateZ
	GateH
	GateS
	GateT
	GateCNOT
	GateCZ
	GateCP
	GateToffoli
	GateSWAP
	GateFredkin
)

var gateKindNames = map[GateKind]string{
	GateI:       "I",
	GateX:       "X",
	GateY:       "Y",
	GateZ:       "Z",
	GateH:       "H",
	GateS:       "S",
	GateT:       "T",
	GateCNOT:    "CNOT",
	GateCZ:      "CZ",
	GateCP:      "CP",
	GateToffoli: "TOFFOLI",
	GateSWAP:    "SWAP",
	GateFredkin: "FREDKIN",
}

func (k GateKind) String() string {
	if name, ok := gateKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("GateKind(%d)", int(k))
}

// arity returns the number of qubits an operation of this kind acts on.
func (k GateKind) arity() int {
	switch k {
	case GateCNOT, GateCZ, GateCP, GateSWAP:
		return 2
	case GateToffoli, GateFredkin:
		return 3
	default:
		return 1
	}
}

// singleQubitMatrix returns the 2x2 unitary of a single-qubit kind.
func (k GateKind) singleQubitMatrix() (Matrix, bool) {
	switch k {
	case GateI:
		return Identity, true
	case GateX:
		return PauliX, true
	case GateY:
		return PauliY, true
	case GateZ:
		return PauliZ, true
	case GateH:
		return Hadamard, true
	case GateS:
		return Phase, true
	case GateT:
		return PiOver8, true
	}
	return nil, false
}

// Op is one gate invocation. Qubits lists control positions first, then targets:
// CNOT/CZ/CP are (control, target), Toffoli is (control, control, target),
// SWAP is (a, b) and Fredkin is (control, a, b).
type Op struct {
	Kind   GateKind
	Qubits []int
}

// NewOp builds an Op of the given kind.
func NewOp(kind GateKind, qubits ...int) Op {
	return Op{Kind: kind, Qubits: qubits}
}

func (o Op) String() string {
	return fmt.Sprintf("%s%v", o.Kind, o.Qubits)
}

// validate checks the operand count and that every position lies in [0, n) and is unique.
func (o Op) validate(n int) error {
	if _, ok := gateKindNames[o.Kind]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownGate, o.Kind)
	}
	if len(o.Qubits) != o.Kind.arity() {
		return fmt.Errorf("%s takes %d qubits, got %d", o.Kind, o.Kind.arity(), len(o.Qubits))
	}
	seen := make(map[int]bool, len(o.Qubits))
	for _, q := range o.Qubits {
		if q < 0 || q >= n {
			return fmt.Errorf("%w: %s on qubit %d of %d", ErrQubitOutOfRange, o.Kind, q, n)
		}
		if seen[q] {
			return fmt.Errorf("%w: %s on qubit %d", ErrDuplicateQubit, o.Kind, q)
		}
		seen[q] = true
	}
	return nil
}

// applyOp returns the state obtained by applying op to an n-qubit amplitude vector.
// The input slice is never modified.
func applyOp(amps Vector, n int, op Op) (Vector, error) {
	if err := op.validate(n); err != nil {
		return nil, err
	}

	if u, ok := op.Kind.singleQubitMatrix(); ok {
		return applySingle(amps, n, op.Qubits[0], u), nil
	}

	q := op.Qubits
	switch op.Kind {
	case GateCNOT:
		return applyControlled(amps, n, q[:1], NewOp(GateX, q[1]))
	case GateCZ:
		return applyControlled(amps, n, q[:1], NewOp(GateZ, q[1]))
	case GateCP:
		return applyControlled(amps, n, q[:1], NewOp(GateS, q[1]))
	case GateToffoli:
		return applyControlled(amps, n, q[:2], NewOp(GateX, q[2]))
	case GateSWAP:
		out := amps
		for _, pair := range [][2]int{{q[0], q[1]}, {q[1], q[0]}, {q[0], q[1]}} {
			var err error
			out, err = applyOp(out, n, NewOp(GateCNOT, pair[0], pair[1]))
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	case GateFredkin:
		return applyControlled(amps, n, q[:1], NewOp(GateSWAP, q[1], q[2]))
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownGate, op.Kind)
}

// applySingle builds I ⊗ ... ⊗ u ⊗ ... ⊗ I with u at pos and multiplies it into amps.
func applySingle(amps Vector, n, pos int, u Matrix) Vector {
	mats := make([]Matrix, n)
	for i := range mats {
		mats[i] = Identity
	}
	mats[pos] = u
	return BuildOperator(mats).MulVec(amps)
}

// BuildOperator returns the Kronecker product of mats in order.
func BuildOperator(mats []Matrix) Matrix {
	out := Matrix{{1}}
	for _, m := range mats {
		out = Kron(out, m)
	}
	return out
}
