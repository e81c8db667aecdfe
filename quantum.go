package main

import (
	"fmt"
	"math/cmplx"
)

// StateVector is an n-qubit register held as 2^n complex amplitudes.
// Index i's binary expansion labels the basis state, with qubit 0 as the most
// significant bit.
type StateVector struct {
	Amplitudes Vector
	NumQubits  int
}

// MaxRegisterQubits is the largest register NewStateVector builds. Gate operators are
// 2^n x 2^n, so the practical limit (Engine.MaxQubits) is far lower.
const MaxRegisterQubits = 30

// NewStateVector returns the register |0...0⟩.
func NewStateVector(numQubits int) (*StateVector, error) {
	if numQubits < 1 || numQubits > MaxRegisterQubits {
		return nil, fmt.Errorf("%w: got %d, want 1 to %d", ErrQubitCount, numQubits, MaxRegisterQubits)
	}
	amps := make(Vector, 1<<numQubits)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}, nil
}

func (s *StateVector) Clone() *StateVector {
	amps := make(Vector, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return &StateVector{Amplitudes: amps, NumQubits: s.NumQubits}
}

// Apply runs op on the register. On error the state is left untouched.
func (s *StateVector) Apply(op Op) error {
	amps, err := applyOp(s.Amplitudes, s.NumQubits, op)
	if err != nil {
		return err
	}
	s.Amplitudes = amps
	return nil
}

// ApplySingle multiplies the register by the full operator of u acting on pos.
func (s *StateVector) ApplySingle(pos int, u Matrix) error {
	if pos < 0 || pos >= s.NumQubits {
		return fmt.Errorf("%w: qubit %d of %d", ErrQubitOutOfRange, pos, s.NumQubits)
	}
	s.Amplitudes = applySingle(s.Amplitudes, s.NumQubits, pos, u)
	return nil
}

// ApplyControlled runs target on the subspace where qubit ctrl is |1⟩.
func (s *StateVector) ApplyControlled(ctrl int, target Op) error {
	return s.applyControlled([]int{ctrl}, target)
}

// ApplyDoublyControlled runs target on the subspace where ctrl1 and ctrl2 are both |1⟩.
func (s *StateVector) ApplyDoublyControlled(ctrl1, ctrl2 int, target Op) error {
	return s.applyControlled([]int{ctrl1, ctrl2}, target)
}

func (s *StateVector) applyControlled(controls []int, target Op) error {
	amps, err := applyControlled(s.Amplitudes, s.NumQubits, controls, target)
	if err != nil {
		return err
	}
	s.Amplitudes = amps
	return nil
}

func (s *StateVector) PauliX(pos int) error   { return s.ApplySingle(pos, PauliX) }
func (s *StateVector) PauliY(pos int) error   { return s.ApplySingle(pos, PauliY) }
func (s *StateVector) PauliZ(pos int) error   { return s.ApplySingle(pos, PauliZ) }
func (s *StateVector) Hadamard(pos int) error { return s.ApplySingle(pos, Hadamard) }
func (s *StateVector) Phase(pos int) error    { return s.ApplySingle(pos, Phase) }
func (s *StateVector) PiOver8(pos int) error  { return s.ApplySingle(pos, PiOver8) }

// CNOT flips target when ctrl is |1⟩. ctrl may lie above or below target.
func (s *StateVector) CNOT(ctrl, target int) error {
	return s.Apply(NewOp(GateCNOT, ctrl, target))
}

func (s *StateVector) CZ(ctrl, target int) error {
	return s.Apply(NewOp(GateCZ, ctrl, target))
}

func (s *StateVector) ControlledPhase(ctrl, target int) error {
	return s.Apply(NewOp(GateCP, ctrl, target))
}

func (s *StateVector) Toffoli(ctrl1, ctrl2, target int) error {
	return s.Apply(NewOp(GateToffoli, ctrl1, ctrl2, target))
}

// SWAP exchanges two qubits as CNOT(a,b) CNOT(b,a) CNOT(a,b).
func (s *StateVector) SWAP(a, b int) error {
	return s.Apply(NewOp(GateSWAP, a, b))
}

func (s *StateVector) Fredkin(ctrl, a, b int) error {
	return s.Apply(NewOp(GateFredkin, ctrl, a, b))
}

// Probabilities returns |amplitude|² for every basis index.
func (s *StateVector) Probabilities() []float64 {
	probs := make([]float64, len(s.Amplitudes))
	for i, amp := range s.Amplitudes {
		probs[i] = real(amp * cmplx.Conj(amp))
	}
	return probs
}

// Norm returns the sum of squared magnitudes, 1 for a normalised state.
func (s *StateVector) Norm() float64 {
	total := 0.0
	for _, p := range s.Probabilities() {
		total += p
	}
	return total
}

type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

// GetQubitProbabilities returns the marginal P(0) and P(1) of each qubit.
func (s *StateVector) GetQubitProbabilities() []QubitProbability {
	probs := make([]QubitProbability, s.NumQubits)

	for i, prob := range s.Probabilities() {
		for q := 0; q < s.NumQubits; q++ {
			if i&(1<<(s.NumQubits-1-q)) != 0 {
				probs[q].Prob1 += prob
			} else {
				probs[q].Prob0 += prob
			}
		}
	}

	return probs
}

// BasisLabel returns the zero-padded binary label of basis index i.
func (s *StateVector) BasisLabel(i int) string {
	return fmt.Sprintf("%0*b", s.NumQubits, i)
}
