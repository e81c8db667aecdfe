package main

import (
	"fmt"
	"slices"
)

// Term is one summand of a decomposed state: Coeff · Basis[0] ⊗ Basis[1] ⊗ ... ,
// each basis entry being ZeroKet or OneKet.
type Term struct {
	Coeff Complex
	Basis []Vector
}

// Decompose expands a 2^k amplitude vector into one term per computational basis state,
// zero amplitudes included. Basis[0] is the most significant bit of the index.
func Decompose(v Vector) []Term {
	k := bitWidth(len(v))
	terms := make([]Term, len(v))
	for i, amp := range v {
		basis := make([]Vector, k)
		for q := 0; q < k; q++ {
			if i&(1<<(k-1-q)) != 0 {
				basis[q] = OneKet
			} else {
				basis[q] = ZeroKet
			}
		}
		terms[i] = Term{Coeff: amp, Basis: basis}
	}
	return terms
}

// Recompose sums the coefficient-weighted tensor products of the terms.
// It is the inverse of Decompose. All terms must have the same width.
func Recompose(terms []Term) Vector {
	if len(terms) == 0 {
		return Vector{}
	}
	return recompose(terms, len(terms[0].Basis))
}

func recompose(terms []Term, width int) Vector {
	out := make(Vector, 1<<width)
	for _, t := range terms {
		prod := Vector{1}
		for _, ket := range t.Basis {
			prod = KronVec(prod, ket)
		}
		for i, x := range prod {
			if x == 0 {
				continue
			}
			out[i] += t.Coeff * x
		}
	}
	return out
}

// bitWidth returns k such that 2^k == size, for the sizes Decompose accepts.
func bitWidth(size int) int {
	k := 0
	for 1<<k < size {
		k++
	}
	return k
}

func isOne(ket Vector) bool {
	return len(ket) == 2 && ket[0] == 0 && ket[1] != 0
}

// applyControlled runs payload on every basis term whose control qubits are all |1⟩.
//
// Each selected term has its controls projected out, leaving an (n-len(controls))-qubit
// sub-state that the payload acts on; the result is decomposed again and the control
// kets are put back in place. Terms with any control at |0⟩ pass through unchanged.
// The payload's qubit positions refer to the full register.
func applyControlled(amps Vector, n int, controls []int, payload Op) (Vector, error) {
	if err := validatePositions(controls, n); err != nil {
		return nil, err
	}
	for _, q := range payload.Qubits {
		if slices.Contains(controls, q) {
			return nil, fmt.Errorf("%w: qubit %d is both control and target of %s", ErrDuplicateQubit, q, payload.Kind)
		}
		if q < 0 || q >= n {
			return nil, fmt.Errorf("%w: %s on qubit %d of %d", ErrQubitOutOfRange, payload.Kind, q, n)
		}
	}

	width := n - len(controls)
	reduced := Op{Kind: payload.Kind, Qubits: make([]int, len(payload.Qubits))}
	for i, q := range payload.Qubits {
		shift := 0
		for _, c := range controls {
			if c < q {
				shift++
			}
		}
		reduced.Qubits[i] = q - shift
	}

	terms := Decompose(amps)
	out := make([]Term, 0, len(terms))
	for _, t := range terms {
		if t.Coeff == 0 {
			continue
		}
		selected := true
		for _, c := range controls {
			if !isOne(t.Basis[c]) {
				selected = false
				break
			}
		}
		if !selected {
			out = append(out, t)
			continue
		}

		sub := make([]Vector, 0, width)
		for q, ket := range t.Basis {
			if !slices.Contains(controls, q) {
				sub = append(sub, ket)
			}
		}
		res, err := applyOp(recompose([]Term{{Coeff: t.Coeff, Basis: sub}}, width), width, reduced)
		if err != nil {
			return nil, err
		}
		for _, st := range Decompose(res) {
			if st.Coeff == 0 {
				continue
			}
			out = append(out, Term{Coeff: st.Coeff, Basis: withControls(st.Basis, controls, n)})
		}
	}
	return recompose(out, n), nil
}

// withControls widens a reduced basis back to n qubits with OneKet at every control.
func withControls(reduced []Vector, controls []int, n int) []Vector {
	full := make([]Vector, n)
	j := 0
	for q := range full {
		if slices.Contains(controls, q) {
			full[q] = OneKet
			continue
		}
		full[q] = reduced[j]
		j++
	}
	return full
}

func validatePositions(qubits []int, n int) error {
	seen := make(map[int]bool, len(qubits))
	for _, q := range qubits {
		if q < 0 || q >= n {
			return fmt.Errorf("%w: control on qubit %d of %d", ErrQubitOutOfRange, q, n)
		}
		if seen[q] {
			return fmt.Errorf("%w: control on qubit %d", ErrDuplicateQubit, q)
		}
		seen[q] = true
	}
	return nil
}
