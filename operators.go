package main

import (
	"math"
	"math/cmplx"
)

type Complex = complex128

// Matrix is a dense row-major complex matrix.
type Matrix [][]Complex

// Vector is a complex column vector.
type Vector []Complex

// Basis kets.
var (
	ZeroKet = Vector{1, 0}
	OneKet  = Vector{0, 1}
)

var invSqrt2 = 1 / math.Sqrt(2)

// Single-qubit operators.
var (
	Identity = Matrix{
		{1, 0},
		{0, 1},
	}
	PauliX = Matrix{
		{0, 1},
		{1, 0},
	}
	PauliY = Matrix{
		{0, -1i},
		{1i, 0},
	}
	PauliZ = Matrix{
		{1, 0},
		{0, -1},
	}
	Hadamard = Matrix{
		{complex(invSqrt2, 0), complex(invSqrt2, 0)},
		{complex(invSqrt2, 0), complex(-invSqrt2, 0)},
	}
	Phase = Matrix{
		{1, 0},
		{0, 1i},
	}
	PiOver8 = Matrix{
		{1, 0},
		{0, cmplx.Exp(complex(0, math.Pi/4))},
	}
)

// Kron returns the Kronecker product a ⊗ b.
func Kron(a, b Matrix) Matrix {
	if len(a) == 0 || len(b) == 0 {
		return Matrix{}
	}
	ar, ac := len(a), len(a[0])
	br, bc := len(b), len(b[0])
	out := make(Matrix, ar*br)
	for i := range out {
		out[i] = make([]Complex, ac*bc)
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			aij := a[i][j]
			if aij == 0 {
				continue
			}
			for k := 0; k < br; k++ {
				row := out[i*br+k]
				for l := 0; l < bc; l++ {
					row[j*bc+l] = aij * b[k][l]
				}
			}
		}
	}
	return out
}

// KronVec returns the tensor product of two vectors.
func KronVec(a, b Vector) Vector {
	out := make(Vector, len(a)*len(b))
	for i, ai := range a {
		for j, bj := range b {
			out[i*len(b)+j] = ai * bj
		}
	}
	return out
}

// MulVec left-multiplies v by m.
func (m Matrix) MulVec(v Vector) Vector {
	out := make(Vector, len(m))
	for i, row := range m {
		var sum Complex
		for j, x := range row {
			if x == 0 {
				continue
			}
			sum += x * v[j]
		}
		out[i] = sum
	}
	return out
}
