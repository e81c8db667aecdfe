package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToQASM(t *testing.T) {
	c, err := ParseCircuitJSON([]byte(bellJSON))
	require.NoError(t, err)

	qasm, issues := c.ToQASM()
	assert.Empty(t, issues)
	assert.Equal(t, `OPENQASM 2.0;
include "qelib1.inc";

qreg q[2];

h q[0];
cx q[0], q[1];
`, qasm)
}

func TestToQASMGateNames(t *testing.T) {
	c := &Circuit{NumQubits: 3}
	for col, op := range []Op{
		NewOp(GateY, 2),
		NewOp(GateCP, 1, 0),
		NewOp(GateCZ, 0, 2),
		NewOp(GateToffoli, 0, 2, 1),
		NewOp(GateSWAP, 0, 1),
		NewOp(GateFredkin, 2, 0, 1),
	} {
		require.NoError(t, c.AddOp(col, op))
	}

	qasm, issues := c.ToQASM()
	assert.Empty(t, issues)
	assert.Contains(t, qasm, "y q[2];\n")
	assert.Contains(t, qasm, "cu1(pi/2) q[1], q[0];\n")
	assert.Contains(t, qasm, "cz q[0], q[2];\n")
	assert.Contains(t, qasm, "ccx q[0], q[2], q[1];\n")
	assert.Contains(t, qasm, "swap q[0], q[1];\n")
	assert.Contains(t, qasm, "cswap q[2], q[0], q[1];\n")
}

func TestToQASMSkipsUnmatchedGroups(t *testing.T) {
	c, err := ParseCircuitJSON([]byte(`[2, [{"gate": "H", "link": 0}, {"gate": "Y", "link": 0}]]`))
	require.NoError(t, err)

	qasm, issues := c.ToQASM()
	require.Len(t, issues, 1)
	assert.ErrorIs(t, issues[0].Err, ErrUnmatchedGroup)
	assert.NotContains(t, qasm, "h q")
}

func TestToQASMSkipsOutOfRangeCells(t *testing.T) {
	c, err := ParseCircuitJSON([]byte(`[2,
		[{"gate": "X", "link": null}, {"gate": "X", "link": null}, {"gate": "X", "link": null}],
		[{"gate": "BD", "link": 0}, {"gate": "I", "link": null}, {"gate": "X", "link": 0}]
	]`))
	require.NoError(t, err)

	qasm, issues := c.ToQASM()
	require.Len(t, issues, 2)
	assert.Equal(t, 0, issues[0].Column)
	assert.ErrorIs(t, issues[0].Err, ErrQubitOutOfRange)
	assert.Equal(t, 1, issues[1].Column)
	assert.ErrorIs(t, issues[1].Err, ErrQubitOutOfRange)
	assert.NotContains(t, qasm, "q[2]")
	assert.Contains(t, qasm, "x q[0];\nx q[1];\n")

	back, err := ParseQASM(qasm)
	require.NoError(t, err)
	ops, _ := back.Ops()
	assert.Equal(t, []Op{NewOp(GateX, 0), NewOp(GateX, 1)}, ops)
}

func TestQASMRoundTrip(t *testing.T) {
	c, err := ParseCircuitJSON([]byte(`[3,
		[{"gate": "H", "link": null}, {"gate": "H", "link": null}, {"gate": "X", "link": null}],
		[{"gate": "BD", "link": 0}, {"gate": "I", "link": null}, {"gate": "S", "link": 0}],
		[{"gate": "T", "link": null}, {"gate": "BD", "link": 0}, {"gate": "Z", "link": 0}],
		[{"gate": "CR", "link": 0}, {"gate": "BD", "link": null}, {"gate": "CR", "link": 0}],
		[{"gate": "BD", "link": 0}, {"gate": "X", "link": null}, {"gate": "BD", "link": 0}],
		[{"gate": "Y", "link": null}, {"gate": "H", "link": null}]
	]`))
	require.NoError(t, err)

	want, issues, err := SimulateCircuit(c, -1, nil)
	require.NoError(t, err)
	require.Empty(t, issues)

	qasm, issues := c.ToQASM()
	require.Empty(t, issues)

	back, err := ParseQASM(qasm)
	require.NoError(t, err)
	assert.Equal(t, 3, back.NumQubits)

	got, issues, err := SimulateCircuit(back, -1, nil)
	require.NoError(t, err)
	require.Empty(t, issues)
	requireAmplitudes(t, want.Amplitudes, got.Amplitudes)
}

func TestParseQASM(t *testing.T) {
	src := `OPENQASM 2.0;
include "qelib1.inc";
// Bell pair on the outer qubits
qreg r[3];
creg c[3];

h r[0]; id r[1];
barrier r;
CX r[0], r[2]; // uppercase names are accepted
cp(pi/2) r[1], r[0];
`
	c, err := ParseQASM(src)
	require.NoError(t, err)
	assert.Equal(t, 3, c.NumQubits)

	ops, issues := c.Ops()
	assert.Empty(t, issues)
	assert.Equal(t, []Op{
		NewOp(GateH, 0),
		NewOp(GateCNOT, 0, 2),
		NewOp(GateCP, 1, 0),
	}, ops)

	qs, _, err := SimulateCircuit(c, -1, nil)
	require.NoError(t, err)
	assert.Equal(t, bellOuter(t).ProbabilitiesReport(true), qs.ProbabilitiesReport(true))
}

func bellOuter(t *testing.T) *StateVector {
	t.Helper()
	qs, err := NewStateVector(3)
	require.NoError(t, err)
	require.NoError(t, qs.Hadamard(0))
	require.NoError(t, qs.CNOT(0, 2))
	return qs
}

func TestParseQASMErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line string
		err  error
	}{
		{"gate before qreg", "h q[0];", "line 1", nil},
		{"no register", "OPENQASM 2.0;", "no qreg", nil},
		{"two registers", "qreg q[1];\nqreg p[1];", "line 2", nil},
		{"empty register", "qreg q[0];", "line 1", nil},
		{"unknown gate", "qreg q[1];\nu3(0,0,0) q[0];", "line 2", nil},
		{"unknown single gate", "qreg q[1];\nsdg q[0];", "line 2", ErrUnknownGate},
		{"measure", "qreg q[1];\ncreg c[1];\nmeasure q[0] -> c[0];", "line 3", nil},
		{"unsupported phase", "qreg q[2];\ncu1(pi/4) q[0], q[1];", "line 2", ErrUnknownGate},
		{"wrong register", "qreg q[2];\nx r[0];", "line 2", nil},
		{"out of range", "qreg q[2];\n\nx q[2];", "line 3", ErrQubitOutOfRange},
		{"duplicate qubit", "qreg q[2];\ncx q[1], q[1];", "line 2", ErrDuplicateQubit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQASM(tt.src)
			require.ErrorIs(t, err, ErrQASM)
			assert.Contains(t, err.Error(), tt.line)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}
