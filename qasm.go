package main

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var ErrQASM = errors.New("qasm")

// Pre-compiled regexps for QASM parsing.
var (
	qregRegex          = regexp.MustCompile(`^qreg\s+(\w+)\[(\d+)\]$`)
	singleGateRegex    = regexp.MustCompile(`^(\w+)\s+(\w+)\[(\d+)\]$`)
	twoQubitRegex      = regexp.MustCompile(`^(\w+)\s+(\w+)\[(\d+)\]\s*,\s*(\w+)\[(\d+)\]$`)
	twoQubitParamRegex = regexp.MustCompile(`^(\w+)\s*\(\s*(` + anglePattern + `)\s*\)\s+(\w+)\[(\d+)\]\s*,\s*(\w+)\[(\d+)\]$`)
	threeQubitRegex    = regexp.MustCompile(`^(\w+)\s+(\w+)\[(\d+)\]\s*,\s*(\w+)\[(\d+)\]\s*,\s*(\w+)\[(\d+)\]$`)
)

var qasmSingleGates = map[string]GateKind{
	"id": GateI,
	"x":  GateX,
	"y":  GateY,
	"z":  GateZ,
	"h":  GateH,
	"s":  GateS,
	"t":  GateT,
}

var qasmTwoQubitGates = map[string]GateKind{
	"cx":   GateCNOT,
	"cz":   GateCZ,
	"swap": GateSWAP,
}

var qasmThreeQubitGates = map[string]GateKind{
	"ccx":   GateToffoli,
	"cswap": GateFredkin,
}

// qasmName is the statement name written for each gate kind. CP is written as cu1(pi/2).
var qasmName = map[GateKind]string{
	GateI:       "id",
	GateX:       "x",
	GateY:       "y",
	GateZ:       "z",
	GateH:       "h",
	GateS:       "s",
	GateT:       "t",
	GateCNOT:    "cx",
	GateCZ:      "cz",
	GateToffoli: "ccx",
	GateSWAP:    "swap",
	GateFredkin: "cswap",
}

// ToQASM generates QASM 2.0 output from the circuit. Steps that do not form a valid
// operation are left out and returned as issues.
func (c *Circuit) ToQASM() (string, []Issue) {
	ops, issues := c.Ops()

	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n\n", max(c.NumQubits, 1))

	for _, op := range ops {
		args := make([]string, len(op.Qubits))
		for i, q := range op.Qubits {
			args[i] = fmt.Sprintf("q[%d]", q)
		}
		fmt.Fprintf(&sb, "%s %s;\n", qasmGateName(op.Kind), strings.Join(args, ", "))
	}
	return sb.String(), issues
}

func qasmGateName(kind GateKind) string {
	if kind == GateCP {
		return "cu1(" + formatAngle(halfPi) + ")"
	}
	return qasmName[kind]
}

// ParseQASM reads a QASM 2.0 program restricted to the simulator's gate set and lays
// its statements out into columns, each as early as the qubits it spans allow.
func ParseQASM(src string) (*Circuit, error) {
	var dag *CircuitDAG
	register := ""

	for ln, line := range strings.Split(src, "\n") {
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		for _, stmt := range strings.Split(line, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			lineErr := func(err error) error {
				return fmt.Errorf("%w: line %d: %w", ErrQASM, ln+1, err)
			}

			switch {
			case strings.HasPrefix(stmt, "OPENQASM"),
				strings.HasPrefix(stmt, "include"),
				strings.HasPrefix(stmt, "creg"),
				strings.HasPrefix(stmt, "barrier"):
				continue
			case strings.HasPrefix(stmt, "qreg"):
				m := qregRegex.FindStringSubmatch(stmt)
				if m == nil {
					return nil, lineErr(fmt.Errorf("bad register declaration %q", stmt))
				}
				if dag != nil {
					return nil, lineErr(errors.New("only one quantum register is supported"))
				}
				n, err := strconv.Atoi(m[2])
				if err != nil || n < 1 {
					return nil, lineErr(fmt.Errorf("bad register size %q", m[2]))
				}
				register = m[1]
				dag = NewCircuitDAG(n)
				continue
			}

			if dag == nil {
				return nil, lineErr(errors.New("gate before qreg declaration"))
			}
			op, err := parseQASMStatement(stmt, register)
			if err == nil {
				err = dag.AddOp(op)
			}
			if err != nil {
				return nil, lineErr(err)
			}
		}
	}

	if dag == nil {
		return nil, fmt.Errorf("%w: no qreg declaration", ErrQASM)
	}
	return dag.ToCircuit()
}

func parseQASMStatement(stmt, register string) (Op, error) {
	qubits := func(pairs ...string) ([]int, error) {
		out := make([]int, 0, len(pairs)/2)
		for i := 0; i < len(pairs); i += 2 {
			if pairs[i] != register {
				return nil, fmt.Errorf("unknown register %q", pairs[i])
			}
			q, err := strconv.Atoi(pairs[i+1])
			if err != nil {
				return nil, err
			}
			out = append(out, q)
		}
		return out, nil
	}

	if m := singleGateRegex.FindStringSubmatch(stmt); m != nil {
		kind, ok := qasmSingleGates[strings.ToLower(m[1])]
		if !ok {
			return Op{}, fmt.Errorf("%w: %q", ErrUnknownGate, m[1])
		}
		q, err := qubits(m[2:]...)
		if err != nil {
			return Op{}, err
		}
		return NewOp(kind, q...), nil
	}

	if m := twoQubitRegex.FindStringSubmatch(stmt); m != nil {
		kind, ok := qasmTwoQubitGates[strings.ToLower(m[1])]
		if !ok {
			return Op{}, fmt.Errorf("%w: %q", ErrUnknownGate, m[1])
		}
		q, err := qubits(m[2:]...)
		if err != nil {
			return Op{}, err
		}
		return NewOp(kind, q...), nil
	}

	if m := twoQubitParamRegex.FindStringSubmatch(stmt); m != nil {
		name := strings.ToLower(m[1])
		if name != "cu1" && name != "cp" {
			return Op{}, fmt.Errorf("%w: %q", ErrUnknownGate, m[1])
		}
		theta, err := parseAngle(m[2])
		if err != nil {
			return Op{}, err
		}
		if math.Abs(theta-halfPi) > 1e-9 {
			return Op{}, fmt.Errorf("%w: %s(%s), only pi/2 is supported", ErrUnknownGate, name, m[2])
		}
		q, err := qubits(m[3:]...)
		if err != nil {
			return Op{}, err
		}
		return NewOp(GateCP, q...), nil
	}

	if m := threeQubitRegex.FindStringSubmatch(stmt); m != nil {
		kind, ok := qasmThreeQubitGates[strings.ToLower(m[1])]
		if !ok {
			return Op{}, fmt.Errorf("%w: %q", ErrUnknownGate, m[1])
		}
		q, err := qubits(m[2:]...)
		if err != nil {
			return Op{}, err
		}
		return NewOp(kind, q...), nil
	}

	return Op{}, fmt.Errorf("unsupported statement %q", stmt)
}
