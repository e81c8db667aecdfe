package main

import (
	"errors"
	"fmt"
	"slices"
)

// Cell tags as sent by the circuit editor.
const (
	TagIdentity = "I"
	TagX        = "X"
	TagY        = "Y"
	TagZ        = "Z"
	TagH        = "H"
	TagS        = "S"
	TagT        = "T"
	TagControl  = "BD" // control dot
	TagSwap     = "CR" // swap cross
)

var (
	ErrUnmatchedGroup = errors.New("gate group does not match any known multi-qubit gate")
	ErrMalformedGroup = errors.New("gate group positions and tags differ in length")
)

var singleGateTags = map[string]GateKind{
	TagIdentity: GateI,
	TagX:        GateX,
	TagY:        GateY,
	TagZ:        GateZ,
	TagH:        GateH,
	TagS:        GateS,
	TagT:        GateT,
}

// Protocol maps symbolic gates and gate groups onto the state vector.
type Protocol struct {
	qs  *StateVector
	log *Logger
}

func NewProtocol(numQubits int, log *Logger) (*Protocol, error) {
	qs, err := NewStateVector(numQubits)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = NoopLogger()
	}
	log.Debug("protocol initiated", "qubits", numQubits)
	return &Protocol{qs: qs, log: log}, nil
}

func (p *Protocol) State() *StateVector {
	return p.qs
}

// ApplySingleGate applies the single-qubit gate named by tag at pos.
func (p *Protocol) ApplySingleGate(pos int, tag string) error {
	kind, ok := singleGateTags[tag]
	if !ok {
		return fmt.Errorf("%w: %q at qubit %d", ErrUnknownGate, tag, pos)
	}
	if pos < 0 || pos >= p.qs.NumQubits {
		return fmt.Errorf("%w: %s at qubit %d of %d", ErrQubitOutOfRange, tag, pos, p.qs.NumQubits)
	}
	if kind == GateI {
		return nil
	}
	p.log.Debug("apply gate", "gate", tag, "qubit", pos)
	return p.qs.Apply(NewOp(kind, pos))
}

// ApplyGateGroup recognises the multi-qubit gate formed by a linked group of cells.
// Identity cells inside the group are ignored.
func (p *Protocol) ApplyGateGroup(positions []int, tags []string) error {
	op, err := MatchGroup(positions, tags)
	if err != nil {
		return err
	}
	p.log.Debug("apply group", "gate", op.Kind.String(), "qubits", op.Qubits)
	return p.qs.Apply(op)
}

// MatchGroup turns a (positions, tags) group into the operation it describes.
func MatchGroup(positions []int, tags []string) (Op, error) {
	if len(positions) != len(tags) {
		return Op{}, fmt.Errorf("%w: %d positions, %d tags", ErrMalformedGroup, len(positions), len(tags))
	}

	var pos []int
	var tg []string
	for i, tag := range tags {
		if tag == TagIdentity {
			continue
		}
		pos = append(pos, positions[i])
		tg = append(tg, tag)
	}

	count := func(tag string) int {
		n := 0
		for _, t := range tg {
			if t == tag {
				n++
			}
		}
		return n
	}
	at := func(tag string) int {
		return pos[slices.Index(tg, tag)]
	}
	all := func(tag string) []int {
		var out []int
		for i, t := range tg {
			if t == tag {
				out = append(out, pos[i])
			}
		}
		return out
	}

	switch {
	case len(tg) == 2 && count(TagControl) == 1 && count(TagX) == 1:
		return NewOp(GateCNOT, at(TagControl), at(TagX)), nil
	case len(tg) == 2 && count(TagControl) == 1 && count(TagZ) == 1:
		return NewOp(GateCZ, at(TagControl), at(TagZ)), nil
	case len(tg) == 2 && count(TagControl) == 1 && count(TagS) == 1:
		return NewOp(GateCP, at(TagControl), at(TagS)), nil
	case len(tg) == 3 && count(TagControl) == 2 && count(TagX) == 1:
		ctrl := all(TagControl)
		return NewOp(GateToffoli, ctrl[0], ctrl[1], at(TagX)), nil
	case len(tg) == 2 && count(TagSwap) == 2:
		return NewOp(GateSWAP, pos[0], pos[1]), nil
	case len(tg) == 3 && count(TagControl) == 1 && count(TagSwap) == 2:
		swap := all(TagSwap)
		return NewOp(GateFredkin, at(TagControl), swap[0], swap[1]), nil
	}
	return Op{}, fmt.Errorf("%w: %v at %v", ErrUnmatchedGroup, tags, positions)
}
