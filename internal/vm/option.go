package vm

import (
	"fmt"
	"math/rand"
)

// InstructionSet selects which opcode table the processor decodes.
type InstructionSet int

const (
	// ISABase decodes control flow, loads, arithmetic/logic, clear and draw.
	ISABase InstructionSet = iota
	// ISAFull adds skips, keypad, timer, BCD, memory block, font and random
	// instructions.
	ISAFull
)

func (s InstructionSet) String() string {
	switch s {
	case ISABase:
		return "base"
	case ISAFull:
		return "full"
	default:
		return fmt.Sprintf("InstructionSet(%d)", int(s))
	}
}

// ParseInstructionSet maps "base" or "full" to an InstructionSet.
func ParseInstructionSet(name string) (InstructionSet, error) {
	switch name {
	case "base":
		return ISABase, nil
	case "full":
		return ISAFull, nil
	default:
		return 0, fmt.Errorf("unknown instruction set %q", name)
	}
}

type Option func(p *Processor)

func WithInstructionSet(set InstructionSet) Option {
	return func(p *Processor) {
		if set == ISAFull {
			p.table = fullOpcodes
			return
		}
		p.table = baseOpcodes
	}
}

// WithRandom replaces the byte source used by the random instruction.
func WithRandom(random func() uint8) Option {
	return func(p *Processor) {
		p.random = random
	}
}

func defaultRandom() uint8 {
	return uint8(rand.Intn(256))
}
