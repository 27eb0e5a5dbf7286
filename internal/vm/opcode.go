package vm

import (
	"fmt"
	"maps"
)

type instruction struct {
	Name    func(instr Instruction) string
	Execute func(p *Processor, instr Instruction) error
}

func (op instruction) mnemonic(instr Instruction) string {
	if op.Name == nil {
		return fmt.Sprintf("unknown 0x%04X", instr.Opcode)
	}
	return op.Name(instr)
}

// opcodeKey selects an instruction by class and, for classes that pack several
// instructions, by the sub-opcode.
type opcodeKey struct {
	id  uint16
	sub uint8
}

func keyOf(instr Instruction) opcodeKey {
	switch instr.ID {
	case 0x0000, 0xE000, 0xF000:
		return opcodeKey{id: instr.ID, sub: instr.NN}
	case 0x8000:
		return opcodeKey{id: instr.ID, sub: instr.N}
	default:
		return opcodeKey{id: instr.ID}
	}
}

type opcodeTable map[opcodeKey]instruction

// lookup returns false for reserved or undefined words, which execute as no-ops.
func (t opcodeTable) lookup(instr Instruction) (instruction, bool) {
	op, ok := t[keyOf(instr)]
	return op, ok
}

func (t opcodeTable) with(other opcodeTable) opcodeTable {
	merged := maps.Clone(t)
	maps.Copy(merged, other)
	return merged
}

var baseOpcodes = opcodeTable{
	// 00E0 - Clear screen
	{0x0000, 0xE0}: clsInstruction,
	// 00EE - Return from subroutine
	{0x0000, 0xEE}: rtsInstruction,
	// 1NNN - Jumps to address NNN
	{0x1000, 0}: jmpInstruction,
	// 2NNN - Calls subroutine at NNN
	{0x2000, 0}: jsrInstruction,
	// 6XNN - Sets VX to NN
	{0x6000, 0}: mov1Instruction,
	// 7XNN - Adds NN to VX unless the sum overflows
	{0x7000, 0}: add1Instruction,
	// 8XY0 - Sets VX to the value of VY
	{0x8000, 0x0}: mov2Instruction,
	// 8XY1 - Sets VX to (VX OR VY)
	{0x8000, 0x1}: orInstruction,
	// 8XY2 - Sets VX to (VX AND VY)
	{0x8000, 0x2}: andInstruction,
	// 8XY3 - Sets VX to (VX XOR VY)
	{0x8000, 0x3}: xorInstruction,
	// 8XY4 - Adds VY to VX. On carry VF is 1 and VX is kept, otherwise VF is 0.
	{0x8000, 0x4}: add2Instruction,
	// 8XY5 - VY is subtracted from VX. On borrow VF is 0 and VX is kept, otherwise VF is 1.
	{0x8000, 0x5}: subInstruction,
	// 8XY6 - Sets VX to VY shifted right by one. VF is bit 0 of VY.
	{0x8000, 0x6}: shrInstruction,
	// 8XY7 - Sets VX to VY minus VX. On borrow VF is 0 and VX is kept, otherwise VF is 1.
	{0x8000, 0x7}: rsbInstruction,
	// 8XYE - Sets VX to VY shifted left by one. VF is bit 0 of VY.
	{0x8000, 0xE}: shlInstruction,
	// ANNN - Sets I to the address NNN
	{0xA000, 0}: mviInstruction,
	// DXYN - Draws an 8xN sprite from memory at I at (VX, VY)
	{0xD000, 0}: spriteInstruction,
}

var (
	// 00E0	cls	Clear the screen
	clsInstruction = instruction{
		Name: func(instr Instruction) string {
			return "cls"
		},
		Execute: func(p *Processor, instr Instruction) error {
			p.screen.clear()
			p.drawFlag = true
			return nil
		},
	}

	// 00EE	rts	return from subroutine call
	rtsInstruction = instruction{
		Name: func(instr Instruction) string {
			return "rts"
		},
		Execute: func(p *Processor, instr Instruction) error {
			addr, ok := p.stack.pop()
			if !ok {
				return fmt.Errorf("rts at 0x%04x: %w", p.origin, ErrStackUnderflow)
			}

			p.pc = addr
			return nil
		},
	}

	// 1xxx	jmp xxx	jump to address xxx
	jmpInstruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("jmp 0x%04x", instr.NNN)
		},
		Execute: func(p *Processor, instr Instruction) error {
			p.looped = instr.NNN == p.origin
			p.pc = instr.NNN
			return nil
		},
	}

	// 2xxx	jsr xxx	jump to subroutine at address xxx
	jsrInstruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("jsr 0x%04x", instr.NNN)
		},
		Execute: func(p *Processor, instr Instruction) error {
			p.stack.push(p.pc)
			p.pc = instr.NNN
			return nil
		},
	}

	// 6rxx	mov vr,xx	move constant to register r
	mov1Instruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("mov v%x, %d", instr.X, instr.NN)
		},
		Execute: func(p *Processor, instr Instruction) error {
			p.registers[instr.X] = instr.NN
			return nil
		},
	}

	// 7rxx	add vr,xx	add constant to register r	Skipped if the sum does not fit, no carry generated
	add1Instruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("add v%x, %d", instr.X, instr.NN)
		},
		Execute: func(p *Processor, instr Instruction) error {
			x := p.registers[instr.X]

			if uint16(x)+uint16(instr.NN) > 0xFF {
				return nil
			}

			p.registers[instr.X] = x + instr.NN
			return nil
		},
	}

	// 8ry0	mov vr,vy	move register vy into vr
	mov2Instruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("mov v%x, v%x", instr.X, instr.Y)
		},
		Execute: func(p *Processor, instr Instruction) error {
			p.registers[instr.X] = p.registers[instr.Y]
			return nil
		},
	}

	// 8ry1	or rx,ry	or register vy into register vx
	orInstruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("or v%x, v%x", instr.X, instr.Y)
		},
		Execute: func(p *Processor, instr Instruction) error {
			x := p.registers[instr.X]
			y := p.registers[instr.Y]

			p.registers[instr.X] = x | y
			return nil
		},
	}

	// 8ry2	and rx,ry	and register vy into register vx
	andInstruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("and v%x, v%x", instr.X, instr.Y)
		},
		Execute: func(p *Processor, instr Instruction) error {
			x := p.registers[instr.X]
			y := p.registers[instr.Y]

			p.registers[instr.X] = x & y
			return nil
		},
	}

	// 8ry3	xor rx,ry	exclusive or register ry into register rx
	xorInstruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("xor v%x, v%x", instr.X, instr.Y)
		},
		Execute: func(p *Processor, instr Instruction) error {
			x := p.registers[instr.X]
			y := p.registers[instr.Y]

			p.registers[instr.X] = x ^ y
			return nil
		},
	}

	// 8ry4	add vr,vy	add register vy to vr,carry in vf	vr is left untouched on carry
	add2Instruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("add v%x, v%x", instr.X, instr.Y)
		},
		Execute: func(p *Processor, instr Instruction) error {
			x := p.registers[instr.X]
			y := p.registers[instr.Y]

			sum := uint16(x) + uint16(y)
			if sum > 0xFF {
				p.setFlag(1)
				return nil
			}

			p.registers[instr.X] = uint8(sum)
			p.setFlag(0)
			return nil
		},
	}

	// 8ry5	sub vr,vy	subtract register vy from vr,borrow in vf	vf set to 0 and vr untouched if borrows
	subInstruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("sub v%x, v%x", instr.X, instr.Y)
		},
		Execute: func(p *Processor, instr Instruction) error {
			x := p.registers[instr.X]
			y := p.registers[instr.Y]

			if y > x {
				p.setFlag(0)
				return nil
			}

			p.registers[instr.X] = x - y
			p.setFlag(1)
			return nil
		},
	}

	// 8ry6	shr vr,vy	shift register vy right into vr, bit 0 goes into register vf
	shrInstruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("shr v%x, v%x", instr.X, instr.Y)
		},
		Execute: func(p *Processor, instr Instruction) error {
			y := p.registers[instr.Y]
			lost := y & 0x1

			p.registers[instr.X] = y
			p.registers[instr.X] >>= 1
			p.setFlag(lost)
			return nil
		},
	}

	// 8ry7	rsb vr,vy	subtract register vr from register vy, result in vr	vf set to 0 and vr untouched if borrows
	rsbInstruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("rsb v%x, v%x", instr.X, instr.Y)
		},
		Execute: func(p *Processor, instr Instruction) error {
			x := p.registers[instr.X]
			y := p.registers[instr.Y]

			if x > y {
				p.setFlag(0)
				return nil
			}

			p.registers[instr.X] = y - x
			p.setFlag(1)
			return nil
		},
	}

	// 8rye	shl vr,vy	shift register vy left into vr, bit 0 goes into register vf
	shlInstruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("shl v%x, v%x", instr.X, instr.Y)
		},
		Execute: func(p *Processor, instr Instruction) error {
			y := p.registers[instr.Y]

			// The flag takes bit 0, not the bit shifted out.
			lost := y & 0x1

			p.registers[instr.X] = y
			p.registers[instr.X] <<= 1
			p.setFlag(lost)
			return nil
		},
	}

	// axxx	mvi xxx	Load index register with constant xxx
	mviInstruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("mvi 0x%04x", instr.NNN)
		},
		Execute: func(p *Processor, instr Instruction) error {
			p.index = instr.NNN
			return nil
		},
	}

	// sprite rx,ry,s	Draw sprite at screen location rx,ry height s
	// Sprites stored in memory at location in index register, maximum 8 bits wide.
	// Wraps around the screen.
	// If when drawn, clears a pixel, vf is set to 1 otherwise it is zero.
	// All drawing is xor drawing (e.g. it toggles the screen pixels)
	spriteInstruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("sprite v%x, v%x, %d", instr.X, instr.Y, instr.N)
		},
		Execute: func(p *Processor, instr Instruction) error {
			xLocation := int(p.registers[instr.X]) % ScreenWidth
			yLocation := int(p.registers[instr.Y]) % ScreenHeight

			var buf [15]uint8
			rows := buf[:instr.N]
			for i := range rows {
				rows[i] = p.ReadMemory(p.index + uint16(i))
			}

			if p.screen.drawSprite(xLocation, yLocation, rows) {
				p.setFlag(1)
			} else {
				p.setFlag(0)
			}

			p.drawFlag = true
			return nil
		},
	}
)
