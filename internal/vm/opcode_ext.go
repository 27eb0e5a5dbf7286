package vm

import "fmt"

var fullOpcodes = baseOpcodes.with(opcodeTable{
	// 3XNN - Skips the next instruction if VX equals NN
	{0x3000, 0}: skeq1Instruction,
	// 4XNN - Skips the next instruction if VX does not equal NN
	{0x4000, 0}: skne1Instruction,
	// 5XY0 - Skips the next instruction if VX equals VY
	{0x5000, 0}: skeq2Instruction,
	// 9XY0 - Skips the next instruction if VX doesn't equal VY
	{0x9000, 0}: skne2Instruction,
	// BNNN - Jumps to the address NNN plus V0
	{0xB000, 0}: jmiInstruction,
	// CXNN - Sets VX to a random number, masked by NN
	{0xC000, 0}: randInstruction,
	// EX9E - Skips the next instruction if the key stored in VX is pressed
	{0xE000, 0x9E}: skprInstruction,
	// EXA1 - Skips the next instruction if the key stored in VX isn't pressed
	{0xE000, 0xA1}: skupInstruction,
	// FX07 - Sets VX to the value of the delay timer
	{0xF000, 0x07}: gdelayInstruction,
	// FX0A - A key press is awaited, and then stored in VX
	{0xF000, 0x0A}: keyInstruction,
	// FX15 - Sets the delay timer to VX
	{0xF000, 0x15}: sdelayInstruction,
	// FX18 - Sets the sound timer to VX
	{0xF000, 0x18}: ssoundInstruction,
	// FX1E - Adds VX to I. VF is set to 1 when I+VX>0xFFF, and 0 otherwise.
	{0xF000, 0x1E}: adiInstruction,
	// FX29 - Sets I to the location of the font glyph for the digit in VX
	{0xF000, 0x29}: fontInstruction,
	// FX33 - Stores the BCD representation of VX at I, I+1 and I+2
	{0xF000, 0x33}: bcdInstruction,
	// FX55 - Stores V0 to VX in memory starting at address I
	{0xF000, 0x55}: strInstruction,
	// FX65 - Reads memory starting at address I into V0...VX
	{0xF000, 0x65}: ldrInstruction,
})

func (p *Processor) skipIf(cond bool) {
	if cond {
		p.pc += InstructionSize
	}
}

var (
	// 3rxx	skeq vr,xx	skip if register r = constant
	skeq1Instruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("skeq v%x, %d", instr.X, instr.NN)
		},
		Execute: func(p *Processor, instr Instruction) error {
			p.skipIf(p.registers[instr.X] == instr.NN)
			return nil
		},
	}

	// 4rxx	skne vr,xx	skip if register r <> constant
	skne1Instruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("skne v%x, %d", instr.X, instr.NN)
		},
		Execute: func(p *Processor, instr Instruction) error {
			p.skipIf(p.registers[instr.X] != instr.NN)
			return nil
		},
	}

	// 5ry0	skeq vr,vy	skip if register r = register y
	skeq2Instruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("skeq v%x, v%x", instr.X, instr.Y)
		},
		Execute: func(p *Processor, instr Instruction) error {
			p.skipIf(p.registers[instr.X] == p.registers[instr.Y])
			return nil
		},
	}

	// 9ry0	skne vr,vy	skip if register r <> register y
	skne2Instruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("skne v%x, v%x", instr.X, instr.Y)
		},
		Execute: func(p *Processor, instr Instruction) error {
			p.skipIf(p.registers[instr.X] != p.registers[instr.Y])
			return nil
		},
	}

	// bxxx	jmi xxx	Jump to address xxx+register v0
	jmiInstruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("jmi 0x%04x", instr.NNN)
		},
		Execute: func(p *Processor, instr Instruction) error {
			p.pc = (instr.NNN + uint16(p.registers[0])) & AddressMask
			return nil
		},
	}

	// crxx	rand vr,xx	vr = random number masked by xx
	randInstruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("rand v%x, %d", instr.X, instr.NN)
		},
		Execute: func(p *Processor, instr Instruction) error {
			p.registers[instr.X] = p.random() & instr.NN
			return nil
		},
	}

	// ek9e	skpr k	skip if key (register rk) pressed
	skprInstruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("skpr v%x", instr.X)
		},
		Execute: func(p *Processor, instr Instruction) error {
			p.skipIf(p.keyPressed(p.registers[instr.X]))
			return nil
		},
	}

	// eka1	skup k	skip if key (register rk) not pressed
	skupInstruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("skup v%x", instr.X)
		},
		Execute: func(p *Processor, instr Instruction) error {
			p.skipIf(!p.keyPressed(p.registers[instr.X]))
			return nil
		},
	}

	// fr07	gdelay vr	get delay timer into vr
	gdelayInstruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("gdelay v%x", instr.X)
		},
		Execute: func(p *Processor, instr Instruction) error {
			p.registers[instr.X] = p.delayTimer
			return nil
		},
	}

	// fr0a	key vr	wait for for keypress,put key in register vr
	// The instruction repeats until a key is down.
	keyInstruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("key v%x", instr.X)
		},
		Execute: func(p *Processor, instr Instruction) error {
			for i, down := range p.keypad {
				if down {
					p.registers[instr.X] = uint8(i)
					return nil
				}
			}

			p.pc -= InstructionSize
			return nil
		},
	}

	// fr15	sdelay vr	set the delay timer to vr
	sdelayInstruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("sdelay v%x", instr.X)
		},
		Execute: func(p *Processor, instr Instruction) error {
			p.delayTimer = p.registers[instr.X]
			return nil
		},
	}

	// fr18	ssound vr	set the sound timer to vr
	ssoundInstruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("ssound v%x", instr.X)
		},
		Execute: func(p *Processor, instr Instruction) error {
			p.soundTimer = p.registers[instr.X]
			return nil
		},
	}

	// fr1e	adi vr	add register vr to the index register
	adiInstruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("adi v%x", instr.X)
		},
		Execute: func(p *Processor, instr Instruction) error {
			sum := p.index + uint16(p.registers[instr.X])

			if sum > AddressMask {
				p.setFlag(1)
			} else {
				p.setFlag(0)
			}

			p.index = sum & AddressMask
			return nil
		},
	}

	// fr29	font vr	point I to the sprite for hexadecimal character in vr	Sprite is 5 bytes high
	fontInstruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("font v%x", instr.X)
		},
		Execute: func(p *Processor, instr Instruction) error {
			digit := uint16(p.registers[instr.X] & 0x0F)
			p.index = FontStart + digit*GlyphSize
			return nil
		},
	}

	// fr33	bcd vr	store the bcd representation of register vr at location I,I+1,I+2	Doesn't change I
	bcdInstruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("bcd v%x", instr.X)
		},
		Execute: func(p *Processor, instr Instruction) error {
			x := p.registers[instr.X]

			p.writeMemory(p.index, x/100)
			p.writeMemory(p.index+1, (x/10)%10)
			p.writeMemory(p.index+2, x%10)
			return nil
		},
	}

	// fr55	str v0-vr	store registers v0-vr at location I onwards	I is incremented to point to the next location on. e.g. I = I + r + 1
	strInstruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("str %d", instr.X)
		},
		Execute: func(p *Processor, instr Instruction) error {
			n := uint16(instr.X)

			for i := uint16(0); i <= n; i++ {
				p.writeMemory(p.index+i, p.registers[i])
			}

			// On the original interpreter, when the operation is done, I = I + X + 1.
			p.index = (p.index + n + 1) & AddressMask
			return nil
		},
	}

	// fr65	ldr v0-vr	load registers v0-vr from location I onwards
	ldrInstruction = instruction{
		Name: func(instr Instruction) string {
			return fmt.Sprintf("ldr %d", instr.X)
		},
		Execute: func(p *Processor, instr Instruction) error {
			n := uint16(instr.X)

			for i := uint16(0); i <= n; i++ {
				p.registers[i] = p.ReadMemory(p.index + i)
			}

			// On the original interpreter, when the operation is done, I = I + X + 1.
			p.index = (p.index + n + 1) & AddressMask
			return nil
		},
	}
)
