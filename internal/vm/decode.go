package vm

// Instruction is one decoded instruction word.
type Instruction struct {
	Opcode uint16 // Raw word

	ID  uint16 // Instruction class, opcode & 0xF000
	X   uint8  // Register index, opcode & 0x0F00
	Y   uint8  // Register index, opcode & 0x00F0
	N   uint8  // 4-bit immediate, opcode & 0x000F
	NN  uint8  // 8-bit immediate, opcode & 0x00FF
	NNN uint16 // 12-bit address, opcode & 0x0FFF
}

// Decode splits an instruction word into its operand fields. Every word
// decodes; whether it does anything is up to the dispatcher.
func Decode(opcode uint16) Instruction {
	return Instruction{
		Opcode: opcode,
		ID:     opcode & 0xF000,
		X:      uint8((opcode & 0x0F00) >> 8),
		Y:      uint8((opcode & 0x00F0) >> 4),
		N:      uint8(opcode & 0x000F),
		NN:     uint8(opcode & 0x00FF),
		NNN:    opcode & 0x0FFF,
	}
}

// fetch reads the word at the program counter and moves the program counter
// past it.
func (p *Processor) fetch() Instruction {
	hi := p.memory[p.pc&AddressMask]
	lo := p.memory[(p.pc+1)&AddressMask]

	opcode := uint16(hi)<<8 | uint16(lo) // Op code is two bytes
	p.pc += InstructionSize

	return Decode(opcode)
}
