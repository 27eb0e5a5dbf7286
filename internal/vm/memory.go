package vm

import (
	"fmt"
	"log/slog"
)

// ReadMemory returns the byte at addr reduced to the 12-bit address space.
func (p *Processor) ReadMemory(addr uint16) uint8 {
	return p.memory[addr&AddressMask]
}

// writeMemory stores a byte on behalf of an instruction. The font table is
// read-only for programs, so writes into it are dropped.
func (p *Processor) writeMemory(addr uint16, value uint8) {
	addr &= AddressMask
	if addr < FontEnd {
		slog.Debug("drop write into font table", "addr", fmt.Sprintf("0x%04x", addr))
		return
	}

	p.memory[addr] = value
}

// Register returns Vx. Index 0xF is the flag register.
func (p *Processor) Register(x uint8) uint8 {
	return p.registers[x&0x0F]
}

// SetRegister stores value into Vx.
func (p *Processor) SetRegister(x uint8, value uint8) {
	p.registers[x&0x0F] = value
}

func (p *Processor) setFlag(value uint8) {
	p.registers[FlagRegister] = value
}
