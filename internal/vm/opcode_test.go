package vm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// step executes a single instruction word placed at ProgramStart.
func step(t *testing.T, p *Processor, opcode uint16) {
	t.Helper()

	p.pc = ProgramStart
	p.memory[ProgramStart] = uint8(opcode >> 8)
	p.memory[ProgramStart+1] = uint8(opcode)
	require.NoError(t, p.ExecuteCycle())
}

func TestOpcodeTable_Lookup(t *testing.T) {
	tests := []struct {
		opcode uint16
		base   string
		full   string
	}{
		{0x00E0, "cls", "cls"},
		{0x00EE, "rts", "rts"},
		{0x00E1, "", ""},
		{0x0123, "", ""},
		{0x1ABC, "jmp 0x0abc", "jmp 0x0abc"},
		{0x2ABC, "jsr 0x0abc", "jsr 0x0abc"},
		{0x3A12, "", "skeq va, 18"},
		{0x6A12, "mov va, 18", "mov va, 18"},
		{0x7A12, "add va, 18", "add va, 18"},
		{0x8AB0, "mov va, vb", "mov va, vb"},
		{0x8AB4, "add va, vb", "add va, vb"},
		{0x8AB6, "shr va, vb", "shr va, vb"},
		{0x8AB8, "", ""},
		{0x8ABE, "shl va, vb", "shl va, vb"},
		{0x9AB0, "", "skne va, vb"},
		{0xA123, "mvi 0x0123", "mvi 0x0123"},
		{0xC1FF, "", "rand v1, 255"},
		{0xDAB5, "sprite va, vb, 5", "sprite va, vb, 5"},
		{0xE19E, "", "skpr v1"},
		{0xE1FF, "", ""},
		{0xF129, "", "font v1"},
		{0xF1FF, "", ""},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("0x%04X", tt.opcode), func(t *testing.T) {
			instr := Decode(tt.opcode)

			for _, c := range []struct {
				table opcodeTable
				name  string
			}{
				{baseOpcodes, tt.base},
				{fullOpcodes, tt.full},
			} {
				op, ok := c.table.lookup(instr)
				if c.name == "" {
					assert.False(t, ok)
					assert.Equal(t, fmt.Sprintf("unknown 0x%04X", tt.opcode), op.mnemonic(instr))
					continue
				}

				require.True(t, ok)
				assert.Equal(t, c.name, op.mnemonic(instr))
			}
		})
	}
}

func TestUndefinedOpcodesAreNoOps(t *testing.T) {
	for _, opcode := range []uint16{0x0000, 0x00E1, 0x0FFF, 0x3000, 0x4A12, 0x5AB0, 0x8AB8, 0x8ABF, 0x9AB0, 0xB123, 0xC1FF, 0xE19E, 0xF107, 0xF155} {
		t.Run(fmt.Sprintf("0x%04X", opcode), func(t *testing.T) {
			p := New()
			for x := uint8(0); x < RegisterCount; x++ {
				p.SetRegister(x, x*3)
			}
			p.index = 0x345
			p.ConsumeRedraw()
			regs := p.registers
			mem := p.memory

			step(t, p, opcode)

			assert.Equal(t, ProgramStart+InstructionSize, p.PC())
			assert.Equal(t, regs, p.registers)
			assert.Equal(t, uint16(0x345), p.Index())
			assert.Equal(t, 0, p.StackDepth())
			assert.False(t, p.NeedsRedraw())

			// Only the instruction bytes at ProgramStart differ
			mem[ProgramStart] = uint8(opcode >> 8)
			mem[ProgramStart+1] = uint8(opcode)
			assert.Equal(t, mem, p.memory)
		})
	}
}

func TestJump(t *testing.T) {
	p := New()

	step(t, p, 0x1ABC)

	assert.Equal(t, uint16(0xABC), p.PC())
	assert.False(t, p.Looped())
}

func TestJump_ToItselfLoops(t *testing.T) {
	p := New()
	loadWords(t, p, 0x6001, 0x1202)

	runCycles(t, p, 1)
	assert.False(t, p.Looped())

	runCycles(t, p, 1)
	assert.True(t, p.Looped())
	assert.Equal(t, uint16(0x202), p.PC())
}

func TestCallReturnRoundTrip(t *testing.T) {
	p := New()
	loadWords(t, p,
		0x2206, // 0x200: jsr 0x206
		0x6101, // 0x202: mov v1, 1
		0x0000, // 0x204
		0x00EE, // 0x206: rts
	)

	runCycles(t, p, 1)
	assert.Equal(t, uint16(0x206), p.PC())
	assert.Equal(t, 1, p.StackDepth())

	runCycles(t, p, 1)
	assert.Equal(t, uint16(0x202), p.PC(), "returns to the instruction after the call")
	assert.Equal(t, 0, p.StackDepth())

	runCycles(t, p, 1)
	assert.Equal(t, uint8(1), p.Register(1))
}

func TestCall_Nested(t *testing.T) {
	p := New()
	loadWords(t, p,
		0x2204, // 0x200: jsr 0x204
		0x0000, // 0x202
		0x2208, // 0x204: jsr 0x208
		0x00EE, // 0x206: rts
		0x00EE, // 0x208: rts
	)

	runCycles(t, p, 2)
	assert.Equal(t, 2, p.StackDepth())

	runCycles(t, p, 1)
	assert.Equal(t, uint16(0x206), p.PC())

	runCycles(t, p, 1)
	assert.Equal(t, uint16(0x202), p.PC())
	assert.Equal(t, 0, p.StackDepth())
}

func TestCall_StackGrowsPastSixteen(t *testing.T) {
	p := New()
	loadWords(t, p, 0x2200) // jsr 0x200

	runCycles(t, p, 64)
	assert.Equal(t, 64, p.StackDepth())
}

func TestReturn_EmptyStack(t *testing.T) {
	p := New()
	loadWords(t, p, 0x6001, 0x00EE)

	runCycles(t, p, 1)
	err := p.ExecuteCycle()

	require.ErrorIs(t, err, ErrStackUnderflow)
	assert.Contains(t, err.Error(), "0x0202")
}

func TestLoadImmediate(t *testing.T) {
	p := New()

	step(t, p, 0x6A42)
	assert.Equal(t, uint8(0x42), p.Register(0xA))

	step(t, p, 0xA9BC)
	assert.Equal(t, uint16(0x9BC), p.Index())
}

func TestAddImmediate(t *testing.T) {
	tests := []struct {
		name     string
		vx       uint8
		nn       uint8
		expected uint8
	}{
		{"simple", 5, 3, 8},
		{"exact fit", 0xF0, 0x0F, 0xFF},
		{"overflow is a no-op", 0xF0, 0x10, 0xF0},
		{"max overflow is a no-op", 0xFF, 0xFF, 0xFF},
		{"zero", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New()
			p.SetRegister(3, tt.vx)
			p.SetRegister(FlagRegister, 0x77)

			step(t, p, 0x7300|uint16(tt.nn))

			assert.Equal(t, tt.expected, p.Register(3))
			assert.Equal(t, uint8(0x77), p.Register(FlagRegister), "flag register untouched")
		})
	}
}

func TestLogicalOps(t *testing.T) {
	tests := []struct {
		opcode   uint16
		expected uint8
	}{
		{0x8120, 0x0F}, // mov
		{0x8121, 0x3F}, // or
		{0x8122, 0x0C}, // and
		{0x8123, 0x33}, // xor
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("0x%04X", tt.opcode), func(t *testing.T) {
			p := New()
			p.SetRegister(1, 0x3C)
			p.SetRegister(2, 0x0F)

			step(t, p, tt.opcode)

			assert.Equal(t, tt.expected, p.Register(1))
			assert.Equal(t, uint8(0x0F), p.Register(2))
		})
	}
}

func TestAddRegisters_AllPairs(t *testing.T) {
	p := New()

	for x := 0; x < 256; x++ {
		for y := 0; y < 256; y++ {
			p.SetRegister(1, uint8(x))
			p.SetRegister(2, uint8(y))

			step(t, p, 0x8124)

			if x+y > 0xFF {
				require.Equal(t, uint8(1), p.Register(FlagRegister), "%d+%d", x, y)
				require.Equal(t, uint8(x), p.Register(1), "%d+%d", x, y)
			} else {
				require.Equal(t, uint8(0), p.Register(FlagRegister), "%d+%d", x, y)
				require.Equal(t, uint8(x+y), p.Register(1), "%d+%d", x, y)
			}
		}
	}
}

func TestSubRegisters_AllPairs(t *testing.T) {
	p := New()

	for x := 0; x < 256; x++ {
		for y := 0; y < 256; y++ {
			p.SetRegister(1, uint8(x))
			p.SetRegister(2, uint8(y))

			step(t, p, 0x8125)

			if y > x {
				require.Equal(t, uint8(0), p.Register(FlagRegister), "%d-%d", x, y)
				require.Equal(t, uint8(x), p.Register(1), "%d-%d", x, y)
			} else {
				require.Equal(t, uint8(1), p.Register(FlagRegister), "%d-%d", x, y)
				require.Equal(t, uint8(x-y), p.Register(1), "%d-%d", x, y)
			}
		}
	}
}

func TestReverseSubRegisters_AllPairs(t *testing.T) {
	p := New()

	for x := 0; x < 256; x++ {
		for y := 0; y < 256; y++ {
			p.SetRegister(1, uint8(x))
			p.SetRegister(2, uint8(y))

			step(t, p, 0x8127)

			if x > y {
				require.Equal(t, uint8(0), p.Register(FlagRegister), "%d-%d", y, x)
				require.Equal(t, uint8(x), p.Register(1), "%d-%d", y, x)
			} else {
				require.Equal(t, uint8(1), p.Register(FlagRegister), "%d-%d", y, x)
				require.Equal(t, uint8(y-x), p.Register(1), "%d-%d", y, x)
			}
		}
	}
}

func TestShifts_AllValues(t *testing.T) {
	p := New()

	for v := 0; v < 256; v++ {
		src := uint8(v)

		p.SetRegister(1, 0xAA)
		p.SetRegister(2, src)
		step(t, p, 0x8126)
		require.Equal(t, src>>1, p.Register(1), "shr %d", v)
		require.Equal(t, src&1, p.Register(FlagRegister), "shr %d", v)
		require.Equal(t, src, p.Register(2))

		p.SetRegister(1, 0xAA)
		p.SetRegister(2, src)
		step(t, p, 0x812E)
		require.Equal(t, src<<1, p.Register(1), "shl %d", v)
		require.Equal(t, src&1, p.Register(FlagRegister), "shl %d", v)
		require.Equal(t, src, p.Register(2))
	}
}

func TestShiftLeft_FlagIsLowBit(t *testing.T) {
	p := New()
	p.SetRegister(2, 0x80)

	step(t, p, 0x812E)

	assert.Equal(t, uint8(0x00), p.Register(1))
	assert.Equal(t, uint8(0), p.Register(FlagRegister), "bit 7 is shifted out but bit 0 is reported")
}

func TestFlagRegisterAliasing(t *testing.T) {
	t.Run("flag written through indexed interface", func(t *testing.T) {
		p := New()
		p.SetRegister(1, 0xFF)
		p.SetRegister(2, 0x01)

		step(t, p, 0x8124)

		assert.Equal(t, uint8(1), p.registers[FlagRegister])
		assert.Equal(t, p.registers[FlagRegister], p.Register(0xF))
	})

	t.Run("VF as destination ends up holding the flag", func(t *testing.T) {
		p := New()
		p.SetRegister(0xF, 0x10)
		p.SetRegister(1, 0x05)

		step(t, p, 0x8F14)

		assert.Equal(t, uint8(0), p.Register(0xF))
	})

	t.Run("VF as shift destination holds the lost bit", func(t *testing.T) {
		p := New()
		p.SetRegister(1, 0x02)

		step(t, p, 0x8F16)

		assert.Equal(t, uint8(0), p.Register(0xF))
	})

	t.Run("VF as source is read before the flag is written", func(t *testing.T) {
		p := New()
		p.SetRegister(1, 0x10)
		p.SetRegister(0xF, 0x05)

		step(t, p, 0x81F5)

		assert.Equal(t, uint8(0x0B), p.Register(1))
		assert.Equal(t, uint8(1), p.Register(0xF))
	})
}
