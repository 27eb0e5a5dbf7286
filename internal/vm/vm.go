package vm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

const (
	MemorySize    = 4096
	RegisterCount = 16
	ScreenWidth   = 64
	ScreenHeight  = 32
	KeyCount      = 16

	ProgramStart    = uint16(0x200)
	InstructionSize = 2

	// AddressMask reduces any address to the 12-bit addressable range.
	AddressMask = uint16(0x0FFF)

	// FlagRegister is VF, shared by carry, borrow, shift and collision results.
	FlagRegister = 0x0F
)

var (
	ErrProgramTooLarge = errors.New("program does not fit into memory")
	ErrStackUnderflow  = errors.New("return with empty call stack")
)

type Processor struct {
	memory    [MemorySize]uint8    // Memory (4k)
	registers [RegisterCount]uint8 // V registers (V0-VF)

	stack callStack // Return addresses

	pc    uint16 // Program counter
	index uint16 // Index register

	delayTimer uint8 // Delay timer
	soundTimer uint8 // Sound timer

	screen   Framebuffer    // Graphics buffer
	keypad   [KeyCount]bool // Keypad
	drawFlag bool           // Indicates a draw has occurred

	table  opcodeTable
	random func() uint8

	origin uint16 // Address of the instruction being executed
	looped bool   // Last instruction jumped to itself
	fault  error  // Sticky fatal error

	program []byte
}

// New returns a processor with zeroed state, the font loaded and the program
// counter at ProgramStart. Without options only the base instruction set is
// decoded; every other word is a no-op.
func New(opts ...Option) *Processor {
	p := &Processor{
		table:  baseOpcodes,
		random: defaultRandom,
	}

	for _, opt := range opts {
		opt(p)
	}

	p.initialize()
	return p
}

// Load copies a raw program image into memory at ProgramStart. Nothing is
// written when the image does not fit.
func (p *Processor) Load(program []byte) error {
	if limit := MemorySize - int(ProgramStart); len(program) > limit {
		return fmt.Errorf("%w: %d bytes, at most %d allowed", ErrProgramTooLarge, len(program), limit)
	}

	p.program = append(p.program[:0], program...)

	slog.Info("load program", "at", fmt.Sprintf("0x%04x", ProgramStart), "n", len(program))
	copy(p.memory[ProgramStart:], program)
	return nil
}

// Reset clears the whole machine and reloads the font and the last loaded
// program.
func (p *Processor) Reset() {
	p.initialize()

	slog.Debug("reload program", "at", fmt.Sprintf("0x%04x", ProgramStart), "n", len(p.program))
	copy(p.memory[ProgramStart:], p.program)
}

func (p *Processor) initialize() {
	p.pc = ProgramStart
	p.index = 0
	p.origin = ProgramStart
	p.looped = false
	p.fault = nil

	p.screen.clear()
	p.drawFlag = true

	p.stack.reset()
	p.keypad = [KeyCount]bool{}
	p.registers = [RegisterCount]uint8{}

	// Clear memory
	p.memory = [MemorySize]uint8{}

	// Load font set into memory
	slog.Debug("load font", "at", fmt.Sprintf("0x%04x", FontStart), "n", len(chip8Font))
	copy(p.memory[FontStart:], chip8Font[:])

	p.delayTimer = 0
	p.soundTimer = 0
}

// ExecuteCycle runs one fetch, decode, execute and timer step. After a fatal
// error the processor is halted and keeps returning that error until Reset.
func (p *Processor) ExecuteCycle() error {
	if p.fault != nil {
		return p.fault
	}

	p.origin = p.pc & AddressMask
	p.looped = false

	instr := p.fetch()
	if err := p.execute(instr); err != nil {
		p.fault = err
		return err
	}

	p.tickTimers()
	return nil
}

func (p *Processor) execute(instr Instruction) error {
	op, ok := p.table.lookup(instr)

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		slog.Debug(
			"exec",
			"pc", fmt.Sprintf("0x%04x", p.origin),
			"opcode", fmt.Sprintf("0x%04x", instr.Opcode),
			"instr", op.mnemonic(instr),
		)
	}

	if !ok {
		return nil
	}

	return op.Execute(p, instr)
}

func (p *Processor) tickTimers() {
	if p.soundTimer > 0 {
		p.soundTimer--
	}

	if p.delayTimer > 0 {
		p.delayTimer--
	}
}

// Snapshot returns a copy of the current framebuffer.
func (p *Processor) Snapshot() *Framebuffer {
	fb := p.screen
	return &fb
}

// NeedsRedraw reports whether the screen changed since the flag was last
// consumed.
func (p *Processor) NeedsRedraw() bool {
	return p.drawFlag
}

// ConsumeRedraw returns the redraw flag and clears it.
func (p *Processor) ConsumeRedraw() bool {
	draw := p.drawFlag
	p.drawFlag = false
	return draw
}

// Looped reports whether the last executed instruction was a jump to its own
// address. Such a program can make no further progress on its own.
func (p *Processor) Looped() bool {
	return p.looped
}

// Halted returns the fatal error that stopped the processor, if any.
func (p *Processor) Halted() error {
	return p.fault
}

func (p *Processor) PC() uint16 {
	return p.pc
}

func (p *Processor) Index() uint16 {
	return p.index
}

func (p *Processor) DelayTimer() uint8 {
	return p.delayTimer
}

func (p *Processor) SoundTimer() uint8 {
	return p.soundTimer
}

func (p *Processor) StackDepth() int {
	return p.stack.len()
}

func (p *Processor) KeyDown(key Key) {
	p.keypad[key&0x0F] = true
}

func (p *Processor) KeyUp(key Key) {
	p.keypad[key&0x0F] = false
}
