package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kapitanov/chip8core/internal/hal"
	"github.com/kapitanov/chip8core/internal/vm"
	"github.com/spf13/pflag"
)

const (
	backendSDL      = "sdl"
	backendEbiten   = "ebiten"
	backendTerminal = "term"
)

type config struct {
	verbose bool
	backend string
	hz      int
	isa     string
	scale   int
	fg      string
	bg      string
}

func bindFlags(fs *pflag.FlagSet, cfg *config) {
	defaults := hal.DefaultOptions()

	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "enable verbose logging")
	fs.StringVarP(&cfg.backend, "backend", "b", backendSDL, "display backend: sdl, ebiten or term")
	fs.IntVar(&cfg.hz, "hz", 700, "cycles per second")
	fs.StringVar(&cfg.isa, "isa", vm.ISAFull.String(), "instruction set: base or full")
	fs.IntVar(&cfg.scale, "scale", defaults.Scale, "window pixels per screen pixel")
	fs.StringVar(&cfg.fg, "fg", fmt.Sprintf("%06x", defaults.Foreground), "foreground color as RRGGBB")
	fs.StringVar(&cfg.bg, "bg", fmt.Sprintf("%06x", defaults.Background), "background color as RRGGBB")
}

func (cfg *config) validate() error {
	switch cfg.backend {
	case backendSDL, backendEbiten, backendTerminal:
	default:
		return fmt.Errorf("unknown backend %q", cfg.backend)
	}

	if cfg.hz <= 0 {
		return fmt.Errorf("cycle rate must be positive, got %d", cfg.hz)
	}

	if cfg.scale <= 0 {
		return fmt.Errorf("scale must be positive, got %d", cfg.scale)
	}

	if _, err := vm.ParseInstructionSet(cfg.isa); err != nil {
		return err
	}

	if _, err := parseColor(cfg.fg); err != nil {
		return fmt.Errorf("invalid foreground color: %w", err)
	}

	if _, err := parseColor(cfg.bg); err != nil {
		return fmt.Errorf("invalid background color: %w", err)
	}

	return nil
}

func (cfg *config) instructionSet() vm.InstructionSet {
	set, _ := vm.ParseInstructionSet(cfg.isa)
	return set
}

func (cfg *config) halOptions() hal.Options {
	fg, _ := parseColor(cfg.fg)
	bg, _ := parseColor(cfg.bg)

	return hal.Options{
		Scale:      cfg.scale,
		Foreground: fg,
		Background: bg,
	}
}

// parseColor accepts RRGGBB with an optional leading '#'.
func parseColor(s string) (uint32, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, fmt.Errorf("%q is not RRGGBB", s)
	}

	c, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%q is not RRGGBB: %w", s, err)
	}
	return uint32(c), nil
}
