package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/kapitanov/chip8core/internal/hal"
	"github.com/kapitanov/chip8core/internal/hal/ebitenhal"
	"github.com/kapitanov/chip8core/internal/hal/sdlhal"
	"github.com/kapitanov/chip8core/internal/vm"
	"github.com/spf13/cobra"
)

func main() {
	cmd := &cobra.Command{
		Use:           fmt.Sprintf("%s PATH_TO_ROM_FILE", filepath.Base(os.Args[0])),
		Short:         "Run emulator",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	var cfg config
	bindFlags(cmd.Flags(), &cfg)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := cfg.validate(); err != nil {
			return err
		}

		loggerOpts := &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}
		if cfg.verbose {
			loggerOpts.Level = slog.LevelDebug
		}

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, loggerOpts)))

		path := args[0]
		bs, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("unable to load file %q: %w", path, err)
		}

		machine := vm.New(vm.WithInstructionSet(cfg.instructionSet()))
		if err := machine.Load(bs); err != nil {
			return fmt.Errorf("unable to load program %q: %w", path, err)
		}

		h, err := newHost(cfg.backend, cfg.halOptions())
		if err != nil {
			return fmt.Errorf("unable to initialize hal: %w", err)
		}
		defer h.Shutdown()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return h.Run(func() error {
			return run(ctx, machine, h, cfg.hz)
		})
	}

	cmd.SetArgs(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		slog.Error("fatal error", "err", err)
		os.Exit(1)
	}
}

// run executes the program until the user quits, rebooting on request.
func run(ctx context.Context, machine *vm.Processor, h vm.HAL, hz int) error {
	for {
		err := machine.Run(ctx, h, hz)

		if errors.Is(err, hal.ErrQuit) || errors.Is(err, context.Canceled) {
			return nil
		}

		if errors.Is(err, hal.ErrReboot) {
			slog.Info("reboot")
			machine.Reset()
			continue
		}

		return err
	}
}

func newHost(backend string, opts hal.Options) (hal.Host, error) {
	switch backend {
	case backendSDL:
		return sdlhal.New(opts)
	case backendEbiten:
		return ebitenhal.New(opts)
	case backendTerminal:
		return hal.NewTerminal(os.Stdin, os.Stdout, opts)
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}
