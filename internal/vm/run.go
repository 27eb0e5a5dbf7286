package vm

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// HAL presents the screen and delivers key events. Errors returned by a HAL
// stop Run and are handed back to the caller unchanged.
type HAL interface {
	ReadInput(keyDown func(Key), keyUp func(Key)) error
	Draw(fb *Framebuffer) error
}

// Run executes cycles at hz cycles per second until ctx is done, the HAL
// returns an error or the processor faults. A program that jumps to itself
// stops executing; Run then only services input so the HAL can request a
// reboot or quit.
func (p *Processor) Run(ctx context.Context, hal HAL, hz int) error {
	if hz <= 0 {
		return fmt.Errorf("invalid cycle rate %d", hz)
	}

	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := p.runStep(hal); err != nil {
			return err
		}

		if p.looped {
			slog.Info("program looped", "pc", fmt.Sprintf("0x%04x", p.origin))
			return p.waitForReboot(ctx, hal, ticker)
		}
	}
}

func (p *Processor) waitForReboot(ctx context.Context, hal HAL, ticker *time.Ticker) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := hal.ReadInput(func(_ Key) {}, func(_ Key) {}); err != nil {
			return err
		}
	}
}

func (p *Processor) runStep(hal HAL) error {
	if err := p.ExecuteCycle(); err != nil {
		return err
	}

	if p.ConsumeRedraw() {
		if err := hal.Draw(p.Snapshot()); err != nil {
			return err
		}
	}

	if err := hal.ReadInput(p.KeyDown, p.KeyUp); err != nil {
		return err
	}

	return nil
}
