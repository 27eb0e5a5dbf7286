// Package ebitenhal presents the screen with Ebitengine. Ebitengine owns the
// goroutine that calls Run, so the emulator loop runs beside it and the two
// exchange frames and key events under a mutex.
package ebitenhal

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/kapitanov/chip8core/internal/hal"
	"github.com/kapitanov/chip8core/internal/vm"
)

var _ hal.Host = (*HAL)(nil)

var keyMap = map[ebiten.Key]vm.Key{
	ebiten.KeyX:      vm.Key0,
	ebiten.KeyDigit1: vm.Key1,
	ebiten.KeyDigit2: vm.Key2,
	ebiten.KeyDigit3: vm.Key3,
	ebiten.KeyQ:      vm.Key4,
	ebiten.KeyW:      vm.Key5,
	ebiten.KeyE:      vm.Key6,
	ebiten.KeyA:      vm.Key7,
	ebiten.KeyS:      vm.Key8,
	ebiten.KeyD:      vm.Key9,
	ebiten.KeyZ:      vm.KeyA,
	ebiten.KeyC:      vm.KeyB,
	ebiten.KeyDigit4: vm.KeyC,
	ebiten.KeyR:      vm.KeyD,
	ebiten.KeyF:      vm.KeyE,
	ebiten.KeyV:      vm.KeyF,
}

type keyEvent struct {
	key  vm.Key
	down bool
}

type HAL struct {
	mu     sync.Mutex
	pixels []byte // RGBA
	events []keyEvent
	quit   bool
	reboot bool

	done  chan struct{}
	scale int
	fg    [4]byte
	bg    [4]byte
}

func New(opts hal.Options) (*HAL, error) {
	if opts.Scale <= 0 {
		return nil, fmt.Errorf("invalid scale %d", opts.Scale)
	}

	h := &HAL{
		pixels: make([]byte, vm.ScreenWidth*vm.ScreenHeight*4),
		done:   make(chan struct{}),
		scale:  opts.Scale,
		fg:     rgba(opts.Foreground),
		bg:     rgba(opts.Background),
	}

	h.Draw(&vm.Framebuffer{})
	return h, nil
}

func rgba(c uint32) [4]byte {
	r, g, b := hal.RGB(c)
	return [4]byte{r, g, b, 0xFF}
}

// Run starts fn on its own goroutine and runs the Ebitengine loop on the
// calling one until either finishes.
func (h *HAL) Run(fn func() error) error {
	ebiten.SetWindowTitle("CHIP-8")
	ebiten.SetWindowSize(vm.ScreenWidth*h.scale, vm.ScreenHeight*h.scale)

	errc := make(chan error, 1)
	go func() {
		defer close(h.done)
		errc <- fn()
	}()

	err := ebiten.RunGame(&game{hal: h})

	// Window closed: let the emulator loop see a quit.
	h.mu.Lock()
	h.quit = true
	h.mu.Unlock()

	runErr := <-errc
	if err != nil {
		return fmt.Errorf("ebiten: %w", err)
	}
	return runErr
}

func (h *HAL) Shutdown() {
	slog.Debug("hal: ebiten shutdown")
}

func (h *HAL) ReadInput(keyDown func(vm.Key), keyUp func(vm.Key)) error {
	h.mu.Lock()
	events := h.events
	h.events = nil
	quit, reboot := h.quit, h.reboot
	h.reboot = false
	h.mu.Unlock()

	if quit {
		return hal.ErrQuit
	}
	if reboot {
		return hal.ErrReboot
	}

	for _, e := range events {
		if e.down {
			keyDown(e.key)
		} else {
			keyUp(e.key)
		}
	}

	return nil
}

func (h *HAL) Draw(fb *vm.Framebuffer) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for y := 0; y < vm.ScreenHeight; y++ {
		for x := 0; x < vm.ScreenWidth; x++ {
			color := h.bg
			if fb.At(x, y) {
				color = h.fg
			}

			i := (x + y*vm.ScreenWidth) * 4
			copy(h.pixels[i:i+4], color[:])
		}
	}

	return nil
}

type game struct {
	hal *HAL
}

func (g *game) Update() error {
	select {
	case <-g.hal.done:
		return ebiten.Termination
	default:
	}

	h := g.hal
	h.mu.Lock()
	defer h.mu.Unlock()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		slog.Debug("hal: exit requested")
		h.quit = true
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		h.reboot = true
	}

	for ek, key := range keyMap {
		if inpututil.IsKeyJustPressed(ek) {
			h.events = append(h.events, keyEvent{key: key, down: true})
		} else if inpututil.IsKeyJustReleased(ek) {
			h.events = append(h.events, keyEvent{key: key, down: false})
		}
	}

	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.hal.mu.Lock()
	defer g.hal.mu.Unlock()

	screen.WritePixels(g.hal.pixels)
}

func (g *game) Layout(_, _ int) (int, int) {
	return vm.ScreenWidth, vm.ScreenHeight
}
