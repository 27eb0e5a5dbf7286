// Package sdlhal presents the screen in an SDL2 window.
package sdlhal

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/kapitanov/chip8core/internal/hal"
	"github.com/kapitanov/chip8core/internal/vm"
	"github.com/veandco/go-sdl2/sdl"
)

var _ hal.Host = (*HAL)(nil)

type HAL struct {
	window          *sdl.Window
	renderer        *sdl.Renderer
	texture         *sdl.Texture
	backBuffer      []uint32
	backBufferPitch int

	fgColor uint32
	bgColor uint32
}

func New(opts hal.Options) (*HAL, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("failed to init sdl: %w", err)
	}

	width := int32(vm.ScreenWidth * opts.Scale)
	height := int32(vm.ScreenHeight * opts.Scale)

	window, err := sdl.CreateWindow("CHIP-8", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, width, height, sdl.WINDOW_SHOWN|sdl.WINDOW_UTILITY)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("failed to create sdl window: %w", err)
	}
	slog.Debug("hal: create window", "width", width, "height", height)
	window.Show()

	h := &HAL{
		window:          window,
		backBuffer:      make([]uint32, vm.ScreenWidth*vm.ScreenHeight),
		backBufferPitch: vm.ScreenWidth * int(unsafe.Sizeof(uint32(0))),
		fgColor:         opts.Foreground & 0xFFFFFF,
		bgColor:         opts.Background & 0xFFFFFF,
	}

	h.renderer, err = sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		h.Shutdown()
		return nil, fmt.Errorf("failed to create sdl renderer: %w", err)
	}
	if err = h.renderer.SetLogicalSize(width, height); err != nil {
		h.Shutdown()
		return nil, fmt.Errorf("failed to resize sdl renderer: %w", err)
	}
	slog.Debug("hal: create renderer")

	h.texture, err = h.renderer.CreateTexture(sdl.PIXELFORMAT_ARGB8888, sdl.TEXTUREACCESS_STREAMING, vm.ScreenWidth, vm.ScreenHeight)
	if err != nil {
		h.Shutdown()
		return nil, fmt.Errorf("failed to create sdl texture: %w", err)
	}
	slog.Debug("hal: create texture")

	return h, nil
}

func (h *HAL) Run(fn func() error) error {
	return fn()
}

func (h *HAL) Shutdown() {
	if h.texture != nil {
		if err := h.texture.Destroy(); err != nil {
			slog.Error("failed to destroy sdl texture", "err", err)
		}
	}

	if h.renderer != nil {
		if err := h.renderer.Destroy(); err != nil {
			slog.Error("failed to destroy sdl renderer", "err", err)
		}
	}

	if err := h.window.Destroy(); err != nil {
		slog.Error("failed to destroy sdl window", "err", err)
	}

	sdl.Quit()
}

func (h *HAL) ReadInput(keyDown func(vm.Key), keyUp func(vm.Key)) error {
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch e.GetType() {
		case sdl.QUIT:
			slog.Debug("hal: exit requested")
			return hal.ErrQuit

		case sdl.KEYDOWN:
			if err := processKeyDown(e.(*sdl.KeyboardEvent), keyDown); err != nil {
				return err
			}

		case sdl.KEYUP:
			processKeyUp(e.(*sdl.KeyboardEvent), keyUp)
		}
	}

	return nil
}

func processKeyDown(e *sdl.KeyboardEvent, callback func(vm.Key)) error {
	switch e.Keysym.Scancode {
	case sdl.SCANCODE_BACKSPACE:
		return hal.ErrReboot
	case sdl.SCANCODE_ESCAPE:
		return hal.ErrQuit
	}

	// Auto-repeat would re-press a held key
	if e.Repeat != 0 {
		return nil
	}

	key, ok := keyMap(e)
	if ok {
		callback(key)
	}

	return nil
}

func processKeyUp(e *sdl.KeyboardEvent, callback func(vm.Key)) {
	key, ok := keyMap(e)
	if ok {
		callback(key)
	}
}

// keyMap uses scancodes so the layout stays put on non-QWERTY keyboards.
// See hal.KeyForRune for the layout.
func keyMap(e *sdl.KeyboardEvent) (vm.Key, bool) {
	switch e.Keysym.Scancode {
	case sdl.SCANCODE_X:
		return vm.Key0, true
	case sdl.SCANCODE_1:
		return vm.Key1, true
	case sdl.SCANCODE_2:
		return vm.Key2, true
	case sdl.SCANCODE_3:
		return vm.Key3, true
	case sdl.SCANCODE_Q:
		return vm.Key4, true
	case sdl.SCANCODE_W:
		return vm.Key5, true
	case sdl.SCANCODE_E:
		return vm.Key6, true
	case sdl.SCANCODE_A:
		return vm.Key7, true
	case sdl.SCANCODE_S:
		return vm.Key8, true
	case sdl.SCANCODE_D:
		return vm.Key9, true
	case sdl.SCANCODE_Z:
		return vm.KeyA, true
	case sdl.SCANCODE_C:
		return vm.KeyB, true
	case sdl.SCANCODE_4:
		return vm.KeyC, true
	case sdl.SCANCODE_R:
		return vm.KeyD, true
	case sdl.SCANCODE_F:
		return vm.KeyE, true
	case sdl.SCANCODE_V:
		return vm.KeyF, true
	default:
		return 0, false
	}
}

func (h *HAL) Draw(fb *vm.Framebuffer) error {
	for y := 0; y < vm.ScreenHeight; y++ {
		for x := 0; x < vm.ScreenWidth; x++ {
			i := x + y*vm.ScreenWidth

			color := h.bgColor
			if fb.At(x, y) {
				color = h.fgColor
			}

			h.backBuffer[i] = 0xFF000000 | color
		}
	}

	backBufferPtr := unsafe.Pointer(&h.backBuffer[0])
	if err := h.texture.Update(nil, backBufferPtr, h.backBufferPitch); err != nil {
		return fmt.Errorf("failed to update sdl texture: %w", err)
	}

	if err := h.renderer.Clear(); err != nil {
		return fmt.Errorf("failed to clear sdl renderer: %w", err)
	}

	if err := h.renderer.Copy(h.texture, nil, nil); err != nil {
		return fmt.Errorf("failed to copy sdl texture to renderer: %w", err)
	}

	h.renderer.Present()
	return nil
}
