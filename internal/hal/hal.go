package hal

import (
	"errors"
	"unicode"

	"github.com/kapitanov/chip8core/internal/vm"
)

var (
	ErrReboot = errors.New("reboot")
	ErrQuit   = errors.New("quit")
)

// Host is a presentation backend. Run calls fn, the emulator loop; backends
// that must own the calling goroutine run fn on another one.
type Host interface {
	vm.HAL
	Run(fn func() error) error
	Shutdown()
}

type Options struct {
	Scale      int    // Window pixels per screen pixel
	Foreground uint32 // 0xRRGGBB
	Background uint32 // 0xRRGGBB
}

func DefaultOptions() Options {
	return Options{
		Scale:      16,
		Foreground: 0xbea700,
		Background: 0x000000,
	}
}

// RGB splits a 0xRRGGBB color.
func RGB(c uint32) (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// KeyForRune maps the left-hand block of a QWERTY keyboard onto the keypad.
func KeyForRune(r rune) (vm.Key, bool) {
	// Physical                Logical
	// ================        =================
	// | 1 | 2 | 3 | 4 |       | 1 | 2 | 3 | C |
	// | q | w | e | r |       | 4 | 5 | 6 | D |
	// | a | s | d | f |  <=>  | 7 | 8 | 9 | E |
	// | z | x | c | v |       | A | 0 | B | F |
	// ================        =================

	switch unicode.ToLower(r) {
	case 'x':
		return vm.Key0, true
	case '1':
		return vm.Key1, true
	case '2':
		return vm.Key2, true
	case '3':
		return vm.Key3, true
	case 'q':
		return vm.Key4, true
	case 'w':
		return vm.Key5, true
	case 'e':
		return vm.Key6, true
	case 'a':
		return vm.Key7, true
	case 's':
		return vm.Key8, true
	case 'd':
		return vm.Key9, true
	case 'z':
		return vm.KeyA, true
	case 'c':
		return vm.KeyB, true
	case '4':
		return vm.KeyC, true
	case 'r':
		return vm.KeyD, true
	case 'f':
		return vm.KeyE, true
	case 'v':
		return vm.KeyF, true
	default:
		return 0, false
	}
}
