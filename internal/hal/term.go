package hal

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/kapitanov/chip8core/internal/vm"
	"golang.org/x/term"
)

const (
	ctrlC     = 0x03
	backspace = 0x08
	del       = 0x7f

	// Terminals report presses only, so a key counts as held for this long
	// after its last repeat.
	keyHoldDuration = 150 * time.Millisecond
)

// Terminal renders the screen with half-block characters and reads the
// keyboard in raw mode.
type Terminal struct {
	fd    int
	state *term.State
	out   io.Writer
	keys  chan byte

	held map[vm.Key]time.Time
	now  func() time.Time

	color string
	buf   bytes.Buffer
}

func NewTerminal(in *os.File, out io.Writer, opts Options) (*Terminal, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("%s is not a terminal", in.Name())
	}

	if w, h, err := term.GetSize(fd); err == nil && (w < vm.ScreenWidth || h < vm.ScreenHeight/2) {
		slog.Warn("terminal is smaller than the screen", "cols", w, "rows", h)
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to set raw mode: %w", err)
	}
	slog.Debug("hal: terminal in raw mode")

	t := newTerminal(out, opts)
	t.fd = fd
	t.state = state

	go t.readLoop(in)

	// Clear and hide the cursor
	if _, err := io.WriteString(out, "\x1b[2J\x1b[?25l"); err != nil {
		t.Shutdown()
		return nil, fmt.Errorf("failed to prepare terminal: %w", err)
	}

	return t, nil
}

func newTerminal(out io.Writer, opts Options) *Terminal {
	fr, fg, fb := RGB(opts.Foreground)
	br, bg, bb := RGB(opts.Background)

	return &Terminal{
		fd:    -1,
		out:   out,
		keys:  make(chan byte, 64),
		held:  make(map[vm.Key]time.Time),
		now:   time.Now,
		color: fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm", fr, fg, fb, br, bg, bb),
	}
}

func (t *Terminal) readLoop(in io.Reader) {
	defer close(t.keys)

	buf := make([]byte, 16)
	for {
		n, err := in.Read(buf)
		for _, b := range buf[:n] {
			t.keys <- b
		}

		if err != nil {
			slog.Debug("hal: terminal input closed", "err", err)
			return
		}
	}
}

func (t *Terminal) Run(fn func() error) error {
	return fn()
}

func (t *Terminal) Shutdown() {
	if _, err := io.WriteString(t.out, "\x1b[0m\x1b[?25h\r\n"); err != nil {
		slog.Error("failed to reset terminal", "err", err)
	}

	if t.state != nil {
		if err := term.Restore(t.fd, t.state); err != nil {
			slog.Error("failed to restore terminal", "err", err)
		}
		t.state = nil
	}
}

func (t *Terminal) ReadInput(keyDown func(vm.Key), keyUp func(vm.Key)) error {
	now := t.now()

	for {
		select {
		case b, ok := <-t.keys:
			if !ok {
				return ErrQuit
			}

			switch b {
			case ctrlC:
				slog.Debug("hal: exit requested")
				return ErrQuit
			case backspace, del:
				return ErrReboot
			}

			key, ok := KeyForRune(rune(b))
			if !ok {
				continue
			}

			if _, down := t.held[key]; !down {
				keyDown(key)
			}
			t.held[key] = now

		default:
			for key, at := range t.held {
				if now.Sub(at) >= keyHoldDuration {
					delete(t.held, key)
					keyUp(key)
				}
			}
			return nil
		}
	}
}

func (t *Terminal) Draw(fb *vm.Framebuffer) error {
	t.buf.Reset()
	t.buf.WriteString("\x1b[H")
	t.buf.WriteString(t.color)

	// Two screen rows per text row
	for y := 0; y < vm.ScreenHeight; y += 2 {
		for x := 0; x < vm.ScreenWidth; x++ {
			t.buf.WriteString(halfBlock(fb.At(x, y), fb.At(x, y+1)))
		}
		t.buf.WriteString("\r\n")
	}
	t.buf.WriteString("\x1b[0m")

	if _, err := t.out.Write(t.buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

func halfBlock(top, bottom bool) string {
	switch {
	case top && bottom:
		return "█"
	case top:
		return "▀"
	case bottom:
		return "▄"
	default:
		return " "
	}
}
