package vm

// Framebuffer is the 64x32 monochrome screen. Coordinates wrap around.
type Framebuffer struct {
	pixels [ScreenWidth * ScreenHeight]bool
}

// At reports whether the pixel at (x, y) is lit.
func (fb *Framebuffer) At(x, y int) bool {
	return fb.pixels[screenAddr(x, y)]
}

// Lit returns the number of lit pixels.
func (fb *Framebuffer) Lit() int {
	n := 0
	for _, on := range fb.pixels {
		if on {
			n++
		}
	}
	return n
}

func (fb *Framebuffer) clear() {
	fb.pixels = [ScreenWidth * ScreenHeight]bool{}
}

// toggle flips one pixel and reports whether it was switched off.
func (fb *Framebuffer) toggle(x, y int) bool {
	i := screenAddr(x, y)
	erased := fb.pixels[i]
	fb.pixels[i] = !erased
	return erased
}

// drawSprite XORs rows of sprite data onto the screen with the top-left corner
// at (x, y). Each row is one byte, most significant bit leftmost.
// It reports whether any lit pixel was switched off.
func (fb *Framebuffer) drawSprite(x, y int, rows []uint8) bool {
	const width = 8

	collision := false
	for dy, row := range rows {
		for dx := 0; dx < width; dx++ {
			mask := uint8(0x80 >> dx)
			if row&mask == 0 {
				continue
			}

			if fb.toggle(x+dx, y+dy) {
				collision = true
			}
		}
	}

	return collision
}

func screenAddr(x, y int) int {
	x %= ScreenWidth
	if x < 0 {
		x += ScreenWidth
	}

	y %= ScreenHeight
	if y < 0 {
		y += ScreenHeight
	}

	return ScreenWidth*y + x
}
