package hal

import (
	"testing"

	"github.com/kapitanov/chip8core/internal/vm"
	"github.com/stretchr/testify/assert"
)

func TestKeyForRune(t *testing.T) {
	layout := []struct {
		row  string
		keys [4]vm.Key
	}{
		{"1234", [4]vm.Key{vm.Key1, vm.Key2, vm.Key3, vm.KeyC}},
		{"qwer", [4]vm.Key{vm.Key4, vm.Key5, vm.Key6, vm.KeyD}},
		{"asdf", [4]vm.Key{vm.Key7, vm.Key8, vm.Key9, vm.KeyE}},
		{"zxcv", [4]vm.Key{vm.KeyA, vm.Key0, vm.KeyB, vm.KeyF}},
	}

	seen := map[vm.Key]bool{}
	for _, l := range layout {
		for i, r := range l.row {
			key, ok := KeyForRune(r)
			assert.True(t, ok, "%q", r)
			assert.Equal(t, l.keys[i], key, "%q", r)
			seen[key] = true
		}
	}
	assert.Len(t, seen, vm.KeyCount)

	key, ok := KeyForRune('Q')
	assert.True(t, ok)
	assert.Equal(t, vm.Key4, key)

	for _, r := range "5tgb ?\r" {
		_, ok := KeyForRune(r)
		assert.False(t, ok, "%q", r)
	}
}

func TestRGB(t *testing.T) {
	r, g, b := RGB(0xbea700)
	assert.Equal(t, uint8(0xbe), r)
	assert.Equal(t, uint8(0xa7), g)
	assert.Equal(t, uint8(0x00), b)
}
