//go:build !headless

package main

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestEbitenScanCodes_Unique(t *testing.T) {
	seen := make(map[int]ebiten.Key)
	for key, code := range ebitenScanCodes {
		if prev, dup := seen[code]; dup {
			t.Fatalf("code %d mapped from both %v and %v", code, prev, key)
		}
		seen[code] = key
		if code <= 0 {
			t.Fatalf("%v mapped to reserved code %d", key, code)
		}
	}
}

func TestEbitenKeyToScanCode(t *testing.T) {
	cases := map[ebiten.Key]int{
		ebiten.KeyEscape: 1,
		ebiten.KeyDigit4: 5,
		ebiten.KeyQ:      16,
		ebiten.KeyZ:      44,
		ebiten.KeyF5:     63,
	}
	for key, want := range cases {
		got, ok := ebitenKeyToScanCode(key)
		if !ok || got != want {
			t.Fatalf("%v: got (%d, %v), want %d", key, got, ok, want)
		}
	}
	if _, ok := ebitenKeyToScanCode(ebiten.KeyArrowUp); ok {
		t.Fatal("arrow keys have no lattice position")
	}
}

// Keys past the lattice are mapped but must be dropped by the bridge.
func TestEbitenScanCodes_OutOfLatticeDiscarded(t *testing.T) {
	bridge, voices := newTestBridge(t)
	code, ok := ebitenKeyToScanCode(ebiten.KeyF8)
	if !ok {
		t.Fatal("F8 should be mapped")
	}
	if bridge.Submit(KeyEvent{Code: code, State: KeyPressed}) {
		t.Fatalf("code %d accepted past the lattice", code)
	}
	bridge.Flush()
	if voices.Len() != 0 {
		t.Fatal("out-of-lattice key produced a voice")
	}
}
