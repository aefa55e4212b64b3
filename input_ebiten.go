//go:build !headless

// input_ebiten.go - Ebiten keyboard window feeding key events to the bridge

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"
)

func init() {
	compiledFeatures = append(compiledFeatures, "input:ebiten")
}

// ebitenScanCodes maps ebiten keys to Linux evdev key codes, the physical
// numbering the pitch lattice is laid out on. Keys missing here never sound.
var ebitenScanCodes = map[ebiten.Key]int{
	ebiten.KeyEscape:         1,
	ebiten.KeyDigit1:         2,
	ebiten.KeyDigit2:         3,
	ebiten.KeyDigit3:         4,
	ebiten.KeyDigit4:         5,
	ebiten.KeyDigit5:         6,
	ebiten.KeyDigit6:         7,
	ebiten.KeyDigit7:         8,
	ebiten.KeyDigit8:         9,
	ebiten.KeyDigit9:         10,
	ebiten.KeyDigit0:         11,
	ebiten.KeyMinus:          12,
	ebiten.KeyEqual:          13,
	ebiten.KeyBackspace:      14,
	ebiten.KeyTab:            15,
	ebiten.KeyQ:              16,
	ebiten.KeyW:              17,
	ebiten.KeyE:              18,
	ebiten.KeyR:              19,
	ebiten.KeyT:              20,
	ebiten.KeyY:              21,
	ebiten.KeyU:              22,
	ebiten.KeyI:              23,
	ebiten.KeyO:              24,
	ebiten.KeyP:              25,
	ebiten.KeyBracketLeft:    26,
	ebiten.KeyBracketRight:   27,
	ebiten.KeyEnter:          28,
	ebiten.KeyControlLeft:    29,
	ebiten.KeyA:              30,
	ebiten.KeyS:              31,
	ebiten.KeyD:              32,
	ebiten.KeyF:              33,
	ebiten.KeyG:              34,
	ebiten.KeyH:              35,
	ebiten.KeyJ:              36,
	ebiten.KeyK:              37,
	ebiten.KeyL:              38,
	ebiten.KeySemicolon:      39,
	ebiten.KeyQuote:          40,
	ebiten.KeyBackquote:      41,
	ebiten.KeyShiftLeft:      42,
	ebiten.KeyBackslash:      43,
	ebiten.KeyZ:              44,
	ebiten.KeyX:              45,
	ebiten.KeyC:              46,
	ebiten.KeyV:              47,
	ebiten.KeyB:              48,
	ebiten.KeyN:              49,
	ebiten.KeyM:              50,
	ebiten.KeyComma:          51,
	ebiten.KeyPeriod:         52,
	ebiten.KeySlash:          53,
	ebiten.KeyShiftRight:     54,
	ebiten.KeyNumpadMultiply: 55,
	ebiten.KeyAltLeft:        56,
	ebiten.KeySpace:          57,
	ebiten.KeyCapsLock:       58,
	ebiten.KeyF1:             59,
	ebiten.KeyF2:             60,
	ebiten.KeyF3:             61,
	ebiten.KeyF4:             62,
	ebiten.KeyF5:             63,
	ebiten.KeyF6:             64,
	ebiten.KeyF7:             65,
	ebiten.KeyF8:             66,
}

func ebitenKeyToScanCode(key ebiten.Key) (int, bool) {
	code, ok := ebitenScanCodes[key]
	return code, ok
}

// KeyboardWindow is the input collaborator for the polyphonic mode. Ebiten
// calls Update on the main goroutine; it only submits to the bridge and never
// touches audio state directly.
type KeyboardWindow struct {
	ctx    context.Context
	cfg    WindowConfig
	bridge *EventBridge
	status *runtimeStatus
	log    *slog.Logger

	keyBuf []ebiten.Key
	held   [MAX_KEY_CODES]bool

	clipboardOnce sync.Once
	clipboardOK   bool
	statusLine    string
}

func NewKeyboardWindow(ctx context.Context, cfg WindowConfig, bridge *EventBridge, status *runtimeStatus, log *slog.Logger) *KeyboardWindow {
	return &KeyboardWindow{
		ctx:    ctx,
		cfg:    cfg,
		bridge: bridge,
		status: status,
		log:    log.With(slog.String("component", "keyboard")),
		keyBuf: make([]ebiten.Key, 0, 16),
	}
}

// Run opens the window and blocks until it is closed or ctx is done. It must
// be called from the main goroutine.
func (kw *KeyboardWindow) Run() error {
	ebiten.SetWindowSize(kw.cfg.Width, kw.cfg.Height)
	ebiten.SetWindowTitle(kw.cfg.Title)
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)

	err := ebiten.RunGame(kw)
	kw.releaseAll()
	if err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("keyboard window: %w", err)
	}
	return nil
}

func (kw *KeyboardWindow) Update() error {
	if ebiten.IsWindowBeingClosed() || kw.ctx.Err() != nil {
		return ebiten.Termination
	}

	// Releases come first so a key tapped within one tick still ends silent.
	kw.keyBuf = inpututil.AppendJustReleasedKeys(kw.keyBuf[:0])
	for _, key := range kw.keyBuf {
		kw.submit(key, KeyReleased)
	}
	kw.keyBuf = inpututil.AppendJustPressedKeys(kw.keyBuf[:0])
	for _, key := range kw.keyBuf {
		if key == ebiten.KeyF9 {
			kw.copyChord()
			continue
		}
		kw.submit(key, KeyPressed)
	}

	// Key-up events are not delivered to an unfocused window.
	if !ebiten.IsFocused() {
		kw.releaseAll()
	}
	return nil
}

func (kw *KeyboardWindow) submit(key ebiten.Key, state KeyState) {
	code, ok := ebitenKeyToScanCode(key)
	if !ok {
		return
	}
	if kw.bridge.Submit(KeyEvent{Code: code, State: state}) {
		kw.held[code] = state == KeyPressed
	}
}

func (kw *KeyboardWindow) releaseAll() {
	for code, down := range kw.held {
		if down {
			kw.bridge.Submit(KeyEvent{Code: code, State: KeyReleased})
			kw.held[code] = false
		}
	}
}

func (kw *KeyboardWindow) copyChord() {
	kw.clipboardOnce.Do(func() {
		if err := clipboard.Init(); err != nil {
			kw.log.Warn("clipboard unavailable", slog.String("error", err.Error()))
			return
		}
		kw.clipboardOK = true
	})
	if !kw.clipboardOK {
		return
	}
	chord := kw.status.chordText(kw.status.voices.Snapshot())
	clipboard.Write(clipboard.FmtText, []byte(chord))
	kw.statusLine = "copied: " + chord
}

func (kw *KeyboardWindow) Draw(screen *ebiten.Image) {
	face := basicfont.Face7x13
	labelColor := color.RGBA{190, 190, 190, 255}
	onColor := color.RGBA{0, 220, 90, 255}
	legendColor := color.RGBA{160, 160, 160, 255}

	screen.Fill(color.RGBA{16, 16, 24, 255})
	s := kw.status.snapshot()

	text.Draw(screen, fmt.Sprintf("VOICES %d", s.voices.Len()), face, 8, 20, labelColor)
	chord := kw.status.chordText(s.voices)
	if chord == "" {
		chord = "-"
	}
	text.Draw(screen, chord, face, 8, 40, onColor)

	barY := kw.cfg.Height - 44
	if barY > 48 {
		ebitenutil.DrawRect(screen, 0, float64(barY), float64(kw.cfg.Width), 44, color.RGBA{0, 0, 0, 180})
		text.Draw(screen, fmt.Sprintf("FRAMES %d  EVENTS %d  DROPPED %d  QUEUED %d  ERRORS %d",
			s.frames, s.applied, s.discarded, s.pending, s.streamErrors), face, 6, barY+13, labelColor)
		if kw.statusLine != "" {
			text.Draw(screen, kw.statusLine, face, 6, barY+26, legendColor)
		}
		text.Draw(screen, "F9 Copy chord  Close window to quit", face, 6, barY+39, legendColor)
	}
}

func (kw *KeyboardWindow) Layout(_, _ int) (int, int) {
	return kw.cfg.Width, kw.cfg.Height
}

func runKeyboardWindow(ctx context.Context, cfg WindowConfig, bridge *EventBridge, status *runtimeStatus, log *slog.Logger) error {
	return NewKeyboardWindow(ctx, cfg, bridge, status, log).Run()
}
