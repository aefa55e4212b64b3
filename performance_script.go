// performance_script.go - Lua-scripted key performances rendered offline

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
	"fmt"
	"log/slog"
	"os"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// PerformanceScript exposes the synthesizer to a Lua script:
//
//	press(code)        hold a key, returns false if the code is out of range
//	release(code)      let go of a key
//	rest(ms)           render ms of audio with the current keys held
//	note(code, ms)     press, rest, release
//	pitch(code)        frequency of a key in Hz
//	MAX_KEYS           number of key codes
type PerformanceScript struct {
	pitch    *PitchTable
	bridge   *EventBridge
	renderer *WavRenderer
	log      *slog.Logger
}

func NewPerformanceScript(pitch *PitchTable, bridge *EventBridge, renderer *WavRenderer, log *slog.Logger) *PerformanceScript {
	if log == nil {
		log = slog.Default()
	}
	return &PerformanceScript{
		pitch:    pitch,
		bridge:   bridge,
		renderer: renderer,
		log:      log.With(slog.String("component", "script")),
	}
}

func (ps *PerformanceScript) RunFile(ctx context.Context, path string) error {
	return ps.run(ctx, func(L *lua.LState) error { return L.DoFile(path) })
}

func (ps *PerformanceScript) RunString(ctx context.Context, src string) error {
	return ps.run(ctx, func(L *lua.LState) error { return L.DoString(src) })
}

func (ps *PerformanceScript) run(ctx context.Context, exec func(*lua.LState) error) error {
	L := lua.NewState()
	defer L.Close()
	L.SetContext(ctx)
	ps.install(L)

	if err := exec(L); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	ps.bridge.Flush()
	return nil
}

func (ps *PerformanceScript) install(L *lua.LState) {
	L.SetGlobal("MAX_KEYS", lua.LNumber(MAX_KEY_CODES))
	L.SetGlobal("press", L.NewFunction(ps.luaPress))
	L.SetGlobal("release", L.NewFunction(ps.luaRelease))
	L.SetGlobal("rest", L.NewFunction(ps.luaRest))
	L.SetGlobal("note", L.NewFunction(ps.luaNote))
	L.SetGlobal("pitch", L.NewFunction(ps.luaPitch))
}

func (ps *PerformanceScript) luaPress(L *lua.LState) int {
	code := L.CheckInt(1)
	L.Push(lua.LBool(ps.bridge.Submit(KeyEvent{Code: code, State: KeyPressed})))
	return 1
}

func (ps *PerformanceScript) luaRelease(L *lua.LState) int {
	code := L.CheckInt(1)
	L.Push(lua.LBool(ps.bridge.Submit(KeyEvent{Code: code, State: KeyReleased})))
	return 1
}

func (ps *PerformanceScript) luaRest(L *lua.LState) int {
	ps.rest(L, L.CheckNumber(1))
	return 0
}

func (ps *PerformanceScript) luaNote(L *lua.LState) int {
	code := L.CheckInt(1)
	ms := L.CheckNumber(2)
	ps.bridge.Submit(KeyEvent{Code: code, State: KeyPressed})
	ps.rest(L, ms)
	ps.bridge.Submit(KeyEvent{Code: code, State: KeyReleased})
	return 0
}

func (ps *PerformanceScript) luaPitch(L *lua.LState) int {
	code := L.CheckInt(1)
	L.Push(lua.LNumber(ps.pitch.Frequency(code)))
	return 1
}

func (ps *PerformanceScript) rest(L *lua.LState, ms lua.LNumber) {
	if ms < 0 {
		L.ArgError(1, "rest duration must not be negative")
		return
	}
	d := time.Duration(float64(ms) * float64(time.Millisecond))
	if err := ps.renderer.Render(d); err != nil {
		L.RaiseError("%v", err)
	}
}

// renderScriptToWav runs scriptPath against a private registry and bridge and
// writes the result to wavPath.
func renderScriptToWav(ctx context.Context, scriptPath, wavPath string, format StreamFormat, log *slog.Logger) (err error) {
	pitch := NewPitchTable()
	voices := NewVoiceRegistry()
	bridge := NewEventBridge(voices, log)
	bridge.Start()
	defer bridge.Close()

	engine := NewSynthEngine(pitch, voices, format)

	f, err := os.Create(wavPath)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("render: %w", cerr)
		}
	}()

	renderer := NewWavRenderer(f, engine, bridge)
	script := NewPerformanceScript(pitch, bridge, renderer, log)
	if err := script.RunFile(ctx, scriptPath); err != nil {
		_ = renderer.Close()
		return err
	}
	if err := renderer.Close(); err != nil {
		return err
	}
	log.Info("render complete",
		slog.String("script", scriptPath),
		slog.String("output", wavPath),
		slog.Int("frames", renderer.FramesWritten()),
		slog.String("format", format.String()))
	return nil
}
