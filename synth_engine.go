// synth_engine.go - Polyphonic additive mixer driven by the voice registry

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
	"math"
	"sync/atomic"
)

const TWO_PI = 2 * math.Pi

// SynthEngine renders the sum of one sine per sounding key. It is the pull
// callback of the output stream: Read and NextSample must only be called from
// the render goroutine, and they never lock or allocate.
type SynthEngine struct {
	format StreamFormat
	pitch  *PitchTable
	voices *VoiceRegistry

	// step[k] is the phase advance per clock tick for key k, in cycles.
	step [MAX_KEY_CODES]float64

	// Sample clock, wraps at the sample rate. Owned by the render goroutine.
	clock int

	frames atomic.Uint64
}

func NewSynthEngine(pitch *PitchTable, voices *VoiceRegistry, format StreamFormat) *SynthEngine {
	e := &SynthEngine{
		format: format,
		pitch:  pitch,
		voices: voices,
	}
	for code := range e.step {
		e.step[code] = float64(pitch[code]) / float64(format.SampleRate)
	}
	return e
}

func (e *SynthEngine) Format() StreamFormat { return e.format }

// FramesRendered counts every frame produced since construction.
func (e *SynthEngine) FramesRendered() uint64 { return e.frames.Load() }

// NextSample advances the clock by one frame and returns the mix for it.
// With no voices the result is exactly 0; otherwise it is the average of the
// sounding sines, so it stays within [-1, 1].
func (e *SynthEngine) NextSample() float32 {
	e.clock++
	if e.clock >= e.format.SampleRate {
		e.clock = 0
	}
	e.frames.Add(1)

	set := e.voices.Snapshot()
	n := set.Len()
	if n == 0 {
		return 0
	}
	t := float64(e.clock)
	var sum float64
	for code := set.Next(0); code >= 0; code = set.Next(code + 1) {
		sum += float64(lutSin(t * e.step[code]))
	}
	return float32(sum / float64(n))
}

// Read implements io.Reader for the output stream, encoding whole frames in
// the stream's sample format.
func (e *SynthEngine) Read(p []byte) (int, error) {
	return encodeFrames(p, e.format, e), nil
}

// RenderFloat32 fills dst with interleaved float frames and returns the
// number of frames written.
func (e *SynthEngine) RenderFloat32(dst []float32) int {
	channels := e.format.Channels
	if channels <= 0 {
		return 0
	}
	frames := len(dst) / channels
	for i := 0; i < frames; i++ {
		v := e.NextSample()
		frame := dst[i*channels : (i+1)*channels]
		for ch := range frame {
			frame[ch] = v
		}
	}
	return frames
}
