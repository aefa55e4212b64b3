// audio_render_wav.go - Offline rendering of the mix to a WAV file

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
	"fmt"
	"io"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	WAV_BIT_DEPTH    = 16
	WAV_FORMAT_PCM   = 1
	WAV_CHUNK_FRAMES = 1024
)

// WavRenderer pulls frames from a SynthEngine as fast as it can and encodes
// them as 16-bit PCM. Key events reach the engine through the bridge, which
// is flushed before every render so the output follows the event order
// exactly.
type WavRenderer struct {
	engine  *SynthEngine
	bridge  *EventBridge
	enc     *wav.Encoder
	buf     *audio.IntBuffer
	scratch []float32
	frames  int
}

func NewWavRenderer(w io.WriteSeeker, engine *SynthEngine, bridge *EventBridge) *WavRenderer {
	format := engine.Format()
	return &WavRenderer{
		engine: engine,
		bridge: bridge,
		enc:    wav.NewEncoder(w, format.SampleRate, WAV_BIT_DEPTH, format.Channels, WAV_FORMAT_PCM),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: format.Channels, SampleRate: format.SampleRate},
			Data:           make([]int, WAV_CHUNK_FRAMES*format.Channels),
			SourceBitDepth: WAV_BIT_DEPTH,
		},
		scratch: make([]float32, WAV_CHUNK_FRAMES*format.Channels),
	}
}

// FramesWritten reports the frames encoded so far.
func (wr *WavRenderer) FramesWritten() int { return wr.frames }

// Render encodes d worth of frames, rounded down to whole frames.
func (wr *WavRenderer) Render(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("wav: negative render duration %v", d)
	}
	sr := wr.engine.Format().SampleRate
	return wr.RenderFrames(int(int64(sr) * int64(d) / int64(time.Second)))
}

func (wr *WavRenderer) RenderFrames(frames int) error {
	if wr.bridge != nil {
		wr.bridge.Flush()
	}
	channels := wr.engine.Format().Channels
	for frames > 0 {
		chunk := min(frames, WAV_CHUNK_FRAMES)
		n := wr.engine.RenderFloat32(wr.scratch[:chunk*channels])
		data := wr.buf.Data[:n*channels]
		for i, v := range wr.scratch[:n*channels] {
			data[i] = int(v * INT16_SCALE)
		}
		wr.buf.Data = data
		if err := wr.enc.Write(wr.buf); err != nil {
			return fmt.Errorf("wav: write: %w", err)
		}
		wr.buf.Data = wr.buf.Data[:cap(wr.buf.Data)]
		wr.frames += n
		frames -= n
	}
	return nil
}

// Close finalises the WAV header. The underlying writer stays open.
func (wr *WavRenderer) Close() error {
	if err := wr.enc.Close(); err != nil {
		return fmt.Errorf("wav: close encoder: %w", err)
	}
	return nil
}
